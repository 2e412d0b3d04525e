package rpc

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/kkrt-labs/kakarot-rpc-go/apierror"
	"github.com/kkrt-labs/kakarot-rpc-go/ethprovider"
	"github.com/kkrt-labs/kakarot-rpc-go/rpctypes"
	"github.com/kkrt-labs/kakarot-rpc-go/tracing"
)

// TraceConfig is the debug_trace* configuration object. The engine only
// supports the callTracer configuration: any other named tracer is rejected explicitly rather
// than silently ignored.
type TraceConfig struct {
	Tracer *string `json:"tracer"`
}

func (c *TraceConfig) validate() error {
	if c == nil || c.Tracer == nil {
		return nil
	}
	if *c.Tracer != "callTracer" {
		return apierror.MethodNotSupported("debug_trace with tracer " + *c.Tracer)
	}
	return nil
}

// DebugAPI implements the debug_* namespace.
type DebugAPI struct {
	provider *ethprovider.Provider
	chainID  func(ctx context.Context) (uint64, error)
}

func NewDebugAPI(provider *ethprovider.Provider) *DebugAPI {
	return &DebugAPI{provider: provider, chainID: provider.ChainID}
}

func (a *DebugAPI) GetRawHeader(ctx context.Context, bn rpctypes.BlockNumber) (hexutil.Bytes, error) {
	return a.provider.RawHeader(ctx, bn)
}

func (a *DebugAPI) GetRawBlock(ctx context.Context, bn rpctypes.BlockNumber) (hexutil.Bytes, error) {
	return a.provider.RawBlock(ctx, bn)
}

func (a *DebugAPI) GetRawTransaction(ctx context.Context, hash common.Hash) (hexutil.Bytes, error) {
	return a.provider.RawTransaction(ctx, hash)
}

func (a *DebugAPI) GetRawTransactions(ctx context.Context, bn rpctypes.BlockNumber) ([]hexutil.Bytes, error) {
	raws, err := a.provider.RawTransactions(ctx, bn)
	if err != nil {
		return nil, err
	}
	out := make([]hexutil.Bytes, len(raws))
	for i, r := range raws {
		out[i] = r
	}
	return out, nil
}

func (a *DebugAPI) GetRawReceipts(ctx context.Context, bn rpctypes.BlockNumber) ([]hexutil.Bytes, error) {
	raws, err := a.provider.RawReceipts(ctx, bn)
	if err != nil {
		return nil, err
	}
	out := make([]hexutil.Bytes, len(raws))
	for i, r := range raws {
		out[i] = r
	}
	return out, nil
}

func (a *DebugAPI) builder(ctx context.Context) (*tracing.Builder, error) {
	chainID, err := a.chainID(ctx)
	if err != nil {
		return nil, err
	}
	return tracing.NewBuilder(ctx, a.provider, chainID), nil
}

func (a *DebugAPI) TraceBlockByNumber(ctx context.Context, bn rpctypes.BlockNumber, cfg *TraceConfig) ([]*tracing.TraceResult, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	builder, err := a.builder(ctx)
	if err != nil {
		return nil, err
	}
	pinned, err := builder.PinBlock(bn)
	if err != nil {
		return nil, err
	}
	results, err := pinned.Build(tracing.Geth).TraceBlock()
	if err != nil {
		return nil, err
	}
	out := make([]*tracing.TraceResult, len(results))
	for i := range results {
		out[i] = &results[i]
	}
	return out, nil
}

func (a *DebugAPI) TraceBlockByHash(ctx context.Context, hash common.Hash, cfg *TraceConfig) ([]*tracing.TraceResult, error) {
	block, err := a.provider.BlockByHash(ctx, hash, false)
	if err != nil {
		return nil, err
	}
	if block == nil {
		return nil, apierror.UnknownBlock(hash.Hex())
	}
	return a.TraceBlockByNumber(ctx, rpctypes.BlockNumber{Number: uint64(block.Number)}, cfg)
}

func (a *DebugAPI) TraceTransaction(ctx context.Context, hash common.Hash, cfg *TraceConfig) (*tracing.CallFrame, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	chainID, err := a.chainID(ctx)
	if err != nil {
		return nil, err
	}
	builder := tracing.NewBuilder(ctx, a.provider, chainID)
	pinned, index, err := builder.PinTransaction(hash)
	if err != nil {
		return nil, err
	}
	result, err := pinned.Build(tracing.Geth).TraceTransaction(index)
	if err != nil {
		return nil, err
	}
	return result.Root, nil
}

func (a *DebugAPI) TraceCall(ctx context.Context, req ethprovider.CallRequest, bn rpctypes.BlockNumber, cfg *TraceConfig) (*tracing.CallFrame, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	builder, err := a.builder(ctx)
	if err != nil {
		return nil, err
	}
	pinned, err := builder.PinBlock(bn)
	if err != nil {
		return nil, err
	}
	return pinned.Build(tracing.GethCall).TraceCall(req)
}
