// Package rpc holds the JSON-RPC namespace bindings and HTTP mounting,
// one file per namespace. Every method here is a one-line
// forwarder into ethprovider, mempool or tracing; no business logic lives
// in this package.
package rpc

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/kkrt-labs/kakarot-rpc-go/apierror"
	"github.com/kkrt-labs/kakarot-rpc-go/ethprovider"
	"github.com/kkrt-labs/kakarot-rpc-go/rpctypes"
)

// EthAPI implements the eth_* namespace.
type EthAPI struct {
	provider *ethprovider.Provider
}

func NewEthAPI(provider *ethprovider.Provider) *EthAPI {
	return &EthAPI{provider: provider}
}

func (a *EthAPI) ChainId(ctx context.Context) (hexutil.Uint64, error) { //nolint:revive,stylecheck
	id, err := a.provider.ChainID(ctx)
	return hexutil.Uint64(id), err
}

func (a *EthAPI) BlockNumber(ctx context.Context) (hexutil.Uint64, error) {
	n, err := a.provider.BlockNumber(ctx)
	return hexutil.Uint64(n), err
}

func (a *EthAPI) Syncing(ctx context.Context) (bool, error) {
	return a.provider.Syncing(ctx)
}

func (a *EthAPI) GetBlockByHash(ctx context.Context, hash common.Hash, full bool) (*rpctypes.Block, error) {
	return a.provider.BlockByHash(ctx, hash, full)
}

func (a *EthAPI) GetBlockByNumber(ctx context.Context, bn rpctypes.BlockNumber, full bool) (*rpctypes.Block, error) {
	return a.provider.BlockByNumber(ctx, bn, full)
}

func (a *EthAPI) GetBlockTransactionCountByHash(ctx context.Context, hash common.Hash) (*hexutil.Uint64, error) {
	n, err := a.provider.BlockTransactionCountByHash(ctx, hash)
	return countPtr(n), err
}

func (a *EthAPI) GetBlockTransactionCountByNumber(ctx context.Context, bn rpctypes.BlockNumber) (*hexutil.Uint64, error) {
	n, err := a.provider.BlockTransactionCountByNumber(ctx, bn)
	return countPtr(n), err
}

func countPtr(n *uint64) *hexutil.Uint64 {
	if n == nil {
		return nil
	}
	c := hexutil.Uint64(*n)
	return &c
}

func (a *EthAPI) GetTransactionByHash(ctx context.Context, hash common.Hash) (*rpctypes.RPCTransaction, error) {
	return a.provider.TransactionByHash(ctx, hash)
}

func (a *EthAPI) GetTransactionByBlockHashAndIndex(ctx context.Context, hash common.Hash, index hexutil.Uint64) (*rpctypes.RPCTransaction, error) {
	return a.provider.TransactionByBlockHashAndIndex(ctx, hash, uint64(index))
}

func (a *EthAPI) GetTransactionByBlockNumberAndIndex(ctx context.Context, bn rpctypes.BlockNumber, index hexutil.Uint64) (*rpctypes.RPCTransaction, error) {
	return a.provider.TransactionByBlockNumberAndIndex(ctx, bn, uint64(index))
}

func (a *EthAPI) GetTransactionReceipt(ctx context.Context, hash common.Hash) (*rpctypes.Receipt, error) {
	return a.provider.TransactionReceipt(ctx, hash)
}

func (a *EthAPI) GetBalance(ctx context.Context, addr common.Address, bn rpctypes.BlockNumber) (*hexutil.Big, error) {
	balance, err := a.provider.Balance(ctx, addr)
	if err != nil {
		return nil, err
	}
	b := hexutil.Big(*balance.ToBig())
	return &b, nil
}

func (a *EthAPI) GetStorageAt(ctx context.Context, addr common.Address, key common.Hash, bn rpctypes.BlockNumber) (common.Hash, error) {
	return a.provider.StorageAt(ctx, addr, uint256FromHash(key))
}

func (a *EthAPI) GetTransactionCount(ctx context.Context, addr common.Address, bn rpctypes.BlockNumber) (hexutil.Uint64, error) {
	n, err := a.provider.TransactionCount(ctx, addr)
	return hexutil.Uint64(n), err
}

func (a *EthAPI) GetCode(ctx context.Context, addr common.Address, bn rpctypes.BlockNumber) (hexutil.Bytes, error) {
	return a.provider.GetCode(ctx, addr)
}

func (a *EthAPI) GetLogs(ctx context.Context, filter rpctypes.LogFilter) ([]rpctypes.Log, error) {
	return a.provider.Logs(ctx, filter)
}

func (a *EthAPI) Call(ctx context.Context, req ethprovider.CallRequest, bn rpctypes.BlockNumber) (hexutil.Bytes, error) {
	return a.provider.Call(ctx, req)
}

func (a *EthAPI) EstimateGas(ctx context.Context, req ethprovider.CallRequest) (hexutil.Uint64, error) {
	gas, err := a.provider.EstimateGas(ctx, req)
	return hexutil.Uint64(gas), err
}

func (a *EthAPI) FeeHistory(ctx context.Context, blockCount hexutil.Uint64, newestBlock rpctypes.BlockNumber) (*ethprovider.FeeHistory, error) {
	return a.provider.FeeHistory(ctx, uint64(blockCount), newestBlock)
}

func (a *EthAPI) SendRawTransaction(ctx context.Context, raw hexutil.Bytes) (common.Hash, error) {
	return a.provider.SendRawTransaction(ctx, raw)
}

func (a *EthAPI) GasPrice(ctx context.Context) (*hexutil.Big, error) {
	price, err := a.provider.GasPrice(ctx)
	if err != nil {
		return nil, err
	}
	b := hexutil.Big(*price.ToBig())
	return &b, nil
}

func (a *EthAPI) GetBlockReceipts(ctx context.Context, bn rpctypes.BlockNumber) ([]rpctypes.Receipt, error) {
	return a.provider.BlockReceipts(ctx, bn)
}

func (a *EthAPI) MaxPriorityFeePerGas(ctx context.Context) (*hexutil.Big, error) {
	fee, err := a.provider.MaxPriorityFeePerGas(ctx)
	if err != nil {
		return nil, err
	}
	b := hexutil.Big(*fee.ToBig())
	return &b, nil
}

func (a *EthAPI) Coinbase(ctx context.Context) (common.Address, error) {
	return a.provider.Coinbase(ctx)
}

func (a *EthAPI) Accounts(ctx context.Context) ([]common.Address, error) {
	return a.provider.Accounts(ctx)
}

// GetProof is intentionally unsupported: the adapter has no Merkle state to
// prove against, the authoritative state lives on the L2.
func (a *EthAPI) GetProof(ctx context.Context, addr common.Address, keys []common.Hash, bn rpctypes.BlockNumber) (any, error) {
	return nil, apierror.Unsupported("eth_getProof")
}
