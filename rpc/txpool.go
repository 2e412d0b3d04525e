package rpc

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/kkrt-labs/kakarot-rpc-go/mempool"
	"github.com/kkrt-labs/kakarot-rpc-go/rpctypes"
)

// TxPoolAPI implements the txpool_* namespace.
type TxPoolAPI struct {
	pool *mempool.Pool
}

func NewTxPoolAPI(pool *mempool.Pool) *TxPoolAPI {
	return &TxPoolAPI{pool: pool}
}

func (a *TxPoolAPI) Status(ctx context.Context) (map[string]hexutil.Uint, error) {
	return a.pool.Status(ctx)
}

func (a *TxPoolAPI) Inspect(ctx context.Context) (map[string]map[string]map[string]string, error) {
	return a.pool.Inspect(ctx)
}

func (a *TxPoolAPI) Content(ctx context.Context) (map[string]map[string]map[string]*rpctypes.RPCTransaction, error) {
	return a.pool.Content(ctx)
}

func (a *TxPoolAPI) ContentFrom(ctx context.Context, addr common.Address) (map[string]map[string]*rpctypes.RPCTransaction, error) {
	return a.pool.ContentFrom(ctx, addr)
}
