package mempool

import (
	"context"
	"fmt"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/kkrt-labs/kakarot-rpc-go/apierror"
	"github.com/kkrt-labs/kakarot-rpc-go/indexstore"
	"github.com/kkrt-labs/kakarot-rpc-go/rpctypes"
)

// StatusPending is the only bucket that ever holds entries: every stored
// pending entry has already been admitted and submitted to the L2, so there
// is no "queued" (not-yet-runnable) tier the way an in-memory txpool has one.
// StatusQueued is still reported, always empty (or zero in Status).
const (
	StatusPending = "pending"
	StatusQueued  = "queued"
)

// Pool answers the txpool_* namespace by reading the index store's pending
// collection. The pending set here is the persisted index, not an
// in-process txpool.TxPool: a transaction is "pending" the moment
// send_raw_transaction admits it, there is no separate "queued" tier.
type Pool struct {
	store   PendingSource
	chainID uint64
}

// PendingSource is the one slice of the index store the pool needs,
// satisfied by *indexstore.EthereumStore.
type PendingSource interface {
	AllPendingTransactions(ctx context.Context) ([]indexstore.StoredPendingTransaction, error)
}

func NewPool(store PendingSource, chainID uint64) *Pool {
	return &Pool{store: store, chainID: chainID}
}

func (p *Pool) all(ctx context.Context) ([]indexstore.StoredPendingTransaction, error) {
	entries, err := p.store.AllPendingTransactions(ctx)
	if err != nil {
		return nil, apierror.DatabaseError(err)
	}
	return entries, nil
}

// Content returns every pending transaction bucketed by sender and nonce,
// matching go-ethereum's txpool_content response shape.
func (p *Pool) Content(ctx context.Context) (map[string]map[string]map[string]*rpctypes.RPCTransaction, error) {
	content := map[string]map[string]map[string]*rpctypes.RPCTransaction{
		StatusPending: {},
		StatusQueued:  {},
	}

	entries, err := p.all(ctx)
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		addr := e.Tx.From.Hex()
		if content[StatusPending][addr] == nil {
			content[StatusPending][addr] = map[string]*rpctypes.RPCTransaction{}
		}
		rpcTx := rpctypes.FormatTransaction(e.Tx, p.chainID)
		content[StatusPending][addr][strconv.FormatUint(e.Tx.Nonce, 10)] = &rpcTx
	}

	return content, nil
}

// ContentFrom implements txpool_contentFrom: Content filtered to one sender.
func (p *Pool) ContentFrom(ctx context.Context, addr common.Address) (map[string]map[string]*rpctypes.RPCTransaction, error) {
	content := map[string]map[string]*rpctypes.RPCTransaction{
		StatusPending: {},
		StatusQueued:  {},
	}

	entries, err := p.all(ctx)
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		if e.Tx.From != addr {
			continue
		}
		rpcTx := rpctypes.FormatTransaction(e.Tx, p.chainID)
		content[StatusPending][strconv.FormatUint(e.Tx.Nonce, 10)] = &rpcTx
	}

	return content, nil
}

// Inspect implements txpool_inspect: a flattened human-readable summary.
func (p *Pool) Inspect(ctx context.Context) (map[string]map[string]map[string]string, error) {
	inspect := map[string]map[string]map[string]string{
		StatusPending: {},
		StatusQueued:  {},
	}

	entries, err := p.all(ctx)
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		addr := e.Tx.From.Hex()
		if inspect[StatusPending][addr] == nil {
			inspect[StatusPending][addr] = map[string]string{}
		}
		inspect[StatusPending][addr][strconv.FormatUint(e.Tx.Nonce, 10)] = inspectLine(e.Tx)
	}

	return inspect, nil
}

func inspectLine(tx indexstore.StoredTx) string {
	value := new(big.Int).SetBytes(tx.Value)
	gasPrice := new(big.Int).SetBytes(tx.GasPrice)
	if tx.To != nil {
		return fmt.Sprintf("%s: %s wei + %d gas x %s wei", tx.To.Hex(), value, tx.Gas, gasPrice)
	}
	return fmt.Sprintf("contract creation: %s wei + %d gas x %s wei", value, tx.Gas, gasPrice)
}

// Status implements txpool_status: counts only, queued is always zero since
// this pool has no separate queued tier.
func (p *Pool) Status(ctx context.Context) (map[string]hexutil.Uint, error) {
	entries, err := p.all(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]hexutil.Uint{
		StatusPending: hexutil.Uint(len(entries)),
		StatusQueued:  hexutil.Uint(0),
	}, nil
}
