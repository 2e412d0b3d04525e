package ethprovider

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/kkrt-labs/kakarot-rpc-go/apierror"
	"github.com/kkrt-labs/kakarot-rpc-go/indexstore"
	"github.com/kkrt-labs/kakarot-rpc-go/rpctypes"
)

// TransactionByHash unions the mined and pending collections, preferring
// the mined copy whenever both exist: the equivalent of a
// union-sort-desc-on-blockNumber-limit-1 lookup, expressed directly as
// "try mined first, fall back to pending".
func (p *Provider) TransactionByHash(ctx context.Context, hash common.Hash) (*rpctypes.RPCTransaction, error) {
	chainID, err := p.ChainID(ctx)
	if err != nil {
		return nil, err
	}

	mined, err := p.store.Transaction(ctx, hash)
	if err != nil {
		return nil, apierror.DatabaseError(err)
	}
	if mined != nil {
		out := rpctypes.FormatTransaction(mined.Tx, chainID)
		return &out, nil
	}

	pending, err := p.store.PendingTransaction(ctx, hash)
	if err != nil {
		return nil, apierror.DatabaseError(err)
	}
	if pending == nil {
		return nil, nil
	}
	out := rpctypes.FormatTransaction(pending.Tx, chainID)
	return &out, nil
}

func (p *Provider) TransactionByBlockHashAndIndex(ctx context.Context, hash common.Hash, index uint64) (*rpctypes.RPCTransaction, error) {
	chainID, err := p.ChainID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := p.store.TransactionByBlockHashAndIndex(ctx, hash, index)
	if err != nil {
		return nil, apierror.DatabaseError(err)
	}
	if tx == nil {
		return nil, nil
	}
	out := rpctypes.FormatTransaction(tx.Tx, chainID)
	return &out, nil
}

func (p *Provider) TransactionByBlockNumberAndIndex(ctx context.Context, bn rpctypes.BlockNumber, index uint64) (*rpctypes.RPCTransaction, error) {
	number, err := p.resolveBlockNumber(ctx, bn)
	if err != nil {
		return nil, err
	}
	chainID, err := p.ChainID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := p.store.TransactionByBlockNumberAndIndex(ctx, number, index)
	if err != nil {
		return nil, apierror.DatabaseError(err)
	}
	if tx == nil {
		return nil, nil
	}
	out := rpctypes.FormatTransaction(tx.Tx, chainID)
	return &out, nil
}

// TransactionReceipt is a direct lookup in
// receipts, joined against the receipt's own logs.
func (p *Provider) TransactionReceipt(ctx context.Context, hash common.Hash) (*rpctypes.Receipt, error) {
	r, err := p.store.ReceiptByTxHash(ctx, hash)
	if err != nil {
		return nil, apierror.DatabaseError(err)
	}
	if r == nil {
		return nil, nil
	}
	logs, err := p.logsForReceipt(ctx, r.Receipt)
	if err != nil {
		return nil, err
	}
	out := rpctypes.FormatReceipt(r.Receipt, logs)
	return &out, nil
}

func (p *Provider) logsForReceipt(ctx context.Context, r indexstore.ReceiptDoc) ([]indexstore.LogDoc, error) {
	filter := bson.M{"log.transactionHash": r.TransactionHash.Hex()}
	stored, err := p.store.Logs(ctx, filter, 0)
	if err != nil {
		return nil, apierror.DatabaseError(err)
	}
	out := make([]indexstore.LogDoc, len(stored))
	for i, l := range stored {
		out[i] = l.Log
	}
	return out, nil
}

// BlockReceipts implements eth_getBlockReceipts by fetching every receipt
// stored for the resolved block.
func (p *Provider) BlockReceipts(ctx context.Context, bn rpctypes.BlockNumber) ([]rpctypes.Receipt, error) {
	number, err := p.resolveBlockNumber(ctx, bn)
	if err != nil {
		return nil, err
	}
	stored, err := p.store.ReceiptsByBlockNumber(ctx, number)
	if err != nil {
		return nil, apierror.DatabaseError(err)
	}
	out := make([]rpctypes.Receipt, len(stored))
	for i, r := range stored {
		logs, err := p.logsForReceipt(ctx, r.Receipt)
		if err != nil {
			return nil, err
		}
		out[i] = rpctypes.FormatReceipt(r.Receipt, logs)
	}
	return out, nil
}
