package ethprovider

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/kkrt-labs/kakarot-rpc-go/apierror"
	"github.com/kkrt-labs/kakarot-rpc-go/indexstore"
	"github.com/kkrt-labs/kakarot-rpc-go/rpctypes"
)

// toHeader rebuilds a go-ethereum consensus header from the stored shape, for
// the debug_getRaw* family.
func toHeader(h indexstore.Header) *types.Header {
	out := &types.Header{
		ParentHash:  h.ParentHash,
		Root:        h.StateRoot,
		TxHash:      h.TransactionsRoot,
		ReceiptHash: h.ReceiptsRoot,
		Bloom:       types.BytesToBloom(h.LogsBloom),
		Difficulty:  new(big.Int).SetUint64(h.Difficulty),
		Number:      new(big.Int).SetUint64(h.Number),
		GasLimit:    h.GasLimit,
		GasUsed:     h.GasUsed,
		Time:        h.Timestamp,
		Extra:       h.ExtraData,
		Coinbase:    h.Miner,
	}
	if h.BaseFeePerGas != nil {
		out.BaseFee = new(big.Int).SetUint64(*h.BaseFeePerGas)
	}
	return out
}

func (p *Provider) storedHeader(ctx context.Context, bn rpctypes.BlockNumber) (*indexstore.StoredHeader, error) {
	number, err := p.resolveBlockNumber(ctx, bn)
	if err != nil {
		return nil, err
	}
	h, err := p.store.HeaderByNumber(ctx, number)
	if err != nil {
		return nil, apierror.DatabaseError(err)
	}
	return h, nil
}

// RawHeader implements debug_getRawHeader: the RLP encoding of the block's
// consensus header.
func (p *Provider) RawHeader(ctx context.Context, bn rpctypes.BlockNumber) ([]byte, error) {
	h, err := p.storedHeader(ctx, bn)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, nil
	}
	return rlp.EncodeToBytes(toHeader(h.Header))
}

// RawBlock implements debug_getRawBlock: the RLP encoding of the full block
// (header, transactions, empty uncle list). The body carries no withdrawals,
// so no withdrawal list is encoded.
func (p *Provider) RawBlock(ctx context.Context, bn rpctypes.BlockNumber) ([]byte, error) {
	h, err := p.storedHeader(ctx, bn)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, nil
	}
	storedTxs, err := p.store.TransactionsByBlockNumber(ctx, h.Header.Number)
	if err != nil {
		return nil, apierror.DatabaseError(err)
	}
	txs := make([]*types.Transaction, 0, len(storedTxs))
	for _, t := range storedTxs {
		tx := new(types.Transaction)
		if err := tx.UnmarshalBinary(t.Tx.RawRLP); err != nil {
			return nil, apierror.EthereumDataFormat(err)
		}
		txs = append(txs, tx)
	}
	block := types.NewBlockWithHeader(toHeader(h.Header)).WithBody(types.Body{Transactions: txs})
	return rlp.EncodeToBytes(block)
}

// RawTransaction implements debug_getRawTransaction: the stored canonical
// (typed) RLP encoding of the signed transaction, mined or pending.
func (p *Provider) RawTransaction(ctx context.Context, hash common.Hash) ([]byte, error) {
	mined, err := p.store.Transaction(ctx, hash)
	if err != nil {
		return nil, apierror.DatabaseError(err)
	}
	if mined != nil {
		return mined.Tx.RawRLP, nil
	}
	pending, err := p.store.PendingTransaction(ctx, hash)
	if err != nil {
		return nil, apierror.DatabaseError(err)
	}
	if pending == nil {
		return nil, nil
	}
	return pending.Tx.RawRLP, nil
}

// RawTransactions implements debug_getRawTransactions: every mined
// transaction's raw RLP, in block order.
func (p *Provider) RawTransactions(ctx context.Context, bn rpctypes.BlockNumber) ([][]byte, error) {
	number, err := p.resolveBlockNumber(ctx, bn)
	if err != nil {
		return nil, err
	}
	storedTxs, err := p.store.TransactionsByBlockNumber(ctx, number)
	if err != nil {
		return nil, apierror.DatabaseError(err)
	}
	out := make([][]byte, len(storedTxs))
	for i, t := range storedTxs {
		out[i] = t.Tx.RawRLP
	}
	return out, nil
}

// RawReceipts implements debug_getRawReceipts: the typed consensus encoding
// of every receipt in the block, in transaction order.
func (p *Provider) RawReceipts(ctx context.Context, bn rpctypes.BlockNumber) ([][]byte, error) {
	number, err := p.resolveBlockNumber(ctx, bn)
	if err != nil {
		return nil, err
	}
	stored, err := p.store.ReceiptsByBlockNumber(ctx, number)
	if err != nil {
		return nil, apierror.DatabaseError(err)
	}
	out := make([][]byte, 0, len(stored))
	for _, r := range stored {
		receipt := &types.Receipt{
			Type:              r.Receipt.Type,
			Status:            r.Receipt.Status,
			CumulativeGasUsed: r.Receipt.CumulativeGasUsed,
			Bloom:             types.BytesToBloom(r.Receipt.LogsBloom),
			TxHash:            r.Receipt.TransactionHash,
		}
		enc, err := receipt.MarshalBinary()
		if err != nil {
			return nil, apierror.EthereumDataFormat(err)
		}
		out = append(out, enc)
	}
	return out, nil
}
