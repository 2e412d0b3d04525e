package rpctypes

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/kkrt-labs/kakarot-rpc-go/indexstore"
)

// RPCTransaction is the eth_getTransactionBy* response shape.
type RPCTransaction struct {
	Type             hexutil.Uint64   `json:"type"`
	Hash             common.Hash      `json:"hash"`
	Nonce            hexutil.Uint64   `json:"nonce"`
	BlockHash        *common.Hash     `json:"blockHash"`
	BlockNumber      *hexutil.Big     `json:"blockNumber"`
	TransactionIndex *hexutil.Uint64  `json:"transactionIndex"`
	From             common.Address   `json:"from"`
	To               *common.Address  `json:"to"`
	Value            *hexutil.Big     `json:"value"`
	Gas              hexutil.Uint64   `json:"gas"`
	GasPrice         *hexutil.Big     `json:"gasPrice"`
	MaxFeePerGas     *hexutil.Big     `json:"maxFeePerGas,omitempty"`
	MaxPriorityFee   *hexutil.Big     `json:"maxPriorityFeePerGas,omitempty"`
	Input            hexutil.Bytes    `json:"input"`
	ChainID          *hexutil.Big     `json:"chainId,omitempty"`
	V                *hexutil.Big     `json:"v"`
	R                *hexutil.Big     `json:"r"`
	S                *hexutil.Big     `json:"s"`
}

// FormatTransaction builds the RPC transaction shape from a stored
// transaction, branching on tx type for the access-list and dynamic-fee
// fee fields.
func FormatTransaction(tx indexstore.StoredTx, chainID uint64) RPCTransaction {
	out := RPCTransaction{
		Type:  hexutil.Uint64(tx.Type),
		Hash:  tx.Hash,
		Nonce: hexutil.Uint64(tx.Nonce),
		From:  tx.From,
		To:    tx.To,
		Gas:   hexutil.Uint64(tx.Gas),
		Input: tx.Input,
	}
	if tx.BlockHash != nil {
		out.BlockHash = tx.BlockHash
	}
	if tx.BlockNumber != nil {
		bn := hexutil.Big(*new(big.Int).SetUint64(*tx.BlockNumber))
		out.BlockNumber = &bn
	}
	if tx.TransactionIndex != nil {
		ti := hexutil.Uint64(*tx.TransactionIndex)
		out.TransactionIndex = &ti
	}
	val := hexutil.Big(*new(big.Int).SetBytes(tx.Value))
	out.Value = &val
	gp := hexutil.Big(*new(big.Int).SetBytes(tx.GasPrice))

	switch tx.Type {
	case types.AccessListTxType, types.DynamicFeeTxType:
		cid := hexutil.Big(*new(big.Int).SetUint64(chainID))
		out.ChainID = &cid
		if tx.Type == types.DynamicFeeTxType {
			// GasPrice holds the fee cap for dynamic-fee transactions; the
			// tip is persisted separately.
			out.MaxFeePerGas = &gp
			tip := hexutil.Big(*new(big.Int).SetBytes(tx.GasTipCap))
			out.MaxPriorityFee = &tip
		} else {
			out.GasPrice = &gp
		}
	default:
		out.GasPrice = &gp
	}

	return out
}
