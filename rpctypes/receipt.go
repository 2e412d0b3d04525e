package rpctypes

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/kkrt-labs/kakarot-rpc-go/indexstore"
)

// Receipt is the eth_getTransactionReceipt response shape.
type Receipt struct {
	TransactionHash   common.Hash     `json:"transactionHash"`
	TransactionIndex  hexutil.Uint64  `json:"transactionIndex"`
	BlockHash         common.Hash     `json:"blockHash"`
	BlockNumber       hexutil.Uint64  `json:"blockNumber"`
	From              common.Address  `json:"from"`
	To                *common.Address `json:"to"`
	ContractAddress   *common.Address `json:"contractAddress"`
	CumulativeGasUsed hexutil.Uint64  `json:"cumulativeGasUsed"`
	GasUsed           hexutil.Uint64  `json:"gasUsed"`
	EffectiveGasPrice *hexutil.Big    `json:"effectiveGasPrice"`
	LogsBloom         hexutil.Bytes   `json:"logsBloom"`
	Logs              []Log           `json:"logs"`
	Status            hexutil.Uint64  `json:"status"`
	Type              hexutil.Uint64  `json:"type"`
}

type Log struct {
	Address          common.Address `json:"address"`
	Topics           []common.Hash  `json:"topics"`
	Data             hexutil.Bytes  `json:"data"`
	BlockNumber      hexutil.Uint64 `json:"blockNumber"`
	TransactionHash  common.Hash    `json:"transactionHash"`
	TransactionIndex hexutil.Uint64 `json:"transactionIndex"`
	BlockHash        common.Hash    `json:"blockHash"`
	LogIndex         hexutil.Uint64 `json:"logIndex"`
	Removed          bool           `json:"removed"`
}

// FormatReceipt builds the RPC receipt shape. A missing effective gas
// price is serialized as null rather than failing the whole receipt.
func FormatReceipt(r indexstore.ReceiptDoc, logs []indexstore.LogDoc) Receipt {
	out := Receipt{
		TransactionHash:   r.TransactionHash,
		TransactionIndex:  hexutil.Uint64(r.TransactionIndex),
		BlockHash:         r.BlockHash,
		BlockNumber:       hexutil.Uint64(r.BlockNumber),
		From:              r.From,
		To:                r.To,
		ContractAddress:   r.ContractAddress,
		CumulativeGasUsed: hexutil.Uint64(r.CumulativeGasUsed),
		GasUsed:           hexutil.Uint64(r.GasUsed),
		LogsBloom:         r.LogsBloom,
		Status:            hexutil.Uint64(r.Status),
		Type:              hexutil.Uint64(r.Type),
	}
	if len(r.EffectiveGasPrice) > 0 {
		egp := hexutil.Big(*new(big.Int).SetBytes(r.EffectiveGasPrice))
		out.EffectiveGasPrice = &egp
	}
	out.Logs = make([]Log, len(logs))
	for i, l := range logs {
		out.Logs[i] = Log{
			Address:          l.Address,
			Topics:           l.Topics,
			Data:             l.Data,
			BlockNumber:      hexutil.Uint64(l.BlockNumber),
			TransactionHash:  l.TransactionHash,
			TransactionIndex: hexutil.Uint64(l.TransactionIndex),
			BlockHash:        l.BlockHash,
			LogIndex:         hexutil.Uint64(l.LogIndex),
			Removed:          l.Removed,
		}
	}
	return out
}
