package rpctypes

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/kkrt-labs/kakarot-rpc-go/indexstore"
)

// Block is the eth_getBlockBy{Hash,Number} response shape.
type Block struct {
	Number           hexutil.Uint64   `json:"number"`
	Hash             common.Hash      `json:"hash"`
	ParentHash       common.Hash      `json:"parentHash"`
	Nonce            types.BlockNonce `json:"nonce"`
	StateRoot        common.Hash      `json:"stateRoot"`
	TransactionsRoot common.Hash      `json:"transactionsRoot"`
	ReceiptsRoot     common.Hash      `json:"receiptsRoot"`
	LogsBloom        hexutil.Bytes    `json:"logsBloom"`
	Miner            common.Address   `json:"miner"`
	Difficulty       hexutil.Big      `json:"difficulty"`
	ExtraData        hexutil.Bytes    `json:"extraData"`
	Size             hexutil.Uint64   `json:"size"`
	GasLimit         hexutil.Uint64   `json:"gasLimit"`
	GasUsed          hexutil.Uint64   `json:"gasUsed"`
	Timestamp        hexutil.Uint64   `json:"timestamp"`
	BaseFeePerGas    *hexutil.Big     `json:"baseFeePerGas,omitempty"`
	Transactions     []any            `json:"transactions"` // common.Hash or RPCTransaction elements
	Uncles           []common.Hash    `json:"uncles"`
}

// FormatBlock builds the RPC block shape from a stored header and its
// transactions, either as full RPCTransaction objects (full=true) or as
// bare hashes. Size is the RLP length of a subset of the header fields
// (parent hash, miner, state root, gas limit, gas used, timestamp, extra
// data); the other header fields and the transactions are not counted.
func FormatBlock(h indexstore.Header, txs []RPCTransaction, full bool) (*Block, error) {
	out := &Block{
		Number:           hexutil.Uint64(h.Number),
		Hash:             h.Hash,
		ParentHash:       h.ParentHash,
		StateRoot:        h.StateRoot,
		TransactionsRoot: h.TransactionsRoot,
		ReceiptsRoot:     h.ReceiptsRoot,
		LogsBloom:        h.LogsBloom,
		Miner:            h.Miner,
		Difficulty:       hexutil.Big(*new(big.Int).SetUint64(h.Difficulty)),
		ExtraData:        h.ExtraData,
		GasLimit:         hexutil.Uint64(h.GasLimit),
		GasUsed:          hexutil.Uint64(h.GasUsed),
		Timestamp:        hexutil.Uint64(h.Timestamp),
		Uncles:           []common.Hash{},
	}
	if h.BaseFeePerGas != nil {
		bf := hexutil.Big(*new(big.Int).SetUint64(*h.BaseFeePerGas))
		out.BaseFeePerGas = &bf
	}

	out.Transactions = make([]any, len(txs))
	for i, tx := range txs {
		if full {
			out.Transactions[i] = tx
		} else {
			out.Transactions[i] = tx.Hash
		}
	}

	size, err := estimateRLPSize(out)
	if err != nil {
		return nil, err
	}
	out.Size = hexutil.Uint64(size)
	return out, nil
}

func estimateRLPSize(b *Block) (uint64, error) {
	enc, err := rlp.EncodeToBytes(struct {
		ParentHash common.Hash
		Miner      common.Address
		StateRoot  common.Hash
		GasLimit   uint64
		GasUsed    uint64
		Timestamp  uint64
		ExtraData  []byte
	}{b.ParentHash, b.Miner, b.StateRoot, uint64(b.GasLimit), uint64(b.GasUsed), uint64(b.Timestamp), b.ExtraData})
	if err != nil {
		return 0, err
	}
	return uint64(len(enc)), nil
}
