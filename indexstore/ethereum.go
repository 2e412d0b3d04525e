package indexstore

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"go.mongodb.org/mongo-driver/bson"
)

// StoredHeader is an Ethereum block header as persisted, plus the invariant
// that hash==zero marks a pending L2 block.
type StoredHeader struct {
	Header Header `bson:"header"`
}

// Header mirrors Ethereum block-header fields (named loosely here; the exact
// field set is carried by rpctypes for wire marshaling — this is the stored
// shape the index actually keeps).
type Header struct {
	Hash             common.Hash    `bson:"hash"`
	Number           uint64         `bson:"number"`
	ParentHash       common.Hash    `bson:"parentHash"`
	StateRoot        common.Hash    `bson:"stateRoot"`
	TransactionsRoot common.Hash    `bson:"transactionsRoot"`
	ReceiptsRoot     common.Hash    `bson:"receiptsRoot"`
	LogsBloom        []byte         `bson:"logsBloom"`
	GasLimit         uint64         `bson:"gasLimit"`
	GasUsed          uint64         `bson:"gasUsed"`
	Timestamp        uint64         `bson:"timestamp"`
	ExtraData        []byte         `bson:"extraData"`
	BaseFeePerGas    *uint64        `bson:"baseFeePerGas,omitempty"`
	WithdrawalsRoot  *common.Hash   `bson:"withdrawalsRoot,omitempty"`
	Miner            common.Address `bson:"miner"`
	Difficulty       uint64         `bson:"difficulty"`
}

// StoredTransaction is an Ethereum typed transaction plus the location
// context attached once it is mined.
type StoredTransaction struct {
	Tx StoredTx `bson:"tx"`
}

type StoredTx struct {
	Hash             common.Hash     `bson:"hash"`
	BlockHash        *common.Hash    `bson:"blockHash,omitempty"`
	BlockNumber      *uint64         `bson:"blockNumber,omitempty"`
	TransactionIndex *uint64         `bson:"transactionIndex,omitempty"`
	From             common.Address  `bson:"from"`
	To               *common.Address `bson:"to,omitempty"`
	Nonce            uint64          `bson:"nonce"`
	Value            []byte          `bson:"value"`
	Gas              uint64          `bson:"gas"`
	GasPrice         []byte          `bson:"gasPrice"`
	GasTipCap        []byte          `bson:"gasTipCap,omitempty"`
	Input            []byte          `bson:"input"`
	RawRLP           []byte          `bson:"rawRlp"`
	Type             uint8           `bson:"type"`

	// RunOutOfResources is set by the indexer when replaying this
	// transaction against the L2 kernel exceeded its resource budget; the
	// tracing engine skips real execution for it and synthesizes a failed
	// trace instead.
	RunOutOfResources bool `bson:"runOutOfResources,omitempty"`
}

// StoredPendingTransaction is a StoredTransaction plus its retry count.
type StoredPendingTransaction struct {
	Tx      StoredTx `bson:"tx"`
	Retries uint8    `bson:"retries"`
}

// StoredHashMapping is the Eth<->L2 hash correlation record.
type StoredHashMapping struct {
	EthHash common.Hash `bson:"ethHash"`
	L2Hash  common.Hash `bson:"l2Hash"`
}

// EthereumStore layers the typed Ethereum-domain accessors over the
// generic Store.
type EthereumStore struct {
	*Store
}

func NewEthereumStore(s *Store) *EthereumStore { return &EthereumStore{Store: s} }

func (e *EthereumStore) Transaction(ctx context.Context, hash common.Hash) (*StoredTransaction, error) {
	filter := NewFilterBuilder("tx").WithTxHash(hash).Build()
	return GetOne[StoredTransaction](ctx, e.Store, CollTransactions, filter, nil)
}

func (e *EthereumStore) PendingTransaction(ctx context.Context, hash common.Hash) (*StoredPendingTransaction, error) {
	filter := NewFilterBuilder("tx").WithTxHash(hash).Build()
	return GetOne[StoredPendingTransaction](ctx, e.Store, CollTransactionsPending, filter, nil)
}

// PendingTransactionRetries returns retries+1 if a pending row already
// exists for hash (logging a retry), or 0 for a brand-new submission.
func (e *EthereumStore) PendingTransactionRetries(ctx context.Context, hash common.Hash) (uint8, error) {
	existing, err := e.PendingTransaction(ctx, hash)
	if err != nil {
		return 0, err
	}
	if existing == nil {
		e.logger.Info("new transaction in pending pool", "hash", hash.Hex())
		return 0, nil
	}
	e.logger.Info("retrying transaction", "hash", hash.Hex(), "retries", existing.Retries+1)
	return existing.Retries + 1, nil
}

func (e *EthereumStore) UpsertTransaction(ctx context.Context, tx StoredTransaction) error {
	filter := NewFilterBuilder("tx").WithTxHash(tx.Tx.Hash).Build()
	return e.UpsertOne(ctx, CollTransactions, filter, tx)
}

func (e *EthereumStore) UpsertPendingTransaction(ctx context.Context, tx StoredTx, retries uint8) error {
	filter := NewFilterBuilder("tx").WithTxHash(tx.Hash).Build()
	return e.UpsertOne(ctx, CollTransactionsPending, filter, StoredPendingTransaction{Tx: tx, Retries: retries})
}

func (e *EthereumStore) DeletePendingTransaction(ctx context.Context, hash common.Hash) error {
	filter := NewFilterBuilder("tx").WithTxHash(hash).Build()
	return e.DeleteOne(ctx, CollTransactionsPending, filter)
}

func (e *EthereumStore) AllPendingTransactions(ctx context.Context) ([]StoredPendingTransaction, error) {
	return GetAll[StoredPendingTransaction](ctx, e.Store, CollTransactionsPending)
}

func (e *EthereumStore) UpsertHashMapping(ctx context.Context, m StoredHashMapping) error {
	filter := bson.M{"ethHash": FormatHex(m.EthHash.Hex(), HashHexLen)}
	return e.UpsertOne(ctx, CollTransactionHashes, filter, m)
}

func (e *EthereumStore) LatestHeader(ctx context.Context) (*StoredHeader, error) {
	return GetOne[StoredHeader](ctx, e.Store, CollHeaders, bson.M{}, bson.D{{Key: "header.number", Value: -1}})
}

func (e *EthereumStore) HeaderByHash(ctx context.Context, hash common.Hash) (*StoredHeader, error) {
	filter := NewFilterBuilder("header").WithBlockHash(hash).Build()
	return GetOne[StoredHeader](ctx, e.Store, CollHeaders, filter, nil)
}

func (e *EthereumStore) HeaderByNumber(ctx context.Context, number uint64) (*StoredHeader, error) {
	filter := NewFilterBuilder("header").WithBlockNumber(number).Build()
	return GetOne[StoredHeader](ctx, e.Store, CollHeaders, filter, nil)
}

func (e *EthereumStore) HeadersInRange(ctx context.Context, from, to uint64) ([]StoredHeader, error) {
	filter := bson.M{
		"header.number": bson.M{
			"$gte": formatUint64(from),
			"$lte": formatUint64(to),
		},
	}
	return Get[StoredHeader](ctx, e.Store, CollHeaders, filter, bson.D{{Key: "header.number", Value: 1}}, 0)
}

func (e *EthereumStore) TransactionsByBlockHash(ctx context.Context, hash common.Hash) ([]StoredTransaction, error) {
	filter := NewFilterBuilder("tx").WithBlockHash(hash).Build()
	return Get[StoredTransaction](ctx, e.Store, CollTransactions, filter, bson.D{{Key: "tx.transactionIndex", Value: 1}}, 0)
}

func (e *EthereumStore) TransactionsByBlockNumber(ctx context.Context, number uint64) ([]StoredTransaction, error) {
	filter := NewFilterBuilder("tx").WithBlockNumber(number).Build()
	return Get[StoredTransaction](ctx, e.Store, CollTransactions, filter, bson.D{{Key: "tx.transactionIndex", Value: 1}}, 0)
}

func (e *EthereumStore) TransactionByBlockHashAndIndex(ctx context.Context, hash common.Hash, idx uint64) (*StoredTransaction, error) {
	filter := NewFilterBuilder("tx").WithBlockHash(hash).WithTransactionIndex(idx).Build()
	return GetOne[StoredTransaction](ctx, e.Store, CollTransactions, filter, nil)
}

func (e *EthereumStore) TransactionByBlockNumberAndIndex(ctx context.Context, number, idx uint64) (*StoredTransaction, error) {
	filter := NewFilterBuilder("tx").WithBlockNumber(number).WithTransactionIndex(idx).Build()
	return GetOne[StoredTransaction](ctx, e.Store, CollTransactions, filter, nil)
}

// StoredReceipt and StoredLog mirror the corresponding Ethereum wire types
// under their document outer key.
type StoredReceipt struct {
	Receipt ReceiptDoc `bson:"receipt"`
}

type ReceiptDoc struct {
	TransactionHash   common.Hash     `bson:"transactionHash"`
	BlockHash         common.Hash     `bson:"blockHash"`
	BlockNumber       uint64          `bson:"blockNumber"`
	TransactionIndex  uint64          `bson:"transactionIndex"`
	From              common.Address  `bson:"from"`
	To                *common.Address `bson:"to,omitempty"`
	ContractAddress   *common.Address `bson:"contractAddress,omitempty"`
	CumulativeGasUsed uint64          `bson:"cumulativeGasUsed"`
	GasUsed           uint64          `bson:"gasUsed"`
	EffectiveGasPrice []byte          `bson:"effectiveGasPrice"`
	Status            uint64          `bson:"status"`
	LogsBloom         []byte          `bson:"logsBloom"`
	Type              uint8           `bson:"type"`
}

type StoredLog struct {
	Log LogDoc `bson:"log"`
}

type LogDoc struct {
	Address          common.Address `bson:"address"`
	Topics           []common.Hash  `bson:"topics"`
	Data             []byte         `bson:"data"`
	BlockNumber      uint64         `bson:"blockNumber"`
	BlockHash        common.Hash    `bson:"blockHash"`
	TransactionHash  common.Hash    `bson:"transactionHash"`
	TransactionIndex uint64         `bson:"transactionIndex"`
	LogIndex         uint64         `bson:"logIndex"`
	Removed          bool           `bson:"removed"`
}

func (e *EthereumStore) ReceiptByTxHash(ctx context.Context, hash common.Hash) (*StoredReceipt, error) {
	filter := bson.M{"receipt.transactionHash": FormatHex(hash.Hex(), HashHexLen)}
	return GetOne[StoredReceipt](ctx, e.Store, CollReceipts, filter, nil)
}

func (e *EthereumStore) ReceiptsByBlockHash(ctx context.Context, hash common.Hash) ([]StoredReceipt, error) {
	filter := bson.M{"receipt.blockHash": FormatHex(hash.Hex(), HashHexLen)}
	return Get[StoredReceipt](ctx, e.Store, CollReceipts, filter, bson.D{{Key: "receipt.transactionIndex", Value: 1}}, 0)
}

func (e *EthereumStore) ReceiptsByBlockNumber(ctx context.Context, number uint64) ([]StoredReceipt, error) {
	filter := bson.M{"receipt.blockNumber": formatUint64(number)}
	return Get[StoredReceipt](ctx, e.Store, CollReceipts, filter, bson.D{{Key: "receipt.transactionIndex", Value: 1}}, 0)
}

func (e *EthereumStore) Logs(ctx context.Context, filter bson.M, limit int64) ([]StoredLog, error) {
	return Get[StoredLog](ctx, e.Store, CollLogs, filter, bson.D{
		{Key: "log.blockNumber", Value: 1},
		{Key: "log.logIndex", Value: 1},
	}, limit)
}
