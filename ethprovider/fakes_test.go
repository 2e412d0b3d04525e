package ethprovider

import (
	"context"
	"errors"
	"sort"

	"cosmossdk.io/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/kkrt-labs/kakarot-rpc-go/codec"
	"github.com/kkrt-labs/kakarot-rpc-go/config"
	"github.com/kkrt-labs/kakarot-rpc-go/indexstore"
	"github.com/kkrt-labs/kakarot-rpc-go/l2client"
)

// errContractNotFound matches l2client.IsNotFound, standing in for the L2
// node's "Contract not found" provider error.
var errContractNotFound = errors.New("Contract not found")

type fakeStore struct {
	headers  []indexstore.StoredHeader
	txs      map[common.Hash]indexstore.StoredTransaction
	pending  map[common.Hash]indexstore.StoredPendingTransaction
	receipts map[common.Hash]indexstore.StoredReceipt
	logs     []indexstore.StoredLog
	mappings []indexstore.StoredHashMapping

	deleted []common.Hash
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		txs:      map[common.Hash]indexstore.StoredTransaction{},
		pending:  map[common.Hash]indexstore.StoredPendingTransaction{},
		receipts: map[common.Hash]indexstore.StoredReceipt{},
	}
}

func (f *fakeStore) LatestHeader(context.Context) (*indexstore.StoredHeader, error) {
	if len(f.headers) == 0 {
		return nil, nil
	}
	latest := f.headers[0]
	for _, h := range f.headers[1:] {
		if h.Header.Number > latest.Header.Number {
			latest = h
		}
	}
	return &latest, nil
}

func (f *fakeStore) HeaderByHash(_ context.Context, hash common.Hash) (*indexstore.StoredHeader, error) {
	for _, h := range f.headers {
		if h.Header.Hash == hash {
			out := h
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) HeaderByNumber(_ context.Context, number uint64) (*indexstore.StoredHeader, error) {
	for _, h := range f.headers {
		if h.Header.Number == number {
			out := h
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) HeadersInRange(_ context.Context, from, to uint64) ([]indexstore.StoredHeader, error) {
	out := make([]indexstore.StoredHeader, 0)
	for _, h := range f.headers {
		if h.Header.Number >= from && h.Header.Number <= to {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Header.Number < out[j].Header.Number })
	return out, nil
}

func (f *fakeStore) Transaction(_ context.Context, hash common.Hash) (*indexstore.StoredTransaction, error) {
	if tx, ok := f.txs[hash]; ok {
		return &tx, nil
	}
	return nil, nil
}

func (f *fakeStore) PendingTransaction(_ context.Context, hash common.Hash) (*indexstore.StoredPendingTransaction, error) {
	if tx, ok := f.pending[hash]; ok {
		return &tx, nil
	}
	return nil, nil
}

func (f *fakeStore) PendingTransactionRetries(ctx context.Context, hash common.Hash) (uint8, error) {
	existing, _ := f.PendingTransaction(ctx, hash)
	if existing == nil {
		return 0, nil
	}
	return existing.Retries + 1, nil
}

func (f *fakeStore) TransactionsByBlockHash(_ context.Context, hash common.Hash) ([]indexstore.StoredTransaction, error) {
	out := make([]indexstore.StoredTransaction, 0)
	for _, tx := range f.txs {
		if tx.Tx.BlockHash != nil && *tx.Tx.BlockHash == hash {
			out = append(out, tx)
		}
	}
	sortByIndex(out)
	return out, nil
}

func (f *fakeStore) TransactionsByBlockNumber(_ context.Context, number uint64) ([]indexstore.StoredTransaction, error) {
	out := make([]indexstore.StoredTransaction, 0)
	for _, tx := range f.txs {
		if tx.Tx.BlockNumber != nil && *tx.Tx.BlockNumber == number {
			out = append(out, tx)
		}
	}
	sortByIndex(out)
	return out, nil
}

func sortByIndex(txs []indexstore.StoredTransaction) {
	sort.Slice(txs, func(i, j int) bool {
		var a, b uint64
		if txs[i].Tx.TransactionIndex != nil {
			a = *txs[i].Tx.TransactionIndex
		}
		if txs[j].Tx.TransactionIndex != nil {
			b = *txs[j].Tx.TransactionIndex
		}
		return a < b
	})
}

func (f *fakeStore) TransactionByBlockHashAndIndex(ctx context.Context, hash common.Hash, idx uint64) (*indexstore.StoredTransaction, error) {
	txs, _ := f.TransactionsByBlockHash(ctx, hash)
	for _, tx := range txs {
		if tx.Tx.TransactionIndex != nil && *tx.Tx.TransactionIndex == idx {
			out := tx
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) TransactionByBlockNumberAndIndex(ctx context.Context, number, idx uint64) (*indexstore.StoredTransaction, error) {
	txs, _ := f.TransactionsByBlockNumber(ctx, number)
	for _, tx := range txs {
		if tx.Tx.TransactionIndex != nil && *tx.Tx.TransactionIndex == idx {
			out := tx
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ReceiptByTxHash(_ context.Context, hash common.Hash) (*indexstore.StoredReceipt, error) {
	if r, ok := f.receipts[hash]; ok {
		return &r, nil
	}
	return nil, nil
}

func (f *fakeStore) ReceiptsByBlockNumber(_ context.Context, number uint64) ([]indexstore.StoredReceipt, error) {
	out := make([]indexstore.StoredReceipt, 0)
	for _, r := range f.receipts {
		if r.Receipt.BlockNumber == number {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) Logs(_ context.Context, _ bson.M, limit int64) ([]indexstore.StoredLog, error) {
	out := f.logs
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) UpsertPendingTransaction(_ context.Context, tx indexstore.StoredTx, retries uint8) error {
	f.pending[tx.Hash] = indexstore.StoredPendingTransaction{Tx: tx, Retries: retries}
	return nil
}

func (f *fakeStore) UpsertHashMapping(_ context.Context, m indexstore.StoredHashMapping) error {
	f.mappings = append(f.mappings, m)
	return nil
}

func (f *fakeStore) DeletePendingTransaction(_ context.Context, hash common.Hash) error {
	delete(f.pending, hash)
	f.deleted = append(f.deleted, hash)
	return nil
}

func (f *fakeStore) AllPendingTransactions(context.Context) ([]indexstore.StoredPendingTransaction, error) {
	out := make([]indexstore.StoredPendingTransaction, 0, len(f.pending))
	for _, tx := range f.pending {
		out = append(out, tx)
	}
	return out, nil
}

type fakeKernel struct {
	chainID        uint64
	blockNumber    uint64
	baseFee        *uint256.Int
	callResult     *l2client.CallResult
	estimateResult *l2client.EstimateGasResult
	protocolNonces map[string]*uint256.Int

	invokes []codec.InvokeTransaction
	l2Hash  *uint256.Int

	lastCallInput l2client.CallInput
}

func newFakeKernel() *fakeKernel {
	return &fakeKernel{
		chainID:        1263227476,
		baseFee:        uint256.NewInt(0x1234),
		protocolNonces: map[string]*uint256.Int{},
		l2Hash:         uint256.MustFromHex("0x4242424242424242424242424242424242424242424242424242424242"),
	}
}

func (f *fakeKernel) ComputeChainID(_ context.Context, out *uint64) error {
	*out = f.chainID
	return nil
}

func (f *fakeKernel) BlockNumber(context.Context) (uint64, error) { return f.blockNumber, nil }

func (f *fakeKernel) BaseFee(context.Context) (*uint256.Int, error) { return f.baseFee, nil }

func (f *fakeKernel) EthCall(_ context.Context, in l2client.CallInput) (*l2client.CallResult, error) {
	f.lastCallInput = in
	if f.callResult == nil {
		return &l2client.CallResult{Success: true}, nil
	}
	return f.callResult, nil
}

func (f *fakeKernel) EstimateGas(_ context.Context, in l2client.CallInput) (*l2client.EstimateGasResult, error) {
	f.lastCallInput = in
	if f.estimateResult == nil {
		return &l2client.EstimateGasResult{Success: true, RequiredGas: 21000}, nil
	}
	return f.estimateResult, nil
}

func (f *fakeKernel) ProtocolNonce(_ context.Context, s *uint256.Int) (*uint256.Int, error) {
	if n, ok := f.protocolNonces[s.Hex()]; ok {
		return n, nil
	}
	return nil, errContractNotFound
}

func (f *fakeKernel) AddInvokeTransaction(_ context.Context, inv codec.InvokeTransaction) (*uint256.Int, error) {
	f.invokes = append(f.invokes, inv)
	return f.l2Hash, nil
}

type fakeAccount struct {
	nonces      map[string]*uint256.Int
	bytecode    map[string][]*uint256.Int
	byteLen     map[string]int
	storage     map[string]codec.Felts
	initialized map[string]bool
}

func newFakeAccount() *fakeAccount {
	return &fakeAccount{
		nonces:      map[string]*uint256.Int{},
		bytecode:    map[string][]*uint256.Int{},
		byteLen:     map[string]int{},
		storage:     map[string]codec.Felts{},
		initialized: map[string]bool{},
	}
}

func (f *fakeAccount) GetNonce(_ context.Context, s *uint256.Int) (*uint256.Int, error) {
	if n, ok := f.nonces[s.Hex()]; ok {
		return n, nil
	}
	return nil, errContractNotFound
}

func (f *fakeAccount) Bytecode(_ context.Context, s *uint256.Int) ([]*uint256.Int, int, error) {
	if code, ok := f.bytecode[s.Hex()]; ok {
		return code, f.byteLen[s.Hex()], nil
	}
	return nil, 0, errContractNotFound
}

func (f *fakeAccount) Storage(_ context.Context, s, keyLow, keyHigh *uint256.Int) (codec.Felts, error) {
	key := s.Hex() + "/" + keyLow.Hex() + "/" + keyHigh.Hex()
	if v, ok := f.storage[key]; ok {
		return v, nil
	}
	return codec.Felts{}, errContractNotFound
}

func (f *fakeAccount) IsInitialized(_ context.Context, s *uint256.Int) (bool, error) {
	init, ok := f.initialized[s.Hex()]
	if !ok {
		return false, errContractNotFound
	}
	return init, nil
}

type fakeToken struct {
	balances map[string]codec.Felts
}

func newFakeToken() *fakeToken { return &fakeToken{balances: map[string]codec.Felts{}} }

func (f *fakeToken) BalanceOf(_ context.Context, s *uint256.Int) (codec.Felts, error) {
	if b, ok := f.balances[s.Hex()]; ok {
		return b, nil
	}
	return codec.Felts{Low: uint256.NewInt(0), High: uint256.NewInt(0)}, nil
}

type fixture struct {
	store   *fakeStore
	kernel  *fakeKernel
	account *fakeAccount
	token   *fakeToken
	cfg     *config.Config
	p       *Provider
}

func newFixture() *fixture {
	cfg := &config.Config{
		KakarotAddress:                uint256.MustFromHex("0x11c5faab8a76b3caff6e243b8d13059a7fb723a0ca12bbaadde95fb9e501bda"),
		UninitializedAccountClassHash: uint256.MustFromHex("0x600"),
		AccountContractClassHash:      uint256.MustFromHex("0x601"),
		RetryTxIntervalSeconds:        1,
		TransactionMaxRetries:         3,
	}
	f := &fixture{
		store:   newFakeStore(),
		kernel:  newFakeKernel(),
		account: newFakeAccount(),
		token:   newFakeToken(),
		cfg:     cfg,
	}
	f.p = New(f.store, f.kernel, f.account, f.token, cfg, log.NewNopLogger())
	return f
}

// fund gives the account at derive(addr) a native-token balance and zeroed
// nonces so the admission validator passes.
func (f *fixture) fund(addr common.Address, balance *uint256.Int) {
	s := f.p.derive(addr)
	f.token.balances[s.Hex()] = codec.SplitU256(balance)
	f.account.nonces[s.Hex()] = uint256.NewInt(0)
}

func header(number uint64, hash common.Hash) indexstore.StoredHeader {
	return indexstore.StoredHeader{Header: indexstore.Header{Number: number, Hash: hash, GasLimit: 30_000_000}}
}
