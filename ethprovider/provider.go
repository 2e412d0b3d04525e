// Package ethprovider implements the Ethereum provider façade answering
// every Ethereum JSON-RPC read and the send_raw_transaction write path,
// composing codec, indexstore and l2client.
package ethprovider

import (
	"context"
	"sync"

	"cosmossdk.io/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/kkrt-labs/kakarot-rpc-go/apierror"
	"github.com/kkrt-labs/kakarot-rpc-go/codec"
	"github.com/kkrt-labs/kakarot-rpc-go/config"
	"github.com/kkrt-labs/kakarot-rpc-go/indexstore"
	"github.com/kkrt-labs/kakarot-rpc-go/l2client"
	"github.com/kkrt-labs/kakarot-rpc-go/mempool"
	"github.com/kkrt-labs/kakarot-rpc-go/rpctypes"
)

// CallRequestGasLimit is the default gas limit for eth_call when none is
// given.
const CallRequestGasLimit = 50_000_000

// IndexStore is the slice of the document store the provider reads and
// writes, satisfied by *indexstore.EthereumStore.
type IndexStore interface {
	LatestHeader(ctx context.Context) (*indexstore.StoredHeader, error)
	HeaderByHash(ctx context.Context, hash common.Hash) (*indexstore.StoredHeader, error)
	HeaderByNumber(ctx context.Context, number uint64) (*indexstore.StoredHeader, error)
	HeadersInRange(ctx context.Context, from, to uint64) ([]indexstore.StoredHeader, error)
	Transaction(ctx context.Context, hash common.Hash) (*indexstore.StoredTransaction, error)
	PendingTransaction(ctx context.Context, hash common.Hash) (*indexstore.StoredPendingTransaction, error)
	PendingTransactionRetries(ctx context.Context, hash common.Hash) (uint8, error)
	TransactionsByBlockHash(ctx context.Context, hash common.Hash) ([]indexstore.StoredTransaction, error)
	TransactionsByBlockNumber(ctx context.Context, number uint64) ([]indexstore.StoredTransaction, error)
	TransactionByBlockHashAndIndex(ctx context.Context, hash common.Hash, idx uint64) (*indexstore.StoredTransaction, error)
	TransactionByBlockNumberAndIndex(ctx context.Context, number, idx uint64) (*indexstore.StoredTransaction, error)
	ReceiptByTxHash(ctx context.Context, hash common.Hash) (*indexstore.StoredReceipt, error)
	ReceiptsByBlockNumber(ctx context.Context, number uint64) ([]indexstore.StoredReceipt, error)
	Logs(ctx context.Context, filter bson.M, limit int64) ([]indexstore.StoredLog, error)
	UpsertPendingTransaction(ctx context.Context, tx indexstore.StoredTx, retries uint8) error
	UpsertHashMapping(ctx context.Context, m indexstore.StoredHashMapping) error
	DeletePendingTransaction(ctx context.Context, hash common.Hash) error
	AllPendingTransactions(ctx context.Context) ([]indexstore.StoredPendingTransaction, error)
}

// Kernel is the EVM-kernel view the provider calls, satisfied by
// *l2client.KernelReader.
type Kernel interface {
	ComputeChainID(ctx context.Context, out *uint64) error
	BlockNumber(ctx context.Context) (uint64, error)
	BaseFee(ctx context.Context) (*uint256.Int, error)
	EthCall(ctx context.Context, in l2client.CallInput) (*l2client.CallResult, error)
	EstimateGas(ctx context.Context, in l2client.CallInput) (*l2client.EstimateGasResult, error)
	ProtocolNonce(ctx context.Context, s *uint256.Int) (*uint256.Int, error)
	AddInvokeTransaction(ctx context.Context, inv codec.InvokeTransaction) (*uint256.Int, error)
}

// AccountContract is the deployed-account view, satisfied by
// *l2client.AccountReader.
type AccountContract interface {
	GetNonce(ctx context.Context, s *uint256.Int) (*uint256.Int, error)
	Bytecode(ctx context.Context, s *uint256.Int) ([]*uint256.Int, int, error)
	Storage(ctx context.Context, s, keyLow, keyHigh *uint256.Int) (codec.Felts, error)
	IsInitialized(ctx context.Context, s *uint256.Int) (bool, error)
}

// NativeToken is the fee-token view, satisfied by *l2client.TokenReader.
type NativeToken interface {
	BalanceOf(ctx context.Context, s *uint256.Int) (codec.Felts, error)
}

// Provider is the Ethereum provider façade: the index store answers
// historical reads, the L2 readers answer live-state reads, and the write
// path translates signed Ethereum transactions into native invokes.
type Provider struct {
	store   IndexStore
	kernel  Kernel
	account AccountContract
	token   NativeToken
	cfg     *config.Config
	logger  log.Logger

	chainIDOnce sync.Once
	chainID     uint64
	chainIDErr  error

	// TestingMode makes send_raw_transaction return the L2 hash instead of
	// the Ethereum hash. Must never be true outside test wiring.
	TestingMode bool

	// Hive deployer bookkeeping, guarded by
	// deployerMu, held only across the submission of the deploy-EOA
	// invocation and the nonce increment.
	deployerMu    sync.Mutex
	deployerNonce *uint256.Int

	validatorOnce sync.Once
	validator     *mempool.Validator
}

func New(store IndexStore, kernel Kernel, account AccountContract, token NativeToken, cfg *config.Config, logger log.Logger) *Provider {
	return &Provider{
		store:       store,
		kernel:      kernel,
		account:     account,
		token:       token,
		cfg:         cfg,
		logger:      logger.With("module", "eth_provider"),
		TestingMode: cfg.Testing,
	}
}

// derive computes S = derive(addr) using the configured account class hash
// and kakarot address.
func (p *Provider) derive(addr common.Address) *uint256.Int {
	return codec.DeriveL2Address(addr, p.cfg.AccountContractClassHash, p.cfg.KakarotAddress)
}

// ChainID returns the L2 chain id masked to 32 bits, cached after the
// first successful fetch.
func (p *Provider) ChainID(ctx context.Context) (uint64, error) {
	p.chainIDOnce.Do(func() {
		var raw uint64
		if err := p.kernel.ComputeChainID(ctx, &raw); err != nil {
			p.chainIDErr = err
			return
		}
		p.chainID = config.ChainIDMask(raw)
	})
	return p.chainID, p.chainIDErr
}

// BlockNumber implements eth_blockNumber: latest header in the index;
// falls back to the L2's own block_number if the index is empty; if the
// latest stored header is the pending L2 block (hash==0), returns number-1.
func (p *Provider) BlockNumber(ctx context.Context) (uint64, error) {
	h, err := p.store.LatestHeader(ctx)
	if err != nil {
		return 0, apierror.DatabaseError(err)
	}
	if h == nil {
		n, err := p.kernel.BlockNumber(ctx)
		if err != nil {
			return 0, apierror.UnknownBlockNumber()
		}
		return n, nil
	}
	if h.Header.Hash == (common.Hash{}) {
		if h.Header.Number == 0 {
			return 0, apierror.UnknownBlockNumber()
		}
		return h.Header.Number - 1, nil
	}
	return h.Header.Number, nil
}

func (p *Provider) resolveBlockNumber(ctx context.Context, bn rpctypes.BlockNumber) (uint64, error) {
	return bn.Resolve(func() (uint64, error) { return p.BlockNumber(ctx) })
}

// validatorFor lazily builds the admission validator once chain id is known,
// since mempool.NewValidator needs it to check chain-id mismatches.
func (p *Provider) validatorFor(ctx context.Context) (*mempool.Validator, error) {
	chainID, err := p.ChainID(ctx)
	if err != nil {
		return nil, err
	}
	p.validatorOnce.Do(func() {
		p.validator = mempool.NewValidator(chainID, mempool.DefaultBlockGasLimit, p)
	})
	return p.validator, nil
}

// BlockByNumber implements eth_getBlockByNumber.
func (p *Provider) BlockByNumber(ctx context.Context, bn rpctypes.BlockNumber, full bool) (*rpctypes.Block, error) {
	number, err := p.resolveBlockNumber(ctx, bn)
	if err != nil {
		return nil, err
	}
	h, err := p.store.HeaderByNumber(ctx, number)
	if err != nil {
		return nil, apierror.DatabaseError(err)
	}
	if h == nil {
		return nil, nil
	}
	return p.formatBlockFromHeader(ctx, h, full)
}

// BlockByHash implements eth_getBlockByHash.
func (p *Provider) BlockByHash(ctx context.Context, hash common.Hash, full bool) (*rpctypes.Block, error) {
	h, err := p.store.HeaderByHash(ctx, hash)
	if err != nil {
		return nil, apierror.DatabaseError(err)
	}
	if h == nil {
		return nil, nil
	}
	return p.formatBlockFromHeader(ctx, h, full)
}

func (p *Provider) formatBlockFromHeader(ctx context.Context, h *indexstore.StoredHeader, full bool) (*rpctypes.Block, error) {
	if h.Header.WithdrawalsRoot != nil && *h.Header.WithdrawalsRoot != types.EmptyWithdrawalsHash {
		return nil, apierror.Unsupported("withdrawals")
	}

	storedTxs, err := p.store.TransactionsByBlockNumber(ctx, h.Header.Number)
	if err != nil {
		return nil, apierror.DatabaseError(err)
	}

	chainID, err := p.ChainID(ctx)
	if err != nil {
		return nil, err
	}

	txs := make([]rpctypes.RPCTransaction, len(storedTxs))
	for i, t := range storedTxs {
		txs[i] = rpctypes.FormatTransaction(t.Tx, chainID)
	}

	block, err := rpctypes.FormatBlock(h.Header, txs, full)
	if err != nil {
		return nil, apierror.EthereumDataFormat(err)
	}
	return block, nil
}

// BlockTransactionCountByHash / ByNumber count the stored transactions
// referencing the block, nil if the block itself is absent.
func (p *Provider) BlockTransactionCountByHash(ctx context.Context, hash common.Hash) (*uint64, error) {
	h, err := p.store.HeaderByHash(ctx, hash)
	if err != nil {
		return nil, apierror.DatabaseError(err)
	}
	if h == nil {
		return nil, nil
	}
	txs, err := p.store.TransactionsByBlockHash(ctx, hash)
	if err != nil {
		return nil, apierror.DatabaseError(err)
	}
	n := uint64(len(txs))
	return &n, nil
}

func (p *Provider) BlockTransactionCountByNumber(ctx context.Context, bn rpctypes.BlockNumber) (*uint64, error) {
	number, err := p.resolveBlockNumber(ctx, bn)
	if err != nil {
		return nil, err
	}
	h, err := p.store.HeaderByNumber(ctx, number)
	if err != nil {
		return nil, apierror.DatabaseError(err)
	}
	if h == nil {
		return nil, nil
	}
	txs, err := p.store.TransactionsByBlockNumber(ctx, number)
	if err != nil {
		return nil, apierror.DatabaseError(err)
	}
	n := uint64(len(txs))
	return &n, nil
}

// BlockTransactions returns a block's stored transactions in the order the
// index store returns them (by transaction index); the tracing builder uses
// it to pin a block.
func (p *Provider) BlockTransactions(ctx context.Context, bn rpctypes.BlockNumber) ([]indexstore.StoredTransaction, error) {
	number, err := p.resolveBlockNumber(ctx, bn)
	if err != nil {
		return nil, err
	}
	return p.store.TransactionsByBlockNumber(ctx, number)
}
