package tracing

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core"
	gethtracing "github.com/ethereum/go-ethereum/core/tracing"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/params"

	"github.com/kkrt-labs/kakarot-rpc-go/apierror"
	"github.com/kkrt-labs/kakarot-rpc-go/ethprovider"
	"github.com/kkrt-labs/kakarot-rpc-go/indexstore"
	"github.com/kkrt-labs/kakarot-rpc-go/rpctypes"
)

// TracingBlockGasLimit is the fixed block gas limit the tracing engine's
// synthetic block env uses, unrelated to the indexed header's own gas_limit
// which may let a trace succeed where a real block would have rejected the
// transaction for exceeding its block gas limit. Deliberate: replay should
// show what the transaction did, not re-litigate block packing.
const TracingBlockGasLimit = 1_000_000_000

// TracingOption selects the inspector/output shape a built Tracer uses.
type TracingOption int

const (
	Geth TracingOption = iota
	Parity
	GethCall
)

// Builder is a two-state builder: floating (only chain id known) -> pin to
// a block id or transaction hash -> Pinned -> Build.
type Builder struct {
	ctx      context.Context
	provider *ethprovider.Provider
	chainID  uint64
}

func NewBuilder(ctx context.Context, provider *ethprovider.Provider, chainID uint64) *Builder {
	return &Builder{ctx: ctx, provider: provider, chainID: chainID}
}

// Pinned is the builder after pinning to a concrete, already-mined block.
type Pinned struct {
	ctx      context.Context
	provider *ethprovider.Provider
	chainID  uint64

	block *rpctypes.Block
	txs   []indexstore.StoredTx

	snapshot *Snapshot
}

// PinBlock loads the block and its transactions; pinning to a pending
// block (hash==0) fails UnknownBlock.
func (b *Builder) PinBlock(bn rpctypes.BlockNumber) (*Pinned, error) {
	number, err := bn.Resolve(func() (uint64, error) { return b.provider.BlockNumber(b.ctx) })
	if err != nil {
		return nil, err
	}
	block, err := b.provider.BlockByNumber(b.ctx, rpctypes.BlockNumber{Number: number}, false)
	if err != nil {
		return nil, err
	}
	if block == nil {
		return nil, apierror.UnknownBlock(fmt.Sprintf("%d", number))
	}
	txs, err := b.provider.BlockTransactions(b.ctx, rpctypes.BlockNumber{Number: number})
	if err != nil {
		return nil, err
	}

	storedTxs := make([]indexstore.StoredTx, len(txs))
	for i, t := range txs {
		storedTxs[i] = t.Tx
	}

	return &Pinned{
		ctx:      b.ctx,
		provider: b.provider,
		chainID:  b.chainID,
		block:    block,
		txs:      storedTxs,
		snapshot: NewSnapshot(b.ctx, b.provider, parentOf(number)),
	}, nil
}

// PinTransaction locates the owning block of a mined transaction, then
// pins it, returning the transaction's index within the block.
func (b *Builder) PinTransaction(hash common.Hash) (*Pinned, uint64, error) {
	tx, err := b.provider.TransactionByHash(b.ctx, hash)
	if err != nil {
		return nil, 0, err
	}
	if tx == nil || tx.BlockNumber == nil {
		return nil, 0, apierror.TransactionNotFound(hash.Hex())
	}
	number := uint64(tx.BlockNumber.ToInt().Int64())
	pinned, err := b.PinBlock(rpctypes.BlockNumber{Number: number})
	if err != nil {
		return nil, 0, err
	}
	index := uint64(0)
	if tx.TransactionIndex != nil {
		index = uint64(*tx.TransactionIndex)
	}
	return pinned, index, nil
}

func parentOf(number uint64) uint64 {
	if number == 0 {
		return 0
	}
	return number - 1
}

// Build constructs the Tracer for the given inspector kind.
func (p *Pinned) Build(kind TracingOption) *Tracer {
	return &Tracer{pinned: p, kind: kind}
}

// Tracer replays a pinned block's transactions through a real EVM
// interpreter.
type Tracer struct {
	pinned *Pinned
	kind   TracingOption
}

// CallFrame is the shared call-tree shape both Geth and Parity output
// formats are built from.
type CallFrame struct {
	Type    string          `json:"type"`
	From    common.Address  `json:"from"`
	To      *common.Address `json:"to,omitempty"`
	Value   *hexutil.Big    `json:"value,omitempty"`
	Gas     hexutil.Uint64  `json:"gas"`
	GasUsed hexutil.Uint64  `json:"gasUsed"`
	Input   hexutil.Bytes   `json:"input"`
	Output  hexutil.Bytes   `json:"output,omitempty"`
	Error   string          `json:"error,omitempty"`
	Calls   []*CallFrame    `json:"calls,omitempty"`
}

// TraceResult is one transaction's trace; Geth and Parity both reduce to a
// root CallFrame, formatted at the RPC boundary depending on TracingOption.
type TraceResult struct {
	TxHash common.Hash `json:"txHash"`
	Root   *CallFrame  `json:"result"`
	Failed bool        `json:"-"`
}

// TraceBlock iterates the pinned block's transactions in order, committing
// each one's effects into the snapshot cache so later transactions observe
// prior state.
func (t *Tracer) TraceBlock() ([]TraceResult, error) {
	results := make([]TraceResult, 0, len(t.pinned.txs))
	for _, stx := range t.pinned.txs {
		r, err := t.traceOne(stx, true)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

// TraceTransaction implements debug_traceTransaction: preceding
// transactions are replayed commit-only (no trace collection), then the
// target transaction is traced once.
func (t *Tracer) TraceTransaction(index uint64) (*TraceResult, error) {
	for i, stx := range t.pinned.txs {
		if uint64(i) == index {
			r, err := t.traceOne(stx, true)
			if err != nil {
				return nil, err
			}
			return &r, nil
		}
		if _, err := t.traceOne(stx, false); err != nil {
			return nil, err
		}
	}
	return nil, apierror.TransactionNotFound("index out of range")
}

// TraceCall implements debug_traceCall: a single call-env built from a
// request, run once against the pinned parent state without committing or
// advancing nonce.
func (t *Tracer) TraceCall(req ethprovider.CallRequest) (*CallFrame, error) {
	from := common.Address{}
	if req.From != nil {
		from = *req.From
	}
	gas := uint64(ethprovider.CallRequestGasLimit)
	if req.Gas != nil {
		gas = uint64(*req.Gas)
	}
	value := new(big.Int)
	if req.Value != nil {
		value = req.Value.ToInt()
	}
	gasPrice := new(big.Int)
	if req.GasPrice != nil {
		gasPrice = req.GasPrice.ToInt()
	}

	msg := &core.Message{
		From:             from,
		To:               req.To,
		Value:            value,
		GasLimit:         gas,
		GasPrice:         gasPrice,
		GasFeeCap:        gasPrice,
		GasTipCap:        gasPrice,
		Data:             req.Data,
		SkipNonceChecks:  true,
		SkipFromEOACheck: true,
	}

	root, _, err := t.run(msg)
	return root, err
}

func (t *Tracer) traceOne(stx indexstore.StoredTx, collect bool) (TraceResult, error) {
	if stx.RunOutOfResources {
		root := defaultFailure(stx)
		t.pinned.snapshot.setNonce(stx.From, stx.Nonce+1)
		return TraceResult{TxHash: stx.Hash, Root: root, Failed: true}, nil
	}

	signer := types.LatestSignerForChainID(new(big.Int).SetUint64(t.pinned.chainID))
	tx, err := toTypesTransaction(stx)
	if err != nil {
		return TraceResult{}, apierror.EthereumDataFormat(err)
	}
	msg, err := core.TransactionToMessage(tx, signer, nil)
	if err != nil {
		return TraceResult{}, apierror.EthereumDataFormat(err)
	}

	root, failed, err := t.run(msg)
	if err != nil {
		return TraceResult{}, err
	}
	if !collect {
		return TraceResult{}, nil
	}
	return TraceResult{TxHash: stx.Hash, Root: root, Failed: failed}, nil
}

func (t *Tracer) run(msg *core.Message) (*CallFrame, bool, error) {
	snapshot := t.pinned.snapshot
	sdb := newStateDB(snapshot)

	collector := newCallCollector()

	block := t.pinned.block
	blockCtx := vm.BlockContext{
		CanTransfer: core.CanTransfer,
		Transfer:    core.Transfer,
		GetHash: func(n uint64) common.Hash {
			h, _ := snapshot.blockHash(n)
			return h
		},
		Coinbase:    block.Miner,
		GasLimit:    TracingBlockGasLimit,
		BlockNumber: new(big.Int).SetUint64(uint64(block.Number)),
		Time:        uint64(block.Timestamp),
		Difficulty:  block.Difficulty.ToInt(),
		BaseFee:     new(big.Int),
		BlobBaseFee: new(big.Int),
	}
	if block.BaseFeePerGas != nil {
		blockCtx.BaseFee = block.BaseFeePerGas.ToInt()
	}
	// prevrandao carries the block's difficulty bytes.
	prevrandao := common.BigToHash(block.Difficulty.ToInt())
	blockCtx.Random = &prevrandao

	vmConfig := vm.Config{Tracer: collector.hooks()}

	evm := vm.NewEVM(blockCtx, sdb, chainConfig(t.pinned.chainID), vmConfig)
	evm.SetTxContext(core.NewEVMTxContext(msg))

	gp := new(core.GasPool).AddGas(msg.GasLimit)
	result, err := core.ApplyMessage(evm, msg, gp)
	if err != nil {
		return nil, true, apierror.TracingFailed(err)
	}

	root := collector.root
	if root == nil {
		root = &CallFrame{Type: "CALL", From: msg.From, To: msg.To, Gas: hexutil.Uint64(msg.GasLimit)}
	}
	root.GasUsed = hexutil.Uint64(result.UsedGas)
	if result.Err != nil {
		root.Error = result.Err.Error()
	}
	return root, result.Failed(), nil
}

// chainConfig is the replay handler configuration: the latest supported
// hardforks, with every block-scheduled fork at genesis
// and the time-scheduled ones active from t=0.
func chainConfig(chainID uint64) *params.ChainConfig {
	zero := uint64(0)
	return &params.ChainConfig{
		ChainID:                 new(big.Int).SetUint64(chainID),
		HomesteadBlock:          big.NewInt(0),
		EIP150Block:             big.NewInt(0),
		EIP155Block:             big.NewInt(0),
		EIP158Block:             big.NewInt(0),
		ByzantiumBlock:          big.NewInt(0),
		ConstantinopleBlock:     big.NewInt(0),
		PetersburgBlock:         big.NewInt(0),
		IstanbulBlock:           big.NewInt(0),
		BerlinBlock:             big.NewInt(0),
		LondonBlock:             big.NewInt(0),
		MergeNetsplitBlock:      big.NewInt(0),
		TerminalTotalDifficulty: big.NewInt(0),
		ShanghaiTime:            &zero,
		CancunTime:              &zero,
	}
}

func toTypesTransaction(stx indexstore.StoredTx) (*types.Transaction, error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(stx.RawRLP); err != nil {
		return nil, err
	}
	return tx, nil
}

// defaultFailure synthesizes a failed trace for a transaction the indexer
// flagged as out-of-resources,
// without spending any tracing gas on real execution.
func defaultFailure(stx indexstore.StoredTx) *CallFrame {
	return &CallFrame{
		Type:    "CALL",
		From:    stx.From,
		To:      stx.To,
		Gas:     hexutil.Uint64(stx.Gas),
		GasUsed: hexutil.Uint64(stx.Gas),
		Input:   stx.Input,
		Error:   "out of resources",
	}
}

// callCollector builds a CallFrame tree from OnEnter/OnExit tracing hooks.
type callCollector struct {
	stack []*CallFrame
	root  *CallFrame
}

func newCallCollector() *callCollector { return &callCollector{} }

func (c *callCollector) hooks() *gethtracing.Hooks {
	return &gethtracing.Hooks{
		OnEnter: c.onEnter,
		OnExit:  c.onExit,
	}
}

func (c *callCollector) onEnter(depth int, typ byte, from, to common.Address, input []byte, gas uint64, value *big.Int) {
	frame := &CallFrame{
		Type:  vm.OpCode(typ).String(),
		From:  from,
		To:    &to,
		Gas:   hexutil.Uint64(gas),
		Input: append([]byte(nil), input...),
	}
	if value != nil && value.Sign() != 0 {
		v := hexutil.Big(*value)
		frame.Value = &v
	}
	if depth == 0 {
		c.root = frame
	} else if len(c.stack) > 0 {
		parent := c.stack[len(c.stack)-1]
		parent.Calls = append(parent.Calls, frame)
	}
	c.stack = append(c.stack, frame)
}

func (c *callCollector) onExit(depth int, output []byte, gasUsed uint64, err error, reverted bool) {
	if len(c.stack) == 0 {
		return
	}
	frame := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	frame.GasUsed = hexutil.Uint64(gasUsed)
	frame.Output = append([]byte(nil), output...)
	if err != nil {
		frame.Error = err.Error()
	}
}
