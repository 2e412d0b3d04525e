// Package tracing replays a block's transactions through a real EVM
// interpreter over a lazy state view, plus Geth/Parity trace formatting.
// State objects are loaded on first miss and cached for the life of the
// snapshot; all reads go through the provider, pinned at a parent block.
package tracing

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/kkrt-labs/kakarot-rpc-go/apierror"
	"github.com/kkrt-labs/kakarot-rpc-go/ethprovider"
	"github.com/kkrt-labs/kakarot-rpc-go/rpctypes"
)

// account is the lazily-loaded, in-process-cached view of one address,
// mirroring state_object.go's stateObject: origin storage is read through
// once then cached, dirty storage from replay never reaches the L2.
type account struct {
	loaded  bool
	nonce   uint64
	balance *uint256.Int
	code    []byte
	exists  bool

	origin map[common.Hash]common.Hash
	dirty  map[common.Hash]common.Hash
}

func newAccount() *account {
	return &account{origin: map[common.Hash]common.Hash{}, dirty: map[common.Hash]common.Hash{}}
}

// Snapshot is the EthDatabaseSnapshot: an EVM-interpreter-compatible
// database layered on the eth provider, pinned to a parent block, with
// every read cached
// in-process after the first miss and every write landing only in the
// cache. It is task-local: callers create one per
// trace invocation and discard it afterward.
type Snapshot struct {
	ctx         context.Context
	provider    *ethprovider.Provider
	parentBlock uint64

	accounts map[common.Address]*account
	codes    map[common.Hash][]byte

	refund uint64
	logs   []*types.Log

	journal []journalEntry
}

// journalEntry supports RevertToSnapshot for reverted sub-calls; only the
// fields this tracer's EVM invocations can actually mutate need entries.
type journalEntry interface {
	revert(s *Snapshot)
}

func NewSnapshot(ctx context.Context, provider *ethprovider.Provider, parentBlock uint64) *Snapshot {
	return &Snapshot{
		ctx:         ctx,
		provider:    provider,
		parentBlock: parentBlock,
		accounts:    map[common.Address]*account{},
		codes:       map[common.Hash][]byte{},
	}
}

func (s *Snapshot) account(addr common.Address) *account {
	a, ok := s.accounts[addr]
	if !ok {
		a = newAccount()
		s.accounts[addr] = a
	}
	if !a.loaded {
		s.load(addr, a)
		a.loaded = true
	}
	return a
}

// load fetches nonce/balance/code from the provider as of the parent
// block. The live-state reads ethprovider
// exposes have no historical parameter; the parent-block
// pin is therefore advisory, matching a kernel whose account-contract reads
// always reflect current L2 state.
func (s *Snapshot) load(addr common.Address, a *account) {
	nonce, err := s.provider.TransactionCount(s.ctx, addr)
	if err == nil {
		a.nonce = nonce
	}
	balance, err := s.provider.Balance(s.ctx, addr)
	if err == nil && balance != nil {
		a.balance = balance
	} else {
		a.balance = new(uint256.Int)
	}
	code, err := s.provider.GetCode(s.ctx, addr)
	if err == nil {
		a.code = code
	}
	a.exists = a.nonce != 0 || (a.balance != nil && !a.balance.IsZero()) || len(a.code) > 0
}

// basic returns the account's code, nonce and balance view.
func (s *Snapshot) basic(addr common.Address) *account {
	return s.account(addr)
}

// codeByHash returns from the local
// cache only, never reaching back to the provider.
func (s *Snapshot) codeByHash(h common.Hash) []byte {
	return s.codes[h]
}

// storage is a single-slot read
// via the provider, cached thereafter.
func (s *Snapshot) storage(addr common.Address, index common.Hash) common.Hash {
	a := s.account(addr)
	if v, ok := a.dirty[index]; ok {
		return v
	}
	if v, ok := a.origin[index]; ok {
		return v
	}
	idx := new(big.Int).SetBytes(index.Bytes())
	value, err := s.provider.StorageAt(s.ctx, addr, uint256.MustFromBig(idx))
	if err != nil {
		value = common.Hash{}
	}
	a.origin[index] = value
	return value
}

// blockHash resolves a block number to its header hash via the provider;
// a missing block is UnknownBlock.
func (s *Snapshot) blockHash(number uint64) (common.Hash, error) {
	bn := rpctypes.BlockNumber{Number: number}
	block, err := s.provider.BlockByNumber(s.ctx, bn, false)
	if err != nil {
		return common.Hash{}, err
	}
	if block == nil {
		return common.Hash{}, apierror.UnknownBlock(fmt.Sprintf("%d", bn.Number))
	}
	return block.Hash, nil
}

func (s *Snapshot) setBalance(addr common.Address, v *uint256.Int) {
	a := s.account(addr)
	prev := new(uint256.Int).Set(a.balance)
	s.journal = append(s.journal, balanceEntry{addr: addr, prev: prev})
	a.balance = v
}

func (s *Snapshot) setNonce(addr common.Address, n uint64) {
	a := s.account(addr)
	prev := a.nonce
	s.journal = append(s.journal, nonceEntry{addr: addr, prev: prev})
	a.nonce = n
}

func (s *Snapshot) setCode(addr common.Address, code []byte) {
	a := s.account(addr)
	prev := a.code
	s.journal = append(s.journal, codeEntry{addr: addr, prev: prev})
	a.code = code
	s.codes[crypto.Keccak256Hash(code)] = code
}

func (s *Snapshot) setStorage(addr common.Address, key, value common.Hash) {
	a := s.account(addr)
	prev, had := a.dirty[key]
	if !had {
		prev = s.storage(addr, key)
	}
	s.journal = append(s.journal, storageEntry{addr: addr, key: key, prev: prev})
	a.dirty[key] = value
}

type balanceEntry struct {
	addr common.Address
	prev *uint256.Int
}

func (e balanceEntry) revert(s *Snapshot) { s.account(e.addr).balance = e.prev }

type nonceEntry struct {
	addr common.Address
	prev uint64
}

func (e nonceEntry) revert(s *Snapshot) { s.account(e.addr).nonce = e.prev }

type codeEntry struct {
	addr common.Address
	prev []byte
}

func (e codeEntry) revert(s *Snapshot) { s.account(e.addr).code = e.prev }

type storageEntry struct {
	addr common.Address
	key  common.Hash
	prev common.Hash
}

func (e storageEntry) revert(s *Snapshot) { s.account(e.addr).dirty[e.key] = e.prev }

// Snap returns a journal index callers can later pass to Revert, mirroring
// vm.StateDB's Snapshot()/RevertToSnapshot(int) contract.
func (s *Snapshot) Snap() int { return len(s.journal) }

// Revert undoes every journal entry recorded since id, in reverse order.
func (s *Snapshot) Revert(id int) {
	for i := len(s.journal) - 1; i >= id; i-- {
		s.journal[i].revert(s)
	}
	s.journal = s.journal[:id]
}

// sortedStorageKeys returns a storage map's keys in ascending numeric order,
// for deterministic iteration over an account's storage. Nothing in this
// package calls it.
func sortedStorageKeys(m map[common.Hash]common.Hash) []common.Hash {
	keys := make([]common.Hash, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Big().Cmp(keys[j].Big()) < 0 })
	return keys
}
