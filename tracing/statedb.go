package tracing

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/state"
	"github.com/ethereum/go-ethereum/core/stateless"
	"github.com/ethereum/go-ethereum/core/tracing"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/params"
	"github.com/ethereum/go-ethereum/trie/utils"
	"github.com/holiman/uint256"
)

// stateDB adapts Snapshot to go-ethereum's vm.StateDB contract so core/vm's
// real interpreter can run against it directly. Every mutating method only
// ever touches Snapshot's in-process cache; nothing here writes back to the
// L2.
type stateDB struct {
	s *Snapshot

	accessListAddrs map[common.Address]struct{}
	accessListSlots map[common.Address]map[common.Hash]struct{}
	destructed      map[common.Address]bool
	created         map[common.Address]bool
	transient       map[common.Address]map[common.Hash]common.Hash
}

func newStateDB(s *Snapshot) *stateDB {
	return &stateDB{
		s:               s,
		accessListAddrs: map[common.Address]struct{}{},
		accessListSlots: map[common.Address]map[common.Hash]struct{}{},
		destructed:      map[common.Address]bool{},
		created:         map[common.Address]bool{},
		transient:       map[common.Address]map[common.Hash]common.Hash{},
	}
}

func (d *stateDB) CreateAccount(addr common.Address) { d.s.account(addr) }

func (d *stateDB) CreateContract(addr common.Address) { d.created[addr] = true }

func (d *stateDB) SubBalance(addr common.Address, amount *uint256.Int, _ tracing.BalanceChangeReason) uint256.Int {
	a := d.s.account(addr)
	prev := *a.balance
	d.s.setBalance(addr, new(uint256.Int).Sub(a.balance, amount))
	return prev
}

func (d *stateDB) AddBalance(addr common.Address, amount *uint256.Int, _ tracing.BalanceChangeReason) uint256.Int {
	a := d.s.account(addr)
	prev := *a.balance
	d.s.setBalance(addr, new(uint256.Int).Add(a.balance, amount))
	return prev
}

func (d *stateDB) GetBalance(addr common.Address) *uint256.Int { return d.s.account(addr).balance }

func (d *stateDB) GetNonce(addr common.Address) uint64 { return d.s.account(addr).nonce }

func (d *stateDB) SetNonce(addr common.Address, nonce uint64, _ tracing.NonceChangeReason) {
	d.s.setNonce(addr, nonce)
}

func (d *stateDB) GetCodeHash(addr common.Address) common.Hash {
	code := d.s.account(addr).code
	if len(code) == 0 {
		return types.EmptyCodeHash
	}
	return keccakHash(code)
}

func (d *stateDB) GetCode(addr common.Address) []byte { return d.s.account(addr).code }

func (d *stateDB) SetCode(addr common.Address, code []byte) []byte {
	prev := d.s.account(addr).code
	d.s.setCode(addr, code)
	return prev
}

func (d *stateDB) GetCodeSize(addr common.Address) int { return len(d.s.account(addr).code) }

func (d *stateDB) AddRefund(amount uint64) { d.s.refund += amount }

func (d *stateDB) SubRefund(amount uint64) {
	if amount > d.s.refund {
		d.s.refund = 0
		return
	}
	d.s.refund -= amount
}

func (d *stateDB) GetRefund() uint64 { return d.s.refund }

func (d *stateDB) GetCommittedState(addr common.Address, key common.Hash) common.Hash {
	if v, ok := d.s.account(addr).origin[key]; ok {
		return v
	}
	return d.s.storage(addr, key)
}

func (d *stateDB) GetState(addr common.Address, key common.Hash) common.Hash {
	a := d.s.account(addr)
	if v, ok := a.dirty[key]; ok {
		return v
	}
	return d.s.storage(addr, key)
}

func (d *stateDB) SetState(addr common.Address, key, value common.Hash) common.Hash {
	prev := d.GetState(addr, key)
	if prev == value {
		return prev
	}
	d.s.setStorage(addr, key, value)
	return prev
}

func (d *stateDB) GetStorageRoot(common.Address) common.Hash { return common.Hash{} }

func (d *stateDB) GetTransientState(addr common.Address, key common.Hash) common.Hash {
	if m, ok := d.transient[addr]; ok {
		return m[key]
	}
	return common.Hash{}
}

func (d *stateDB) SetTransientState(addr common.Address, key, value common.Hash) {
	if d.transient[addr] == nil {
		d.transient[addr] = map[common.Hash]common.Hash{}
	}
	d.transient[addr][key] = value
}

func (d *stateDB) SelfDestruct(addr common.Address) uint256.Int {
	a := d.s.account(addr)
	prev := *a.balance
	d.destructed[addr] = true
	d.s.setBalance(addr, new(uint256.Int))
	return prev
}

func (d *stateDB) HasSelfDestructed(addr common.Address) bool { return d.destructed[addr] }

func (d *stateDB) SelfDestruct6780(addr common.Address) (uint256.Int, bool) {
	if !d.created[addr] {
		return uint256.Int{}, false
	}
	return d.SelfDestruct(addr), true
}

func (d *stateDB) Exist(addr common.Address) bool {
	return d.s.account(addr).exists || d.destructed[addr] || d.created[addr]
}

func (d *stateDB) Empty(addr common.Address) bool {
	a := d.s.account(addr)
	return a.nonce == 0 && a.balance.IsZero() && len(a.code) == 0
}

func (d *stateDB) AddressInAccessList(addr common.Address) bool {
	_, ok := d.accessListAddrs[addr]
	return ok
}

func (d *stateDB) SlotInAccessList(addr common.Address, slot common.Hash) (bool, bool) {
	addrOk := d.AddressInAccessList(addr)
	if slots, ok := d.accessListSlots[addr]; ok {
		_, slotOk := slots[slot]
		return addrOk, slotOk
	}
	return addrOk, false
}

func (d *stateDB) AddAddressToAccessList(addr common.Address) {
	d.accessListAddrs[addr] = struct{}{}
}

func (d *stateDB) AddSlotToAccessList(addr common.Address, slot common.Hash) {
	d.accessListAddrs[addr] = struct{}{}
	if d.accessListSlots[addr] == nil {
		d.accessListSlots[addr] = map[common.Hash]struct{}{}
	}
	d.accessListSlots[addr][slot] = struct{}{}
}

func (d *stateDB) Prepare(_ params.Rules, sender, coinbase common.Address, dst *common.Address, precompiles []common.Address, txAccesses types.AccessList) {
	d.accessListAddrs = map[common.Address]struct{}{}
	d.accessListSlots = map[common.Address]map[common.Hash]struct{}{}
	d.AddAddressToAccessList(sender)
	d.AddAddressToAccessList(coinbase)
	if dst != nil {
		d.AddAddressToAccessList(*dst)
	}
	for _, p := range precompiles {
		d.AddAddressToAccessList(p)
	}
	for _, entry := range txAccesses {
		d.AddAddressToAccessList(entry.Address)
		for _, key := range entry.StorageKeys {
			d.AddSlotToAccessList(entry.Address, key)
		}
	}
}

func (d *stateDB) RevertToSnapshot(id int) { d.s.Revert(id) }

func (d *stateDB) Snapshot() int { return d.s.Snap() }

func (d *stateDB) AddLog(log *types.Log) { d.s.logs = append(d.s.logs, log) }

func (d *stateDB) AddPreimage(common.Hash, []byte) {}

// The verkle/witness surfaces below are unused by this tracer: the snapshot
// has no trie behind it, so there is nothing to collect.
func (d *stateDB) PointCache() *utils.PointCache { return nil }

func (d *stateDB) Witness() *stateless.Witness { return nil }

func (d *stateDB) AccessEvents() *state.AccessEvents { return nil }

// Finalise is a no-op: replay effects live only in the snapshot cache and
// are "committed" the moment they are written there.
func (d *stateDB) Finalise(bool) {}

func keccakHash(b []byte) common.Hash {
	return crypto.Keccak256Hash(b)
}
