// Package codec implements RLP/signature handling, Eth<->L2 address
// derivation, and the value-packing conventions required to cross the
// 20-byte-address / 256-bit-value Ethereum world into the L2's felt world.
package codec

import (
	"github.com/holiman/uint256"
)

// Felts is a pair of field-element-sized limbs: {Low, High}, each holding at
// most 128 bits, used everywhere a U256 crosses into L2-native calldata or
// storage.
type Felts struct {
	Low  *uint256.Int
	High *uint256.Int
}

var mask128 = func() *uint256.Int {
	m, _ := uint256.FromHex("0xffffffffffffffffffffffffffffffff")
	return m
}()

// SplitU256 splits a 256-bit value into its low and high 128-bit halves.
func SplitU256(v *uint256.Int) Felts {
	low := new(uint256.Int).And(v, mask128)
	high := new(uint256.Int).Rsh(v, 128)
	return Felts{Low: low, High: high}
}

// JoinU256 reassembles a value previously produced by SplitU256:
// value = low + (high << 128).
func JoinU256(f Felts) *uint256.Int {
	out := new(uint256.Int).Lsh(f.High, 128)
	return out.Add(out, f.Low)
}
