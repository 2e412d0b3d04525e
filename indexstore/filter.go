package indexstore

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.mongodb.org/mongo-driver/bson"
)

// Zero-padded hex widths of the stored string representation.
const (
	HashHexLen        = 64
	BlockNumberHexLen = 16
	AddressHexLen     = 40
)

// FormatHex zero-pads a hex value (without its 0x prefix) to width.
// Padding is required
// so lexicographic string ordering over the stored field equals numeric
// ordering; skipping it causes silent missed matches on range queries.
func FormatHex(hex string, width int) string {
	hex = strings.TrimPrefix(strings.ToLower(hex), "0x")
	if len(hex) < width {
		hex = strings.Repeat("0", width-len(hex)) + hex
	}
	return "0x" + hex
}

func formatUint64(n uint64) string {
	return FormatHex(fmt.Sprintf("%x", n), BlockNumberHexLen)
}

func formatHash(h common.Hash) string {
	return FormatHex(h.Hex(), HashHexLen)
}

func formatAddress(a common.Address) string {
	return FormatHex(a.Hex(), AddressHexLen)
}

// FilterBuilder builds the outer-key-qualified Mongo filters every collection
// read uses, so that `field` below, prefixed by the
// collection's outer key, becomes e.g. "tx.hash".
type FilterBuilder struct {
	outerKey string
	filter   bson.M
}

// NewFilterBuilder starts a filter for the given document outer key (tx,
// header, log, receipt).
func NewFilterBuilder(outerKey string) *FilterBuilder {
	return &FilterBuilder{outerKey: outerKey, filter: bson.M{}}
}

func (f *FilterBuilder) key(field string) string {
	return f.outerKey + "." + field
}

func (f *FilterBuilder) WithTxHash(h common.Hash) *FilterBuilder {
	f.filter[f.key("hash")] = formatHash(h)
	return f
}

func (f *FilterBuilder) WithBlockHash(h common.Hash) *FilterBuilder {
	f.filter[f.key("blockHash")] = formatHash(h)
	return f
}

func (f *FilterBuilder) WithBlockNumber(n uint64) *FilterBuilder {
	f.filter[f.key("blockNumber")] = formatUint64(n)
	return f
}

// WithBlockHashOrNumber filters on whichever identifier is present, matching
// a BlockId tagged union.
func (f *FilterBuilder) WithBlockHashOrNumber(hash *common.Hash, number *uint64) *FilterBuilder {
	if hash != nil {
		return f.WithBlockHash(*hash)
	}
	if number != nil {
		return f.WithBlockNumber(*number)
	}
	return f
}

func (f *FilterBuilder) WithTransactionIndex(idx uint64) *FilterBuilder {
	f.filter[f.key("transactionIndex")] = formatUint64(idx)
	return f
}

// WithAddresses restricts to logs emitted by one of the given addresses.
// A single address is an equality match; more than one uses $in.
func (f *FilterBuilder) WithAddresses(addrs []common.Address) *FilterBuilder {
	if len(addrs) == 0 {
		return f
	}
	if len(addrs) == 1 {
		f.filter[f.key("address")] = formatAddress(addrs[0])
		return f
	}
	vals := make([]string, len(addrs))
	for i, a := range addrs {
		vals[i] = formatAddress(a)
	}
	f.filter[f.key("address")] = bson.M{"$in": vals}
	return f
}

// Build finalizes the filter.
func (f *FilterBuilder) Build() bson.M {
	return f.filter
}
