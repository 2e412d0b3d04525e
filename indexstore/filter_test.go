package indexstore

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestFormatHex(t *testing.T) {
	testCases := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"pads block numbers to 16", "0x2a", BlockNumberHexLen, "0x000000000000002a"},
		{"pads addresses to 40", "0x69", AddressHexLen, "0x0000000000000000000000000000000000000069"},
		{"lowercases", "0xAB", BlockNumberHexLen, "0x00000000000000ab"},
		{"already at width", "0x000000000000002a", BlockNumberHexLen, "0x000000000000002a"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, FormatHex(tc.in, tc.width))
		})
	}
}

// Padding must make lexicographic string order equal numeric order, or range
// filters silently miss documents.
func TestFormatHexOrdering(t *testing.T) {
	small := formatUint64(9)
	large := formatUint64(100)
	require.Less(t, small, large)
}

func TestFilterBuilderKeys(t *testing.T) {
	hash := common.HexToHash("0xabc")
	filter := NewFilterBuilder("tx").WithTxHash(hash).Build()
	require.Equal(t, bson.M{
		"tx.hash": "0x0000000000000000000000000000000000000000000000000000000000000abc",
	}, filter)

	filter = NewFilterBuilder("tx").WithBlockNumber(42).WithTransactionIndex(3).Build()
	require.Equal(t, bson.M{
		"tx.blockNumber":      "0x000000000000002a",
		"tx.transactionIndex": "0x0000000000000003",
	}, filter)
}

func TestFilterBuilderBlockHashOrNumber(t *testing.T) {
	hash := common.HexToHash("0x01")
	number := uint64(7)

	filter := NewFilterBuilder("tx").WithBlockHashOrNumber(&hash, &number).Build()
	require.Contains(t, filter, "tx.blockHash")
	require.NotContains(t, filter, "tx.blockNumber")

	filter = NewFilterBuilder("tx").WithBlockHashOrNumber(nil, &number).Build()
	require.Equal(t, bson.M{"tx.blockNumber": "0x0000000000000007"}, filter)
}

func TestFilterBuilderAddresses(t *testing.T) {
	one := common.HexToAddress("0x69")
	two := common.HexToAddress("0x70")

	filter := NewFilterBuilder("log").WithAddresses([]common.Address{one}).Build()
	require.Equal(t, bson.M{
		"log.address": "0x0000000000000000000000000000000000000069",
	}, filter)

	filter = NewFilterBuilder("log").WithAddresses([]common.Address{one, two}).Build()
	require.Equal(t, bson.M{
		"log.address": bson.M{"$in": []string{
			"0x0000000000000000000000000000000000000069",
			"0x0000000000000000000000000000000000000070",
		}},
	}, filter)

	filter = NewFilterBuilder("log").WithAddresses(nil).Build()
	require.Empty(t, filter)
}
