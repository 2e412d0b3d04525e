package rpctypes

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestLogFilterUnmarshal(t *testing.T) {
	raw := `{
		"fromBlock": "0x64",
		"toBlock": "0xc8",
		"address": ["0x0000000000000000000000000000000000000069"],
		"topics": [["0x00000000000000000000000000000000000000000000000000000000000000aa"], null]
	}`

	var f LogFilter
	require.NoError(t, json.Unmarshal([]byte(raw), &f))

	require.Nil(t, f.BlockHash)
	require.Equal(t, uint64(100), f.FromBlock.Number)
	require.Equal(t, uint64(200), f.ToBlock.Number)
	require.Equal(t, []common.Address{common.HexToAddress("0x69")}, f.Addresses)
	require.Equal(t, []common.Hash{common.HexToHash("0xaa")}, f.Topics[0])
	require.Empty(t, f.Topics[1])
}

func TestLogFilterUnmarshalSingleValues(t *testing.T) {
	raw := `{
		"address": "0x0000000000000000000000000000000000000001",
		"topics": ["0x00000000000000000000000000000000000000000000000000000000000000bb"]
	}`

	var f LogFilter
	require.NoError(t, json.Unmarshal([]byte(raw), &f))

	require.Equal(t, []common.Address{common.HexToAddress("0x01")}, f.Addresses)
	require.Equal(t, []common.Hash{common.HexToHash("0xbb")}, f.Topics[0])
	// Absent block bounds default to latest.
	require.Equal(t, "latest", f.FromBlock.Tag)
	require.Equal(t, "latest", f.ToBlock.Tag)
}

func TestLogFilterUnmarshalBlockHash(t *testing.T) {
	raw := `{"blockHash": "0x00000000000000000000000000000000000000000000000000000000000000cc"}`

	var f LogFilter
	require.NoError(t, json.Unmarshal([]byte(raw), &f))
	require.NotNil(t, f.BlockHash)
	require.Equal(t, common.HexToHash("0xcc"), *f.BlockHash)
}
