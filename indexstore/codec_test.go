package indexstore

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

// The stored representation must be the same zero-padded hex strings the
// filter builder emits, or no filter ever matches a document.
func TestStoredHeaderMarshalsAsPaddedHex(t *testing.T) {
	doc := StoredHeader{Header: Header{
		Hash:   common.HexToHash("0xabc"),
		Number: 42,
	}}

	raw, err := bson.MarshalWithRegistry(registry, doc)
	require.NoError(t, err)

	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))
	header, ok := m["header"].(bson.M)
	require.True(t, ok)

	require.Equal(t, "0x0000000000000000000000000000000000000000000000000000000000000abc", header["hash"])
	require.Equal(t, "0x000000000000002a", header["number"])
}

func TestStoredTransactionRoundTrip(t *testing.T) {
	blockHash := common.HexToHash("0x01")
	blockNumber := uint64(105)
	index := uint64(3)
	to := common.HexToAddress("0x69")

	doc := StoredTransaction{Tx: StoredTx{
		Hash:             common.HexToHash("0xdead"),
		BlockHash:        &blockHash,
		BlockNumber:      &blockNumber,
		TransactionIndex: &index,
		From:             common.HexToAddress("0x42"),
		To:               &to,
		Nonce:            7,
		Value:            []byte{0x03, 0xe8},
		Gas:              21000,
		GasPrice:         []byte{0x01},
		GasTipCap:        []byte{0x01},
		Input:            []byte{0xca, 0xfe},
		RawRLP:           []byte{0xf8, 0x01},
		Type:             2,
	}}

	raw, err := bson.MarshalWithRegistry(registry, doc)
	require.NoError(t, err)

	// The hash field must match what FilterBuilder emits for the same hash.
	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))
	tx := m["tx"].(bson.M)
	wantFilter := NewFilterBuilder("tx").WithTxHash(doc.Tx.Hash).Build()
	require.Equal(t, wantFilter["tx.hash"], tx["hash"])
	require.Equal(t, "0x0000000000000069", tx["blockNumber"])
	require.Equal(t, "0xcafe", tx["input"])

	var decoded StoredTransaction
	require.NoError(t, bson.UnmarshalWithRegistry(registry, raw, &decoded))
	require.Equal(t, doc, decoded)
}

func TestStoredLogMarshalsTopicsAsPaddedHex(t *testing.T) {
	doc := StoredLog{Log: LogDoc{
		Address:     common.HexToAddress("0x69"),
		Topics:      []common.Hash{common.HexToHash("0xaa"), common.HexToHash("0xbb")},
		BlockNumber: 105,
	}}

	raw, err := bson.MarshalWithRegistry(registry, doc)
	require.NoError(t, err)

	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))
	log := m["log"].(bson.M)
	require.Equal(t, "0x0000000000000000000000000000000000000069", log["address"])
	topics, ok := log["topics"].(bson.A)
	require.True(t, ok)
	require.Equal(t, "0x00000000000000000000000000000000000000000000000000000000000000aa", topics[0])
}

func TestPendingTransactionRetriesField(t *testing.T) {
	doc := StoredPendingTransaction{
		Tx:      StoredTx{Hash: common.HexToHash("0x01")},
		Retries: 3,
	}

	raw, err := bson.MarshalWithRegistry(registry, doc)
	require.NoError(t, err)

	var decoded StoredPendingTransaction
	require.NoError(t, bson.UnmarshalWithRegistry(registry, raw, &decoded))
	require.Equal(t, uint8(3), decoded.Retries)
}
