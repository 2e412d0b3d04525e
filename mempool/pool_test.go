package mempool

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/kkrt-labs/kakarot-rpc-go/indexstore"
)

type fakePendingSource struct {
	entries []indexstore.StoredPendingTransaction
	err     error
}

func (f fakePendingSource) AllPendingTransactions(_ context.Context) ([]indexstore.StoredPendingTransaction, error) {
	return f.entries, f.err
}

func pendingEntry(hash, from string, nonce uint64) indexstore.StoredPendingTransaction {
	to := common.HexToAddress("0x0000000000000000000000000000000000000099")
	return indexstore.StoredPendingTransaction{Tx: indexstore.StoredTx{
		Hash:     common.HexToHash(hash),
		From:     common.HexToAddress(from),
		To:       &to,
		Nonce:    nonce,
		Value:    []byte{0x64},
		Gas:      21000,
		GasPrice: []byte{0x01},
	}}
}

func TestPoolStatus(t *testing.T) {
	pool := NewPool(fakePendingSource{entries: []indexstore.StoredPendingTransaction{
		pendingEntry("0x01", "0xaa", 0),
		pendingEntry("0x02", "0xaa", 1),
		pendingEntry("0x03", "0xbb", 0),
	}}, 1)

	status, err := pool.Status(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 3, status[StatusPending])
	require.EqualValues(t, 0, status[StatusQueued])
}

func TestPoolContent(t *testing.T) {
	pool := NewPool(fakePendingSource{entries: []indexstore.StoredPendingTransaction{
		pendingEntry("0x01", "0xaa", 0),
		pendingEntry("0x02", "0xaa", 1),
	}}, 1)

	content, err := pool.Content(context.Background())
	require.NoError(t, err)

	sender := common.HexToAddress("0xaa").Hex()
	require.Len(t, content[StatusPending][sender], 2)
	require.Contains(t, content[StatusPending][sender], "0")
	require.Contains(t, content[StatusPending][sender], "1")
	require.Empty(t, content[StatusQueued])
}

func TestPoolContentFrom(t *testing.T) {
	pool := NewPool(fakePendingSource{entries: []indexstore.StoredPendingTransaction{
		pendingEntry("0x01", "0xaa", 0),
		pendingEntry("0x03", "0xbb", 0),
	}}, 1)

	content, err := pool.ContentFrom(context.Background(), common.HexToAddress("0xaa"))
	require.NoError(t, err)
	require.Len(t, content[StatusPending], 1)
	require.Equal(t, common.HexToHash("0x01"), content[StatusPending]["0"].Hash)
}

func TestPoolInspect(t *testing.T) {
	pool := NewPool(fakePendingSource{entries: []indexstore.StoredPendingTransaction{
		pendingEntry("0x01", "0xaa", 0),
	}}, 1)

	inspect, err := pool.Inspect(context.Background())
	require.NoError(t, err)

	sender := common.HexToAddress("0xaa").Hex()
	line := inspect[StatusPending][sender]["0"]
	require.Contains(t, line, "100 wei + 21000 gas x 1 wei")
}

func TestPoolStoreError(t *testing.T) {
	pool := NewPool(fakePendingSource{err: errors.New("down")}, 1)
	_, err := pool.Status(context.Background())
	require.Error(t, err)
}
