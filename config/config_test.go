package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("KAKAROT_ADDRESS", "0x11c5faab8a76b3caff6e243b8d13059a7fb723a0ca12bbaadde95fb9e501bda")
	t.Setenv("UNINITIALIZED_ACCOUNT_CLASS_HASH", "0x600")
	t.Setenv("ACCOUNT_CONTRACT_CLASS_HASH", "0x601")
	t.Setenv("STARKNET_NETWORK", "http://localhost:5050")
	t.Setenv("KAKAROT_RPC_URL", "127.0.0.1:3030")
	t.Setenv("RETRY_TX_INTERVAL", "10")
	t.Setenv("TRANSACTION_MAX_RETRIES", "3")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
}

func TestFromEnv(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, "http://localhost:5050", cfg.StarknetNetwork)
	require.Equal(t, uint64(10), cfg.RetryTxIntervalSeconds)
	require.Equal(t, uint8(3), cfg.TransactionMaxRetries)
	require.Equal(t, 100, cfg.RPCMaxConnections)
	require.Equal(t, "kakarot", cfg.MongoDatabase)
	require.Nil(t, cfg.MaxLogs)
	require.False(t, cfg.Hive)
	require.False(t, cfg.Testing)
}

func TestFromEnvMissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("KAKAROT_ADDRESS", "")

	_, err := FromEnv()
	require.Error(t, err)
}

func TestFromEnvOptional(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MAX_LOGS", "1000")
	t.Setenv("KATANA_PRIVATE_KEY", "0x1234")
	t.Setenv("KATANA_ACCOUNT_ADDRESS", "0xdead")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.NotNil(t, cfg.MaxLogs)
	require.Equal(t, uint64(1000), *cfg.MaxLogs)
	require.True(t, cfg.Hive)
	require.Equal(t, "0xdead", cfg.KatanaAccountAddr.Hex())
}

func TestChainIDMask(t *testing.T) {
	require.Equal(t, uint64(1), ChainIDMask(0x1_0000_0001))
	require.Equal(t, uint64(0xffffffff), ChainIDMask(0xffffffff))
	require.Equal(t, uint64(1263227476), ChainIDMask(1263227476))
}
