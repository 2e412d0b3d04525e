// Package config loads the adapter's environment-variable configuration.
// Process bootstrap, CLI/flag parsing, and env-file loading orchestration are
// out of scope; this package only parses and
// validates the adapter's own variables.
package config

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/spf13/viper"
)

// Config holds every environment-variable-derived setting the adapter needs.
type Config struct {
	KakarotAddress                *uint256.Int
	UninitializedAccountClassHash *uint256.Int
	AccountContractClassHash      *uint256.Int
	StarknetNetwork               string
	KakarotRPCURL                 string
	RetryTxIntervalSeconds        uint64
	TransactionMaxRetries         uint8
	MaxLogs                       *uint64
	RPCMaxConnections             int
	MongoURI                      string
	MongoDatabase                 string
	Testing                       bool

	// Hive bootstrap mode.
	Hive              bool
	KatanaPrivateKey  string
	KatanaAccountAddr *uint256.Int
}

func feltFromEnv(v *viper.Viper, key string) (*uint256.Int, error) {
	s := v.GetString(key)
	if s == "" {
		return nil, fmt.Errorf("missing env var: %s", key)
	}
	i, err := uint256.FromHex(s)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", key, err)
	}
	return i, nil
}

// FromEnv loads Config from the process environment.
func FromEnv() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("RPC_MAX_CONNECTIONS", 100)
	v.SetDefault("MONGODB_DATABASE", "kakarot")

	cfg := &Config{}
	var err error

	if cfg.KakarotAddress, err = feltFromEnv(v, "KAKAROT_ADDRESS"); err != nil {
		return nil, err
	}
	if cfg.UninitializedAccountClassHash, err = feltFromEnv(v, "UNINITIALIZED_ACCOUNT_CLASS_HASH"); err != nil {
		return nil, err
	}
	if cfg.AccountContractClassHash, err = feltFromEnv(v, "ACCOUNT_CONTRACT_CLASS_HASH"); err != nil {
		return nil, err
	}

	cfg.StarknetNetwork = v.GetString("STARKNET_NETWORK")
	if cfg.StarknetNetwork == "" {
		return nil, fmt.Errorf("missing env var: STARKNET_NETWORK")
	}
	cfg.KakarotRPCURL = v.GetString("KAKAROT_RPC_URL")
	if cfg.KakarotRPCURL == "" {
		return nil, fmt.Errorf("missing env var: KAKAROT_RPC_URL")
	}

	cfg.RetryTxIntervalSeconds = v.GetUint64("RETRY_TX_INTERVAL")
	if cfg.RetryTxIntervalSeconds == 0 {
		return nil, fmt.Errorf("missing env var: RETRY_TX_INTERVAL")
	}
	retries := v.GetUint("TRANSACTION_MAX_RETRIES")
	if retries == 0 {
		return nil, fmt.Errorf("missing env var: TRANSACTION_MAX_RETRIES")
	}
	cfg.TransactionMaxRetries = uint8(retries)

	if v.IsSet("MAX_LOGS") {
		m := v.GetUint64("MAX_LOGS")
		cfg.MaxLogs = &m
	}
	cfg.RPCMaxConnections = v.GetInt("RPC_MAX_CONNECTIONS")

	cfg.MongoURI = v.GetString("MONGODB_URI")
	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("missing env var: MONGODB_URI")
	}
	cfg.MongoDatabase = v.GetString("MONGODB_DATABASE")

	cfg.Testing = v.GetBool("TESTING")

	priv := v.GetString("KATANA_PRIVATE_KEY")
	acct := v.GetString("KATANA_ACCOUNT_ADDRESS")
	if priv != "" && acct != "" {
		cfg.Hive = true
		cfg.KatanaPrivateKey = priv
		addr, err := uint256.FromHex(acct)
		if err != nil {
			return nil, fmt.Errorf("parsing KATANA_ACCOUNT_ADDRESS: %w", err)
		}
		cfg.KatanaAccountAddr = addr
	}

	return cfg, nil
}

// ChainIDMask masks a chain id to fit wallets that clip to 32 bits.
func ChainIDMask(chainID uint64) uint64 {
	return chainID & uint64(^uint32(0))
}
