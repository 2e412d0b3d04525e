package config

import "github.com/ethereum/go-ethereum/common"

// Constant is the read-only snapshot served by kakarot_getConfig 
type Constant struct {
	MaxLogs                            *uint64       `json:"maxLogs,omitempty"`
	StarknetNetwork                    string        `json:"starknetNetwork"`
	RetryTxInterval                    uint64        `json:"retryTxInterval"`
	TransactionMaxRetries              uint8         `json:"transactionMaxRetries"`
	MaxFeltsInCalldata                 int           `json:"maxFeltsInCalldata"`
	WhiteListedEIP155TransactionHashes []common.Hash `json:"whiteListedEip155TransactionHashes"`
}

// MaxFeltsInCalldata is the L2's own calldata-length ceiling; fixed per the
// EVM kernel's current deployment.
const MaxFeltsInCalldata = 22500

// Snapshot builds the Constant diagnostic view from a loaded Config.
func (c *Config) Snapshot(whitelisted []common.Hash) Constant {
	return Constant{
		MaxLogs:                            c.MaxLogs,
		StarknetNetwork:                    c.StarknetNetwork,
		RetryTxInterval:                    c.RetryTxIntervalSeconds,
		TransactionMaxRetries:              c.TransactionMaxRetries,
		MaxFeltsInCalldata:                 MaxFeltsInCalldata,
		WhiteListedEIP155TransactionHashes: whitelisted,
	}
}
