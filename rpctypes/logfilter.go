package rpctypes

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
)

// LogFilter is the eth_getLogs request shape: either a block range
// (fromBlock/toBlock, each defaulting to latest) or a single blockHash, plus
// an address allow-list and up to 4 topic-position slots.
type LogFilter struct {
	BlockHash *common.Hash
	FromBlock BlockNumber
	ToBlock   BlockNumber
	Addresses []common.Address
	Topics    [4][]common.Hash
}

// UnmarshalJSON accepts the union of "address" as a single address or an
// array, and "topics" entries as null, a single hash, or an array of hashes,
// matching the Ethereum JSON-RPC eth_getLogs filter object.
func (f *LogFilter) UnmarshalJSON(data []byte) error {
	var raw struct {
		BlockHash *common.Hash    `json:"blockHash"`
		FromBlock *BlockNumber    `json:"fromBlock"`
		ToBlock   *BlockNumber    `json:"toBlock"`
		Address   json.RawMessage `json:"address"`
		Topics    []json.RawMessage `json:"topics"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	f.BlockHash = raw.BlockHash
	f.FromBlock = BlockNumber{Tag: "latest"}
	f.ToBlock = BlockNumber{Tag: "latest"}
	if raw.FromBlock != nil {
		f.FromBlock = *raw.FromBlock
	}
	if raw.ToBlock != nil {
		f.ToBlock = *raw.ToBlock
	}

	if len(raw.Address) > 0 {
		addrs, err := unmarshalAddressOrArray(raw.Address)
		if err != nil {
			return err
		}
		f.Addresses = addrs
	}

	for i, t := range raw.Topics {
		if i >= 4 {
			break
		}
		if len(t) == 0 || string(t) == "null" {
			continue
		}
		slot, err := unmarshalHashOrArray(t)
		if err != nil {
			return err
		}
		f.Topics[i] = slot
	}

	return nil
}

func unmarshalAddressOrArray(data json.RawMessage) ([]common.Address, error) {
	var single common.Address
	if err := json.Unmarshal(data, &single); err == nil {
		return []common.Address{single}, nil
	}
	var many []common.Address
	if err := json.Unmarshal(data, &many); err != nil {
		return nil, err
	}
	return many, nil
}

func unmarshalHashOrArray(data json.RawMessage) ([]common.Hash, error) {
	var single common.Hash
	if err := json.Unmarshal(data, &single); err == nil {
		return []common.Hash{single}, nil
	}
	var many []common.Hash
	if err := json.Unmarshal(data, &many); err != nil {
		return nil, err
	}
	return many, nil
}
