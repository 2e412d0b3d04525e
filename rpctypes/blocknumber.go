// Package rpctypes holds the Ethereum-JSON-RPC-shaped wire types and the
// formatting helpers that turn index-store documents into them.
package rpctypes

import (
	"encoding/json"
	"fmt"
	"strings"
)

// BlockNumber is the standard Ethereum block tag: a literal number, or one
// of latest/earliest/pending/safe/finalized.
type BlockNumber struct {
	Tag    string // "earliest" | "latest" | "pending" | "safe" | "finalized" | ""
	Number uint64 // valid when Tag == ""
}

func (b *BlockNumber) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch strings.ToLower(s) {
	case "earliest", "latest", "pending", "safe", "finalized":
		b.Tag = strings.ToLower(s)
		return nil
	}
	var n uint64
	if _, err := fmt.Sscanf(s, "0x%x", &n); err != nil {
		return fmt.Errorf("invalid block number %q: %w", s, err)
	}
	b.Number = n
	return nil
}

// Resolve maps a block tag onto a concrete height: Earliest->0,
// Latest/Finalized/Safe->blockNumber(), Pending->blockNumber()+1,
// Number(n)->n.
func (b BlockNumber) Resolve(currentBlockNumber func() (uint64, error)) (uint64, error) {
	switch b.Tag {
	case "earliest":
		return 0, nil
	case "latest", "finalized", "safe", "":
		if b.Tag == "" {
			return b.Number, nil
		}
		return currentBlockNumber()
	case "pending":
		n, err := currentBlockNumber()
		if err != nil {
			return 0, err
		}
		return n + 1, nil
	default:
		return currentBlockNumber()
	}
}
