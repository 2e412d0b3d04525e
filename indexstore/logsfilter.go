package indexstore

import (
	"github.com/ethereum/go-ethereum/common"
	"go.mongodb.org/mongo-driver/bson"
)

// LogsFilter is the parsed form of an eth_getLogs filter: a block range, an
// optional address set, and up to 4 topic-position slots, each slot either
// empty (matches any value), a single required value, or a set of allowed
// values.
type LogsFilter struct {
	FromBlock uint64
	ToBlock   uint64
	Addresses []common.Address
	Topics    [4][]common.Hash // per-slot allowed values; nil/empty slot = wildcard
}

// BuildFilter constructs the Mongo filter for a logs query.
//
// Each non-empty topic slot contributes an equality ($in for >1 value)
// constraint on "log.topics.i"; unspecified trailing topics are left
// unconstrained so they match any value, giving equal-up-to-n-slots
// semantics.
func BuildFilter(f LogsFilter) bson.M {
	and := make([]bson.M, 0, 6)

	and = append(and,
		bson.M{"log.blockNumber": bson.M{
			"$gte": formatUint64(f.FromBlock),
			"$lte": formatUint64(f.ToBlock),
		}},
	)

	if len(f.Addresses) > 0 {
		and = append(and, NewFilterBuilder("log").WithAddresses(f.Addresses).Build())
	}

	anySlotSpecified := false
	for i, slot := range f.Topics {
		if len(slot) == 0 {
			continue
		}
		anySlotSpecified = true
		key := topicKey(i)
		if len(slot) == 1 {
			and = append(and, bson.M{key: formatHash(slot[0])})
			continue
		}
		vals := make([]string, len(slot))
		for j, t := range slot {
			vals[j] = formatHash(t)
		}
		and = append(and, bson.M{key: bson.M{"$in": vals}})
	}

	if !anySlotSpecified {
		// No topic constraint at all: still require the log carries a
		// topics array (existence check), matching the Rust source's
		// fallback when every slot is empty.
		and = append(and, bson.M{"log.topics": bson.M{"$exists": true}})
	}

	return bson.M{"$and": and}
}

func topicKey(slot int) string {
	switch slot {
	case 0:
		return "log.topics.0"
	case 1:
		return "log.topics.1"
	case 2:
		return "log.topics.2"
	default:
		return "log.topics.3"
	}
}

// ClipRange intersects a requested block range with what has been indexed:
// from = max(filter.from, 0); to = min(filter.to, currentBlock). Returns
// ok=false when the resulting range is empty (from > currentBlock, or
// to < from), in which case the caller must return an empty result set.
func ClipRange(fromBlock, toBlock, currentBlock uint64) (from, to uint64, ok bool) {
	from = fromBlock
	to = toBlock
	if to > currentBlock {
		to = currentBlock
	}
	if from > currentBlock || to < from {
		return 0, 0, false
	}
	return from, to, true
}
