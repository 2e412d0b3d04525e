package codec

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// ErrNotEmittedByKernel is returned by ReconstructTopics when the L2 event
// was not emitted by the EVM kernel contract (its from_address is some other
// L2 contract) or carries no emitting-address trailer; such events are
// filtered out rather than surfaced as Ethereum logs.
type ErrNotEmittedByKernel struct{}

func (ErrNotEmittedByKernel) Error() string {
	return "event was not emitted by the EVM kernel"
}

// errIncompleteTopicPair marks a key list whose final topic pair is missing
// its high half; the event cannot be converted.
var errIncompleteTopicPair = errors.New("event topic key has no high half")

// ReconstructTopics rebuilds Ethereum 32-byte topics from an L2-native
// event. Only events emitted by the EVM kernel itself qualify: fromAddress
// is the event's L2 emitter and must equal kakarotAddress or the event is
// filtered out. The final key is the emitting Ethereum address; the keys
// before it are consumed two at a time as (low, high) topic pairs.
func ReconstructTopics(fromAddress, kakarotAddress *uint256.Int, keys []*uint256.Int) ([]common.Hash, common.Address, error) {
	if fromAddress == nil || fromAddress.Cmp(kakarotAddress) != 0 {
		return nil, common.Address{}, ErrNotEmittedByKernel{}
	}
	if len(keys) == 0 {
		return nil, common.Address{}, ErrNotEmittedByKernel{}
	}
	if len(keys)%2 == 0 {
		// Even length means the pairs before the address trailer are not
		// whole.
		return nil, common.Address{}, errIncompleteTopicPair
	}

	nTopics := (len(keys) - 1) / 2
	topics := make([]common.Hash, 0, nTopics)
	for i := 0; i < nTopics; i++ {
		low, high := keys[2*i], keys[2*i+1]
		combined := JoinU256(Felts{Low: low, High: high})
		topics = append(topics, common.Hash(combined.Bytes32()))
	}
	addrFelt := keys[len(keys)-1]
	addrBytes := addrFelt.Bytes()
	var addr common.Address
	if len(addrBytes) > common.AddressLength {
		addrBytes = addrBytes[len(addrBytes)-common.AddressLength:]
	}
	copy(addr[common.AddressLength-len(addrBytes):], addrBytes)
	return topics, addr, nil
}
