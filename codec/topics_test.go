package codec

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

var kernelAddress = uint256.MustFromHex("0x11c5faab8a76b3caff6e243b8d13059a7fb723a0ca12bbaadde95fb9e501bda")

func topicKeys(t *testing.T, topics []common.Hash, emitter common.Address) []*uint256.Int {
	t.Helper()
	keys := make([]*uint256.Int, 0, 2*len(topics)+1)
	for _, topic := range topics {
		limbs := SplitU256(new(uint256.Int).SetBytes32(topic[:]))
		keys = append(keys, limbs.Low, limbs.High)
	}
	keys = append(keys, new(uint256.Int).SetBytes(emitter.Bytes()))
	return keys
}

func TestReconstructTopics(t *testing.T) {
	emitter := common.HexToAddress("0x0000000000000000000000000000000000000069")
	topics := []common.Hash{
		common.HexToHash("0x00000000000000000000000000000000000000000000000000000000000000aa"),
		common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"),
	}

	got, addr, err := ReconstructTopics(kernelAddress, kernelAddress, topicKeys(t, topics, emitter))
	require.NoError(t, err)
	require.Equal(t, topics, got)
	require.Equal(t, emitter, addr)
}

func TestReconstructTopicsNoTopics(t *testing.T) {
	emitter := common.HexToAddress("0xdead000000000000000000000000000000000001")

	got, addr, err := ReconstructTopics(kernelAddress, kernelAddress, topicKeys(t, nil, emitter))
	require.NoError(t, err)
	require.Empty(t, got)
	require.Equal(t, emitter, addr)
}

func TestReconstructTopicsRejectsForeignEvents(t *testing.T) {
	// An event whose L2 emitter is not the kernel contract is filtered out,
	// whatever its keys look like.
	other := uint256.MustFromHex("0xdeadbeef")
	keys := topicKeys(t, nil, common.HexToAddress("0x01"))

	_, _, err := ReconstructTopics(other, kernelAddress, keys)
	require.ErrorIs(t, err, ErrNotEmittedByKernel{})

	// So is a kernel event with no emitting-address trailer at all.
	_, _, err = ReconstructTopics(kernelAddress, kernelAddress, nil)
	require.ErrorIs(t, err, ErrNotEmittedByKernel{})
}

func TestReconstructTopicsRejectsIncompletePair(t *testing.T) {
	// A low half with no high half is a conversion failure, not a filter.
	_, _, err := ReconstructTopics(kernelAddress, kernelAddress, []*uint256.Int{uint256.NewInt(1), uint256.NewInt(2)})
	require.ErrorIs(t, err, errIncompleteTopicPair)
}
