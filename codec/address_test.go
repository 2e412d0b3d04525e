package codec

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestDeriveL2AddressDeterministic(t *testing.T) {
	addr := common.HexToAddress("0xabde1007e67b6f1a2f8b7e1c2a3d4e5f60718293")
	classHash := uint256.MustFromHex("0x1276d0b4701abb5bf7f5a9e1426c6a2a8a0c3b1a2a4e8b07f0a79c10444ab37")
	kakarot := uint256.MustFromHex("0x11c5faab8a76b3caff6e243b8d13059a7fb723a0ca12bbaadde95fb9e501bda")

	first := DeriveL2Address(addr, classHash, kakarot)
	second := DeriveL2Address(addr, classHash, kakarot)
	require.Equal(t, first, second)
}

func TestDeriveL2AddressDistinguishesInputs(t *testing.T) {
	classHash := uint256.MustFromHex("0x123")
	otherClassHash := uint256.MustFromHex("0x124")
	kakarot := uint256.MustFromHex("0x456")

	a := common.HexToAddress("0x0000000000000000000000000000000000000001")
	b := common.HexToAddress("0x0000000000000000000000000000000000000002")

	require.NotEqual(t, DeriveL2Address(a, classHash, kakarot), DeriveL2Address(b, classHash, kakarot))
	require.NotEqual(t, DeriveL2Address(a, classHash, kakarot), DeriveL2Address(a, otherClassHash, kakarot))
}
