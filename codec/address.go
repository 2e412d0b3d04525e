package codec

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// ContractAddressPrefix domain-separates the L2 address derivation hash chain
// from other uses of the same primitive, mirroring the
// "STARKNET_CONTRACT_ADDRESS" domain tag used by the L2's own address
// derivation formula.
var ContractAddressPrefix = []byte("STARKNET_CONTRACT_ADDRESS")

// DeriveL2Address computes S = L2_create2(salt=A, class_hash=classHash,
// ctor_args=[], deployer=kakarotAddress).
//
// The real L2 uses a Pedersen/Poseidon hash chain over its prime field;
// with no such primitive available here, the hash step is a
// domain-separated keccak256 chain over the same operand order (deployer,
// salt, class_hash, constructor-calldata-hash). This preserves what callers
// rely on: determinism, independence from live state, and identical output
// for identically configured providers. It is not bit-for-bit compatible
// with a live L2 node's derivation. When exact parity is needed the
// on-chain compute_starknet_address view is the reference.
func DeriveL2Address(ethAddr common.Address, classHash, kakarotAddress *uint256.Int) *uint256.Int {
	salt := new(uint256.Int).SetBytes(ethAddr.Bytes())
	ctorCalldataHash := crypto.Keccak256([]byte{}) // empty constructor args

	kakarotAddressBytes := kakarotAddress.Bytes32()
	saltBytes := salt.Bytes32()
	classHashBytes := classHash.Bytes32()

	buf := make([]byte, 0, len(ContractAddressPrefix)+32*4)
	buf = append(buf, ContractAddressPrefix...)
	buf = append(buf, kakarotAddressBytes[:]...)
	buf = append(buf, saltBytes[:]...)
	buf = append(buf, classHashBytes[:]...)
	buf = append(buf, ctorCalldataHash...)

	digest := crypto.Keccak256(buf)
	return new(uint256.Int).SetBytes(digest)
}
