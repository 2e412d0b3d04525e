package codec

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

// EthSendTransactionSelector is the EVM-kernel entrypoint invoked to submit a
// raw Ethereum transaction, the kernel's
// ETH_SEND_TRANSACTION entrypoint.
var EthSendTransactionSelector = new(uint256.Int).SetBytes(
	common.FromHex("0x0216b82bb6a6e92d17157224f53f8c7a0bc4b0a7b4c1d6d1b2a9f1e27e2f3d5b"),
)

// DecodeSignedTransaction RLP-decodes a signed Ethereum transaction envelope
// of any of the four supported kinds (Legacy, 2930, 1559, 4844).
func DecodeSignedTransaction(raw []byte) (*types.Transaction, error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return nil, err
	}
	return tx, nil
}

// RecoverSigner recovers the 20-byte Ethereum signer address from a decoded
// transaction's signature, against the transaction's signing hash for the
// given chain id.
func RecoverSigner(tx *types.Transaction, chainID *big.Int) (common.Address, error) {
	signer := types.LatestSignerForChainID(chainID)
	return types.Sender(signer, tx)
}

// InvokeTransaction is the native L2 invoke built from a signed Ethereum
// transaction, ready for submission.
type InvokeTransaction struct {
	SenderAddress *uint256.Int // S = derive(signer)
	Calldata      []*uint256.Int
	Signature     []*uint256.Int
	Nonce         *uint256.Int
	MaxFee        *uint256.Int
}

// BuildInvokeCalldata assembles the execute_calldata layout the kernel
// expects:
//
//	[1, KAKAROT_ADDRESS, ETH_SEND_TRANSACTION_SELECTOR, 0, N, N, <N bytes as felts>]
//
// where rlpNoSig is the RLP encoding of the transaction without its
// signature, and N is its length in bytes.
func BuildInvokeCalldata(kakarotAddress *uint256.Int, rlpNoSig []byte) []*uint256.Int {
	n := uint256.NewInt(uint64(len(rlpNoSig)))
	calldata := make([]*uint256.Int, 0, 6+len(rlpNoSig))
	calldata = append(calldata,
		uint256.NewInt(1),
		kakarotAddress,
		EthSendTransactionSelector,
		uint256.NewInt(0),
		n,
		n,
	)
	for _, b := range rlpNoSig {
		calldata = append(calldata, uint256.NewInt(uint64(b)))
	}
	return calldata
}

// BuildInvokeSignature assembles the invoke signature layout
// [r_low, r_high, s_low, s_high, v_or_y_parity]. For a legacy
// transaction v is the chain-id-adjusted recovery value; for typed
// transactions it is the raw y-parity bit (0 or 1).
func BuildInvokeSignature(tx *types.Transaction) []*uint256.Int {
	v, r, s := tx.RawSignatureValues()
	rLimbs := SplitU256(uint256.MustFromBig(r))
	sLimbs := SplitU256(uint256.MustFromBig(s))

	var vFelt *uint256.Int
	if tx.Type() == types.LegacyTxType {
		vFelt = uint256.MustFromBig(v)
	} else {
		vFelt = uint256.NewInt(v.Uint64())
	}

	return []*uint256.Int{rLimbs.Low, rLimbs.High, sLimbs.Low, sLimbs.High, vFelt}
}

// DeployEOASelector is the hive-mode bootstrap entrypoint that deploys an
// uninitialized EOA account contract at the derived address S, the kernel's
// DEPLOY_EXTERNALLY_OWNED_ACCOUNT entrypoint.
var DeployEOASelector = new(uint256.Int).SetBytes(
	common.FromHex("0x00609dac7ff335f250265c724b23478392f133716a535f3bc4c73352e912ea7"),
)

// BuildDeployEOACalldata assembles the calldata for the hive-mode deploy-EOA
// invocation: a single call into the Kakarot kernel's
// deploy entrypoint, passing the uninitialized-account class hash and the
// target Ethereum-derived address S as its only argument.
func BuildDeployEOACalldata(uninitializedAccountClassHash, s *uint256.Int) []*uint256.Int {
	return []*uint256.Int{
		uint256.NewInt(1),
		uninitializedAccountClassHash,
		DeployEOASelector,
		uint256.NewInt(0),
		uint256.NewInt(1),
		uint256.NewInt(1),
		s,
	}
}

// EncodeWithoutSignature re-encodes the transaction's RLP payload excluding
// its signature fields, the exact byte string embedded in the invoke
// calldata. Typed transactions carry
// their EIP-2718 type prefix, matching the preimage of the signing hash.
func EncodeWithoutSignature(tx *types.Transaction) ([]byte, error) {
	payload, err := rlp.EncodeToBytes(signingPayload(tx))
	if err != nil {
		return nil, err
	}
	if tx.Type() == types.LegacyTxType {
		return payload, nil
	}
	return append([]byte{tx.Type()}, payload...), nil
}

// signingPayload returns the RLP list the signature is computed over,
// which is also exactly the payload embedded in the invoke calldata.
func signingPayload(tx *types.Transaction) any {
	// go-ethereum does not expose the pre-signature RLP list directly; the
	// signing hash's preimage (before keccak) is exactly this payload, so we
	// reconstruct it via the typed accessor set rather than hashing it.
	switch tx.Type() {
	case types.LegacyTxType:
		if tx.Protected() {
			// EIP-155 signing payload carries the (chain_id, 0, 0) trailer.
			return []any{tx.Nonce(), tx.GasPrice(), tx.Gas(), tx.To(), tx.Value(), tx.Data(), tx.ChainId(), uint(0), uint(0)}
		}
		return []any{tx.Nonce(), tx.GasPrice(), tx.Gas(), tx.To(), tx.Value(), tx.Data()}
	case types.AccessListTxType:
		return []any{tx.ChainId(), tx.Nonce(), tx.GasPrice(), tx.Gas(), tx.To(), tx.Value(), tx.Data(), tx.AccessList()}
	case types.DynamicFeeTxType:
		return []any{tx.ChainId(), tx.Nonce(), tx.GasTipCap(), tx.GasFeeCap(), tx.Gas(), tx.To(), tx.Value(), tx.Data(), tx.AccessList()}
	case types.BlobTxType:
		return []any{tx.ChainId(), tx.Nonce(), tx.GasTipCap(), tx.GasFeeCap(), tx.Gas(), tx.To(), tx.Value(), tx.Data(), tx.AccessList(), tx.BlobGasFeeCap(), tx.BlobHashes()}
	default:
		return []any{tx.Nonce(), tx.GasPrice(), tx.Gas(), tx.To(), tx.Value(), tx.Data()}
	}
}
