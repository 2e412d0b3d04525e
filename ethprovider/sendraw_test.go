package ethprovider

import (
	"context"
	"math"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/kkrt-labs/kakarot-rpc-go/codec"
)

// signRaw builds a signed EIP-1559 transfer and returns its envelope bytes,
// the transaction and the signer address.
func signRaw(t *testing.T, chainID uint64, nonce uint64) ([]byte, *types.Transaction, common.Address) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	from := crypto.PubkeyToAddress(key.PublicKey)

	to := common.HexToAddress("0x0000000000000000000000000000000000000099")
	tx, err := types.SignNewTx(key, types.LatestSignerForChainID(new(big.Int).SetUint64(chainID)), &types.DynamicFeeTx{
		ChainID:   new(big.Int).SetUint64(chainID),
		Nonce:     nonce,
		GasTipCap: big.NewInt(1),
		GasFeeCap: big.NewInt(875_000_000),
		Gas:       21000,
		To:        &to,
		Value:     big.NewInt(1000),
	})
	require.NoError(t, err)

	raw, err := tx.MarshalBinary()
	require.NoError(t, err)
	return raw, tx, from
}

func TestSendRawTransaction(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.kernel.chainID = 1263227476

	raw, tx, from := signRaw(t, 1263227476, 0)
	f.fund(from, uint256.MustFromHex("0xffffffffffffffffffff"))

	hash, err := f.p.SendRawTransaction(ctx, raw)
	require.NoError(t, err)
	require.Equal(t, tx.Hash(), hash)

	// Exactly one invoke was submitted, addressed from S = derive(signer).
	require.Len(t, f.kernel.invokes, 1)
	invoke := f.kernel.invokes[0]
	require.Equal(t, f.p.derive(from), invoke.SenderAddress)
	require.Equal(t, uint256.NewInt(0), invoke.Nonce)
	require.Len(t, invoke.Signature, 5)

	// Calldata layout: [1, KAKAROT, SELECTOR, 0, N, N, ...rlp bytes...].
	rlpNoSig, err := codec.EncodeWithoutSignature(tx)
	require.NoError(t, err)
	require.Len(t, invoke.Calldata, 6+len(rlpNoSig))
	require.Equal(t, uint256.NewInt(1), invoke.Calldata[0])
	require.Equal(t, f.cfg.KakarotAddress, invoke.Calldata[1])
	require.Equal(t, codec.EthSendTransactionSelector, invoke.Calldata[2])
	require.Equal(t, uint256.NewInt(uint64(len(rlpNoSig))), invoke.Calldata[4])

	// A pending row exists with retries=0 and no block location.
	pending, err := f.store.PendingTransaction(ctx, tx.Hash())
	require.NoError(t, err)
	require.NotNil(t, pending)
	require.Equal(t, uint8(0), pending.Retries)
	require.Nil(t, pending.Tx.BlockNumber)
	require.Equal(t, from, pending.Tx.From)
	require.Equal(t, tx.GasFeeCap().Bytes(), pending.Tx.GasPrice)
	require.Equal(t, tx.GasTipCap().Bytes(), pending.Tx.GasTipCap)

	// The Eth<->L2 hash mapping was recorded.
	require.Len(t, f.store.mappings, 1)
	require.Equal(t, tx.Hash(), f.store.mappings[0].EthHash)
}

func TestSendRawTransactionTestingMode(t *testing.T) {
	f := newFixture()
	f.p.TestingMode = true

	raw, tx, from := signRaw(t, 1263227476, 0)
	f.fund(from, uint256.MustFromHex("0xffffffffffffffffffff"))

	hash, err := f.p.SendRawTransaction(context.Background(), raw)
	require.NoError(t, err)
	require.NotEqual(t, tx.Hash(), hash)
	require.Equal(t, common.Hash(f.kernel.l2Hash.Bytes32()), hash)
}

func TestSendRawTransactionRejectsMalformed(t *testing.T) {
	f := newFixture()
	_, err := f.p.SendRawTransaction(context.Background(), []byte{0x01, 0x02})
	require.Error(t, err)
	require.Empty(t, f.kernel.invokes)
}

func TestSendRawTransactionRejectsUnfunded(t *testing.T) {
	f := newFixture()
	raw, _, _ := signRaw(t, 1263227476, 0)
	// No funding: the admission validator sees a zero balance.
	_, err := f.p.SendRawTransaction(context.Background(), raw)
	require.Error(t, err)
	require.Empty(t, f.kernel.invokes)
}

func TestComputeMaxFee(t *testing.T) {
	ctx := context.Background()

	t.Run("hive mode is uncapped", func(t *testing.T) {
		f := newFixture()
		f.cfg.Hive = true

		_, tx, from := signRaw(t, 1263227476, 0)
		fee, err := f.p.computeMaxFee(ctx, tx, from)
		require.NoError(t, err)
		require.Equal(t, uint256.NewInt(math.MaxUint64), fee)
	})

	t.Run("balance minus eth fees", func(t *testing.T) {
		f := newFixture()
		_, tx, from := signRaw(t, 1263227476, 0)

		ethFees := new(uint256.Int).Mul(uint256.NewInt(875_000_000), uint256.NewInt(21000))
		balance := new(uint256.Int).Add(ethFees, uint256.NewInt(5000))
		f.fund(from, balance)

		fee, err := f.p.computeMaxFee(ctx, tx, from)
		require.NoError(t, err)
		require.Equal(t, uint256.NewInt(5000), fee)
	})

	t.Run("saturates at zero", func(t *testing.T) {
		f := newFixture()
		_, tx, from := signRaw(t, 1263227476, 0)
		f.fund(from, uint256.NewInt(10))

		fee, err := f.p.computeMaxFee(ctx, tx, from)
		require.NoError(t, err)
		require.True(t, fee.IsZero())
	})

	t.Run("balance is capped at u64 max before subtraction", func(t *testing.T) {
		f := newFixture()
		_, tx, from := signRaw(t, 1263227476, 0)
		f.fund(from, uint256.MustFromHex("0xffffffffffffffffffffffffffffffff"))

		ethFees := new(uint256.Int).Mul(uint256.NewInt(875_000_000), uint256.NewInt(21000))
		want := new(uint256.Int).Sub(uint256.NewInt(math.MaxUint64), ethFees)

		fee, err := f.p.computeMaxFee(ctx, tx, from)
		require.NoError(t, err)
		require.Equal(t, want, fee)
	})
}

func TestMaybeDeployEOA(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.cfg.Hive = true
	f.cfg.KatanaAccountAddr = uint256.MustFromHex("0xdeadbeef")

	s := uint256.MustFromHex("0x123456")

	// Uninitialized (contract not found): a deploy invoke is submitted and
	// the deployer nonce advances.
	require.NoError(t, f.p.maybeDeployEOA(ctx, s))
	require.Len(t, f.kernel.invokes, 1)
	require.Equal(t, f.cfg.KatanaAccountAddr, f.kernel.invokes[0].SenderAddress)
	require.Equal(t, uint256.NewInt(1), f.p.deployerNonce)

	// Already initialized: no further invoke.
	f.account.initialized[s.Hex()] = true
	require.NoError(t, f.p.maybeDeployEOA(ctx, s))
	require.Len(t, f.kernel.invokes, 1)
}
