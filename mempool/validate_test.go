package mempool

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

const testChainID = 1263227476

type fakeAccounts struct {
	view AccountView
	err  error
}

func (f fakeAccounts) AccountView(_ context.Context, _ common.Address) (AccountView, error) {
	return f.view, f.err
}

func signTestTx(t *testing.T, key *ecdsa.PrivateKey, data types.TxData) *types.Transaction {
	t.Helper()
	tx, err := types.SignNewTx(key, types.LatestSignerForChainID(big.NewInt(testChainID)), data)
	require.NoError(t, err)
	return tx
}

func fundedAccounts() fakeAccounts {
	return fakeAccounts{view: AccountView{
		Nonce:   0,
		Balance: uint256.MustFromHex("0xffffffffffffffffffff"),
	}}
}

func TestValidateAccepts(t *testing.T) {
	key, _ := crypto.GenerateKey()
	to := common.HexToAddress("0x01")
	tx := signTestTx(t, key, &types.DynamicFeeTx{
		ChainID:   big.NewInt(testChainID),
		Nonce:     0,
		GasTipCap: big.NewInt(1),
		GasFeeCap: big.NewInt(875_000_000),
		Gas:       21000,
		To:        &to,
		Value:     big.NewInt(1000),
	})

	v := NewValidator(testChainID, DefaultBlockGasLimit, fundedAccounts())
	outcome, err := v.Validate(context.Background(), tx)
	require.NoError(t, err)
	require.Equal(t, uint64(0), outcome.StateNonce)
	require.Equal(t, tx, outcome.Transaction)
}

func TestValidateRejections(t *testing.T) {
	key, _ := crypto.GenerateKey()
	to := common.HexToAddress("0x01")

	baseDynamic := func() *types.DynamicFeeTx {
		return &types.DynamicFeeTx{
			ChainID:   big.NewInt(testChainID),
			Nonce:     0,
			GasTipCap: big.NewInt(1),
			GasFeeCap: big.NewInt(875_000_000),
			Gas:       21000,
			To:        &to,
			Value:     big.NewInt(1000),
		}
	}

	testCases := []struct {
		name     string
		tx       *types.Transaction
		accounts fakeAccounts
	}{
		{
			name: "gas limit exceeds block gas limit",
			tx: signTestTx(t, key, func() *types.DynamicFeeTx {
				d := baseDynamic()
				d.Gas = DefaultBlockGasLimit + 1
				return d
			}()),
			accounts: fundedAccounts(),
		},
		{
			name: "tip above fee cap",
			tx: signTestTx(t, key, func() *types.DynamicFeeTx {
				d := baseDynamic()
				d.GasTipCap = big.NewInt(2)
				d.GasFeeCap = big.NewInt(1)
				return d
			}()),
			accounts: fundedAccounts(),
		},
		{
			name: "wrong chain id",
			tx: func() *types.Transaction {
				wrong := big.NewInt(999)
				tx, err := types.SignNewTx(key, types.LatestSignerForChainID(wrong), &types.DynamicFeeTx{
					ChainID:   wrong,
					GasTipCap: big.NewInt(1),
					GasFeeCap: big.NewInt(2),
					Gas:       21000,
					To:        &to,
				})
				require.NoError(t, err)
				return tx
			}(),
			accounts: fundedAccounts(),
		},
		{
			name: "intrinsic gas too low",
			tx: signTestTx(t, key, func() *types.DynamicFeeTx {
				d := baseDynamic()
				d.Gas = 21000
				d.Data = bytes.Repeat([]byte{0x01}, 128)
				return d
			}()),
			accounts: fundedAccounts(),
		},
		{
			name:     "sender has code",
			tx:       signTestTx(t, key, baseDynamic()),
			accounts: fakeAccounts{view: AccountView{Balance: uint256.NewInt(1e18), HasCode: true}},
		},
		{
			name:     "stale nonce",
			tx:       signTestTx(t, key, baseDynamic()),
			accounts: fakeAccounts{view: AccountView{Nonce: 5, Balance: uint256.NewInt(1e18)}},
		},
		{
			name:     "insufficient balance",
			tx:       signTestTx(t, key, baseDynamic()),
			accounts: fakeAccounts{view: AccountView{Balance: uint256.NewInt(1)}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := NewValidator(testChainID, DefaultBlockGasLimit, tc.accounts)
			_, err := v.Validate(context.Background(), tc.tx)
			require.Error(t, err)
		})
	}
}

func TestValidateRejectsDisabledTypes(t *testing.T) {
	key, _ := crypto.GenerateKey()
	to := common.HexToAddress("0x01")

	v := NewValidator(testChainID, DefaultBlockGasLimit, fundedAccounts())
	v.AllowEIP1559 = false

	tx := signTestTx(t, key, &types.DynamicFeeTx{
		ChainID:   big.NewInt(testChainID),
		GasTipCap: big.NewInt(1),
		GasFeeCap: big.NewInt(2),
		Gas:       21000,
		To:        &to,
	})
	_, err := v.Validate(context.Background(), tx)
	require.Error(t, err)
}
