// Package mempool implements admission validation and the txpool_* query
// surface over the index store's pending collection.
package mempool

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"

	"github.com/kkrt-labs/kakarot-rpc-go/apierror"
)

// MaxTxInputBytes is the maximum encoded transaction size admitted into the
// pool, matching reth's DEFAULT_MAX_TX_INPUT_BYTES.
const MaxTxInputBytes = 131_072

// DefaultBlockGasLimit is the block gas limit the provider's validator
// checks every transaction against; no live gas limit is read from indexed
// headers. It matches reth's ETHEREUM_BLOCK_GAS_LIMIT default in
// KakarotTransactionValidatorBuilder::new.
const DefaultBlockGasLimit = 30_000_000

// AccountView is the minimal account state the validator needs, supplied by
// the eth provider's account-contract reads.
type AccountView struct {
	Nonce   uint64
	Balance *uint256.Int
	HasCode bool
}

// AccountSource fetches the AccountView for a validated transaction's
// sender, decoupling the validator from ethprovider's concrete type (avoids
// an import cycle, since ethprovider imports this package for the
// Validator).
type AccountSource interface {
	AccountView(ctx context.Context, addr common.Address) (AccountView, error)
}

// Validator holds the fork/type toggles admission checks against: legacy,
// EIP-2930 and EIP-1559 allowed, EIP-4844 disabled, Shanghai active.
type Validator struct {
	ChainID       uint64
	BlockGasLimit uint64
	AllowEIP2930  bool
	AllowEIP1559  bool
	AllowEIP4844  bool
	accounts      AccountSource
}

func NewValidator(chainID, blockGasLimit uint64, accounts AccountSource) *Validator {
	return &Validator{
		ChainID:       chainID,
		BlockGasLimit: blockGasLimit,
		AllowEIP2930:  true,
		AllowEIP1559:  true,
		AllowEIP4844:  false,
		accounts:      accounts,
	}
}

// ValidOutcome mirrors reth's TransactionValidationOutcome::Valid payload
//: the account's balance and nonce at validation
// time, alongside the transaction itself.
type ValidOutcome struct {
	Balance     *uint256.Int
	StateNonce  uint64
	Transaction *types.Transaction
}

// Validate runs the full admission check list in order, returning the
// first violation found.
func (v *Validator) Validate(ctx context.Context, tx *types.Transaction) (*ValidOutcome, error) {
	switch tx.Type() {
	case types.LegacyTxType:
	case types.AccessListTxType:
		if !v.AllowEIP2930 {
			return nil, apierror.TransactionRejected("EIP-2930 transactions are disabled")
		}
	case types.DynamicFeeTxType:
		if !v.AllowEIP1559 {
			return nil, apierror.TransactionRejected("EIP-1559 transactions are disabled")
		}
	case types.BlobTxType:
		if !v.AllowEIP4844 {
			return nil, apierror.TransactionRejected("EIP-4844 transactions are disabled")
		}
	default:
		return nil, apierror.TransactionRejected("unsupported transaction type")
	}

	size := tx.Size()
	if size > MaxTxInputBytes {
		return nil, apierror.TransactionRejected("oversized transaction input")
	}

	if tx.Gas() > v.BlockGasLimit {
		return nil, apierror.TransactionRejected("gas limit exceeds block gas limit")
	}

	if tx.GasTipCapIntCmp(tx.GasFeeCap()) > 0 {
		return nil, apierror.TransactionRejected("max priority fee per gas exceeds max fee per gas")
	}

	if tx.ChainId() != nil && tx.ChainId().Uint64() != v.ChainID {
		return nil, apierror.TransactionRejected("chain id mismatch")
	}

	intrinsicGas, err := core.IntrinsicGas(tx.Data(), tx.AccessList(), nil, tx.To() == nil, true, true, true)
	if err != nil {
		return nil, apierror.TransactionRejected(err.Error())
	}
	if tx.Gas() < intrinsicGas {
		return nil, apierror.TransactionRejected("intrinsic gas too low")
	}

	signer := types.LatestSignerForChainID(tx.ChainId())
	sender, err := types.Sender(signer, tx)
	if err != nil {
		return nil, apierror.SignatureRecoveryError(err)
	}

	account, err := v.accounts.AccountView(ctx, sender)
	if err != nil {
		return nil, err
	}

	if account.HasCode {
		return nil, apierror.TransactionRejected("sender account has bytecode")
	}

	if tx.Nonce() < account.Nonce {
		return nil, apierror.TransactionRejected("nonce lower than account nonce")
	}

	cost := uint256.MustFromBig(tx.Cost())
	if account.Balance == nil || cost.Cmp(account.Balance) > 0 {
		return nil, apierror.TransactionRejected("insufficient funds for transaction cost")
	}

	return &ValidOutcome{
		Balance:     account.Balance,
		StateNonce:  account.Nonce,
		Transaction: tx,
	}, nil
}
