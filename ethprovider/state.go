package ethprovider

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/kkrt-labs/kakarot-rpc-go/apierror"
	"github.com/kkrt-labs/kakarot-rpc-go/codec"
	"github.com/kkrt-labs/kakarot-rpc-go/l2client"
)

// Syncing always reports false: this adapter has no sync state of its own,
// it only reflects the L2's already-synced view.
func (p *Provider) Syncing(ctx context.Context) (bool, error) {
	return false, nil
}

// Balance implements eth_getBalance: calls the native-token
// balance_of(derive(addr)) and recombines limbs. The block argument is
// accepted for Ethereum JSON-RPC compatibility but every read reflects the
// L2's current state: no historical state snapshotting is implemented for
// account-contract reads, matching the L2 kernel's own read semantics.
func (p *Provider) Balance(ctx context.Context, addr common.Address) (*uint256.Int, error) {
	s := p.derive(addr)
	felts, err := p.token.BalanceOf(ctx, s)
	if err != nil {
		return nil, apierror.L2ContractError(err)
	}
	return codec.JoinU256(felts), nil
}

// TransactionCount implements eth_getTransactionCount: get_nonce() on S (0 if
// contract-not-found), then max() against the L2 protocol-level nonce of S,
// to account for a reverted tx that still advanced the protocol nonce.
func (p *Provider) TransactionCount(ctx context.Context, addr common.Address) (uint64, error) {
	s := p.derive(addr)

	accountNonce, err := p.account.GetNonce(ctx, s)
	if err != nil {
		if l2client.IsNotFound(err) {
			accountNonce = uint256.NewInt(0)
		} else {
			return 0, apierror.L2ContractError(err)
		}
	}

	protocolNonce, err := p.kernel.ProtocolNonce(ctx, s)
	if err != nil {
		if l2client.IsNotFound(err) {
			protocolNonce = uint256.NewInt(0)
		} else {
			return 0, apierror.L2ContractError(err)
		}
	}

	if protocolNonce.Cmp(accountNonce) > 0 {
		return protocolNonce.Uint64(), nil
	}
	return accountNonce.Uint64(), nil
}

// GetCode implements eth_getCode: entrypoint-or-contract-not-found
// yields empty bytes; a length-1 result of [0] (account exists but has no
// code) also yields empty bytes; otherwise the packed bytecode is unpacked.
func (p *Provider) GetCode(ctx context.Context, addr common.Address) ([]byte, error) {
	s := p.derive(addr)
	felts, length, err := p.account.Bytecode(ctx, s)
	if err != nil {
		if l2client.IsNotFound(err) {
			return []byte{}, nil
		}
		return nil, apierror.L2ContractError(err)
	}
	if len(felts) == 1 && felts[0].IsZero() {
		return []byte{}, nil
	}
	return codec.UnpackBytecode(felts, length), nil
}

// StorageAt implements eth_getStorageAt: splits index into (low, high),
// reads the two-limb value at that storage slot, recombines.
func (p *Provider) StorageAt(ctx context.Context, addr common.Address, index *uint256.Int) (common.Hash, error) {
	s := p.derive(addr)
	limbs := codec.SplitU256(index)
	value, err := p.account.Storage(ctx, s, limbs.Low, limbs.High)
	if err != nil {
		if l2client.IsNotFound(err) {
			return common.Hash{}, nil
		}
		return common.Hash{}, apierror.L2ContractError(err)
	}
	return common.Hash(codec.JoinU256(value).Bytes32()), nil
}

// GasPrice implements eth_gasPrice via the kernel's base fee
// oracle.
func (p *Provider) GasPrice(ctx context.Context) (*uint256.Int, error) {
	fee, err := p.kernel.BaseFee(ctx)
	if err != nil {
		return nil, apierror.L2ContractError(err)
	}
	return fee, nil
}

// MaxPriorityFeePerGas implements eth_maxPriorityFeePerGas: this adapter has
// no mempool-derived tip estimator, so it reuses the base fee oracle as the
// suggested priority fee, matching a single-sequencer L2 with no fee market.
func (p *Provider) MaxPriorityFeePerGas(ctx context.Context) (*uint256.Int, error) {
	return p.GasPrice(ctx)
}

// Coinbase implements eth_coinbase: the adapter never mines, so there is no
// beneficiary address to report.
func (p *Provider) Coinbase(ctx context.Context) (common.Address, error) {
	return common.Address{}, nil
}

// Accounts implements eth_accounts: the adapter holds no managed private
// keys on behalf of RPC callers.
func (p *Provider) Accounts(ctx context.Context) ([]common.Address, error) {
	return []common.Address{}, nil
}
