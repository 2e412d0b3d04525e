package ethprovider

import (
	"context"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"

	"github.com/kkrt-labs/kakarot-rpc-go/apierror"
	"github.com/kkrt-labs/kakarot-rpc-go/codec"
	"github.com/kkrt-labs/kakarot-rpc-go/indexstore"
	"github.com/kkrt-labs/kakarot-rpc-go/l2client"
)

// storedTxFromSigned builds the pending-collection document for a
// newly-submitted signed transaction: no block location yet.
func storedTxFromSigned(tx *types.Transaction, from common.Address, raw []byte) indexstore.StoredTx {
	var gasPrice []byte
	if tx.GasPrice() != nil {
		gasPrice = tx.GasPrice().Bytes()
	}
	var gasTipCap []byte
	if tx.Type() == types.DynamicFeeTxType && tx.GasTipCap() != nil {
		gasTipCap = tx.GasTipCap().Bytes()
	}
	var value []byte
	if tx.Value() != nil {
		value = tx.Value().Bytes()
	}
	return indexstore.StoredTx{
		Hash:      tx.Hash(),
		From:      from,
		To:        tx.To(),
		Nonce:     tx.Nonce(),
		Value:     value,
		Gas:       tx.Gas(),
		GasPrice:  gasPrice,
		GasTipCap: gasTipCap,
		Input:     tx.Data(),
		RawRLP:    raw,
		Type:      tx.Type(),
	}
}

// SendRawTransaction implements eth_sendRawTransaction.
// Any failure aborts before L2 submission.
func (p *Provider) SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error) {
	// 1. chain id, already masked to 32 bits.
	chainID, err := p.ChainID(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	// 2. RLP-decode.
	tx, err := codec.DecodeSignedTransaction(raw)
	if err != nil {
		return common.Hash{}, apierror.EthereumDataFormat(err)
	}

	// 3. ecrecover.
	signer, err := codec.RecoverSigner(tx, new(big.Int).SetUint64(chainID))
	if err != nil {
		return common.Hash{}, apierror.SignatureRecoveryError(err)
	}

	s := p.derive(signer)

	// Admission validation, applied before the
	// write-path sequence proceeds to fee computation and submission.
	validator, err := p.validatorFor(ctx)
	if err != nil {
		return common.Hash{}, err
	}
	if _, err := validator.Validate(ctx, tx); err != nil {
		return common.Hash{}, err
	}

	// 4. max_fee.
	maxFee, err := p.computeMaxFee(ctx, tx, signer)
	if err != nil {
		return common.Hash{}, err
	}

	// 5. hive-mode deploy-EOA bootstrap.
	if p.cfg.Hive {
		if err := p.maybeDeployEOA(ctx, s); err != nil {
			return common.Hash{}, err
		}
	}

	// 6. build the native invoke.
	rlpNoSig, err := codec.EncodeWithoutSignature(tx)
	if err != nil {
		return common.Hash{}, apierror.EthereumDataFormat(err)
	}
	invoke := codec.InvokeTransaction{
		SenderAddress: s,
		Calldata:      codec.BuildInvokeCalldata(p.cfg.KakarotAddress, rlpNoSig),
		Signature:     codec.BuildInvokeSignature(tx),
		Nonce:         uint256.NewInt(tx.Nonce()),
		MaxFee:        maxFee,
	}

	// 7. submit.
	l2Hash, err := p.kernel.AddInvokeTransaction(ctx, invoke)
	if err != nil {
		return common.Hash{}, apierror.L2ContractError(err)
	}

	ethHash := tx.Hash()

	// 8. upsert pending: retries=0 for a brand-new hash, existing+1 when the
	// retry loop re-submits the same transaction.
	retries, err := p.store.PendingTransactionRetries(ctx, ethHash)
	if err != nil {
		return common.Hash{}, apierror.DatabaseError(err)
	}
	stored := storedTxFromSigned(tx, signer, raw)
	if err := p.store.UpsertPendingTransaction(ctx, stored, retries); err != nil {
		return common.Hash{}, apierror.DatabaseError(err)
	}

	// 9. hash mapping.
	if err := p.store.UpsertHashMapping(ctx, indexstore.StoredHashMapping{
		EthHash: ethHash,
		L2Hash:  common.Hash(l2Hash.Bytes32()),
	}); err != nil {
		return common.Hash{}, apierror.DatabaseError(err)
	}

	p.logger.Info("submitted transaction", "ethHash", ethHash.Hex(), "l2Hash", l2Hash.Hex())

	// 10. testing mode returns the L2 hash instead.
	if p.TestingMode {
		return common.Hash(l2Hash.Bytes32()), nil
	}
	return ethHash, nil
}

// computeMaxFee bounds the native fee by what the signer can pay after
// covering the Ethereum-side fees.
func (p *Provider) computeMaxFee(ctx context.Context, tx interface {
	GasFeeCap() *big.Int
	Gas() uint64
}, signer common.Address) (*uint256.Int, error) {
	if p.cfg.Hive {
		return uint256.NewInt(math.MaxUint64), nil
	}

	ethFeesPerGas, overflow := uint256.FromBig(tx.GasFeeCap())
	if overflow {
		return nil, apierror.GasOverflow()
	}
	ethFees := new(uint256.Int).Mul(ethFeesPerGas, uint256.NewInt(tx.Gas()))

	balance, err := p.Balance(ctx, signer)
	if err != nil {
		return nil, err
	}

	u64Max := uint256.NewInt(math.MaxUint64)

	capped := balance
	if balance.Cmp(u64Max) > 0 {
		capped = u64Max
	}

	if capped.Cmp(ethFees) <= 0 {
		return new(uint256.Int), nil
	}
	return new(uint256.Int).Sub(capped, ethFees), nil
}

// maybeDeployEOA: in hive mode, if S
// is not yet initialized, submit a deploy-EOA invocation using the
// process-wide deployer account, incrementing its nonce atomically.
func (p *Provider) maybeDeployEOA(ctx context.Context, s *uint256.Int) error {
	initialized, err := p.account.IsInitialized(ctx, s)
	if err != nil {
		if l2client.IsNotFound(err) {
			initialized = false
		} else {
			return apierror.L2ContractError(err)
		}
	}
	if initialized {
		return nil
	}

	p.deployerMu.Lock()
	defer p.deployerMu.Unlock()

	if p.deployerNonce == nil {
		p.deployerNonce = new(uint256.Int)
	}

	invoke := codec.InvokeTransaction{
		SenderAddress: p.cfg.KatanaAccountAddr,
		Calldata:      codec.BuildDeployEOACalldata(p.cfg.UninitializedAccountClassHash, s),
		Signature:     nil,
		Nonce:         new(uint256.Int).Set(p.deployerNonce),
		MaxFee:        new(uint256.Int).SetAllOne(),
	}
	if _, err := p.kernel.AddInvokeTransaction(ctx, invoke); err != nil {
		return apierror.L2ContractError(err)
	}
	p.deployerNonce.AddUint64(p.deployerNonce, 1)
	return nil
}
