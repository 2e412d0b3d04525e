package ethprovider

import (
	"math"

	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"

	"github.com/kkrt-labs/kakarot-rpc-go/apierror"
	"github.com/kkrt-labs/kakarot-rpc-go/l2client"
)

// CallRequest is the eth_call / eth_estimateGas request shape.
type CallRequest struct {
	From     *common.Address
	To       *common.Address
	Gas      *hexutil.Uint64
	GasPrice *hexutil.Big
	Value    *hexutil.Big
	Data     hexutil.Bytes
	Nonce    *hexutil.Uint64
}

// buildCallInput applies the eth_call defaults: from=0 if absent;
// gas_limit = request.gas or CallRequestGasLimit; gas_price = request.gas_price
// or self.GasPrice(); nonce = request.nonce or TransactionCount(from) (0 if
// no from).
func (p *Provider) buildCallInput(ctx context.Context, req CallRequest, forEstimate bool) (l2client.CallInput, error) {
	from := common.Address{}
	if req.From != nil {
		from = *req.From
	}

	gasLimit := uint64(CallRequestGasLimit)
	if req.Gas != nil {
		gasLimit = uint64(*req.Gas)
	} else if forEstimate {
		gasLimit = math.MaxUint64
	}

	gasPrice := new(uint256.Int)
	if req.GasPrice != nil {
		gasPrice = uint256.MustFromBig(req.GasPrice.ToInt())
	} else {
		gp, err := p.GasPrice(ctx)
		if err != nil {
			return l2client.CallInput{}, err
		}
		gasPrice = gp
	}

	value := new(uint256.Int)
	if req.Value != nil {
		value = uint256.MustFromBig(req.Value.ToInt())
	}

	var to *uint256.Int
	if req.To != nil {
		to = p.derive(*req.To)
	}

	var origin *uint256.Int
	var nonce *uint256.Int
	if req.From != nil {
		origin = p.derive(from)
		if req.Nonce != nil {
			nonce = uint256.NewInt(uint64(*req.Nonce))
		} else {
			n, err := p.TransactionCount(ctx, from)
			if err != nil {
				return l2client.CallInput{}, err
			}
			nonce = uint256.NewInt(n)
		}
	} else {
		origin = new(uint256.Int)
		nonce = new(uint256.Int)
	}

	return l2client.CallInput{
		Origin:   origin,
		To:       to,
		Nonce:    nonce,
		GasLimit: gasLimit,
		GasPrice: gasPrice,
		Value:    value,
		Calldata: req.Data,
	}, nil
}

// Call implements eth_call: success==0 signals an EVM revert,
// parsed into an EvmError.
func (p *Provider) Call(ctx context.Context, req CallRequest) ([]byte, error) {
	input, err := p.buildCallInput(ctx, req, false)
	if err != nil {
		return nil, err
	}
	result, err := p.kernel.EthCall(ctx, input)
	if err != nil {
		return nil, apierror.L2ContractError(err)
	}
	if !result.Success {
		evmErr := apierror.ParseEvmError(string(result.ReturnData))
		return nil, apierror.Execution(evmErr)
	}
	return result.ReturnData, nil
}

// EstimateGas implements eth_estimateGas: defaults gas to u64::MAX to
// avoid gas-based failure and returns the kernel reader's RequiredGas, a
// uint64, as is. There is no u128 conversion here and GasOverflow is never
// returned.
func (p *Provider) EstimateGas(ctx context.Context, req CallRequest) (uint64, error) {
	input, err := p.buildCallInput(ctx, req, true)
	if err != nil {
		return 0, err
	}
	result, err := p.kernel.EstimateGas(ctx, input)
	if err != nil {
		return 0, apierror.L2ContractError(err)
	}
	if !result.Success {
		evmErr := apierror.ParseEvmError(string(result.ReturnData))
		return 0, apierror.Execution(evmErr)
	}
	return result.RequiredGas, nil
}
