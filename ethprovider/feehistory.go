package ethprovider

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/kkrt-labs/kakarot-rpc-go/apierror"
	"github.com/kkrt-labs/kakarot-rpc-go/rpctypes"
)

// FeeHistory is the eth_feeHistory response shape.
type FeeHistory struct {
	BaseFeePerGas []*hexutil.Big   `json:"baseFeePerGas"`
	GasUsedRatio  []float64        `json:"gasUsedRatio"`
	Reward        [][]*hexutil.Big `json:"reward"`
}

// FeeHistory implements eth_feeHistory: clips to the available
// range, returns blockCount+1 base-fee entries (extended by duplicating the
// final one) and blockCount gas-used ratios, guarded against a zero
// gas_limit divide. No priority-fee percentiles are tracked, so reward is a
// single empty list.
func (p *Provider) FeeHistory(ctx context.Context, blockCount uint64, newestBlock rpctypes.BlockNumber) (*FeeHistory, error) {
	if blockCount == 0 {
		return &FeeHistory{BaseFeePerGas: []*hexutil.Big{}, GasUsedRatio: []float64{}, Reward: [][]*hexutil.Big{}}, nil
	}

	newest, err := p.resolveBlockNumber(ctx, newestBlock)
	if err != nil {
		return nil, err
	}

	var start uint64
	if newest+1 > blockCount {
		start = newest + 1 - blockCount
	}

	headers, err := p.store.HeadersInRange(ctx, start, newest)
	if err != nil {
		return nil, apierror.DatabaseError(err)
	}
	if len(headers) == 0 {
		return nil, apierror.UnknownBlock(fmt.Sprintf("%d", newest))
	}

	out := &FeeHistory{
		BaseFeePerGas: make([]*hexutil.Big, 0, len(headers)+1),
		GasUsedRatio:  make([]float64, 0, len(headers)),
		Reward:        [][]*hexutil.Big{},
	}

	for _, h := range headers {
		var baseFee uint64
		if h.Header.BaseFeePerGas != nil {
			baseFee = *h.Header.BaseFeePerGas
		}
		fee := hexutil.Big(*new(big.Int).SetUint64(baseFee))
		out.BaseFeePerGas = append(out.BaseFeePerGas, &fee)

		gasLimit := h.Header.GasLimit
		if gasLimit == 0 {
			gasLimit = 1
		}
		out.GasUsedRatio = append(out.GasUsedRatio, float64(h.Header.GasUsed)/float64(gasLimit))
	}

	if len(out.BaseFeePerGas) > 0 {
		out.BaseFeePerGas = append(out.BaseFeePerGas, out.BaseFeePerGas[len(out.BaseFeePerGas)-1])
	}

	return out, nil
}
