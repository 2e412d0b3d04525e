package ethprovider

import (
	"context"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/kkrt-labs/kakarot-rpc-go/apierror"
	"github.com/kkrt-labs/kakarot-rpc-go/indexstore"
	"github.com/kkrt-labs/kakarot-rpc-go/rpctypes"
)

// Logs implements eth_getLogs: resolves the
// filter's block range or blockHash against the current chain tip, clips it
// to what has actually been indexed, and returns an empty slice (not an
// error) when the clipped range is empty, matching ClipRange's contract.
func (p *Provider) Logs(ctx context.Context, filter rpctypes.LogFilter) ([]rpctypes.Log, error) {
	currentBlock, err := p.BlockNumber(ctx)
	if err != nil {
		return nil, err
	}

	fromBlock, toBlock := uint64(0), currentBlock
	if filter.BlockHash != nil {
		header, err := p.store.HeaderByHash(ctx, *filter.BlockHash)
		if err != nil {
			return nil, apierror.DatabaseError(err)
		}
		if header == nil {
			return nil, apierror.UnknownBlock(filter.BlockHash.Hex())
		}
		fromBlock, toBlock = header.Header.Number, header.Header.Number
	} else {
		fromBlock, err = filter.FromBlock.Resolve(func() (uint64, error) { return currentBlock, nil })
		if err != nil {
			return nil, err
		}
		toBlock, err = filter.ToBlock.Resolve(func() (uint64, error) { return currentBlock, nil })
		if err != nil {
			return nil, err
		}
	}

	from, to, ok := indexstore.ClipRange(fromBlock, toBlock, currentBlock)
	if !ok {
		return []rpctypes.Log{}, nil
	}

	limit := int64(0)
	if p.cfg.MaxLogs != nil {
		limit = int64(*p.cfg.MaxLogs)
	}

	mongoFilter := indexstore.BuildFilter(indexstore.LogsFilter{
		FromBlock: from,
		ToBlock:   to,
		Addresses: filter.Addresses,
		Topics:    filter.Topics,
	})
	stored, err := p.store.Logs(ctx, mongoFilter, limit)
	if err != nil {
		return nil, apierror.DatabaseError(err)
	}

	out := make([]rpctypes.Log, len(stored))
	for i, l := range stored {
		out[i] = rpctypes.Log{
			Address:          l.Log.Address,
			Topics:           l.Log.Topics,
			Data:             l.Log.Data,
			BlockNumber:      hexutil.Uint64(l.Log.BlockNumber),
			TransactionHash:  l.Log.TransactionHash,
			TransactionIndex: hexutil.Uint64(l.Log.TransactionIndex),
			BlockHash:        l.Log.BlockHash,
			LogIndex:         hexutil.Uint64(l.Log.LogIndex),
			Removed:          l.Log.Removed,
		}
	}
	return out, nil
}
