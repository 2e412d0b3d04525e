package ethprovider

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/kkrt-labs/kakarot-rpc-go/indexstore"
)

// RunRetryLoop is a background task that runs every
// RetryTxIntervalSeconds and, for each pending transaction: prunes it
// if already mined, prunes it if retries would reach the configured cap,
// otherwise re-submits and bumps retries. Individual failures are logged and
// never stop the loop.
func (p *Provider) RunRetryLoop(ctx context.Context) {
	interval := time.Duration(p.cfg.RetryTxIntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastReport := time.Now()
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("retry loop stopped")
			return
		case <-ticker.C:
			start := time.Now()
			p.retryCycle(ctx)
			// Report cycle duration at a bounded frequency so a small
			// RETRY_TX_INTERVAL does not flood the logs.
			if time.Since(lastReport) >= retryReportInterval {
				p.logger.Info("retry cycle", "elapsed", time.Since(start).String())
				lastReport = time.Now()
			}
		}
	}
}

const retryReportInterval = 5 * time.Minute

func (p *Provider) retryCycle(ctx context.Context) {
	pending, err := p.store.AllPendingTransactions(ctx)
	if err != nil {
		p.logger.Error("retry cycle: failed to list pending transactions", "err", err)
		return
	}

	for _, entry := range pending {
		p.retryOne(ctx, entry)
	}
}

func (p *Provider) retryOne(ctx context.Context, entry indexstore.StoredPendingTransaction) {
	hash := entry.Tx.Hash

	mined, err := p.store.Transaction(ctx, hash)
	if err != nil {
		p.logger.Error("retry: failed to check mined collection", "hash", hash.Hex(), "err", err)
		return
	}
	if mined != nil {
		p.pruneRetry(ctx, hash, "already mined")
		return
	}

	if uint64(entry.Retries)+1 >= uint64(p.cfg.TransactionMaxRetries) {
		p.pruneRetry(ctx, hash, "max retries reached")
		return
	}

	tx, err := toSignedTransaction(entry.Tx)
	if err != nil {
		p.logger.Error("retry: failed to rebuild transaction, pruning", "hash", hash.Hex(), "err", err)
		p.pruneRetry(ctx, hash, "decode failure")
		return
	}
	raw, err := tx.MarshalBinary()
	if err != nil {
		p.logger.Error("retry: failed to re-encode transaction, pruning", "hash", hash.Hex(), "err", err)
		p.pruneRetry(ctx, hash, "encode failure")
		return
	}

	// SendRawTransaction re-runs the full admission path and bumps the
	// pending row's retry count itself.
	if _, err := p.SendRawTransaction(ctx, raw); err != nil {
		p.logger.Error("retry: resubmission failed", "hash", hash.Hex(), "retries", entry.Retries, "err", err)
	}
}

func (p *Provider) pruneRetry(ctx context.Context, hash common.Hash, reason string) {
	if err := p.store.DeletePendingTransaction(ctx, hash); err != nil {
		p.logger.Error("retry: failed to prune pending transaction", "hash", hash.Hex(), "reason", reason, "err", err)
		return
	}
	p.logger.Info("pruned pending transaction", "hash", hash.Hex(), "reason", reason)
}

// toSignedTransaction decodes the stored raw RLP envelope back into a typed
// transaction for re-submission.
func toSignedTransaction(stored indexstore.StoredTx) (*types.Transaction, error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(stored.RawRLP); err != nil {
		return nil, err
	}
	return tx, nil
}
