package client

import (
	"context"
	"fmt"
	"time"

	"soroban_portfolio/internal/app/port"
	"soroban_portfolio/internal/domain/entity"
	"soroban_portfolio/internal/pkg/metrics"
)

// waitForConfirmation polls getTransaction every interval until the transaction
// reaches SUCCESS or FAILED. When ctx is done first it returns ErrTimeout bound to hash;
// the outcome is then unknown and the caller may re-query by hash.
// Transient poll errors are logged and retried.
func waitForConfirmation(
	ctx context.Context,
	rpc port.SorobanRPC,
	hash string,
	interval time.Duration,
	logger port.Logger,
) (entity.TransactionOutcome, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	attempts := 0
	for {
		attempts++
		metrics.ConfirmationPolls.Inc()
		out, err := rpc.GetTransaction(ctx, hash)
		switch {
		case err != nil:
			if ctx.Err() == nil {
				logger.Warn("Transaction status poll failed, retrying", "hash", hash, "attempt", attempts, "error", err)
			}
		case out.Status == entity.TxStatusSuccess || out.Status == entity.TxStatusFailed:
			logger.Debug("Transaction reached final status", "hash", hash, "status", out.Status, "attempts", attempts)
			return out, nil
		default:
			logger.Debug("Transaction not yet confirmed", "hash", hash, "status", out.Status, "attempt", attempts)
		}

		select {
		case <-ctx.Done():
			return entity.TransactionOutcome{}, entity.NewLedgerError(entity.ErrTimeout,
				fmt.Sprintf("no final status after %d polls", attempts)).WithHash(hash)
		case <-ticker.C:
		}
	}
}
