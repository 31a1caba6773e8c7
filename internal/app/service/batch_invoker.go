package service

import (
	"context"
	"fmt"
	"time"

	"soroban_portfolio/internal/app/port"
	"soroban_portfolio/internal/domain/entity"

	"golang.org/x/sync/errgroup"
)

// BatchInvoker implements port.BatchInvoker with bounded concurrent read-only calls.
type BatchInvoker struct {
	gateway       port.LedgerGateway
	maxConcurrent int
	callTimeout   time.Duration
	logger        port.Logger
}

// NewBatchInvoker creates a BatchInvoker. Each call runs under its own callTimeout.
func NewBatchInvoker(gateway port.LedgerGateway, maxConcurrent int, callTimeout time.Duration, logger port.Logger) *BatchInvoker {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	if callTimeout <= 0 {
		callTimeout = 10 * time.Second
	}
	return &BatchInvoker{
		gateway:       gateway,
		maxConcurrent: maxConcurrent,
		callTimeout:   callTimeout,
		logger:        logger,
	}
}

// InvokeMany returns exactly one result per request, in request order.
// A failing or panicking call only affects its own slot. If the batch cannot
// start at all, every slot carries a connectivity error.
func (b *BatchInvoker) InvokeMany(ctx context.Context, reqs []entity.InvocationRequest) []entity.InvocationResult {
	results := make([]entity.InvocationResult, len(reqs))
	if len(reqs) == 0 {
		return results
	}

	if b.gateway == nil || ctx.Err() != nil {
		detail := "no ledger gateway"
		if ctx.Err() != nil {
			detail = ctx.Err().Error()
		}
		b.logger.Warn("Batch could not start", "requests", len(reqs), "reason", detail)
		for i := range results {
			results[i] = entity.Failed(entity.NewLedgerError(entity.ErrConnectivity, detail))
		}
		return results
	}

	// Not errgroup.WithContext: one failed slot must not cancel its siblings.
	var g errgroup.Group
	g.SetLimit(b.maxConcurrent)
	for i, req := range reqs {
		g.Go(func() error {
			results[i] = b.invokeOne(ctx, req)
			return nil
		})
	}
	_ = g.Wait()

	b.logger.Debug("Batch finished", "requests", len(reqs))
	return results
}

func (b *BatchInvoker) invokeOne(ctx context.Context, req entity.InvocationRequest) (res entity.InvocationResult) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Invocation panicked", "contract", req.ContractAddress, "method", req.Method, "panic", r)
			res = entity.Failed(fmt.Errorf("invocation %s on %s panicked: %v", req.Method, req.ContractAddress, r))
		}
	}()

	callCtx, cancel := context.WithTimeout(ctx, b.callTimeout)
	defer cancel()
	return b.gateway.InvokeReadOnly(callCtx, req)
}
