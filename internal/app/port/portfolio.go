package port

import (
	"context"

	"soroban_portfolio/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// BatchInvoker executes independent invocations concurrently.
type BatchInvoker interface {
	// InvokeMany returns exactly one result per request, in request order.
	InvokeMany(ctx context.Context, reqs []entity.InvocationRequest) []entity.InvocationResult
}

// PortfolioService aggregates per-contract balances into portfolio snapshots
// and executes token writes.
type PortfolioService interface {
	LoadPortfolio(ctx context.Context, address string) (*entity.PortfolioSnapshot, error)
	RefreshPortfolio(ctx context.Context) (*entity.PortfolioSnapshot, error)
	Current() *entity.PortfolioSnapshot
	UpdateTokenBalance(tokenID string, balance decimal.Decimal) (*entity.PortfolioSnapshot, error)

	// The token reads and writes below accept a registered symbol or its contract address.
	TokenBalance(ctx context.Context, address, symbol string) (decimal.Decimal, error)
	Allowance(ctx context.Context, symbol, owner, spender string) (decimal.Decimal, error)
	TokenMetadata(ctx context.Context, symbol string) (entity.TokenMetadata, error)

	Transfer(ctx context.Context, symbol, from, to string, amount decimal.Decimal) (entity.InvocationResult, error)
	Approve(ctx context.Context, symbol, owner, spender string, amount decimal.Decimal) (entity.InvocationResult, error)
}
