package port

import (
	"context"

	"soroban_portfolio/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// ContractRegistry maps token symbols to contract descriptors.
type ContractRegistry interface {
	Register(d entity.ContractDescriptor) error
	Lookup(symbol string) (entity.ContractDescriptor, error)
	LookupByAddress(address string) (entity.ContractDescriptor, error)
	// All returns descriptors in registration order.
	All() []entity.ContractDescriptor
}

// PriceSource supplies unit price and cost basis per token. Missing data is not an error.
type PriceSource interface {
	UnitPrice(tokenID string) (decimal.Decimal, bool)
	CostBasis(tokenID string) (decimal.Decimal, bool)
}

// TokenPriceService is a PriceSource that can refresh itself from a remote feed.
type TokenPriceService interface {
	PriceSource
	LoadAndCacheTokenPrices(ctx context.Context, symbols []string) error
	// AllPrices returns a copy of every known unit price keyed by token symbol.
	AllPrices() map[string]decimal.Decimal
}
