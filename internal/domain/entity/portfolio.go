package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PortfolioToken is one token position inside a snapshot.
// TotalValue, TotalCost, UnrealizedPnL, PercentageReturn and Allocation are derived
// by the aggregator and must never be set independently.
type PortfolioToken struct {
	TokenID          string          `json:"tokenId"`
	Symbol           string          `json:"symbol"`
	Name             string          `json:"name"`
	ContractAddress  string          `json:"contractAddress"`
	Balance          decimal.Decimal `json:"balance"`
	AvgCost          decimal.Decimal `json:"avgCost"`
	CurrentPrice     decimal.Decimal `json:"currentPrice"`
	TotalValue       decimal.Decimal `json:"totalValue"`
	TotalCost        decimal.Decimal `json:"totalCost"`
	UnrealizedPnL    decimal.Decimal `json:"unrealizedPnL"`
	PercentageReturn decimal.Decimal `json:"percentageReturn"`
	Allocation       decimal.Decimal `json:"allocation"`
	LastUpdated      time.Time       `json:"lastUpdated"`
}

// PortfolioSnapshot is an immutable, fully computed view of a portfolio.
type PortfolioSnapshot struct {
	ID               string           `json:"id"`
	Address          string           `json:"address"`
	TotalValue       decimal.Decimal  `json:"totalValue"`
	TotalCost        decimal.Decimal  `json:"totalCost"`
	UnrealizedPnL    decimal.Decimal  `json:"unrealizedPnL"`
	RealizedPnL      decimal.Decimal  `json:"realizedPnL"`
	TotalPnL         decimal.Decimal  `json:"totalPnL"`
	PercentageReturn decimal.Decimal  `json:"percentageReturn"`
	Tokens           []PortfolioToken `json:"tokens"`
	Incomplete       bool             `json:"incomplete"`
	Warnings         []PortfolioError `json:"warnings,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// PortfolioID returns the snapshot identifier for an address.
func PortfolioID(address string) string {
	return "portfolio-" + address
}
