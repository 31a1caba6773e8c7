package service

import (
	"soroban_portfolio/internal/domain/entity"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Totals is the result of RecomputeTotals.
type Totals struct {
	Tokens           []entity.PortfolioToken
	TotalValue       decimal.Decimal
	TotalCost        decimal.Decimal
	UnrealizedPnL    decimal.Decimal
	RealizedPnL      decimal.Decimal
	TotalPnL         decimal.Decimal
	PercentageReturn decimal.Decimal
}

// RecomputeTotals derives every computed field from Balance, CurrentPrice and
// AvgCost. It does not modify its input and is idempotent.
func RecomputeTotals(tokens []entity.PortfolioToken) Totals {
	out := make([]entity.PortfolioToken, len(tokens))
	totalValue := decimal.Zero
	totalCost := decimal.Zero

	for i, t := range tokens {
		t.TotalValue = t.Balance.Mul(t.CurrentPrice)
		t.TotalCost = t.Balance.Mul(t.AvgCost)
		t.UnrealizedPnL = t.TotalValue.Sub(t.TotalCost)
		t.PercentageReturn = percentOf(t.UnrealizedPnL, t.TotalCost)
		out[i] = t
		totalValue = totalValue.Add(t.TotalValue)
		totalCost = totalCost.Add(t.TotalCost)
	}

	for i := range out {
		out[i].Allocation = percentOf(out[i].TotalValue, totalValue)
	}

	unrealized := totalValue.Sub(totalCost)
	// Realized PnL needs trade history, which lives outside this service.
	realized := decimal.Zero
	totalPnL := unrealized.Add(realized)

	return Totals{
		Tokens:           out,
		TotalValue:       totalValue,
		TotalCost:        totalCost,
		UnrealizedPnL:    unrealized,
		RealizedPnL:      realized,
		TotalPnL:         totalPnL,
		PercentageReturn: percentOf(totalPnL, totalCost),
	}
}

// percentOf returns part/whole*100, or 0 when whole is not positive.
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}
