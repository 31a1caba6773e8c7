package utils

import (
	"fmt"
	"math/big"

	"soroban_portfolio/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// ToUnits converts a human amount to integer contract units: floor(amount * 10^decimals).
// Digits beyond the token's precision are truncated, never rounded.
// Example: amount=1.23456789, decimals=7 => 12345678
func ToUnits(amount decimal.Decimal, decimals uint32) (*big.Int, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("amount %s is negative: %w", amount, entity.ErrInvalidAmount)
	}
	return amount.Shift(int32(decimals)).Floor().BigInt(), nil
}

// FromUnits converts raw contract units to a human amount: raw / 10^decimals.
func FromUnits(raw *big.Int, decimals uint32) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -int32(decimals))
}
