package utils

import (
	"errors"
	"math/big"
	"testing"

	"soroban_portfolio/internal/domain/entity"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- ToUnits / FromUnits ----

func TestToUnits_TruncatesExtraDigits(t *testing.T) {
	units, err := ToUnits(decimal.RequireFromString("1.23456789"), 7)
	require.NoError(t, err)
	assert.Equal(t, "12345678", units.String())
}

func TestToUnits_Table(t *testing.T) {
	tests := []struct {
		amount   string
		decimals uint32
		want     string
	}{
		{"0", 7, "0"},
		{"100", 7, "1000000000"},
		{"0.0000001", 7, "1"},
		{"0.00000009", 7, "0"},
		{"5.5", 0, "5"},
		{"12.5", 2, "1250"},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			units, err := ToUnits(decimal.RequireFromString(tt.amount), tt.decimals)
			require.NoError(t, err)
			assert.Equal(t, tt.want, units.String())
		})
	}
}

func TestToUnits_RejectsNegative(t *testing.T) {
	_, err := ToUnits(decimal.NewFromInt(-1), 7)
	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrInvalidAmount))
}

func TestUnitsRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "1", "1.5", "123.4567891", "0.0000001"} {
		a := decimal.RequireFromString(s)
		units, err := ToUnits(a, 7)
		require.NoError(t, err)
		assert.True(t, FromUnits(units, 7).Equal(a), "round trip of %s", s)
	}
}

func TestUnitsRoundTrip_TruncatingInputs(t *testing.T) {
	tests := []struct {
		amount   string
		decimals uint32
		want     string
	}{
		{"10.1234567", 6, "10.123456"},
		{"1.99999999", 7, "1.9999999"},
		{"1.99999999", 0, "1"},
		{"0.0000009", 6, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			a := decimal.RequireFromString(tt.amount)
			units, err := ToUnits(a, tt.decimals)
			require.NoError(t, err)
			back := FromUnits(units, tt.decimals)

			assert.True(t, back.Equal(decimal.RequireFromString(tt.want)), "got %s", back)
			assert.True(t, back.LessThanOrEqual(a))
			assert.True(t, a.Sub(back).LessThan(decimal.New(1, -int32(tt.decimals))))
		})
	}
}

func TestFromUnits(t *testing.T) {
	assert.True(t, FromUnits(nil, 7).IsZero())
	assert.Equal(t, "1.2345", FromUnits(big.NewInt(12345000), 7).String())
	assert.Equal(t, "42", FromUnits(big.NewInt(42), 0).String())
}

// ---- BatchStrings ----

func TestBatchStrings(t *testing.T) {
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, BatchStrings([]string{"a", "b", "c"}, 2))
	assert.Equal(t, [][]string{}, BatchStrings(nil, 2))
	assert.Equal(t, [][]string{{"a", "b"}}, BatchStrings([]string{"a", "b"}, 0))
}
