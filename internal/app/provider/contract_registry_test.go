package provider

import (
	"crypto/rand"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"soroban_portfolio/internal/domain/entity"
	"soroban_portfolio/internal/pkg/logger"

	"github.com/stellar/go/strkey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractAddress(t *testing.T) string {
	t.Helper()
	raw := make([]byte, 32)
	_, err := rand.Read(raw)
	require.NoError(t, err)
	addr, err := strkey.Encode(strkey.VersionByteContract, raw)
	require.NoError(t, err)
	return addr
}

// ---- address format ----

func TestIsContractAddress(t *testing.T) {
	valid := "C" + strings.Repeat("A", 55)
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"valid", valid, true},
		{"real strkey", contractAddress(t), true},
		{"55 chars", valid[:55], false},
		{"57 chars", valid + "A", false},
		{"lowercase", "C" + strings.Repeat("a", 55), false},
		{"account prefix", "G" + strings.Repeat("A", 55), false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsContractAddress(tt.in))
		})
	}
}

// ---- Register / Lookup ----

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r, err := NewContractRegistry(logger.Nop())
	require.NoError(t, err)

	usdc := entity.ContractDescriptor{Symbol: "usdc", Name: "USD Coin", Address: contractAddress(t), Decimals: 7}
	require.NoError(t, r.Register(usdc))

	got, err := r.Lookup("USDC")
	require.NoError(t, err)
	assert.Equal(t, "USDC", got.Symbol)
	assert.Equal(t, usdc.Address, got.Address)

	byAddr, err := r.LookupByAddress(usdc.Address)
	require.NoError(t, err)
	assert.Equal(t, "USDC", byAddr.Symbol)
}

func TestRegistry_RejectsMalformedAddress(t *testing.T) {
	r, err := NewContractRegistry(logger.Nop())
	require.NoError(t, err)

	err = r.Register(entity.ContractDescriptor{Symbol: "BAD", Address: "CSHORT", Decimals: 7})
	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrInvalidAddress))
	assert.Empty(t, r.All())
}

func TestRegistry_LookupUnknown(t *testing.T) {
	r, err := NewContractRegistry(logger.Nop())
	require.NoError(t, err)

	_, err = r.Lookup("NOPE")
	assert.True(t, errors.Is(err, entity.ErrNotFound))
	_, err = r.LookupByAddress(contractAddress(t))
	assert.True(t, errors.Is(err, entity.ErrNotFound))
}

func TestRegistry_AllKeepsRegistrationOrder(t *testing.T) {
	a := entity.ContractDescriptor{Symbol: "XLM", Address: contractAddress(t), Decimals: 7}
	b := entity.ContractDescriptor{Symbol: "USDC", Address: contractAddress(t), Decimals: 7}
	c := entity.ContractDescriptor{Symbol: "AQUA", Address: contractAddress(t), Decimals: 7}
	r, err := NewContractRegistry(logger.Nop(), a, b, c)
	require.NoError(t, err)

	replacement := b
	replacement.Name = "Circle USD"
	require.NoError(t, r.Register(replacement))

	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, []string{"XLM", "USDC", "AQUA"}, []string{all[0].Symbol, all[1].Symbol, all[2].Symbol})
	assert.Equal(t, "Circle USD", all[1].Name)
}

func TestLoadContractRegistry_FromFile(t *testing.T) {
	addr := contractAddress(t)
	path := filepath.Join(t.TempDir(), "contracts.json")
	content := `[{"symbol":"USDC","name":"USD Coin","contractAddress":"` + addr + `","decimals":7}]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	inline := []entity.ContractDescriptor{{Symbol: "XLM", Name: "Stellar Lumens", Address: contractAddress(t), Decimals: 7}}
	r, err := LoadContractRegistry(logger.Nop(), inline, path)
	require.NoError(t, err)

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, "XLM", all[0].Symbol)
	assert.Equal(t, addr, all[1].Address)
}

func TestLoadContractRegistry_MissingFile(t *testing.T) {
	_, err := LoadContractRegistry(logger.Nop(), nil, filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
