package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"soroban_portfolio/internal/infrastructure/configloader"
	"soroban_portfolio/internal/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePriceClient struct {
	mu     sync.Mutex
	prices map[string]decimal.Decimal
	err    error
	calls  [][]string
}

func (c *fakePriceClient) SimplePrices(_ context.Context, ids []string, _ string) (map[string]decimal.Decimal, error) {
	c.mu.Lock()
	c.calls = append(c.calls, append([]string(nil), ids...))
	c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	out := make(map[string]decimal.Decimal)
	for _, id := range ids {
		if p, ok := c.prices[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func priceConfig() *configloader.Config {
	cfg := &configloader.Config{}
	cfg.CoinGecko.VsCurrency = "usd"
	cfg.CoinGecko.CoinIDs = map[string]string{"xlm": "stellar", "BTC": "bitcoin", "WBTC": "bitcoin", "ETH": "ethereum"}
	cfg.TokenPriceSvc.CacheTTLMinutes = 10
	cfg.TokenPriceSvc.CleanupIntervalMinutes = 20
	cfg.TokenPriceSvc.MaxCoinsPerRequest = 2
	cfg.TokenPriceSvc.MaxConcurrentRequests = 2
	cfg.TokenPriceSvc.StaticPrices = map[string]float64{"usdc": 1, "XLM": 0.05}
	cfg.TokenPriceSvc.CostBasis = map[string]float64{"XLM": 0.08}
	return cfg
}

func TestTokenPriceService_StaticOnly(t *testing.T) {
	svc := NewTokenPriceService(nil, logger.Nop(), priceConfig())

	require.NoError(t, svc.LoadAndCacheTokenPrices(context.Background(), []string{"XLM"}))

	p, ok := svc.UnitPrice("USDC")
	require.True(t, ok)
	assert.True(t, p.Equal(decimal.NewFromInt(1)))

	_, ok = svc.UnitPrice("BTC")
	assert.False(t, ok)

	cost, ok := svc.CostBasis("xlm")
	require.True(t, ok)
	assert.True(t, cost.Equal(dec("0.08")))
}

func TestTokenPriceService_LiveOverridesStatic(t *testing.T) {
	pc := &fakePriceClient{prices: map[string]decimal.Decimal{
		"stellar": dec("0.11"),
		"bitcoin": dec("65000"),
	}}
	svc := NewTokenPriceService(pc, logger.Nop(), priceConfig())

	err := svc.LoadAndCacheTokenPrices(context.Background(), []string{"XLM", "BTC", "WBTC", "ETH", "USDC"})
	require.NoError(t, err)

	p, ok := svc.UnitPrice("xlm")
	require.True(t, ok)
	assert.True(t, p.Equal(dec("0.11")))

	for _, sym := range []string{"BTC", "WBTC"} {
		p, ok = svc.UnitPrice(sym)
		require.True(t, ok, sym)
		assert.True(t, p.Equal(dec("65000")))
	}

	_, ok = svc.UnitPrice("ETH")
	assert.False(t, ok, "coin missing from the feed stays unpriced")

	var requested []string
	for _, call := range pc.calls {
		assert.LessOrEqual(t, len(call), 2)
		requested = append(requested, call...)
	}
	sort.Strings(requested)
	assert.Equal(t, []string{"bitcoin", "ethereum", "stellar"}, requested)

	all := svc.AllPrices()
	assert.True(t, all["XLM"].Equal(dec("0.11")))
	assert.True(t, all["USDC"].Equal(decimal.NewFromInt(1)))
	assert.Contains(t, all, "WBTC")
}

func TestTokenPriceService_AllBatchesFail(t *testing.T) {
	pc := &fakePriceClient{err: errors.New("429 too many requests")}
	svc := NewTokenPriceService(pc, logger.Nop(), priceConfig())

	err := svc.LoadAndCacheTokenPrices(context.Background(), []string{"XLM", "BTC"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")

	p, ok := svc.UnitPrice("XLM")
	require.True(t, ok, "static price still served")
	assert.True(t, p.Equal(dec("0.05")))
}

func TestTokenPriceService_NoConfiguredCoins(t *testing.T) {
	pc := &fakePriceClient{}
	svc := NewTokenPriceService(pc, logger.Nop(), priceConfig())

	require.NoError(t, svc.LoadAndCacheTokenPrices(context.Background(), []string{"USDC", "DOGE"}))
	assert.Empty(t, pc.calls)
}
