package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"soroban_portfolio/internal/app/port"
	"soroban_portfolio/internal/infrastructure/configloader"
	"soroban_portfolio/internal/infrastructure/httpclient"
	"soroban_portfolio/internal/pkg/utils"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

// tokenPriceServiceImpl implements port.TokenPriceService.
// Live prices come from CoinGecko and expire from the cache; static prices
// and cost basis come from configuration and never expire.
type tokenPriceServiceImpl struct {
	priceClient  httpclient.PriceClient
	logger       port.Logger
	cache        *cache.Cache
	coinIDs      map[string]string
	vsCurrency   string
	staticPrices map[string]decimal.Decimal
	costBasis    map[string]decimal.Decimal
	batchSize    int
	concurrency  int
}

// NewTokenPriceService creates a new instance of tokenPriceServiceImpl.
// pc may be nil, in which case only static prices are served.
func NewTokenPriceService(pc httpclient.PriceClient, l port.Logger, config *configloader.Config) port.TokenPriceService {
	ttl := time.Duration(config.TokenPriceSvc.CacheTTLMinutes) * time.Minute
	cleanup := time.Duration(config.TokenPriceSvc.CleanupIntervalMinutes) * time.Minute

	s := &tokenPriceServiceImpl{
		priceClient:  pc,
		logger:       l,
		cache:        cache.New(ttl, cleanup),
		coinIDs:      make(map[string]string, len(config.CoinGecko.CoinIDs)),
		vsCurrency:   config.CoinGecko.VsCurrency,
		staticPrices: toDecimalTable(config.TokenPriceSvc.StaticPrices),
		costBasis:    toDecimalTable(config.TokenPriceSvc.CostBasis),
		batchSize:    config.TokenPriceSvc.MaxCoinsPerRequest,
		concurrency:  config.TokenPriceSvc.MaxConcurrentRequests,
	}
	for symbol, id := range config.CoinGecko.CoinIDs {
		s.coinIDs[strings.ToUpper(symbol)] = id
	}
	if s.concurrency <= 0 {
		s.concurrency = 1
	}
	l.Info("TokenPriceService initialized",
		"coin_ids", len(s.coinIDs), "static_prices", len(s.staticPrices), "cost_basis", len(s.costBasis),
		"live_feed", pc != nil)
	return s
}

func toDecimalTable(in map[string]float64) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(in))
	for symbol, v := range in {
		out[strings.ToUpper(symbol)] = decimal.NewFromFloat(v)
	}
	return out
}

// UnitPrice implements port.PriceSource. A cached live price wins over a static one.
func (s *tokenPriceServiceImpl) UnitPrice(tokenID string) (decimal.Decimal, bool) {
	symbol := strings.ToUpper(tokenID)
	if v, ok := s.cache.Get(symbol); ok {
		return v.(decimal.Decimal), true
	}
	price, ok := s.staticPrices[symbol]
	return price, ok
}

// CostBasis implements port.PriceSource.
func (s *tokenPriceServiceImpl) CostBasis(tokenID string) (decimal.Decimal, bool) {
	cost, ok := s.costBasis[strings.ToUpper(tokenID)]
	return cost, ok
}

// AllPrices implements port.TokenPriceService.
func (s *tokenPriceServiceImpl) AllPrices() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(s.staticPrices))
	for symbol, price := range s.staticPrices {
		out[symbol] = price
	}
	for symbol, item := range s.cache.Items() {
		out[symbol] = item.Object.(decimal.Decimal)
	}
	return out
}

// LoadAndCacheTokenPrices implements port.TokenPriceService. Symbols without a
// configured coin id are skipped. A failed batch is logged and does not stop the others.
func (s *tokenPriceServiceImpl) LoadAndCacheTokenPrices(ctx context.Context, symbols []string) error {
	if s.priceClient == nil {
		s.logger.Debug("Live price feed disabled, serving static prices only")
		return nil
	}

	symbolsByCoin := make(map[string][]string)
	var ids []string
	for _, symbol := range symbols {
		symbol = strings.ToUpper(symbol)
		id, ok := s.coinIDs[symbol]
		if !ok {
			s.logger.Debug("No coin id configured for token, skipping price fetch", "symbol", symbol)
			continue
		}
		if _, seen := symbolsByCoin[id]; !seen {
			ids = append(ids, id)
		}
		symbolsByCoin[id] = append(symbolsByCoin[id], symbol)
	}
	if len(ids) == 0 {
		return nil
	}

	s.logger.Info("Fetching token prices", "coins", len(ids), "vs_currency", s.vsCurrency)

	batches := utils.BatchStrings(ids, s.batchSize)
	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var cached, missing, failedBatches int
	var lastErr error

	for _, batch := range batches {
		wg.Add(1)
		sem <- struct{}{}
		go func(batch []string) {
			defer wg.Done()
			defer func() { <-sem }()

			prices, err := s.priceClient.SimplePrices(ctx, batch, s.vsCurrency)
			if err != nil {
				s.logger.Error("Failed to fetch prices", "coins", len(batch), "error", err)
				mu.Lock()
				failedBatches++
				lastErr = err
				mu.Unlock()
				return
			}

			hits, misses := 0, 0
			for _, id := range batch {
				price, ok := prices[id]
				if !ok {
					s.logger.Warn("Price feed returned no price for coin", "coin_id", id)
					misses++
					continue
				}
				for _, symbol := range symbolsByCoin[id] {
					s.cache.SetDefault(symbol, price)
					hits++
				}
			}
			mu.Lock()
			cached += hits
			missing += misses
			mu.Unlock()
		}(batch)
	}
	wg.Wait()

	s.logger.Info("Finished loading token prices",
		"cached", cached, "missing", missing, "failed_batches", failedBatches)
	if failedBatches == len(batches) {
		return fmt.Errorf("all %d price batches failed: %w", failedBatches, lastErr)
	}
	return nil
}
