package httpclient

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"soroban_portfolio/internal/app/port"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// PriceClient fetches current prices for CoinGecko coin ids.
type PriceClient interface {
	// SimplePrices returns price per coin id in vsCurrency. Ids the API does not know are absent.
	SimplePrices(ctx context.Context, coinIDs []string, vsCurrency string) (map[string]decimal.Decimal, error)
}

// CoinGeckoClient implements PriceClient against the /simple/price endpoint.
type CoinGeckoClient struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *fasthttp.Client
	logger     port.Logger
}

// NewCoinGeckoClient creates a CoinGecko client. apiKey may be empty for the public tier.
func NewCoinGeckoClient(baseURL, apiKey string, timeout time.Duration, logger port.Logger) *CoinGeckoClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CoinGeckoClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		timeout:    timeout,
		httpClient: &fasthttp.Client{ReadTimeout: timeout, WriteTimeout: timeout},
		logger:     logger,
	}
}

// SimplePrices implements PriceClient.
func (c *CoinGeckoClient) SimplePrices(ctx context.Context, coinIDs []string, vsCurrency string) (map[string]decimal.Decimal, error) {
	if len(coinIDs) == 0 {
		return map[string]decimal.Decimal{}, nil
	}
	vsCurrency = strings.ToLower(vsCurrency)

	q := url.Values{}
	q.Set("ids", strings.Join(coinIDs, ","))
	q.Set("vs_currencies", vsCurrency)
	reqURL := c.baseURL + "/simple/price?" + q.Encode()

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(reqURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	c.logger.Debug("Fetching prices from CoinGecko", "ids", len(coinIDs), "vs_currency", vsCurrency)
	if err := c.httpClient.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("fetching prices: %w", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("coingecko returned status %d: %s", resp.StatusCode(), truncate(resp.Body(), 200))
	}

	// Response: {"stellar":{"usd":0.1234}, ...}
	var raw map[string]map[string]decimal.Decimal
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, fmt.Errorf("parsing price response: %w", err)
	}

	prices := make(map[string]decimal.Decimal, len(raw))
	for id, currencies := range raw {
		if p, ok := currencies[vsCurrency]; ok {
			prices[id] = p
		}
	}
	return prices, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
