package service

import (
	"context"
	"crypto/rand"
	"sync"
	"testing"

	"soroban_portfolio/internal/domain/entity"

	"github.com/shopspring/decimal"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/strkey"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	mu        sync.Mutex
	read      func(ctx context.Context, req entity.InvocationRequest) entity.InvocationResult
	submit    func(ctx context.Context, req entity.InvocationRequest) entity.InvocationResult
	latest    uint32
	latestErr error
	reads     []entity.InvocationRequest
	submits   []entity.InvocationRequest
}

func (g *fakeGateway) GetAccount(_ context.Context, publicKey string) (entity.AccountSnapshot, error) {
	return entity.AccountSnapshot{PublicKey: publicKey, Live: true}, nil
}

func (g *fakeGateway) NetworkStatus(context.Context) entity.NetworkStatus {
	return entity.NetworkStatus{Network: "testnet", Connected: true, LatestLedger: g.latest}
}

func (g *fakeGateway) LatestLedger(context.Context) (uint32, error) {
	return g.latest, g.latestErr
}

func (g *fakeGateway) InvokeReadOnly(ctx context.Context, req entity.InvocationRequest) entity.InvocationResult {
	g.mu.Lock()
	g.reads = append(g.reads, req)
	g.mu.Unlock()
	if g.read == nil {
		return entity.Ok(entity.Void())
	}
	return g.read(ctx, req)
}

func (g *fakeGateway) InvokeAndSubmit(ctx context.Context, req entity.InvocationRequest) entity.InvocationResult {
	g.mu.Lock()
	g.submits = append(g.submits, req)
	g.mu.Unlock()
	if g.submit == nil {
		return entity.OkWithReceipt(entity.Void(), "hash-1")
	}
	return g.submit(ctx, req)
}

func (g *fakeGateway) SwitchNetwork(entity.NetworkConfig) error { return nil }

func (g *fakeGateway) ActiveNetwork() entity.NetworkConfig {
	return entity.NetworkConfig{Name: "testnet"}
}

type staticPrices struct {
	prices map[string]decimal.Decimal
	costs  map[string]decimal.Decimal
}

func (p staticPrices) UnitPrice(tokenID string) (decimal.Decimal, bool) {
	v, ok := p.prices[tokenID]
	return v, ok
}

func (p staticPrices) CostBasis(tokenID string) (decimal.Decimal, bool) {
	v, ok := p.costs[tokenID]
	return v, ok
}

func newContractAddress(t *testing.T) string {
	t.Helper()
	raw := make([]byte, 32)
	_, err := rand.Read(raw)
	require.NoError(t, err)
	addr, err := strkey.Encode(strkey.VersionByteContract, raw)
	require.NoError(t, err)
	return addr
}

func newAccountAddress() string {
	return keypair.MustRandom().Address()
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
