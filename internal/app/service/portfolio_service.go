package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"soroban_portfolio/internal/app/port"
	"soroban_portfolio/internal/domain/entity"
	"soroban_portfolio/internal/pkg/metrics"
	"soroban_portfolio/internal/pkg/utils"

	"github.com/shopspring/decimal"
)

// SEP-41 token interface methods.
const (
	methodBalance   = "balance"
	methodAllowance = "allowance"
	methodTransfer  = "transfer"
	methodApprove   = "approve"
	methodName      = "name"
	methodSymbol    = "symbol"
	methodDecimals  = "decimals"
)

// PortfolioServiceImpl implements port.PortfolioService.
type PortfolioServiceImpl struct {
	gateway       port.LedgerGateway
	invoker       port.BatchInvoker
	registry      port.ContractRegistry
	prices        port.PriceSource
	state         *PortfolioState
	approveWindow uint32
	logger        port.Logger
	now           func() time.Time

	// publishMu serializes read-modify-publish sequences on state.
	publishMu sync.Mutex
}

var (
	_ port.PortfolioService = (*PortfolioServiceImpl)(nil)
	_ port.BatchInvoker     = (*BatchInvoker)(nil)
)

// NewPortfolioService creates a new instance of PortfolioServiceImpl.
// prices may be nil, in which case every price and cost basis is zero.
func NewPortfolioService(
	gw port.LedgerGateway,
	inv port.BatchInvoker,
	reg port.ContractRegistry,
	ps port.PriceSource,
	st *PortfolioState,
	approveWindow uint32,
	l port.Logger,
) *PortfolioServiceImpl {
	if st == nil {
		st = NewPortfolioState()
	}
	return &PortfolioServiceImpl{
		gateway:       gw,
		invoker:       inv,
		registry:      reg,
		prices:        ps,
		state:         st,
		approveWindow: approveWindow,
		logger:        l,
		now:           time.Now,
	}
}

// LoadPortfolio reads the balance of address in every registered contract,
// prices the positions and publishes the resulting snapshot.
// Failed reads are excluded and reported as warnings; the load only fails
// when no balance at all could be read.
func (s *PortfolioServiceImpl) LoadPortfolio(ctx context.Context, address string) (*entity.PortfolioSnapshot, error) {
	if !entity.IsValidAddress(address) {
		return nil, fmt.Errorf("portfolio address %q: %w", address, entity.ErrInvalidAddress)
	}

	descs := s.registry.All()
	s.logger.Debug("Loading portfolio", "address", address, "contracts", len(descs))

	reqs := make([]entity.InvocationRequest, len(descs))
	for i, d := range descs {
		reqs[i] = entity.InvocationRequest{
			ContractAddress: d.Address,
			Method:          methodBalance,
			Args:            []entity.ScValue{entity.AddressArg(address)},
		}
	}
	results := s.invoker.InvokeMany(ctx, reqs)

	now := s.now()
	tokens := make([]entity.PortfolioToken, 0, len(descs))
	var warnings []entity.PortfolioError
	for i, d := range descs {
		balance, err := decodeAmount(results[i], d.Decimals)
		if err != nil {
			s.logger.Warn("Balance read failed, excluding token", "address", address, "symbol", d.Symbol, "error", err)
			warnings = append(warnings, entity.PortfolioError{
				Address:         address,
				TokenSymbol:     d.Symbol,
				ContractAddress: d.Address,
				Message:         err.Error(),
			})
			continue
		}
		tokens = append(tokens, entity.PortfolioToken{
			TokenID:         d.Symbol,
			Symbol:          d.Symbol,
			Name:            d.Name,
			ContractAddress: d.Address,
			Balance:         balance,
			AvgCost:         s.costBasis(d.Symbol),
			CurrentPrice:    s.unitPrice(d.Symbol),
			LastUpdated:     now,
		})
	}

	if len(descs) > 0 && len(tokens) == 0 {
		metrics.PortfolioLoads.WithLabelValues("failed").Inc()
		s.logger.Error("No balances available", "address", address, "contracts", len(descs))
		return nil, fmt.Errorf("all %d balance reads failed for %s (first: %s): %w",
			len(descs), address, warnings[0].Message, entity.ErrNoBalancesAvailable)
	}

	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	snapshot := s.buildSnapshot(address, tokens, now)
	snapshot.Warnings = warnings
	snapshot.Incomplete = len(warnings) > 0
	s.state.Publish(snapshot)

	result := "complete"
	if snapshot.Incomplete {
		result = "partial"
	}
	metrics.PortfolioLoads.WithLabelValues(result).Inc()
	s.logger.Info("Portfolio loaded",
		"address", address,
		"tokens", len(snapshot.Tokens),
		"warnings", len(warnings),
		"total_value", snapshot.TotalValue.String())
	return snapshot, nil
}

// RefreshPortfolio reloads the address of the current snapshot.
// It returns nil, nil when nothing has been loaded yet.
func (s *PortfolioServiceImpl) RefreshPortfolio(ctx context.Context) (*entity.PortfolioSnapshot, error) {
	current := s.state.Current()
	if current == nil {
		s.logger.Debug("No portfolio loaded, skipping refresh")
		return nil, nil
	}
	return s.LoadPortfolio(ctx, current.Address)
}

// Current implements port.PortfolioService.
func (s *PortfolioServiceImpl) Current() *entity.PortfolioSnapshot {
	return s.state.Current()
}

// UpdateTokenBalance publishes a new snapshot in which tokenID holds balance.
// Prices and cost basis are kept as they were in the current snapshot.
func (s *PortfolioServiceImpl) UpdateTokenBalance(tokenID string, balance decimal.Decimal) (*entity.PortfolioSnapshot, error) {
	if balance.IsNegative() {
		return nil, fmt.Errorf("balance %s: %w", balance, entity.ErrInvalidAmount)
	}

	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	current := s.state.Current()
	if current == nil {
		return nil, fmt.Errorf("no portfolio loaded: %w", entity.ErrNotFound)
	}

	now := s.now()
	tokens := s.state.Tokens()
	found := false
	for i := range tokens {
		if strings.EqualFold(tokens[i].TokenID, tokenID) {
			tokens[i].Balance = balance
			tokens[i].LastUpdated = now
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("token %q is not in the portfolio: %w", tokenID, entity.ErrUnknownToken)
	}

	snapshot := s.buildSnapshot(current.Address, tokens, now)
	snapshot.Warnings = current.Warnings
	snapshot.Incomplete = current.Incomplete
	s.state.Publish(snapshot)
	s.logger.Info("Token balance updated", "token", tokenID, "balance", balance.String())
	return snapshot, nil
}

// buildSnapshot must be called with publishMu held.
func (s *PortfolioServiceImpl) buildSnapshot(address string, tokens []entity.PortfolioToken, now time.Time) *entity.PortfolioSnapshot {
	totals := RecomputeTotals(tokens)
	createdAt := now
	if prev := s.state.Current(); prev != nil && prev.Address == address {
		createdAt = prev.CreatedAt
	}
	return &entity.PortfolioSnapshot{
		ID:               entity.PortfolioID(address),
		Address:          address,
		TotalValue:       totals.TotalValue,
		TotalCost:        totals.TotalCost,
		UnrealizedPnL:    totals.UnrealizedPnL,
		RealizedPnL:      totals.RealizedPnL,
		TotalPnL:         totals.TotalPnL,
		PercentageReturn: totals.PercentageReturn,
		Tokens:           totals.Tokens,
		CreatedAt:        createdAt,
		UpdatedAt:        now,
	}
}

// TokenBalance reads the live balance of address in one token contract.
func (s *PortfolioServiceImpl) TokenBalance(ctx context.Context, address, symbol string) (decimal.Decimal, error) {
	d, err := s.lookup(symbol)
	if err != nil {
		return decimal.Zero, err
	}
	if !entity.IsValidAddress(address) {
		return decimal.Zero, fmt.Errorf("address %q: %w", address, entity.ErrInvalidAddress)
	}
	res := s.gateway.InvokeReadOnly(ctx, entity.InvocationRequest{
		ContractAddress: d.Address,
		Method:          methodBalance,
		Args:            []entity.ScValue{entity.AddressArg(address)},
	})
	return decodeAmount(res, d.Decimals)
}

// Allowance reads how much spender may still move on behalf of owner.
func (s *PortfolioServiceImpl) Allowance(ctx context.Context, symbol, owner, spender string) (decimal.Decimal, error) {
	d, err := s.lookup(symbol)
	if err != nil {
		return decimal.Zero, err
	}
	if err := validateAddresses(owner, spender); err != nil {
		return decimal.Zero, err
	}
	res := s.gateway.InvokeReadOnly(ctx, entity.InvocationRequest{
		ContractAddress: d.Address,
		Method:          methodAllowance,
		Args:            []entity.ScValue{entity.AddressArg(owner), entity.AddressArg(spender)},
	})
	return decodeAmount(res, d.Decimals)
}

// TokenMetadata asks the contract for its name, symbol and decimals.
// Any field the contract fails to report falls back to the registered descriptor.
func (s *PortfolioServiceImpl) TokenMetadata(ctx context.Context, symbol string) (entity.TokenMetadata, error) {
	d, err := s.lookup(symbol)
	if err != nil {
		return entity.TokenMetadata{}, err
	}

	methods := []string{methodName, methodSymbol, methodDecimals}
	reqs := make([]entity.InvocationRequest, len(methods))
	for i, m := range methods {
		reqs[i] = entity.InvocationRequest{ContractAddress: d.Address, Method: m}
	}
	results := s.invoker.InvokeMany(ctx, reqs)

	meta := entity.TokenMetadata{Name: d.Name, Symbol: d.Symbol, Decimals: d.Decimals}
	var firstErr error
	failed := 0
	fail := func(err error) {
		failed++
		if firstErr == nil {
			firstErr = err
		}
	}
	if text, err := decodeText(results[0]); err == nil {
		meta.Name = text
	} else {
		fail(err)
		s.logger.Warn("Token name unavailable, using registry value", "symbol", d.Symbol, "error", err)
	}
	if text, err := decodeText(results[1]); err == nil {
		meta.Symbol = text
	} else {
		fail(err)
		s.logger.Warn("Token symbol unavailable, using registry value", "symbol", d.Symbol, "error", err)
	}
	if n, err := decodeUint32(results[2]); err == nil {
		meta.Decimals = n
	} else {
		fail(err)
		s.logger.Warn("Token decimals unavailable, using registry value", "symbol", d.Symbol, "error", err)
	}
	if failed == len(methods) {
		return meta, fmt.Errorf("metadata for %s: %w", d.Symbol, firstErr)
	}
	return meta, nil
}

// Transfer moves amount of the token from one address to another and waits for confirmation.
// The amount is truncated to the token's precision; digits below one unit are dropped,
// so an amount smaller than one unit is submitted as 0. Portfolio state is not touched.
func (s *PortfolioServiceImpl) Transfer(ctx context.Context, symbol, from, to string, amount decimal.Decimal) (entity.InvocationResult, error) {
	d, err := s.lookup(symbol)
	if err != nil {
		return entity.InvocationResult{}, err
	}
	if err := validateAddresses(from, to); err != nil {
		return entity.InvocationResult{}, err
	}
	units, err := utils.ToUnits(amount, d.Decimals)
	if err != nil {
		return entity.InvocationResult{}, err
	}

	s.logger.Info("Submitting transfer", "symbol", d.Symbol, "from", from, "to", to, "units", units.String())
	res := s.gateway.InvokeAndSubmit(ctx, entity.InvocationRequest{
		ContractAddress: d.Address,
		Method:          methodTransfer,
		Args:            []entity.ScValue{entity.AddressArg(from), entity.AddressArg(to), entity.I128Arg(units)},
	})
	return res, res.Err
}

// Approve lets spender move up to amount of owner's tokens until the approval
// window (counted in ledgers from the latest one) closes.
func (s *PortfolioServiceImpl) Approve(ctx context.Context, symbol, owner, spender string, amount decimal.Decimal) (entity.InvocationResult, error) {
	d, err := s.lookup(symbol)
	if err != nil {
		return entity.InvocationResult{}, err
	}
	if err := validateAddresses(owner, spender); err != nil {
		return entity.InvocationResult{}, err
	}
	units, err := utils.ToUnits(amount, d.Decimals)
	if err != nil {
		return entity.InvocationResult{}, err
	}

	latest, err := s.gateway.LatestLedger(ctx)
	if err != nil {
		return entity.InvocationResult{}, fmt.Errorf("failed to read latest ledger: %w", err)
	}
	expiration := latest + s.approveWindow

	s.logger.Info("Submitting approve",
		"symbol", d.Symbol, "owner", owner, "spender", spender, "units", units.String(), "expiration_ledger", expiration)
	res := s.gateway.InvokeAndSubmit(ctx, entity.InvocationRequest{
		ContractAddress: d.Address,
		Method:          methodApprove,
		Args: []entity.ScValue{
			entity.AddressArg(owner),
			entity.AddressArg(spender),
			entity.I128Arg(units),
			entity.U32Arg(expiration),
		},
	})
	return res, res.Err
}

// lookup resolves a token by symbol, or by contract address for C... strkeys.
func (s *PortfolioServiceImpl) lookup(token string) (entity.ContractDescriptor, error) {
	if strings.HasPrefix(token, "C") && entity.IsValidAddress(token) {
		d, err := s.registry.LookupByAddress(token)
		if errors.Is(err, entity.ErrNotFound) {
			return entity.ContractDescriptor{}, fmt.Errorf("contract %q: %w", token, entity.ErrUnknownToken)
		}
		return d, err
	}
	d, err := s.registry.Lookup(token)
	if errors.Is(err, entity.ErrNotFound) {
		return entity.ContractDescriptor{}, fmt.Errorf("token %q: %w", token, entity.ErrUnknownToken)
	}
	return d, err
}

func (s *PortfolioServiceImpl) unitPrice(symbol string) decimal.Decimal {
	if s.prices == nil {
		return decimal.Zero
	}
	price, ok := s.prices.UnitPrice(symbol)
	if !ok {
		s.logger.Debug("No price for token, using 0", "symbol", symbol)
		return decimal.Zero
	}
	return price
}

func (s *PortfolioServiceImpl) costBasis(symbol string) decimal.Decimal {
	if s.prices == nil {
		return decimal.Zero
	}
	cost, _ := s.prices.CostBasis(symbol)
	return cost
}

func validateAddresses(addrs ...string) error {
	for _, a := range addrs {
		if !entity.IsValidAddress(a) {
			return fmt.Errorf("address %q: %w", a, entity.ErrInvalidAddress)
		}
	}
	return nil
}

func decodeAmount(res entity.InvocationResult, decimals uint32) (decimal.Decimal, error) {
	if res.Err != nil {
		return decimal.Zero, res.Err
	}
	raw, err := res.Value.BigInt()
	if err != nil {
		return decimal.Zero, fmt.Errorf("unexpected amount value: %w", err)
	}
	return utils.FromUnits(raw, decimals), nil
}

func decodeText(res entity.InvocationResult) (string, error) {
	if res.Err != nil {
		return "", res.Err
	}
	return res.Value.Text()
}

func decodeUint32(res entity.InvocationResult) (uint32, error) {
	if res.Err != nil {
		return 0, res.Err
	}
	n, err := res.Value.BigInt()
	if err != nil {
		return 0, err
	}
	if n.Sign() < 0 || !n.IsUint64() || n.Uint64() > 1<<32-1 {
		return 0, fmt.Errorf("value %s out of range for u32", n)
	}
	return uint32(n.Uint64()), nil
}
