package client

import (
	"context"
	"sync"

	"soroban_portfolio/internal/domain/entity"
)

// fakeRPC is a scriptable port.SorobanRPC.
type fakeRPC struct {
	mu sync.Mutex

	health      entity.HealthInfo
	healthErr   error
	latest      uint32
	account     entity.LedgerAccount
	accountErr  error
	sim         entity.SimulationOutcome
	simErr      error
	send        entity.SendOutcome
	sendErr     error
	txStatuses  []string // consumed in order; the last one repeats
	txReturnXDR string

	simulated []string
	sent      []string
	polls     int
}

func (f *fakeRPC) GetHealth(context.Context) (entity.HealthInfo, error) {
	return f.health, f.healthErr
}

func (f *fakeRPC) GetLatestLedger(context.Context) (entity.LatestLedgerInfo, error) {
	if f.healthErr != nil {
		return entity.LatestLedgerInfo{}, f.healthErr
	}
	return entity.LatestLedgerInfo{Sequence: f.latest}, nil
}

func (f *fakeRPC) GetAccount(_ context.Context, publicKey string) (entity.LedgerAccount, error) {
	if f.accountErr != nil {
		return entity.LedgerAccount{}, f.accountErr
	}
	acc := f.account
	acc.AccountID = publicKey
	return acc, nil
}

func (f *fakeRPC) SimulateTransaction(_ context.Context, env string) (entity.SimulationOutcome, error) {
	f.mu.Lock()
	f.simulated = append(f.simulated, env)
	f.mu.Unlock()
	return f.sim, f.simErr
}

func (f *fakeRPC) SendTransaction(_ context.Context, env string) (entity.SendOutcome, error) {
	f.mu.Lock()
	f.sent = append(f.sent, env)
	f.mu.Unlock()
	return f.send, f.sendErr
}

func (f *fakeRPC) GetTransaction(context.Context, string) (entity.TransactionOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	status := entity.TxStatusNotFound
	if len(f.txStatuses) > 0 {
		status = f.txStatuses[0]
		if len(f.txStatuses) > 1 {
			f.txStatuses = f.txStatuses[1:]
		}
	}
	out := entity.TransactionOutcome{Status: status}
	if status == entity.TxStatusSuccess {
		out.ReturnValueXDR = f.txReturnXDR
	}
	return out, nil
}

func (f *fakeRPC) pollCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls
}

// fakeSigner signs nothing; it returns the envelope unchanged.
type fakeSigner struct {
	pub    string
	err    error
	signed int
}

func (s *fakeSigner) PublicKey() string { return s.pub }

func (s *fakeSigner) Sign(_ context.Context, env, _ string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.signed++
	return env, nil
}
