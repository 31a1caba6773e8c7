package port

import (
	"context"

	"soroban_portfolio/internal/domain/entity"
)

// SorobanRPC is the fixed RPC contract of the remote network.
type SorobanRPC interface {
	GetHealth(ctx context.Context) (entity.HealthInfo, error)
	GetLatestLedger(ctx context.Context) (entity.LatestLedgerInfo, error)
	// GetAccount returns entity.ErrAccountNotFound if the ledger has no such account.
	GetAccount(ctx context.Context, publicKey string) (entity.LedgerAccount, error)
	SimulateTransaction(ctx context.Context, txEnvelopeXDR string) (entity.SimulationOutcome, error)
	SendTransaction(ctx context.Context, txEnvelopeXDR string) (entity.SendOutcome, error)
	GetTransaction(ctx context.Context, hash string) (entity.TransactionOutcome, error)
}

// SorobanRPCFactory opens an RPC connection for a network.
type SorobanRPCFactory func(cfg entity.NetworkConfig) (SorobanRPC, error)

// Signer produces signed transaction envelopes.
// Implementations may hold a key in-process or delegate to an external wallet.
type Signer interface {
	PublicKey() string
	// Sign returns the signed envelope, or an error wrapping entity.ErrSigningRejected.
	Sign(ctx context.Context, txEnvelopeXDR string, networkPassphrase string) (string, error)
}

// LedgerGateway owns the connection to the remote network.
type LedgerGateway interface {
	GetAccount(ctx context.Context, publicKey string) (entity.AccountSnapshot, error)
	NetworkStatus(ctx context.Context) entity.NetworkStatus
	LatestLedger(ctx context.Context) (uint32, error)

	// InvokeReadOnly simulates the call and decodes its return value. It never submits.
	InvokeReadOnly(ctx context.Context, req entity.InvocationRequest) entity.InvocationResult
	// InvokeAndSubmit simulates, assembles, signs, submits and waits for confirmation
	// until ctx is done.
	InvokeAndSubmit(ctx context.Context, req entity.InvocationRequest) entity.InvocationResult

	SwitchNetwork(cfg entity.NetworkConfig) error
	ActiveNetwork() entity.NetworkConfig
}
