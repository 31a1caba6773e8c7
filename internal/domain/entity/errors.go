package entity

import (
	"errors"
	"fmt"
)

// Ledger errors describe failures talking to the remote network.
var (
	// ErrConnectivity indicates the RPC endpoint could not be reached. Retryable by the caller.
	ErrConnectivity = errors.New("network unreachable")

	// ErrSimulation indicates the contract rejected a simulated call (bad args, missing auth, trap).
	ErrSimulation = errors.New("simulation failed")

	// ErrSigningRejected indicates the signer declined or was unavailable.
	ErrSigningRejected = errors.New("signing rejected")

	// ErrSubmissionFailed indicates the transaction was accepted but did not execute successfully.
	ErrSubmissionFailed = errors.New("transaction submission failed")

	// ErrTimeout indicates confirmation was not observed before the deadline.
	// The outcome is unknown; re-query by hash later.
	ErrTimeout = errors.New("confirmation timed out")

	ErrNoSignerConfigured = errors.New("no signer configured")
)

// Input errors.
var (
	ErrUnknownToken    = errors.New("unknown token")
	ErrInvalidAddress  = errors.New("invalid address")
	ErrAccountNotFound = errors.New("account not found")
	ErrNotFound        = errors.New("not found")
	ErrInvalidAmount   = errors.New("invalid amount")
)

// ErrNoBalancesAvailable indicates every per-contract read failed while aggregating.
var ErrNoBalancesAvailable = errors.New("no balances available")

// LedgerError carries the network's failure detail for one of the sentinel kinds above.
type LedgerError struct {
	Kind   error
	Detail string
	TxHash string
}

// NewLedgerError creates a LedgerError of the given kind.
func NewLedgerError(kind error, detail string) *LedgerError {
	return &LedgerError{Kind: kind, Detail: detail}
}

func (e *LedgerError) Error() string {
	msg := e.Kind.Error()
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.TxHash != "" {
		msg = fmt.Sprintf("%s (tx %s)", msg, e.TxHash)
	}
	return msg
}

func (e *LedgerError) Unwrap() error {
	return e.Kind
}

// WithHash returns a copy of e bound to a transaction hash.
func (e *LedgerError) WithHash(hash string) *LedgerError {
	cp := *e
	cp.TxHash = hash
	return &cp
}
