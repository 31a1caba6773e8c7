package signer

import (
	"context"
	"fmt"
	"strings"

	"soroban_portfolio/internal/domain/entity"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"
)

// LocalKeySigner signs with an in-process ed25519 secret seed.
type LocalKeySigner struct {
	kp *keypair.Full
}

// NewLocalKeySigner parses an S... secret seed.
func NewLocalKeySigner(seed string) (*LocalKeySigner, error) {
	kp, err := keypair.ParseFull(strings.TrimSpace(seed))
	if err != nil {
		return nil, fmt.Errorf("invalid secret seed: %w", err)
	}
	return &LocalKeySigner{kp: kp}, nil
}

// PublicKey returns the G... address of the key.
func (s *LocalKeySigner) PublicKey() string {
	return s.kp.Address()
}

// Sign adds a signature for networkPassphrase to the envelope.
func (s *LocalKeySigner) Sign(ctx context.Context, txEnvelopeXDR string, networkPassphrase string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", entity.NewLedgerError(entity.ErrSigningRejected, err.Error())
	}
	generic, err := txnbuild.TransactionFromXDR(txEnvelopeXDR)
	if err != nil {
		return "", entity.NewLedgerError(entity.ErrSigningRejected, "malformed envelope: "+err.Error())
	}
	tx, ok := generic.Transaction()
	if !ok {
		return "", entity.NewLedgerError(entity.ErrSigningRejected, "fee bump envelopes are not supported")
	}
	signed, err := tx.Sign(networkPassphrase, s.kp)
	if err != nil {
		return "", entity.NewLedgerError(entity.ErrSigningRejected, err.Error())
	}
	out, err := signed.Base64()
	if err != nil {
		return "", fmt.Errorf("failed to encode signed envelope: %w", err)
	}
	return out, nil
}
