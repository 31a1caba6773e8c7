package signer

import (
	"context"
	"fmt"
	"time"

	"soroban_portfolio/internal/app/port"
	"soroban_portfolio/internal/domain/entity"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type signRequest struct {
	XDR               string `json:"xdr"`
	NetworkPassphrase string `json:"networkPassphrase"`
	PublicKey         string `json:"publicKey"`
}

type signResponse struct {
	SignedXDR string `json:"signedXdr"`
	Error     string `json:"error,omitempty"`
}

// ExternalWalletSigner delegates signing to a wallet bridge over HTTP.
// The bridge receives {xdr, networkPassphrase, publicKey} and answers with
// {signedXdr} or {error}. The user may take a while to approve, so the
// request timeout is long.
type ExternalWalletSigner struct {
	url        string
	publicKey  string
	timeout    time.Duration
	httpClient *fasthttp.Client
	logger     port.Logger
}

// NewExternalWalletSigner creates a signer for the wallet bridge at url.
func NewExternalWalletSigner(url, publicKey string, timeout time.Duration, logger port.Logger) *ExternalWalletSigner {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &ExternalWalletSigner{
		url:        url,
		publicKey:  publicKey,
		timeout:    timeout,
		httpClient: &fasthttp.Client{ReadTimeout: timeout, WriteTimeout: timeout},
		logger:     logger,
	}
}

// PublicKey returns the wallet's account address.
func (s *ExternalWalletSigner) PublicKey() string {
	return s.publicKey
}

// Sign asks the wallet to sign the envelope. Declines, bridge errors and
// unreachable bridges are all reported as entity.ErrSigningRejected.
func (s *ExternalWalletSigner) Sign(ctx context.Context, txEnvelopeXDR string, networkPassphrase string) (string, error) {
	body, err := json.Marshal(signRequest{
		XDR:               txEnvelopeXDR,
		NetworkPassphrase: networkPassphrase,
		PublicKey:         s.publicKey,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal sign request: %w", err)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	deadline := time.Now().Add(s.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	s.logger.Info("Requesting signature from external wallet", "url", s.url, "public_key", s.publicKey)
	if err := s.httpClient.DoDeadline(req, resp, deadline); err != nil {
		return "", entity.NewLedgerError(entity.ErrSigningRejected, "wallet unavailable: "+err.Error())
	}

	var out signResponse
	if len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), &out); err != nil {
			return "", entity.NewLedgerError(entity.ErrSigningRejected, "malformed wallet response: "+err.Error())
		}
	}
	if resp.StatusCode() != fasthttp.StatusOK || out.Error != "" || out.SignedXDR == "" {
		detail := out.Error
		if detail == "" {
			detail = fmt.Sprintf("wallet answered with status %d", resp.StatusCode())
		}
		s.logger.Warn("External wallet declined to sign", "status", resp.StatusCode(), "detail", detail)
		return "", entity.NewLedgerError(entity.ErrSigningRejected, detail)
	}
	return out.SignedXDR, nil
}
