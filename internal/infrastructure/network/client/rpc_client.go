package client

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"soroban_portfolio/internal/app/port"
	"soroban_portfolio/internal/domain/entity"
	"soroban_portfolio/internal/infrastructure/configloader"
	"soroban_portfolio/internal/pkg/metrics"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/stellar/go/xdr"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const jsonRPCVersion = "2.0"

// RPCError is a JSON-RPC level error returned by the server.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string              `json:"jsonrpc"`
	ID      string              `json:"id"`
	Result  jsoniter.RawMessage `json:"result"`
	Error   *RPCError           `json:"error"`
}

// RPCClient implements port.SorobanRPC over JSON-RPC 2.0 with fasthttp.
type RPCClient struct {
	url        string
	httpClient *fasthttp.Client
	limiter    *rate.Limiter
	timeout    time.Duration
	logger     port.Logger
}

// NewRPCClient creates a client for the network's RPC endpoint.
func NewRPCClient(netCfg entity.NetworkConfig, cfg configloader.RPCClientConfig, logger port.Logger) (*RPCClient, error) {
	if netCfg.RPCURL == "" {
		return nil, fmt.Errorf("network %s has no RPC URL", netCfg.Name)
	}
	timeout := time.Duration(cfg.RequestTimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	burst := cfg.BurstLimit
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	return &RPCClient{
		url: netCfg.RPCURL,
		httpClient: &fasthttp.Client{
			Name:            "soroban-portfolio",
			MaxConnsPerHost: cfg.MaxConnsPerHost,
			ReadTimeout:     timeout,
			WriteTimeout:    timeout,
		},
		limiter: rate.NewLimiter(limit, burst),
		timeout: timeout,
		logger:  logger,
	}, nil
}

// call performs one JSON-RPC request. Transport failures are reported as
// entity.ErrConnectivity; server-side JSON-RPC errors as *RPCError.
func (c *RPCClient) call(ctx context.Context, method string, params any, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		metrics.RPCRequests.WithLabelValues(method, "rate_limited").Inc()
		return entity.NewLedgerError(entity.ErrConnectivity, fmt.Sprintf("%s: %v", method, err))
	}

	body, err := json.Marshal(rpcRequest{
		JSONRPC: jsonRPCVersion,
		ID:      uuid.NewString(),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", method, err)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	c.logger.Debug("Sending RPC request", "method", method, "url", c.url)
	if err := c.httpClient.DoDeadline(req, resp, deadline); err != nil {
		metrics.RPCRequests.WithLabelValues(method, "transport_error").Inc()
		return entity.NewLedgerError(entity.ErrConnectivity, fmt.Sprintf("%s: %v", method, err))
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		metrics.RPCRequests.WithLabelValues(method, strconv.Itoa(resp.StatusCode())).Inc()
		return entity.NewLedgerError(entity.ErrConnectivity,
			fmt.Sprintf("%s: unexpected HTTP status %d", method, resp.StatusCode()))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(resp.Body(), &rpcResp); err != nil {
		metrics.RPCRequests.WithLabelValues(method, "decode_error").Inc()
		return entity.NewLedgerError(entity.ErrConnectivity, fmt.Sprintf("%s: malformed response: %v", method, err))
	}
	if rpcResp.Error != nil {
		metrics.RPCRequests.WithLabelValues(method, "rpc_error").Inc()
		return fmt.Errorf("%s: %w", method, rpcResp.Error)
	}
	metrics.RPCRequests.WithLabelValues(method, "ok").Inc()

	if result == nil || len(rpcResp.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, result); err != nil {
		return entity.NewLedgerError(entity.ErrConnectivity, fmt.Sprintf("%s: failed to decode result: %v", method, err))
	}
	return nil
}

// GetHealth implements port.SorobanRPC.
func (c *RPCClient) GetHealth(ctx context.Context) (entity.HealthInfo, error) {
	var out entity.HealthInfo
	err := c.call(ctx, "getHealth", nil, &out)
	return out, err
}

// GetLatestLedger implements port.SorobanRPC.
func (c *RPCClient) GetLatestLedger(ctx context.Context) (entity.LatestLedgerInfo, error) {
	var out entity.LatestLedgerInfo
	err := c.call(ctx, "getLatestLedger", nil, &out)
	return out, err
}

type ledgerEntriesResult struct {
	Entries []struct {
		Key                string `json:"key"`
		XDR                string `json:"xdr"`
		LastModifiedLedger uint32 `json:"lastModifiedLedgerSeq"`
	} `json:"entries"`
	LatestLedger uint32 `json:"latestLedger"`
}

// GetAccount implements port.SorobanRPC by reading the account ledger entry.
func (c *RPCClient) GetAccount(ctx context.Context, publicKey string) (entity.LedgerAccount, error) {
	var accountID xdr.AccountId
	if err := accountID.SetAddress(publicKey); err != nil {
		return entity.LedgerAccount{}, fmt.Errorf("account %s: %w", publicKey, entity.ErrInvalidAddress)
	}
	key := xdr.LedgerKey{
		Type:    xdr.LedgerEntryTypeAccount,
		Account: &xdr.LedgerKeyAccount{AccountId: accountID},
	}
	keyXDR, err := xdr.MarshalBase64(key)
	if err != nil {
		return entity.LedgerAccount{}, fmt.Errorf("failed to encode ledger key: %w", err)
	}

	var out ledgerEntriesResult
	if err := c.call(ctx, "getLedgerEntries", map[string]any{"keys": []string{keyXDR}}, &out); err != nil {
		return entity.LedgerAccount{}, err
	}
	if len(out.Entries) == 0 {
		return entity.LedgerAccount{}, fmt.Errorf("account %s: %w", publicKey, entity.ErrAccountNotFound)
	}

	var data xdr.LedgerEntryData
	if err := xdr.SafeUnmarshalBase64(out.Entries[0].XDR, &data); err != nil {
		return entity.LedgerAccount{}, fmt.Errorf("failed to decode account entry: %w", err)
	}
	if data.Account == nil {
		return entity.LedgerAccount{}, fmt.Errorf("ledger entry for %s is not an account", publicKey)
	}
	return entity.LedgerAccount{
		AccountID: publicKey,
		Balance:   int64(data.Account.Balance),
		Sequence:  int64(data.Account.SeqNum),
	}, nil
}

type simulateResult struct {
	Error           string `json:"error"`
	TransactionData string `json:"transactionData"`
	MinResourceFee  string `json:"minResourceFee"`
	Results         []struct {
		XDR  string   `json:"xdr"`
		Auth []string `json:"auth"`
	} `json:"results"`
	LatestLedger uint32 `json:"latestLedger"`
}

// SimulateTransaction implements port.SorobanRPC.
func (c *RPCClient) SimulateTransaction(ctx context.Context, txEnvelopeXDR string) (entity.SimulationOutcome, error) {
	var out simulateResult
	if err := c.call(ctx, "simulateTransaction", map[string]any{"transaction": txEnvelopeXDR}, &out); err != nil {
		return entity.SimulationOutcome{}, err
	}

	sim := entity.SimulationOutcome{
		Error:           out.Error,
		TransactionData: out.TransactionData,
		LatestLedger:    out.LatestLedger,
	}
	if out.MinResourceFee != "" {
		fee, err := strconv.ParseInt(out.MinResourceFee, 10, 64)
		if err != nil {
			return entity.SimulationOutcome{}, fmt.Errorf("invalid minResourceFee %q: %w", out.MinResourceFee, err)
		}
		sim.MinResourceFee = fee
	}
	if len(out.Results) > 0 {
		sim.ReturnValueXDR = out.Results[0].XDR
		sim.AuthXDR = out.Results[0].Auth
	}
	return sim, nil
}

// SendTransaction implements port.SorobanRPC.
func (c *RPCClient) SendTransaction(ctx context.Context, txEnvelopeXDR string) (entity.SendOutcome, error) {
	var out entity.SendOutcome
	err := c.call(ctx, "sendTransaction", map[string]any{"transaction": txEnvelopeXDR}, &out)
	return out, err
}

type transactionResult struct {
	Status        string `json:"status"`
	Ledger        uint32 `json:"ledger"`
	ResultXDR     string `json:"resultXdr"`
	ResultMetaXDR string `json:"resultMetaXdr"`
	LatestLedger  uint32 `json:"latestLedger"`
}

// GetTransaction implements port.SorobanRPC. The contract return value is
// extracted from the Soroban transaction meta when present.
func (c *RPCClient) GetTransaction(ctx context.Context, hash string) (entity.TransactionOutcome, error) {
	var out transactionResult
	if err := c.call(ctx, "getTransaction", map[string]any{"hash": hash}, &out); err != nil {
		return entity.TransactionOutcome{}, err
	}

	tx := entity.TransactionOutcome{
		Status:       out.Status,
		Ledger:       out.Ledger,
		ResultXDR:    out.ResultXDR,
		LatestLedger: out.LatestLedger,
	}
	if out.Status == entity.TxStatusSuccess && out.ResultMetaXDR != "" {
		rv, err := returnValueFromMeta(out.ResultMetaXDR)
		if err != nil {
			c.logger.Warn("Failed to extract return value from transaction meta", "hash", hash, "error", err)
		}
		tx.ReturnValueXDR = rv
	}
	return tx, nil
}

func returnValueFromMeta(metaXDR string) (string, error) {
	var meta xdr.TransactionMeta
	if err := xdr.SafeUnmarshalBase64(metaXDR, &meta); err != nil {
		return "", err
	}
	if meta.V3 == nil || meta.V3.SorobanMeta == nil {
		return "", errors.New("transaction meta carries no soroban return value")
	}
	return xdr.MarshalBase64(meta.V3.SorobanMeta.ReturnValue)
}
