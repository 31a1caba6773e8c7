package client

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"soroban_portfolio/internal/app/port"
	"soroban_portfolio/internal/domain/entity"
	"soroban_portfolio/internal/infrastructure/configloader"
	"soroban_portfolio/internal/pkg/metrics"

	"github.com/shopspring/decimal"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"
)

// nullAccount is the all-zero ed25519 key, used as the source of dry-run
// transactions when neither a signer nor a simulation account is configured.
const nullAccount = "GAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAWHF"

const stroopsPerLumen = 7

const (
	modeRead   = "read"
	modeSubmit = "submit"
)

type connection struct {
	cfg entity.NetworkConfig
	rpc port.SorobanRPC
}

// SorobanGateway implements port.LedgerGateway.
// The active connection is the only mutable state; it is swapped atomically by
// SwitchNetwork and every call works with the connection it loaded at start.
type SorobanGateway struct {
	conn    atomic.Pointer[connection]
	factory port.SorobanRPCFactory
	signer  port.Signer
	logger  port.Logger

	baseFee           int64
	txTimeoutSeconds  int64
	pollInterval      time.Duration
	confirmTimeout    time.Duration
	simulationAccount string
}

// NewSorobanGateway connects to the given network. signer may be nil, in which case
// only read-only invocations are possible.
func NewSorobanGateway(
	netCfg entity.NetworkConfig,
	factory port.SorobanRPCFactory,
	signer port.Signer,
	cfg configloader.LedgerConfig,
	logger port.Logger,
) (*SorobanGateway, error) {
	g := &SorobanGateway{
		factory:           factory,
		signer:            signer,
		logger:            logger,
		baseFee:           cfg.BaseFee,
		txTimeoutSeconds:  cfg.TxTimeoutSeconds,
		pollInterval:      time.Duration(cfg.PollIntervalMs) * time.Millisecond,
		confirmTimeout:    time.Duration(cfg.ConfirmTimeoutSeconds) * time.Second,
		simulationAccount: cfg.SimulationAccount,
	}
	if g.baseFee < txnbuild.MinBaseFee {
		g.baseFee = txnbuild.MinBaseFee
	}
	if g.txTimeoutSeconds <= 0 {
		g.txTimeoutSeconds = 30
	}
	if g.pollInterval <= 0 {
		g.pollInterval = time.Second
	}
	if g.confirmTimeout <= 0 {
		g.confirmTimeout = time.Minute
	}
	if err := g.SwitchNetwork(netCfg); err != nil {
		return nil, err
	}
	return g, nil
}

// SwitchNetwork opens a connection to cfg and makes it the active one.
// In-flight calls finish on the connection they started with.
func (g *SorobanGateway) SwitchNetwork(cfg entity.NetworkConfig) error {
	if cfg.Name == "" || cfg.RPCURL == "" || cfg.NetworkPassphrase == "" {
		return fmt.Errorf("network config %q is incomplete", cfg.Name)
	}
	rpc, err := g.factory(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to network %s: %w", cfg.Name, err)
	}
	prev := g.conn.Swap(&connection{cfg: cfg, rpc: rpc})
	if prev != nil {
		g.logger.Info("Switched active network", "from", prev.cfg.Name, "to", cfg.Name, "rpc_url", cfg.RPCURL)
	} else {
		g.logger.Info("Connected to network", "network", cfg.Name, "rpc_url", cfg.RPCURL)
	}
	return nil
}

// ActiveNetwork returns the config of the active connection.
func (g *SorobanGateway) ActiveNetwork() entity.NetworkConfig {
	if c := g.conn.Load(); c != nil {
		return c.cfg
	}
	return entity.NetworkConfig{}
}

// NetworkStatus reports health and latest ledger of the active network. It never fails;
// an unreachable network is reported with Connected=false.
func (g *SorobanGateway) NetworkStatus(ctx context.Context) entity.NetworkStatus {
	c := g.conn.Load()
	if c == nil {
		return entity.NetworkStatus{}
	}
	status := entity.NetworkStatus{
		Network:           c.cfg.Name,
		NetworkPassphrase: c.cfg.NetworkPassphrase,
		RPCURL:            c.cfg.RPCURL,
	}

	health, err := c.rpc.GetHealth(ctx)
	if err != nil {
		g.logger.Warn("Network health check failed", "network", c.cfg.Name, "error", err)
		return status
	}
	latest, err := c.rpc.GetLatestLedger(ctx)
	if err != nil {
		g.logger.Warn("Failed to fetch latest ledger", "network", c.cfg.Name, "error", err)
		return status
	}
	status.Connected = health.Status == "healthy"
	status.LatestLedger = latest.Sequence
	return status
}

// LatestLedger returns the sequence of the latest closed ledger.
func (g *SorobanGateway) LatestLedger(ctx context.Context) (uint32, error) {
	c := g.conn.Load()
	if c == nil {
		return 0, entity.ErrConnectivity
	}
	latest, err := c.rpc.GetLatestLedger(ctx)
	if err != nil {
		return 0, classify(err, entity.ErrConnectivity)
	}
	return latest.Sequence, nil
}

// GetAccount reads the account's native balance and sequence.
func (g *SorobanGateway) GetAccount(ctx context.Context, publicKey string) (entity.AccountSnapshot, error) {
	if !strkey.IsValidEd25519PublicKey(publicKey) {
		return entity.AccountSnapshot{}, fmt.Errorf("account %q: %w", publicKey, entity.ErrInvalidAddress)
	}
	c := g.conn.Load()
	if c == nil {
		return entity.AccountSnapshot{}, entity.ErrConnectivity
	}
	acc, err := c.rpc.GetAccount(ctx, publicKey)
	if err != nil {
		return entity.AccountSnapshot{}, accountError(err)
	}
	return entity.AccountSnapshot{
		PublicKey:     acc.AccountID,
		NativeBalance: decimal.New(acc.Balance, -stroopsPerLumen),
		Sequence:      acc.Sequence,
		Live:          true,
	}, nil
}

// InvokeReadOnly simulates the call and decodes its return value. It never submits.
func (g *SorobanGateway) InvokeReadOnly(ctx context.Context, req entity.InvocationRequest) (res entity.InvocationResult) {
	start := time.Now()
	defer func() { g.observe(req.Method, modeRead, start, res) }()

	c := g.conn.Load()
	if c == nil {
		return entity.Failed(entity.ErrConnectivity)
	}

	sim, err := g.simulate(ctx, c, g.readSource(), 0, req)
	if err != nil {
		return entity.Failed(err)
	}
	value, err := DecodeScValBase64(sim.ReturnValueXDR)
	if err != nil {
		return entity.Failed(entity.NewLedgerError(entity.ErrSimulation, err.Error()))
	}
	return entity.Ok(value)
}

// InvokeAndSubmit simulates, assembles, signs and submits the call, then polls for
// confirmation until ctx is done. Without a caller deadline the configured
// confirmation timeout applies.
func (g *SorobanGateway) InvokeAndSubmit(ctx context.Context, req entity.InvocationRequest) (res entity.InvocationResult) {
	start := time.Now()
	defer func() { g.observe(req.Method, modeSubmit, start, res) }()

	if g.signer == nil {
		return entity.Failed(entity.ErrNoSignerConfigured)
	}
	c := g.conn.Load()
	if c == nil {
		return entity.Failed(entity.ErrConnectivity)
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.confirmTimeout)
		defer cancel()
	}

	source := g.signer.PublicKey()
	acc, err := c.rpc.GetAccount(ctx, source)
	if err != nil {
		return entity.Failed(accountError(err))
	}

	sim, err := g.simulate(ctx, c, source, acc.Sequence, req)
	if err != nil {
		return entity.Failed(err)
	}

	tx, err := g.assemble(source, acc.Sequence, req, sim)
	if err != nil {
		return entity.Failed(entity.NewLedgerError(entity.ErrSimulation, err.Error()))
	}
	envelope, err := tx.Base64()
	if err != nil {
		return entity.Failed(fmt.Errorf("failed to encode transaction: %w", err))
	}

	signed, err := g.signer.Sign(ctx, envelope, c.cfg.NetworkPassphrase)
	if err != nil {
		if !errors.Is(err, entity.ErrSigningRejected) {
			err = entity.NewLedgerError(entity.ErrSigningRejected, err.Error())
		}
		return entity.Failed(err)
	}

	sent, err := c.rpc.SendTransaction(ctx, signed)
	if err != nil {
		return entity.Failed(classify(err, entity.ErrConnectivity))
	}
	g.logger.Info("Transaction submitted", "hash", sent.Hash, "status", sent.Status, "method", req.Method)

	switch sent.Status {
	case entity.SendStatusError:
		e := entity.NewLedgerError(entity.ErrSubmissionFailed, "rejected by network: "+sent.ErrorResultXDR).WithHash(sent.Hash)
		return entity.InvocationResult{Err: e, TxHash: sent.Hash}
	case entity.SendStatusTryAgain:
		e := entity.NewLedgerError(entity.ErrConnectivity, "network asked to try again later").WithHash(sent.Hash)
		return entity.InvocationResult{Err: e, TxHash: sent.Hash}
	}

	out, err := waitForConfirmation(ctx, c.rpc, sent.Hash, g.pollInterval, g.logger)
	if err != nil {
		return entity.InvocationResult{Err: err, TxHash: sent.Hash}
	}
	if out.Status == entity.TxStatusFailed {
		e := entity.NewLedgerError(entity.ErrSubmissionFailed, "transaction failed: "+out.ResultXDR).WithHash(sent.Hash)
		return entity.InvocationResult{Err: e, TxHash: sent.Hash}
	}

	value, err := DecodeScValBase64(out.ReturnValueXDR)
	if err != nil {
		g.logger.Warn("Confirmed transaction has an undecodable return value", "hash", sent.Hash, "error", err)
		value = entity.Void()
	}
	return entity.OkWithReceipt(value, sent.Hash)
}

func (g *SorobanGateway) readSource() string {
	if g.signer != nil {
		return g.signer.PublicKey()
	}
	if g.simulationAccount != "" {
		return g.simulationAccount
	}
	return nullAccount
}

func (g *SorobanGateway) simulate(
	ctx context.Context,
	c *connection,
	source string,
	sequence int64,
	req entity.InvocationRequest,
) (entity.SimulationOutcome, error) {
	op, err := invokeOperation(req, nil, nil)
	if err != nil {
		return entity.SimulationOutcome{}, err
	}
	tx, err := g.buildTransaction(source, sequence, g.baseFee, op)
	if err != nil {
		return entity.SimulationOutcome{}, err
	}
	envelope, err := tx.Base64()
	if err != nil {
		return entity.SimulationOutcome{}, fmt.Errorf("failed to encode transaction: %w", err)
	}

	sim, err := c.rpc.SimulateTransaction(ctx, envelope)
	if err != nil {
		return entity.SimulationOutcome{}, classify(err, entity.ErrSimulation)
	}
	if sim.Error != "" {
		g.logger.Debug("Simulation rejected", "contract", req.ContractAddress, "method", req.Method, "error", sim.Error)
		return entity.SimulationOutcome{}, entity.NewLedgerError(entity.ErrSimulation, sim.Error)
	}
	return sim, nil
}

// assemble rebuilds the transaction with the simulated footprint, auth entries and resource fee.
func (g *SorobanGateway) assemble(
	source string,
	sequence int64,
	req entity.InvocationRequest,
	sim entity.SimulationOutcome,
) (*txnbuild.Transaction, error) {
	var data xdr.SorobanTransactionData
	if err := xdr.SafeUnmarshalBase64(sim.TransactionData, &data); err != nil {
		return nil, fmt.Errorf("invalid transaction data from simulation: %w", err)
	}
	auth := make([]xdr.SorobanAuthorizationEntry, 0, len(sim.AuthXDR))
	for i, a := range sim.AuthXDR {
		var entry xdr.SorobanAuthorizationEntry
		if err := xdr.SafeUnmarshalBase64(a, &entry); err != nil {
			return nil, fmt.Errorf("invalid auth entry %d from simulation: %w", i, err)
		}
		auth = append(auth, entry)
	}

	op, err := invokeOperation(req, auth, &data)
	if err != nil {
		return nil, err
	}
	return g.buildTransaction(source, sequence, g.baseFee+sim.MinResourceFee, op)
}

func (g *SorobanGateway) buildTransaction(source string, sequence int64, fee int64, op txnbuild.Operation) (*txnbuild.Transaction, error) {
	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &txnbuild.SimpleAccount{AccountID: source, Sequence: sequence},
		IncrementSequenceNum: true,
		BaseFee:              fee,
		Preconditions:        txnbuild.Preconditions{TimeBounds: txnbuild.NewTimeout(g.txTimeoutSeconds)},
		Operations:           []txnbuild.Operation{op},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction: %w", err)
	}
	return tx, nil
}

func invokeOperation(
	req entity.InvocationRequest,
	auth []xdr.SorobanAuthorizationEntry,
	data *xdr.SorobanTransactionData,
) (*txnbuild.InvokeHostFunction, error) {
	contract, err := EncodeAddress(req.ContractAddress)
	if err != nil {
		return nil, err
	}
	if contract.Type != xdr.ScAddressTypeScAddressTypeContract {
		return nil, fmt.Errorf("%q is not a contract address: %w", req.ContractAddress, entity.ErrInvalidAddress)
	}
	args := make(xdr.ScVec, 0, len(req.Args))
	for i, a := range req.Args {
		enc, err := EncodeScVal(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d of %s: %w", i, req.Method, err)
		}
		args = append(args, enc)
	}

	op := &txnbuild.InvokeHostFunction{
		HostFunction: xdr.HostFunction{
			Type: xdr.HostFunctionTypeHostFunctionTypeInvokeContract,
			InvokeContract: &xdr.InvokeContractArgs{
				ContractAddress: contract,
				FunctionName:    xdr.ScSymbol(req.Method),
				Args:            args,
			},
		},
		Auth: auth,
	}
	if data != nil {
		op.Ext = xdr.TransactionExt{V: 1, SorobanData: data}
	}
	return op, nil
}

func (g *SorobanGateway) observe(method, mode string, start time.Time, res entity.InvocationResult) {
	outcome := "ok"
	switch {
	case errors.Is(res.Err, entity.ErrTimeout):
		outcome = "timeout"
	case res.Err != nil:
		outcome = "error"
	}
	metrics.ContractInvocations.WithLabelValues(method, mode, outcome).Inc()
	metrics.InvocationDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
}

// classify keeps typed ledger errors and wraps anything else under fallback.
func classify(err error, fallback error) error {
	var le *entity.LedgerError
	if errors.As(err, &le) {
		return err
	}
	return entity.NewLedgerError(fallback, err.Error())
}

func accountError(err error) error {
	if errors.Is(err, entity.ErrAccountNotFound) || errors.Is(err, entity.ErrInvalidAddress) {
		return err
	}
	return classify(err, entity.ErrConnectivity)
}
