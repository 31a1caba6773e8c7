package client

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"soroban_portfolio/internal/app/port"
	"soroban_portfolio/internal/domain/entity"
	"soroban_portfolio/internal/infrastructure/configloader"
	"soroban_portfolio/internal/pkg/logger"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stellar/go/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNet = entity.NetworkConfig{
	Name:              "testnet",
	RPCURL:            "https://rpc.test",
	NetworkPassphrase: network.TestNetworkPassphrase,
}

func ledgerCfg() configloader.LedgerConfig {
	return configloader.LedgerConfig{
		BaseFee:               100,
		TxTimeoutSeconds:      30,
		PollIntervalMs:        10,
		ConfirmTimeoutSeconds: 5,
	}
}

func newTestGateway(t *testing.T, rpc *fakeRPC, signer port.Signer) *SorobanGateway {
	t.Helper()
	factory := func(entity.NetworkConfig) (port.SorobanRPC, error) { return rpc, nil }
	g, err := NewSorobanGateway(testNet, factory, signer, ledgerCfg(), logger.Nop())
	require.NoError(t, err)
	return g
}

func emptySorobanData(t *testing.T) string {
	t.Helper()
	s, err := xdr.MarshalBase64(xdr.SorobanTransactionData{})
	require.NoError(t, err)
	return s
}

func balanceRequest(t *testing.T) entity.InvocationRequest {
	return entity.InvocationRequest{
		ContractAddress: randomContractAddress(t),
		Method:          "balance",
		Args:            []entity.ScValue{entity.AddressArg(keypair.MustRandom().Address())},
	}
}

// ---- InvokeReadOnly ----

func TestInvokeReadOnly_DecodesReturnValue(t *testing.T) {
	ret, err := EncodeScValBase64(entity.I128Arg(big.NewInt(12345678)))
	require.NoError(t, err)
	rpc := &fakeRPC{sim: entity.SimulationOutcome{ReturnValueXDR: ret}}
	g := newTestGateway(t, rpc, nil)

	res := g.InvokeReadOnly(context.Background(), balanceRequest(t))

	require.NoError(t, res.Err)
	assert.False(t, res.HasReceipt())
	n, err := res.Value.BigInt()
	require.NoError(t, err)
	assert.Equal(t, int64(12345678), n.Int64())
	assert.Len(t, rpc.simulated, 1)
	assert.Empty(t, rpc.sent, "read-only calls never submit")
}

func TestInvokeReadOnly_SimulationError(t *testing.T) {
	rpc := &fakeRPC{sim: entity.SimulationOutcome{Error: "HostError: contract trapped"}}
	g := newTestGateway(t, rpc, nil)

	res := g.InvokeReadOnly(context.Background(), balanceRequest(t))

	require.Error(t, res.Err)
	assert.True(t, errors.Is(res.Err, entity.ErrSimulation))
	assert.Contains(t, res.Err.Error(), "contract trapped")
}

func TestInvokeReadOnly_ConnectivityError(t *testing.T) {
	rpc := &fakeRPC{simErr: entity.NewLedgerError(entity.ErrConnectivity, "dial tcp: refused")}
	g := newTestGateway(t, rpc, nil)

	res := g.InvokeReadOnly(context.Background(), balanceRequest(t))
	assert.True(t, errors.Is(res.Err, entity.ErrConnectivity))
}

func TestInvokeReadOnly_RPCErrorIsSimulation(t *testing.T) {
	rpc := &fakeRPC{simErr: &RPCError{Code: -32602, Message: "invalid params"}}
	g := newTestGateway(t, rpc, nil)

	res := g.InvokeReadOnly(context.Background(), balanceRequest(t))
	assert.True(t, errors.Is(res.Err, entity.ErrSimulation))
}

func TestInvokeReadOnly_InvalidContract(t *testing.T) {
	g := newTestGateway(t, &fakeRPC{}, nil)
	req := balanceRequest(t)
	req.ContractAddress = keypair.MustRandom().Address()

	res := g.InvokeReadOnly(context.Background(), req)
	assert.True(t, errors.Is(res.Err, entity.ErrInvalidAddress))
}

// ---- InvokeAndSubmit ----

func submitRPC(t *testing.T) *fakeRPC {
	return &fakeRPC{
		account: entity.LedgerAccount{Balance: 100_0000000, Sequence: 41},
		sim: entity.SimulationOutcome{
			TransactionData: emptySorobanData(t),
			MinResourceFee:  5000,
		},
		send: entity.SendOutcome{Hash: "abc123", Status: entity.SendStatusPending},
	}
}

func TestInvokeAndSubmit_NoSigner(t *testing.T) {
	rpc := submitRPC(t)
	g := newTestGateway(t, rpc, nil)

	res := g.InvokeAndSubmit(context.Background(), balanceRequest(t))
	assert.True(t, errors.Is(res.Err, entity.ErrNoSignerConfigured))
	assert.Empty(t, rpc.simulated)
}

func TestInvokeAndSubmit_Success(t *testing.T) {
	rpc := submitRPC(t)
	rpc.txStatuses = []string{entity.TxStatusNotFound, entity.TxStatusNotFound, entity.TxStatusSuccess}
	signer := &fakeSigner{pub: keypair.MustRandom().Address()}
	g := newTestGateway(t, rpc, signer)

	res := g.InvokeAndSubmit(context.Background(), balanceRequest(t))

	require.NoError(t, res.Err)
	assert.True(t, res.HasReceipt())
	assert.Equal(t, "abc123", res.TxHash)
	assert.Equal(t, entity.ScVoid, res.Value.Kind)
	assert.Equal(t, 1, signer.signed)
	assert.Equal(t, 3, rpc.pollCount())
	require.Len(t, rpc.sent, 1)
}

func TestInvokeAndSubmit_Failed(t *testing.T) {
	rpc := submitRPC(t)
	rpc.txStatuses = []string{entity.TxStatusFailed}
	g := newTestGateway(t, rpc, &fakeSigner{pub: keypair.MustRandom().Address()})

	res := g.InvokeAndSubmit(context.Background(), balanceRequest(t))

	assert.True(t, errors.Is(res.Err, entity.ErrSubmissionFailed))
	assert.Equal(t, "abc123", res.TxHash)
	assert.False(t, res.HasReceipt())
}

func TestInvokeAndSubmit_SendError(t *testing.T) {
	rpc := submitRPC(t)
	rpc.send = entity.SendOutcome{Hash: "bad", Status: entity.SendStatusError, ErrorResultXDR: "AAAA"}
	g := newTestGateway(t, rpc, &fakeSigner{pub: keypair.MustRandom().Address()})

	res := g.InvokeAndSubmit(context.Background(), balanceRequest(t))

	assert.True(t, errors.Is(res.Err, entity.ErrSubmissionFailed))
	assert.Zero(t, rpc.pollCount())
}

func TestInvokeAndSubmit_SigningRejected(t *testing.T) {
	rpc := submitRPC(t)
	g := newTestGateway(t, rpc, &fakeSigner{pub: keypair.MustRandom().Address(), err: errors.New("user closed the wallet")})

	res := g.InvokeAndSubmit(context.Background(), balanceRequest(t))

	assert.True(t, errors.Is(res.Err, entity.ErrSigningRejected))
	assert.Empty(t, rpc.sent)
}

func TestInvokeAndSubmit_SimulationFailureNeverSigns(t *testing.T) {
	rpc := submitRPC(t)
	rpc.sim = entity.SimulationOutcome{Error: "insufficient balance"}
	signer := &fakeSigner{pub: keypair.MustRandom().Address()}
	g := newTestGateway(t, rpc, signer)

	res := g.InvokeAndSubmit(context.Background(), balanceRequest(t))

	assert.True(t, errors.Is(res.Err, entity.ErrSimulation))
	assert.Zero(t, signer.signed)
}

// Transaction never leaves NOT_FOUND: the call ends with Timeout carrying the hash,
// no earlier than the deadline.
func TestInvokeAndSubmit_ConfirmationTimeout(t *testing.T) {
	rpc := submitRPC(t)
	rpc.txStatuses = []string{entity.TxStatusNotFound}
	g := newTestGateway(t, rpc, &fakeSigner{pub: keypair.MustRandom().Address()})

	deadline := 80 * time.Millisecond
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), deadline)
	defer cancel()

	res := g.InvokeAndSubmit(ctx, balanceRequest(t))
	elapsed := time.Since(start)

	require.Error(t, res.Err)
	assert.True(t, errors.Is(res.Err, entity.ErrTimeout))
	assert.Equal(t, "abc123", res.TxHash)
	var le *entity.LedgerError
	require.True(t, errors.As(res.Err, &le))
	assert.Equal(t, "abc123", le.TxHash)
	assert.GreaterOrEqual(t, elapsed, deadline)
	assert.Greater(t, rpc.pollCount(), 1)
}

// ---- network ----

func TestNetworkStatus(t *testing.T) {
	rpc := &fakeRPC{health: entity.HealthInfo{Status: "healthy"}, latest: 777}
	g := newTestGateway(t, rpc, nil)

	st := g.NetworkStatus(context.Background())
	assert.True(t, st.Connected)
	assert.Equal(t, uint32(777), st.LatestLedger)
	assert.Equal(t, "testnet", st.Network)
}

func TestNetworkStatus_Unreachable(t *testing.T) {
	rpc := &fakeRPC{healthErr: entity.NewLedgerError(entity.ErrConnectivity, "timeout")}
	g := newTestGateway(t, rpc, nil)

	st := g.NetworkStatus(context.Background())
	assert.False(t, st.Connected)
	assert.Equal(t, testNet.RPCURL, st.RPCURL)
}

func TestGetAccount(t *testing.T) {
	rpc := &fakeRPC{account: entity.LedgerAccount{Balance: 123_4567890, Sequence: 9}}
	g := newTestGateway(t, rpc, nil)
	pub := keypair.MustRandom().Address()

	acc, err := g.GetAccount(context.Background(), pub)
	require.NoError(t, err)
	assert.Equal(t, "123.456789", acc.NativeBalance.String())
	assert.Equal(t, int64(9), acc.Sequence)
	assert.True(t, acc.Live)

	_, err = g.GetAccount(context.Background(), "not-a-key")
	assert.True(t, errors.Is(err, entity.ErrInvalidAddress))
}

func TestGetAccount_NotFound(t *testing.T) {
	rpc := &fakeRPC{accountErr: entity.ErrAccountNotFound}
	g := newTestGateway(t, rpc, nil)

	_, err := g.GetAccount(context.Background(), keypair.MustRandom().Address())
	assert.True(t, errors.Is(err, entity.ErrAccountNotFound))
}

func TestSwitchNetwork_ConcurrentCallsSeeWholeConfig(t *testing.T) {
	mainnet := entity.NetworkConfig{Name: "mainnet", RPCURL: "https://rpc.main", NetworkPassphrase: network.PublicNetworkPassphrase}
	rpc := &fakeRPC{}
	g := newTestGateway(t, rpc, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			target := testNet
			if i%2 == 0 {
				target = mainnet
			}
			assert.NoError(t, g.SwitchNetwork(target))
		}(i)
		go func() {
			defer wg.Done()
			active := g.ActiveNetwork()
			ok := active == testNet || active == mainnet
			assert.True(t, ok, "torn network config %+v", active)
		}()
	}
	wg.Wait()

	require.NoError(t, g.SwitchNetwork(mainnet))
	assert.Equal(t, mainnet, g.ActiveNetwork())
}

func TestSwitchNetwork_RejectsIncompleteConfig(t *testing.T) {
	g := newTestGateway(t, &fakeRPC{}, nil)
	err := g.SwitchNetwork(entity.NetworkConfig{Name: "broken"})
	assert.Error(t, err)
	assert.Equal(t, testNet, g.ActiveNetwork())
}
