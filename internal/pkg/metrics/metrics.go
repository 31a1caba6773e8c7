package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "soroban_portfolio"

var (
	// ContractInvocations counts contract invocations by method, mode and outcome.
	ContractInvocations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contract_invocations_total",
			Help:      "Number of contract invocations by method, mode (read|submit) and outcome.",
		},
		[]string{"method", "mode", "outcome"},
	)

	// InvocationDuration observes invocation latency.
	InvocationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "contract_invocation_duration_seconds",
			Help:      "Latency of contract invocations.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	// ConfirmationPolls counts getTransaction polls.
	ConfirmationPolls = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "confirmation_polls_total",
			Help:      "Number of getTransaction polls while waiting for confirmation.",
		},
	)

	// PortfolioLoads counts portfolio loads by result (complete|partial|failed).
	PortfolioLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "portfolio_loads_total",
			Help:      "Number of portfolio loads by result.",
		},
		[]string{"result"},
	)

	// RPCRequests counts JSON-RPC requests by method and status.
	RPCRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "Number of Soroban JSON-RPC requests by method and status.",
		},
		[]string{"method", "status"},
	)

	registerOnce sync.Once
)

// MustRegisterMetrics registers all collectors with the default registry. Safe to call more than once.
func MustRegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			ContractInvocations,
			InvocationDuration,
			ConfirmationPolls,
			PortfolioLoads,
			RPCRequests,
		)
	})
}
