// Package metrics holds the Prometheus collectors for the ledger server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "splitledger"

// Settlement outcomes.
const (
	OutcomeSettled   = "settled"
	OutcomeNoDebt    = "no_debt"
	OutcomeCorrupt   = "corrupt"
	OutcomeNotMember = "not_member"
	OutcomeError     = "error"
)

// Metrics records ledger and RPC activity. A nil *Metrics records nothing.
type Metrics struct {
	settlements       *prometheus.CounterVec
	integrityFailures *prometheus.CounterVec
	rpcDuration       *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		settlements: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_total",
			Help:      "Settle-up attempts by currency and outcome.",
		}, []string{"currency", "outcome"}),
		integrityFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "integrity_failures_total",
			Help:      "Ledger integrity checks whose balances did not sum to zero.",
		}, []string{"currency"}),
		rpcDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC handling latency by procedure and result code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure", "code"}),
	}
}

func (m *Metrics) Settlement(currency, outcome string) {
	if m == nil {
		return
	}
	m.settlements.WithLabelValues(currency, outcome).Inc()
}

func (m *Metrics) IntegrityFailure(currency string) {
	if m == nil {
		return
	}
	m.integrityFailures.WithLabelValues(currency).Inc()
}

func (m *Metrics) ObserveRPC(procedure, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.rpcDuration.WithLabelValues(procedure, code).Observe(d.Seconds())
}
