package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "vendora"

// EngineMetrics counts the business events the transition engine emits.
type EngineMetrics struct {
	conversions     prometheus.Counter
	transitions     *prometheus.CounterVec
	fundsMovements  *prometheus.CounterVec
	payoutDecisions *prometheus.CounterVec
	invoicesIssued  *prometheus.CounterVec
	webhookEvents   *prometheus.CounterVec
	walletDrift     prometheus.Counter
}

// NewEngineMetrics registers the engine metrics on the provided registerer.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	if reg == nil {
		return &EngineMetrics{}
	}
	conversions := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "checkout_conversions_total",
		Help:      "Carts converted into order groups.",
	})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "state_transitions_total",
		Help:      "Applied order state transitions by axis and target state.",
	}, []string{"axis", "to"})
	fundsMovements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "funds_movements_total",
		Help:      "Ledger fund movements by kind.",
	}, []string{"kind"})
	payoutDecisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "payout_decisions_total",
		Help:      "Payout request decisions by outcome.",
	}, []string{"status"})
	invoicesIssued := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "invoices_issued_total",
		Help:      "Invoices issued by type.",
	}, []string{"type"})
	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "webhook_events_total",
		Help:      "Inbound webhook deliveries by provider and result.",
	}, []string{"provider", "result"})
	walletDrift := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "wallet_drift_total",
		Help:      "Wallet accounts whose materialized balances diverged from the ledger sums.",
	})
	reg.MustRegister(conversions, transitions, fundsMovements, payoutDecisions, invoicesIssued, webhookEvents, walletDrift)
	return &EngineMetrics{
		conversions:     conversions,
		transitions:     transitions,
		fundsMovements:  fundsMovements,
		payoutDecisions: payoutDecisions,
		invoicesIssued:  invoicesIssued,
		webhookEvents:   webhookEvents,
		walletDrift:     walletDrift,
	}
}

// IncConversion records a successful cart conversion.
func (e *EngineMetrics) IncConversion() {
	if e == nil || e.conversions == nil {
		return
	}
	e.conversions.Inc()
}

// IncTransition records an applied transition on the named axis.
func (e *EngineMetrics) IncTransition(axis, to string) {
	if e == nil || e.transitions == nil {
		return
	}
	e.transitions.WithLabelValues(normalizeLabel(axis), normalizeLabel(to)).Inc()
}

// IncFundsMovement records a ledger movement (lock, unlock, reversal, payout).
func (e *EngineMetrics) IncFundsMovement(kind string) {
	if e == nil || e.fundsMovements == nil {
		return
	}
	e.fundsMovements.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncPayoutDecision records a payout decision outcome.
func (e *EngineMetrics) IncPayoutDecision(status string) {
	if e == nil || e.payoutDecisions == nil {
		return
	}
	e.payoutDecisions.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncInvoiceIssued records an issued invoice by type.
func (e *EngineMetrics) IncInvoiceIssued(invoiceType string) {
	if e == nil || e.invoicesIssued == nil {
		return
	}
	e.invoicesIssued.WithLabelValues(normalizeLabel(invoiceType)).Inc()
}

// IncWebhookEvent records an inbound webhook delivery result.
func (e *EngineMetrics) IncWebhookEvent(provider, result string) {
	if e == nil || e.webhookEvents == nil {
		return
	}
	e.webhookEvents.WithLabelValues(normalizeLabel(provider), normalizeLabel(result)).Inc()
}

// IncWalletDrift records a wallet account whose materialized balances no
// longer match the sums recomputed from its ledger entries.
func (e *EngineMetrics) IncWalletDrift() {
	if e == nil || e.walletDrift == nil {
		return
	}
	e.walletDrift.Inc()
}
