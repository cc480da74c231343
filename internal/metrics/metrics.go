package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Instrumentation for the verification and payment cores. Counters are
// registered on the default registry and served by promhttp in cmd/api.
var (
	ValidationsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fundflow",
		Name:      "validations_submitted_total",
		Help:      "Community validations accepted by intake.",
	}, []string{"result"})

	ConsensusDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fundflow",
		Name:      "consensus_decisions_total",
		Help:      "Consensus evaluator outcomes.",
	}, []string{"outcome"})

	Settlements = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fundflow",
		Name:      "milestone_settlements_total",
		Help:      "Milestone settlement attempts by result.",
	}, []string{"result"})

	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fundflow",
		Name:      "payment_webhook_events_total",
		Help:      "Payment provider webhook deliveries by provider and result.",
	}, []string{"provider", "result"})

	OfflineReplayItems = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fundflow",
		Name:      "offline_replay_items_total",
		Help:      "Offline reconciliation items by result.",
	}, []string{"result"})

	ImpactUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fundflow",
		Name:      "impact_metric_updates_total",
		Help:      "Impact aggregate updates by project category.",
	}, []string{"category"})
)
