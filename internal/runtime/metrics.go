package runtime

import (
	"time"

	"github.com/arborui/arbor/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics instruments action execution. All methods are nil-safe so the
// pipeline stays metrics-free unless a registerer is wired in.
type Metrics struct {
	actions         *prometheus.CounterVec
	webhookDuration prometheus.Histogram
}

// NewMetrics registers the pipeline collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_actions_total",
				Help: "Actions executed, by type and outcome.",
			},
			[]string{"type", "outcome"},
		),
		webhookDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "arbor_webhook_duration_seconds",
				Help:    "Outbound webhook round-trip duration.",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	reg.MustRegister(m.actions, m.webhookDuration)
	return m
}

func (m *Metrics) observeAction(t domain.ActionType, outcome string) {
	if m == nil {
		return
	}
	m.actions.WithLabelValues(string(t), outcome).Inc()
}

func (m *Metrics) observeWebhook(d time.Duration) {
	if m == nil {
		return
	}
	m.webhookDuration.Observe(d.Seconds())
}
