package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects payout and webhook delivery counters.
type Metrics struct {
	Registry *prometheus.Registry

	PayoutSimulations   prometheus.Counter
	PayoutFinalizations prometheus.Counter
	WebhookDeliveries   *prometheus.CounterVec
	WebhookDeliverySecs prometheus.Histogram
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Registry: registry,
		PayoutSimulations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mentorpay",
			Name:      "payout_simulations_total",
			Help:      "Number of payout run simulations.",
		}),
		PayoutFinalizations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mentorpay",
			Name:      "payout_finalizations_total",
			Help:      "Number of finalized payout runs.",
		}),
		WebhookDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mentorpay",
			Name:      "webhook_deliveries_total",
			Help:      "Webhook delivery attempts by outcome.",
		}, []string{"outcome"}),
		WebhookDeliverySecs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mentorpay",
			Name:      "webhook_delivery_duration_seconds",
			Help:      "Duration of webhook delivery attempts.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	registry.MustRegister(
		m.PayoutSimulations,
		m.PayoutFinalizations,
		m.WebhookDeliveries,
		m.WebhookDeliverySecs,
	)
	return m
}

// ObserveDelivery records one webhook delivery attempt.
func (m *Metrics) ObserveDelivery(success bool, seconds float64) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.WebhookDeliveries.WithLabelValues(outcome).Inc()
	m.WebhookDeliverySecs.Observe(seconds)
}
