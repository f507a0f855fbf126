package metrics

import "github.com/prometheus/client_golang/prometheus"

// FunnelMetrics exposes counters/histograms for the lead submission flow
// and the CRM proxy gateway.
type FunnelMetrics struct {
	submissionsTotal   *prometheus.CounterVec
	enrichmentFailures *prometheus.CounterVec
	gatewayTotal       *prometheus.CounterVec
	gatewayLatency     *prometheus.HistogramVec
}

func NewFunnelMetrics(reg prometheus.Registerer) *FunnelMetrics {
	m := &FunnelMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wattleads",
			Subsystem: "leads",
			Name:      "submissions_total",
			Help:      "Total lead submissions by outcome",
		}, []string{"outcome"}),
		enrichmentFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wattleads",
			Subsystem: "crm",
			Name:      "enrichment_failures_total",
			Help:      "Best-effort CRM enrichment steps that failed",
		}, []string{"step"}),
		gatewayTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wattleads",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Total proxied CRM requests by method and status",
		}, []string{"method", "status"}),
		gatewayLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wattleads",
			Subsystem: "gateway",
			Name:      "upstream_latency_seconds",
			Help:      "Latency of upstream CRM calls made by the gateway",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.enrichmentFailures, m.gatewayTotal, m.gatewayLatency)
	return m
}

func (m *FunnelMetrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
}

func (m *FunnelMetrics) ObserveEnrichmentFailure(step string) {
	if m == nil {
		return
	}
	m.enrichmentFailures.WithLabelValues(step).Inc()
}

func (m *FunnelMetrics) ObserveGatewayRequest(method, status string, seconds float64) {
	if m == nil {
		return
	}
	m.gatewayTotal.WithLabelValues(method, status).Inc()
	m.gatewayLatency.WithLabelValues(method).Observe(seconds)
}
