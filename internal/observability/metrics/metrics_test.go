package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveSubmission(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewFunnelMetrics(reg)

	m.ObserveSubmission("delivered")
	m.ObserveSubmission("delivered")
	m.ObserveSubmission("crm_failed")

	if got := testutil.ToFloat64(m.submissionsTotal.WithLabelValues("delivered")); got != 2 {
		t.Errorf("delivered count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.submissionsTotal.WithLabelValues("crm_failed")); got != 1 {
		t.Errorf("crm_failed count = %v, want 1", got)
	}
}

func TestObserveEnrichmentFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewFunnelMetrics(reg)

	m.ObserveEnrichmentFailure("create_opportunity")
	if got := testutil.ToFloat64(m.enrichmentFailures.WithLabelValues("create_opportunity")); got != 1 {
		t.Errorf("enrichment failure count = %v, want 1", got)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *FunnelMetrics
	m.ObserveSubmission("delivered")
	m.ObserveEnrichmentFailure("attach_notes")
	m.ObserveGatewayRequest("POST", "200", 0.1)
}
