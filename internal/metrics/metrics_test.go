package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordExtraction(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordExtraction(OutcomeOK, 120*time.Millisecond)
	m.RecordExtraction(OutcomeOK, 80*time.Millisecond)
	m.RecordExtraction(OutcomeTimeout, 10*time.Second)

	if got := testutil.ToFloat64(m.ExtractionsTotal.WithLabelValues(OutcomeOK)); got != 2 {
		t.Fatalf("expected 2 ok extractions, got %v", got)
	}
	if got := testutil.ToFloat64(m.ExtractionsTotal.WithLabelValues(OutcomeTimeout)); got != 1 {
		t.Fatalf("expected 1 timeout, got %v", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordExtraction(OutcomeFetch, time.Second)
	m.RecordEvent("published")
}
