package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestRecordEnrollment_IncrementsByLabel verifies outcomes are counted per label set.
func TestRecordEnrollment_IncrementsByLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordEnrollment("training", OutcomeOK)
	c.RecordEnrollment("training", OutcomeOK)
	c.RecordEnrollment("event", OutcomeRejected)

	if got := testutil.ToFloat64(c.enrollments.WithLabelValues("training", OutcomeOK)); got != 2 {
		t.Errorf("training admitted = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.enrollments.WithLabelValues("event", OutcomeRejected)); got != 1 {
		t.Errorf("event rejected = %v, want 1", got)
	}
}

// TestRecordStoreRetry_IncrementsCounter verifies the retry counter.
func TestRecordStoreRetry_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordStoreRetry()
	c.RecordStoreRetry()
	c.RecordStoreRetry()

	if got := testutil.ToFloat64(c.retries); got != 3 {
		t.Errorf("retries = %v, want 3", got)
	}
}

// TestObserve_RecordsHistograms verifies query and request histograms are collected.
func TestObserve_RecordsHistograms(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.ObserveQuery("ExecContext", 3*time.Millisecond)
	c.ObserveRequest("/sessions/{id}", 201, 10*time.Millisecond)

	if n := testutil.CollectAndCount(c.queries); n != 1 {
		t.Errorf("query series = %d, want 1", n)
	}
	if n := testutil.CollectAndCount(c.requests); n != 1 {
		t.Errorf("request series = %d, want 1", n)
	}
}

// TestHandler_ExposesMetrics verifies the scrape endpoint output.
func TestHandler_ExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordStatusTransition("event", "ongoing", "ok")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `clubhouse_status_transitions_total{activity="event",outcome="ok",to="ongoing"} 1`) {
		t.Errorf("scrape output missing transition counter:\n%s", body)
	}
}
