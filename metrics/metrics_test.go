package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRunCounters(t *testing.T) {
	m := New()
	m.RunFinished("succeeded", "", 2*time.Second)
	m.RunFinished("failed", "execute", time.Second)
	m.RunFinished("failed", "execute", time.Second)

	if got := testutil.ToFloat64(m.runs.WithLabelValues("failed", "execute")); got != 2 {
		t.Fatalf("failed/execute = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.runs.WithLabelValues("succeeded", "")); got != 1 {
		t.Fatalf("succeeded = %v, want 1", got)
	}
}

func TestBusyGauge(t *testing.T) {
	m := New()
	m.SetBusy(true)
	if got := testutil.ToFloat64(m.busy); got != 1 {
		t.Fatalf("busy = %v", got)
	}
	m.SetBusy(false)
	if got := testutil.ToFloat64(m.busy); got != 0 {
		t.Fatalf("busy = %v", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RunFinished("succeeded", "", time.Second)
	m.Rejected("busy")
	m.SetBusy(true)
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.Rejected("missing_input")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `stillreel_rejections_total{reason="missing_input"} 1`) {
		t.Fatalf("rejection counter missing from exposition:\n%s", body)
	}
}
