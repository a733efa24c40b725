package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveAI("chat", time.Second, nil)
	m.Degraded("grammar")
	m.StorageError("upsert")
	m.HistoryAppendFailed()
}

func TestCounters(t *testing.T) {
	m := New("studywai", prometheus.NewRegistry())

	m.ObserveAI("translate", 10*time.Millisecond, nil)
	m.ObserveAI("translate", 10*time.Millisecond, errors.New("boom"))
	m.ObserveAI("translate", 10*time.Millisecond, errors.New("boom"))
	m.Degraded("flashcard")

	if got := testutil.ToFloat64(m.AIRequests.WithLabelValues("translate", "error")); got != 2 {
		t.Errorf("expected 2 errors, got %v", got)
	}
	if got := testutil.ToFloat64(m.NormalizeDegraded.WithLabelValues("flashcard")); got != 1 {
		t.Errorf("expected 1 degraded, got %v", got)
	}
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New("studywai", prometheus.NewRegistry())
	m.HistoryAppendFailed()

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "studywai_history_append_errors_total 1") {
		t.Errorf("metric missing from exposition:\n%s", rr.Body.String())
	}
}
