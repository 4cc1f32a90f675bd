package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.RecordTransition("approve", "ok")
	m.RecordTransition("approve", "ok")
	m.RecordTransition("deny", "VALIDATION_ERROR")
	m.RecordDocuments(3)
	m.ObserveHTTP("GET", "/api/checker/claims", 200, 15*time.Millisecond)

	if got := testutil.ToFloat64(m.transitionsTotal.WithLabelValues("approve", "ok")); got != 2 {
		t.Fatalf("approve ok = %v", got)
	}
	if got := testutil.ToFloat64(m.documentsStored); got != 3 {
		t.Fatalf("documents = %v", got)
	}
	if got := testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/api/checker/claims", "200")); got != 1 {
		t.Fatalf("http requests = %v", got)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.RecordTransition("assign", "ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `claims_transitions_total{action="assign",result="ok"} 1`) {
		t.Fatalf("exposition missing counter:\n%s", body)
	}
}
