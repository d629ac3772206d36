package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ConnectorFetch("feed", nil)
	m.Events("filter", 3)
	m.ProviderCall("claude", errors.New("boom"))
	m.ProviderInvalid("claude")
	m.Synthesis("generated")
	m.RunFinished(time.Second, 50, nil)
	if m.Registry() != nil {
		t.Error("nil metrics should have no registry")
	}
}

func TestCounters(t *testing.T) {
	m := New()
	m.ConnectorFetch("feed", nil)
	m.ConnectorFetch("feed", nil)
	m.ConnectorFetch("search", errors.New("timeout"))
	m.ProviderCall("claude", errors.New("bad json"))
	m.ProviderCall("openai", nil)
	m.ProviderInvalid("openai")
	m.Events("dedup", 12)

	if got := testutil.ToFloat64(m.connectorFetch.WithLabelValues("feed", "ok")); got != 2 {
		t.Errorf("feed ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.connectorFetch.WithLabelValues("search", "error")); got != 1 {
		t.Errorf("search error = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.providerCalls.WithLabelValues("claude", "error")); got != 1 {
		t.Errorf("claude error = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.providerCalls.WithLabelValues("openai", "invalid")); got != 1 {
		t.Errorf("openai invalid = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.events.WithLabelValues("dedup")); got != 12 {
		t.Errorf("dedup events = %v, want 12", got)
	}
}

func TestRunFinished(t *testing.T) {
	m := New()
	m.RunFinished(3*time.Second, 62.5, nil)
	if got := testutil.ToFloat64(m.riskIndex); got != 62.5 {
		t.Errorf("risk index = %v, want 62.5", got)
	}
	m.RunFinished(time.Second, 10, errors.New("failed"))
	if got := testutil.ToFloat64(m.riskIndex); got != 62.5 {
		t.Errorf("failed run must not change the index, got %v", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.Synthesis("cached")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `georisk_synthesis_total{result="cached"} 1`) {
		t.Errorf("metrics output missing synthesis counter:\n%s", body)
	}
}
