package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// value finds a counter or gauge sample by name and label set
func value(t *testing.T, r *Registry, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := r.Gatherer().Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metrics
				}
			}
			if m.GetCounter() != nil {
				return m.GetCounter().GetValue()
			}
			return m.GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s %v not found", name, labels)
	return 0
}

func TestRegistry_Counters(t *testing.T) {
	r := New()

	r.ObserveQuote(true)
	r.ObserveQuote(true)
	r.ObserveQuote(false)
	r.AddBreakouts(3)
	r.AddBreakouts(0)
	r.ObserveAlert("sent")
	r.ObserveRefresh("NIFTY50", nil, time.Second)
	r.ObserveRefresh("NIFTY50", errors.New("boom"), time.Second)

	assert.Equal(t, 2.0, value(t, r, "breakwatch_quote_fetches_total", map[string]string{"outcome": "ok"}))
	assert.Equal(t, 1.0, value(t, r, "breakwatch_quote_fetches_total", map[string]string{"outcome": "unavailable"}))
	assert.Equal(t, 3.0, value(t, r, "breakwatch_breakouts_total", nil))
	assert.Equal(t, 1.0, value(t, r, "breakwatch_alerts_total", map[string]string{"result": "sent"}))
	assert.Equal(t, 1.0, value(t, r, "breakwatch_refresh_runs_total", map[string]string{"group": "NIFTY50", "status": "error"}))
}

func TestRegistry_BreakerState(t *testing.T) {
	r := New()

	r.SetBreakerState("yahoo", "open")
	assert.Equal(t, 2.0, value(t, r, "breakwatch_circuit_breaker_state", map[string]string{"breaker": "yahoo"}))

	r.SetBreakerState("yahoo", "closed")
	assert.Equal(t, 0.0, value(t, r, "breakwatch_circuit_breaker_state", map[string]string{"breaker": "yahoo"}))
}

func TestRegistry_NilIsNoop(t *testing.T) {
	var r *Registry

	r.ObserveQuote(true)
	r.ObserveBatch(time.Second)
	r.ObserveRefresh("X", nil, time.Second)
	r.AddBreakouts(1)
	r.ObserveAlert("sent")
	r.SetBreakerState("x", "open")
	r.SetStreamClients(1)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, rec.Code)
}

func TestRegistry_Handler(t *testing.T) {
	r := New()
	r.ObserveQuote(true)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `breakwatch_quote_fetches_total{outcome="ok"} 1`)
}
