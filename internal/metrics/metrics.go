package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all Prometheus metrics for breakwatch.
// A nil *Registry is valid and records nothing.
type Registry struct {
	reg *prometheus.Registry

	QuoteFetches   *prometheus.CounterVec
	FetchDuration  prometheus.Histogram
	RefreshRuns    *prometheus.CounterVec
	RefreshLatency prometheus.Histogram
	Breakouts      prometheus.Counter
	Alerts         *prometheus.CounterVec
	BreakerState   *prometheus.GaugeVec
	StreamClients  prometheus.Gauge
}

// New creates a registry with process and Go collectors attached
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		QuoteFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "breakwatch_quote_fetches_total",
				Help: "Quote fetches by outcome (ok, unavailable)",
			},
			[]string{"outcome"},
		),

		FetchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "breakwatch_batch_fetch_duration_seconds",
				Help:    "Wall-clock duration of one batch fetch",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
			},
		),

		RefreshRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "breakwatch_refresh_runs_total",
				Help: "Pipeline refreshes by group and status",
			},
			[]string{"group", "status"},
		),

		RefreshLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "breakwatch_refresh_duration_seconds",
				Help:    "Duration of one full pipeline refresh",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
			},
		),

		Breakouts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "breakwatch_breakouts_total",
				Help: "Breakouts detected across refreshes",
			},
		),

		Alerts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "breakwatch_alerts_total",
				Help: "Notify-once outcomes (sent, failed, skipped)",
			},
			[]string{"result"},
		),

		BreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "breakwatch_circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
			},
			[]string{"breaker"},
		),

		StreamClients: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "breakwatch_stream_clients",
				Help: "Connected snapshot stream clients",
			},
		),
	}

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.QuoteFetches,
		r.FetchDuration,
		r.RefreshRuns,
		r.RefreshLatency,
		r.Breakouts,
		r.Alerts,
		r.BreakerState,
		r.StreamClients,
	)

	return r
}

// Handler serves the registry in the Prometheus exposition format
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry for tests
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

func (r *Registry) ObserveQuote(ok bool) {
	if r == nil {
		return
	}
	outcome := "unavailable"
	if ok {
		outcome = "ok"
	}
	r.QuoteFetches.WithLabelValues(outcome).Inc()
}

func (r *Registry) ObserveBatch(d time.Duration) {
	if r == nil {
		return
	}
	r.FetchDuration.Observe(d.Seconds())
}

func (r *Registry) ObserveRefresh(group string, err error, d time.Duration) {
	if r == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.RefreshRuns.WithLabelValues(group, status).Inc()
	r.RefreshLatency.Observe(d.Seconds())
}

func (r *Registry) AddBreakouts(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.Breakouts.Add(float64(n))
}

func (r *Registry) ObserveAlert(result string) {
	if r == nil {
		return
	}
	r.Alerts.WithLabelValues(result).Inc()
}

// SetBreakerState records a breaker transition; state is gobreaker's String() form
func (r *Registry) SetBreakerState(name, state string) {
	if r == nil {
		return
	}
	value := 0.0
	switch state {
	case "half-open":
		value = 1
	case "open":
		value = 2
	}
	r.BreakerState.WithLabelValues(name).Set(value)
}

func (r *Registry) SetStreamClients(n int) {
	if r == nil {
		return
	}
	r.StreamClients.Set(float64(n))
}
