package collector

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/wonny/breakwatch/internal/contracts"
	"github.com/wonny/breakwatch/internal/external/yahoo"
	"github.com/wonny/breakwatch/internal/metrics"
	"github.com/wonny/breakwatch/pkg/logger"
)

// DefaultWorkers is the pool width when Config.Workers is unset
const DefaultWorkers = 10

// QuoteFetcher returns an empty series when data is unavailable
type QuoteFetcher interface {
	Fetch(ctx context.Context, session yahoo.Session, symbol string, lookbackBars int) contracts.InstrumentSeries
}

// Collector fans quote fetches out over a bounded worker pool
// ⭐ SSOT: batch fetch orchestration lives here only
type Collector struct {
	fetcher QuoteFetcher
	metrics *metrics.Registry
	logger  *logger.Logger
}

// Config holds collector configuration
type Config struct {
	Workers      int // concurrent in-flight fetches
	LookbackBars int // bars each fetch should cover before the latest
}

// NewCollector creates a new Collector. m may be nil.
func NewCollector(fetcher QuoteFetcher, m *metrics.Registry, log *logger.Logger) *Collector {
	return &Collector{
		fetcher: fetcher,
		metrics: m,
		logger:  log.Component("collector"),
	}
}

// FetchAll fetches every symbol on session and returns only the non-empty series.
// Partial results are not an error. Cancelling ctx returns whatever finished.
func (c *Collector) FetchAll(ctx context.Context, session yahoo.Session, symbols []string, cfg Config) map[string]contracts.InstrumentSeries {
	start := time.Now()
	unique := dedupe(symbols)

	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > len(unique) {
		workers = len(unique)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbols": len(unique),
		"workers": workers,
	}).Debug("Starting batch fetch")

	symbolCh := make(chan string, len(unique))
	resultCh := make(chan contracts.InstrumentSeries, len(unique))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.worker(ctx, session, symbolCh, resultCh, cfg.LookbackBars)
		}()
	}

	for _, s := range unique {
		symbolCh <- s
	}
	close(symbolCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	out := make(map[string]contracts.InstrumentSeries, len(unique))
	failed := 0
	for series := range resultCh {
		if series.IsEmpty() {
			failed++
			c.metrics.ObserveQuote(false)
			continue
		}
		c.metrics.ObserveQuote(true)
		out[series.Symbol] = series
	}

	duration := time.Since(start)
	c.metrics.ObserveBatch(duration)

	c.logger.WithFields(map[string]interface{}{
		"requested": len(unique),
		"fetched":   len(out),
		"failed":    failed,
		"duration":  duration.String(),
	}).Info("Batch fetch completed")

	return out
}

// worker drains symbolCh; after cancellation it skips the remaining symbols
func (c *Collector) worker(ctx context.Context, session yahoo.Session, symbolCh <-chan string, resultCh chan<- contracts.InstrumentSeries, lookback int) {
	for symbol := range symbolCh {
		if ctx.Err() != nil {
			continue
		}
		resultCh <- c.fetcher.Fetch(ctx, session, symbol, lookback)
	}
}

// dedupe trims, drops blanks and keeps first occurrence order
func dedupe(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
