package pipeline

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/wonny/breakwatch/internal/alert"
	"github.com/wonny/breakwatch/internal/collector"
	"github.com/wonny/breakwatch/internal/contracts"
	"github.com/wonny/breakwatch/internal/execution"
	"github.com/wonny/breakwatch/internal/external/nse"
	"github.com/wonny/breakwatch/internal/metrics"
	"github.com/wonny/breakwatch/internal/selection"
	"github.com/wonny/breakwatch/internal/signals"
	"github.com/wonny/breakwatch/pkg/httputil"
	"github.com/wonny/breakwatch/pkg/logger"
)

// ErrUnknownGroup is returned when the requested group has no definition
var ErrUnknownGroup = nse.ErrUnknownGroup

// Request selects what one refresh scans
type Request struct {
	Group string
}

// Deps are the collaborators a Pipeline drives
type Deps struct {
	Symbols     *nse.Client
	SymbolsHTTP *httputil.Client // base client for constituent lookups
	QuotesHTTP  *httputil.Client // base client for quote fetches
	Fetcher     collector.QuoteFetcher
	Notifier    *alert.Notifier // nil when no delivery target is configured
	Metrics     *metrics.Registry
}

// Pipeline runs fetch → rank → detect → plan → notify-once for a group.
// ⭐ SSOT: one refresh = one Run call = one Snapshot
type Pipeline struct {
	runMu      sync.Mutex // refreshes never overlap
	deps       Deps
	params     Params
	collector  *collector.Collector
	planner    *execution.Planner
	store      *SnapshotStore
	publishers []Publisher
	logger     *logger.Logger
}

// New wires a Pipeline. Snapshots go to the returned pipeline's Store and to any publishers.
func New(deps Deps, params Params, log *logger.Logger, publishers ...Publisher) *Pipeline {
	return &Pipeline{
		deps:       deps,
		params:     params,
		collector:  collector.NewCollector(deps.Fetcher, deps.Metrics, log),
		planner:    execution.NewPlanner(params.StopPct, params.RiskReward, log),
		store:      NewSnapshotStore(),
		publishers: publishers,
		logger:     log.Component("pipeline"),
	}
}

// Store exposes the latest snapshot
func (p *Pipeline) Store() *SnapshotStore {
	return p.store
}

// Params returns the thresholds this pipeline was built with
func (p *Pipeline) Params() Params {
	return p.params
}

// Run performs one refresh. Only an unknown group is an error;
// per-symbol failures shrink the snapshot instead.
// Concurrent calls (scheduler tick, manual refresh) run one after another.
func (p *Pipeline) Run(ctx context.Context, req Request) (*contracts.Snapshot, error) {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	start := time.Now()

	group := strings.ToUpper(strings.TrimSpace(req.Group))
	if group == "" {
		group = p.params.Group
	}
	log := p.logger.WithField("group", group)

	session := p.deps.Symbols.NewSession(p.deps.SymbolsHTTP.Session())
	symbols, err := p.deps.Symbols.Symbols(ctx, session, group)
	if err != nil {
		p.deps.Metrics.ObserveRefresh(group, err, time.Since(start))
		return nil, err
	}

	snapshot := &contracts.Snapshot{
		Group:     group,
		StartedAt: start,
		Requested: len(symbols),
		Gainers:   []contracts.MoverRow{},
		Losers:    []contracts.MoverRow{},
		Filtered:  []contracts.MoverRow{},
		Breakouts: []contracts.BreakoutResult{},
		Plans:     []contracts.TradePlan{},
		Alerts:    []contracts.AlertRecord{},
	}

	if len(symbols) == 0 {
		log.Warn("Group resolved to no symbols")
		return p.finish(snapshot, start), nil
	}

	series := p.collector.FetchAll(ctx, p.deps.QuotesHTTP.Session(), symbols, p.params.collectorConfig())
	snapshot.Fetched = len(series)

	rows := selection.Compute(series)
	snapshot.Gainers = selection.Gainers(rows)
	snapshot.Losers = selection.Losers(rows)
	snapshot.Filtered = selection.Filter(snapshot.Gainers, p.params.MinPctChange, p.params.MinVolume)

	snapshot.Breakouts = signals.DetectAll(snapshot.Filtered, series, p.params.signalParams())
	p.deps.Metrics.AddBreakouts(len(snapshot.Breakouts))

	snapshot.Plans = p.planner.PlanAll(snapshot.Breakouts)

	if p.params.AlertsEnabled && p.deps.Notifier != nil {
		snapshot.Alerts = p.deps.Notifier.NotifyAll(ctx, snapshot.Plans, snapshot.Breakouts)
	}

	log.WithFields(map[string]interface{}{
		"requested": snapshot.Requested,
		"fetched":   snapshot.Fetched,
		"filtered":  len(snapshot.Filtered),
		"breakouts": len(snapshot.Breakouts),
		"plans":     len(snapshot.Plans),
		"alerts":    len(snapshot.Alerts),
	}).Info("Refresh completed")

	return p.finish(snapshot, start), nil
}

func (p *Pipeline) finish(snapshot *contracts.Snapshot, start time.Time) *contracts.Snapshot {
	snapshot.Duration = time.Since(start)
	p.deps.Metrics.ObserveRefresh(snapshot.Group, nil, snapshot.Duration)

	p.store.Publish(snapshot)
	for _, pub := range p.publishers {
		pub.Publish(snapshot)
	}
	return snapshot
}
