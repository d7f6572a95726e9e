package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/wonny/breakwatch/internal/alert"
	"github.com/wonny/breakwatch/internal/external/nse"
	"github.com/wonny/breakwatch/internal/external/yahoo"
	"github.com/wonny/breakwatch/internal/metrics"
	"github.com/wonny/breakwatch/internal/notifier"
	"github.com/wonny/breakwatch/internal/pipeline"
	"github.com/wonny/breakwatch/pkg/config"
	"github.com/wonny/breakwatch/pkg/httputil"
	"github.com/wonny/breakwatch/pkg/logger"
	"github.com/wonny/breakwatch/pkg/redis"
)

const (
	userAgent   = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	redisPrefix = "breakwatch"
)

// app holds the wired components shared by every command
type app struct {
	cfg        *config.Config
	log        *logger.Logger
	metrics    *metrics.Registry
	redis      *redis.Client
	symbols    *nse.Client
	symbolHTTP *httputil.Client
	dispatcher *notifier.Dispatcher
	ledger     alert.Ledger
	pipeline   *pipeline.Pipeline
}

// newMetrics returns nil when metrics are disabled; every consumer accepts nil
func newMetrics(cfg *config.Config) *metrics.Registry {
	if !cfg.MetricsEnabled {
		return nil
	}
	return metrics.New()
}

// buildApp wires clients, ledger and pipeline from cfg
func buildApp(ctx context.Context, cfg *config.Config, groups map[string]nse.Group, m *metrics.Registry, log *logger.Logger, publishers ...pipeline.Publisher) (*app, error) {
	rc, err := redis.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	onBreaker := func(name string, from, to gobreaker.State) {
		m.SetBreakerState(name, to.String())
	}

	// Quote fetches are single-shot: a failed symbol is simply missing from the batch
	quotesHTTP := httputil.NewWithTimeout(log, cfg.Yahoo.Timeout).
		DisableRetry().
		WithRateLimit(float64(cfg.Yahoo.RequestsPerSec), cfg.Fetch.Workers).
		WithBreaker(httputil.BreakerConfig{
			Name:                "yahoo",
			ConsecutiveFailures: 20,
			OpenTimeout:         30 * time.Second,
			OnStateChange:       onBreaker,
		}).
		WithHeader("User-Agent", userAgent)

	symbolHTTP := httputil.NewWithTimeout(log, cfg.NSE.Timeout).
		WithRetry(2, 500*time.Millisecond).
		WithBreaker(httputil.BreakerConfig{
			Name:                "nse",
			ConsecutiveFailures: 5,
			OpenTimeout:         time.Minute,
			OnStateChange:       onBreaker,
		}).
		WithHeader("User-Agent", userAgent).
		WithHeader("Accept", "application/json, text/html;q=0.9")

	m.SetBreakerState("yahoo", quotesHTTP.BreakerState())
	m.SetBreakerState("nse", symbolHTTP.BreakerState())

	telegramHTTP := httputil.NewWithTimeout(log, 10*time.Second).DisableRetry()
	dispatcher := notifier.NewDispatcher(telegramHTTP, cfg.Telegram.BaseURL, log)

	var ledger alert.Ledger = alert.NewMemoryLedger()
	if cfg.Ledger.Backend == "redis" {
		rl, err := alert.NewRedisLedger(rc, redisPrefix, cfg.Ledger.TTL)
		if err != nil {
			_ = rc.Close()
			return nil, fmt.Errorf("create redis ledger: %w", err)
		}
		ledger = rl
	}

	target := notifier.Target{ChatID: cfg.Telegram.ChatID, Token: cfg.Telegram.BotToken}
	if cfg.Scan.AlertsEnabled && !target.Valid() {
		log.Warn("Alerts enabled but TELEGRAM_BOT_TOKEN/TELEGRAM_CHAT_ID missing; sends will be refused")
	}
	notifyOnce := alert.NewNotifier(dispatcher, ledger, target, m, log)

	symbols := nse.NewClient(cfg.NSE.BaseURL, groups, redis.NewCache(rc, redisPrefix), cfg.NSE.CacheTTL, log)

	p := pipeline.New(pipeline.Deps{
		Symbols:     symbols,
		SymbolsHTTP: symbolHTTP,
		QuotesHTTP:  quotesHTTP,
		Fetcher:     yahoo.NewClient(cfg.Yahoo.BaseURL, cfg.Yahoo.Timeout, log),
		Notifier:    notifyOnce,
		Metrics:     m,
	}, pipeline.ParamsFromConfig(cfg.Scan, cfg.Fetch.Workers), log, publishers...)

	return &app{
		cfg:        cfg,
		log:        log,
		metrics:    m,
		redis:      rc,
		symbols:    symbols,
		symbolHTTP: symbolHTTP,
		dispatcher: dispatcher,
		ledger:     ledger,
		pipeline:   p,
	}, nil
}

func (a *app) Close() {
	if err := a.redis.Close(); err != nil {
		a.log.WithError(err).Warn("Redis close failed")
	}
}
