package alert

import (
	"context"
	"sync"

	"github.com/wonny/breakwatch/internal/contracts"
	"github.com/wonny/breakwatch/internal/metrics"
	"github.com/wonny/breakwatch/internal/notifier"
	"github.com/wonny/breakwatch/pkg/logger"
)

// Sender is the stateless delivery call
type Sender interface {
	Send(ctx context.Context, target notifier.Target, text string) (bool, string)
}

// Notifier sends each symbol at most once per ledger lifetime
// ⭐ SSOT: dedup lives here, not in the dispatcher
type Notifier struct {
	mu      sync.Mutex // held across lookup → send → mark
	sender  Sender
	ledger  Ledger
	target  notifier.Target
	metrics *metrics.Registry
	logger  *logger.Logger
}

// NewNotifier creates a notify-once wrapper. m may be nil.
func NewNotifier(sender Sender, ledger Ledger, target notifier.Target, m *metrics.Registry, log *logger.Logger) *Notifier {
	return &Notifier{
		sender:  sender,
		ledger:  ledger,
		target:  target,
		metrics: m,
		logger:  log.Component("alert"),
	}
}

// NotifyOnce dispatches the plan unless the ledger already holds the symbol.
// The symbol is marked only after a confirmed send.
// Concurrent callers are serialized so a symbol is never sent twice.
func (n *Notifier) NotifyOnce(ctx context.Context, plan contracts.TradePlan, result contracts.BreakoutResult) contracts.AlertRecord {
	n.mu.Lock()
	defer n.mu.Unlock()

	record := contracts.AlertRecord{Symbol: plan.Symbol}
	log := n.logger.WithField("symbol", plan.Symbol)

	seen, err := n.ledger.Seen(ctx, plan.Symbol)
	if err != nil {
		// fail closed
		log.WithError(err).Warn("Ledger lookup failed, skipping alert")
		record.Reason = "ledger unavailable"
		n.metrics.ObserveAlert("failed")
		return record
	}
	if seen {
		record.Skipped = true
		record.Reason = "already notified"
		n.metrics.ObserveAlert("skipped")
		return record
	}

	ok, reason := n.sender.Send(ctx, n.target, notifier.FormatBreakout(plan, result))
	record.Sent = ok
	record.Reason = reason
	if !ok {
		log.WithField("reason", reason).Warn("Alert not delivered")
		n.metrics.ObserveAlert("failed")
		return record
	}

	if err := n.ledger.Mark(ctx, plan.Symbol); err != nil {
		log.WithError(err).Error("Alert sent but ledger mark failed")
	}
	n.metrics.ObserveAlert("sent")
	log.Info("Alert sent")
	return record
}

// NotifyAll runs NotifyOnce sequentially for plans that have a matching breakout
func (n *Notifier) NotifyAll(ctx context.Context, plans []contracts.TradePlan, breakouts []contracts.BreakoutResult) []contracts.AlertRecord {
	bySymbol := make(map[string]contracts.BreakoutResult, len(breakouts))
	for _, b := range breakouts {
		bySymbol[b.Symbol] = b
	}

	records := make([]contracts.AlertRecord, 0, len(plans))
	for _, p := range plans {
		if ctx.Err() != nil {
			break
		}
		records = append(records, n.NotifyOnce(ctx, p, bySymbol[p.Symbol]))
	}
	return records
}
