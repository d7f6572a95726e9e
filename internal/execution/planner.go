package execution

import (
	"errors"
	"fmt"
	"math"

	"github.com/wonny/breakwatch/internal/contracts"
	"github.com/wonny/breakwatch/pkg/logger"
)

// ErrDegeneratePlan marks a plan whose stop is on the wrong side of entry
var ErrDegeneratePlan = errors.New("degenerate trade plan")

// Build derives stop from stopPct and returns the plan for side.
// Long: stop = entry*(1-stopPct/100), target = entry + risk*rr.
// Short mirrors it around entry.
// ⭐ SSOT: trade plan arithmetic lives here only
func Build(symbol string, side contracts.Side, entry, stopPct, rr float64) (contracts.TradePlan, error) {
	var stop float64
	switch side {
	case contracts.SideLong:
		stop = entry * (1 - stopPct/100)
	case contracts.SideShort:
		stop = entry * (1 + stopPct/100)
	default:
		return contracts.TradePlan{}, fmt.Errorf("unknown side %q", side)
	}
	return BuildWithStop(symbol, side, entry, stop, rr)
}

// BuildWithStop builds a plan around an explicit stop (e.g. the day high for a short)
func BuildWithStop(symbol string, side contracts.Side, entry, stop, rr float64) (contracts.TradePlan, error) {
	if !side.Valid() {
		return contracts.TradePlan{}, fmt.Errorf("unknown side %q", side)
	}

	risk := entry - stop
	if side == contracts.SideShort {
		risk = stop - entry
	}

	if !(risk > 0) || rr < 0 || math.IsInf(risk, 0) || math.IsNaN(rr) || entry <= 0 {
		return contracts.TradePlan{}, fmt.Errorf("%w: %s entry=%.4f stop=%.4f rr=%.2f", ErrDegeneratePlan, symbol, entry, stop, rr)
	}

	target := entry + risk*rr
	if side == contracts.SideShort {
		target = entry - risk*rr
	}

	return contracts.TradePlan{
		Symbol:     symbol,
		Side:       side,
		Entry:      entry,
		Stop:       stop,
		Target:     target,
		Risk:       risk,
		RiskReward: rr,
	}, nil
}

// Planner turns breakouts into long plans entered at the breakout close
type Planner struct {
	stopPct    float64
	riskReward float64
	logger     *logger.Logger
}

// NewPlanner creates a new planner
func NewPlanner(stopPct, riskReward float64, log *logger.Logger) *Planner {
	return &Planner{
		stopPct:    stopPct,
		riskReward: riskReward,
		logger:     log.Component("planner"),
	}
}

// PlanAll builds one plan per breakout. Degenerate plans are dropped.
func (p *Planner) PlanAll(breakouts []contracts.BreakoutResult) []contracts.TradePlan {
	plans := make([]contracts.TradePlan, 0, len(breakouts))

	for _, b := range breakouts {
		if !b.IsBreakout {
			continue
		}

		plan, err := Build(b.Symbol, contracts.SideLong, b.EntryPrice, p.stopPct, p.riskReward)
		if err != nil {
			p.logger.WithFields(map[string]interface{}{
				"symbol": b.Symbol,
				"error":  err.Error(),
			}).Warn("Plan filtered out")
			continue
		}
		plans = append(plans, plan)
	}

	return plans
}
