package scanconfig

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// ValidationError names the offending field
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the constraints the pipeline relies on
func Validate(p *Profile) error {
	if strings.TrimSpace(p.Scan.Group) == "" {
		return ValidationError{"scan.group", "required"}
	}
	if !finiteNonNegative(p.Scan.MinPctChange) {
		return ValidationError{"scan.min_pct_change", "must be >= 0"}
	}
	if !finiteNonNegative(p.Scan.MinVolume) {
		return ValidationError{"scan.min_volume", "must be >= 0"}
	}
	if p.Scan.RefreshInterval < time.Second {
		return ValidationError{"scan.refresh_interval", "must be at least 1s"}
	}

	if p.Breakout.LookbackDays < 1 {
		return ValidationError{"breakout.lookback_days", "must be >= 1"}
	}
	if !finiteNonNegative(p.Breakout.BreakoutPct) {
		return ValidationError{"breakout.breakout_pct", "must be >= 0"}
	}
	if !finiteNonNegative(p.Breakout.VolumeMultiplier) {
		return ValidationError{"breakout.volume_multiplier", "must be >= 0"}
	}

	if !(p.Plan.StopPct > 0) || p.Plan.StopPct >= 100 {
		return ValidationError{"plan.stop_pct", "must be in (0, 100)"}
	}
	if !finiteNonNegative(p.Plan.RiskReward) {
		return ValidationError{"plan.risk_reward", "must be >= 0"}
	}

	for name, g := range p.Groups {
		if strings.TrimSpace(name) == "" {
			return ValidationError{"groups", "empty group name"}
		}
		if g.Index == "" && g.HTMLURL == "" && len(g.Symbols) == 0 {
			return ValidationError{"groups." + name, "needs index, html_url or symbols"}
		}
	}

	return nil
}

func finiteNonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
