package scanconfig

import (
	"strings"
	"time"

	"github.com/wonny/breakwatch/internal/external/nse"
	"github.com/wonny/breakwatch/pkg/config"
)

// Profile is a named scan setup: thresholds plus group definitions
type Profile struct {
	Meta     Meta             `yaml:"meta" json:"meta"`
	Scan     Scan             `yaml:"scan" json:"scan"`
	Breakout Breakout         `yaml:"breakout" json:"breakout"`
	Plan     Plan             `yaml:"plan" json:"plan"`
	Groups   map[string]Group `yaml:"groups" json:"groups"`
}

type Meta struct {
	ProfileID string `yaml:"profile_id" json:"profile_id"`
	Version   string `yaml:"version" json:"version"`
}

// Scan holds mover filtering and refresh settings
type Scan struct {
	Group           string        `yaml:"group" json:"group"`
	MinPctChange    float64       `yaml:"min_pct_change" json:"min_pct_change"`
	MinVolume       float64       `yaml:"min_volume" json:"min_volume"`
	RefreshInterval time.Duration `yaml:"refresh_interval" json:"refresh_interval"`
	AlertsEnabled   bool          `yaml:"alerts_enabled" json:"alerts_enabled"`
}

type Breakout struct {
	LookbackDays     int     `yaml:"lookback_days" json:"lookback_days"`
	BreakoutPct      float64 `yaml:"breakout_pct" json:"breakout_pct"`
	VolumeMultiplier float64 `yaml:"volume_multiplier" json:"volume_multiplier"`
}

type Plan struct {
	StopPct    float64 `yaml:"stop_pct" json:"stop_pct"`
	RiskReward float64 `yaml:"risk_reward" json:"risk_reward"`
}

// Group is either an index resolved online or a static symbol list
type Group struct {
	Index   string   `yaml:"index" json:"index,omitempty"`
	HTMLURL string   `yaml:"html_url" json:"html_url,omitempty"`
	Symbols []string `yaml:"symbols" json:"symbols,omitempty"`
}

// FromScanConfig seeds a profile with env-derived values
func FromScanConfig(sc config.ScanConfig) *Profile {
	return &Profile{
		Meta: Meta{ProfileID: "env", Version: "1"},
		Scan: Scan{
			Group:           sc.Group,
			MinPctChange:    sc.MinPctChange,
			MinVolume:       sc.MinVolume,
			RefreshInterval: sc.RefreshInterval,
			AlertsEnabled:   sc.AlertsEnabled,
		},
		Breakout: Breakout{
			LookbackDays:     sc.LookbackDays,
			BreakoutPct:      sc.BreakoutPct,
			VolumeMultiplier: sc.VolumeMultiplier,
		},
		Plan: Plan{
			StopPct:    sc.StopPct,
			RiskReward: sc.RiskReward,
		},
	}
}

// ScanConfig flattens the profile back into the caller configuration
func (p *Profile) ScanConfig(profilePath string) config.ScanConfig {
	return config.ScanConfig{
		Group:            p.Scan.Group,
		ProfilePath:      profilePath,
		MinPctChange:     p.Scan.MinPctChange,
		MinVolume:        p.Scan.MinVolume,
		BreakoutPct:      p.Breakout.BreakoutPct,
		VolumeMultiplier: p.Breakout.VolumeMultiplier,
		LookbackDays:     p.Breakout.LookbackDays,
		StopPct:          p.Plan.StopPct,
		RiskReward:       p.Plan.RiskReward,
		RefreshInterval:  p.Scan.RefreshInterval,
		AlertsEnabled:    p.Scan.AlertsEnabled,
	}
}

// NSEGroups merges the profile's groups over the built-in ones
func (p *Profile) NSEGroups() map[string]nse.Group {
	groups := nse.DefaultGroups()
	for name, g := range p.Groups {
		key := strings.ToUpper(strings.TrimSpace(name))
		groups[key] = nse.Group{
			Name:    key,
			Index:   g.Index,
			HTMLURL: g.HTMLURL,
			Symbols: g.Symbols,
		}
	}
	return groups
}
