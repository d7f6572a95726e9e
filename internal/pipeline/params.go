package pipeline

import (
	"strings"

	"github.com/wonny/breakwatch/internal/collector"
	"github.com/wonny/breakwatch/internal/signals"
	"github.com/wonny/breakwatch/pkg/config"
)

// Params are the caller-supplied thresholds for one pipeline instance.
// Core packages never read them from the environment.
type Params struct {
	Group            string
	Workers          int
	MinPctChange     float64
	MinVolume        float64
	BreakoutPct      float64
	VolumeMultiplier float64
	LookbackDays     int
	StopPct          float64
	RiskReward       float64
	AlertsEnabled    bool
}

// ParamsFromConfig maps the resolved scan configuration onto Params
func ParamsFromConfig(sc config.ScanConfig, workers int) Params {
	return Params{
		Group:            strings.ToUpper(sc.Group),
		Workers:          workers,
		MinPctChange:     sc.MinPctChange,
		MinVolume:        sc.MinVolume,
		BreakoutPct:      sc.BreakoutPct,
		VolumeMultiplier: sc.VolumeMultiplier,
		LookbackDays:     sc.LookbackDays,
		StopPct:          sc.StopPct,
		RiskReward:       sc.RiskReward,
		AlertsEnabled:    sc.AlertsEnabled,
	}
}

func (p Params) signalParams() signals.Params {
	return signals.Params{
		LookbackDays:     p.LookbackDays,
		BreakoutPct:      p.BreakoutPct,
		VolumeMultiplier: p.VolumeMultiplier,
	}
}

func (p Params) collectorConfig() collector.Config {
	return collector.Config{
		Workers:      p.Workers,
		LookbackBars: p.LookbackDays,
	}
}
