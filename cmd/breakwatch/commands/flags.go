package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/breakwatch/internal/external/nse"
	"github.com/wonny/breakwatch/internal/scanconfig"
	"github.com/wonny/breakwatch/pkg/config"
)

// scanFlags are the threshold overrides shared by scan, watch and serve.
// Only flags the user actually set replace config/profile values.
type scanFlags struct {
	group            string
	minPctChange     float64
	minVolume        float64
	breakoutPct      float64
	volumeMultiplier float64
	lookbackDays     int
	stopPct          float64
	riskReward       float64
	interval         time.Duration
	alerts           bool
	workers          int
}

func (f *scanFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.group, "group", "", "instrument group (NIFTY50, BANKNIFTY, FINNIFTY, FNO, ...)")
	fl.Float64Var(&f.minPctChange, "min-pct", 0, "minimum absolute % change")
	fl.Float64Var(&f.minVolume, "min-volume", 0, "minimum latest volume")
	fl.Float64Var(&f.breakoutPct, "breakout-pct", 0, "% above the recent high required")
	fl.Float64Var(&f.volumeMultiplier, "vol-mult", 0, "latest volume must exceed average × this")
	fl.IntVar(&f.lookbackDays, "lookback", 0, "bars in the breakout window")
	fl.Float64Var(&f.stopPct, "stop-pct", 0, "stop distance in %")
	fl.Float64Var(&f.riskReward, "rr", 0, "risk-reward ratio")
	fl.DurationVar(&f.interval, "interval", 0, "refresh interval")
	fl.BoolVar(&f.alerts, "alerts", false, "send Telegram alerts for new breakouts")
	fl.IntVar(&f.workers, "workers", 0, "concurrent quote fetches")
}

func (f *scanFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fl := cmd.Flags()
	if fl.Changed("group") {
		cfg.Scan.Group = strings.ToUpper(f.group)
	}
	if fl.Changed("min-pct") {
		cfg.Scan.MinPctChange = f.minPctChange
	}
	if fl.Changed("min-volume") {
		cfg.Scan.MinVolume = f.minVolume
	}
	if fl.Changed("breakout-pct") {
		cfg.Scan.BreakoutPct = f.breakoutPct
	}
	if fl.Changed("vol-mult") {
		cfg.Scan.VolumeMultiplier = f.volumeMultiplier
	}
	if fl.Changed("lookback") {
		cfg.Scan.LookbackDays = f.lookbackDays
	}
	if fl.Changed("stop-pct") {
		cfg.Scan.StopPct = f.stopPct
	}
	if fl.Changed("rr") {
		cfg.Scan.RiskReward = f.riskReward
	}
	if fl.Changed("interval") {
		cfg.Scan.RefreshInterval = f.interval
	}
	if fl.Changed("alerts") {
		cfg.Scan.AlertsEnabled = f.alerts
	}
	if fl.Changed("workers") {
		cfg.Fetch.Workers = f.workers
	}
}

// loadConfig resolves env → profile → flags and validates the result
func loadConfig(cmd *cobra.Command, flags *scanFlags) (*config.Config, map[string]nse.Group, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	path := cfg.Scan.ProfilePath
	if profilePath != "" {
		path = profilePath
	}

	profile := scanconfig.FromScanConfig(cfg.Scan)
	if path != "" {
		profile, _, err = scanconfig.Load(path, cfg.Scan)
		if err != nil {
			return nil, nil, fmt.Errorf("load profile %s: %w", path, err)
		}
		cfg.Scan = profile.ScanConfig(path)
	}

	if flags != nil {
		flags.apply(cmd, cfg)
	}
	if cfg.Fetch.Workers < 1 {
		return nil, nil, fmt.Errorf("--workers must be at least 1")
	}

	if err := scanconfig.Validate(scanconfig.FromScanConfig(cfg.Scan)); err != nil {
		return nil, nil, fmt.Errorf("invalid scan settings: %w", err)
	}

	return cfg, profile.NSEGroups(), nil
}
