package commands

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/wonny/breakwatch/internal/contracts"
	"github.com/wonny/breakwatch/internal/scheduler"
	"github.com/wonny/breakwatch/pkg/logger"
)

// watchCmd refreshes on an interval and prints a line per refresh
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Refresh every interval and print each result",
	Long: `Runs the scan immediately and then every --interval until interrupted.

Alerts (with --alerts) are sent at most once per symbol until the process
restarts, or until LEDGER_RESET_SCHEDULE fires when set. A failed refresh is
logged and the next tick runs as usual.

Example:
  go run ./cmd/breakwatch watch --group NIFTY50 --interval 5m --alerts`,
	RunE: runWatch,
}

var watchOpts scanFlags

func init() {
	rootCmd.AddCommand(watchCmd)
	watchOpts.bind(watchCmd)
}

// consolePublisher prints a summary of every snapshot
type consolePublisher struct {
	mu sync.Mutex
	w  io.Writer
}

func (p *consolePublisher) Publish(s *contracts.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	printSummary(p.w, s)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, groups, err := loadConfig(cmd, &watchOpts)
	if err != nil {
		return err
	}

	log := logger.NewWithWriter(cfg, os.Stderr)
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	a, err := buildApp(ctx, cfg, groups, nil, log, &consolePublisher{w: out})
	if err != nil {
		return err
	}
	defer a.Close()

	sched := scheduler.New(log)
	refresh, err := registerJobs(sched, cfg, a.pipeline, a.ledger, log)
	if err != nil {
		return err
	}

	printHeader(out, "Watching", [][2]string{
		{"Group", cfg.Scan.Group},
		{"Interval", cfg.Scan.RefreshInterval.String()},
		{"Alerts", fmt.Sprintf("%t", cfg.Scan.AlertsEnabled)},
	})

	if result, err := sched.RunJobNow(ctx, refresh.Name()); err != nil {
		return err
	} else if !result.Success {
		printWarning(out, "first refresh failed: "+result.Error)
	}

	sched.Start()
	<-ctx.Done()
	sched.Stop()

	printSuccess(out, "stopped")
	return nil
}
