package commands

import (
	"github.com/wonny/breakwatch/internal/alert"
	"github.com/wonny/breakwatch/internal/scheduler"
	"github.com/wonny/breakwatch/internal/scheduler/jobs"
	"github.com/wonny/breakwatch/pkg/config"
	"github.com/wonny/breakwatch/pkg/logger"
)

// registerJobs adds the refresh job and, when LEDGER_RESET_SCHEDULE is set, the ledger reset.
// Without a reset schedule the ledger is cleared only by a restart.
func registerJobs(sched *scheduler.Scheduler, cfg *config.Config, r jobs.Refresher, ledger alert.Ledger, log *logger.Logger) (*jobs.RefreshJob, error) {
	refresh := jobs.NewRefreshJob(r, cfg.Scan.Group, cfg.Scan.RefreshInterval, log)
	if err := sched.AddJob(refresh); err != nil {
		return nil, err
	}

	if cfg.Ledger.ResetSchedule != "" {
		if err := sched.AddJob(jobs.NewLedgerResetJob(ledger, cfg.Ledger.ResetSchedule, log)); err != nil {
			return nil, err
		}
	}
	return refresh, nil
}
