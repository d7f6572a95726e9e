package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/breakwatch/internal/alert"
	"github.com/wonny/breakwatch/pkg/logger"
)

// LedgerResetJob clears the alert ledger on an operator-chosen schedule.
// It is opt-in: without it the ledger lives as long as the process.
type LedgerResetJob struct {
	ledger   alert.Ledger
	schedule string
	logger   *logger.Logger
}

// NewLedgerResetJob creates a ledger reset job for a cron schedule (with seconds)
func NewLedgerResetJob(ledger alert.Ledger, schedule string, log *logger.Logger) *LedgerResetJob {
	return &LedgerResetJob{
		ledger:   ledger,
		schedule: schedule,
		logger:   log.Component("ledger_reset_job"),
	}
}

// Name returns the job name
func (j *LedgerResetJob) Name() string {
	return "ledger_reset"
}

// Schedule returns the cron schedule
func (j *LedgerResetJob) Schedule() string {
	return j.schedule
}

// Run clears the ledger
func (j *LedgerResetJob) Run(ctx context.Context) error {
	if err := j.ledger.Reset(ctx); err != nil {
		return fmt.Errorf("reset ledger: %w", err)
	}
	j.logger.Info("Alert ledger reset")
	return nil
}
