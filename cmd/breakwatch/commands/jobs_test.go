package commands

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/breakwatch/internal/alert"
	"github.com/wonny/breakwatch/internal/contracts"
	"github.com/wonny/breakwatch/internal/pipeline"
	"github.com/wonny/breakwatch/internal/scheduler"
	"github.com/wonny/breakwatch/pkg/config"
	"github.com/wonny/breakwatch/pkg/logger"
)

type noopRefresher struct{}

func (noopRefresher) Run(context.Context, pipeline.Request) (*contracts.Snapshot, error) {
	return &contracts.Snapshot{}, nil
}

func jobsConfig(resetSchedule string) *config.Config {
	return &config.Config{
		Scan:   config.ScanConfig{Group: "NIFTY50", RefreshInterval: time.Minute},
		Ledger: config.LedgerConfig{Backend: "memory", ResetSchedule: resetSchedule},
	}
}

func TestRegisterJobs_NoResetByDefault(t *testing.T) {
	sched := scheduler.New(logger.NewNop())
	ledger := alert.NewMemoryLedger()

	refresh, err := registerJobs(sched, jobsConfig(""), noopRefresher{}, ledger, logger.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "refresh", refresh.Name())
	assert.Equal(t, []string{"refresh"}, sched.GetAllJobs())

	// the ledger survives refreshes for the life of the process
	require.NoError(t, ledger.Mark(context.Background(), "SBIN.NS"))
	_, err = sched.RunJobNow(context.Background(), "refresh")
	require.NoError(t, err)
	seen, err := ledger.Seen(context.Background(), "SBIN.NS")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestRegisterJobs_OptInReset(t *testing.T) {
	sched := scheduler.New(logger.NewNop())
	ledger := alert.NewMemoryLedger()

	_, err := registerJobs(sched, jobsConfig("0 0 8 * * 1-5"), noopRefresher{}, ledger, logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{"ledger_reset", "refresh"}, sched.GetAllJobs())

	require.NoError(t, ledger.Mark(context.Background(), "SBIN.NS"))
	result, err := sched.RunJobNow(context.Background(), "ledger_reset")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 0, ledger.Len())
}

func TestRegisterJobs_BadResetSchedule(t *testing.T) {
	sched := scheduler.New(logger.NewNop())

	_, err := registerJobs(sched, jobsConfig("not a cron spec"), noopRefresher{}, alert.NewMemoryLedger(), logger.NewNop())
	assert.Error(t, err)
}
