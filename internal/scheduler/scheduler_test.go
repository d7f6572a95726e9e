package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/breakwatch/pkg/logger"
)

type countingJob struct {
	name     string
	schedule string
	runs     int32
	err      error
	panics   bool
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }

func (j *countingJob) Run(ctx context.Context) error {
	atomic.AddInt32(&j.runs, 1)
	if j.panics {
		panic("boom")
	}
	return j.err
}

func TestAddJob(t *testing.T) {
	s := New(logger.NewNop())

	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "@every 1h"}))
	assert.Error(t, s.AddJob(&countingJob{name: "a", schedule: "@every 1h"}), "duplicate name")
	assert.Error(t, s.AddJob(&countingJob{name: "bad", schedule: "not a schedule"}))

	assert.Equal(t, []string{"a"}, s.GetAllJobs())
}

func TestRunJobNow_RecordsSuccess(t *testing.T) {
	s := New(logger.NewNop())
	job := &countingJob{name: "refresh", schedule: "@every 1h"}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJobNow(context.Background(), "refresh")
	require.NoError(t, err)
	assert.True(t, result.Success)

	history, err := s.GetJobHistory("refresh")
	require.NoError(t, err)
	require.Len(t, history.Results, 1)
	assert.Equal(t, 1.0, history.GetSuccessRate())
}

func TestRunJobNow_FailureIsNotRetried(t *testing.T) {
	s := New(logger.NewNop())
	job := &countingJob{name: "refresh", schedule: "@every 1h", err: errors.New("upstream down")}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJobNow(context.Background(), "refresh")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "upstream down", result.Error)
	assert.EqualValues(t, 1, atomic.LoadInt32(&job.runs))

	stats := s.GetJobStats()["refresh"]
	assert.Equal(t, 1, stats.FailureCount)
	assert.NotNil(t, stats.LastFailure)
	assert.Nil(t, stats.LastSuccess)
}

func TestRunJobNow_PanicBecomesFailure(t *testing.T) {
	s := New(logger.NewNop())
	require.NoError(t, s.AddJob(&countingJob{name: "p", schedule: "@every 1h", panics: true}))

	result, err := s.RunJobNow(context.Background(), "p")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "boom")
}

func TestRunJob_UnknownJob(t *testing.T) {
	s := New(logger.NewNop())
	assert.Error(t, s.RunJob("missing"))
	_, err := s.RunJobNow(context.Background(), "missing")
	assert.Error(t, err)
}

func TestRunJob_Async(t *testing.T) {
	s := New(logger.NewNop())
	job := &countingJob{name: "a", schedule: "@every 1h"}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("a"))
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&job.runs) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestScheduledRuns(t *testing.T) {
	s := New(logger.NewNop())
	job := &countingJob{name: "tick", schedule: "@every 1s"}
	require.NoError(t, s.AddJob(job))

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&job.runs) >= 1
	}, 3*time.Second, 50*time.Millisecond)
}

func TestRemoveJob(t *testing.T) {
	s := New(logger.NewNop())
	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "@every 1h"}))

	require.NoError(t, s.RemoveJob("a"))
	assert.Empty(t, s.GetAllJobs())
	assert.Error(t, s.RemoveJob("a"))
}

func TestJobHistory(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < historyLimit+5; i++ {
		h.AddResult(JobResult{Success: i%2 == 0})
	}

	assert.Len(t, h.Results, historyLimit)
	assert.Len(t, h.GetLatestResults(3), 3)
	assert.Empty(t, h.GetLatestResults(0))
	assert.Len(t, h.GetFailedResults(), historyLimit/2)
	assert.InDelta(t, 0.5, h.GetSuccessRate(), 1e-9)
}
