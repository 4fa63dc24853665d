package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/logger"
)

func TestJobRunsImmediatelyThenOnInterval(t *testing.T) {
	s := New(logger.Discard())
	var runs atomic.Int32

	require.NoError(t, s.AddJob(Job{Name: "purge", Interval: 20 * time.Millisecond, Run: func(context.Context) error {
		runs.Add(1)
		return nil
	}}))
	assert.Zero(t, runs.Load(), "nothing runs before Start")

	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)

	st := s.Status()
	assert.True(t, st.Running)
	require.Len(t, st.Jobs, 1)
	assert.Equal(t, "purge", st.Jobs[0].Name)
	assert.Positive(t, st.Jobs[0].Runs)
}

func TestFailingJobKeepsRunning(t *testing.T) {
	s := New(logger.Discard())
	s.Start()
	defer s.Stop()

	var runs atomic.Int32
	require.NoError(t, s.AddJob(Job{Name: "tables", Interval: 10 * time.Millisecond, Run: func(context.Context) error {
		runs.Add(1)
		return errors.New("database is away")
	}}))

	require.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "database is away", s.Status().Jobs[0].LastError)
}

func TestRemoveAndReplaceJob(t *testing.T) {
	s := New(logger.Discard())
	s.Start()
	defer s.Stop()

	var first, second atomic.Int32
	require.NoError(t, s.AddJob(Job{Name: "job", Interval: 10 * time.Millisecond, Run: func(context.Context) error {
		first.Add(1)
		return nil
	}}))
	require.Eventually(t, func() bool { return first.Load() >= 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, s.AddJob(Job{Name: "job", Interval: 10 * time.Millisecond, Run: func(context.Context) error {
		second.Add(1)
		return nil
	}}))
	require.Eventually(t, func() bool { return second.Load() >= 1 }, time.Second, 5*time.Millisecond)
	assert.Len(t, s.Status().Jobs, 1)

	s.RemoveJob("job")
	assert.Empty(t, s.Status().Jobs)
}

func TestAddJobValidation(t *testing.T) {
	s := New(logger.Discard())
	assert.Error(t, s.AddJob(Job{Interval: time.Second, Run: func(context.Context) error { return nil }}))
	assert.Error(t, s.AddJob(Job{Name: "x", Run: func(context.Context) error { return nil }}))
	assert.Error(t, s.AddJob(Job{Name: "x", Interval: time.Second}))
}

func TestStopWaitsForRunningJobs(t *testing.T) {
	s := New(logger.Discard())
	started := make(chan struct{})
	var finished atomic.Bool

	require.NoError(t, s.AddJob(Job{Name: "slow", Interval: time.Hour, Run: func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		finished.Store(true)
		return ctx.Err()
	}}))
	s.Start()
	<-started

	s.Stop()
	assert.True(t, finished.Load())
	assert.False(t, s.Status().Running)
}
