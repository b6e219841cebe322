package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	ledgerapp "github.com/opsease/backend/internal/application/ledger"
	"github.com/opsease/backend/internal/infrastructure/config"
)

type recordingExecutor struct {
	mu       sync.Mutex
	jobs     []Job
	failures int
	done     chan struct{}
}

func newRecordingExecutor(failures int) *recordingExecutor {
	return &recordingExecutor{failures: failures, done: make(chan struct{}, 16)}
}

func (e *recordingExecutor) Execute(_ context.Context, job *Job) error {
	e.mu.Lock()
	e.jobs = append(e.jobs, *job)
	fail := e.failures > 0
	if fail {
		e.failures--
	}
	e.mu.Unlock()

	e.done <- struct{}{}
	if fail {
		return errors.New("database unavailable")
	}
	return nil
}

func (e *recordingExecutor) executed() []Job {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Job(nil), e.jobs...)
}

func waitRuns(t *testing.T, e *recordingExecutor, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-e.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for run %d", i+1)
		}
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Workers = 1
	cfg.JobTimeout = time.Second
	cfg.RetryDelay = 10 * time.Millisecond
	return cfg
}

func startScheduler(t *testing.T, cfg Config, exec JobExecutor) *Scheduler {
	t.Helper()
	s, err := NewScheduler(cfg, exec, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() { _ = s.Stop(context.Background()) })
	return s
}

func TestJob_Lifecycle(t *testing.T) {
	job := NewJob("user-1", JobKindVerify, 1)
	assert.Equal(t, JobStatusPending, job.Status)

	job.Start()
	assert.Equal(t, JobStatusRunning, job.Status)
	assert.NotNil(t, job.StartedAt)

	job.Fail("boom")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.True(t, job.ShouldRetry())

	job.RetryCount = 1
	assert.False(t, job.ShouldRetry())

	job.Start()
	job.Complete()
	assert.Equal(t, JobStatusSuccess, job.Status)
	assert.Empty(t, job.Error)
}

func TestNewScheduler_RejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Workers = 0

	_, err := NewScheduler(cfg, newRecordingExecutor(0), zaptest.NewLogger(t))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(config.SchedulerConfig{
		Workers:       4,
		JobTimeout:    time.Minute,
		RetryAttempts: 2,
		RetryDelay:    time.Second,
		AutoRepair:    true,
	})

	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 100, cfg.QueueSize)
	assert.Equal(t, 2, cfg.RetryAttempts)
	assert.True(t, cfg.AutoRepair)
}

func TestScheduler_SubmitRequiresStart(t *testing.T) {
	s, err := NewScheduler(testConfig(), newRecordingExecutor(0), zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.ErrorIs(t, s.SubmitUser("user-1"), ErrNotRunning)
}

func TestScheduler_RunsSubmittedJobs(t *testing.T) {
	exec := newRecordingExecutor(0)
	s := startScheduler(t, testConfig(), exec)

	require.NoError(t, s.SubmitUser("user-1"))
	require.NoError(t, s.SubmitUser("user-2"))
	waitRuns(t, exec, 2)

	jobs := exec.executed()
	require.Len(t, jobs, 2)
	assert.ElementsMatch(t, []string{"user-1", "user-2"}, []string{jobs[0].UserID, jobs[1].UserID})
	assert.Equal(t, JobKindVerify, jobs[0].Kind)
}

func TestScheduler_AutoRepairSubmitsRepairJobs(t *testing.T) {
	exec := newRecordingExecutor(0)
	cfg := testConfig()
	cfg.AutoRepair = true
	s := startScheduler(t, cfg, exec)

	require.NoError(t, s.SubmitUser("user-1"))
	waitRuns(t, exec, 1)

	assert.Equal(t, JobKindRepair, exec.executed()[0].Kind)
}

func TestScheduler_RetriesFailedJob(t *testing.T) {
	exec := newRecordingExecutor(1)
	cfg := testConfig()
	cfg.RetryAttempts = 1
	s := startScheduler(t, cfg, exec)

	require.NoError(t, s.SubmitUser("user-1"))
	waitRuns(t, exec, 2)

	jobs := exec.executed()
	require.Len(t, jobs, 2)
	assert.Equal(t, jobs[0].ID, jobs[1].ID)
	assert.Equal(t, 1, jobs[1].RetryCount)
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	s, err := NewScheduler(testConfig(), newRecordingExecutor(0), zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))

	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
	assert.ErrorIs(t, s.SubmitUser("user-1"), ErrNotRunning)
}

type staticUsers struct {
	ids []string
	err error
}

func (u staticUsers) ListUserIDs(context.Context) ([]string, error) {
	return u.ids, u.err
}

func TestCronTrigger_FiresOncePerDay(t *testing.T) {
	exec := newRecordingExecutor(0)
	s := startScheduler(t, testConfig(), exec)

	trigger := NewCronTrigger(
		CronTriggerConfig{DailyHour: 2, DailyMinute: 30, CheckInterval: time.Minute},
		s, staticUsers{ids: []string{"user-1", "user-2"}}, zaptest.NewLogger(t),
	)
	clock := time.Date(2024, 3, 1, 2, 0, 0, 0, time.Local)
	trigger.now = func() time.Time { return clock }
	ctx := context.Background()

	assert.False(t, trigger.checkAndTrigger(ctx), "before the configured time")

	clock = clock.Add(45 * time.Minute)
	assert.True(t, trigger.checkAndTrigger(ctx))
	waitRuns(t, exec, 2)

	clock = clock.Add(time.Hour)
	assert.False(t, trigger.checkAndTrigger(ctx), "already ran today")

	clock = clock.AddDate(0, 0, 1)
	assert.True(t, trigger.checkAndTrigger(ctx))
	waitRuns(t, exec, 2)
	assert.Len(t, exec.executed(), 4)
}

func TestCronTrigger_TriggerAll(t *testing.T) {
	t.Run("queues every user", func(t *testing.T) {
		exec := newRecordingExecutor(0)
		s := startScheduler(t, testConfig(), exec)
		trigger := NewCronTrigger(DefaultCronTriggerConfig(), s, staticUsers{ids: []string{"a", "b", "c"}}, zaptest.NewLogger(t))

		queued, err := trigger.TriggerAll(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, queued)
		waitRuns(t, exec, 3)
	})

	t.Run("returns the listing error", func(t *testing.T) {
		s := startScheduler(t, testConfig(), newRecordingExecutor(0))
		trigger := NewCronTrigger(DefaultCronTriggerConfig(), s, staticUsers{err: errors.New("offline")}, zaptest.NewLogger(t))

		_, err := trigger.TriggerAll(context.Background())
		assert.EqualError(t, err, "offline")
	})
}

func TestCronTrigger_StartStop(t *testing.T) {
	s := startScheduler(t, testConfig(), newRecordingExecutor(0))
	trigger := NewCronTrigger(
		CronTriggerConfigFrom(config.SchedulerConfig{DailyHour: 3, CheckInterval: time.Hour}),
		s, staticUsers{}, zaptest.NewLogger(t),
	)

	require.NoError(t, trigger.Start(context.Background()))
	require.NoError(t, trigger.Start(context.Background()))
	require.NoError(t, trigger.Stop(context.Background()))
	require.NoError(t, trigger.Stop(context.Background()))
}

type fakeMaintainer struct {
	drift      []ledgerapp.DriftResponse
	verifyErr  error
	rebalanced []string
}

func (m *fakeMaintainer) Verify(_ context.Context, userID string) ([]ledgerapp.DriftResponse, error) {
	return m.drift, m.verifyErr
}

func (m *fakeMaintainer) Rebalance(_ context.Context, userID string) (*ledgerapp.RebalanceResult, error) {
	m.rebalanced = append(m.rebalanced, userID)
	return &ledgerapp.RebalanceResult{Users: 1, Checked: 5, Updated: len(m.drift)}, nil
}

func TestReconcileExecutor(t *testing.T) {
	drifted := []ledgerapp.DriftResponse{{
		EntryID:   uuid.New(),
		UserID:    "user-1",
		PartyName: "Acme Traders",
		Stored:    decimal.Zero,
		Derived:   decimal.NewFromInt(600),
	}}

	t.Run("clean ledger", func(t *testing.T) {
		m := &fakeMaintainer{}
		job := NewJob("user-1", JobKindRepair, 0)

		require.NoError(t, NewReconcileExecutor(m, zaptest.NewLogger(t)).Execute(context.Background(), job))
		assert.Zero(t, job.Drifted)
		assert.Empty(t, m.rebalanced)
	})

	t.Run("verify job only reports drift", func(t *testing.T) {
		m := &fakeMaintainer{drift: drifted}
		job := NewJob("user-1", JobKindVerify, 0)

		require.NoError(t, NewReconcileExecutor(m, zaptest.NewLogger(t)).Execute(context.Background(), job))
		assert.Equal(t, 1, job.Drifted)
		assert.Zero(t, job.Repaired)
		assert.Empty(t, m.rebalanced)
	})

	t.Run("repair job rebalances", func(t *testing.T) {
		m := &fakeMaintainer{drift: drifted}
		job := NewJob("user-1", JobKindRepair, 0)

		require.NoError(t, NewReconcileExecutor(m, zaptest.NewLogger(t)).Execute(context.Background(), job))
		assert.Equal(t, 1, job.Repaired)
		assert.Equal(t, []string{"user-1"}, m.rebalanced)
	})

	t.Run("verify error", func(t *testing.T) {
		m := &fakeMaintainer{verifyErr: errors.New("timeout")}

		err := NewReconcileExecutor(m, zaptest.NewLogger(t)).Execute(context.Background(), NewJob("user-1", JobKindVerify, 0))
		assert.ErrorContains(t, err, "verify ledger of user-1")
	})
}
