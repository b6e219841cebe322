package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/opsease/backend/internal/infrastructure/config"
)

var (
	ErrNotRunning    = errors.New("scheduler is not running")
	ErrQueueFull     = errors.New("reconciliation queue is full")
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
)

// JobStatus represents the status of a reconciliation job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// JobKind selects what a reconciliation job does once drift is found
type JobKind string

const (
	// JobKindVerify reports drift without touching stored balances
	JobKindVerify JobKind = "VERIFY"
	// JobKindRepair rebalances the user's ledger when drift is found
	JobKindRepair JobKind = "REPAIR"
)

// Job is one user's ledger reconciliation
type Job struct {
	ID          uuid.UUID
	UserID      string
	Kind        JobKind
	Status      JobStatus
	Error       string
	Drifted     int
	Repaired    int
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
}

// NewJob creates a pending job
func NewJob(userID string, kind JobKind, maxRetries int) *Job {
	return &Job{
		ID:         uuid.New(),
		UserID:     userID,
		Kind:       kind,
		Status:     JobStatusPending,
		MaxRetries: maxRetries,
	}
}

// Start marks the job as running
func (j *Job) Start() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

// Complete marks the job as successful
func (j *Job) Complete() {
	now := time.Now()
	j.Status = JobStatusSuccess
	j.CompletedAt = &now
}

// Fail marks the job as failed
func (j *Job) Fail(err string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

// ShouldRetry returns true if the job should be retried
func (j *Job) ShouldRetry() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// JobExecutor runs a reconciliation job
type JobExecutor interface {
	Execute(ctx context.Context, job *Job) error
}

// Config holds worker pool settings
type Config struct {
	Workers       int
	QueueSize     int
	JobTimeout    time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	AutoRepair    bool
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() Config {
	return Config{
		Workers:       2,
		QueueSize:     100,
		JobTimeout:    10 * time.Minute,
		RetryAttempts: 0,
		RetryDelay:    5 * time.Minute,
	}
}

// ConfigFrom maps the application scheduler settings onto a pool config
func ConfigFrom(cfg config.SchedulerConfig) Config {
	c := DefaultConfig()
	c.Workers = cfg.Workers
	c.JobTimeout = cfg.JobTimeout
	c.RetryAttempts = cfg.RetryAttempts
	c.RetryDelay = cfg.RetryDelay
	c.AutoRepair = cfg.AutoRepair
	return c
}

func (c Config) validate() error {
	if c.Workers <= 0 || c.QueueSize <= 0 || c.JobTimeout <= 0 || c.RetryAttempts < 0 {
		return fmt.Errorf("%w: workers=%d queue=%d timeout=%s retries=%d",
			ErrInvalidConfig, c.Workers, c.QueueSize, c.JobTimeout, c.RetryAttempts)
	}
	return nil
}

// Scheduler runs reconciliation jobs on a fixed pool of workers
type Scheduler struct {
	config   Config
	executor JobExecutor
	logger   *zap.Logger

	jobs      chan *Job
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	retries   sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg Config, executor JobExecutor, logger *zap.Logger) (*Scheduler, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Scheduler{
		config:   cfg,
		executor: executor,
		logger:   logger,
		jobs:     make(chan *Job, cfg.QueueSize),
	}, nil
}

// Start starts the worker pool
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.config.Workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.logger.Info("Ledger reconciliation scheduler started",
		zap.Int("workers", s.config.Workers),
		zap.Duration("job_timeout", s.config.JobTimeout),
		zap.Bool("auto_repair", s.config.AutoRepair),
	)
	return nil
}

// Stop cancels pending retries and waits for running jobs to return
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.retries.Wait()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Ledger reconciliation scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Ledger reconciliation scheduler stop timed out")
		return ctx.Err()
	}
}

// Submit queues a job for execution
func (s *Scheduler) Submit(job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return ErrNotRunning
	}

	select {
	case s.jobs <- job:
		s.logger.Debug("Job submitted",
			zap.String("job_id", job.ID.String()),
			zap.String("user_id", job.UserID),
			zap.String("kind", string(job.Kind)),
		)
		return nil
	default:
		return ErrQueueFull
	}
}

// SubmitUser queues a reconciliation of one user's ledger, repairing drift
// when the scheduler runs with auto repair.
func (s *Scheduler) SubmitUser(userID string) error {
	kind := JobKindVerify
	if s.config.AutoRepair {
		kind = JobKindRepair
	}
	return s.Submit(NewJob(userID, kind, s.config.RetryAttempts))
}

func (s *Scheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.jobs:
			s.processJob(ctx, job, workerID)
		}
	}
}

func (s *Scheduler) processJob(ctx context.Context, job *Job, workerID int) {
	job.Start()

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	if err := s.executor.Execute(jobCtx, job); err != nil {
		job.Fail(err.Error())
		s.logger.Error("Reconciliation job failed",
			zap.Int("worker_id", workerID),
			zap.String("job_id", job.ID.String()),
			zap.String("user_id", job.UserID),
			zap.Int("retry_count", job.RetryCount),
			zap.Error(err),
		)
		if job.ShouldRetry() {
			s.scheduleRetry(ctx, job)
		}
		return
	}

	job.Complete()
	s.logger.Info("Reconciliation job completed",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("user_id", job.UserID),
		zap.Int("drifted", job.Drifted),
		zap.Int("repaired", job.Repaired),
	)
}

// scheduleRetry resubmits a failed job after the retry delay unless the
// scheduler stops first.
func (s *Scheduler) scheduleRetry(ctx context.Context, job *Job) {
	job.RetryCount++
	job.Status = JobStatusPending

	s.retries.Add(1)
	go func() {
		defer s.retries.Done()
		timer := time.NewTimer(s.config.RetryDelay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		if err := s.Submit(job); err != nil {
			s.logger.Warn("Failed to re-queue reconciliation job",
				zap.String("job_id", job.ID.String()),
				zap.Error(err),
			)
		}
	}()
}
