package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/opsease/backend/internal/infrastructure/config"
)

// UserProvider lists the users whose ledgers get reconciled
type UserProvider interface {
	ListUserIDs(ctx context.Context) ([]string, error)
}

// CronTriggerConfig holds configuration for the daily trigger
type CronTriggerConfig struct {
	// DailyHour and DailyMinute are the local time of the nightly run
	DailyHour   int
	DailyMinute int

	// CheckInterval is how often to check if it's time to run
	CheckInterval time.Duration
}

// DefaultCronTriggerConfig returns default cron trigger configuration
func DefaultCronTriggerConfig() CronTriggerConfig {
	return CronTriggerConfig{
		DailyHour:     2, // 2am
		DailyMinute:   0,
		CheckInterval: time.Minute,
	}
}

// CronTriggerConfigFrom maps the application scheduler settings
func CronTriggerConfigFrom(cfg config.SchedulerConfig) CronTriggerConfig {
	return CronTriggerConfig{
		DailyHour:     cfg.DailyHour,
		DailyMinute:   cfg.DailyMinute,
		CheckInterval: cfg.CheckInterval,
	}
}

// CronTrigger submits one reconciliation job per ledger user once a day
type CronTrigger struct {
	config    CronTriggerConfig
	scheduler *Scheduler
	users     UserProvider
	logger    *zap.Logger
	now       func() time.Time

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastRunDate string
}

// NewCronTrigger creates a new cron trigger
func NewCronTrigger(
	cfg CronTriggerConfig,
	scheduler *Scheduler,
	users UserProvider,
	logger *zap.Logger,
) *CronTrigger {
	return &CronTrigger{
		config:    cfg,
		scheduler: scheduler,
		users:     users,
		logger:    logger,
		now:       time.Now,
	}
}

// Start starts the trigger loop
func (c *CronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = true
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.runLoop(ctx)

	c.logger.Info("Reconciliation trigger started",
		zap.Int("daily_hour", c.config.DailyHour),
		zap.Int("daily_minute", c.config.DailyMinute),
		zap.Duration("check_interval", c.config.CheckInterval),
	)
	return nil
}

// Stop stops the trigger loop
func (c *CronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("Reconciliation trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *CronTrigger) runLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.checkAndTrigger(ctx)
		}
	}
}

// checkAndTrigger fires at most once per calendar day, at the first check
// that falls on or after the configured time.
func (c *CronTrigger) checkAndTrigger(ctx context.Context) bool {
	now := c.now()
	currentDate := now.Format("2006-01-02")

	c.mu.Lock()
	if c.lastRunDate == currentDate {
		c.mu.Unlock()
		return false
	}
	due := now.Hour() > c.config.DailyHour ||
		(now.Hour() == c.config.DailyHour && now.Minute() >= c.config.DailyMinute)
	if !due {
		c.mu.Unlock()
		return false
	}
	c.lastRunDate = currentDate
	c.mu.Unlock()

	c.logger.Info("Triggering nightly ledger reconciliation")
	_, _ = c.TriggerAll(ctx)
	return true
}

// TriggerAll submits a job for every ledger user and returns how many were queued
func (c *CronTrigger) TriggerAll(ctx context.Context) (int, error) {
	userIDs, err := c.users.ListUserIDs(ctx)
	if err != nil {
		c.logger.Error("Failed to list ledger users for reconciliation", zap.Error(err))
		return 0, err
	}

	queued := 0
	for _, userID := range userIDs {
		if err := c.scheduler.SubmitUser(userID); err != nil {
			c.logger.Error("Failed to queue reconciliation",
				zap.String("user_id", userID),
				zap.Error(err),
			)
			continue
		}
		queued++
	}

	c.logger.Info("Queued ledger reconciliation",
		zap.Int("users", len(userIDs)),
		zap.Int("queued", queued),
	)
	return queued, nil
}
