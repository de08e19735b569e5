package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/linesmerrill/legal-officer-api/databases"
)

// BlockSyncLock names the distributed lock held while blocks are synchronized
const BlockSyncLock = "block_sync"

// lockTTL bounds one synchronization run; a crashed instance's lock expires
// after it.
const lockTTL = 5 * time.Minute

// Syncer runs one synchronization pass
type Syncer interface {
	Sync(ctx context.Context) error
}

// Scheduler runs block synchronization periodically. Runs never overlap:
// within an instance the cron chain skips a tick while the previous run is
// still going, and across instances the mongo lock lets only one run.
type Scheduler struct {
	cron       *cron.Cron
	Syncer     Syncer
	LockDB     databases.SchedulerLockDatabase
	Schedule   string
	instanceID string
}

// NewScheduler creates a new scheduler instance
func NewScheduler(syncer Syncer, lockDB databases.SchedulerLockDatabase, schedule string) *Scheduler {
	// Generate a unique instance ID for this pod
	instanceID := os.Getenv("DYNO") // Heroku sets this to "web.1", "web.2", etc.
	if instanceID == "" {
		instanceID = fmt.Sprintf("instance-%d", time.Now().UnixNano())
	}

	logger := cronLogger{zap.S().Named("scheduler")}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		Syncer:     syncer,
		LockDB:     lockDB,
		Schedule:   schedule,
		instanceID: instanceID,
	}
}

// Start registers the block sync job and begins the scheduler
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.Schedule, s.RunBlockSync); err != nil {
		return fmt.Errorf("register block sync job %q: %w", s.Schedule, err)
	}
	s.cron.Start()
	zap.S().Infow("block sync scheduler started", "schedule", s.Schedule, "instance", s.instanceID)
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("block sync scheduler stopped")
}

// RunBlockSync runs one synchronization pass if no other instance is running one
func (s *Scheduler) RunBlockSync() {
	ctx, cancel := context.WithTimeout(context.Background(), lockTTL)
	defer cancel()

	acquired, err := s.LockDB.TryAcquireLock(ctx, BlockSyncLock, s.instanceID, lockTTL)
	if err != nil {
		zap.S().Errorw("failed to acquire lock for block sync job", "error", err)
		return
	}
	if !acquired {
		zap.S().Debug("block sync job already running on another instance, skipping")
		return
	}
	defer func() {
		releaseCtx, releaseCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer releaseCancel()
		if err := s.LockDB.ReleaseLock(releaseCtx, BlockSyncLock, s.instanceID); err != nil {
			zap.S().Warnw("failed to release block sync lock", "error", err)
		}
	}()

	if err := s.Syncer.Sync(ctx); err != nil {
		zap.S().Errorw("block sync failed", "instance", s.instanceID, "error", err)
	}
}

// cronLogger routes cron's own messages to zap
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
