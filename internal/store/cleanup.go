package store

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/verustcode/reportforge/consts"
	"github.com/verustcode/reportforge/pkg/logger"
	"github.com/verustcode/reportforge/pkg/telemetry"
)

// CleanupService purges archived renders past their retention period on a cron schedule
type CleanupService struct {
	store         RenderStore
	cron          *cron.Cron
	schedule      string
	retentionDays int
	entryID       cron.EntryID
	mu            sync.RWMutex
	// initial tracks the startup run, which is not owned by cron
	initial       sync.WaitGroup
}

// NewCleanupService creates a cleanup service. An empty schedule uses the default
// daily run; retentionDays of 0 disables purging and a negative value uses the default.
func NewCleanupService(store RenderStore, schedule string, retentionDays int) *CleanupService {
	if schedule == "" {
		schedule = consts.DefaultCleanupSchedule
	}
	if retentionDays < 0 {
		retentionDays = consts.DefaultRetentionDays
	}

	return &CleanupService{
		store:         store,
		cron:          cron.New(),
		schedule:      schedule,
		retentionDays: retentionDays,
	}
}

// Start schedules the cleanup job and runs one cleanup in the background
func (s *CleanupService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, err := s.cron.AddFunc(s.schedule, s.cleanup)
	if err != nil {
		logger.Error("Failed to schedule render cleanup",
			zap.String("schedule", s.schedule),
			zap.Error(err),
		)
		return err
	}

	s.entryID = entryID
	s.cron.Start()

	logger.Info("Render cleanup service started",
		zap.String("schedule", s.schedule),
		zap.Int("retention_days", s.retentionDays),
	)

	s.initial.Add(1)
	go func() {
		defer s.initial.Done()
		s.cleanup()
	}()

	return nil
}

// Stop stops the scheduler and waits for running jobs to finish.
// The lock is released before waiting so a running job can still read its settings.
func (s *CleanupService) Stop() {
	s.mu.Lock()
	c := s.cron
	s.mu.Unlock()

	if c == nil {
		return
	}

	logger.Info("Stopping render cleanup service")
	<-c.Stop().Done()
	s.initial.Wait()
	logger.Info("Render cleanup service stopped")
}

// RunOnce purges expired renders now and returns how many were deleted
func (s *CleanupService) RunOnce() (int64, error) {
	return s.purge(s.RetentionDays())
}

func (s *CleanupService) purge(days int) (int64, error) {
	if days == 0 {
		return 0, nil
	}

	startTime := time.Now()
	deleted, err := s.store.DeleteOlderThan(days)
	if err != nil {
		return 0, err
	}

	telemetry.GetMetrics().RecordPurged(context.Background(), deleted)
	logger.Info("Render cleanup completed",
		zap.Int64("deleted_count", deleted),
		zap.Int("retention_days", days),
		zap.Duration("duration", time.Since(startTime)),
	)
	return deleted, nil
}

func (s *CleanupService) cleanup() {
	days := s.RetentionDays()
	if _, err := s.purge(days); err != nil {
		logger.Error("Failed to cleanup old renders",
			zap.Int("retention_days", days),
			zap.Error(err),
		)
	}
}

// RetentionDays returns the current retention period
func (s *CleanupService) RetentionDays() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.retentionDays
}

// SetRetentionDays updates the retention period (takes effect on next cleanup)
func (s *CleanupService) SetRetentionDays(days int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if days < 0 {
		days = consts.DefaultRetentionDays
	}

	s.retentionDays = days
	logger.Info("Render retention days updated",
		zap.Int("retention_days", days),
	)
}
