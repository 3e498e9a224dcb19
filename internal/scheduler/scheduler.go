// Package scheduler advances the season on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/derby-sim/internal/season"
)

// DefaultJobTimeout bounds a single scheduled advance
const DefaultJobTimeout = 10 * time.Minute

// Advancer moves the season forward. *season.Engine satisfies it.
type Advancer interface {
	AdvanceWeeks(ctx context.Context, n int) ([]*season.WeekReport, error)
}

// Scheduler manages scheduled season advances
type Scheduler struct {
	cron       *cron.Cron
	advancer   Advancer
	logger     *logrus.Entry
	jobTimeout time.Duration

	mu        sync.RWMutex
	isRunning bool
	jobIDs    []cron.EntryID
	lastRun   time.Time
	lastErr   error
}

// NewScheduler creates a new scheduler
func NewScheduler(advancer Advancer, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		advancer:   advancer,
		logger:     logger.WithField("component", "scheduler"),
		jobTimeout: DefaultJobTimeout,
		jobIDs:     make([]cron.EntryID, 0),
	}
}

// ScheduleAdvance advances the season by weeks on every tick of a standard cron spec
func (s *Scheduler) ScheduleAdvance(spec string, weeks int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if weeks < 1 {
		weeks = 1
	}

	entryID, err := s.cron.AddFunc(spec, func() { s.RunAdvance(weeks) })
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{"spec": spec, "weeks": weeks}).Info("Scheduled season advance")
	return nil
}

// RunAdvance performs one scheduled advance immediately
func (s *Scheduler) RunAdvance(weeks int) {
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()

	started := time.Now()
	reports, err := s.advancer.AdvanceWeeks(ctx, weeks)

	s.mu.Lock()
	s.lastRun = started
	s.lastErr = err
	s.mu.Unlock()

	entry := s.logger.WithFields(logrus.Fields{
		"weeks":    len(reports),
		"duration": time.Since(started).String(),
	})
	if err != nil {
		entry.WithError(err).Error("Scheduled season advance failed")
		return
	}
	if n := len(reports); n > 0 {
		last := reports[n-1].Next
		entry = entry.WithFields(logrus.Fields{"year": last.Year, "week": last.Week})
	}
	entry.Info("Scheduled season advance completed")
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")
	return nil
}

// Stop waits for running jobs and stops the scheduler
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// LastRun returns the start time and error of the most recent advance
func (s *Scheduler) LastRun() (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRun, s.lastErr
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() && (nextRun.IsZero() || entry.Next.Before(nextRun)) {
			nextRun = entry.Next
		}
	}
	return nextRun
}
