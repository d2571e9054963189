// Package scheduler runs the periodic match list refresh jobs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/betslip/internal/feed"
)

// Scheduler manages the periodic refresh of the match book from the feed.
// Live score changes ride the push channel; this covers the slower-moving
// list itself (new fixtures, rotated-out matches, pre-match odds moves).
type Scheduler struct {
	cron       *cron.Cron
	feedClient *feed.Client
	book       *feed.MatchBook
	logger     *logrus.Logger
	mu         sync.RWMutex
	isRunning  bool
	jobIDs     []cron.EntryID
}

// NewScheduler creates a new scheduler
func NewScheduler(feedClient *feed.Client, book *feed.MatchBook, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		feedClient: feedClient,
		book:       book,
		logger:     logger,
		jobIDs:     make([]cron.EntryID, 0),
	}
}

// ScheduleBookRefresh schedules the periodic match list refresh
func (s *Scheduler) ScheduleBookRefresh(intervalSeconds int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	if intervalSeconds < 5 {
		intervalSeconds = 5
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(intervalSeconds-1)*time.Second)
		defer cancel()

		s.feedClient.Invalidate()
		if err := s.feedClient.RefreshBook(ctx, s.book); err != nil {
			s.logger.WithError(err).Warn("Scheduled match book refresh failed")
			return
		}

		s.logger.WithField("matches", s.book.Len()).Debug("Match book refreshed")
	}

	entryID, err := s.cron.AddFunc(fmt.Sprintf("@every %ds", intervalSeconds), jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add refresh job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("interval_seconds", intervalSeconds).Info("Scheduled match book refresh")

	return nil
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

// Stop gracefully stops the scheduler, waiting for running jobs
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")

	return nil
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns the time of the next scheduled refresh
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}

	return nextRun
}
