// Package scheduler runs the recurring resolution, edge refresh, and
// cleanup jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gridiron-edge/internal/service"
)

// WeekProvider reports the current season and week for scheduled runs
type WeekProvider func(now time.Time) (season, week int)

// Scheduler manages the recurring background jobs
type Scheduler struct {
	cron            *cron.Cron
	resolutionSvc   *service.ResolutionService
	edgeSvc         *service.EdgeService
	cleanupSvc      *service.CleanupService
	currentWeek     WeekProvider
	logger          *logrus.Logger
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler
func NewScheduler(
	resolutionSvc *service.ResolutionService,
	edgeSvc *service.EdgeService,
	cleanupSvc *service.CleanupService,
	currentWeek WeekProvider,
	logger *logrus.Logger,
) *Scheduler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		resolutionSvc:   resolutionSvc,
		edgeSvc:         edgeSvc,
		cleanupSvc:      cleanupSvc,
		currentWeek:     currentWeek,
		logger:          logger,
		jobIDs:          make([]cron.EntryID, 0),
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleResolution schedules the score resolution job
func (s *Scheduler) ScheduleResolution(cronExpression string) error {
	return s.addJob("resolution", cronExpression, func(ctx context.Context, season, week int) error {
		_, err := s.resolutionSvc.ResolveWeek(ctx, season, week)
		return err
	})
}

// ScheduleEdgeRefresh schedules the edge recomputation job
func (s *Scheduler) ScheduleEdgeRefresh(cronExpression string) error {
	return s.addJob("edge_refresh", cronExpression, func(ctx context.Context, season, week int) error {
		_, err := s.edgeSvc.RefreshWeek(ctx, season, week)
		return err
	})
}

// ScheduleCleanup schedules the duplicate cleanup job
func (s *Scheduler) ScheduleCleanup(cronExpression string) error {
	return s.addJob("cleanup", cronExpression, func(ctx context.Context, season, week int) error {
		report, err := s.cleanupSvc.RemoveDuplicates(ctx)
		if err == nil {
			s.logger.WithField("job", "cleanup").Info(report.Summary())
		}
		return err
	})
}

func (s *Scheduler) addJob(name, cronExpression string, run func(ctx context.Context, season, week int) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		season, week := s.currentWeek(time.Now().UTC())
		s.logger.WithFields(logrus.Fields{
			"job":    name,
			"season": season,
			"week":   week,
		}).Info("Starting scheduled job")

		if err := run(ctx, season, week); err != nil {
			s.logger.WithError(err).WithField("job", name).Error("Scheduled job failed")
		}
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add %s job: %w", name, err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"job":      name,
		"schedule": cronExpression,
	}).Info("Scheduled job")

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

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(s.gracefulTimeout):
		s.logger.Warn("Scheduler stop timed out waiting for running jobs")
	}

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

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
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

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			entries = append(entries, entry)
		}
	}

	return entries
}

// NFLWeek derives the season and week number from a point in time. Week 1
// starts the first Thursday of September; the season label is the year the
// season began.
func NFLWeek(now time.Time) (season, week int) {
	season = now.Year()
	if now.Month() < time.September {
		season--
	}

	kickoff := firstThursdayOfSeptember(season)
	if now.Before(kickoff) {
		return season, 1
	}

	week = int(now.Sub(kickoff)/(7*24*time.Hour)) + 1
	if week > 22 {
		week = 22
	}
	return season, week
}

func firstThursdayOfSeptember(year int) time.Time {
	d := time.Date(year, time.September, 1, 0, 0, 0, 0, time.UTC)
	for d.Weekday() != time.Thursday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}
