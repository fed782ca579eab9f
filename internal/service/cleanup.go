package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gridiron-edge/internal/dedupe"
	"github.com/yourusername/gridiron-edge/internal/logger"
	"github.com/yourusername/gridiron-edge/internal/metrics"
	"github.com/yourusername/gridiron-edge/internal/repository"
)

// CleanupService removes duplicate picks from the store
type CleanupService struct {
	repo     repository.PickRepository
	detector *dedupe.Detector
	audit    *logger.AuditLogger
	logger   *logrus.Logger
}

// NewCleanupService creates a cleanup service
func NewCleanupService(repo repository.PickRepository, audit *logger.AuditLogger, log *logrus.Logger) *CleanupService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &CleanupService{
		repo:     repo,
		detector: dedupe.NewDetector(repo, log),
		audit:    audit,
		logger:   log,
	}
}

// RemoveDuplicates scans all picks and deletes every duplicate, keeping the
// earliest pick per game. Deletions are best-effort; failures are reported.
func (s *CleanupService) RemoveDuplicates(ctx context.Context) (dedupe.CleanupReport, error) {
	picks, err := s.repo.GetAll(ctx)
	if err != nil {
		return dedupe.CleanupReport{}, fmt.Errorf("failed to load picks: %w", err)
	}

	report := s.detector.Cleanup(ctx, picks)
	metrics.DuplicatesCleanedTotal.Add(float64(report.Deleted))

	if s.audit != nil && report.Deleted > 0 {
		for _, g := range dedupe.FindGroups(picks) {
			for _, dup := range g.Duplicates {
				if !failed(report, dup.ID) {
					s.audit.LogPickDeletion(dup.ID.String(), "duplicate of "+g.Original.ID.String())
				}
			}
		}
	}

	return report, nil
}

// FindDuplicates lists duplicate groups without deleting anything
func (s *CleanupService) FindDuplicates(ctx context.Context) ([]dedupe.Group, error) {
	picks, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load picks: %w", err)
	}
	return dedupe.FindGroups(picks), nil
}

func failed(report dedupe.CleanupReport, id uuid.UUID) bool {
	for _, f := range report.Failures {
		if f.ID == id {
			return true
		}
	}
	return false
}
