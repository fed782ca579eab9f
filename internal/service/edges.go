package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/gridiron-edge/internal/dedupe"
	"github.com/yourusername/gridiron-edge/internal/edge"
	"github.com/yourusername/gridiron-edge/internal/metrics"
	"github.com/yourusername/gridiron-edge/internal/models"
	"github.com/yourusername/gridiron-edge/internal/oddsfeed"
	"github.com/yourusername/gridiron-edge/internal/repository"
	"github.com/yourusername/gridiron-edge/internal/simfeed"
)

// EdgeSummary reports the outcome of an edge refresh run
type EdgeSummary struct {
	Examined int
	Updated  int
	Skipped  int
	Errors   int
	Duration time.Duration
}

// EdgeService recomputes market edges from current lines and simulations
type EdgeService struct {
	repo   repository.PickRepository
	odds   oddsfeed.OddsSource
	sims   simfeed.SimSource
	engine *edge.Engine
	logger *logrus.Logger
}

// NewEdgeService creates an edge service
func NewEdgeService(
	repo repository.PickRepository,
	odds oddsfeed.OddsSource,
	sims simfeed.SimSource,
	engine *edge.Engine,
	log *logrus.Logger,
) *EdgeService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &EdgeService{
		repo:   repo,
		odds:   odds,
		sims:   sims,
		engine: engine,
		logger: log,
	}
}

// RefreshWeek recomputes edges for every unsettled pick in a week using the
// latest lines and simulation probabilities
func (s *EdgeService) RefreshWeek(ctx context.Context, season, week int) (*EdgeSummary, error) {
	start := time.Now()
	summary := &EdgeSummary{}

	updates, err := s.odds.FetchWeek(ctx, season, week)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lines: %w", err)
	}

	lines := make(map[string]oddsfeed.GameUpdate, len(updates))
	for _, update := range updates {
		lines[dedupe.GameKey(update.Info.HomeTeam, update.Info.AwayTeam, update.Info.Week)] = update
	}

	picks, err := s.repo.GetByWeek(ctx, week)
	if err != nil {
		return nil, fmt.Errorf("failed to load picks for week %d: %w", week, err)
	}

	for _, pick := range picks {
		summary.Examined++

		if pick.IsSettled() {
			summary.Skipped++
			continue
		}

		update, ok := lines[dedupe.GameKey(pick.Game.HomeTeam, pick.Game.AwayTeam, pick.Game.Week)]
		if !ok {
			summary.Skipped++
			continue
		}

		if err := s.refreshPick(ctx, pick, update); err != nil {
			if errors.Is(err, simfeed.ErrSnapshotNotFound) {
				summary.Skipped++
				continue
			}
			summary.Errors++
			s.logger.WithError(err).WithField("pick_id", pick.ID).Warn("Failed to refresh edges")
			continue
		}
		summary.Updated++
	}

	summary.Duration = time.Since(start)
	metrics.EdgeRefreshDuration.Observe(summary.Duration.Seconds())

	s.logger.WithFields(logrus.Fields{
		"season":   season,
		"week":     week,
		"examined": summary.Examined,
		"updated":  summary.Updated,
		"skipped":  summary.Skipped,
		"errors":   summary.Errors,
		"duration": summary.Duration,
	}).Info("Edge refresh complete")

	return summary, nil
}

// ComputeReport computes edges for a pick without persisting anything
func (s *EdgeService) ComputeReport(ctx context.Context, pick *models.Pick) (edge.Report, error) {
	snapshot, err := s.sims.GetSnapshot(ctx, pick.Game.HomeTeam, pick.Game.AwayTeam, pick.Game.Week)
	if err != nil {
		return edge.Report{}, err
	}

	staged := pick.Clone()
	staged.Simulation = *snapshot
	return s.engine.Compute(staged), nil
}

func (s *EdgeService) refreshPick(ctx context.Context, pick *models.Pick, update oddsfeed.GameUpdate) error {
	snapshot, err := s.sims.GetSnapshot(ctx, pick.Game.HomeTeam, pick.Game.AwayTeam, pick.Game.Week)
	if err != nil {
		return err
	}

	staged := pick.Clone()
	staged.Game.HomeMoneyline = update.Info.HomeMoneyline
	staged.Game.AwayMoneyline = update.Info.AwayMoneyline
	staged.Game.SpreadOdds = update.Info.SpreadOdds
	staged.Game.OverOdds = update.Info.OverOdds
	staged.Game.UnderOdds = update.Info.UnderOdds
	staged.Game.SpreadLine = update.Info.SpreadLine
	staged.Game.TotalLine = update.Info.TotalLine
	staged.Simulation = *snapshot

	report := s.engine.Compute(staged)

	fields := map[string]interface{}{
		"moneyline_edge": report.Moneyline.Edge,
		"spread_edge":    report.Spread.Edge,
		"total_edge":     report.Total.Edge,
	}
	if err := s.repo.UpdateFields(ctx, pick.ID, fields); err != nil {
		return fmt.Errorf("failed to persist edges: %w", err)
	}

	metrics.EdgesComputedTotal.Add(3)
	return nil
}
