// Package service coordinates picks, feeds, and the settlement engine.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/gridiron-edge/internal/dedupe"
	"github.com/yourusername/gridiron-edge/internal/logger"
	"github.com/yourusername/gridiron-edge/internal/metrics"
	"github.com/yourusername/gridiron-edge/internal/models"
	"github.com/yourusername/gridiron-edge/internal/oddsfeed"
	"github.com/yourusername/gridiron-edge/internal/outcome"
	"github.com/yourusername/gridiron-edge/internal/repository"
)

// ResolutionSummary reports the outcome of a resolution run
type ResolutionSummary struct {
	Examined int
	Resolved int
	Skipped  int
	Errors   int
	Duration time.Duration
}

// ResolutionService settles pick results from final scores
type ResolutionService struct {
	repo     repository.PickRepository
	feed     oddsfeed.OddsSource
	resolver *outcome.Resolver
	audit    *logger.AuditLogger
	logger   *logrus.Logger
}

// NewResolutionService creates a resolution service
func NewResolutionService(
	repo repository.PickRepository,
	feed oddsfeed.OddsSource,
	resolver *outcome.Resolver,
	audit *logger.AuditLogger,
	log *logrus.Logger,
) *ResolutionService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ResolutionService{
		repo:     repo,
		feed:     feed,
		resolver: resolver,
		audit:    audit,
		logger:   log,
	}
}

// ResolveWeek fetches final scores for a week and settles every pick whose
// game has finished. Picks without a matching final score are left pending.
func (s *ResolutionService) ResolveWeek(ctx context.Context, season, week int) (*ResolutionSummary, error) {
	start := time.Now()
	summary := &ResolutionSummary{}

	scores, err := s.feed.FetchScores(ctx, season, week)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch scores: %w", err)
	}

	finals := make(map[string]oddsfeed.GameUpdate, len(scores))
	for _, update := range scores {
		if update.Final && update.Info.HasScores() {
			finals[dedupe.GameKey(update.Info.HomeTeam, update.Info.AwayTeam, update.Info.Week)] = update
		}
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

		update, ok := finals[dedupe.GameKey(pick.Game.HomeTeam, pick.Game.AwayTeam, pick.Game.Week)]
		if !ok {
			summary.Skipped++
			continue
		}

		if err := s.resolvePick(ctx, pick, update); err != nil {
			summary.Errors++
			s.logger.WithError(err).WithField("pick_id", pick.ID).Warn("Failed to resolve pick")
			continue
		}
		summary.Resolved++
	}

	summary.Duration = time.Since(start)
	metrics.ResolutionDuration.Observe(summary.Duration.Seconds())

	s.logger.WithFields(logrus.Fields{
		"season":   season,
		"week":     week,
		"examined": summary.Examined,
		"resolved": summary.Resolved,
		"skipped":  summary.Skipped,
		"errors":   summary.Errors,
		"duration": summary.Duration,
	}).Info("Resolution run complete")

	return summary, nil
}

// ResolvePick settles a single pick against known final scores
func (s *ResolutionService) ResolvePick(ctx context.Context, pick *models.Pick, homeScore, awayScore int) error {
	update := oddsfeed.GameUpdate{
		Final: true,
		Info:  pick.Game,
	}
	update.Info.HomeScore = &homeScore
	update.Info.AwayScore = &awayScore
	return s.resolvePick(ctx, pick, update)
}

func (s *ResolutionService) resolvePick(ctx context.Context, pick *models.Pick, update oddsfeed.GameUpdate) error {
	staged := pick.Clone()
	staged.Game.HomeScore = update.Info.HomeScore
	staged.Game.AwayScore = update.Info.AwayScore

	resolution := s.resolver.Resolve(staged)
	if !resolution.HasScores {
		return fmt.Errorf("game has no final scores")
	}

	fields := map[string]interface{}{
		"home_score": *update.Info.HomeScore,
		"away_score": *update.Info.AwayScore,
	}
	changed := map[string]models.MarketResult{}

	if resolution.Moneyline != pick.Result {
		fields["result"] = resolution.Moneyline
		changed["moneyline"] = resolution.Moneyline
	}
	if resolution.Spread != pick.ATSResult {
		fields["ats_result"] = resolution.Spread
		changed["spread"] = resolution.Spread
	}
	if resolution.Total != pick.OUResult {
		fields["ou_result"] = resolution.Total
		changed["total"] = resolution.Total
	}

	if err := s.repo.UpdateFields(ctx, pick.ID, fields); err != nil {
		return fmt.Errorf("failed to persist resolution: %w", err)
	}

	if s.audit != nil {
		s.audit.LogScoreEntry(pick.ID.String(), *update.Info.HomeScore, *update.Info.AwayScore, time.Now().UTC())
	}
	for market, result := range changed {
		metrics.RecordResolved(market, string(result))
		if s.audit != nil {
			s.audit.LogResultChange(pick.ID.String(), market, string(oldResult(pick, market)), string(result))
		}
	}

	return nil
}

func oldResult(pick *models.Pick, market string) models.MarketResult {
	switch market {
	case "moneyline":
		return pick.Result
	case "spread":
		return pick.ATSResult
	default:
		return pick.OUResult
	}
}
