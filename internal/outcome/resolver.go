// Package outcome settles the three betting markets of a pick once final
// scores are available. Each market resolves independently: a pick can win
// the moneyline while losing against the spread.
package outcome

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/gridiron-edge/internal/models"
	"github.com/yourusername/gridiron-edge/internal/teams"
)

// DefaultPushThreshold is the margin inside which a market settles as a
// push. The value is an inherited convention, kept configurable rather than
// derived.
const DefaultPushThreshold = 0.5

// Resolution holds the per-market results of a single pick
type Resolution struct {
	Moneyline models.MarketResult
	Spread    models.MarketResult
	Total     models.MarketResult
	HasScores bool
}

// Resolver turns final scores, lines and resolved sides into market results
type Resolver struct {
	pushThreshold float64
	logger        *logrus.Logger
}

// NewResolver creates a resolver with the given push threshold. A
// non-positive threshold falls back to the default.
func NewResolver(pushThreshold float64, logger *logrus.Logger) *Resolver {
	if pushThreshold <= 0 {
		pushThreshold = DefaultPushThreshold
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Resolver{pushThreshold: pushThreshold, logger: logger}
}

// Resolve settles all three markets of a pick. Markets stay pending when
// scores are missing, when no line exists, or when the prediction text does
// not resolve to a side.
func (r *Resolver) Resolve(p *models.Pick) Resolution {
	res := Resolution{
		Moneyline: models.ResultPending,
		Spread:    models.ResultPending,
		Total:     models.ResultPending,
	}
	if !p.Game.HasScores() {
		return res
	}
	res.HasScores = true

	home := *p.Game.HomeScore
	away := *p.Game.AwayScore

	side := teams.ResolveSide(p.MoneylinePick, p.Game.HomeTeam, p.Game.AwayTeam)
	res.Moneyline = r.ResolveMoneyline(home, away, side)

	if p.Game.SpreadLine != nil {
		// The spread prediction text decides the ATS side; falling back to
		// the moneyline text would settle against the wrong team.
		spreadSide := teams.ResolveSide(p.SpreadPick, p.Game.HomeTeam, p.Game.AwayTeam)
		res.Spread = r.ResolveSpread(home, away, *p.Game.SpreadLine, spreadSide)
	}

	if p.Game.TotalLine != nil {
		totalSide := teams.ResolveTotalSide(p.TotalPick)
		res.Total = r.ResolveTotal(home, away, *p.Game.TotalLine, totalSide)
	}

	if side == teams.SideUnknown && p.MoneylinePick != "" {
		r.logger.WithFields(logrus.Fields{
			"home": p.Game.HomeTeam,
			"away": p.Game.AwayTeam,
			"text": p.MoneylinePick,
		}).Debug("Moneyline prediction did not resolve to a side; market stays pending")
	}
	return res
}

// ResolveMoneyline settles the moneyline market. Equal scores are a push
// regardless of the predicted side; an unknown side stays pending.
func (r *Resolver) ResolveMoneyline(homeScore, awayScore int, side teams.Side) models.MarketResult {
	if homeScore == awayScore {
		return models.ResultPush
	}
	if side == teams.SideUnknown {
		return models.ResultPending
	}

	homeWon := homeScore > awayScore
	if (side == teams.SideHome) == homeWon {
		return models.ResultWin
	}
	return models.ResultLoss
}

// ResolveSpread settles the against-the-spread market. The spread is the
// home line: adjustedMargin = (home - away) + spread. Margins inside the
// push threshold void the bet.
func (r *Resolver) ResolveSpread(homeScore, awayScore int, spread float64, side teams.Side) models.MarketResult {
	if side == teams.SideUnknown {
		return models.ResultPending
	}

	adjustedMargin := float64(homeScore-awayScore) + spread
	if math.Abs(adjustedMargin) < r.pushThreshold {
		return models.ResultPush
	}

	homeCovered := adjustedMargin > 0
	if (side == teams.SideHome) == homeCovered {
		return models.ResultWin
	}
	return models.ResultLoss
}

// ResolveTotal settles the over/under market. Totals landing inside the
// push threshold of the line void the bet.
func (r *Resolver) ResolveTotal(homeScore, awayScore int, line float64, side teams.TotalSide) models.MarketResult {
	if side == teams.TotalUnknown {
		return models.ResultPending
	}

	total := float64(homeScore + awayScore)
	if math.Abs(total-line) < r.pushThreshold {
		return models.ResultPush
	}

	wentOver := total > line
	if (side == teams.TotalOver) == wentOver {
		return models.ResultWin
	}
	return models.ResultLoss
}
