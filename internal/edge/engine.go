// Package edge turns simulation probabilities and bookmaker prices into
// published betting edges, recommendation tiers and Kelly stakes.
package edge

import (
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gridiron-edge/internal/models"
	"github.com/yourusername/gridiron-edge/internal/oddsmath"
	"github.com/yourusername/gridiron-edge/internal/teams"
)

// Tier is the bet-strength recommendation derived from the unshrunk edge
type Tier string

const (
	TierStrong   Tier = "Strong"
	TierModerate Tier = "Moderate"
	TierAvoid    Tier = "Avoid"
)

// Default engine constants. The shrinkage factor is an inherited convention
// with no published derivation; it is kept configurable rather than tuned.
const (
	DefaultShrinkageFactor = 0.3
	DefaultStrongCutoff    = 10.0
	DefaultModerateCutoff  = 5.0
)

// Config holds the tunable engine constants
type Config struct {
	ShrinkageFactor float64
	KellyFraction   float64
	StrongCutoff    float64
	ModerateCutoff  float64
}

// DefaultConfig returns the standard engine configuration
func DefaultConfig() Config {
	return Config{
		ShrinkageFactor: DefaultShrinkageFactor,
		KellyFraction:   oddsmath.DefaultKellyFraction,
		StrongCutoff:    DefaultStrongCutoff,
		ModerateCutoff:  DefaultModerateCutoff,
	}
}

// MarketEdge is the published edge for a single market of a pick
type MarketEdge struct {
	Market      models.Market
	Edge        float64 // shrunk, rounded to 2 decimals
	RawEdge     float64 // unshrunk expected value
	Tier        Tier
	KellyStake  float64 // suggested bankroll fraction
	Probability float64 // model probability used, 0-100
	Odds        float64 // American price used, 0 when missing
}

// Report covers all three markets of a pick
type Report struct {
	Moneyline MarketEdge
	Spread    MarketEdge
	Total     MarketEdge
}

// Engine computes edges for picks
type Engine struct {
	cfg    Config
	logger *logrus.Logger
}

// NewEngine creates an edge engine. Zero-valued config fields fall back to
// the defaults.
func NewEngine(cfg Config, logger *logrus.Logger) *Engine {
	if cfg.ShrinkageFactor <= 0 {
		cfg.ShrinkageFactor = DefaultShrinkageFactor
	}
	if cfg.KellyFraction <= 0 {
		cfg.KellyFraction = oddsmath.DefaultKellyFraction
	}
	if cfg.StrongCutoff <= 0 {
		cfg.StrongCutoff = DefaultStrongCutoff
	}
	if cfg.ModerateCutoff <= 0 {
		cfg.ModerateCutoff = DefaultModerateCutoff
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Engine{cfg: cfg, logger: logger}
}

// Compute evaluates all three markets of a pick independently. A market with
// no prediction, no resolvable side, no probability or no price publishes an
// edge of exactly zero; prices are never synthesized.
func (e *Engine) Compute(p *models.Pick) Report {
	return Report{
		Moneyline: e.moneylineEdge(p),
		Spread:    e.spreadEdge(p),
		Total:     e.totalEdge(p),
	}
}

func (e *Engine) moneylineEdge(p *models.Pick) MarketEdge {
	me := MarketEdge{Market: models.MarketMoneyline, Tier: TierAvoid}
	if p.MoneylinePick == "" {
		return me
	}

	var prob, odds float64
	switch teams.ResolveSide(p.MoneylinePick, p.Game.HomeTeam, p.Game.AwayTeam) {
	case teams.SideHome:
		prob, odds = p.Simulation.HomeWin, p.Game.HomeMoneyline
	case teams.SideAway:
		prob, odds = p.Simulation.AwayWin, p.Game.AwayMoneyline
	default:
		return me
	}
	return e.publish(me, prob, odds)
}

func (e *Engine) spreadEdge(p *models.Pick) MarketEdge {
	me := MarketEdge{Market: models.MarketSpread, Tier: TierAvoid}
	if p.SpreadPick == "" || p.Game.SpreadLine == nil {
		return me
	}

	// The home spread line decides who the favorite is.
	favorite, underdog := p.Game.HomeTeam, p.Game.AwayTeam
	if *p.Game.SpreadLine > 0 {
		favorite, underdog = p.Game.AwayTeam, p.Game.HomeTeam
	}

	var prob float64
	switch teams.ResolveFavoriteSide(p.SpreadPick, favorite, underdog) {
	case teams.FavoritePicked:
		prob = p.Simulation.FavoriteCover
	case teams.UnderdogPicked:
		prob = p.Simulation.UnderdogCover
		if prob == 0 && p.Simulation.FavoriteCover > 0 {
			// Older snapshots only carry the favorite-cover probability.
			prob = 100 - p.Simulation.FavoriteCover
		}
	default:
		return me
	}
	return e.publish(me, prob, p.Game.SpreadOdds)
}

func (e *Engine) totalEdge(p *models.Pick) MarketEdge {
	me := MarketEdge{Market: models.MarketTotal, Tier: TierAvoid}
	if p.TotalPick == "" || p.Game.TotalLine == nil {
		return me
	}

	var prob, odds float64
	switch teams.ResolveTotalSide(p.TotalPick) {
	case teams.TotalOver:
		prob, odds = p.Simulation.Over, p.Game.OverOdds
	case teams.TotalUnder:
		prob, odds = p.Simulation.Under, p.Game.UnderOdds
	default:
		return me
	}
	return e.publish(me, prob, odds)
}

// publish fills in the edge, tier and stake for a resolved market. Missing
// probability or odds leave the edge at exactly zero.
func (e *Engine) publish(me MarketEdge, prob, odds float64) MarketEdge {
	me.Probability = prob
	me.Odds = odds
	if prob <= 0 || odds == 0 {
		return me
	}

	me.RawEdge = oddsmath.Edge(prob, odds)
	me.Edge = round2(me.RawEdge * e.cfg.ShrinkageFactor)
	me.Tier = e.tier(me.RawEdge)
	me.KellyStake = oddsmath.Kelly(prob/100, odds, e.cfg.KellyFraction)
	return me
}

// tier grades the UNSHRUNK edge so that shrinkage changes the published
// number without changing the recommendation.
func (e *Engine) tier(rawEdge float64) Tier {
	switch {
	case rawEdge > e.cfg.StrongCutoff:
		return TierStrong
	case rawEdge > e.cfg.ModerateCutoff:
		return TierModerate
	default:
		return TierAvoid
	}
}

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
