package models

import (
	"time"

	"github.com/google/uuid"
)

// MarketResult represents the settled state of a single betting market
type MarketResult string

const (
	ResultPending MarketResult = "pending"
	ResultWin     MarketResult = "win"
	ResultLoss    MarketResult = "loss"
	ResultPush    MarketResult = "push"
)

// Valid reports whether the value is one of the four allowed result states
func (r MarketResult) Valid() bool {
	switch r {
	case ResultPending, ResultWin, ResultLoss, ResultPush:
		return true
	default:
		return false
	}
}

// Market identifies one of the three independently settled betting markets
type Market string

const (
	MarketMoneyline Market = "moneyline"
	MarketSpread    Market = "spread"
	MarketTotal     Market = "total"
)

// GameInfo holds the scheduling, scoring and market data for a single game
type GameInfo struct {
	HomeTeam      string     `db:"home_team" json:"home_team" validate:"required"`
	AwayTeam      string     `db:"away_team" json:"away_team" validate:"required"`
	Week          int        `db:"week" json:"week" validate:"required,gte=1"`
	Kickoff       time.Time  `db:"kickoff" json:"kickoff"`
	HomeScore     *int       `db:"home_score" json:"home_score"`
	AwayScore     *int       `db:"away_score" json:"away_score"`
	HomeMoneyline float64    `db:"home_moneyline" json:"home_moneyline"`
	AwayMoneyline float64    `db:"away_moneyline" json:"away_moneyline"`
	SpreadOdds    float64    `db:"spread_odds" json:"spread_odds"`
	OverOdds      float64    `db:"over_odds" json:"over_odds"`
	UnderOdds     float64    `db:"under_odds" json:"under_odds"`
	SpreadLine    *float64   `db:"spread_line" json:"spread_line"`
	TotalLine     *float64   `db:"total_line" json:"total_line"`
}

// HasScores reports whether both final scores have been entered
func (g *GameInfo) HasScores() bool {
	return g.HomeScore != nil && g.AwayScore != nil
}

// SimulationSnapshot captures the externally produced simulation probabilities
// for a game. All values are on a 0-100 scale; zero means "not available".
type SimulationSnapshot struct {
	HomeWin       float64 `db:"sim_home_win" json:"home_win"`
	AwayWin       float64 `db:"sim_away_win" json:"away_win"`
	FavoriteCover float64 `db:"sim_favorite_cover" json:"favorite_cover"`
	UnderdogCover float64 `db:"sim_underdog_cover" json:"underdog_cover"`
	Over          float64 `db:"sim_over" json:"over"`
	Under         float64 `db:"sim_under" json:"under"`
}

// Pick represents a tracked prediction against a single game. The three
// markets carry independent prediction texts, results and edges; a pick can
// win the moneyline and lose the spread at the same time.
type Pick struct {
	ID            uuid.UUID          `db:"id" json:"id" validate:"required"`
	Game          GameInfo           `db:"game" json:"game"`
	MoneylinePick string             `db:"moneyline_pick" json:"moneyline_pick"`
	SpreadPick    string             `db:"spread_pick" json:"spread_pick"`
	TotalPick     string             `db:"total_pick" json:"total_pick"`
	Confidence    float64            `db:"confidence" json:"confidence" validate:"gte=0,lte=100"`
	Result        MarketResult       `db:"result" json:"result" validate:"required"`
	ATSResult     MarketResult       `db:"ats_result" json:"ats_result" validate:"required"`
	OUResult      MarketResult       `db:"ou_result" json:"ou_result" validate:"required"`
	MoneylineEdge float64            `db:"moneyline_edge" json:"moneyline_edge"`
	SpreadEdge    float64            `db:"spread_edge" json:"spread_edge"`
	TotalEdge     float64            `db:"total_edge" json:"total_edge"`
	Simulation    SimulationSnapshot `db:"simulation" json:"simulation"`
	CreatedAt     time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `db:"updated_at" json:"updated_at"`
}

// NewPick creates a pending pick for a game
func NewPick(game GameInfo) *Pick {
	now := time.Now().UTC()
	return &Pick{
		ID:        uuid.New(),
		Game:      game,
		Result:    ResultPending,
		ATSResult: ResultPending,
		OUResult:  ResultPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy of the pick. Pointer fields are duplicated so the
// copy survives later mutation of the original.
func (p *Pick) Clone() *Pick {
	c := *p
	if p.Game.HomeScore != nil {
		v := *p.Game.HomeScore
		c.Game.HomeScore = &v
	}
	if p.Game.AwayScore != nil {
		v := *p.Game.AwayScore
		c.Game.AwayScore = &v
	}
	if p.Game.SpreadLine != nil {
		v := *p.Game.SpreadLine
		c.Game.SpreadLine = &v
	}
	if p.Game.TotalLine != nil {
		v := *p.Game.TotalLine
		c.Game.TotalLine = &v
	}
	return &c
}

// IsSettled reports whether all three markets have left the pending state
func (p *Pick) IsSettled() bool {
	return p.Result != ResultPending && p.ATSResult != ResultPending && p.OUResult != ResultPending
}
