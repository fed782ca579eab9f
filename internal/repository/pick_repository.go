package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/gridiron-edge/internal/database"
	"github.com/yourusername/gridiron-edge/internal/models"
)

const pickColumns = `id, home_team, away_team, week, kickoff, home_score, away_score,
	       home_moneyline, away_moneyline, spread_odds, over_odds, under_odds,
	       spread_line, total_line,
	       moneyline_pick, spread_pick, total_pick, confidence,
	       result, ats_result, ou_result,
	       moneyline_edge, spread_edge, total_edge,
	       sim_home_win, sim_away_win, sim_favorite_cover, sim_underdog_cover, sim_over, sim_under,
	       created_at, updated_at`

// fieldColumns maps updatable field names to their columns. Only whitelisted
// fields are ever interpolated into SQL.
var fieldColumns = map[string]string{
	"result":         "result",
	"ats_result":     "ats_result",
	"ou_result":      "ou_result",
	"confidence":     "confidence",
	"moneyline_pick": "moneyline_pick",
	"spread_pick":    "spread_pick",
	"total_pick":     "total_pick",
	"home_score":     "home_score",
	"away_score":     "away_score",
	"moneyline_edge": "moneyline_edge",
	"spread_edge":    "spread_edge",
	"total_edge":     "total_edge",
}

// PostgresPickRepository implements PickRepository for PostgreSQL
type PostgresPickRepository struct {
	db *database.DB
}

// NewPostgresPickRepository creates a new pick repository
func NewPostgresPickRepository(db *database.DB) PickRepository {
	return &PostgresPickRepository{db: db}
}

// Create inserts a new pick
func (r *PostgresPickRepository) Create(ctx context.Context, pick *models.Pick) error {
	query := `
		INSERT INTO picks (id, home_team, away_team, week, kickoff, home_score, away_score,
		                   home_moneyline, away_moneyline, spread_odds, over_odds, under_odds,
		                   spread_line, total_line,
		                   moneyline_pick, spread_pick, total_pick, confidence,
		                   result, ats_result, ou_result,
		                   moneyline_edge, spread_edge, total_edge,
		                   sim_home_win, sim_away_win, sim_favorite_cover, sim_underdog_cover, sim_over, sim_under,
		                   created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
		        $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32)
	`

	g := pick.Game
	s := pick.Simulation
	_, err := r.db.GetPool().Exec(ctx, query,
		pick.ID, g.HomeTeam, g.AwayTeam, g.Week, g.Kickoff, g.HomeScore, g.AwayScore,
		g.HomeMoneyline, g.AwayMoneyline, g.SpreadOdds, g.OverOdds, g.UnderOdds,
		g.SpreadLine, g.TotalLine,
		pick.MoneylinePick, pick.SpreadPick, pick.TotalPick, pick.Confidence,
		pick.Result, pick.ATSResult, pick.OUResult,
		pick.MoneylineEdge, pick.SpreadEdge, pick.TotalEdge,
		s.HomeWin, s.AwayWin, s.FavoriteCover, s.UnderdogCover, s.Over, s.Under,
		pick.CreatedAt, pick.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create pick: %w", err)
	}

	return nil
}

// GetByID retrieves a pick by ID
func (r *PostgresPickRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Pick, error) {
	query := fmt.Sprintf(`SELECT %s FROM picks WHERE id = $1`, pickColumns)

	pick, err := scanPick(r.db.GetPool().QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pick: %w", err)
	}

	return pick, nil
}

// GetAll retrieves every pick ordered by creation time
func (r *PostgresPickRepository) GetAll(ctx context.Context) ([]*models.Pick, error) {
	query := fmt.Sprintf(`SELECT %s FROM picks ORDER BY created_at ASC`, pickColumns)
	return r.queryPicks(ctx, query)
}

// GetByWeek retrieves all picks for a given week
func (r *PostgresPickRepository) GetByWeek(ctx context.Context, week int) ([]*models.Pick, error) {
	query := fmt.Sprintf(`SELECT %s FROM picks WHERE week = $1 ORDER BY created_at ASC`, pickColumns)
	return r.queryPicks(ctx, query, week)
}

// GetPending retrieves picks with at least one unsettled market
func (r *PostgresPickRepository) GetPending(ctx context.Context) ([]*models.Pick, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM picks
		WHERE result = 'pending' OR ats_result = 'pending' OR ou_result = 'pending'
		ORDER BY created_at ASC`, pickColumns)
	return r.queryPicks(ctx, query)
}

// UpdateFields updates a whitelisted subset of pick fields
func (r *PostgresPickRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	setClauses := make([]string, 0, len(fields)+1)
	args := make([]interface{}, 0, len(fields)+1)
	args = append(args, id)

	for name, value := range fields {
		column, ok := fieldColumns[name]
		if !ok {
			return fmt.Errorf("%w: %s", models.ErrUnknownField, name)
		}
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	setClauses = append(setClauses, "updated_at = NOW()")

	query := fmt.Sprintf(`UPDATE picks SET %s WHERE id = $1`, strings.Join(setClauses, ", "))
	tag, err := r.db.GetPool().Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update pick: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// Delete removes a pick
func (r *PostgresPickRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.GetPool().Exec(ctx, `DELETE FROM picks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete pick: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

func (r *PostgresPickRepository) queryPicks(ctx context.Context, query string, args ...interface{}) ([]*models.Pick, error) {
	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query picks: %w", err)
	}
	defer rows.Close()

	var picks []*models.Pick
	for rows.Next() {
		pick, err := scanPick(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pick: %w", err)
		}
		picks = append(picks, pick)
	}

	return picks, rows.Err()
}

func scanPick(row pgx.Row) (*models.Pick, error) {
	pick := &models.Pick{}
	g := &pick.Game
	s := &pick.Simulation
	err := row.Scan(
		&pick.ID, &g.HomeTeam, &g.AwayTeam, &g.Week, &g.Kickoff, &g.HomeScore, &g.AwayScore,
		&g.HomeMoneyline, &g.AwayMoneyline, &g.SpreadOdds, &g.OverOdds, &g.UnderOdds,
		&g.SpreadLine, &g.TotalLine,
		&pick.MoneylinePick, &pick.SpreadPick, &pick.TotalPick, &pick.Confidence,
		&pick.Result, &pick.ATSResult, &pick.OUResult,
		&pick.MoneylineEdge, &pick.SpreadEdge, &pick.TotalEdge,
		&s.HomeWin, &s.AwayWin, &s.FavoriteCover, &s.UnderdogCover, &s.Over, &s.Under,
		&pick.CreatedAt, &pick.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return pick, nil
}
