// Package oddsfeed fetches game lines, prices, and final scores from an
// external sportsbook feed and normalizes them into the application's models.
package oddsfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/gridiron-edge/internal/metrics"
	"github.com/yourusername/gridiron-edge/internal/models"
)

const feedName = "odds_feed"

// OddsSource defines the interface for fetching game data from the feed
type OddsSource interface {
	// FetchWeek retrieves all games and their current lines for a week
	FetchWeek(ctx context.Context, season, week int) ([]GameUpdate, error)

	// FetchScores retrieves games with final scores for a week
	FetchScores(ctx context.Context, season, week int) ([]GameUpdate, error)

	// Name returns the name of the feed
	Name() string
}

// GameUpdate represents a normalized game record from the feed
type GameUpdate struct {
	SourceID string          `json:"source_id"`
	Final    bool            `json:"final"`
	Info     models.GameInfo `json:"info"`
}

// feedGame is the provider's wire format
type feedGame struct {
	ID        string    `json:"id"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	Week      int       `json:"week"`
	Kickoff   time.Time `json:"kickoff"`
	Completed bool      `json:"completed"`
	HomeScore *int      `json:"home_score"`
	AwayScore *int      `json:"away_score"`
	Odds      feedOdds  `json:"odds"`
}

// feedOdds carries American prices and point lines. The provider serializes
// point lines as strings to avoid float drift, so they are parsed with decimal.
type feedOdds struct {
	HomeMoneyline int    `json:"home_moneyline"`
	AwayMoneyline int    `json:"away_moneyline"`
	Spread        string `json:"spread"`
	SpreadOdds    int    `json:"spread_odds"`
	Total         string `json:"total"`
	OverOdds      int    `json:"over_odds"`
	UnderOdds     int    `json:"under_odds"`
}

// Client fetches odds and scores over HTTP
type Client struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	logger     *log.Logger
}

// NewClient creates an odds feed client
func NewClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		logger:     logger,
	}
}

// Name returns the name of the feed
func (c *Client) Name() string {
	return feedName
}

// FetchWeek retrieves all games and their current lines for a week
func (c *Client) FetchWeek(ctx context.Context, season, week int) ([]GameUpdate, error) {
	url := fmt.Sprintf("%s/v1/games?season=%d&week=%d", c.baseURL, season, week)
	return c.fetch(ctx, url)
}

// FetchScores retrieves games with final scores for a week
func (c *Client) FetchScores(ctx context.Context, season, week int) ([]GameUpdate, error) {
	url := fmt.Sprintf("%s/v1/scores?season=%d&week=%d", c.baseURL, season, week)
	return c.fetch(ctx, url)
}

func (c *Client) fetch(ctx context.Context, url string) ([]GameUpdate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewFeedError(feedName, ErrCodeNetworkError, "failed to create request", err)
	}

	if c.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		metrics.FeedRequestsTotal.WithLabelValues(feedName, "error").Inc()
		return nil, NewFeedError(feedName, ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	metrics.FeedRequestsTotal.WithLabelValues(feedName, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, NewFeedError(feedName, ErrCodeAuthenticationFailed, "invalid API key", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewFeedError(feedName, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	case resp.StatusCode == http.StatusNotFound:
		return nil, NewFeedError(feedName, ErrCodeNotFound, "no games for requested week", nil)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return nil, NewFeedError(feedName, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var games []feedGame
	if err := json.NewDecoder(resp.Body).Decode(&games); err != nil {
		return nil, NewFeedError(feedName, ErrCodeInvalidData, "failed to parse response", err)
	}

	updates := make([]GameUpdate, 0, len(games))
	for _, g := range games {
		update, err := normalizeGame(g)
		if err != nil {
			c.logger.Printf("Skipping malformed game %s: %v", g.ID, err)
			continue
		}
		updates = append(updates, update)
	}

	return updates, nil
}

func normalizeGame(g feedGame) (GameUpdate, error) {
	if g.HomeTeam == "" || g.AwayTeam == "" {
		return GameUpdate{}, fmt.Errorf("missing team names")
	}

	info := models.GameInfo{
		HomeTeam:      g.HomeTeam,
		AwayTeam:      g.AwayTeam,
		Week:          g.Week,
		Kickoff:       g.Kickoff,
		HomeScore:     g.HomeScore,
		AwayScore:     g.AwayScore,
		HomeMoneyline: float64(g.Odds.HomeMoneyline),
		AwayMoneyline: float64(g.Odds.AwayMoneyline),
		SpreadOdds:    float64(g.Odds.SpreadOdds),
		OverOdds:      float64(g.Odds.OverOdds),
		UnderOdds:     float64(g.Odds.UnderOdds),
	}

	spread, err := parseLine(g.Odds.Spread)
	if err != nil {
		return GameUpdate{}, fmt.Errorf("bad spread %q: %w", g.Odds.Spread, err)
	}
	info.SpreadLine = spread

	total, err := parseLine(g.Odds.Total)
	if err != nil {
		return GameUpdate{}, fmt.Errorf("bad total %q: %w", g.Odds.Total, err)
	}
	info.TotalLine = total

	return GameUpdate{
		SourceID: g.ID,
		Final:    g.Completed,
		Info:     info,
	}, nil
}

// parseLine parses a point line like "-3.5" or "44.5". Empty means no line.
func parseLine(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	v := d.InexactFloat64()
	return &v, nil
}
