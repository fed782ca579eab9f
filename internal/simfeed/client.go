// Package simfeed provides a client for the game simulation service.
package simfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/gridiron-edge/internal/config"
	"github.com/yourusername/gridiron-edge/internal/models"
	"github.com/yourusername/gridiron-edge/internal/teams"
)

// SimSource defines the interface for fetching simulation snapshots
type SimSource interface {
	GetSnapshot(ctx context.Context, homeTeam, awayTeam string, week int) (*models.SimulationSnapshot, error)
}

// Client fetches simulation probabilities over HTTP
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
	logger  *logrus.Logger
}

// NewClient creates a simulation service client
func NewClient(cfg *config.SimulationConfig, logger *logrus.Logger) *Client {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Client{
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		baseURL: cfg.URL,
		apiKey:  cfg.APIKey,
		logger:  logger,
	}
}

// snapshotResponse is the simulation service wire format. All probabilities
// are percentages in [0, 100].
type snapshotResponse struct {
	HomeWin        float64 `json:"home_win"`
	AwayWin        float64 `json:"away_win"`
	FavoriteCover  float64 `json:"favorite_cover"`
	UnderdogCover  float64 `json:"underdog_cover"`
	Over           float64 `json:"over"`
	Under          float64 `json:"under"`
	SimulationRuns int     `json:"simulation_runs"`
}

// GetSnapshot retrieves simulation probabilities for a game
func (c *Client) GetSnapshot(ctx context.Context, homeTeam, awayTeam string, week int) (*models.SimulationSnapshot, error) {
	start := time.Now()

	url := fmt.Sprintf("%s/api/v1/simulations?home=%s&away=%s&week=%d",
		c.baseURL, teams.CanonicalSlug(homeTeam), teams.CanonicalSlug(awayTeam), week)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSimServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrSnapshotNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrSimServiceUnavailable, resp.StatusCode)
	}

	var wire snapshotResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	snapshot := &models.SimulationSnapshot{
		HomeWin:       wire.HomeWin,
		AwayWin:       wire.AwayWin,
		FavoriteCover: wire.FavoriteCover,
		UnderdogCover: wire.UnderdogCover,
		Over:          wire.Over,
		Under:         wire.Under,
	}

	if err := validateSnapshot(snapshot); err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"home":     homeTeam,
		"away":     awayTeam,
		"week":     week,
		"duration": time.Since(start),
	}).Debug("Fetched simulation snapshot")

	return snapshot, nil
}

// HealthCheck checks simulation service health
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSimServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrSimServiceUnavailable, resp.StatusCode)
	}

	return nil
}

func validateSnapshot(s *models.SimulationSnapshot) error {
	for name, v := range map[string]float64{
		"home_win":       s.HomeWin,
		"away_win":       s.AwayWin,
		"favorite_cover": s.FavoriteCover,
		"underdog_cover": s.UnderdogCover,
		"over":           s.Over,
		"under":          s.Under,
	} {
		if v < 0 || v > 100 {
			return fmt.Errorf("%w: %s=%v out of range", ErrInvalidSnapshot, name, v)
		}
	}
	return nil
}
