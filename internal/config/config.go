// Package config provides configuration management for the Gridiron Edge application.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	OddsFeed   OddsFeedConfig   `mapstructure:"odds_feed" validate:"required"`
	Simulation SimulationConfig `mapstructure:"simulation" validate:"required"`
	Engine     EngineConfig     `mapstructure:"engine" validate:"required"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
	Notify     NotifyConfig     `mapstructure:"notify"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// OddsFeedConfig represents the sportsbook odds feed configuration
type OddsFeedConfig struct {
	BaseURL            string  `mapstructure:"base_url" validate:"required,url"`
	APIKey             string  `mapstructure:"api_key"`
	TimeoutSeconds     int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RateLimitPerSecond float64 `mapstructure:"rate_limit_per_second" validate:"required,gt=0"`
	MaxRetries         int     `mapstructure:"max_retries" validate:"gte=0"`
}

// SimulationConfig represents the game simulation service configuration
type SimulationConfig struct {
	URL             string `mapstructure:"url" validate:"required,url"`
	APIKey          string `mapstructure:"api_key"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
	CacheMaxSize    int    `mapstructure:"cache_max_size" validate:"required,gt=0"`
}

// EngineConfig represents edge computation tuning parameters
type EngineConfig struct {
	ShrinkageFactor    float64 `mapstructure:"shrinkage_factor" validate:"gte=0,lte=1"`
	PushThreshold      float64 `mapstructure:"push_threshold" validate:"gte=0"`
	KellyFraction      float64 `mapstructure:"kelly_fraction" validate:"gt=0,lte=1"`
	StrongEdgeCutoff   float64 `mapstructure:"strong_edge_cutoff" validate:"gt=0"`
	ModerateEdgeCutoff float64 `mapstructure:"moderate_edge_cutoff" validate:"gt=0"`
}

// SchedulerConfig holds cron expressions for the background jobs
type SchedulerConfig struct {
	ResolveSchedule     string `mapstructure:"resolve_schedule" validate:"required"`
	EdgeRefreshSchedule string `mapstructure:"edge_refresh_schedule" validate:"required"`
	CleanupSchedule     string `mapstructure:"cleanup_schedule" validate:"required"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// NotifyConfig represents the refresh-signal websocket hub configuration
type NotifyConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
