// Package config provides configuration management for the Gridiron Edge application.
package config

import (
	"os"
	"strings"
	"testing"
)

const (
	validConfigPath              = "testdata/valid_config.yaml"
	expansionConfigPath          = "testdata/expansion_config.yaml"
	expansionConfigMissingPath   = "testdata/expansion_config_missing.yaml"
	nonexistentConfigPath        = "testdata/nonexistent_config.yaml"
	expectedNoErrorLoadingConfig = "expected no error loading config, got %v"
	expectedNoErrorMsg           = "expected no error, got %v"
	expectedNonNilConfig         = "expected non-nil config"
	gridironEdgeName             = "gridiron-edge"
	developmentEnv               = "development"
	invalidEnv                   = "invalid"
	localhostHost                = "localhost"
	postgresPort                 = 5432
	postgresPrefix               = "postgres://"
	testAppName                  = "test-app"
	testDBPassword               = "TEST_DB_PASSWORD"
	testMissingVar               = "TEST_MISSING_VAR"
	expandedSecretValue          = "expanded_secret_value"
)

// TestLoadConfigSuccess tests loading a valid configuration file
func TestLoadConfigSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg == nil {
		t.Fatal(expectedNonNilConfig)
	}

	if cfg.App.Name != gridironEdgeName {
		t.Errorf("expected app name '%s', got '%s'", gridironEdgeName, cfg.App.Name)
	}

	if cfg.App.Environment != developmentEnv {
		t.Errorf("expected environment '%s', got '%s'", developmentEnv, cfg.App.Environment)
	}

	if cfg.Database.Host != localhostHost {
		t.Errorf("expected database host '%s', got '%s'", localhostHost, cfg.Database.Host)
	}

	if cfg.Database.Port != postgresPort {
		t.Errorf("expected database port %d, got %d", postgresPort, cfg.Database.Port)
	}

	if cfg.Engine.ShrinkageFactor != 0.3 {
		t.Errorf("expected shrinkage factor 0.3, got %v", cfg.Engine.ShrinkageFactor)
	}
}

// TestLoadConfigFileNotFound tests handling of missing configuration file
func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := Load(nonexistentConfigPath)
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

// TestLoadConfigEnvironmentVariables tests environment variable override
func TestLoadConfigEnvironmentVariables(t *testing.T) {
	os.Setenv("GRIDIRON_EDGE_APP_NAME", testAppName)
	defer os.Unsetenv("GRIDIRON_EDGE_APP_NAME")

	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.App.Name != testAppName {
		t.Errorf("expected app name '%s' from environment, got '%s'", testAppName, cfg.App.Name)
	}
}

// TestValidateSuccess tests validation of a valid configuration
func TestValidateSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	if err := Validate(cfg); err != nil {
		t.Fatalf("expected no validation error, got %v", err)
	}
}

// TestValidateInvalidEnvironment tests validation of invalid environment
func TestValidateInvalidEnvironment(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.App.Environment = invalidEnv
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for invalid environment")
	}
}

// TestValidateInvalidCronExpression tests validation of a malformed schedule
func TestValidateInvalidCronExpression(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.Scheduler.ResolveSchedule = "every fortnight"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for malformed cron expression")
	}
}

// TestValidateEdgeCutoffOrdering tests the moderate/strong cutoff constraint
func TestValidateEdgeCutoffOrdering(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.Engine.ModerateEdgeCutoff = 12.0
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error when moderate cutoff exceeds strong cutoff")
	}
}

// TestValidateIdleConnectionBound tests the connection pool constraint
func TestValidateIdleConnectionBound(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.Database.MaxIdleConnections = cfg.Database.MaxConnections + 1
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error when idle connections exceed max connections")
	}
}

// TestValidateProductionRequiresSSL tests production SSL enforcement
func TestValidateProductionRequiresSSL(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	cfg.App.Environment = "production"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for production with SSL disabled")
	}
}

// TestGetDatabaseDSN tests DSN generation
func TestGetDatabaseDSN(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	dsn := cfg.GetDatabaseDSN()
	if dsn == "" {
		t.Fatal("expected non-empty DSN")
	}

	if !strings.HasPrefix(dsn, postgresPrefix) {
		t.Errorf("expected DSN to start with '%s', got '%s'", postgresPrefix, dsn)
	}
}

// TestIsDevelopment tests environment check function
func TestIsDevelopment(t *testing.T) {
	cfg := &Config{
		App: AppConfig{Environment: developmentEnv},
	}

	if !cfg.IsDevelopment() {
		t.Error("expected IsDevelopment() to return true")
	}

	if cfg.IsProduction() {
		t.Error("expected IsProduction() to return false")
	}
}

// TestIsProduction tests production environment check
func TestIsProduction(t *testing.T) {
	cfg := &Config{
		App: AppConfig{Environment: "production"},
	}

	if !cfg.IsProduction() {
		t.Error("expected IsProduction() to return true")
	}

	if cfg.IsDevelopment() {
		t.Error("expected IsDevelopment() to return false")
	}
}

// TestIsStaging tests staging environment check
func TestIsStaging(t *testing.T) {
	cfg := &Config{
		App: AppConfig{Environment: "staging"},
	}

	if !cfg.IsStaging() {
		t.Error("expected IsStaging() to return true")
	}

	if cfg.IsDevelopment() {
		t.Error("expected IsDevelopment() to return false")
	}
}

// TestLoadWithDefaults tests that defaults fill in when no file exists
func TestLoadWithDefaults(t *testing.T) {
	cfg, err := LoadWithDefaults(nonexistentConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.App.Environment != developmentEnv {
		t.Errorf("expected default environment '%s', got '%s'", developmentEnv, cfg.App.Environment)
	}

	if cfg.Engine.KellyFraction != 0.25 {
		t.Errorf("expected default kelly fraction 0.25, got %v", cfg.Engine.KellyFraction)
	}

	if cfg.Scheduler.ResolveSchedule == "" {
		t.Error("expected default resolve schedule")
	}
}

// TestLoadConfigEnvironmentVariableExpansion tests environment variable expansion in config file
func TestLoadConfigEnvironmentVariableExpansion(t *testing.T) {
	os.Setenv(testDBPassword, expandedSecretValue)
	defer os.Unsetenv(testDBPassword)

	cfg, err := Load(expansionConfigPath)
	if err != nil {
		t.Fatalf("expected no error loading config with expansion, got %v", err)
	}

	if cfg.Database.Password != expandedSecretValue {
		t.Errorf("expected password '%s' from environment expansion, got '%s'", expandedSecretValue, cfg.Database.Password)
	}
}

// TestLoadConfigMissingEnvironmentVariable tests handling of missing environment variables
func TestLoadConfigMissingEnvironmentVariable(t *testing.T) {
	os.Unsetenv(testMissingVar)

	cfg, err := Load(expansionConfigMissingPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	// os.ExpandEnv replaces unset variables with the empty string
	if cfg.Database.Password != "" {
		t.Errorf("expected empty password for missing env var, got %q", cfg.Database.Password)
	}
}

// TestOverlaySecretsOnConfig tests the secrets overlay behavior
func TestOverlaySecretsOnConfig(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	overlaySecretsOnConfig(cfg, &SecretsOverlay{
		DatabasePassword: "vault-password",
		OddsFeedAPIKey:   "vault-feed-key",
	})

	if cfg.Database.Password != "vault-password" {
		t.Errorf("expected database password from overlay, got %q", cfg.Database.Password)
	}

	if cfg.OddsFeed.APIKey != "vault-feed-key" {
		t.Errorf("expected odds feed API key from overlay, got %q", cfg.OddsFeed.APIKey)
	}

	// Empty secrets must not clobber existing values
	overlaySecretsOnConfig(cfg, &SecretsOverlay{})
	if cfg.Database.Password != "vault-password" {
		t.Error("expected empty overlay to leave existing password intact")
	}
}
