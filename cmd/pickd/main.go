// Package main provides the entry point for the pick resolution daemon.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/gridiron-edge/internal/config"
	"github.com/yourusername/gridiron-edge/internal/database"
	"github.com/yourusername/gridiron-edge/internal/edge"
	"github.com/yourusername/gridiron-edge/internal/health"
	applogger "github.com/yourusername/gridiron-edge/internal/logger"
	"github.com/yourusername/gridiron-edge/internal/metrics"
	"github.com/yourusername/gridiron-edge/internal/notify"
	"github.com/yourusername/gridiron-edge/internal/oddsfeed"
	"github.com/yourusername/gridiron-edge/internal/outcome"
	"github.com/yourusername/gridiron-edge/internal/repository"
	"github.com/yourusername/gridiron-edge/internal/scheduler"
	"github.com/yourusername/gridiron-edge/internal/service"
	"github.com/yourusername/gridiron-edge/internal/simfeed"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	configPath := os.Getenv("GRIDIRON_EDGE_CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.LoadWithDefaults(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Load AWS secrets if enabled
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLog := applogger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
		"version":     Version,
	}).Info("Gridiron Edge daemon starting")

	metrics.InitRegistry()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.InitSchema(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to initialize schema")
	}
	appLog.Info("Database connection established")

	pickRepo := repository.NewPostgresPickRepository(db)
	audit := applogger.NewAuditLogger(appLog)

	// Odds feed client
	feedLogger := log.New(os.Stdout, "odds-feed: ", log.LstdFlags)
	httpCfg := oddsfeed.DefaultHTTPClientConfig()
	httpCfg.Timeout = time.Duration(cfg.OddsFeed.TimeoutSeconds) * time.Second
	httpCfg.RateLimit = cfg.OddsFeed.RateLimitPerSecond
	httpCfg.MaxRetries = cfg.OddsFeed.MaxRetries
	httpClient := oddsfeed.NewRateLimitedHTTPClient(httpCfg, feedLogger)
	defer httpClient.Close()
	oddsClient := oddsfeed.NewClient(httpClient, cfg.OddsFeed.BaseURL, cfg.OddsFeed.APIKey, feedLogger)

	// Simulation feed with snapshot cache
	simClient := simfeed.NewCachedClient(&cfg.Simulation, appLog)

	resolver := outcome.NewResolver(cfg.Engine.PushThreshold, appLog)
	engine := edge.NewEngine(edge.Config{
		ShrinkageFactor: cfg.Engine.ShrinkageFactor,
		KellyFraction:   cfg.Engine.KellyFraction,
		StrongCutoff:    cfg.Engine.StrongEdgeCutoff,
		ModerateCutoff:  cfg.Engine.ModerateEdgeCutoff,
	}, appLog)

	resolutionSvc := service.NewResolutionService(pickRepo, oddsClient, resolver, audit, appLog)
	edgeSvc := service.NewEdgeService(pickRepo, oddsClient, simClient, engine, appLog)
	cleanupSvc := service.NewCleanupService(pickRepo, audit, appLog)

	sched := scheduler.NewScheduler(resolutionSvc, edgeSvc, cleanupSvc, scheduler.NFLWeek, appLog)
	if err := sched.ScheduleResolution(cfg.Scheduler.ResolveSchedule); err != nil {
		appLog.WithError(err).Fatal("Failed to schedule resolution job")
	}
	if err := sched.ScheduleEdgeRefresh(cfg.Scheduler.EdgeRefreshSchedule); err != nil {
		appLog.WithError(err).Fatal("Failed to schedule edge refresh job")
	}
	if err := sched.ScheduleCleanup(cfg.Scheduler.CleanupSchedule); err != nil {
		appLog.WithError(err).Fatal("Failed to schedule cleanup job")
	}

	// Health server also hosts metrics and the refresh-signal hub
	hub := notify.NewHub(appLog)
	defer hub.Close()

	handlers := map[string]http.Handler{}
	if cfg.Metrics.Enabled {
		handlers[cfg.Metrics.Path] = metrics.Handler()
	}
	if cfg.Notify.Enabled {
		handlers[cfg.Notify.Path] = hub
	}

	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Port:        fmt.Sprintf("%d", cfg.Metrics.Port),
		Logger:      appLog,
		DB:          db,
		Handlers:    handlers,
	})
	if err := healthServer.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start health server")
	}

	if err := sched.Start(); err != nil {
		appLog.WithError(err).Fatal("Failed to start scheduler")
	}
	healthServer.SetReady(true)

	appLog.WithFields(logrus.Fields{
		"resolve_schedule":      cfg.Scheduler.ResolveSchedule,
		"edge_refresh_schedule": cfg.Scheduler.EdgeRefreshSchedule,
		"cleanup_schedule":      cfg.Scheduler.CleanupSchedule,
		"next_run":              sched.GetNextRun(),
	}).Info("Daemon running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	appLog.WithField("signal", sig).Info("Shutdown signal received")

	healthServer.SetReady(false)
	cancel()

	if err := sched.Stop(); err != nil {
		appLog.WithError(err).Error("Error during scheduler shutdown")
	}

	appLog.Info("Gridiron Edge daemon shut down successfully")
}
