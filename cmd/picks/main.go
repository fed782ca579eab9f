// Package main provides the operator CLI for the pick store.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/gridiron-edge/internal/committer"
	"github.com/yourusername/gridiron-edge/internal/config"
	"github.com/yourusername/gridiron-edge/internal/database"
	"github.com/yourusername/gridiron-edge/internal/edge"
	applogger "github.com/yourusername/gridiron-edge/internal/logger"
	"github.com/yourusername/gridiron-edge/internal/oddsfeed"
	"github.com/yourusername/gridiron-edge/internal/outcome"
	"github.com/yourusername/gridiron-edge/internal/repository"
	"github.com/yourusername/gridiron-edge/internal/scheduler"
	"github.com/yourusername/gridiron-edge/internal/service"
	"github.com/yourusername/gridiron-edge/internal/simfeed"
)

var (
	configFile      string
	season          int
	week            int
	dryRun          bool
	continueOnError bool

	logger *logrus.Logger
	cfg    *config.Config
	db     *database.DB

	pickRepo      repository.PickRepository
	resolutionSvc *service.ResolutionService
	edgeSvc       *service.EdgeService
	cleanupSvc    *service.CleanupService
	sessionSvc    *service.SessionService
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")

	defaultSeason, defaultWeek := scheduler.NFLWeek(time.Now().UTC())
	resolveCmd.Flags().IntVar(&season, "season", defaultSeason, "Season to resolve")
	resolveCmd.Flags().IntVar(&week, "week", defaultWeek, "Week to resolve")
	edgesCmd.Flags().IntVar(&season, "season", defaultSeason, "Season to refresh")
	edgesCmd.Flags().IntVar(&week, "week", defaultWeek, "Week to refresh")
	dedupeCmd.Flags().BoolVar(&dryRun, "dry-run", false, "List duplicate groups without deleting")
	setCmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "Persist what succeeds instead of rolling back")
}

var rootCmd = &cobra.Command{
	Use:   "picks",
	Short: "Manage the pick store",
	Long:  `Resolve results, refresh edges, clean duplicates, and edit picks.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return setupDependencies(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Settle picks from final scores",
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := resolutionSvc.ResolveWeek(cmd.Context(), season, week)
		if err != nil {
			return err
		}
		fmt.Printf("Resolved %d of %d picks (%d skipped, %d errors) in %v\n",
			summary.Resolved, summary.Examined, summary.Skipped, summary.Errors, summary.Duration)
		return nil
	},
}

var edgesCmd = &cobra.Command{
	Use:   "edges",
	Short: "Recompute edges from current lines and simulations",
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := edgeSvc.RefreshWeek(cmd.Context(), season, week)
		if err != nil {
			return err
		}
		fmt.Printf("Updated edges on %d of %d picks (%d skipped, %d errors) in %v\n",
			summary.Updated, summary.Examined, summary.Skipped, summary.Errors, summary.Duration)
		return nil
	},
}

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Remove duplicate picks, keeping the earliest per game",
	RunE: func(cmd *cobra.Command, args []string) error {
		if dryRun {
			groups, err := cleanupSvc.FindDuplicates(cmd.Context())
			if err != nil {
				return err
			}
			if len(groups) == 0 {
				fmt.Println("No duplicates found")
				return nil
			}
			for _, g := range groups {
				fmt.Printf("%s: keeping %s, would delete %d duplicate(s)\n", g.Key, g.Original.ID, len(g.Duplicates))
			}
			return nil
		}

		report, err := cleanupSvc.RemoveDuplicates(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(report.Summary())
		return nil
	},
}

var setCmd = &cobra.Command{
	Use:   "set <pick-id> <field=value> [field=value...]",
	Short: "Stage and commit field edits on a pick",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid pick id %q: %w", args[0], err)
		}

		fields, err := parseFieldArgs(args[1:])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if err := sessionSvc.Begin(ctx); err != nil {
			return err
		}
		if err := sessionSvc.StageUpdate(id, fields); err != nil {
			return err
		}

		result, err := sessionSvc.Commit(ctx, committer.Options{
			Validate:        true,
			ContinueOnError: continueOnError,
		})
		if err != nil {
			return err
		}

		fmt.Println(result.Summary)
		if !result.Success {
			os.Exit(1)
		}
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <pick-id>",
	Short: "Delete a pick",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid pick id %q: %w", args[0], err)
		}

		ctx := cmd.Context()
		if err := sessionSvc.Begin(ctx); err != nil {
			return err
		}
		if err := sessionSvc.StageDelete(id); err != nil {
			return err
		}

		result, err := sessionSvc.Commit(ctx, committer.Options{Validate: true})
		if err != nil {
			return err
		}

		fmt.Println(result.Summary)
		if !result.Success {
			os.Exit(1)
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check store and feed connectivity",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := db.Ping(ctx); err != nil {
			fmt.Printf("database: unavailable (%v)\n", err)
			return err
		}
		fmt.Println("database: ok")

		simClient := simfeed.NewClient(&cfg.Simulation, logger)
		if err := simClient.HealthCheck(ctx); err != nil {
			fmt.Printf("simulation service: unavailable (%v)\n", err)
		} else {
			fmt.Println("simulation service: ok")
		}

		picks, err := pickRepo.GetPending(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("pending picks: %d\n", len(picks))
		return nil
	},
}

func main() {
	rootCmd.AddCommand(resolveCmd, edgesCmd, dedupeCmd, setCmd, deleteCmd, statusCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}
	return config.Validate(cfg)
}

func setupDependencies(ctx context.Context) error {
	logger = applogger.NewLogger(cfg.App.LogLevel)
	audit := applogger.NewAuditLogger(logger)

	var err error
	db, err = database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	pickRepo = repository.NewPostgresPickRepository(db)

	feedLogger := log.New(os.Stdout, "odds-feed: ", log.LstdFlags)
	httpCfg := oddsfeed.DefaultHTTPClientConfig()
	httpCfg.Timeout = time.Duration(cfg.OddsFeed.TimeoutSeconds) * time.Second
	httpCfg.RateLimit = cfg.OddsFeed.RateLimitPerSecond
	httpCfg.MaxRetries = cfg.OddsFeed.MaxRetries
	oddsClient := oddsfeed.NewClient(
		oddsfeed.NewRateLimitedHTTPClient(httpCfg, feedLogger),
		cfg.OddsFeed.BaseURL, cfg.OddsFeed.APIKey, feedLogger,
	)

	simClient := simfeed.NewCachedClient(&cfg.Simulation, logger)

	resolver := outcome.NewResolver(cfg.Engine.PushThreshold, logger)
	engine := edge.NewEngine(edge.Config{
		ShrinkageFactor: cfg.Engine.ShrinkageFactor,
		KellyFraction:   cfg.Engine.KellyFraction,
		StrongCutoff:    cfg.Engine.StrongEdgeCutoff,
		ModerateCutoff:  cfg.Engine.ModerateEdgeCutoff,
	}, logger)

	resolutionSvc = service.NewResolutionService(pickRepo, oddsClient, resolver, audit, logger)
	edgeSvc = service.NewEdgeService(pickRepo, oddsClient, simClient, engine, logger)
	cleanupSvc = service.NewCleanupService(pickRepo, audit, logger)
	sessionSvc = service.NewSessionService(pickRepo, committer.NewCommitter(pickRepo, nil, logger), audit, logger)

	return nil
}

// parseFieldArgs turns field=value arguments into an update payload, with
// numeric coercion for score, edge, and confidence fields
func parseFieldArgs(args []string) (map[string]interface{}, error) {
	fields := make(map[string]interface{}, len(args))
	for _, arg := range args {
		name, value, found := strings.Cut(arg, "=")
		if !found || name == "" {
			return nil, fmt.Errorf("expected field=value, got %q", arg)
		}

		switch name {
		case "home_score", "away_score":
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("%s must be an integer: %w", name, err)
			}
			fields[name] = n
		case "confidence", "moneyline_edge", "spread_edge", "total_edge":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("%s must be a number: %w", name, err)
			}
			fields[name] = f
		default:
			fields[name] = value
		}
	}
	return fields, nil
}
