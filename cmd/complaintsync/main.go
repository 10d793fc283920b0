package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dwhitena/complaintsync/internal/cfpb"
	"github.com/dwhitena/complaintsync/internal/config"
	"github.com/dwhitena/complaintsync/internal/db"
	"github.com/dwhitena/complaintsync/internal/pipeline"
	"github.com/dwhitena/complaintsync/internal/state"
	"github.com/dwhitena/complaintsync/tools/migrator"
)

func main() {
	// Parse command-line flags
	configFile := flag.String("config", "", "Path to configuration file (TOML)")
	companies := flag.String("companies", "", "Comma-separated company list overriding the configured one")
	reset := flag.Bool("reset", false, "Clear the watermark and exit (next run starts over from start_date)")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Apply command-line overrides before validation
	if *companies != "" {
		cfg.Pipeline.Companies = config.ParseCompanyList(*companies)
	}

	// Initialize structured logger per configuration
	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	slog.Info("starting complaintsync incremental loader")

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("database configuration",
		"path", cfg.Database.Path,
		"migrations_dir", cfg.Database.MigrationsDir)
	slog.Info("pipeline configuration",
		"companies", len(cfg.Pipeline.Companies),
		"start_date", cfg.Pipeline.StartDate)

	// Open destination database
	database, err := db.OpenWithConfig(cfg.Database)
	if err != nil {
		slog.Error("failed to open database", "error", err, "path", cfg.Database.Path)
		os.Exit(1)
	}
	defer database.Close()

	// Run migrations
	if !cfg.Database.SkipMigrations {
		slog.Info("running migrations", "migrations_dir", cfg.Database.MigrationsDir)
		if err := migrator.RunMigrations(database.DB, cfg.Database.MigrationsDir); err != nil {
			slog.Error("failed to run migrations", "error", err, "migrations_dir", cfg.Database.MigrationsDir)
			os.Exit(1)
		}

		version, err := migrator.GetCurrentVersion(database.DB)
		if err != nil {
			slog.Error("failed to get schema version", "error", err)
			os.Exit(1)
		}
		slog.Info("database schema ready", "version", version)
	} else {
		slog.Info("skipping migrations", "reason", "configured to skip")
	}

	// Wire the watermark store over the destination database
	store := state.NewStore(db.NewStateBackend(database), nil)

	if *reset {
		if err := store.Reset(); err != nil {
			slog.Error("failed to reset watermark", "error", err)
			os.Exit(1)
		}
		slog.Info("watermark cleared, next run starts from start_date",
			"start_date", cfg.Pipeline.StartDate)
		return
	}

	startDate, err := cfg.StartDate()
	if err != nil {
		slog.Error("invalid start date", "error", err)
		os.Exit(1)
	}

	// Build the collaborator and the run coordinator
	client := cfpb.NewClient(cfg.API)
	loader := pipeline.NewLoader(client, database)
	runner := pipeline.NewRunner(store, loader, cfg.Pipeline.Companies, startDate, logger)

	// Cancel in-flight extraction on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, runErr := runner.Run(ctx)

	if summary != nil {
		recordRun(database, summary)

		slog.Info("run finished",
			"run_id", summary.RunID,
			"status", summary.Status,
			"date_range", summary.DateRange,
			"successful", summary.Successful,
			"failed", summary.Failed,
			"total_companies", summary.TotalCompanies)
	}

	// Partial per-company failure is reported through the summary, not the
	// exit code. Only run-level configuration/persistence errors are fatal.
	if runErr != nil {
		slog.Error("run failed", "error", runErr)
		os.Exit(1)
	}
}

// newLogger builds a slog logger from the logging configuration
func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// recordRun writes the run summary to the load-run history tables.
// History is observability only, so failures are logged and ignored.
func recordRun(database *db.DB, summary *pipeline.RunSummary) {
	run := &db.LoadRun{
		RunID:          summary.RunID,
		DateMin:        summary.Window.DateMin.Format(time.DateOnly),
		DateMax:        summary.Window.DateMax.Format(time.DateOnly),
		Status:         summary.Status,
		TotalCompanies: summary.TotalCompanies,
		Successful:     summary.Successful,
		Failed:         summary.Failed,
		StartedAt:      summary.StartedAt,
		CompletedAt:    summary.CompletedAt,
	}

	results := make([]db.LoadRunResult, 0, len(summary.Results))
	for _, r := range summary.Results {
		result := db.LoadRunResult{
			RunID:         summary.RunID,
			Company:       r.Company,
			Status:        r.Status,
			RecordsLoaded: r.Info.RecordsLoaded,
		}
		if r.Err != nil {
			msg := r.Err.Error()
			result.Error = &msg
		}
		results = append(results, result)
	}

	if err := database.CreateLoadRun(run, results); err != nil {
		slog.Warn("failed to record run history", "run_id", summary.RunID, "error", err)
	}
}
