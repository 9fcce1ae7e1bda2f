// Command seeder loads the reconciled forenames and surnames datasets into
// the name catalog database. It is intended to be run after filter.
//
// Flags:
//
//	--config   path to YAML config file (default: CONFIG_PATH or ./config.yaml)
//	--phase    comma-separated list of phases to run: forenames, surnames (default: all)
//	--dry-run  parse datasets without writing to DB
//	--replace  replace table contents instead of adding to them
//	--migrate  apply database migrations before seeding
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/heartmarshall/familytree-names/internal/adapter/postgres"
	"github.com/heartmarshall/familytree-names/internal/adapter/postgres/names"
	"github.com/heartmarshall/familytree-names/internal/app"
	"github.com/heartmarshall/familytree-names/internal/app/seeder"
	"github.com/heartmarshall/familytree-names/internal/config"
)

// Compile-time interface assertion.
var _ seeder.NameCatalogRepo = (*names.Repo)(nil)

func main() {
	configFlag := flag.String("config", "", "path to YAML config file")
	phaseFlag := flag.String("phase", "", "comma-separated phases to run (default: all)")
	dryRunFlag := flag.Bool("dry-run", false, "parse datasets without writing to DB")
	replaceFlag := flag.Bool("replace", false, "replace table contents instead of adding to them")
	migrateFlag := flag.Bool("migrate", false, "apply database migrations before seeding")
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)
	logger.Info("starting seeder", slog.String("version", app.BuildVersion()))

	// CLI flags override config.
	if *dryRunFlag {
		cfg.Seeder.DryRun = true
	}
	if *replaceFlag {
		cfg.Seeder.Replace = true
	}

	var phases []string
	if *phaseFlag != "" {
		phases = strings.Split(*phaseFlag, ",")
		for i := range phases {
			phases[i] = strings.TrimSpace(phases[i])
		}
	}

	if err := cfg.Seeder.Validate(); err != nil {
		logger.Error("invalid seeder config", slog.String("error", err.Error()))
		os.Exit(app.ExitFailure)
	}
	if err := cfg.Database.Validate(); err != nil {
		logger.Error("invalid database config", slog.String("error", err.Error()))
		os.Exit(app.ExitFailure)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Seeder.Timeout)
	defer cancel()

	if *migrateFlag {
		results, err := postgres.Migrate(ctx, cfg.Database.DSN)
		if err != nil {
			logger.Error("migrate database", slog.String("error", err.Error()))
			os.Exit(app.ExitFailure)
		}
		logger.Info("migrations applied", slog.Int("count", len(results)))
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(app.ExitFailure)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool)
	repo := names.New(pool, txm, cfg.Seeder.BatchSize)

	pipeline := seeder.NewPipeline(logger, repo, cfg.Seeder)
	if err := pipeline.Run(ctx, phases); err != nil {
		logger.Error("pipeline failed",
			slog.String("outcome", app.Outcome(err)),
			slog.String("error", err.Error()),
		)
		pool.Close()
		os.Exit(app.ExitFailure)
	}

	if pipeline.HasErrors() {
		logger.Warn("pipeline completed with errors", slog.String("outcome", "failure"))
		pool.Close()
		os.Exit(app.ExitFailure)
	}

	logger.Info("pipeline completed successfully", slog.String("outcome", app.Outcome(nil)))
}
