// Command filter restricts the forenames and surnames CSV datasets to the
// countries present in both, rewriting each file in place.
// When the datasets share no country, neither file is touched.
//
// Flags:
//
//	--config     path to YAML config file (default: CONFIG_PATH or ./config.yaml)
//	--forenames  forenames CSV (overrides filter.forenames_path)
//	--surnames   surnames CSV (overrides filter.surnames_path)
//
// Exit codes: 0 = success, 1 = config error, 2 = source not found,
// 3 = parse failure, 4 = output write failure, 5 = no common country.
package main

import (
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/heartmarshall/familytree-names/internal/app"
	"github.com/heartmarshall/familytree-names/internal/app/reconcile"
	"github.com/heartmarshall/familytree-names/internal/config"
	"github.com/heartmarshall/familytree-names/internal/domain"
)

func main() {
	configFlag := flag.String("config", "", "path to YAML config file")
	forenamesFlag := flag.String("forenames", "", "forenames CSV file")
	surnamesFlag := flag.String("surnames", "", "surnames CSV file")
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if *forenamesFlag != "" {
		cfg.Filter.ForenamesPath = *forenamesFlag
	}
	if *surnamesFlag != "" {
		cfg.Filter.SurnamesPath = *surnamesFlag
	}
	if err := cfg.Filter.Validate(); err != nil {
		log.Fatalf("invalid flags: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	res, err := reconcile.Reconcile(cfg.Filter.ForenamesPath, cfg.Filter.SurnamesPath)
	switch {
	case errors.Is(err, domain.ErrEmptyIntersection):
		logger.Warn("no common countries, files left unchanged",
			slog.String("outcome", app.Outcome(err)),
			slog.String("forenames", cfg.Filter.ForenamesPath),
			slog.String("surnames", cfg.Filter.SurnamesPath),
		)
		os.Exit(app.ExitCode(err))
	case err != nil:
		logger.Error("filter failed",
			slog.String("outcome", app.Outcome(err)),
			slog.String("error", err.Error()),
		)
		os.Exit(app.ExitCode(err))
	}

	attrs := []any{
		slog.String("outcome", app.Outcome(nil)),
		slog.Int("common_countries", len(res.Common)),
	}
	for i, f := range res.Files {
		attrs = append(attrs, slog.Group([]string{"forenames", "surnames"}[i],
			slog.String("path", f.Path),
			slog.Int("rows", f.Rows),
			slog.Int("kept", f.Kept),
		))
	}
	logger.Info("filter completed", attrs...)
}
