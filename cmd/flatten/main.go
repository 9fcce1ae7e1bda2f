// Command flatten converts a hierarchical name document (country → region
// blocks → name entries) into a CSV file with every field quoted.
//
// Flags:
//
//	--config  path to YAML config file (default: CONFIG_PATH or ./config.yaml)
//	--source  JSON document to read (overrides flatten.source_path)
//	--output  CSV file to write (overrides flatten.output_path)
//	--layout  "regions" or "entries" (overrides flatten.layout)
//
// Exit codes: 0 = success, 1 = config error, 2 = source not found,
// 3 = parse failure, 4 = output write failure.
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/heartmarshall/familytree-names/internal/app"
	"github.com/heartmarshall/familytree-names/internal/app/flatten"
	"github.com/heartmarshall/familytree-names/internal/config"
)

func main() {
	configFlag := flag.String("config", "", "path to YAML config file")
	sourceFlag := flag.String("source", "", "hierarchical JSON document to read")
	outputFlag := flag.String("output", "", "CSV file to write")
	layoutFlag := flag.String("layout", "", "document layout: regions or entries")
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// CLI flags override config.
	if *sourceFlag != "" {
		cfg.Flatten.SourcePath = *sourceFlag
	}
	if *outputFlag != "" {
		cfg.Flatten.OutputPath = *outputFlag
	}
	if *layoutFlag != "" {
		cfg.Flatten.Layout = *layoutFlag
	}
	if err := cfg.Flatten.Validate(); err != nil {
		log.Fatalf("invalid flags: %v", err)
	}

	logger := app.NewLogger(cfg.Log)
	logger.Debug("starting flatten", slog.String("version", app.BuildVersion()))

	layout, err := flatten.ParseLayout(cfg.Flatten.Layout)
	if err != nil {
		log.Fatalf("invalid layout: %v", err)
	}

	start := time.Now()
	stats, err := flatten.Convert(cfg.Flatten.SourcePath, cfg.Flatten.OutputPath, layout)
	if err != nil {
		logger.Error("flatten failed",
			slog.String("outcome", app.Outcome(err)),
			slog.String("source", cfg.Flatten.SourcePath),
			slog.String("error", err.Error()),
		)
		os.Exit(app.ExitCode(err))
	}

	logger.Info("flatten completed",
		slog.String("outcome", app.Outcome(nil)),
		slog.String("output", cfg.Flatten.OutputPath),
		slog.Int("countries", stats.Countries),
		slog.Int("entries", stats.Entries),
		slog.Int("written", stats.Written),
		slog.Int("skipped", stats.Skipped),
		slog.Duration("duration", time.Since(start)),
	)
}
