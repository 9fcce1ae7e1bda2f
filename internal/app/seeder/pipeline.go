package seeder

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/heartmarshall/familytree-names/internal/app/seeder/namecsv"
	"github.com/heartmarshall/familytree-names/internal/config"
	"github.com/heartmarshall/familytree-names/internal/domain"
)

// allPhases defines the canonical execution order.
var allPhases = []string{domain.DatasetForenames.String(), domain.DatasetSurnames.String()}

// PhaseResult holds the outcome of a single pipeline phase.
type PhaseResult struct {
	Parsed   int
	Inserted int
	Skipped  int
	Duration time.Duration
	Err      error
}

// Pipeline orchestrates loading the forename and surname datasets.
type Pipeline struct {
	log       *slog.Logger
	repo      NameCatalogRepo
	cfg       config.SeederConfig
	results   map[string]PhaseResult
	unmatched []string
}

// NewPipeline creates a new Pipeline.
func NewPipeline(log *slog.Logger, repo NameCatalogRepo, cfg config.SeederConfig) *Pipeline {
	return &Pipeline{
		log:     log,
		repo:    repo,
		cfg:     cfg,
		results: make(map[string]PhaseResult),
	}
}

// Results returns phase results after Run completes.
func (p *Pipeline) Results() map[string]PhaseResult {
	return p.results
}

// Unmatched returns the countries stored in only one of the two tables,
// as found by the check after a full run.
func (p *Pipeline) Unmatched() []string {
	return p.unmatched
}

// HasErrors returns true if any phase recorded an error.
func (p *Pipeline) HasErrors() bool {
	for _, r := range p.results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

// Run executes the pipeline. If phases is non-empty, only the listed phases
// run, still in canonical order. A failing phase does not stop the others.
func (p *Pipeline) Run(ctx context.Context, phases []string) error {
	toRun := allPhases
	if len(phases) > 0 {
		for _, ph := range phases {
			if !slices.Contains(allPhases, ph) {
				return fmt.Errorf("unknown phase %q: %w", ph, domain.ErrValidation)
			}
		}
		toRun = slices.DeleteFunc(slices.Clone(allPhases), func(ph string) bool {
			return !slices.Contains(phases, ph)
		})
	}

	for _, phase := range toRun {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		p.log.Info("starting phase", slog.String("phase", phase))

		var result PhaseResult
		switch domain.Dataset(phase) {
		case domain.DatasetForenames:
			result = p.runForenames(ctx)
		case domain.DatasetSurnames:
			result = p.runSurnames(ctx)
		}
		result.Duration = time.Since(start)
		p.results[phase] = result

		if result.Err != nil {
			p.log.Warn("phase failed",
				slog.String("phase", phase),
				slog.String("error", result.Err.Error()),
				slog.Duration("duration", result.Duration),
			)
		} else {
			p.log.Info("phase completed",
				slog.String("phase", phase),
				slog.Int("parsed", result.Parsed),
				slog.Int("inserted", result.Inserted),
				slog.Int("skipped", result.Skipped),
				slog.Duration("duration", result.Duration),
			)
		}
	}

	if len(toRun) == len(allPhases) && !p.cfg.DryRun && !p.HasErrors() {
		if err := p.checkCountries(ctx); err != nil {
			p.log.Warn("country check failed", slog.String("error", err.Error()))
		}
	}

	p.log.Info("pipeline completed", slog.Int("phases_run", len(toRun)))
	return nil
}

func (p *Pipeline) runForenames(ctx context.Context) PhaseResult {
	names, err := namecsv.ParseForenamesFile(p.cfg.ForenamesPath)
	if err != nil {
		return PhaseResult{Err: err}
	}
	return load(ctx, p, names, p.repo.BulkInsertForenames, p.repo.ReplaceForenames)
}

func (p *Pipeline) runSurnames(ctx context.Context) PhaseResult {
	names, err := namecsv.ParseSurnamesFile(p.cfg.SurnamesPath)
	if err != nil {
		return PhaseResult{Err: err}
	}
	return load(ctx, p, names, p.repo.BulkInsertSurnames, p.repo.ReplaceSurnames)
}

// load writes parsed records either batch by batch or, in replace mode, as
// one table replacement.
func load[T any](
	ctx context.Context,
	p *Pipeline,
	names []T,
	insert func(context.Context, []T) (int, error),
	replace func(context.Context, []T) (int, error),
) PhaseResult {
	result := PhaseResult{Parsed: len(names)}

	if p.cfg.DryRun {
		result.Skipped = len(names)
		return result
	}

	var (
		inserted int
		err      error
	)
	if p.cfg.Replace {
		inserted, err = replace(ctx, names)
	} else {
		inserted, err = batchProcess(names, p.cfg.BatchSize, func(batch []T) (int, error) {
			return insert(ctx, batch)
		})
	}
	if err != nil {
		result.Err = fmt.Errorf("insert: %w", err)
		return result
	}

	result.Inserted = inserted
	result.Skipped = len(names) - inserted
	return result
}

// checkCountries compares stored countries of both tables and warns about
// countries that only one of them covers.
func (p *Pipeline) checkCountries(ctx context.Context) error {
	forenames, err := p.repo.CountByCountry(ctx, domain.DatasetForenames)
	if err != nil {
		return fmt.Errorf("count forenames: %w", err)
	}
	surnames, err := p.repo.CountByCountry(ctx, domain.DatasetSurnames)
	if err != nil {
		return fmt.Errorf("count surnames: %w", err)
	}

	var unmatched []string
	for c := range forenames {
		if _, ok := surnames[c]; !ok {
			unmatched = append(unmatched, c)
		}
	}
	for c := range surnames {
		if _, ok := forenames[c]; !ok {
			unmatched = append(unmatched, c)
		}
	}
	slices.Sort(unmatched)
	p.unmatched = unmatched

	if len(unmatched) > 0 {
		p.log.Warn("countries present in only one table",
			slog.Any("countries", unmatched),
			slog.Int("forename_countries", len(forenames)),
			slog.Int("surname_countries", len(surnames)),
		)
	}
	return nil
}

// batchProcess splits items into batches and processes each via fn.
func batchProcess[T any](items []T, batchSize int, fn func([]T) (int, error)) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = 500
	}

	total := 0
	for i := 0; i < len(items); i += batchSize {
		end := min(i+batchSize, len(items))
		n, err := fn(items[i:end])
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
