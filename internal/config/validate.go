package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Layouts accepted by FlattenConfig.Layout.
var Layouts = []string{"regions", "entries"}

// Validate checks the flattener settings. Layout is normalized to lower case.
func (f *FlattenConfig) Validate() error {
	f.Layout = strings.ToLower(strings.TrimSpace(f.Layout))
	if !slices.Contains(Layouts, f.Layout) {
		return fmt.Errorf("layout must be one of %s (got %q)", strings.Join(Layouts, ", "), f.Layout)
	}
	if f.SourcePath == "" {
		return errors.New("source_path is required")
	}
	if f.OutputPath == "" {
		return errors.New("output_path is required")
	}
	return nil
}

// Validate checks that both datasets are named and distinct.
func (f *FilterConfig) Validate() error {
	if f.ForenamesPath == "" || f.SurnamesPath == "" {
		return errors.New("forenames_path and surnames_path are required")
	}
	if f.ForenamesPath == f.SurnamesPath {
		return fmt.Errorf("forenames_path and surnames_path must differ (both %q)", f.ForenamesPath)
	}
	return nil
}

// Validate checks the seeder settings.
func (s *SeederConfig) Validate() error {
	if s.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0 (got %d)", s.BatchSize)
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0 (got %s)", s.Timeout)
	}
	return nil
}

// Validate checks that a database connection can be attempted.
func (d DatabaseConfig) Validate() error {
	if strings.TrimSpace(d.DSN) == "" {
		return errors.New("database.dsn is required")
	}
	if d.MaxConns <= 0 {
		return fmt.Errorf("database.max_conns must be > 0 (got %d)", d.MaxConns)
	}
	if d.MinConns < 0 || d.MinConns > d.MaxConns {
		return fmt.Errorf("database.min_conns must be within [0, %d] (got %d)", d.MaxConns, d.MinConns)
	}
	return nil
}
