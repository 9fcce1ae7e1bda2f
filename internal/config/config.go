package config

import "time"

// Config is the root configuration shared by all name dataset tools.
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Flatten  FlattenConfig  `yaml:"flatten"`
	Filter   FilterConfig   `yaml:"filter"`
	Database DatabaseConfig `yaml:"database"`
	Seeder   SeederConfig   `yaml:"seeder"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// FlattenConfig holds settings for converting a hierarchical name document to CSV.
type FlattenConfig struct {
	SourcePath string `yaml:"source_path" env:"FLATTEN_SOURCE_PATH" env-default:"./data/forenames.json"`
	OutputPath string `yaml:"output_path" env:"FLATTEN_OUTPUT_PATH" env-default:"output.csv"`
	Layout     string `yaml:"layout"      env:"FLATTEN_LAYOUT"      env-default:"regions"`
}

// FilterConfig holds the two CSV datasets reconciled by country.
type FilterConfig struct {
	ForenamesPath string `yaml:"forenames_path" env:"FILTER_FORENAMES_PATH" env-default:"./data/forenames.csv"`
	SurnamesPath  string `yaml:"surnames_path"  env:"FILTER_SURNAMES_PATH"  env-default:"./data/surnames.csv"`
}

// DatabaseConfig holds PostgreSQL connection settings.
// DSN is only required by the catalog seeder.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"4"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// SeederConfig holds catalog seeding settings.
type SeederConfig struct {
	ForenamesPath string        `yaml:"forenames_path" env:"SEEDER_FORENAMES_PATH" env-default:"./data/forenames.csv"`
	SurnamesPath  string        `yaml:"surnames_path"  env:"SEEDER_SURNAMES_PATH"  env-default:"./data/surnames.csv"`
	BatchSize     int           `yaml:"batch_size"     env:"SEEDER_BATCH_SIZE"     env-default:"500"`
	DryRun        bool          `yaml:"dry_run"        env:"SEEDER_DRY_RUN"`
	Replace       bool          `yaml:"replace"        env:"SEEDER_REPLACE"`
	Timeout       time.Duration `yaml:"timeout"        env:"SEEDER_TIMEOUT"        env-default:"30m"`
}
