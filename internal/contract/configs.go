package contract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/TordWessman/gitstat/schema"
	"github.com/bmatcuk/doublestar/v4"
)

// Default values for configuration.
const (
	DefaultPeriod   = "1 day"
	DefaultLocalTag = "local"
)

// DefaultWorkers is the default number of concurrent stat mining workers.
var DefaultWorkers = runtime.NumCPU()

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Config holds the final, validated runtime configuration.
type Config struct {
	ReposPath string // Root directory for working copies
	LocalRepo string // Git root of an already checked out repository, bypasses mappings
	Tag       string // Restricts commands to one tag ("" = all)
	Cutoff    int64  // Inclusion floor in epoch seconds (0 = everything)
	Period    int64  // Bucket width in seconds
	Workers   int

	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	LogLevel    slog.Level
	LogFormat   schema.LogFormat
	MetricsAddr string

	Mappings []schema.RepoMapping
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RepoPathStr string

	ReposPath      string `mapstructure:"repos-path"`
	Tag            string `mapstructure:"tag"`
	Cutoff         string `mapstructure:"cutoff"`
	Period         string `mapstructure:"period"`
	Workers        int    `mapstructure:"workers"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Width          int    `mapstructure:"width"`
	Color          string `mapstructure:"color"`
	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`
	LogLevel       string `mapstructure:"log-level"`
	LogFormat      string `mapstructure:"log-format"`
	MetricsAddr    string `mapstructure:"metrics-addr"`

	Mappings []schema.RepoMapping `mapstructure:"mappings"`
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processTimeInputs(cfg, input, time.Now()); err != nil {
		return err
	}
	if err := validateMappings(cfg, input); err != nil {
		return err
	}
	if err := resolveLocalRepo(ctx, cfg, client, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("cache-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("cache-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// IncludedRepos returns the repositories of a mapping that no ignore pattern matches.
func IncludedRepos(mapping schema.RepoMapping) []schema.RepoSpec {
	var out []schema.RepoSpec
	for _, repo := range mapping.Repos {
		if !isIgnored(repo.Name, mapping.Ignore) {
			out = append(out, repo)
		}
	}
	return out
}

func isIgnored(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

// validateSimpleInputs processes and validates all scalar fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.MetricsAddr = strings.TrimSpace(input.MetricsAddr)
	cfg.Tag = strings.TrimSpace(input.Tag)

	cfg.ReposPath = input.ReposPath
	if cfg.ReposPath == "" {
		cfg.ReposPath = GetReposPath()
	}

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	level, err := ParseLogLevel(input.LogLevel)
	if err != nil {
		return err
	}
	cfg.LogLevel = level

	cfg.LogFormat = schema.LogFormat(strings.ToLower(input.LogFormat))
	if _, ok := schema.ValidLogFormats[cfg.LogFormat]; !ok {
		return fmt.Errorf("invalid log format '%s'. must be text, json", input.LogFormat)
	}

	return nil
}

// processTimeInputs parses the cutoff and bucket period.
func processTimeInputs(cfg *Config, input *ConfigRawInput, now time.Time) error {
	cutoff, err := ParseCutoff(input.Cutoff, now)
	if err != nil {
		return err
	}
	cfg.Cutoff = cutoff

	periodStr := input.Period
	if strings.TrimSpace(periodStr) == "" {
		periodStr = DefaultPeriod
	}
	period, err := ParsePeriod(periodStr)
	if err != nil {
		return fmt.Errorf("invalid period: %w", err)
	}
	cfg.Period = period
	return nil
}

// validateMappings checks the declared repositories of every tag.
func validateMappings(cfg *Config, input *ConfigRawInput) error {
	seenTags := make(map[string]struct{}, len(input.Mappings))
	for i, m := range input.Mappings {
		m.Tag = strings.TrimSpace(m.Tag)
		if m.Tag == "" {
			return fmt.Errorf("mapping %d has no tag", i)
		}
		if _, dup := seenTags[m.Tag]; dup {
			return fmt.Errorf("tag %q is declared more than once", m.Tag)
		}
		seenTags[m.Tag] = struct{}{}

		for _, p := range m.Ignore {
			if !doublestar.ValidatePattern(p) {
				return fmt.Errorf("invalid ignore pattern %q in tag %q", p, m.Tag)
			}
		}

		seenRepos := make(map[string]struct{}, len(m.Repos))
		for _, r := range m.Repos {
			if r.Name == "" {
				return fmt.Errorf("repository without name in tag %q", m.Tag)
			}
			if strings.ContainsAny(r.Name, `/\`) || r.Name == "." || r.Name == ".." {
				return fmt.Errorf("repository name %q in tag %q must be a single path element", r.Name, m.Tag)
			}
			if _, dup := seenRepos[r.Name]; dup {
				return fmt.Errorf("repository %q is declared more than once in tag %q", r.Name, m.Tag)
			}
			seenRepos[r.Name] = struct{}{}
		}
		input.Mappings[i] = m
	}

	cfg.Mappings = input.Mappings
	if cfg.Tag != "" && input.RepoPathStr == "" {
		if _, ok := seenTags[cfg.Tag]; !ok {
			return fmt.Errorf("tag %q is not declared in mappings", cfg.Tag)
		}
	}
	return nil
}

// resolveLocalRepo resolves a positional repository path to its git root.
func resolveLocalRepo(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	if input.RepoPathStr == "" {
		return nil
	}
	absPath, err := filepath.Abs(input.RepoPathStr)
	if err != nil {
		return err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("repository path %q: %w", input.RepoPathStr, err)
	}
	if !info.IsDir() {
		absPath = filepath.Dir(absPath)
	}

	out, err := client.Run(ctx, absPath, "rev-parse", "--show-toplevel")
	if err != nil {
		return err
	}
	cfg.LocalRepo = strings.TrimSpace(string(out))
	if cfg.Tag == "" {
		cfg.Tag = DefaultLocalTag
	}
	return nil
}
