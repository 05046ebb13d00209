package cmd

import (
	"fmt"

	"github.com/TordWessman/gitstat/internal/contract"
	"github.com/TordWessman/gitstat/internal/iocache"
	"github.com/TordWessman/gitstat/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cacheConfig loads and validates the cache settings without touching the database.
func cacheConfig() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get cache-related config values
	backend := schema.DatabaseBackend(viper.GetString("cache-backend"))
	connStr := viper.GetString("cache-db-connect")

	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr
	cfg.Tag = viper.GetString("tag")
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// sqliteFilePath is the SQLite database file, honoring an explicit cache-db-connect.
func sqliteFilePath() string {
	if cfg.CacheDBConnect != "" {
		return cfg.CacheDBConnect
	}
	return contract.GetCacheDBFilePath()
}

// cacheSetup loads minimal configuration needed for cache operations and opens the cache.
// This is used by commands that need cache access without full shared setup.
func cacheSetup() error {
	if err := cacheConfig(); err != nil {
		return err
	}
	if err := iocache.InitCaching(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	return nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// cacheConfigWrapper wraps cacheConfig for commands that must not open the cache.
func cacheConfigWrapper(_ *cobra.Command, _ []string) error {
	return cacheConfig()
}

// cacheCmd focused on cache management.
//
// Note: Cache subcommands use minimal initialization (cacheSetup) instead of
// the full sharedSetup used by sync and stats. This avoids mapping validation
// and repository resolution for simple cache operations.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the commit cache",
	Long: `Manage the commit cache that holds every ingested commit and the sync cursor of each repository.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (in-memory)

Subcommands:
  status  - Show cache statistics and connection info
  clear   - Remove all cached commits and cursors
  migrate - Run database schema migrations
  export  - Export cached commits to Parquet

Examples:
  # Check cache status
  gitstat cache status

  # Start over after history was rewritten upstream
  gitstat cache clear`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached commits and sync cursors",
	Long: `Delete all cached commits, repository rows and sync cursors from the configured backend.

Use this when:
- Repository history was rewritten (rebase, force push)
- A sync failed with a cache integrity violation
- Switching the cutoff to include older commits

The next sync re-ingests every repository from scratch.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache tables and the migration history

Examples:
  # Clear SQLite cache (default)
  gitstat cache clear

  # Clear MySQL cache (set connection string via env variable)
  GITSTAT_CACHE_BACKEND=mysql GITSTAT_CACHE_DB_CONNECT="..." gitstat cache clear`,
	PreRunE: cacheConfigWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearCache(cfg.CacheBackend, sqliteFilePath(), cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show detailed information about the commit cache.

Displays:
- Backend type, connection status and schema version
- Number of repositories and how many have a sync cursor
- Total number of cached commits
- Newest and oldest commit timestamps
- Cache database size

Examples:
  # Check cache status
  gitstat cache status`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetCommitStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(status)
	},
}

// cacheMigrateCmd runs database migrations for the commit cache.
var cacheMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the commit cache.

Opening the cache always migrates to the latest version. Use this command to
prepare a database ahead of time or to step back to an older version.

Examples:
  # Migrate to latest version (default)
  gitstat cache migrate

  # Migrate to specific version
  gitstat cache migrate --target-version 2

  # Rollback everything
  gitstat cache migrate --target-version 0`,
	PreRunE: cacheConfigWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		connStr := cfg.CacheDBConnect
		if cfg.CacheBackend == schema.SQLiteBackend {
			connStr = sqliteFilePath()
		}
		result, err := iocache.Migrate(cfg.CacheBackend, connStr, viper.GetInt("target-version"))
		if err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
		iocache.PrintMigrationResult(result)
	},
}

// cacheExportCmd exports cached commits to a Parquet file.
var cacheExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export cached commits to Parquet for BI tools and analytics",
	Long: `Export the cached commits to Parquet, one row per commit.

Columns: tag, repo, commit_hash, commit_time, files_changed, insertions, deletions.

Requires: --output-file parameter

Examples:
  # Export all data
  gitstat cache export --output-file commits.parquet

  # Export one tag and query it with DuckDB
  gitstat cache export --tag backend --output-file backend.parquet
  duckdb -c "SELECT repo, sum(insertions) FROM read_parquet('backend.parquet') GROUP BY repo"`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteCacheExport(rootCtx, cfg.Tag, cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export cache", err)
		}
	},
}
