package cmd

import (
	"github.com/TordWessman/gitstat/core"
	"github.com/TordWessman/gitstat/internal/contract"
	"github.com/spf13/cobra"
)

// syncCmd brings the commit cache up to date.
var syncCmd = &cobra.Command{
	Use:   "sync [repo-path]",
	Short: "Ingest new commits into the cache.",
	Long: `Bring the commit cache up to date, one incremental pass per repository.

Each pass reads the git log of the working copy, stops at the commit stored as the
repository's cursor, computes diff statistics for the new commits on a bounded worker
pool, appends them to the cache in one transaction and only then moves the cursor.
Running sync twice in a row stores nothing the second time.

Without a path, every repository declared under 'mappings' in the config file is
cloned or updated below --repos-path first. With a path, that checked out repository
is synced as-is under the tag given by --tag (default: local).

A failing repository never stops the others; all failures are reported at the end.

Examples:
  # Sync every declared repository
  gitstat sync

  # Sync only the repositories of one tag with 8 workers
  gitstat sync --tag backend --workers 8

  # Sync the repository in the current directory, ignoring commits older than a year
  gitstat sync . --cutoff "1 year ago"

  # Expose Prometheus metrics while a long sync runs
  gitstat sync --metrics-addr :9090`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSync(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot sync repositories", err)
		}
	},
}
