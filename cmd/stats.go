package cmd

import (
	"github.com/TordWessman/gitstat/core"
	"github.com/TordWessman/gitstat/internal/contract"
	"github.com/spf13/cobra"
)

// statsCmd prints bucketed commit statistics from the cache.
var statsCmd = &cobra.Command{
	Use:   "stats [repo-path]",
	Short: "Show commit statistics bucketed over time.",
	Long: `Aggregate cached commits into fixed-width time buckets.

Every commit lands in the first period boundary strictly after its timestamp, so a
daily series labels all of Monday's commits with Tuesday 00:00 UTC. Buckets of all
selected repositories are summed; each holds the commit count, insertions, deletions
and their total.

Reads only from the cache: run 'gitstat sync' first.

Examples:
  # Daily series of every cached repository
  gitstat stats

  # Weekly series of one tag over the last six months
  gitstat stats --tag backend --period "1 week" --cutoff "6 months ago"

  # Series of the repository in the current directory as CSV
  gitstat stats . --output csv --output-file series.csv

  # Export for DuckDB or pandas
  gitstat stats --output parquet --output-file series.parquet`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteStats(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot compute statistics", err)
		}
	},
}
