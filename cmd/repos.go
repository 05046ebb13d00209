package cmd

import (
	"github.com/TordWessman/gitstat/core"
	"github.com/TordWessman/gitstat/internal/contract"
	"github.com/spf13/cobra"
)

// reposCmd lists the repositories known to the cache.
var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "List repositories known to the cache.",
	Long: `List every repository the cache has seen, with its clone state and sync cursor.

A repository is recorded the first time it is synced. The Failed column counts
consecutive clone or update failures and resets on the next success.

Examples:
  # List all repositories
  gitstat repos

  # List one tag as JSON
  gitstat repos --tag backend --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRepos(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot list repositories", err)
		}
	},
}
