// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/TordWessman/gitstat/internal/contract"
	"github.com/TordWessman/gitstat/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteSeries prints a bucketed series using the configured output format.
func (ow *OutWriter) WriteSeries(result schema.SeriesResult, cfg *contract.Config, duration time.Duration) error {
	return WriteSeriesResults(result, cfg, duration)
}

// WriteRepos prints repository metadata using the configured output format.
func (ow *OutWriter) WriteRepos(repos []schema.RepoMeta, cfg *contract.Config) error {
	return WriteRepoResults(repos, cfg)
}

// WriteSyncReports prints the outcome of a sync using the configured output format.
func (ow *OutWriter) WriteSyncReports(reports []schema.SyncReport, cfg *contract.Config, duration time.Duration) error {
	return WriteSyncResults(reports, cfg, duration)
}
