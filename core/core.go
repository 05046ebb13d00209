// Package core ties the parser, miner, cache and aggregator together into
// the sync, stats and repos operations.
package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/TordWessman/gitstat/core/agg"
	"github.com/TordWessman/gitstat/internal/contract"
	"github.com/TordWessman/gitstat/internal/metrics"
	"github.com/TordWessman/gitstat/internal/outwriter"
	"github.com/TordWessman/gitstat/internal/workspace"
	"github.com/TordWessman/gitstat/schema"
)

// ErrNoRepositories is returned when nothing matches the selected tag.
var ErrNoRepositories = errors.New("no repositories to process")

// ExecutorFunc defines the function signature of the command entry points.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExecuteSync brings the cache up to date for the local repository, or for
// every declared repository of the selected tag, and prints one report per repository.
func ExecuteSync(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	logger := slog.Default()
	client := contract.NewLocalGitClient()

	m := metrics.NewSyncMetrics()
	if cfg.MetricsAddr != "" {
		srv, err := metrics.Serve(ctx, cfg.MetricsAddr, m)
		if err != nil {
			return err
		}
		defer func() { _ = srv.Close() }()
		logger.Info("serving metrics", slog.String("addr", srv.Addr()))
	}

	opts := []SyncOption{
		WithWorkers(cfg.Workers),
		WithCutoff(cfg.Cutoff),
		WithLogger(logger),
		WithMetrics(m),
		WithWorkspace(workspace.New(cfg.ReposPath, logger)),
	}
	syncer := NewSynchronizer(client, mgr.GetCommitStore(), opts...)

	var reports []schema.SyncReport
	var syncErr error
	if cfg.LocalRepo != "" {
		meta := LocalRepoMeta(cfg)
		report := syncer.SyncRepo(ctx, meta, cfg.LocalRepo)
		reports = []schema.SyncReport{report}
		syncErr = report.Err
	} else {
		repos := DeclaredRepos(cfg)
		if len(repos) == 0 {
			return ErrNoRepositories
		}
		reports, syncErr = syncer.SyncAll(ctx, repos)
	}

	if err := outwriter.WriteSyncResults(reports, cfg, time.Since(start)); err != nil {
		return errors.Join(syncErr, err)
	}
	return syncErr
}

// ExecuteStats aggregates the cached commits of the selected tag into
// period-wide buckets and prints the merged series.
func ExecuteStats(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	result, err := BuildSeries(ctx, mgr.GetCommitStore(), cfg.Tag, repoFilter(cfg), cfg.Period, cfg.Cutoff)
	if err != nil {
		return err
	}
	return outwriter.WriteSeriesResults(result, cfg, time.Since(start))
}

// ExecuteRepos prints the stored metadata of every repository of the selected tag.
func ExecuteRepos(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	repos, err := mgr.GetCommitStore().LoadRepos(ctx, cfg.Tag)
	if err != nil {
		return err
	}
	return outwriter.WriteRepoResults(repos, cfg)
}

// BuildSeries reads the cached commits of tag (all tags when empty) and
// merges the per-repository series into one. A non-empty repo narrows the
// read to that repository.
func BuildSeries(ctx context.Context, store contract.CommitStore, tag, repo string, period, cutoff int64) (schema.SeriesResult, error) {
	if period <= 0 {
		return schema.SeriesResult{}, fmt.Errorf("period must be positive (received %d)", period)
	}
	commits, err := store.ReadCommits(ctx, tag, repo)
	if err != nil {
		return schema.SeriesResult{}, err
	}

	perRepo := agg.ByRepo(commits, period, cutoff)
	names := make([]string, 0, len(perRepo))
	series := make([]schema.Series, 0, len(perRepo))
	for name, s := range perRepo {
		names = append(names, name)
		series = append(series, s)
	}
	slices.Sort(names)

	return schema.SeriesResult{
		Tag:     tag,
		Repos:   names,
		Period:  period,
		Cutoff:  cutoff,
		Buckets: agg.Merge(series...).Sorted(),
	}, nil
}

// DeclaredRepos returns the metadata rows of every non-ignored repository
// of the selected tag, or of all tags when none is selected.
func DeclaredRepos(cfg *contract.Config) []schema.RepoMeta {
	var repos []schema.RepoMeta
	for _, mapping := range cfg.Mappings {
		if cfg.Tag != "" && mapping.Tag != cfg.Tag {
			continue
		}
		for _, spec := range contract.IncludedRepos(mapping) {
			repos = append(repos, spec.Meta(mapping.Tag))
		}
	}
	return repos
}

// LocalRepoMeta describes an already checked out repository.
func LocalRepoMeta(cfg *contract.Config) schema.RepoMeta {
	return schema.RepoMeta{
		Name:     filepath.Base(cfg.LocalRepo),
		Tag:      cfg.Tag,
		IsCloned: true,
	}
}

// repoFilter narrows stats to the local repository when one was given.
func repoFilter(cfg *contract.Config) string {
	if cfg.LocalRepo == "" {
		return ""
	}
	return filepath.Base(cfg.LocalRepo)
}
