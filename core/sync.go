package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/TordWessman/gitstat/core/mine"
	"github.com/TordWessman/gitstat/core/parse"
	"github.com/TordWessman/gitstat/internal/contract"
	"github.com/TordWessman/gitstat/internal/metrics"
	"github.com/TordWessman/gitstat/schema"
)

// SyncOption configures a Synchronizer.
type SyncOption func(*Synchronizer)

// WithWorkers bounds the concurrent git calls of the stat miner.
func WithWorkers(n int) SyncOption {
	return func(s *Synchronizer) { s.workers = n }
}

// WithCutoff excludes commits older than epoch from the cache.
func WithCutoff(epoch int64) SyncOption {
	return func(s *Synchronizer) { s.cutoff = epoch }
}

// WithLogger sets the logger used by every stage of a pass.
func WithLogger(logger *slog.Logger) SyncOption {
	return func(s *Synchronizer) { s.logger = logger }
}

// WithMetrics records pass outcomes on m.
func WithMetrics(m *metrics.SyncMetrics) SyncOption {
	return func(s *Synchronizer) { s.metrics = m }
}

// WithWorkspace lets SyncAll clone or update working copies before each pass.
func WithWorkspace(ws contract.Workspace) SyncOption {
	return func(s *Synchronizer) { s.workspace = ws }
}

// Synchronizer brings the commit cache up to date with the history of repositories.
type Synchronizer struct {
	client    contract.GitClient
	store     contract.CommitStore
	workspace contract.Workspace
	metrics   *metrics.SyncMetrics
	logger    *slog.Logger
	workers   int
	cutoff    int64
}

// NewSynchronizer creates a synchronizer writing into store.
func NewSynchronizer(client contract.GitClient, store contract.CommitStore, opts ...SyncOption) *Synchronizer {
	s := &Synchronizer{
		client:  client,
		store:   store,
		logger:  slog.Default(),
		workers: contract.DefaultWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SyncAll ensures the working copy of every repository and syncs it.
// A failing repository never stops the others; all failures are joined
// into the returned error.
func (s *Synchronizer) SyncAll(ctx context.Context, repos []schema.RepoMeta) ([]schema.SyncReport, error) {
	if s.workspace == nil {
		return nil, errors.New("no workspace configured")
	}

	reports := make([]schema.SyncReport, 0, len(repos))
	var errs []error
	for _, meta := range repos {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		report := s.ensureAndSync(ctx, meta)
		if report.Err != nil {
			errs = append(errs, fmt.Errorf("%s/%s: %w", report.Tag, report.Repo, report.Err))
		}
		reports = append(reports, report)
	}
	return reports, errors.Join(errs...)
}

func (s *Synchronizer) ensureAndSync(ctx context.Context, meta schema.RepoMeta) schema.SyncReport {
	if err := s.store.UpsertRepo(ctx, meta); err != nil {
		return s.fail(schema.SyncReport{Tag: meta.Tag, Repo: meta.Name}, metrics.ReasonCache, err)
	}
	// Clone state lives in the stored row, not in the declaration.
	if stored, err := s.store.LoadRepo(ctx, meta.Tag, meta.Name); err == nil {
		meta.IsCloned, meta.Failed = stored.IsCloned, stored.Failed
	}

	ensureErr := s.workspace.Ensure(ctx, &meta)
	if err := s.store.UpdateRepoState(ctx, meta); err != nil {
		s.logger.Warn("cannot record clone state", slog.String("tag", meta.Tag), slog.String("repo", meta.Name), slog.Any("error", err))
	}
	if ensureErr != nil {
		return s.fail(schema.SyncReport{Tag: meta.Tag, Repo: meta.Name}, metrics.ReasonWorkspace, ensureErr)
	}
	return s.SyncRepo(ctx, meta, s.workspace.Dir(meta))
}

// SyncRepo runs one pass over the working copy in dir: load cursor, read
// the log, parse up to the cursor, mine stats, append, advance the cursor.
//
// The cursor only moves after the append committed, so a failed pass is
// retried from the same place next time. A second pass without new commits
// stores nothing.
func (s *Synchronizer) SyncRepo(ctx context.Context, meta schema.RepoMeta, dir string) (report schema.SyncReport) {
	start := time.Now()
	report = schema.SyncReport{Tag: meta.Tag, Repo: meta.Name}
	defer func() { report.Duration = time.Since(start) }()
	logger := s.logger.With(slog.String("tag", meta.Tag), slog.String("repo", meta.Name))

	if err := s.store.UpsertRepo(ctx, meta); err != nil {
		return s.fail(report, metrics.ReasonCache, err)
	}
	cursor, err := s.store.LoadCursor(ctx, meta.Tag, meta.Name)
	if err != nil {
		return s.fail(report, metrics.ReasonCache, err)
	}
	report.Cursor = cursor

	raw, err := s.client.Log(ctx, dir)
	if err != nil {
		logger.Warn("git log failed", slog.Any("error", err))
		return s.fail(report, metrics.ReasonGit, err)
	}

	parser := parse.New(parse.WithBoundary(cursor), parse.WithCutoff(s.cutoff), parse.WithLogger(logger))
	commits, err := parser.Parse(string(raw))
	if err != nil {
		return s.fail(report, metrics.ReasonParse, err)
	}
	report.Parsed = len(commits)
	if len(commits) == 0 {
		logger.Debug("nothing new", slog.String("cursor", contract.ShortHash(cursor)))
		return report
	}

	miner := mine.New(s.client,
		mine.WithWorkers(s.workers),
		mine.WithLogger(logger),
		mine.WithObserver(s.metrics.ObserveMining),
	)
	if err := miner.Mine(ctx, dir, commits); err != nil {
		return s.fail(report, metrics.ReasonMine, err)
	}

	stored, err := s.store.AppendNewCommits(ctx, meta.Tag, meta.Name, commits, s.cutoff)
	if err != nil {
		return s.fail(report, metrics.ReasonCache, err)
	}
	report.Stored = stored
	s.metrics.CommitsIngested(meta.Tag, meta.Name, stored)

	newest := commits[0].Hash
	if err := s.store.AdvanceCursor(ctx, meta.Tag, meta.Name, newest); err != nil {
		return s.fail(report, metrics.ReasonCache, err)
	}
	report.Cursor = newest

	logger.Info("repository synced",
		slog.Int("parsed", report.Parsed),
		slog.Int("stored", report.Stored),
		slog.String("cursor", contract.ShortHash(newest)),
	)
	return report
}

func (s *Synchronizer) fail(report schema.SyncReport, reason string, err error) schema.SyncReport {
	s.metrics.RepoFailed(report.Tag, reason)
	report.Err = err
	return report
}
