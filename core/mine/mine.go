// Package mine enriches parsed commits with diff statistics against their parents.
package mine

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/TordWessman/gitstat/internal/contract"
	"github.com/TordWessman/gitstat/schema"
)

// Option configures a Miner.
type Option func(*Miner)

// WithWorkers bounds the number of concurrent git calls.
func WithWorkers(n int) Option {
	return func(m *Miner) {
		if n > 0 {
			m.workers = n
		}
	}
}

// WithLogger sets the logger for non-fatal mining failures.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Miner) { m.logger = logger }
}

// WithObserver receives the duration of every unit of work.
func WithObserver(observe func(time.Duration)) Option {
	return func(m *Miner) { m.observe = observe }
}

// Miner computes files/insertions/deletions for commits through a GitClient.
type Miner struct {
	client  contract.GitClient
	workers int
	logger  *slog.Logger
	observe func(time.Duration)
}

// New creates a miner with one worker per CPU by default.
func New(client contract.GitClient, opts ...Option) *Miner {
	m := &Miner{
		client:  client,
		workers: runtime.NumCPU(),
		logger:  slog.Default(),
		observe: func(time.Duration) {},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type job struct {
	index int
	hash  string
	merge bool
}

type result struct {
	stats Stats
	err   error
}

// Mine fills in the stats of commits (newest first) in place.
//
// The oldest commit is the boundary of the pass and is left alone, as are
// ignored commits. Every other commit is one unit of work on the pool. Each
// unit delivers into its own slot of pending, and the caller walks the slots
// from oldest to newest, so completion order never affects which commit a
// result lands on. Mining failures are logged and leave zero stats; the only
// error returned is a cancelled context.
func (m *Miner) Mine(ctx context.Context, repoPath string, commits []schema.Commit) error {
	n := len(commits) - 1
	if n <= 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pending := make([]chan result, n)
	jobs := make(chan job)
	for i := range pending {
		pending[i] = make(chan result, 1)
	}

	var wg sync.WaitGroup
	defer wg.Wait()
	for range min(m.workers, n) {
		wg.Go(func() {
			for j := range jobs {
				pending[j.index] <- m.unit(ctx, repoPath, j)
			}
		})
	}

	go func() {
		defer close(jobs)
		for i := n - 1; i >= 0; i-- {
			if commits[i].Ignore {
				continue
			}
			select {
			case jobs <- job{index: i, hash: commits[i].Hash, merge: commits[i].IsMerge}:
			case <-ctx.Done():
				return
			}
		}
	}()

	for i := n - 1; i >= 0; i-- {
		if commits[i].Ignore {
			continue
		}
		var r result
		select {
		case r = <-pending[i]:
		case <-ctx.Done():
			return ctx.Err()
		}
		if r.err != nil {
			m.logger.Warn("stat mining failed",
				slog.String("repo", repoPath),
				slog.String("commit", commits[i].Hash),
				slog.Any("error", r.err))
			continue
		}
		commits[i].FilesChanged = r.stats.FilesChanged
		commits[i].Insertions = r.stats.Insertions
		commits[i].Deletions = r.stats.Deletions
	}
	return nil
}

// unit resolves the parent of one commit and reads its diff summary.
func (m *Miner) unit(ctx context.Context, repoPath string, j job) result {
	start := time.Now()
	defer func() { m.observe(time.Since(start)) }()

	parent, err := m.client.ParentHash(ctx, repoPath, j.hash)
	if err != nil {
		return result{err: err}
	}
	summary, err := m.client.DiffStat(ctx, repoPath, parent, j.hash, j.merge)
	if err != nil {
		return result{err: err}
	}
	if !j.merge {
		return result{stats: ParseShortStat(summary)}
	}
	stats, err := ParseMergeStat(summary)
	return result{stats: stats, err: err}
}
