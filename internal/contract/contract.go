// Package contract provides interfaces and shared utilities for the gitstat internals.
package contract

import (
	"context"
	"errors"

	"github.com/TordWessman/gitstat/schema"
)

// ErrCacheIntegrity is returned when a commit that is already in the ledger
// is inserted again. It means either the cache or the parser is broken.
var ErrCacheIntegrity = errors.New("cache integrity violation")

// ErrRepoNotFound is returned when a repository has no metadata row yet.
var ErrRepoNotFound = errors.New("repository not registered")

// GitClient defines the git subprocess calls needed to ingest history.
// This allows the parser and miner to be tested without a real git executable.
type GitClient interface {
	// Run executes a git command in repoPath and returns its stdout.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// Log returns the full medium-format log of the checked out branch, newest first.
	Log(ctx context.Context, repoPath string) ([]byte, error)

	// ParentHash returns the first parent of hash.
	ParentHash(ctx context.Context, repoPath string, hash string) (string, error)

	// DiffStat returns the short diff summary between parent and hash.
	// Merges are summarized as three columns: files, insertions, deletions.
	DiffStat(ctx context.Context, repoPath string, parent, hash string, merge bool) (string, error)
}

// CommitStore is the durable commit ledger plus the per-repository sync cursor.
// This allows the synchronizer to be tested against a mock store.
type CommitStore interface {
	// LoadCursor returns the last synced hash, or "" when the repository was never synced.
	LoadCursor(ctx context.Context, tag, repo string) (string, error)

	// AppendNewCommits stores every non-ignored commit not older than cutoff in one transaction.
	// A duplicate (repo, hash) aborts the whole batch with ErrCacheIntegrity.
	AppendNewCommits(ctx context.Context, tag, repo string, commits []schema.Commit, cutoff int64) (int, error)

	// AdvanceCursor persists the newest hash of a pass. Call only after AppendNewCommits succeeded.
	AdvanceCursor(ctx context.Context, tag, repo, hash string) error

	// ReadCommits returns the cached commits of a repository in no particular order.
	ReadCommits(ctx context.Context, tag, repo string) ([]schema.CachedCommit, error)

	// UpsertRepo inserts the metadata row on first observation and is a no-op afterwards.
	UpsertRepo(ctx context.Context, meta schema.RepoMeta) error

	// UpdateRepoState writes the clone state fields of an existing row, plus the
	// default branch once it is known.
	UpdateRepoState(ctx context.Context, meta schema.RepoMeta) error

	// LoadRepo returns the metadata row for tag/name.
	LoadRepo(ctx context.Context, tag, name string) (schema.RepoMeta, error)

	// LoadRepos returns all metadata rows of a tag, or of every tag when tag is "".
	LoadRepos(ctx context.Context, tag string) ([]schema.RepoMeta, error)

	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// Workspace provides checked out working copies of repositories.
type Workspace interface {
	// Dir returns where the working copy of meta lives.
	Dir(meta schema.RepoMeta) string

	// Ensure clones or updates the working copy and records the outcome on meta.
	Ensure(ctx context.Context, meta *schema.RepoMeta) error
}
