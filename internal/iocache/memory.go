package iocache

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/TordWessman/gitstat/internal/contract"
	"github.com/TordWessman/gitstat/schema"
)

type repoKey struct{ tag, name string }

type commitKey struct{ repo, hash string }

// MemoryStore is the none backend: a CommitStore that lives only as long as the process.
// It enforces the same uniqueness rules as the SQL schema.
type MemoryStore struct {
	mu      sync.RWMutex
	commits []schema.CachedCommit
	hashes  map[commitKey]struct{}
	repos   map[repoKey]schema.RepoMeta
}

var _ contract.CommitStore = &MemoryStore{} // Compile-time check

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		hashes: make(map[commitKey]struct{}),
		repos:  make(map[repoKey]schema.RepoMeta),
	}
}

// LoadCursor implements the CommitStore interface.
func (m *MemoryStore) LoadCursor(_ context.Context, tag, repo string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.repos[repoKey{tag, repo}].LastCommitHash, nil
}

// AppendNewCommits implements the CommitStore interface. Nothing is stored when any commit is a duplicate.
func (m *MemoryStore) AppendNewCommits(ctx context.Context, tag, repo string, commits []schema.Commit, cutoff int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	batch := make([]schema.CachedCommit, 0, len(commits))
	seen := make(map[commitKey]struct{}, len(commits))
	for _, c := range commits {
		if c.Ignore || c.Timestamp < cutoff {
			continue
		}
		key := commitKey{repo, c.Hash}
		if _, dup := m.hashes[key]; dup {
			return 0, &IntegrityError{Tag: tag, Repo: repo, Hash: c.Hash}
		}
		if _, dup := seen[key]; dup {
			return 0, &IntegrityError{Tag: tag, Repo: repo, Hash: c.Hash}
		}
		seen[key] = struct{}{}
		batch = append(batch, schema.CachedCommit{
			Tag:          tag,
			Repo:         repo,
			Hash:         c.Hash,
			Timestamp:    c.Timestamp,
			FilesChanged: c.FilesChanged,
			Insertions:   c.Insertions,
			Deletions:    c.Deletions,
		})
	}

	for key := range seen {
		m.hashes[key] = struct{}{}
	}
	m.commits = append(m.commits, batch...)
	return len(batch), nil
}

// AdvanceCursor implements the CommitStore interface.
func (m *MemoryStore) AdvanceCursor(_ context.Context, tag, repo, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := repoKey{tag, repo}
	meta, ok := m.repos[key]
	if !ok {
		return fmt.Errorf("%s/%s: %w", tag, repo, contract.ErrRepoNotFound)
	}
	for other, o := range m.repos {
		if other != key && o.Name == repo && o.LastCommitHash == hash {
			return &IntegrityError{Tag: tag, Repo: repo, Hash: hash}
		}
	}
	meta.LastCommitHash = hash
	m.repos[key] = meta
	return nil
}

// ReadCommits implements the CommitStore interface.
func (m *MemoryStore) ReadCommits(_ context.Context, tag, repo string) ([]schema.CachedCommit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []schema.CachedCommit
	for _, c := range m.commits {
		if (tag == "" || c.Tag == tag) && (repo == "" || c.Repo == repo) {
			out = append(out, c)
		}
	}
	return out, nil
}

// UpsertRepo implements the CommitStore interface.
func (m *MemoryStore) UpsertRepo(_ context.Context, meta schema.RepoMeta) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := repoKey{meta.Tag, meta.Name}
	if _, ok := m.repos[key]; ok {
		return nil
	}
	meta.LastCommitHash = ""
	m.repos[key] = meta
	return nil
}

// UpdateRepoState implements the CommitStore interface.
func (m *MemoryStore) UpdateRepoState(_ context.Context, meta schema.RepoMeta) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := repoKey{meta.Tag, meta.Name}
	row, ok := m.repos[key]
	if !ok {
		return nil
	}
	row.IsCloned = meta.IsCloned
	row.Failed = meta.Failed
	if meta.DefaultBranch != "" {
		row.DefaultBranch = meta.DefaultBranch
	}
	m.repos[key] = row
	return nil
}

// LoadRepo implements the CommitStore interface.
func (m *MemoryStore) LoadRepo(_ context.Context, tag, name string) (schema.RepoMeta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	meta, ok := m.repos[repoKey{tag, name}]
	if !ok {
		return schema.RepoMeta{}, fmt.Errorf("%s/%s: %w", tag, name, contract.ErrRepoNotFound)
	}
	return meta, nil
}

// LoadRepos implements the CommitStore interface.
func (m *MemoryStore) LoadRepos(_ context.Context, tag string) ([]schema.RepoMeta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []schema.RepoMeta
	for _, meta := range m.repos {
		if tag == "" || meta.Tag == tag {
			out = append(out, meta)
		}
	}
	slices.SortFunc(out, func(a, b schema.RepoMeta) int {
		return cmp.Or(cmp.Compare(a.Tag, b.Tag), cmp.Compare(a.Name, b.Name))
	})
	return out, nil
}

// GetStatus implements the CommitStore interface.
func (m *MemoryStore) GetStatus() (schema.CacheStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status := schema.CacheStatus{
		Backend:      string(schema.NoneBackend),
		Connected:    true,
		TotalCommits: len(m.commits),
		TotalRepos:   len(m.repos),
	}
	for _, meta := range m.repos {
		if meta.LastCommitHash != "" {
			status.SyncedRepos++
		}
	}
	if len(m.commits) > 0 {
		oldest, newest := m.commits[0].Timestamp, m.commits[0].Timestamp
		for _, c := range m.commits[1:] {
			oldest = min(oldest, c.Timestamp)
			newest = max(newest, c.Timestamp)
		}
		status.OldestCommitTime = time.Unix(oldest, 0)
		status.NewestCommitTime = time.Unix(newest, 0)
	}
	return status, nil
}

// Close implements the CommitStore interface.
func (m *MemoryStore) Close() error { return nil }
