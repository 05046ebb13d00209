package contract

import (
	"context"

	"github.com/TordWessman/gitstat/schema"
	"github.com/stretchr/testify/mock"
)

// MockGitClient is a mock implementation of GitClient for testing.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// Run implements the GitClient interface.
func (m *MockGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	mockArgs := []any{ctx, repoPath}
	for _, arg := range args {
		mockArgs = append(mockArgs, arg)
	}
	ret := m.Called(mockArgs...)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// Log implements the GitClient interface.
func (m *MockGitClient) Log(ctx context.Context, repoPath string) ([]byte, error) {
	ret := m.Called(ctx, repoPath)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// ParentHash implements the GitClient interface.
func (m *MockGitClient) ParentHash(ctx context.Context, repoPath string, hash string) (string, error) {
	ret := m.Called(ctx, repoPath, hash)
	return ret.String(0), ret.Error(1)
}

// DiffStat implements the GitClient interface.
func (m *MockGitClient) DiffStat(ctx context.Context, repoPath string, parent, hash string, merge bool) (string, error) {
	ret := m.Called(ctx, repoPath, parent, hash, merge)
	return ret.String(0), ret.Error(1)
}

// MockCommitStore is a mock implementation of CommitStore for testing.
type MockCommitStore struct {
	mock.Mock
}

var _ CommitStore = &MockCommitStore{} // Compile-time check

// LoadCursor implements the CommitStore interface.
func (m *MockCommitStore) LoadCursor(ctx context.Context, tag, repo string) (string, error) {
	args := m.Called(ctx, tag, repo)
	return args.String(0), args.Error(1)
}

// AppendNewCommits implements the CommitStore interface.
func (m *MockCommitStore) AppendNewCommits(ctx context.Context, tag, repo string, commits []schema.Commit, cutoff int64) (int, error) {
	args := m.Called(ctx, tag, repo, commits, cutoff)
	return args.Int(0), args.Error(1)
}

// AdvanceCursor implements the CommitStore interface.
func (m *MockCommitStore) AdvanceCursor(ctx context.Context, tag, repo, hash string) error {
	args := m.Called(ctx, tag, repo, hash)
	return args.Error(0)
}

// ReadCommits implements the CommitStore interface.
func (m *MockCommitStore) ReadCommits(ctx context.Context, tag, repo string) ([]schema.CachedCommit, error) {
	args := m.Called(ctx, tag, repo)
	commits, _ := args.Get(0).([]schema.CachedCommit)
	return commits, args.Error(1)
}

// UpsertRepo implements the CommitStore interface.
func (m *MockCommitStore) UpsertRepo(ctx context.Context, meta schema.RepoMeta) error {
	args := m.Called(ctx, meta)
	return args.Error(0)
}

// UpdateRepoState implements the CommitStore interface.
func (m *MockCommitStore) UpdateRepoState(ctx context.Context, meta schema.RepoMeta) error {
	args := m.Called(ctx, meta)
	return args.Error(0)
}

// LoadRepo implements the CommitStore interface.
func (m *MockCommitStore) LoadRepo(ctx context.Context, tag, name string) (schema.RepoMeta, error) {
	args := m.Called(ctx, tag, name)
	meta, _ := args.Get(0).(schema.RepoMeta)
	return meta, args.Error(1)
}

// LoadRepos implements the CommitStore interface.
func (m *MockCommitStore) LoadRepos(ctx context.Context, tag string) ([]schema.RepoMeta, error) {
	args := m.Called(ctx, tag)
	metas, _ := args.Get(0).([]schema.RepoMeta)
	return metas, args.Error(1)
}

// GetStatus implements the CommitStore interface.
func (m *MockCommitStore) GetStatus() (schema.CacheStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// Close implements the CommitStore interface.
func (m *MockCommitStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockWorkspace is a mock implementation of Workspace for testing.
type MockWorkspace struct {
	mock.Mock
}

var _ Workspace = &MockWorkspace{} // Compile-time check

// Dir implements the Workspace interface.
func (m *MockWorkspace) Dir(meta schema.RepoMeta) string {
	args := m.Called(meta)
	return args.String(0)
}

// Ensure implements the Workspace interface.
func (m *MockWorkspace) Ensure(ctx context.Context, meta *schema.RepoMeta) error {
	args := m.Called(ctx, meta)
	return args.Error(0)
}
