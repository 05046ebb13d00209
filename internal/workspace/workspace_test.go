package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/TordWessman/gitstat/internal/contract"
	"github.com/TordWessman/gitstat/schema"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ contract.Workspace = (*GitWorkspace)(nil)

// createSourceRepo initializes a repository to clone from.
func createSourceRepo(t *testing.T) (string, *git.Repository) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	return dir, repo
}

// addCommit writes a file and commits it.
func addCommit(t *testing.T, repo *git.Repository, filename, content string) string {
	t.Helper()
	wt, err := repo.Worktree()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(wt.Filesystem.Root(), filename), []byte(content), 0o644))
	_, err = wt.Add(filename)
	require.NoError(t, err)

	hash, err := wt.Commit("add "+filename, &git.CommitOptions{
		Author: &object.Signature{Name: "Test Author", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return hash.String()
}

func TestEnsure_CloneThenPull(t *testing.T) {
	srcDir, src := createSourceRepo(t)
	first := addCommit(t, src, "a.txt", "one")

	ws := New(t.TempDir(), contract.DiscardLogger())
	meta := schema.RepoMeta{Tag: "oss", Name: "alpha", URL: srcDir, Failed: 2}
	ctx := context.Background()

	require.NoError(t, ws.Ensure(ctx, &meta))
	assert.True(t, meta.IsCloned)
	assert.Equal(t, 0, meta.Failed, "success resets the failure count")
	assert.Equal(t, "master", meta.DefaultBranch, "remote HEAD is recorded")

	clone, err := git.PlainOpen(ws.Dir(meta))
	require.NoError(t, err)
	head, err := clone.Head()
	require.NoError(t, err)
	assert.Equal(t, first, head.Hash().String())

	// Local edits are discarded and new upstream commits arrive.
	require.NoError(t, os.WriteFile(filepath.Join(ws.Dir(meta), "a.txt"), []byte("dirty"), 0o644))
	second := addCommit(t, src, "b.txt", "two")

	require.NoError(t, ws.Ensure(ctx, &meta))
	head, err = clone.Head()
	require.NoError(t, err)
	assert.Equal(t, second, head.Hash().String())

	content, err := os.ReadFile(filepath.Join(ws.Dir(meta), "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "one", string(content))

	// Nothing new upstream is not an error.
	require.NoError(t, ws.Ensure(ctx, &meta))
}

func TestEnsure_Failures(t *testing.T) {
	root := t.TempDir()
	ws := New(root, contract.DiscardLogger())
	ctx := context.Background()

	t.Run("no url", func(t *testing.T) {
		meta := schema.RepoMeta{Tag: "oss", Name: "nourl"}
		err := ws.Ensure(ctx, &meta)
		assert.ErrorIs(t, err, ErrNoCloneURL)
		assert.Equal(t, 1, meta.Failed)
		assert.False(t, meta.IsCloned)
	})

	t.Run("unreachable url", func(t *testing.T) {
		meta := schema.RepoMeta{Tag: "oss", Name: "gone", URL: filepath.Join(root, "does-not-exist"), Failed: 3}
		require.Error(t, ws.Ensure(ctx, &meta))
		assert.Equal(t, 4, meta.Failed)
		_, err := os.Stat(ws.Dir(meta))
		assert.True(t, os.IsNotExist(err), "partial clone is removed")
	})

	t.Run("unknown branch", func(t *testing.T) {
		srcDir, src := createSourceRepo(t)
		addCommit(t, src, "a.txt", "one")
		meta := schema.RepoMeta{Tag: "oss", Name: "branchy", URL: srcDir, DefaultBranch: "nope"}
		assert.Error(t, ws.Ensure(ctx, &meta))
		assert.Equal(t, 1, meta.Failed)
	})
}

func TestDir(t *testing.T) {
	ws := New("/srv/repos", nil)
	assert.Equal(t, filepath.Join("/srv/repos", "oss", "alpha"), ws.Dir(schema.RepoMeta{Tag: "oss", Name: "alpha"}))
}
