package contract

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// skipIfGitNotAvailable skips the test if git binary is not found in PATH
func skipIfGitNotAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skipf("git binary not found in PATH: %v", err)
	}
}

// gitCommit writes files and commits them in dir with a fixed identity.
func gitCommit(t *testing.T, client *LocalGitClient, dir, message string, files map[string]string) {
	t.Helper()
	ctx := context.Background()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
		_, err := client.Run(ctx, dir, "add", name)
		require.NoError(t, err)
	}
	_, err := client.Run(ctx, dir, "-c", "user.name=Jane Doe", "-c", "user.email=jane@example.com",
		"-c", "commit.gpgsign=false", "commit", "-q", "-m", message)
	require.NoError(t, err)
}

// newTestRepo creates a repository with two commits and returns its path.
func newTestRepo(t *testing.T, client *LocalGitClient) string {
	t.Helper()
	dir := t.TempDir()
	_, err := client.Run(context.Background(), dir, "init", "-q")
	require.NoError(t, err)
	gitCommit(t, client, dir, "initial", map[string]string{"a.txt": "one\ntwo\n"})
	gitCommit(t, client, dir, "second", map[string]string{"a.txt": "one\nthree\nfour\n", "b.txt": "x\n"})
	return dir
}

func TestMockGitClient_Run(t *testing.T) {
	mockClient := new(MockGitClient)
	ctx := context.Background()
	expectedErr := errors.New("mocked git error")

	mockClient.On("Run", ctx, "/path/to/repo", "log", "-1").Return([]byte("out"), expectedErr).Once()

	out, err := mockClient.Run(ctx, "/path/to/repo", "log", "-1")
	assert.Equal(t, []byte("out"), out)
	assert.Equal(t, expectedErr, err)
	mockClient.AssertExpectations(t)
}

func TestLocalGitClient_Run(t *testing.T) {
	skipIfGitNotAvailable(t)

	client := NewLocalGitClient()
	ctx := context.Background()

	_, err := client.Run(ctx, "/nonexistent/path", "status")
	require.Error(t, err)
	var gitErr *GitError
	require.ErrorAs(t, err, &gitErr)
	assert.Equal(t, "/nonexistent/path", gitErr.RepoPath)
	assert.Contains(t, err.Error(), "git status failed")
}

func TestLocalGitClient_HistoryCommands(t *testing.T) {
	skipIfGitNotAvailable(t)

	client := NewLocalGitClient()
	ctx := context.Background()
	dir := newTestRepo(t, client)

	out, err := client.Log(ctx, dir)
	require.NoError(t, err)
	log := string(out)
	assert.Equal(t, 2, strings.Count(log, "\ncommit ")+boolToInt(strings.HasPrefix(log, "commit ")))
	assert.Contains(t, log, "Author: Jane Doe <jane@example.com>")
	assert.Contains(t, log, "    second")

	head, err := client.Run(ctx, dir, "rev-parse", "HEAD")
	require.NoError(t, err)
	first, err := client.Run(ctx, dir, "rev-parse", "HEAD~1")
	require.NoError(t, err)
	headHash := strings.TrimSpace(string(head))
	firstHash := strings.TrimSpace(string(first))

	parent, err := client.ParentHash(ctx, dir, headHash)
	require.NoError(t, err)
	assert.Equal(t, firstHash, parent)

	_, err = client.ParentHash(ctx, dir, firstHash)
	assert.Error(t, err, "root commit has no parent")

	stat, err := client.DiffStat(ctx, dir, parent, headHash, false)
	require.NoError(t, err)
	assert.Equal(t, "2 files changed, 3 insertions(+), 1 deletion(-)", stat)

	stat, err = client.DiffStat(ctx, dir, parent, headHash, true)
	require.NoError(t, err)
	assert.Equal(t, "2 3 1", stat)
}

func TestFoldNumstat(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"text files", "3\t1\ta.go\n2\t0\tb.go\n", "2 5 1"},
		{"binary only", "-\t-\timg.png\n", "1 - -"},
		{"mixed", "-\t-\timg.png\n4\t2\tmain.go\n", "2 4 2"},
		{"garbage line", "nonsense\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, foldNumstat(tt.in))
		})
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
