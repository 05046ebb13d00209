package contract

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// GitError reports a git subprocess that could not run or exited non-zero.
type GitError struct {
	RepoPath string
	Args     []string
	Stderr   string
	Err      error
}

func (e *GitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("git %s failed in %q: %s", strings.Join(e.Args, " "), e.RepoPath, e.Stderr)
	}
	return fmt.Sprintf("git %s failed in %q: %v", strings.Join(e.Args, " "), e.RepoPath, e.Err)
}

func (e *GitError) Unwrap() error { return e.Err }

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct{}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{}
}

// Run executes a git command with an explicit working directory and returns its stdout.
// The process working directory is never changed.
func (c *LocalGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil, &GitError{RepoPath: repoPath, Args: args, Stderr: strings.TrimSpace(string(exitErr.Stderr)), Err: err}
	} else if err != nil {
		return nil, &GitError{RepoPath: repoPath, Args: args, Err: fmt.Errorf("%w. Ensure Git is installed and available on your PATH", err)}
	}
	return out, nil
}

// Log implements the GitClient interface.
func (c *LocalGitClient) Log(ctx context.Context, repoPath string) ([]byte, error) {
	return c.Run(ctx, repoPath,
		"log",
		"--pretty=medium",
		"--date=default",
		"--no-color",
		"--no-decorate",
		"--no-abbrev-commit",
	)
}

// ParentHash implements the GitClient interface.
func (c *LocalGitClient) ParentHash(ctx context.Context, repoPath string, hash string) (string, error) {
	out, err := c.Run(ctx, repoPath, "log", "--pretty=%P", "-1", hash)
	if err != nil {
		return "", err
	}
	parents := strings.Fields(string(out))
	if len(parents) == 0 {
		return "", fmt.Errorf("commit %s has no parent", hash)
	}
	return parents[0], nil
}

// DiffStat implements the GitClient interface.
func (c *LocalGitClient) DiffStat(ctx context.Context, repoPath string, parent, hash string, merge bool) (string, error) {
	if !merge {
		out, err := c.Run(ctx, repoPath, "diff", "--shortstat", parent, hash)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(out)), nil
	}
	out, err := c.Run(ctx, repoPath, "diff", "--numstat", parent, hash)
	if err != nil {
		return "", err
	}
	return foldNumstat(string(out)), nil
}

// foldNumstat collapses --numstat lines into "files insertions deletions".
// A column without any numeric value is rendered as "-". Empty input yields "".
func foldNumstat(out string) string {
	var files, ins, del int
	var hasIns, hasDel bool
	for line := range strings.Lines(out) {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		files++
		if n, err := strconv.Atoi(fields[0]); err == nil {
			ins += n
			hasIns = true
		}
		if n, err := strconv.Atoi(fields[1]); err == nil {
			del += n
			hasDel = true
		}
	}
	if files == 0 {
		return ""
	}
	column := func(n int, ok bool) string {
		if !ok {
			return "-"
		}
		return strconv.Itoa(n)
	}
	return fmt.Sprintf("%d %s %s", files, column(ins, hasIns), column(del, hasDel))
}
