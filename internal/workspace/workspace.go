// Package workspace keeps working copies of declared repositories below one root directory.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/TordWessman/gitstat/schema"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// ErrNoCloneURL is returned when a repository without working copy declares no URL.
var ErrNoCloneURL = errors.New("repository has no clone url")

// GitWorkspace clones and updates repositories with go-git.
// Working copies live at <root>/<tag>/<name>.
type GitWorkspace struct {
	root   string
	logger *slog.Logger
}

// New creates a workspace below root.
func New(root string, logger *slog.Logger) *GitWorkspace {
	if logger == nil {
		logger = slog.Default()
	}
	return &GitWorkspace{root: root, logger: logger}
}

// Dir returns the working copy location of meta.
func (w *GitWorkspace) Dir(meta schema.RepoMeta) string {
	return meta.Dir(w.root)
}

// Ensure clones the repository, or hard-resets and pulls an existing clone.
// On success IsCloned is set and Failed is reset; on failure Failed grows by one.
// The checked out branch is recorded as DefaultBranch.
func (w *GitWorkspace) Ensure(ctx context.Context, meta *schema.RepoMeta) error {
	dir := w.Dir(*meta)

	repo, err := git.PlainOpen(dir)
	switch {
	case err == nil:
		err = w.update(ctx, repo)
	case errors.Is(err, git.ErrRepositoryNotExists):
		repo, err = w.clone(ctx, dir, meta)
	}
	if err != nil {
		meta.Failed++
		w.logger.Warn("workspace update failed",
			slog.String("tag", meta.Tag),
			slog.String("repo", meta.Name),
			slog.Int("failed", meta.Failed),
			slog.Any("error", err),
		)
		return fmt.Errorf("workspace %s/%s: %w", meta.Tag, meta.Name, err)
	}

	if head, err := repo.Head(); err == nil && head.Name().IsBranch() {
		meta.DefaultBranch = head.Name().Short()
	}
	meta.IsCloned = true
	meta.Failed = 0
	return nil
}

func (w *GitWorkspace) clone(ctx context.Context, dir string, meta *schema.RepoMeta) (*git.Repository, error) {
	if meta.URL == "" {
		return nil, ErrNoCloneURL
	}
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return nil, err
	}

	opts := &git.CloneOptions{URL: meta.URL, SingleBranch: true}
	if meta.DefaultBranch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(meta.DefaultBranch)
	}
	w.logger.Info("cloning repository", slog.String("url", meta.URL), slog.String("dir", dir))

	repo, err := git.PlainCloneContext(ctx, dir, false, opts)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("clone %s: %w", meta.URL, err)
	}
	return repo, nil
}

func (w *GitWorkspace) update(ctx context.Context, repo *git.Repository) error {
	wt, err := repo.Worktree()
	if err != nil {
		return err
	}
	if err := wt.Reset(&git.ResetOptions{Mode: git.HardReset}); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	err = wt.PullContext(ctx, &git.PullOptions{RemoteName: git.DefaultRemoteName, SingleBranch: true})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("pull: %w", err)
	}
	return nil
}
