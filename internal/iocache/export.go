package iocache

import (
	"context"
	"errors"
	"fmt"

	"github.com/TordWessman/gitstat/internal/parquet"
)

// ExecuteCacheExport writes every cached commit of tag (all tags when empty) to a Parquet file.
func ExecuteCacheExport(ctx context.Context, tag, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := Manager.GetCommitStore()
	if store == nil {
		return errors.New("commit cache is not initialized")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get cache status: %w", err)
	}
	if status.TotalCommits == 0 {
		return errors.New("no cached commits found to export")
	}

	commits, err := store.ReadCommits(ctx, tag, "")
	if err != nil {
		return fmt.Errorf("failed to read cached commits: %w", err)
	}
	if len(commits) == 0 {
		return fmt.Errorf("no cached commits found for tag %q", tag)
	}

	rows := parquet.ConvertCommits(commits)
	if err := parquet.WriteCommitsParquet(rows, outputFile); err != nil {
		return fmt.Errorf("failed to write commits: %w", err)
	}
	fmt.Printf("Exported %d commits from %s backend to: %s\n", len(rows), status.Backend, outputFile)
	return nil
}
