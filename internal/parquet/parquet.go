// Package parquet provides data structures and functions for exporting cached
// commits and aggregated series to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/TordWessman/gitstat/schema"
	"github.com/parquet-go/parquet-go"
)

// CommitRow is one ledger row of the commit_cache table.
type CommitRow struct {
	// Tag is the mapping the repository belongs to
	Tag string `parquet:"tag,snappy,dict"`

	// Repo is the repository name within the tag
	Repo string `parquet:"repo,snappy,dict"`

	// Hash is the full commit hash
	Hash string `parquet:"commit_hash,snappy"`

	// CommitTime is the commit date (stored as TIMESTAMP with nanosecond precision)
	CommitTime time.Time `parquet:"commit_time,snappy"`

	FilesChanged int32 `parquet:"files_changed,snappy"`
	Insertions   int32 `parquet:"insertions,snappy"`
	Deletions    int32 `parquet:"deletions,snappy"`
}

// SeriesRow is one bucket of an aggregated series.
type SeriesRow struct {
	// Tag is the mapping the series was aggregated over (empty for all tags)
	Tag string `parquet:"tag,snappy,dict"`

	// BucketEnd is the period-aligned upper bound of the bucket
	BucketEnd time.Time `parquet:"bucket_end,snappy"`

	// PeriodSeconds is the bucket width
	PeriodSeconds int64 `parquet:"period_seconds,snappy"`

	CommitCount int64 `parquet:"commit_count,snappy"`
	Insertions  int64 `parquet:"insertions,snappy"`
	Deletions   int64 `parquet:"deletions,snappy"`

	// ChangeCount is always Insertions+Deletions
	ChangeCount int64 `parquet:"change_count,snappy"`
}

// ConvertCommits maps cached ledger rows to Parquet rows.
func ConvertCommits(commits []schema.CachedCommit) []CommitRow {
	rows := make([]CommitRow, 0, len(commits))
	for _, c := range commits {
		rows = append(rows, CommitRow{
			Tag:          c.Tag,
			Repo:         c.Repo,
			Hash:         c.Hash,
			CommitTime:   time.Unix(c.Timestamp, 0).UTC(),
			FilesChanged: int32(c.FilesChanged),
			Insertions:   int32(c.Insertions),
			Deletions:    int32(c.Deletions),
		})
	}
	return rows
}

// ConvertSeries maps the buckets of a series result to Parquet rows.
func ConvertSeries(result schema.SeriesResult) []SeriesRow {
	rows := make([]SeriesRow, 0, len(result.Buckets))
	for _, b := range result.Buckets {
		rows = append(rows, SeriesRow{
			Tag:           result.Tag,
			BucketEnd:     b.Time(),
			PeriodSeconds: result.Period,
			CommitCount:   int64(b.CommitCount),
			Insertions:    int64(b.Insertions),
			Deletions:     int64(b.Deletions),
			ChangeCount:   int64(b.ChangeCount()),
		})
	}
	return rows
}

// WriteCommitsParquet writes ledger rows to a Parquet file.
func WriteCommitsParquet(data []CommitRow, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteSeriesParquet writes series rows to a Parquet file.
func WriteSeriesParquet(data []SeriesRow, outputPath string) error {
	return writeFile(data, outputPath)
}

func writeFile[T any](data []T, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return WriteRows(file, data)
}

// WriteRows encodes data as one Parquet file on w.
// The schema is derived from the struct tags of T.
func WriteRows[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}
