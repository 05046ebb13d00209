package parquet

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/TordWessman/gitstat/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCommits() []schema.CachedCommit {
	return []schema.CachedCommit{
		{Tag: "oss", Repo: "alpha", Hash: strings.Repeat("a", 40), Timestamp: 1704067200, FilesChanged: 2, Insertions: 10, Deletions: 3},
		{Tag: "oss", Repo: "beta", Hash: strings.Repeat("b", 40), Timestamp: 1704153600, FilesChanged: 1, Insertions: 0, Deletions: 7},
	}
}

func sampleSeries() schema.SeriesResult {
	return schema.SeriesResult{
		Tag:    "oss",
		Period: 86400,
		Buckets: []schema.Bucket{
			{Timestamp: 86400, CommitCount: 2, Insertions: 5, Deletions: 1},
			{Timestamp: 172800, CommitCount: 1, Insertions: 0, Deletions: 4},
		},
	}
}

func TestStructTags(t *testing.T) {
	tests := []struct {
		name    string
		schema  *parquet.Schema
		columns []string
	}{
		{"commit", parquet.SchemaOf(new(CommitRow)), []string{"tag", "repo", "commit_hash", "commit_time", "files_changed", "insertions", "deletions"}},
		{"series", parquet.SchemaOf(new(SeriesRow)), []string{"tag", "bucket_end", "period_seconds", "commit_count", "insertions", "deletions", "change_count"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, colName := range tt.columns {
				_, ok := tt.schema.Lookup(colName)
				assert.True(t, ok, "Column %s should exist in schema", colName)
			}
		})
	}
}

func TestWriteCommitsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "commits.parquet")
	data := ConvertCommits(sampleCommits())

	require.NoError(t, WriteCommitsParquet(data, outputPath))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[CommitRow](file)
	defer func() { _ = reader.Close() }()

	readData := make([]CommitRow, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, len(data), n)
	for i := range data {
		assert.Equal(t, data[i].Hash, readData[i].Hash)
		assert.Equal(t, data[i].Repo, readData[i].Repo)
		assert.Equal(t, data[i].Insertions, readData[i].Insertions)
		assert.True(t, data[i].CommitTime.Equal(readData[i].CommitTime), "CommitTime should round-trip")
	}
}

func TestWriteSeriesParquet(t *testing.T) {
	var buf bytes.Buffer
	rows := ConvertSeries(sampleSeries())
	require.Len(t, rows, 2)
	assert.Equal(t, int64(6), rows[0].ChangeCount)
	assert.Equal(t, int64(86400), rows[0].PeriodSeconds)

	require.NoError(t, WriteRows(&buf, rows))

	reader := parquet.NewGenericReader[SeriesRow](bytes.NewReader(buf.Bytes()))
	defer func() { _ = reader.Close() }()
	assert.Equal(t, int64(2), reader.NumRows())
}

func TestWriteParquet_EmptyData(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteSeriesParquet(nil, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0), "footer is still written")
}

func TestWriteParquet_InvalidPath(t *testing.T) {
	err := WriteCommitsParquet(ConvertCommits(sampleCommits()), filepath.Join(t.TempDir(), "missing", "out.parquet"))
	assert.Error(t, err)
}
