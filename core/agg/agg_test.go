package agg

import (
	"testing"

	"github.com/TordWessman/gitstat/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const day = 86400

func commitAt(repo string, ts int64, ins, del int) schema.CachedCommit {
	return schema.CachedCommit{Tag: "oss", Repo: repo, Timestamp: ts, Insertions: ins, Deletions: del}
}

func TestBucketTimestamp(t *testing.T) {
	tests := []struct {
		epoch, period, want int64
	}{
		{1000, day, day},
		{86399, day, day},
		{86400, day, 2 * day},
		{86401, day, 2 * day},
		{0, day, day},
		{59, 60, 60},
		{60, 60, 120},
		{-1, 10, 0},
		{-10, 10, 0},
		{-11, 10, -10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BucketTimestamp(tt.epoch, tt.period), "epoch %d period %d", tt.epoch, tt.period)
	}
}

func TestAggregate_CeilingBuckets(t *testing.T) {
	commits := []schema.CachedCommit{
		commitAt("alpha", 1000, 1, 0),
		commitAt("alpha", 86399, 2, 1),
		commitAt("alpha", 86400, 3, 2),
		commitAt("alpha", 86401, 4, 3),
	}
	series := Aggregate(commits, day, 0)
	require.Len(t, series, 2)

	first := series[day]
	assert.Equal(t, int64(day), first.Timestamp)
	assert.Equal(t, 2, first.CommitCount)
	assert.Equal(t, 3, first.Insertions)
	assert.Equal(t, 1, first.Deletions)
	assert.Equal(t, 4, first.ChangeCount())

	second := series[2*day]
	assert.Equal(t, 2, second.CommitCount)
	assert.Equal(t, 7, second.Insertions)
	assert.Equal(t, 5, second.Deletions)
}

func TestAggregate_Cutoff(t *testing.T) {
	commits := []schema.CachedCommit{
		commitAt("alpha", 100, 1, 1),
		commitAt("alpha", 5000, 1, 1),
		commitAt("alpha", 90000, 1, 1),
	}
	series := Aggregate(commits, day, 5000)
	assert.Equal(t, 2, series.Totals().CommitCount, "commit exactly at cutoff is kept")

	series = Aggregate(commits, day, 100000)
	assert.Empty(t, series)
}

func TestAggregate_Degenerate(t *testing.T) {
	assert.Empty(t, Aggregate(nil, day, 0))
	assert.Empty(t, Aggregate([]schema.CachedCommit{commitAt("a", 1, 1, 1)}, 0, 0))
}

func TestByRepo(t *testing.T) {
	commits := []schema.CachedCommit{
		commitAt("alpha", 10, 1, 0),
		commitAt("beta", 20, 0, 1),
		commitAt("alpha", day+10, 5, 5),
	}
	perRepo := ByRepo(commits, day, 0)
	require.Len(t, perRepo, 2)
	assert.Len(t, perRepo["alpha"], 2)
	assert.Len(t, perRepo["beta"], 1)

	merged := Merge(perRepo["alpha"], perRepo["beta"])
	assert.Equal(t, Aggregate(commits, day, 0), merged, "merging per-repo series equals aggregating everything")
}

func TestMerge(t *testing.T) {
	a := schema.Series{day: {Timestamp: day, CommitCount: 1, Insertions: 2, Deletions: 3}}
	b := schema.Series{
		day:     {Timestamp: day, CommitCount: 4, Insertions: 5, Deletions: 6},
		2 * day: {Timestamp: 2 * day, CommitCount: 1},
	}

	merged := Merge(a, b)
	require.Len(t, merged, 2)
	assert.Equal(t, schema.Bucket{Timestamp: day, CommitCount: 5, Insertions: 7, Deletions: 9}, merged[day])
	assert.Equal(t, 16, merged[day].ChangeCount())

	assert.Equal(t, 1, a[day].CommitCount, "inputs are untouched")
	assert.Equal(t, 4, b[day].CommitCount, "inputs are untouched")

	assert.Empty(t, Merge())
	assert.Equal(t, a, Merge(a))
}
