// Package agg buckets cached commits into fixed-width time windows.
//
// A bucket is labelled with its upper, period-aligned bound: a commit at
// epoch e falls into (floor(e/p)+1)*p. Buckets are additive, so series of
// different repositories can be merged in any order.
package agg

import (
	"github.com/TordWessman/gitstat/schema"
)

// BucketTimestamp returns the ceiling-aligned bucket label of epoch for period seconds.
// A commit exactly on a boundary belongs to the next bucket. Period must be positive.
func BucketTimestamp(epoch, period int64) int64 {
	q := epoch / period
	if epoch%period != 0 && epoch < 0 {
		q-- // floor for pre-1970 timestamps
	}
	return (q + 1) * period
}

// Aggregate folds commits into a series. Commits older than cutoff are skipped;
// a cutoff of 0 keeps everything from the epoch on. A non-positive period yields an empty series.
func Aggregate(commits []schema.CachedCommit, period, cutoff int64) schema.Series {
	series := make(schema.Series)
	if period <= 0 {
		return series
	}
	for _, c := range commits {
		if c.Timestamp < cutoff {
			continue
		}
		ts := BucketTimestamp(c.Timestamp, period)
		b := series[ts]
		b.Timestamp = ts
		b.Add(1, c.Insertions, c.Deletions)
		series[ts] = b
	}
	return series
}

// ByRepo aggregates each repository separately, keyed by repository name.
func ByRepo(commits []schema.CachedCommit, period, cutoff int64) map[string]schema.Series {
	grouped := make(map[string][]schema.CachedCommit)
	for _, c := range commits {
		grouped[c.Repo] = append(grouped[c.Repo], c)
	}
	out := make(map[string]schema.Series, len(grouped))
	for repo, cs := range grouped {
		out[repo] = Aggregate(cs, period, cutoff)
	}
	return out
}

// Merge sums series bucket by bucket into a new series. The inputs are not modified.
func Merge(series ...schema.Series) schema.Series {
	out := make(schema.Series)
	for _, s := range series {
		for ts, b := range s {
			acc := out[ts]
			acc.Timestamp = ts
			acc.Add(b.CommitCount, b.Insertions, b.Deletions)
			out[ts] = acc
		}
	}
	return out
}
