package schema

import (
	"encoding/json"
	"sort"
	"time"
)

// Bucket accumulates commit statistics for one period-aligned time window.
// ChangeCount is derived on read so it can never drift from its parts.
type Bucket struct {
	Timestamp   int64 `json:"timestamp"`
	CommitCount int   `json:"commit_count"`
	Insertions  int   `json:"insertions"`
	Deletions   int   `json:"deletions"`
}

// Add folds commits with the given line counts into the bucket.
func (b *Bucket) Add(commits, insertions, deletions int) {
	b.CommitCount += commits
	b.Insertions += insertions
	b.Deletions += deletions
}

// ChangeCount is the number of changed lines in the bucket.
func (b Bucket) ChangeCount() int {
	return b.Insertions + b.Deletions
}

// Time returns the bucket boundary as a UTC time.
func (b Bucket) Time() time.Time {
	return time.Unix(b.Timestamp, 0).UTC()
}

// MarshalJSON includes the derived change count.
func (b Bucket) MarshalJSON() ([]byte, error) {
	type plain Bucket
	return json.Marshal(struct {
		plain
		ChangeCount int `json:"change_count"`
	}{plain(b), b.ChangeCount()})
}

// Series maps bucket timestamps to their accumulators.
type Series map[int64]Bucket

// Sorted returns the buckets ordered by ascending timestamp.
func (s Series) Sorted() []Bucket {
	buckets := make([]Bucket, 0, len(s))
	for _, b := range s {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Timestamp < buckets[j].Timestamp
	})
	return buckets
}

// Totals sums every bucket of the series.
func (s Series) Totals() Bucket {
	var total Bucket
	for _, b := range s {
		total.Add(b.CommitCount, b.Insertions, b.Deletions)
	}
	return total
}

// SeriesResult is a named series ready for presentation.
type SeriesResult struct {
	Tag     string   `json:"tag"`
	Repos   []string `json:"repos"`
	Period  int64    `json:"period"` // Seconds
	Cutoff  int64    `json:"cutoff"` // Epoch seconds
	Buckets []Bucket `json:"buckets"`
}
