package schema

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidHash(t *testing.T) {
	tests := []struct {
		name string
		hash string
		want bool
	}{
		{"full lowercase", strings.Repeat("ab", 20), true},
		{"digits only", strings.Repeat("0", 40), true},
		{"uppercase", strings.Repeat("AB", 20), false},
		{"too short", strings.Repeat("a", 39), false},
		{"too long", strings.Repeat("a", 41), false},
		{"non hex", strings.Repeat("g", 40), false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidHash(tt.hash))
		})
	}
}

func TestBucketChangeCount(t *testing.T) {
	var b Bucket
	b.Add(1, 10, 3)
	b.Add(2, 5, 7)
	assert.Equal(t, 3, b.CommitCount)
	assert.Equal(t, 25, b.ChangeCount())
	assert.Equal(t, b.Insertions+b.Deletions, b.ChangeCount())
}

func TestBucketMarshalJSON(t *testing.T) {
	b := Bucket{Timestamp: 86400, CommitCount: 2, Insertions: 4, Deletions: 1}
	data, err := json.Marshal(b)
	require.NoError(t, err)

	var decoded map[string]int64
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, int64(86400), decoded["timestamp"])
	assert.Equal(t, int64(2), decoded["commit_count"])
	assert.Equal(t, int64(5), decoded["change_count"])
}

func TestSeriesSortedAndTotals(t *testing.T) {
	s := Series{
		172800: {Timestamp: 172800, CommitCount: 1, Insertions: 1},
		86400:  {Timestamp: 86400, CommitCount: 2, Deletions: 3},
		259200: {Timestamp: 259200, CommitCount: 1, Insertions: 2, Deletions: 2},
	}
	sorted := s.Sorted()
	require.Len(t, sorted, 3)
	assert.Equal(t, int64(86400), sorted[0].Timestamp)
	assert.Equal(t, int64(172800), sorted[1].Timestamp)
	assert.Equal(t, int64(259200), sorted[2].Timestamp)

	total := s.Totals()
	assert.Equal(t, 4, total.CommitCount)
	assert.Equal(t, 8, total.ChangeCount())
}

func TestRepoSpecMeta(t *testing.T) {
	meta := RepoSpec{ID: 7, Name: "api", URL: "https://example.com/org/api.git"}.Meta("backend")
	assert.Equal(t, "backend", meta.Tag)
	assert.Empty(t, meta.DefaultBranch, "remote HEAD until the first clone")
	assert.Equal(t, int64(7), meta.ID)
	assert.Empty(t, meta.LastCommitHash)
	assert.Equal(t, filepath.Join("/srv", "backend", "api"), meta.Dir("/srv"))

	meta = RepoSpec{Name: "web", Branch: "develop"}.Meta("frontend")
	assert.Equal(t, "develop", meta.DefaultBranch)
}
