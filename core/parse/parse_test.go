package parse

import (
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/three_commits.log
var threeCommitsLog string

//go:embed testdata/malformed_lines.log
var malformedLinesLog string

//go:embed testdata/invalid_trailing_hash.log
var invalidTrailingHashLog string

//go:embed testdata/bad_date.log
var badDateLog string

var (
	hashA = strings.Repeat("a", 40)
	hashB = strings.Repeat("b", 40)
	hashC = strings.Repeat("c", 40)
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// synthLog builds n well-formed commit blocks, newest first, with hashes h(n)..h(1).
func synthLog(n int) (string, []string) {
	var sb strings.Builder
	hashes := make([]string, 0, n)
	for i := n; i >= 1; i-- {
		hash := fmt.Sprintf("%040x", i)
		hashes = append(hashes, hash)
		fmt.Fprintf(&sb, "commit %s\nAuthor: Dev %d <dev%d@example.com>\nDate:   Mon Jan 1 00:00:%02d 2024 +0000\n\n    change %d\n\n", hash, i, i, i%60, i)
	}
	return sb.String(), hashes
}

func TestParse_ThreeCommits(t *testing.T) {
	commits, err := New(WithLogger(quietLogger())).Parse(threeCommitsLog)
	require.NoError(t, err)
	require.Len(t, commits, 3)

	merge := commits[0]
	assert.Equal(t, hashC, merge.Hash, "decorations after the hash are ignored")
	assert.True(t, merge.IsMerge)
	assert.Equal(t, "Jane Doe", merge.Author.Name)
	assert.Equal(t, int64(1704189600), merge.Timestamp)
	assert.Equal(t, "Merge branch 'feature/login'", merge.Message)

	feature := commits[1]
	assert.Equal(t, hashB, feature.Hash)
	assert.False(t, feature.IsMerge)
	assert.Equal(t, "John Smith", feature.Author.Name)
	assert.Equal(t, "john.smith@example.com", feature.Author.Email)
	assert.Equal(t, int64(1704108600), feature.Timestamp, "offset is applied")
	assert.Equal(t, "Add login form\nValidates input on submit.", feature.Message)
	assert.Equal(t, "I8f3b2c1d0e9a8b7c6d5e4f3a2b1c0d9e8f7a6b5c", feature.ChangeID)

	initial := commits[2]
	assert.Equal(t, hashA, initial.Hash)
	assert.Equal(t, int64(1704067199), initial.Timestamp)
	assert.Zero(t, initial.Insertions)
	assert.Zero(t, initial.FilesChanged)
}

func TestParse_WellFormedCount(t *testing.T) {
	for _, n := range []int{1, 2, 7, 50} {
		raw, _ := synthLog(n)
		commits, err := New(WithLogger(quietLogger())).Parse(raw)
		require.NoError(t, err)
		assert.Len(t, commits, n)
	}
}

func TestParse_BoundaryStopsEarly(t *testing.T) {
	raw, hashes := synthLog(10)
	for k := 1; k <= len(hashes); k++ {
		commits, err := New(WithBoundary(hashes[k-1]), WithLogger(quietLogger())).Parse(raw)
		require.NoError(t, err)
		require.Len(t, commits, k-1, "boundary at position %d", k)
		for i, c := range commits {
			assert.Equal(t, hashes[i], c.Hash)
		}
	}
}

func TestParse_BoundaryEndToEnd(t *testing.T) {
	c2 := strings.Repeat("aa", 20)
	c1 := strings.Repeat("bb", 20)
	raw := fmt.Sprintf(`commit %s
Author: Jane Doe <jane@example.com>
Date:   Tue Jan 2 10:00:00 2024 +0000

    Second change

commit %s
Author: Jane Doe <jane@example.com>
Date:   Mon Jan 1 10:00:00 2024 +0000

    First change
`, c2, c1)

	commits, err := New(WithBoundary(c1), WithLogger(quietLogger())).Parse(raw)
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, c2, commits[0].Hash)

	commits, err = New(WithBoundary(c2), WithLogger(quietLogger())).Parse(raw)
	require.NoError(t, err)
	assert.Empty(t, commits, "nothing new")
}

func TestParse_UnknownBoundaryParsesEverything(t *testing.T) {
	raw, _ := synthLog(3)
	commits, err := New(WithBoundary(strings.Repeat("f", 40)), WithLogger(quietLogger())).Parse(raw)
	require.NoError(t, err)
	assert.Len(t, commits, 3)
}

func TestParse_MalformedLinesAreSkipped(t *testing.T) {
	var logs strings.Builder
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	commits, err := New(WithLogger(logger)).Parse(malformedLinesLog)
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, "Signed change", commits[0].Message)
	assert.Equal(t, 2, strings.Count(logs.String(), "malformed log line"))
}

func TestParse_InvalidTrailingHashDropped(t *testing.T) {
	var logs strings.Builder
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	commits, err := New(WithLogger(logger)).Parse(invalidTrailingHashLog)
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, hashB, commits[0].Hash)
	assert.Contains(t, logs.String(), "invalid commit hash")
}

func TestParse_InvalidHeaderHashDropped(t *testing.T) {
	raw := "commit XYZ\nAuthor: A <a@b>\nDate:   Mon Jan 1 00:00:00 2024 +0000\n\n    x\n\n" +
		"commit " + hashA + "\nAuthor: A <a@b>\nDate:   Mon Jan 1 00:00:00 2024 +0000\n\n    y\n"
	commits, err := New(WithLogger(quietLogger())).Parse(raw)
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, hashA, commits[0].Hash)
}

func TestParse_BadDateFails(t *testing.T) {
	_, err := New(WithLogger(quietLogger())).Parse(badDateLog)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedRecord)

	var recErr *RecordError
	require.ErrorAs(t, err, &recErr)
	assert.Equal(t, hashB, recErr.Hash)
	assert.Equal(t, "date", recErr.Field)
	assert.Equal(t, 3, recErr.Line)
}

func TestParse_BadAuthorFails(t *testing.T) {
	raw := "commit " + hashA + "\nAuthor: nobody\nDate:   Mon Jan 1 00:00:00 2024 +0000\n"
	_, err := New(WithLogger(quietLogger())).Parse(raw)
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestParse_Cutoff(t *testing.T) {
	// Cutoff between the middle and the oldest commit of the fixture.
	commits, err := New(WithCutoff(1704100000), WithLogger(quietLogger())).Parse(threeCommitsLog)
	require.NoError(t, err)
	require.Len(t, commits, 2, "trailing ignored record is dropped")
	assert.False(t, commits[0].Ignore)
	assert.False(t, commits[1].Ignore)

	// Cutoff above every commit: header-finalized records stay, flagged.
	commits, err = New(WithCutoff(1800000000), WithLogger(quietLogger())).Parse(threeCommitsLog)
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.True(t, commits[0].Ignore)
	assert.True(t, commits[1].Ignore)
	assert.Equal(t, "Merge branch 'feature/login'", commits[0].Message, "ignored records are still fully parsed")
}

func TestParse_MergeHeuristic(t *testing.T) {
	raw := "commit " + hashA + "\nAuthor: A <a@b>\nDate:   Mon Jan 1 00:00:00 2024 +0000\n\n    Avoid MERGE conflicts in docs\n"
	commits, err := New(WithLogger(quietLogger())).Parse(raw)
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.True(t, commits[0].IsMerge, "message mentioning merge is flagged")
}

func TestParse_Empty(t *testing.T) {
	commits, err := New().Parse("")
	require.NoError(t, err)
	assert.Empty(t, commits)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"   Mon Jan 1 00:00:00 2024 +0000", 1704067200},
		{"Tue Jan  2 01:00:00 2024 +0100", 1704153600},
		{"Mon, 1 Jan 2024 00:00:00 +0000", 1704067200},
		{"2024-01-01T00:00:00Z", 1704067200},
		{"2024-01-01 02:00:00 +0200", 1704067200},
	}
	for _, tt := range tests {
		got, err := parseDate(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	_, err := parseDate("not a date")
	assert.Error(t, err)
}
