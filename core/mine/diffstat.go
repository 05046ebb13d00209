package mine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrDiffStatUnderflow is returned when a merge summary has fewer than three columns.
var ErrDiffStatUnderflow = errors.New("diff stat underflow")

// Stats holds the line counts of one commit against its parent.
type Stats struct {
	FilesChanged int
	Insertions   int
	Deletions    int
}

// ParseShortStat reads a `git diff --shortstat` summary such as
// "3 files changed, 10 insertions(+), 2 deletions(-)".
// Each number is paired with the word after it; missing categories stay zero.
func ParseShortStat(s string) Stats {
	var st Stats
	tokens := strings.Fields(strings.ReplaceAll(s, ",", " "))
	for i := 0; i+1 < len(tokens); i++ {
		n, err := strconv.Atoi(tokens[i])
		if err != nil {
			continue
		}
		word := tokens[i+1]
		switch {
		case strings.HasPrefix(word, "file"):
			st.FilesChanged = n
		case strings.HasPrefix(word, "insertion"):
			st.Insertions = n
		case strings.HasPrefix(word, "deletion"):
			st.Deletions = n
		}
		i++
	}
	return st
}

// ParseMergeStat reads the positional "files insertions deletions" summary of a merge.
// A column of "-" is blank and leaves its count at zero.
func ParseMergeStat(s string) (Stats, error) {
	tokens := strings.Fields(s)
	if len(tokens) < 3 {
		return Stats{}, fmt.Errorf("%w: %d tokens in %q", ErrDiffStatUnderflow, len(tokens), s)
	}
	var cols [3]int
	for i := range cols {
		if tokens[i] == "-" {
			continue
		}
		n, err := strconv.Atoi(tokens[i])
		if err != nil {
			return Stats{}, fmt.Errorf("merge stat column %d: %w", i, err)
		}
		cols[i] = n
	}
	return Stats{FilesChanged: cols[0], Insertions: cols[1], Deletions: cols[2]}, nil
}
