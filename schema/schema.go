// Package schema has the models and constants shared by all parts of gitstat.
package schema

import (
	"regexp"
	"time"
)

// hashPattern matches a full, lowercase SHA-1 object name.
var hashPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)

// IsValidHash reports whether hash is exactly 40 lowercase hex characters.
func IsValidHash(hash string) bool {
	return hashPattern.MatchString(hash)
}

// Author identifies the person who wrote a commit.
type Author struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Commit is a single record parsed from git log output and enriched with diff statistics.
type Commit struct {
	Hash         string `json:"hash"`
	Author       Author `json:"author"`
	Message      string `json:"message"`
	Timestamp    int64  `json:"timestamp"` // Epoch seconds
	IsMerge      bool   `json:"is_merge"`
	ChangeID     string `json:"change_id,omitempty"` // Optional Change-Id trailer
	FilesChanged int    `json:"files_changed"`
	Insertions   int    `json:"insertions"`
	Deletions    int    `json:"deletions"`
	Ignore       bool   `json:"-"` // Older than the configured cutoff
}

// Time returns the commit timestamp as a UTC time.
func (c Commit) Time() time.Time {
	return time.Unix(c.Timestamp, 0).UTC()
}

// CachedCommit is an immutable ledger row read back from the commit cache.
type CachedCommit struct {
	Tag          string `json:"tag"`
	Repo         string `json:"repo"`
	Hash         string `json:"hash"`
	Timestamp    int64  `json:"timestamp"`
	FilesChanged int    `json:"files_changed"`
	Insertions   int    `json:"insertions"`
	Deletions    int    `json:"deletions"`
}
