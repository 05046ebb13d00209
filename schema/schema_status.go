package schema

import "time"

// CacheStatus represents the status of the commit cache.
type CacheStatus struct {
	Backend          string    `json:"backend"`
	Connected        bool      `json:"connected"`
	SchemaVersion    uint      `json:"schema_version"`
	TotalCommits     int       `json:"total_commits"`
	TotalRepos       int       `json:"total_repos"`
	SyncedRepos      int       `json:"synced_repos"`
	NewestCommitTime time.Time `json:"newest_commit_time"`
	OldestCommitTime time.Time `json:"oldest_commit_time"`
	TableSizeBytes   int64     `json:"table_size_bytes"`
}

// SyncReport summarizes one repository's sync pass.
type SyncReport struct {
	Tag      string        `json:"tag"`
	Repo     string        `json:"repo"`
	Parsed   int           `json:"parsed"`
	Stored   int           `json:"stored"`
	Cursor   string        `json:"cursor"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}
