package schema

import "path/filepath"

// RepoMeta is the metadata row kept for every repository under a tag.
// Descriptive fields are written once when the repository is first observed;
// afterwards only the clone state and the sync cursor change.
type RepoMeta struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Tag            string `json:"tag"`
	URL            string `json:"url"`
	DefaultBranch  string `json:"default_branch"`
	Stars          int    `json:"stars"`
	Watchers       int    `json:"watchers"`
	Forks          int    `json:"forks"`
	Size           int64  `json:"size"`
	IsCloned       bool   `json:"is_cloned"`
	Failed         int    `json:"failed"`           // Consecutive clone/update failures
	LastCommitHash string `json:"last_commit_hash"` // Sync cursor, empty before the first sync
}

// Dir returns the working copy location of the repository below root.
func (m RepoMeta) Dir(root string) string {
	return filepath.Join(root, m.Tag, m.Name)
}

// RepoSpec declares one repository inside a mapping.
type RepoSpec struct {
	ID     int64  `mapstructure:"id" json:"id"`
	Name   string `mapstructure:"name" json:"name"`
	URL    string `mapstructure:"url" json:"url"`
	Branch string `mapstructure:"branch" json:"branch"` // Empty follows the remote HEAD
}

// RepoMapping groups repositories under a caller-assigned tag.
type RepoMapping struct {
	Tag    string     `mapstructure:"tag" json:"tag"`
	Ignore []string   `mapstructure:"ignore" json:"ignore"` // doublestar patterns matched against repo names
	Repos  []RepoSpec `mapstructure:"repos" json:"repos"`
}

// Meta converts a declared repository into its initial metadata row.
func (s RepoSpec) Meta(tag string) RepoMeta {
	return RepoMeta{
		ID:            s.ID,
		Name:          s.Name,
		Tag:           tag,
		URL:           s.URL,
		DefaultBranch: s.Branch,
	}
}
