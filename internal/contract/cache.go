package contract

// CacheManager hands out the process-wide commit store.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetCommitStore() CommitStore
}
