// Package iocache is the durable commit cache: a ledger of ingested commits
// plus one sync cursor per repository.
package iocache

import (
	"sync"

	"github.com/TordWessman/gitstat/internal/contract"
)

// CacheStoreManager holds the process-wide CommitStore.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	commits      contract.CommitStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetCommitStore returns the CommitStore.
func (mgr *CacheStoreManager) GetCommitStore() contract.CommitStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.commits
}
