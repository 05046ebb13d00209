package iocache

import (
	"github.com/TordWessman/gitstat/internal/contract"
	"github.com/stretchr/testify/mock"
)

// MockCacheManager is a mock implementation of CacheManager for testing.
type MockCacheManager struct {
	mock.Mock
}

var _ contract.CacheManager = &MockCacheManager{} // Compile-time check

// GetCommitStore implements the CacheManager interface.
func (m *MockCacheManager) GetCommitStore() contract.CommitStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.CommitStore)
	return store
}
