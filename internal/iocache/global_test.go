package iocache

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/TordWessman/gitstat/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetManager(t *testing.T) {
	t.Helper()
	initOnce = sync.Once{}  // Reset for test
	closeOnce = sync.Once{} // Reset for test
	Manager = &CacheStoreManager{}
	t.Cleanup(CloseCaching)
}

func TestInitCaching(t *testing.T) {
	t.Run("sqlite", func(t *testing.T) {
		resetManager(t)
		dbPath := filepath.Join(t.TempDir(), "cache.db")

		require.NoError(t, InitCaching(schema.SQLiteBackend, dbPath))
		require.NotNil(t, Manager.GetCommitStore())

		_, err := os.Stat(dbPath)
		assert.NoError(t, err, "database file should be created")
	})

	t.Run("idempotent", func(t *testing.T) {
		resetManager(t)
		dbPath := filepath.Join(t.TempDir(), "cache.db")

		require.NoError(t, InitCaching(schema.SQLiteBackend, dbPath))
		first := Manager.GetCommitStore()
		require.NoError(t, InitCaching(schema.NoneBackend, ""))
		assert.Same(t, first, Manager.GetCommitStore(), "only the first call initializes")

		// Multiple closes should be safe (sync.Once)
		CloseCaching()
		CloseCaching()
	})

	t.Run("none backend", func(t *testing.T) {
		resetManager(t)
		require.NoError(t, InitCaching(schema.NoneBackend, ""))
		_, ok := Manager.GetCommitStore().(*MemoryStore)
		assert.True(t, ok)
	})

	t.Run("error", func(t *testing.T) {
		resetManager(t)
		err := InitCaching("oracle", "")
		assert.Error(t, err)
		assert.Nil(t, Manager.GetCommitStore())
	})
}

func TestClearCache(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	store, err := NewCommitStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.NoError(t, ClearCache(schema.SQLiteBackend, dbPath, ""))
	_, err = os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, ClearCache(schema.SQLiteBackend, dbPath, ""), "missing file is fine")
	assert.Error(t, ClearCache(schema.SQLiteBackend, "", ""))
	assert.NoError(t, ClearCache(schema.NoneBackend, "", ""))
	assert.Error(t, ClearCache("oracle", "", ""))
}

func TestExecuteCacheExport(t *testing.T) {
	resetManager(t)
	require.NoError(t, InitCaching(schema.NoneBackend, ""))
	ctx := context.Background()
	out := filepath.Join(t.TempDir(), "commits.parquet")

	assert.Error(t, ExecuteCacheExport(ctx, "", ""), "output file is required")
	assert.Error(t, ExecuteCacheExport(ctx, "", out), "empty cache")

	_, err := Manager.GetCommitStore().AppendNewCommits(ctx, "oss", "alpha", newestFirst(3), 0)
	require.NoError(t, err)

	assert.Error(t, ExecuteCacheExport(ctx, "work", out), "tag without commits")
	require.NoError(t, ExecuteCacheExport(ctx, "oss", out))

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestMockCacheManager(t *testing.T) {
	store := NewMemoryStore()
	mgr := &MockCacheManager{}
	mgr.On("GetCommitStore").Return(store)

	assert.Same(t, store, mgr.GetCommitStore())
	mgr.AssertExpectations(t)
}
