package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestSyncMetrics(t *testing.T) {
	m := NewSyncMetrics()
	m.CommitsIngested("oss", "alpha", 3)
	m.CommitsIngested("oss", "alpha", 2)
	m.CommitsIngested("oss", "beta", 0)
	m.RepoFailed("oss", ReasonGit)
	m.ObserveMining(20 * time.Millisecond)

	body := scrape(t, m.Handler())
	assert.Contains(t, body, `gitstat_commits_ingested_total{repo="alpha",tag="oss"} 5`)
	assert.NotContains(t, body, `repo="beta"`, "zero additions create no series")
	assert.Contains(t, body, `gitstat_repo_failures_total{reason="git",tag="oss"} 1`)
	assert.Contains(t, body, "gitstat_stat_mining_seconds_count 1")
}

func TestSyncMetrics_Nil(t *testing.T) {
	var m *SyncMetrics
	assert.NotPanics(t, func() {
		m.CommitsIngested("oss", "alpha", 1)
		m.RepoFailed("oss", ReasonCache)
		m.ObserveMining(time.Second)
	})
}

func TestServe(t *testing.T) {
	m := NewSyncMetrics()
	m.CommitsIngested("oss", "alpha", 1)

	srv, err := Serve(context.Background(), "127.0.0.1:0", m)
	require.NoError(t, err)
	defer func() { assert.NoError(t, srv.Close()) }()

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "gitstat_commits_ingested_total")

	_, err = Serve(context.Background(), srv.Addr(), m)
	assert.Error(t, err, "address already in use")
}
