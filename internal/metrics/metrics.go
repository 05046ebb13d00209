// Package metrics exposes sync progress as Prometheus collectors.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Failure reasons used as the reason label of the failure counter.
const (
	ReasonWorkspace = "workspace"
	ReasonGit       = "git"
	ReasonParse     = "parse"
	ReasonMine      = "mine"
	ReasonCache     = "cache"
)

// SyncMetrics holds the collectors updated during a sync. A nil *SyncMetrics
// is valid and records nothing.
type SyncMetrics struct {
	registry *prometheus.Registry
	ingested *prometheus.CounterVec
	failures *prometheus.CounterVec
	mining   prometheus.Histogram
}

// NewSyncMetrics creates the collectors on their own registry, so several
// instances can coexist in one process.
func NewSyncMetrics() *SyncMetrics {
	m := &SyncMetrics{
		registry: prometheus.NewRegistry(),
		ingested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gitstat_commits_ingested_total",
			Help: "Commits appended to the cache.",
		}, []string{"tag", "repo"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gitstat_repo_failures_total",
			Help: "Repository sync passes that failed.",
		}, []string{"tag", "reason"}),
		mining: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gitstat_stat_mining_seconds",
			Help:    "Duration of one diff stat computation.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
	}
	m.registry.MustRegister(m.ingested, m.failures, m.mining)
	return m
}

// CommitsIngested adds n stored commits for tag/repo.
func (m *SyncMetrics) CommitsIngested(tag, repo string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ingested.WithLabelValues(tag, repo).Add(float64(n))
}

// RepoFailed counts a failed pass.
func (m *SyncMetrics) RepoFailed(tag, reason string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(tag, reason).Inc()
}

// ObserveMining records the duration of one mining unit.
func (m *SyncMetrics) ObserveMining(d time.Duration) {
	if m == nil {
		return
	}
	m.mining.Observe(d.Seconds())
}

// Handler serves the collectors in the Prometheus text format.
func (m *SyncMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Server serves /metrics until closed.
type Server struct {
	server   *http.Server
	listener net.Listener
}

// Serve starts listening on addr and serves m at /metrics in the background.
func Serve(ctx context.Context, addr string, m *SyncMetrics) (*Server, error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Warn("metrics server stopped", slog.Any("error", err))
		}
	}()
	return &Server{server: srv, listener: listener}, nil
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Close shuts the server down.
func (s *Server) Close() error {
	if err := s.server.Shutdown(context.Background()); err != nil {
		return fmt.Errorf("shutdown metrics server: %w", err)
	}
	return nil
}
