// Package main benchmarks gitstat ingestion and aggregation on real repositories.
// For every repository it times full ingests without a cache, the cold sync that fills
// a fresh SQLite cache, the warm syncs that find nothing new, and stats over the cache.
// Results are written as CSV for performance analysis and documentation.
//
// Prerequisites:
// - gitstat binary installed and available in PATH
// - Test repositories cloned to the specified base directory
//
// Usage: go run ./benchmark [repo-base-dir] [repo...]
//
//	repo-base-dir: Directory containing test repositories
//	repo:          Repository directory names (default: csv-parser fd git kubernetes)
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// BenchmarkResult holds the timings of one repository.
type BenchmarkResult struct {
	Repository  string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
	StatsTime   string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	RepoBase    string
	Timeout     time.Duration
	Workers     int
	NoCacheRuns int
	WarmRuns    int
	TestRepos   []string
}

// errTimeout marks a run that exceeded the configured timeout.
var errTimeout = errors.New("timeout")

func main() {
	if len(os.Args) < 2 {
		fmt.Printf("Usage: %s [repo-base-dir] [repo...]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		RepoBase:    os.Args[1],
		Timeout:     10 * time.Minute,
		Workers:     14,
		NoCacheRuns: 2,
		WarmRuns:    3,
		TestRepos:   []string{"csv-parser", "fd", "git", "kubernetes"},
	}
	if len(os.Args) > 2 {
		config.TestRepos = os.Args[2:]
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the gitstat binary and test repositories exist.
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("gitstat"); err != nil {
		return fmt.Errorf("gitstat binary not found in PATH")
	}

	for _, repo := range config.TestRepos {
		repoPath := filepath.Join(config.RepoBase, repo)
		if _, err := os.Stat(repoPath); os.IsNotExist(err) {
			return fmt.Errorf("repository %s not found at %s", repo, repoPath)
		}
	}

	return nil
}

// runBenchmarks executes the benchmark suite for every configured repository.
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d repos, %v timeout, %d workers, no-cache: %d runs, warm: %d runs\n",
		len(config.TestRepos), config.Timeout, config.Workers, config.NoCacheRuns, config.WarmRuns)

	for _, repo := range config.TestRepos {
		fmt.Printf("Benchmarking %s\n", repo)
		results = append(results, runBenchmarkSuite(config, repo, filepath.Join(config.RepoBase, repo)))
	}

	return results
}

// runBenchmarkSuite times every phase for one repository against a private cache file.
func runBenchmarkSuite(config BenchmarkConfig, repo, repoPath string) BenchmarkResult {
	dbDir, err := os.MkdirTemp("", "gitstat-benchmark-*")
	if err != nil {
		fmt.Printf("  Failed to create cache dir: %v\n", err)
		return BenchmarkResult{Repository: repo}
	}
	defer func() { _ = os.RemoveAll(dbDir) }()
	dbPath := filepath.Join(dbDir, "cache.db")

	syncArgs := func(backend string) []string {
		return []string{"sync", repoPath, "--workers", fmt.Sprint(config.Workers),
			"--cache-backend", backend, "--cache-db-connect", dbPath}
	}

	// Phase 1: every run ingests the whole history
	fmt.Printf("  No-cache phase (%d runs)\n", config.NoCacheRuns)
	noCache := average(timeRuns(config, syncArgs("none"), config.NoCacheRuns))

	// Phase 2: the first run fills the cache, later ones find nothing new
	fmt.Printf("  Cache phase (%d runs)\n", config.WarmRuns+1)
	cold := average(timeRuns(config, syncArgs("sqlite"), 1))
	warm := average(timeRuns(config, syncArgs("sqlite"), config.WarmRuns))

	// Phase 3: aggregation over the cached history
	fmt.Printf("  Stats phase (%d runs)\n", config.WarmRuns)
	stats := average(timeRuns(config, []string{"stats", repoPath, "--period", "1 week",
		"--cache-backend", "sqlite", "--cache-db-connect", dbPath, "--output", "json"}, config.WarmRuns))

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s, Stats average: %s\n", noCache, cold, warm, stats)

	return BenchmarkResult{
		Repository:  repo,
		NoCacheTime: noCache,
		ColdTime:    cold,
		WarmTime:    warm,
		StatsTime:   stats,
	}
}

// timeRuns runs gitstat numRuns times and returns the durations of the successful runs in seconds.
func timeRuns(config BenchmarkConfig, args []string, numRuns int) []float64 {
	var times []float64
	for run := 1; run <= numRuns; run++ {
		elapsed, err := runOnce(config.Timeout, args)
		if err != nil {
			fmt.Printf("    run %d failed: %v\n", run, err)
			continue
		}
		times = append(times, elapsed.Seconds())
	}
	return times
}

// runOnce runs a single gitstat command, discarding its output.
func runOnce(timeout time.Duration, args []string) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(ctx, "gitstat", args...)
	output, err := cmd.CombinedOutput()
	if ctx.Err() != nil {
		return 0, errTimeout
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %s", err, lastLine(output))
	}
	return time.Since(start), nil
}

// lastLine returns the final non-empty line of command output.
func lastLine(output []byte) string {
	end := len(output)
	for end > 0 && (output[end-1] == '\n' || output[end-1] == '\r') {
		end--
	}
	start := end
	for start > 0 && output[start-1] != '\n' {
		start--
	}
	return string(output[start:end])
}

// average formats the mean of times, or TIMEOUT when no run succeeded.
func average(times []float64) string {
	if len(times) == 0 {
		return "TIMEOUT"
	}
	var sum float64
	for _, t := range times {
		sum += t
	}
	return fmt.Sprintf("%.3fs", sum/float64(len(times)))
}

// saveResults writes benchmark results to a timestamped CSV file.
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("gitstat_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"repo", "no_cache_avg", "cold_time", "warm_avg", "stats_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Repository, result.NoCacheTime, result.ColdTime, result.WarmTime, result.StatsTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary.
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, result := range results {
		fmt.Printf("  %-12s: No-cache: %s, Cold: %s, Warm: %s, Stats: %s\n",
			result.Repository, result.NoCacheTime, result.ColdTime, result.WarmTime, result.StatsTime)
	}
}
