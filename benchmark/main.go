// Package main provides a performance benchmarking tool for the git-hotspots CLI.
// It measures execution times across repositories and worker counts, running each
// configuration multiple times, treating the first successful run as cold and
// averaging the rest as warm, and writes a CSV for documentation.
//
// Prerequisites:
// - git-hotspots binary installed and available in PATH
// - Test repositories cloned to the specified base directory
// - Git repositories: fd, neovim, kubernetes
//
// Usage: go run benchmark/main.go [repo-base-dir]
//
//	repo-base-dir: Directory containing test repositories
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"
)

// BenchmarkResult holds the timings of one repository and worker count.
type BenchmarkResult struct {
	Repository  string
	Workers     int
	Tracking    string
	ColdTime    string
	WarmTime    string
	Description string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	RepoBase  string
	Timeout   time.Duration
	Runs      int
	Workers   []int
	Backends  []string
	TestRepos []string
	// RepoPrefixes narrows large repositories to a subtree.
	RepoPrefixes map[string]string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [repo-base-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		RepoBase:  os.Args[1],
		Timeout:   10 * time.Minute,
		Runs:      3,
		Workers:   []int{1, 4, 8},
		Backends:  []string{"none", "sqlite"},
		TestRepos: []string{"fd", "neovim", "kubernetes"},
		RepoPrefixes: map[string]string{
			"neovim":     "runtime/lua",
			"kubernetes": "pkg/kubelet",
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	dbDir, err := os.MkdirTemp("", "git-hotspots-bench")
	if err != nil {
		fmt.Printf("Failed to create temp dir: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = os.RemoveAll(dbDir) }()

	results := runBenchmarks(config, filepath.Join(dbDir, "runs.db"))

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the binary and test repositories exist.
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("git-hotspots"); err != nil {
		return fmt.Errorf("git-hotspots binary not found in PATH")
	}
	for _, repo := range config.TestRepos {
		repoPath := filepath.Join(config.RepoBase, repo)
		if _, err := os.Stat(repoPath); os.IsNotExist(err) {
			return fmt.Errorf("repository %s not found at %s", repo, repoPath)
		}
	}
	return nil
}

// runBenchmarks executes every repository, backend and worker combination.
func runBenchmarks(config BenchmarkConfig, dbPath string) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d repos, %v timeout, workers %v, %d runs each\n",
		len(config.TestRepos), config.Timeout, config.Workers, config.Runs)

	for _, repo := range config.TestRepos {
		fmt.Printf("Benchmarking %s\n", repo)
		repoPath := filepath.Join(config.RepoBase, repo)

		for _, backend := range config.Backends {
			for _, workers := range config.Workers {
				results = append(results, runBenchmarkSuite(config, repo, repoPath, backend, dbPath, workers))
			}
		}
	}
	return results
}

// runBenchmarkSuite times one configuration and summarizes it.
func runBenchmarkSuite(config BenchmarkConfig, repo, repoPath, backend, dbPath string, workers int) BenchmarkResult {
	args := []string{
		"--no-progress",
		"--output", "csv",
		"--workers", strconv.Itoa(workers),
		"--analysis-backend", backend,
	}
	if backend == "sqlite" {
		args = append(args, "--analysis-db-connect", dbPath)
	}
	desc := fmt.Sprintf("%d workers, tracking %s", workers, backend)
	if prefix, ok := config.RepoPrefixes[repo]; ok {
		args = append(args, "--prefix", prefix)
		desc += ", prefix " + prefix
	}

	fmt.Printf("  %s\n", desc)
	cold, warm := runBenchmark(config, repoPath, args)

	result := BenchmarkResult{
		Repository:  repo,
		Workers:     workers,
		Tracking:    backend,
		ColdTime:    "TIMEOUT",
		WarmTime:    "TIMEOUT",
		Description: desc,
	}
	if cold > 0 {
		result.ColdTime = fmt.Sprintf("%.3fs", cold)
	}
	if len(warm) > 0 {
		var sum float64
		for _, t := range warm {
			sum += t
		}
		result.WarmTime = fmt.Sprintf("%.3fs", sum/float64(len(warm)))
	}
	fmt.Printf("    Cold: %s, Warm average: %s\n", result.ColdTime, result.WarmTime)
	return result
}

// runBenchmark executes git-hotspots repeatedly and returns the cold time and
// the warm times in seconds.
func runBenchmark(config BenchmarkConfig, repoPath string, args []string) (coldTime float64, warmTimes []float64) {
	var times []float64
	for range config.Runs {
		start := time.Now()

		cmd := exec.Command("git-hotspots", args...)
		cmd.Dir = repoPath

		done := make(chan error, 1)
		go func() {
			_, err := cmd.Output()
			done <- err
		}()

		select {
		case err := <-done:
			if err == nil {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
			<-done
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return coldTime, warmTimes
}

// saveResults writes benchmark results to a timestamped CSV file.
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("git_hotspots_benchmark_%s.csv", timestamp))

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
	defer writer.Flush()

	if err := writer.Write([]string{"repo", "workers", "tracking", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range results {
		if err := writer.Write([]string{r.Repository, strconv.Itoa(r.Workers), r.Tracking, r.ColdTime, r.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results.
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, r := range results {
		fmt.Printf("  %-12s %-40s Cold: %s, Warm: %s\n", r.Repository, r.Description, r.ColdTime, r.WarmTime)
	}
}
