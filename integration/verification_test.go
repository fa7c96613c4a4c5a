//go:build integration

// Package integration contains end-to-end tests for the repometrics binary.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags integration ./integration
package integration

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/repometrics/internal/parquet"
	"github.com/huangsam/repometrics/schema"
	pq "github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var helloWorldRow = []string{
	"1.50 MB", "Go: 1.50 MB; Shell: 2.00 KB; ", "12", "1000", "Go: 10; Shell: 2; ",
	"Go: 900; Shell: 100; ", "1234", "26 Jan, 2011", "5 Mar, 2021", "2", "a: 5; b: 2; ",
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

// TestCollectSkipsFailedRepositories runs a batch where the middle repository
// does not exist and checks the rows, the console summary and the ledger.
func TestCollectSkipsFailedRepositories(t *testing.T) {
	dir := t.TempDir()
	server := newFakeGitHub(t)
	env := collectEnv(server, writeStubCounter(t, dir))
	env["REPOMETRICS_RUNS_BACKEND"] = "sqlite"
	env["REPOMETRICS_RUNS_DB_CONNECT"] = filepath.Join(dir, "runs.db")

	input := writeRepoList(t, dir, "octocat/Hello-World", "octocat/missing", "octocat/Hello-World")
	res := runCLI(t, dir, env, "collect", input, "--summary")
	require.NoError(t, res.Err)

	rows := readCSV(t, filepath.Join(dir, schema.DefaultOutputFile))
	require.Len(t, rows, 3)
	assert.Equal(t, schema.Header, rows[0])
	assert.Equal(t, helloWorldRow, rows[1])
	assert.Equal(t, helloWorldRow, rows[2])

	assert.Contains(t, res.Stdout, "Collected 2 of 3 repositories (1 skipped)")
	assert.Contains(t, res.Stdout, "octocat/missing")
	assert.Contains(t, res.Stderr, "repository skipped")
	assert.Contains(t, res.Stderr, "stage="+schema.StageLanguageSize)

	t.Run("runs status", func(t *testing.T) {
		status := runCLI(t, dir, env, "runs", "status")
		require.NoError(t, status.Err)
		assert.Contains(t, status.Stdout, "Total Runs: 1")
		assert.Contains(t, status.Stdout, "Repositories: 3 (2 ok, 1 failed)")
	})

	t.Run("runs export", func(t *testing.T) {
		out := filepath.Join(dir, "ledger")
		export := runCLI(t, dir, env, "runs", "export", "--output-file", out)
		require.NoError(t, export.Err)

		runs, err := pq.ReadFile[parquet.Run](out + ".runs.parquet")
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, int32(3), runs[0].TotalRepos)
		assert.Equal(t, int32(1), runs[0].FailedRepos)

		results, err := pq.ReadFile[parquet.RepoResult](out + ".repo_results.parquet")
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "missing", results[1].Name)
		require.NotNil(t, results[1].Stage)
		assert.Equal(t, schema.StageLanguageSize, *results[1].Stage)
		require.NotNil(t, results[0].RecordJSON)

		var rec []string
		require.NoError(t, json.Unmarshal([]byte(*results[0].RecordJSON), &rec))
		assert.Equal(t, helloWorldRow, rec)
	})

	t.Run("runs clear", func(t *testing.T) {
		clear := runCLI(t, dir, env, "runs", "clear")
		require.NoError(t, clear.Err)
		assert.NoFileExists(t, filepath.Join(dir, "runs.db"))
	})
}

// TestCollectAppendsOnRerun checks that a second run appends a second header.
func TestCollectAppendsOnRerun(t *testing.T) {
	dir := t.TempDir()
	env := collectEnv(newFakeGitHub(t), writeStubCounter(t, dir))
	input := writeRepoList(t, dir, "octocat/Hello-World")

	require.NoError(t, runCLI(t, dir, env, "collect", input).Err)
	require.NoError(t, runCLI(t, dir, env, "collect", input).Err)

	rows := readCSV(t, filepath.Join(dir, schema.DefaultOutputFile))
	require.Len(t, rows, 4)
	assert.Equal(t, schema.Header, rows[0])
	assert.Equal(t, helloWorldRow, rows[1])
	assert.Equal(t, schema.Header, rows[2])
	assert.Equal(t, helloWorldRow, rows[3])
}

// TestCollectJSONL writes JSON arrays instead of CSV rows.
func TestCollectJSONL(t *testing.T) {
	dir := t.TempDir()
	env := collectEnv(newFakeGitHub(t), writeStubCounter(t, dir))
	input := writeRepoList(t, dir, "octocat/Hello-World")
	out := filepath.Join(dir, "metrics.jsonl")

	res := runCLI(t, dir, env, "collect", input, "--format", "jsonl", "--output-file", out, "--output", "json")
	require.NoError(t, res.Err)

	var summary map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.Stdout), &summary))
	assert.InDelta(t, 1, summary["succeeded"], 0)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	var lines [][]string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var row []string
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &row))
		lines = append(lines, row)
	}
	require.NoError(t, scanner.Err())
	require.Len(t, lines, 2)
	assert.Equal(t, schema.Header, lines[0])
	assert.Equal(t, helloWorldRow, lines[1])
}

// TestCollectInputErrorIsFatal checks that a bad input list fails the run
// before the output store is created.
func TestCollectInputErrorIsFatal(t *testing.T) {
	dir := t.TempDir()
	env := collectEnv(newFakeGitHub(t), writeStubCounter(t, dir))

	t.Run("missing file", func(t *testing.T) {
		res := runCLI(t, dir, env, "collect", filepath.Join(dir, "nope.csv"))
		require.Error(t, res.Err)
		assert.Contains(t, res.Stderr, "kind=input")
		assert.NoFileExists(t, filepath.Join(dir, schema.DefaultOutputFile))
	})

	t.Run("malformed line", func(t *testing.T) {
		path := filepath.Join(dir, "bad.csv")
		require.NoError(t, os.WriteFile(path, []byte("octocat,Hello-World\njust-one-field\n"), 0o644))
		res := runCLI(t, dir, env, "collect", path)
		require.Error(t, res.Err)
		assert.NoFileExists(t, filepath.Join(dir, schema.DefaultOutputFile))
	})
}

// TestInspectJSON prints one record without touching the output store.
func TestInspectJSON(t *testing.T) {
	dir := t.TempDir()
	env := collectEnv(newFakeGitHub(t), writeStubCounter(t, dir))

	res := runCLI(t, dir, env, "inspect", "octocat/Hello-World", "--output", "json")
	require.NoError(t, res.Err)

	var decoded struct {
		Repository string `json:"repository"`
		Fields     []struct {
			Column string `json:"column"`
			Value  string `json:"value"`
		} `json:"fields"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Stdout), &decoded))
	assert.Equal(t, "octocat/Hello-World", decoded.Repository)
	require.Len(t, decoded.Fields, schema.ColumnCount)
	for i, f := range decoded.Fields {
		assert.Equal(t, schema.Header[i], f.Column)
		assert.Equal(t, helloWorldRow[i], f.Value)
	}
	assert.NoFileExists(t, filepath.Join(dir, schema.DefaultOutputFile))
}
