package parquet

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/repometrics/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func sampleRuns() []Run {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Second)
	return []Run{
		{
			RunID:          1,
			StartTime:      start,
			EndTime:        &end,
			RunDurationMs:  ptr(int32(90_000)),
			TotalRepos:     3,
			SucceededRepos: 2,
			FailedRepos:    1,
			ConfigParams:   ptr(`{"store_format":"csv"}`),
		},
		{
			RunID:     2,
			StartTime: start.Add(time.Hour),
			// Interrupted run without totals.
		},
	}
}

func sampleRepoResults() []RepoResult {
	at := time.Date(2024, 5, 1, 12, 0, 30, 0, time.UTC)
	return []RepoResult{
		{RunID: 1, Position: 0, Owner: "octocat", Name: "Hello-World", Status: "ok", RecordJSON: ptr(`["1.00 KB"]`), RecordedAt: at},
		{RunID: 1, Position: 1, Owner: "octocat", Name: "empty", Status: "failed", Stage: ptr("commit-history"), ErrorKind: ptr("shape"), ErrorMessage: ptr("empty commit list"), RecordedAt: at},
	}
}

func readAll[T any](t *testing.T, path string) []T {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[T](file)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		require.NoError(t, err)
	}
	return rows[:n]
}

func TestRunStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(Run))
	for _, col := range []string{"run_id", "start_time", "end_time", "run_duration_ms", "total_repos", "succeeded_repos", "failed_repos", "config_params"} {
		_, ok := s.Lookup(col)
		assert.True(t, ok, "column %s should exist", col)
	}
}

func TestRepoResultStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(RepoResult))
	for _, col := range []string{"run_id", "position", "owner", "name", "status", "stage", "error_kind", "error_message", "record_json", "recorded_at"} {
		_, ok := s.Lookup(col)
		assert.True(t, ok, "column %s should exist", col)
	}
}

func TestWriteRunsParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.parquet")
	data := sampleRuns()
	require.NoError(t, WriteRunsParquet(data, path))

	got := readAll[Run](t, path)
	require.Len(t, got, len(data))
	assert.Equal(t, int64(1), got[0].RunID)
	assert.Equal(t, int32(2), got[0].SucceededRepos)
	require.NotNil(t, got[0].EndTime)
	assert.WithinDuration(t, *data[0].EndTime, *got[0].EndTime, time.Nanosecond)
	require.NotNil(t, got[0].ConfigParams)
	assert.Equal(t, *data[0].ConfigParams, *got[0].ConfigParams)

	assert.Nil(t, got[1].EndTime)
	assert.Nil(t, got[1].RunDurationMs)
	assert.Nil(t, got[1].ConfigParams)
}

func TestWriteRepoResultsParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.parquet")
	data := sampleRepoResults()
	require.NoError(t, WriteRepoResultsParquet(data, path))

	got := readAll[RepoResult](t, path)
	require.Len(t, got, 2)
	assert.Equal(t, "Hello-World", got[0].Name)
	assert.Nil(t, got[0].Stage)
	require.NotNil(t, got[1].ErrorKind)
	assert.Equal(t, "shape", *got[1].ErrorKind)
}

func TestWriteRunsParquet_EmptyData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteRunsParquet([]Run{}, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestWriteRunsParquet_BadPath(t *testing.T) {
	err := WriteRunsParquet(sampleRuns(), filepath.Join(t.TempDir(), "missing", "runs.parquet"))
	assert.Error(t, err)
}

func TestConvertRecords(t *testing.T) {
	end := time.Now()
	runs := ConvertRunRecords([]schema.RunRecord{{RunID: 4, EndTime: &end, TotalRepos: 9}})
	require.Len(t, runs, 1)
	assert.Equal(t, int64(4), runs[0].RunID)
	assert.Equal(t, int32(9), runs[0].TotalRepos)
	assert.Same(t, &end, runs[0].EndTime)

	results := ConvertRepoResultRecords([]schema.RepoResultRecord{{RunID: 4, Position: 2, Owner: "o", Name: "n", Status: "ok"}})
	require.Len(t, results, 1)
	assert.Equal(t, int32(2), results[0].Position)
	assert.Equal(t, "o", results[0].Owner)

	assert.Empty(t, ConvertRunRecords(nil))
}
