package outwriter

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSummary() schema.BatchSummary {
	return schema.BatchSummary{
		Total:     2,
		Succeeded: 1,
		Failed:    1,
		Duration:  1500 * time.Millisecond,
		Results: []schema.RepoResult{
			{Position: 0, Ref: schema.RepositoryRef{Owner: "octocat", Name: "Hello-World"}, Status: schema.StatusOK},
			{
				Position:  1,
				Ref:       schema.RepositoryRef{Owner: "octocat", Name: "missing"},
				Status:    schema.StatusFailed,
				Stage:     schema.StageLanguageSize,
				ErrorKind: string(contract.TransportKind),
				Error:     "GET /repos/octocat/missing/languages: 404 Not Found",
			},
		},
	}
}

func sampleRecord() schema.Record {
	return schema.Record{
		"1.50 MB", "Go: 1.50 MB; Shell: 2.00 KB; ", "12", "1000", "Go: 10; Shell: 2; ",
		"Go: 900; Shell: 100; ", "1234", "26 Jan, 2011", "5 Mar, 2021", "2", "a: 5; b: 2; ",
	}
}

func TestWriteRunSummary_Text(t *testing.T) {
	t.Run("totals only", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := &contract.Config{Output: schema.TextOut, OutputFile: "out.csv", StoreFormat: schema.CSVStore}
		require.NoError(t, WriteRunSummary(&buf, sampleSummary(), cfg))

		out := buf.String()
		assert.Contains(t, out, "Collected 1 of 2 repositories (1 skipped) in 1.5s")
		assert.Contains(t, out, "Rows appended to out.csv (csv)")
		assert.NotContains(t, out, "octocat/missing")
	})

	t.Run("summary table without colors", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := &contract.Config{Output: schema.TextOut, Summary: true, Width: 200, OutputFile: "out.csv", StoreFormat: schema.CSVStore}
		require.NoError(t, WriteRunSummary(&buf, sampleSummary(), cfg))

		out := buf.String()
		assert.Contains(t, out, "REPOSITORY")
		assert.Contains(t, out, "octocat/Hello-World")
		assert.Contains(t, out, "octocat/missing")
		assert.Contains(t, out, contract.OKValue)
		assert.Contains(t, out, contract.FailedValue)
		assert.Contains(t, out, "language-size")
		assert.Contains(t, out, "404 Not Found")
	})

	t.Run("long errors are truncated", func(t *testing.T) {
		summary := sampleSummary()
		summary.Results[1].Error = "dial tcp 127.0.0.1:443: connect: connection refused while fetching the languages listing for this repository"
		var buf bytes.Buffer
		cfg := &contract.Config{Output: schema.TextOut, Summary: true, Width: 80}
		require.NoError(t, WriteRunSummary(&buf, summary, cfg))
		assert.NotContains(t, buf.String(), "for this repository")
		assert.Contains(t, buf.String(), "...")
	})

	t.Run("summary flag with empty run prints totals", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := &contract.Config{Output: schema.TextOut, Summary: true}
		require.NoError(t, WriteRunSummary(&buf, schema.BatchSummary{}, cfg))
		assert.Contains(t, buf.String(), "Collected 0 of 0 repositories (0 skipped)")
		assert.NotContains(t, buf.String(), "REPOSITORY")
	})
}

func TestWriteRunSummary_JSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := &contract.Config{Output: schema.JSONOut, OutputFile: "out.jsonl", StoreFormat: schema.JSONLStore}
	require.NoError(t, WriteRunSummary(&buf, sampleSummary(), cfg))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.InDelta(t, 2, decoded["total"], 0)
	assert.InDelta(t, 1, decoded["succeeded"], 0)
	assert.InDelta(t, 1, decoded["failed"], 0)
	assert.InDelta(t, 1500, decoded["duration_ms"], 0)
	assert.Equal(t, "out.jsonl", decoded["output_file"])
	assert.Equal(t, "jsonl", decoded["format"])

	results, ok := decoded["results"].([]any)
	require.True(t, ok)
	require.Len(t, results, 2)
	failed := results[1].(map[string]any)
	assert.Equal(t, "language-size", failed["stage"])
	assert.Equal(t, "transport", failed["error_kind"])
}

func TestWriteRunSummary_JSONEmptyResults(t *testing.T) {
	var buf bytes.Buffer
	cfg := &contract.Config{Output: schema.JSONOut}
	require.NoError(t, WriteRunSummary(&buf, schema.BatchSummary{}, cfg))
	assert.Contains(t, buf.String(), `"results": []`)
}

func TestWriteRecord(t *testing.T) {
	ref := schema.RepositoryRef{Owner: "octocat", Name: "Hello-World"}

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := &contract.Config{Output: schema.TextOut, Width: 200}
		require.NoError(t, WriteRecord(&buf, ref, sampleRecord(), cfg))

		out := buf.String()
		for _, col := range schema.Header {
			assert.Contains(t, out, col)
		}
		assert.Contains(t, out, "26 Jan, 2011")
		assert.Contains(t, out, "Collected 11 fields for octocat/Hello-World")
	})

	t.Run("json keeps header order", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := &contract.Config{Output: schema.JSONOut}
		require.NoError(t, WriteRecord(&buf, ref, sampleRecord(), cfg))

		var decoded recordJSON
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, "octocat/Hello-World", decoded.Repository)
		require.Len(t, decoded.Fields, schema.ColumnCount)
		assert.Equal(t, schema.Header[0], decoded.Fields[0].Column)
		assert.Equal(t, "1.50 MB", decoded.Fields[0].Value)
		assert.Equal(t, schema.Header[10], decoded.Fields[10].Column)
		assert.Equal(t, "a: 5; b: 2; ", decoded.Fields[10].Value)
	})
}
