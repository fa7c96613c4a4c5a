// Package parquet provides data structures and functions for exporting the
// run ledger to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/repometrics/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents a single batch run with its totals.
// This struct maps to the repometrics_runs database table.
type Run struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the run began
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run finished (nullable while a run is in progress)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	RunDurationMs  *int32 `parquet:"run_duration_ms,optional,snappy"`
	TotalRepos     int32  `parquet:"total_repos,snappy"`
	SucceededRepos int32  `parquet:"succeeded_repos,snappy"`
	FailedRepos    int32  `parquet:"failed_repos,snappy"`

	// ConfigParams contains the JSON-encoded run configuration (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// RepoResult represents the outcome of one repository within a run.
// This struct maps to the repometrics_repo_results database table.
type RepoResult struct {
	RunID    int64  `parquet:"run_id,snappy"`
	Position int32  `parquet:"position,snappy"`
	Owner    string `parquet:"owner,snappy"`
	Name     string `parquet:"name,snappy"`
	Status   string `parquet:"status,snappy"`

	// Stage, ErrorKind and ErrorMessage are set for failed repositories only
	Stage        *string `parquet:"stage,optional,snappy"`
	ErrorKind    *string `parquet:"error_kind,optional,snappy"`
	ErrorMessage *string `parquet:"error_message,optional,snappy"`

	// RecordJSON is the written row as a JSON array (nullable)
	RecordJSON *string   `parquet:"record_json,optional,snappy"`
	RecordedAt time.Time `parquet:"recorded_at,snappy"`
}

// writeParquet writes data to outputPath with a schema inferred from T.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteRepoResultsParquet writes a slice of RepoResult structs to a Parquet file.
func WriteRepoResultsParquet(data []RepoResult, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, r := range records {
		result[i] = Run{
			RunID:          r.RunID,
			StartTime:      r.StartTime,
			EndTime:        r.EndTime,
			RunDurationMs:  r.RunDurationMs,
			TotalRepos:     r.TotalRepos,
			SucceededRepos: r.SucceededRepos,
			FailedRepos:    r.FailedRepos,
			ConfigParams:   r.ConfigParams,
		}
	}
	return result
}

// ConvertRepoResultRecords converts schema.RepoResultRecord to RepoResult for Parquet export.
func ConvertRepoResultRecords(records []schema.RepoResultRecord) []RepoResult {
	result := make([]RepoResult, len(records))
	for i, r := range records {
		result[i] = RepoResult{
			RunID:        r.RunID,
			Position:     r.Position,
			Owner:        r.Owner,
			Name:         r.Name,
			Status:       r.Status,
			Stage:        r.Stage,
			ErrorKind:    r.ErrorKind,
			ErrorMessage: r.ErrorMessage,
			RecordJSON:   r.RecordJSON,
			RecordedAt:   r.RecordedAt,
		}
	}
	return result
}
