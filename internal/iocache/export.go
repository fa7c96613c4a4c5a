package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/internal/parquet"
)

// ExecuteRunsExport exports the run ledger of the global manager to Parquet files.
func ExecuteRunsExport(w io.Writer, outputFile string) error {
	return ExportRuns(w, Manager.GetRunStore(), outputFile)
}

// ExportRuns writes <outputFile>.runs.parquet and <outputFile>.repo_results.parquet.
func ExportRuns(w io.Writer, store contract.RunStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run ledger is disabled; set --runs-backend to export")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run ledger status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run data found to export")
	}
	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total repository results: %d\n", status.TableSizes[repoResultsTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	results, err := store.GetAllRepoResults()
	if err != nil {
		return fmt.Errorf("failed to retrieve repository results: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquet.ConvertRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(runs), runsFile)

	resultsFile := outputFile + ".repo_results.parquet"
	if err := parquet.WriteRepoResultsParquet(parquet.ConvertRepoResultRecords(results), resultsFile); err != nil {
		return fmt.Errorf("failed to write repository results: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d repository results to: %s\n", len(results), resultsFile)
	return nil
}
