// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteRunSummary prints the outcome of a batch run, dispatching based on the output format configured.
func WriteRunSummary(w io.Writer, summary schema.BatchSummary, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeJSON(w, newRunSummaryJSON(summary, cfg)); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	default:
		if cfg.Summary && len(summary.Results) > 0 {
			if err := writeSummaryTable(w, summary, cfg); err != nil {
				return fmt.Errorf("error writing table output: %w", err)
			}
		}
		fmt.Fprintf(w, "Collected %d of %d repositories (%d skipped) in %v\n",
			summary.Succeeded, summary.Total, summary.Failed, summary.Duration.Round(msRound))
		fmt.Fprintf(w, "Rows appended to %s (%s)\n", cfg.OutputFile, cfg.StoreFormat)
	}
	return nil
}

// WriteRecord prints a single aggregated record as column/value pairs.
func WriteRecord(w io.Writer, ref schema.RepositoryRef, rec schema.Record, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeJSON(w, recordJSON{Repository: ref.String(), Fields: recordPairs(rec)}); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
		return nil
	default:
		if err := writeRecordTable(w, ref, rec, cfg); err != nil {
			return fmt.Errorf("error writing table output: %w", err)
		}
		return nil
	}
}

// writeSummaryTable lists every processed repository with its outcome.
func writeSummaryTable(w io.Writer, summary schema.BatchSummary, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Repository", "Status", "Stage", "Kind", "Error"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	maxErr := GetMaxTableErrorWidth(cfg)
	var data [][]string
	for _, r := range summary.Results {
		status := contract.GetPlainLabel(r.Status)
		kind := r.ErrorKind
		if cfg.UseColors {
			status = contract.GetColorLabel(r.Status)
			if kind != "" {
				kind = contract.KindColor.Sprint(kind)
			}
		}
		data = append(data, []string{
			strconv.Itoa(r.Position + 1),
			r.Ref.String(),
			status,
			r.Stage,
			kind,
			truncate(r.Error, maxErr),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeRecordTable(w io.Writer, ref schema.RepositoryRef, rec schema.Record, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Column", "Value"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	maxValue := GetMaxTableValueWidth(cfg)
	var data [][]string
	for _, p := range recordPairs(rec) {
		data = append(data, []string{p.Column, truncate(p.Value, maxValue)})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintf(w, "Collected %d fields for %s\n", len(rec), ref)
	return nil
}
