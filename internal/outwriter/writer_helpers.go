package outwriter

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/schema"
)

const msRound = time.Millisecond

// runSummaryJSON is the JSON view of a finished batch run.
type runSummaryJSON struct {
	Total      int                 `json:"total"`
	Succeeded  int                 `json:"succeeded"`
	Failed     int                 `json:"failed"`
	DurationMs int64               `json:"duration_ms"`
	OutputFile string              `json:"output_file"`
	Format     string              `json:"format"`
	Results    []schema.RepoResult `json:"results"`
}

func newRunSummaryJSON(summary schema.BatchSummary, cfg *contract.Config) runSummaryJSON {
	results := summary.Results
	if results == nil {
		results = []schema.RepoResult{}
	}
	return runSummaryJSON{
		Total:      summary.Total,
		Succeeded:  summary.Succeeded,
		Failed:     summary.Failed,
		DurationMs: summary.Duration.Milliseconds(),
		OutputFile: cfg.OutputFile,
		Format:     string(cfg.StoreFormat),
		Results:    results,
	}
}

// fieldPair keeps header order when a record is printed as JSON.
type fieldPair struct {
	Column string `json:"column"`
	Value  string `json:"value"`
}

type recordJSON struct {
	Repository string      `json:"repository"`
	Fields     []fieldPair `json:"fields"`
}

// recordPairs zips rec with the header. Extra values are labelled by position.
func recordPairs(rec schema.Record) []fieldPair {
	pairs := make([]fieldPair, 0, len(rec))
	for i, v := range rec {
		col := fmt.Sprintf("column_%d", i+1)
		if i < len(schema.Header) {
			col = schema.Header[i]
		}
		pairs = append(pairs, fieldPair{Column: col, Value: v})
	}
	return pairs
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// truncate shortens s to at most maxRunes runes, marking the cut with "...".
func truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if maxRunes <= 0 || len(runes) <= maxRunes {
		return s
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}
