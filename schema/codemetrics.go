package schema

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ParseCodeMetrics decodes the line counter's JSON report. Top-level keys are
// language names plus the reserved "header" and "SUM" entries; the summary entry
// is required and becomes Total.
func ParseCodeMetrics(data []byte) (CodeMetrics, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return CodeMetrics{}, fmt.Errorf("decode counter report: %w", err)
	}

	sum, ok := raw[CounterSummaryKey]
	if !ok {
		return CodeMetrics{}, errors.New("counter report has no SUM entry")
	}

	metrics := CodeMetrics{Languages: make(map[string]LanguageCount, len(raw))}
	if err := json.Unmarshal(sum, &metrics.Total); err != nil {
		return CodeMetrics{}, fmt.Errorf("decode SUM entry: %w", err)
	}

	for key, value := range raw {
		if key == CounterHeaderKey || key == CounterSummaryKey {
			continue
		}
		var count LanguageCount
		if err := json.Unmarshal(value, &count); err != nil {
			return CodeMetrics{}, fmt.Errorf("decode entry %q: %w", key, err)
		}
		metrics.Languages[key] = count
	}
	return metrics, nil
}
