package schema

import "time"

// RunStatus represents the status of the run ledger.
type RunStatus struct {
	Backend        string           `json:"backend"`
	Connected      bool             `json:"connected"`
	TotalRuns      int              `json:"total_runs"`
	LastRunID      int64            `json:"last_run_id"`
	LastRunTime    time.Time        `json:"last_run_time"`
	OldestRunTime  time.Time        `json:"oldest_run_time"`
	TotalRepos     int              `json:"total_repos"`
	TotalSucceeded int              `json:"total_succeeded"`
	TotalFailed    int              `json:"total_failed"`
	TableSizes     map[string]int64 `json:"table_sizes"`
}

// RunRecord represents a row from the repometrics_runs table.
type RunRecord struct {
	RunID          int64
	StartTime      time.Time
	EndTime        *time.Time
	RunDurationMs  *int32
	TotalRepos     int32
	SucceededRepos int32
	FailedRepos    int32
	ConfigParams   *string
}

// RepoResultRecord represents a row from the repometrics_repo_results table.
type RepoResultRecord struct {
	RunID        int64
	Position     int32
	Owner        string
	Name         string
	Status       string
	Stage        *string
	ErrorKind    *string
	ErrorMessage *string
	RecordJSON   *string
	RecordedAt   time.Time
}
