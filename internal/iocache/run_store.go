package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/schema"
)

// Table names for the run ledger.
const (
	runsTable        = "repometrics_runs"
	repoResultsTable = "repometrics_repo_results"
)

// RunStoreImpl implements the RunStore interface on top of database/sql.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore opens the ledger for the given backend and creates its tables if needed.
// NoneBackend yields a store whose writes are no-ops.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (*RunStoreImpl, error) {
	if backend == schema.NoneBackend {
		return &RunStoreImpl{backend: backend}, nil
	}
	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}
	if err := createRunTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run ledger tables: %w", err)
	}
	return &RunStoreImpl{db: db, backend: backend}, nil
}

func createRunTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{runsTable, getCreateRunsQuery(backend)},
		{repoResultsTable, getCreateRepoResultsQuery(backend)},
	}
	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for repometrics_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(runsTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_repos INT NOT NULL DEFAULT 0,
				succeeded_repos INT NOT NULL DEFAULT 0,
				failed_repos INT NOT NULL DEFAULT 0,
				config_params TEXT
			)`, quoted)
	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_repos INT NOT NULL DEFAULT 0,
				succeeded_repos INT NOT NULL DEFAULT 0,
				failed_repos INT NOT NULL DEFAULT 0,
				config_params TEXT
			)`, quoted)
	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_repos INTEGER NOT NULL DEFAULT 0,
				succeeded_repos INTEGER NOT NULL DEFAULT 0,
				failed_repos INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			)`, quoted)
	}
}

// getCreateRepoResultsQuery returns the CREATE TABLE query for repometrics_repo_results.
func getCreateRepoResultsQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(repoResultsTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				position INT NOT NULL,
				owner VARCHAR(255) NOT NULL,
				name VARCHAR(255) NOT NULL,
				status VARCHAR(16) NOT NULL,
				stage VARCHAR(32),
				error_kind VARCHAR(16),
				error_message TEXT,
				record_json TEXT,
				recorded_at DATETIME(6) NOT NULL,
				PRIMARY KEY (run_id, position)
			)`, quoted)
	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				position INT NOT NULL,
				owner TEXT NOT NULL,
				name TEXT NOT NULL,
				status TEXT NOT NULL,
				stage TEXT,
				error_kind TEXT,
				error_message TEXT,
				record_json TEXT,
				recorded_at TIMESTAMPTZ NOT NULL,
				PRIMARY KEY (run_id, position)
			)`, quoted)
	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				position INTEGER NOT NULL,
				owner TEXT NOT NULL,
				name TEXT NOT NULL,
				status TEXT NOT NULL,
				stage TEXT,
				error_kind TEXT,
				error_message TEXT,
				record_json TEXT,
				recorded_at TEXT NOT NULL,
				PRIMARY KEY (run_id, position)
			)`, quoted)
	}
}

// BeginRun creates a new run and returns its unique ID.
func (rs *RunStoreImpl) BeginRun(startTime time.Time, configParams map[string]any) (int64, error) {
	if rs.db == nil {
		return 0, nil
	}
	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quoted := quoteTableName(runsTable, rs.backend)
	var runID int64
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES ($1, $2) RETURNING run_id`, quoted)
		err = rs.db.QueryRow(query, startTime, string(configJSON)).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES (?, ?)`, quoted)
		var result sql.Result
		result, err = rs.db.Exec(query, formatTime(startTime, rs.backend), string(configJSON))
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// RecordRepoResult stores the outcome for one repository.
func (rs *RunStoreImpl) RecordRepoResult(runID int64, result schema.RepoResult) error {
	if rs.db == nil {
		return nil
	}
	var recordJSON any
	if result.Record != nil {
		data, err := json.Marshal(result.Record)
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}
		recordJSON = string(data)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (run_id, position, owner, name, status, stage, error_kind, error_message, record_json, recorded_at)
		VALUES (%s)`, quoteTableName(repoResultsTable, rs.backend), placeholders(rs.backend, 10))
	_, err := rs.db.Exec(query,
		runID, result.Position, result.Ref.Owner, result.Ref.Name, string(result.Status),
		nullString(result.Stage), nullString(result.ErrorKind), nullString(result.Error),
		recordJSON, formatTime(result.RecordedAt, rs.backend),
	)
	if err != nil {
		return fmt.Errorf("failed to insert repository result: %w", err)
	}
	return nil
}

// EndRun updates the run with completion data.
func (rs *RunStoreImpl) EndRun(runID int64, endTime time.Time, summary schema.BatchSummary) error {
	if rs.db == nil {
		return nil
	}
	query := fmt.Sprintf(
		`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_repos = %s, succeeded_repos = %s, failed_repos = %s WHERE run_id = %s`,
		quoteTableName(runsTable, rs.backend),
		placeholder(rs.backend, 1), placeholder(rs.backend, 2), placeholder(rs.backend, 3),
		placeholder(rs.backend, 4), placeholder(rs.backend, 5), placeholder(rs.backend, 6),
	)
	_, err := rs.db.Exec(query,
		formatTime(endTime, rs.backend), summary.Duration.Milliseconds(),
		summary.Total, summary.Succeeded, summary.Failed, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run %d: %w", runID, err)
	}
	return nil
}

// scanTime reads a timestamp column that SQLite stores as RFC 3339 text.
func (rs *RunStoreImpl) scanTime(row interface{ Scan(...any) error }, dest ...*time.Time) error {
	if rs.backend != schema.SQLiteBackend {
		args := make([]any, len(dest))
		for i, d := range dest {
			args[i] = d
		}
		return row.Scan(args...)
	}
	raw := make([]string, len(dest))
	args := make([]any, len(dest))
	for i := range raw {
		args[i] = &raw[i]
	}
	if err := row.Scan(args...); err != nil {
		return err
	}
	for i, s := range raw {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("failed to parse time %q: %w", s, err)
		}
		*dest[i] = t
	}
	return nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStatus, error) {
	status := schema.RunStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if rs.db == nil {
		return status, nil
	}

	runs := quoteTableName(runsTable, rs.backend)
	if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		if err := rs.db.QueryRow(fmt.Sprintf("SELECT run_id FROM %s ORDER BY run_id DESC LIMIT 1", runs)).Scan(&status.LastRunID); err != nil {
			return status, fmt.Errorf("failed to get last run id: %w", err)
		}
		last := rs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id DESC LIMIT 1", runs))
		if err := rs.scanTime(last, &status.LastRunTime); err != nil {
			return status, fmt.Errorf("failed to get last run time: %w", err)
		}
		oldest := rs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", runs))
		if err := rs.scanTime(oldest, &status.OldestRunTime); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		totals := fmt.Sprintf("SELECT COALESCE(SUM(total_repos), 0), COALESCE(SUM(succeeded_repos), 0), COALESCE(SUM(failed_repos), 0) FROM %s", runs)
		if err := rs.db.QueryRow(totals).Scan(&status.TotalRepos, &status.TotalSucceeded, &status.TotalFailed); err != nil {
			return status, fmt.Errorf("failed to get repository totals: %w", err)
		}
	}

	for _, table := range []string{runsTable, repoResultsTable} {
		var count int64
		if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, rs.backend))).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	return status, nil
}

// GetAllRuns retrieves every stored run, oldest first.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if rs.db == nil {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT run_id, start_time, end_time, run_duration_ms, total_repos, succeeded_repos, failed_repos, config_params
		FROM %s ORDER BY run_id`, quoteTableName(runsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var r schema.RunRecord
		switch rs.backend {
		case schema.SQLiteBackend:
			var startStr string
			var endStr *string
			if err := rows.Scan(&r.RunID, &startStr, &endStr, &r.RunDurationMs, &r.TotalRepos, &r.SucceededRepos, &r.FailedRepos, &r.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
			if r.StartTime, err = time.Parse(time.RFC3339Nano, startStr); err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			if endStr != nil {
				end, err := time.Parse(time.RFC3339Nano, *endStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				r.EndTime = &end
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&r.RunID, &r.StartTime, &r.EndTime, &r.RunDurationMs, &r.TotalRepos, &r.SucceededRepos, &r.FailedRepos, &r.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllRepoResults retrieves every stored repository outcome in run and input order.
func (rs *RunStoreImpl) GetAllRepoResults() ([]schema.RepoResultRecord, error) {
	if rs.db == nil {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT run_id, position, owner, name, status, stage, error_kind, error_message, record_json, recorded_at
		FROM %s ORDER BY run_id, position`, quoteTableName(repoResultsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query repository results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RepoResultRecord
	for rows.Next() {
		var r schema.RepoResultRecord
		switch rs.backend {
		case schema.SQLiteBackend:
			var recordedStr string
			if err := rows.Scan(&r.RunID, &r.Position, &r.Owner, &r.Name, &r.Status, &r.Stage, &r.ErrorKind, &r.ErrorMessage, &r.RecordJSON, &recordedStr); err != nil {
				return nil, fmt.Errorf("failed to scan repository result: %w", err)
			}
			if r.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedStr); err != nil {
				return nil, fmt.Errorf("failed to parse recorded_at: %w", err)
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&r.RunID, &r.Position, &r.Owner, &r.Name, &r.Status, &r.Stage, &r.ErrorKind, &r.ErrorMessage, &r.RecordJSON, &r.RecordedAt); err != nil {
				return nil, fmt.Errorf("failed to scan repository result: %w", err)
			}
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating repository results: %w", err)
	}
	return results, nil
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}
