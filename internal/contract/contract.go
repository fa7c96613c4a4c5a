// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/repometrics/schema"
)

// RepoSource defines the remote API operations the pipeline consumes.
// This allows the adapters to be tested without a live hosting service.
type RepoSource interface {
	// GetRepository returns repository metadata, including its creation time.
	GetRepository(ctx context.Context, owner, name string) (schema.RepositoryInfo, error)

	// ListLanguages returns the byte count per language.
	ListLanguages(ctx context.Context, owner, name string) (schema.LanguageBreakdown, error)

	// ListCommits returns the most recent commits, newest first.
	ListCommits(ctx context.Context, owner, name string) ([]schema.CommitInfo, error)

	// ListContributorStats returns per-contributor commit totals.
	ListContributorStats(ctx context.Context, owner, name string) ([]schema.ContributorStat, error)
}

// PageSource fetches a rendered web page.
type PageSource interface {
	// FetchPage returns the HTML body at url. Non-HTML responses are a shape error.
	FetchPage(ctx context.Context, url string) ([]byte, error)
}

// CodeCounter runs a line counter against a clonable repository location.
type CodeCounter interface {
	Count(ctx context.Context, location string) (schema.CodeMetrics, error)
}

// RowStore is an append-only tabular sink. Every Append is durable before it returns.
type RowStore interface {
	Append(row []string) error
	Close() error
}

// LedgerManager exposes the run ledger to the rest of the application.
// This allows the persistence layer to be mocked for testing.
type LedgerManager interface {
	GetRunStore() RunStore
}

// RunStore defines the interface for tracking batch runs and their per-repository outcomes.
type RunStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(startTime time.Time, configParams map[string]any) (int64, error)

	// RecordRepoResult stores the outcome for one repository
	RecordRepoResult(runID int64, result schema.RepoResult) error

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, summary schema.BatchSummary) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStatus, error)

	// GetAllRuns retrieves every stored run
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllRepoResults retrieves every stored repository outcome
	GetAllRepoResults() ([]schema.RepoResultRecord, error)

	// Close closes the underlying connection
	Close() error
}
