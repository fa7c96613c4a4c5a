package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/schema"
	"github.com/sirupsen/logrus"
)

// DriverState is the position of a batch run in its lifecycle.
type DriverState int

// Driver states in the order they are entered.
const (
	StateInit DriverState = iota
	StateHeaderWritten
	StateProcessing
	StateDone
)

func (s DriverState) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateHeaderWritten:
		return "header-written"
	case StateProcessing:
		return "processing"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Driver runs a batch: header first, then one row per successful repository in
// input order. Repositories are processed one at a time.
type Driver struct {
	agg      RepositoryAggregator
	store    contract.RowStore
	ledger   contract.RunStore
	params   map[string]any
	logger   *logrus.Logger
	now      func() time.Time
	state    DriverState
	position int
}

// DriverOption allows configuring the driver.
type DriverOption func(*Driver)

// WithLedger records the run and every repository outcome in rs.
// Ledger failures are logged and never abort the batch.
func WithLedger(rs contract.RunStore, params map[string]any) DriverOption {
	return func(d *Driver) {
		d.ledger = rs
		d.params = params
	}
}

// WithLogger replaces the diagnostic logger.
func WithLogger(l *logrus.Logger) DriverOption {
	return func(d *Driver) {
		d.logger = l
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) DriverOption {
	return func(d *Driver) {
		d.now = now
	}
}

// NewDriver creates a driver in StateInit.
func NewDriver(agg RepositoryAggregator, store contract.RowStore, opts ...DriverOption) *Driver {
	d := &Driver{
		agg:    agg,
		store:  store,
		logger: contract.Logger,
		now:    time.Now,
		state:  StateInit,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// State returns the current lifecycle state.
func (d *Driver) State() DriverState {
	return d.state
}

// Position returns the index of the repository being processed, or the last one processed.
func (d *Driver) Position() int {
	return d.position
}

// Run writes the header and then processes refs in order. A per-repository
// failure is logged and skipped. A store failure stops the run with an error.
// Cancelling ctx stops the run before the next repository; rows already
// written stay in the store and the summary covers them.
func (d *Driver) Run(ctx context.Context, refs []schema.RepositoryRef) (schema.BatchSummary, error) {
	if d.state != StateInit {
		return schema.BatchSummary{}, fmt.Errorf("driver already in state %s", d.state)
	}
	start := d.now()
	summary := schema.BatchSummary{Results: make([]schema.RepoResult, 0, len(refs))}

	if err := d.store.Append(schema.Header); err != nil {
		d.transition(StateDone)
		return summary, fmt.Errorf("write header: %w", err)
	}
	d.transition(StateHeaderWritten)

	runID := d.beginRun(start)

	var runErr error
	for i, ref := range refs {
		if err := ctx.Err(); err != nil {
			d.logger.WithFields(logrus.Fields{"remaining": len(refs) - i}).Warn("run cancelled")
			runErr = err
			break
		}
		d.position = i
		d.transition(StateProcessing)

		result, err := d.processOne(ctx, i, ref)
		summary.Results = append(summary.Results, result)
		summary.Total++
		if result.Status == schema.StatusOK {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
		d.recordResult(runID, result)
		if err != nil {
			runErr = err
			break
		}
	}

	summary.Duration = d.now().Sub(start)
	d.transition(StateDone)
	d.endRun(runID, summary)
	return summary, runErr
}

// processOne aggregates one repository and appends its row. The returned error
// is non-nil only when the store itself failed.
func (d *Driver) processOne(ctx context.Context, pos int, ref schema.RepositoryRef) (schema.RepoResult, error) {
	result := schema.RepoResult{Position: pos, Ref: ref}
	rec, err := d.agg.Aggregate(ctx, ref)
	if err != nil {
		result.Status = schema.StatusFailed
		result.Error = err.Error()
		result.ErrorKind = string(contract.KindOf(err))
		var repoErr *contract.RepoError
		if errors.As(err, &repoErr) {
			result.Stage = repoErr.Stage
		}
		result.RecordedAt = d.now()
		d.logger.WithFields(logrus.Fields{
			"repo":  ref.String(),
			"stage": result.Stage,
			"kind":  result.ErrorKind,
		}).WithError(err).Warn("repository skipped")
		return result, nil
	}

	if err := d.store.Append(rec); err != nil {
		result.Status = schema.StatusFailed
		result.Stage = "store"
		result.ErrorKind = string(contract.UnknownKind)
		result.Error = err.Error()
		result.RecordedAt = d.now()
		return result, fmt.Errorf("append row for %s: %w", ref, err)
	}
	result.Status = schema.StatusOK
	result.Record = rec
	result.RecordedAt = d.now()
	d.logger.WithField("repo", ref.String()).Info("row written")
	return result, nil
}

func (d *Driver) transition(next DriverState) {
	d.logger.WithFields(logrus.Fields{"from": d.state, "to": next, "position": d.position}).Debug("driver state")
	d.state = next
}

func (d *Driver) beginRun(start time.Time) int64 {
	if d.ledger == nil {
		return 0
	}
	runID, err := d.ledger.BeginRun(start, d.params)
	if err != nil {
		d.logger.WithError(err).Warn("run ledger unavailable, continuing without it")
		d.ledger = nil
		return 0
	}
	return runID
}

func (d *Driver) recordResult(runID int64, result schema.RepoResult) {
	if d.ledger == nil {
		return
	}
	if err := d.ledger.RecordRepoResult(runID, result); err != nil {
		d.logger.WithError(err).WithField("repo", result.Ref.String()).Warn("failed to record repository outcome")
	}
}

func (d *Driver) endRun(runID int64, summary schema.BatchSummary) {
	if d.ledger == nil {
		return
	}
	if err := d.ledger.EndRun(runID, d.now(), summary); err != nil {
		d.logger.WithError(err).Warn("failed to close run in ledger")
	}
}
