package core

import (
	"context"
	"fmt"

	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/schema"
)

// StageFunc extends a partial record with the fields of one metric source.
type StageFunc func(ctx context.Context, ref schema.RepositoryRef, rec schema.Record) (schema.Record, error)

// Stage is a named StageFunc. The name shows up in diagnostics and the run ledger.
type Stage struct {
	Name string
	Run  StageFunc
}

// RepositoryAggregator produces a full record for one repository or fails as a whole.
type RepositoryAggregator interface {
	Aggregate(ctx context.Context, ref schema.RepositoryRef) (schema.Record, error)
}

// Aggregator folds its stages left to right over an empty record.
type Aggregator struct {
	stages []Stage
	width  int
}

var _ RepositoryAggregator = &Aggregator{} // Compile-time check

// NewAggregator creates an aggregator whose successful output must have schema.ColumnCount fields.
func NewAggregator(stages ...Stage) *Aggregator {
	return &Aggregator{stages: stages, width: schema.ColumnCount}
}

// Aggregate runs every stage in order and stops at the first failure.
// A failure never yields a partial record.
func (a *Aggregator) Aggregate(ctx context.Context, ref schema.RepositoryRef) (schema.Record, error) {
	rec := make(schema.Record, 0, a.width)
	for _, stage := range a.stages {
		if err := ctx.Err(); err != nil {
			return nil, &contract.RepoError{Ref: ref, Stage: stage.Name, Err: err}
		}
		next, err := stage.Run(ctx, ref, rec)
		if err != nil {
			return nil, &contract.RepoError{Ref: ref, Stage: stage.Name, Err: err}
		}
		rec = next
	}
	if len(rec) != a.width {
		err := contract.NewShapeError(ref.String(), fmt.Sprintf("record has %d fields, want %d", len(rec), a.width), nil)
		return nil, &contract.RepoError{Ref: ref, Stage: "aggregate", Err: err}
	}
	return rec, nil
}

// StageNames lists the stage names in execution order.
func (a *Aggregator) StageNames() []string {
	names := make([]string, len(a.stages))
	for i, s := range a.stages {
		names[i] = s.Name
	}
	return names
}
