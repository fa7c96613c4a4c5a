// Package core has the core logic for collecting repository metrics: the
// per-source adapters, the record aggregator and the batch driver.
package core

import (
	"context"
	"fmt"
	"os"

	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/internal/github"
	"github.com/huangsam/repometrics/internal/outwriter"
	"github.com/huangsam/repometrics/internal/tabular"
	"github.com/huangsam/repometrics/schema"
)

// NewRunAggregator wires the live GitHub client and the external line counter
// into an aggregator with the default stage order.
func NewRunAggregator(cfg *contract.Config) (*Aggregator, error) {
	client, err := github.NewClient(cfg, contract.Logger)
	if err != nil {
		return nil, err
	}
	adapters := &Adapters{
		Repos:    client,
		Pages:    client,
		Counter:  contract.NewExecCodeCounter(cfg.CounterCommand, cfg.CounterArgs),
		SiteURL:  cfg.SiteURL,
		Selector: cfg.CommitSelector,
	}
	return NewAggregator(adapters.Stages()...), nil
}

// ExecuteCollect runs the batch over the input list and prints a run summary.
// It serves as the main entry point for the 'collect' command.
func ExecuteCollect(ctx context.Context, cfg *contract.Config, mgr contract.LedgerManager) error {
	// The whole list is read before the output store is touched.
	refs, err := tabular.ReadRepositoryList(cfg.InputFile)
	if err != nil {
		return err
	}
	agg, err := NewRunAggregator(cfg)
	if err != nil {
		return err
	}
	store, err := tabular.Open(cfg.StoreFormat, cfg.OutputFile)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			contract.LogWarn("failed to close output store", cerr)
		}
	}()
	return runBatch(ctx, cfg, agg, store, mgr, refs)
}

// runBatch drives refs through agg into store and prints the summary.
func runBatch(ctx context.Context, cfg *contract.Config, agg RepositoryAggregator, store contract.RowStore, mgr contract.LedgerManager, refs []schema.RepositoryRef) error {
	opts := []DriverOption{WithLogger(contract.Logger)}
	if rs := runStoreOf(mgr); rs != nil {
		opts = append(opts, WithLedger(rs, cfg.LedgerParams()))
	}
	driver := NewDriver(agg, store, opts...)

	contract.Logger.WithField("repos", len(refs)).Info("collection started")
	summary, runErr := driver.Run(ctx, refs)
	if err := outwriter.WriteRunSummary(os.Stdout, summary, cfg); err != nil {
		contract.LogWarn("failed to print run summary", err)
	}
	return runErr
}

// ExecuteInspect aggregates a single repository and prints the record without
// touching the output store. It serves as the main entry point for the 'inspect' command.
func ExecuteInspect(ctx context.Context, cfg *contract.Config, ref schema.RepositoryRef) error {
	rec, err := CollectRepository(ctx, cfg, ref)
	if err != nil {
		return err
	}
	return outwriter.WriteRecord(os.Stdout, ref, rec, cfg)
}

// CollectRepository builds the full record for one repository.
func CollectRepository(ctx context.Context, cfg *contract.Config, ref schema.RepositoryRef) (schema.Record, error) {
	agg, err := NewRunAggregator(cfg)
	if err != nil {
		return nil, fmt.Errorf("build aggregator: %w", err)
	}
	return agg.Aggregate(ctx, ref)
}

func runStoreOf(mgr contract.LedgerManager) contract.RunStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetRunStore()
}
