// main is the entry point for the repometrics CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/repometrics/cmd"
	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/internal/iocache"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Interrupt stops the batch before the next repository
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.SetLedgerManager(iocache.Manager)
	defer iocache.CloseStores()
	defer func() {
		if err := cmd.StopProfiling(); err != nil {
			contract.LogWarn("failed to stop profiling", err)
		}
	}()

	if err := cmd.Execute(ctx); err != nil {
		contract.Logger.WithError(err).WithField("kind", contract.KindOf(err)).Error("repometrics failed")
		return 1
	}
	return 0
}
