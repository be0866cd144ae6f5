package main

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// runLogger builds the one process-scoped sugared logger used across a
// single ssaform invocation, stamped with a run ID so separate invocations'
// log lines can't be confused when collected centrally.
func runLogger() (*zap.SugaredLogger, func()) {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		// zap's own config validation failing is a programmer error, not a
		// runtime condition this tool can recover from.
		panic(err)
	}
	sugar := logger.Sugar().With("run_id", uuid.NewString())
	return sugar, func() { _ = logger.Sync() }
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ssaform",
		Short:         "Rename a textual CFG into minimal SSA form",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newTransformCmd())
	root.AddCommand(newReassembleCmd())
	return root
}
