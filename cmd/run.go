package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/redgreenloop/redgreen/pkg/utils"
)

// runCmd loops cycles until an unrecovered step error or an interrupt.
// Cancellation takes effect between cycle boundaries; a cycle in flight
// finishes first so the repository is never left mid-commit.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run continuously until stopped (Ctrl-C)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		orch, err := newOrchestrator()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		for {
			if err := orch.RunCycle(ctx); err != nil {
				return err
			}
			if ctx.Err() != nil {
				utils.GetLogger(verbosity).Infof("Interrupted; stopping after completed cycle")
				return nil
			}
		}
	},
}
