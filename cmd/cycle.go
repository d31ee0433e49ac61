package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// cycleCmd runs the Red-Green-Refactor loop exactly once.
var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Run the Red-Green-Refactor loop once (tester -> implementor -> refactorer)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		orch, err := newOrchestrator()
		if err != nil {
			return err
		}
		return orch.RunCycle(context.Background())
	},
}
