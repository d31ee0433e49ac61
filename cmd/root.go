package cmd

import (
	"github.com/spf13/cobra"

	"github.com/redgreenloop/redgreen/pkg/config"
	"github.com/redgreenloop/redgreen/pkg/orchestrator"
	"github.com/redgreenloop/redgreen/pkg/utils"
)

var (
	projectDir string
	configPath string
	verbosity  int
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "redgreen",
	Short: "Orchestrate TDD with LLM roles: tester, implementor, refactorer",
	Long: `Redgreen drives a Red-Green-Refactor loop over a project by delegating
each role to a configurable model backend:

  1. the tester adds one failing test and the result is committed,
  2. the implementor makes the suite pass (bounded retries, failed runs
     are rolled back to the tester commit),
  3. the refactorer improves the design; a regression reverts its commit.

Every step is validated by running the project's test command and recorded
in the project's git history.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&projectDir, "project", ".", "path to the project under test")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a JSON or YAML config with provider settings")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase verbosity (-v, -vv)")

	rootCmd.AddCommand(cycleCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(initConfigCmd)
	rootCmd.AddCommand(versionCmd)
}

// newOrchestrator loads configuration and builds the cycle controller shared
// by the cycle and run commands.
func newOrchestrator() (*orchestrator.Orchestrator, error) {
	logger := utils.GetLogger(verbosity)
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return orchestrator.New(projectDir, cfg, logger)
}
