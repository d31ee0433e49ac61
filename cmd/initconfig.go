package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/redgreenloop/redgreen/pkg/config"
)

var initConfigOut string

// initConfigCmd writes a template configuration with mock backends and
// default role prompts.
var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Initialize a sample config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.WriteTemplate(initConfigOut)
		if err != nil {
			return err
		}
		fmt.Printf("Wrote sample config to %s\n", path)
		return nil
	},
}

func init() {
	initConfigCmd.Flags().StringVar(&initConfigOut, "out", "redgreen.yaml", "output path for the sample config")
}
