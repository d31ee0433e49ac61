package main

import (
	"os"

	"github.com/redgreenloop/redgreen/cmd"
	"github.com/redgreenloop/redgreen/pkg/utils"
)

func main() {
	logger := utils.GetLogger(0)
	defer func() {
		if err := logger.Close(); err != nil {
			os.Stderr.WriteString("Error closing logger: " + err.Error() + "\n")
		}
	}()

	if err := cmd.Execute(); err != nil {
		logger.LogError(err)
		os.Exit(1)
	}
}
