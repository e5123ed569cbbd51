package main

import (
	"os"

	"flowmap/internal/logging"
)

func main() {
	logger := logging.NewDefault()

	if err := rootCmd.Execute(); err != nil {
		logger.Error("Command execution failed", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(1)
	}
}
