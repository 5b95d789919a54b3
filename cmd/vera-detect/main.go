// Command vera-detect runs a single detection from the terminal
package main

import (
	"os"

	"vera/internal/platform/config"
	"vera/internal/platform/logger"
)

func main() {
	_ = config.LoadDotenv()
	logger.Init(logger.FromEnv())

	if err := newRootCmd(defaultService).Execute(); err != nil {
		os.Exit(1)
	}
}
