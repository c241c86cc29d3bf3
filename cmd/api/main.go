package main

import (
	"os"

	"github.com/yigit/edutech/internal/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
