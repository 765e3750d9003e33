package main

import (
	"os"

	"github.com/emirhan/campuslink/internal/pkg/logger"
	"github.com/emirhan/campuslink/internal/server"
)

func main() {
	srv, err := server.NewServer()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize sync relay")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Relay execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Relay finished gracefully.")
}
