package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/emirhan/campuslink/internal/bootstrap"
	"github.com/emirhan/campuslink/internal/pkg/logger"
)

func main() {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps, err := bootstrap.BuildDependencies(ctx, cfg, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to build dependencies")
		os.Exit(1)
	}
	defer deps.Close()

	if err := deps.Store.LoadPublicData(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to load public data")
		os.Exit(1)
	}

	// Authenticated load is best-effort: without a usable persisted session
	// the client runs on public data alone.
	if err := deps.Store.LoadAuthData(ctx); err != nil {
		lgr.Error().Err(err).Msg("Authenticated data load failed")
	}

	deps.Store.Start(ctx)
	deps.Session.StartWatch(deps.Signals, 0)

	if err := deps.Watcher.Start(); err != nil {
		lgr.Error().Err(err).Msg("Failed to start lifecycle watcher")
		os.Exit(1)
	}

	lgr.Info().
		Int("organizations", len(deps.Store.Organizations())).
		Int("events", len(deps.Store.Events())).
		Msg("Client ready")

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)
	sig := <-osSignals

	lgr.Info().Str("signal", sig.String()).Msg("Shutting down client...")
}
