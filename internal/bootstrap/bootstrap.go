package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/emirhan/campuslink/internal/app/client"
	"github.com/emirhan/campuslink/internal/app/lifecycle"
	"github.com/emirhan/campuslink/internal/app/session"
	"github.com/emirhan/campuslink/internal/app/store"
	"github.com/emirhan/campuslink/internal/config"
	"github.com/emirhan/campuslink/internal/pkg/logger"
	"github.com/emirhan/campuslink/internal/pkg/syncbus"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Session *session.Store
	Signals *session.Signals
	Bus     syncbus.Bus
	API     client.APIClient
	Store   *store.MembershipStore
	Watcher *lifecycle.Watcher
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// BuildDependencies initializes the session store, sync bus, API client,
// membership store and lifecycle watcher. When the sync relay is unreachable
// the client falls back to a process-local bus: mutations still work, other
// contexts just reconcile on their own schedule.
func BuildDependencies(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Config: cfg, Logger: lgr}

	sess, err := session.NewStore(session.Options{
		Dir:       cfg.Session.Dir,
		UserKey:   cfg.Session.UserKey,
		TokenKey:  cfg.Session.TokenKey,
		RedisAddr: cfg.Session.RedisAddr,
	}, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session store: %w", err)
	}
	deps.Session = sess

	deps.Signals = session.NewSignals(lgr)

	relayURL := cfg.RelayDialURL()
	bus, err := syncbus.Dial(ctx, relayURL, lgr)
	if err != nil {
		lgr.Warn().Err(err).
			Str("url", relayURL).
			Msg("Sync relay unreachable, falling back to local bus")
		deps.Bus = syncbus.NewLocalBus()
	} else {
		deps.Bus = bus
	}

	tokenProvider := func() string {
		token, err := sess.LoadToken(context.Background())
		if err != nil {
			return ""
		}
		return token
	}
	deps.API = client.NewHTTPClient(cfg.Client.BaseURL, cfg.ClientTimeout(), tokenProvider, lgr)

	deps.Store = store.New(deps.API, sess, deps.Signals, deps.Bus, lgr)

	deps.Watcher = lifecycle.NewWatcher(
		deps.Store.Events,
		cfg.RefreshInterval(),
		func(t lifecycle.Transition) {
			lgr.Info().
				Int64("eventID", t.EventID).
				Str("from", string(t.From)).
				Str("to", string(t.To)).
				Str("statusText", t.Status.Text).
				Msg("Event transitioned")
		},
		lgr,
	)

	return deps, nil
}

// Close releases everything BuildDependencies acquired
func (d *Dependencies) Close() {
	if d.Watcher != nil {
		d.Watcher.Stop()
	}
	if d.Store != nil {
		d.Store.Stop()
	}
	if d.Bus != nil {
		d.Bus.Close()
	}
	if d.Session != nil {
		d.Session.Close()
	}
}
