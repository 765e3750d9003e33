package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/emirhan/campuslink/internal/bootstrap"
	"github.com/emirhan/campuslink/internal/config"
	"github.com/emirhan/campuslink/internal/pkg/syncbus"
)

// Server is the sync relay: the broadcast channel that carries data-update
// messages between client contexts. It interprets nothing; every message on
// a channel is fanned out to every peer on that channel.
type Server struct {
	config *config.Config
	router *gin.Engine
	hub    *syncbus.Hub
	logger zerolog.Logger
	http   *http.Server
}

// NewServer creates and initializes a relay server instance.
func NewServer() (*Server, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to load config or setup logger: %w", err)
	}

	hub := syncbus.NewHub(lgr)
	go hub.Run()

	if strings.ToLower(cfg.Sync.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.Default()

	router.GET("/ws/:channel", func(c *gin.Context) {
		hub.ServeChannel(c, c.Param("channel"))
	})

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return &Server{
		config: cfg,
		router: router,
		hub:    hub,
		logger: lgr,
	}, nil
}

// Run starts the relay and handles graceful shutdown.
func (s *Server) Run() error {
	s.logger.Info().Str("port", s.config.Sync.Port).Msg("Starting sync relay...")

	s.http = &http.Server{
		Addr:        ":" + s.config.Sync.Port,
		Handler:     s.router,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("Relay listening")
		serverErrors <- s.http.ListenAndServe()
	}()

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error starting relay: %w", err)
		}
	case sig := <-osSignals:
		s.logger.Info().Str("signal", sig.String()).Msg("Received OS signal, initiating shutdown...")
	}

	return s.Shutdown(context.Background())
}

// Shutdown gracefully stops the relay.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if s.http != nil {
		s.logger.Info().Msg("Shutting down relay...")
		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error().Err(err).Msg("Relay shutdown error")
			return errors.New("relay shutdown completed with errors")
		}
	}

	s.logger.Info().Msg("Relay shutdown process complete.")
	return nil
}
