package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lox/millebornes/cmd/millebornes/shared"
	"github.com/lox/millebornes/internal/randutil"
	"github.com/lox/millebornes/internal/records"
	"github.com/lox/millebornes/internal/server"
)

// ServerCmd runs the websocket game server. Flags override the config file.
type ServerCmd struct {
	Config   string `kong:"default='millebornes.hcl',help='HCL config file (ignored if missing)'"`
	Addr     string `kong:"help='Listen address, e.g. :3000'"`
	Debug    bool   `kong:"help='Enable debug logging'"`
	JSONLogs bool   `kong:"name='json-logs',help='Log structured JSON instead of console output'"`
	Seed     *int64 `kong:"help='Deterministic RNG seed for deck shuffles (optional)'"`
	Store    string `kong:"help='Record store kind: memory, file, postgres, redis or nats'"`
	StoreDir string `kong:"name='store-dir',help='Directory for the file record store'"`
}

// config loads the config file and applies flag overrides.
func (c *ServerCmd) config() (server.Config, error) {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return server.Config{}, err
	}
	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}
	if c.Debug {
		cfg.Server.LogLevel = "debug"
	}
	if c.Seed != nil {
		cfg.Game.Seed = *c.Seed
	}
	if c.Store != "" && c.Store != cfg.Store.Kind {
		cfg.Store = records.Config{Kind: c.Store}
	}
	if c.StoreDir != "" {
		if c.Store == "" {
			cfg.Store.Kind = records.KindFile
		}
		cfg.Store.Dir = c.StoreDir
	}
	if err := cfg.Validate(); err != nil {
		return server.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *ServerCmd) Run() error {
	cfg, err := c.config()
	if err != nil {
		return err
	}

	level, err := shared.ParseLevel(cfg.Server.LogLevel, c.Debug)
	if err != nil {
		return err
	}
	var logger zerolog.Logger
	if c.JSONLogs {
		logger = shared.SetupStructuredLogger(level)
	} else {
		logger = shared.SetupLogger(level)
	}

	seed := cfg.Game.Seed
	if seed != 0 {
		logger.Info().Int64("seed", seed).Msg("Using deterministic seed")
	} else {
		seed = randutil.Seed()
		logger.Info().Int64("seed", seed).Msg("Using random seed")
	}

	ctx, stop := shared.SetupSignalHandler(logger)
	defer stop()

	store, err := records.Open(ctx, cfg.Store, logger)
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}

	s, err := server.NewServer(logger, randutil.NewLocked(seed),
		server.WithConfig(cfg),
		server.WithStore(store),
	)
	if err != nil {
		_ = store.Close()
		return err
	}

	logger.Info().
		Str("address", cfg.Server.Address).
		Int("min_players", cfg.Game.MinPlayers).
		Int("max_players", cfg.Game.MaxPlayers).
		Int("hand_size", cfg.Game.HandSize).
		Str("store", cfg.Store.Kind).
		Strs("allowed_origins", cfg.Server.AllowedOrigins).
		Msg("Starting Mille Bornes server")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.Start(cfg.Server.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
