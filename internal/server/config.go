package server

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/millebornes/internal/game"
	"github.com/lox/millebornes/internal/lobby"
	"github.com/lox/millebornes/internal/records"
	"github.com/lox/millebornes/internal/session"
)

// Config represents the complete server configuration
type Config struct {
	Server           Settings
	Game             GameSettings
	Store            records.Config
	PersistTimeoutMs int
}

// fileConfig is the HCL shape of Config. Every block may be omitted.
type fileConfig struct {
	Server           *Settings       `hcl:"server,block"`
	Game             *GameSettings   `hcl:"game,block"`
	Store            *records.Config `hcl:"store,block"`
	PersistTimeoutMs int             `hcl:"persist_timeout_ms,optional"`
}

// Settings contains listener-level configuration
type Settings struct {
	Address        string   `hcl:"address,optional"`
	AllowedOrigins []string `hcl:"allowed_origins,optional"`
	LogLevel       string   `hcl:"log_level,optional"`
}

// GameSettings holds the table rules shared by every room
type GameSettings struct {
	MaxPlayers int   `hcl:"max_players,optional"`
	MinPlayers int   `hcl:"min_players,optional"`
	HandSize   int   `hcl:"hand_size,optional"`
	Seed       int64 `hcl:"seed,optional"`
}

const (
	defaultAddress          = ":3000"
	defaultLogLevel         = "info"
	defaultPersistTimeoutMs = 5000
)

// DefaultConfig returns the configuration used when no file is given
func DefaultConfig() Config {
	return Config{
		Server: Settings{
			Address:  defaultAddress,
			LogLevel: defaultLogLevel,
		},
		Game: GameSettings{
			MaxPlayers: lobby.DefaultMaxPlayers,
			MinPlayers: lobby.DefaultMinPlayers,
			HandSize:   game.DefaultHandSize,
		},
		Store:            records.DefaultConfig(),
		PersistTimeoutMs: defaultPersistTimeoutMs,
	}
}

// LoadConfig loads configuration from an HCL file. A missing file yields the
// defaults.
func LoadConfig(filename string) (Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &fc)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	var cfg Config
	if fc.Server != nil {
		cfg.Server = *fc.Server
	}
	if fc.Game != nil {
		cfg.Game = *fc.Game
	}
	if fc.Store != nil {
		cfg.Store = *fc.Store
	}
	cfg.PersistTimeoutMs = fc.PersistTimeoutMs
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Server.Address == "" {
		c.Server.Address = def.Server.Address
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = def.Server.LogLevel
	}
	if c.Game.MaxPlayers == 0 {
		c.Game.MaxPlayers = def.Game.MaxPlayers
	}
	if c.Game.MinPlayers == 0 {
		c.Game.MinPlayers = def.Game.MinPlayers
	}
	if c.Game.HandSize == 0 {
		c.Game.HandSize = def.Game.HandSize
	}
	if c.Store.Kind == "" {
		c.Store.Kind = def.Store.Kind
	}
	if c.PersistTimeoutMs == 0 {
		c.PersistTimeoutMs = def.PersistTimeoutMs
	}
}

// Validate validates the server configuration
func (c Config) Validate() error {
	_, port, err := net.SplitHostPort(c.Server.Address)
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", c.Server.Address, err)
	}
	if n, err := strconv.Atoi(port); err != nil || n < 0 || n > 65535 {
		return fmt.Errorf("invalid port: %s", port)
	}

	switch c.Server.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Server.LogLevel)
	}

	if err := c.Limits().Validate(); err != nil {
		return fmt.Errorf("game: %w", err)
	}
	if c.Game.HandSize <= 0 {
		return fmt.Errorf("game: hand size must be positive, got %d", c.Game.HandSize)
	}
	if c.PersistTimeoutMs <= 0 {
		return fmt.Errorf("persist timeout must be positive, got %dms", c.PersistTimeoutMs)
	}
	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}

// Limits returns the room size limits.
func (c Config) Limits() lobby.Limits {
	return lobby.Limits{MinPlayers: c.Game.MinPlayers, MaxPlayers: c.Game.MaxPlayers}
}

// Session returns the directory configuration.
func (c Config) Session() session.Config {
	return session.Config{
		Limits:         c.Limits(),
		HandSize:       c.Game.HandSize,
		PersistTimeout: time.Duration(c.PersistTimeoutMs) * time.Millisecond,
	}
}
