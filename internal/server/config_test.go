package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/millebornes/internal/records"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "millebornes.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.hcl"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
server {
  address         = "127.0.0.1:4000"
  allowed_origins = ["http://localhost:5173"]
  log_level       = "debug"
}

game {
  max_players = 3
  hand_size   = 5
  seed        = 42
}

store "file" {
  dir = "records"
}

persist_timeout_ms = 250
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "127.0.0.1:4000", cfg.Server.Address)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, GameSettings{MaxPlayers: 3, MinPlayers: 2, HandSize: 5, Seed: 42}, cfg.Game)
	assert.Equal(t, records.Config{Kind: records.KindFile, Dir: "records"}, cfg.Store)

	sess := cfg.Session()
	assert.Equal(t, 250*time.Millisecond, sess.PersistTimeout)
	assert.Equal(t, 5, sess.HandSize)
	assert.Equal(t, 3, sess.Limits.MaxPlayers)
}

func TestLoadConfigPartialFile(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `game { min_players = 3 }`))
	require.NoError(t, err)

	want := DefaultConfig()
	want.Game.MinPlayers = 3
	assert.Equal(t, want, cfg)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", `server {`},
		{"unknown attribute", `server { port = 80 }`},
		{"wrong type", `game { hand_size = "six" }`},
		{"store without kind", `store { dir = "x" }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"host and port", func(c *Config) { c.Server.Address = "0.0.0.0:8080" }, true},
		{"no port", func(c *Config) { c.Server.Address = "localhost" }, false},
		{"port out of range", func(c *Config) { c.Server.Address = ":70000" }, false},
		{"log level", func(c *Config) { c.Server.LogLevel = "loud" }, false},
		{"min players below two", func(c *Config) { c.Game.MinPlayers = 1 }, false},
		{"max players above four", func(c *Config) { c.Game.MaxPlayers = 5 }, false},
		{"min above max", func(c *Config) { c.Game.MinPlayers = 4; c.Game.MaxPlayers = 3 }, false},
		{"hand size", func(c *Config) { c.Game.HandSize = 0 }, false},
		{"persist timeout", func(c *Config) { c.PersistTimeoutMs = -1 }, false},
		{"unknown store", func(c *Config) { c.Store.Kind = "s3" }, false},
		{"file store without dir", func(c *Config) { c.Store = records.Config{Kind: records.KindFile} }, false},
		{"redis store", func(c *Config) { c.Store = records.Config{Kind: records.KindRedis, Addr: "localhost:6379"} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
