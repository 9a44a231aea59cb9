// Package records persists the durable artifacts of a game: a creation
// record written when a room is promoted, and a result written when the game
// finishes. In-flight state is never stored.
package records

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrNotFound is returned when finishing or reading a game that was never
// created in the store.
var ErrNotFound = errors.New("game record not found")

// Record is written once when a game starts.
type Record struct {
	GameID    string    `json:"gameId"`
	Status    string    `json:"status"`
	Players   []string  `json:"players"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// Result is written once when a game finishes.
type Result struct {
	GameID     string         `json:"gameId"`
	Winner     string         `json:"winner"`
	Scores     map[string]int `json:"scores"`
	FinishedAt time.Time      `json:"finishedAt"`
}

// Game is the stored view of one game.
type Game struct {
	Record
	Result *Result `json:"result,omitempty"`
}

// Store is the persistence collaborator used by the session directory.
//
// CreateGame is idempotent by GameID: a record that already exists is kept
// as first written and the call succeeds, so a start that failed after the
// write landed can be retried.
type Store interface {
	CreateGame(ctx context.Context, rec Record) error
	FinishGame(ctx context.Context, res Result) error
	Close() error
}

// Lister is implemented by stores that can read games back.
type Lister interface {
	List(ctx context.Context) ([]Game, error)
}

// Store kinds.
const (
	KindMemory   = "memory"
	KindFile     = "file"
	KindPostgres = "postgres"
	KindRedis    = "redis"
	KindNATS     = "nats"
)

// Config selects and parameterises a store.
type Config struct {
	Kind string `hcl:"kind,label"`

	// file
	Dir string `hcl:"dir,optional"`

	// postgres
	DSN      string `hcl:"dsn,optional"`
	MaxConns int    `hcl:"max_conns,optional"`

	// redis
	Addr      string `hcl:"addr,optional"`
	Password  string `hcl:"password,optional"`
	DB        int    `hcl:"db,optional"`
	KeyPrefix string `hcl:"key_prefix,optional"`

	// nats
	URL           string `hcl:"url,optional"`
	SubjectPrefix string `hcl:"subject_prefix,optional"`
}

// DefaultConfig keeps records in memory.
func DefaultConfig() Config {
	return Config{Kind: KindMemory}
}

// Validate checks the parameters the selected kind needs.
func (c Config) Validate() error {
	switch c.Kind {
	case KindMemory:
	case KindFile:
		if c.Dir == "" {
			return fmt.Errorf("store %q: dir is required", c.Kind)
		}
	case KindPostgres:
		if c.DSN == "" {
			return fmt.Errorf("store %q: dsn is required", c.Kind)
		}
		if c.MaxConns < 0 {
			return fmt.Errorf("store %q: max_conns must not be negative", c.Kind)
		}
	case KindRedis:
		if c.Addr == "" {
			return fmt.Errorf("store %q: addr is required", c.Kind)
		}
	case KindNATS:
		if c.URL == "" {
			return fmt.Errorf("store %q: url is required", c.Kind)
		}
	default:
		return fmt.Errorf("unknown store kind %q (want one of %s)", c.Kind, strings.Join(kinds, ", "))
	}
	return nil
}

var kinds = []string{KindMemory, KindFile, KindPostgres, KindRedis, KindNATS}

// Open builds the store described by cfg.
func Open(ctx context.Context, cfg Config, logger zerolog.Logger) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger = logger.With().Str("component", "records").Str("store", cfg.Kind).Logger()

	switch cfg.Kind {
	case KindFile:
		return NewFileStore(cfg.Dir, logger)
	case KindPostgres:
		return NewPostgresStore(ctx, cfg.DSN, cfg.MaxConns, logger)
	case KindRedis:
		return NewRedisStore(ctx, cfg.Addr, cfg.Password, cfg.DB, cfg.KeyPrefix, logger)
	case KindNATS:
		return NewNATSPublisher(cfg.URL, cfg.SubjectPrefix, logger)
	default:
		return NewMemoryStore(), nil
	}
}

// sortGames orders games by creation time, then id.
func sortGames(games []Game) {
	slices.SortFunc(games, func(a, b Game) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.GameID, b.GameID)
	})
}
