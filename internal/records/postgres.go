package records

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS games (
	game_id     TEXT PRIMARY KEY,
	status      TEXT NOT NULL,
	players     TEXT[] NOT NULL,
	created_by  TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	winner      TEXT,
	scores      JSONB,
	finished_at TIMESTAMPTZ
)`

// PostgresStore keeps records in a games table.
type PostgresStore struct {
	db     *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgresStore connects and makes sure the games table exists.
func NewPostgresStore(ctx context.Context, dsn string, maxConns int, logger zerolog.Logger) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if maxConns > 0 {
		poolConfig.MaxConns = int32(maxConns)
	}
	poolConfig.MaxConnIdleTime = 10 * time.Minute

	db, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.Exec(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create games table: %w", err)
	}
	return &PostgresStore{db: db, logger: logger}, nil
}

func (s *PostgresStore) CreateGame(ctx context.Context, rec Record) error {
	query := `
		INSERT INTO games (game_id, status, players, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (game_id) DO NOTHING
	`
	_, err := s.db.Exec(ctx, query, rec.GameID, rec.Status, rec.Players, rec.CreatedBy, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert game %s: %w", rec.GameID, err)
	}
	return nil
}

func (s *PostgresStore) FinishGame(ctx context.Context, res Result) error {
	scores, err := json.Marshal(res.Scores)
	if err != nil {
		return fmt.Errorf("marshal scores: %w", err)
	}
	query := `
		UPDATE games SET status = 'finished', winner = $2, scores = $3, finished_at = $4
		WHERE game_id = $1
	`
	tag, err := s.db.Exec(ctx, query, res.GameID, res.Winner, scores, res.FinishedAt)
	if err != nil {
		return fmt.Errorf("update game %s: %w", res.GameID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, res.GameID)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Game, error) {
	query := `
		SELECT game_id, status, players, created_by, created_at, winner, scores, finished_at
		FROM games ORDER BY created_at, game_id
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	games, err := pgx.CollectRows(rows, scanGame)
	if err != nil {
		return nil, fmt.Errorf("scan games: %w", err)
	}
	return games, nil
}

func scanGame(row pgx.CollectableRow) (Game, error) {
	var (
		g          Game
		winner     *string
		scores     []byte
		finishedAt *time.Time
	)
	if err := row.Scan(&g.GameID, &g.Status, &g.Players, &g.CreatedBy, &g.CreatedAt, &winner, &scores, &finishedAt); err != nil {
		return Game{}, err
	}
	if finishedAt != nil {
		res := &Result{GameID: g.GameID, FinishedAt: *finishedAt}
		if winner != nil {
			res.Winner = *winner
		}
		if len(scores) > 0 {
			if err := json.Unmarshal(scores, &res.Scores); err != nil {
				return Game{}, fmt.Errorf("decode scores for %s: %w", g.GameID, err)
			}
		}
		g.Result = res
	}
	return g, nil
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
