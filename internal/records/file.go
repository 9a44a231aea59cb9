package records

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lox/millebornes/internal/fileutil"
	"github.com/lox/millebornes/internal/gameid"
)

// FileStore writes one JSON document per game under a base directory.
type FileStore struct {
	dir    string
	logger zerolog.Logger
	mu     sync.Mutex
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string, logger zerolog.Logger) (*FileStore, error) {
	if dir == "" {
		dir = "records"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create records dir: %w", err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

// Dir is the base directory.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(gameID string) (string, error) {
	if err := gameid.Validate(gameID); err != nil {
		return "", fmt.Errorf("game %q: %w", gameID, err)
	}
	return filepath.Join(s.dir, "game-"+gameID+".json"), nil
}

func (s *FileStore) CreateGame(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(rec.GameID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := os.Stat(path); err == nil {
		s.logger.Debug().Str("game_id", rec.GameID).Msg("Game already recorded")
		return nil
	}
	if err := fileutil.WriteJSONAtomic(path, Game{Record: rec}, 0o644); err != nil {
		return err
	}
	s.logger.Debug().Str("game_id", rec.GameID).Str("path", path).Msg("Wrote game record")
	return nil
}

func (s *FileStore) FinishGame(ctx context.Context, res Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(res.GameID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var g Game
	if err := fileutil.ReadJSON(path, &g); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, res.GameID)
		}
		return err
	}
	g.Status = "finished"
	g.Result = &res
	return fileutil.WriteJSONAtomic(path, g, 0o644)
}

func (s *FileStore) List(ctx context.Context) ([]Game, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read records dir: %w", err)
	}
	var games []Game
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "game-") || filepath.Ext(name) != ".json" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var g Game
		if err := fileutil.ReadJSON(filepath.Join(s.dir, name), &g); err != nil {
			s.logger.Warn().Err(err).Str("file", name).Msg("Skipping unreadable game record")
			continue
		}
		games = append(games, g)
	}
	sortGames(games)
	return games, nil
}

func (s *FileStore) Close() error { return nil }
