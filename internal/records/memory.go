package records

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// MemoryStore keeps records for the life of the process. Tests also use it
// to observe what the session directory persisted.
type MemoryStore struct {
	mu    sync.RWMutex
	games map[string]*Game
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{games: make(map[string]*Game)}
}

func (s *MemoryStore) CreateGame(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.games[rec.GameID]; exists {
		return nil
	}
	rec.Players = slices.Clone(rec.Players)
	s.games[rec.GameID] = &Game{Record: rec}
	return nil
}

func (s *MemoryStore) FinishGame(ctx context.Context, res Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[res.GameID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, res.GameID)
	}
	res.Scores = maps.Clone(res.Scores)
	g.Status = "finished"
	g.Result = &res
	return nil
}

// Get returns a copy of one game.
func (s *MemoryStore) Get(gameID string) (Game, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[gameID]
	if !ok {
		return Game{}, false
	}
	return *g, true
}

func (s *MemoryStore) List(ctx context.Context) ([]Game, error) {
	s.mu.RLock()
	out := make([]Game, 0, len(s.games))
	for _, g := range s.games {
		out = append(out, *g)
	}
	s.mu.RUnlock()
	sortGames(out)
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
