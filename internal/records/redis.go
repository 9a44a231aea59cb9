package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisStore keeps each game as a JSON string and indexes ids in a sorted
// set scored by creation time.
//
//	{prefix}game:{id}  -> JSON Game
//	{prefix}games      -> ZSET id scored by created_at (unix ms)
type RedisStore struct {
	client *redis.Client
	prefix string
	logger zerolog.Logger
}

// NewRedisStore connects and pings the server.
func NewRedisStore(ctx context.Context, addr, password string, db int, prefix string, logger zerolog.Logger) (*RedisStore, error) {
	if prefix == "" {
		prefix = "millebornes:"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{client: client, prefix: prefix, logger: logger}, nil
}

func (s *RedisStore) gameKey(id string) string { return s.prefix + "game:" + id }
func (s *RedisStore) indexKey() string         { return s.prefix + "games" }

func (s *RedisStore) CreateGame(ctx context.Context, rec Record) error {
	data, err := json.Marshal(Game{Record: rec})
	if err != nil {
		return fmt.Errorf("marshal game: %w", err)
	}
	// Key and index go in one MULTI. NX on both keeps the first write when
	// the game is already recorded.
	member := redis.Z{Score: float64(rec.CreatedAt.UnixMilli()), Member: rec.GameID}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, s.gameKey(rec.GameID), data, 0)
		pipe.ZAddNX(ctx, s.indexKey(), member)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store game %s: %w", rec.GameID, err)
	}
	return nil
}

func (s *RedisStore) FinishGame(ctx context.Context, res Result) error {
	key := s.gameKey(res.GameID)
	// Optimistic update so a concurrent writer cannot lose the result.
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("%w: %s", ErrNotFound, res.GameID)
		}
		if err != nil {
			return err
		}
		var g Game
		if err := json.Unmarshal(data, &g); err != nil {
			return fmt.Errorf("decode game %s: %w", res.GameID, err)
		}
		g.Status = "finished"
		g.Result = &res
		updated, err := json.Marshal(g)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		return err
	}, key)
	if err != nil {
		return fmt.Errorf("finish game %s: %w", res.GameID, err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]Game, error) {
	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read game index: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.gameKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("read games: %w", err)
	}
	games := make([]Game, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			s.logger.Warn().Str("game_id", ids[i]).Msg("Indexed game missing from redis")
			continue
		}
		var g Game
		if err := json.Unmarshal([]byte(raw), &g); err != nil {
			s.logger.Warn().Err(err).Str("game_id", ids[i]).Msg("Skipping unreadable game record")
			continue
		}
		games = append(games, g)
	}
	sortGames(games)
	return games, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
