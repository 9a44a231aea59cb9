package session

import (
	"context"
	"maps"
	"time"

	"github.com/lox/millebornes/internal/game"
	"github.com/lox/millebornes/internal/protocol"
	"github.com/lox/millebornes/internal/records"
)

// AttachGame adds connID to a game's broadcast group and sends it the
// current state. Only players of the game may attach.
func (d *Directory) AttachGame(ctx context.Context, connID, gameID, playerID string) error {
	a, ok := d.lookup(gameID)
	if !ok {
		return game.ErrGameNotFound
	}
	err := a.do(ctx, func(r *room) error {
		if r.game == nil {
			return game.ErrGameNotFound
		}
		if !r.game.HasPlayer(playerID) {
			return game.ErrNotInGame
		}
		r.members[connID] = struct{}{}
		d.notify([]string{connID}, protocol.EventGameUpdate, r.game)
		return nil
	})
	return orNotFound(err, game.ErrGameNotFound)
}

// DetachGame removes connID from a game's broadcast group. Detaching from a
// game that no longer exists is not an error.
func (d *Directory) DetachGame(ctx context.Context, connID, gameID string) error {
	a, ok := d.lookup(gameID)
	if !ok {
		return nil
	}
	err := a.do(ctx, func(r *room) error {
		delete(r.members, connID)
		return nil
	})
	return orNotFound(err, nil)
}

// PlayCard plays a card for the player acting on connID and broadcasts the
// new state. A rejected play changes nothing and is only returned to the
// caller.
func (d *Directory) PlayCard(ctx context.Context, connID, gameID string, cardIndex int) error {
	a, ok := d.lookup(gameID)
	if !ok {
		return game.ErrGameNotFound
	}
	err := a.do(ctx, func(r *room) error {
		if r.game == nil {
			return game.ErrGameNotFound
		}
		play, err := r.game.PlayCard(connID, cardIndex)
		if err != nil {
			return err
		}
		d.logger.Debug().
			Str("game_id", gameID).
			Str("player_id", play.PlayerID).
			Str("card", play.Card.String()).
			Str("target", play.TargetID).
			Int("turn", r.game.CurrentTurn).
			Msg("Card played")

		d.notify(r.audience(), protocol.EventGameUpdate, r.game)

		if play.Finished {
			d.logger.Info().Str("game_id", gameID).Str("winner", r.game.Winner).Interface("scores", r.game.Scores).Msg("Game finished")
			d.persistResult(records.Result{
				GameID:     gameID,
				Winner:     r.game.Winner,
				Scores:     maps.Clone(r.game.Scores),
				FinishedAt: d.clock.Now(),
			})
		}
		return nil
	})
	return orNotFound(err, game.ErrGameNotFound)
}

// persistResult writes the result off the actor goroutine. The result has
// already been broadcast, so a failure is only logged.
func (d *Directory) persistResult(res records.Result) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.persistTimeout())
		defer cancel()
		if err := d.store.FinishGame(ctx, res); err != nil {
			d.logger.Error().Err(err).Str("game_id", res.GameID).Msg("Failed to persist game result")
		}
	}()
}

func (d *Directory) persistTimeout() time.Duration {
	if d.cfg.PersistTimeout <= 0 {
		return DefaultConfig().PersistTimeout
	}
	return d.cfg.PersistTimeout
}
