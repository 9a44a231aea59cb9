package session

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/lox/millebornes/internal/game"
	"github.com/lox/millebornes/internal/lobby"
	"github.com/lox/millebornes/internal/protocol"
	"github.com/lox/millebornes/internal/records"
)

// fanOutLimit caps how many actors a directory-wide operation talks to at once.
const fanOutLimit = 16

// CreateRoom opens a room with playerID seated first and connID in its
// broadcast group. The creator receives gameCreated.
func (d *Directory) CreateRoom(ctx context.Context, connID, playerID string) (lobby.Room, error) {
	a, err := d.register(lobby.Member{ID: playerID, ConnID: connID})
	if err != nil {
		return lobby.Room{}, err
	}

	var snap lobby.Room
	err = a.do(ctx, func(r *room) error {
		snap = r.lobby.Snapshot()
		d.notify([]string{connID}, protocol.EventGameCreated, snap)
		return nil
	})
	if err != nil {
		return lobby.Room{}, orNotFound(err, lobby.ErrRoomNotFound)
	}
	d.logger.Info().Str("room_id", snap.ID).Str("player_id", playerID).Msg("Room created")
	return snap, nil
}

// JoinRoom seats playerID and broadcasts playerJoined to the room.
func (d *Directory) JoinRoom(ctx context.Context, connID, roomID, playerID string) (lobby.Room, error) {
	a, ok := d.lookup(roomID)
	if !ok {
		return lobby.Room{}, lobby.ErrRoomNotFound
	}

	var snap lobby.Room
	err := a.do(ctx, func(r *room) error {
		if err := r.lobby.Join(lobby.Member{ID: playerID, ConnID: connID}); err != nil {
			return err
		}
		r.members[connID] = struct{}{}
		snap = r.lobby.Snapshot()
		d.notify(r.audience(), protocol.EventPlayerJoined, snap)
		return nil
	})
	if err != nil {
		return lobby.Room{}, orNotFound(err, lobby.ErrRoomNotFound)
	}
	d.logger.Debug().Str("room_id", roomID).Str("player_id", playerID).Str("status", string(snap.Status)).Msg("Player joined room")
	return snap, nil
}

// LeaveRoom removes playerID. The leaver receives gameLeft and everyone left
// behind receives playerLeft. A room emptied this way is destroyed along
// with its game.
func (d *Directory) LeaveRoom(ctx context.Context, connID, roomID, playerID string) error {
	a, ok := d.lookup(roomID)
	if !ok {
		return lobby.ErrRoomNotFound
	}

	err := a.do(ctx, func(r *room) error {
		if err := r.lobby.Leave(playerID); err != nil {
			return err
		}
		if !r.lobby.HasConn(connID) {
			delete(r.members, connID)
		}
		d.notify([]string{connID}, protocol.EventGameLeft, roomID)
		if !r.lobby.Empty() {
			d.notify(r.audience(), protocol.EventPlayerLeft, r.lobby.Snapshot())
		}
		return nil
	})
	if err != nil {
		return orNotFound(err, lobby.ErrRoomNotFound)
	}
	d.logger.Debug().Str("room_id", roomID).Str("player_id", playerID).Msg("Player left room")
	return nil
}

// StartGame promotes a ready room to a game. The creation record is written
// before the room flips to playing; if that write fails the new game is
// discarded and the room stays ready.
func (d *Directory) StartGame(ctx context.Context, connID, roomID, playerID string) error {
	a, ok := d.lookup(roomID)
	if !ok {
		return lobby.ErrRoomNotFound
	}

	err := a.do(ctx, func(r *room) error {
		if err := r.lobby.CanStart(playerID); err != nil {
			return err
		}

		seats := make([]game.Seat, len(r.lobby.Players))
		ids := make([]string, len(r.lobby.Players))
		for i, m := range r.lobby.Players {
			seats[i] = game.Seat{ID: m.ID, ConnID: m.ConnID}
			ids[i] = m.ID
		}
		g, err := game.Start(r.lobby.ID, seats, d.rng, d.cfg.HandSize)
		if err != nil {
			return fmt.Errorf("start game %s: %w", roomID, err)
		}

		rec := records.Record{
			GameID:    g.ID,
			Status:    string(g.Status),
			Players:   ids,
			CreatedBy: playerID,
			CreatedAt: d.clock.Now(),
		}
		pctx, cancel := context.WithTimeout(ctx, d.persistTimeout())
		err = d.store.CreateGame(pctx, rec)
		cancel()
		if err != nil {
			d.logger.Error().Err(err).Str("game_id", g.ID).Msg("Failed to persist game start")
			return fmt.Errorf("%w: %w", lobby.ErrPersistFailed, err)
		}

		r.lobby.MarkPlaying()
		r.game = g
		audience := r.audience()
		d.notify(audience, protocol.EventGameStarted, g)
		d.notify(audience, protocol.EventGameUpdate, g)
		d.logger.Info().Str("game_id", g.ID).Str("conn_id", connID).Strs("players", ids).Int("deck", len(g.Deck)).Msg("Game started")
		return nil
	})
	return orNotFound(err, lobby.ErrRoomNotFound)
}

// Disconnect treats a lost connection as leaving every room it sits in and
// drops it from every broadcast group. Calling it twice is harmless.
func (d *Directory) Disconnect(ctx context.Context, connID string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOutLimit)
	for _, a := range d.actors() {
		g.Go(func() error {
			err := a.do(gctx, func(r *room) error {
				delete(r.members, connID)
				removed := r.lobby.DropConn(connID)
				if len(removed) == 0 {
					return nil
				}
				d.logger.Debug().Str("room_id", r.lobby.ID).Strs("players", removed).Msg("Disconnected players left room")
				if !r.lobby.Empty() {
					d.notify(r.audience(), protocol.EventPlayerLeft, r.lobby.Snapshot())
				}
				return nil
			})
			return orNotFound(err, nil)
		})
	}
	return g.Wait()
}

// PlayerRooms returns every room playerID is seated in, oldest first.
func (d *Directory) PlayerRooms(ctx context.Context, playerID string) ([]lobby.Room, error) {
	return d.collect(ctx, func(r *lobby.Room) bool { return r.Has(playerID) })
}

// Rooms returns every live room, oldest first.
func (d *Directory) Rooms(ctx context.Context) ([]lobby.Room, error) {
	return d.collect(ctx, func(*lobby.Room) bool { return true })
}

func (d *Directory) collect(ctx context.Context, match func(*lobby.Room) bool) ([]lobby.Room, error) {
	var (
		mu  sync.Mutex
		out = []lobby.Room{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOutLimit)
	for _, a := range d.actors() {
		g.Go(func() error {
			err := a.do(gctx, func(r *room) error {
				if match(r.lobby) {
					snap := r.lobby.Snapshot()
					mu.Lock()
					out = append(out, snap)
					mu.Unlock()
				}
				return nil
			})
			return orNotFound(err, nil)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sortRooms(out)
	return out, nil
}
