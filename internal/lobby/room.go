// Package lobby models a pre-game room and its membership rules.
//
// Room is a plain value with no locking of its own; the session package
// owns each room from a single goroutine.
package lobby

import (
	"fmt"
	"slices"
	"time"
)

// Status is where a room is in its lifecycle.
type Status string

const (
	StatusWaiting Status = "waiting"
	StatusReady   Status = "ready"
	StatusPlaying Status = "playing"
)

// Seating limits.
const (
	DefaultMinPlayers = 2
	DefaultMaxPlayers = 4
)

// Limits bounds room membership.
type Limits struct {
	MinPlayers int
	MaxPlayers int
}

// DefaultLimits returns the standard 2 to 4 player table.
func DefaultLimits() Limits {
	return Limits{MinPlayers: DefaultMinPlayers, MaxPlayers: DefaultMaxPlayers}
}

// Validate checks the limits fall within the 2 to 4 seat table.
func (l Limits) Validate() error {
	if l.MinPlayers < DefaultMinPlayers || l.MinPlayers > DefaultMaxPlayers {
		return fmt.Errorf("min players %d outside [%d,%d]", l.MinPlayers, DefaultMinPlayers, DefaultMaxPlayers)
	}
	if l.MaxPlayers < l.MinPlayers || l.MaxPlayers > DefaultMaxPlayers {
		return fmt.Errorf("max players %d outside [%d,%d]", l.MaxPlayers, l.MinPlayers, DefaultMaxPlayers)
	}
	return nil
}

// StatusFor derives a room's status from its membership. It is the only
// place status is computed.
func StatusFor(count int, playing bool, minPlayers int) Status {
	switch {
	case playing:
		return StatusPlaying
	case count >= minPlayers:
		return StatusReady
	default:
		return StatusWaiting
	}
}

// Member is a player seated in a room.
type Member struct {
	ID     string `json:"id"`
	ConnID string `json:"connectionId"`
}

// Room is a lobby grouping players before a game starts. Once Playing the
// room is terminal and its game shares its ID.
type Room struct {
	ID        string    `json:"roomId"`
	GameID    string    `json:"gameId,omitempty"`
	Status    Status    `json:"status"`
	Players   []Member  `json:"players"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`

	limits Limits
}

// New creates a room with the creator seated first.
func New(id string, creator Member, createdAt time.Time, limits Limits) *Room {
	r := &Room{
		ID:        id,
		Players:   []Member{creator},
		CreatedBy: creator.ID,
		CreatedAt: createdAt,
		limits:    limits,
	}
	r.refresh()
	return r
}

func (r *Room) refresh() {
	r.Status = StatusFor(len(r.Players), r.Status == StatusPlaying, r.limits.MinPlayers)
}

// Playing reports whether the room has been promoted to a game.
func (r *Room) Playing() bool { return r.Status == StatusPlaying }

// Empty reports whether the last player has gone.
func (r *Room) Empty() bool { return len(r.Players) == 0 }

// Creator is the player allowed to start the game: whoever sits first.
func (r *Room) Creator() (Member, bool) {
	if r.Empty() {
		return Member{}, false
	}
	return r.Players[0], true
}

// Has reports whether playerID is seated.
func (r *Room) Has(playerID string) bool {
	return slices.ContainsFunc(r.Players, func(m Member) bool { return m.ID == playerID })
}

// HasConn reports whether any seat is held by connID.
func (r *Room) HasConn(connID string) bool {
	return slices.ContainsFunc(r.Players, func(m Member) bool { return m.ConnID == connID })
}

// Join seats m. The room is unchanged on error.
func (r *Room) Join(m Member) error {
	if r.Playing() {
		return ErrGameAlreadyStarted
	}
	if r.Has(m.ID) {
		return ErrAlreadyJoined
	}
	if len(r.Players) >= r.limits.MaxPlayers {
		return fmt.Errorf("%w (max %d players)", ErrRoomFull, r.limits.MaxPlayers)
	}
	r.Players = append(r.Players, m)
	r.refresh()
	return nil
}

// Leave removes playerID.
func (r *Room) Leave(playerID string) error {
	i := slices.IndexFunc(r.Players, func(m Member) bool { return m.ID == playerID })
	if i < 0 {
		return ErrNotInRoom
	}
	r.Players = slices.Delete(r.Players, i, i+1)
	r.refresh()
	return nil
}

// DropConn removes every seat held by connID and returns the player ids
// removed. Calling it again for the same connection is a no-op.
func (r *Room) DropConn(connID string) []string {
	var removed []string
	r.Players = slices.DeleteFunc(r.Players, func(m Member) bool {
		if m.ConnID == connID {
			removed = append(removed, m.ID)
			return true
		}
		return false
	})
	if len(removed) > 0 {
		r.refresh()
	}
	return removed
}

// CanStart checks whether requester may promote the room to a game now.
func (r *Room) CanStart(requester string) error {
	if r.Playing() {
		return ErrGameAlreadyStarted
	}
	if len(r.Players) < r.limits.MinPlayers {
		return fmt.Errorf("%w (need at least %d)", ErrNotEnoughPlayers, r.limits.MinPlayers)
	}
	if creator, _ := r.Creator(); creator.ID != requester {
		return ErrNotRoomCreator
	}
	return nil
}

// MarkPlaying promotes the room. Callers must have passed CanStart.
func (r *Room) MarkPlaying() {
	r.GameID = r.ID
	r.Status = StatusPlaying
}

// Snapshot returns a copy safe to share with other goroutines.
func (r *Room) Snapshot() Room {
	s := *r
	s.Players = slices.Clone(r.Players)
	if s.Players == nil {
		s.Players = []Member{}
	}
	return s
}
