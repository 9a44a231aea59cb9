// Package session is the process-wide directory of live rooms and the games
// they host.
//
// Every room runs on its own goroutine (its actor). All operations on a room
// and on the game it was promoted to are sent to that actor's inbox and run
// one at a time, so a card play's read-validate-mutate sequence is atomic
// while different rooms proceed in parallel. A room and its game share one
// identifier and one actor; the actor exits and the entry is removed when the
// last player leaves or disconnects.
//
// State changes are pushed to room members through a Notifier from inside the
// actor, which keeps broadcasts in the same order as the mutations that
// produced them. Validation failures are returned to the caller and never
// broadcast.
package session

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/lox/millebornes/internal/cards"
	"github.com/lox/millebornes/internal/game"
	"github.com/lox/millebornes/internal/gameid"
	"github.com/lox/millebornes/internal/lobby"
	"github.com/lox/millebornes/internal/protocol"
	"github.com/lox/millebornes/internal/randutil"
	"github.com/lox/millebornes/internal/records"
)

// ErrClosed is returned once the directory has shut down.
var ErrClosed = errors.New("session directory closed")

// Notifier delivers an event to a set of connections. Implementations must
// not block and must not retain payload after returning; it is called from
// room actors while they own the state payload points into.
type Notifier interface {
	Send(connIDs []string, event protocol.Event, payload any)
}

// Config holds the game rules that vary per deployment.
type Config struct {
	Limits   lobby.Limits
	HandSize int
	// PersistTimeout bounds each call to the record store.
	PersistTimeout time.Duration
}

// DefaultConfig returns the standard table.
func DefaultConfig() Config {
	return Config{
		Limits:         lobby.DefaultLimits(),
		HandSize:       game.DefaultHandSize,
		PersistTimeout: 5 * time.Second,
	}
}

// Option customises a Directory.
type Option func(*Directory)

// WithClock sets the clock used for room and record timestamps.
func WithClock(clock quartz.Clock) Option {
	return func(d *Directory) { d.clock = clock }
}

// WithShuffler sets the random source for deck shuffles. It is shared by all
// actors and must be safe for concurrent use.
func WithShuffler(rng cards.Shuffler) Option {
	return func(d *Directory) { d.rng = rng }
}

// WithIDs sets the room id generator.
func WithIDs(next func() string) Option {
	return func(d *Directory) { d.newID = next }
}

// Directory maps room and game ids to their actors.
type Directory struct {
	cfg      Config
	logger   zerolog.Logger
	notifier Notifier
	store    records.Store
	clock    quartz.Clock
	rng      cards.Shuffler
	newID    func() string

	mu     sync.RWMutex
	rooms  map[string]*actor
	closed bool
	quit   chan struct{}
	wg     sync.WaitGroup
}

// New creates an empty directory.
func New(logger zerolog.Logger, notifier Notifier, store records.Store, cfg Config, opts ...Option) *Directory {
	d := &Directory{
		cfg:      cfg,
		logger:   logger.With().Str("component", "session").Logger(),
		notifier: notifier,
		store:    store,
		clock:    quartz.NewReal(),
		rng:      randutil.NewLocked(randutil.Seed()),
		newID:    gameid.Generate,
		rooms:    make(map[string]*actor),
		quit:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Len returns the number of live rooms.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms)
}

// Close stops every actor and waits for in-flight result writes.
func (d *Directory) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.quit)
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Directory) lookup(id string) (*actor, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.rooms[id]
	return a, ok
}

func (d *Directory) actors() []*actor {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*actor, 0, len(d.rooms))
	for _, a := range d.rooms {
		out = append(out, a)
	}
	return out
}

// register creates and starts an actor for a new room.
func (d *Directory) register(creator lobby.Member) (*actor, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrClosed
	}
	id := d.newID()
	for _, taken := d.rooms[id]; taken; _, taken = d.rooms[id] {
		id = d.newID()
	}

	r := &room{
		lobby:   lobby.New(id, creator, d.clock.Now(), d.cfg.Limits),
		members: map[string]struct{}{creator.ConnID: {}},
	}
	a := newActor(d, r)
	d.rooms[id] = a
	d.wg.Add(1)
	go a.run()
	return a, nil
}

func (d *Directory) unregister(a *actor) {
	d.mu.Lock()
	if d.rooms[a.id] == a {
		delete(d.rooms, a.id)
	}
	d.mu.Unlock()
	d.logger.Info().Str("room_id", a.id).Msg("Room closed")
}

func (d *Directory) notify(connIDs []string, event protocol.Event, payload any) {
	if len(connIDs) == 0 {
		return
	}
	d.notifier.Send(connIDs, event, payload)
}

// room is the state one actor owns.
type room struct {
	lobby *lobby.Room
	game  *game.State
	// members is the broadcast group: connections that receive room and
	// game pushes.
	members map[string]struct{}
}

func (r *room) audience() []string {
	out := make([]string, 0, len(r.members))
	for id := range r.members {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

func sortRooms(rooms []lobby.Room) {
	slices.SortFunc(rooms, func(a, b lobby.Room) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
