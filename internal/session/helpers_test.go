package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/lox/millebornes/internal/game"
	"github.com/lox/millebornes/internal/lobby"
	"github.com/lox/millebornes/internal/protocol"
	"github.com/lox/millebornes/internal/randutil"
	"github.com/lox/millebornes/internal/records"
)

type delivery struct {
	conn    string
	event   protocol.Event
	payload json.RawMessage
}

// recorder is a Notifier that encodes payloads immediately, as the
// websocket hub does.
type recorder struct {
	mu  sync.Mutex
	log []delivery
}

func (r *recorder) Send(connIDs []string, event protocol.Event, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range connIDs {
		r.log = append(r.log, delivery{conn: c, event: event, payload: raw})
	}
}

func (r *recorder) events(conn string) []protocol.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []protocol.Event
	for _, d := range r.log {
		if d.conn == conn {
			out = append(out, d.event)
		}
	}
	return out
}

func (r *recorder) count(conn string, event protocol.Event) int {
	n := 0
	for _, e := range r.events(conn) {
		if e == event {
			n++
		}
	}
	return n
}

func (r *recorder) last(t *testing.T, conn string, event protocol.Event, v any) {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.log) - 1; i >= 0; i-- {
		if r.log[i].conn == conn && r.log[i].event == event {
			require.NoError(t, json.Unmarshal(r.log[i].payload, v))
			return
		}
	}
	t.Fatalf("no %s delivered to %s", event, conn)
}

// flakyStore fails CreateGame while failCreate is set. With lostReply set
// the record is written and the call still fails, like a commit whose
// acknowledgement timed out.
type flakyStore struct {
	*records.MemoryStore
	failCreate atomic.Bool
	lostReply  atomic.Bool
}

var errStoreDown = errors.New("store unavailable")

func (s *flakyStore) CreateGame(ctx context.Context, rec records.Record) error {
	if s.failCreate.Load() {
		return errStoreDown
	}
	if s.lostReply.Load() {
		if err := s.MemoryStore.CreateGame(ctx, rec); err != nil {
			return err
		}
		return errStoreDown
	}
	return s.MemoryStore.CreateGame(ctx, rec)
}

type fixture struct {
	dir   *Directory
	sent  *recorder
	store *flakyStore
	clock *quartz.Mock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		sent:  &recorder{},
		store: &flakyStore{MemoryStore: records.NewMemoryStore()},
		clock: quartz.NewMock(t),
	}
	cfg := DefaultConfig()
	cfg.PersistTimeout = time.Second
	f.dir = New(zerolog.New(zerolog.NewTestWriter(t)), f.sent, f.store, cfg,
		WithClock(f.clock),
		WithShuffler(randutil.NewLocked(42)),
	)
	t.Cleanup(f.dir.Close)
	return f
}

// readyRoom creates a room for p1 on c1 and seats the given extra players,
// player pN on connection cN.
func (f *fixture) readyRoom(t *testing.T, players int) lobby.Room {
	t.Helper()
	ctx := context.Background()
	room, err := f.dir.CreateRoom(ctx, "c1", "p1")
	require.NoError(t, err)
	for i := 2; i <= players; i++ {
		room, err = f.dir.JoinRoom(ctx, conn(i), room.ID, player(i))
		require.NoError(t, err)
	}
	return room
}

func (f *fixture) startedGame(t *testing.T, players int) string {
	t.Helper()
	room := f.readyRoom(t, players)
	require.NoError(t, f.dir.StartGame(context.Background(), "c1", room.ID, "p1"))
	return room.ID
}

// inspect runs fn on the room's actor, so it sees state between operations.
func (f *fixture) inspect(t *testing.T, id string, fn func(*lobby.Room, *game.State)) {
	t.Helper()
	a, ok := f.dir.lookup(id)
	require.True(t, ok, "room %s not live", id)
	require.NoError(t, a.do(context.Background(), func(r *room) error {
		fn(r.lobby, r.game)
		return nil
	}))
}

func conn(i int) string   { return "c" + string(rune('0'+i)) }
func player(i int) string { return "p" + string(rune('0'+i)) }
