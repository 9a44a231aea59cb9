package session

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
)

// errGone means the actor stopped before accepting the job: its room was
// destroyed or the directory closed.
var errGone = errors.New("room actor stopped")

type job struct {
	fn    func(*room) error
	reply chan error
}

type actor struct {
	id    string
	d     *Directory
	state *room
	inbox chan job
	done  chan struct{}
}

func newActor(d *Directory, r *room) *actor {
	return &actor{
		id:    r.lobby.ID,
		d:     d,
		state: r,
		inbox: make(chan job),
		done:  make(chan struct{}),
	}
}

func (a *actor) run() {
	defer a.d.wg.Done()
	defer close(a.done)

	for {
		select {
		case j := <-a.inbox:
			err := a.exec(j.fn)
			if a.state.lobby.Empty() {
				// Unregister before replying so the caller never observes
				// an empty room still listed.
				a.d.unregister(a)
				j.reply <- err
				return
			}
			j.reply <- err
		case <-a.d.quit:
			return
		}
	}
}

// exec runs one job. A panic is logged and returned as an error so the room
// is never left wedged.
func (a *actor) exec(fn func(*room) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			a.d.logger.Error().
				Str("room_id", a.id).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("Recovered panic in room actor")
			err = fmt.Errorf("room %s: internal error", a.id)
		}
	}()
	return fn(a.state)
}

// do runs fn on the actor goroutine. ctx bounds only the wait for the actor
// to accept the job; once accepted a job always runs to completion.
func (a *actor) do(ctx context.Context, fn func(*room) error) error {
	j := job{fn: fn, reply: make(chan error, 1)}
	select {
	case a.inbox <- j:
	case <-a.done:
		return errGone
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-j.reply
}

// orNotFound maps errGone to the caller's not-found error.
func orNotFound(err, notFound error) error {
	if errors.Is(err, errGone) {
		return notFound
	}
	return err
}
