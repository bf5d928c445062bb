package gate

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/punchamoorthee/custodyvault/internal/events"
)

var ErrUnauthorized = errors.New("caller is not authorized")

// Gate is the access-control and operational-mode collaborator. It decides
// whether administrative calls are allowed and whether the ledger currently
// accepts new deposits. Pausing never affects withdrawals.
type Gate struct {
	admin   string
	paused  atomic.Bool
	emitter events.Emitter
	now     func() time.Time
}

func New(admin string, emitter events.Emitter) *Gate {
	if emitter == nil {
		emitter = events.Discard
	}
	return &Gate{admin: admin, emitter: emitter, now: time.Now}
}

// Authorize reports whether the caller may perform administrative operations.
func (g *Gate) Authorize(caller string) error {
	if caller != g.admin {
		return ErrUnauthorized
	}
	return nil
}

// Active reports whether new deposits are accepted.
func (g *Gate) Active() bool {
	return !g.paused.Load()
}

// Pause suspends new deposits. Idempotent; the event is emitted only on an
// actual state change.
func (g *Gate) Pause(caller string) error {
	if err := g.Authorize(caller); err != nil {
		return err
	}
	if g.paused.CompareAndSwap(false, true) {
		g.emitter.Emit(events.NewPaused(caller, g.now()))
	}
	return nil
}

// Resume re-enables deposits.
func (g *Gate) Resume(caller string) error {
	if err := g.Authorize(caller); err != nil {
		return err
	}
	if g.paused.CompareAndSwap(true, false) {
		g.emitter.Emit(events.NewResumed(caller, g.now()))
	}
	return nil
}
