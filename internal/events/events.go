package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeDeposited = "custody.deposited"
	TypeWithdrawn = "custody.withdrawn"
	TypePaused    = "custody.paused"
	TypeResumed   = "custody.resumed"
)

// Event is the canonical notification payload emitted by the ledger and the
// admin gate. Duration is only set on withdrawal events, Admin only on
// pause/resume events.
type Event struct {
	ID        string        `json:"id"`
	Type      string        `json:"type"`
	Owner     string        `json:"owner,omitempty"`
	ItemID    int64         `json:"item_id,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration,omitempty"`
	Admin     string        `json:"admin,omitempty"`
}

// NewDeposited returns the canonical event payload for a successful deposit.
func NewDeposited(owner string, itemID int64, at time.Time) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      TypeDeposited,
		Owner:     owner,
		ItemID:    itemID,
		Timestamp: at,
	}
}

// NewWithdrawn returns the canonical event payload for a successful
// withdrawal, carrying the time the item spent in custody.
func NewWithdrawn(owner string, itemID int64, at time.Time, held time.Duration) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      TypeWithdrawn,
		Owner:     owner,
		ItemID:    itemID,
		Timestamp: at,
		Duration:  held,
	}
}

// NewPaused returns the admin event emitted when deposits are suspended.
func NewPaused(admin string, at time.Time) Event {
	return Event{ID: uuid.NewString(), Type: TypePaused, Admin: admin, Timestamp: at}
}

// NewResumed returns the admin event emitted when deposits are re-enabled.
func NewResumed(admin string, at time.Time) Event {
	return Event{ID: uuid.NewString(), Type: TypeResumed, Admin: admin, Timestamp: at}
}

// Emitter receives events from the ledger and gate. Emit must not block the
// caller; implementations are responsible for their own delivery buffering.
type Emitter interface {
	Emit(ev Event)
}

// Func adapts a plain function to the Emitter interface.
type Func func(ev Event)

func (f Func) Emit(ev Event) { f(ev) }

// Discard drops every event. Useful when no subscriber surface is wired.
var Discard = Func(func(Event) {})
