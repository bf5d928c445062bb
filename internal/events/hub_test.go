package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()
	a := hub.Subscribe()
	b := hub.Subscribe()

	ev := NewDeposited("alice", 1, time.Now())
	hub.Emit(ev)

	assert.Equal(t, ev, <-a)
	assert.Equal(t, ev, <-b)
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()
	ch := hub.Subscribe()
	hub.Unsubscribe(ch)

	_, open := <-ch
	assert.False(t, open)

	// Double unsubscribe must not panic.
	hub.Unsubscribe(ch)
	hub.Emit(NewResumed("admin", time.Now()))
}

func TestHubSkipsSlowSubscriber(t *testing.T) {
	hub := NewHub()
	ch := hub.Subscribe()

	// Fill the buffer and keep emitting; Emit must never block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Emit(NewDeposited("alice", int64(i), time.Now()))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a slow subscriber")
	}

	require.Len(t, ch, cap(ch), "buffer keeps the earliest events")
}
