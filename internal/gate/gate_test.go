package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/punchamoorthee/custodyvault/internal/events"
)

func TestAuthorize(t *testing.T) {
	g := New("admin", nil)
	assert.NoError(t, g.Authorize("admin"))
	assert.ErrorIs(t, g.Authorize("mallory"), ErrUnauthorized)
	assert.ErrorIs(t, g.Authorize(""), ErrUnauthorized)
}

func TestPauseResume(t *testing.T) {
	var emitted []events.Event
	g := New("admin", events.Func(func(ev events.Event) {
		emitted = append(emitted, ev)
	}))

	assert.True(t, g.Active())

	assert.ErrorIs(t, g.Pause("mallory"), ErrUnauthorized)
	assert.True(t, g.Active(), "unauthorized pause must not flip the mode")
	assert.Empty(t, emitted)

	require.NoError(t, g.Pause("admin"))
	assert.False(t, g.Active())
	require.Len(t, emitted, 1)
	assert.Equal(t, events.TypePaused, emitted[0].Type)
	assert.Equal(t, "admin", emitted[0].Admin)

	// Idempotent: no second event.
	require.NoError(t, g.Pause("admin"))
	assert.Len(t, emitted, 1)

	require.NoError(t, g.Resume("admin"))
	assert.True(t, g.Active())
	require.Len(t, emitted, 2)
	assert.Equal(t, events.TypeResumed, emitted[1].Type)
}
