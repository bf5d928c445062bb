package registry

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTransfer(t *testing.T) {
	m := NewMemory()
	m.Mint(1, "alice")
	ctx := context.Background()

	require.NoError(t, m.Transfer(ctx, "alice", "vault", 1))
	holder, ok := m.CustodianOf(1)
	require.True(t, ok)
	assert.Equal(t, "vault", holder)

	// Wrong current custodian.
	assert.ErrorIs(t, m.Transfer(ctx, "alice", "bob", 1), ErrTransferDenied)

	// Unknown item.
	assert.ErrorIs(t, m.Transfer(ctx, "alice", "vault", 99), ErrTransferDenied)

	holder, _ = m.CustodianOf(1)
	assert.Equal(t, "vault", holder, "denied transfers change nothing")
}

func TestMemoryHookAbortsTransfer(t *testing.T) {
	m := NewMemory()
	m.Mint(1, "alice")
	ctx := context.Background()

	m.SetHook(func(from, to string, itemID int64) error {
		return fmt.Errorf("offline")
	})
	assert.Error(t, m.Transfer(ctx, "alice", "vault", 1))

	holder, _ := m.CustodianOf(1)
	assert.Equal(t, "alice", holder)

	m.SetHook(nil)
	assert.NoError(t, m.Transfer(ctx, "alice", "vault", 1))
}
