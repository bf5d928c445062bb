package registry

import (
	"context"
	"sync"
)

// Memory is a map-backed registry with the same compare-and-swap transfer
// semantics as the Postgres implementation. It doubles as the item issuer for
// local runs and tests; the hook lets tests inject failures or re-entrant
// callbacks at the exact point the ledger hands control to the collaborator.
type Memory struct {
	mu         sync.Mutex
	custodians map[int64]string
	hook       func(from, to string, itemID int64) error
}

func NewMemory() *Memory {
	return &Memory{custodians: make(map[int64]string)}
}

// Mint registers a new item under the given owner's custody.
func (m *Memory) Mint(itemID int64, owner string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.custodians[itemID] = owner
}

// SetHook installs a callback invoked on every Transfer before custody
// changes. A non-nil return aborts the transfer with that error. The hook is
// called without the registry lock held, so it may re-enter the caller.
func (m *Memory) SetHook(hook func(from, to string, itemID int64) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hook = hook
}

func (m *Memory) Transfer(ctx context.Context, from, to string, itemID int64) error {
	m.mu.Lock()
	hook := m.hook
	m.mu.Unlock()

	if hook != nil {
		if err := hook(from, to, itemID); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.custodians[itemID] != from {
		return ErrTransferDenied
	}
	m.custodians[itemID] = to
	return nil
}

// CustodianOf returns the current custodian of an item.
func (m *Memory) CustodianOf(itemID int64) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	custodian, ok := m.custodians[itemID]
	return custodian, ok
}
