package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/punchamoorthee/custodyvault/internal/events"
)

var (
	ErrAlreadyInCustody    = errors.New("item already in custody")
	ErrNotInCustody        = errors.New("item not in custody")
	ErrOwnershipMismatch   = errors.New("item held for another owner")
	ErrPaused              = errors.New("deposits are paused")
	ErrOperationInProgress = errors.New("ledger operation already in progress")
)

// Registry is the external system of record for item custody. Transfer must
// be atomic and fail loudly when `from` is not the current custodian or the
// item does not exist; success is the only path that lets the ledger proceed.
type Registry interface {
	Transfer(ctx context.Context, from, to string, itemID int64) error
}

// Gate reports whether new deposits are currently accepted.
type Gate interface {
	Active() bool
}

// Record is the per-item stake metadata. Records are tombstoned on
// withdrawal, never deleted; a redeposit overwrites the same slot.
type Record struct {
	Owner    string
	StakedAt time.Time
	IsStaked bool
}

// Stats are the ledger-wide aggregates.
type Stats struct {
	TotalStaked   int `json:"total_staked"`
	UniqueStakers int `json:"unique_stakers"`
}

// Ledger tracks which owner has which items in custody, since when, and the
// aggregate totals. Staker membership is the presence of a non-empty item
// list, so the two maps plus the counters are the whole state.
//
// Every mutating operation runs under the in-progress guard: an external
// registry call that synchronously re-enters the ledger is rejected with
// ErrOperationInProgress instead of observing (or corrupting) a half-updated
// state. The mutex only covers the check and commit phases, never the
// registry call, so read queries stay cheap and deadlock-free.
type Ledger struct {
	custodian string
	gate      Gate
	emitter   events.Emitter
	now       func() time.Time

	busy atomic.Bool

	regMu    sync.RWMutex
	registry Registry

	mu            sync.RWMutex
	records       map[int64]*Record
	items         map[string][]int64       // owner -> held item ids
	index         map[string]map[int64]int // owner -> item id -> position in items
	totalStaked   int
	uniqueStakers int
}

func New(custodian string, registry Registry, gate Gate, emitter events.Emitter) *Ledger {
	if emitter == nil {
		emitter = events.Discard
	}
	return &Ledger{
		custodian: custodian,
		gate:      gate,
		emitter:   emitter,
		now:       time.Now,
		registry:  registry,
		records:   make(map[int64]*Record),
		items:     make(map[string][]int64),
		index:     make(map[string]map[int64]int),
	}
}

// SetRegistry swaps the registry reference. Authorization is the caller's
// responsibility (the API layer consults the gate).
func (l *Ledger) SetRegistry(registry Registry) {
	l.regMu.Lock()
	defer l.regMu.Unlock()
	l.registry = registry
}

func (l *Ledger) reg() Registry {
	l.regMu.RLock()
	defer l.regMu.RUnlock()
	return l.registry
}

func (l *Ledger) enter() error {
	if !l.busy.CompareAndSwap(false, true) {
		return ErrOperationInProgress
	}
	return nil
}

func (l *Ledger) exit() {
	l.busy.Store(false)
}

// Deposit takes custody of itemID for owner. The registry transfer runs
// first so a failing transfer leaves no ledger-side residue; bookkeeping is
// committed only after the transfer succeeds.
func (l *Ledger) Deposit(ctx context.Context, owner string, itemID int64) error {
	if err := l.enter(); err != nil {
		return err
	}
	defer l.exit()

	if !l.gate.Active() {
		return ErrPaused
	}

	l.mu.RLock()
	rec, ok := l.records[itemID]
	staked := ok && rec.IsStaked
	l.mu.RUnlock()
	if staked {
		return ErrAlreadyInCustody
	}

	if err := l.reg().Transfer(ctx, owner, l.custodian, itemID); err != nil {
		return fmt.Errorf("registry transfer failed: %w", err)
	}

	at := l.now()
	l.mu.Lock()
	l.commitDeposit(owner, itemID, at)
	l.mu.Unlock()

	depositsTotal.Inc()
	l.emitter.Emit(events.NewDeposited(owner, itemID, at))
	return nil
}

// BatchDeposit deposits every id or none. The whole batch is validated
// before the registry is touched (including duplicates within the batch);
// a transfer failure mid-apply returns the already-moved items.
func (l *Ledger) BatchDeposit(ctx context.Context, owner string, itemIDs []int64) error {
	if err := l.enter(); err != nil {
		return err
	}
	defer l.exit()

	if !l.gate.Active() {
		return ErrPaused
	}

	seen := make(map[int64]struct{}, len(itemIDs))
	l.mu.RLock()
	for _, id := range itemIDs {
		if _, dup := seen[id]; dup {
			l.mu.RUnlock()
			return fmt.Errorf("item %d: %w", id, ErrAlreadyInCustody)
		}
		seen[id] = struct{}{}
		if rec, ok := l.records[id]; ok && rec.IsStaked {
			l.mu.RUnlock()
			return fmt.Errorf("item %d: %w", id, ErrAlreadyInCustody)
		}
	}
	l.mu.RUnlock()

	registry := l.reg()
	for i, id := range itemIDs {
		if err := registry.Transfer(ctx, owner, l.custodian, id); err != nil {
			for j := i - 1; j >= 0; j-- {
				if rbErr := registry.Transfer(ctx, l.custodian, owner, itemIDs[j]); rbErr != nil {
					log.Printf("batch deposit rollback failed for item %d: %v", itemIDs[j], rbErr)
				}
			}
			return fmt.Errorf("item %d: registry transfer failed: %w", id, err)
		}
	}

	at := l.now()
	l.mu.Lock()
	for _, id := range itemIDs {
		l.commitDeposit(owner, id, at)
	}
	l.mu.Unlock()

	for _, id := range itemIDs {
		depositsTotal.Inc()
		l.emitter.Emit(events.NewDeposited(owner, id, at))
	}
	return nil
}

// Withdraw returns itemID to owner and reports how long the item was in
// custody. Internal state is fully committed before the registry transfer,
// so a re-entrant withdraw of the same item can never pass the isStaked
// check twice. A failed transfer restores the original stake, keeping the
// all-or-nothing contract.
func (l *Ledger) Withdraw(ctx context.Context, owner string, itemID int64) (time.Duration, error) {
	if err := l.enter(); err != nil {
		return 0, err
	}
	defer l.exit()

	l.mu.Lock()
	rec, ok := l.records[itemID]
	if !ok || !rec.IsStaked {
		l.mu.Unlock()
		return 0, ErrNotInCustody
	}
	if rec.Owner != owner {
		l.mu.Unlock()
		return 0, ErrOwnershipMismatch
	}
	stakedAt := rec.StakedAt
	l.commitWithdraw(owner, itemID)
	l.mu.Unlock()

	at := l.now()
	held := at.Sub(stakedAt)
	if err := l.reg().Transfer(ctx, l.custodian, owner, itemID); err != nil {
		l.mu.Lock()
		l.commitDeposit(owner, itemID, stakedAt)
		l.mu.Unlock()
		return 0, fmt.Errorf("registry transfer failed: %w", err)
	}

	withdrawalsTotal.Inc()
	l.emitter.Emit(events.NewWithdrawn(owner, itemID, at, held))
	return held, nil
}

// BatchWithdraw withdraws every id or none, mirroring BatchDeposit: a
// duplicate id in the batch fails as ErrNotInCustody, matching what
// sequential application would report on the second occurrence.
func (l *Ledger) BatchWithdraw(ctx context.Context, owner string, itemIDs []int64) error {
	if err := l.enter(); err != nil {
		return err
	}
	defer l.exit()

	seen := make(map[int64]struct{}, len(itemIDs))
	stakedAt := make(map[int64]time.Time, len(itemIDs))

	l.mu.Lock()
	for _, id := range itemIDs {
		if _, dup := seen[id]; dup {
			l.mu.Unlock()
			return fmt.Errorf("item %d: %w", id, ErrNotInCustody)
		}
		seen[id] = struct{}{}
		rec, ok := l.records[id]
		if !ok || !rec.IsStaked {
			l.mu.Unlock()
			return fmt.Errorf("item %d: %w", id, ErrNotInCustody)
		}
		if rec.Owner != owner {
			l.mu.Unlock()
			return fmt.Errorf("item %d: %w", id, ErrOwnershipMismatch)
		}
	}
	for _, id := range itemIDs {
		stakedAt[id] = l.records[id].StakedAt
		l.commitWithdraw(owner, id)
	}
	l.mu.Unlock()

	at := l.now()
	registry := l.reg()
	for i, id := range itemIDs {
		if err := registry.Transfer(ctx, l.custodian, owner, id); err != nil {
			for j := i - 1; j >= 0; j-- {
				if rbErr := registry.Transfer(ctx, owner, l.custodian, itemIDs[j]); rbErr != nil {
					log.Printf("batch withdraw rollback failed for item %d: %v", itemIDs[j], rbErr)
				}
			}
			l.mu.Lock()
			for _, rid := range itemIDs {
				l.commitDeposit(owner, rid, stakedAt[rid])
			}
			l.mu.Unlock()
			return fmt.Errorf("item %d: registry transfer failed: %w", id, err)
		}
	}

	for _, id := range itemIDs {
		withdrawalsTotal.Inc()
		l.emitter.Emit(events.NewWithdrawn(owner, id, at, at.Sub(stakedAt[id])))
	}
	return nil
}

// commitDeposit applies all deposit bookkeeping. Caller holds l.mu.
func (l *Ledger) commitDeposit(owner string, itemID int64, at time.Time) {
	list := l.items[owner]
	if len(list) == 0 {
		l.uniqueStakers++
	}
	if l.index[owner] == nil {
		l.index[owner] = make(map[int64]int)
	}
	l.index[owner][itemID] = len(list)
	l.items[owner] = append(list, itemID)

	if rec := l.records[itemID]; rec != nil {
		rec.Owner, rec.StakedAt, rec.IsStaked = owner, at, true
	} else {
		l.records[itemID] = &Record{Owner: owner, StakedAt: at, IsStaked: true}
	}

	l.totalStaked++
	itemsStakedGauge.Set(float64(l.totalStaked))
	uniqueStakersGauge.Set(float64(l.uniqueStakers))
}

// commitWithdraw applies all withdrawal bookkeeping using swap-and-pop
// removal: the list's last element overwrites the removed position and has
// its index entry repointed, then the list shrinks by one. O(1) regardless
// of list size; list order is not meaningful. Caller holds l.mu.
func (l *Ledger) commitWithdraw(owner string, itemID int64) {
	list := l.items[owner]
	idx := l.index[owner]
	i := idx[itemID]
	last := len(list) - 1
	if i != last {
		moved := list[last]
		list[i] = moved
		idx[moved] = i
	}
	l.items[owner] = list[:last]
	delete(idx, itemID)

	l.records[itemID].IsStaked = false
	l.totalStaked--

	if last == 0 {
		l.uniqueStakers--
		delete(l.items, owner)
		delete(l.index, owner)
	}

	itemsStakedGauge.Set(float64(l.totalStaked))
	uniqueStakersGauge.Set(float64(l.uniqueStakers))
}

// StakedItems returns a copy of the owner's current item list. Order is not
// meaningful.
func (l *Ledger) StakedItems(owner string) []int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]int64, len(l.items[owner]))
	copy(out, l.items[owner])
	return out
}

// Record returns a copy of the stake record for itemID, if one exists.
func (l *Ledger) Record(itemID int64) (Record, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	rec, ok := l.records[itemID]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// GetStats returns the ledger-wide aggregates.
func (l *Ledger) GetStats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Stats{TotalStaked: l.totalStaked, UniqueStakers: l.uniqueStakers}
}

// OwnerStakingTime sums now-stakedAt over the owner's active items and
// reports the active item count. Records are re-checked defensively even
// though the index invariant should make the checks redundant.
func (l *Ledger) OwnerStakingTime(owner string) (time.Duration, int) {
	now := l.now()
	l.mu.RLock()
	defer l.mu.RUnlock()

	var total time.Duration
	var active int
	for _, id := range l.items[owner] {
		rec := l.records[id]
		if rec == nil || !rec.IsStaked || rec.Owner != owner {
			continue
		}
		total += now.Sub(rec.StakedAt)
		active++
	}
	return total, active
}
