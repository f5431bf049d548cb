package schedule

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Store defines the slot persistence operations the planner depends on.
type Store interface {
	InsertSlot(ctx context.Context, slot Slot) error
	UpdateSlotWindow(ctx context.Context, id string, window Interval) (bool, error)
	DeleteSlot(ctx context.Context, id string) (bool, error)
	GetSlot(ctx context.Context, id string) (Slot, bool, error)
	ListSlots(ctx context.Context) ([]Slot, error)
	ListSlotsOverlapping(ctx context.Context, window Interval) ([]Slot, error)
}

// Locker serialises check-then-write sequences across operators. All slots
// share one timeline, so a single advisory lock key guards every write.
type Locker interface {
	TryAdvisoryLock(ctx context.Context, key int64) (unlock func(), acquired bool, err error)
}

// Planner owns the featured slot timeline: conflict-free creation, window
// edits, deletion, and state-partitioned reads.
type Planner struct {
	store   Store
	locker  Locker
	lockKey int64
	logger  zerolog.Logger
}

// NewPlanner wires a Planner over the given store. The locker may be nil in
// tests; writes then skip serialisation.
func NewPlanner(store Store, locker Locker, lockKey int64, logger zerolog.Logger) *Planner {
	return &Planner{
		store:   store,
		locker:  locker,
		lockKey: lockKey,
		logger:  logger.With().Str("component", "planner").Logger(),
	}
}

// Propose validates the window, checks it against every existing slot, and
// persists a new slot when the timeline is free. The conflict check and
// insert run under one advisory lock so two concurrent proposals cannot both
// pass the check.
func (p *Planner) Propose(ctx context.Context, contentID string, start time.Time, end *time.Time, orderIndex int) (Slot, error) {
	window, err := NewInterval(start, end)
	if err != nil {
		return Slot{}, err
	}

	unlock, err := p.acquireLock(ctx)
	if err != nil {
		return Slot{}, err
	}
	if unlock != nil {
		defer unlock()
	}

	if conflict, err := p.conflictFor(ctx, window, ""); err != nil {
		return Slot{}, err
	} else if conflict != nil {
		return Slot{}, conflict
	}

	slot := Slot{
		ID:         uuid.NewString(),
		ContentID:  contentID,
		Window:     window,
		OrderIndex: orderIndex,
		CreatedAt:  time.Now().UTC(),
	}
	if err := p.store.InsertSlot(ctx, slot); err != nil {
		return Slot{}, fmt.Errorf("insert slot: %w", err)
	}

	p.logger.Info().Str("slot_id", slot.ID).Str("content_id", contentID).
		Time("start_at", window.Start).Bool("unbounded", window.Unbounded()).
		Msg("slot proposed")
	return slot, nil
}

// Edit moves an existing slot to a new window, reusing the conflict check
// with the edited slot excluded from the comparison set.
func (p *Planner) Edit(ctx context.Context, id string, start time.Time, end *time.Time) (Slot, error) {
	window, err := NewInterval(start, end)
	if err != nil {
		return Slot{}, err
	}

	unlock, err := p.acquireLock(ctx)
	if err != nil {
		return Slot{}, err
	}
	if unlock != nil {
		defer unlock()
	}

	slot, found, err := p.store.GetSlot(ctx, id)
	if err != nil {
		return Slot{}, fmt.Errorf("load slot: %w", err)
	}
	if !found {
		return Slot{}, ErrNotFound
	}

	if conflict, err := p.conflictFor(ctx, window, id); err != nil {
		return Slot{}, err
	} else if conflict != nil {
		return Slot{}, conflict
	}

	updated, err := p.store.UpdateSlotWindow(ctx, id, window)
	if err != nil {
		return Slot{}, fmt.Errorf("update slot window: %w", err)
	}
	if !updated {
		return Slot{}, ErrNotFound
	}

	slot.Window = window
	p.logger.Info().Str("slot_id", id).Time("start_at", window.Start).Msg("slot window edited")
	return slot, nil
}

// Delete removes a slot from the timeline.
func (p *Planner) Delete(ctx context.Context, id string) error {
	deleted, err := p.store.DeleteSlot(ctx, id)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}
	p.logger.Info().Str("slot_id", id).Msg("slot deleted")
	return nil
}

// Get loads a single slot.
func (p *Planner) Get(ctx context.Context, id string) (Slot, error) {
	slot, found, err := p.store.GetSlot(ctx, id)
	if err != nil {
		return Slot{}, fmt.Errorf("load slot: %w", err)
	}
	if !found {
		return Slot{}, ErrNotFound
	}
	return slot, nil
}

// CheckConflict runs the overlap check without writing anything.
func (p *Planner) CheckConflict(ctx context.Context, window Interval, excludeID string) (*ConflictError, error) {
	return p.conflictFor(ctx, window, excludeID)
}

// Board partitions every slot by its state at asOf. Current and upcoming
// slots are ordered soonest first, past slots most recent first.
func (p *Planner) Board(ctx context.Context, asOf time.Time) (Board, error) {
	slots, err := p.store.ListSlots(ctx)
	if err != nil {
		return Board{}, fmt.Errorf("list slots: %w", err)
	}

	board := Board{AsOf: asOf}
	for _, slot := range slots {
		switch Classify(slot, asOf) {
		case StateActive:
			board.Current = append(board.Current, slot)
		case StateScheduled:
			board.Upcoming = append(board.Upcoming, slot)
		case StateExpired:
			board.Past = append(board.Past, slot)
		}
	}

	sortByStartAsc(board.Current)
	sortByStartAsc(board.Upcoming)
	sort.Slice(board.Past, func(i, j int) bool {
		a, b := board.Past[i], board.Past[j]
		if !a.Window.Start.Equal(b.Window.Start) {
			return a.Window.Start.After(b.Window.Start)
		}
		return a.OrderIndex < b.OrderIndex
	})
	return board, nil
}

func sortByStartAsc(slots []Slot) {
	sort.Slice(slots, func(i, j int) bool {
		a, b := slots[i], slots[j]
		if !a.Window.Start.Equal(b.Window.Start) {
			return a.Window.Start.Before(b.Window.Start)
		}
		return a.OrderIndex < b.OrderIndex
	})
}

func (p *Planner) conflictFor(ctx context.Context, window Interval, excludeID string) (*ConflictError, error) {
	overlapping, err := p.store.ListSlotsOverlapping(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("list overlapping slots: %w", err)
	}
	return FindConflict(window, excludeID, overlapping), nil
}

func (p *Planner) acquireLock(ctx context.Context) (func(), error) {
	if p.locker == nil || p.lockKey == 0 {
		return nil, nil
	}
	unlock, acquired, err := p.locker.TryAdvisoryLock(ctx, p.lockKey)
	if err != nil {
		return nil, fmt.Errorf("acquire conflict lock: %w", err)
	}
	if !acquired {
		return nil, fmt.Errorf("conflict lock held by another writer, retry")
	}
	return unlock, nil
}
