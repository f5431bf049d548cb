package schedule

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

type memStore struct {
	slots map[string]Slot
}

func newMemStore() *memStore {
	return &memStore{slots: make(map[string]Slot)}
}

func (m *memStore) InsertSlot(_ context.Context, slot Slot) error {
	m.slots[slot.ID] = slot
	return nil
}

func (m *memStore) UpdateSlotWindow(_ context.Context, id string, window Interval) (bool, error) {
	slot, ok := m.slots[id]
	if !ok {
		return false, nil
	}
	slot.Window = window
	m.slots[id] = slot
	return true, nil
}

func (m *memStore) DeleteSlot(_ context.Context, id string) (bool, error) {
	if _, ok := m.slots[id]; !ok {
		return false, nil
	}
	delete(m.slots, id)
	return true, nil
}

func (m *memStore) GetSlot(_ context.Context, id string) (Slot, bool, error) {
	slot, ok := m.slots[id]
	return slot, ok, nil
}

func (m *memStore) ListSlots(_ context.Context) ([]Slot, error) {
	out := make([]Slot, 0, len(m.slots))
	for _, slot := range m.slots {
		out = append(out, slot)
	}
	return out, nil
}

func (m *memStore) ListSlotsOverlapping(_ context.Context, window Interval) ([]Slot, error) {
	var out []Slot
	for _, slot := range m.slots {
		if window.Overlaps(slot.Window) {
			out = append(out, slot)
		}
	}
	return out, nil
}

type fakeLocker struct {
	acquired bool
	calls    int
}

func (f *fakeLocker) TryAdvisoryLock(context.Context, int64) (func(), bool, error) {
	f.calls++
	if !f.acquired {
		return nil, false, nil
	}
	return func() {}, true, nil
}

func newTestPlanner(store Store, locker Locker, key int64) *Planner {
	return NewPlanner(store, locker, key, zerolog.Nop())
}

func TestProposeRejectsOverlap(t *testing.T) {
	store := newMemStore()
	planner := newTestPlanner(store, nil, 0)
	ctx := context.Background()

	first, err := planner.Propose(ctx, "c1", ts("2026-03-01T00:00:00Z"), tsp("2026-03-08T00:00:00Z"), 0)
	if err != nil {
		t.Fatalf("first proposal should succeed: %v", err)
	}
	if first.ID == "" {
		t.Fatal("proposed slot should have an id")
	}

	_, err = planner.Propose(ctx, "c2", ts("2026-03-04T00:00:00Z"), tsp("2026-03-10T00:00:00Z"), 0)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("overlapping proposal should conflict, got %v", err)
	}
	if conflict.SlotID != first.ID {
		t.Fatalf("conflict should name the existing slot, got %s", conflict.SlotID)
	}
	if len(store.slots) != 1 {
		t.Fatalf("rejected proposal must not be persisted, have %d slots", len(store.slots))
	}
}

func TestProposeRejectsInvalidWindow(t *testing.T) {
	planner := newTestPlanner(newMemStore(), nil, 0)

	_, err := planner.Propose(context.Background(), "c1", ts("2026-03-08T00:00:00Z"), tsp("2026-03-01T00:00:00Z"), 0)
	if !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}
}

func TestEditDoesNotConflictWithSelf(t *testing.T) {
	store := newMemStore()
	planner := newTestPlanner(store, nil, 0)
	ctx := context.Background()

	slot, err := planner.Propose(ctx, "c1", ts("2026-03-01T00:00:00Z"), tsp("2026-03-08T00:00:00Z"), 0)
	if err != nil {
		t.Fatalf("propose: %v", err)
	}

	// Extending the slot over its own window must not self-conflict.
	edited, err := planner.Edit(ctx, slot.ID, ts("2026-03-02T00:00:00Z"), tsp("2026-03-12T00:00:00Z"))
	if err != nil {
		t.Fatalf("edit over own window should succeed: %v", err)
	}
	if !edited.Window.Start.Equal(ts("2026-03-02T00:00:00Z")) {
		t.Fatalf("edit did not apply, window %+v", edited.Window)
	}
	if !store.slots[slot.ID].Window.End.Equal(ts("2026-03-12T00:00:00Z")) {
		t.Fatal("edit not persisted")
	}
}

func TestEditConflictsWithOtherSlot(t *testing.T) {
	store := newMemStore()
	planner := newTestPlanner(store, nil, 0)
	ctx := context.Background()

	a, err := planner.Propose(ctx, "c1", ts("2026-03-01T00:00:00Z"), tsp("2026-03-08T00:00:00Z"), 0)
	if err != nil {
		t.Fatalf("propose a: %v", err)
	}
	b, err := planner.Propose(ctx, "c2", ts("2026-03-10T00:00:00Z"), tsp("2026-03-15T00:00:00Z"), 0)
	if err != nil {
		t.Fatalf("propose b: %v", err)
	}

	_, err = planner.Edit(ctx, b.ID, ts("2026-03-05T00:00:00Z"), tsp("2026-03-09T00:00:00Z"))
	var conflict *ConflictError
	if !errors.As(err, &conflict) || conflict.SlotID != a.ID {
		t.Fatalf("edit into occupied window should conflict with %s, got %v", a.ID, err)
	}
}

func TestEditMissingSlot(t *testing.T) {
	planner := newTestPlanner(newMemStore(), nil, 0)

	_, err := planner.Edit(context.Background(), "missing", ts("2026-03-01T00:00:00Z"), nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteMissingSlot(t *testing.T) {
	planner := newTestPlanner(newMemStore(), nil, 0)

	if err := planner.Delete(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProposeFailsWhenLockHeld(t *testing.T) {
	locker := &fakeLocker{acquired: false}
	planner := newTestPlanner(newMemStore(), locker, 42)

	_, err := planner.Propose(context.Background(), "c1", ts("2026-03-01T00:00:00Z"), nil, 0)
	if err == nil {
		t.Fatal("held lock should fail the proposal")
	}
	if locker.calls != 1 {
		t.Fatalf("lock should be attempted once, got %d", locker.calls)
	}
}

func TestBoardPartitionsAndSorts(t *testing.T) {
	store := newMemStore()
	planner := newTestPlanner(store, nil, 0)
	ctx := context.Background()

	seed := []struct {
		id    string
		start string
		end   string
	}{
		{"past-old", "2026-02-01T00:00:00Z", "2026-02-08T00:00:00Z"},
		{"past-new", "2026-02-10T00:00:00Z", "2026-02-17T00:00:00Z"},
		{"current", "2026-03-01T00:00:00Z", "2026-03-10T00:00:00Z"},
		{"up-soon", "2026-03-10T00:00:00Z", "2026-03-12T00:00:00Z"},
		{"up-later", "2026-03-20T00:00:00Z", "2026-03-22T00:00:00Z"},
	}
	for _, s := range seed {
		store.slots[s.id] = Slot{ID: s.id, ContentID: s.id, Window: mustInterval(t, s.start, s.end)}
	}

	board, err := planner.Board(ctx, ts("2026-03-05T00:00:00Z"))
	if err != nil {
		t.Fatalf("board: %v", err)
	}

	if len(board.Current) != 1 || board.Current[0].ID != "current" {
		t.Fatalf("current mismatch: %+v", board.Current)
	}
	if len(board.Upcoming) != 2 || board.Upcoming[0].ID != "up-soon" || board.Upcoming[1].ID != "up-later" {
		t.Fatalf("upcoming should be soonest first: %+v", board.Upcoming)
	}
	if len(board.Past) != 2 || board.Past[0].ID != "past-new" || board.Past[1].ID != "past-old" {
		t.Fatalf("past should be most recent first: %+v", board.Past)
	}
}
