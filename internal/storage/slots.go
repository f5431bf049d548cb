package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vilanovax/wibecur-sub000/internal/schedule"
)

const (
	insertSlotSQL = `INSERT INTO featured_slots (
        id,
        content_id,
        start_at,
        end_at,
        order_index,
        created_at
    ) VALUES (
        $1,$2,$3,$4,$5,$6
    );`

	updateSlotWindowSQL = `UPDATE featured_slots
    SET start_at = $2, end_at = $3
    WHERE id = $1;`

	deleteSlotSQL = `DELETE FROM featured_slots WHERE id = $1;`

	getSlotSQL = `SELECT
        id,
        content_id,
        start_at,
        end_at,
        order_index,
        created_at
    FROM featured_slots
    WHERE id = $1;`

	listSlotsSQL = `SELECT
        id,
        content_id,
        start_at,
        end_at,
        order_index,
        created_at
    FROM featured_slots
    ORDER BY start_at, order_index, id;`

	listSlotsOverlappingSQL = `SELECT
        id,
        content_id,
        start_at,
        end_at,
        order_index,
        created_at
    FROM featured_slots
    WHERE start_at < $2
      AND end_at > $1
    ORDER BY start_at, order_index, id;`
)

// InsertSlot persists a new slot.
func (s *Store) InsertSlot(ctx context.Context, slot schedule.Slot) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	_, execErr := pool.Exec(ctx, insertSlotSQL,
		slot.ID,
		slot.ContentID,
		slot.Window.Start,
		slot.Window.End,
		slot.OrderIndex,
		slot.CreatedAt,
	)
	if execErr != nil {
		return fmt.Errorf("insert slot: %w", execErr)
	}
	return nil
}

// UpdateSlotWindow moves a slot's window; the second return reports whether
// the slot existed.
func (s *Store) UpdateSlotWindow(ctx context.Context, id string, window schedule.Interval) (bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return false, err
	}
	cmdTag, execErr := pool.Exec(ctx, updateSlotWindowSQL, id, window.Start, window.End)
	if execErr != nil {
		return false, fmt.Errorf("update slot window: %w", execErr)
	}
	return cmdTag.RowsAffected() > 0, nil
}

// DeleteSlot hard-deletes a slot.
func (s *Store) DeleteSlot(ctx context.Context, id string) (bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return false, err
	}
	cmdTag, execErr := pool.Exec(ctx, deleteSlotSQL, id)
	if execErr != nil {
		return false, fmt.Errorf("delete slot: %w", execErr)
	}
	return cmdTag.RowsAffected() > 0, nil
}

// GetSlot loads one slot by id.
func (s *Store) GetSlot(ctx context.Context, id string) (schedule.Slot, bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return schedule.Slot{}, false, err
	}

	row := pool.QueryRow(ctx, getSlotSQL, id)
	slot, scanErr := scanSlot(row)
	if scanErr != nil {
		if scanErr == pgx.ErrNoRows {
			return schedule.Slot{}, false, nil
		}
		return schedule.Slot{}, false, fmt.Errorf("get slot: %w", scanErr)
	}
	return slot, true, nil
}

// ListSlots returns the whole timeline ordered by start.
func (s *Store) ListSlots(ctx context.Context) ([]schedule.Slot, error) {
	return s.querySlots(ctx, listSlotsSQL)
}

// ListSlotsOverlapping returns slots whose half-open window intersects the
// given one.
func (s *Store) ListSlotsOverlapping(ctx context.Context, window schedule.Interval) ([]schedule.Slot, error) {
	return s.querySlots(ctx, listSlotsOverlappingSQL, window.Start, window.End)
}

func (s *Store) querySlots(ctx context.Context, sql string, args ...any) ([]schedule.Slot, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, sql, args...)
	if queryErr != nil {
		return nil, fmt.Errorf("list slots: %w", queryErr)
	}
	defer rows.Close()

	slots := make([]schedule.Slot, 0)
	for rows.Next() {
		slot, scanErr := scanSlot(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		slots = append(slots, slot)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return slots, nil
}

func scanSlot(row pgx.Row) (schedule.Slot, error) {
	var r SlotRow
	if err := row.Scan(
		&r.ID,
		&r.ContentID,
		&r.StartAt,
		&r.EndAt,
		&r.OrderIndex,
		&r.CreatedAt,
	); err != nil {
		return schedule.Slot{}, err
	}
	return schedule.Slot{
		ID:         r.ID,
		ContentID:  r.ContentID,
		Window:     schedule.Interval{Start: r.StartAt.UTC(), End: r.EndAt.UTC()},
		OrderIndex: r.OrderIndex,
		CreatedAt:  r.CreatedAt.UTC(),
	}, nil
}

var _ schedule.Store = (*Store)(nil)
var _ schedule.Locker = (*Store)(nil)
