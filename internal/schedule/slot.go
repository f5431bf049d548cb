package schedule

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidInterval rejects zero or negative-length windows.
	ErrInvalidInterval = errors.New("schedule: interval end must be after start")
	// ErrNotFound indicates the referenced slot does not exist.
	ErrNotFound = errors.New("schedule: slot not found")
)

// Slot is a promise to promote one content list during its window.
type Slot struct {
	ID         string
	ContentID  string
	Window     Interval
	OrderIndex int
	CreatedAt  time.Time
}

// ConflictError reports an overlap with an existing slot. It carries the
// offending slot so callers can surface it to the operator.
type ConflictError struct {
	SlotID    string
	ContentID string
	Window    Interval
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("schedule: window overlaps slot %s (content %s, %s to %s)",
		e.SlotID, e.ContentID,
		e.Window.Start.Format(time.RFC3339), e.Window.End.Format(time.RFC3339))
}

// State is the derived temporal state of a slot. It is never stored; every
// read reclassifies against the caller-supplied clock.
type State int

const (
	StateScheduled State = iota
	StateActive
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateScheduled:
		return "scheduled"
	case StateActive:
		return "active"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Classify derives the slot state at now. The window is half-open, so a slot
// is expired from the instant its end passes.
func Classify(slot Slot, now time.Time) State {
	if !slot.Window.Unbounded() && !slot.Window.End.After(now) {
		return StateExpired
	}
	if !slot.Window.Start.After(now) {
		return StateActive
	}
	return StateScheduled
}

// Board partitions slots by their state at a single instant.
type Board struct {
	AsOf     time.Time
	Current  []Slot
	Upcoming []Slot
	Past     []Slot
}
