package schedule

import (
	"time"
)

// OpenEnd is the sentinel instant standing in for "no upper bound". Slots
// without an end date store this value so every interval comparison works on
// finite times; the boundary layers convert it back to an absent end.
var OpenEnd = time.Date(2099, time.January, 1, 0, 0, 0, 0, time.UTC)

// Interval is a half-open promotion window [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval builds a validated interval. A nil end means the window is
// unbounded and is normalised to the OpenEnd sentinel.
func NewInterval(start time.Time, end *time.Time) (Interval, error) {
	iv := Interval{Start: start.UTC(), End: OpenEnd}
	if end != nil {
		iv.End = end.UTC()
	}
	if !iv.End.After(iv.Start) {
		return Interval{}, ErrInvalidInterval
	}
	return iv, nil
}

// Unbounded reports whether the interval carries the open-end sentinel.
func (iv Interval) Unbounded() bool {
	return !iv.End.Before(OpenEnd)
}

// BoundedEnd returns the end instant when finite, nil otherwise.
func (iv Interval) BoundedEnd() *time.Time {
	if iv.Unbounded() {
		return nil
	}
	end := iv.End
	return &end
}

// Overlaps reports whether two half-open intervals intersect.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Contains reports whether t falls inside [Start, End).
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && t.Before(iv.End)
}

// Duration is the interval length; unbounded intervals report the distance
// to the sentinel, which callers clamp before using it for window math.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// ClampEnd copies the interval with the end pulled back to at when at is
// earlier. The result may be empty; callers treat Start >= End as zero-length.
func (iv Interval) ClampEnd(at time.Time) Interval {
	if at.Before(iv.End) {
		iv.End = at
	}
	return iv
}
