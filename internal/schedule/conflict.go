package schedule

// FindConflict checks a candidate window against existing slots and returns
// the conflict to report, or nil when the window is free. The slot identified
// by excludeID is skipped so edits do not collide with themselves. When
// several slots overlap the candidate, the one with the earliest start is
// reported; order index and id break exact ties deterministically.
func FindConflict(candidate Interval, excludeID string, slots []Slot) *ConflictError {
	var hit *Slot
	for i := range slots {
		s := &slots[i]
		if excludeID != "" && s.ID == excludeID {
			continue
		}
		if !candidate.Overlaps(s.Window) {
			continue
		}
		if hit == nil || startsBefore(s, hit) {
			hit = s
		}
	}
	if hit == nil {
		return nil
	}
	return &ConflictError{
		SlotID:    hit.ID,
		ContentID: hit.ContentID,
		Window:    hit.Window,
	}
}

func startsBefore(a, b *Slot) bool {
	if !a.Window.Start.Equal(b.Window.Start) {
		return a.Window.Start.Before(b.Window.Start)
	}
	if a.OrderIndex != b.OrderIndex {
		return a.OrderIndex < b.OrderIndex
	}
	return a.ID < b.ID
}
