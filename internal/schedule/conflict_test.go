package schedule

import (
	"testing"
)

func TestFindConflictReportsEarliestStart(t *testing.T) {
	slots := []Slot{
		{ID: "late", ContentID: "c-late", Window: mustInterval(t, "2026-03-05T00:00:00Z", "2026-03-12T00:00:00Z")},
		{ID: "early", ContentID: "c-early", Window: mustInterval(t, "2026-03-02T00:00:00Z", "2026-03-06T00:00:00Z")},
	}
	candidate := mustInterval(t, "2026-03-04T00:00:00Z", "2026-03-07T00:00:00Z")

	conflict := FindConflict(candidate, "", slots)
	if conflict == nil {
		t.Fatal("expected a conflict")
	}
	if conflict.SlotID != "early" {
		t.Fatalf("should report the earliest-starting overlap, got %s", conflict.SlotID)
	}
}

func TestFindConflictTieBreaks(t *testing.T) {
	window := mustInterval(t, "2026-03-01T00:00:00Z", "2026-03-08T00:00:00Z")
	candidate := mustInterval(t, "2026-03-02T00:00:00Z", "2026-03-03T00:00:00Z")

	byOrder := []Slot{
		{ID: "b", Window: window, OrderIndex: 2},
		{ID: "a", Window: window, OrderIndex: 1},
	}
	if got := FindConflict(candidate, "", byOrder); got == nil || got.SlotID != "a" {
		t.Fatalf("equal starts should break on order index, got %+v", got)
	}

	byID := []Slot{
		{ID: "z", Window: window, OrderIndex: 1},
		{ID: "a", Window: window, OrderIndex: 1},
	}
	if got := FindConflict(candidate, "", byID); got == nil || got.SlotID != "a" {
		t.Fatalf("equal starts and order should break on id, got %+v", got)
	}
}

func TestFindConflictExcludesSelf(t *testing.T) {
	slots := []Slot{
		{ID: "s1", Window: mustInterval(t, "2026-03-01T00:00:00Z", "2026-03-08T00:00:00Z")},
	}
	candidate := mustInterval(t, "2026-03-03T00:00:00Z", "2026-03-10T00:00:00Z")

	if got := FindConflict(candidate, "s1", slots); got != nil {
		t.Fatalf("excluded slot should never conflict, got %+v", got)
	}
	if got := FindConflict(candidate, "", slots); got == nil {
		t.Fatal("without exclusion the overlap should be reported")
	}
}

func TestFindConflictAdjacentWindowsAreFree(t *testing.T) {
	slots := []Slot{
		{ID: "s1", Window: mustInterval(t, "2026-03-01T00:00:00Z", "2026-03-08T00:00:00Z")},
	}
	candidate := mustInterval(t, "2026-03-08T00:00:00Z", "2026-03-15T00:00:00Z")

	if got := FindConflict(candidate, "", slots); got != nil {
		t.Fatalf("back-to-back windows should not conflict, got %+v", got)
	}
}
