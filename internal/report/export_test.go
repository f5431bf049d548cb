package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vilanovax/wibecur-sub000/internal/analytics"
)

func TestWriteCSV(t *testing.T) {
	weekly := Weekly{
		WeekStart: at("2026-03-02T00:00:00Z"),
		WeekEnd:   at("2026-03-09T00:00:00Z"),
		Slots: []SlotPerformance{
			{
				Slot:     slotIn(t, "s1", "c1", "2026-03-02T00:00:00Z", "2026-03-05T00:00:00Z"),
				Category: Category{ID: "music"},
				Snapshot: analytics.Snapshot{
					Impressions:     1000,
					Clicks:          200,
					CTR:             decimal.NewFromFloat(0.2),
					SavesDuring:     120,
					BaselineSaves:   40,
					SaveLiftPercent: liftp(200),
				},
				ImpactLabel: ImpactHigh,
			},
			{
				Slot:        slotIn(t, "s2", "c2", "2026-03-05T00:00:00Z", "2026-03-08T00:00:00Z"),
				Snapshot:    analytics.Snapshot{},
				ImpactLabel: ImpactWeak,
			},
		},
	}

	path := filepath.Join(t.TempDir(), "nested", "weekly.csv")
	if err := WriteCSV(path, weekly); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "slot_id" || len(rows[0]) != 13 {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if rows[1][0] != "s1" || rows[1][10] != "200.00" || rows[1][12] != ImpactHigh {
		t.Fatalf("unexpected first row: %v", rows[1])
	}
	// Unmeasured lift exports as an empty cell, not a zero.
	if rows[2][10] != "" {
		t.Fatalf("nil lift should be empty, got %q", rows[2][10])
	}
}

func TestWritePNGRejectsEmptyReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weekly.png")
	if err := WritePNG(path, Weekly{}, 100); err == nil {
		t.Fatal("empty report must not render")
	}
}

func TestDownsample(t *testing.T) {
	points := make([]SlotPerformance, 10)
	for i := range points {
		points[i].Slot.ID = string(rune('a' + i))
	}

	kept := downsample(points, 4)
	if len(kept) != 4 {
		t.Fatalf("expected 4 points, got %d", len(kept))
	}
	if kept[0].Slot.ID != "a" || kept[3].Slot.ID != "j" {
		t.Fatalf("endpoints must survive downsampling: %s..%s", kept[0].Slot.ID, kept[3].Slot.ID)
	}

	if got := downsample(points, 0); len(got) != len(points) {
		t.Fatal("non-positive cap should keep everything")
	}
	if got := downsample(points, 100); len(got) != len(points) {
		t.Fatal("cap above length should keep everything")
	}
}
