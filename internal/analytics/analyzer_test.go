package analytics

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/vilanovax/wibecur-sub000/internal/schedule"
)

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func atp(s string) *time.Time {
	t := at(s)
	return &t
}

// fakeSource serves canned engagement split at a pivot instant: windows
// ending at or before the pivot read the "before" totals, later windows the
// "after" totals.
type fakeSource struct {
	pivot      time.Time
	before     EngagementTotals
	after      EngagementTotals
	peakBefore float64
	peakAfter  float64
	createdAt  time.Time
}

func (f *fakeSource) EngagementBetween(_ context.Context, _ string, _, to time.Time) (EngagementTotals, error) {
	if !to.After(f.pivot) {
		return f.before, nil
	}
	return f.after, nil
}

func (f *fakeSource) PeakTrendingBetween(_ context.Context, _ string, _, to time.Time) (float64, error) {
	if !to.After(f.pivot) {
		return f.peakBefore, nil
	}
	return f.peakAfter, nil
}

func (f *fakeSource) ContentCreatedAt(context.Context, string) (time.Time, error) {
	return f.createdAt, nil
}

func testSlot(t *testing.T, start, end string) schedule.Slot {
	t.Helper()
	window, err := schedule.NewInterval(at(start), atp(end))
	if err != nil {
		t.Fatalf("interval: %v", err)
	}
	return schedule.Slot{ID: "slot-1", ContentID: "content-1", Window: window}
}

var testThresholds = Thresholds{
	StrongCTR:    0.18,
	ModerateCTR:  0.05,
	HighLift:     200,
	ModerateLift: 50,
	NearZeroLift: 5,
}

func newTestAnalyzer(source Source) *Analyzer {
	return NewAnalyzer(source, testThresholds, zerolog.Nop())
}

func TestAnalyzeComputesLift(t *testing.T) {
	slot := testSlot(t, "2026-03-01T00:00:00Z", "2026-03-08T00:00:00Z")
	source := &fakeSource{
		pivot:      at("2026-03-01T00:00:00Z"),
		before:     EngagementTotals{Impressions: 500, Clicks: 25, Saves: 40},
		after:      EngagementTotals{Impressions: 1000, Clicks: 200, Saves: 120},
		peakBefore: 50,
		peakAfter:  75,
		createdAt:  at("2025-01-01T00:00:00Z"),
	}

	snap, err := newTestAnalyzer(source).Analyze(context.Background(), slot, at("2026-03-20T00:00:00Z"))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if !snap.During.From.Equal(at("2026-03-01T00:00:00Z")) || !snap.During.To.Equal(at("2026-03-08T00:00:00Z")) {
		t.Fatalf("during window mismatch: %+v", snap.During)
	}
	if !snap.Baseline.From.Equal(at("2026-02-22T00:00:00Z")) || !snap.Baseline.To.Equal(at("2026-03-01T00:00:00Z")) {
		t.Fatalf("baseline must be the equal-length preceding window: %+v", snap.Baseline)
	}

	if !snap.CTR.Equal(decimal.NewFromFloat(0.2)) {
		t.Fatalf("CTR = %s, want 0.2", snap.CTR)
	}
	// (120 - 40) / 40 * 100 = 200
	if snap.SaveLiftPercent == nil || !snap.SaveLiftPercent.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("save lift = %v, want 200", snap.SaveLiftPercent)
	}
	// (75 - 50) / 50 * 100 = 50
	if snap.ScoreLiftPercent == nil || !snap.ScoreLiftPercent.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("score lift = %v, want 50", snap.ScoreLiftPercent)
	}
}

func TestAnalyzeZeroBaselineSavesStaysFinite(t *testing.T) {
	slot := testSlot(t, "2026-03-01T00:00:00Z", "2026-03-08T00:00:00Z")
	source := &fakeSource{
		pivot:     at("2026-03-01T00:00:00Z"),
		before:    EngagementTotals{},
		after:     EngagementTotals{Impressions: 100, Clicks: 10, Saves: 10},
		createdAt: at("2025-01-01T00:00:00Z"),
	}

	snap, err := newTestAnalyzer(source).Analyze(context.Background(), slot, at("2026-03-20T00:00:00Z"))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	// Denominator clamps to 1: (10 - 0) / 1 * 100 = 1000.
	if snap.SaveLiftPercent == nil || !snap.SaveLiftPercent.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("zero-baseline lift = %v, want 1000", snap.SaveLiftPercent)
	}
}

func TestAnalyzeEqualWindowsZeroLift(t *testing.T) {
	slot := testSlot(t, "2026-03-01T00:00:00Z", "2026-03-08T00:00:00Z")
	totals := EngagementTotals{Impressions: 400, Clicks: 40, Saves: 30}
	source := &fakeSource{
		pivot:      at("2026-03-01T00:00:00Z"),
		before:     totals,
		after:      totals,
		peakBefore: 42,
		peakAfter:  42,
		createdAt:  at("2025-01-01T00:00:00Z"),
	}

	snap, err := newTestAnalyzer(source).Analyze(context.Background(), slot, at("2026-03-20T00:00:00Z"))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if snap.SaveLiftPercent == nil || !snap.SaveLiftPercent.IsZero() {
		t.Fatalf("identical windows should report zero lift, got %v", snap.SaveLiftPercent)
	}
	if snap.ScoreLiftPercent == nil || !snap.ScoreLiftPercent.IsZero() {
		t.Fatalf("identical scores should report zero lift, got %v", snap.ScoreLiftPercent)
	}
}

func TestAnalyzeNoImpressions(t *testing.T) {
	slot := testSlot(t, "2026-03-01T00:00:00Z", "2026-03-08T00:00:00Z")
	source := &fakeSource{
		pivot:     at("2026-03-01T00:00:00Z"),
		createdAt: at("2025-01-01T00:00:00Z"),
	}

	snap, err := newTestAnalyzer(source).Analyze(context.Background(), slot, at("2026-03-20T00:00:00Z"))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !snap.CTR.IsZero() {
		t.Fatalf("no impressions should yield zero CTR, got %s", snap.CTR)
	}
	for _, rec := range snap.Recommendations {
		if strings.Contains(rec, "click-through") {
			t.Fatalf("CTR recommendation must not fire without impressions: %v", snap.Recommendations)
		}
	}
}

func TestAnalyzeBaselineUnavailable(t *testing.T) {
	// Content created the moment the slot started: no pre-feature history.
	slot := testSlot(t, "2026-03-01T00:00:00Z", "2026-03-08T00:00:00Z")
	source := &fakeSource{
		pivot:     at("2026-03-01T00:00:00Z"),
		after:     EngagementTotals{Impressions: 100, Clicks: 30, Saves: 10},
		createdAt: at("2026-03-01T00:00:00Z"),
	}

	snap, err := newTestAnalyzer(source).Analyze(context.Background(), slot, at("2026-03-20T00:00:00Z"))
	if err != nil {
		t.Fatalf("partial data should degrade, not fail: %v", err)
	}
	if snap.SaveLiftPercent != nil || snap.ScoreLiftPercent != nil {
		t.Fatalf("lift must be omitted without a baseline: %+v", snap)
	}
	if snap.Impressions != 100 || snap.Clicks != 30 {
		t.Fatal("during totals should still be reported")
	}
}

func TestAnalyzeRunningSlotClampsToNow(t *testing.T) {
	slot := testSlot(t, "2026-03-01T00:00:00Z", "2026-03-08T00:00:00Z")
	source := &fakeSource{
		pivot:     at("2026-03-01T00:00:00Z"),
		after:     EngagementTotals{Impressions: 10, Clicks: 1, Saves: 2},
		createdAt: at("2025-01-01T00:00:00Z"),
	}
	now := at("2026-03-04T00:00:00Z")

	snap, err := newTestAnalyzer(source).Analyze(context.Background(), slot, now)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !snap.During.To.Equal(now) {
		t.Fatalf("running slot should measure up to now, got %v", snap.During.To)
	}
	if !snap.Baseline.From.Equal(at("2026-02-26T00:00:00Z")) {
		t.Fatalf("baseline should match the clamped during length, got %v", snap.Baseline.From)
	}
}

func TestAnalyzeNotStartedSlot(t *testing.T) {
	slot := testSlot(t, "2026-03-10T00:00:00Z", "2026-03-17T00:00:00Z")
	source := &fakeSource{pivot: at("2026-03-10T00:00:00Z")}

	snap, err := newTestAnalyzer(source).Analyze(context.Background(), slot, at("2026-03-01T00:00:00Z"))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if snap.Impressions != 0 || snap.SaveLiftPercent != nil {
		t.Fatalf("unstarted slot should report an empty snapshot: %+v", snap)
	}
}

func TestRecommendations(t *testing.T) {
	lift := func(v float64) *decimal.Decimal {
		d := decimal.NewFromFloat(v)
		return &d
	}

	cases := []struct {
		name string
		snap Snapshot
		want []string
	}{
		{
			name: "low ctr",
			snap: Snapshot{Impressions: 1000, Clicks: 10, CTR: decimal.NewFromFloat(0.01)},
			want: []string{"Low click-through: refresh the cover image or title before the next run."},
		},
		{
			name: "high lift",
			snap: Snapshot{Impressions: 100, Clicks: 20, CTR: decimal.NewFromFloat(0.2), SaveLiftPercent: lift(250)},
			want: []string{"Strong save lift: repeat this category in an upcoming slot."},
		},
		{
			name: "near zero lift",
			snap: Snapshot{Impressions: 100, Clicks: 20, CTR: decimal.NewFromFloat(0.2), SaveLiftPercent: lift(-3)},
			want: []string{"Promotion barely moved saves: try a different time window for this content."},
		},
		{
			name: "quiet when healthy",
			snap: Snapshot{Impressions: 100, Clicks: 20, CTR: decimal.NewFromFloat(0.2), SaveLiftPercent: lift(80)},
			want: nil,
		},
		{
			name: "rules stack",
			snap: Snapshot{Impressions: 1000, Clicks: 10, CTR: decimal.NewFromFloat(0.01), SaveLiftPercent: lift(300)},
			want: []string{
				"Low click-through: refresh the cover image or title before the next run.",
				"Strong save lift: repeat this category in an upcoming slot.",
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := recommendationsFor(tc.snap, testThresholds)
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v, want %v", got, tc.want)
				}
			}
		})
	}
}
