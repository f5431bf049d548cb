package report

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/vilanovax/wibecur-sub000/internal/analytics"
	"github.com/vilanovax/wibecur-sub000/internal/schedule"
)

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

type fakeSlotSource struct {
	slots []schedule.Slot
}

func (f *fakeSlotSource) ListSlotsOverlapping(_ context.Context, window schedule.Interval) ([]schedule.Slot, error) {
	var out []schedule.Slot
	for _, slot := range f.slots {
		if window.Overlaps(slot.Window) {
			out = append(out, slot)
		}
	}
	return out, nil
}

// fakeAnalyzer serves canned snapshots keyed by content id.
type fakeAnalyzer struct {
	snapshots map[string]analytics.Snapshot
}

func (f *fakeAnalyzer) Analyze(_ context.Context, slot schedule.Slot, _ time.Time) (analytics.Snapshot, error) {
	snap := f.snapshots[slot.ContentID]
	snap.SlotID = slot.ID
	snap.ContentID = slot.ContentID
	return snap, nil
}

type fakeDirectory struct {
	categories map[string]Category
}

func (f *fakeDirectory) CategoryOf(_ context.Context, contentID string) (Category, error) {
	return f.categories[contentID], nil
}

var testCfg = Config{
	Thresholds: analytics.Thresholds{
		StrongCTR:    0.18,
		ModerateCTR:  0.05,
		HighLift:     200,
		ModerateLift: 50,
		NearZeroLift: 5,
	},
	CTRWeight:       100,
	SaveLiftWeight:  0.5,
	ScoreLiftWeight: 0.3,
	CountWeight:     2,
}

func liftp(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

func slotIn(t *testing.T, id, content, start, end string) schedule.Slot {
	t.Helper()
	window, err := schedule.NewInterval(at(start), func() *time.Time { e := at(end); return &e }())
	if err != nil {
		t.Fatalf("interval: %v", err)
	}
	return schedule.Slot{ID: id, ContentID: content, Window: window}
}

func newTestAggregator(slots *fakeSlotSource, analyzer *fakeAnalyzer, dir *fakeDirectory) *Aggregator {
	return NewAggregator(slots, analyzer, dir, testCfg, zerolog.Nop())
}

func TestWeeklyReportEmptyPeriod(t *testing.T) {
	agg := newTestAggregator(&fakeSlotSource{}, &fakeAnalyzer{}, &fakeDirectory{})

	weekly, err := agg.WeeklyReport(context.Background(), at("2026-03-02T00:00:00Z"))
	if err != nil {
		t.Fatalf("empty period must not error: %v", err)
	}
	if weekly.TotalSlots != 0 {
		t.Fatalf("TotalSlots = %d, want 0", weekly.TotalSlots)
	}
	if !weekly.AvgCTR.IsZero() {
		t.Fatalf("AvgCTR = %s, want 0", weekly.AvgCTR)
	}
	if weekly.BestPerformer != nil {
		t.Fatal("empty week has no best performer")
	}
	if len(weekly.Recommendations) != 1 || weekly.Recommendations[0] != "No slots ran this week: the featured placement sat empty." {
		t.Fatalf("expected the empty-week note, got %v", weekly.Recommendations)
	}
}

func TestWeeklyReportAggregates(t *testing.T) {
	slots := &fakeSlotSource{slots: []schedule.Slot{
		slotIn(t, "s1", "c1", "2026-03-02T00:00:00Z", "2026-03-05T00:00:00Z"),
		slotIn(t, "s2", "c2", "2026-03-05T00:00:00Z", "2026-03-09T00:00:00Z"),
		slotIn(t, "s3", "c3", "2026-04-01T00:00:00Z", "2026-04-08T00:00:00Z"), // outside the week
	}}
	analyzer := &fakeAnalyzer{snapshots: map[string]analytics.Snapshot{
		"c1": {CTR: decimal.NewFromFloat(0.20), SaveLiftPercent: liftp(250)},
		"c2": {CTR: decimal.NewFromFloat(0.10), SaveLiftPercent: liftp(40)},
	}}
	dir := &fakeDirectory{categories: map[string]Category{
		"c1": {ID: "music", Name: "Music"},
		"c2": {ID: "film", Name: "Film"},
	}}

	weekly, err := newTestAggregator(slots, analyzer, dir).WeeklyReport(context.Background(), at("2026-03-02T00:00:00Z"))
	if err != nil {
		t.Fatalf("weekly: %v", err)
	}

	if weekly.TotalSlots != 2 {
		t.Fatalf("TotalSlots = %d, want 2", weekly.TotalSlots)
	}
	if !weekly.AvgCTR.Equal(decimal.NewFromFloat(0.15)) {
		t.Fatalf("AvgCTR = %s, want 0.15", weekly.AvgCTR)
	}
	if weekly.BestPerformer == nil || weekly.BestPerformer.Slot.ID != "s1" {
		t.Fatalf("best performer should be s1, got %+v", weekly.BestPerformer)
	}
	if weekly.BestPerformer.ImpactLabel != ImpactHigh {
		t.Fatalf("250%% lift should label %s, got %s", ImpactHigh, weekly.BestPerformer.ImpactLabel)
	}

	found := false
	for _, rec := range weekly.Recommendations {
		if rec == "Content c1 drove an outsized save lift: schedule a follow-up slot." {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected follow-up recommendation, got %v", weekly.Recommendations)
	}
}

func TestBestPerformerSkipsUnmeasuredAndBreaksTies(t *testing.T) {
	early := SlotPerformance{
		Slot:     slotIn(t, "early", "c1", "2026-03-01T00:00:00Z", "2026-03-02T00:00:00Z"),
		Snapshot: analytics.Snapshot{SaveLiftPercent: liftp(100)},
	}
	late := SlotPerformance{
		Slot:     slotIn(t, "late", "c2", "2026-03-03T00:00:00Z", "2026-03-04T00:00:00Z"),
		Snapshot: analytics.Snapshot{SaveLiftPercent: liftp(100)},
	}
	unmeasured := SlotPerformance{
		Slot:     slotIn(t, "nolift", "c3", "2026-02-01T00:00:00Z", "2026-02-02T00:00:00Z"),
		Snapshot: analytics.Snapshot{},
	}

	best := bestPerformer([]SlotPerformance{late, unmeasured, early})
	if best == nil || best.Slot.ID != "early" {
		t.Fatalf("equal lift should go to the earliest start, got %+v", best)
	}

	if got := bestPerformer([]SlotPerformance{unmeasured}); got != nil {
		t.Fatalf("slots without lift never win, got %+v", got)
	}
}

func TestImpactLabels(t *testing.T) {
	cases := []struct {
		name string
		snap analytics.Snapshot
		want string
	}{
		{"high save lift", analytics.Snapshot{SaveLiftPercent: liftp(200)}, ImpactHigh},
		{"high score lift only", analytics.Snapshot{ScoreLiftPercent: liftp(300)}, ImpactHigh},
		{"moderate", analytics.Snapshot{SaveLiftPercent: liftp(50)}, ImpactModerate},
		{"below moderate", analytics.Snapshot{SaveLiftPercent: liftp(49)}, ImpactWeak},
		{"no lift measured", analytics.Snapshot{}, ImpactWeak},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := impactLabel(tc.snap, testCfg.Thresholds); got != tc.want {
				t.Fatalf("impactLabel = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestCTRLabels(t *testing.T) {
	cases := []struct {
		ctr  float64
		want string
	}{
		{0.20, CTRStrong},
		{0.18, CTRStrong},
		{0.10, CTRModerate},
		{0.05, CTRModerate},
		{0.01, CTRWeak},
	}
	for _, tc := range cases {
		if got := ctrLabel(decimal.NewFromFloat(tc.ctr), testCfg.Thresholds); got != tc.want {
			t.Fatalf("ctrLabel(%v) = %s, want %s", tc.ctr, got, tc.want)
		}
	}
}

func TestCategoryInsightsRanksByImpact(t *testing.T) {
	slots := &fakeSlotSource{slots: []schedule.Slot{
		slotIn(t, "s1", "music-1", "2026-03-01T00:00:00Z", "2026-03-03T00:00:00Z"),
		slotIn(t, "s2", "music-2", "2026-03-05T00:00:00Z", "2026-03-07T00:00:00Z"),
		slotIn(t, "s3", "film-1", "2026-03-10T00:00:00Z", "2026-03-12T00:00:00Z"),
	}}
	analyzer := &fakeAnalyzer{snapshots: map[string]analytics.Snapshot{
		"music-1": {CTR: decimal.NewFromFloat(0.20), SaveLiftPercent: liftp(300)},
		"music-2": {CTR: decimal.NewFromFloat(0.10), SaveLiftPercent: liftp(200)},
		"film-1":  {CTR: decimal.NewFromFloat(0.02), SaveLiftPercent: liftp(10)},
	}}
	dir := &fakeDirectory{categories: map[string]Category{
		"music-1": {ID: "music", Name: "Music"},
		"music-2": {ID: "music", Name: "Music"},
		"film-1":  {ID: "film", Name: "Film"},
	}}

	insights, err := newTestAggregator(slots, analyzer, dir).CategoryInsights(
		context.Background(), at("2026-03-01T00:00:00Z"), at("2026-04-01T00:00:00Z"))
	if err != nil {
		t.Fatalf("insights: %v", err)
	}

	if len(insights.Categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(insights.Categories))
	}
	music, film := insights.Categories[0], insights.Categories[1]
	if music.Category.ID != "music" || music.Rank != 1 {
		t.Fatalf("music should rank first, got %+v", music)
	}
	if film.Category.ID != "film" || film.Rank != 2 {
		t.Fatalf("film should rank second, got %+v", film)
	}

	if music.FeaturedCount != 2 {
		t.Fatalf("music FeaturedCount = %d, want 2", music.FeaturedCount)
	}
	if !music.AvgCTR.Equal(decimal.NewFromFloat(0.15)) {
		t.Fatalf("music AvgCTR = %s, want 0.15", music.AvgCTR)
	}
	if !music.AvgSaveLift.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("music AvgSaveLift = %s, want 250", music.AvgSaveLift)
	}

	// 250 average lift clears the high bucket; 0.02 CTR sits under moderate.
	assertHasRecommendation(t, music.Recommendations, "Category music consistently lifts saves: give it more slots.")
	assertHasRecommendation(t, film.Recommendations, "Category film draws few clicks when featured: test different lead content.")
}

func TestRollupExcludesUnmeasuredLiftFromAverage(t *testing.T) {
	group := []SlotPerformance{
		{Category: Category{ID: "music"}, Snapshot: analytics.Snapshot{CTR: decimal.NewFromFloat(0.10), SaveLiftPercent: liftp(100)}},
		{Category: Category{ID: "music"}, Snapshot: analytics.Snapshot{CTR: decimal.NewFromFloat(0.30)}},
	}
	agg := newTestAggregator(&fakeSlotSource{}, &fakeAnalyzer{}, &fakeDirectory{})

	insight := agg.rollupCategory(group)
	if !insight.AvgCTR.Equal(decimal.NewFromFloat(0.20)) {
		t.Fatalf("AvgCTR = %s, want 0.20", insight.AvgCTR)
	}
	// The slot without a baseline does not drag the lift average down.
	if !insight.AvgSaveLift.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("AvgSaveLift = %s, want 100", insight.AvgSaveLift)
	}
}

func assertHasRecommendation(t *testing.T, recs []string, want string) {
	t.Helper()
	for _, r := range recs {
		if r == want {
			return
		}
	}
	t.Fatalf("missing recommendation %q in %v", want, recs)
}
