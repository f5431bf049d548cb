// Package report rolls per-slot performance snapshots into weekly and
// category-level summaries. Reports are derived on every query and never
// persisted; a period with no slots is an empty report, not an error.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/vilanovax/wibecur-sub000/internal/analytics"
	"github.com/vilanovax/wibecur-sub000/internal/schedule"
)

// Impact and CTR labels are coarse presentation hints derived from the
// configured thresholds.
const (
	ImpactHigh     = "High Impact"
	ImpactModerate = "Moderate"
	ImpactWeak     = "Weak"

	CTRStrong   = "strong"
	CTRModerate = "moderate"
	CTRWeak     = "weak"
)

// SlotSource reads the slots intersecting a period.
type SlotSource interface {
	ListSlotsOverlapping(ctx context.Context, window schedule.Interval) ([]schedule.Slot, error)
}

// Analyzer computes one slot's performance snapshot.
type Analyzer interface {
	Analyze(ctx context.Context, slot schedule.Slot, now time.Time) (analytics.Snapshot, error)
}

// Category identifies a content category for report labelling.
type Category struct {
	ID   string
	Name string
}

// Directory resolves the category a content list belongs to. Category
// records are owned externally and only read here.
type Directory interface {
	CategoryOf(ctx context.Context, contentID string) (Category, error)
}

// Config weighs the category impact score and carries the label thresholds.
type Config struct {
	Thresholds analytics.Thresholds

	CTRWeight       float64
	SaveLiftWeight  float64
	ScoreLiftWeight float64
	CountWeight     float64
}

// SlotPerformance pairs a slot with its snapshot and presentation labels.
type SlotPerformance struct {
	Slot        schedule.Slot
	Snapshot    analytics.Snapshot
	Category    Category
	ImpactLabel string
	CTRLabel    string
}

// Weekly summarises all slots intersecting one week.
type Weekly struct {
	WeekStart       time.Time
	WeekEnd         time.Time
	TotalSlots      int
	AvgCTR          decimal.Decimal
	BestPerformer   *SlotPerformance
	Slots           []SlotPerformance
	Recommendations []string
}

// CategoryInsight is one category's rollup over a period, ranked by impact.
type CategoryInsight struct {
	Category        Category
	FeaturedCount   int
	AvgCTR          decimal.Decimal
	AvgSaveLift     decimal.Decimal
	AvgScoreLift    decimal.Decimal
	ImpactScore     decimal.Decimal
	Rank            int
	Recommendations []string
}

// Insights holds the ranked category rollups for a period.
type Insights struct {
	From       time.Time
	To         time.Time
	Categories []CategoryInsight
}

// Aggregator builds weekly reports and category insights.
type Aggregator struct {
	slots     SlotSource
	analyzer  Analyzer
	directory Directory
	cfg       Config
	logger    zerolog.Logger
}

// NewAggregator wires an Aggregator.
func NewAggregator(slots SlotSource, analyzer Analyzer, directory Directory, cfg Config, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		slots:     slots,
		analyzer:  analyzer,
		directory: directory,
		cfg:       cfg,
		logger:    logger.With().Str("component", "report").Logger(),
	}
}

// WeeklyReport summarises the seven days starting at weekStart.
func (a *Aggregator) WeeklyReport(ctx context.Context, weekStart time.Time) (Weekly, error) {
	weekStart = weekStart.UTC()
	weekEnd := weekStart.AddDate(0, 0, 7)

	performances, err := a.analyzePeriod(ctx, weekStart, weekEnd)
	if err != nil {
		return Weekly{}, err
	}

	weekly := Weekly{
		WeekStart:  weekStart,
		WeekEnd:    weekEnd,
		TotalSlots: len(performances),
		AvgCTR:     meanCTR(performances),
		Slots:      performances,
	}
	weekly.BestPerformer = bestPerformer(performances)
	weekly.Recommendations = weeklyRecommendations(weekly, a.cfg.Thresholds)
	return weekly, nil
}

// CategoryInsights rolls the period's snapshots up by category and ranks
// categories by impact score.
func (a *Aggregator) CategoryInsights(ctx context.Context, from, to time.Time) (Insights, error) {
	performances, err := a.analyzePeriod(ctx, from.UTC(), to.UTC())
	if err != nil {
		return Insights{}, err
	}

	grouped := make(map[string][]SlotPerformance)
	for _, perf := range performances {
		grouped[perf.Category.ID] = append(grouped[perf.Category.ID], perf)
	}

	insights := Insights{From: from.UTC(), To: to.UTC()}
	for _, group := range grouped {
		insights.Categories = append(insights.Categories, a.rollupCategory(group))
	}

	sort.Slice(insights.Categories, func(i, j int) bool {
		x, y := insights.Categories[i], insights.Categories[j]
		if !x.ImpactScore.Equal(y.ImpactScore) {
			return x.ImpactScore.GreaterThan(y.ImpactScore)
		}
		if x.FeaturedCount != y.FeaturedCount {
			return x.FeaturedCount > y.FeaturedCount
		}
		return x.Category.ID < y.Category.ID
	})
	for i := range insights.Categories {
		insights.Categories[i].Rank = i + 1
	}
	return insights, nil
}

// analyzePeriod snapshots every slot intersecting [from, to), clamping each
// slot's measurement window to the period boundary.
func (a *Aggregator) analyzePeriod(ctx context.Context, from, to time.Time) ([]SlotPerformance, error) {
	period := schedule.Interval{Start: from, End: to}
	slots, err := a.slots.ListSlotsOverlapping(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("list slots in period: %w", err)
	}

	performances := make([]SlotPerformance, 0, len(slots))
	for _, slot := range slots {
		clamped := slot
		if clamped.Window.Start.Before(from) {
			clamped.Window.Start = from
		}
		snap, err := a.analyzer.Analyze(ctx, clamped, to)
		if err != nil {
			return nil, fmt.Errorf("analyze slot %s: %w", slot.ID, err)
		}

		category, err := a.directory.CategoryOf(ctx, slot.ContentID)
		if err != nil {
			a.logger.Warn().Err(err).Str("content_id", slot.ContentID).Msg("category lookup failed, left unlabelled")
			category = Category{}
		}

		performances = append(performances, SlotPerformance{
			Slot:        slot,
			Snapshot:    snap,
			Category:    category,
			ImpactLabel: impactLabel(snap, a.cfg.Thresholds),
			CTRLabel:    ctrLabel(snap.CTR, a.cfg.Thresholds),
		})
	}
	return performances, nil
}

func (a *Aggregator) rollupCategory(group []SlotPerformance) CategoryInsight {
	insight := CategoryInsight{
		Category:      group[0].Category,
		FeaturedCount: len(group),
	}

	var ctrSum, saveSum, scoreSum decimal.Decimal
	saveCount, scoreCount := 0, 0
	for _, perf := range group {
		ctrSum = ctrSum.Add(perf.Snapshot.CTR)
		if perf.Snapshot.SaveLiftPercent != nil {
			saveSum = saveSum.Add(*perf.Snapshot.SaveLiftPercent)
			saveCount++
		}
		if perf.Snapshot.ScoreLiftPercent != nil {
			scoreSum = scoreSum.Add(*perf.Snapshot.ScoreLiftPercent)
			scoreCount++
		}
	}

	count := decimal.NewFromInt(int64(len(group)))
	insight.AvgCTR = ctrSum.Div(count)
	if saveCount > 0 {
		insight.AvgSaveLift = saveSum.Div(decimal.NewFromInt(int64(saveCount)))
	}
	if scoreCount > 0 {
		insight.AvgScoreLift = scoreSum.Div(decimal.NewFromInt(int64(scoreCount)))
	}

	insight.ImpactScore = decimal.NewFromFloat(a.cfg.CTRWeight).Mul(insight.AvgCTR).
		Add(decimal.NewFromFloat(a.cfg.SaveLiftWeight).Mul(insight.AvgSaveLift)).
		Add(decimal.NewFromFloat(a.cfg.ScoreLiftWeight).Mul(insight.AvgScoreLift)).
		Add(decimal.NewFromFloat(a.cfg.CountWeight).Mul(count))
	insight.Recommendations = categoryRecommendations(insight, a.cfg.Thresholds)
	return insight
}

// meanCTR averages per-slot CTR; an empty period reports zero.
func meanCTR(performances []SlotPerformance) decimal.Decimal {
	if len(performances) == 0 {
		return decimal.Zero
	}
	var sum decimal.Decimal
	for _, perf := range performances {
		sum = sum.Add(perf.Snapshot.CTR)
	}
	return sum.Div(decimal.NewFromInt(int64(len(performances))))
}

// bestPerformer picks the slot with the highest save lift; ties go to the
// earliest slot start. Slots without a measurable lift never win.
func bestPerformer(performances []SlotPerformance) *SlotPerformance {
	var best *SlotPerformance
	for i := range performances {
		perf := &performances[i]
		if perf.Snapshot.SaveLiftPercent == nil {
			continue
		}
		if best == nil {
			best = perf
			continue
		}
		lift, bestLift := *perf.Snapshot.SaveLiftPercent, *best.Snapshot.SaveLiftPercent
		if lift.GreaterThan(bestLift) {
			best = perf
			continue
		}
		if lift.Equal(bestLift) && perf.Slot.Window.Start.Before(best.Slot.Window.Start) {
			best = perf
		}
	}
	return best
}

func impactLabel(snap analytics.Snapshot, t analytics.Thresholds) string {
	high := decimal.NewFromFloat(t.HighLift)
	moderate := decimal.NewFromFloat(t.ModerateLift)
	if liftAtLeast(snap.SaveLiftPercent, high) || liftAtLeast(snap.ScoreLiftPercent, high) {
		return ImpactHigh
	}
	if liftAtLeast(snap.SaveLiftPercent, moderate) || liftAtLeast(snap.ScoreLiftPercent, moderate) {
		return ImpactModerate
	}
	return ImpactWeak
}

func liftAtLeast(lift *decimal.Decimal, bound decimal.Decimal) bool {
	return lift != nil && lift.GreaterThanOrEqual(bound)
}

func ctrLabel(ctr decimal.Decimal, t analytics.Thresholds) string {
	if ctr.GreaterThanOrEqual(decimal.NewFromFloat(t.StrongCTR)) {
		return CTRStrong
	}
	if ctr.GreaterThanOrEqual(decimal.NewFromFloat(t.ModerateCTR)) {
		return CTRModerate
	}
	return CTRWeak
}
