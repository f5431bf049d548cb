// Package analytics measures the lift a promotion produced against the
// content's own baseline: an equal-length window immediately before the slot
// started. Analysis is a pure read; it can be repeated with a later clock
// while a slot is still running.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/vilanovax/wibecur-sub000/internal/schedule"
)

// EngagementTotals aggregates raw engagement counts over a window. The
// underlying events are owned by an external collaborator; this engine only
// reads bucketed totals.
type EngagementTotals struct {
	Impressions int64
	Clicks      int64
	Saves       int64
}

// Source reads external engagement and trending data by content id and
// time range.
type Source interface {
	EngagementBetween(ctx context.Context, contentID string, from, to time.Time) (EngagementTotals, error)
	PeakTrendingBetween(ctx context.Context, contentID string, from, to time.Time) (float64, error)
	ContentCreatedAt(ctx context.Context, contentID string) (time.Time, error)
}

// Window is a concrete half-open measurement range.
type Window struct {
	From time.Time
	To   time.Time
}

// Empty reports whether the window has no span.
func (w Window) Empty() bool {
	return !w.From.Before(w.To)
}

// Snapshot is the result of analysing one slot. Lift fields are nil when the
// baseline window is unavailable, for example when the slot started at
// content creation; partial data degrades the snapshot, it never fails it.
type Snapshot struct {
	SlotID    string
	ContentID string
	During    Window
	Baseline  Window

	Impressions   int64
	Clicks        int64
	CTR           decimal.Decimal
	SavesDuring   int64
	BaselineSaves int64

	SaveLiftPercent  *decimal.Decimal
	BaselineScore    decimal.Decimal
	PeakScore        decimal.Decimal
	ScoreLiftPercent *decimal.Decimal

	Recommendations []string
}

// Thresholds parameterise the recommendation rule table. Values are
// configuration, the bucket-to-text rule shape is the contract.
type Thresholds struct {
	StrongCTR    float64
	ModerateCTR  float64
	HighLift     float64
	ModerateLift float64
	NearZeroLift float64
}

// Analyzer computes performance snapshots from external engagement reads.
type Analyzer struct {
	source     Source
	thresholds Thresholds
	logger     zerolog.Logger
}

// NewAnalyzer wires an Analyzer over an engagement source.
func NewAnalyzer(source Source, thresholds Thresholds, logger zerolog.Logger) *Analyzer {
	return &Analyzer{
		source:     source,
		thresholds: thresholds,
		logger:     logger.With().Str("component", "analyzer").Logger(),
	}
}

var oneHundred = decimal.NewFromInt(100)

// Analyze compares the slot's during window [start, min(end, now)) with an
// equal-length baseline immediately preceding the start.
func (a *Analyzer) Analyze(ctx context.Context, slot schedule.Slot, now time.Time) (Snapshot, error) {
	during := Window{From: slot.Window.Start, To: slot.Window.ClampEnd(now).End}
	if during.Empty() {
		// Slot has not started yet; report an empty snapshot.
		during.To = during.From
	}
	length := during.To.Sub(during.From)
	baseline := Window{From: during.From.Add(-length), To: during.From}

	snap := Snapshot{
		SlotID:    slot.ID,
		ContentID: slot.ContentID,
		During:    during,
		Baseline:  baseline,
	}
	if during.Empty() {
		return snap, nil
	}

	engagement, err := a.source.EngagementBetween(ctx, slot.ContentID, during.From, during.To)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read during engagement: %w", err)
	}
	snap.Impressions = engagement.Impressions
	snap.Clicks = engagement.Clicks
	snap.SavesDuring = engagement.Saves
	snap.CTR = safeCTR(engagement.Clicks, engagement.Impressions)

	peak, err := a.source.PeakTrendingBetween(ctx, slot.ContentID, during.From, during.To)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read during trending: %w", err)
	}
	snap.PeakScore = decimal.NewFromFloat(peak)

	hasBaseline, err := a.baselineAvailable(ctx, slot.ContentID, baseline)
	if err != nil {
		return Snapshot{}, err
	}
	if !hasBaseline {
		a.logger.Debug().Str("slot_id", slot.ID).Msg("baseline window unavailable, lift fields omitted")
		snap.Recommendations = recommendationsFor(snap, a.thresholds)
		return snap, nil
	}

	base, err := a.source.EngagementBetween(ctx, slot.ContentID, baseline.From, baseline.To)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read baseline engagement: %w", err)
	}
	snap.BaselineSaves = base.Saves
	saveLift := liftPercent(decimal.NewFromInt(engagement.Saves), decimal.NewFromInt(base.Saves))
	snap.SaveLiftPercent = &saveLift

	baseScore, err := a.source.PeakTrendingBetween(ctx, slot.ContentID, baseline.From, baseline.To)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read baseline trending: %w", err)
	}
	snap.BaselineScore = decimal.NewFromFloat(baseScore)
	scoreLift := liftPercent(snap.PeakScore, snap.BaselineScore)
	snap.ScoreLiftPercent = &scoreLift

	snap.Recommendations = recommendationsFor(snap, a.thresholds)
	return snap, nil
}

// baselineAvailable reports whether the content existed for the whole
// baseline window. A slot scheduled at content creation has no baseline and
// its lift cannot be measured.
func (a *Analyzer) baselineAvailable(ctx context.Context, contentID string, baseline Window) (bool, error) {
	if baseline.Empty() {
		return false, nil
	}
	createdAt, err := a.source.ContentCreatedAt(ctx, contentID)
	if err != nil {
		return false, fmt.Errorf("read content created at: %w", err)
	}
	return !createdAt.After(baseline.From), nil
}

// safeCTR divides clicks by impressions, reporting zero when there were no
// impressions so downstream math never divides by zero.
func safeCTR(clicks, impressions int64) decimal.Decimal {
	if impressions <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(clicks).Div(decimal.NewFromInt(impressions))
}

// liftPercent computes (during - baseline) / max(baseline, 1) * 100. The
// clamped denominator keeps zero-baseline lifts large but finite.
func liftPercent(during, baseline decimal.Decimal) decimal.Decimal {
	denom := baseline
	if denom.LessThan(decimal.NewFromInt(1)) {
		denom = decimal.NewFromInt(1)
	}
	return during.Sub(baseline).Div(denom).Mul(oneHundred)
}
