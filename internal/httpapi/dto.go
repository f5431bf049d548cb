package httpapi

import (
	"time"

	"github.com/vilanovax/wibecur-sub000/internal/analytics"
	"github.com/vilanovax/wibecur-sub000/internal/ranking"
	"github.com/vilanovax/wibecur-sub000/internal/report"
	"github.com/vilanovax/wibecur-sub000/internal/schedule"
	"github.com/vilanovax/wibecur-sub000/internal/service"
)

// Wire types. The open-end sentinel never leaves the service: an unbounded
// slot serialises with end_at omitted.

type slotJSON struct {
	ID         string     `json:"id"`
	ContentID  string     `json:"content_id"`
	StartAt    time.Time  `json:"start_at"`
	EndAt      *time.Time `json:"end_at,omitempty"`
	OrderIndex int        `json:"order_index"`
	CreatedAt  time.Time  `json:"created_at"`
	Status     string     `json:"status,omitempty"`
}

type boardJSON struct {
	AsOf     time.Time  `json:"as_of"`
	Current  []slotJSON `json:"current"`
	Upcoming []slotJSON `json:"upcoming"`
	Past     []slotJSON `json:"past"`
}

type conflictJSON struct {
	SlotID    string     `json:"slot_id"`
	ContentID string     `json:"content_id"`
	StartAt   time.Time  `json:"start_at"`
	EndAt     *time.Time `json:"end_at,omitempty"`
}

type conflictCheckJSON struct {
	Conflict *conflictJSON `json:"conflict"`
}

type suggestionJSON struct {
	ContentID      string     `json:"content_id"`
	CategoryID     string     `json:"category_id"`
	Score          float64    `json:"score"`
	TrendingScore  float64    `json:"trending_score"`
	SaveVelocity   float64    `json:"save_velocity"`
	LastFeaturedAt *time.Time `json:"last_featured_at,omitempty"`
	Reasons        []string   `json:"reasons"`
}

type rotationStatJSON struct {
	CategoryID    string  `json:"category_id"`
	FeaturedCount int     `json:"featured_count"`
	Modifier      float64 `json:"rotation_modifier"`
}

type rotationJSON struct {
	AsOf              time.Time          `json:"as_of"`
	Stats             []rotationStatJSON `json:"stats"`
	SuggestedCategory string             `json:"suggested_category,omitempty"`
}

type windowJSON struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type snapshotJSON struct {
	SlotID           string     `json:"slot_id"`
	ContentID        string     `json:"content_id"`
	During           windowJSON `json:"during"`
	Baseline         windowJSON `json:"baseline"`
	Impressions      int64      `json:"impressions"`
	Clicks           int64      `json:"clicks"`
	CTR              string     `json:"ctr"`
	SavesDuring      int64      `json:"saves_during"`
	BaselineSaves    int64      `json:"baseline_saves"`
	SaveLiftPercent  *string    `json:"save_lift_percent"`
	BaselineScore    string     `json:"baseline_score"`
	PeakScore        string     `json:"peak_score"`
	ScoreLiftPercent *string    `json:"score_lift_percent"`
	Recommendations  []string   `json:"recommendations"`
}

type slotPerformanceJSON struct {
	Slot        slotJSON     `json:"slot"`
	Snapshot    snapshotJSON `json:"snapshot"`
	CategoryID  string       `json:"category_id,omitempty"`
	ImpactLabel string       `json:"impact_label"`
	CTRLabel    string       `json:"ctr_label"`
}

type weeklyJSON struct {
	WeekStart       time.Time             `json:"week_start"`
	WeekEnd         time.Time             `json:"week_end"`
	TotalSlots      int                   `json:"total_slots"`
	AvgCTR          string                `json:"avg_ctr"`
	BestPerformer   *slotPerformanceJSON  `json:"best_performer"`
	Slots           []slotPerformanceJSON `json:"slots"`
	Recommendations []string              `json:"recommendations"`
}

type categoryInsightJSON struct {
	CategoryID      string   `json:"category_id"`
	CategoryName    string   `json:"category_name,omitempty"`
	FeaturedCount   int      `json:"featured_count"`
	AvgCTR          string   `json:"avg_ctr"`
	AvgSaveLift     string   `json:"avg_save_lift"`
	AvgScoreLift    string   `json:"avg_score_lift"`
	ImpactScore     string   `json:"impact_score"`
	Rank            int      `json:"rank"`
	Recommendations []string `json:"recommendations"`
}

type insightsJSON struct {
	From       time.Time             `json:"from"`
	To         time.Time             `json:"to"`
	Categories []categoryInsightJSON `json:"categories"`
}

type errorJSON struct {
	Code     string        `json:"code"`
	Message  string        `json:"message"`
	Conflict *conflictJSON `json:"conflict,omitempty"`
}

type errorResponseJSON struct {
	Error errorJSON `json:"error"`
}

func toSlotJSON(slot schedule.Slot, status string) slotJSON {
	return slotJSON{
		ID:         slot.ID,
		ContentID:  slot.ContentID,
		StartAt:    slot.Window.Start,
		EndAt:      slot.Window.BoundedEnd(),
		OrderIndex: slot.OrderIndex,
		CreatedAt:  slot.CreatedAt,
		Status:     status,
	}
}

func toBoardJSON(board schedule.Board) boardJSON {
	out := boardJSON{
		AsOf:     board.AsOf,
		Current:  make([]slotJSON, 0, len(board.Current)),
		Upcoming: make([]slotJSON, 0, len(board.Upcoming)),
		Past:     make([]slotJSON, 0, len(board.Past)),
	}
	for _, slot := range board.Current {
		out.Current = append(out.Current, toSlotJSON(slot, schedule.StateActive.String()))
	}
	for _, slot := range board.Upcoming {
		out.Upcoming = append(out.Upcoming, toSlotJSON(slot, schedule.StateScheduled.String()))
	}
	for _, slot := range board.Past {
		out.Past = append(out.Past, toSlotJSON(slot, schedule.StateExpired.String()))
	}
	return out
}

func toConflictJSON(conflict *schedule.ConflictError) *conflictJSON {
	if conflict == nil {
		return nil
	}
	return &conflictJSON{
		SlotID:    conflict.SlotID,
		ContentID: conflict.ContentID,
		StartAt:   conflict.Window.Start,
		EndAt:     conflict.Window.BoundedEnd(),
	}
}

func toSuggestionJSON(s ranking.Suggestion) suggestionJSON {
	return suggestionJSON{
		ContentID:      s.ID,
		CategoryID:     s.CategoryID,
		Score:          s.Score,
		TrendingScore:  s.TrendingScore,
		SaveVelocity:   s.SaveVelocity,
		LastFeaturedAt: s.LastFeaturedAt,
		Reasons:        s.Reasons,
	}
}

func toRotationJSON(result service.RotationResult) rotationJSON {
	out := rotationJSON{
		AsOf:              result.AsOf,
		Stats:             make([]rotationStatJSON, 0, len(result.Stats)),
		SuggestedCategory: result.SuggestedCategory,
	}
	for _, stat := range result.Stats {
		out.Stats = append(out.Stats, rotationStatJSON{
			CategoryID:    stat.CategoryID,
			FeaturedCount: stat.FeaturedCount,
			Modifier:      stat.Modifier,
		})
	}
	return out
}

func toSnapshotJSON(snap analytics.Snapshot) snapshotJSON {
	out := snapshotJSON{
		SlotID:          snap.SlotID,
		ContentID:       snap.ContentID,
		During:          windowJSON{From: snap.During.From, To: snap.During.To},
		Baseline:        windowJSON{From: snap.Baseline.From, To: snap.Baseline.To},
		Impressions:     snap.Impressions,
		Clicks:          snap.Clicks,
		CTR:             snap.CTR.StringFixed(4),
		SavesDuring:     snap.SavesDuring,
		BaselineSaves:   snap.BaselineSaves,
		BaselineScore:   snap.BaselineScore.StringFixed(2),
		PeakScore:       snap.PeakScore.StringFixed(2),
		Recommendations: snap.Recommendations,
	}
	if snap.SaveLiftPercent != nil {
		v := snap.SaveLiftPercent.StringFixed(2)
		out.SaveLiftPercent = &v
	}
	if snap.ScoreLiftPercent != nil {
		v := snap.ScoreLiftPercent.StringFixed(2)
		out.ScoreLiftPercent = &v
	}
	return out
}

func toSlotPerformanceJSON(perf report.SlotPerformance) slotPerformanceJSON {
	return slotPerformanceJSON{
		Slot:        toSlotJSON(perf.Slot, ""),
		Snapshot:    toSnapshotJSON(perf.Snapshot),
		CategoryID:  perf.Category.ID,
		ImpactLabel: perf.ImpactLabel,
		CTRLabel:    perf.CTRLabel,
	}
}

func toWeeklyJSON(weekly report.Weekly) weeklyJSON {
	out := weeklyJSON{
		WeekStart:       weekly.WeekStart,
		WeekEnd:         weekly.WeekEnd,
		TotalSlots:      weekly.TotalSlots,
		AvgCTR:          weekly.AvgCTR.StringFixed(4),
		Slots:           make([]slotPerformanceJSON, 0, len(weekly.Slots)),
		Recommendations: weekly.Recommendations,
	}
	for _, perf := range weekly.Slots {
		out.Slots = append(out.Slots, toSlotPerformanceJSON(perf))
	}
	if weekly.BestPerformer != nil {
		best := toSlotPerformanceJSON(*weekly.BestPerformer)
		out.BestPerformer = &best
	}
	return out
}

func toInsightsJSON(insights report.Insights) insightsJSON {
	out := insightsJSON{
		From:       insights.From,
		To:         insights.To,
		Categories: make([]categoryInsightJSON, 0, len(insights.Categories)),
	}
	for _, c := range insights.Categories {
		out.Categories = append(out.Categories, categoryInsightJSON{
			CategoryID:      c.Category.ID,
			CategoryName:    c.Category.Name,
			FeaturedCount:   c.FeaturedCount,
			AvgCTR:          c.AvgCTR.StringFixed(4),
			AvgSaveLift:     c.AvgSaveLift.StringFixed(2),
			AvgScoreLift:    c.AvgScoreLift.StringFixed(2),
			ImpactScore:     c.ImpactScore.StringFixed(2),
			Rank:            c.Rank,
			Recommendations: c.Recommendations,
		})
	}
	return out
}
