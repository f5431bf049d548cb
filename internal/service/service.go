// Package service wires the scheduling and analytics engines into the
// operations the CLI and HTTP surfaces expose. Every operation is a bounded
// synchronous computation over already-fetched data; reads tolerate
// eventually consistent views, writes serialise through the planner's lock.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vilanovax/wibecur-sub000/internal/analytics"
	"github.com/vilanovax/wibecur-sub000/internal/ranking"
	"github.com/vilanovax/wibecur-sub000/internal/report"
	"github.com/vilanovax/wibecur-sub000/internal/rotation"
	"github.com/vilanovax/wibecur-sub000/internal/schedule"
)

// CurationStore reads the inputs suggestion ranking needs.
type CurationStore interface {
	ListCandidates(ctx context.Context) ([]ranking.Candidate, error)
	ListFeaturedEntries(ctx context.Context, from, to time.Time) ([]rotation.FeaturedEntry, error)
	ListCategoryIDs(ctx context.Context) ([]string, error)
}

// Analyzer computes one slot's performance snapshot.
type Analyzer interface {
	Analyze(ctx context.Context, slot schedule.Slot, now time.Time) (analytics.Snapshot, error)
}

// Reporter aggregates snapshots into weekly and category reports.
type Reporter interface {
	WeeklyReport(ctx context.Context, weekStart time.Time) (report.Weekly, error)
	CategoryInsights(ctx context.Context, from, to time.Time) (report.Insights, error)
}

// RotationResult pairs the per-category stats with the category the tracker
// would feature next.
type RotationResult struct {
	AsOf              time.Time
	Stats             []rotation.CategoryStat
	SuggestedCategory string
}

// Service orchestrates scheduling, ranking, and analysis.
type Service struct {
	planner  *schedule.Planner
	curation CurationStore
	analyzer Analyzer
	reporter Reporter
	rotCfg   rotation.Config
	rankCfg  ranking.Config
	logger   zerolog.Logger
}

// New constructs the curation service.
func New(planner *schedule.Planner, curation CurationStore, analyzer Analyzer, reporter Reporter, rotCfg rotation.Config, rankCfg ranking.Config, logger zerolog.Logger) *Service {
	return &Service{
		planner:  planner,
		curation: curation,
		analyzer: analyzer,
		reporter: reporter,
		rotCfg:   rotCfg,
		rankCfg:  rankCfg,
		logger:   logger.With().Str("component", "service").Logger(),
	}
}

// ProposeSlot schedules a new conflict-checked slot.
func (s *Service) ProposeSlot(ctx context.Context, contentID string, start time.Time, end *time.Time, orderIndex int) (schedule.Slot, error) {
	return s.planner.Propose(ctx, contentID, start, end, orderIndex)
}

// EditSlot moves an existing slot's window.
func (s *Service) EditSlot(ctx context.Context, id string, start time.Time, end *time.Time) (schedule.Slot, error) {
	return s.planner.Edit(ctx, id, start, end)
}

// DeleteSlot removes a slot.
func (s *Service) DeleteSlot(ctx context.Context, id string) error {
	return s.planner.Delete(ctx, id)
}

// Board partitions all slots by state at asOf.
func (s *Service) Board(ctx context.Context, asOf time.Time) (schedule.Board, error) {
	return s.planner.Board(ctx, asOf)
}

// CheckConflict reports the overlap a window would cause, if any.
func (s *Service) CheckConflict(ctx context.Context, window schedule.Interval, excludeID string) (*schedule.ConflictError, error) {
	return s.planner.CheckConflict(ctx, window, excludeID)
}

// RotationStats recomputes rolling category frequencies from slot history.
func (s *Service) RotationStats(ctx context.Context, asOf time.Time) (RotationResult, error) {
	categories, err := s.curation.ListCategoryIDs(ctx)
	if err != nil {
		return RotationResult{}, fmt.Errorf("list categories: %w", err)
	}
	entries, err := s.curation.ListFeaturedEntries(ctx, asOf.Add(-s.rotCfg.Window), asOf)
	if err != nil {
		return RotationResult{}, fmt.Errorf("list featured entries: %w", err)
	}

	stats := rotation.Stats(categories, entries, asOf, s.rotCfg)
	return RotationResult{
		AsOf:              asOf,
		Stats:             stats,
		SuggestedCategory: rotation.SuggestedCategory(stats),
	}, nil
}

// Suggest ranks eligible content for the next featured slot. Content covered
// by a current or upcoming slot is excluded before scoring.
func (s *Service) Suggest(ctx context.Context, now time.Time) ([]ranking.Suggestion, error) {
	candidates, err := s.curation.ListCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	rot, err := s.RotationStats(ctx, now)
	if err != nil {
		return nil, err
	}

	board, err := s.planner.Board(ctx, now)
	if err != nil {
		return nil, err
	}
	busy := make(map[string]bool, len(board.Current)+len(board.Upcoming))
	for _, slot := range board.Current {
		busy[slot.ContentID] = true
	}
	for _, slot := range board.Upcoming {
		busy[slot.ContentID] = true
	}

	suggestions := ranking.Suggest(candidates, rotation.Modifiers(rot.Stats), busy, now, s.rankCfg)
	s.logger.Debug().Int("candidates", len(candidates)).Int("ranked", len(suggestions)).Msg("suggestions computed")
	return suggestions, nil
}

// AnalyzeSlot computes the performance snapshot for one slot.
func (s *Service) AnalyzeSlot(ctx context.Context, slotID string, now time.Time) (analytics.Snapshot, error) {
	slot, err := s.planner.Get(ctx, slotID)
	if err != nil {
		return analytics.Snapshot{}, err
	}
	return s.analyzer.Analyze(ctx, slot, now)
}

// WeeklyReport summarises the week starting at weekStart.
func (s *Service) WeeklyReport(ctx context.Context, weekStart time.Time) (report.Weekly, error) {
	return s.reporter.WeeklyReport(ctx, weekStart)
}

// CategoryInsights rolls performance up by category over a period.
func (s *Service) CategoryInsights(ctx context.Context, from, to time.Time) (report.Insights, error) {
	return s.reporter.CategoryInsights(ctx, from, to)
}
