package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vilanovax/wibecur-sub000/internal/analytics"
	"github.com/vilanovax/wibecur-sub000/internal/config"
	"github.com/vilanovax/wibecur-sub000/internal/ranking"
	"github.com/vilanovax/wibecur-sub000/internal/report"
	"github.com/vilanovax/wibecur-sub000/internal/rotation"
	"github.com/vilanovax/wibecur-sub000/internal/schedule"
	"github.com/vilanovax/wibecur-sub000/internal/service"
	"github.com/vilanovax/wibecur-sub000/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

// buildService wires the planner, analyzer, and aggregator around one store.
func (a *App) buildService(store *storage.Store) *service.Service {
	planner := schedule.NewPlanner(store, store, a.Config.Scheduling.ConflictLockKey, a.Logger)

	thresholds := analytics.Thresholds{
		StrongCTR:    a.Config.Analysis.StrongCTR,
		ModerateCTR:  a.Config.Analysis.ModerateCTR,
		HighLift:     a.Config.Analysis.HighLift,
		ModerateLift: a.Config.Analysis.ModerateLift,
		NearZeroLift: a.Config.Analysis.NearZeroLift,
	}
	analyzer := analytics.NewAnalyzer(store, thresholds, a.Logger)

	aggregator := report.NewAggregator(store, analyzer, store, report.Config{
		Thresholds:      thresholds,
		CTRWeight:       a.Config.Report.CTRWeight,
		SaveLiftWeight:  a.Config.Report.SaveLiftWeight,
		ScoreLiftWeight: a.Config.Report.ScoreLiftWeight,
		CountWeight:     a.Config.Report.CountWeight,
	}, a.Logger)

	rotCfg := rotation.Config{
		Window:   a.Config.Rotation.Window,
		Modifier: a.Config.Rotation.Modifier,
	}
	rankCfg := ranking.Config{
		TrendingWeight:  a.Config.Ranking.TrendingWeight,
		VelocityWeight:  a.Config.Ranking.VelocityWeight,
		RecencyWeight:   a.Config.Ranking.RecencyWeight,
		RotationWeight:  a.Config.Ranking.RotationWeight,
		CoolDown:        a.Config.Ranking.CoolDown,
		RecencyCapDays:  a.Config.Ranking.RecencyCapDays,
		ReasonThreshold: a.Config.Ranking.ReasonThreshold,
		MaxReasons:      a.Config.Ranking.MaxReasons,
	}

	return service.New(planner, store, analyzer, aggregator, rotCfg, rankCfg, a.Logger)
}

// ProposeOptions configure the propose command.
type ProposeOptions struct {
	ContentID  string
	StartAt    time.Time
	EndAt      *time.Time
	OrderIndex int
}

// EditOptions configure the edit command.
type EditOptions struct {
	SlotID  string
	StartAt time.Time
	EndAt   *time.Time
}

// CheckOptions configure the check command.
type CheckOptions struct {
	StartAt   time.Time
	EndAt     *time.Time
	ExcludeID string
}

// SlotsOptions configure the slots board listing.
type SlotsOptions struct {
	AsOf time.Time
}

// SuggestOptions configure the suggest command.
type SuggestOptions struct {
	AsOf  time.Time
	Limit int
}

// AnalyzeOptions configure the analyze command.
type AnalyzeOptions struct {
	SlotID string
	AsOf   time.Time
}

// ReportOptions configure the weekly report command.
type ReportOptions struct {
	WeekStart time.Time
}

// InsightsOptions configure the category insights command.
type InsightsOptions struct {
	From time.Time
	To   time.Time
}

// ExportOptions hold parameters for exporting a weekly report to disk.
type ExportOptions struct {
	WeekStart time.Time
	CSVPath   string
	PNGPath   string
	MaxPoints int
}
