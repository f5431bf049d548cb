package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/vilanovax/wibecur-sub000/internal/report"
)

// Report prints the weekly performance report.
func (a *App) Report(ctx context.Context, opts ReportOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot build reports")
	}
	defer closeStore()

	svc := a.buildService(store)
	weekly, err := svc.WeeklyReport(ctx, opts.WeekStart)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "week %s .. %s: %d slots, avg CTR %s\n",
		weekly.WeekStart.Format("2006-01-02"), weekly.WeekEnd.Format("2006-01-02"),
		weekly.TotalSlots, weekly.AvgCTR.StringFixed(4))
	if weekly.BestPerformer != nil {
		fmt.Fprintf(os.Stdout, "best performer: content %s (%s)\n",
			weekly.BestPerformer.Slot.ContentID, weekly.BestPerformer.ImpactLabel)
	}
	if weekly.TotalSlots == 0 {
		fmt.Fprintln(os.Stdout, "no slots ran this week")
	}

	if len(weekly.Slots) > 0 {
		writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(writer, "Content\tCategory\tStart (UTC)\tCTR\tSave Lift%\tImpact\tCTR Label")
		for _, perf := range weekly.Slots {
			fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				perf.Slot.ContentID, perf.Category.ID,
				perf.Slot.Window.Start.Format(time.RFC3339),
				perf.Snapshot.CTR.StringFixed(4),
				formatLift(perf.Snapshot.SaveLiftPercent),
				perf.ImpactLabel, perf.CTRLabel)
		}
		writer.Flush()
	}

	for _, rec := range weekly.Recommendations {
		fmt.Fprintf(os.Stdout, "recommendation: %s\n", rec)
	}
	return nil
}

// Insights prints category-level performance over a period.
func (a *App) Insights(ctx context.Context, opts InsightsOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot build insights")
	}
	defer closeStore()

	svc := a.buildService(store)
	insights, err := svc.CategoryInsights(ctx, opts.From, opts.To)
	if err != nil {
		return err
	}
	if len(insights.Categories) == 0 {
		fmt.Fprintln(os.Stdout, "no featured content in this period")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Rank\tCategory\tFeatured\tAvg CTR\tAvg Save Lift%\tImpact\tRecommendations")
	for _, c := range insights.Categories {
		name := c.Category.Name
		if name == "" {
			name = c.Category.ID
		}
		fmt.Fprintf(writer, "%d\t%s\t%d\t%s\t%s\t%s\t%s\n",
			c.Rank, name, c.FeaturedCount,
			c.AvgCTR.StringFixed(4), c.AvgSaveLift.StringFixed(1),
			c.ImpactScore.StringFixed(2), strings.Join(c.Recommendations, "; "))
	}
	writer.Flush()
	return nil
}

// Export writes a weekly report to CSV and/or PNG files.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("nothing to export: provide --csv and/or --png")
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot export reports")
	}
	defer closeStore()

	svc := a.buildService(store)
	weekly, err := svc.WeeklyReport(ctx, opts.WeekStart)
	if err != nil {
		return err
	}

	maxPoints := opts.MaxPoints
	if maxPoints <= 0 {
		maxPoints = a.Config.Export.MaxDataPoints
	}

	if opts.CSVPath != "" {
		if err := report.WriteCSV(opts.CSVPath, weekly); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		a.Logger.Info().Str("path", opts.CSVPath).Int("slots", weekly.TotalSlots).Msg("csv export complete")
	}
	if opts.PNGPath != "" {
		if err := report.WritePNG(opts.PNGPath, weekly, maxPoints); err != nil {
			return fmt.Errorf("write png: %w", err)
		}
		a.Logger.Info().Str("path", opts.PNGPath).Msg("png export complete")
	}
	return nil
}
