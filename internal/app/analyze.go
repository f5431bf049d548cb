package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
)

// Analyze prints the before/during performance snapshot for one slot.
func (a *App) Analyze(ctx context.Context, opts AnalyzeOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot analyze slots")
	}
	defer closeStore()

	svc := a.buildService(store)
	snap, err := svc.AnalyzeSlot(ctx, opts.SlotID, opts.AsOf)
	if err != nil {
		return err
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(writer, "Slot\t%s\n", snap.SlotID)
	fmt.Fprintf(writer, "Content\t%s\n", snap.ContentID)
	fmt.Fprintf(writer, "During\t%s .. %s\n",
		snap.During.From.Format(time.RFC3339), snap.During.To.Format(time.RFC3339))
	fmt.Fprintf(writer, "Baseline\t%s .. %s\n",
		snap.Baseline.From.Format(time.RFC3339), snap.Baseline.To.Format(time.RFC3339))
	fmt.Fprintf(writer, "Impressions\t%d\n", snap.Impressions)
	fmt.Fprintf(writer, "Clicks\t%d\n", snap.Clicks)
	fmt.Fprintf(writer, "CTR\t%s\n", snap.CTR.StringFixed(4))
	fmt.Fprintf(writer, "Saves during\t%d\n", snap.SavesDuring)
	fmt.Fprintf(writer, "Saves baseline\t%d\n", snap.BaselineSaves)
	fmt.Fprintf(writer, "Save lift %%\t%s\n", formatLift(snap.SaveLiftPercent))
	fmt.Fprintf(writer, "Score lift %%\t%s\n", formatLift(snap.ScoreLiftPercent))
	writer.Flush()

	for _, rec := range snap.Recommendations {
		fmt.Fprintf(os.Stdout, "recommendation: %s\n", rec)
	}
	return nil
}

func formatLift(v *decimal.Decimal) string {
	if v == nil {
		return "n/a (no baseline)"
	}
	return v.StringFixed(1)
}
