package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
)

// Suggest prints ranked featuring candidates with their reasons.
func (a *App) Suggest(ctx context.Context, opts SuggestOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot rank candidates")
	}
	defer closeStore()

	svc := a.buildService(store)
	suggestions, err := svc.Suggest(ctx, opts.AsOf)
	if err != nil {
		return err
	}
	if opts.Limit > 0 && len(suggestions) > opts.Limit {
		suggestions = suggestions[:opts.Limit]
	}
	if len(suggestions) == 0 {
		fmt.Fprintln(os.Stdout, "no eligible candidates")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Rank\tContent\tCategory\tScore\tReasons")
	for i, s := range suggestions {
		fmt.Fprintf(writer, "%d\t%s\t%s\t%.3f\t%s\n",
			i+1, s.ID, s.CategoryID, s.Score, strings.Join(s.Reasons, "; "))
	}
	writer.Flush()

	rot, err := svc.RotationStats(ctx, opts.AsOf)
	if err != nil {
		return err
	}
	if rot.SuggestedCategory != "" {
		fmt.Fprintf(os.Stdout, "\nsuggested category: %s\n", rot.SuggestedCategory)
	}
	return nil
}

// Rotation prints the per-category featuring counts and fairness modifiers.
func (a *App) Rotation(ctx context.Context, opts SlotsOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot compute rotation stats")
	}
	defer closeStore()

	svc := a.buildService(store)
	result, err := svc.RotationStats(ctx, opts.AsOf)
	if err != nil {
		return err
	}
	if len(result.Stats) == 0 {
		fmt.Fprintln(os.Stdout, "no categories found")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Category\tFeatured\tModifier")
	for _, stat := range result.Stats {
		fmt.Fprintf(writer, "%s\t%d\t%+.2f\n", stat.CategoryID, stat.FeaturedCount, stat.Modifier)
	}
	writer.Flush()

	if result.SuggestedCategory != "" {
		fmt.Fprintf(os.Stdout, "\nsuggested category: %s\n", result.SuggestedCategory)
	}
	return nil
}
