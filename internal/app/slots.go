package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/vilanovax/wibecur-sub000/internal/schedule"
)

// Propose validates and persists a new featured slot.
func (a *App) Propose(ctx context.Context, opts ProposeOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot propose slots")
	}
	defer closeStore()

	svc := a.buildService(store)
	slot, err := svc.ProposeSlot(ctx, opts.ContentID, opts.StartAt, opts.EndAt, opts.OrderIndex)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "slot %s scheduled for content %s starting %s\n",
		slot.ID, slot.ContentID, slot.Window.Start.Format(time.RFC3339))
	return nil
}

// Edit moves an existing slot to a new window.
func (a *App) Edit(ctx context.Context, opts EditOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot edit slots")
	}
	defer closeStore()

	svc := a.buildService(store)
	slot, err := svc.EditSlot(ctx, opts.SlotID, opts.StartAt, opts.EndAt)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "slot %s moved to %s\n", slot.ID, formatWindow(slot.Window))
	return nil
}

// Remove deletes a slot.
func (a *App) Remove(ctx context.Context, slotID string) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot remove slots")
	}
	defer closeStore()

	svc := a.buildService(store)
	if err := svc.DeleteSlot(ctx, slotID); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "slot %s removed\n", slotID)
	return nil
}

// Check reports whether a window would conflict with an existing slot.
func (a *App) Check(ctx context.Context, opts CheckOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot check conflicts")
	}
	defer closeStore()

	window, err := schedule.NewInterval(opts.StartAt, opts.EndAt)
	if err != nil {
		return err
	}

	svc := a.buildService(store)
	conflict, err := svc.CheckConflict(ctx, window, opts.ExcludeID)
	if err != nil {
		return err
	}

	if conflict == nil {
		fmt.Fprintln(os.Stdout, "window is free")
		return nil
	}
	fmt.Fprintf(os.Stdout, "window conflicts with slot %s (content %s, %s)\n",
		conflict.SlotID, conflict.ContentID, formatWindow(conflict.Window))
	return nil
}

// Slots prints the scheduling board as of an instant.
func (a *App) Slots(ctx context.Context, opts SlotsOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot list slots")
	}
	defer closeStore()

	svc := a.buildService(store)
	board, err := svc.Board(ctx, opts.AsOf)
	if err != nil {
		return err
	}

	total := len(board.Current) + len(board.Upcoming) + len(board.Past)
	if total == 0 {
		fmt.Fprintln(os.Stdout, "no slots found")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Status\tSlot\tContent\tStart (UTC)\tEnd (UTC)\tOrder")
	writeBoardSection(writer, schedule.StateActive.String(), board.Current)
	writeBoardSection(writer, schedule.StateScheduled.String(), board.Upcoming)
	writeBoardSection(writer, schedule.StateExpired.String(), board.Past)
	writer.Flush()
	return nil
}

func writeBoardSection(writer *tabwriter.Writer, status string, slots []schedule.Slot) {
	for _, slot := range slots {
		end := "open"
		if bounded := slot.Window.BoundedEnd(); bounded != nil {
			end = bounded.Format(time.RFC3339)
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\t%d\n",
			status, slot.ID, slot.ContentID,
			slot.Window.Start.Format(time.RFC3339), end, slot.OrderIndex)
	}
}

func formatWindow(window schedule.Interval) string {
	if window.Unbounded() {
		return fmt.Sprintf("[%s, open)", window.Start.Format(time.RFC3339))
	}
	return fmt.Sprintf("[%s, %s)", window.Start.Format(time.RFC3339), window.End.Format(time.RFC3339))
}
