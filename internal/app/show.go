package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sandialabs/wind-hids/internal/storage"
)

// Show prints recently archived cycles or alerts.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot show cycles")
	}
	if closeStore != nil {
		defer closeStore()
	}

	if opts.Alerts {
		return a.showAlerts(ctx, store, opts.Limit)
	}

	cycles, err := store.ListRecentCycles(ctx, opts.Limit)
	if err != nil {
		return err
	}
	if len(cycles) == 0 {
		fmt.Fprintln(os.Stdout, "no cycles found")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Time (UTC)\tWind m/s\tRotor rpm\tPower kW\tTorque\tGearbox C\tStatus\tAlerts")

	for _, cycle := range cycles {
		gearbox := "-"
		if cycle.GearboxTemp != nil {
			gearbox = fmt.Sprintf("%.1f", *cycle.GearboxTemp)
		}
		fmt.Fprintf(
			writer,
			"%s\t%.2f\t%.2f\t%.1f\t%.2f\t%s\t0x%04x\t%d\n",
			cycle.Time.UTC().Format(time.RFC3339),
			cycle.WindSpeed,
			cycle.RotorSpeed,
			cycle.ActivePower,
			cycle.Torque,
			gearbox,
			cycle.StatusBits,
			len(cycle.Alerts),
		)
	}

	writer.Flush()
	return nil
}

func (a *App) showAlerts(ctx context.Context, store *storage.Store, limit int) error {
	alerts, err := store.ListRecentAlerts(ctx, limit)
	if err != nil {
		return err
	}
	if len(alerts) == 0 {
		fmt.Fprintln(os.Stdout, "no alerts found")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Cycle (UTC)\tMessage")
	for _, alert := range alerts {
		fmt.Fprintf(
			writer,
			"%s\t%s\n",
			alert.CycleTS.UTC().Format(time.RFC3339),
			sanitizeInline(alert.Message),
		)
	}
	writer.Flush()
	return nil
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	return cleaned
}
