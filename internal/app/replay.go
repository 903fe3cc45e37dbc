package app

import (
	"context"
	"errors"
	"time"

	"github.com/sandialabs/wind-hids/internal/monitor"
	"github.com/sandialabs/wind-hids/internal/service"
	"github.com/sandialabs/wind-hids/internal/storage"
)

// Replay runs the monitoring loop over the recorded XML at full speed,
// advancing the regime clock one second per cycle and writing the CSV log.
func (a *App) Replay(ctx context.Context, opts ReplayOptions) error {
	if opts.Cycles <= 0 {
		return errors.New("--cycles must be positive")
	}

	var cycleLog *storage.CycleLog
	if a.Config.CSV.Enabled {
		cycleLog = storage.NewCycleLog(a.Config.CSV.Dir, time.Now())
		defer cycleLog.Close()
		a.Logger.Info().Str("path", cycleLog.Path()).Msg("cycle log")
	}

	telemetry, alarms := a.newSources(true)

	svc := service.New(service.Options{
		Telemetry: telemetry,
		Alarms:    alarms,
		Monitor:   monitor.New(monitor.DefaultLimits(), a.Logger),
		CycleLog:  cycleLog,
		Offline:   true,
	}, a.Logger)

	start := time.Now()
	processed := 0
	failed := 0
	raised := 0
	for i := 0; i < opts.Cycles; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		alerts, err := svc.ProcessCycle(ctx, start.Add(time.Duration(i)*time.Second))
		if err != nil {
			failed++
			a.Logger.Error().Err(err).Int("cycle", i).Msg("replay cycle failed")
			continue
		}
		processed++
		raised += len(alerts)
	}

	a.Logger.Info().
		Int("processed", processed).
		Int("failed", failed).
		Int("alerts", raised).
		Msg("replay complete")
	if failed > 0 {
		return errors.New("some replay cycles failed; check the log")
	}
	return nil
}
