package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sandialabs/wind-hids/internal/monitor"
	"github.com/sandialabs/wind-hids/internal/service"
)

// Check runs a single pass over the recorded XML and prints any alerts.
func (a *App) Check(ctx context.Context) error {
	telemetry, alarms := a.newSources(true)

	svc := service.New(service.Options{
		Telemetry: telemetry,
		Alarms:    alarms,
		Monitor:   monitor.New(monitor.DefaultLimits(), a.Logger),
		Offline:   true,
	}, a.Logger)

	alerts, err := svc.ProcessCycle(ctx, time.Now())
	if err != nil {
		return err
	}

	if len(alerts) == 0 {
		fmt.Fprintln(os.Stdout, "no alerts")
		return nil
	}
	for _, alert := range alerts {
		fmt.Fprintln(os.Stdout, alert)
	}
	return nil
}
