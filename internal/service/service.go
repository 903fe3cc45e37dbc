package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sandialabs/wind-hids/internal/alerting"
	"github.com/sandialabs/wind-hids/internal/hmi"
	"github.com/sandialabs/wind-hids/internal/monitor"
	"github.com/sandialabs/wind-hids/internal/storage"
)

// Service orchestrates one poll cycle: acquisition, rule evaluation,
// persistence, and alert fan-out. It owns the monitor and its regime state;
// the poll loop is the only caller.
type Service struct {
	telemetry  hmi.TelemetrySource
	alarms     hmi.AlarmSource
	mon        *monitor.Monitor
	cycleLog   *storage.CycleLog
	cycles     storage.CycleStore
	alertStore storage.AlertStore
	notifier   alerting.Notifier
	offline    bool
	logger     zerolog.Logger
}

// Options wire the service's collaborators. Nil persistence and notifier
// fields disable those concerns.
type Options struct {
	Telemetry  hmi.TelemetrySource
	Alarms     hmi.AlarmSource
	Monitor    *monitor.Monitor
	CycleLog   *storage.CycleLog
	Cycles     storage.CycleStore
	AlertStore storage.AlertStore
	Notifier   alerting.Notifier
	// Offline mode treats every sample as one second of wall time; live mode
	// uses real elapsed time between checks.
	Offline bool
}

// New constructs the monitoring service.
func New(opts Options, logger zerolog.Logger) *Service {
	return &Service{
		telemetry:  opts.Telemetry,
		alarms:     opts.Alarms,
		mon:        opts.Monitor,
		cycleLog:   opts.CycleLog,
		cycles:     opts.Cycles,
		alertStore: opts.AlertStore,
		notifier:   opts.Notifier,
		offline:    opts.Offline,
		logger:     logger.With().Str("component", "service").Logger(),
	}
}

// ProcessCycle runs one poll cycle and returns the cycle's alert messages.
// Acquisition or snapshot failures abort the cycle before the regime
// counters are touched, so a partial cycle never corrupts them.
func (s *Service) ProcessCycle(ctx context.Context, now time.Time) ([]string, error) {
	alarmRecords, err := s.alarms.FetchAlarms(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch alarms: %w", err)
	}
	alarms := hmi.BuildAlarmList(alarmRecords)

	docs, err := s.telemetry.FetchTelemetry(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch telemetry: %w", err)
	}

	builder := hmi.NewSnapshotBuilder()
	for _, doc := range docs {
		if err := builder.Consume(doc); err != nil {
			return nil, fmt.Errorf("consume telemetry: %w", err)
		}
	}

	snap, err := builder.Snapshot(now)
	if err != nil {
		return nil, err
	}

	s.dumpRaw(builder)

	elapsed := 1.0 // offline samples represent one second each
	if !s.offline {
		elapsed = s.mon.Elapse(now)
	}

	alerts := s.mon.Check(snap, elapsed)

	s.logger.Info().
		Time("cycle", now).
		Float64("wind_speed", snap.WindSpeed).
		Float64("active_power", snap.ActivePower).
		Float64("rotor_speed", snap.RotorSpeed).
		Int("alerts", len(alerts)).
		Msg("cycle evaluated")

	s.appendCSV(builder, alarms, alerts)
	s.archive(ctx, snap, alerts)
	s.dispatch(ctx, snap, alerts)

	return alerts, nil
}

func (s *Service) dumpRaw(builder *hmi.SnapshotBuilder) {
	if s.logger.GetLevel() > zerolog.DebugLevel {
		return
	}
	order, raw := builder.Raw()
	dict := zerolog.Dict()
	for _, name := range order {
		dict = dict.Float64(name, raw[name])
	}
	s.logger.Debug().Dict("telemetry", dict).Msg("raw telemetry")
}

// appendCSV writes the cycle row: snapshot fields, alarm statuses, then one
// trailing cell per alert under the single "IDS Alarms" header column.
func (s *Service) appendCSV(builder *hmi.SnapshotBuilder, alarms *hmi.AlarmList, alerts []string) {
	if s.cycleLog == nil {
		return
	}

	names, values := builder.Fields()
	header := append(append([]string{}, names...), alarms.Names()...)
	header = append(header, "IDS Alarms")

	row := append(append([]string{}, values...), alarms.Values()...)
	row = append(row, alerts...)

	if err := s.cycleLog.Append(header, row); err != nil {
		s.logger.Error().Err(err).Str("path", s.cycleLog.Path()).Msg("failed to append csv row")
	}
}

func (s *Service) archive(ctx context.Context, snap monitor.Snapshot, alerts []string) {
	if s.cycles != nil {
		record := storage.CycleRecord{
			Time:          snap.Time,
			WindSpeed:     snap.WindSpeed,
			RotorSpeed:    snap.RotorSpeed,
			ActivePower:   snap.ActivePower,
			ReactivePower: snap.ReactivePower,
			BladePitch1:   snap.BladePitch[0],
			BladePitch2:   snap.BladePitch[1],
			BladePitch3:   snap.BladePitch[2],
			Torque:        snap.Torque,
			GearboxTemp:   snap.GearboxTemp,
			StatusBits:    int32(snap.StatusBits),
			Alerts:        alerts,
		}
		if err := s.cycles.InsertCycle(ctx, record); err != nil {
			s.logger.Error().Err(err).Time("cycle", snap.Time).Msg("failed to archive cycle")
		}
	}

	if s.alertStore != nil && len(alerts) > 0 {
		if err := s.alertStore.InsertAlerts(ctx, snap.Time, alerts); err != nil {
			s.logger.Error().Err(err).Time("cycle", snap.Time).Msg("failed to archive alerts")
		}
	}
}

func (s *Service) dispatch(ctx context.Context, snap monitor.Snapshot, alerts []string) {
	if s.notifier == nil || len(alerts) == 0 {
		return
	}

	note := alerting.Notification{
		Time:        snap.Time,
		Alerts:      alerts,
		Status:      monitor.DecodeStatus(snap.StatusBits),
		WindSpeed:   snap.WindSpeed,
		RotorSpeed:  snap.RotorSpeed,
		ActivePower: snap.ActivePower,
	}
	if err := s.notifier.Notify(ctx, note); err != nil {
		s.logger.Error().Err(err).Time("cycle", snap.Time).Msg("failed to dispatch alerts")
	}
}

// State exposes the regime counters for diagnostics.
func (s *Service) State() monitor.RegimeState {
	return s.mon.State()
}
