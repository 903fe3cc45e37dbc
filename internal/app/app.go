package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/sandialabs/wind-hids/internal/alerting"
	"github.com/sandialabs/wind-hids/internal/config"
	"github.com/sandialabs/wind-hids/internal/hmi"
	"github.com/sandialabs/wind-hids/internal/monitor"
	"github.com/sandialabs/wind-hids/internal/scheduler"
	"github.com/sandialabs/wind-hids/internal/service"
	"github.com/sandialabs/wind-hids/internal/storage"
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

// newSources builds the telemetry and alarm sources for the configured mode.
func (a *App) newSources(offline bool) (hmi.TelemetrySource, hmi.AlarmSource) {
	if offline {
		src := hmi.NewFileSource(hmi.FileSourceOptions{
			Dir:            a.Config.HMI.OfflineDir,
			TelemetryFiles: a.Config.HMI.TelemetryFiles,
			AlarmFile:      a.Config.HMI.AlarmFile,
		}, a.Logger)
		return src, src
	}

	client := hmi.NewClient(hmi.ClientOptions{
		Addr:       a.Config.HMI.Addr,
		Port:       a.Config.HMI.Port,
		ServerTime: a.Config.HMI.ServerTime,
		Timeout:    a.Config.HMI.RequestTimeout,
	}, a.Logger)
	return client, client
}

func (a *App) newNotifier() alerting.Notifier {
	if !a.Config.Alerting.Enabled {
		return nil
	}
	if a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	}
	return nil
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

// Run executes the long-running monitoring loop.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a.Logger.Info().
		Str("addr", a.Config.HMI.Addr).
		Int("port", a.Config.HMI.Port).
		Int64("server_time", a.Config.HMI.ServerTime).
		Bool("offline", a.Config.HMI.Offline).
		Str("debug_level", a.Config.App.DebugLevel).
		Msg("starting monitor")

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		a.Logger.Warn().Msg("database.dsn not configured; cycle archive disabled")
	}
	if closeStore != nil {
		defer closeStore()
	}

	if store != nil && a.Config.Database.AdvisoryLockKey != 0 {
		unlock, acquired, err := store.TryAdvisoryLock(ctx, a.Config.Database.AdvisoryLockKey)
		if err != nil {
			return fmt.Errorf("acquire advisory lock: %w", err)
		}
		if !acquired {
			return errors.New("another monitor instance is already sampling this turbine")
		}
		defer unlock()
	}

	var cycleLog *storage.CycleLog
	if a.Config.CSV.Enabled {
		cycleLog = storage.NewCycleLog(a.Config.CSV.Dir, time.Now())
		defer cycleLog.Close()
		a.Logger.Info().Str("path", cycleLog.Path()).Msg("cycle log")
	}

	telemetry, alarms := a.newSources(a.Config.HMI.Offline)

	var cycles storage.CycleStore
	var alertStore storage.AlertStore
	if store != nil {
		cycles = store
		alertStore = store
	}

	svc := service.New(service.Options{
		Telemetry:  telemetry,
		Alarms:     alarms,
		Monitor:    monitor.New(monitor.DefaultLimits(), a.Logger),
		CycleLog:   cycleLog,
		Cycles:     cycles,
		AlertStore: alertStore,
		Notifier:   a.newNotifier(),
		Offline:    a.Config.HMI.Offline,
	}, a.Logger)

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Scheduler.Interval,
		Timeout:      a.Config.Scheduler.Timeout,
		StartupDelay: a.Config.Scheduler.StartupDelay,
	}, a.Logger)

	err = sched.Run(ctx, func(ctx context.Context, now time.Time) error {
		_, err := svc.ProcessCycle(ctx, now)
		return err
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("monitor terminated with error")
		return err
	}

	a.Logger.Info().Msg("monitor stopped")
	return nil
}

// ExportOptions hold parameters for exporting archived cycles.
type ExportOptions struct {
	From      *time.Time
	To        *time.Time
	PNGPath   string
	CSVPath   string
	MaxPoints int
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Limit  int
	Alerts bool
}

// ReplayOptions configure the offline replay.
type ReplayOptions struct {
	Cycles int
}
