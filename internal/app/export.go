package app

import (
	"context"
	"encoding/csv"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/sandialabs/wind-hids/internal/storage"
)

// Export renders archived cycles as CSV and/or a PNG chart.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot export")
	}
	if closeStore != nil {
		defer closeStore()
	}

	to := time.Now().UTC()
	if opts.To != nil {
		to = opts.To.UTC()
	}

	from := to.Add(-time.Duration(opts.MaxPoints) * a.Config.Scheduler.Interval)
	if opts.From != nil {
		from = opts.From.UTC()
	}

	if !from.Before(to) {
		return errors.New("from must be before to")
	}

	cycles, err := store.ListCyclesBetween(ctx, from, to)
	if err != nil {
		return err
	}
	if len(cycles) == 0 {
		a.Logger.Info().Msg("no cycles found for export window")
		return nil
	}

	downsampled := downsampleCycles(cycles, opts.MaxPoints)
	a.Logger.Info().Int("total", len(cycles)).Int("exported", len(downsampled)).Msg("exporting cycles")

	if opts.CSVPath != "" {
		if err := writeCyclesCSV(opts.CSVPath, downsampled); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := writeCyclesPNG(opts.PNGPath, downsampled); err != nil {
			return err
		}
	}

	return nil
}

func downsampleCycles(cycles []storage.CycleRecord, max int) []storage.CycleRecord {
	if max <= 0 || len(cycles) <= max {
		return cycles
	}

	result := make([]storage.CycleRecord, 0, max)
	step := float64(len(cycles)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(cycles) {
			idx = len(cycles) - 1
		}
		result = append(result, cycles[idx])
	}
	return result
}

func writeCyclesCSV(path string, cycles []storage.CycleRecord) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"cycle_ts", "wind_speed", "rotor_speed", "active_power", "reactive_power",
		"blade_pitch_1", "blade_pitch_2", "blade_pitch_3", "torque", "gearbox_temp",
		"status_bits", "alerts",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, cycle := range cycles {
		gearbox := ""
		if cycle.GearboxTemp != nil {
			gearbox = strconv.FormatFloat(*cycle.GearboxTemp, 'f', -1, 64)
		}
		record := []string{
			cycle.Time.Format(time.RFC3339),
			strconv.FormatFloat(cycle.WindSpeed, 'f', -1, 64),
			strconv.FormatFloat(cycle.RotorSpeed, 'f', -1, 64),
			strconv.FormatFloat(cycle.ActivePower, 'f', -1, 64),
			strconv.FormatFloat(cycle.ReactivePower, 'f', -1, 64),
			strconv.FormatFloat(cycle.BladePitch1, 'f', -1, 64),
			strconv.FormatFloat(cycle.BladePitch2, 'f', -1, 64),
			strconv.FormatFloat(cycle.BladePitch3, 'f', -1, 64),
			strconv.FormatFloat(cycle.Torque, 'f', -1, 64),
			gearbox,
			strconv.Itoa(int(cycle.StatusBits)),
			strings.Join(cycle.Alerts, "; "),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

func writeCyclesPNG(path string, cycles []storage.CycleRecord) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	x := make([]time.Time, len(cycles))
	wind := make([]float64, len(cycles))
	rotor := make([]float64, len(cycles))
	power := make([]float64, len(cycles))
	alerts := make([]float64, len(cycles))

	for i, cycle := range cycles {
		x[i] = cycle.Time
		wind[i] = cycle.WindSpeed
		rotor[i] = cycle.RotorSpeed
		power[i] = cycle.ActivePower
		alerts[i] = float64(len(cycle.Alerts))
	}

	speedFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.1f")
	}
	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Speed (m/s, rpm)",
			ValueFormatter: speedFormatter,
		},
		YAxisSecondary: chart.YAxis{
			Name:           "Active Power (kW)",
			ValueFormatter: speedFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Wind Speed",
				XValues: x,
				YValues: wind,
			},
			chart.TimeSeries{
				Name:    "Rotor Speed",
				XValues: x,
				YValues: rotor,
			},
			chart.TimeSeries{
				Name:    "Active Power",
				XValues: x,
				YValues: power,
				YAxis:   chart.YAxisSecondary,
			},
			chart.TimeSeries{
				Name:    "IDS Alerts",
				XValues: x,
				YValues: alerts,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
