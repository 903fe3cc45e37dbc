package hmi

import (
	"fmt"
	"strconv"
	"time"

	"github.com/sandialabs/wind-hids/internal/monitor"
)

type fieldKind int

const (
	kindFloat fieldKind = iota
	kindInt
	kindStatus
)

type fieldDef struct {
	display string
	kind    fieldKind
}

// telemetryFields maps HMI variable names onto the analysis fields. Anything
// not listed is ignored beyond the raw diagnostic map.
var telemetryFields = map[string]fieldDef{
	"In_WindSpd":                 {display: "Wind Speed"},
	"In_RotorSpd":                {display: "Rotor Speed"},
	"AI_In_GridMonReacPowerAct":  {display: "Reactive Power"},
	"AI_In_GridMonRealPowerAct":  {display: "Active Power"},
	"AI_In_PitchAngleCurrent1":   {display: "Blade Pitch 1"},
	"AI_In_PitchAngleCurrent2":   {display: "Blade Pitch 2"},
	"AI_In_PitchAngleCurrent3":   {display: "Blade Pitch 3"},
	"AI_CuTorqueAct":             {display: "Torque"},
	"In_TbGbxBearingFastShaftA":  {display: "Gearbox Bearing Temp"},
	"DynCtl_Blad1AngleSetpt":     {display: "Blade 1 Angle Setpoint"},
	"DynCtl_Blad2AngleSetpt":     {display: "Blade 2 Angle Setpoint"},
	"DynCtl_Blad3AngleSetpt":     {display: "Blade 3 Angle Setpoint"},
	"DynCtl_RotorSpeedSetpoint":  {display: "Rotor Speed Setpoint"},
	"DynCtl_PowerSetpoint":       {display: "Power Setpoint"},
	"AI_In_TbTowerAcceleration":  {display: "Tower Acceleration"},
	"Yaw_Mode":                   {display: "Yaw Mode", kind: kindInt},
	"Pitch_Mode":                 {display: "Pitch Mode", kind: kindInt},
	"OpCtl_TurbineStatus":        {display: "Turbine Status", kind: kindStatus},
}

// mandatoryFields must all be present before rule evaluation may proceed.
// Gearbox Bearing Temp is deliberately absent: some firmware revisions do
// not publish it and its rule is simply skipped.
var mandatoryFields = []string{
	"Wind Speed",
	"Rotor Speed",
	"Active Power",
	"Reactive Power",
	"Blade Pitch 1",
	"Blade Pitch 2",
	"Blade Pitch 3",
	"Torque",
	"Pitch Mode",
	"Turbine Status",
}

// SnapshotBuilder accumulates records from one or more telemetry documents
// into a typed snapshot plus the ordered display map used for the CSV log.
type SnapshotBuilder struct {
	order    []string
	display  map[string]string
	floats   map[string]float64
	ints     map[string]int
	raw      map[string]float64
	rawOrder []string
	status   *uint16
}

// NewSnapshotBuilder returns an empty builder.
func NewSnapshotBuilder() *SnapshotBuilder {
	return &SnapshotBuilder{
		display: make(map[string]string),
		floats:  make(map[string]float64),
		ints:    make(map[string]int),
		raw:     make(map[string]float64),
	}
}

// Consume folds one document's records into the builder. Records are ordered
// newest-first; consumption stops at the first record whose Index differs
// from the leading record's, so stale index groups never leak into the
// snapshot. Later documents overwrite earlier values for the same field.
func (b *SnapshotBuilder) Consume(records []Record) error {
	if len(records) == 0 {
		return fmt.Errorf("telemetry document has no records")
	}

	latest := records[0].Index
	for _, rec := range records {
		if rec.Index != latest {
			break
		}

		value, err := strconv.ParseFloat(rec.Value, 64)
		if err != nil {
			return fmt.Errorf("parse %s value %q: %w", rec.Name, rec.Value, err)
		}
		if _, seen := b.raw[rec.Name]; !seen {
			b.rawOrder = append(b.rawOrder, rec.Name)
		}
		b.raw[rec.Name] = value

		def, ok := telemetryFields[rec.Name]
		if !ok {
			continue
		}

		switch def.kind {
		case kindStatus:
			bits := uint16(int64(value))
			b.status = &bits
			b.setDisplay(def.display, fmt.Sprintf("%v", monitor.DecodeStatus(bits)))
		case kindInt:
			b.ints[def.display] = int(value)
			b.setDisplay(def.display, strconv.Itoa(int(value)))
		default:
			b.floats[def.display] = value
			b.setDisplay(def.display, rec.Value)
		}
	}

	return nil
}

func (b *SnapshotBuilder) setDisplay(name, value string) {
	if _, seen := b.display[name]; !seen {
		b.order = append(b.order, name)
	}
	b.display[name] = value
}

// Snapshot validates the mandatory fields and materialises the typed
// snapshot. Every field except the gearbox bearing temperature is required.
func (b *SnapshotBuilder) Snapshot(now time.Time) (monitor.Snapshot, error) {
	for _, name := range mandatoryFields {
		if _, ok := b.display[name]; !ok {
			return monitor.Snapshot{}, fmt.Errorf("telemetry missing mandatory field %q", name)
		}
	}

	snap := monitor.Snapshot{
		Time:          now,
		RotorSpeed:    b.floats["Rotor Speed"],
		ActivePower:   b.floats["Active Power"],
		ReactivePower: b.floats["Reactive Power"],
		WindSpeed:     b.floats["Wind Speed"],
		BladePitch: [3]float64{
			b.floats["Blade Pitch 1"],
			b.floats["Blade Pitch 2"],
			b.floats["Blade Pitch 3"],
		},
		Torque:     b.floats["Torque"],
		PitchMode:  b.ints["Pitch Mode"],
		YawMode:    b.ints["Yaw Mode"],
		StatusBits: *b.status,
	}

	if temp, ok := b.floats["Gearbox Bearing Temp"]; ok {
		t := temp
		snap.GearboxTemp = &t
	}

	return snap, nil
}

// Fields returns the display column names and values in first-seen order,
// for the CSV log row.
func (b *SnapshotBuilder) Fields() ([]string, []string) {
	names := make([]string, len(b.order))
	values := make([]string, len(b.order))
	for i, name := range b.order {
		names[i] = name
		values[i] = b.display[name]
	}
	return names, values
}

// Raw returns every observed variable in first-seen order, for diagnostic
// dumps at high debug verbosity.
func (b *SnapshotBuilder) Raw() ([]string, map[string]float64) {
	return b.rawOrder, b.raw
}
