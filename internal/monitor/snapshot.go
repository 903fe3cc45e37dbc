package monitor

import "time"

// Pitch modes reported by the controller.
const (
	PitchModeNormal      = 0
	PitchModeManual      = 1
	PitchModeBatteryTest = 2
)

// Snapshot is one cycle's typed telemetry, immutable after construction.
// All fields except GearboxBearingTemp are mandatory; the snapshot builder
// rejects documents that leave any of them unset.
type Snapshot struct {
	Time          time.Time
	RotorSpeed    float64 // rpm
	ActivePower   float64 // kW
	ReactivePower float64 // kVAr
	WindSpeed     float64 // m/s
	BladePitch    [3]float64
	Torque        float64  // kNm
	GearboxTemp   *float64 // deg C, absent on some firmware revisions
	PitchMode     int
	YawMode       int // informational only
	StatusBits    uint16
}
