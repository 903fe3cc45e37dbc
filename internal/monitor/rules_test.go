package monitor

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func testEngine() *Engine {
	return NewEngine(DefaultLimits(), zerolog.Nop())
}

// operatingSnapshot is an unremarkable mid-band snapshot that trips no rule.
func operatingSnapshot() Snapshot {
	return Snapshot{
		RotorSpeed:    9,
		ActivePower:   0,
		ReactivePower: 0,
		WindSpeed:     5,
		BladePitch:    [3]float64{0, 0, 0},
		Torque:        5,
		PitchMode:     PitchModeNormal,
		StatusBits:    0b11, // Turbine OK + grid connection
	}
}

func countContaining(alerts []string, substr string) int {
	n := 0
	for _, a := range alerts {
		if strings.Contains(a, substr) {
			n++
		}
	}
	return n
}

func evaluate(t *testing.T, snap Snapshot, regime RegimeState) []string {
	t.Helper()
	return testEngine().Evaluate(snap, DecodeStatus(snap.StatusBits), &regime)
}

func TestEvaluateCleanSnapshot(t *testing.T) {
	alerts := evaluate(t, operatingSnapshot(), RegimeState{})
	if len(alerts) != 0 {
		t.Fatalf("clean snapshot should raise nothing, got %v", alerts)
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	snap := operatingSnapshot()
	snap.RotorSpeed = 19.5
	snap.BladePitch = [3]float64{0, 0, 6}
	regime := RegimeState{SecondsPowered: 61}

	engine := testEngine()
	status := DecodeStatus(snap.StatusBits)
	first := engine.Evaluate(snap, status, &regime)
	second := engine.Evaluate(snap, status, &regime)

	if len(first) == 0 {
		t.Fatal("expected at least one alert")
	}
	if len(first) != len(second) {
		t.Fatalf("evaluate not idempotent: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("alert %d differs: %q vs %q", i, first[i], second[i])
		}
	}
}

func TestPitchModeWarning(t *testing.T) {
	snap := operatingSnapshot()
	snap.PitchMode = PitchModeManual
	alerts := evaluate(t, snap, RegimeState{})
	if countContaining(alerts, "Unusual Pitch Mode") != 1 {
		t.Fatalf("expected pitch mode warning, got %v", alerts)
	}
}

func TestRotorOverspeed(t *testing.T) {
	snap := operatingSnapshot()
	snap.RotorSpeed = 19.5
	alerts := evaluate(t, snap, RegimeState{})
	if countContaining(alerts, "Rotor overspeed") != 1 {
		t.Fatalf("19.5 rpm should raise exactly one overspeed alert, got %v", alerts)
	}

	snap.RotorSpeed = 19.0
	alerts = evaluate(t, snap, RegimeState{})
	if countContaining(alerts, "Rotor overspeed") != 0 {
		t.Fatalf("19.0 rpm should not raise overspeed, got %v", alerts)
	}
}

func TestGearboxOverTemperature(t *testing.T) {
	snap := operatingSnapshot()
	temp := 61.0
	snap.GearboxTemp = &temp
	alerts := evaluate(t, snap, RegimeState{})
	if countContaining(alerts, "High Gearbox Temperature") != 1 {
		t.Fatalf("61 C should raise over-temp alert, got %v", alerts)
	}

	snap.GearboxTemp = nil
	alerts = evaluate(t, snap, RegimeState{})
	if countContaining(alerts, "High Gearbox Temperature") != 0 {
		t.Fatalf("absent temperature should skip the rule, got %v", alerts)
	}
}

func TestIdlePitchMismatch(t *testing.T) {
	snap := operatingSnapshot()
	snap.BladePitch = [3]float64{82, 82, 82}
	alerts := evaluate(t, snap, RegimeState{SecondsPowered: 121})
	if countContaining(alerts, "set to idle when turbine status") != 1 {
		t.Fatalf("feathered blades without idle status should alert, got %v", alerts)
	}

	// Status says idling: no mismatch.
	snap.StatusBits = 0b111
	alerts = evaluate(t, snap, RegimeState{SecondsPowered: 121})
	if countContaining(alerts, "set to idle when turbine status") != 0 {
		t.Fatalf("idling status should suppress the alert, got %v", alerts)
	}

	// Debounce window not yet elapsed.
	snap.StatusBits = 0b11
	alerts = evaluate(t, snap, RegimeState{SecondsPowered: 60})
	if countContaining(alerts, "set to idle when turbine status") != 0 {
		t.Fatalf("short powered window should suppress the alert, got %v", alerts)
	}
}

func TestFalsifiedDataAndBrakeFailure(t *testing.T) {
	snap := operatingSnapshot()
	snap.RotorSpeed = 11.5
	snap.ActivePower = 200
	alerts := evaluate(t, snap, RegimeState{SecondsPowered: 61})
	if countContaining(alerts, "Falsified Data") != 1 {
		t.Fatalf("11.5 rpm with power should raise falsified data, got %v", alerts)
	}
	if countContaining(alerts, "Brake Failure") != 0 {
		t.Fatalf("11.5 rpm should not raise brake failure, got %v", alerts)
	}

	snap.RotorSpeed = 13
	alerts = evaluate(t, snap, RegimeState{SecondsPowered: 61})
	if countContaining(alerts, "Falsified Data") != 1 || countContaining(alerts, "Brake Failure") != 1 {
		t.Fatalf("13 rpm with power should raise both, got %v", alerts)
	}

	// Below the debounce window neither fires.
	alerts = evaluate(t, snap, RegimeState{SecondsPowered: 60})
	if countContaining(alerts, "Falsified Data")+countContaining(alerts, "Brake Failure") != 0 {
		t.Fatalf("short powered window should suppress both, got %v", alerts)
	}
}

func TestOperationAboveCutOut(t *testing.T) {
	snap := operatingSnapshot()
	snap.WindSpeed = 30
	alerts := evaluate(t, snap, RegimeState{SecondsPowered: 61})
	if countContaining(alerts, "Operation above cut out") != 1 {
		t.Fatalf("30 m/s should raise cut-out alert, got %v", alerts)
	}
	// First match wins: the rated-band checks must not also run.
	if countContaining(alerts, "should be higher") != 0 {
		t.Fatalf("rated-band rules must not run above cut-out, got %v", alerts)
	}
}

func TestRatedBandEnvelope(t *testing.T) {
	snap := operatingSnapshot()
	snap.WindSpeed = 15
	snap.ActivePower = 1600
	snap.Torque = 12
	snap.BladePitch = [3]float64{2, 2, 2}
	snap.RotorSpeed = 0

	alerts := evaluate(t, snap, RegimeState{SecondsPowered: 61})
	if countContaining(alerts, "Power should be higher") != 0 {
		t.Fatalf("rated power should satisfy the envelope, got %v", alerts)
	}
	if countContaining(alerts, "Torque should be higher") != 0 {
		t.Fatalf("rated torque should satisfy the envelope, got %v", alerts)
	}

	snap.ActivePower = 1300
	alerts = evaluate(t, snap, RegimeState{SecondsPowered: 61})
	if countContaining(alerts, "Power should be higher") != 1 {
		t.Fatalf("1300 kW at 15 m/s should raise power alert, got %v", alerts)
	}
}

func TestCutInViolation(t *testing.T) {
	snap := operatingSnapshot()
	snap.WindSpeed = 2.0
	snap.ActivePower = 150
	alerts := evaluate(t, snap, RegimeState{SecondsPowered: 90})
	if countContaining(alerts, "Power generation below cut in") != 1 {
		t.Fatalf("150 kW at 2 m/s should raise cut-in alert, got %v", alerts)
	}

	snap.ActivePower = 50
	alerts = evaluate(t, snap, RegimeState{SecondsPowered: 90})
	if countContaining(alerts, "Power generation below cut in") != 0 {
		t.Fatalf("50 kW at 2 m/s should not alert, got %v", alerts)
	}
}

func TestNormalBandEnvelope(t *testing.T) {
	snap := operatingSnapshot()
	snap.WindSpeed = 7
	snap.ActivePower = 1600
	snap.Torque = 12
	alerts := evaluate(t, snap, RegimeState{SecondsPowered: 61})
	if countContaining(alerts, "Power does not match wind speed") != 1 {
		t.Fatalf("1600 kW at 7 m/s should raise power mismatch, got %v", alerts)
	}
	if countContaining(alerts, "Torque does not match wind speed") != 1 {
		t.Fatalf("12 kNm at 7 m/s should raise torque mismatch, got %v", alerts)
	}

	snap.BladePitch = [3]float64{0, 0, 7}
	alerts = evaluate(t, snap, RegimeState{SecondsPowered: 31})
	if countContaining(alerts, "Blade pitches strange") != 1 {
		t.Fatalf("7 deg pitch in the normal band should alert, got %v", alerts)
	}
}

func TestBladePitchImbalance(t *testing.T) {
	snap := operatingSnapshot()
	snap.BladePitch = [3]float64{0, 0, 6}
	alerts := evaluate(t, snap, RegimeState{SecondsPowered: 61})
	if countContaining(alerts, "Blade pitch angles are not the same") != 1 {
		t.Fatalf("6 deg spread should raise imbalance, got %v", alerts)
	}

	snap.BladePitch = [3]float64{0, 0, 4}
	alerts = evaluate(t, snap, RegimeState{SecondsPowered: 61})
	if countContaining(alerts, "Blade pitch angles are not the same") != 0 {
		t.Fatalf("4 deg spread should not alert, got %v", alerts)
	}
}

func TestEmergencyStopGatesOperationalRules(t *testing.T) {
	snap := operatingSnapshot()
	snap.StatusBits = 1 << 10 // Emergency STOP
	snap.WindSpeed = 2.0
	snap.ActivePower = 150
	snap.RotorSpeed = 19.5

	alerts := evaluate(t, snap, RegimeState{SecondsPowered: 90})
	if countContaining(alerts, "Power generation below cut in") != 0 {
		t.Fatalf("emergency stop should gate operational rules, got %v", alerts)
	}
	// Global rules still run.
	if countContaining(alerts, "Rotor overspeed") != 1 {
		t.Fatalf("global overspeed should still fire, got %v", alerts)
	}
}

func TestEmptyStatusStillChecksOperationalRules(t *testing.T) {
	snap := operatingSnapshot()
	snap.StatusBits = 0
	snap.WindSpeed = 2.0
	snap.ActivePower = 150
	alerts := evaluate(t, snap, RegimeState{SecondsPowered: 90})
	if countContaining(alerts, "Power generation below cut in") != 1 {
		t.Fatalf("empty status should not gate operational rules, got %v", alerts)
	}
}

func TestWindEnvelopeNaNRecovered(t *testing.T) {
	snap := operatingSnapshot()
	snap.WindSpeed = nan()
	snap.BladePitch = [3]float64{0, 0, 6}
	alerts := evaluate(t, snap, RegimeState{SecondsPowered: 61})
	// The wind ladder fails, the imbalance rule still runs.
	if countContaining(alerts, "Blade pitch angles are not the same") != 1 {
		t.Fatalf("imbalance rule should survive a wind ladder failure, got %v", alerts)
	}
}

func TestMonitorCheckAdvancesRegime(t *testing.T) {
	m := New(DefaultLimits(), zerolog.Nop())
	snap := operatingSnapshot()
	snap.ActivePower = 200

	for i := 0; i < 5; i++ {
		m.Check(snap, 1.0)
	}
	if got := m.State().SecondsPowered; got != 5 {
		t.Fatalf("expected 5s powered, got %v", got)
	}

	snap.ActivePower = 0
	m.Check(snap, 1.0)
	state := m.State()
	if state.SecondsPowered != 0 || state.SecondsIdle != 1 {
		t.Fatalf("regime should flip to idle, got %+v", state)
	}
}

func nan() float64 {
	var zero float64
	return zero / zero
}
