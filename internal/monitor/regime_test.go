package monitor

import (
	"testing"
	"time"
)

func TestRegimeAccumulatesPowered(t *testing.T) {
	var state RegimeState
	for i := 0; i < 5; i++ {
		state.Advance(200, 1.0, 100)
	}
	if state.SecondsPowered != 5 || state.SecondsIdle != 0 {
		t.Fatalf("expected 5s powered / 0s idle, got %v / %v", state.SecondsPowered, state.SecondsIdle)
	}
}

func TestRegimeFlipResetsCounter(t *testing.T) {
	var state RegimeState
	for i := 0; i < 5; i++ {
		state.Advance(200, 1.0, 100)
	}
	state.Advance(0, 1.0, 100)
	if state.SecondsPowered != 0 {
		t.Fatalf("powered counter should reset on idle, got %v", state.SecondsPowered)
	}
	if state.SecondsIdle != 1 {
		t.Fatalf("idle counter should be 1, got %v", state.SecondsIdle)
	}
}

func TestRegimePowerTolerance(t *testing.T) {
	var state RegimeState
	// Exactly at tolerance counts as idle, just above counts as powered.
	state.Advance(100, 1.0, 100)
	if state.SecondsIdle != 1 || state.SecondsPowered != 0 {
		t.Fatalf("100 kW should be idle, got %+v", state)
	}
	state.Advance(100.1, 1.0, 100)
	if state.SecondsPowered != 1 || state.SecondsIdle != 0 {
		t.Fatalf("100.1 kW should be powered, got %+v", state)
	}
}

func TestRegimeElapse(t *testing.T) {
	var state RegimeState
	start := time.Date(2022, 6, 1, 12, 0, 0, 0, time.UTC)

	if got := state.Elapse(start); got != 0 {
		t.Fatalf("first elapse should be 0, got %v", got)
	}
	if got := state.Elapse(start.Add(3 * time.Second)); got != 3 {
		t.Fatalf("expected 3 elapsed seconds, got %v", got)
	}
	if !state.LastCheck.Equal(start.Add(3 * time.Second)) {
		t.Fatalf("last check should advance, got %v", state.LastCheck)
	}
}
