package monitor

import "time"

// RegimeState tracks how long the turbine has been producing power versus
// idle. Exactly one counter accumulates at a time; flipping regime zeroes the
// other. The counters gate rules that need the control system to settle
// after a regime change before they can be trusted.
type RegimeState struct {
	SecondsPowered float64
	SecondsIdle    float64
	LastCheck      time.Time
}

// Advance accumulates elapsed seconds into the counter matching the current
// regime. Powered means active power above the power tolerance.
func (s *RegimeState) Advance(activePower, elapsedSeconds, powerTol float64) {
	if activePower > 0+powerTol {
		s.SecondsPowered += elapsedSeconds
		s.SecondsIdle = 0
	} else {
		s.SecondsIdle += elapsedSeconds
		s.SecondsPowered = 0
	}
}

// Elapse returns the wall-clock seconds since the previous check and advances
// LastCheck to now. Used in live mode only; the first call returns 0. Offline
// replay skips Elapse and feeds a fixed one-second increment per sample.
func (s *RegimeState) Elapse(now time.Time) float64 {
	if s.LastCheck.IsZero() {
		s.LastCheck = now
		return 0
	}
	elapsed := now.Sub(s.LastCheck).Seconds()
	s.LastCheck = now
	return elapsed
}
