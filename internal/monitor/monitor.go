// Package monitor holds the intrusion-detection core: the status word
// decoder, the powered/idle regime tracker, and the physics rule engine. The
// package performs no I/O; acquisition and persistence live with the caller.
package monitor

import (
	"time"

	"github.com/rs/zerolog"
)

// Monitor owns the regime state and exposes the single per-cycle entry
// point. It is not safe for concurrent use; the poll loop is the sole owner.
type Monitor struct {
	limits Limits
	engine *Engine
	state  RegimeState
}

// New constructs a Monitor with fresh regime counters.
func New(limits Limits, logger zerolog.Logger) *Monitor {
	return &Monitor{
		limits: limits,
		engine: NewEngine(limits, logger),
	}
}

// Elapse reports wall-clock seconds since the previous live check, advancing
// the internal timestamp.
func (m *Monitor) Elapse(now time.Time) float64 {
	return m.state.Elapse(now)
}

// Check runs one evaluation cycle: decode the status word, advance the
// regime counters by elapsedSeconds, and evaluate every rule. It returns the
// cycle's alert messages.
func (m *Monitor) Check(snap Snapshot, elapsedSeconds float64) []string {
	status := DecodeStatus(snap.StatusBits)
	m.state.Advance(snap.ActivePower, elapsedSeconds, m.limits.PTol)
	return m.engine.Evaluate(snap, status, &m.state)
}

// State returns a copy of the current regime counters.
func (m *Monitor) State() RegimeState {
	return m.state
}
