package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// TickFunc runs one poll cycle. An error means the cycle was abandoned; the
// loop logs it and carries on.
type TickFunc func(ctx context.Context, now time.Time) error

// Options tune the poll loop.
type Options struct {
	Interval     time.Duration // poll period
	Timeout      time.Duration // overall run budget; 0 runs forever
	StartupDelay time.Duration
}

// Scheduler drives the synchronous poll loop: one cycle runs to completion
// before the next begins. A cycle that overruns the interval delays the next
// one instead of overlapping it.
type Scheduler struct {
	opts   Options
	logger zerolog.Logger
}

// New constructs a Scheduler.
func New(opts Options, logger zerolog.Logger) *Scheduler {
	if opts.Interval <= 0 {
		panic("scheduler interval must be positive")
	}
	return &Scheduler{opts: opts, logger: logger.With().Str("component", "scheduler").Logger()}
}

// Run blocks, invoking tick once per interval until the run budget is spent
// or ctx is cancelled. The budget is checked once per cycle; there is no
// mid-cycle cancellation.
func (s *Scheduler) Run(ctx context.Context, tick TickFunc) error {
	if s.opts.StartupDelay > 0 {
		timer := time.NewTimer(s.opts.StartupDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	start := time.Now()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		elapsed := time.Since(start)
		if s.opts.Timeout > 0 && elapsed >= s.opts.Timeout {
			s.logger.Info().Dur("run_time", elapsed).Msg("run timeout reached")
			return nil
		}

		cycleStart := time.Now()
		s.logger.Info().
			Dur("run_time", elapsed).
			Dur("timeout", s.opts.Timeout).
			Msg("starting cycle")

		if err := tick(ctx, cycleStart); err != nil {
			s.logger.Error().Err(err).Msg("data collection failure")
		}

		cycle := time.Since(cycleStart)
		s.logger.Debug().Dur("loop_time", cycle).Msg("cycle complete")

		if cycle >= s.opts.Interval {
			// No sleep: the next cycle starts immediately, cycles never
			// overlap.
			s.logger.Warn().Dur("loop_time", cycle).Msg("loop time greater than poll interval")
			continue
		}

		timer := time.NewTimer(s.opts.Interval - cycle)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
