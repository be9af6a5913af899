// Package simulation drives a swarm on a fixed cadence until an iteration
// cap is reached or the caller stops it.
package simulation

import (
	"context"
	"fmt"
	"log"
	"time"

	"pso-sim/internal/swarm"
)

// StopReason tells why Run returned.
type StopReason string

const (
	// StopIterationCap means the swarm completed Options.MaxIterations ticks.
	StopIterationCap StopReason = "iteration cap reached"
	// StopCancelled means the context was done before the cap.
	StopCancelled StopReason = "stopped by caller"
)

// TickInfo is handed to the observer after every tick.
type TickInfo struct {
	Iteration  int
	GlobalBest swarm.Best
	Improved   bool // global best got strictly better this tick
	Elapsed    time.Duration
}

// Options configures a Driver.
type Options struct {
	// Stop after this many ticks. Zero runs until the context is done.
	MaxIterations int

	// Real time between ticks. Zero steps as fast as possible.
	TickDuration time.Duration

	// Log a progress line every LogEvery ticks. Zero logs only start and finish.
	LogEvery int
	// Destination for progress lines. Nil disables logging.
	Logger *log.Logger
	// Log every particle at start and finish.
	Verbose bool

	// Called after every successful tick, on the driver's goroutine.
	OnTick func(TickInfo)

	// Optional landmark movement applied before each tick.
	Drift *LandmarkDrift
}

// Summary describes a finished run.
type Summary struct {
	Ticks        int
	Improvements int
	GlobalBest   swarm.Best
	Elapsed      time.Duration
	Reason       StopReason
}

func (s Summary) String() string {
	return fmt.Sprintf("%d ticks (%d improvements) in %s, %s, global best %s",
		s.Ticks, s.Improvements, s.Elapsed.Round(time.Millisecond), s.Reason, s.GlobalBest)
}

// Driver repeatedly steps a swarm. It owns the swarm for the duration of Run.
type Driver struct {
	swarm *swarm.Swarm
	opts  Options
}

// NewDriver creates a driver for an initialized swarm.
func NewDriver(s *swarm.Swarm, opts Options) (*Driver, error) {
	if s == nil || !s.Running() {
		return nil, fmt.Errorf("driver needs an initialized swarm")
	}
	if opts.MaxIterations < 0 {
		return nil, fmt.Errorf("max iterations must not be negative, got %d", opts.MaxIterations)
	}
	if opts.TickDuration < 0 {
		return nil, fmt.Errorf("tick duration must not be negative, got %s", opts.TickDuration)
	}
	return &Driver{swarm: s, opts: opts}, nil
}

// Run steps the swarm until the iteration cap or until ctx is done. A
// cancelled context is a normal stop and returns a nil error; a failing
// step returns its error together with the summary so far.
func (d *Driver) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	summary := Summary{}

	d.logf("Starting run: %s", d.swarm.Config())
	d.PrintState()

	var tick <-chan time.Time
	if d.opts.TickDuration > 0 {
		ticker := time.NewTicker(d.opts.TickDuration)
		defer ticker.Stop()
		tick = ticker.C
	}
	deltaTime := d.opts.TickDuration.Seconds()
	if deltaTime == 0 {
		deltaTime = 1.0 / 60
	}

	for d.opts.MaxIterations == 0 || summary.Ticks < d.opts.MaxIterations {
		if tick != nil {
			select {
			case <-ctx.Done():
				return d.finish(summary, start, StopCancelled), nil
			case <-tick:
			}
		} else if ctx.Err() != nil {
			return d.finish(summary, start, StopCancelled), nil
		}

		if d.opts.Drift != nil {
			if err := d.opts.Drift.Update(deltaTime); err != nil {
				return d.finish(summary, start, ""), err
			}
		}

		before := d.swarm.GlobalBest().Score
		if err := d.swarm.Step(); err != nil {
			return d.finish(summary, start, ""), err
		}
		summary.Ticks++

		info := TickInfo{
			Iteration:  d.swarm.Iteration(),
			GlobalBest: d.swarm.GlobalBest(),
			Elapsed:    time.Since(start),
		}
		info.Improved = info.GlobalBest.Score < before
		if info.Improved {
			summary.Improvements++
		}

		if d.opts.LogEvery > 0 && summary.Ticks%d.opts.LogEvery == 0 {
			d.logf("tick %d: global best %s inertia %.3f", info.Iteration, info.GlobalBest, d.swarm.InertiaFactor())
		}
		if d.opts.OnTick != nil {
			d.opts.OnTick(info)
		}
	}

	return d.finish(summary, start, StopIterationCap), nil
}

func (d *Driver) finish(summary Summary, start time.Time, reason StopReason) Summary {
	summary.GlobalBest = d.swarm.GlobalBest()
	summary.Elapsed = time.Since(start)
	summary.Reason = reason
	if reason != "" {
		d.logf("Run finished: %s", summary)
		d.PrintState()
	}
	return summary
}

// PrintState logs the global best and, when verbose, every particle.
func (d *Driver) PrintState() {
	if d.opts.Logger == nil {
		return
	}
	d.logf("--- Swarm state ---")
	d.logf("%s", d.swarm)
	if d.opts.Drift != nil {
		d.logf("%s", d.opts.Drift.landmarks)
	}
	if d.opts.Verbose {
		for i, p := range d.swarm.Particles() {
			d.logf("  %02d: %s", i, p)
		}
	}
}

func (d *Driver) logf(format string, args ...any) {
	if d.opts.Logger != nil {
		d.opts.Logger.Printf(format, args...)
	}
}
