// Package engine provides the tick loop and the bot it drives.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// pausePoll is how often a paused engine checks whether it was resumed.
const pausePoll = 100 * time.Millisecond

// Engine drives the bot forward one tick at a time.
type Engine struct {
	Interval   time.Duration // base tick interval
	SweepEvery uint64        // ticks between OnSweep calls, 0 = never

	// Callbacks, populated during setup.
	OnTick  func(ctx context.Context, tick uint64) // every tick
	OnSweep func(ctx context.Context, tick uint64) // every SweepEvery ticks, after OnTick

	mu      sync.Mutex
	tick    uint64  // monotonic, never resets
	speed   float64 // 1.0 = real time, 0 = paused
	running bool
}

// NewEngine creates an engine that resumes counting after tick start.
func NewEngine(interval time.Duration, start uint64) *Engine {
	return &Engine{
		Interval: interval,
		tick:     start,
		speed:    1.0,
	}
}

// Run drives ticks until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	e.setRunning(true)
	defer e.setRunning(false)
	slog.Info("tick engine started", "tick", e.Tick(), "interval", e.Interval)

	for {
		speed := e.Speed()
		if speed <= 0 {
			if !sleep(ctx, pausePoll) {
				break
			}
			continue
		}

		start := time.Now()
		e.Step(ctx)

		// Sleep for the remainder of the tick interval, adjusted for speed.
		target := time.Duration(float64(e.Interval) / speed)
		if elapsed := time.Since(start); elapsed < target {
			if !sleep(ctx, target-elapsed) {
				break
			}
		} else if ctx.Err() != nil {
			break
		}
	}

	slog.Info("tick engine stopped", "tick", e.Tick())
}

// Step advances by one tick and runs the callbacks due on it.
func (e *Engine) Step(ctx context.Context) uint64 {
	e.mu.Lock()
	e.tick++
	tick := e.tick
	e.mu.Unlock()

	if e.OnTick != nil {
		e.OnTick(ctx, tick)
	}
	if e.SweepEvery > 0 && tick%e.SweepEvery == 0 && e.OnSweep != nil {
		e.OnSweep(ctx, tick)
	}
	return tick
}

// Tick returns the last tick started.
func (e *Engine) Tick() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tick
}

// Speed returns the speed multiplier.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// SetSpeed changes the speed multiplier. Zero pauses the engine.
func (e *Engine) SetSpeed(speed float64) {
	e.mu.Lock()
	e.speed = speed
	e.mu.Unlock()
}

// Running reports whether Run is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

func (e *Engine) setRunning(v bool) {
	e.mu.Lock()
	e.running = v
	e.mu.Unlock()
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
