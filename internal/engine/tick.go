// Package engine runs a Last Hope session: the world state, the fixed daily
// order of every system, player choices and actions, and the real-time loop
// that advances days on its own.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Kalaith/last-hope/internal/world"
)

// DaysPerWeek sets when OnWeek fires.
const DaysPerWeek = 7

const pausePoll = 100 * time.Millisecond

// Engine drives a Simulation forward in real time and dispatches a callback
// for every day that passes, whether the loop advanced it or a player did.
type Engine struct {
	Sim      *Simulation
	Interval time.Duration // Base interval between days

	mu      sync.Mutex
	speed   float64 // Multiplier: 1.0 = real-time, 0 = paused
	running bool
	ended   bool
	stop    chan struct{}
	reports chan DayReport

	// Callbacks, populated during setup. They run on the loop goroutine.
	OnDay  func(rep DayReport)
	OnWeek func(day int)
	OnEnd  func(rep DayReport) // once, when the run reaches an ending
}

// NewEngine creates a paused engine and attaches it to sim.
func NewEngine(sim *Simulation) *Engine {
	e := &Engine{
		Sim:      sim,
		Interval: time.Second,
		reports:  make(chan DayReport, 64),
	}
	sim.mu.Lock()
	sim.OnDayReport = e.observe
	e.ended = sim.state.Ended()
	sim.mu.Unlock()
	return e
}

// observe runs with the simulation lock held, so it only queues.
func (e *Engine) observe(rep DayReport) {
	select {
	case e.reports <- rep:
	default:
		slog.Warn("day report dropped", "day", rep.Day)
	}
}

// Speed returns the current speed multiplier.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// SetSpeed changes the multiplier. 0 pauses autoplay without stopping the loop.
func (e *Engine) SetSpeed(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if v < 0 {
		v = 0
	}
	e.speed = v
}

// Running reports whether Run is in progress.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

func (e *Engine) autoplay() (time.Duration, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.speed <= 0 || e.ended {
		return pausePoll, false
	}
	return time.Duration(float64(e.Interval) / e.speed), true
}

// Run blocks until ctx is cancelled or Stop is called. While the speed is
// above zero it advances one day per interval.
func (e *Engine) Run(ctx context.Context) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.stop = make(chan struct{})
	stop := e.stop
	e.mu.Unlock()

	defer func() {
		e.drain()
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
		slog.Info("simulation engine stopped", "day", e.Sim.Day())
	}()

	slog.Info("simulation engine started", "day", e.Sim.Day(), "speed", e.Speed())
	for {
		e.settle()
		wait, advance := e.autoplay()
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-stop:
			t.Stop()
			return
		case rep := <-e.reports:
			t.Stop()
			e.dispatch(rep)
		case <-t.C:
			if advance {
				e.step()
			}
		}
	}
}

// Stop halts the loop.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running && e.stop != nil {
		close(e.stop)
		e.stop = nil
	}
}

// step advances one day. Its report arrives through observe.
func (e *Engine) step() {
	if _, err := e.Sim.AdvanceDay(); err != nil && !errors.Is(err, ErrRunEnded) {
		slog.Error("advance day", "error", err)
	}
}

// drain dispatches reports still queued so no day goes unannounced.
func (e *Engine) drain() {
	for {
		select {
		case rep := <-e.reports:
			e.dispatch(rep)
		default:
			return
		}
	}
}

// settle flushes queued days, then catches an ending reached outside a day,
// such as resolving a story event.
func (e *Engine) settle() {
	e.drain()
	e.mu.Lock()
	ended := e.ended
	e.mu.Unlock()
	if ended {
		return
	}
	e.Sim.mu.Lock()
	rep := DayReport{Day: e.Sim.state.Day, Ending: e.Sim.state.Ending}
	e.Sim.mu.Unlock()
	if rep.Ending != world.Ongoing {
		e.dispatchEnd(rep)
	}
}

func (e *Engine) dispatch(rep DayReport) {
	if e.OnDay != nil {
		e.OnDay(rep)
	}
	if rep.Day%DaysPerWeek == 0 && e.OnWeek != nil {
		e.OnWeek(rep.Day)
	}
	if rep.Ending != world.Ongoing {
		e.dispatchEnd(rep)
	}
}

func (e *Engine) dispatchEnd(rep DayReport) {
	e.mu.Lock()
	first := !e.ended
	e.ended = true
	e.mu.Unlock()
	if first && e.OnEnd != nil {
		e.OnEnd(rep)
	}
}
