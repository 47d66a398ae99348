// Package simulator is the thin driver over a world: single steps, and
// a cooperative multi-step run loop. It owns no simulation state of its
// own, only observer registrations.
package simulator

import (
	"context"
	"fmt"
	"log"

	"fableweave.dev/internal/sim/fault"
	"fableweave.dev/internal/sim/world"
)

// Observer is notified after each completed step. Failures (including
// panics) are logged and never halt the run.
type Observer func(StepSummary)

type StepSummary struct {
	Step            int    `json:"step"`
	Minute          uint64 `json:"minute"`
	EntitiesUpdated int    `json:"entities_updated"`
	EventsEmitted   int    `json:"events_emitted"`
}

type RunSummary struct {
	StepsDone       int
	EntitiesUpdated int
	EventsEmitted   int
}

type Simulator struct {
	w      *world.World
	logger *log.Logger

	observers []Observer
	steps     int
}

func New(w *world.World, logger *log.Logger) *Simulator {
	return &Simulator{w: w, logger: logger}
}

func (s *Simulator) World() *world.World { return s.w }

func (s *Simulator) AddObserver(fn Observer) {
	s.observers = append(s.observers, fn)
}

// Step advances the world by one synchronous tick and reports what
// changed.
func (s *Simulator) Step(minutes int) (StepSummary, error) {
	res, err := s.w.Tick(minutes)
	if err != nil {
		return StepSummary{}, err
	}
	s.steps++
	sum := StepSummary{
		Step:            s.steps,
		Minute:          res.Minute,
		EntitiesUpdated: res.EntitiesUpdated,
		EventsEmitted:   res.EventsEmitted,
	}
	for _, fn := range s.observers {
		s.notify(fn, sum)
	}
	return sum, nil
}

func (s *Simulator) notify(fn Observer, sum StepSummary) {
	defer func() {
		if r := recover(); r != nil && s.logger != nil {
			s.logger.Printf("step observer panic: %v", r)
		}
	}()
	fn(sum)
}

// Run performs steps ticks of minutesPerStep each. A tick is atomic, so
// cancellation is checked between ticks only and surfaces as CANCELLED
// alongside the partial summary of the completed steps. Pacing is the
// caller's concern; Run never sleeps.
func (s *Simulator) Run(ctx context.Context, minutesPerStep, steps int) (RunSummary, error) {
	if minutesPerStep <= 0 || steps <= 0 {
		return RunSummary{}, fault.New(fault.InvalidArgument, "run of %d steps x %d minutes", steps, minutesPerStep)
	}
	var total RunSummary
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return total, fault.Wrap(fault.Cancelled, err, "run stopped after %d/%d steps", total.StepsDone, steps)
		}
		sum, err := s.Step(minutesPerStep)
		if err != nil {
			return total, fmt.Errorf("step %d: %w", i+1, err)
		}
		total.StepsDone++
		total.EntitiesUpdated += sum.EntitiesUpdated
		total.EventsEmitted += sum.EventsEmitted
	}
	return total, nil
}
