package ws

import (
	"sync"

	"fableweave.dev/internal/sim/clock"
	"fableweave.dev/internal/sim/entity"
	"fableweave.dev/internal/sim/event"
	"fableweave.dev/internal/sim/simulator"
)

// Gate serializes every touch of the simulation core behind one mutex.
// The tick driver steps through it and observer connections query
// through it, so the core itself stays single-writer with no internal
// locking. Reads hand out the registry's deep copies, which are safe to
// marshal after the lock is released.
type Gate struct {
	mu  sync.Mutex
	sim *simulator.Simulator
}

func NewGate(sim *simulator.Simulator) *Gate {
	return &Gate{sim: sim}
}

func (g *Gate) Step(minutes int) (simulator.StepSummary, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sim.Step(minutes)
}

func (g *Gate) Entity(id string) (entity.Entity, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sim.World().GetEntity(id)
}

func (g *Gate) Clock() clock.Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sim.World().Clock()
}

func (g *Gate) Recent(n int) []event.Event {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sim.World().Recent(n)
}

// Overview reports the identity fields of the world for the welcome
// frame.
func (g *Gate) Overview() (seed int64, tick uint64, entities int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	w := g.sim.World()
	return w.Seed(), w.Ticks(), len(w.EntityIDs(true))
}
