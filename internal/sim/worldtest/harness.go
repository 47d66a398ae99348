// Package worldtest is a black-box harness for driving a fully
// generated world through exported APIs only: real template tables,
// real tuning, real snapshot codec. Tests here cover the seams between
// packages; the per-package tests cover the units.
package worldtest

import (
	"testing"

	"fableweave.dev/internal/gen"
	"fableweave.dev/internal/persistence/state"
	"fableweave.dev/internal/sim/simulator"
	"fableweave.dev/internal/sim/tuning"
	"fableweave.dev/internal/sim/world"
)

type Harness struct {
	T      *testing.T
	Source *gen.Generator
	Crafts map[string][]string
	W      *world.World
	Sim    *simulator.Simulator
}

func NewHarness(t *testing.T, seed int64, locations, npcs int) *Harness {
	t.Helper()

	tables, err := gen.LoadTables("../../../configs", "../../../schemas")
	if err != nil {
		t.Fatalf("load templates: %v", err)
	}
	source := gen.NewGenerator(tables)
	crafts := tables.CraftTable()

	w, err := world.CreateNew(world.Config{
		Seed:      seed,
		Locations: locations,
		NPCs:      npcs,
		Tune:      tuning.Defaults(),
		Crafts:    crafts,
	}, source)
	if err != nil {
		t.Fatalf("world.CreateNew: %v", err)
	}

	return &Harness{
		T:      t,
		Source: source,
		Crafts: crafts,
		W:      w,
		Sim:    simulator.New(w, nil),
	}
}

// StepFor advances n steps of the given minute width, failing the test
// on any step error.
func (h *Harness) StepFor(n, minutes int) {
	h.T.Helper()
	for i := 0; i < n; i++ {
		if _, err := h.Sim.Step(minutes); err != nil {
			h.T.Fatalf("step %d: %v", i+1, err)
		}
	}
}

// Roundtrip serializes the world and restores it into a fresh instance
// sharing the same content source.
func (h *Harness) Roundtrip() *world.World {
	h.T.Helper()
	mgr := state.NewManager(state.Config{Dir: h.T.TempDir(), Slots: 1})
	defer mgr.Close()

	b, err := mgr.Serialize(h.W)
	if err != nil {
		h.T.Fatalf("serialize: %v", err)
	}
	restored, err := state.Deserialize(b, h.Source, h.Crafts)
	if err != nil {
		h.T.Fatalf("deserialize: %v", err)
	}
	return restored
}
