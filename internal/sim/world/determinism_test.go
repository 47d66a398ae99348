package world_test

import (
	"testing"

	"fableweave.dev/internal/gen"
	"fableweave.dev/internal/sim/tuning"
	"fableweave.dev/internal/sim/world"
)

// Two worlds built from the same seed and driven by the same operation
// stream must agree on their state digest at every step.
func TestDeterminism_FixedOperationsSameDigest(t *testing.T) {
	tables, err := gen.LoadTables("../../../configs", "../../../schemas")
	if err != nil {
		t.Fatalf("load tables: %v", err)
	}

	build := func() *world.World {
		src := gen.NewGenerator(tables)
		w, err := world.CreateNew(world.Config{
			Seed:      4242,
			Locations: 6,
			NPCs:      15,
			Tune:      tuning.Defaults(),
			Crafts:    tables.CraftTable(),
		}, src)
		if err != nil {
			t.Fatalf("create world: %v", err)
		}
		return w
	}

	w1 := build()
	w2 := build()

	locID := w1.EntityIDs(true)[0]

	for step := 0; step < 80; step++ {
		// The same mutations at the same steps.
		if step == 10 {
			if _, err := w1.SpawnNPC(locID, []string{"baker"}); err != nil {
				t.Fatalf("spawn w1: %v", err)
			}
			if _, err := w2.SpawnNPC(locID, []string{"baker"}); err != nil {
				t.Fatalf("spawn w2: %v", err)
			}
		}
		if step == 30 {
			w1.RemoveEntity("npc_000003")
			w2.RemoveEntity("npc_000003")
		}

		if _, err := w1.Tick(45); err != nil {
			t.Fatalf("tick w1 step %d: %v", step, err)
		}
		if _, err := w2.Tick(45); err != nil {
			t.Fatalf("tick w2 step %d: %v", step, err)
		}

		d1 := w1.StateDigest()
		d2 := w2.StateDigest()
		if d1 != d2 {
			t.Fatalf("digest mismatch at step %d: %s vs %s", step, d1, d2)
		}
	}
}

// Restored worlds must stay in lockstep with each other from the
// restore point onward.
func TestDeterminism_RestoredTwinsAgree(t *testing.T) {
	tables, err := gen.LoadTables("../../../configs", "../../../schemas")
	if err != nil {
		t.Fatalf("load tables: %v", err)
	}
	src := gen.NewGenerator(tables)

	w, err := world.CreateNew(world.Config{
		Seed:      7,
		Locations: 4,
		NPCs:      8,
		Tune:      tuning.Defaults(),
		Crafts:    tables.CraftTable(),
	}, src)
	if err != nil {
		t.Fatalf("create world: %v", err)
	}
	for i := 0; i < 10; i++ {
		if _, err := w.Tick(30); err != nil {
			t.Fatalf("tick: %v", err)
		}
	}

	snap := w.ExportSnapshot()
	r1, err := world.FromSnapshot(snap, src, tables.CraftTable())
	if err != nil {
		t.Fatalf("restore r1: %v", err)
	}
	r2, err := world.FromSnapshot(snap, src, tables.CraftTable())
	if err != nil {
		t.Fatalf("restore r2: %v", err)
	}

	for i := 0; i < 40; i++ {
		if _, err := r1.Tick(30); err != nil {
			t.Fatalf("tick r1: %v", err)
		}
		if _, err := r2.Tick(30); err != nil {
			t.Fatalf("tick r2: %v", err)
		}
		if r1.StateDigest() != r2.StateDigest() {
			t.Fatalf("restored twins diverged at step %d", i)
		}
	}
}
