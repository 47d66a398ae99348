package world

import (
	"fableweave.dev/internal/sim/behavior"
	"fableweave.dev/internal/sim/entity"
	"fableweave.dev/internal/sim/event"
	"fableweave.dev/internal/sim/fault"
)

// TickResult summarizes one tick for the driver.
type TickResult struct {
	Minute          uint64
	EntitiesUpdated int
	EventsEmitted   int
}

// Tick advances the clock by delta sim-minutes and runs one behavior
// pass over every active NPC in registration order. That fixed order,
// plus the single rand stream, makes replays reproduce event for event.
//
// A per-NPC failure is recorded as an error event and skipped; a
// referential-integrity violation halts the tick with CORRUPT_DATA.
func (w *World) Tick(deltaMinutes int) (TickResult, error) {
	if deltaMinutes <= 0 {
		return TickResult{}, fault.New(fault.InvalidArgument, "tick of %d minutes", deltaMinutes)
	}

	seqBefore := w.bus.LastSeq()
	if err := w.clock.Advance(deltaMinutes); err != nil {
		return TickResult{}, err
	}
	now := w.clock.Now()

	updated := 0
	// Snapshot the order slice: spawn listeners could grow it mid-pass,
	// and new entities only join the pass on the next tick.
	ids := append([]string(nil), w.order...)
	for _, id := range ids {
		npc, ok := w.entities[id].(*entity.NPC)
		if !ok || !npc.IsActive() {
			continue
		}

		fx, err := w.engine.Update(npc, w, now, w.rng)
		if err != nil {
			if fault.IsCorruptData(err) {
				// The world is inconsistent; continuing would simulate
				// on top of garbage.
				return TickResult{}, err
			}
			w.bus.Publish(event.KindError, now.Minute, npc.ID, map[string]any{
				"update_error": err.Error(),
			})
			continue
		}
		if err := w.applyEffects(npc, fx, now.Minute); err != nil {
			return TickResult{}, err
		}
		updated++
	}

	w.ticks++
	return TickResult{
		Minute:          now.Minute,
		EntitiesUpdated: updated,
		EventsEmitted:   int(w.bus.LastSeq() - seqBefore),
	}, nil
}

// applyEffects performs the registry-side half of an NPC update: roster
// moves, provision consumption, and event publication, in the engine's
// emission order.
func (w *World) applyEffects(npc *entity.NPC, fx behavior.Effects, minute uint64) error {
	if fx.EatAt != "" {
		if loc, ok := w.locationByID(fx.EatAt); ok && loc.Provisions > 0 {
			loc.Provisions--
		}
	}

	if fx.Move != nil {
		dest, ok := w.locationByID(fx.Move.To)
		if !ok {
			// The precomputed path references a location that has since
			// been removed.
			return fault.New(fault.CorruptData, "npc %s travel step to missing location %q", npc.ID, fx.Move.To)
		}
		if from, ok := w.locationByID(fx.Move.From); ok {
			from.RemoveFromRoster(npc.ID)
		}
		dest.AddToRoster(npc.ID)
		npc.LocationID = dest.ID

		w.bus.Publish(event.KindLocationExited, minute, npc.ID, map[string]any{
			"location": fx.Move.From,
		})
		w.bus.Publish(event.KindLocationEntered, minute, npc.ID, map[string]any{
			"location": dest.ID,
		})
	}

	for _, em := range fx.Emissions {
		w.bus.Publish(em.Kind, minute, em.Source, em.Payload)
	}
	return nil
}
