package world

import (
	"fableweave.dev/internal/sim/entity"
	"fableweave.dev/internal/sim/event"
	"fableweave.dev/internal/sim/fault"
)

// GetEntity returns a read view (deep copy) of an active entity.
func (w *World) GetEntity(id string) (entity.Entity, error) {
	e, ok := w.entities[id]
	if !ok || !e.IsActive() {
		return nil, fault.New(fault.NotFound, "entity %q", id)
	}
	switch v := e.(type) {
	case *entity.NPC:
		return v.Clone(), nil
	case *entity.Location:
		return v.Clone(), nil
	}
	return nil, fault.New(fault.NotFound, "entity %q has unknown kind", id)
}

// GetNPC is GetEntity narrowed to NPCs.
func (w *World) GetNPC(id string) (*entity.NPC, error) {
	npc, ok := w.npcByID(id)
	if !ok {
		return nil, fault.New(fault.NotFound, "npc %q", id)
	}
	return npc.Clone(), nil
}

// GetLocation is GetEntity narrowed to Locations.
func (w *World) GetLocation(id string) (*entity.Location, error) {
	loc, ok := w.locationByID(id)
	if !ok {
		return nil, fault.New(fault.NotFound, "location %q", id)
	}
	return loc.Clone(), nil
}

// EntityIDs returns all ids in registration order, active first
// filtering optional.
func (w *World) EntityIDs(activeOnly bool) []string {
	out := make([]string, 0, len(w.order))
	for _, id := range w.order {
		if activeOnly && !w.entities[id].IsActive() {
			continue
		}
		out = append(out, id)
	}
	return out
}

// SpawnNPC creates one NPC at the given location, pulling a fresh
// descriptive record from the generation collaborator. The spawn seed
// mixes the world seed with the id counter, so a given world produces
// the same spawn sequence on replay.
func (w *World) SpawnNPC(locationID string, professions []string) (*entity.NPC, error) {
	if locationID == "" {
		return nil, fault.New(fault.InvalidArgument, "empty location id in spawn request")
	}
	loc, ok := w.locationByID(locationID)
	if !ok {
		return nil, fault.New(fault.NotFound, "location %q", locationID)
	}

	id := w.newNPCID()
	rec, err := w.source.NPCRecord(w.seed+int64(w.nextNPC), professions)
	if err != nil {
		return nil, fault.Wrap(fault.InvalidArgument, err, "spawn record")
	}
	npc, err := NPCFromRecord(rec, id, nil)
	if err != nil {
		return nil, err
	}
	w.register(npc)
	w.placeNPC(npc, loc.ID)
	// Work site: the spawn location if it matches no better option; a
	// spawned NPC works wherever it was placed.
	npc.WorkSiteID = loc.ID

	w.bus.Publish(event.KindNPCSpawned, w.clock.Minute(), npc.ID, map[string]any{
		"location":    loc.ID,
		"name":        npc.Name,
		"race":        npc.Race,
		"professions": append([]string(nil), npc.Professions...),
	})
	return npc.Clone(), nil
}

// RemoveEntity soft-deletes: the entity goes inactive and leaves any
// roster, but stays in the map so event history references remain
// resolvable. Removing an already-inactive or unknown id is a no-op.
func (w *World) RemoveEntity(id string) {
	e, ok := w.entities[id]
	if !ok || !e.IsActive() {
		return
	}
	if npc, ok := e.(*entity.NPC); ok {
		if loc, ok := w.locationByID(npc.LocationID); ok {
			loc.RemoveFromRoster(npc.ID)
		}
		npc.LocationID = ""
	}
	e.Deactivate()
	w.bus.Publish(event.KindEntityRemoved, w.clock.Minute(), id, map[string]any{
		"kind": string(e.EntityKind()),
	})
}

// RequestTravel precomputes a path for the NPC and arms its travel
// target; the behavior engine consumes one step per tick. Paths walk
// the registry's location ring in registration order.
func (w *World) RequestTravel(npcID, destID string) error {
	npc, ok := w.npcByID(npcID)
	if !ok {
		return fault.New(fault.NotFound, "npc %q", npcID)
	}
	if _, ok := w.locationByID(destID); !ok {
		return fault.New(fault.NotFound, "location %q", destID)
	}
	if npc.LocationID == destID {
		return fault.New(fault.InvalidArgument, "npc %s is already at %s", npcID, destID)
	}
	path := w.pathBetween(npc.LocationID, destID)
	if path == nil {
		return fault.New(fault.CorruptData, "no path from %q to %q", npc.LocationID, destID)
	}
	npc.TravelPlan = path
	return nil
}

// pathBetween lists the active locations between from and to, walking
// forward through registration order and wrapping at the end. The
// result includes to and excludes from.
func (w *World) pathBetween(from, to string) []string {
	ring := make([]string, 0, len(w.order))
	for _, id := range w.order {
		if _, ok := w.locationByID(id); ok {
			ring = append(ring, id)
		}
	}
	start := -1
	for i, id := range ring {
		if id == from {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}
	var path []string
	for step := 1; step <= len(ring); step++ {
		id := ring[(start+step)%len(ring)]
		path = append(path, id)
		if id == to {
			return path
		}
	}
	return nil
}
