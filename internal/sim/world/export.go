package world

import (
	"encoding/json"
	"math/rand"

	"fableweave.dev/internal/persistence/snapshot"
	"fableweave.dev/internal/sim/behavior"
	"fableweave.dev/internal/sim/clock"
	"fableweave.dev/internal/sim/entity"
	"fableweave.dev/internal/sim/event"
	"fableweave.dev/internal/sim/fault"
)

// ExportSnapshot captures the whole world synchronously: clock, every
// entity active or inactive in registration order, counters, and the
// bounded event tail. The caller encodes and writes the result off the
// tick path.
func (w *World) ExportSnapshot() snapshot.SnapshotV1 {
	snap := snapshot.SnapshotV1{
		Seed:        w.seed,
		ClockMinute: w.clock.Minute(),
		Ticks:       w.ticks,
		Tune:        w.tune,
		Counters: snapshot.CountersV1{
			NextNPC:      w.nextNPC,
			NextLocation: w.nextLoc,
		},
	}

	for _, id := range w.order {
		switch e := w.entities[id].(type) {
		case *entity.NPC:
			snap.Entities = append(snap.Entities, snapshot.EntityV1{Kind: string(entity.KindNPC), NPC: exportNPC(e)})
		case *entity.Location:
			snap.Entities = append(snap.Entities, snapshot.EntityV1{Kind: string(entity.KindLocation), Location: exportLocation(e)})
		}
	}

	for _, ev := range w.bus.Recent(w.tune.SnapshotEventTail) {
		var payload json.RawMessage
		if ev.Payload != nil {
			payload, _ = json.Marshal(ev.Payload)
		}
		snap.EventTail = append(snap.EventTail, snapshot.EventV1{
			Seq:     ev.Seq,
			Kind:    string(ev.Kind),
			Minute:  ev.Minute,
			Source:  ev.Source,
			Payload: payload,
		})
	}
	return snap
}

// FromSnapshot rebuilds a world from decoded snapshot data, validating
// referential integrity before any of it becomes live. Location rosters
// are derived state and are rebuilt from NPC location references.
func FromSnapshot(snap snapshot.SnapshotV1, source ContentSource, crafts map[string][]string) (*World, error) {
	if err := snap.Tune.Validate(); err != nil {
		return nil, fault.Wrap(fault.CorruptData, err, "snapshot tuning")
	}

	w := &World{
		seed:   snap.Seed,
		tune:   snap.Tune,
		clock:  clock.New(snap.ClockMinute, clock.Window{StartHour: snap.Tune.WorkdayStartHour, EndHour: snap.Tune.WorkdayEndHour}),
		bus:    event.NewBus(snap.Tune.EventHistoryCap),
		source: source,
		engine: behavior.NewEngine(snap.Tune, crafts),
		// The rand stream cannot be captured; derive a fresh one from
		// seed and tick count so restored twins stay in lockstep with
		// each other.
		rng:      rand.New(rand.NewSource(snap.Seed ^ int64(snap.Ticks))),
		entities: map[string]entity.Entity{},
		nextNPC:  snap.Counters.NextNPC,
		nextLoc:  snap.Counters.NextLocation,
		ticks:    snap.Ticks,
	}

	for _, ev1 := range snap.Entities {
		switch {
		case ev1.NPC != nil:
			w.register(importNPC(ev1.NPC))
		case ev1.Location != nil:
			w.register(importLocation(ev1.Location))
		default:
			return nil, fault.New(fault.CorruptData, "entity without body (kind %q)", ev1.Kind)
		}
	}

	// Rebuild rosters and verify every live location reference.
	for _, id := range w.order {
		npc, ok := w.entities[id].(*entity.NPC)
		if !ok || !npc.IsActive() {
			continue
		}
		loc, ok := w.locationByID(npc.LocationID)
		if !ok {
			return nil, fault.New(fault.CorruptData, "npc %s references location %q which is missing or inactive", npc.ID, npc.LocationID)
		}
		loc.AddToRoster(npc.ID)
	}

	var tail []event.Event
	for _, ev1 := range snap.EventTail {
		var payload map[string]any
		if len(ev1.Payload) > 0 {
			if err := json.Unmarshal(ev1.Payload, &payload); err != nil {
				return nil, fault.Wrap(fault.CorruptData, err, "event %d payload", ev1.Seq)
			}
		}
		tail = append(tail, event.Event{
			Seq:     ev1.Seq,
			Kind:    event.Kind(ev1.Kind),
			Minute:  ev1.Minute,
			Source:  ev1.Source,
			Payload: payload,
		})
	}
	w.bus.Restore(tail)
	return w, nil
}

func exportNPC(n *entity.NPC) *snapshot.NPCV1 {
	v := &snapshot.NPCV1{
		ID:          n.ID,
		Active:      n.Active,
		Name:        n.Name,
		Race:        n.Race,
		Professions: append([]string(nil), n.Professions...),
		Energy:      n.Needs.Energy,
		Hunger:      n.Needs.Hunger,
		Mood:        n.Needs.Mood,
		State:       string(n.State),
		LocationID:  n.LocationID,
		WorkSiteID:  n.WorkSiteID,
		TravelPlan:  append([]string(nil), n.TravelPlan...),
	}
	if len(n.Skill) > 0 {
		v.Skill = make(map[string]int, len(n.Skill))
		for k, val := range n.Skill {
			v.Skill[k] = val
		}
	}
	for _, m := range n.Memory {
		v.Memory = append(v.Memory, snapshot.MemoryEntryV1{Minute: m.Minute, Note: m.Note, Weight: m.Weight})
	}
	return v
}

func importNPC(v *snapshot.NPCV1) *entity.NPC {
	n := entity.NewNPC(v.ID, v.Name, v.Race, v.Professions)
	n.Active = v.Active
	n.Needs = entity.Needs{Energy: v.Energy, Hunger: v.Hunger, Mood: v.Mood}
	n.State = entity.State(v.State)
	n.LocationID = v.LocationID
	n.WorkSiteID = v.WorkSiteID
	n.TravelPlan = append([]string(nil), v.TravelPlan...)
	for k, val := range v.Skill {
		n.Skill[k] = val
	}
	for _, m := range v.Memory {
		n.Memory = append(n.Memory, entity.MemoryEntry{Minute: m.Minute, Note: m.Note, Weight: m.Weight})
	}
	return n
}

func exportLocation(l *entity.Location) *snapshot.LocationV1 {
	return &snapshot.LocationV1{
		ID:         l.ID,
		Active:     l.Active,
		Name:       l.Name,
		Archetype:  l.Archetype,
		Weather:    l.Weather,
		MarketOpen: l.MarketOpen,
		Tags:       append([]string(nil), l.Tags...),
		Provisions: l.Provisions,
	}
}

func importLocation(v *snapshot.LocationV1) *entity.Location {
	l := entity.NewLocation(v.ID, v.Name, v.Archetype)
	l.Active = v.Active
	l.Weather = v.Weather
	l.MarketOpen = v.MarketOpen
	l.Tags = append([]string(nil), v.Tags...)
	l.Provisions = v.Provisions
	return l
}
