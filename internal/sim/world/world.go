// Package world is the entity registry and the owner of everything that
// makes up one running simulation: the clock, the event bus, and every
// entity. All mutation goes through its exported operations; external
// code only ever sees copies.
package world

import (
	"math/rand"

	"fableweave.dev/internal/gen"
	"fableweave.dev/internal/sim/behavior"
	"fableweave.dev/internal/sim/clock"
	"fableweave.dev/internal/sim/entity"
	"fableweave.dev/internal/sim/event"
	"fableweave.dev/internal/sim/fault"
	"fableweave.dev/internal/sim/tuning"
)

// DefaultStartMinute is the fixed clock start for fresh worlds:
// 06:00 on day 1 of year 1.
const DefaultStartMinute = 6 * clock.MinutesPerHour

// ContentSource is the generation collaborator. Implementations must be
// idempotent: identical requests yield identical records.
type ContentSource interface {
	Generate(gen.Request) (gen.Result, error)
	NPCRecord(seed int64, professions []string) (gen.Record, error)
}

type Config struct {
	Seed      int64
	Locations int
	NPCs      int

	// StartMinute overrides DefaultStartMinute when non-zero.
	StartMinute uint64

	Tune tuning.Tuning

	// Crafts maps profession -> producible items, typically
	// gen.Tables.CraftTable().
	Crafts map[string][]string
}

// World owns all entities exclusively. It is not safe for concurrent
// use: callers hosting it in a multi-threaded process must serialize
// access behind a single writer.
type World struct {
	seed int64
	tune tuning.Tuning

	clock *clock.Clock
	bus   *event.Bus
	rng   *rand.Rand

	source ContentSource
	engine *behavior.Engine

	entities map[string]entity.Entity
	order    []string // registration order; fixes the tick pass order

	nextNPC uint64
	nextLoc uint64
	ticks   uint64
}

// CreateNew builds a world from generated content: locations first,
// then NPCs, registered in generation order so replays see the same
// registry order.
func CreateNew(cfg Config, source ContentSource) (*World, error) {
	if err := cfg.Tune.Validate(); err != nil {
		return nil, fault.Wrap(fault.InvalidArgument, err, "world config")
	}
	start := cfg.StartMinute
	if start == 0 {
		start = DefaultStartMinute
	}

	w := &World{
		seed:     cfg.Seed,
		tune:     cfg.Tune,
		clock:    clock.New(start, clock.Window{StartHour: cfg.Tune.WorkdayStartHour, EndHour: cfg.Tune.WorkdayEndHour}),
		bus:      event.NewBus(cfg.Tune.EventHistoryCap),
		rng:      rand.New(rand.NewSource(cfg.Seed)),
		source:   source,
		engine:   behavior.NewEngine(cfg.Tune, cfg.Crafts),
		entities: map[string]entity.Entity{},
	}

	res, err := source.Generate(gen.Request{Seed: cfg.Seed, Locations: cfg.Locations, NPCs: cfg.NPCs})
	if err != nil {
		return nil, fault.Wrap(fault.InvalidArgument, err, "generate content")
	}

	locIDs := make([]string, 0, len(res.Locations))
	for _, rec := range res.Locations {
		loc, err := LocationFromRecord(rec, w.newLocationID())
		if err != nil {
			return nil, err
		}
		w.register(loc)
		locIDs = append(locIDs, loc.ID)
	}
	for _, rec := range res.NPCs {
		npc, err := NPCFromRecord(rec, w.newNPCID(), locIDs)
		if err != nil {
			return nil, err
		}
		w.register(npc)
		w.placeNPC(npc, npc.LocationID)
	}

	w.bus.Publish(event.KindWorldCreated, w.clock.Minute(), "", map[string]any{
		"seed":      cfg.Seed,
		"locations": len(res.Locations),
		"npcs":      len(res.NPCs),
	})
	return w, nil
}

func (w *World) register(e entity.Entity) {
	w.entities[e.EntityID()] = e
	w.order = append(w.order, e.EntityID())
}

// placeNPC sets the bidirectional NPC<->Location link. The location
// must already be registered.
func (w *World) placeNPC(npc *entity.NPC, locID string) {
	npc.LocationID = locID
	if loc, ok := w.locationByID(locID); ok {
		loc.AddToRoster(npc.ID)
	}
}

func (w *World) newNPCID() string {
	w.nextNPC++
	return npcID(w.nextNPC)
}

func (w *World) newLocationID() string {
	w.nextLoc++
	return locID(w.nextLoc)
}

func npcID(n uint64) string { return fmtID("npc", n) }
func locID(n uint64) string { return fmtID("loc", n) }

// Clock returns the current simulated time.
func (w *World) Clock() clock.Snapshot { return w.clock.Now() }

// Ticks reports how many tick passes have run.
func (w *World) Ticks() uint64 { return w.ticks }

func (w *World) Seed() int64 { return w.seed }

// Recent exposes the event history tail read-only.
func (w *World) Recent(n int) []event.Event { return w.bus.Recent(n) }

// Subscribe registers a global event listener.
func (w *World) Subscribe(l event.Listener) { w.bus.Subscribe(l) }

// SubscribeKind registers a kind-scoped event listener.
func (w *World) SubscribeKind(k event.Kind, l event.Listener) { w.bus.SubscribeKind(k, l) }

// SetProfessionWindow adjusts one profession's working hours.
func (w *World) SetProfessionWindow(profession string, win clock.Window) {
	w.clock.SetProfessionWindow(profession, win)
}

// ScheduleAt exposes one-shot clock callbacks to collaborators.
func (w *World) ScheduleAt(minute uint64, fn clock.Callback) uint64 {
	return w.clock.ScheduleAt(minute, fn)
}

// ScheduleEvery exposes recurring clock callbacks to collaborators.
func (w *World) ScheduleEvery(start, interval uint64, fn clock.Callback) uint64 {
	return w.clock.ScheduleEvery(start, interval, fn)
}

// --- behavior.WorldView ---

func (w *World) locationByID(id string) (*entity.Location, bool) {
	loc, ok := w.entities[id].(*entity.Location)
	if !ok || !loc.IsActive() {
		return nil, false
	}
	return loc, true
}

func (w *World) npcByID(id string) (*entity.NPC, bool) {
	npc, ok := w.entities[id].(*entity.NPC)
	if !ok || !npc.IsActive() {
		return nil, false
	}
	return npc, true
}

// LocationByID implements behavior.WorldView.
func (w *World) LocationByID(id string) (*entity.Location, bool) {
	return w.locationByID(id)
}

// Companions implements behavior.WorldView.
func (w *World) Companions(loc *entity.Location, excludeID string) int {
	n := 0
	for _, id := range loc.Roster() {
		if id == excludeID {
			continue
		}
		if _, ok := w.npcByID(id); ok {
			n++
		}
	}
	return n
}

// WithinWorkingHours implements behavior.WorldView.
func (w *World) WithinWorkingHours(profession string) bool {
	return w.clock.WithinWorkingHours(profession)
}
