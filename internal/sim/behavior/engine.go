// Package behavior implements the per-NPC state machine. The engine
// mutates the NPC it is handed and reports everything else (location
// moves, events to publish) as effects for the registry to apply, so
// entity ownership stays with the world.
package behavior

import (
	"math/rand"

	"fableweave.dev/internal/sim/clock"
	"fableweave.dev/internal/sim/entity"
	"fableweave.dev/internal/sim/event"
	"fableweave.dev/internal/sim/fault"
	"fableweave.dev/internal/sim/tuning"
)

// WorldView is the read surface the engine needs from the registry.
type WorldView interface {
	// LocationByID resolves an active location, or reports absence.
	LocationByID(id string) (*entity.Location, bool)
	// Companions counts other active NPCs at the location.
	Companions(loc *entity.Location, excludeID string) int
	// WithinWorkingHours applies the profession's working window to the
	// current clock.
	WithinWorkingHours(profession string) bool
}

// Emission is an event proposal; the world publishes them in update
// order after applying effects.
type Emission struct {
	Kind    event.Kind
	Source  string
	Payload map[string]any
}

// Effects is everything one NPC update asks the registry to do.
type Effects struct {
	Emissions []Emission
	// Move is set when a travel step completed; the registry updates
	// both rosters and emits the exit/enter pair.
	Move *Move
	// EatAt consumes one provision unit at the named location.
	EatAt string
}

type Move struct {
	From string
	To   string
}

// Engine evaluates one NPC per call. It is stateless between calls
// apart from its configuration.
type Engine struct {
	tune tuning.Tuning
	// crafts maps profession -> items it can produce while working.
	crafts map[string][]string
}

func NewEngine(tune tuning.Tuning, crafts map[string][]string) *Engine {
	return &Engine{tune: tune, crafts: crafts}
}

// Update advances one active NPC by one tick. Transitions are evaluated
// in strict priority order; the first match wins. The returned error is
// either a halting CORRUPT_DATA (dangling location reference) or a
// per-NPC failure the caller records and skips past.
func (e *Engine) Update(npc *entity.NPC, view WorldView, now clock.Snapshot, rng *rand.Rand) (Effects, error) {
	var fx Effects

	// Needs decay runs every tick regardless of state.
	npc.Needs.Energy -= e.tune.EnergyDecay
	npc.Needs.Hunger += e.tune.HungerGrowth
	npc.ClampNeeds()

	loc, ok := view.LocationByID(npc.LocationID)
	if !ok {
		// The registry guarantees this cannot happen under correct
		// mutation discipline, so a dangling reference means the world
		// state itself is inconsistent.
		return fx, fault.New(fault.CorruptData, "npc %s references missing location %q", npc.ID, npc.LocationID)
	}

	prev := npc.State
	switch {
	case e.shouldSleep(npc):
		npc.State = entity.Sleeping
		npc.Needs.Energy += e.tune.SleepRecovery
		if npc.Needs.Energy >= e.tune.WakeThreshold {
			npc.State = entity.Idle
			npc.Remember(now.Minute, "rested", 2, e.tune.MemoryCap)
		}

	case npc.Needs.Hunger >= e.tune.EatThreshold && loc.HasFood():
		npc.State = entity.Eating
		npc.Needs.Hunger -= e.tune.EatRelief
		npc.Remember(now.Minute, "ate at "+loc.Name, e.tune.EatMoodGain, e.tune.MemoryCap)
		fx.EatAt = loc.ID

	case e.workingProfession(npc, view) != "":
		prof := e.workingProfession(npc, view)
		npc.State = entity.Working
		npc.Needs.Energy -= e.tune.WorkEnergy
		if item, ok := e.craftRoll(npc, prof, rng); ok {
			npc.Remember(now.Minute, "crafted "+item, 3, e.tune.MemoryCap)
			fx.Emissions = append(fx.Emissions, Emission{
				Kind:   event.KindItemCrafted,
				Source: npc.ID,
				Payload: map[string]any{
					"item":       item,
					"profession": prof,
					"location":   loc.ID,
				},
			})
		}

	case len(npc.TravelPlan) > 0:
		npc.State = entity.Traveling
		next := npc.TravelPlan[0]
		npc.TravelPlan = npc.TravelPlan[1:]
		fx.Move = &Move{From: loc.ID, To: next}
		if len(npc.TravelPlan) == 0 {
			npc.Remember(now.Minute, "arrived", 1, e.tune.MemoryCap)
		}

	default:
		if e.feelsSocial(npc, view, loc, rng) {
			npc.State = entity.Socializing
			npc.Remember(now.Minute, "chatted", 2, e.tune.MemoryCap)
		} else {
			npc.State = entity.Idle
		}
	}

	npc.Needs.Mood = npc.MoodFromMemory()
	npc.ClampNeeds()

	if npc.State != prev {
		fx.Emissions = append(fx.Emissions, Emission{
			Kind:   event.KindStateChanged,
			Source: npc.ID,
			Payload: map[string]any{
				"from": string(prev),
				"to":   string(npc.State),
			},
		})
	}
	return fx, nil
}

// shouldSleep covers both entering sleep at the low threshold and
// staying asleep until the wake threshold (hysteresis).
func (e *Engine) shouldSleep(npc *entity.NPC) bool {
	if npc.Needs.Energy <= e.tune.SleepThreshold {
		return true
	}
	return npc.State == entity.Sleeping && npc.Needs.Energy < e.tune.WakeThreshold
}

// workingProfession returns the first profession in declaration order
// whose working window is open, provided the NPC stands at its work
// site. NPCs without professions never qualify.
func (e *Engine) workingProfession(npc *entity.NPC, view WorldView) string {
	if npc.WorkSiteID == "" || npc.WorkSiteID != npc.LocationID {
		return ""
	}
	for _, p := range npc.Professions {
		if view.WithinWorkingHours(p) {
			return p
		}
	}
	return ""
}

// craftRoll decides whether a working tick produces an item. The base
// chance scales with the NPC's skill at the profession (5 is the
// midpoint of the 1..10 range).
func (e *Engine) craftRoll(npc *entity.NPC, prof string, rng *rand.Rand) (string, bool) {
	items := e.crafts[prof]
	skill := npc.Skill[prof]
	if skill == 0 {
		skill = 1
	}
	p := e.tune.CraftChance * float64(skill) / 5
	roll := rng.Float64()
	if len(items) == 0 || roll >= p {
		return "", false
	}
	return items[rng.Intn(len(items))], true
}

// feelsSocial weighs mood and company. Socializing needs at least one
// companion; a good mood makes it likelier.
func (e *Engine) feelsSocial(npc *entity.NPC, view WorldView, loc *entity.Location, rng *rand.Rand) bool {
	companions := view.Companions(loc, npc.ID)
	p := 0.15 + 0.4*npc.Needs.Mood/100
	if companions > 0 {
		p += 0.2
	}
	return rng.Float64() < p && companions > 0
}
