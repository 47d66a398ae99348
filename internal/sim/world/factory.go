package world

import (
	"fmt"

	"fableweave.dev/internal/gen"
	"fableweave.dev/internal/sim/entity"
	"fableweave.dev/internal/sim/fault"
)

// The entity factory: pure conversions from descriptive records to
// living entities. No side effects, no registry access; location
// references arrive as indices into the id list built during creation.

func NPCFromRecord(rec gen.Record, id string, locIDs []string) (*entity.NPC, error) {
	name := recString(rec, "name")
	race := recString(rec, "race")
	if name == "" || race == "" {
		return nil, fault.New(fault.InvalidArgument, "npc record missing name or race")
	}

	npc := entity.NewNPC(id, name, race, recStrings(rec, "professions"))

	if skills, ok := rec["skill"].(map[string]any); ok {
		for prof, v := range skills {
			if f, ok := v.(float64); ok {
				npc.Skill[prof] = int(f)
			}
		}
	}
	if e, ok := recFloat(rec, "energy"); ok {
		npc.Needs.Energy = e
	}
	if h, ok := recFloat(rec, "hunger"); ok {
		npc.Needs.Hunger = h
	}
	if bias, ok := recFloat(rec, "mood_bias"); ok {
		npc.Needs.Mood += bias
	}
	npc.ClampNeeds()

	if home, ok := recIndex(rec, "home_index", len(locIDs)); ok {
		npc.LocationID = locIDs[home]
	}
	if work, ok := recIndex(rec, "work_index", len(locIDs)); ok {
		npc.WorkSiteID = locIDs[work]
	}
	return npc, nil
}

func LocationFromRecord(rec gen.Record, id string) (*entity.Location, error) {
	name := recString(rec, "name")
	archetype := recString(rec, "archetype")
	if name == "" || archetype == "" {
		return nil, fault.New(fault.InvalidArgument, "location record missing name or archetype")
	}

	loc := entity.NewLocation(id, name, archetype)
	loc.Tags = recStrings(rec, "tags")
	if p, ok := recFloat(rec, "provisions"); ok {
		loc.Provisions = int(p)
	}
	if m, ok := rec["market"].(bool); ok {
		loc.MarketOpen = m
	}
	return loc, nil
}

// --- record field helpers ---
//
// Records cross a loose boundary: numbers may arrive as int or float64
// depending on whether the record came straight from the generator or
// through a JSON round trip.

func recString(rec gen.Record, key string) string {
	s, _ := rec[key].(string)
	return s
}

func recStrings(rec gen.Record, key string) []string {
	switch v := rec[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func recFloat(rec gen.Record, key string) (float64, bool) {
	switch v := rec[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

func recIndex(rec gen.Record, key string, limit int) (int, bool) {
	f, ok := recFloat(rec, key)
	if !ok {
		return 0, false
	}
	i := int(f)
	if i < 0 || i >= limit {
		return 0, false
	}
	return i, true
}

func fmtID(prefix string, n uint64) string {
	return fmt.Sprintf("%s_%06d", prefix, n)
}
