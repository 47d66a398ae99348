package gen

import (
	"fmt"
	"math/rand"
)

// Record is a loosely-typed descriptive record, the generator's only
// output shape. Consumers must not assume fields beyond what the entity
// factory documents.
type Record map[string]any

type Request struct {
	Seed      int64
	Locations int
	NPCs      int
}

type Result struct {
	Locations []Record
	NPCs      []Record
}

// Generator produces descriptive content from template tables. It holds
// no mutable state: Generate derives everything from the request seed,
// so identical requests always yield identical results.
type Generator struct {
	tables Tables
}

func NewGenerator(tables Tables) *Generator {
	return &Generator{tables: tables}
}

func (g *Generator) Tables() Tables { return g.tables }

// Generate builds location records first, then NPC records, drawing
// from a private rand stream seeded by the request. NPC home and work
// references are expressed by index into the location list, because
// entity ids are assigned later by the registry.
func (g *Generator) Generate(req Request) (Result, error) {
	if req.Locations < 0 || req.NPCs < 0 {
		return Result{}, fmt.Errorf("negative counts in request: %+v", req)
	}
	if req.NPCs > 0 && req.Locations == 0 {
		return Result{}, fmt.Errorf("cannot place %d npcs with zero locations", req.NPCs)
	}
	rng := rand.New(rand.NewSource(req.Seed))

	var res Result
	archetypes := make([]string, 0, req.Locations)
	for i := 0; i < req.Locations; i++ {
		def := g.tables.Locations[rng.Intn(len(g.tables.Locations))]
		name := def.Archetype
		if len(def.NamePool) > 0 {
			name = def.NamePool[rng.Intn(len(def.NamePool))]
		}
		res.Locations = append(res.Locations, Record{
			"name":       name,
			"archetype":  def.Archetype,
			"tags":       append([]string(nil), def.Tags...),
			"provisions": def.Provisions,
			"market":     def.Market,
		})
		archetypes = append(archetypes, def.Archetype)
	}

	for i := 0; i < req.NPCs; i++ {
		race := g.tables.Races[rng.Intn(len(g.tables.Races))]
		prof := g.tables.Professions[rng.Intn(len(g.tables.Professions))]
		professions := []string{prof.ID}
		// Occasional second trade.
		if rng.Float64() < 0.2 {
			second := g.tables.Professions[rng.Intn(len(g.tables.Professions))]
			if second.ID != prof.ID {
				professions = append(professions, second.ID)
			}
		}

		home := rng.Intn(req.Locations)
		work := home
		for idx, a := range archetypes {
			if a == prof.Workplace {
				work = idx
				break
			}
		}

		res.NPCs = append(res.NPCs, Record{
			"name":        g.npcName(rng),
			"race":        race.ID,
			"disposition": race.Disposition,
			"mood_bias":   race.MoodBias,
			"professions": professions,
			"skill":       map[string]any{prof.ID: float64(1 + rng.Intn(10))},
			"home_index":  home,
			"work_index":  work,
			"energy":      float64(60 + rng.Intn(41)),
			"hunger":      float64(rng.Intn(40)),
		})
	}
	return res, nil
}

// NPCRecord produces a single descriptive record for on-demand
// spawning. Professions may be preset by the caller; everything else is
// drawn from the tables. Deterministic for a given seed.
func (g *Generator) NPCRecord(seed int64, professions []string) (Record, error) {
	rng := rand.New(rand.NewSource(seed))
	race := g.tables.Races[rng.Intn(len(g.tables.Races))]
	if len(professions) == 0 {
		professions = []string{g.tables.Professions[rng.Intn(len(g.tables.Professions))].ID}
	}
	skill := map[string]any{}
	for _, p := range professions {
		skill[p] = float64(1 + rng.Intn(10))
	}
	return Record{
		"name":        g.npcName(rng),
		"race":        race.ID,
		"disposition": race.Disposition,
		"mood_bias":   race.MoodBias,
		"professions": append([]string(nil), professions...),
		"skill":       skill,
		"energy":      float64(60 + rng.Intn(41)),
		"hunger":      float64(rng.Intn(40)),
	}, nil
}

func (g *Generator) npcName(rng *rand.Rand) string {
	given := g.tables.Names.Given[rng.Intn(len(g.tables.Names.Given))]
	sur := g.tables.Names.Surnames[rng.Intn(len(g.tables.Names.Surnames))]
	return given + " " + sur
}
