// Package gen is the content-generation collaborator: it loads JSON
// template tables and produces loosely-typed descriptive records for
// world creation and spawning. Records are a boundary type; only the
// world's entity factory turns them into living entities.
package gen

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

type Tables struct {
	Names       NameTable       `json:"names"`
	Races       []RaceDef       `json:"races"`
	Professions []ProfessionDef `json:"professions"`
	Locations   []LocationDef   `json:"locations"`
	Items       []ItemDef       `json:"items"`

	// Digest fingerprints the loaded tables; identical tables yield
	// identical digests regardless of file order on disk.
	Digest string `json:"-"`
}

type NameTable struct {
	Given    []string `json:"given"`
	Surnames []string `json:"surnames"`
}

type RaceDef struct {
	ID          string  `json:"id"`
	Disposition string  `json:"disposition"` // "friendly", "neutral", "hostile"
	MoodBias    float64 `json:"mood_bias,omitempty"`
}

type ProfessionDef struct {
	ID        string   `json:"id"`
	Workplace string   `json:"workplace"` // location archetype of the work site
	Crafts    []string `json:"crafts,omitempty"`
}

type LocationDef struct {
	Archetype  string   `json:"archetype"`
	NamePool   []string `json:"name_pool"`
	Tags       []string `json:"tags,omitempty"`
	Provisions int      `json:"provisions,omitempty"`
	Market     bool     `json:"market,omitempty"`
}

type ItemDef struct {
	ID   string `json:"id"`
	Kind string `json:"kind"` // "tool", "ware", "curio"
}

// tableFiles maps template file names to the top-level key each one
// fills. Every file must exist.
var tableFiles = map[string]string{
	"names.json":       "names",
	"races.json":       "races",
	"professions.json": "professions",
	"locations.json":   "locations",
	"items.json":       "items",
}

// LoadTables reads configs/templates/*.json from configDir, validates
// the combined document against schemas/templates.schema.json under
// schemaDir, and decodes it.
func LoadTables(configDir, schemaDir string) (Tables, error) {
	doc := map[string]any{}
	for file, key := range tableFiles {
		raw, err := os.ReadFile(filepath.Join(configDir, "templates", file))
		if err != nil {
			return Tables{}, err
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return Tables{}, fmt.Errorf("%s: %w", file, err)
		}
		doc[key] = v
	}

	schema, err := jsonschema.Compile(filepath.Join(schemaDir, "templates.schema.json"))
	if err != nil {
		return Tables{}, fmt.Errorf("compile template schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return Tables{}, fmt.Errorf("template tables: %w", err)
	}

	merged, err := json.Marshal(doc)
	if err != nil {
		return Tables{}, err
	}
	var t Tables
	if err := json.Unmarshal(merged, &t); err != nil {
		return Tables{}, err
	}
	t.Digest = digestTables(t)
	return t, nil
}

func digestTables(t Tables) string {
	h := sha256.New()
	w := func(ss ...string) {
		sorted := append([]string(nil), ss...)
		sort.Strings(sorted)
		for _, s := range sorted {
			h.Write([]byte(s))
			h.Write([]byte{0})
		}
	}
	w(t.Names.Given...)
	w(t.Names.Surnames...)
	for _, r := range t.Races {
		h.Write([]byte(r.ID + "|" + r.Disposition))
	}
	for _, p := range t.Professions {
		h.Write([]byte(p.ID + "|" + p.Workplace))
		w(p.Crafts...)
	}
	for _, l := range t.Locations {
		h.Write([]byte(l.Archetype))
		w(l.NamePool...)
		w(l.Tags...)
	}
	for _, it := range t.Items {
		h.Write([]byte(it.ID + "|" + it.Kind))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// CraftTable extracts the profession -> craftable items mapping the
// world config needs.
func (t Tables) CraftTable() map[string][]string {
	out := map[string][]string{}
	for _, p := range t.Professions {
		if len(p.Crafts) > 0 {
			out[p.ID] = append([]string(nil), p.Crafts...)
		}
	}
	return out
}
