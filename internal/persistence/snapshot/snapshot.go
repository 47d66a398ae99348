// Package snapshot defines the versioned on-disk form of a world and
// its two interchangeable encodings: verbose JSON for hand editing and
// gob for compact full-fidelity saves. Either body may be wrapped with
// zstd. A plain-text JSON header line in front of the body makes every
// snapshot self-describing.
package snapshot

import (
	"encoding/json"

	"fableweave.dev/internal/sim/tuning"
)

// FormatVersion is the only snapshot version this build reads or
// writes.
const FormatVersion = 1

type Encoding string

const (
	EncodingJSON Encoding = "json"
	EncodingGob  Encoding = "gob"
)

type Compression string

const (
	CompressionNone Compression = "none"
	CompressionZstd Compression = "zstd"
)

type Header struct {
	Version     int         `json:"version"`
	Encoding    Encoding    `json:"encoding"`
	Compression Compression `json:"compression"`
	Minute      uint64      `json:"minute"`
	Ticks       uint64      `json:"ticks"`
	Seed        int64       `json:"seed"`
}

type SnapshotV1 struct {
	Header Header `json:"header"`

	Seed        int64  `json:"seed"`
	ClockMinute uint64 `json:"clock_minute"`
	Ticks       uint64 `json:"ticks"`

	// Effective tuning at save time, captured so a resume behaves like
	// the world that was saved even if tuning.yaml changed since.
	Tune tuning.Tuning `json:"tuning"`

	// Entities in registration order, active and inactive, each tagged
	// by kind. Registration order is part of the state: it fixes the
	// tick pass order.
	Entities []EntityV1 `json:"entities"`

	// EventTail is a bounded trailing slice of the event history.
	EventTail []EventV1 `json:"event_tail,omitempty"`

	Counters CountersV1 `json:"counters"`
}

type EntityV1 struct {
	Kind     string      `json:"kind"`
	NPC      *NPCV1      `json:"npc,omitempty"`
	Location *LocationV1 `json:"location,omitempty"`
}

type NPCV1 struct {
	ID     string `json:"id"`
	Active bool   `json:"active"`
	Name   string `json:"name"`
	Race   string `json:"race"`

	Professions []string       `json:"professions,omitempty"`
	Skill       map[string]int `json:"skill,omitempty"`

	Energy float64 `json:"energy"`
	Hunger float64 `json:"hunger"`
	Mood   float64 `json:"mood"`

	State      string   `json:"state"`
	LocationID string   `json:"location_id,omitempty"`
	WorkSiteID string   `json:"work_site_id,omitempty"`
	TravelPlan []string `json:"travel_plan,omitempty"`

	Memory []MemoryEntryV1 `json:"memory,omitempty"`
}

type MemoryEntryV1 struct {
	Minute uint64  `json:"minute"`
	Note   string  `json:"note"`
	Weight float64 `json:"weight"`
}

type LocationV1 struct {
	ID     string `json:"id"`
	Active bool   `json:"active"`
	Name   string `json:"name"`

	Archetype  string   `json:"archetype"`
	Weather    string   `json:"weather"`
	MarketOpen bool     `json:"market_open"`
	Tags       []string `json:"tags,omitempty"`
	Provisions int      `json:"provisions"`
}

type EventV1 struct {
	Seq    uint64 `json:"seq"`
	Kind   string `json:"kind"`
	Minute uint64 `json:"minute"`
	Source string `json:"source,omitempty"`
	// Payload is kept as raw JSON so both encodings round-trip it
	// without type coercion.
	Payload json.RawMessage `json:"payload,omitempty"`
}

type CountersV1 struct {
	NextNPC      uint64 `json:"next_npc"`
	NextLocation uint64 `json:"next_location"`
}
