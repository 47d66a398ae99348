// Package entity defines the living things the world registry owns:
// NPCs and Locations. The generator's loosely-typed descriptive records
// stay outside this package; conversion happens in the world's factory.
package entity

type Kind string

const (
	KindNPC      Kind = "npc"
	KindLocation Kind = "location"
)

// Entity is the common surface of everything in the registry. Ids are
// globally unique and stable for the entity's lifetime; removal is a
// soft delete (Active turns false, the id is never reused).
type Entity interface {
	EntityID() string
	EntityKind() Kind
	IsActive() bool
	Deactivate()
}

// Base carries the fields shared by all entity kinds.
type Base struct {
	ID     string `json:"id"`
	Kind   Kind   `json:"kind"`
	Active bool   `json:"active"`
}

func (b *Base) EntityID() string   { return b.ID }
func (b *Base) EntityKind() Kind   { return b.Kind }
func (b *Base) IsActive() bool     { return b.Active }
func (b *Base) Deactivate()        { b.Active = false }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
