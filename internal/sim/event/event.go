// Package event provides the world's append-only event history and its
// synchronous listener dispatch.
package event

// Kind enumerates the event types the core emits. The payload stays an
// open map so collaborators can attach fields without a schema change.
type Kind string

const (
	KindWorldCreated    Kind = "world_created"
	KindNPCSpawned      Kind = "npc_spawned"
	KindEntityRemoved   Kind = "entity_removed"
	KindStateChanged    Kind = "state_changed"
	KindItemCrafted     Kind = "item_crafted"
	KindLocationEntered Kind = "location_entered"
	KindLocationExited  Kind = "location_exited"
	KindError           Kind = "error"
)

// Event is immutable once published. Seq is assigned by the bus and is
// strictly increasing for the life of the world.
type Event struct {
	Seq     uint64         `json:"seq"`
	Kind    Kind           `json:"kind"`
	Minute  uint64         `json:"minute"` // sim-time of publication
	Source  string         `json:"source,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
}
