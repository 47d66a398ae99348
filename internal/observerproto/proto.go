// Package observerproto defines the JSON frames of the read-mostly
// observer WebSocket API. Observers subscribe once, then receive a
// WORLD_UPDATE push after every simulation step and may interleave
// point queries for entities, the clock and recent events.
package observerproto

import (
	"encoding/json"

	"fableweave.dev/internal/sim/clock"
	"fableweave.dev/internal/sim/event"
)

const Version = 1

// Client -> server frame types.
const (
	TypeSubscribe    = "SUBSCRIBE"
	TypeGetEntity    = "GET_ENTITY"
	TypeGetClock     = "GET_CLOCK"
	TypeRecentEvents = "RECENT_EVENTS"
)

// Server -> client frame types.
const (
	TypeWelcome     = "WELCOME"
	TypeWorldUpdate = "WORLD_UPDATE"
	TypeEntity      = "ENTITY"
	TypeClock       = "CLOCK"
	TypeEvents      = "EVENTS"
	TypeError       = "ERROR"
)

type BaseMsg struct {
	Type string `json:"type"`
}

func DecodeBase(b []byte) (BaseMsg, error) {
	var base BaseMsg
	err := json.Unmarshal(b, &base)
	return base, err
}

type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion int    `json:"protocol_version"`
}

// QueryMsg covers all point queries. ID is set for GET_ENTITY, N for
// RECENT_EVENTS.
type QueryMsg struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
	N    int    `json:"n,omitempty"`
}

type WelcomeMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion int            `json:"protocol_version"`
	Seed            int64          `json:"seed"`
	Tick            uint64         `json:"tick"`
	Clock           clock.Snapshot `json:"clock"`
	Entities        int            `json:"entities"`
}

type WorldUpdateMsg struct {
	Type            string         `json:"type"`
	Step            int            `json:"step"`
	Clock           clock.Snapshot `json:"clock"`
	EntitiesUpdated int            `json:"entities_updated"`
	EventsEmitted   int            `json:"events_emitted"`
}

type EntityMsg struct {
	Type   string `json:"type"`
	ID     string `json:"id"`
	Entity any    `json:"entity"`
}

// LocationView is the wire shape of a location; the roster is a method
// on the domain type and needs explicit flattening.
type LocationView struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Archetype  string   `json:"archetype"`
	Weather    string   `json:"weather"`
	MarketOpen bool     `json:"market_open"`
	Tags       []string `json:"tags,omitempty"`
	Provisions int      `json:"provisions"`
	Roster     []string `json:"roster"`
}

type ClockMsg struct {
	Type  string         `json:"type"`
	Clock clock.Snapshot `json:"clock"`
}

type EventsMsg struct {
	Type   string        `json:"type"`
	Events []event.Event `json:"events"`
}

type ErrorMsg struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
