package entity

// State is the behavior machine's current activity for one NPC.
type State string

const (
	Idle        State = "idle"
	Working     State = "working"
	Eating      State = "eating"
	Sleeping    State = "sleeping"
	Socializing State = "socializing"
	Traveling   State = "traveling"
)

// Needs track the NPC's physical condition, each clamped to [0,100].
// Energy and mood drain toward 0; hunger grows toward 100.
type Needs struct {
	Energy float64 `json:"energy"`
	Hunger float64 `json:"hunger"`
	Mood   float64 `json:"mood"`
}

// MemoryEntry is one item of an NPC's bounded personal log. Weight is
// the mood contribution of the remembered moment and fades as newer
// entries push it toward the front of the window.
type MemoryEntry struct {
	Minute uint64  `json:"minute"`
	Note   string  `json:"note"`
	Weight float64 `json:"weight"`
}

type NPC struct {
	Base
	Name string `json:"name"`
	Race string `json:"race"`

	// Race+profession composition; there are no fixed enemy templates.
	// Hostility, if any, derives from the race's disposition tags.
	Professions []string       `json:"professions,omitempty"`
	Skill       map[string]int `json:"skill,omitempty"` // profession -> 1..10

	Needs Needs `json:"needs"`
	State State `json:"state"`

	// Weak references by id; the registry enforces that LocationID
	// resolves to a live Location outside of construction.
	LocationID string `json:"location_id,omitempty"`
	WorkSiteID string `json:"work_site_id,omitempty"`

	// TravelPlan is the precomputed remaining path, one location id
	// consumed per tick while Traveling.
	TravelPlan []string `json:"travel_plan,omitempty"`

	Memory []MemoryEntry `json:"memory,omitempty"`
}

func NewNPC(id, name, race string, professions []string) *NPC {
	return &NPC{
		Base:        Base{ID: id, Kind: KindNPC, Active: true},
		Name:        name,
		Race:        race,
		Professions: professions,
		Skill:       map[string]int{},
		Needs:       Needs{Energy: 100, Hunger: 0, Mood: 50},
		State:       Idle,
	}
}

func (n *NPC) HasProfession(p string) bool {
	for _, have := range n.Professions {
		if have == p {
			return true
		}
	}
	return false
}

// ClampNeeds forces all needs back into [0,100]. Called after every
// mutation so out-of-range values can never be observed.
func (n *NPC) ClampNeeds() {
	n.Needs.Energy = clamp(n.Needs.Energy, 0, 100)
	n.Needs.Hunger = clamp(n.Needs.Hunger, 0, 100)
	n.Needs.Mood = clamp(n.Needs.Mood, 0, 100)
}

// Remember appends to the personal log, dropping the oldest entry past
// the bound.
func (n *NPC) Remember(minute uint64, note string, weight float64, bound int) {
	n.Memory = append(n.Memory, MemoryEntry{Minute: minute, Note: note, Weight: weight})
	if bound > 0 && len(n.Memory) > bound {
		n.Memory = n.Memory[len(n.Memory)-bound:]
	}
}

// MoodFromMemory recomputes mood as 50 plus the recency-weighted sum of
// the memory window, clamped to [0,100]. Older entries count less.
func (n *NPC) MoodFromMemory() float64 {
	m := 50.0
	cnt := len(n.Memory)
	for i, e := range n.Memory {
		recency := float64(i+1) / float64(cnt)
		m += e.Weight * recency
	}
	return clamp(m, 0, 100)
}
