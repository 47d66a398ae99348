package entity

import "sort"

type Location struct {
	Base
	Name      string `json:"name"`
	Archetype string `json:"archetype"`

	// roster holds the ids of NPCs whose LocationID equals this id.
	// The registry keeps both sides consistent.
	roster map[string]struct{}

	Weather    string   `json:"weather"`
	MarketOpen bool     `json:"market_open"`
	Tags       []string `json:"tags,omitempty"`

	// Provisions is the food stock; eating consumes one unit.
	Provisions int `json:"provisions"`
}

func NewLocation(id, name, archetype string) *Location {
	return &Location{
		Base:      Base{ID: id, Kind: KindLocation, Active: true},
		Name:      name,
		Archetype: archetype,
		roster:    map[string]struct{}{},
		Weather:   "clear",
	}
}

func (l *Location) HasTag(tag string) bool {
	for _, t := range l.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (l *Location) AddToRoster(npcID string) {
	if l.roster == nil {
		l.roster = map[string]struct{}{}
	}
	l.roster[npcID] = struct{}{}
}

func (l *Location) RemoveFromRoster(npcID string) {
	delete(l.roster, npcID)
}

func (l *Location) InRoster(npcID string) bool {
	_, ok := l.roster[npcID]
	return ok
}

func (l *Location) RosterSize() int { return len(l.roster) }

// Roster returns the member ids sorted, so iteration over it is stable.
func (l *Location) Roster() []string {
	out := make([]string, 0, len(l.roster))
	for id := range l.roster {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (l *Location) HasFood() bool { return l.Provisions > 0 }
