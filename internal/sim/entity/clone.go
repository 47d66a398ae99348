package entity

// Clone returns a deep copy, used by the registry for read views so
// callers can never mutate owned state.
func (n *NPC) Clone() *NPC {
	cp := *n
	cp.Professions = append([]string(nil), n.Professions...)
	cp.TravelPlan = append([]string(nil), n.TravelPlan...)
	cp.Memory = append([]MemoryEntry(nil), n.Memory...)
	if n.Skill != nil {
		cp.Skill = make(map[string]int, len(n.Skill))
		for k, v := range n.Skill {
			cp.Skill[k] = v
		}
	}
	return &cp
}

func (l *Location) Clone() *Location {
	cp := *l
	cp.Tags = append([]string(nil), l.Tags...)
	cp.roster = make(map[string]struct{}, len(l.roster))
	for id := range l.roster {
		cp.roster[id] = struct{}{}
	}
	return &cp
}
