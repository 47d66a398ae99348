package entity_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"fableweave.dev/internal/sim/entity"
)

func TestClampNeeds(t *testing.T) {
	n := entity.NewNPC("npc_000001", "Maren", "human", []string{"blacksmith"})
	n.Needs.Energy = -5
	n.Needs.Hunger = 150
	n.Needs.Mood = 101
	n.ClampNeeds()

	require.Equal(t, 0.0, n.Needs.Energy)
	require.Equal(t, 100.0, n.Needs.Hunger)
	require.Equal(t, 100.0, n.Needs.Mood)
}

func TestRemember_BoundedLog(t *testing.T) {
	n := entity.NewNPC("npc_000001", "Maren", "human", nil)
	for i := 0; i < 40; i++ {
		n.Remember(uint64(i), "walked", 0, 32)
	}
	require.Len(t, n.Memory, 32)
	require.Equal(t, uint64(8), n.Memory[0].Minute)
}

func TestMoodFromMemory_RecencyWeighted(t *testing.T) {
	n := entity.NewNPC("npc_000001", "Maren", "human", nil)
	n.Remember(1, "fight", -40, 32)
	n.Remember(2, "feast", 40, 32)
	// The newer positive memory outweighs the older negative one.
	require.Greater(t, n.MoodFromMemory(), 50.0)

	n2 := entity.NewNPC("npc_000002", "Joss", "human", nil)
	for i := 0; i < 10; i++ {
		n2.Remember(uint64(i), "feast", 1000, 32)
	}
	require.Equal(t, 100.0, n2.MoodFromMemory()) // bounded
}

func TestRoster_StableOrder(t *testing.T) {
	l := entity.NewLocation("loc_000001", "The Forge", "forge")
	l.AddToRoster("npc_000003")
	l.AddToRoster("npc_000001")
	l.AddToRoster("npc_000002")

	require.Equal(t, []string{"npc_000001", "npc_000002", "npc_000003"}, l.Roster())

	l.RemoveFromRoster("npc_000002")
	require.False(t, l.InRoster("npc_000002"))
	require.Equal(t, 2, l.RosterSize())
}

func TestHasProfession(t *testing.T) {
	n := entity.NewNPC("npc_000001", "Maren", "human", []string{"blacksmith", "trader"})
	require.True(t, n.HasProfession("trader"))
	require.False(t, n.HasProfession("farmer"))
}
