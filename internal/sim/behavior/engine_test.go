package behavior_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"fableweave.dev/internal/sim/behavior"
	"fableweave.dev/internal/sim/clock"
	"fableweave.dev/internal/sim/entity"
	"fableweave.dev/internal/sim/event"
	"fableweave.dev/internal/sim/fault"
	"fableweave.dev/internal/sim/tuning"
)

// stubView is a minimal registry stand-in.
type stubView struct {
	locs       map[string]*entity.Location
	companions int
	workHours  bool
}

func (s *stubView) LocationByID(id string) (*entity.Location, bool) {
	l, ok := s.locs[id]
	return l, ok
}

func (s *stubView) Companions(*entity.Location, string) int { return s.companions }

func (s *stubView) WithinWorkingHours(string) bool { return s.workHours }

func harness() (*behavior.Engine, *stubView, *entity.NPC, clock.Snapshot, *rand.Rand) {
	tune := tuning.Defaults()
	eng := behavior.NewEngine(tune, map[string][]string{"blacksmith": {"iron_sword"}})

	forge := entity.NewLocation("loc_forge", "The Ember Anvil", "forge")
	forge.Provisions = 10
	view := &stubView{locs: map[string]*entity.Location{"loc_forge": forge}}

	npc := entity.NewNPC("npc_000001", "Maren", "human", []string{"blacksmith"})
	npc.LocationID = "loc_forge"
	npc.WorkSiteID = "loc_forge"
	npc.Skill["blacksmith"] = 5

	return eng, view, npc, clock.At(9 * 60), rand.New(rand.NewSource(1))
}

func TestUpdate_SleepEntryAndHysteresis(t *testing.T) {
	eng, view, npc, now, rng := harness()
	npc.Needs.Energy = 15 // below sleep threshold 20

	_, err := eng.Update(npc, view, now, rng)
	require.NoError(t, err)
	require.Equal(t, entity.Sleeping, npc.State)

	// Stays asleep while below the wake threshold, even once energy is
	// well above the sleep threshold.
	view.workHours = true
	for npc.Needs.Energy < tuning.Defaults().WakeThreshold {
		require.NotEqual(t, entity.Working, npc.State)
		_, err := eng.Update(npc, view, now, rng)
		require.NoError(t, err)
	}
	require.Equal(t, entity.Idle, npc.State)
}

func TestUpdate_SleepOutranksHunger(t *testing.T) {
	eng, view, npc, now, rng := harness()
	npc.Needs.Energy = 10
	npc.Needs.Hunger = 95

	_, err := eng.Update(npc, view, now, rng)
	require.NoError(t, err)
	require.Equal(t, entity.Sleeping, npc.State)
}

func TestUpdate_EatingConsumesProvisions(t *testing.T) {
	eng, view, npc, now, rng := harness()
	npc.Needs.Hunger = 80

	fx, err := eng.Update(npc, view, now, rng)
	require.NoError(t, err)
	require.Equal(t, entity.Eating, npc.State)
	require.Equal(t, "loc_forge", fx.EatAt)
	require.InDelta(t, 80+tuning.Defaults().HungerGrowth-tuning.Defaults().EatRelief, npc.Needs.Hunger, 0.01)
}

func TestUpdate_NoFoodNoEating(t *testing.T) {
	eng, view, npc, now, rng := harness()
	view.locs["loc_forge"].Provisions = 0
	npc.Needs.Hunger = 80

	fx, err := eng.Update(npc, view, now, rng)
	require.NoError(t, err)
	require.NotEqual(t, entity.Eating, npc.State)
	require.Empty(t, fx.EatAt)
}

func TestUpdate_WorkingConsumesEnergy(t *testing.T) {
	eng, view, npc, now, rng := harness()
	view.workHours = true
	start := npc.Needs.Energy

	_, err := eng.Update(npc, view, now, rng)
	require.NoError(t, err)
	require.Equal(t, entity.Working, npc.State)
	require.Less(t, npc.Needs.Energy, start)
}

func TestUpdate_WorkingEventuallyCrafts(t *testing.T) {
	eng, view, npc, now, rng := harness()
	view.workHours = true
	npc.Needs.Energy = 100

	crafted := false
	for i := 0; i < 50 && !crafted; i++ {
		npc.Needs.Energy = 100 // keep it working
		npc.Needs.Hunger = 0
		fx, err := eng.Update(npc, view, now, rng)
		require.NoError(t, err)
		for _, em := range fx.Emissions {
			if em.Kind == event.KindItemCrafted {
				require.Equal(t, "iron_sword", em.Payload["item"])
				require.Equal(t, "blacksmith", em.Payload["profession"])
				crafted = true
			}
		}
	}
	require.True(t, crafted, "no craft in 50 working ticks at skill 5")
}

func TestUpdate_NoProfessionNeverWorks(t *testing.T) {
	eng, view, npc, now, rng := harness()
	view.workHours = true
	npc.Professions = nil

	for i := 0; i < 20; i++ {
		npc.Needs.Energy = 100
		npc.Needs.Hunger = 0
		_, err := eng.Update(npc, view, now, rng)
		require.NoError(t, err)
		require.NotEqual(t, entity.Working, npc.State)
	}
}

func TestUpdate_AwayFromWorkSiteNoWork(t *testing.T) {
	eng, view, npc, now, rng := harness()
	view.workHours = true
	npc.WorkSiteID = "loc_elsewhere"

	_, err := eng.Update(npc, view, now, rng)
	require.NoError(t, err)
	require.NotEqual(t, entity.Working, npc.State)
}

func TestUpdate_TravelStep(t *testing.T) {
	eng, view, npc, now, rng := harness()
	npc.TravelPlan = []string{"loc_mid", "loc_dest"}

	fx, err := eng.Update(npc, view, now, rng)
	require.NoError(t, err)
	require.Equal(t, entity.Traveling, npc.State)
	require.NotNil(t, fx.Move)
	require.Equal(t, "loc_forge", fx.Move.From)
	require.Equal(t, "loc_mid", fx.Move.To)
	require.Equal(t, []string{"loc_dest"}, npc.TravelPlan)
}

func TestUpdate_DanglingLocationIsCorruptData(t *testing.T) {
	eng, view, npc, now, rng := harness()
	npc.LocationID = "loc_gone"
	_ = view

	_, err := eng.Update(npc, view, now, rng)
	require.True(t, fault.IsCorruptData(err))
}

func TestUpdate_StateChangeEmission(t *testing.T) {
	eng, view, npc, now, rng := harness()
	npc.Needs.Energy = 5

	fx, err := eng.Update(npc, view, now, rng)
	require.NoError(t, err)

	var kinds []event.Kind
	for _, em := range fx.Emissions {
		kinds = append(kinds, em.Kind)
	}
	require.Contains(t, kinds, event.KindStateChanged)
}

func TestUpdate_NeedsStayClamped(t *testing.T) {
	eng, view, npc, now, rng := harness()
	npc.Needs.Energy = 0.5
	npc.Needs.Hunger = 99.5

	for i := 0; i < 200; i++ {
		_, err := eng.Update(npc, view, now, rng)
		require.NoError(t, err)
		require.GreaterOrEqual(t, npc.Needs.Energy, 0.0)
		require.LessOrEqual(t, npc.Needs.Energy, 100.0)
		require.GreaterOrEqual(t, npc.Needs.Hunger, 0.0)
		require.LessOrEqual(t, npc.Needs.Hunger, 100.0)
	}
}
