package research

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kalaith/last-hope/internal/resources"
	"github.com/Kalaith/last-hope/internal/world"
)

func TestTreeShape(t *testing.T) {
	nodes := Tree()
	require.Len(t, nodes, 14)
	ids := map[string]bool{}
	for _, n := range nodes {
		ids[n.ID] = true
	}
	for _, n := range nodes {
		for _, p := range n.Prerequisites {
			assert.True(t, ids[p], "%s has unknown prerequisite %s", n.ID, p)
		}
	}
	assert.ElementsMatch(t,
		[]string{"soil_chemistry_basics", "ecosystem_dynamics", "sustainable_construction", "medicinal_plants", "community_organizing"},
		NewProgress().Available)
}

func TestCanStartErrors(t *testing.T) {
	assert.ErrorIs(t, CanStart("alchemy", 100, nil), ErrUnknownNode)
	assert.ErrorIs(t, CanStart("soil_chemistry_basics", 100, []string{"soil_chemistry_basics"}), ErrAlreadyResearched)
	assert.ErrorIs(t, CanStart("plant_breeding_techniques", 100, nil), ErrPrerequisites)
	assert.ErrorIs(t, CanStart("soil_chemistry_basics", 14, nil), ErrInsufficientKnowing)
	assert.NoError(t, CanStart("soil_chemistry_basics", 15, nil))
}

func TestSingleActiveResearch(t *testing.T) {
	p := NewProgress()
	require.NoError(t, p.Start("community_organizing", 20))
	p.Tick()

	before := p
	err := p.Start("medicinal_plants", 20)
	assert.ErrorIs(t, err, ErrResearchInProgress)
	assert.Equal(t, before, p)
}

func TestCompletesAfterDerivedDays(t *testing.T) {
	p := NewProgress()
	require.NoError(t, p.Start("soil_chemistry_basics", 15))
	for day := 1; day <= 4; day++ {
		_, done := p.Tick()
		require.False(t, done, "day %d", day)
	}
	n, done := p.Tick()
	require.True(t, done)
	assert.Equal(t, "soil_chemistry_basics", n.ID)
	assert.Empty(t, p.Current)
	assert.Zero(t, p.DaysInProgress)
	assert.Equal(t, []string{"soil_chemistry_basics"}, p.Completed)
	assert.Contains(t, p.Available, "plant_breeding_techniques")
	assert.NotContains(t, p.Available, "soil_chemistry_basics")

	_, done = p.Tick()
	assert.False(t, done)
}

func TestActiveBoostsMultiply(t *testing.T) {
	b := ActiveBoosts([]string{"soil_chemistry_basics", "permaculture_design", "community_organizing"})
	assert.InDelta(t, 1.2*1.3, b[BoostSoilHealth], 1e-9)
	assert.Equal(t, 1.4, b[BoostDailySupplies])
	assert.Equal(t, 1.3, Boost(b, BoostTrustGain))
	assert.Equal(t, 1.0, Boost(b, BoostSeedYield))
}

func TestUnlocked(t *testing.T) {
	u := Unlocked([]string{"permaculture_design", "water_conservation"})
	assert.Equal(t, []string{"companion_planting_choice"}, u.Choices)
	assert.Equal(t, []string{"food_forest_construction"}, u.Constructions)
	assert.Equal(t, []string{"rainwater_harvesting", "greywater_recycling", "water_purifier_v2"}, u.Abilities)

	assert.True(t, HasUnlock("root_cellar", []string{"food_preservation"}))
	assert.False(t, HasUnlock("root_cellar", []string{"medicinal_plants"}))
}

func TestRecommend(t *testing.T) {
	p := NewProgress()
	c := world.Conditions{
		Resources:  resources.Set{Health: 40, Supplies: 20, Knowledge: 20},
		SoilHealth: 50,
		NPCs:       []world.NPCView{{ID: "marcus", Trust: 25}},
	}
	got := Recommend(p, c, 0)
	// soil_chemistry (agri +3), medicinal (survival +3), community (social +3); ecosystem_dynamics and sustainable_construction score 0
	assert.Equal(t, []string{"soil_chemistry_basics", "medicinal_plants", "community_organizing"}, got)

	c.Resources.Knowledge = 11
	assert.Empty(t, Recommend(p, c, 0))
}
