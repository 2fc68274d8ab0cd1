package ecosystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kalaith/last-hope/internal/entropy"
	"github.com/Kalaith/last-hope/internal/weather"
)

func TestNewPlantRejections(t *testing.T) {
	s := &State{SoilHealth: 5}

	_, err := NewPlant(s, "moonflower", 100)
	assert.ErrorIs(t, err, ErrUnknownSpecies)

	_, err = NewPlant(s, "pioneer_herb", 100)
	assert.ErrorIs(t, err, ErrSoilTooPoor)

	s.SoilHealth = 35
	_, err = NewPlant(s, "nitrogen_fixer", 24)
	assert.ErrorIs(t, err, ErrNeedsKnowledge)
	assert.Empty(t, s.Plants)

	p, err := NewPlant(s, "nitrogen_fixer", 25)
	require.NoError(t, err)
	assert.Equal(t, 100.0, p.Health)
	assert.Zero(t, p.Maturity)
	assert.NotEmpty(t, p.ID)

	s.Add(p)
	_, err = NewPlant(s, "nitrogen_fixer", 5)
	assert.ErrorIs(t, err, ErrNeedsKnowledge, "discovery does not lift the knowledge gate")
}

func TestAddRecordsDiscovery(t *testing.T) {
	s := &State{}
	s.Add(Plant{ID: "a", Species: "hardy_grass"})
	s.Add(Plant{ID: "b", Species: "hardy_grass"})
	s.Add(Plant{ID: "c", Species: "desert_bloom"})
	assert.Len(t, s.Plants, 3)
	assert.Equal(t, []string{"hardy_grass", "desert_bloom"}, s.Discovered)
}

func TestSimulateGrowthFormula(t *testing.T) {
	s := &State{
		Plants:     []Plant{{ID: "p", Species: "hardy_grass", Health: 80, Maturity: 10}},
		SoilHealth: 50,
		Weather:    weather.Stable,
		Season:     weather.Spring,
	}
	// survival draw passes, then no season or weather change
	Simulate(s, 1, entropy.NewFixed(0.1, 0.9, 0.9))
	require.Len(t, s.Plants, 1)
	assert.InDelta(t, 10+3*1.0*1.3*0.5, s.Plants[0].Maturity, 1e-9)
	assert.Equal(t, 80.0, s.Plants[0].Health)
}

func TestSimulateKillsWeakPlant(t *testing.T) {
	s := &State{
		Plants: []Plant{
			{ID: "weak", Species: "hardy_grass", Health: 10, Maturity: 5},
			{ID: "strong", Species: "hardy_grass", Health: 90, Maturity: 60},
		},
		SoilHealth: 20,
		Weather:    weather.Storm,
		Season:     weather.Summer,
	}
	// weak fails its survival roll, strong passes
	rep := Simulate(s, 1, entropy.NewFixed(0.95, 0.1, 0.9, 0.9))
	require.Len(t, rep.Dead, 1)
	assert.Equal(t, "weak", rep.Dead[0].ID)
	require.Len(t, s.Plants, 1)
	assert.Equal(t, "strong", s.Plants[0].ID)
	assert.Equal(t, 91.0, s.Plants[0].Health)
}

func TestSimulatePoorSoilDamage(t *testing.T) {
	s := &State{
		Plants:     []Plant{{ID: "p", Species: "hardy_grass", Health: 50, Maturity: 0}},
		SoilHealth: 5,
		Weather:    weather.Rain,
		Season:     weather.Winter,
	}
	Simulate(s, 1, entropy.NewFixed(0.5, 0.9, 0.9))
	assert.Equal(t, 48.0, s.Plants[0].Health)
}

func TestSoilDecaysWithoutPlants(t *testing.T) {
	assert.InDelta(t, 9.9, SoilImprovement(nil, 10, 1), 1e-9)
	assert.Equal(t, 0.0, SoilImprovement(nil, 0.05, 1))
}

func TestSoilImprovementDiminishes(t *testing.T) {
	plants := []Plant{{Species: "forest_sapling", Health: 100, Maturity: 100}}
	lowGain := SoilImprovement(plants, 10, 1) - 10
	highGain := SoilImprovement(plants, 90, 1) - 90
	assert.InDelta(t, 8*0.9*0.1, lowGain, 1e-9)
	assert.InDelta(t, 8*0.1*0.1, highGain, 1e-9)
	assert.Greater(t, lowGain, highGain)

	immature := []Plant{{Species: "forest_sapling", Health: 100, Maturity: 30}}
	assert.Equal(t, 40.0, SoilImprovement(immature, 40, 1))
}

func TestDiversity(t *testing.T) {
	assert.Zero(t, Diversity(nil))
	plants := []Plant{{Species: "hardy_grass"}, {Species: "hardy_grass"}, {Species: "desert_bloom"}}
	assert.Equal(t, 26.0, Diversity(plants))

	var many []Plant
	for i := 0; i < 40; i++ {
		many = append(many, Plant{Species: Catalog()[i%5].ID})
	}
	assert.Equal(t, 100.0, Diversity(many))
	assert.Equal(t, 5, SpeciesCount(many))
}

func TestHarvest(t *testing.T) {
	s := &State{Plants: []Plant{
		{Species: "forest_sapling", Health: 80, Maturity: 90},
		{Species: "hardy_grass", Health: 50, Maturity: 100},
		{Species: "nitrogen_fixer", Health: 60, Maturity: 79},
	}}
	res := Harvest(s, 1.5)
	assert.Equal(t, 1, res.Harvested)
	assert.Equal(t, 7.5, res.Seeds)
	assert.Equal(t, 50.0, s.Plants[0].Maturity)
	assert.Equal(t, 100.0, s.Plants[1].Maturity)
}

func TestDescribe(t *testing.T) {
	s := &State{SoilHealth: 5, Weather: weather.Drought}
	assert.Equal(t, "The soil is poisoned and barren. No plants have taken root. Scorching heat withers plants.", Describe(s))
}
