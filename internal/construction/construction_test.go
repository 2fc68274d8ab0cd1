package construction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kalaith/last-hope/internal/resources"
	"github.com/Kalaith/last-hope/internal/world"
)

func conditionsFor(res resources.Set, restoration float64) world.Conditions {
	return world.Conditions{Resources: res, Restoration: restoration}
}

func TestCanBuildOrder(t *testing.T) {
	s := &State{}
	poor := resources.Set{Supplies: 10, Knowledge: 5, Health: 80}

	err := s.CanBuild("greenhouse", 1, conditionsFor(poor, 0))
	assert.ErrorIs(t, err, ErrLocked)
	assert.Contains(t, err.Error(), "15 Knowledge")

	poor.Knowledge = 15
	err = s.CanBuild("greenhouse", 1, conditionsFor(poor, 0))
	assert.ErrorIs(t, err, ErrLocked)
	assert.Contains(t, err.Error(), "10% Restoration")

	err = s.CanBuild("greenhouse", 1, conditionsFor(poor, 10))
	assert.ErrorIs(t, err, ErrUnaffordable)
	assert.Contains(t, err.Error(), "supplies need 25, have 10")

	assert.ErrorIs(t, s.CanBuild("bunker", 1, conditionsFor(poor, 10)), ErrUnknownStructure)
	assert.ErrorIs(t, s.CanBuild("workshop", 4, conditionsFor(poor, 10)), ErrInvalidLevel)
}

func TestStartConstructionDebitsOnlyOnSuccess(t *testing.T) {
	s := &State{}
	res := resources.Set{Supplies: 10, Knowledge: 15, Health: 80, Hope: 50}
	before := res

	_, err := s.StartConstruction("greenhouse", 1, &res, conditionsFor(res, 10))
	require.ErrorIs(t, err, ErrUnaffordable)
	assert.Equal(t, before, res)
	assert.Empty(t, s.Projects)

	res.Supplies = 30
	p, err := s.StartConstruction("greenhouse", 1, &res, conditionsFor(res, 10))
	require.NoError(t, err)
	assert.Equal(t, 3, p.DaysRemaining)
	assert.Equal(t, 5.0, res.Supplies)
	assert.Equal(t, 5.0, res.Knowledge)
	assert.Equal(t, 65.0, res.Health)

	res = resources.Set{Supplies: 100, Knowledge: 100, Health: 100}
	_, err = s.StartConstruction("greenhouse", 2, &res, conditionsFor(res, 10))
	assert.ErrorIs(t, err, ErrUnderConstruction)
}

func TestDailyOperationsCompletesAndProduces(t *testing.T) {
	s := &State{}
	res := resources.Set{Supplies: 50, Knowledge: 20, Health: 80}
	_, err := s.StartConstruction("workshop", 1, &res, conditionsFor(res, 0))
	require.NoError(t, err)

	rep := s.DailyOperations()
	assert.Empty(t, rep.Completed)
	assert.Empty(t, s.Structures)

	rep = s.DailyOperations()
	require.Len(t, rep.Completed, 1)
	require.Len(t, s.Structures, 1)
	ws := s.Structures[0]
	assert.NotEmpty(t, ws.ID)
	assert.Equal(t, 1, ws.Level)
	// The structure works on the day it opens.
	assert.Equal(t, 2.0, rep.Production[resources.Supplies])
	assert.Equal(t, 1.0, rep.Maintenance[resources.Supplies])
	assert.Equal(t, 99.5, ws.Condition)
	assert.Equal(t, 1.0, rep.Net()[resources.Supplies])
}

func TestSolarCutsMaintenanceAndWorkshopBoosts(t *testing.T) {
	s := &State{Structures: []Structure{
		{ID: "w", Type: "workshop", Level: 3, Condition: 100, Efficiency: 100, Active: true},
		{ID: "p", Type: "solar_panel", Level: 2, Condition: 100, Efficiency: 100, Active: true},
	}}
	rep := s.DailyOperations()
	// workshop 7 supplies ×1.25 plus solar 1 supply ×1.25
	assert.InDelta(t, 7*1.25+1*1.25, rep.Production[resources.Supplies], 1e-9)
	assert.InDelta(t, 2*1.25, rep.Production[resources.Knowledge], 1e-9)
	assert.InDelta(t, 1.0, rep.Maintenance[resources.Supplies], 1e-9)
	assert.InDelta(t, 0.5, rep.Maintenance[resources.Knowledge], 1e-9)
}

func TestDecayFloorAndWarning(t *testing.T) {
	s := &State{Structures: []Structure{{ID: "g", Type: "greenhouse", Level: 1, Condition: 20.2, Efficiency: 30, Active: true}}}
	rep := s.DailyOperations()
	assert.Equal(t, 20.0, s.Structures[0].Condition)
	assert.Equal(t, 30.0, s.Structures[0].Efficiency)
	assert.Equal(t, []string{"Greenhouse Level 1 needs maintenance (20% condition)"}, rep.Warnings)
	// Output is scaled by the efficiency held at the start of the day.
	assert.InDelta(t, 2*0.3, rep.Production[resources.Hope], 1e-9)
}

func TestUpgradeInPlace(t *testing.T) {
	s := &State{Structures: []Structure{{ID: "w", Type: "workshop", Level: 1, Condition: 50, Efficiency: 60, Active: true}}}
	res := resources.Set{Supplies: 60, Knowledge: 30, Health: 80}
	_, err := s.StartConstruction("workshop", 1, &res, conditionsFor(res, 0))
	assert.ErrorIs(t, err, ErrAlreadyBuilt)

	_, err = s.StartConstruction("workshop", 2, &res, conditionsFor(res, 0))
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		s.DailyOperations()
	}
	require.Len(t, s.Structures, 1)
	assert.Equal(t, "w", s.Structures[0].ID)
	assert.Equal(t, 2, s.Structures[0].Level)
	assert.Equal(t, 99.5, s.Structures[0].Condition)
}

func TestPerformMaintenance(t *testing.T) {
	s := &State{Structures: []Structure{{ID: "g", Type: "greenhouse", Level: 2, Condition: 30, Efficiency: 40, Active: true}}}
	res := resources.Set{Supplies: 5, Knowledge: 10}

	_, err := s.PerformMaintenance("g", &res)
	assert.ErrorIs(t, err, ErrUnaffordable)
	assert.Equal(t, 5.0, res.Supplies)

	res.Supplies = 6
	cost, err := s.PerformMaintenance("g", &res)
	require.NoError(t, err)
	assert.Equal(t, resources.Delta{resources.Supplies: 6, resources.Knowledge: 3}, cost)
	assert.Equal(t, 60.0, s.Structures[0].Condition)
	assert.Equal(t, 70.0, s.Structures[0].Efficiency)
	assert.Zero(t, res.Supplies)

	_, err = s.PerformMaintenance("missing", &res)
	assert.ErrorIs(t, err, ErrNoStructure)
}

func TestStatsAndAvailable(t *testing.T) {
	s := &State{
		Structures: []Structure{{Type: "workshop", Level: 1, Condition: 80}},
		Projects:   []Project{{StructureType: "greenhouse", TargetLevel: 1, DaysRemaining: 1, TotalDays: 4}},
	}
	st := s.Stats()
	assert.Equal(t, 1, st.TotalStructures)
	assert.Equal(t, 80.0, st.AverageCondition)
	assert.Equal(t, 75.0, st.ConstructionProgress)
	assert.Equal(t, 2.0, st.DailyProduction[resources.Supplies])

	opts := s.Available(conditionsFor(resources.Set{Supplies: 100, Knowledge: 100, Health: 100, Seeds: 10}, 50))
	require.Len(t, opts, 6)
	assert.Equal(t, "greenhouse", opts[0].Blueprint.Type)
	for _, o := range opts {
		if o.Blueprint.Type == "workshop" {
			assert.Equal(t, []int{1, 2, 3}, o.AvailableLevels)
		}
	}

	broke := s.Available(conditionsFor(resources.Set{}, 0))
	for _, o := range broke {
		assert.Equal(t, []int{1}, o.AvailableLevels)
	}
}
