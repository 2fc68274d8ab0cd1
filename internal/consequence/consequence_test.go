package consequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kalaith/last-hope/internal/resources"
	"github.com/Kalaith/last-hope/internal/world"
)

func TestResolveTag(t *testing.T) {
	id, ok := ResolveTag("share_seeds_with_strangers")
	assert.True(t, ok)
	assert.Equal(t, "share_seeds_with_strangers", id)

	id, ok = ResolveTag("share_seed_with_strangers")
	assert.True(t, ok, "one missing letter is tolerated")
	assert.Equal(t, "share_seeds_with_strangers", id)

	_, ok = ResolveTag("cooperation")
	assert.False(t, ok)
	_, ok = ResolveTag("")
	assert.False(t, ok)
}

func TestDelayedFiresOnceOnTriggerDay(t *testing.T) {
	s := &State{}
	got := s.Register([]string{"prioritize_food_over_restoration", "prioritize_food_over_restoration"}, 0)
	assert.Equal(t, []string{"prioritize_food_over_restoration"}, got)
	require.Len(t, s.Pending, 1)
	assert.Equal(t, 7, s.Pending[0].TriggerDay)

	calm := world.Conditions{Resources: resources.Set{Supplies: 40}}
	for day := 1; day <= 6; day++ {
		calm.Day = day
		assert.Empty(t, s.Due(calm), "day %d", day)
	}

	calm.Day = 7
	due := s.Due(calm)
	require.Len(t, due, 1)
	assert.Equal(t, "food_shortage_aftermath", due[0].ID)
	assert.Equal(t, -15.0, due[0].Consequences[resources.Hope])

	calm.Day = 8
	assert.Empty(t, s.Due(calm))
	assert.Empty(t, s.Pending)
}

func TestWatcherLatches(t *testing.T) {
	s := &State{}
	s.Register([]string{"plant_aggressive_restoration"}, 3)
	require.Len(t, s.Watchers, 1)

	c := world.Conditions{Day: 4, SoilHealth: 41}
	due := s.Due(c)
	require.Len(t, due, 1)
	assert.Equal(t, "wildlife_returns", due[0].ID)
	assert.Equal(t, 4, due[0].TriggerDay)
	assert.True(t, s.Watchers[0].Triggered)

	c.Day = 5
	assert.Empty(t, s.Due(c))

	// Registering again arms a fresh watcher since the old one already fired.
	s.Register([]string{"plant_aggressive_restoration"}, 5)
	assert.Len(t, s.Watchers, 2)
}

func TestWatcherNotDuplicatedWhileArmed(t *testing.T) {
	s := &State{}
	s.Register([]string{"share_seeds_with_strangers"}, 0)
	s.Register([]string{"share_seeds_with_strangers"}, 1)
	assert.Len(t, s.Watchers, 1)
	assert.Len(t, s.Pending, 2)
}

func TestStoryEventMitigation(t *testing.T) {
	ch, ok := Lookup("prioritize_food_over_restoration")
	require.True(t, ok)
	c := ch.delayed[0].clone()
	c.TriggerDay = 7

	ev := NewStoryEvent(c)
	assert.Equal(t, "food_shortage_aftermath@7", ev.ID)
	require.Len(t, ev.Options, 2)

	accept, ok := ev.Option(OptionAccept)
	require.True(t, ok)
	assert.Equal(t, -15.0, accept.Consequences[resources.Hope])
	assert.Equal(t, -15.0, accept.Relationships["elena"])

	mitigate, ok := ev.Option(OptionMitigate)
	require.True(t, ok)
	assert.Equal(t, -7.0, mitigate.Consequences[resources.Hope])
	assert.Equal(t, -7.0, mitigate.Relationships["elena"])
	assert.Equal(t, -2.0, mitigate.Relationships["marcus"])
}

func TestMitigateKeepsGains(t *testing.T) {
	got := Mitigate(resources.Delta{resources.Hope: 40, resources.Seeds: -3})
	assert.Equal(t, resources.Delta{resources.Hope: 40, resources.Seeds: -1}, got)
}
