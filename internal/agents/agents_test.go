package agents

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kalaith/last-hope/internal/resources"
	"github.com/Kalaith/last-hope/internal/weather"
	"github.com/Kalaith/last-hope/internal/world"
)

func conditions(r resources.Set, soil float64) world.Conditions {
	return world.Conditions{Resources: r, SoilHealth: soil, Weather: weather.Stable}
}

func TestRefreshMoodThresholds(t *testing.T) {
	chen := Find(Roster(), "chen")
	require.NotNil(t, chen)

	RefreshMood(chen, conditions(resources.Set{Hope: 70, Supplies: 50, Knowledge: 40, Seeds: 10}, 60))
	assert.Equal(t, Hopeful, chen.Mood)
	assert.Equal(t, []string{"general_wellbeing"}, chen.Concerns)

	RefreshMood(chen, conditions(resources.Set{Hope: 40}, 60))
	assert.Equal(t, Desperate, chen.Mood)
}

func TestRefreshMoodUsesPreviousConcerns(t *testing.T) {
	elena := &NPC{ID: "elena", Personality: Protective, Concerns: []string{"children_safety", "food_shortage", "morale"}}
	c := conditions(resources.Set{Hope: 35, Health: 40, Supplies: 20}, 10)

	RefreshMood(elena, c)
	assert.Equal(t, Worried, elena.Mood, "three previous concerns hold")
	assert.Equal(t, []string{"children_safety", "food_shortage"}, elena.Concerns)

	// The regenerated list only has two concerns, so the next evaluation is neutral.
	RefreshMood(elena, c)
	assert.Equal(t, Neutral, elena.Mood)
}

func TestOptimisticCountsTrustedCompanions(t *testing.T) {
	n := &NPC{Personality: Optimistic}
	c := conditions(resources.Set{Hope: 55}, 10)
	c.Restoration = 50
	c.NPCs = []world.NPCView{{Trust: 60}, {Trust: 40}}
	RefreshMood(n, c)
	assert.Equal(t, []string{"community_unity"}, n.Concerns)

	c.NPCs = append(c.NPCs, world.NPCView{Trust: 90})
	RefreshMood(n, c)
	assert.Equal(t, []string{"general_wellbeing"}, n.Concerns)
}

func TestUpdateTrust(t *testing.T) {
	chen := &NPC{Personality: Scientific, Trust: 40}
	got := UpdateTrust(chen, "share_research_notes", conditions(resources.Set{Supplies: 60, Hope: 75}, 0), 1)
	// research 3, sharing has no scientific modifier, +1 supplies, +1 hope
	assert.Equal(t, 5.0, got)
	assert.Equal(t, 45.0, chen.Trust)

	boosted := &NPC{Personality: Protective, Trust: 10}
	UpdateTrust(boosted, "protect_children", conditions(resources.Set{}, 0), 1.5)
	assert.Equal(t, 14.5, boosted.Trust)

	capped := &NPC{Personality: Protective, Trust: 99}
	assert.Equal(t, 1.0, UpdateTrust(capped, "protect", conditions(resources.Set{}, 0), 1))
	assert.Equal(t, 100.0, capped.Trust)
}

func TestAdjustTrustClamps(t *testing.T) {
	n := &NPC{Trust: 5}
	assert.Equal(t, -5.0, AdjustTrust(n, -20))
	assert.Zero(t, n.Trust)
}

func TestAvailability(t *testing.T) {
	assert.Equal(t, "low trust", CheckAvailability(&NPC{Name: "Marcus", Trust: 9}, 50).Reason)
	assert.Equal(t, "despair", CheckAvailability(&NPC{Trust: 50, Mood: Desperate}, 14).Reason)
	assert.True(t, CheckAvailability(&NPC{Trust: 50, Mood: Desperate}, 15).Available)
}

func TestRemarkAndMemoryRing(t *testing.T) {
	marcus := &NPC{Personality: Pragmatic}
	c := conditions(resources.Set{Hope: 60}, 0)
	assert.Equal(t, "Good progress, but we need to stay focused on practical matters.", Remark(marcus, c))
	assert.Equal(t, "greeting:Good progress, but we need to stay focused on prac", marcus.DialogueMemory[0])

	c.Weather = weather.Drought
	assert.Contains(t, Remark(marcus, c), "rationing")

	for i := 0; i < 15; i++ {
		Remember(marcus, "personal", fmt.Sprintf("line %d", i))
	}
	assert.Len(t, marcus.DialogueMemory, MaxDialogueMemory)
	assert.Equal(t, "personal:line 14", marcus.DialogueMemory[MaxDialogueMemory-1])
}

func TestCloneIsDeep(t *testing.T) {
	a := Roster()[0]
	b := a.Clone()
	b.Concerns[0] = "changed"
	assert.Equal(t, "children_safety", a.Concerns[0])
}
