package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kalaith/last-hope/internal/resources"
)

func TestGenerateSiteDeterministic(t *testing.T) {
	a := GenerateSite(42, 10)
	b := GenerateSite(42, 10)
	assert.Equal(t, a, b)
	assert.LessOrEqual(t, a.SoilOffset, 10.0)
	assert.GreaterOrEqual(t, a.SoilOffset, -10.0)
	assert.NotEmpty(t, a.Description)
}

func TestGenerateSiteZeroAmplitude(t *testing.T) {
	s := GenerateSite(99, 0)
	assert.Zero(t, s.SoilOffset)
	assert.Equal(t, 5.0, ApplySite(5, s))
}

func TestApplySiteClamps(t *testing.T) {
	assert.Equal(t, 0.0, ApplySite(2, Site{SoilOffset: -8}))
	assert.Equal(t, 100.0, ApplySite(98, Site{SoilOffset: 8}))
}

func TestBackgrounds(t *testing.T) {
	b, err := LookupBackground("scientist")
	require.NoError(t, err)

	s := resources.Set{Hope: 50, Health: 80, Supplies: 25, Knowledge: 10, Seeds: 3}
	b.Apply(&s)
	assert.Equal(t, 60.0, s.Hope)
	assert.Equal(t, 12.0, s.Knowledge)

	_, err = LookupBackground("pilot")
	assert.ErrorIs(t, err, ErrUnknownBackground)
	assert.Len(t, Backgrounds(), 3)
}

func TestConditionsHelpers(t *testing.T) {
	c := Conditions{
		Resources:   resources.Set{Hope: 40},
		SoilHealth:  12,
		Restoration: 3,
		NPCs: []NPCView{
			{ID: "elena", Trust: 30, Mood: "worried"},
			{ID: "chen", Trust: 75, Mood: "hopeful"},
		},
		Structures: map[string]int{"workshop": 2},
	}
	assert.Equal(t, 12.0, c.Value(resources.SoilHealth))
	assert.Equal(t, 3.0, c.Value(resources.Restoration))
	assert.Equal(t, 40.0, c.Value(resources.Hope))

	tr, ok := c.Trust("chen")
	assert.True(t, ok)
	assert.Equal(t, 75.0, tr)

	assert.False(t, c.AllTrust(func(v float64) bool { return v >= 70 }))
	assert.Equal(t, 1, c.CountTrust(50))
	assert.True(t, c.AnyMood("worried"))
	assert.False(t, c.AnyMood("desperate"))
	assert.Equal(t, 2, c.StructureLevel("workshop"))
	assert.False(t, Conditions{}.AllTrust(func(float64) bool { return true }))
}
