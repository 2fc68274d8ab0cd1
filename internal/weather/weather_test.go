package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Kalaith/last-hope/internal/entropy"
	"github.com/Kalaith/last-hope/internal/resources"
)

func TestSeasonCycle(t *testing.T) {
	s := Spring
	for _, want := range []Season{Summer, Autumn, Winter, Spring} {
		s = s.Next()
		assert.Equal(t, want, s)
	}
}

func TestRerollWeights(t *testing.T) {
	cases := map[float64]Pattern{0: Stable, 0.39: Stable, 0.4: Rain, 0.69: Rain, 0.7: Drought, 0.89: Drought, 0.9: Storm, 0.999: Storm}
	for r, want := range cases {
		assert.Equal(t, want, Reroll(entropy.NewFixed(r)), "r=%v", r)
	}
}

func TestAdvanceDrawsSeasonBeforeWeather(t *testing.T) {
	// Season draw 0.01 < 0.05 changes season; weather draw 0.05 < 0.1 rerolls; reroll 0.75 → drought.
	rng := entropy.NewFixed(0.01, 0.05, 0.75)
	tr := Advance(Stable, Autumn, 1, rng)
	assert.Equal(t, Winter, tr.Season)
	assert.True(t, tr.SeasonChanged)
	assert.Equal(t, Drought, tr.Weather)
	assert.True(t, tr.WeatherChanged)
	assert.Equal(t, 3, rng.Draws())
}

func TestAdvanceHoldsWithHighDraws(t *testing.T) {
	rng := entropy.NewFixed(0.5, 0.5)
	tr := Advance(Rain, Summer, 1, rng)
	assert.Equal(t, Transition{Season: Summer, Weather: Rain}, tr)
	assert.Equal(t, 2, rng.Draws())
}

func TestModifiersAndEffects(t *testing.T) {
	assert.Equal(t, Modifiers{0.3, 0.7}, For(Drought))
	assert.Equal(t, For(Stable), For(Pattern("fog")))
	assert.Equal(t, 0.4, SeasonGrowth(Winter))

	assert.Equal(t, resources.Delta{resources.Hope: -1}, ResourceEffect(Drought))
	assert.Equal(t, resources.Delta{resources.Supplies: -2}, ResourceEffect(Storm))
	assert.Nil(t, ResourceEffect(Rain))
}
