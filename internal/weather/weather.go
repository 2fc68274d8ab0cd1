// Package weather holds the weather patterns and seasons of the wasteland and
// maps them to growth and survival modifiers for the ecosystem.
package weather

import (
	"fmt"

	"github.com/Kalaith/last-hope/internal/entropy"
	"github.com/Kalaith/last-hope/internal/resources"
)

// Pattern is the current weather.
type Pattern string

const (
	Stable  Pattern = "stable"
	Rain    Pattern = "rain"
	Drought Pattern = "drought"
	Storm   Pattern = "storm"
)

// Season cycles spring → summer → autumn → winter.
type Season string

const (
	Spring Season = "spring"
	Summer Season = "summer"
	Autumn Season = "autumn"
	Winter Season = "winter"
)

// Next returns the following season. Unknown values restart at spring.
func (s Season) Next() Season {
	switch s {
	case Spring:
		return Summer
	case Summer:
		return Autumn
	case Autumn:
		return Winter
	default:
		return Spring
	}
}

// Valid reports whether s is one of the four seasons.
func (s Season) Valid() bool {
	switch s {
	case Spring, Summer, Autumn, Winter:
		return true
	}
	return false
}

// Modifiers scale plant growth and survival.
type Modifiers struct {
	Growth   float64
	Survival float64
}

var patternMods = map[Pattern]Modifiers{
	Drought: {Growth: 0.3, Survival: 0.7},
	Rain:    {Growth: 1.5, Survival: 1.0},
	Stable:  {Growth: 1.0, Survival: 0.95},
	Storm:   {Growth: 0.8, Survival: 0.6},
}

var seasonGrowth = map[Season]float64{
	Spring: 1.3,
	Summer: 1.1,
	Autumn: 0.8,
	Winter: 0.4,
}

// For returns the modifiers of p. Unknown patterns behave as stable.
func For(p Pattern) Modifiers {
	if m, ok := patternMods[p]; ok {
		return m
	}
	return patternMods[Stable]
}

// Valid reports whether p is a known pattern.
func (p Pattern) Valid() bool {
	_, ok := patternMods[p]
	return ok
}

// SeasonGrowth returns the growth multiplier of s, 1 for unknown seasons.
func SeasonGrowth(s Season) float64 {
	if g, ok := seasonGrowth[s]; ok {
		return g
	}
	return 1
}

// Per-day chances of a transition, scaled by the step length.
const (
	SeasonChangeRate  = 0.05
	WeatherChangeRate = 0.1
)

// Reroll picks a new pattern: stable 40%, rain 30%, drought 20%, storm 10%.
func Reroll(rng entropy.Source) Pattern {
	r := rng.Float64()
	switch {
	case r < 0.4:
		return Stable
	case r < 0.7:
		return Rain
	case r < 0.9:
		return Drought
	default:
		return Storm
	}
}

// Transition is the outcome of one Advance.
type Transition struct {
	Season         Season
	Weather        Pattern
	SeasonChanged  bool
	WeatherChanged bool
}

// Advance rolls the season first, then the weather.
func Advance(p Pattern, s Season, dt float64, rng entropy.Source) Transition {
	t := Transition{Season: s, Weather: p}
	if rng.Float64() < SeasonChangeRate*dt {
		t.Season = s.Next()
		t.SeasonChanged = true
	}
	if rng.Float64() < WeatherChangeRate*dt {
		t.Weather = Reroll(rng)
		t.WeatherChanged = t.Weather != p
	}
	return t
}

// ResourceEffect is the daily toll the weather takes on the survivors.
func ResourceEffect(p Pattern) resources.Delta {
	switch p {
	case Drought:
		return resources.Delta{resources.Hope: -1}
	case Storm:
		return resources.Delta{resources.Supplies: -2}
	}
	return nil
}

// Describe returns a short phrase for status output.
func Describe(p Pattern, s Season) string {
	var sky string
	switch p {
	case Rain:
		sky = "rain on the cracked ground"
	case Drought:
		sky = "drought bakes the soil"
	case Storm:
		sky = "a dust storm rolls through"
	default:
		sky = "the sky holds steady"
	}
	return fmt.Sprintf("%s, %s", seasonDefault(s), sky)
}

func seasonDefault(s Season) string {
	switch s {
	case Spring:
		return "thin spring light"
	case Summer:
		return "harsh summer sun"
	case Autumn:
		return "cool autumn wind"
	case Winter:
		return "bitter winter cold"
	default:
		return "grey skies"
	}
}
