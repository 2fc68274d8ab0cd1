package scarcity

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Kalaith/last-hope/internal/resources"
)

// Trend is a coarse direction read from the current value.
type Trend string

const (
	Improving Trend = "improving"
	Stable    Trend = "stable"
	Worsening Trend = "worsening"
)

// Pressure is how scarce one resource is, 0–100.
type Pressure struct {
	Resource        resources.Kind `json:"resource"`
	Pressure        float64        `json:"pressure"`
	Trend           Trend          `json:"trend"`
	TimeToDepletion *int           `json:"timeToDepletion,omitempty"`
}

// Base supply use assumed when projecting depletion.
const baseSupplyUse = 3

func trendOf(v float64) Trend {
	switch {
	case v < 25:
		return Worsening
	case v > 60:
		return Improving
	}
	return Stable
}

func days(n float64) *int {
	d := int(n)
	return &d
}

// Pressures rates hope, supplies, seeds and health, highest pressure first.
func (s *State) Pressures(set resources.Set) []Pressure {
	out := make([]Pressure, 0, 4)

	hope := Pressure{Resource: resources.Hope, Pressure: math.Max(0, 100-2*set.Hope), Trend: trendOf(set.Hope)}
	if set.Hope <= 10 {
		hope.TimeToDepletion = days(math.Ceil(set.Hope / 2))
	}
	out = append(out, hope)

	use := baseSupplyUse + s.SupplyDrain()
	supplies := Pressure{Resource: resources.Supplies, Pressure: math.Min(100, (100-set.Supplies)+10*use), Trend: trendOf(set.Supplies)}
	if use > 0 {
		supplies.TimeToDepletion = days(math.Ceil(set.Supplies / use))
	}
	out = append(out, supplies)

	seeds := Pressure{Resource: resources.Seeds, Trend: trendOf(set.Seeds)}
	if set.Seeds < 5 {
		seeds.Pressure = 80
	} else {
		seeds.Pressure = math.Max(0, (10-set.Seeds)*10)
	}
	if set.Seeds <= 2 {
		seeds.TimeToDepletion = days(set.Seeds)
	}
	out = append(out, seeds)

	health := Pressure{Resource: resources.Health, Pressure: math.Max(0, 100-1.5*set.Health), Trend: trendOf(set.Health)}
	if set.Health <= 15 {
		health.TimeToDepletion = days(math.Ceil(set.Health / 3))
	}
	out = append(out, health)

	sort.SliceStable(out, func(i, j int) bool { return out[i].Pressure > out[j].Pressure })
	return out
}

// CriticalWarnings turns high pressures into alert lines.
func CriticalWarnings(ps []Pressure) []string {
	var warnings []string
	for _, p := range ps {
		name := p.Resource.String()
		switch {
		case p.Pressure >= 80 && p.TimeToDepletion != nil:
			warnings = append(warnings, fmt.Sprintf("%s CRITICAL: %d days remaining", strings.ToUpper(name), *p.TimeToDepletion))
		case p.Pressure >= 80:
			warnings = append(warnings, strings.ToUpper(name)+" at critical levels")
		case p.Pressure >= 60:
			warnings = append(warnings, strings.ToUpper(name[:1])+name[1:]+" running low")
		}
	}
	return warnings
}
