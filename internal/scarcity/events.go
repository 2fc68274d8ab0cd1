// Package scarcity runs the crises that drain resources for a number of days
// and reports how close each resource is to running out.
package scarcity

import (
	"github.com/Kalaith/last-hope/internal/entropy"
	"github.com/Kalaith/last-hope/internal/resources"
	"github.com/Kalaith/last-hope/internal/weather"
	"github.com/Kalaith/last-hope/internal/world"
)

// Severity grades a crisis for display.
type Severity string

const (
	Mild     Severity = "mild"
	Moderate Severity = "moderate"
	Severe   Severity = "severe"
	Critical Severity = "critical"
)

// Event is a catalog crisis.
type Event struct {
	ID              string             `json:"id"`
	Resource        resources.Kind     `json:"resource"`
	Severity        Severity           `json:"severity"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	Duration        int                `json:"duration"`
	DailyDrain      float64            `json:"dailyDrain"`
	MaxCapacity     float64            `json:"maxCapacity,omitempty"`
	ChoiceModifiers map[string]float64 `json:"choiceModifiers,omitempty"`

	// trigger draws from rng only after its threshold holds.
	trigger func(c world.Conditions, rng entropy.Source) bool
}

var catalog = []Event{
	{
		ID:              "water_purifier_failure",
		Resource:        resources.Supplies,
		Severity:        Severe,
		Title:           "Water Purifier Malfunction",
		Description:     "The water purification system is failing. Without clean water, supplies are being consumed faster to compensate.",
		Duration:        5,
		DailyDrain:      8,
		ChoiceModifiers: map[string]float64{"water_related": 15},
		trigger: func(c world.Conditions, rng entropy.Source) bool {
			return c.Resources.Supplies < 30 && rng.Float64() < 0.3
		},
	},
	{
		ID:              "harsh_winter",
		Resource:        resources.Supplies,
		Severity:        Moderate,
		Title:           "Harsh Winter Conditions",
		Description:     "An unexpected cold snap increases energy needs. People need more food and warmth to survive.",
		Duration:        10,
		DailyDrain:      4,
		ChoiceModifiers: map[string]float64{"outdoor": 10},
		trigger: func(c world.Conditions, rng entropy.Source) bool {
			return c.Season == weather.Winter && rng.Float64() < 0.4
		},
	},
	{
		ID:          "seed_contamination",
		Resource:    resources.Seeds,
		Severity:    Critical,
		Title:       "Seed Contamination Crisis",
		Description: "Some of your precious seeds have been contaminated by residual toxins. Dr. Chen works frantically to save what he can.",
		Duration:    3,
		DailyDrain:  1,
		MaxCapacity: 35,
		trigger: func(c world.Conditions, rng entropy.Source) bool {
			return c.Resources.Seeds > 10 && c.SoilHealth < 20 && rng.Float64() < 0.25
		},
	},
	{
		ID:              "knowledge_loss",
		Resource:        resources.Knowledge,
		Severity:        Moderate,
		Title:           "Critical Information Lost",
		Description:     "A damaged storage device contained important research data. Dr. Chen looks devastated as months of work vanish.",
		Duration:        7,
		DailyDrain:      2,
		ChoiceModifiers: map[string]float64{"research": 20},
		trigger: func(c world.Conditions, rng entropy.Source) bool {
			return c.Resources.Knowledge > 30 && rng.Float64() < 0.2
		},
	},
	{
		ID:              "morale_collapse",
		Resource:        resources.Hope,
		Severity:        Severe,
		Title:           "Community Morale Crisis",
		Description:     "Despair spreads through the settlement. People question whether restoration is possible. Some talk of abandoning the mission.",
		Duration:        8,
		DailyDrain:      5,
		ChoiceModifiers: map[string]float64{"risky": 15},
		trigger: func(c world.Conditions, _ entropy.Source) bool {
			return c.Resources.Hope < 25 && c.AnyMood("desperate")
		},
	},
}

// Catalog returns the crises in evaluation order.
func Catalog() []Event {
	return append([]Event(nil), catalog...)
}

// Lookup returns a catalog crisis by id.
func Lookup(id string) (Event, bool) {
	for _, e := range catalog {
		if e.ID == id {
			return e, true
		}
	}
	return Event{}, false
}
