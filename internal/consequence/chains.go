// Package consequence schedules the delayed and conditional fallout of major
// decisions and turns it into story events the player must answer.
package consequence

import (
	"sort"

	"github.com/agnivade/levenshtein"

	"github.com/Kalaith/last-hope/internal/resources"
	"github.com/Kalaith/last-hope/internal/world"
)

// Consequence is one scheduled piece of fallout.
type Consequence struct {
	ID            string             `json:"id"`
	ChainID       string             `json:"chainId"`
	TriggerDay    int                `json:"triggerDay"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	Consequences  resources.Delta    `json:"consequences"`
	Relationships map[string]float64 `json:"relationships,omitempty"`
	FollowUps     []string           `json:"followUpEvents,omitempty"`
}

type conditional struct {
	id          string
	holds       func(c world.Conditions) bool
	consequence Consequence
}

// Chain is the full fallout of one decision tag.
type Chain struct {
	ID        string
	Immediate resources.Delta // shown to the player; the choice itself carries the applied effects
	delayed   []Consequence   // TriggerDay holds the offset in days
	watchers  []conditional
}

var chains = map[string]Chain{
	"prioritize_food_over_restoration": {
		ID:        "prioritize_food_over_restoration",
		Immediate: resources.Delta{resources.Supplies: 15, resources.Hope: -5},
		delayed: []Consequence{{
			ID:            "food_shortage_aftermath",
			TriggerDay:    7,
			Title:         "Short-Term Thinking",
			Description:   `Your focus on immediate survival has consequences. Elena confronts you: "We ate well for a week, but now what? We have no sustainable plan."`,
			Consequences:  resources.Delta{resources.Hope: -15},
			Relationships: map[string]float64{"elena": -15, "marcus": -5},
			FollowUps:     []string{"community_meeting_crisis"},
		}},
		watchers: []conditional{{
			id:    "starvation_spiral",
			holds: func(c world.Conditions) bool { return c.Resources.Supplies < 10 },
			consequence: Consequence{
				ID:            "desperation_sets_in",
				Title:         "Desperation",
				Description:   "People are desperate. Marcus suggests raiding other settlements. The group looks to you for guidance.",
				Consequences:  resources.Delta{resources.Hope: -25},
				Relationships: map[string]float64{"marcus": 10, "elena": -20, "chen": -15},
			},
		}},
	},
	"share_seeds_with_strangers": {
		ID:        "share_seeds_with_strangers",
		Immediate: resources.Delta{resources.Seeds: -2, resources.Hope: 10},
		delayed: []Consequence{{
			ID:            "seed_sharing_network",
			TriggerDay:    21,
			Title:         "The Network Grows",
			Description:   "The group you helped has established contact with other settlements. They return with valuable information about clean water sources and offer to trade rare seeds.",
			Consequences:  resources.Delta{resources.Seeds: 3, resources.Knowledge: 15, resources.Supplies: 10},
			Relationships: map[string]float64{"elena": 10, "chen": 15},
			FollowUps:     []string{"trading_network_established"},
		}},
		watchers: []conditional{{
			id: "reputation_spreads",
			holds: func(c world.Conditions) bool {
				return c.AllTrust(func(t float64) bool { return t > 60 })
			},
			consequence: Consequence{
				ID:            "hope_beacon",
				Title:         "Beacon of Hope",
				Description:   "Word has spread about your settlement. More survivors arrive seeking guidance. Your reputation precedes you.",
				Consequences:  resources.Delta{resources.Hope: 30, resources.Knowledge: 10},
				Relationships: map[string]float64{"elena": 20, "marcus": 15, "chen": 20},
			},
		}},
	},
	"plant_aggressive_restoration": {
		ID:        "plant_aggressive_restoration",
		Immediate: resources.Delta{resources.Seeds: -3, resources.Supplies: -10, resources.Hope: 15},
		delayed: []Consequence{{
			ID:            "restoration_breakthrough",
			TriggerDay:    10,
			Title:         "Restoration Breakthrough",
			Description:   `Dr. Chen is amazed by the results: "The aggressive planting has triggered a cascade effect. The soil microbiome is recovering faster than we projected!"`,
			Consequences:  resources.Delta{resources.SoilHealth: 25, resources.Seeds: 2},
			Relationships: map[string]float64{"chen": 25},
			FollowUps:     []string{"research_breakthrough"},
		}},
		watchers: []conditional{{
			id:    "ecosystem_tipping_point",
			holds: func(c world.Conditions) bool { return c.SoilHealth > 40 },
			consequence: Consequence{
				ID:            "wildlife_returns",
				Title:         "Wildlife Returns",
				Description:   "Something extraordinary happens - you spot the first birds in years. Small insects buzz around the growing plants. The ecosystem is truly awakening.",
				Consequences:  resources.Delta{resources.Hope: 40, resources.SoilHealth: 15, resources.Seeds: 5},
				Relationships: map[string]float64{"elena": 15, "marcus": 10, "chen": 30},
			},
		}},
	},
}

// Lookup returns a chain by exact id.
func Lookup(id string) (Chain, bool) {
	c, ok := chains[id]
	return c, ok
}

// ChainIDs lists every chain id in sorted order.
func ChainIDs() []string {
	ids := make([]string, 0, len(chains))
	for id := range chains {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ResolveTag maps an effect tag to a chain id. An exact match wins; otherwise
// the closest chain id within a length-scaled edit distance is accepted.
func ResolveTag(tag string) (string, bool) {
	if _, ok := chains[tag]; ok {
		return tag, true
	}
	if len(tag) < 3 {
		return "", false
	}
	best, bestDist := "", -1
	for _, id := range ChainIDs() {
		dist := levenshtein.ComputeDistance(tag, id)
		if dist > levenshteinLimit(len(id)) {
			continue
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = id, dist
		}
	}
	return best, bestDist >= 0
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
