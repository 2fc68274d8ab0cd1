package meta

import (
	"github.com/Kalaith/last-hope/internal/ecosystem"
	"github.com/Kalaith/last-hope/internal/resources"
	"github.com/Kalaith/last-hope/internal/world"
)

type Rarity string

const (
	Common    Rarity = "common"
	Rare      Rarity = "rare"
	Legendary Rarity = "legendary"
)

type RewardType string

const (
	SeedUnlock     RewardType = "seed_unlock"
	ResourceBonus  RewardType = "resource_bonus"
	NPCFavor       RewardType = "npc_favor"
	KnowledgeBoost RewardType = "knowledge_boost"
	SpecialAbility RewardType = "special_ability"
)

// Reward is granted once, when its achievement unlocks.
type Reward struct {
	Type        RewardType      `json:"type"`
	Seed        string          `json:"seed,omitempty"`
	Resources   resources.Delta `json:"resources,omitempty"`
	Trust       float64         `json:"trust,omitempty"`
	Choice      string          `json:"choice,omitempty"`
	Description string          `json:"description"`
}

// Achievement is judged when a run ends, against that run and the whole history.
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Rarity      Rarity `json:"rarity"`
	Reward      Reward `json:"reward"`

	unlocked func(run RunRecord, history []RunRecord) bool
}

func anyRun(history []RunRecord, pred func(RunRecord) bool) bool {
	for _, r := range history {
		if pred(r) {
			return true
		}
	}
	return false
}

var achievements = []Achievement{
	{
		ID: "first_victory", Name: "Green Thumb", Rarity: Common,
		Description: "Complete your first successful restoration run",
		Reward: Reward{Type: SeedUnlock, Seed: "desert_bloom",
			Description: "Desert Resurrection Plant can be sown in future runs without study"},
		unlocked: func(_ RunRecord, h []RunRecord) bool {
			return anyRun(h, func(r RunRecord) bool { return r.Ending == world.Victory })
		},
	},
	{
		ID: "master_gardener", Name: "Master Gardener", Rarity: Rare,
		Description: "Reach 80+ soil health in a single run",
		Reward: Reward{Type: ResourceBonus, Resources: resources.Delta{resources.Knowledge: 5},
			Description: "+5 starting knowledge in future runs"},
		unlocked: func(r RunRecord, _ []RunRecord) bool { return r.MaxSoilHealth >= 80 },
	},
	{
		ID: "trusted_leader", Name: "Trusted Leader", Rarity: Rare,
		Description: "Earn 90+ trust with every companion",
		Reward: Reward{Type: NPCFavor, Trust: 15,
			Description: "Start future runs with +15 trust with all companions"},
		unlocked: func(r RunRecord, _ []RunRecord) bool {
			if len(r.PeakTrust) == 0 {
				return false
			}
			for _, v := range r.PeakTrust {
				if v < 90 {
					return false
				}
			}
			return true
		},
	},
	{
		ID: "survivor", Name: "Against All Odds", Rarity: Legendary,
		Description: "Survive 100 days in the wasteland",
		Reward: Reward{Type: ResourceBonus,
			Resources:   resources.Delta{resources.Health: 10, resources.Supplies: 10},
			Description: "+10 starting health and supplies in future runs"},
		unlocked: func(_ RunRecord, h []RunRecord) bool {
			return anyRun(h, func(r RunRecord) bool { return r.DaysSurvived >= 100 })
		},
	},
	{
		ID: "diversity_champion", Name: "Biodiversity Champion", Rarity: Legendary,
		Description: "Cultivate every known species in one run",
		Reward: Reward{Type: SeedUnlock, Seed: "forest_sapling",
			Description: "Forest Sapling can be sown in future runs without study"},
		unlocked: func(r RunRecord, _ []RunRecord) bool {
			return len(r.SeedsDiscovered) >= len(ecosystem.Catalog())
		},
	},
	{
		ID: "knowledge_seeker", Name: "Scholar of the Waste", Rarity: Rare,
		Description: "Accumulate 500+ total knowledge across all runs",
		Reward: Reward{Type: SpecialAbility, Choice: "advanced_choices",
			Description: "Unlocks advanced dialogue options and scientific choices"},
		unlocked: func(_ RunRecord, h []RunRecord) bool {
			total := 0.0
			for _, r := range h {
				total += r.FinalResources.Knowledge
			}
			return total >= 500
		},
	},
	{
		ID: "hope_bringer", Name: "Beacon of Hope", Rarity: Rare,
		Description: "Win a run with 80+ hope",
		Reward: Reward{Type: ResourceBonus, Resources: resources.Delta{resources.Hope: 20},
			Description: "+20 starting hope in future runs"},
		unlocked: func(_ RunRecord, h []RunRecord) bool {
			return anyRun(h, func(r RunRecord) bool {
				return r.Ending == world.Victory && r.FinalResources.Hope >= 80
			})
		},
	},
	{
		ID: "tragic_hero", Name: "Tragic Hero", Rarity: Common,
		Description: "Lose hope after achieving significant progress",
		Reward: Reward{Type: KnowledgeBoost, Choice: "resilience_understanding",
			Description: "Gain deeper understanding of hope mechanics and warning signs"},
		unlocked: func(_ RunRecord, h []RunRecord) bool {
			return anyRun(h, func(r RunRecord) bool {
				return r.Ending == world.HopeLost && r.MaxSoilHealth >= 40 && r.DaysSurvived >= 30
			})
		},
	},
}

// Achievements lists every achievement in display order.
func Achievements() []Achievement {
	return append([]Achievement(nil), achievements...)
}

// LookupAchievement returns the achievement with id.
func LookupAchievement(id string) (Achievement, bool) {
	for _, a := range achievements {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}
