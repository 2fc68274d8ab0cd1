package meta

import (
	"math"
	"slices"

	"github.com/Kalaith/last-hope/internal/agents"
	"github.com/Kalaith/last-hope/internal/resources"
	"github.com/Kalaith/last-hope/internal/world"
)

// Bonuses carry over into every new run.
type Bonuses struct {
	StartingResources resources.Delta    `json:"startingResources"`
	UnlockedChoices   []string           `json:"unlockedChoices"`
	NPCStartingTrust  map[string]float64 `json:"npcStartingTrust"`
}

// Progress is the cross-run profile.
type Progress struct {
	TotalRuns            int             `json:"totalRuns"`
	BestRun              *RunRecord      `json:"bestRun,omitempty"`
	Unlocked             map[string]bool `json:"achievements"`
	UnlockedSeeds        []string        `json:"unlockedSeeds"`
	TotalDaysSurvived    int             `json:"totalDaysSurvived"`
	TotalKnowledgeGained float64         `json:"totalKnowledgeGained"`
	Bonuses              Bonuses         `json:"newGamePlusBonuses"`
}

func NewProgress() Progress {
	return Progress{
		Unlocked:      map[string]bool{},
		UnlockedSeeds: []string{},
		Bonuses: Bonuses{
			StartingResources: resources.Delta{},
			UnlockedChoices:   []string{},
			NPCStartingTrust:  map[string]float64{},
		},
	}
}

func (p *Progress) ensure() {
	if p.Unlocked == nil {
		p.Unlocked = map[string]bool{}
	}
	if p.Bonuses.StartingResources == nil {
		p.Bonuses.StartingResources = resources.Delta{}
	}
	if p.Bonuses.NPCStartingTrust == nil {
		p.Bonuses.NPCStartingTrust = map[string]float64{}
	}
}

// CompleteRun folds a finished run into the profile. history holds the
// earlier runs; achievements are judged against it plus rec. Newly unlocked
// achievements are recorded on rec, their rewards applied, and returned.
func (p *Progress) CompleteRun(rec *RunRecord, history []RunRecord) []Achievement {
	p.ensure()
	p.TotalRuns++
	p.TotalDaysSurvived += rec.DaysSurvived
	p.TotalKnowledgeGained += rec.FinalResources.Knowledge

	all := append(slices.Clone(history), *rec)
	var fresh []Achievement
	for _, a := range achievements {
		if p.Unlocked[a.ID] || !a.unlocked(*rec, all) {
			continue
		}
		p.Unlocked[a.ID] = true
		p.grant(a.Reward)
		fresh = append(fresh, a)
		rec.Achievements = append(rec.Achievements, a.ID)
	}

	if p.BestRun == nil || Better(*rec, *p.BestRun) {
		best := *rec
		p.BestRun = &best
	}
	return fresh
}

func (p *Progress) grant(r Reward) {
	switch r.Type {
	case SeedUnlock:
		if !slices.Contains(p.UnlockedSeeds, r.Seed) {
			p.UnlockedSeeds = append(p.UnlockedSeeds, r.Seed)
		}
	case ResourceBonus:
		p.Bonuses.StartingResources.Merge(r.Resources)
	case NPCFavor:
		for _, n := range agents.Roster() {
			p.Bonuses.NPCStartingTrust[n.ID] += r.Trust
		}
	case SpecialAbility, KnowledgeBoost:
		if !slices.Contains(p.Bonuses.UnlockedChoices, r.Choice) {
			p.Bonuses.UnlockedChoices = append(p.Bonuses.UnlockedChoices, r.Choice)
		}
	}
}

// StartingBonuses is the resource head start for a new run.
func (p Progress) StartingBonuses() resources.Delta {
	return p.Bonuses.StartingResources.Clone()
}

// IsChoiceUnlocked reports whether a gated choice has been earned.
func (p Progress) IsChoiceUnlocked(id string) bool {
	return slices.Contains(p.Bonuses.UnlockedChoices, id)
}

// PrestigeScore rewards volume of play and rarity of achievements.
func (p Progress) PrestigeScore() int {
	score := p.TotalRuns*10 + p.TotalDaysSurvived
	for _, a := range achievements {
		if !p.Unlocked[a.ID] {
			continue
		}
		score += 50
		switch a.Rarity {
		case Rare:
			score += 100
		case Legendary:
			score += 500
		}
	}
	if p.BestRun != nil && p.BestRun.Ending == world.Victory {
		score += 1000
	}
	return score
}

// CompletionPercent is the share of achievements unlocked, rounded down.
func (p Progress) CompletionPercent() int {
	n := 0
	for _, a := range achievements {
		if p.Unlocked[a.ID] {
			n++
		}
	}
	return int(math.Floor(float64(n) / float64(len(achievements)) * 100))
}
