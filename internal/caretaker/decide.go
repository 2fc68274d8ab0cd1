package caretaker

import (
	"fmt"
	"slices"

	"github.com/Kalaith/last-hope/internal/ecosystem"
)

// Actions the caretaker can take.
const (
	ActionNone     = "none"
	ActionResolve  = "resolve"
	ActionHarvest  = "harvest"
	ActionPlant    = "plant"
	ActionResearch = "research"
	ActionBuild    = "build"
	ActionMaintain = "maintain"
	ActionChoose   = "choice"
	ActionAdvance  = "day"
)

// Spending floors. Building never takes a resource below these.
const (
	minSuppliesAfterBuild = 30
	minHealthAfterBuild   = 50
	maintainBelow         = 50 // structure condition that earns a repair
	maxPlants             = 12
)

// Decision is one action with the request that performs it.
type Decision struct {
	Action    string `json:"action"`
	Rationale string `json:"rationale"`
	Path      string `json:"path,omitempty"`
	Body      any    `json:"body,omitempty"`
}

// Decide picks one action by fixed priority. Actions that failed on the
// previous cycles are skipped so a rejected request is not retried forever.
func Decide(snap *Snapshot, h *Health, mem *Memory) Decision {
	st := snap.Status
	if st.Ending != "" {
		return Decision{Action: ActionNone, Rationale: "run has ended: " + st.Ending}
	}
	blocked := func(action string) bool { return mem != nil && mem.Failing(action) }

	// Stories wait for an answer; soften them while the run is under strain.
	if len(snap.Scene.Stories) > 0 && !blocked(ActionResolve) {
		story := snap.Scene.Stories[0]
		option := "accept"
		if !h.Calm() {
			option = "mitigate"
		}
		return Decision{
			Action:    ActionResolve,
			Rationale: fmt.Sprintf("answer %q (%s) while %s", story.Title, option, h.CrisisLevel),
			Path:      "/api/v1/resolve",
			Body:      map[string]string{"id": story.ID, "option": option},
		}
	}

	if st.Ripe > 0 && !blocked(ActionHarvest) {
		return Decision{
			Action:    ActionHarvest,
			Rationale: fmt.Sprintf("%d plants ripe", st.Ripe),
			Path:      "/api/v1/harvest",
		}
	}

	if st.Resources.Seeds >= 1 && st.Plants < maxPlants && !blocked(ActionPlant) {
		if species := pickSpecies(st.SoilHealth, st.Resources.Knowledge); species != "" {
			return Decision{
				Action:    ActionPlant,
				Rationale: fmt.Sprintf("plant %s on soil %.0f", species, st.SoilHealth),
				Path:      "/api/v1/plant",
				Body:      map[string]string{"species": species},
			}
		}
	}

	if st.CurrentResearch == "" && len(snap.Research.Recommended) > 0 && !blocked(ActionResearch) {
		id := snap.Research.Recommended[0]
		return Decision{
			Action:    ActionResearch,
			Rationale: "start recommended research " + id,
			Path:      "/api/v1/research",
			Body:      map[string]string{"id": id},
		}
	}

	if h.Calm() && !blocked(ActionMaintain) {
		for _, s := range snap.Structures.Structures {
			if s.Condition < maintainBelow {
				return Decision{
					Action:    ActionMaintain,
					Rationale: fmt.Sprintf("%s condition %.0f", s.Type, s.Condition),
					Path:      "/api/v1/maintain",
					Body:      map[string]string{"id": s.ID},
				}
			}
		}
	}

	if h.Calm() && !blocked(ActionBuild) {
		if kind, ok := pickBuild(snap); ok {
			return Decision{
				Action:    ActionBuild,
				Rationale: "affordable without touching reserves: " + kind,
				Path:      "/api/v1/build",
				Body:      map[string]any{"type": kind, "level": 1},
			}
		}
	}

	if st.CooldownMs == 0 && !blocked(ActionChoose) {
		for _, c := range snap.Scene.Choices {
			if c.Locked || c.Unmet != "" {
				continue
			}
			return Decision{
				Action:    ActionChoose,
				Rationale: fmt.Sprintf("%s: %q", snap.Scene.Title, c.Text),
				Path:      "/api/v1/choice",
				Body:      map[string]int{"index": c.Index},
			}
		}
	}

	return Decision{
		Action:    ActionAdvance,
		Rationale: fmt.Sprintf("nothing to do on day %d, top pressure %s", st.Day, h.Top.Resource),
		Path:      "/api/v1/day",
	}
}

// pickSpecies returns the plantable species that improves soil most.
func pickSpecies(soil, knowledge float64) string {
	species := ecosystem.Catalog()
	slices.Reverse(species)
	for _, sp := range species {
		if sp.SoilRequirement > soil {
			continue
		}
		if sp.SoilRequirement > ecosystem.AdvancedSoil && knowledge < ecosystem.AdvancedKnowledge {
			continue
		}
		return sp.ID
	}
	return ""
}

// pickBuild returns the first unbuilt blueprint whose first level leaves
// the reserves above the spending floors.
func pickBuild(snap *Snapshot) (string, bool) {
	taken := map[string]bool{}
	for _, s := range snap.Structures.Structures {
		taken[s.Type] = true
	}
	for _, p := range snap.Structures.Projects {
		taken[p.Type] = true
	}

	res := snap.Status.Resources
	for _, opt := range snap.Structures.Available {
		bp := opt.Blueprint
		if taken[bp.Type] || !slices.Contains(opt.AvailableLevels, 1) || len(bp.Levels) == 0 {
			continue
		}
		cost := bp.Levels[0].BuildCost
		affordable := true
		for name, v := range cost {
			if res.Get(name) < v {
				affordable = false
			}
		}
		if !affordable ||
			res.Supplies-cost["supplies"] < minSuppliesAfterBuild ||
			res.Health-cost["health"] < minHealthAfterBuild {
			continue
		}
		return bp.Type, true
	}
	return "", false
}
