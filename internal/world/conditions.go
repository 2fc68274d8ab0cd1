// Package world defines the read-only view of a run that rules are evaluated
// against, the ending kinds, character backgrounds and starting site generation.
package world

import (
	"github.com/Kalaith/last-hope/internal/resources"
	"github.com/Kalaith/last-hope/internal/weather"
)

// NPCView is what rules may read about a companion.
type NPCView struct {
	ID    string  `json:"id"`
	Trust float64 `json:"trust"`
	Mood  string  `json:"mood"`
}

// Conditions is a snapshot of a run at one moment.
type Conditions struct {
	Day         int             `json:"day"`
	Resources   resources.Set   `json:"resources"`
	SoilHealth  float64         `json:"soilHealth"`
	Diversity   float64         `json:"diversity"`
	PlantCount  int             `json:"plantCount"`
	Weather     weather.Pattern `json:"weather"`
	Season      weather.Season  `json:"season"`
	Restoration float64         `json:"restorationProgress"`
	NPCs        []NPCView       `json:"npcs"`
	Structures  map[string]int  `json:"structures"` // type → highest level
}

// Value reads any resource kind, including the world metrics.
func (c Conditions) Value(k resources.Kind) float64 {
	switch k {
	case resources.SoilHealth:
		return c.SoilHealth
	case resources.Restoration:
		return c.Restoration
	}
	return c.Resources.Get(k)
}

// Trust returns the trust of one NPC.
func (c Conditions) Trust(id string) (float64, bool) {
	for _, n := range c.NPCs {
		if n.ID == id {
			return n.Trust, true
		}
	}
	return 0, false
}

// AllTrust reports whether every NPC satisfies pred. False with no NPCs.
func (c Conditions) AllTrust(pred func(float64) bool) bool {
	if len(c.NPCs) == 0 {
		return false
	}
	for _, n := range c.NPCs {
		if !pred(n.Trust) {
			return false
		}
	}
	return true
}

// CountTrust counts NPCs whose trust is at least min.
func (c Conditions) CountTrust(min float64) int {
	n := 0
	for _, v := range c.NPCs {
		if v.Trust >= min {
			n++
		}
	}
	return n
}

// AnyMood reports whether some NPC has the given mood.
func (c Conditions) AnyMood(mood string) bool {
	for _, n := range c.NPCs {
		if n.Mood == mood {
			return true
		}
	}
	return false
}

// StructureLevel returns the built level of a structure type, 0 if absent.
func (c Conditions) StructureLevel(kind string) int {
	return c.Structures[kind]
}

// Ending is how a run finished. The zero value means the run continues.
type Ending string

const (
	Ongoing           Ending = ""
	HopeLost          Ending = "hope_lost"
	Starvation        Ending = "starvation"
	EcosystemCollapse Ending = "ecosystem_collapse"
	Victory           Ending = "victory"
)

// Victory thresholds.
const (
	VictorySoil      = 80
	VictoryDiversity = 5
	VictoryTrust     = 70
	CollapseGrace    = 20 // days before barren soil ends a run
)
