// Mood and concern evaluation.
package agents

import "github.com/Kalaith/last-hope/internal/world"

// Traits are the fixed numbers behind a personality.
type Traits struct {
	HighHope       float64
	LowHope        float64
	TrustModifiers map[string]float64
}

var traits = map[Personality]Traits{
	Optimistic: {HighHope: 60, LowHope: 30, TrustModifiers: map[string]float64{"cooperation": 2, "sharing": 3, "optimism": 2}},
	Pragmatic:  {HighHope: 50, LowHope: 20, TrustModifiers: map[string]float64{"planning": 3, "efficiency": 2, "realism": 2}},
	Protective: {HighHope: 40, LowHope: 25, TrustModifiers: map[string]float64{"safety": 3, "children": 4, "sacrifice": 2}},
	Scientific: {HighHope: 70, LowHope: 40, TrustModifiers: map[string]float64{"research": 3, "methodology": 2, "discovery": 3}},
}

// TraitsOf returns the traits of p. Unknown personalities read as pragmatic.
func TraitsOf(p Personality) Traits {
	if t, ok := traits[p]; ok {
		return t
	}
	return traits[Pragmatic]
}

// MaxConcerns caps the concern list.
const MaxConcerns = 3

// RefreshMood sets mood from hope and the concerns held before this call,
// then regenerates concerns for the new conditions.
func RefreshMood(n *NPC, c world.Conditions) {
	t := TraitsOf(n.Personality)
	hope := c.Resources.Hope
	switch {
	case hope >= t.HighHope:
		n.Mood = Hopeful
	case hope <= t.LowHope:
		n.Mood = Desperate
	case severity(n.Concerns, c) > 2:
		n.Mood = Worried
	default:
		n.Mood = Neutral
	}
	n.Concerns = concernsFor(n.Personality, c)
}

// severity counts concerns that the conditions currently justify.
func severity(concerns []string, c world.Conditions) int {
	level := 0
	for _, concern := range concerns {
		var hit bool
		switch concern {
		case "food_shortage":
			hit = c.Resources.Supplies < 30
		case "children_safety":
			hit = c.Resources.Health < 50
		case "water_purifier":
			hit = c.Resources.Supplies < 20
		case "soil_analysis":
			hit = c.SoilHealth < 25
		case "morale":
			hit = c.Resources.Hope < 40
		}
		if hit {
			level++
		}
	}
	return level
}

func concernsFor(p Personality, c world.Conditions) []string {
	var out []string
	add := func(cond bool, concern string) {
		if cond {
			out = append(out, concern)
		}
	}
	r := c.Resources
	switch p {
	case Protective:
		add(r.Health < 50, "children_safety")
		add(r.Supplies < 30, "food_shortage")
		add(r.Hope < 30, "group_security")
	case Pragmatic:
		add(r.Supplies < 40, "resource_management")
		add(c.SoilHealth < 30, "efficiency")
		add(r.Knowledge < 20, "planning")
	case Scientific:
		add(c.SoilHealth < 50, "soil_analysis")
		add(r.Seeds < 5, "seed_preservation")
		add(r.Knowledge < 30, "research_progress")
	case Optimistic:
		add(r.Hope < 50, "morale")
		add(c.CountTrust(50) < 2, "community_unity")
		add(c.Restoration < 20, "long_term_hope")
	}
	if len(out) == 0 {
		out = append(out, "general_wellbeing")
	}
	if len(out) > MaxConcerns {
		out = out[:MaxConcerns]
	}
	return out
}
