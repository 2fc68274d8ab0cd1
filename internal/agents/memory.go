// Dialogue lines and the short memory of what each NPC has said.
package agents

import (
	"github.com/Kalaith/last-hope/internal/weather"
	"github.com/Kalaith/last-hope/internal/world"
)

// MaxDialogueMemory is the number of remembered lines.
const MaxDialogueMemory = 10

type responseSet struct {
	highHope string
	lowHope  string
	drought  string
	success  string
}

var responses = map[Personality]responseSet{
	Optimistic: {
		highHope: "Things are looking up! I can feel the change in the air.",
		lowHope:  "Don't give up. I've seen darker days than this.",
		drought:  "The rain will come again. It always does.",
		success:  "See? I told you we could do this together!",
	},
	Pragmatic: {
		highHope: "Good progress, but we need to stay focused on practical matters.",
		lowHope:  "We need to be realistic about our situation and make hard choices.",
		drought:  "Water conservation is critical. We need rationing protocols.",
		success:  "This is encouraging, but we can't get complacent.",
	},
	Protective: {
		highHope: "The children are smiling again. That's what matters most.",
		lowHope:  "We have to protect what's left. That's our duty.",
		drought:  "The children need water first. Always.",
		success:  "A safer future for the next generation - that's worth everything.",
	},
	Scientific: {
		highHope: "The data is encouraging. Soil pH is improving measurably.",
		lowHope:  "The scientific method requires patience. Results take time.",
		drought:  "Fascinating adaptation mechanisms. Some species thrive in arid conditions.",
		success:  "Excellent! This validates our restoration hypothesis.",
	},
}

var concernLines = map[string]string{
	"children_safety":   "The children ask me when the world will be green again. I don't know what to tell them.",
	"food_shortage":     "Our food stores are dwindling. We need to find more sources soon.",
	"water_purifier":    "The water purifier is showing signs of strain. If it fails...",
	"supplies":          "We're burning through our supplies faster than we can replenish them.",
	"soil_analysis":     "I've been studying the soil samples. The contamination patterns are... concerning.",
	"seed_preservation": "These seeds may be our only chance. We must preserve their genetic integrity.",
	"morale":            "People are starting to lose hope. We need something to rally around.",
	"community_unity":   "Tensions are rising. We need to work together or we'll fall apart.",
	"efficiency":        "Our current methods are inefficient. We're wasting precious resources.",
}

// Remark picks the line n says about current conditions and remembers it.
func Remark(n *NPC, c world.Conditions) string {
	rs, ok := responses[n.Personality]
	if !ok {
		rs = responses[Pragmatic]
	}
	var line, category string
	switch {
	case c.Weather == weather.Drought:
		line, category = rs.drought, "weather"
	case c.Resources.Hope > TraitsOf(n.Personality).HighHope:
		line, category = rs.highHope, "greeting"
	default:
		line, category = rs.lowHope, "greeting"
	}
	Remember(n, category, line)
	return line
}

// Celebrate is what n says after a success.
func Celebrate(n *NPC) string {
	line := responses[n.Personality].success
	Remember(n, "success", line)
	return line
}

// ConcernLine voices the most pressing concern of n.
func ConcernLine(n *NPC) string {
	if len(n.Concerns) > 0 {
		if line, ok := concernLines[n.Concerns[0]]; ok {
			Remember(n, "concern", line)
			return line
		}
	}
	return "Something's been troubling me lately."
}

// Remember records "category:first 50 chars" and keeps the last MaxDialogueMemory.
func Remember(n *NPC, category, line string) {
	r := []rune(line)
	if len(r) > 50 {
		r = r[:50]
	}
	n.DialogueMemory = append(n.DialogueMemory, category+":"+string(r))
	if over := len(n.DialogueMemory) - MaxDialogueMemory; over > 0 {
		n.DialogueMemory = append([]string(nil), n.DialogueMemory[over:]...)
	}
}
