// Package agents models the three companions: their moods, concerns, trust
// in the player and the lines they remember saying.
package agents

import "github.com/Kalaith/last-hope/internal/world"

// Mood is how an NPC currently feels about the future.
type Mood string

const (
	Hopeful   Mood = "hopeful"
	Neutral   Mood = "neutral"
	Worried   Mood = "worried"
	Desperate Mood = "desperate"
)

// Personality selects thresholds, trust modifiers and concern priorities.
type Personality string

const (
	Optimistic Personality = "optimistic"
	Pragmatic  Personality = "pragmatic"
	Protective Personality = "protective"
	Scientific Personality = "scientific"
)

// Trust bounds.
const (
	MinTrust = 0
	MaxTrust = 100
)

// NPC is one companion.
type NPC struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Mood           Mood        `json:"mood"`
	Trust          float64     `json:"trustLevel"`
	Personality    Personality `json:"personality"`
	DialogueMemory []string    `json:"dialogueMemory"`
	Concerns       []string    `json:"currentConcerns"`
}

// Roster returns the starting companions.
func Roster() []*NPC {
	return []*NPC{
		{
			ID: "elena", Name: "Elena", Mood: Worried, Trust: 30, Personality: Protective,
			DialogueMemory: []string{}, Concerns: []string{"children_safety", "food_shortage"},
		},
		{
			ID: "marcus", Name: "Marcus", Mood: Neutral, Trust: 25, Personality: Pragmatic,
			DialogueMemory: []string{}, Concerns: []string{"water_purifier", "supplies"},
		},
		{
			ID: "chen", Name: "Dr. Chen", Mood: Hopeful, Trust: 40, Personality: Scientific,
			DialogueMemory: []string{}, Concerns: []string{"soil_analysis", "seed_preservation"},
		},
	}
}

// Find returns the NPC with id, or nil.
func Find(npcs []*NPC, id string) *NPC {
	for _, n := range npcs {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// Views projects the roster into rule-readable form.
func Views(npcs []*NPC) []world.NPCView {
	out := make([]world.NPCView, len(npcs))
	for i, n := range npcs {
		out[i] = world.NPCView{ID: n.ID, Trust: n.Trust, Mood: string(n.Mood)}
	}
	return out
}

// Clone deep-copies an NPC.
func (n *NPC) Clone() *NPC {
	c := *n
	c.DialogueMemory = append([]string(nil), n.DialogueMemory...)
	c.Concerns = append([]string(nil), n.Concerns...)
	return &c
}
