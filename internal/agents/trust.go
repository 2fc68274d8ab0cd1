package agents

import (
	"strings"

	"github.com/Kalaith/last-hope/internal/resources"
	"github.com/Kalaith/last-hope/internal/world"
)

// Substrings of an action tag and the trust modifier each one draws on.
var actionModifiers = []struct {
	substr   string
	modifier string
}{
	{"cooperat", "cooperation"},
	{"shar", "sharing"},
	{"research", "research"},
	{"protect", "safety"},
}

// TrustChange computes the trust an action earns with n before any boost.
func TrustChange(n *NPC, action string, c world.Conditions) float64 {
	mods := TraitsOf(n.Personality).TrustModifiers
	change := 0.0
	for _, am := range actionModifiers {
		if !strings.Contains(action, am.substr) {
			continue
		}
		change += mods[am.modifier]
	}
	if c.Resources.Supplies > 50 {
		change++
	}
	if c.Resources.Hope > 70 {
		change++
	}
	return change
}

// UpdateTrust applies the trust an action earns. gainBoost multiplies positive
// changes; pass 1 for none. It returns the applied change.
func UpdateTrust(n *NPC, action string, c world.Conditions, gainBoost float64) float64 {
	change := TrustChange(n, action, c)
	if change > 0 && gainBoost > 0 {
		change *= gainBoost
	}
	return AdjustTrust(n, change)
}

// AdjustTrust adds delta and clamps. It returns the change actually applied.
func AdjustTrust(n *NPC, delta float64) float64 {
	before := n.Trust
	n.Trust = resources.Clamp(n.Trust+delta, MinTrust, MaxTrust)
	return n.Trust - before
}

// Availability is advisory: it reports whether n is willing to talk.
type Availability struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
	Dialogue  string `json:"dialogue,omitempty"`
}

// CheckAvailability reports whether n will engage given the current hope.
func CheckAvailability(n *NPC, hope float64) Availability {
	if n.Trust < 10 {
		return Availability{
			Reason:   "low trust",
			Dialogue: n.Name + " avoids eye contact and turns away. Their trust in you has been broken.",
		}
	}
	if n.Mood == Desperate && hope < 15 {
		return Availability{
			Reason:   "despair",
			Dialogue: n.Name + " stares into the distance, lost in despair. They're not ready to talk.",
		}
	}
	return Availability{Available: true}
}
