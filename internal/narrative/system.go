package narrative

import (
	"github.com/Kalaith/last-hope/internal/weather"
	"github.com/Kalaith/last-hope/internal/world"
)

// Range bounds a value inclusively on either side.
type Range struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

func (r *Range) holds(v float64) bool {
	if r == nil {
		return true
	}
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// Threshold requires a value strictly below and/or above a limit.
type Threshold struct {
	Below *float64 `json:"below,omitempty"`
	Above *float64 `json:"above,omitempty"`
}

func (t *Threshold) holds(v float64) bool {
	if t == nil {
		return true
	}
	if t.Below != nil && v >= *t.Below {
		return false
	}
	if t.Above != nil && v <= *t.Above {
		return false
	}
	return true
}

type TrustTrigger struct {
	Character string  `json:"character"`
	Below     float64 `json:"below"`
}

type StructureTrigger struct {
	Count int    `json:"count"`
	Type  string `json:"type,omitempty"`
}

type DayTrigger struct {
	Min int `json:"min,omitempty"`
}

// Trigger is a conjunction: every field that is set must hold.
type Trigger struct {
	Weather    weather.Pattern   `json:"weatherPattern,omitempty"`
	Soil       *Range            `json:"soilHealth,omitempty"`
	Knowledge  *Range            `json:"knowledge,omitempty"`
	Supplies   *Threshold        `json:"supplies,omitempty"`
	Hope       *Threshold        `json:"hope,omitempty"`
	Health     *Threshold        `json:"health,omitempty"`
	Seeds      *Threshold        `json:"seeds,omitempty"`
	Trust      *TrustTrigger     `json:"trustLevel,omitempty"`
	Mood       string            `json:"npcMood,omitempty"`
	Structures *StructureTrigger `json:"baseStructures,omitempty"`
	Days       *DayTrigger       `json:"daysSurvived,omitempty"`
}

// Holds evaluates the trigger against c.
func (t Trigger) Holds(c world.Conditions) bool {
	if t.Weather != "" && c.Weather != t.Weather {
		return false
	}
	if !t.Soil.holds(c.SoilHealth) || !t.Knowledge.holds(c.Resources.Knowledge) {
		return false
	}
	if !t.Supplies.holds(c.Resources.Supplies) || !t.Hope.holds(c.Resources.Hope) ||
		!t.Health.holds(c.Resources.Health) || !t.Seeds.holds(c.Resources.Seeds) {
		return false
	}
	if t.Trust != nil {
		trust, ok := c.Trust(t.Trust.Character)
		if !ok || trust >= t.Trust.Below {
			return false
		}
	}
	if t.Mood != "" && !c.AnyMood(t.Mood) {
		return false
	}
	if s := t.Structures; s != nil {
		if len(c.Structures) < s.Count {
			return false
		}
		if s.Type != "" && c.StructureLevel(s.Type) == 0 {
			return false
		}
	}
	if t.Days != nil && c.Day < t.Days.Min {
		return false
	}
	return true
}

// SystemEvent is a story beat raised by the state of the world rather than by
// the player.
type SystemEvent struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Text     string   `json:"text"`
	Priority int      `json:"priority"`
	Cooldown int      `json:"cooldown,omitempty"` // days
	OnceOnly bool     `json:"onceOnly,omitempty"`
	Triggers Trigger  `json:"triggers"`
	Choices  []Choice `json:"choices"`
}

// EventLog remembers when system events last fired. It is part of the saved run.
type EventLog struct {
	LastTriggered map[string]int  `json:"lastTriggered"`
	Once          map[string]bool `json:"triggeredOnce"`
}

func NewEventLog() EventLog {
	return EventLog{LastTriggered: map[string]int{}, Once: map[string]bool{}}
}

func (l *EventLog) eligible(e SystemEvent, day int) bool {
	if e.OnceOnly && l.Once[e.ID] {
		return false
	}
	if e.Cooldown > 0 {
		if last, ok := l.LastTriggered[e.ID]; ok && day-last < e.Cooldown {
			return false
		}
	}
	return true
}

// Check fires the highest-priority eligible event whose triggers hold and
// records it. events are expected in priority order, as LoadCatalog leaves them.
func (l *EventLog) Check(events []SystemEvent, c world.Conditions) (SystemEvent, bool) {
	if l.LastTriggered == nil {
		l.LastTriggered = map[string]int{}
	}
	if l.Once == nil {
		l.Once = map[string]bool{}
	}
	for _, e := range events {
		if !l.eligible(e, c.Day) || !e.Triggers.Holds(c) {
			continue
		}
		l.LastTriggered[e.ID] = c.Day
		if e.OnceOnly {
			l.Once[e.ID] = true
		}
		return e, true
	}
	return SystemEvent{}, false
}
