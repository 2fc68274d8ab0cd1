package consequence

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/Kalaith/last-hope/internal/resources"
	"github.com/Kalaith/last-hope/internal/world"
)

// Watcher is a persisted conditional. Its predicate lives in the chain table.
type Watcher struct {
	ChainID   string `json:"chainId"`
	ID        string `json:"id"`
	Triggered bool   `json:"hasTriggered"`
}

// State is the scheduled fallout of one run.
type State struct {
	Pending  []Consequence `json:"pending"`
	Watchers []Watcher     `json:"watchers"`
}

// Register schedules every chain the tags resolve to. Each chain is
// registered at most once per call, and an armed watcher is not duplicated.
// It returns the chain ids registered.
func (s *State) Register(tags []string, day int) []string {
	var registered []string
	seen := map[string]bool{}
	for _, tag := range tags {
		id, ok := ResolveTag(tag)
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ch := chains[id]
		for _, d := range ch.delayed {
			c := d.clone()
			c.ChainID = id
			c.TriggerDay = day + d.TriggerDay
			s.Pending = append(s.Pending, c)
		}
		for _, w := range ch.watchers {
			if s.armed(id, w.id) {
				continue
			}
			s.Watchers = append(s.Watchers, Watcher{ChainID: id, ID: w.id})
		}
		registered = append(registered, id)
	}
	return registered
}

func (s *State) armed(chainID, id string) bool {
	for _, w := range s.Watchers {
		if w.ChainID == chainID && w.ID == id && !w.Triggered {
			return true
		}
	}
	return false
}

// Due drains every pending entry whose day has come and fires every armed
// watcher whose condition holds. A watcher fires at most once.
func (s *State) Due(c world.Conditions) []Consequence {
	var due []Consequence
	kept := s.Pending[:0]
	for _, p := range s.Pending {
		if p.TriggerDay <= c.Day {
			due = append(due, p)
			continue
		}
		kept = append(kept, p)
	}
	s.Pending = kept

	for i := range s.Watchers {
		w := &s.Watchers[i]
		if w.Triggered {
			continue
		}
		cond, ok := findConditional(w.ChainID, w.ID)
		if !ok {
			slog.Warn("dropping watcher with unknown condition", "chain", w.ChainID, "id", w.ID)
			w.Triggered = true
			continue
		}
		if !cond.holds(c) {
			continue
		}
		fired := cond.consequence.clone()
		fired.ChainID = w.ChainID
		fired.TriggerDay = c.Day
		due = append(due, fired)
		w.Triggered = true
	}
	return due
}

func findConditional(chainID, id string) (conditional, bool) {
	ch, ok := chains[chainID]
	if !ok {
		return conditional{}, false
	}
	for _, w := range ch.watchers {
		if w.id == id {
			return w, true
		}
	}
	return conditional{}, false
}

func (c Consequence) clone() Consequence {
	out := c
	out.Consequences = c.Consequences.Clone()
	if c.Relationships != nil {
		out.Relationships = make(map[string]float64, len(c.Relationships))
		for k, v := range c.Relationships {
			out.Relationships[k] = v
		}
	}
	out.FollowUps = append([]string(nil), c.FollowUps...)
	return out
}

// Option ids of a story event.
const (
	OptionAccept   = "accept"
	OptionMitigate = "mitigate"
)

// Option is one answer to a story event.
type Option struct {
	ID            string             `json:"id"`
	Text          string             `json:"text"`
	Consequences  resources.Delta    `json:"consequences"`
	Relationships map[string]float64 `json:"relationships,omitempty"`
}

// StoryEvent is fallout waiting for the player's answer.
type StoryEvent struct {
	ID       string   `json:"id"`
	SourceID string   `json:"sourceId"`
	ChainID  string   `json:"chainId"`
	Day      int      `json:"day"`
	Title    string   `json:"title"`
	Text     string   `json:"text"`
	Options  []Option `json:"options"`
}

// NewStoryEvent offers to accept c as-is or soften it.
func NewStoryEvent(c Consequence) StoryEvent {
	var halved map[string]float64
	if c.Relationships != nil {
		halved = make(map[string]float64, len(c.Relationships))
		for npc, v := range c.Relationships {
			halved[npc] = math.Ceil(v * 0.5)
		}
	}
	return StoryEvent{
		ID:       fmt.Sprintf("%s@%d", c.ID, c.TriggerDay),
		SourceID: c.ID,
		ChainID:  c.ChainID,
		Day:      c.TriggerDay,
		Title:    c.Title,
		Text:     c.Description,
		Options: []Option{
			{
				ID:            OptionAccept,
				Text:          "Accept the consequences and adapt.",
				Consequences:  c.Consequences.Clone(),
				Relationships: c.clone().Relationships,
			},
			{
				ID:            OptionMitigate,
				Text:          "Try to mitigate the effects.",
				Consequences:  Mitigate(c.Consequences),
				Relationships: halved,
			},
		},
	}
}

// Option returns the option with id.
func (e StoryEvent) Option(id string) (Option, bool) {
	for _, o := range e.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// Mitigate halves every negative delta, rounding toward zero, and keeps the rest.
func Mitigate(d resources.Delta) resources.Delta {
	out := make(resources.Delta, len(d))
	for k, v := range d {
		if v < 0 {
			out[k] = math.Ceil(v * 0.5)
			continue
		}
		out[k] = v
	}
	return out
}
