package engine

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/Kalaith/last-hope/internal/agents"
	"github.com/Kalaith/last-hope/internal/narrative"
	"github.com/Kalaith/last-hope/internal/research"
	"github.com/Kalaith/last-hope/internal/resources"
)

// ErrChoiceLocked is returned for a gated choice that has not been unlocked.
var ErrChoiceLocked = fmt.Errorf("%w: locked", ErrRequirementsUnmet)

// ChoiceResult is what one decision set in motion.
type ChoiceResult struct {
	Applied      resources.Delta    `json:"applied"`
	Registered   []string           `json:"registeredChains,omitempty"`
	TrustChanges map[string]float64 `json:"trustChanges,omitempty"`
	Cooldown     time.Duration      `json:"cooldown"`
	Scene        string             `json:"scene"`
	Day          DayReport          `json:"day"`
}

// Prompt is what the player is currently being asked.
type Prompt struct {
	SystemEvent string            `json:"systemEvent,omitempty"`
	SceneID     string            `json:"sceneId"`
	Title       string            `json:"title"`
	Text        string            `json:"text"`
	Choices     []PromptChoice    `json:"choices"`
	Stories     []StoryEventBrief `json:"pendingStories,omitempty"`
}

// PromptChoice is a choice as offered, with its gate evaluated.
type PromptChoice struct {
	Index  int    `json:"index"`
	Text   string `json:"text"`
	Locked bool   `json:"locked,omitempty"`
	Unmet  string `json:"unmet,omitempty"`
}

// StoryEventBrief names a story event waiting for an answer.
type StoryEventBrief struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Prompt returns the pending system event if one is waiting, or the current scene.
func (s *Simulation) Prompt() (Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	title, text, choices, err := s.current()
	if err != nil {
		return Prompt{}, err
	}
	st := s.state
	p := Prompt{SystemEvent: st.SystemEvent, SceneID: st.Scene, Title: title, Text: text}
	cond := st.Conditions()
	for i, c := range choices {
		pc := PromptChoice{Index: i, Text: c.Text, Locked: c.Locked(s.granted)}
		if k, unmet := c.Unmet(cond); unmet {
			pc.Unmet = k.String()
		}
		p.Choices = append(p.Choices, pc)
	}
	for _, e := range st.Stories {
		p.Stories = append(p.Stories, StoryEventBrief{ID: e.ID, Title: e.Title})
	}
	return p, nil
}

// current returns the choices on offer: a pending system event pre-empts the scene.
func (s *Simulation) current() (title, text string, choices []narrative.Choice, err error) {
	st := s.state
	if st.SystemEvent != "" {
		if ev, ok := s.catalog.SystemEvent(st.SystemEvent); ok {
			return ev.Title, ev.Text, ev.Choices, nil
		}
		slog.Warn("dropping unknown system event", "id", st.SystemEvent)
		st.SystemEvent = ""
	}
	sc, err := s.catalog.Scene(st.Scene)
	if err != nil {
		return "", "", nil, err
	}
	return sc.Title, sc.Text, sc.Choices, nil
}

func (s *Simulation) granted(unlock string) bool {
	return slices.Contains(s.state.UnlockedChoices, unlock) ||
		research.HasUnlock(unlock, s.state.Research.Completed)
}

// Choose answers the current prompt with the choice at index.
func (s *Simulation) Choose(index int) (ChoiceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Ended() {
		return ChoiceResult{}, fmt.Errorf("%w: %s", ErrRunEnded, s.state.Ending)
	}
	_, _, choices, err := s.current()
	if err != nil {
		return ChoiceResult{}, err
	}
	if index < 0 || index >= len(choices) {
		return ChoiceResult{}, fmt.Errorf("%w: %d", narrative.ErrUnknownChoice, index)
	}
	c := choices[index]
	if c.Locked(s.granted) {
		return ChoiceResult{}, fmt.Errorf("%w: %s", ErrChoiceLocked, c.Unlock)
	}

	scene, fromEvent := s.state.Scene, s.state.SystemEvent != ""
	if fromEvent {
		scene = s.state.SystemEvent
	}
	return s.applyChoice(c, scene, index, fromEvent)
}

// ApplyChoice applies a choice that is not drawn from the catalog.
func (s *Simulation) ApplyChoice(c narrative.Choice) (ChoiceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Ended() {
		return ChoiceResult{}, fmt.Errorf("%w: %s", ErrRunEnded, s.state.Ending)
	}
	return s.applyChoice(c, "", -1, false)
}

// applyChoice gates, applies and follows up one decision, then advances a
// day. Nothing changes when a gate rejects it. An answered system event is
// cleared before the day runs so the next one can fire.
func (s *Simulation) applyChoice(c narrative.Choice, scene string, index int, answersEvent bool) (ChoiceResult, error) {
	st := s.state
	now := s.clock.Now()
	if now.Before(st.CooldownUntil) {
		return ChoiceResult{}, fmt.Errorf("%w: %s remaining", ErrOnCooldown, st.CooldownUntil.Sub(now).Round(time.Millisecond))
	}
	if k, unmet := c.Unmet(st.Conditions()); unmet {
		return ChoiceResult{}, fmt.Errorf("%w: needs %.0f %s", ErrRequirementsUnmet, c.Requirements[k], k)
	}

	tags := c.EffectTags()
	applied := crisisCosts(s, tags, c.Consequences)
	st.apply(applied)
	st.adjustTrust(c.Relationships)

	res := ChoiceResult{Applied: applied, Scene: st.Scene}
	res.Registered = st.Consequences.Register(tags, st.Day)
	if len(tags) > 0 {
		res.TrustChanges = s.updateTrust(tags)
	}

	st.Choices = append(st.Choices, ChoiceRecord{Day: st.Day, Scene: scene, Choice: index, Text: c.Text, Tags: tags})
	if answersEvent {
		st.SystemEvent = ""
	}
	if c.NextScene != "" {
		if _, err := s.catalog.Scene(c.NextScene); err == nil {
			st.Scene = c.NextScene
		} else {
			slog.Warn("choice leads to unknown scene", "scene", scene, "next", c.NextScene)
		}
	}
	res.Scene = st.Scene

	res.Cooldown = s.cooldownFor(c)
	st.CooldownUntil = now.Add(res.Cooldown)
	for _, id := range res.Registered {
		s.EmitEvent(Event{Day: st.Day, Category: "story", Description: "Set in motion: " + id,
			Meta: map[string]any{"chain": id}})
	}

	day, err := s.advanceDay()
	if err != nil {
		return ChoiceResult{}, err
	}
	res.Day = day
	return res, nil
}

// crisisCosts raises the costs of a choice by the surcharges of running
// crises whose tags it carries. Gains are untouched.
func crisisCosts(s *Simulation, tags []string, d resources.Delta) resources.Delta {
	costs := resources.Delta{}
	out := resources.Delta{}
	for k, v := range d {
		if v < 0 {
			costs[k] = -v
			continue
		}
		out[k] = v
	}
	for k, v := range s.state.Scarcity.ModifiedCosts(tags, costs) {
		out[k] = -v
	}
	return out
}

// updateTrust reacts every companion to the choice's tags once.
func (s *Simulation) updateTrust(tags []string) map[string]float64 {
	st := s.state
	cond := st.Conditions()
	boost := research.Boost(research.ActiveBoosts(st.Research.Completed), research.BoostTrustGain)
	action := strings.Join(tags, " ")
	changes := make(map[string]float64, len(st.NPCs))
	for _, n := range st.NPCs {
		if d := agents.UpdateTrust(n, action, cond, boost); d != 0 {
			changes[n.ID] = d
		}
	}
	return changes
}

func (s *Simulation) cooldownFor(c narrative.Choice) time.Duration {
	n := c.Consequences.NonZero()
	for _, v := range c.Relationships {
		if v != 0 {
			n++
		}
	}
	return time.Duration(math.Max(float64(s.cooldownBase), float64(s.cooldownPer)*float64(n)))
}

// CooldownRemaining is how long until the next choice is accepted.
func (s *Simulation) CooldownRemaining() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d := s.state.CooldownUntil.Sub(s.clock.Now()); d > 0 {
		return d
	}
	return 0
}
