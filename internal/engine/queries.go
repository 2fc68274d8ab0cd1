package engine

import (
	"github.com/Kalaith/last-hope/internal/agents"
	"github.com/Kalaith/last-hope/internal/construction"
	"github.com/Kalaith/last-hope/internal/ecosystem"
	"github.com/Kalaith/last-hope/internal/research"
	"github.com/Kalaith/last-hope/internal/resources"
	"github.com/Kalaith/last-hope/internal/scarcity"
	"github.com/Kalaith/last-hope/internal/weather"
	"github.com/Kalaith/last-hope/internal/world"
)

// NPCStatus is a companion as shown in status output.
type NPCStatus struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Mood     agents.Mood `json:"mood"`
	Trust    float64     `json:"trust"`
	Concerns []string    `json:"concerns"`
}

// Status is a read-only summary of the run.
type Status struct {
	Day             int                                 `json:"daysSurvived"`
	Scene           string                              `json:"scene"`
	Resources       resources.Set                       `json:"resources"`
	Levels          map[resources.Kind]resources.Status `json:"levels"`
	SoilHealth      float64                             `json:"soilHealth"`
	MaxSoilHealth   float64                             `json:"maxSoilHealth"`
	Diversity       float64                             `json:"plantDiversity"`
	Plants          int                                 `json:"plants"`
	Ripe            int                                 `json:"ripe"`
	Weather         weather.Pattern                     `json:"weather"`
	Season          weather.Season                      `json:"season"`
	Outlook         string                              `json:"outlook"`
	Plot            string                              `json:"plot"`
	Restoration     float64                             `json:"restorationProgress"`
	NPCs            []NPCStatus                         `json:"npcs"`
	Settlement      construction.Stats                  `json:"settlement"`
	CurrentResearch string                              `json:"currentResearch,omitempty"`
	Crises          []scarcity.Event                    `json:"crises"`
	Warnings        []string                            `json:"warnings,omitempty"`
	PendingStories  int                                 `json:"pendingStories"`
	SystemEvent     string                              `json:"systemEvent,omitempty"`
	CooldownMs      int64                               `json:"cooldownMs"`
	Ending          world.Ending                        `json:"ending,omitempty"`
}

// Status summarizes the run.
func (s *Simulation) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	out := Status{
		Day:             st.Day,
		Scene:           st.Scene,
		Resources:       st.Resources,
		Levels:          resources.CheckStatus(st.Resources),
		SoilHealth:      st.Ecosystem.SoilHealth,
		MaxSoilHealth:   st.MaxSoil,
		Diversity:       st.Ecosystem.Diversity,
		Plants:          len(st.Ecosystem.Plants),
		Weather:         st.Ecosystem.Weather,
		Season:          st.Ecosystem.Season,
		Outlook:         weather.Describe(st.Ecosystem.Weather, st.Ecosystem.Season),
		Plot:            ecosystem.Describe(&st.Ecosystem),
		Restoration:     st.Restoration,
		Settlement:      st.Construction.Stats(),
		CurrentResearch: st.Research.Current,
		Crises:          st.Scarcity.Events(),
		Warnings:        scarcity.CriticalWarnings(st.Scarcity.Pressures(st.Resources)),
		PendingStories:  len(st.Stories),
		SystemEvent:     st.SystemEvent,
		Ending:          st.Ending,
	}
	for _, p := range st.Ecosystem.Plants {
		if p.Maturity >= ecosystem.HarvestMaturity && p.Health > ecosystem.HarvestHealth {
			out.Ripe++
		}
	}
	for _, n := range st.NPCs {
		out.NPCs = append(out.NPCs, NPCStatus{ID: n.ID, Name: n.Name, Mood: n.Mood, Trust: n.Trust,
			Concerns: append([]string(nil), n.Concerns...)})
	}
	if d := st.CooldownUntil.Sub(s.clock.Now()); d > 0 {
		out.CooldownMs = d.Milliseconds()
	}
	return out
}

// State returns a deep copy of the world state.
func (s *Simulation) State() *WorldState {
	return s.Snapshot()
}

// Pressures rates the resources under the most strain, highest first.
func (s *Simulation) Pressures() []scarcity.Pressure {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Scarcity.Pressures(s.state.Resources)
}

// AvailableStructures lists every blueprint with the levels startable now.
func (s *Simulation) AvailableStructures() []construction.Option {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Construction.Available(s.state.Conditions())
}

// Structures lists finished buildings and projects under way.
func (s *Simulation) Structures() construction.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.state.Construction
	return construction.State{
		Structures: append([]construction.Structure(nil), c.Structures...),
		Projects:   append([]construction.Project(nil), c.Projects...),
	}
}

// ResearchView is the research tree with the run's place in it.
type ResearchView struct {
	Tree        []research.Node    `json:"tree"`
	Progress    research.Progress  `json:"progress"`
	Boosts      map[string]float64 `json:"activeBoosts"`
	Unlocks     research.Unlocks   `json:"unlocks"`
	Recommended []string           `json:"recommended"`
}

// ResearchTree returns the whole tree and the run's progress through it.
func (s *Simulation) ResearchTree() ResearchView {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.state.Research
	p.Completed = append([]string(nil), p.Completed...)
	p.Available = append([]string(nil), p.Available...)
	return ResearchView{
		Tree:        research.Tree(),
		Progress:    p,
		Boosts:      research.ActiveBoosts(p.Completed),
		Unlocks:     research.Unlocked(p.Completed),
		Recommended: s.recommendations(),
	}
}

// ActiveBoosts folds the boosts of completed research.
func (s *Simulation) ActiveBoosts() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return research.ActiveBoosts(s.state.Research.Completed)
}

// Recommendations suggests up to three research topics for the current situation.
func (s *Simulation) Recommendations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recommendations()
}

func (s *Simulation) recommendations() []string {
	st := s.state
	return research.Recommend(st.Research, st.Conditions(), len(st.Construction.Structures))
}
