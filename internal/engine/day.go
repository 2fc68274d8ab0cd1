package engine

import (
	"fmt"
	"log/slog"
	"maps"
	"math"
	"slices"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Kalaith/last-hope/internal/agents"
	"github.com/Kalaith/last-hope/internal/consequence"
	"github.com/Kalaith/last-hope/internal/construction"
	"github.com/Kalaith/last-hope/internal/ecosystem"
	"github.com/Kalaith/last-hope/internal/meta"
	"github.com/Kalaith/last-hope/internal/narrative"
	"github.com/Kalaith/last-hope/internal/research"
	"github.com/Kalaith/last-hope/internal/resources"
	"github.com/Kalaith/last-hope/internal/scarcity"
	"github.com/Kalaith/last-hope/internal/weather"
	"github.com/Kalaith/last-hope/internal/world"
)

// DayReport is everything one day changed that the player should hear about.
type DayReport struct {
	Day                 int                      `json:"day"`
	Delta               resources.Delta          `json:"delta"`
	CompletedResearch   *research.Node           `json:"completedResearch,omitempty"`
	CompletedProjects   []construction.Project   `json:"completedProjects,omitempty"`
	ScarcityEvents      []scarcity.Event         `json:"triggeredScarcityEvents,omitempty"`
	Cascades            []consequence.StoryEvent `json:"triggeredCascades,omitempty"`
	SystemEvent         *narrative.SystemEvent   `json:"systemEvent,omitempty"`
	MaintenanceWarnings []string                 `json:"maintenanceWarnings,omitempty"`
	DeadPlants          []ecosystem.Plant        `json:"deadPlants,omitempty"`
	SeasonChanged       bool                     `json:"seasonChanged,omitempty"`
	WeatherChanged      bool                     `json:"weatherChanged,omitempty"`
	Ending              world.Ending             `json:"ending,omitempty"`
}

// AdvanceDay runs one full day. It is rejected once the run has ended.
func (s *Simulation) AdvanceDay() (DayReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advanceDay()
}

// advanceDay runs every system in a fixed order. Resource changes collect
// in one delta that is clamped into the state in a single pass.
func (s *Simulation) advanceDay() (DayReport, error) {
	st := s.state
	if st.Ended() {
		return DayReport{}, fmt.Errorf("%w: %s", ErrRunEnded, st.Ending)
	}

	st.Day++
	rep := DayReport{Day: st.Day}
	boosts := research.ActiveBoosts(st.Research.Completed)

	// Upkeep and weather.
	delta := resources.DailyConsumption(st.Resources, st.Ecosystem.SoilHealth)
	delta.Merge(weather.ResourceEffect(st.Ecosystem.Weather))

	// Plants.
	eco := ecosystem.Simulate(&st.Ecosystem, 1, s.rng)
	if gain := eco.SoilAfter - eco.SoilBefore; gain > 0 {
		boosted := eco.SoilBefore + gain*research.Boost(boosts, research.BoostSoilHealth)
		st.Ecosystem.SoilHealth = resources.Clamp(boosted, 0, resources.SoilHealth.Max())
	}
	rep.DeadPlants = eco.Dead
	rep.SeasonChanged, rep.WeatherChanged = eco.SeasonChanged, eco.WeatherChanged

	// Companions.
	cond := st.Conditions()
	for _, n := range st.NPCs {
		agents.RefreshMood(n, cond)
	}

	// Settlement.
	ops := st.Construction.DailyOperations()
	delta.Merge(boostProduction(ops.Production, boosts))
	delta.Merge(ops.Maintenance.Negate())
	rep.CompletedProjects = ops.Completed
	rep.MaintenanceWarnings = ops.Warnings

	// Research.
	if node, ok := st.Research.Tick(); ok {
		rep.CompletedResearch = &node
	}

	// Crises.
	delta.Merge(st.Scarcity.DailyDrain())
	rep.ScarcityEvents = st.Scarcity.Check(st.Conditions(), s.rng)

	st.apply(delta)
	if limit := st.Scarcity.SeedCap(); st.Resources.Seeds > limit {
		st.Resources.Seeds = limit
	}
	rep.Delta = delta

	// Fallout and story.
	for _, c := range st.Consequences.Due(st.Conditions()) {
		ev := consequence.NewStoryEvent(c)
		st.Stories = append(st.Stories, ev)
		rep.Cascades = append(rep.Cascades, ev)
	}
	if st.SystemEvent == "" {
		if ev, ok := st.EventLog.Check(s.catalog.SystemEvents, st.Conditions()); ok {
			st.SystemEvent = ev.ID
			rep.SystemEvent = &ev
		}
	}

	st.trackPeaks()
	st.Ending = CheckEnding(st)
	rep.Ending = st.Ending
	s.captureRNG()

	s.recordDay(rep)
	if s.OnDayReport != nil {
		s.OnDayReport(rep)
	}
	return rep, nil
}

// boostProduction applies research multipliers to settlement output.
func boostProduction(prod resources.Delta, boosts map[string]float64) resources.Delta {
	out := prod.Clone()
	scale := map[resources.Kind]string{
		resources.Supplies:  research.BoostDailySupplies,
		resources.Knowledge: research.BoostKnowledgeGeneration,
		resources.Health:    research.BoostHealthRecovery,
	}
	for k, name := range scale {
		if v, ok := out[k]; ok && v > 0 {
			out[k] = v * research.Boost(boosts, name)
		}
	}
	return out
}

func (s *Simulation) recordDay(rep DayReport) {
	st := s.state
	for _, p := range rep.DeadPlants {
		s.EmitEvent(Event{Day: st.Day, Category: "ecosystem",
			Description: fmt.Sprintf("A %s withered and died", speciesName(p.Species))})
	}
	if rep.SeasonChanged {
		s.EmitEvent(Event{Day: st.Day, Category: "ecosystem",
			Description: "The season turns to " + string(st.Ecosystem.Season)})
		slog.Info("season change", "day", st.Day, "season", st.Ecosystem.Season)
	}
	for _, p := range rep.CompletedProjects {
		s.EmitEvent(Event{Day: st.Day, Category: "construction",
			Description: fmt.Sprintf("Construction of %s level %d is complete", p.StructureType, p.TargetLevel)})
	}
	for _, w := range rep.MaintenanceWarnings {
		s.EmitEvent(Event{Day: st.Day, Category: "construction", Description: w})
	}
	if n := rep.CompletedResearch; n != nil {
		s.EmitEvent(Event{Day: st.Day, Category: "research",
			Description: "Research complete: " + n.Name, Meta: map[string]any{"research": n.ID}})
	}
	if rep.CompletedResearch != nil || len(rep.CompletedProjects) > 0 {
		for _, n := range st.NPCs {
			if n.Mood == agents.Hopeful {
				s.EmitEvent(Event{Day: st.Day, Category: "social", Description: n.Name + ": " + agents.Celebrate(n)})
			}
		}
	}
	for _, e := range rep.ScarcityEvents {
		s.EmitEvent(Event{Day: st.Day, Category: "scarcity", Description: e.Title,
			Meta: map[string]any{"event": e.ID, "severity": e.Severity, "duration": e.Duration}})
	}
	for _, c := range rep.Cascades {
		s.EmitEvent(Event{Day: st.Day, Category: "story", Description: c.Title,
			Meta: map[string]any{"story": c.ID, "chain": c.ChainID}})
	}
	if e := rep.SystemEvent; e != nil {
		s.EmitEvent(Event{Day: st.Day, Category: "story", Description: e.Title,
			Meta: map[string]any{"systemEvent": e.ID}})
	}
	if rep.Ending != world.Ongoing {
		s.EmitEvent(Event{Day: st.Day, Category: "ending", Description: "The run has ended: " + string(rep.Ending)})
	}

	slog.Info("daily report",
		"day", humanize.Ordinal(st.Day),
		"hope", fmt.Sprintf("%.0f", st.Resources.Hope),
		"health", fmt.Sprintf("%.0f", st.Resources.Health),
		"supplies", fmt.Sprintf("%.0f", st.Resources.Supplies),
		"knowledge", fmt.Sprintf("%.0f", st.Resources.Knowledge),
		"seeds", fmt.Sprintf("%.0f", st.Resources.Seeds),
		"soil", fmt.Sprintf("%.1f", st.Ecosystem.SoilHealth),
		"plants", humanize.Comma(int64(len(st.Ecosystem.Plants))),
		"deaths", len(rep.DeadPlants),
		"weather", st.Ecosystem.Weather,
		"season", st.Ecosystem.Season,
		"crises", len(st.Scarcity.Active),
		"stories", len(st.Stories),
	)
	if rep.Ending != world.Ongoing {
		slog.Info("run ended", "ending", rep.Ending, "days", st.Day)
	}
}

func speciesName(id string) string {
	if sp, ok := ecosystem.Lookup(id); ok {
		return sp.Name
	}
	return id
}

// CheckEnding evaluates the terminal conditions in priority order. A failure
// always pre-empts victory on the same day.
func CheckEnding(s *WorldState) world.Ending {
	c := s.Conditions()
	switch {
	case c.Resources.Hope <= resources.HopeGameOver:
		return world.HopeLost
	case c.Resources.Health <= 0:
		return world.Starvation
	case c.SoilHealth <= 0 && c.Day > world.CollapseGrace:
		return world.EcosystemCollapse
	case c.SoilHealth >= world.VictorySoil && c.Diversity >= world.VictoryDiversity &&
		len(c.NPCs) > 0 && c.AllTrust(func(t float64) bool { return t >= world.VictoryTrust }):
		return world.Victory
	}
	return world.Ongoing
}

// RunRecord summarizes the run for the history. It is meaningful once the
// run has ended but can be taken at any time.
func (s *Simulation) RunRecord(now time.Time) meta.RunRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	return meta.RunRecord{
		ID:             meta.NewRunID(now),
		EndedAt:        now,
		Background:     st.Background,
		DaysSurvived:   st.Day,
		FinalResources: st.Resources,
		FinalEcosystem: meta.EcosystemSnapshot{
			SoilHealth:  math.Round(st.Ecosystem.SoilHealth*10) / 10,
			Diversity:   st.Ecosystem.Diversity,
			TotalPlants: len(st.Ecosystem.Plants),
		},
		Ending:          st.Ending,
		PeakTrust:       maps.Clone(st.PeakTrust),
		SeedsDiscovered: slices.Clone(st.Ecosystem.Discovered),
		MaxSoilHealth:   st.MaxSoil,
		ChoicesMade:     len(st.Choices),
	}
}
