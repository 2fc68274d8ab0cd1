package engine

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/Kalaith/last-hope/internal/agents"
	"github.com/Kalaith/last-hope/internal/consequence"
	"github.com/Kalaith/last-hope/internal/construction"
	"github.com/Kalaith/last-hope/internal/ecosystem"
	"github.com/Kalaith/last-hope/internal/research"
	"github.com/Kalaith/last-hope/internal/resources"
)

// SeedsPerPlanting is the seed cost of one plant.
const SeedsPerPlanting = 1

func (s *Simulation) active() error {
	if s.state.Ended() {
		return fmt.Errorf("%w: %s", ErrRunEnded, s.state.Ending)
	}
	return nil
}

// Plant sows one seed of species.
func (s *Simulation) Plant(species string) (ecosystem.Plant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.active(); err != nil {
		return ecosystem.Plant{}, err
	}
	st := s.state
	if st.Resources.Seeds < SeedsPerPlanting {
		return ecosystem.Plant{}, ErrNoSeeds
	}
	p, err := ecosystem.NewPlant(&st.Ecosystem, species, st.Resources.Knowledge)
	if err != nil {
		return ecosystem.Plant{}, err
	}
	p.PlantedOn = st.Day
	st.Ecosystem.Add(p)
	st.Ecosystem.Diversity = ecosystem.Diversity(st.Ecosystem.Plants)
	st.Resources.Apply(resources.Delta{resources.Seeds: -SeedsPerPlanting})

	s.EmitEvent(Event{Day: st.Day, Category: "ecosystem",
		Description: "Planted " + speciesName(species), Meta: map[string]any{"plant": p.ID}})
	return p, nil
}

// Harvest gathers seeds from every ripe plant.
func (s *Simulation) Harvest() (ecosystem.HarvestResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.active(); err != nil {
		return ecosystem.HarvestResult{}, err
	}
	st := s.state
	boost := research.Boost(research.ActiveBoosts(st.Research.Completed), research.BoostSeedYield)
	res := ecosystem.Harvest(&st.Ecosystem, boost)
	if res.Harvested == 0 {
		return res, ErrNothingToHarvest
	}
	st.Resources.Apply(resources.Delta{resources.Seeds: res.Seeds})
	if limit := st.Scarcity.SeedCap(); st.Resources.Seeds > limit {
		st.Resources.Seeds = limit
	}

	s.EmitEvent(Event{Day: st.Day, Category: "ecosystem",
		Description: fmt.Sprintf("Harvested %s %s for %.0f seeds",
			humanize.Comma(int64(res.Harvested)), plural(res.Harvested, "plant", "plants"), res.Seeds)})
	return res, nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// StartConstruction pays for and queues a building project.
func (s *Simulation) StartConstruction(kind string, level int) (construction.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.active(); err != nil {
		return construction.Project{}, err
	}
	st := s.state
	p, err := st.Construction.StartConstruction(kind, level, &st.Resources, st.Conditions())
	if err != nil {
		return construction.Project{}, err
	}
	s.EmitEvent(Event{Day: st.Day, Category: "construction",
		Description: fmt.Sprintf("Started building %s level %d (%d days)", kind, level, p.TotalDays)})
	return p, nil
}

// PerformMaintenance repairs one structure.
func (s *Simulation) PerformMaintenance(id string) (resources.Delta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.active(); err != nil {
		return nil, err
	}
	cost, err := s.state.Construction.PerformMaintenance(id, &s.state.Resources)
	if err != nil {
		return nil, err
	}
	s.EmitEvent(Event{Day: s.state.Day, Category: "construction", Description: "Repaired structure " + id})
	return cost, nil
}

// StartResearch begins studying a node.
func (s *Simulation) StartResearch(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.active(); err != nil {
		return err
	}
	st := s.state
	if err := st.Research.Start(id, st.Resources.Knowledge); err != nil {
		return err
	}
	n, _ := research.Lookup(id)
	s.EmitEvent(Event{Day: st.Day, Category: "research",
		Description: fmt.Sprintf("Began researching %s (%d days)", n.Name, n.Days())})
	return nil
}

// ResolveEvent answers a pending story event and applies the chosen option.
func (s *Simulation) ResolveEvent(id, option string) (consequence.Option, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.active(); err != nil {
		return consequence.Option{}, err
	}
	st := s.state
	idx := -1
	for i, e := range st.Stories {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return consequence.Option{}, fmt.Errorf("%w: %q", ErrUnknownStory, id)
	}
	ev := st.Stories[idx]
	opt, ok := ev.Option(option)
	if !ok {
		return consequence.Option{}, fmt.Errorf("%w: %q", ErrUnknownOption, option)
	}

	st.apply(opt.Consequences)
	st.adjustTrust(opt.Relationships)
	st.Stories = append(st.Stories[:idx], st.Stories[idx+1:]...)
	st.trackPeaks()
	st.Ending = CheckEnding(st)

	s.EmitEvent(Event{Day: st.Day, Category: "story", Description: ev.Title + ": " + opt.Text,
		Meta: map[string]any{"story": ev.ID, "option": opt.ID}})
	slog.Info("story resolved", "story", ev.ID, "option", opt.ID, "ending", st.Ending)
	return opt, nil
}

// TalkResult is one exchange with a companion.
type TalkResult struct {
	NPC          string              `json:"npc"`
	Name         string              `json:"name"`
	Mood         agents.Mood         `json:"mood"`
	Trust        float64             `json:"trust"`
	Availability agents.Availability `json:"availability"`
	Remark       string              `json:"remark,omitempty"`
	Concern      string              `json:"concern,omitempty"`
}

// Talk asks a companion what is on their mind. A companion who refuses to
// engage says nothing and remembers nothing.
func (s *Simulation) Talk(npcID string) (TalkResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	n := agents.Find(st.NPCs, npcID)
	if n == nil {
		return TalkResult{}, fmt.Errorf("%w: %q", ErrUnknownNPC, npcID)
	}
	res := TalkResult{NPC: n.ID, Name: n.Name, Mood: n.Mood, Trust: n.Trust,
		Availability: agents.CheckAvailability(n, st.Resources.Hope)}
	if !res.Availability.Available {
		return res, nil
	}
	res.Remark = agents.Remark(n, st.Conditions())
	res.Concern = agents.ConcernLine(n)
	return res, nil
}
