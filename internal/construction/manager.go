package construction

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/Kalaith/last-hope/internal/resources"
	"github.com/Kalaith/last-hope/internal/world"
)

var (
	ErrUnknownStructure  = errors.New("unknown structure type")
	ErrInvalidLevel      = errors.New("invalid structure level")
	ErrLocked            = errors.New("structure locked")
	ErrAlreadyBuilt      = errors.New("structure already built")
	ErrUnderConstruction = errors.New("structure already under construction")
	ErrUnaffordable      = errors.New("insufficient resources")
	ErrNoStructure       = errors.New("no such structure")
)

// Decay and repair tunables.
const (
	DailyDecay         = 0.5
	MinCondition       = 20
	WarnCondition      = 40
	RepairAmount       = 30
	RepairCostFactor   = 3
	WorkshopBonusLevel = 3
	WorkshopBonus      = 1.25
)

// Structure is a finished building.
type Structure struct {
	ID              string  `json:"id"`
	Type            string  `json:"type"`
	Level           int     `json:"level"`
	Condition       float64 `json:"condition"`
	Efficiency      float64 `json:"efficiency"`
	DaysBuilt       int     `json:"daysBuilt"`
	Active          bool    `json:"isActive"`
	LastMaintenance int     `json:"lastMaintenance"`
}

// Project is a building under way. Its cost was paid when it started.
type Project struct {
	StructureType  string          `json:"structureType"`
	TargetLevel    int             `json:"targetLevel"`
	DaysRemaining  int             `json:"daysRemaining"`
	TotalDays      int             `json:"totalDays"`
	ResourcesSpent resources.Delta `json:"resourcesSpent"`
}

// State is the settlement.
type State struct {
	Structures []Structure `json:"structures"`
	Projects   []Project   `json:"constructionProjects"`
}

func (s *State) find(kind string) *Structure {
	for i := range s.Structures {
		if s.Structures[i].Type == kind {
			return &s.Structures[i]
		}
	}
	return nil
}

// Levels maps each built type to its level.
func (s *State) Levels() map[string]int {
	out := make(map[string]int, len(s.Structures))
	for _, st := range s.Structures {
		if st.Level > out[st.Type] {
			out[st.Type] = st.Level
		}
	}
	return out
}

// CanBuild checks unlock requirements, the existing level and the build cost,
// in that order, returning the first failure.
func (s *State) CanBuild(kind string, level int, c world.Conditions) error {
	bp, ok := LookupBlueprint(kind)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStructure, kind)
	}
	lvl, ok := bp.level(level)
	if !ok {
		return fmt.Errorf("%w: %s has no level %d", ErrInvalidLevel, bp.Name, level)
	}

	u := bp.Unlock
	if u.Knowledge > 0 && c.Resources.Knowledge < u.Knowledge {
		return fmt.Errorf("%w: requires %.0f Knowledge", ErrLocked, u.Knowledge)
	}
	if u.Restoration > 0 && c.Restoration < u.Restoration {
		return fmt.Errorf("%w: requires %.0f%% Restoration Progress", ErrLocked, u.Restoration)
	}
	for _, pre := range u.Prerequisites {
		if s.find(pre) == nil {
			name := pre
			if pb, ok := LookupBlueprint(pre); ok {
				name = pb.Name
			}
			return fmt.Errorf("%w: requires %s", ErrLocked, name)
		}
	}

	if existing := s.find(kind); existing != nil && existing.Level >= level {
		return fmt.Errorf("%w: already have %s Level %d", ErrAlreadyBuilt, bp.Name, existing.Level)
	}

	if k, ok := c.Resources.Meets(lvl.BuildCost); !ok {
		return fmt.Errorf("%w: %s need %.0f, have %.0f", ErrUnaffordable, k, lvl.BuildCost[k], c.Resources.Get(k))
	}
	return nil
}

// StartConstruction debits the build cost from res and queues the project.
// Nothing is debited on failure.
func (s *State) StartConstruction(kind string, level int, res *resources.Set, c world.Conditions) (Project, error) {
	c.Resources = *res
	if err := s.CanBuild(kind, level, c); err != nil {
		return Project{}, err
	}
	for _, p := range s.Projects {
		if p.StructureType == kind {
			return Project{}, fmt.Errorf("%w: %s", ErrUnderConstruction, kind)
		}
	}
	lvl, _ := blueprints[kind].level(level)

	res.Apply(lvl.BuildCost.Negate())
	p := Project{
		StructureType:  kind,
		TargetLevel:    level,
		DaysRemaining:  lvl.BuildTime,
		TotalDays:      lvl.BuildTime,
		ResourcesSpent: lvl.BuildCost.Clone(),
	}
	s.Projects = append(s.Projects, p)
	return p, nil
}

// DailyReport is one day of settlement activity. Production and
// maintenance are kept apart so callers can scale output.
type DailyReport struct {
	Production  resources.Delta
	Maintenance resources.Delta
	Completed   []Project
	Warnings    []string
}

// Net is production minus maintenance.
func (r DailyReport) Net() resources.Delta {
	d := r.Production.Clone()
	d.Merge(r.Maintenance.Negate())
	return d
}

// DailyOperations advances projects, then runs every active structure for a
// day: output, upkeep, wear and warnings.
func (s *State) DailyOperations() DailyReport {
	rep := DailyReport{Production: resources.Delta{}, Maintenance: resources.Delta{}}

	remaining := s.Projects[:0]
	for _, p := range s.Projects {
		p.DaysRemaining--
		if p.DaysRemaining <= 0 {
			s.complete(p)
			rep.Completed = append(rep.Completed, p)
			continue
		}
		remaining = append(remaining, p)
	}
	s.Projects = remaining

	solar := s.solarReduction()
	workshop := s.workshopBonus()

	for i := range s.Structures {
		st := &s.Structures[i]
		if !st.Active {
			continue
		}
		bp := blueprints[st.Type]
		lvl, ok := bp.level(st.Level)
		if !ok {
			continue
		}
		for k, amount := range lvl.DailyProduction {
			bonus := 1.0
			if workshop && (k == resources.Supplies || k == resources.Knowledge) {
				bonus = WorkshopBonus
			}
			rep.Production.Add(k, amount*st.Efficiency/100*bonus)
		}
		for k, cost := range lvl.DailyMaintenance {
			rep.Maintenance.Add(k, cost*(1-solar))
		}

		st.Condition = math.Max(MinCondition, st.Condition-DailyDecay)
		st.Efficiency = math.Min(100, st.Condition+10)
		st.DaysBuilt++
		st.LastMaintenance++

		if st.Condition < WarnCondition {
			rep.Warnings = append(rep.Warnings,
				fmt.Sprintf("%s Level %d needs maintenance (%.0f%% condition)", bp.Name, st.Level, math.Round(st.Condition)))
		}
	}
	return rep
}

func (s *State) complete(p Project) {
	if existing := s.find(p.StructureType); existing != nil {
		existing.Level = p.TargetLevel
		existing.Condition = 100
		existing.Efficiency = 100
		existing.LastMaintenance = 0
		return
	}
	s.Structures = append(s.Structures, Structure{
		ID:         uuid.NewString(),
		Type:       p.StructureType,
		Level:      p.TargetLevel,
		Condition:  100,
		Efficiency: 100,
		Active:     true,
	})
}

// solarReduction is the share of maintenance the solar array covers.
func (s *State) solarReduction() float64 {
	sp := s.find("solar_panel")
	if sp == nil {
		return 0
	}
	switch sp.Level {
	case 1:
		return 0.25
	case 2:
		return 0.5
	case 3:
		return 1
	}
	return 0
}

func (s *State) workshopBonus() bool {
	w := s.find("workshop")
	return w != nil && w.Level >= WorkshopBonusLevel
}

// PerformMaintenance pays three days of upkeep from res to restore 30 condition.
func (s *State) PerformMaintenance(id string, res *resources.Set) (resources.Delta, error) {
	var st *Structure
	for i := range s.Structures {
		if s.Structures[i].ID == id {
			st = &s.Structures[i]
			break
		}
	}
	if st == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoStructure, id)
	}
	lvl, ok := blueprints[st.Type].level(st.Level)
	if !ok {
		return nil, fmt.Errorf("%w: %s level %d", ErrInvalidLevel, st.Type, st.Level)
	}
	cost := resources.Delta{}
	for k, v := range lvl.DailyMaintenance {
		cost[k] = v * RepairCostFactor
	}
	if k, ok := res.Meets(cost); !ok {
		return cost, fmt.Errorf("%w: %s need %.0f, have %.0f", ErrUnaffordable, k, cost[k], res.Get(k))
	}
	res.Apply(cost.Negate())
	st.Condition = math.Min(100, st.Condition+RepairAmount)
	st.Efficiency = math.Min(100, st.Condition+10)
	st.LastMaintenance = 0
	return cost, nil
}

// Stats summarizes the settlement.
type Stats struct {
	TotalStructures      int             `json:"totalStructures"`
	AverageCondition     float64         `json:"averageCondition"`
	DailyProduction      resources.Delta `json:"dailyProduction"`
	DailyMaintenance     resources.Delta `json:"dailyMaintenance"`
	ConstructionProgress float64         `json:"constructionProgress"`
}

// Stats reports nominal output and upkeep, ignoring efficiency and solar.
func (s *State) Stats() Stats {
	st := Stats{
		TotalStructures:  len(s.Structures),
		AverageCondition: 100,
		DailyProduction:  resources.Delta{},
		DailyMaintenance: resources.Delta{},
	}
	if len(s.Structures) > 0 {
		sum := 0.0
		for _, x := range s.Structures {
			sum += x.Condition
			if lvl, ok := blueprints[x.Type].level(x.Level); ok {
				st.DailyProduction.Merge(lvl.DailyProduction)
				st.DailyMaintenance.Merge(lvl.DailyMaintenance)
			}
		}
		st.AverageCondition = sum / float64(len(s.Structures))
	}
	if len(s.Projects) > 0 {
		sum := 0.0
		for _, p := range s.Projects {
			if p.TotalDays > 0 {
				sum += float64(p.TotalDays-p.DaysRemaining) / float64(p.TotalDays)
			}
		}
		st.ConstructionProgress = sum / float64(len(s.Projects)) * 100
	}
	return st
}

// Option is a blueprint with the levels that can be started now.
type Option struct {
	Blueprint       Blueprint `json:"blueprint"`
	AvailableLevels []int     `json:"availableLevels"`
}

// Available lists every blueprint. Level 1 is always included for reference.
func (s *State) Available(c world.Conditions) []Option {
	var out []Option
	for _, bp := range Blueprints() {
		var levels []int
		for n := 1; n <= len(bp.Levels); n++ {
			if n == 1 || s.CanBuild(bp.Type, n, c) == nil {
				levels = append(levels, n)
			}
		}
		out = append(out, Option{Blueprint: bp, AvailableLevels: levels})
	}
	return out
}
