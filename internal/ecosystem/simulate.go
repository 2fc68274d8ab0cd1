package ecosystem

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/Kalaith/last-hope/internal/entropy"
	"github.com/Kalaith/last-hope/internal/resources"
	"github.com/Kalaith/last-hope/internal/weather"
)

var (
	ErrUnknownSpecies = errors.New("unknown species")
	ErrSoilTooPoor    = errors.New("soil too poor")
	ErrNeedsKnowledge = errors.New("requires more botanical knowledge")
)

// Species with a soil requirement above AdvancedSoil need AdvancedKnowledge to plant.
const (
	AdvancedSoil      = 20
	AdvancedKnowledge = 25
)

// Plant is one living instance.
type Plant struct {
	ID        string  `json:"id"`
	Species   string  `json:"species"`
	Health    float64 `json:"health"`
	Maturity  float64 `json:"maturity"`
	PlantedOn int     `json:"plantedOn"`
}

// State is the whole plot.
type State struct {
	Plants     []Plant         `json:"plantInstances"`
	SoilHealth float64         `json:"soilHealth"`
	Diversity  float64         `json:"plantDiversity"`
	Weather    weather.Pattern `json:"weatherPattern"`
	Season     weather.Season  `json:"seasonalCycle"`
	Discovered []string        `json:"discoveredSpecies,omitempty"`
}

// NewPlant validates a planting and returns a fresh seedling. s is not modified.
func NewPlant(s *State, species string, knowledge float64) (Plant, error) {
	sp, ok := Lookup(species)
	if !ok {
		return Plant{}, fmt.Errorf("%w: %q", ErrUnknownSpecies, species)
	}
	if s.SoilHealth < sp.SoilRequirement {
		return Plant{}, fmt.Errorf("%w: %s requires soil health of at least %.0f%%, current %.1f%%",
			ErrSoilTooPoor, sp.Name, sp.SoilRequirement, s.SoilHealth)
	}
	if sp.SoilRequirement > AdvancedSoil && knowledge < AdvancedKnowledge {
		return Plant{}, fmt.Errorf("%w: planting %s", ErrNeedsKnowledge, sp.Name)
	}
	return Plant{
		ID:       uuid.NewString(),
		Species:  species,
		Health:   100,
		Maturity: 0,
	}, nil
}

// Add places p in the plot and records its species as discovered.
func (s *State) Add(p Plant) {
	s.Plants = append(s.Plants, p)
	s.Discover(p.Species)
}

// Knows reports whether a species has been discovered.
func (s *State) Knows(species string) bool {
	for _, id := range s.Discovered {
		if id == species {
			return true
		}
	}
	return false
}

// Discover records a species without planting it.
func (s *State) Discover(species string) {
	if !s.Knows(species) {
		s.Discovered = append(s.Discovered, species)
	}
}

// StepReport describes what one Simulate call changed.
type StepReport struct {
	Dead           []Plant
	SoilBefore     float64
	SoilAfter      float64
	SeasonChanged  bool
	WeatherChanged bool
}

// Simulate advances the plot by dt days. Every plant is judged against the
// weather, season and soil at the start of the step. The rng is drawn once
// per plant in slice order, then for the season, then for the weather.
func Simulate(s *State, dt float64, rng entropy.Source) StepReport {
	rep := StepReport{SoilBefore: s.SoilHealth}

	mods := weather.For(s.Weather)
	seasonMod := weather.SeasonGrowth(s.Season)
	soilMod := math.Max(0.3, s.SoilHealth/100)

	alive := s.Plants[:0]
	for _, p := range s.Plants {
		sp, ok := Lookup(p.Species)
		if !ok {
			// Content from an older save; treat as hardy grass so it still counts.
			sp = catalog["hardy_grass"]
		}
		growth := sp.GrowthRate * mods.Growth * seasonMod * soilMod

		healthChange := 0.0
		if rng.Float64() >= mods.Survival {
			healthChange -= 10 * dt
		}
		if s.SoilHealth < 10 {
			healthChange -= 2 * dt
		}
		if p.Maturity > 50 {
			healthChange += dt
		}

		p.Maturity = math.Min(100, p.Maturity+growth*dt)
		p.Health = resources.Clamp(p.Health+healthChange, 0, 100)
		if p.Health <= 0 {
			rep.Dead = append(rep.Dead, p)
			continue
		}
		alive = append(alive, p)
	}
	// Clear the tail so removed plants are not retained by the backing array.
	for i := len(alive); i < len(s.Plants); i++ {
		s.Plants[i] = Plant{}
	}
	s.Plants = alive

	s.SoilHealth = SoilImprovement(s.Plants, s.SoilHealth, dt)
	s.Diversity = Diversity(s.Plants)

	tr := weather.Advance(s.Weather, s.Season, dt, rng)
	s.Season, s.Weather = tr.Season, tr.Weather
	rep.SeasonChanged, rep.WeatherChanged = tr.SeasonChanged, tr.WeatherChanged

	rep.SoilAfter = s.SoilHealth
	return rep
}

// Bare soil loses this much per day.
const SoilDecay = 0.1

// SoilImprovement returns the new soil health. Only healthy, half-grown plants
// contribute, and the gain shrinks as the soil recovers.
func SoilImprovement(plants []Plant, soil, dt float64) float64 {
	if len(plants) == 0 {
		return math.Max(0, soil-SoilDecay*dt)
	}
	total := 0.0
	for _, p := range plants {
		if p.Health <= 50 || p.Maturity <= 30 {
			continue
		}
		sp, ok := Lookup(p.Species)
		if !ok {
			continue
		}
		total += sp.SoilImprovement * (p.Maturity / 100) * (p.Health / 100)
	}
	rate := math.Max(0.1, 1-soil/100)
	return resources.Clamp(soil+total*rate*0.1, 0, 100)
}

// Diversity scores species variety and population, 0–100.
func Diversity(plants []Plant) float64 {
	if len(plants) == 0 {
		return 0
	}
	species := make(map[string]struct{}, len(plants))
	for _, p := range plants {
		species[p.Species] = struct{}{}
	}
	speciesBonus := 10 * math.Min(5, float64(len(species)))
	population := math.Min(50, 2*float64(len(plants)))
	return math.Min(100, speciesBonus+population)
}

// SpeciesCount returns the number of distinct living species.
func SpeciesCount(plants []Plant) int {
	species := make(map[string]struct{}, len(plants))
	for _, p := range plants {
		species[p.Species] = struct{}{}
	}
	return len(species)
}

// Harvest thresholds.
const (
	HarvestMaturity = 80
	HarvestHealth   = 50
	CutBackMaturity = 50
)

// HarvestResult is the outcome of a harvest.
type HarvestResult struct {
	Seeds     float64 `json:"seeds"`
	Harvested int     `json:"harvested"`
}

// Harvest gathers seeds from every ripe, healthy plant and cuts them back.
// The yield is multiplied by boost.
func Harvest(s *State, boost float64) HarvestResult {
	var res HarvestResult
	for i := range s.Plants {
		p := &s.Plants[i]
		if p.Maturity < HarvestMaturity || p.Health <= HarvestHealth {
			continue
		}
		if sp, ok := Lookup(p.Species); ok {
			res.Seeds += sp.SeedYield
		}
		p.Maturity = CutBackMaturity
		res.Harvested++
	}
	res.Seeds *= boost
	return res
}

// Describe is a one-line summary of the plot.
func Describe(s *State) string {
	var soil string
	switch {
	case s.SoilHealth < 20:
		soil = "poisoned and barren"
	case s.SoilHealth < 50:
		soil = "damaged but recovering"
	case s.SoilHealth < 80:
		soil = "healthy and fertile"
	default:
		soil = "thriving with life"
	}

	var plants string
	switch n := len(s.Plants); {
	case n == 0:
		plants = "No plants have taken root"
	case n < 5:
		plants = "A few hardy plants struggle to survive"
	case n < 15:
		plants = "Small patches of green emerge from the wasteland"
	default:
		plants = "A growing ecosystem flourishes"
	}

	return fmt.Sprintf("The soil is %s. %s. %s.", soil, plants, weatherLine(s.Weather))
}

func weatherLine(p weather.Pattern) string {
	switch p {
	case weather.Drought:
		return "Scorching heat withers plants"
	case weather.Rain:
		return "Life-giving rain nourishes growth"
	case weather.Storm:
		return "Violent storms damage fragile plants"
	}
	return "Mild conditions support steady growth"
}
