// Package construction manages the settlement's buildings: what can be
// built, projects under way, and the daily output and upkeep of finished
// structures.
package construction

import (
	r "github.com/Kalaith/last-hope/internal/resources"
)

// Category groups blueprints for display.
type Category string

const (
	Production Category = "production"
	Research   Category = "research"
	Utility    Category = "utility"
)

// Unlock gates a blueprint.
type Unlock struct {
	Knowledge     float64  `json:"knowledge,omitempty"`
	Restoration   float64  `json:"restorationProgress,omitempty"`
	Prerequisites []string `json:"prerequisiteStructures,omitempty"`
}

// Level is one tier of a blueprint.
type Level struct {
	Level            int      `json:"level"`
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	BuildCost        r.Delta  `json:"buildCost"`
	BuildTime        int      `json:"buildTime"`
	DailyProduction  r.Delta  `json:"dailyProduction,omitempty"`
	DailyMaintenance r.Delta  `json:"dailyMaintenance,omitempty"`
	SpecialEffects   []string `json:"specialEffects,omitempty"`
	StorageCapacity  float64  `json:"storageCapacity,omitempty"`
}

// Blueprint is a buildable structure type.
type Blueprint struct {
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Unlock      Unlock   `json:"unlockRequirements"`
	Levels      []Level  `json:"levels"`
}

// Blueprint order for listings.
var order = []string{"greenhouse", "water_purifier", "research_lab", "solar_panel", "workshop", "storage_facility"}

var blueprints = map[string]Blueprint{
	"greenhouse": {
		Type: "greenhouse", Name: "Greenhouse", Category: Production,
		Description: "Controlled environment for growing plants and developing seeds",
		Unlock:      Unlock{Knowledge: 15, Restoration: 10},
		Levels: []Level{
			{
				Level: 1, Name: "Basic Greenhouse", BuildTime: 3,
				Description:      "Simple protected growing space with basic climate control",
				BuildCost:        r.Delta{r.Supplies: 25, r.Knowledge: 10, r.Health: 15},
				DailyProduction:  r.Delta{r.Seeds: 1, r.Hope: 2},
				DailyMaintenance: r.Delta{r.Supplies: 1},
				SpecialEffects:   []string{"Protects plants from harsh weather", "Faster seed development"},
			},
			{
				Level: 2, Name: "Advanced Greenhouse", BuildTime: 5,
				Description:      "Automated systems with soil nutrient cycling and pest control",
				BuildCost:        r.Delta{r.Supplies: 45, r.Knowledge: 25, r.Health: 20},
				DailyProduction:  r.Delta{r.Seeds: 2, r.Hope: 4, r.SoilHealth: 1},
				DailyMaintenance: r.Delta{r.Supplies: 2, r.Knowledge: 1},
				SpecialEffects:   []string{"Automated watering", "Disease resistance research"},
			},
			{
				Level: 3, Name: "Bio-Research Greenhouse", BuildTime: 8,
				Description:      "Cutting-edge facility for genetic preservation and enhancement",
				BuildCost:        r.Delta{r.Supplies: 80, r.Knowledge: 50, r.Seeds: 5, r.Health: 30},
				DailyProduction:  r.Delta{r.Seeds: 4, r.Knowledge: 2, r.Hope: 6, r.SoilHealth: 2},
				DailyMaintenance: r.Delta{r.Supplies: 3, r.Knowledge: 2},
				SpecialEffects:   []string{"Genetic preservation vault", "New species development"},
			},
		},
	},
	"water_purifier": {
		Type: "water_purifier", Name: "Water Purifier", Category: Production,
		Description: "Converts contaminated water into clean, usable resources",
		Unlock:      Unlock{Knowledge: 10},
		Levels: []Level{
			{
				Level: 1, Name: "Basic Filter System", BuildTime: 2,
				Description:      "Simple filtration and boiling setup for basic water purification",
				BuildCost:        r.Delta{r.Supplies: 20, r.Knowledge: 5, r.Health: 10},
				DailyProduction:  r.Delta{r.Supplies: 3, r.Health: 1},
				DailyMaintenance: r.Delta{r.Supplies: 1},
				SpecialEffects:   []string{"Reduces water-borne illness", "Stable water supply"},
			},
			{
				Level: 2, Name: "Chemical Treatment Plant", BuildTime: 4,
				Description:      "Advanced filtration with chemical neutralization of toxins",
				BuildCost:        r.Delta{r.Supplies: 40, r.Knowledge: 20, r.Health: 15},
				DailyProduction:  r.Delta{r.Supplies: 6, r.Health: 3, r.Hope: 1},
				DailyMaintenance: r.Delta{r.Supplies: 2, r.Knowledge: 1},
				SpecialEffects:   []string{"Removes radiation", "Irrigation support"},
			},
			{
				Level: 3, Name: "Atmospheric Water Generator", BuildTime: 6,
				Description:      "Extracts pure water directly from the atmosphere using solar power",
				BuildCost:        r.Delta{r.Supplies: 70, r.Knowledge: 40, r.Health: 25},
				DailyProduction:  r.Delta{r.Supplies: 10, r.Health: 5, r.Hope: 3, r.SoilHealth: 1},
				DailyMaintenance: r.Delta{r.Knowledge: 1},
				SpecialEffects:   []string{"Self-sustaining", "Atmospheric cleaning"},
			},
		},
	},
	"research_lab": {
		Type: "research_lab", Name: "Research Lab", Category: Research,
		Description: "Scientific facility for advancing restoration knowledge and techniques",
		Unlock:      Unlock{Knowledge: 25, Restoration: 15},
		Levels: []Level{
			{
				Level: 1, Name: "Field Research Station", BuildTime: 3,
				Description:      "Basic equipment for soil analysis and plant studies",
				BuildCost:        r.Delta{r.Supplies: 30, r.Knowledge: 15, r.Health: 12},
				DailyProduction:  r.Delta{r.Knowledge: 3, r.Hope: 1},
				DailyMaintenance: r.Delta{r.Supplies: 1},
				SpecialEffects:   []string{"Soil composition analysis", "Plant health monitoring"},
			},
			{
				Level: 2, Name: "Environmental Lab", BuildTime: 5,
				Description:      "Comprehensive facility for ecosystem analysis and experimentation",
				BuildCost:        r.Delta{r.Supplies: 55, r.Knowledge: 35, r.Health: 20},
				DailyProduction:  r.Delta{r.Knowledge: 5, r.SoilHealth: 1, r.Hope: 2},
				DailyMaintenance: r.Delta{r.Supplies: 2, r.Knowledge: 1},
				SpecialEffects:   []string{"Genetic sequencing", "Pollution remediation research"},
			},
			{
				Level: 3, Name: "Restoration Research Institute", BuildTime: 8,
				Description:      "Advanced facility capable of breakthrough ecological discoveries",
				BuildCost:        r.Delta{r.Supplies: 90, r.Knowledge: 60, r.Seeds: 3, r.Health: 35},
				DailyProduction:  r.Delta{r.Knowledge: 8, r.SoilHealth: 3, r.Hope: 5, r.Seeds: 1},
				DailyMaintenance: r.Delta{r.Supplies: 3, r.Knowledge: 2},
				SpecialEffects:   []string{"Ecosystem simulation", "Species resurrection"},
			},
		},
	},
	"solar_panel": {
		Type: "solar_panel", Name: "Solar Panel", Category: Utility,
		Description: "Renewable energy system that powers other structures more efficiently",
		Unlock:      Unlock{Knowledge: 20},
		Levels: []Level{
			{
				Level: 1, Name: "Basic Solar Panels", BuildTime: 2,
				Description:      "Simple photovoltaic cells that reduce power requirements",
				BuildCost:        r.Delta{r.Supplies: 35, r.Knowledge: 12, r.Health: 10},
				DailyProduction:  r.Delta{r.Hope: 2},
				DailyMaintenance: r.Delta{r.Supplies: 0},
				SpecialEffects:   []string{"Reduces maintenance costs for all structures by 25%"},
			},
			{
				Level: 2, Name: "Efficient Solar Array", BuildTime: 4,
				Description:     "High-efficiency panels with battery storage for consistent power",
				BuildCost:       r.Delta{r.Supplies: 60, r.Knowledge: 25, r.Health: 15},
				DailyProduction: r.Delta{r.Hope: 4, r.Supplies: 1},
				SpecialEffects:  []string{"Reduces maintenance costs by 50%"},
			},
			{
				Level: 3, Name: "Smart Energy Grid", BuildTime: 6,
				Description:     "Automated power management system with advanced storage",
				BuildCost:       r.Delta{r.Supplies: 100, r.Knowledge: 45, r.Health: 25},
				DailyProduction: r.Delta{r.Hope: 6, r.Supplies: 3, r.Knowledge: 1},
				SpecialEffects:  []string{"Eliminates maintenance costs"},
			},
		},
	},
	"workshop": {
		Type: "workshop", Name: "Workshop", Category: Utility,
		Description: "Crafting and repair facility for tools, equipment, and infrastructure",
		Unlock:      Unlock{Knowledge: 8},
		Levels: []Level{
			{
				Level: 1, Name: "Basic Workshop", BuildTime: 2,
				Description:      "Simple tools and workbench for essential repairs and crafting",
				BuildCost:        r.Delta{r.Supplies: 15, r.Knowledge: 5, r.Health: 8},
				DailyProduction:  r.Delta{r.Supplies: 2},
				DailyMaintenance: r.Delta{r.Supplies: 1},
				SpecialEffects:   []string{"Structure maintenance", "Tool crafting"},
			},
			{
				Level: 2, Name: "Engineering Workshop", BuildTime: 4,
				Description:      "Advanced tools and machinery for complex construction projects",
				BuildCost:        r.Delta{r.Supplies: 40, r.Knowledge: 18, r.Health: 15},
				DailyProduction:  r.Delta{r.Supplies: 4, r.Knowledge: 1},
				DailyMaintenance: r.Delta{r.Supplies: 1},
				SpecialEffects:   []string{"Faster construction", "Precision instruments"},
			},
			{
				Level: 3, Name: "Fabrication Facility", BuildTime: 6,
				Description:      "Automated manufacturing system for sophisticated equipment",
				BuildCost:        r.Delta{r.Supplies: 75, r.Knowledge: 35, r.Health: 25},
				DailyProduction:  r.Delta{r.Supplies: 7, r.Knowledge: 2, r.Hope: 2},
				DailyMaintenance: r.Delta{r.Supplies: 2, r.Knowledge: 1},
				SpecialEffects:   []string{"Boosts supply and knowledge production by 25%"},
			},
		},
	},
	"storage_facility": {
		Type: "storage_facility", Name: "Storage Facility", Category: Utility,
		Description: "Secure storage for resources, seeds, and equipment",
		Unlock:      Unlock{Knowledge: 5},
		Levels: []Level{
			{
				Level: 1, Name: "Basic Storage", BuildTime: 1,
				Description:     "Simple warehouse with climate control for resource preservation",
				BuildCost:       r.Delta{r.Supplies: 10, r.Knowledge: 3, r.Health: 5},
				StorageCapacity: 50,
				SpecialEffects:  []string{"Prevents spoilage", "Organized inventory"},
			},
			{
				Level: 2, Name: "Climate-Controlled Vault", BuildTime: 3,
				Description:      "Advanced storage with environmental controls and security",
				BuildCost:        r.Delta{r.Supplies: 25, r.Knowledge: 12, r.Health: 10},
				DailyProduction:  r.Delta{r.Hope: 1},
				DailyMaintenance: r.Delta{r.Supplies: 1},
				StorageCapacity:  100,
				SpecialEffects:   []string{"Seed preservation", "Reduces waste"},
			},
			{
				Level: 3, Name: "Automated Distribution Center", BuildTime: 5,
				Description:      "Smart storage system with automated logistics and preservation",
				BuildCost:        r.Delta{r.Supplies: 50, r.Knowledge: 25, r.Health: 18},
				DailyProduction:  r.Delta{r.Hope: 3, r.Supplies: 1},
				DailyMaintenance: r.Delta{r.Supplies: 1, r.Knowledge: 1},
				StorageCapacity:  200,
				SpecialEffects:   []string{"Automated distribution", "Resource optimization"},
			},
		},
	},
}

// LookupBlueprint returns the blueprint for a structure type.
func LookupBlueprint(kind string) (Blueprint, bool) {
	b, ok := blueprints[kind]
	return b, ok
}

// Blueprints lists every blueprint in display order.
func Blueprints() []Blueprint {
	out := make([]Blueprint, 0, len(order))
	for _, k := range order {
		out = append(out, blueprints[k])
	}
	return out
}

func (b Blueprint) level(n int) (Level, bool) {
	if n < 1 || n > len(b.Levels) {
		return Level{}, false
	}
	return b.Levels[n-1], true
}
