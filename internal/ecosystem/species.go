// Package ecosystem simulates the plants of the restoration plot: growth,
// survival, soil recovery and diversity under weather and season.
package ecosystem

import "sort"

// Species is a plantable kind.
type Species struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	SoilRequirement float64 `json:"soilRequirement"`
	GrowthRate      float64 `json:"growthRate"`
	SoilImprovement float64 `json:"soilImprovement"`
	SeedYield       float64 `json:"seedYield"`
	Description     string  `json:"description"`
}

var catalog = map[string]Species{
	"hardy_grass": {
		ID: "hardy_grass", Name: "Hardy Grass",
		SoilRequirement: 0, GrowthRate: 3, SoilImprovement: 1, SeedYield: 2,
		Description: "Tough grass that can grow in the worst conditions",
	},
	"pioneer_herb": {
		ID: "pioneer_herb", Name: "Pioneer Herb",
		SoilRequirement: 10, GrowthRate: 2, SoilImprovement: 2, SeedYield: 1,
		Description: "First to colonize damaged soil",
	},
	"nitrogen_fixer": {
		ID: "nitrogen_fixer", Name: "Nitrogen-Fixing Legume",
		SoilRequirement: 30, GrowthRate: 1.5, SoilImprovement: 5, SeedYield: 3,
		Description: "Dramatically improves soil chemistry",
	},
	"desert_bloom": {
		ID: "desert_bloom", Name: "Desert Resurrection Plant",
		SoilRequirement: 5, GrowthRate: 1, SoilImprovement: 2, SeedYield: 1,
		Description: "Survives extreme drought conditions",
	},
	"forest_sapling": {
		ID: "forest_sapling", Name: "Forest Sapling",
		SoilRequirement: 50, GrowthRate: 0.5, SoilImprovement: 8, SeedYield: 5,
		Description: "Young tree that will grow into a mighty oak",
	},
}

// Lookup returns a species by id.
func Lookup(id string) (Species, bool) {
	s, ok := catalog[id]
	return s, ok
}

// Catalog lists every species ordered by soil requirement.
func Catalog() []Species {
	out := make([]Species, 0, len(catalog))
	for _, s := range catalog {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SoilRequirement != out[j].SoilRequirement {
			return out[i].SoilRequirement < out[j].SoilRequirement
		}
		return out[i].ID < out[j].ID
	})
	return out
}
