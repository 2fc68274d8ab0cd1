// Package research holds the research tree and the single-track progress
// through it.
package research

import "math"

// Category is a research branch.
type Category string

const (
	Agriculture  Category = "agriculture"
	Ecology      Category = "ecology"
	Construction Category = "construction"
	Survival     Category = "survival"
	Social       Category = "social"
)

// Boost names read by the engine.
const (
	BoostSoilHealth          = "soilHealth"
	BoostSeedYield           = "seedYield"
	BoostDailySupplies       = "dailySupplies"
	BoostHealthRecovery      = "healthRecovery"
	BoostTrustGain           = "trustGain"
	BoostKnowledgeGeneration = "knowledgeGeneration"
)

// Node is one research topic.
type Node struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Description       string             `json:"description"`
	KnowledgeRequired float64            `json:"knowledgeRequired"`
	Prerequisites     []string           `json:"prerequisites"`
	Category          Category           `json:"category"`
	Boosts            map[string]float64 `json:"boosts,omitempty"`
	Unlocks           []string           `json:"unlocks,omitempty"`
	Abilities         []string           `json:"abilities,omitempty"`
	ResearchTime      int                `json:"researchTime,omitempty"`
}

// Days is the research time, defaulting to a third of the knowledge required.
func (n Node) Days() int {
	if n.ResearchTime > 0 {
		return n.ResearchTime
	}
	return int(math.Ceil(n.KnowledgeRequired / 3))
}

var tree = []Node{
	{
		ID: "soil_chemistry_basics", Name: "Soil Chemistry Fundamentals", Category: Agriculture,
		Description:       "Understanding pH levels, nutrient cycles, and basic soil composition for better plant growth.",
		KnowledgeRequired: 15,
		Boosts:            map[string]float64{BoostSoilHealth: 1.2},
		Unlocks:           []string{"soil_testing_choice", "ph_adjustment_choice"},
	},
	{
		ID: "plant_breeding_techniques", Name: "Plant Breeding & Selection", Category: Agriculture,
		Description:       "Advanced techniques for selecting and breeding plants with improved yields and disease resistance.",
		KnowledgeRequired: 25,
		Prerequisites:     []string{"soil_chemistry_basics"},
		Boosts:            map[string]float64{BoostSeedYield: 1.3},
		Unlocks:           []string{"selective_breeding_choice", "hardy_varieties_plant"},
	},
	{
		ID: "permaculture_design", Name: "Permaculture Systems", Category: Agriculture,
		Description:       "Sustainable design principles that create self-maintaining agricultural ecosystems.",
		KnowledgeRequired: 40,
		Prerequisites:     []string{"plant_breeding_techniques", "water_conservation"},
		Boosts:            map[string]float64{BoostDailySupplies: 1.4, BoostSoilHealth: 1.3},
		Unlocks:           []string{"companion_planting_choice", "food_forest_construction"},
	},
	{
		ID: "ecosystem_dynamics", Name: "Ecosystem Relationships", Category: Ecology,
		Description:       "Study of how different species interact and support each other in healthy ecosystems.",
		KnowledgeRequired: 20,
		Boosts:            map[string]float64{"plantDiversity": 1.25},
		Unlocks:           []string{"species_introduction_choice", "symbiotic_planting"},
	},
	{
		ID: "mycorrhizal_networks", Name: "Fungal Root Networks", Category: Ecology,
		Description:       "Understanding how fungi create underground networks that help plants share nutrients.",
		KnowledgeRequired: 35,
		Prerequisites:     []string{"ecosystem_dynamics", "soil_chemistry_basics"},
		Boosts:            map[string]float64{"plantHealth": 1.3, "soilRestoration": 1.5},
		Unlocks:           []string{"fungal_inoculation_choice", "mycelial_remediation"},
	},
	{
		ID: "pollinator_restoration", Name: "Pollinator Ecosystem", Category: Ecology,
		Description:       "Strategies for attracting and supporting bees, butterflies, and other crucial pollinators.",
		KnowledgeRequired: 30,
		Prerequisites:     []string{"ecosystem_dynamics"},
		Boosts:            map[string]float64{"seedProduction": 1.4, "plantReproduction": 1.6},
		Unlocks:           []string{"pollinator_gardens", "native_flower_meadows"},
	},
	{
		ID: "sustainable_construction", Name: "Green Building Techniques", Category: Construction,
		Description:       "Eco-friendly construction methods using natural and recycled materials.",
		KnowledgeRequired: 18,
		Boosts:            map[string]float64{"constructionEfficiency": 1.2},
		Unlocks:           []string{"earth_bag_construction", "solar_greenhouse_upgrade"},
	},
	{
		ID: "water_conservation", Name: "Water Management Systems", Category: Construction,
		Description:       "Advanced techniques for collecting, storing, and efficiently using water resources.",
		KnowledgeRequired: 22,
		Prerequisites:     []string{"sustainable_construction"},
		Boosts:            map[string]float64{"waterEfficiency": 1.4},
		Unlocks:           []string{"rainwater_harvesting", "greywater_recycling", "water_purifier_v2"},
	},
	{
		ID: "renewable_energy", Name: "Alternative Energy Systems", Category: Construction,
		Description:       "Solar, wind, and biomass energy solutions for sustainable power generation.",
		KnowledgeRequired: 28,
		Prerequisites:     []string{"sustainable_construction"},
		Boosts:            map[string]float64{"energyGeneration": 1.5},
		Unlocks:           []string{"wind_turbine_construction", "biogas_digester", "solar_panel_v2"},
	},
	{
		ID: "medicinal_plants", Name: "Natural Medicine", Category: Survival,
		Description:       "Identifying and cultivating plants with healing properties for community health.",
		KnowledgeRequired: 16,
		Boosts:            map[string]float64{BoostHealthRecovery: 1.3},
		Unlocks:           []string{"herbal_remedies_choice", "medicine_garden"},
	},
	{
		ID: "food_preservation", Name: "Food Storage & Preservation", Category: Survival,
		Description:       "Traditional and modern techniques for extending food shelf life without refrigeration.",
		KnowledgeRequired: 20,
		Prerequisites:     []string{"medicinal_plants"},
		Boosts:            map[string]float64{"foodSpoilage": 0.7},
		Unlocks:           []string{"smoking_techniques", "fermentation_choice", "root_cellar"},
	},
	{
		ID: "community_organizing", Name: "Group Leadership & Cooperation", Category: Social,
		Description:       "Strategies for building trust, resolving conflicts, and organizing collaborative efforts.",
		KnowledgeRequired: 12,
		Boosts:            map[string]float64{BoostTrustGain: 1.3, "conflictResolution": 1.5},
		Unlocks:           []string{"consensus_building_choice", "conflict_mediation_choice"},
	},
	{
		ID: "knowledge_sharing", Name: "Teaching & Documentation", Category: Social,
		Description:       "Methods for effectively sharing knowledge and training others in essential skills.",
		KnowledgeRequired: 24,
		Prerequisites:     []string{"community_organizing"},
		Boosts:            map[string]float64{BoostKnowledgeGeneration: 1.2, "skillTransfer": 1.4},
		Unlocks:           []string{"teaching_workshops", "skill_documentation", "apprenticeship_system"},
	},
	{
		ID: "regenerative_agriculture", Name: "Regenerative Ecosystem Design", Category: Agriculture,
		Description:       "Advanced integration of all restoration knowledge into self-sustaining systems.",
		KnowledgeRequired: 60,
		Prerequisites:     []string{"permaculture_design", "mycorrhizal_networks", "water_conservation"},
		Boosts:            map[string]float64{"ecosystemRegeneration": 2.0, BoostSoilHealth: 1.8},
		Unlocks:           []string{"ecosystem_restoration_mastery", "climate_adaptation_techniques"},
	},
}

// Tree returns every node in tree order.
func Tree() []Node {
	return append([]Node(nil), tree...)
}

// Lookup returns the node with id.
func Lookup(id string) (Node, bool) {
	for _, n := range tree {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}
