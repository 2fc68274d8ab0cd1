package narrative

import (
	"slices"
	"strings"
)

// Effect tags understood by the engine. Chain tags name consequence chains;
// the rest feed trust updates and crisis cost modifiers.
const (
	TagPrioritizeFood     = "prioritize_food_over_restoration"
	TagShareSeeds         = "share_seeds_with_strangers"
	TagAggressivePlanting = "plant_aggressive_restoration"

	TagCooperation = "cooperation"
	TagSharing     = "sharing"
	TagResearch    = "research"
	TagProtection  = "protection"

	TagWaterRelated = "water_related"
	TagOutdoor      = "outdoor"
	TagRisky        = "risky"
)

type keywordRule struct {
	tag string
	all []string // every word must appear
	any []string // at least one must appear
}

var keywordRules = []keywordRule{
	{tag: TagPrioritizeFood, all: []string{"food", "survival"}},
	{tag: TagShareSeeds, all: []string{"share", "seed"}},
	{tag: TagAggressivePlanting, all: []string{"plant"}, any: []string{"aggressive", "all"}},
	{tag: TagCooperation, any: []string{"cooperat", "together", "collaborat"}},
	{tag: TagSharing, any: []string{"shar"}},
	{tag: TagResearch, any: []string{"research", "study", "experiment"}},
	{tag: TagProtection, any: []string{"protect", "guard", "safe"}},
	{tag: TagWaterRelated, any: []string{"water", "drink", "clean"}},
	{tag: TagOutdoor, any: []string{"outside", "explore", "scavenge"}},
	{tag: TagRisky, any: []string{"risk", "dangerous", "attempt"}},
}

// InferTags derives effect tags from choice prose. It exists for importing
// untagged content; tagged choices never go through it.
func InferTags(text string) []string {
	lower := strings.ToLower(text)
	var tags []string
	for _, r := range keywordRules {
		if r.matches(lower) {
			tags = append(tags, r.tag)
		}
	}
	slices.Sort(tags)
	return tags
}

func (r keywordRule) matches(s string) bool {
	for _, w := range r.all {
		if !strings.Contains(s, w) {
			return false
		}
	}
	if len(r.any) == 0 {
		return true
	}
	for _, w := range r.any {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
