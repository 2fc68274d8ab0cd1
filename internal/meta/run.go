// Package meta tracks progress across runs: the run history, achievements
// and the bonuses they grant to later runs.
package meta

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/Kalaith/last-hope/internal/resources"
	"github.com/Kalaith/last-hope/internal/world"
)

// EcosystemSnapshot is the plot at the end of a run.
type EcosystemSnapshot struct {
	SoilHealth  float64 `json:"soilHealth"`
	Diversity   float64 `json:"plantDiversity"`
	TotalPlants int     `json:"totalPlants"`
}

// RunRecord is the history entry written when a run ends.
type RunRecord struct {
	ID              string             `json:"id"`
	EndedAt         time.Time          `json:"endDate"`
	Background      string             `json:"background,omitempty"`
	DaysSurvived    int                `json:"daysSurvived"`
	FinalResources  resources.Set      `json:"finalResources"`
	FinalEcosystem  EcosystemSnapshot  `json:"finalEcosystem"`
	Ending          world.Ending       `json:"endCondition"`
	Achievements    []string           `json:"achievementsUnlocked"`
	PeakTrust       map[string]float64 `json:"highestTrustLevels"`
	SeedsDiscovered []string           `json:"seedsDiscovered"`
	MaxSoilHealth   float64            `json:"maxSoilHealth"`
	ChoicesMade     int                `json:"totalChoicesMade"`
}

// NewRunID returns a lexically sortable id stamped with t.
func NewRunID(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), rand.Reader).String()
}

// Better reports whether a outranks b: a victory beats anything else, then
// more days survived, then healthier final soil.
func Better(a, b RunRecord) bool {
	av, bv := a.Ending == world.Victory, b.Ending == world.Victory
	if av != bv {
		return av
	}
	if a.DaysSurvived != b.DaysSurvived {
		return a.DaysSurvived > b.DaysSurvived
	}
	return a.FinalEcosystem.SoilHealth > b.FinalEcosystem.SoilHealth
}
