package caretaker

import "sort"

// Crisis levels, worst first.
const (
	Critical = "CRITICAL"
	Warning  = "WARNING"
	Watch    = "WATCH"
	Healthy  = "HEALTHY"
)

// Health holds derived signals computed from a Snapshot before any decision.
type Health struct {
	Top         Pressure // the scarcest resource
	Depleting   []string // resources projected to run out within depletionHorizon days
	CrisisLevel string
}

const depletionHorizon = 5

// Triage ranks the pressures and grades the run.
func Triage(snap *Snapshot) *Health {
	h := &Health{CrisisLevel: Healthy}
	if len(snap.Pressures) == 0 {
		return h
	}

	ranked := append([]Pressure(nil), snap.Pressures...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Pressure > ranked[j].Pressure
	})
	h.Top = ranked[0]
	for _, p := range ranked {
		if p.TimeToDepletion != nil && *p.TimeToDepletion <= depletionHorizon {
			h.Depleting = append(h.Depleting, p.Resource)
		}
	}

	switch {
	case h.Top.Pressure >= 80 || len(h.Depleting) > 0:
		h.CrisisLevel = Critical
	case h.Top.Pressure >= 60:
		h.CrisisLevel = Warning
	case h.Top.Pressure >= 40 || h.Top.Trend == "worsening":
		h.CrisisLevel = Watch
	}
	return h
}

// Calm reports whether the run can afford long-term spending.
func (h *Health) Calm() bool {
	return h.CrisisLevel == Healthy || h.CrisisLevel == Watch
}
