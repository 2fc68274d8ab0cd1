package engine

import (
	"log/slog"
	"slices"

	"github.com/Kalaith/last-hope/internal/agents"
	"github.com/Kalaith/last-hope/internal/entropy"
	"github.com/Kalaith/last-hope/internal/meta"
	"github.com/Kalaith/last-hope/internal/world"
)

// GameConfig describes a new run.
type GameConfig struct {
	Seed          int64   // 0 draws a random seed
	Background    string  // empty keeps the template resources
	SiteAmplitude float64 // bound on the starting soil offset; 0 disables site variation
	Progress      *meta.Progress
}

// NewGame builds the starting snapshot of a run: the template, then the
// background, the site, and finally the bonuses earned in earlier runs.
func NewGame(cfg GameConfig) (*WorldState, error) {
	st := InitialState()
	st.Seed = cfg.Seed
	if st.Seed == 0 {
		st.Seed = entropy.RandomSeed()
	}

	if cfg.Background != "" {
		b, err := world.LookupBackground(cfg.Background)
		if err != nil {
			return nil, err
		}
		b.Apply(&st.Resources)
		st.Background = b.ID
	}

	st.Site = world.GenerateSite(st.Seed, cfg.SiteAmplitude)
	st.Ecosystem.SoilHealth = world.ApplySite(st.Ecosystem.SoilHealth, st.Site)
	st.MaxSoil = st.Ecosystem.SoilHealth

	if p := cfg.Progress; p != nil {
		st.Resources.Apply(p.StartingBonuses())
		for id, bonus := range p.Bonuses.NPCStartingTrust {
			if n := agents.Find(st.NPCs, id); n != nil {
				agents.AdjustTrust(n, bonus)
			}
		}
		for _, species := range p.UnlockedSeeds {
			st.Ecosystem.Discover(species)
		}
		st.UnlockedChoices = slices.Clone(p.Bonuses.UnlockedChoices)
	}
	st.trackPeaks()

	slog.Info("new run",
		"seed", st.Seed,
		"background", st.Background,
		"site", st.Site.Description,
		"soil", st.Ecosystem.SoilHealth,
		"hope", st.Resources.Hope,
	)
	return st, nil
}
