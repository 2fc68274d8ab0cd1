// Site generation using layered simplex noise.
// The same seed always yields the same starting soil and landscape.
package world

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/Kalaith/last-hope/internal/resources"
)

// Site is the patch of ground a run starts on.
type Site struct {
	Seed        int64   `json:"seed"`
	Moisture    float64 `json:"moisture"`   // 0–1
	Ruin        float64 `json:"ruin"`       // 0–1, how much rubble covers the plot
	SoilOffset  float64 `json:"soilOffset"` // added to the template soil health
	Description string  `json:"description"`
}

// GenerateSite samples noise at a seed-derived point. amplitude bounds the
// soil offset in either direction; 0 leaves the template soil untouched.
func GenerateSite(seed int64, amplitude float64) Site {
	moistNoise := opensimplex.NewNormalized(seed)
	ruinNoise := opensimplex.NewNormalized(seed + 1)

	// Walk away from the origin so nearby seeds do not sample the same lattice cell.
	x := float64(seed%1000) * 0.37
	y := float64((seed/1000)%1000) * 0.41

	moist := octaveNoise(moistNoise, x, y, 4, 0.08, 0.5)
	ruin := octaveNoise(ruinNoise, x, y, 3, 0.06, 0.5)

	// Wet, clear ground starts richer.
	fertility := moist*0.7 + (1-ruin)*0.3
	offset := (fertility*2 - 1) * math.Abs(amplitude)

	return Site{
		Seed:        seed,
		Moisture:    moist,
		Ruin:        ruin,
		SoilOffset:  math.Round(offset*10) / 10,
		Description: describeSite(moist, ruin),
	}
}

// ApplySite shifts starting soil by the site offset, clamped to 0–100.
func ApplySite(soil float64, s Site) float64 {
	return resources.Clamp(soil+s.SoilOffset, 0, 100)
}

func describeSite(moist, ruin float64) string {
	ground := "cracked clay"
	switch {
	case moist > 0.65:
		ground = "a damp hollow"
	case moist > 0.45:
		ground = "a dry riverbed"
	case moist < 0.25:
		ground = "wind-scoured dust"
	}
	switch {
	case ruin > 0.6:
		return ground + " buried under collapsed concrete"
	case ruin > 0.4:
		return ground + " between broken walls"
	}
	return ground + " in open ground"
}

// octaveNoise sums several noise octaves, normalized to the noise range.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
