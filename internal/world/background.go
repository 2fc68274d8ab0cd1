package world

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Kalaith/last-hope/internal/resources"
)

// ErrUnknownBackground is returned for a background id outside the table.
var ErrUnknownBackground = errors.New("unknown background")

// Background shapes the survivor's starting resources.
type Background struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Hope        float64         `json:"hope"`  // replaces the template hope
	Bonus       resources.Delta `json:"bonus"` // added to the template
}

var backgrounds = map[string]Background{
	"scientist": {
		ID:          "scientist",
		Name:        "Former Scientist",
		Description: "You understood the collapse as it happened. Knowledge is your weapon against despair.",
		Hope:        60,
		Bonus:       resources.Delta{resources.Knowledge: 2},
	},
	"survivor": {
		ID:          "survivor",
		Name:        "Hardened Survivor",
		Description: "You have seen too much to hope easily, but you know how to endure.",
		Hope:        30,
		Bonus:       resources.Delta{resources.Knowledge: 1},
	},
	"leader": {
		ID:          "leader",
		Name:        "Community Leader",
		Description: "People once looked to you. Perhaps they will again.",
		Hope:        70,
		Bonus:       resources.Delta{resources.Knowledge: 1},
	},
}

// LookupBackground returns the background with the given id.
func LookupBackground(id string) (Background, error) {
	b, ok := backgrounds[id]
	if !ok {
		return Background{}, fmt.Errorf("%w: %q", ErrUnknownBackground, id)
	}
	return b, nil
}

// Backgrounds lists every background sorted by id.
func Backgrounds() []Background {
	out := make([]Background, 0, len(backgrounds))
	for _, b := range backgrounds {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Apply sets hope and adds the bonus, clamped to bounds.
func (b Background) Apply(s *resources.Set) {
	if b.Hope > 0 {
		s.Hope = b.Hope
	}
	s.Apply(b.Bonus)
}
