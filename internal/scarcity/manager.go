package scarcity

import (
	"math"

	"github.com/Kalaith/last-hope/internal/entropy"
	"github.com/Kalaith/last-hope/internal/resources"
	"github.com/Kalaith/last-hope/internal/world"
)

// MaxActive caps concurrent crises.
const MaxActive = 2

// Active is a running crisis.
type Active struct {
	ID            string `json:"eventId"`
	DaysRemaining int    `json:"daysRemaining"`
}

// State holds the running crises of one run.
type State struct {
	Active []Active `json:"active"`
}

// IsActive reports whether the crisis id is running.
func (s *State) IsActive(id string) bool {
	for _, a := range s.Active {
		if a.ID == id {
			return true
		}
	}
	return false
}

// Check evaluates every crisis in catalog order and starts those whose
// trigger holds, never exceeding MaxActive.
func (s *State) Check(c world.Conditions, rng entropy.Source) []Event {
	var fired []Event
	for _, e := range catalog {
		if len(s.Active) >= MaxActive {
			break
		}
		if s.IsActive(e.ID) {
			continue
		}
		if !e.trigger(c, rng) {
			continue
		}
		s.Active = append(s.Active, Active{ID: e.ID, DaysRemaining: e.Duration})
		fired = append(fired, e)
	}
	return fired
}

// DailyDrain returns the day's drains, counts every crisis down one day and
// retires those that expire.
func (s *State) DailyDrain() resources.Delta {
	d := resources.Delta{}
	kept := s.Active[:0]
	for _, a := range s.Active {
		if e, ok := Lookup(a.ID); ok && e.DailyDrain > 0 {
			d.Add(e.Resource, -e.DailyDrain)
		}
		a.DaysRemaining--
		if a.DaysRemaining > 0 {
			kept = append(kept, a)
		}
	}
	s.Active = kept
	return d
}

// Events returns the catalog entries of the running crises.
func (s *State) Events() []Event {
	out := make([]Event, 0, len(s.Active))
	for _, a := range s.Active {
		if e, ok := Lookup(a.ID); ok {
			out = append(out, e)
		}
	}
	return out
}

// ChoiceModifiers sums the cost increases, in percent, of the running crises.
func (s *State) ChoiceModifiers() map[string]float64 {
	mods := map[string]float64{}
	for _, e := range s.Events() {
		for k, v := range e.ChoiceModifiers {
			mods[k] += v
		}
	}
	return mods
}

// ModifiedCosts raises every positive cost by each modifier whose tag the
// choice carries.
func (s *State) ModifiedCosts(tags []string, costs resources.Delta) resources.Delta {
	out := costs.Clone()
	carried := make(map[string]bool, len(tags))
	for _, t := range tags {
		carried[t] = true
	}
	for tag, inc := range s.ChoiceModifiers() {
		if !carried[tag] {
			continue
		}
		for k, v := range out {
			if v > 0 {
				out[k] = math.Ceil(v * (1 + inc/100))
			}
		}
	}
	return out
}

// SeedCap is the most seeds that can be held while the crises run.
func (s *State) SeedCap() float64 {
	limit := resources.Seeds.Max()
	for _, e := range s.Events() {
		if e.Resource == resources.Seeds && e.MaxCapacity > 0 && e.MaxCapacity < limit {
			limit = e.MaxCapacity
		}
	}
	return limit
}

// SupplyDrain sums the daily drains of running crises on supplies.
func (s *State) SupplyDrain() float64 {
	total := 0.0
	for _, e := range s.Events() {
		if e.Resource == resources.Supplies {
			total += e.DailyDrain
		}
	}
	return total
}
