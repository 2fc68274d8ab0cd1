// Package resources is the survivor resource ledger: five bounded scalars,
// the deltas that move them, and the threshold table that classifies them.
package resources

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/exp/constraints"
)

// Kind names a quantity that content deltas may touch.
type Kind uint8

const (
	Hope Kind = iota
	Health
	Supplies
	Knowledge
	Seeds
	SoilHealth  // ecosystem metric, not held by the ledger
	Restoration // restoration progress, not held by the ledger

	kindCount
)

// Core lists the ledger resources in their canonical order.
var Core = []Kind{Hope, Health, Supplies, Knowledge, Seeds}

var kindNames = [kindCount]string{
	Hope:        "hope",
	Health:      "health",
	Supplies:    "supplies",
	Knowledge:   "knowledge",
	Seeds:       "seeds",
	SoilHealth:  "soilHealth",
	Restoration: "restorationProgress",
}

// Aliases accepted from content in addition to the canonical names.
var kindAliases = map[string]Kind{
	"soil_health":          SoilHealth,
	"soil":                 SoilHealth,
	"restoration":          Restoration,
	"restoration_progress": Restoration,
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind maps a content key to a Kind.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}
	k, ok := kindAliases[name]
	return k, ok
}

// IsCore reports whether the ledger holds this kind.
func (k Kind) IsCore() bool { return k <= Seeds }

// Max is the upper bound of the kind. Seeds cap at 50, everything else at 100.
func (k Kind) Max() float64 {
	if k == Seeds {
		return 50
	}
	return 100
}

func (k Kind) MarshalText() ([]byte, error) {
	if k >= kindCount {
		return nil, fmt.Errorf("unknown resource kind %d", uint8(k))
	}
	return []byte(kindNames[k]), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, ok := ParseKind(string(b))
	if !ok {
		return fmt.Errorf("unknown resource %q", string(b))
	}
	*k = parsed
	return nil
}

// Clamp bounds v to [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Set holds the five ledger resources.
type Set struct {
	Hope      float64 `json:"hope"`
	Health    float64 `json:"health"`
	Supplies  float64 `json:"supplies"`
	Knowledge float64 `json:"knowledge"`
	Seeds     float64 `json:"seeds"`
}

// Get returns the value of a core kind. Non-core kinds read as 0.
func (s Set) Get(k Kind) float64 {
	switch k {
	case Hope:
		return s.Hope
	case Health:
		return s.Health
	case Supplies:
		return s.Supplies
	case Knowledge:
		return s.Knowledge
	case Seeds:
		return s.Seeds
	}
	return 0
}

func (s *Set) ptr(k Kind) *float64 {
	switch k {
	case Hope:
		return &s.Hope
	case Health:
		return &s.Health
	case Supplies:
		return &s.Supplies
	case Knowledge:
		return &s.Knowledge
	case Seeds:
		return &s.Seeds
	}
	return nil
}

// Apply adds each core delta and clamps to bounds. Other kinds are ignored.
func (s *Set) Apply(d Delta) {
	for _, k := range Core {
		v, ok := d[k]
		if !ok {
			continue
		}
		p := s.ptr(k)
		*p = Clamp(*p+v, 0, k.Max())
	}
}

// Normalize clamps every resource into bounds.
func (s *Set) Normalize() {
	for _, k := range Core {
		p := s.ptr(k)
		*p = Clamp(*p, 0, k.Max())
	}
}

// Meets reports whether every core amount in req is available.
// On failure it returns the first short kind in canonical order.
func (s Set) Meets(req Delta) (Kind, bool) {
	for _, k := range Core {
		need, ok := req[k]
		if ok && s.Get(k) < need {
			return k, false
		}
	}
	return 0, true
}

// Delta is a set of signed changes keyed by kind.
type Delta map[Kind]float64

// Add accumulates v into k.
func (d Delta) Add(k Kind, v float64) {
	d[k] += v
}

// Merge accumulates every entry of o.
func (d Delta) Merge(o Delta) {
	for k, v := range o {
		d[k] += v
	}
}

// Negate returns a copy with every value sign-flipped.
func (d Delta) Negate() Delta {
	out := make(Delta, len(d))
	for k, v := range d {
		out[k] = -v
	}
	return out
}

// Clone returns a shallow copy.
func (d Delta) Clone() Delta {
	out := make(Delta, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Kinds returns the keys in canonical order.
func (d Delta) Kinds() []Kind {
	ks := make([]Kind, 0, len(d))
	for k := range d {
		ks = append(ks, k)
	}
	sort.Slice(ks, func(i, j int) bool { return ks[i] < ks[j] })
	return ks
}

// NonZero counts entries with a non-zero value.
func (d Delta) NonZero() int {
	n := 0
	for _, v := range d {
		if v != 0 {
			n++
		}
	}
	return n
}

// ParseDelta converts content keys to kinds. Unknown keys are logged and dropped.
func ParseDelta(raw map[string]float64) Delta {
	d := make(Delta, len(raw))
	for name, v := range raw {
		k, ok := ParseKind(name)
		if !ok {
			slog.Warn("ignoring unknown resource key", "key", name, "value", v)
			continue
		}
		d[k] += v
	}
	return d
}

func (d *Delta) UnmarshalJSON(b []byte) error {
	var raw map[string]float64
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*d = ParseDelta(raw)
	return nil
}

// Fixed per-day upkeep.
const (
	DailySupplies  = 2
	DailyHope      = 1
	DailyHealth    = 1
	StarvingHealth = 5
)

// DailyConsumption is the fixed upkeep of one day. Starvation is judged on
// supplies after the day's ration is taken.
func DailyConsumption(s Set, soilHealth float64) Delta {
	d := Delta{
		Supplies: -DailySupplies,
		Hope:     -DailyHope,
		Health:   -DailyHealth,
	}
	if s.Supplies-DailySupplies <= SuppliesCritical {
		d[Health] = -StarvingHealth
	}
	if soilHealth > 50 {
		d[Hope] += 2
	}
	return d
}
