// Simulation ties together all world systems and runs them each day.
package engine

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Kalaith/last-hope/internal/entropy"
	"github.com/Kalaith/last-hope/internal/narrative"
)

var (
	ErrRunEnded          = errors.New("run has ended")
	ErrOnCooldown        = errors.New("choice on cooldown")
	ErrRequirementsUnmet = errors.New("choice requirements not met")
	ErrUnknownStory      = errors.New("unknown story event")
	ErrUnknownOption     = errors.New("unknown story option")
	ErrUnknownNPC        = errors.New("unknown companion")
	ErrNothingToHarvest  = errors.New("nothing ready to harvest")
	ErrNoSeeds           = errors.New("no seeds to plant")
)

// Cooldown defaults: a choice blocks the next for max(Base, PerConsequence × n).
const (
	DefaultCooldownBase           = 1000 * time.Millisecond
	DefaultCooldownPerConsequence = 800 * time.Millisecond
)

// MaxEvents bounds the in-memory event log.
const MaxEvents = 1000

// Event is a notable occurrence in the run.
type Event struct {
	Seq         uint64         `json:"seq"`
	Day         int            `json:"day"`
	Description string         `json:"description"`
	Category    string         `json:"category"` // "scarcity", "story", "research", "construction", ...
	Meta        map[string]any `json:"meta,omitempty"`
}

// Simulation is one game session. It owns the world state and is the only
// writer to it; every exported method takes the session lock.
type Simulation struct {
	mu      sync.Mutex
	state   *WorldState
	stream  *entropy.Stream // nil when a custom source was injected
	rng     entropy.Source
	clock   Clock
	catalog *narrative.Catalog

	cooldownBase time.Duration
	cooldownPer  time.Duration

	Events []Event // recent events, oldest first

	// OnEvent, when set, is called for every emitted event with the lock held.
	OnEvent func(Event)
	// OnDayReport, when set, is called after every day with the lock held.
	OnDayReport func(DayReport)
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithClock sets the clock the choice cooldown reads.
func WithClock(c Clock) Option {
	return func(s *Simulation) { s.clock = c }
}

// WithRandom replaces the seeded stream with src. The stream position is
// then not saved with the state.
func WithRandom(src entropy.Source) Option {
	return func(s *Simulation) { s.rng = src }
}

// WithCatalog sets the narrative content. The embedded catalog is used otherwise.
func WithCatalog(c *narrative.Catalog) Option {
	return func(s *Simulation) { s.catalog = c }
}

// WithCooldown overrides the choice cooldown tunables.
func WithCooldown(base, perConsequence time.Duration) Option {
	return func(s *Simulation) {
		s.cooldownBase = base
		s.cooldownPer = perConsequence
	}
}

// NewSimulation creates a session around a full state snapshot.
func NewSimulation(state *WorldState, opts ...Option) (*Simulation, error) {
	if state == nil {
		return nil, errors.New("nil world state")
	}
	s := &Simulation{
		state:        state,
		clock:        RealClock{},
		cooldownBase: DefaultCooldownBase,
		cooldownPer:  DefaultCooldownPerConsequence,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.rng == nil {
		s.stream = entropy.New(state.Seed)
		if len(state.RNG) > 0 {
			if err := s.stream.UnmarshalBinary(state.RNG); err != nil {
				return nil, err
			}
		}
		s.rng = s.stream
	}

	if s.catalog == nil {
		c, err := narrative.Default()
		if err != nil {
			return nil, fmt.Errorf("load narrative catalog: %w", err)
		}
		s.catalog = c
	}
	return s, nil
}

// Snapshot returns a deep copy of the state with the rng position captured.
func (s *Simulation) Snapshot() *WorldState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.captureRNG()
	return s.state.Clone()
}

// Day returns the number of days survived.
func (s *Simulation) Day() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Day
}

// Ended reports whether the run has reached an ending.
func (s *Simulation) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Ended()
}

// Catalog returns the narrative content the session plays.
func (s *Simulation) Catalog() *narrative.Catalog { return s.catalog }

func (s *Simulation) captureRNG() {
	if s.stream == nil {
		return
	}
	if b, err := s.stream.MarshalBinary(); err == nil {
		s.state.RNG = b
	}
}

// EmitEvent records an event and hands it to OnEvent.
func (s *Simulation) EmitEvent(e Event) {
	s.state.EventSeq++
	e.Seq = s.state.EventSeq
	s.Events = append(s.Events, e)
	if len(s.Events) > MaxEvents {
		s.Events = s.Events[len(s.Events)-MaxEvents:]
	}
	if s.OnEvent != nil {
		s.OnEvent(e)
	}
}

// RecentEvents returns up to n of the latest events, newest last.
func (s *Simulation) RecentEvents(n int) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := 0
	if n > 0 && len(s.Events) > n {
		start = len(s.Events) - n
	}
	return append([]Event(nil), s.Events[start:]...)
}

// EventsAfter returns the retained events with a sequence above seq.
func (s *Simulation) EventsAfter(seq uint64) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := sort.Search(len(s.Events), func(i int) bool { return s.Events[i].Seq > seq })
	return append([]Event(nil), s.Events[i:]...)
}
