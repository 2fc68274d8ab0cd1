package engine

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Kalaith/last-hope/internal/agents"
	"github.com/Kalaith/last-hope/internal/consequence"
	"github.com/Kalaith/last-hope/internal/construction"
	"github.com/Kalaith/last-hope/internal/ecosystem"
	"github.com/Kalaith/last-hope/internal/narrative"
	"github.com/Kalaith/last-hope/internal/research"
	"github.com/Kalaith/last-hope/internal/resources"
	"github.com/Kalaith/last-hope/internal/scarcity"
	"github.com/Kalaith/last-hope/internal/weather"
	"github.com/Kalaith/last-hope/internal/world"
)

// StartScene is the scene every run opens on.
const StartScene = "opening"

// ChoiceRecord is one decision in the run's history.
type ChoiceRecord struct {
	Day    int      `json:"day"`
	Scene  string   `json:"scene"`
	Choice int      `json:"choice"`
	Text   string   `json:"text"`
	Tags   []string `json:"tags,omitempty"`
}

// WorldState is everything one run owns. It is the unit saved and loaded.
type WorldState struct {
	Seed       int64      `json:"seed"`
	Background string     `json:"background,omitempty"`
	Site       world.Site `json:"site"`
	Day        int        `json:"daysSurvived"`

	Resources    resources.Set      `json:"resources"`
	Ecosystem    ecosystem.State    `json:"ecosystem"`
	Restoration  float64            `json:"restorationProgress"`
	NPCs         []*agents.NPC      `json:"npcs"`
	Construction construction.State `json:"baseBuilding"`
	Research     research.Progress  `json:"research"`
	Scarcity     scarcity.State     `json:"scarcity"`
	Consequences consequence.State  `json:"consequences"`

	// Story events waiting on the player, oldest first.
	Stories     []consequence.StoryEvent `json:"pendingStoryEvents"`
	SystemEvent string                   `json:"pendingSystemEvent,omitempty"`
	EventLog    narrative.EventLog       `json:"systemEvents"`

	Scene           string         `json:"currentScene"`
	Choices         []ChoiceRecord `json:"choices"`
	UnlockedChoices []string       `json:"unlockedChoices,omitempty"`

	PeakTrust map[string]float64 `json:"highestTrustLevels"`
	MaxSoil   float64            `json:"maxSoilHealth"`
	Ending    world.Ending       `json:"ending,omitempty"`

	CooldownUntil time.Time `json:"cooldownUntil"`
	RNG           []byte    `json:"rngState,omitempty"`
	EventSeq      uint64    `json:"eventSeq"` // sequence of the last emitted event
}

// InitialState is the template every run starts from and every load is
// filled from.
func InitialState() *WorldState {
	s := &WorldState{
		Resources: resources.Set{Hope: 50, Health: 80, Supplies: 25, Knowledge: 10, Seeds: 3},
		Ecosystem: ecosystem.State{
			Plants:     []ecosystem.Plant{},
			SoilHealth: 5,
			Weather:    weather.Stable,
			Season:     weather.Spring,
		},
		NPCs:     agents.Roster(),
		Research: research.NewProgress(),
		EventLog: narrative.NewEventLog(),
		Scene:    StartScene,
		Choices:  []ChoiceRecord{},
		MaxSoil:  5,
	}
	s.trackPeaks()
	return s
}

// DecodeState loads a saved run. Fields the save lacks keep their template
// values, including fields of a saved companion; missing companions are
// restored from the roster.
func DecodeState(data []byte) (*WorldState, error) {
	s := InitialState()
	s.NPCs = nil
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("decode world state: %w", err)
	}
	var saved struct {
		NPCs []json.RawMessage `json:"npcs"`
	}
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, fmt.Errorf("decode world state: %w", err)
	}
	npcs, err := mergeNPCs(saved.NPCs)
	if err != nil {
		return nil, err
	}
	s.NPCs = npcs
	s.fill()
	return s, nil
}

// mergeNPCs decodes each saved companion over its roster entry.
func mergeNPCs(saved []json.RawMessage) ([]*agents.NPC, error) {
	roster := agents.Roster()
	out := make([]*agents.NPC, 0, len(saved))
	for _, raw := range saved {
		var head struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			return nil, fmt.Errorf("decode npc: %w", err)
		}
		n := &agents.NPC{}
		if tmpl := agents.Find(roster, head.ID); tmpl != nil {
			n = tmpl.Clone()
		}
		if err := json.Unmarshal(raw, n); err != nil {
			return nil, fmt.Errorf("decode npc %q: %w", head.ID, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func (s *WorldState) fill() {
	for _, n := range agents.Roster() {
		if agents.Find(s.NPCs, n.ID) == nil {
			s.NPCs = append(s.NPCs, n)
		}
	}
	for _, n := range s.NPCs {
		if n.DialogueMemory == nil {
			n.DialogueMemory = []string{}
		}
	}
	if !s.Ecosystem.Weather.Valid() {
		s.Ecosystem.Weather = weather.Stable
	}
	if !s.Ecosystem.Season.Valid() {
		s.Ecosystem.Season = weather.Spring
	}
	if s.Ecosystem.Plants == nil {
		s.Ecosystem.Plants = []ecosystem.Plant{}
	}
	if s.Research.Completed == nil {
		s.Research.Completed = []string{}
	}
	s.Research.Available = research.AvailableFor(s.Research.Completed)
	if s.EventLog.LastTriggered == nil {
		s.EventLog.LastTriggered = map[string]int{}
	}
	if s.EventLog.Once == nil {
		s.EventLog.Once = map[string]bool{}
	}
	if s.Scene == "" {
		s.Scene = StartScene
	}
	if s.Choices == nil {
		s.Choices = []ChoiceRecord{}
	}
	s.Resources.Normalize()
	s.Ecosystem.SoilHealth = resources.Clamp(s.Ecosystem.SoilHealth, 0, 100)
	s.trackPeaks()
}

// Conditions is the read-only view rules are evaluated against.
func (s *WorldState) Conditions() world.Conditions {
	return world.Conditions{
		Day:         s.Day,
		Resources:   s.Resources,
		SoilHealth:  s.Ecosystem.SoilHealth,
		Diversity:   s.Ecosystem.Diversity,
		PlantCount:  len(s.Ecosystem.Plants),
		Weather:     s.Ecosystem.Weather,
		Season:      s.Ecosystem.Season,
		Restoration: s.Restoration,
		NPCs:        agents.Views(s.NPCs),
		Structures:  s.Construction.Levels(),
	}
}

// Ended reports whether the run has reached an ending.
func (s *WorldState) Ended() bool { return s.Ending != world.Ongoing }

// Clone deep-copies the state through its JSON form.
func (s *WorldState) Clone() *WorldState {
	data, err := json.Marshal(s)
	if err != nil {
		panic(fmt.Sprintf("clone world state: %v", err))
	}
	c, err := DecodeState(data)
	if err != nil {
		panic(fmt.Sprintf("clone world state: %v", err))
	}
	return c
}

// apply routes a delta: core kinds go to the ledger, soil to the ecosystem
// and restoration to its own gauge. Every target is clamped.
func (s *WorldState) apply(d resources.Delta) {
	s.Resources.Apply(d)
	if v, ok := d[resources.SoilHealth]; ok {
		s.Ecosystem.SoilHealth = resources.Clamp(s.Ecosystem.SoilHealth+v, 0, resources.SoilHealth.Max())
	}
	if v, ok := d[resources.Restoration]; ok {
		s.Restoration = resources.Clamp(s.Restoration+v, 0, resources.Restoration.Max())
	}
}

func (s *WorldState) adjustTrust(rel map[string]float64) {
	for id, v := range rel {
		if n := agents.Find(s.NPCs, id); n != nil {
			agents.AdjustTrust(n, v)
		}
	}
}

func (s *WorldState) trackPeaks() {
	if s.PeakTrust == nil {
		s.PeakTrust = map[string]float64{}
	}
	for _, n := range s.NPCs {
		if n.Trust > s.PeakTrust[n.ID] {
			s.PeakTrust[n.ID] = n.Trust
		}
	}
	if s.Ecosystem.SoilHealth > s.MaxSoil {
		s.MaxSoil = s.Ecosystem.SoilHealth
	}
}
