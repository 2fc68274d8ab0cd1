package research

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/Kalaith/last-hope/internal/world"
)

var (
	ErrUnknownNode         = errors.New("unknown research")
	ErrAlreadyResearched   = errors.New("already researched")
	ErrPrerequisites       = errors.New("prerequisites not met")
	ErrInsufficientKnowing = errors.New("not enough knowledge")
	ErrResearchInProgress  = errors.New("research already in progress")
)

// Progress is the research track of one run. Only one node is studied at a time.
type Progress struct {
	Current        string   `json:"currentResearch,omitempty"`
	DaysInProgress int      `json:"daysInProgress"`
	Completed      []string `json:"completedResearch"`
	Available      []string `json:"availableResearch"`
}

// NewProgress starts an empty track.
func NewProgress() Progress {
	return Progress{Completed: []string{}, Available: AvailableFor(nil)}
}

// AvailableFor lists the nodes whose prerequisites are all completed.
func AvailableFor(completed []string) []string {
	out := []string{}
	for _, n := range tree {
		if slices.Contains(completed, n.ID) {
			continue
		}
		if prerequisitesMet(n, completed) {
			out = append(out, n.ID)
		}
	}
	return out
}

func prerequisitesMet(n Node, completed []string) bool {
	for _, p := range n.Prerequisites {
		if !slices.Contains(completed, p) {
			return false
		}
	}
	return true
}

// CanStart reports why a node cannot be studied, or nil.
func CanStart(id string, knowledge float64, completed []string) error {
	n, ok := Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNode, id)
	}
	if slices.Contains(completed, id) {
		return fmt.Errorf("%w: %s", ErrAlreadyResearched, n.Name)
	}
	if !prerequisitesMet(n, completed) {
		return fmt.Errorf("%w: %s needs %s", ErrPrerequisites, n.Name, strings.Join(n.Prerequisites, ", "))
	}
	if knowledge < n.KnowledgeRequired {
		return fmt.Errorf("%w: %s needs %.0f, have %.0f", ErrInsufficientKnowing, n.Name, n.KnowledgeRequired, knowledge)
	}
	return nil
}

// Start begins studying id. The track is unchanged on error.
func (p *Progress) Start(id string, knowledge float64) error {
	if p.Current != "" {
		return fmt.Errorf("%w: %s", ErrResearchInProgress, p.Current)
	}
	if err := CanStart(id, knowledge, p.Completed); err != nil {
		return err
	}
	p.Current = id
	p.DaysInProgress = 0
	return nil
}

// Tick advances the current study a day and returns the node it completes, if any.
func (p *Progress) Tick() (Node, bool) {
	if p.Current == "" {
		return Node{}, false
	}
	n, ok := Lookup(p.Current)
	if !ok {
		p.Current, p.DaysInProgress = "", 0
		return Node{}, false
	}
	p.DaysInProgress++
	if p.DaysInProgress < n.Days() {
		return Node{}, false
	}
	p.Completed = append(p.Completed, n.ID)
	p.Current = ""
	p.DaysInProgress = 0
	p.Available = AvailableFor(p.Completed)
	return n, true
}

// ActiveBoosts multiplies together the boosts of every completed node.
func ActiveBoosts(completed []string) map[string]float64 {
	boosts := map[string]float64{}
	for _, id := range completed {
		n, ok := Lookup(id)
		if !ok {
			continue
		}
		for k, v := range n.Boosts {
			if cur, ok := boosts[k]; ok {
				boosts[k] = cur * v
				continue
			}
			boosts[k] = v
		}
	}
	return boosts
}

// Boost reads one multiplier, 1 when absent.
func Boost(boosts map[string]float64, name string) float64 {
	if v, ok := boosts[name]; ok {
		return v
	}
	return 1
}

// Unlocks groups the unlocks of completed nodes.
type Unlocks struct {
	Choices       []string `json:"choices"`
	Constructions []string `json:"constructions"`
	Abilities     []string `json:"abilities"`
}

// Unlocked classifies unlocks by name: choices, then constructions, then abilities.
func Unlocked(completed []string) Unlocks {
	u := Unlocks{Choices: []string{}, Constructions: []string{}, Abilities: []string{}}
	for _, id := range completed {
		n, ok := Lookup(id)
		if !ok {
			continue
		}
		for _, unlock := range n.Unlocks {
			switch {
			case strings.Contains(unlock, "choice"):
				u.Choices = append(u.Choices, unlock)
			case strings.Contains(unlock, "construction"), strings.Contains(unlock, "building"):
				u.Constructions = append(u.Constructions, unlock)
			default:
				u.Abilities = append(u.Abilities, unlock)
			}
		}
		u.Abilities = append(u.Abilities, n.Abilities...)
	}
	return u
}

// HasUnlock reports whether any completed node grants unlock.
func HasUnlock(unlock string, completed []string) bool {
	for _, id := range completed {
		n, ok := Lookup(id)
		if !ok {
			continue
		}
		if slices.Contains(n.Unlocks, unlock) || slices.Contains(n.Abilities, unlock) {
			return true
		}
	}
	return false
}

// Recommend ranks startable nodes by how well they answer current needs and
// returns the top three.
func Recommend(p Progress, c world.Conditions, structures int) []string {
	type scored struct {
		id       string
		priority int
	}
	lowTrust := false
	for _, n := range c.NPCs {
		if n.Trust < 40 {
			lowTrust = true
			break
		}
	}

	var recs []scored
	for _, id := range p.Available {
		n, ok := Lookup(id)
		if !ok || CanStart(id, c.Resources.Knowledge, p.Completed) != nil {
			continue
		}
		priority := 0
		if c.Resources.Health < 50 && n.Category == Survival {
			priority += 3
		}
		if c.Resources.Supplies < 30 && n.Category == Agriculture {
			priority += 3
		}
		if c.SoilHealth < 30 && n.Category == Ecology {
			priority += 2
		}
		if structures > 2 && n.Category == Construction {
			priority += 2
		}
		if lowTrust && n.Category == Social {
			priority += 3
		}
		if n.KnowledgeRequired > c.Resources.Knowledge*1.5 {
			priority -= 2
		}
		recs = append(recs, scored{id, priority})
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].priority > recs[j].priority })
	if len(recs) > 3 {
		recs = recs[:3]
	}
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.id
	}
	return out
}
