// Package narrative loads story content and decides which system event, if
// any, a day's conditions call for.
package narrative

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Kalaith/last-hope/internal/resources"
	"github.com/Kalaith/last-hope/internal/world"
)

var (
	//go:embed content/catalog.json
	defaultCatalog []byte

	//go:embed content/catalog.schema.json
	catalogSchema string
)

var (
	ErrInvalidCatalog = errors.New("invalid narrative catalog")
	ErrUnknownScene   = errors.New("unknown scene")
	ErrUnknownChoice  = errors.New("unknown choice")
)

// Choice is one option offered by a scene or system event.
type Choice struct {
	Text          string             `json:"text"`
	Consequences  resources.Delta    `json:"consequences,omitempty"`
	Relationships map[string]float64 `json:"relationships,omitempty"`
	Requirements  resources.Delta    `json:"requirements,omitempty"`
	NextScene     string             `json:"nextScene,omitempty"`
	Tags          []string           `json:"tags,omitempty"`
	Unlock        string             `json:"unlock,omitempty"` // hidden until granted
}

// EffectTags returns the declared tags, or tags inferred from the text for
// content that predates tagging.
func (c Choice) EffectTags() []string {
	if len(c.Tags) > 0 {
		return c.Tags
	}
	return InferTags(c.Text)
}

// Unmet returns the first requirement the conditions fall short of.
func (c Choice) Unmet(cond world.Conditions) (resources.Kind, bool) {
	for _, k := range c.Requirements.Kinds() {
		if cond.Value(k) < c.Requirements[k] {
			return k, true
		}
	}
	return 0, false
}

// Locked reports whether the choice is gated behind an unlock not yet granted.
func (c Choice) Locked(granted func(unlock string) bool) bool {
	return c.Unlock != "" && !granted(c.Unlock)
}

// Scene is a story beat.
type Scene struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Text    string   `json:"text"`
	Choices []Choice `json:"choices"`
}

// Catalog is the full set of story content.
type Catalog struct {
	Start        string           `json:"start"`
	Scenes       map[string]Scene `json:"scenes"`
	SystemEvents []SystemEvent    `json:"systemEvents"`
}

// Default parses the built-in catalog.
func Default() (*Catalog, error) {
	return LoadCatalog(defaultCatalog)
}

// LoadCatalog validates data against the catalog schema, decodes it and
// checks that every scene reference resolves.
func LoadCatalog(data []byte) (*Catalog, error) {
	schema, err := jsonschema.CompileString("catalog.schema.json", catalogSchema)
	if err != nil {
		return nil, fmt.Errorf("compile catalog schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	var cat Catalog
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&cat); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if _, ok := cat.Scenes[cat.Start]; !ok {
		return nil, fmt.Errorf("%w: start scene %q missing", ErrInvalidCatalog, cat.Start)
	}
	for id, sc := range cat.Scenes {
		if sc.ID != id {
			return nil, fmt.Errorf("%w: scene %q keyed as %q", ErrInvalidCatalog, sc.ID, id)
		}
		for i, ch := range sc.Choices {
			if ch.NextScene == "" {
				continue
			}
			if _, ok := cat.Scenes[ch.NextScene]; !ok {
				return nil, fmt.Errorf("%w: %s choice %d leads to missing scene %q", ErrInvalidCatalog, id, i, ch.NextScene)
			}
		}
	}
	sort.SliceStable(cat.SystemEvents, func(i, j int) bool {
		return cat.SystemEvents[i].Priority > cat.SystemEvents[j].Priority
	})
	return &cat, nil
}

// Scene looks up a scene by id.
func (c *Catalog) Scene(id string) (Scene, error) {
	sc, ok := c.Scenes[id]
	if !ok {
		return Scene{}, fmt.Errorf("%w: %q", ErrUnknownScene, id)
	}
	return sc, nil
}

// Choice looks up the n-th choice of a scene.
func (c *Catalog) Choice(sceneID string, n int) (Choice, error) {
	sc, err := c.Scene(sceneID)
	if err != nil {
		return Choice{}, err
	}
	if n < 0 || n >= len(sc.Choices) {
		return Choice{}, fmt.Errorf("%w: %s has no choice %d", ErrUnknownChoice, sceneID, n)
	}
	return sc.Choices[n], nil
}

// SystemEvent looks up a system event by id.
func (c *Catalog) SystemEvent(id string) (SystemEvent, bool) {
	for _, e := range c.SystemEvents {
		if e.ID == id {
			return e, true
		}
	}
	return SystemEvent{}, false
}
