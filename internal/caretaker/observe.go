// Package caretaker implements a rule-based steward for a Last Hope run.
// It observes the run via the API, picks one action by fixed rules,
// and acts via the player endpoints.
package caretaker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Snapshot holds everything collected during one observation.
type Snapshot struct {
	Status     Status
	Pressures  []Pressure
	Scene      Scene
	Research   Research
	Structures Structures
}

// Status mirrors GET /api/v1/status.
type Status struct {
	Day             int       `json:"daysSurvived"`
	Resources       Resources `json:"resources"`
	SoilHealth      float64   `json:"soilHealth"`
	Diversity       float64   `json:"plantDiversity"`
	Plants          int       `json:"plants"`
	Ripe            int       `json:"ripe"`
	Weather         string    `json:"weather"`
	CurrentResearch string    `json:"currentResearch"`
	PendingStories  int       `json:"pendingStories"`
	SystemEvent     string    `json:"systemEvent"`
	CooldownMs      int64     `json:"cooldownMs"`
	Ending          string    `json:"ending"`
}

type Resources struct {
	Hope      float64 `json:"hope"`
	Health    float64 `json:"health"`
	Supplies  float64 `json:"supplies"`
	Knowledge float64 `json:"knowledge"`
	Seeds     float64 `json:"seeds"`
}

// Get reads a resource by its API name. Unknown names read as 0.
func (r Resources) Get(name string) float64 {
	switch name {
	case "hope":
		return r.Hope
	case "health":
		return r.Health
	case "supplies":
		return r.Supplies
	case "knowledge":
		return r.Knowledge
	case "seeds":
		return r.Seeds
	}
	return 0
}

// Pressure mirrors items from GET /api/v1/pressures.
type Pressure struct {
	Resource        string  `json:"resource"`
	Pressure        float64 `json:"pressure"`
	Trend           string  `json:"trend"`
	TimeToDepletion *int    `json:"timeToDepletion"`
}

// Scene mirrors GET /api/v1/scene.
type Scene struct {
	SceneID string `json:"sceneId"`
	Title   string `json:"title"`
	Choices []struct {
		Index  int    `json:"index"`
		Text   string `json:"text"`
		Locked bool   `json:"locked"`
		Unmet  string `json:"unmet"`
	} `json:"choices"`
	Stories []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"pendingStories"`
}

// Research mirrors GET /api/v1/research.
type Research struct {
	Recommended []string `json:"recommended"`
	Progress    struct {
		Current   string   `json:"currentResearch"`
		Completed []string `json:"completedResearch"`
	} `json:"progress"`
}

// Structures mirrors GET /api/v1/structures.
type Structures struct {
	Structures []struct {
		ID        string  `json:"id"`
		Type      string  `json:"type"`
		Condition float64 `json:"condition"`
	} `json:"structures"`
	Projects []struct {
		Type string `json:"structureType"`
	} `json:"projects"`
	Available []struct {
		Blueprint struct {
			Type   string `json:"type"`
			Levels []struct {
				Level     int                `json:"level"`
				BuildCost map[string]float64 `json:"buildCost"`
			} `json:"levels"`
		} `json:"blueprint"`
		AvailableLevels []int `json:"availableLevels"`
	} `json:"available"`
}

// Observer fetches the run from the API.
type Observer struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewObserver creates an Observer targeting the given API base URL.
func NewObserver(baseURL string) *Observer {
	return &Observer{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Observe fetches all five endpoints and returns a Snapshot.
func (o *Observer) Observe(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}

	if err := o.fetchJSON(ctx, "/api/v1/status", &snap.Status); err != nil {
		return nil, fmt.Errorf("fetch status: %w", err)
	}
	if err := o.fetchJSON(ctx, "/api/v1/pressures", &snap.Pressures); err != nil {
		return nil, fmt.Errorf("fetch pressures: %w", err)
	}
	if snap.Status.Ending != "" {
		return snap, nil
	}
	if err := o.fetchJSON(ctx, "/api/v1/scene", &snap.Scene); err != nil {
		return nil, fmt.Errorf("fetch scene: %w", err)
	}
	if err := o.fetchJSON(ctx, "/api/v1/research", &snap.Research); err != nil {
		return nil, fmt.Errorf("fetch research: %w", err)
	}
	if err := o.fetchJSON(ctx, "/api/v1/structures", &snap.Structures); err != nil {
		return nil, fmt.Errorf("fetch structures: %w", err)
	}
	return snap, nil
}

// fetchJSON GETs a path and decodes the JSON response into target.
func (o *Observer) fetchJSON(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.BaseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := o.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s returned %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
