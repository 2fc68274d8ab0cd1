package caretaker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrRejected is returned when the run refuses an action (4xx).
type ErrRejected struct {
	Path   string
	Status int
	Body   string
}

func (e *ErrRejected) Error() string {
	return fmt.Sprintf("POST %s rejected (%d): %s", e.Path, e.Status, e.Body)
}

// Actor performs decisions via the player API.
type Actor struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewActor creates an Actor targeting the given API base URL.
func NewActor(baseURL string) *Actor {
	return &Actor{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Act sends the decision's request and returns the raw response body.
func (a *Actor) Act(ctx context.Context, d Decision) (json.RawMessage, error) {
	if d.Path == "" {
		return nil, nil
	}
	body := []byte("{}")
	if d.Body != nil {
		var err error
		if body, err = json.Marshal(d.Body); err != nil {
			return nil, fmt.Errorf("marshal %s: %w", d.Action, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+d.Path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", d.Path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, &ErrRejected{Path: d.Path, Status: resp.StatusCode, Body: string(bytes.TrimSpace(respBody))}
	}
	return respBody, nil
}
