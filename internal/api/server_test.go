package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kalaith/last-hope/internal/engine"
	"github.com/Kalaith/last-hope/internal/entropy"
	"github.com/Kalaith/last-hope/internal/persistence"
)

func newTestServer(t *testing.T, st *engine.WorldState) *Server {
	t.Helper()
	if st == nil {
		st = engine.InitialState()
	}
	clock := engine.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	sim, err := engine.NewSimulation(st, engine.WithClock(clock), engine.WithRandom(entropy.NewFixed()))
	require.NoError(t, err)
	return &Server{Sim: sim, CORSOrigin: "*"}
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestStatus(t *testing.T) {
	h := newTestServer(t, nil).Handler()
	w := do(t, h, http.MethodGet, "/api/v1/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, 0.0, body["daysSurvived"])
	assert.Equal(t, "opening", body["scene"])
	assert.Len(t, body["npcs"], 3)
}

func TestChoiceThenCooldown(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	w := do(t, h, http.MethodPost, "/api/v1/choice", `{"index": 0}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, h, http.MethodPost, "/api/v1/choice", `{"index": 0}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))
	assert.Contains(t, decodeBody(t, w)["error"], "cooldown")
}

func TestChoiceValidation(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	w := do(t, h, http.MethodPost, "/api/v1/choice", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/api/v1/choice", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/api/v1/choice", `{"index": 9}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/choice", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestTalkUnknownNPC(t *testing.T) {
	h := newTestServer(t, nil).Handler()
	w := do(t, h, http.MethodPost, "/api/v1/talk", `{"npc": "ghost"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodPost, "/api/v1/talk", `{"npc": "elena"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "elena", decodeBody(t, w)["npc"])
}

func TestBuildUnaffordable(t *testing.T) {
	st := engine.InitialState()
	st.Resources.Supplies = 10
	st.Resources.Knowledge = 20
	st.Restoration = 10
	h := newTestServer(t, st).Handler()

	w := do(t, h, http.MethodPost, "/api/v1/build", `{"type": "greenhouse"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, h, http.MethodPost, "/api/v1/build", `{"type": "castle"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlantAndDay(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	w := do(t, h, http.MethodPost, "/api/v1/plant", `{"species": "hardy_grass"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, h, http.MethodPost, "/api/v1/day", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, decodeBody(t, w)["day"])

	w = do(t, h, http.MethodGet, "/api/v1/events?category=ecosystem", "")
	require.Equal(t, http.StatusOK, w.Code)
	var events []engine.Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &events))
	require.NotEmpty(t, events)
	for _, e := range events {
		assert.Equal(t, "ecosystem", e.Category)
	}
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, nil)
	s.Limiter = NewRateLimiter(2, time.Minute)
	h := s.Handler()

	for range 2 {
		w := do(t, h, http.MethodPost, "/api/v1/talk", `{"npc": "elena"}`)
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := do(t, h, http.MethodPost, "/api/v1/talk", `{"npc": "elena"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// Reads are never limited.
	w = do(t, h, http.MethodGet, "/api/v1/status", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiterWindowResets(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"))
	assert.Equal(t, 60, rl.RetryAfter("1.2.3.4"))

	now = now.Add(time.Minute)
	assert.True(t, rl.Allow("1.2.3.4"))
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", clientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientIP(r))
}

func TestAdminEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	s.Eng = engine.NewEngine(s.Sim)
	h := s.Handler()

	w := do(t, h, http.MethodPost, "/api/v1/speed", `{"speed": 2}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	s.AdminKey = "secret"
	w = do(t, h, http.MethodPost, "/api/v1/speed", `{"speed": 2}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/speed", strings.NewReader(`{"speed": 2}`))
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2.0, s.Eng.Speed())

	// Reading the speed needs no token.
	w = do(t, h, http.MethodGet, "/api/v1/speed", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2.0, decodeBody(t, w)["speed"])
}

func TestSnapshotEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	s.AdminKey = "secret"
	db, err := persistence.Open(filepath.Join(t.TempDir(), "lasthope.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	s.DB = db
	s.SnapshotDir = t.TempDir()
	h := s.Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/snapshot", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.FileExists(t, decodeBody(t, rec)["path"].(string))

	st, err := db.LoadState()
	require.NoError(t, err)
	assert.Equal(t, "opening", st.Scene)

	w := do(t, h, http.MethodGet, "/api/v1/runs", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, decodeBody(t, w)["totalRuns"])
}

func TestRunsWithoutDatabase(t *testing.T) {
	h := newTestServer(t, nil).Handler()
	w := do(t, h, http.MethodGet, "/api/v1/runs", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCORS(t *testing.T) {
	h := newTestServer(t, nil).Handler()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/choice", nil)
	req.Header.Set("Origin", "https://example.org")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://example.org", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestStreamBroadcast(t *testing.T) {
	s := newTestServer(t, nil)
	s.Hub = NewHub()
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first StreamMessage
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "status", first.Type)
	require.NotNil(t, first.Status)
	assert.Equal(t, "opening", first.Status.Scene)

	require.Eventually(t, func() bool { return s.Hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)
	s.Hub.Broadcast(engine.DayReport{Day: 3})

	var next StreamMessage
	require.NoError(t, conn.ReadJSON(&next))
	assert.Equal(t, "day", next.Type)
	require.NotNil(t, next.Day)
	assert.Equal(t, 3, next.Day.Day)
}

func TestStreamDisabled(t *testing.T) {
	h := newTestServer(t, nil).Handler()
	w := do(t, h, http.MethodGet, "/api/v1/stream", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
