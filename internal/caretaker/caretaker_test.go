package caretaker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kalaith/last-hope/internal/api"
	"github.com/Kalaith/last-hope/internal/engine"
	"github.com/Kalaith/last-hope/internal/entropy"
)

func days(n int) *int { return &n }

func TestTriage(t *testing.T) {
	snap := &Snapshot{Pressures: []Pressure{
		{Resource: "hope", Pressure: 30, Trend: "stable"},
		{Resource: "supplies", Pressure: 65, Trend: "worsening"},
		{Resource: "health", Pressure: 20, Trend: "improving"},
	}}
	h := Triage(snap)
	assert.Equal(t, "supplies", h.Top.Resource)
	assert.Equal(t, Warning, h.CrisisLevel)
	assert.False(t, h.Calm())

	snap.Pressures[1].TimeToDepletion = days(3)
	h = Triage(snap)
	assert.Equal(t, Critical, h.CrisisLevel)
	assert.Equal(t, []string{"supplies"}, h.Depleting)

	h = Triage(&Snapshot{})
	assert.Equal(t, Healthy, h.CrisisLevel)
	assert.True(t, h.Calm())
}

func calmSnapshot() *Snapshot {
	snap := &Snapshot{}
	snap.Status.Day = 4
	snap.Status.Resources = Resources{Hope: 60, Health: 90, Supplies: 80, Knowledge: 30}
	snap.Status.SoilHealth = 12
	return snap
}

func TestDecidePriorities(t *testing.T) {
	healthy := &Health{CrisisLevel: Healthy}

	snap := calmSnapshot()
	snap.Status.Ending = "hope_lost"
	assert.Equal(t, ActionNone, Decide(snap, healthy, nil).Action)

	snap = calmSnapshot()
	snap.Status.Ripe = 2
	snap.Status.Resources.Seeds = 4
	assert.Equal(t, ActionHarvest, Decide(snap, healthy, nil).Action)

	snap.Status.Ripe = 0
	d := Decide(snap, healthy, nil)
	assert.Equal(t, ActionPlant, d.Action)
	assert.Equal(t, map[string]string{"species": "pioneer_herb"}, d.Body)

	snap.Status.Resources.Seeds = 0
	snap.Research.Recommended = []string{"soil_chemistry"}
	d = Decide(snap, healthy, nil)
	assert.Equal(t, ActionResearch, d.Action)
	assert.Equal(t, "/api/v1/research", d.Path)

	snap.Status.CurrentResearch = "soil_chemistry"
	assert.Equal(t, ActionAdvance, Decide(snap, healthy, nil).Action)
}

func TestDecideResolvesStories(t *testing.T) {
	snap := calmSnapshot()
	snap.Scene.Stories = append(snap.Scene.Stories, struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}{ID: "food_shortage_aftermath@7", Title: "Food Shortage"})

	d := Decide(snap, &Health{CrisisLevel: Healthy}, nil)
	assert.Equal(t, ActionResolve, d.Action)
	assert.Equal(t, map[string]string{"id": "food_shortage_aftermath@7", "option": "accept"}, d.Body)

	d = Decide(snap, &Health{CrisisLevel: Critical}, nil)
	assert.Equal(t, "mitigate", d.Body.(map[string]string)["option"])
}

func TestDecideSkipsFailingActions(t *testing.T) {
	snap := calmSnapshot()
	snap.Status.Ripe = 1
	mem := &Memory{}
	mem.Record(CycleRecord{Action: ActionHarvest, Failed: true})
	assert.NotEqual(t, ActionHarvest, Decide(snap, &Health{CrisisLevel: Healthy}, mem).Action)

	for range failWindow {
		mem.Record(CycleRecord{Action: ActionAdvance})
	}
	assert.Equal(t, ActionHarvest, Decide(snap, &Health{CrisisLevel: Healthy}, mem).Action)
}

func TestPickSpecies(t *testing.T) {
	assert.Equal(t, "hardy_grass", pickSpecies(0, 0))
	assert.Equal(t, "desert_bloom", pickSpecies(5, 0))
	assert.Equal(t, "pioneer_herb", pickSpecies(35, 0), "legumes need knowledge")
	assert.Equal(t, "nitrogen_fixer", pickSpecies(30, 25))
	assert.Equal(t, "forest_sapling", pickSpecies(60, 40))
}

func TestMemoryPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "caretaker.json")
	mem := LoadMemory(path)
	for i := range maxRecords + 5 {
		mem.Record(CycleRecord{Day: i, Action: ActionAdvance})
	}
	mem.Save()

	got := LoadMemory(path)
	require.Len(t, got.Records, maxRecords)
	assert.Equal(t, 5, got.Records[0].Day)
	assert.Contains(t, got.Summary(1), "day 24: day")
}

func TestCycleAgainstServer(t *testing.T) {
	clock := engine.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	sim, err := engine.NewSimulation(engine.InitialState(), engine.WithClock(clock), engine.WithRandom(entropy.NewFixed()))
	require.NoError(t, err)
	ts := httptest.NewServer((&api.Server{Sim: sim}).Handler())
	defer ts.Close()

	c := New(ts.URL, "")
	for range 3 {
		d, err := c.Cycle(context.Background())
		require.NoError(t, err)
		assert.Equal(t, ActionPlant, d.Action)
	}

	st := sim.Status()
	assert.Equal(t, 3, st.Plants)
	assert.Zero(t, st.Resources.Seeds)
	require.Len(t, c.Memory.Records, 3)
	assert.False(t, c.Memory.Records[2].Failed)
}

func TestCycleRecordsRejection(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"daysSurvived": 3, "ripe": 1, "resources": {"supplies": 50}}`))
	})
	mux.HandleFunc("/api/v1/pressures", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"resource": "hope", "pressure": 10, "trend": "stable"}]`))
	})
	for _, p := range []string{"/api/v1/scene", "/api/v1/research", "/api/v1/structures"} {
		mux.HandleFunc(p, func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{}`)) })
	}
	mux.HandleFunc("/api/v1/harvest", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error": "nothing ripe to harvest"}`))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c := New(ts.URL, "")
	d, err := c.Cycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ActionHarvest, d.Action)
	require.Len(t, c.Memory.Records, 1)
	assert.True(t, c.Memory.Records[0].Failed)
	assert.True(t, c.Memory.Failing(ActionHarvest))
}

func TestObserveFailsOnServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	_, err := NewObserver(ts.URL).Observe(context.Background())
	assert.ErrorContains(t, err, "fetch status")
}
