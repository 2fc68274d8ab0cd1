package persistence

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kalaith/last-hope/internal/engine"
	"github.com/Kalaith/last-hope/internal/entropy"
	"github.com/Kalaith/last-hope/internal/meta"
	"github.com/Kalaith/last-hope/internal/resources"
	"github.com/Kalaith/last-hope/internal/world"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "lasthope.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoadStateWithoutSave(t *testing.T) {
	db := openTemp(t)
	_, err := db.LoadState()
	assert.ErrorIs(t, err, ErrNoSave)
}

func TestStateRoundTrip(t *testing.T) {
	db := openTemp(t)
	st := engine.InitialState()
	st.Seed = 99
	st.Day = 12
	st.Resources.Hope = 37
	st.Ecosystem.SoilHealth = 18.5
	st.NPCs[0].Trust = 61

	require.NoError(t, db.SaveState(st))
	got, err := db.LoadState()
	require.NoError(t, err)
	assert.Equal(t, int64(99), got.Seed)
	assert.Equal(t, 12, got.Day)
	assert.Equal(t, 37.0, got.Resources.Hope)
	assert.Equal(t, 18.5, got.Ecosystem.SoilHealth)
	assert.Equal(t, 61.0, got.NPCs[0].Trust)

	// A second save replaces the first.
	st.Day = 13
	require.NoError(t, db.SaveState(st))
	got, err = db.LoadState()
	require.NoError(t, err)
	assert.Equal(t, 13, got.Day)
}

func TestLoadStateFillsMissingSections(t *testing.T) {
	db := openTemp(t)
	require.NoError(t, db.SaveState(engine.InitialState()))
	_, err := db.conn.Exec("DELETE FROM state_sections WHERE section IN ('npcs', 'ecosystem')")
	require.NoError(t, err)

	got, err := db.LoadState()
	require.NoError(t, err)
	assert.Len(t, got.NPCs, 3)
	assert.NotEmpty(t, got.Ecosystem.Weather)
}

func TestSaveWorldStateAppendsNewEvents(t *testing.T) {
	db := openTemp(t)
	sim, err := engine.NewSimulation(engine.InitialState(), engine.WithRandom(entropy.NewFixed()))
	require.NoError(t, err)

	_, err = sim.Plant("hardy_grass")
	require.NoError(t, err)
	require.NoError(t, db.SaveWorldState(sim))

	_, err = sim.Plant("hardy_grass")
	require.NoError(t, err)
	require.NoError(t, db.SaveWorldState(sim))
	require.NoError(t, db.SaveWorldState(sim))

	events, err := db.RecentEvents(10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, uint64(1), events[0].Seq)
	assert.Equal(t, uint64(2), events[1].Seq)
	assert.Equal(t, "ecosystem", events[1].Category)
	assert.Contains(t, events[1].Meta, "plant")

	day, err := db.GetMeta("last_day")
	require.NoError(t, err)
	assert.Equal(t, "0", day)

	st, err := db.LoadState()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), st.EventSeq)
	assert.Len(t, st.Ecosystem.Plants, 2)
}

func TestClearRun(t *testing.T) {
	db := openTemp(t)
	require.NoError(t, db.SaveState(engine.InitialState()))
	require.NoError(t, db.SaveEvents([]engine.Event{{Seq: 1, Day: 1, Description: "x", Category: "test"}}))
	require.NoError(t, db.SaveProgress(meta.NewProgress()))

	require.NoError(t, db.ClearRun())
	_, err := db.LoadState()
	assert.ErrorIs(t, err, ErrNoSave)
	seq, err := db.LastEventSeq()
	require.NoError(t, err)
	assert.Zero(t, seq)
	_, err = db.GetMeta(progressKey)
	assert.NoError(t, err, "the profile outlives the run")
}

func TestRunsNewestFirst(t *testing.T) {
	db := openTemp(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, ending := range []world.Ending{world.HopeLost, world.Starvation, world.Victory} {
		at := base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, db.SaveRun(meta.RunRecord{
			ID:           meta.NewRunID(at),
			EndedAt:      at,
			Ending:       ending,
			DaysSurvived: 10 * (i + 1),
		}))
	}

	runs, err := db.Runs(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, world.Victory, runs[0].Ending)
	assert.Equal(t, world.Starvation, runs[1].Ending)

	history, err := db.History()
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, 10, history[0].DaysSurvived)
	assert.Equal(t, 30, history[2].DaysSurvived)
}

func TestProgressRoundTrip(t *testing.T) {
	db := openTemp(t)
	p, err := db.LoadProgress()
	require.NoError(t, err)
	assert.Zero(t, p.TotalRuns)
	assert.NotNil(t, p.Unlocked)

	p.TotalRuns = 4
	p.UnlockedSeeds = []string{"desert_bloom"}
	p.Bonuses.StartingResources = resources.Delta{resources.Hope: 10}
	require.NoError(t, db.SaveProgress(p))

	got, err := db.LoadProgress()
	require.NoError(t, err)
	assert.Equal(t, 4, got.TotalRuns)
	assert.Equal(t, []string{"desert_bloom"}, got.UnlockedSeeds)
	assert.Equal(t, 10.0, got.Bonuses.StartingResources[resources.Hope])
}
