package snapshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kalaith/last-hope/internal/engine"
	"github.com/Kalaith/last-hope/internal/meta"
)

func TestWriteRead(t *testing.T) {
	st := engine.InitialState()
	st.Seed = 1234
	st.Day = 9
	st.Background = "leader"
	st.Resources.Supplies = 14
	p := meta.NewProgress()
	p.TotalRuns = 2
	now := time.Date(2026, 5, 4, 3, 2, 1, 0, time.UTC)

	snap, err := New(st, p, now)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "nested", FileName(snap.Header))
	require.NoError(t, Write(path, snap))

	h, err := ReadHeader(path)
	require.NoError(t, err)
	assert.Equal(t, Version, h.Version)
	assert.Equal(t, int64(1234), h.Seed)
	assert.Equal(t, 9, h.Day)
	assert.True(t, now.Equal(h.SavedAt))

	got, err := Read(path)
	require.NoError(t, err)
	gotState, gotProgress, err := got.Decode()
	require.NoError(t, err)
	assert.Equal(t, 9, gotState.Day)
	assert.Equal(t, "leader", gotState.Background)
	assert.Equal(t, 14.0, gotState.Resources.Supplies)
	assert.Len(t, gotState.NPCs, 3)
	assert.Equal(t, 2, gotProgress.TotalRuns)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "run-7-day0042.snap.zst", FileName(Header{Seed: 7, Day: 42}))
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	_, _, err := SnapshotV1{Header: Header{Version: 99}}.Decode()
	assert.ErrorIs(t, err, ErrVersion)
}

func TestReadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.snap.zst")
	require.NoError(t, os.WriteFile(path, []byte("not zstd"), 0o644))
	_, err := Read(path)
	assert.Error(t, err)
}
