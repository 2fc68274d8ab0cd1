package entropy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamDeterministic(t *testing.T) {
	a, b := New(12345), New(12345)
	for i := 0; i < 20; i++ {
		require.Equal(t, a.Float64(), b.Float64(), "draw %d", i)
	}
}

func TestSeedWordChangesWithSalt(t *testing.T) {
	assert.NotEqual(t, seedWord(99, "a"), seedWord(99, "b"))
}

func TestStreamStateRoundTrip(t *testing.T) {
	s := New(7)
	s.Float64()
	s.Float64()
	state, err := s.MarshalBinary()
	require.NoError(t, err)

	want := []float64{s.Float64(), s.Float64(), s.Float64()}

	restored := New(0)
	require.NoError(t, restored.UnmarshalBinary(state))
	got := []float64{restored.Float64(), restored.Float64(), restored.Float64()}
	assert.Equal(t, want, got)
}

func TestFixedCycles(t *testing.T) {
	f := NewFixed(0.1, 0.9)
	assert.Equal(t, 0.1, f.Float64())
	assert.Equal(t, 0.9, f.Float64())
	assert.Equal(t, 0.1, f.Float64())
	assert.Equal(t, 3, f.Draws())

	assert.Equal(t, 0.5, NewFixed().Float64())
}

func TestRandomSeedPositive(t *testing.T) {
	for i := 0; i < 10; i++ {
		assert.GreaterOrEqual(t, RandomSeed(), int64(0))
	}
}
