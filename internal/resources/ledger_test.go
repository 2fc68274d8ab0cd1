package resources

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyClampsEveryResource(t *testing.T) {
	cases := []struct {
		name  string
		delta Delta
		check func(t *testing.T, s Set)
	}{
		{"seeds overflow", Delta{Seeds: 1000}, func(t *testing.T, s Set) { assert.Equal(t, 50.0, s.Seeds) }},
		{"hope underflow", Delta{Hope: -1000}, func(t *testing.T, s Set) { assert.Equal(t, 0.0, s.Hope) }},
		{"supplies overflow", Delta{Supplies: 500}, func(t *testing.T, s Set) { assert.Equal(t, 100.0, s.Supplies) }},
		{"health underflow", Delta{Health: -81}, func(t *testing.T, s Set) { assert.Equal(t, 0.0, s.Health) }},
		{"knowledge in range", Delta{Knowledge: 5}, func(t *testing.T, s Set) { assert.Equal(t, 15.0, s.Knowledge) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Set{Hope: 50, Health: 80, Supplies: 25, Knowledge: 10, Seeds: 3}
			s.Apply(tc.delta)
			tc.check(t, s)
			for _, k := range Core {
				assert.GreaterOrEqual(t, s.Get(k), 0.0)
				assert.LessOrEqual(t, s.Get(k), k.Max())
			}
		})
	}
}

func TestApplyIgnoresWorldMetrics(t *testing.T) {
	s := Set{Hope: 50}
	s.Apply(Delta{SoilHealth: 40, Restoration: 10, Hope: 5})
	assert.Equal(t, Set{Hope: 55}, s)
}

func TestParseDeltaDropsUnknownKeys(t *testing.T) {
	d := ParseDelta(map[string]float64{"hope": -15, "trust": -10, "soilHealth": 3, "food": 1})
	assert.Equal(t, Delta{Hope: -15, SoilHealth: 3}, d)

	var decoded Delta
	require.NoError(t, json.Unmarshal([]byte(`{"supplies":5,"energy":-1,"restorationProgress":1}`), &decoded))
	assert.Equal(t, Delta{Supplies: 5, Restoration: 1}, decoded)
}

func TestDeltaEncodesKindNames(t *testing.T) {
	b, err := json.Marshal(Delta{Seeds: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"seeds":2}`, string(b))
}

func TestDailyConsumption(t *testing.T) {
	normal := DailyConsumption(Set{Supplies: 50, Hope: 50, Health: 80}, 10)
	assert.Equal(t, Delta{Supplies: -2, Hope: -1, Health: -1}, normal)

	starving := DailyConsumption(Set{Supplies: 10, Hope: 50, Health: 80}, 10)
	assert.Equal(t, -5.0, starving[Health])

	edge := DailyConsumption(Set{Supplies: 12}, 0)
	assert.Equal(t, -5.0, edge[Health], "ration pushes supplies to the critical line")

	fed := DailyConsumption(Set{Supplies: 13}, 0)
	assert.Equal(t, -1.0, fed[Health])

	thriving := DailyConsumption(Set{Supplies: 50}, 51)
	assert.Equal(t, 1.0, thriving[Hope])
}

func TestCheckStatusThresholds(t *testing.T) {
	st := CheckStatus(Set{Hope: 20, Health: 50, Supplies: 26, Knowledge: 4.9, Seeds: 2})
	assert.Equal(t, Critical, st[Hope].Level)
	assert.Equal(t, Warning, st[Health].Level)
	assert.Equal(t, Normal, st[Supplies].Level)
	assert.Equal(t, Critical, st[Knowledge].Level)
	assert.Equal(t, Warning, st[Seeds].Level)

	st = CheckStatus(Set{Hope: 0, Health: 30, Supplies: 10, Knowledge: 5, Seeds: 0})
	assert.Equal(t, []string{"Game over"}, st[Hope].Consequences)
	assert.Equal(t, Critical, st[Health].Level)
	assert.Equal(t, Critical, st[Supplies].Level)
	assert.Equal(t, Warning, st[Knowledge].Level)
	assert.Equal(t, Critical, st[Seeds].Level)
}

func TestMeetsReportsFirstShortfall(t *testing.T) {
	s := Set{Supplies: 10, Knowledge: 20, Health: 80}
	k, ok := s.Meets(Delta{Supplies: 25, Knowledge: 10, Health: 15})
	assert.False(t, ok)
	assert.Equal(t, Supplies, k)

	_, ok = s.Meets(Delta{Supplies: 10, SoilHealth: 99})
	assert.True(t, ok)
}

func TestParseKindAliases(t *testing.T) {
	for name, want := range map[string]Kind{
		"hope": Hope, "soilHealth": SoilHealth, "soil_health": SoilHealth,
		"restorationProgress": Restoration, "restoration": Restoration,
	} {
		got, ok := ParseKind(name)
		require.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}
	_, ok := ParseKind("water")
	assert.False(t, ok)
}

func TestStatusDecodesLevels(t *testing.T) {
	data, err := json.Marshal(CheckStatus(Set{Hope: 35, Health: 80, Supplies: 5, Knowledge: 20, Seeds: 3}))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"level":"critical"`)

	var got map[Kind]Status
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, Critical, got[Supplies].Level)
	assert.Equal(t, Warning, got[Hope].Level)
	assert.Equal(t, Normal, got[Health].Level)

	var l Level
	assert.Error(t, json.Unmarshal([]byte(`"dire"`), &l))
}
