package fixture

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantti/tapas-fpl-app/internal/fpl"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		f    fpl.Fixture
		want Phase
	}{
		{"NotStarted", fpl.Fixture{}, NotStarted},
		{"NotStartedIgnoresStaleFlags", fpl.Fixture{Finished: true, FinishedProvisional: true, Minutes: 90}, NotStarted},
		{"InProgress", fpl.Fixture{Started: true, Minutes: 34}, InProgress},
		{"FinishedProvisional", fpl.Fixture{Started: true, FinishedProvisional: true, Minutes: 90}, FinishedProvisional},
		{"Finished", fpl.Fixture{Started: true, Finished: true, FinishedProvisional: true, Minutes: 90}, Finished},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.f))
		})
	}
}

func TestBonusEligible(t *testing.T) {
	assert.False(t, BonusEligible(fpl.Fixture{Minutes: 75}))
	assert.False(t, BonusEligible(fpl.Fixture{Started: true, Minutes: 59}))
	assert.True(t, BonusEligible(fpl.Fixture{Started: true, Minutes: 60}))
	assert.True(t, BonusEligible(fpl.Fixture{Started: true, FinishedProvisional: true}))
	assert.True(t, BonusEligible(fpl.Fixture{Started: true, Finished: true}))
}

func TestSummarize(t *testing.T) {
	fixtures := []fpl.Fixture{
		{},
		{Started: true, Minutes: 20},
		{Started: true, FinishedProvisional: true},
		{Started: true, Finished: true},
	}
	p := Summarize(fixtures)
	assert.Equal(t, Progress{Total: 4, Started: 3, FinishedProvisional: 1, Finished: 1}, p)
	assert.Equal(t, "live", p.PointsStatus())
	assert.Equal(t, "pending", Summarize(fixtures[:1]).PointsStatus())
	assert.Equal(t, "pending", Summarize(nil).PointsStatus())
	assert.Equal(t, "final", Summarize(fixtures[3:]).PointsStatus())
}

func TestPhase_JSONRoundTrip(t *testing.T) {
	for _, p := range []Phase{NotStarted, InProgress, FinishedProvisional, Finished} {
		b, err := json.Marshal(p)
		require.NoError(t, err)
		var back Phase
		require.NoError(t, json.Unmarshal(b, &back))
		assert.Equal(t, p, back)
	}
	var p Phase
	assert.Error(t, json.Unmarshal([]byte(`"half_time"`), &p))
}
