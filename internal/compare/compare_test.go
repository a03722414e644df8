package compare

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantti/tapas-fpl-app/internal/fpl"
)

func xi(from int) []int {
	out := make([]int, 11)
	for i := range out {
		out[i] = from + i
	}
	return out
}

func TestClassify(t *testing.T) {
	cases := []struct {
		overlap int
		want    Playstyle
	}{
		{11, Template},
		{9, Template},
		{8, Balanced},
		{6, Balanced},
		{5, Differential},
		{3, Differential},
		{2, Maverick},
		{0, Maverick},
		{-1, Maverick},
		{-40, Maverick},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Classify(c.overlap), "overlap %d", c.overlap)
	}
}

func TestStats_SeasonAggregates(t *testing.T) {
	m := Manager{
		EntryID: 7,
		Name:    "Seven",
		History: []fpl.GameweekHistory{
			{Event: 2, Points: 80, TotalPoints: 130, OverallRank: 9000, EventTransfers: 3, EventTransfersCost: 8},
			{Event: 1, Points: 50, TotalPoints: 50, OverallRank: 20000, EventTransfers: 0},
			{Event: 3, Points: 31, TotalPoints: 157, OverallRank: 12000, EventTransfers: 1, EventTransfersCost: 4},
		},
		Chips: []fpl.ChipUsage{{Kind: fpl.Wildcard, Gameweek: 2}},
		Captains: []CaptainPick{
			{Gameweek: 1, Element: 10, Points: 6, Multiplier: 2},
			{Gameweek: 2, Element: 11, Points: 13, Multiplier: 3},
			{Gameweek: 3, Element: 10, Points: 2, Multiplier: 2},
		},
	}
	st := Stats(m, nil)
	assert.Equal(t, 7, st.EntryID)
	assert.Equal(t, 157, st.TotalPoints)
	assert.Equal(t, 12000, st.OverallRank)
	assert.Equal(t, 4, st.Transfers)
	assert.Equal(t, 12, st.HitsCost)
	assert.Equal(t, 3, st.Hits)
	assert.Equal(t, 12+39+4, st.CaptainPoints)
	require.NotNil(t, st.Best)
	require.NotNil(t, st.Worst)
	assert.Equal(t, GameweekScore{Gameweek: 2, Points: 80}, *st.Best)
	assert.Equal(t, GameweekScore{Gameweek: 3, Points: 31}, *st.Worst)
	assert.Len(t, st.ChipsUsed, 1)
	assert.Empty(t, st.Templates)
	assert.Equal(t, Playstyle(""), st.Playstyle)
}

func TestStats_EmptyHistory(t *testing.T) {
	st := Stats(Manager{EntryID: 1}, nil)
	assert.Zero(t, st.TotalPoints)
	assert.Nil(t, st.Best)
	assert.Nil(t, st.Worst)
}

func TestStats_BestWorstFirstOccurrenceWins(t *testing.T) {
	st := Stats(Manager{History: []fpl.GameweekHistory{
		{Event: 1, Points: 40},
		{Event: 2, Points: 40},
	}}, nil)
	assert.Equal(t, 1, st.Best.Gameweek)
	assert.Equal(t, 1, st.Worst.Gameweek)
}

func TestStats_TemplateOverlap(t *testing.T) {
	templates := []TemplateSet{
		{Name: "league", Elements: xi(1)},
		{Name: "global", Elements: xi(100)},
	}
	m := Manager{Starting: append(xi(1)[:9], 200, 201)}
	st := Stats(m, templates)
	require.Len(t, st.Templates, 2)
	assert.Equal(t, TemplateOverlap{Template: "league", Overlap: 9, Playstyle: Template}, st.Templates[0])
	assert.Equal(t, TemplateOverlap{Template: "global", Overlap: 0, Playstyle: Maverick}, st.Templates[1])
	assert.Equal(t, Template, st.Playstyle)
}

func TestStats_DuplicateTemplateIDsCountOnce(t *testing.T) {
	st := Stats(Manager{Starting: []int{1, 2}}, []TemplateSet{{Name: "t", Elements: []int{1, 1, 1, 2}}})
	assert.Equal(t, 2, st.Templates[0].Overlap)
}

func TestCompare_RosterOverlap(t *testing.T) {
	a := Manager{EntryID: 1, Starting: []int{1, 2, 3, 4}}
	b := Manager{EntryID: 2, Starting: []int{3, 4, 5}}
	res := Compare(a, b, nil)
	assert.Equal(t, []int{3, 4}, res.Common)
	assert.Equal(t, []int{1, 2}, res.UniqueA)
	assert.Equal(t, []int{5}, res.UniqueB)
	assert.Equal(t, 1, res.A.EntryID)
	assert.Equal(t, 2, res.B.EntryID)
}

func TestCompare_IdenticalRosters(t *testing.T) {
	res := Compare(Manager{Starting: xi(1)}, Manager{Starting: xi(1)}, nil)
	assert.Len(t, res.Common, 11)
	assert.Empty(t, res.UniqueA)
	assert.Empty(t, res.UniqueB)
}

func TestCompare_RoundTripsThroughJSON(t *testing.T) {
	in := Compare(
		Manager{
			EntryID:  1,
			Name:     "A",
			History:  []fpl.GameweekHistory{{Event: 1, Points: 70, TotalPoints: 70, OverallRank: 5}},
			Chips:    []fpl.ChipUsage{{Kind: fpl.BenchBoost, Gameweek: 1}},
			Starting: xi(1),
		},
		Manager{EntryID: 2, Name: "B", Starting: xi(5)},
		[]TemplateSet{{Name: "league", Elements: xi(1)}},
	)
	raw, err := json.Marshal(in)
	require.NoError(t, err)
	var out Result
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)
}
