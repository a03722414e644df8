package ledger

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantti/tapas-fpl-app/internal/fpl"
)

// history builds consecutive gameweeks starting at 1 with the given transfer counts.
func history(transfers ...int) []fpl.GameweekHistory {
	out := make([]fpl.GameweekHistory, 0, len(transfers))
	for i, n := range transfers {
		out = append(out, fpl.GameweekHistory{Event: i + 1, EventTransfers: n})
	}
	return out
}

// ---------------------------------------------------------------------------
// FreeTransfers
// ---------------------------------------------------------------------------

func TestFreeTransfers_NoHistory(t *testing.T) {
	assert.Equal(t, 1, FreeTransfers(Input{TargetGameweek: 1, Cap: CurrentCap}))
}

func TestFreeTransfers_FirstGameweekBeforeDeadline(t *testing.T) {
	assert.Equal(t, 1, FreeTransfers(Input{History: history(0), TargetGameweek: 1, Cap: CurrentCap}))
}

func TestFreeTransfers_RollsAfterCompleteGameweek(t *testing.T) {
	assert.Equal(t, 2, FreeTransfers(Input{History: history(0), TargetGameweek: 2, Cap: CurrentCap}))
	assert.Equal(t, 2, FreeTransfers(Input{History: history(0), TargetGameweek: 2, Cap: LegacyCap}))
}

func TestFreeTransfers_DeadlinePassedCountsCurrentAsComplete(t *testing.T) {
	in := Input{History: history(0, 0), TargetGameweek: 2, Cap: CurrentCap}
	assert.Equal(t, 2, FreeTransfers(in))

	in.DeadlinePassed = true
	assert.Equal(t, 3, FreeTransfers(in))
}

func TestFreeTransfers_CurrentGameweekTransfersDeducted(t *testing.T) {
	// GW1 rolls to 2, GW2 (current, deadline not passed) uses one.
	in := Input{History: history(0, 1), TargetGameweek: 2, Cap: CurrentCap}
	assert.Equal(t, 1, FreeTransfers(in))
}

func TestFreeTransfers_CapApplies(t *testing.T) {
	h := history(0, 0, 0, 0, 0, 0, 0, 0)
	assert.Equal(t, 5, FreeTransfers(Input{History: h, TargetGameweek: 9, Cap: CurrentCap}))
	assert.Equal(t, 2, FreeTransfers(Input{History: h, TargetGameweek: 9, Cap: LegacyCap}))
}

func TestFreeTransfers_HitsFloorAtZero(t *testing.T) {
	// GW1 takes a -8 (3 transfers with 1 FT), balance floors at 0 then +1.
	assert.Equal(t, 1, FreeTransfers(Input{History: history(3), TargetGameweek: 2, Cap: CurrentCap}))
	assert.Equal(t, 0, FreeTransfers(Input{History: history(0, 4), TargetGameweek: 2, Cap: CurrentCap}))
}

func TestFreeTransfers_WildcardResets(t *testing.T) {
	h := history(0, 0, 0, 9, 0)
	chips := []fpl.ChipUsage{{Kind: fpl.Wildcard, Gameweek: 4}}

	steps := Timeline(Input{History: h, Chips: chips, TargetGameweek: 6, Cap: CurrentCap})
	require.Len(t, steps, 5)
	assert.Equal(t, 4, steps[2].Balance, "banked before the wildcard")
	assert.Equal(t, 2, steps[3].Balance, "wildcard resets to 1 then earns the weekly grant")
	assert.Equal(t, fpl.Wildcard, steps[3].Chip)
	assert.Equal(t, 3, FreeTransfers(Input{History: h, Chips: chips, TargetGameweek: 6, Cap: CurrentCap}))
}

func TestFreeTransfers_WildcardInCurrentGameweek(t *testing.T) {
	h := history(0, 0, 12)
	chips := []fpl.ChipUsage{{Kind: fpl.Wildcard, Gameweek: 3}}
	assert.Equal(t, 1, FreeTransfers(Input{History: h, Chips: chips, TargetGameweek: 3, Cap: CurrentCap}))
	assert.Equal(t, 2, FreeTransfers(Input{History: h, Chips: chips, TargetGameweek: 3, DeadlinePassed: true, Cap: CurrentCap}))
}

func TestFreeTransfers_FreeHitPreservesBalance(t *testing.T) {
	h := history(0, 0, 11)
	chips := []fpl.ChipUsage{{Kind: fpl.FreeHit, Gameweek: 3}}
	// 1 -> 2 -> 3 -> free hit keeps 3, +1 = 4
	assert.Equal(t, 4, FreeTransfers(Input{History: h, Chips: chips, TargetGameweek: 4, Cap: CurrentCap}))
	assert.Equal(t, 3, FreeTransfers(Input{History: h, Chips: chips, TargetGameweek: 3, Cap: CurrentCap}))
}

func TestFreeTransfers_OtherChipsDoNotAffectFold(t *testing.T) {
	h := history(0, 1)
	chips := []fpl.ChipUsage{{Kind: fpl.BenchBoost, Gameweek: 1}, {Kind: fpl.TripleCaptain, Gameweek: 2}}
	assert.Equal(t, 2, FreeTransfers(Input{History: h, Chips: chips, TargetGameweek: 3, Cap: CurrentCap}))
}

func TestFreeTransfers_StopsAtTarget(t *testing.T) {
	h := history(0, 0, 1, 5)
	assert.Equal(t, 2, FreeTransfers(Input{History: h, TargetGameweek: 3, Cap: CurrentCap}))
}

func TestFreeTransfers_UnorderedHistory(t *testing.T) {
	h := []fpl.GameweekHistory{{Event: 3, EventTransfers: 1}, {Event: 1}, {Event: 2}}
	assert.Equal(t, 3, FreeTransfers(Input{History: h, TargetGameweek: 4, Cap: CurrentCap}))
	assert.Equal(t, 3, h[0].Event, "input history is not reordered")
}

func TestFreeTransfers_InvalidCapClamped(t *testing.T) {
	assert.Equal(t, 1, FreeTransfers(Input{History: history(0, 0), TargetGameweek: 3, Cap: 0}))
}

func TestFreeTransfers_BalanceAlwaysWithinCap(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	kinds := []fpl.ChipKind{fpl.Wildcard, fpl.FreeHit, fpl.BenchBoost, fpl.TripleCaptain}
	for _, limit := range []int{LegacyCap, CurrentCap} {
		for trial := 0; trial < 200; trial++ {
			n := 1 + rng.Intn(38)
			h := make([]fpl.GameweekHistory, 0, n)
			for gw := 1; gw <= n; gw++ {
				h = append(h, fpl.GameweekHistory{Event: gw, EventTransfers: rng.Intn(5)})
			}
			var chips []fpl.ChipUsage
			for _, k := range kinds {
				if rng.Intn(2) == 0 {
					chips = append(chips, fpl.ChipUsage{Kind: k, Gameweek: 1 + rng.Intn(n)})
				}
			}
			in := Input{History: h, Chips: chips, TargetGameweek: 1 + rng.Intn(n+1), DeadlinePassed: rng.Intn(2) == 0, Cap: limit}
			for _, s := range Timeline(in) {
				require.GreaterOrEqual(t, s.Balance, 0)
				require.LessOrEqual(t, s.Balance, limit)
			}
			ft := FreeTransfers(in)
			require.GreaterOrEqual(t, ft, 0)
			require.LessOrEqual(t, ft, limit)
		}
	}
}

func TestStep_JSONRoundTrip(t *testing.T) {
	steps := Timeline(Input{
		History:        history(0, 2, 0),
		Chips:          []fpl.ChipUsage{{Kind: fpl.Wildcard, Gameweek: 2}},
		TargetGameweek: 3,
		Cap:            CurrentCap,
	})
	b, err := json.Marshal(steps)
	require.NoError(t, err)
	var back []Step
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, steps, back)
}
