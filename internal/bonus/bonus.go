// Package bonus estimates bonus points from live BPS before the upstream
// confirms them.
//
// Awards are handed out by slots, not tiers: three slots exist per fixture
// and every player in a tier consumes one. A two-way tie for first takes both
// 3-point slots, leaving a single 1-point award for the next tier. A three-way
// tie for first exhausts all slots. This mirrors the observed upstream
// behaviour for the tested cases; divergences for larger ties should be
// reported, not patched here.
package bonus

import (
	"sort"

	"github.com/quantti/tapas-fpl-app/internal/fixture"
	"github.com/quantti/tapas-fpl-app/internal/fpl"
)

// Slots is the number of bonus places available per fixture.
const Slots = 3

// Score is one player's BPS in a fixture.
type Score struct {
	Element int `json:"element"`
	BPS     int `json:"bps"`
}

// Allocate ranks scores and returns the awarded bonus for each player that
// receives any. Players absent from the result receive 0.
func Allocate(scores []Score) map[int]int {
	sorted := make([]Score, 0, len(scores))
	seen := make(map[int]bool, len(scores))
	for _, s := range scores {
		if seen[s.Element] {
			continue
		}
		seen[s.Element] = true
		sorted = append(sorted, s)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].BPS != sorted[j].BPS {
			return sorted[i].BPS > sorted[j].BPS
		}
		return sorted[i].Element < sorted[j].Element
	})

	out := make(map[int]int, Slots)
	used := 0
	for i := 0; i < len(sorted) && used < Slots; {
		j := i
		for j < len(sorted) && sorted[j].BPS == sorted[i].BPS {
			j++
		}
		award := Slots - used
		for _, s := range sorted[i:j] {
			out[s.Element] = award
		}
		used += j - i
		i = j
	}
	return out
}

// ForFixture allocates provisional bonus for one fixture. Nothing is
// allocated before the fixture reaches the display threshold.
func ForFixture(f fpl.Fixture, ix *fpl.Index) map[int]int {
	if !fixture.BonusEligible(f) {
		return nil
	}
	return Allocate(fixtureScores(f, ix))
}

// ForGameweek allocates provisional bonus for every eligible fixture in
// event, keyed by fixture id.
func ForGameweek(ix *fpl.Index, event int) map[int]map[int]int {
	out := make(map[int]map[int]int)
	for id, f := range ix.Fixtures {
		if f.Event != event {
			continue
		}
		if awards := ForFixture(f, ix); len(awards) > 0 {
			out[id] = awards
		}
	}
	return out
}

// fixtureScores prefers the fixture's own BPS block. Without it, live stats
// of players from either team who have played are used.
func fixtureScores(f fpl.Fixture, ix *fpl.Index) []Score {
	if len(f.BPS) > 0 {
		out := make([]Score, 0, len(f.BPS))
		for _, b := range f.BPS {
			out = append(out, Score{Element: b.Element, BPS: b.Value})
		}
		return out
	}
	if ix == nil {
		return nil
	}
	var out []Score
	for id, s := range ix.Live {
		if s.Minutes <= 0 {
			continue
		}
		p, ok := ix.Players[id]
		if !ok || !f.Involves(p.Team) {
			continue
		}
		out = append(out, Score{Element: id, BPS: s.BPS})
	}
	return out
}
