// Package template builds the most-owned valid starting XI across a manager
// population.
package template

import (
	"sort"

	"github.com/quantti/tapas-fpl-app/internal/fpl"
)

const TeamSize = 11

// Slot is the allowed count range for one position in a starting XI.
type Slot struct {
	Position fpl.Position
	Min      int
	Max      int
}

// Formation lists the position ranges of a valid starting XI.
var Formation = []Slot{
	{Position: fpl.Goalkeeper, Min: 1, Max: 1},
	{Position: fpl.Defender, Min: 3, Max: 5},
	{Position: fpl.Midfielder, Min: 2, Max: 5},
	{Position: fpl.Forward, Min: 1, Max: 3},
}

type Candidate struct {
	Element   int          `json:"element"`
	Position  fpl.Position `json:"position"`
	Ownership float64      `json:"ownership"`
}

func slotFor(pos fpl.Position) (Slot, bool) {
	for _, s := range Formation {
		if s.Position == pos {
			return s, true
		}
	}
	return Slot{}, false
}

// Build picks the highest-owned goalkeeper, fills each outfield minimum by
// ownership, then tops up to eleven with the highest-owned remaining players
// whose position is below its maximum. A result shorter than eleven means the
// population was too sparse to field a template; in that case only the
// position minimums that could be met are returned.
func Build(players []Candidate) []Candidate {
	buckets := make(map[fpl.Position][]Candidate, len(Formation))
	seen := make(map[int]bool, len(players))
	for _, c := range players {
		if seen[c.Element] {
			continue
		}
		if _, ok := slotFor(c.Position); !ok {
			continue
		}
		seen[c.Element] = true
		buckets[c.Position] = append(buckets[c.Position], c)
	}
	for pos := range buckets {
		sortByOwnership(buckets[pos])
	}

	xi := make([]Candidate, 0, TeamSize)
	taken := make(map[fpl.Position]int, len(Formation))
	for _, s := range Formation {
		b := buckets[s.Position]
		n := min(s.Min, len(b))
		xi = append(xi, b[:n]...)
		taken[s.Position] = n
	}

	for _, s := range Formation {
		if taken[s.Position] < s.Min {
			return xi
		}
	}

	var pool []Candidate
	for _, s := range Formation {
		if s.Position == fpl.Goalkeeper {
			continue
		}
		pool = append(pool, buckets[s.Position][taken[s.Position]:]...)
	}
	sortByOwnership(pool)
	outfield := len(xi) - taken[fpl.Goalkeeper]
	for _, c := range pool {
		if outfield == TeamSize-1 {
			break
		}
		s, _ := slotFor(c.Position)
		if taken[c.Position] >= s.Max {
			continue
		}
		xi = append(xi, c)
		taken[c.Position]++
		outfield++
	}

	sort.SliceStable(xi, func(i, j int) bool { return xi[i].Position < xi[j].Position })
	return xi
}

// Valid reports whether xi is a legal starting XI.
func Valid(xi []Candidate) bool {
	if len(xi) != TeamSize {
		return false
	}
	counts := make(map[fpl.Position]int, len(Formation))
	for _, c := range xi {
		counts[c.Position]++
	}
	total := 0
	for _, s := range Formation {
		n := counts[s.Position]
		if n < s.Min || n > s.Max {
			return false
		}
		total += n
	}
	return total == TeamSize
}

// Elements returns the element ids of xi.
func Elements(xi []Candidate) []int {
	out := make([]int, 0, len(xi))
	for _, c := range xi {
		out = append(out, c.Element)
	}
	return out
}

func sortByOwnership(cs []Candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].Ownership != cs[j].Ownership {
			return cs[i].Ownership > cs[j].Ownership
		}
		return cs[i].Element < cs[j].Element
	})
}
