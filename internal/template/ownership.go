package template

import "github.com/quantti/tapas-fpl-app/internal/fpl"

// Ownership returns, for every player, the fraction of managers that start
// them. Each slice in teams is one manager's picks. Bench picks are ignored.
func Ownership(teams [][]fpl.Pick) map[int]float64 {
	out := make(map[int]float64)
	if len(teams) == 0 {
		return out
	}
	counts := make(map[int]int)
	for _, picks := range teams {
		seen := make(map[int]bool, 11)
		for _, p := range picks {
			if !p.Starting() || seen[p.Element] {
				continue
			}
			seen[p.Element] = true
			counts[p.Element]++
		}
	}
	n := float64(len(teams))
	for id, c := range counts {
		out[id] = float64(c) / n
	}
	return out
}

// Candidates joins an ownership map with player positions. Players without a
// known position are skipped.
func Candidates(ownership map[int]float64, players map[int]fpl.Element) []Candidate {
	out := make([]Candidate, 0, len(ownership))
	for id, own := range ownership {
		p, ok := players[id]
		if !ok {
			continue
		}
		out = append(out, Candidate{Element: id, Position: p.ElementType, Ownership: own})
	}
	return out
}
