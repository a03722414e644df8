package points

import (
	"github.com/quantti/tapas-fpl-app/internal/bonus"
	"github.com/quantti/tapas-fpl-app/internal/fixture"
	"github.com/quantti/tapas-fpl-app/internal/fpl"
)

// Input is everything needed to score one manager's gameweek.
type Input struct {
	Gameweek int
	Picks    []fpl.Pick
	Index    *fpl.Index
	HitsCost int

	// Provisional is the per-fixture provisional bonus for the gameweek.
	// When nil it is computed from Index.
	Provisional map[int]map[int]int
}

type PlayerPoints struct {
	Element     int           `json:"element"`
	Position    int           `json:"position"`
	Multiplier  int           `json:"multiplier"`
	Minutes     int           `json:"minutes"`
	Phase       fixture.Phase `json:"phase"`
	Points      int           `json:"points"`
	Bonus       int           `json:"bonus"`
	Provisional int           `json:"provisional_bonus"`
	Total       int           `json:"total"`
}

// LiveManagerPoints is a manager's live gameweek score.
type LiveManagerPoints struct {
	Gameweek    int            `json:"gameweek"`
	Base        int            `json:"base"`
	Provisional int            `json:"provisional"`
	Total       int            `json:"total"`
	HitsCost    int            `json:"hits_cost"`
	Net         int            `json:"net"`
	Players     []PlayerPoints `json:"players"`
}

// Calculate scores the picks. Benched picks (multiplier 0) and players whose
// fixtures have not kicked off contribute nothing. Provisional bonus is only
// added while the official bonus is 0 and the fixture's bonus is not yet
// confirmed.
func Calculate(in Input) LiveManagerPoints {
	ix := in.Index
	if ix == nil {
		ix = fpl.NewIndex(nil, nil, nil)
	}
	prov := in.Provisional
	if prov == nil {
		prov = bonus.ForGameweek(ix, in.Gameweek)
	}

	out := LiveManagerPoints{
		Gameweek: in.Gameweek,
		HitsCost: in.HitsCost,
		Players:  make([]PlayerPoints, 0, len(in.Picks)),
	}
	for _, p := range in.Picks {
		live := ix.LiveStat(p.Element)
		fixtures := ix.PlayerFixtures(p.Element, in.Gameweek)
		pp := PlayerPoints{
			Element:    p.Element,
			Position:   p.Position,
			Multiplier: p.Multiplier,
			Minutes:    live.Minutes,
			Phase:      playerPhase(fixtures),
			Bonus:      live.Bonus,
		}
		if fixture.AnyStarted(fixtures) {
			pp.Points = live.TotalPoints
			if live.Bonus == 0 {
				pp.Provisional = provisionalFor(p.Element, fixtures, prov)
			}
		}
		pp.Total = (pp.Points + pp.Provisional) * p.Multiplier
		out.Players = append(out.Players, pp)

		if p.Multiplier <= 0 {
			continue
		}
		out.Base += pp.Points * p.Multiplier
		out.Provisional += pp.Provisional * p.Multiplier
	}
	out.Total = out.Base + out.Provisional
	out.Net = out.Total - out.HitsCost
	return out
}

func provisionalFor(element int, fixtures []fpl.Fixture, prov map[int]map[int]int) int {
	total := 0
	for _, f := range fixtures {
		if fixture.Classify(f) == fixture.Finished {
			continue
		}
		total += prov[f.ID][element]
	}
	return total
}

// playerPhase reports the least advanced phase across a player's fixtures, so
// a double gameweek reads as in progress until both matches are done.
func playerPhase(fixtures []fpl.Fixture) fixture.Phase {
	if len(fixtures) == 0 {
		return fixture.NotStarted
	}
	phase := fixture.Finished
	started := false
	for _, f := range fixtures {
		p := fixture.Classify(f)
		if p != fixture.NotStarted {
			started = true
		}
		if p < phase {
			phase = p
		}
	}
	if phase == fixture.NotStarted && started {
		return fixture.InProgress
	}
	return phase
}
