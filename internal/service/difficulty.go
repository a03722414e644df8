package service

import (
	"context"
	"sort"

	"github.com/quantti/tapas-fpl-app/internal/recommend"
)

type UpcomingFixture struct {
	FixtureID  int    `json:"fixture_id"`
	Gameweek   int    `json:"gameweek"`
	Opponent   string `json:"opponent"`
	Venue      string `json:"venue"`
	Difficulty int    `json:"difficulty"`
}

type TeamDifficulty struct {
	Team     int               `json:"team"`
	Short    string            `json:"short_name"`
	Ease     float64           `json:"ease"`
	Fixtures []UpcomingFixture `json:"fixtures"`
}

type FixtureDifficulty struct {
	Gameweek int              `json:"gameweek"`
	Teams    []TeamDifficulty `json:"teams"`
}

// FixtureDifficulty ranks every team by the ease of the fixtures after gw,
// using the same weighting the recommendation scorer applies.
func (d *Dashboard) FixtureDifficulty(ctx context.Context, gw int) (*FixtureDifficulty, error) {
	snap, err := d.Snapshot(ctx, gw)
	if err != nil {
		return nil, err
	}
	ix := snap.Index
	out := &FixtureDifficulty{Gameweek: snap.Gameweek, Teams: make([]TeamDifficulty, 0, len(ix.Teams))}
	for id, team := range ix.Teams {
		td := TeamDifficulty{
			Team:     id,
			Short:    team.ShortName,
			Ease:     recommend.FixtureEase(ix, id, snap.Gameweek),
			Fixtures: []UpcomingFixture{},
		}
		for _, f := range ix.UpcomingFixtures(id, snap.Gameweek) {
			if !recommend.InWindow(f.Event, snap.Gameweek) {
				continue
			}
			diff := f.DifficultyFor(id)
			if diff == 0 {
				continue
			}
			uf := UpcomingFixture{FixtureID: f.ID, Gameweek: f.Event, Venue: "H", Difficulty: diff}
			opp := f.TeamA
			if f.TeamA == id {
				opp = f.TeamH
				uf.Venue = "A"
			}
			uf.Opponent = ix.TeamShort(opp)
			td.Fixtures = append(td.Fixtures, uf)
		}
		out.Teams = append(out.Teams, td)
	}
	sort.Slice(out.Teams, func(i, j int) bool {
		if out.Teams[i].Ease != out.Teams[j].Ease {
			return out.Teams[i].Ease > out.Teams[j].Ease
		}
		return out.Teams[i].Team < out.Teams[j].Team
	})
	return out, nil
}
