package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/quantti/tapas-fpl-app/internal/cache"
	"github.com/quantti/tapas-fpl-app/internal/fpl"
	"github.com/quantti/tapas-fpl-app/internal/recommend"
	"github.com/quantti/tapas-fpl-app/internal/template"
)

// leagueOwnership is the starting-XI ownership across a league's managers.
type leagueOwnership struct {
	Managers  int
	Ownership map[int]float64
}

func (d *Dashboard) leagueOwnership(ctx context.Context, leagueID, gw int) (*leagueOwnership, error) {
	key := cache.Key{Kind: cache.KindTemplate, Manager: leagueID, Gameweek: gw, Extra: "ownership"}
	return cache.Memo(d.cache, key, func() (*leagueOwnership, error) {
		ls, err := d.api.LeagueStandings(ctx, leagueID, false)
		if err != nil {
			return nil, fmt.Errorf("league %d standings: %w", leagueID, err)
		}
		teams, err := forEach(ctx, d, ls.EntryIDs(), func(ctx context.Context, id int) ([]fpl.Pick, error) {
			p, err := d.api.EntryPicks(ctx, id, gw, false)
			if err != nil {
				return nil, fmt.Errorf("entry %d picks gw %d: %w", id, gw, err)
			}
			return p.Picks, nil
		})
		if err != nil {
			return nil, err
		}
		return &leagueOwnership{Managers: len(teams), Ownership: template.Ownership(teams)}, nil
	})
}

type TemplatePlayer struct {
	Element   int          `json:"element"`
	Name      string       `json:"name"`
	Team      string       `json:"team"`
	Position  fpl.Position `json:"position"`
	Ownership float64      `json:"ownership"`
}

type TemplateTeam struct {
	LeagueID int `json:"league_id"`
	Gameweek int `json:"gameweek"`
	Managers int `json:"managers"`
	// Available is false when the population cannot fill a valid XI; Players
	// is then empty.
	Available bool             `json:"available"`
	Formation string           `json:"formation,omitempty"`
	Players   []TemplatePlayer `json:"players"`
}

// TemplateTeam builds the most-owned valid XI across a classic league.
func (d *Dashboard) TemplateTeam(ctx context.Context, leagueID, gw int) (*TemplateTeam, error) {
	if err := requireID("league_id", leagueID); err != nil {
		return nil, err
	}
	snap, err := d.Snapshot(ctx, gw)
	if err != nil {
		return nil, err
	}
	own, err := d.leagueOwnership(ctx, leagueID, snap.Gameweek)
	if err != nil {
		return nil, err
	}
	xi := template.Build(template.Candidates(own.Ownership, snap.Index.Players))
	out := &TemplateTeam{
		LeagueID: leagueID,
		Gameweek: snap.Gameweek,
		Managers: own.Managers,
		Players:  []TemplatePlayer{},
	}
	if !template.Valid(xi) {
		return out, nil
	}
	out.Available = true
	out.Formation = formation(xi)
	for _, c := range xi {
		p := snap.Index.Players[c.Element]
		out.Players = append(out.Players, TemplatePlayer{
			Element:   c.Element,
			Name:      p.Name(),
			Team:      snap.Index.TeamShort(p.Team),
			Position:  c.Position,
			Ownership: c.Ownership,
		})
	}
	return out, nil
}

// GlobalTemplate builds a template from overall selected-by percentages.
func GlobalTemplate(players map[int]fpl.Element) []template.Candidate {
	own := make(map[int]float64, len(players))
	for id, p := range players {
		if v := p.SelectedByPercent.Float(); v > 0 {
			own[id] = v / 100
		}
	}
	return template.Build(template.Candidates(own, players))
}

func formation(xi []template.Candidate) string {
	n := map[fpl.Position]int{}
	for _, c := range xi {
		n[c.Position]++
	}
	return fmt.Sprintf("%d-%d-%d", n[fpl.Defender], n[fpl.Midfielder], n[fpl.Forward])
}

type Recommendations struct {
	LeagueID int `json:"league_id"`
	Gameweek int `json:"gameweek"`
	Managers int `json:"managers"`
	recommend.Result
}

// Recommendations scores the player pool against league ownership.
func (d *Dashboard) Recommendations(ctx context.Context, leagueID, gw int) (*Recommendations, error) {
	if err := requireID("league_id", leagueID); err != nil {
		return nil, err
	}
	snap, err := d.Snapshot(ctx, gw)
	if err != nil {
		return nil, err
	}
	key := cache.Key{Kind: cache.KindRecommend, Manager: leagueID, Gameweek: snap.Gameweek}
	return cache.Memo(d.cache, key, func() (*Recommendations, error) {
		own, err := d.leagueOwnership(ctx, leagueID, snap.Gameweek)
		if err != nil {
			return nil, err
		}
		players := append([]fpl.Element(nil), snap.Bootstrap.Elements...)
		sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })
		res := recommend.Score(recommend.Input{
			Players:   players,
			Ownership: own.Ownership,
			Index:     snap.Index,
			Gameweek:  snap.Gameweek,
			Limit:     d.rules.ListLimit,
		})
		return &Recommendations{
			LeagueID: leagueID,
			Gameweek: snap.Gameweek,
			Managers: own.Managers,
			Result:   res,
		}, nil
	})
}
