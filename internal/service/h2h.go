package service

import (
	"context"
	"fmt"

	"github.com/quantti/tapas-fpl-app/internal/cache"
	"github.com/quantti/tapas-fpl-app/internal/compare"
	"github.com/quantti/tapas-fpl-app/internal/fpl"
	"github.com/quantti/tapas-fpl-app/internal/template"
)

// Template set names.
const (
	TemplateLeague = "league"
	TemplateGlobal = "global"
)

type HeadToHead struct {
	LeagueID int `json:"league_id,omitempty"`
	Gameweek int `json:"gameweek"`
	compare.Result
}

// HeadToHead compares two managers over the season. Their playstyle is
// measured against the league template when leagueID is set, and the global
// template otherwise.
func (d *Dashboard) HeadToHead(ctx context.Context, leagueID, entryA, entryB, gw int) (*HeadToHead, error) {
	if err := requireID("entry_id_a", entryA); err != nil {
		return nil, err
	}
	if err := requireID("entry_id_b", entryB); err != nil {
		return nil, err
	}
	snap, err := d.Snapshot(ctx, gw)
	if err != nil {
		return nil, err
	}
	key := cache.Key{
		Kind:     cache.KindCompare,
		Manager:  entryA,
		Gameweek: snap.Gameweek,
		Extra:    fmt.Sprintf("%d/%d", entryB, leagueID),
	}
	return cache.Memo(d.cache, key, func() (*HeadToHead, error) {
		var templates []compare.TemplateSet
		if leagueID > 0 {
			own, err := d.leagueOwnership(ctx, leagueID, snap.Gameweek)
			if err != nil {
				return nil, err
			}
			xi := template.Build(template.Candidates(own.Ownership, snap.Index.Players))
			if template.Valid(xi) {
				templates = append(templates, compare.TemplateSet{Name: TemplateLeague, Elements: template.Elements(xi)})
			}
		}
		if xi := GlobalTemplate(snap.Index.Players); template.Valid(xi) {
			templates = append(templates, compare.TemplateSet{Name: TemplateGlobal, Elements: template.Elements(xi)})
		}

		managers, err := forEach(ctx, d, []int{entryA, entryB}, func(ctx context.Context, id int) (compare.Manager, error) {
			return d.manager(ctx, id, snap.Gameweek)
		})
		if err != nil {
			return nil, err
		}
		return &HeadToHead{
			LeagueID: leagueID,
			Gameweek: snap.Gameweek,
			Result:   compare.Compare(managers[0], managers[1], templates),
		}, nil
	})
}

// manager gathers one entry's season aggregate up to gw.
func (d *Dashboard) manager(ctx context.Context, entryID, gw int) (compare.Manager, error) {
	entry, err := d.api.Entry(ctx, entryID, false)
	if err != nil {
		return compare.Manager{}, fmt.Errorf("entry %d: %w", entryID, err)
	}
	hist, err := d.api.EntryHistory(ctx, entryID, false)
	if err != nil {
		return compare.Manager{}, fmt.Errorf("entry %d history: %w", entryID, err)
	}
	m := compare.Manager{EntryID: entryID, Name: entry.Name}
	var played []int
	for _, h := range hist.Current {
		if h.Event <= gw {
			m.History = append(m.History, h)
			played = append(played, h.Event)
		}
	}
	for _, c := range hist.Chips {
		if c.Gameweek <= gw {
			m.Chips = append(m.Chips, c)
		}
	}

	captains, err := forEach(ctx, d, played, func(ctx context.Context, event int) (*compare.CaptainPick, error) {
		return d.captain(ctx, entryID, event)
	})
	if err != nil {
		return compare.Manager{}, err
	}
	for _, c := range captains {
		if c != nil {
			m.Captains = append(m.Captains, *c)
		}
	}

	picks, err := d.api.EntryPicks(ctx, entryID, gw, false)
	if err != nil {
		return compare.Manager{}, fmt.Errorf("entry %d picks gw %d: %w", entryID, gw, err)
	}
	for _, p := range picks.Picks {
		if p.Starting() {
			m.Starting = append(m.Starting, p.Element)
		}
	}
	return m, nil
}

// captain returns the gameweek's effective captain: the vice when the
// captain's multiplier was passed on, nil when neither scored a multiplier.
func (d *Dashboard) captain(ctx context.Context, entryID, gw int) (*compare.CaptainPick, error) {
	picks, err := d.api.EntryPicks(ctx, entryID, gw, false)
	if err != nil {
		return nil, fmt.Errorf("entry %d picks gw %d: %w", entryID, gw, err)
	}
	var chosen *fpl.Pick
	for i, p := range picks.Picks {
		if p.Multiplier >= 2 {
			chosen = &picks.Picks[i]
			break
		}
	}
	if chosen == nil {
		return nil, nil
	}
	live, err := d.liveByElement(ctx, gw)
	if err != nil {
		return nil, err
	}
	return &compare.CaptainPick{
		Gameweek:   gw,
		Element:    chosen.Element,
		Points:     live[chosen.Element],
		Multiplier: chosen.Multiplier,
	}, nil
}

// liveByElement is a gameweek's total points per player, memoised since
// every manager shares it.
func (d *Dashboard) liveByElement(ctx context.Context, gw int) (map[int]int, error) {
	key := cache.Key{Kind: cache.KindSnapshot, Gameweek: gw, Extra: "points"}
	return cache.Memo(d.cache, key, func() (map[int]int, error) {
		live, err := d.api.Live(ctx, gw, false)
		if err != nil {
			return nil, fmt.Errorf("live gw %d: %w", gw, err)
		}
		out := make(map[int]int, len(live))
		for _, s := range live {
			out[s.Element] = s.TotalPoints
		}
		return out, nil
	})
}
