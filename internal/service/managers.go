package service

import (
	"context"
	"fmt"
	"time"

	"github.com/quantti/tapas-fpl-app/internal/cache"
	"github.com/quantti/tapas-fpl-app/internal/chips"
	"github.com/quantti/tapas-fpl-app/internal/fpl"
	"github.com/quantti/tapas-fpl-app/internal/ledger"
	"github.com/quantti/tapas-fpl-app/internal/points"
)

type LivePoints struct {
	EntryID    int          `json:"entry_id"`
	ActiveChip fpl.ChipKind `json:"active_chip,omitempty"`
	points.LiveManagerPoints
}

// LivePoints scores a manager's gameweek with provisional bonus.
func (d *Dashboard) LivePoints(ctx context.Context, entryID, gw int) (*LivePoints, error) {
	if err := requireID("entry_id", entryID); err != nil {
		return nil, err
	}
	snap, err := d.Snapshot(ctx, gw)
	if err != nil {
		return nil, err
	}
	key := cache.Key{Kind: cache.KindLivePoints, Manager: entryID, Gameweek: snap.Gameweek}
	return cache.Memo(d.cache, key, func() (*LivePoints, error) {
		picks, err := d.api.EntryPicks(ctx, entryID, snap.Gameweek, false)
		if err != nil {
			return nil, fmt.Errorf("entry %d picks gw %d: %w", entryID, snap.Gameweek, err)
		}
		lp := points.Calculate(points.Input{
			Gameweek: snap.Gameweek,
			Picks:    picks.Picks,
			Index:    snap.Index,
			HitsCost: picks.EntryHistory.EventTransfersCost,
		})
		return &LivePoints{EntryID: entryID, ActiveChip: picks.ActiveChip, LiveManagerPoints: lp}, nil
	})
}

type FreeTransfers struct {
	EntryID        int           `json:"entry_id"`
	Name           string        `json:"name,omitempty"`
	Gameweek       int           `json:"gameweek"`
	DeadlinePassed bool          `json:"deadline_passed"`
	Cap            int           `json:"cap"`
	FreeTransfers  int           `json:"free_transfers"`
	Timeline       []ledger.Step `json:"timeline,omitempty"`
}

// FreeTransfers recomputes a manager's banked transfers from history. The
// current gameweek counts as complete once its deadline has passed.
func (d *Dashboard) FreeTransfers(ctx context.Context, entryID, gw int) (*FreeTransfers, error) {
	if err := requireID("entry_id", entryID); err != nil {
		return nil, err
	}
	bs, err := d.api.Bootstrap(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	gw, err = resolveGameweek(bs, gw)
	if err != nil {
		return nil, err
	}
	ev, _ := bs.EventByID(gw)
	passed := ev.DeadlinePassed(d.now())

	key := cache.Key{Kind: cache.KindFreeTransfers, Manager: entryID, Gameweek: gw, Extra: fmt.Sprint(passed)}
	return cache.Memo(d.cache, key, func() (*FreeTransfers, error) {
		hist, err := d.api.EntryHistory(ctx, entryID, false)
		if err != nil {
			return nil, fmt.Errorf("entry %d history: %w", entryID, err)
		}
		in := ledger.Input{
			History:        hist.Current,
			Chips:          hist.Chips,
			TargetGameweek: gw,
			DeadlinePassed: passed,
			Cap:            d.rules.FreeTransferCap,
		}
		steps := ledger.Timeline(in)
		out := &FreeTransfers{
			EntryID:        entryID,
			Gameweek:       gw,
			DeadlinePassed: passed,
			Cap:            d.rules.FreeTransferCap,
			FreeTransfers:  ledger.FreeTransfers(in),
			Timeline:       steps,
		}
		return out, nil
	})
}

type LeagueFreeTransfers struct {
	LeagueID int             `json:"league_id"`
	Gameweek int             `json:"gameweek"`
	Managers []FreeTransfers `json:"managers"`
}

// LeagueFreeTransfers runs the ledger for every manager in a classic league.
func (d *Dashboard) LeagueFreeTransfers(ctx context.Context, leagueID, gw int) (*LeagueFreeTransfers, error) {
	if err := requireID("league_id", leagueID); err != nil {
		return nil, err
	}
	ls, err := d.api.LeagueStandings(ctx, leagueID, false)
	if err != nil {
		return nil, fmt.Errorf("league %d standings: %w", leagueID, err)
	}
	names := make(map[int]string, len(ls.Standings.Results))
	for _, r := range ls.Standings.Results {
		names[r.Entry] = r.EntryName
	}
	rows, err := forEach(ctx, d, ls.EntryIDs(), func(ctx context.Context, id int) (FreeTransfers, error) {
		ft, err := d.FreeTransfers(ctx, id, gw)
		if err != nil {
			return FreeTransfers{}, err
		}
		row := *ft
		row.Name = names[id]
		row.Timeline = nil
		return row, nil
	})
	if err != nil {
		return nil, err
	}
	out := &LeagueFreeTransfers{LeagueID: leagueID, Managers: rows}
	if len(rows) > 0 {
		out.Gameweek = rows[0].Gameweek
	}
	return out, nil
}

type ChipStatus struct {
	EntryID  int             `json:"entry_id"`
	Gameweek int             `json:"gameweek"`
	History  []fpl.ChipUsage `json:"history"`
	chips.Status
}

// ChipStatus reports used and remaining chips for the active season half.
func (d *Dashboard) ChipStatus(ctx context.Context, entryID, gw int) (*ChipStatus, error) {
	if err := requireID("entry_id", entryID); err != nil {
		return nil, err
	}
	bs, err := d.api.Bootstrap(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	gw, err = resolveGameweek(bs, gw)
	if err != nil {
		return nil, err
	}
	now := d.now()
	var deadline *time.Time
	if ev, ok := bs.EventByID(gw); ok && !ev.DeadlineTime.IsZero() {
		t := ev.DeadlineTime
		deadline = &t
	}

	key := cache.Key{Kind: cache.KindChips, Manager: entryID, Gameweek: gw}
	if deadline != nil {
		key.Extra = fmt.Sprint(now.After(*deadline))
	}
	return cache.Memo(d.cache, key, func() (*ChipStatus, error) {
		hist, err := d.api.EntryHistory(ctx, entryID, false)
		if err != nil {
			return nil, fmt.Errorf("entry %d history: %w", entryID, err)
		}
		st := chips.Track(chips.Input{
			Chips:           hist.Chips,
			CurrentGameweek: gw,
			Deadline:        deadline,
			Now:             now,
			Boundary:        d.rules.ChipBoundary,
		})
		used := hist.Chips
		if used == nil {
			used = []fpl.ChipUsage{}
		}
		return &ChipStatus{EntryID: entryID, Gameweek: gw, History: used, Status: st}, nil
	})
}
