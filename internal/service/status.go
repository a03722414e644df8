package service

import (
	"context"
	"sort"
	"time"

	"github.com/quantti/tapas-fpl-app/internal/bonus"
	"github.com/quantti/tapas-fpl-app/internal/fixture"
	"github.com/quantti/tapas-fpl-app/internal/fpl"
)

type GameStatus struct {
	CurrentGameweek int              `json:"current_gameweek"`
	NextGameweek    int              `json:"next_gameweek,omitempty"`
	Deadline        *time.Time       `json:"deadline,omitempty"`
	DeadlinePassed  bool             `json:"deadline_passed"`
	NextDeadline    *time.Time       `json:"next_deadline,omitempty"`
	Fixtures        fixture.Progress `json:"fixtures"`
	PointsStatus    string           `json:"points_status"`
	Finished        bool             `json:"finished"`
	DataChecked     bool             `json:"data_checked"`
}

// GameStatus summarises where the season is right now.
func (d *Dashboard) GameStatus(ctx context.Context) (*GameStatus, error) {
	snap, err := d.Snapshot(ctx, 0)
	if err != nil {
		return nil, err
	}
	out := &GameStatus{
		CurrentGameweek: snap.Gameweek,
		Fixtures:        fixture.Summarize(snap.Fixtures),
		Finished:        snap.Event.Finished,
		DataChecked:     snap.Event.DataChecked,
	}
	out.PointsStatus = out.Fixtures.PointsStatus()
	if !snap.Event.DeadlineTime.IsZero() {
		t := snap.Event.DeadlineTime
		out.Deadline = &t
		out.DeadlinePassed = snap.Event.DeadlinePassed(d.now())
	}
	if next, ok := snap.Bootstrap.NextEvent(); ok && next.ID != snap.Gameweek {
		out.NextGameweek = next.ID
		if !next.DeadlineTime.IsZero() {
			t := next.DeadlineTime
			out.NextDeadline = &t
		}
	}
	return out, nil
}

type BonusLine struct {
	Element int    `json:"element"`
	Name    string `json:"name"`
	BPS     int    `json:"bps"`
	Bonus   int    `json:"bonus"`
}

type FixtureStatus struct {
	ID       int           `json:"id"`
	Home     string        `json:"home"`
	Away     string        `json:"away"`
	Kickoff  string        `json:"kickoff_time,omitempty"`
	Minutes  int           `json:"minutes"`
	Phase    fixture.Phase `json:"phase"`
	Official bool          `json:"bonus_official"`
	// Bonus is the confirmed bonus once official, otherwise the provisional
	// allocation. Empty before the bonus threshold.
	Bonus []BonusLine `json:"bonus"`
}

// FixtureStatus lists a gameweek's fixtures with their phase and bonus.
func (d *Dashboard) FixtureStatus(ctx context.Context, gw int) ([]FixtureStatus, error) {
	snap, err := d.Snapshot(ctx, gw)
	if err != nil {
		return nil, err
	}
	ix := snap.Index
	out := make([]FixtureStatus, 0, len(snap.Fixtures))
	for _, f := range snap.Fixtures {
		fs := FixtureStatus{
			ID:      f.ID,
			Home:    ix.TeamShort(f.TeamH),
			Away:    ix.TeamShort(f.TeamA),
			Kickoff: f.KickoffTime,
			Minutes: f.Minutes,
			Phase:   fixture.Classify(f),
			Bonus:   []BonusLine{},
		}
		fs.Official = fs.Phase == fixture.Finished
		if fs.Official {
			fs.Bonus = officialBonus(f, ix)
		} else {
			for el, b := range bonus.ForFixture(f, ix) {
				fs.Bonus = append(fs.Bonus, bonusLine(ix, f, el, b))
			}
		}
		sort.Slice(fs.Bonus, func(i, j int) bool {
			if fs.Bonus[i].Bonus != fs.Bonus[j].Bonus {
				return fs.Bonus[i].Bonus > fs.Bonus[j].Bonus
			}
			return fs.Bonus[i].Element < fs.Bonus[j].Element
		})
		out = append(out, fs)
	}
	return out, nil
}

// officialBonus reads the confirmed bonus from live stats. A player in a
// double gameweek shows the combined bonus against each fixture.
func officialBonus(f fpl.Fixture, ix *fpl.Index) []BonusLine {
	out := []BonusLine{}
	for el, s := range ix.Live {
		if s.Bonus <= 0 {
			continue
		}
		for _, pf := range ix.PlayerFixtures(el, f.Event) {
			if pf.ID == f.ID {
				out = append(out, bonusLine(ix, f, el, s.Bonus))
				break
			}
		}
	}
	return out
}

func bonusLine(ix *fpl.Index, f fpl.Fixture, el, b int) BonusLine {
	line := BonusLine{Element: el, Name: ix.Players[el].Name(), Bonus: b, BPS: ix.LiveStat(el).BPS}
	for _, e := range f.BPS {
		if e.Element == el {
			line.BPS = e.Value
			break
		}
	}
	return line
}
