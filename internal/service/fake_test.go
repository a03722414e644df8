package service

import (
	"context"
	"sync"
	"time"

	"github.com/quantti/tapas-fpl-app/internal/cache"
	"github.com/quantti/tapas-fpl-app/internal/config"
	"github.com/quantti/tapas-fpl-app/internal/fetch"
	"github.com/quantti/tapas-fpl-app/internal/fpl"
	"github.com/quantti/tapas-fpl-app/internal/logger"
)

var testNow = time.Date(2025, 9, 20, 15, 0, 0, 0, time.UTC)

// fakeUpstream serves an in-memory season: gameweek 2 is current with its
// deadline passed, fixture 21 (teams 1 v 2) finished provisionally and
// fixture 22 (teams 3 v 4) not started.
type fakeUpstream struct {
	mu      sync.Mutex
	calls   map[string]int
	forced  map[string]int
	bs      *fpl.Bootstrap
	fx      []fpl.Fixture
	live    map[int][]fpl.LivePlayerStat
	picks   map[[2]int]*fpl.EntryPicks
	history map[int]*fpl.EntryHistory
	entries map[int]*fpl.Entry
	league  *fpl.LeagueStandings
}

func (f *fakeUpstream) hit(name string, force bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	if force {
		f.forced[name]++
	}
}

func (f *fakeUpstream) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeUpstream) Bootstrap(ctx context.Context, force bool) (*fpl.Bootstrap, error) {
	f.hit("bootstrap", force)
	return f.bs, nil
}

func (f *fakeUpstream) Fixtures(ctx context.Context, gw int, force bool) ([]fpl.Fixture, error) {
	f.hit("fixtures", force)
	if gw == 0 {
		return f.fx, nil
	}
	var out []fpl.Fixture
	for _, x := range f.fx {
		if x.Event == gw {
			out = append(out, x)
		}
	}
	return out, nil
}

func (f *fakeUpstream) Live(ctx context.Context, gw int, force bool) ([]fpl.LivePlayerStat, error) {
	f.hit("live", force)
	return f.live[gw], nil
}

func (f *fakeUpstream) EntryPicks(ctx context.Context, entryID, gw int, force bool) (*fpl.EntryPicks, error) {
	f.hit("picks", force)
	p, ok := f.picks[[2]int{entryID, gw}]
	if !ok {
		return nil, fetch.ErrNotFound
	}
	return p, nil
}

func (f *fakeUpstream) EntryHistory(ctx context.Context, entryID int, force bool) (*fpl.EntryHistory, error) {
	f.hit("history", force)
	h, ok := f.history[entryID]
	if !ok {
		return nil, fetch.ErrNotFound
	}
	return h, nil
}

func (f *fakeUpstream) Entry(ctx context.Context, entryID int, force bool) (*fpl.Entry, error) {
	f.hit("entry", force)
	e, ok := f.entries[entryID]
	if !ok {
		return nil, fetch.ErrNotFound
	}
	return e, nil
}

func (f *fakeUpstream) LeagueStandings(ctx context.Context, leagueID int, force bool) (*fpl.LeagueStandings, error) {
	f.hit("league", force)
	if f.league == nil || f.league.League.ID != leagueID {
		return nil, fetch.ErrNotFound
	}
	return f.league, nil
}

// positions: 1 GK, 2-5 DEF, 6-9 MID, 10-11 FWD, then bench 12 GK, 13 DEF,
// 14 MID, 15 FWD. Player id maps to team id%4+1.
func positionOf(id int) fpl.Position {
	switch {
	case id == 1 || id == 12:
		return fpl.Goalkeeper
	case id <= 5 || id == 13:
		return fpl.Defender
	case id <= 9 || id == 14:
		return fpl.Midfielder
	default:
		return fpl.Forward
	}
}

func teamOf(id int) int { return id%4 + 1 }

// squad returns fifteen picks starting the given XI, captaining captain.
func squad(starting []int, bench []int, captain int) []fpl.Pick {
	var out []fpl.Pick
	for i, el := range starting {
		p := fpl.Pick{Element: el, Position: i + 1, Multiplier: 1}
		if el == captain {
			p.Multiplier = 2
			p.IsCaptain = true
		}
		out = append(out, p)
	}
	for i, el := range bench {
		out = append(out, fpl.Pick{Element: el, Position: 12 + i})
	}
	return out
}

func newFake() *fakeUpstream {
	f := &fakeUpstream{
		calls:   map[string]int{},
		forced:  map[string]int{},
		live:    map[int][]fpl.LivePlayerStat{},
		picks:   map[[2]int]*fpl.EntryPicks{},
		history: map[int]*fpl.EntryHistory{},
		entries: map[int]*fpl.Entry{},
	}
	f.bs = &fpl.Bootstrap{
		Events: []fpl.Event{
			{ID: 1, DeadlineTime: testNow.Add(-8 * 24 * time.Hour), Finished: true, DataChecked: true, IsPrevious: true},
			{ID: 2, DeadlineTime: testNow.Add(-24 * time.Hour), IsCurrent: true},
			{ID: 3, DeadlineTime: testNow.Add(6 * 24 * time.Hour), IsNext: true},
		},
		Teams: []fpl.Team{
			{ID: 1, ShortName: "ARS"}, {ID: 2, ShortName: "BOU"}, {ID: 3, ShortName: "CHE"}, {ID: 4, ShortName: "LIV"},
		},
	}
	for id := 1; id <= 16; id++ {
		f.bs.Elements = append(f.bs.Elements, fpl.Element{
			ID:                id,
			WebName:           "P" + string(rune('A'+id-1)),
			Team:              teamOf(id),
			ElementType:       positionOf(id),
			Status:            fpl.StatusAvailable,
			Minutes:           900,
			Form:              fpl.Flex(float64(id % 7)),
			SelectedByPercent: fpl.Flex(float64(50 - id)),
			ExpectedGoals:     fpl.Flex(float64(id) / 4),
			ExpectedAssists:   fpl.Flex(float64(16-id) / 4),
		})
	}

	var bps []fpl.BPSEntry
	var live []fpl.LivePlayerStat
	for id := 1; id <= 16; id++ {
		if t := teamOf(id); t != 1 && t != 2 {
			continue
		}
		bps = append(bps, fpl.BPSEntry{Element: id, Value: (20 - id) * 2})
		live = append(live, fpl.LivePlayerStat{Element: id, Minutes: 90, BPS: (20 - id) * 2, TotalPoints: id, FixtureIDs: []int{21}})
	}
	f.live[2] = live
	f.live[1] = []fpl.LivePlayerStat{{Element: 9, TotalPoints: 10}, {Element: 1, TotalPoints: 3}}
	f.fx = []fpl.Fixture{
		{ID: 11, Event: 1, TeamH: 1, TeamA: 3, Started: true, Finished: true, FinishedProvisional: true, Minutes: 90},
		{ID: 12, Event: 1, TeamH: 2, TeamA: 4, Started: true, Finished: true, FinishedProvisional: true, Minutes: 90},
		{ID: 21, Event: 2, TeamH: 1, TeamA: 2, Started: true, FinishedProvisional: true, Minutes: 90, BPS: bps, KickoffTime: "2025-09-20T11:30:00Z"},
		{ID: 22, Event: 2, TeamH: 3, TeamA: 4, KickoffTime: "2025-09-20T16:30:00Z"},
		{ID: 31, Event: 3, TeamH: 1, TeamA: 3, TeamHDifficulty: 2, TeamADifficulty: 4},
		{ID: 32, Event: 3, TeamH: 2, TeamA: 4, TeamHDifficulty: 3, TeamADifficulty: 3},
	}

	startA := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
	startB := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 14}
	f.picks[[2]int{100, 2}] = &fpl.EntryPicks{
		EntryHistory: fpl.GameweekHistory{Event: 2, EventTransfersCost: 4},
		Picks:        squad(startA, []int{12, 13, 14, 15}, 9),
	}
	f.picks[[2]int{200, 2}] = &fpl.EntryPicks{
		ActiveChip: fpl.TripleCaptain,
		Picks:      squad(startB, []int{12, 13, 11, 15}, 9),
	}
	f.picks[[2]int{100, 1}] = &fpl.EntryPicks{Picks: squad(startA, []int{12, 13, 14, 15}, 9)}
	f.picks[[2]int{200, 1}] = &fpl.EntryPicks{Picks: squad(startB, []int{12, 13, 11, 15}, 1)}
	f.picks[[2]int{200, 2}].Picks[8].Multiplier = 3

	f.history[100] = &fpl.EntryHistory{
		Current: []fpl.GameweekHistory{
			{Event: 1, Points: 60, TotalPoints: 60, OverallRank: 500000},
			{Event: 2, Points: 40, TotalPoints: 100, OverallRank: 700000, EventTransfers: 2, EventTransfersCost: 4},
		},
	}
	f.history[200] = &fpl.EntryHistory{
		Current: []fpl.GameweekHistory{
			{Event: 1, Points: 70, TotalPoints: 70, OverallRank: 300000},
			{Event: 2, Points: 55, TotalPoints: 125, OverallRank: 200000, EventTransfers: 5},
		},
		Chips: []fpl.ChipUsage{{Kind: fpl.Wildcard, Gameweek: 2}},
	}
	f.entries[100] = &fpl.Entry{ID: 100, Name: "Jonny's XI"}
	f.entries[200] = &fpl.Entry{ID: 200, Name: "Tapas FC"}

	f.league = &fpl.LeagueStandings{}
	f.league.League.ID = 77
	f.league.League.Name = "Tapas"
	f.league.Standings.Results = []fpl.StandingRow{
		{Entry: 200, EntryName: "Tapas FC", PlayerName: "Maria Lopez", Rank: 1, Total: 125},
		{Entry: 100, EntryName: "Jonny's XI", PlayerName: "Jon Smith", Rank: 2, Total: 100},
	}
	return f
}

func newTestDashboard(f *fakeUpstream) *Dashboard {
	d := NewDashboard(f, cache.New(64, time.Minute), config.Rules{
		FreeTransferCap: 5,
		ChipBoundary:    19,
		ListLimit:       3,
	}, 4, logger.Discard())
	d.now = func() time.Time { return testNow }
	return d
}
