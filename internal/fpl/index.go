package fpl

import "sort"

type teamEvent struct {
	team  int
	event int
}

// Index holds the lookup maps for one upstream snapshot. It is built once and
// shared read-only by every calculation over that snapshot.
type Index struct {
	Players  map[int]Element
	Teams    map[int]Team
	Fixtures map[int]Fixture
	Live     map[int]LivePlayerStat

	byTeamEvent map[teamEvent][]Fixture
	byTeam      map[int][]Fixture
}

// NewIndex builds the lookup maps. Any argument may be nil.
func NewIndex(bs *Bootstrap, fixtures []Fixture, live []LivePlayerStat) *Index {
	ix := &Index{
		Players:     make(map[int]Element),
		Teams:       make(map[int]Team),
		Fixtures:    make(map[int]Fixture, len(fixtures)),
		Live:        make(map[int]LivePlayerStat, len(live)),
		byTeamEvent: make(map[teamEvent][]Fixture),
		byTeam:      make(map[int][]Fixture),
	}
	if bs != nil {
		for _, e := range bs.Elements {
			ix.Players[e.ID] = e
		}
		for _, t := range bs.Teams {
			ix.Teams[t.ID] = t
		}
	}
	sorted := make([]Fixture, len(fixtures))
	copy(sorted, fixtures)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Event != sorted[j].Event {
			return sorted[i].Event < sorted[j].Event
		}
		if sorted[i].KickoffTime != sorted[j].KickoffTime {
			return sorted[i].KickoffTime < sorted[j].KickoffTime
		}
		return sorted[i].ID < sorted[j].ID
	})
	for _, f := range sorted {
		ix.Fixtures[f.ID] = f
		for _, team := range []int{f.TeamH, f.TeamA} {
			if team == 0 {
				continue
			}
			k := teamEvent{team: team, event: f.Event}
			ix.byTeamEvent[k] = append(ix.byTeamEvent[k], f)
			ix.byTeam[team] = append(ix.byTeam[team], f)
		}
	}
	for _, s := range live {
		ix.Live[s.Element] = s
	}
	return ix
}

// LiveStat returns the player's live stats, or a zero value if absent.
func (ix *Index) LiveStat(element int) LivePlayerStat {
	s, ok := ix.Live[element]
	if !ok {
		return LivePlayerStat{Element: element}
	}
	return s
}

// TeamFixtures returns the team's fixtures in event, ordered by kickoff.
func (ix *Index) TeamFixtures(team, event int) []Fixture {
	return ix.byTeamEvent[teamEvent{team: team, event: event}]
}

// UpcomingFixtures returns the team's fixtures after event, in order.
func (ix *Index) UpcomingFixtures(team, afterEvent int) []Fixture {
	var out []Fixture
	for _, f := range ix.byTeam[team] {
		if f.Event > afterEvent {
			out = append(out, f)
		}
	}
	return out
}

// PlayerFixtures returns the fixtures a player takes part in during event.
// The live explain block wins when present; otherwise the player's team
// schedule is used.
func (ix *Index) PlayerFixtures(element, event int) []Fixture {
	if s, ok := ix.Live[element]; ok && len(s.FixtureIDs) > 0 {
		out := make([]Fixture, 0, len(s.FixtureIDs))
		for _, id := range s.FixtureIDs {
			if f, ok := ix.Fixtures[id]; ok && f.Event == event {
				out = append(out, f)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	p, ok := ix.Players[element]
	if !ok {
		return nil
	}
	return ix.TeamFixtures(p.Team, event)
}

// TeamShort returns the team's short name, or "" when unknown.
func (ix *Index) TeamShort(team int) string {
	return ix.Teams[team].ShortName
}
