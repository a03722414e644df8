// Package reconcile cross-checks each manager's gameweek squads against
// their transfer log.
package reconcile

import (
	"sort"
	"time"

	"github.com/quantti/tapas-fpl-app/internal/fpl"
)

type EntryMismatch struct {
	EntryID  int `json:"entry_id"`
	Gameweek int `json:"gameweek"`
	// Unexpected players are in the squad but not explained by the log;
	// Missing players should be there after replaying it.
	Unexpected        []int `json:"unexpected,omitempty"`
	Missing           []int `json:"missing,omitempty"`
	TransfersLogged   int   `json:"transfers_logged"`
	TransfersReported int   `json:"transfers_reported"`
	MissingSquad      bool  `json:"missing_squad,omitempty"`
}

type Report struct {
	LeagueID       int             `json:"league_id"`
	FromGameweek   int             `json:"from_gameweek"`
	ToGameweek     int             `json:"to_gameweek"`
	GeneratedAtUTC string          `json:"generated_at_utc"`
	Entries        []EntryMismatch `json:"entries"`
}

// EntryData is one manager's squads by gameweek and their full transfer log.
type EntryData struct {
	EntryID   int
	Squads    map[int]*fpl.EntryPicks
	Transfers []fpl.Transfer
}

func BuildReport(leagueID, from, to int, entries []EntryData, now time.Time) *Report {
	out := make([]EntryMismatch, 0)
	for _, e := range entries {
		out = append(out, CheckEntry(e, from, to)...)
	}
	return &Report{
		LeagueID:       leagueID,
		FromGameweek:   from,
		ToGameweek:     to,
		GeneratedAtUTC: now.UTC().Format(time.RFC3339),
		Entries:        out,
	}
}

// CheckEntry replays the transfer log between consecutive gameweeks in
// (from, to] and reports every gameweek whose squad or transfer count
// disagrees. Free hit gameweeks are skipped and the squad before them is
// used as the baseline for the week after.
func CheckEntry(d EntryData, from, to int) []EntryMismatch {
	var out []EntryMismatch
	for gw := from + 1; gw <= to; gw++ {
		cur := d.Squads[gw]
		if isFreeHit(cur) {
			continue
		}
		base := gw - 1
		for base >= from && isFreeHit(d.Squads[base]) {
			base--
		}
		prev := d.Squads[base]
		if cur == nil || prev == nil || base < from {
			out = append(out, EntryMismatch{EntryID: d.EntryID, Gameweek: gw, MissingSquad: true})
			continue
		}

		expected := squadSet(prev)
		for _, t := range transfersBetween(d, base, gw) {
			delete(expected, t.ElementOut)
			if t.ElementIn != 0 {
				expected[t.ElementIn] = true
			}
		}
		actual := squadSet(cur)

		m := EntryMismatch{
			EntryID:           d.EntryID,
			Gameweek:          gw,
			Unexpected:        difference(actual, expected),
			Missing:           difference(expected, actual),
			TransfersReported: cur.EntryHistory.EventTransfers,
		}
		for _, t := range d.Transfers {
			if t.Event == gw {
				m.TransfersLogged++
			}
		}
		if len(m.Unexpected) > 0 || len(m.Missing) > 0 || m.TransfersLogged != m.TransfersReported {
			out = append(out, m)
		}
	}
	return out
}

// transfersBetween returns the transfers made for gameweeks in (base, gw]
// outside free hit weeks, oldest first.
func transfersBetween(d EntryData, base, gw int) []fpl.Transfer {
	var out []fpl.Transfer
	for _, t := range d.Transfers {
		if t.Event <= base || t.Event > gw || isFreeHit(d.Squads[t.Event]) {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Event != out[j].Event {
			return out[i].Event < out[j].Event
		}
		return out[i].Time < out[j].Time
	})
	return out
}

func isFreeHit(p *fpl.EntryPicks) bool {
	return p != nil && p.ActiveChip == fpl.FreeHit
}

func squadSet(p *fpl.EntryPicks) map[int]bool {
	out := make(map[int]bool, len(p.Picks))
	for _, pk := range p.Picks {
		out[pk.Element] = true
	}
	return out
}

func difference(a, b map[int]bool) []int {
	var out []int
	for id := range a {
		if !b[id] {
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out
}
