// Package compare builds head-to-head season comparisons between two
// managers and labels each manager's playstyle by template overlap.
package compare

import (
	"sort"

	"github.com/quantti/tapas-fpl-app/internal/fpl"
)

// HitCost is the points deducted per transfer beyond the free allowance.
const HitCost = 4

type Playstyle string

const (
	Template     Playstyle = "Template"
	Balanced     Playstyle = "Balanced"
	Differential Playstyle = "Differential"
	Maverick     Playstyle = "Maverick"
)

// Classify maps a starting-XI overlap with a template to a playstyle.
func Classify(overlap int) Playstyle {
	switch {
	case overlap >= 9:
		return Template
	case overlap >= 6:
		return Balanced
	case overlap >= 3:
		return Differential
	default:
		return Maverick
	}
}

// CaptainPick is one gameweek's captain and the points it returned.
type CaptainPick struct {
	Gameweek   int `json:"gameweek"`
	Element    int `json:"element"`
	Points     int `json:"points"`
	Multiplier int `json:"multiplier"`
}

// Manager is the season aggregate for one entry.
type Manager struct {
	EntryID  int
	Name     string
	History  []fpl.GameweekHistory
	Chips    []fpl.ChipUsage
	Captains []CaptainPick
	// Starting holds the element ids of the current starting XI.
	Starting []int
}

// TemplateSet is a named reference XI, e.g. league or global template.
type TemplateSet struct {
	Name     string `json:"name"`
	Elements []int  `json:"elements"`
}

type GameweekScore struct {
	Gameweek int `json:"gameweek"`
	Points   int `json:"points"`
}

type TemplateOverlap struct {
	Template  string    `json:"template"`
	Overlap   int       `json:"overlap"`
	Playstyle Playstyle `json:"playstyle"`
}

type ComparisonStats struct {
	EntryID       int               `json:"entry_id"`
	Name          string            `json:"name"`
	TotalPoints   int               `json:"total_points"`
	OverallRank   int               `json:"overall_rank"`
	Transfers     int               `json:"transfers"`
	Hits          int               `json:"hits"`
	HitsCost      int               `json:"hits_cost"`
	CaptainPoints int               `json:"captain_points"`
	ChipsUsed     []fpl.ChipUsage   `json:"chips_used"`
	Best          *GameweekScore    `json:"best_gameweek,omitempty"`
	Worst         *GameweekScore    `json:"worst_gameweek,omitempty"`
	Templates     []TemplateOverlap `json:"templates"`
	// Playstyle is the label against the first template, empty without one.
	Playstyle Playstyle `json:"playstyle,omitempty"`
}

type Result struct {
	A       ComparisonStats `json:"a"`
	B       ComparisonStats `json:"b"`
	Common  []int           `json:"common"`
	UniqueA []int           `json:"unique_a"`
	UniqueB []int           `json:"unique_b"`
}

// Compare aggregates both managers and their roster overlap.
func Compare(a, b Manager, templates []TemplateSet) Result {
	res := Result{
		A:       Stats(a, templates),
		B:       Stats(b, templates),
		Common:  []int{},
		UniqueA: []int{},
		UniqueB: []int{},
	}
	inA := set(a.Starting)
	inB := set(b.Starting)
	for id := range inA {
		if inB[id] {
			res.Common = append(res.Common, id)
		} else {
			res.UniqueA = append(res.UniqueA, id)
		}
	}
	for id := range inB {
		if !inA[id] {
			res.UniqueB = append(res.UniqueB, id)
		}
	}
	sort.Ints(res.Common)
	sort.Ints(res.UniqueA)
	sort.Ints(res.UniqueB)
	return res
}

// Stats aggregates one manager's season.
func Stats(m Manager, templates []TemplateSet) ComparisonStats {
	st := ComparisonStats{
		EntryID:   m.EntryID,
		Name:      m.Name,
		ChipsUsed: append([]fpl.ChipUsage{}, m.Chips...),
		Templates: []TemplateOverlap{},
	}

	history := append([]fpl.GameweekHistory(nil), m.History...)
	sort.SliceStable(history, func(i, j int) bool { return history[i].Event < history[j].Event })
	for _, h := range history {
		st.Transfers += h.EventTransfers
		st.HitsCost += h.EventTransfersCost
		if st.Best == nil || h.Points > st.Best.Points {
			st.Best = &GameweekScore{Gameweek: h.Event, Points: h.Points}
		}
		if st.Worst == nil || h.Points < st.Worst.Points {
			st.Worst = &GameweekScore{Gameweek: h.Event, Points: h.Points}
		}
	}
	st.Hits = st.HitsCost / HitCost
	if n := len(history); n > 0 {
		st.TotalPoints = history[n-1].TotalPoints
		st.OverallRank = history[n-1].OverallRank
	}

	for _, c := range m.Captains {
		st.CaptainPoints += c.Points * c.Multiplier
	}

	starting := set(m.Starting)
	for _, t := range templates {
		n := 0
		for _, id := range uniq(t.Elements) {
			if starting[id] {
				n++
			}
		}
		st.Templates = append(st.Templates, TemplateOverlap{Template: t.Name, Overlap: n, Playstyle: Classify(n)})
	}
	if len(st.Templates) > 0 {
		st.Playstyle = st.Templates[0].Playstyle
	}
	return st
}

func set(ids []int) map[int]bool {
	out := make(map[int]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}

func uniq(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
