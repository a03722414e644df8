package fpl

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Pick is one of the fifteen roster slots for a gameweek.
type Pick struct {
	Element       int  `json:"element"`
	Position      int  `json:"position"`
	Multiplier    int  `json:"multiplier"`
	IsCaptain     bool `json:"is_captain"`
	IsViceCaptain bool `json:"is_vice_captain"`
}

// Starting reports whether the pick is in the starting XI.
func (p Pick) Starting() bool {
	return p.Position >= 1 && p.Position <= 11
}

// GameweekHistory is one row of an entry's season history.
type GameweekHistory struct {
	Event              int `json:"event"`
	Points             int `json:"points"`
	TotalPoints        int `json:"total_points"`
	Rank               int `json:"rank"`
	OverallRank        int `json:"overall_rank"`
	Bank               int `json:"bank"`
	Value              int `json:"value"`
	EventTransfers     int `json:"event_transfers"`
	EventTransfersCost int `json:"event_transfers_cost"`
	PointsOnBench      int `json:"points_on_bench"`
}

func (h *GameweekHistory) UnmarshalJSON(b []byte) error {
	var raw struct {
		Event              Flex `json:"event"`
		Points             Flex `json:"points"`
		TotalPoints        Flex `json:"total_points"`
		Rank               Flex `json:"rank"`
		OverallRank        Flex `json:"overall_rank"`
		Bank               Flex `json:"bank"`
		Value              Flex `json:"value"`
		EventTransfers     Flex `json:"event_transfers"`
		EventTransfersCost Flex `json:"event_transfers_cost"`
		PointsOnBench      Flex `json:"points_on_bench"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*h = GameweekHistory{
		Event:              raw.Event.Int(),
		Points:             raw.Points.Int(),
		TotalPoints:        raw.TotalPoints.Int(),
		Rank:               raw.Rank.Int(),
		OverallRank:        raw.OverallRank.Int(),
		Bank:               raw.Bank.Int(),
		Value:              raw.Value.Int(),
		EventTransfers:     raw.EventTransfers.Int(),
		EventTransfersCost: raw.EventTransfersCost.Int(),
		PointsOnBench:      raw.PointsOnBench.Int(),
	}
	return nil
}

// EntryPicks is /entry/{id}/event/{gw}/picks/.
type EntryPicks struct {
	ActiveChip   ChipKind        `json:"active_chip"`
	EntryHistory GameweekHistory `json:"entry_history"`
	Picks        []Pick          `json:"picks"`
}

func DecodeEntryPicks(b []byte) (*EntryPicks, error) {
	var out EntryPicks
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("parse entry picks: %w", err)
	}
	return &out, nil
}

// EntryHistory is /entry/{id}/history/ with chips decoded into ChipUsage.
type EntryHistory struct {
	Current []GameweekHistory `json:"current"`
	Chips   []ChipUsage       `json:"chips"`
}

func DecodeEntryHistory(b []byte) (*EntryHistory, error) {
	var raw struct {
		Current []GameweekHistory `json:"current"`
		Chips   []struct {
			Name  string `json:"name"`
			Event int    `json:"event"`
		} `json:"chips"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parse entry history: %w", err)
	}
	out := &EntryHistory{Current: raw.Current}
	for _, c := range raw.Chips {
		kind := ParseChipName(c.Name)
		if kind == ChipUnknown || c.Event <= 0 {
			continue
		}
		out.Chips = append(out.Chips, ChipUsage{Kind: kind, Gameweek: c.Event})
	}
	sort.SliceStable(out.Current, func(i, j int) bool { return out.Current[i].Event < out.Current[j].Event })
	sort.SliceStable(out.Chips, func(i, j int) bool { return out.Chips[i].Gameweek < out.Chips[j].Gameweek })
	return out, nil
}

type Transfer struct {
	ElementIn  int    `json:"element_in"`
	ElementOut int    `json:"element_out"`
	Event      int    `json:"event"`
	Time       string `json:"time"`
}

func DecodeTransfers(b []byte) ([]Transfer, error) {
	var out []Transfer
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("parse transfers: %w", err)
	}
	return out, nil
}

// Entry is /entry/{id}/.
type Entry struct {
	ID                   int    `json:"id"`
	Name                 string `json:"name"`
	PlayerFirstName      string `json:"player_first_name"`
	PlayerLastName       string `json:"player_last_name"`
	SummaryOverallPoints int    `json:"summary_overall_points"`
	SummaryOverallRank   int    `json:"summary_overall_rank"`
	CurrentEvent         int    `json:"current_event"`
}

func DecodeEntry(b []byte) (*Entry, error) {
	var out Entry
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("parse entry: %w", err)
	}
	return &out, nil
}

// StandingRow is one manager in a classic league table.
type StandingRow struct {
	Entry      int    `json:"entry"`
	EntryName  string `json:"entry_name"`
	PlayerName string `json:"player_name"`
	Rank       int    `json:"rank"`
	Total      int    `json:"total"`
	EventTotal int    `json:"event_total"`
}

type LeagueStandings struct {
	League struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"league"`
	Standings struct {
		HasNext bool          `json:"has_next"`
		Page    int           `json:"page"`
		Results []StandingRow `json:"results"`
	} `json:"standings"`
}

func DecodeLeagueStandings(b []byte) (*LeagueStandings, error) {
	var out LeagueStandings
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("parse league standings: %w", err)
	}
	return &out, nil
}

// EntryIDs returns the manager ids in table order.
func (ls *LeagueStandings) EntryIDs() []int {
	ids := make([]int, 0, len(ls.Standings.Results))
	for _, r := range ls.Standings.Results {
		ids = append(ids, r.Entry)
	}
	return ids
}
