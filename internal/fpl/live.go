package fpl

import (
	"encoding/json"
	"fmt"
)

// LivePlayerStat is a per-player snapshot of one gameweek. TotalPoints
// already folds in Bonus once the upstream has confirmed it.
type LivePlayerStat struct {
	Element     int   `json:"element"`
	Minutes     int   `json:"minutes"`
	GoalsScored int   `json:"goals_scored"`
	Assists     int   `json:"assists"`
	YellowCards int   `json:"yellow_cards"`
	RedCards    int   `json:"red_cards"`
	BPS         int   `json:"bps"`
	Bonus       int   `json:"bonus"`
	TotalPoints int   `json:"total_points"`
	FixtureIDs  []int `json:"fixture_ids,omitempty"`
}

type liveElementRaw struct {
	ID    int `json:"id"`
	Stats struct {
		Minutes     Flex `json:"minutes"`
		GoalsScored Flex `json:"goals_scored"`
		Assists     Flex `json:"assists"`
		YellowCards Flex `json:"yellow_cards"`
		RedCards    Flex `json:"red_cards"`
		BPS         Flex `json:"bps"`
		Bonus       Flex `json:"bonus"`
		TotalPoints Flex `json:"total_points"`
	} `json:"stats"`
	Explain []struct {
		Fixture int `json:"fixture"`
	} `json:"explain"`
}

// DecodeLive parses /event/{gw}/live/.
func DecodeLive(b []byte) ([]LivePlayerStat, error) {
	var resp struct {
		Elements []liveElementRaw `json:"elements"`
	}
	if err := json.Unmarshal(b, &resp); err != nil {
		return nil, fmt.Errorf("parse live: %w", err)
	}
	out := make([]LivePlayerStat, 0, len(resp.Elements))
	for _, e := range resp.Elements {
		s := LivePlayerStat{
			Element:     e.ID,
			Minutes:     e.Stats.Minutes.Int(),
			GoalsScored: e.Stats.GoalsScored.Int(),
			Assists:     e.Stats.Assists.Int(),
			YellowCards: e.Stats.YellowCards.Int(),
			RedCards:    e.Stats.RedCards.Int(),
			BPS:         e.Stats.BPS.Int(),
			Bonus:       e.Stats.Bonus.Int(),
			TotalPoints: e.Stats.TotalPoints.Int(),
		}
		for _, x := range e.Explain {
			if x.Fixture != 0 {
				s.FixtureIDs = append(s.FixtureIDs, x.Fixture)
			}
		}
		out = append(out, s)
	}
	return out, nil
}
