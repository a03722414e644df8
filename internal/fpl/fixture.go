package fpl

import (
	"encoding/json"
	"fmt"
)

// BPSEntry is one player's bonus-point-system score in a fixture.
type BPSEntry struct {
	Element int `json:"element"`
	Value   int `json:"value"`
}

type Fixture struct {
	ID                  int        `json:"id"`
	Event               int        `json:"event"`
	TeamH               int        `json:"team_h"`
	TeamA               int        `json:"team_a"`
	TeamHDifficulty     int        `json:"team_h_difficulty"`
	TeamADifficulty     int        `json:"team_a_difficulty"`
	Started             bool       `json:"started"`
	Finished            bool       `json:"finished"`
	FinishedProvisional bool       `json:"finished_provisional"`
	Minutes             int        `json:"minutes"`
	KickoffTime         string     `json:"kickoff_time"`
	BPS                 []BPSEntry `json:"bps,omitempty"`
}

// Involves reports whether team plays in the fixture.
func (f Fixture) Involves(team int) bool {
	return team != 0 && (f.TeamH == team || f.TeamA == team)
}

// DifficultyFor returns the difficulty rating the fixture carries for team.
func (f Fixture) DifficultyFor(team int) int {
	switch team {
	case f.TeamH:
		return f.TeamHDifficulty
	case f.TeamA:
		return f.TeamADifficulty
	default:
		return 0
	}
}

type fixtureStat struct {
	Identifier string     `json:"identifier"`
	H          []BPSEntry `json:"h"`
	A          []BPSEntry `json:"a"`
}

// UnmarshalJSON accepts both the upstream shape, where BPS lives inside the
// stats array under identifier "bps", and the flattened shape this package
// marshals. Difficulty and minutes go through Flex.
func (f *Fixture) UnmarshalJSON(b []byte) error {
	type plain Fixture
	var raw struct {
		plain
		TeamHDifficulty Flex          `json:"team_h_difficulty"`
		TeamADifficulty Flex          `json:"team_a_difficulty"`
		Minutes         Flex          `json:"minutes"`
		Stats           []fixtureStat `json:"stats"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*f = Fixture(raw.plain)
	f.TeamHDifficulty = raw.TeamHDifficulty.Int()
	f.TeamADifficulty = raw.TeamADifficulty.Int()
	f.Minutes = raw.Minutes.Int()
	if len(f.BPS) > 0 {
		return nil
	}
	for _, s := range raw.Stats {
		if s.Identifier != "bps" {
			continue
		}
		f.BPS = make([]BPSEntry, 0, len(s.H)+len(s.A))
		f.BPS = append(f.BPS, s.H...)
		f.BPS = append(f.BPS, s.A...)
	}
	return nil
}

func DecodeFixtures(b []byte) ([]Fixture, error) {
	var out []Fixture
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	return out, nil
}
