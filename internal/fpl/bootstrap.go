package fpl

import (
	"encoding/json"
	"fmt"
	"time"
)

// Position is the upstream element_type of a player.
type Position int

const (
	Goalkeeper Position = 1
	Defender   Position = 2
	Midfielder Position = 3
	Forward    Position = 4
)

func (p Position) String() string {
	switch p {
	case Goalkeeper:
		return "GKP"
	case Defender:
		return "DEF"
	case Midfielder:
		return "MID"
	case Forward:
		return "FWD"
	default:
		return "UNK"
	}
}

// StatusAvailable is the element status for a fit, selectable player.
const StatusAvailable = "a"

// Element is one player row from bootstrap-static.
type Element struct {
	ID                    int      `json:"id"`
	WebName               string   `json:"web_name"`
	FirstName             string   `json:"first_name"`
	SecondName            string   `json:"second_name"`
	Team                  int      `json:"team"`
	ElementType           Position `json:"element_type"`
	Status                string   `json:"status"`
	Minutes               int      `json:"minutes"`
	TotalPoints           int      `json:"total_points"`
	NowCost               int      `json:"now_cost"`
	Form                  Flex     `json:"form"`
	SelectedByPercent     Flex     `json:"selected_by_percent"`
	ExpectedGoals         Flex     `json:"expected_goals"`
	ExpectedAssists       Flex     `json:"expected_assists"`
	ExpectedGoalsConceded Flex     `json:"expected_goals_conceded"`
	CleanSheets           int      `json:"clean_sheets"`
}

// UnmarshalJSON reads the counters through Flex so a stringified or
// malformed number decodes as 0 instead of failing the whole document.
func (e *Element) UnmarshalJSON(b []byte) error {
	type plain Element
	raw := struct {
		*plain
		Minutes     Flex `json:"minutes"`
		TotalPoints Flex `json:"total_points"`
		NowCost     Flex `json:"now_cost"`
		CleanSheets Flex `json:"clean_sheets"`
	}{plain: (*plain)(e)}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	e.Minutes = raw.Minutes.Int()
	e.TotalPoints = raw.TotalPoints.Int()
	e.NowCost = raw.NowCost.Int()
	e.CleanSheets = raw.CleanSheets.Int()
	return nil
}

// Name returns the display name, falling back to first + second name.
func (e Element) Name() string {
	if e.WebName != "" {
		return e.WebName
	}
	if e.FirstName == "" {
		return e.SecondName
	}
	if e.SecondName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.SecondName
}

type Team struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

// Event is a gameweek.
type Event struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	DeadlineTime time.Time `json:"deadline_time"`
	Finished     bool      `json:"finished"`
	DataChecked  bool      `json:"data_checked"`
	IsPrevious   bool      `json:"is_previous"`
	IsCurrent    bool      `json:"is_current"`
	IsNext       bool      `json:"is_next"`
}

// DeadlinePassed reports whether the event's transfer deadline is before now.
// A zero deadline is treated as not passed.
func (e Event) DeadlinePassed(now time.Time) bool {
	if e.DeadlineTime.IsZero() {
		return false
	}
	return now.After(e.DeadlineTime)
}

// Bootstrap is the subset of /bootstrap-static/ the engine consumes.
type Bootstrap struct {
	Events   []Event   `json:"events"`
	Teams    []Team    `json:"teams"`
	Elements []Element `json:"elements"`
}

func DecodeBootstrap(b []byte) (*Bootstrap, error) {
	var out Bootstrap
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("parse bootstrap-static: %w", err)
	}
	return &out, nil
}

// CurrentEvent returns the event flagged is_current.
func (bs *Bootstrap) CurrentEvent() (Event, bool) {
	if bs == nil {
		return Event{}, false
	}
	for _, e := range bs.Events {
		if e.IsCurrent {
			return e, true
		}
	}
	return Event{}, false
}

// NextEvent returns the event flagged is_next.
func (bs *Bootstrap) NextEvent() (Event, bool) {
	if bs == nil {
		return Event{}, false
	}
	for _, e := range bs.Events {
		if e.IsNext {
			return e, true
		}
	}
	return Event{}, false
}

// EventByID returns the gameweek with the given id.
func (bs *Bootstrap) EventByID(id int) (Event, bool) {
	if bs == nil {
		return Event{}, false
	}
	for _, e := range bs.Events {
		if e.ID == id {
			return e, true
		}
	}
	return Event{}, false
}
