// Package fixture derives the match phase of an upstream fixture.
package fixture

import (
	"encoding/json"
	"fmt"

	"github.com/quantti/tapas-fpl-app/internal/fpl"
)

// Phase is the lifecycle stage of a fixture as far as scoring is concerned.
type Phase int

const (
	NotStarted Phase = iota
	InProgress
	FinishedProvisional
	Finished
)

// BonusMinutes is the elapsed time after which provisional bonus is shown.
const BonusMinutes = 60

var phaseLabels = map[Phase]string{
	NotStarted:          "not_started",
	InProgress:          "in_progress",
	FinishedProvisional: "finished_provisional",
	Finished:            "finished",
}

func (p Phase) String() string {
	if s, ok := phaseLabels[p]; ok {
		return s
	}
	return "not_started"
}

func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Phase) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	for k, v := range phaseLabels {
		if v == s {
			*p = k
			return nil
		}
	}
	return fmt.Errorf("unknown fixture phase %q", s)
}

// Classify returns the fixture's phase. Finished means the upstream has
// confirmed final bonus; FinishedProvisional means play is over but bonus
// is not yet official.
func Classify(f fpl.Fixture) Phase {
	switch {
	case !f.Started:
		return NotStarted
	case f.Finished:
		return Finished
	case f.FinishedProvisional:
		return FinishedProvisional
	default:
		return InProgress
	}
}

// BonusEligible reports whether provisional bonus may be allocated for f.
func BonusEligible(f fpl.Fixture) bool {
	switch Classify(f) {
	case NotStarted:
		return false
	case Finished, FinishedProvisional:
		return true
	default:
		return f.Minutes >= BonusMinutes
	}
}

// AnyStarted reports whether at least one of the fixtures has kicked off.
func AnyStarted(fixtures []fpl.Fixture) bool {
	for _, f := range fixtures {
		if Classify(f) != NotStarted {
			return true
		}
	}
	return false
}

// Progress counts fixture phases for a gameweek.
type Progress struct {
	Total               int `json:"total"`
	Started             int `json:"started"`
	FinishedProvisional int `json:"finished_provisional"`
	Finished            int `json:"finished"`
}

func Summarize(fixtures []fpl.Fixture) Progress {
	p := Progress{Total: len(fixtures)}
	for _, f := range fixtures {
		switch Classify(f) {
		case InProgress:
			p.Started++
		case FinishedProvisional:
			p.Started++
			p.FinishedProvisional++
		case Finished:
			p.Started++
			p.Finished++
		}
	}
	return p
}

// PointsStatus is "final" once every fixture is confirmed, "live" once any
// has started, otherwise "pending".
func (p Progress) PointsStatus() string {
	if p.Total > 0 && p.Finished == p.Total {
		return "final"
	}
	if p.Started > 0 {
		return "live"
	}
	return "pending"
}
