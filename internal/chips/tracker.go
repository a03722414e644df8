// Package chips splits chip usage into season halves and reports what is
// left in the active half.
package chips

import (
	"time"

	"github.com/quantti/tapas-fpl-app/internal/fpl"
)

// DefaultBoundary is the gameweek that separates the two season halves.
const DefaultBoundary = 19

type Half int

const (
	FirstHalf  Half = 1
	SecondHalf Half = 2
)

type Input struct {
	Chips           []fpl.ChipUsage
	CurrentGameweek int
	// Deadline of the current gameweek. Nil when unknown.
	Deadline *time.Time
	Now      time.Time
	Boundary int
}

// Status lists the chips used and still available in the active half.
type Status struct {
	Half      Half     `json:"half"`
	Used      []string `json:"used"`
	Remaining []string `json:"remaining"`
}

// HalfOf assigns gameweek gw to a season half. The boundary gameweek itself
// counts as second half only once its deadline has passed.
func HalfOf(gw, boundary int, boundaryDeadlinePassed bool) Half {
	switch {
	case gw < boundary:
		return FirstHalf
	case gw > boundary:
		return SecondHalf
	case boundaryDeadlinePassed:
		return SecondHalf
	default:
		return FirstHalf
	}
}

// Track reports the active half and its used and remaining chip labels in
// the fixed chip order.
func Track(in Input) Status {
	boundary := in.Boundary
	if boundary <= 0 {
		boundary = DefaultBoundary
	}
	passed := boundaryPassed(in, boundary)
	active := HalfOf(in.CurrentGameweek, boundary, passed)

	used := make(map[fpl.ChipKind]bool, len(fpl.AllChips))
	for _, c := range in.Chips {
		if c.Kind == fpl.ChipUnknown || c.Gameweek <= 0 {
			continue
		}
		if HalfOf(c.Gameweek, boundary, passed) == active {
			used[c.Kind] = true
		}
	}

	st := Status{Half: active, Used: []string{}, Remaining: []string{}}
	for _, k := range fpl.AllChips {
		if used[k] {
			st.Used = append(st.Used, k.Label())
		} else {
			st.Remaining = append(st.Remaining, k.Label())
		}
	}
	return st
}

func boundaryPassed(in Input, boundary int) bool {
	if in.CurrentGameweek > boundary {
		return true
	}
	if in.CurrentGameweek < boundary || in.Deadline == nil {
		return false
	}
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	return now.After(*in.Deadline)
}
