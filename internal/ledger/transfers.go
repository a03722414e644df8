// Package ledger recomputes a manager's free-transfer balance from their
// gameweek history. Nothing is stored: the balance is folded from scratch on
// every call.
package ledger

import (
	"sort"

	"github.com/quantti/tapas-fpl-app/internal/fpl"
)

// Banking caps used by the upstream game in different seasons.
const (
	LegacyCap  = 2
	CurrentCap = 5
)

// Input describes one manager's ledger evaluation.
type Input struct {
	History        []fpl.GameweekHistory
	Chips          []fpl.ChipUsage
	TargetGameweek int
	// DeadlinePassed marks the target gameweek as complete for ledger
	// purposes even though it is still the current gameweek.
	DeadlinePassed bool
	// Cap is the banking limit. It is a season rule and must be supplied.
	Cap int
}

// Step is the balance after one gameweek of the fold.
type Step struct {
	Gameweek  int          `json:"gameweek"`
	Transfers int          `json:"transfers"`
	Chip      fpl.ChipKind `json:"chip,omitempty"`
	Complete  bool         `json:"complete"`
	Balance   int          `json:"balance"`
}

// FreeTransfers returns the balance available for the target gameweek.
func FreeTransfers(in Input) int {
	steps := Timeline(in)
	if len(steps) == 0 {
		return clamp(1, capOf(in))
	}
	return steps[len(steps)-1].Balance
}

// Timeline folds the history in ascending gameweek order and returns the
// balance after each gameweek up to and including the target.
func Timeline(in Input) []Step {
	limit := capOf(in)
	history := make([]fpl.GameweekHistory, len(in.History))
	copy(history, in.History)
	sort.SliceStable(history, func(i, j int) bool { return history[i].Event < history[j].Event })

	balance := clamp(1, limit)
	steps := make([]Step, 0, len(history))
	for _, h := range history {
		if h.Event > in.TargetGameweek {
			break
		}
		complete := h.Event < in.TargetGameweek || (h.Event == in.TargetGameweek && in.DeadlinePassed)
		chip, _ := fpl.ChipAt(in.Chips, h.Event)

		switch chip {
		case fpl.Wildcard:
			balance = 1
		case fpl.FreeHit:
			// Free hit transfers are reverted; the balance is untouched.
		default:
			balance = max(balance-max(h.EventTransfers, 0), 0)
		}
		if complete {
			balance++
		}
		balance = clamp(balance, limit)

		steps = append(steps, Step{
			Gameweek:  h.Event,
			Transfers: h.EventTransfers,
			Chip:      chip,
			Complete:  complete,
			Balance:   balance,
		})
	}
	return steps
}

func capOf(in Input) int {
	if in.Cap < 1 {
		return 1
	}
	return in.Cap
}

func clamp(v, limit int) int {
	if v < 0 {
		return 0
	}
	if v > limit {
		return limit
	}
	return v
}
