package fpl

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ChipKind identifies one of the four season chips.
type ChipKind int

const (
	ChipUnknown ChipKind = iota
	Wildcard
	FreeHit
	BenchBoost
	TripleCaptain
)

// AllChips lists the chip kinds in display order.
var AllChips = []ChipKind{Wildcard, FreeHit, BenchBoost, TripleCaptain}

// Name returns the upstream identifier.
func (k ChipKind) Name() string {
	switch k {
	case Wildcard:
		return "wildcard"
	case FreeHit:
		return "freehit"
	case BenchBoost:
		return "bboost"
	case TripleCaptain:
		return "3xc"
	default:
		return ""
	}
}

// Label returns the human-readable chip name.
func (k ChipKind) Label() string {
	switch k {
	case Wildcard:
		return "Wildcard"
	case FreeHit:
		return "Free Hit"
	case BenchBoost:
		return "Bench Boost"
	case TripleCaptain:
		return "Triple Captain"
	default:
		return "Unknown"
	}
}

func (k ChipKind) String() string { return k.Label() }

func (k ChipKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.Name())
}

func (k *ChipKind) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*k = ParseChipName(s)
	return nil
}

// ParseChipName maps an upstream chip name to its kind. Unrecognised names
// map to ChipUnknown.
func ParseChipName(name string) ChipKind {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "wildcard", "wc":
		return Wildcard
	case "freehit", "free_hit", "fh":
		return FreeHit
	case "bboost", "benchboost", "bench_boost", "bb":
		return BenchBoost
	case "3xc", "triplecaptain", "triple_captain", "tc":
		return TripleCaptain
	default:
		return ChipUnknown
	}
}

// ChipUsage records a chip played in a gameweek.
type ChipUsage struct {
	Kind     ChipKind `json:"kind"`
	Gameweek int      `json:"gameweek"`
}

// ParseChipToken decodes a combined "name_event" token such as "wildcard_5"
// or "3xc_24".
func ParseChipToken(tok string) (ChipUsage, error) {
	i := strings.LastIndex(tok, "_")
	if i <= 0 || i == len(tok)-1 {
		return ChipUsage{}, fmt.Errorf("chip token %q: missing gameweek", tok)
	}
	gw, err := strconv.Atoi(tok[i+1:])
	if err != nil || gw <= 0 {
		return ChipUsage{}, fmt.Errorf("chip token %q: bad gameweek", tok)
	}
	kind := ParseChipName(tok[:i])
	if kind == ChipUnknown {
		return ChipUsage{}, fmt.Errorf("chip token %q: unknown chip", tok)
	}
	return ChipUsage{Kind: kind, Gameweek: gw}, nil
}

// ChipAt returns the chip played in gw, if any.
func ChipAt(chips []ChipUsage, gw int) (ChipKind, bool) {
	for _, c := range chips {
		if c.Gameweek == gw && c.Kind != ChipUnknown {
			return c.Kind, true
		}
	}
	return ChipUnknown, false
}
