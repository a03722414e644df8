package recommend

import "github.com/quantti/tapas-fpl-app/internal/fpl"

// FixtureWeights front-load the next five gameweeks; index 0 is the
// gameweek straight after the current one.
var FixtureWeights = []float64{0.35, 0.25, 0.20, 0.12, 0.08}

// Ease converts a 1-5 difficulty rating into a [0, 1] ease score.
func Ease(difficulty int) float64 {
	e := float64(5-difficulty) / 4
	switch {
	case e < 0:
		return 0
	case e > 1:
		return 1
	default:
		return e
	}
}

// InWindow reports whether event falls in the weighted horizon after
// afterGameweek.
func InWindow(event, afterGameweek int) bool {
	return event > afterGameweek && event <= afterGameweek+len(FixtureWeights)
}

// FixtureEase scores a team's fixtures in the gameweeks after gameweek.
// Each fixture takes the weight of its gameweek offset, so a double
// gameweek counts twice and a blank one not at all. Weights are
// renormalised over the fixtures found; a team with none scores Neutral.
func FixtureEase(ix *fpl.Index, team, afterGameweek int) float64 {
	if ix == nil {
		return Neutral
	}
	var sum, weight float64
	for _, f := range ix.UpcomingFixtures(team, afterGameweek) {
		if !InWindow(f.Event, afterGameweek) {
			continue
		}
		d := f.DifficultyFor(team)
		if d == 0 {
			continue
		}
		w := FixtureWeights[f.Event-afterGameweek-1]
		sum += w * Ease(d)
		weight += w
	}
	if weight == 0 {
		return Neutral
	}
	return sum / weight
}
