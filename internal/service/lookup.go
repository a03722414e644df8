package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// MinSimilarity is the edit-distance similarity a non-substring match needs.
const MinSimilarity = 0.7

type ManagerMatch struct {
	EntryID    int     `json:"entry_id"`
	EntryName  string  `json:"entry_name"`
	PlayerName string  `json:"player_name"`
	Rank       int     `json:"rank"`
	Total      int     `json:"total"`
	Score      float64 `json:"score"`
}

// FindManager searches a league's team and manager names. Subsequence
// matches always qualify; otherwise the closest name must clear
// MinSimilarity. Results are ordered by score, then league rank.
func (d *Dashboard) FindManager(ctx context.Context, leagueID int, query string) ([]ManagerMatch, error) {
	if err := requireID("league_id", leagueID); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is required: %w", ErrInvalidArgument)
	}
	ls, err := d.api.LeagueStandings(ctx, leagueID, false)
	if err != nil {
		return nil, fmt.Errorf("league %d standings: %w", leagueID, err)
	}

	out := []ManagerMatch{}
	for _, r := range ls.Standings.Results {
		best := 0.0
		for _, name := range []string{r.EntryName, r.PlayerName} {
			if s := similarity(query, name); s > best {
				best = s
			}
		}
		if best == 0 {
			continue
		}
		out = append(out, ManagerMatch{
			EntryID:    r.Entry,
			EntryName:  r.EntryName,
			PlayerName: r.PlayerName,
			Rank:       r.Rank,
			Total:      r.Total,
			Score:      best,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Rank < out[j].Rank
	})
	return out, nil
}

// similarity is 1 for an exact case-folded match, above MinSimilarity for a
// subsequence or a close edit, and 0 otherwise. Longer subsequences score
// higher.
func similarity(query, name string) float64 {
	if name == "" {
		return 0
	}
	q, n := strings.ToLower(query), strings.ToLower(name)
	if q == n {
		return 1
	}
	maxLen := float64(max(len(q), len(n)))
	if fuzzy.MatchNormalizedFold(query, name) {
		return MinSimilarity + (1-MinSimilarity)*float64(len(q))/maxLen
	}
	sim := 1 - float64(fuzzy.LevenshteinDistance(q, n))/maxLen
	if sim > MinSimilarity {
		return sim
	}
	return 0
}
