package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/quantti/tapas-fpl-app/internal/cache"
	"github.com/quantti/tapas-fpl-app/internal/config"
	"github.com/quantti/tapas-fpl-app/internal/fetch"
	"github.com/quantti/tapas-fpl-app/internal/logger"
	"github.com/quantti/tapas-fpl-app/internal/service"
	"github.com/quantti/tapas-fpl-app/internal/store"
)

// upstreamFixtures is a one-fixture season: gw1 is current and finished
// with official bonus, gw2 is next.
//
//	1 = Raya    (ARS, GK)
//	2 = Saka    (ARS, MID)
//	3 = Salah   (LIV, FWD)
var upstreamFixtures = map[string]any{
	"/bootstrap-static/": map[string]any{
		"events": []any{
			map[string]any{"id": 1, "name": "Gameweek 1", "deadline_time": "2025-08-15T17:30:00Z", "is_current": true, "finished": true, "data_checked": true},
			map[string]any{"id": 2, "name": "Gameweek 2", "deadline_time": "2099-08-22T17:30:00Z", "is_next": true},
		},
		"teams": []any{
			map[string]any{"id": 1, "name": "Arsenal", "short_name": "ARS"},
			map[string]any{"id": 2, "name": "Liverpool", "short_name": "LIV"},
		},
		"elements": []any{
			map[string]any{"id": 1, "web_name": "Raya", "team": 1, "element_type": 1, "status": "a", "minutes": 90, "selected_by_percent": "30.1"},
			map[string]any{"id": 2, "web_name": "Saka", "team": 1, "element_type": 3, "status": "a", "minutes": 90, "selected_by_percent": "45.0"},
			map[string]any{"id": 3, "web_name": "Salah", "team": 2, "element_type": 4, "status": "a", "minutes": 90, "selected_by_percent": "60.2"},
		},
	},
	"/fixtures/": []any{
		map[string]any{
			"id": 10, "event": 1, "team_h": 1, "team_a": 2, "team_h_difficulty": 4, "team_a_difficulty": 4,
			"started": true, "finished": true, "finished_provisional": true, "minutes": 90,
			"kickoff_time": "2025-08-16T14:00:00Z", "stats": []any{},
		},
		map[string]any{
			"id": 20, "event": 2, "team_h": 2, "team_a": 1, "team_h_difficulty": 2, "team_a_difficulty": 5,
			"kickoff_time": "2099-08-23T14:00:00Z", "stats": []any{},
		},
	},
	"/event/1/live/": map[string]any{
		"elements": []any{
			map[string]any{"id": 1, "stats": map[string]any{"minutes": 90, "total_points": 6, "bps": 20}, "explain": []any{map[string]any{"fixture": 10}}},
			map[string]any{"id": 2, "stats": map[string]any{"minutes": 90, "total_points": 10, "bonus": 3, "bps": 40}, "explain": []any{map[string]any{"fixture": 10}}},
			map[string]any{"id": 3, "stats": map[string]any{"minutes": 90, "total_points": 2, "bps": 5}, "explain": []any{map[string]any{"fixture": 10}}},
		},
	},
	"/entry/100/event/1/picks/": map[string]any{
		"active_chip":   nil,
		"entry_history": map[string]any{"event": 1, "points": 26, "total_points": 26, "event_transfers": 1, "event_transfers_cost": 4},
		"picks": []any{
			map[string]any{"element": 1, "position": 1, "multiplier": 1},
			map[string]any{"element": 2, "position": 2, "multiplier": 2, "is_captain": true},
			map[string]any{"element": 3, "position": 12, "multiplier": 0, "is_vice_captain": true},
		},
	},
	"/leagues-classic/77/standings/": map[string]any{
		"league": map[string]any{"id": 77, "name": "Tapas"},
		"standings": map[string]any{
			"has_next": false,
			"page":     1,
			"results": []any{
				map[string]any{"entry": 100, "entry_name": "Jonny's XI", "player_name": "Jon Doe", "rank": 1, "total": 26},
				map[string]any{"entry": 200, "entry_name": "Tapas FC", "player_name": "Ana Ruiz", "rank": 2, "total": 20},
			},
		},
	},
}

// newUpstream serves upstreamFixtures by path. /fixtures/?event=N is
// filtered to that gameweek.
func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := upstreamFixtures[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if ev := r.URL.Query().Get("event"); ev != "" && r.URL.Path == "/fixtures/" {
			gw, _ := strconv.Atoi(ev)
			var filtered []any
			for _, f := range body.([]any) {
				if f.(map[string]any)["event"] == gw {
					filtered = append(filtered, f)
				}
			}
			body = filtered
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// newTestDashboard wires the real fetch client, cache and service against
// the stub upstream.
func newTestDashboard(t *testing.T) (*service.Dashboard, *fetch.Client) {
	t.Helper()
	srv := newUpstream(t)
	client := fetch.NewClient(store.NewJSONStore(t.TempDir()), logger.Discard())
	client.BaseURL = srv.URL
	client.Sleep = 0
	client.MaxRetries = 0
	client.InitialBackoff = time.Millisecond
	rules := config.Rules{FreeTransferCap: 5, ChipBoundary: 19, ListLimit: 5}
	dash := service.NewDashboard(client, cache.New(64, time.Minute), rules, 2, logger.Discard())
	return dash, client
}
