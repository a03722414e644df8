package fetch

import (
	"context"
	"fmt"

	"github.com/quantti/tapas-fpl-app/internal/fpl"
)

// maxStandingsPages bounds pagination over very large classic leagues.
const maxStandingsPages = 20

// /bootstrap-static/
func (c *Client) Bootstrap(ctx context.Context, force bool) (*fpl.Bootstrap, error) {
	b, err := c.FetchRaw(ctx, Resource{
		Endpoint: "bootstrap",
		URLPath:  "/bootstrap-static/",
		RelPath:  "bootstrap/bootstrap-static.json",
		TTL:      c.StaticTTL,
	}, force)
	if err != nil {
		return nil, err
	}
	return fpl.DecodeBootstrap(b)
}

// /fixtures/?event={gw}; gw 0 fetches the whole season.
func (c *Client) Fixtures(ctx context.Context, gw int, force bool) ([]fpl.Fixture, error) {
	res := Resource{
		Endpoint: "fixtures",
		URLPath:  "/fixtures/",
		RelPath:  "fixtures/all.json",
		TTL:      c.StaticTTL,
	}
	if gw > 0 {
		res.URLPath = fmt.Sprintf("/fixtures/?event=%d", gw)
		res.RelPath = fmt.Sprintf("fixtures/gw/%d.json", gw)
		res.TTL = c.LiveTTL
	}
	b, err := c.FetchRaw(ctx, res, force)
	if err != nil {
		return nil, err
	}
	return fpl.DecodeFixtures(b)
}

// /event/{gw}/live/
func (c *Client) Live(ctx context.Context, gw int, force bool) ([]fpl.LivePlayerStat, error) {
	b, err := c.FetchRaw(ctx, Resource{
		Endpoint: "live",
		URLPath:  fmt.Sprintf("/event/%d/live/", gw),
		RelPath:  fmt.Sprintf("gw/%d/live.json", gw),
		TTL:      c.LiveTTL,
	}, force)
	if err != nil {
		return nil, err
	}
	return fpl.DecodeLive(b)
}

// /entry/{entry_id}/event/{gw}/picks/
func (c *Client) EntryPicks(ctx context.Context, entryID, gw int, force bool) (*fpl.EntryPicks, error) {
	b, err := c.FetchRaw(ctx, Resource{
		Endpoint: "entry_picks",
		URLPath:  fmt.Sprintf("/entry/%d/event/%d/picks/", entryID, gw),
		RelPath:  fmt.Sprintf("entry/%d/gw/%d/picks.json", entryID, gw),
		TTL:      c.StaticTTL,
	}, force)
	if err != nil {
		return nil, err
	}
	return fpl.DecodeEntryPicks(b)
}

// /entry/{entry_id}/history/
func (c *Client) EntryHistory(ctx context.Context, entryID int, force bool) (*fpl.EntryHistory, error) {
	b, err := c.FetchRaw(ctx, Resource{
		Endpoint: "entry_history",
		URLPath:  fmt.Sprintf("/entry/%d/history/", entryID),
		RelPath:  fmt.Sprintf("entry/%d/history.json", entryID),
		TTL:      c.StaticTTL,
	}, force)
	if err != nil {
		return nil, err
	}
	return fpl.DecodeEntryHistory(b)
}

// /entry/{entry_id}/transfers/
func (c *Client) Transfers(ctx context.Context, entryID int, force bool) ([]fpl.Transfer, error) {
	b, err := c.FetchRaw(ctx, Resource{
		Endpoint: "entry_transfers",
		URLPath:  fmt.Sprintf("/entry/%d/transfers/", entryID),
		RelPath:  fmt.Sprintf("entry/%d/transfers.json", entryID),
		TTL:      c.StaticTTL,
	}, force)
	if err != nil {
		return nil, err
	}
	return fpl.DecodeTransfers(b)
}

// /entry/{entry_id}/
func (c *Client) Entry(ctx context.Context, entryID int, force bool) (*fpl.Entry, error) {
	b, err := c.FetchRaw(ctx, Resource{
		Endpoint: "entry",
		URLPath:  fmt.Sprintf("/entry/%d/", entryID),
		RelPath:  fmt.Sprintf("entry/%d/entry.json", entryID),
		TTL:      c.StaticTTL,
	}, force)
	if err != nil {
		return nil, err
	}
	return fpl.DecodeEntry(b)
}

// /leagues-classic/{league_id}/standings/?page_standings={n}, all pages
// merged into the first.
func (c *Client) LeagueStandings(ctx context.Context, leagueID int, force bool) (*fpl.LeagueStandings, error) {
	var out *fpl.LeagueStandings
	for page := 1; page <= maxStandingsPages; page++ {
		b, err := c.FetchRaw(ctx, Resource{
			Endpoint: "league_standings",
			URLPath:  fmt.Sprintf("/leagues-classic/%d/standings/?page_standings=%d", leagueID, page),
			RelPath:  fmt.Sprintf("league/%d/standings/%d.json", leagueID, page),
			TTL:      c.StaticTTL,
		}, force)
		if err != nil {
			return nil, err
		}
		ls, err := fpl.DecodeLeagueStandings(b)
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = ls
		} else {
			out.Standings.Results = append(out.Standings.Results, ls.Standings.Results...)
		}
		if !ls.Standings.HasNext {
			break
		}
	}
	out.Standings.HasNext = false
	return out, nil
}
