package main

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/quantti/tapas-fpl-app/internal/fpl"
)

// warmer is the subset of fetch.Client the cache warmer drives.
type warmer interface {
	Bootstrap(ctx context.Context, force bool) (*fpl.Bootstrap, error)
	Fixtures(ctx context.Context, gw int, force bool) ([]fpl.Fixture, error)
	Live(ctx context.Context, gw int, force bool) ([]fpl.LivePlayerStat, error)
	LeagueStandings(ctx context.Context, leagueID int, force bool) (*fpl.LeagueStandings, error)
	Entry(ctx context.Context, entryID int, force bool) (*fpl.Entry, error)
	EntryHistory(ctx context.Context, entryID int, force bool) (*fpl.EntryHistory, error)
	Transfers(ctx context.Context, entryID int, force bool) ([]fpl.Transfer, error)
	EntryPicks(ctx context.Context, entryID, gw int, force bool) (*fpl.EntryPicks, error)
}

type warmOptions struct {
	LeagueID int
	GWMin    int
	GWMax    int // 0 = current
	Force    bool
	Workers  int
}

type warmStats struct {
	Entries   []int
	GWMin     int
	GWMax     int
	Documents int64
}

// warm fetches the season-wide documents, then each gameweek's live data
// and every league manager's documents for the range. Managers are fetched
// concurrently up to opts.Workers.
func warm(ctx context.Context, c warmer, opts warmOptions, log logrus.FieldLogger) (warmStats, error) {
	var stats warmStats
	var docs atomic.Int64

	bs, err := c.Bootstrap(ctx, opts.Force)
	if err != nil {
		return stats, fmt.Errorf("bootstrap: %w", err)
	}
	docs.Add(1)

	stats.GWMin = opts.GWMin
	if stats.GWMin < 1 {
		stats.GWMin = 1
	}
	stats.GWMax = opts.GWMax
	if stats.GWMax == 0 {
		ev, ok := bs.CurrentEvent()
		if !ok {
			return stats, errors.New("no current gameweek; pass --gw-max")
		}
		stats.GWMax = ev.ID
	}
	if stats.GWMax < stats.GWMin {
		return stats, fmt.Errorf("gw range %d..%d is empty", stats.GWMin, stats.GWMax)
	}

	if _, err := c.Fixtures(ctx, 0, opts.Force); err != nil {
		return stats, fmt.Errorf("fixtures: %w", err)
	}
	docs.Add(1)

	standings, err := c.LeagueStandings(ctx, opts.LeagueID, opts.Force)
	if err != nil {
		return stats, fmt.Errorf("league %d standings: %w", opts.LeagueID, err)
	}
	docs.Add(1)
	for _, row := range standings.Standings.Results {
		stats.Entries = append(stats.Entries, row.Entry)
	}
	log.WithFields(logrus.Fields{
		"league_id": opts.LeagueID,
		"entries":   len(stats.Entries),
		"gw_min":    stats.GWMin,
		"gw_max":    stats.GWMax,
	}).Info("warming league")

	for gw := stats.GWMin; gw <= stats.GWMax; gw++ {
		if _, err := c.Live(ctx, gw, opts.Force); err != nil {
			return stats, fmt.Errorf("live gw %d: %w", gw, err)
		}
		docs.Add(1)
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, entryID := range stats.Entries {
		g.Go(func() error {
			if _, err := c.Entry(gctx, entryID, opts.Force); err != nil {
				return fmt.Errorf("entry %d: %w", entryID, err)
			}
			if _, err := c.EntryHistory(gctx, entryID, opts.Force); err != nil {
				return fmt.Errorf("entry %d history: %w", entryID, err)
			}
			if _, err := c.Transfers(gctx, entryID, opts.Force); err != nil {
				return fmt.Errorf("entry %d transfers: %w", entryID, err)
			}
			docs.Add(3)
			for gw := stats.GWMin; gw <= stats.GWMax; gw++ {
				if _, err := c.EntryPicks(gctx, entryID, gw, opts.Force); err != nil {
					return fmt.Errorf("entry %d picks gw %d: %w", entryID, gw, err)
				}
				docs.Add(1)
			}
			log.WithField("entry_id", entryID).Debug("entry warmed")
			return nil
		})
	}
	err = g.Wait()
	stats.Documents = docs.Load()
	return stats, err
}
