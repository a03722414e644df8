// Package service fetches upstream snapshots, builds their indexes and hands
// them to the engine packages. Results are memoised per manager and
// gameweek.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/quantti/tapas-fpl-app/internal/cache"
	"github.com/quantti/tapas-fpl-app/internal/config"
	"github.com/quantti/tapas-fpl-app/internal/fpl"
)

// ErrInvalidArgument marks caller mistakes such as a missing entry id.
var ErrInvalidArgument = errors.New("invalid argument")

// Upstream is the typed read side of the fetch client.
type Upstream interface {
	Bootstrap(ctx context.Context, force bool) (*fpl.Bootstrap, error)
	Fixtures(ctx context.Context, gw int, force bool) ([]fpl.Fixture, error)
	Live(ctx context.Context, gw int, force bool) ([]fpl.LivePlayerStat, error)
	EntryPicks(ctx context.Context, entryID, gw int, force bool) (*fpl.EntryPicks, error)
	EntryHistory(ctx context.Context, entryID int, force bool) (*fpl.EntryHistory, error)
	Entry(ctx context.Context, entryID int, force bool) (*fpl.Entry, error)
	LeagueStandings(ctx context.Context, leagueID int, force bool) (*fpl.LeagueStandings, error)
}

type Dashboard struct {
	api     Upstream
	cache   *cache.Cache
	rules   config.Rules
	workers int
	now     func() time.Time
	log     *logrus.Entry

	// finalGW is the last gameweek refreshed after all its fixtures finished.
	finalGW atomic.Int64
}

func NewDashboard(api Upstream, c *cache.Cache, rules config.Rules, workers int, log logrus.FieldLogger) *Dashboard {
	if workers < 1 {
		workers = 1
	}
	return &Dashboard{
		api:     api,
		cache:   c,
		rules:   rules,
		workers: workers,
		now:     time.Now,
		log:     log.WithField("component", "service"),
	}
}

// Snapshot is one gameweek's upstream data with its lookup index.
type Snapshot struct {
	Gameweek  int
	Bootstrap *fpl.Bootstrap
	Event     fpl.Event
	Fixtures  []fpl.Fixture // this gameweek only
	Index     *fpl.Index    // whole-season fixtures plus this gameweek's live stats
}

// Snapshot loads bootstrap, season fixtures and live stats for gw in
// parallel. gw 0 resolves to the current gameweek.
func (d *Dashboard) Snapshot(ctx context.Context, gw int) (*Snapshot, error) {
	bs, err := d.api.Bootstrap(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	gw, err = resolveGameweek(bs, gw)
	if err != nil {
		return nil, err
	}
	return cache.Memo(d.cache, cache.Key{Kind: cache.KindSnapshot, Gameweek: gw}, func() (*Snapshot, error) {
		var (
			season []fpl.Fixture
			live   []fpl.LivePlayerStat
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			season, err = d.api.Fixtures(gctx, 0, false)
			if err != nil {
				return fmt.Errorf("fixtures: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			var err error
			live, err = d.api.Live(gctx, gw, false)
			if err != nil {
				return fmt.Errorf("live gw %d: %w", gw, err)
			}
			return nil
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		ev, _ := bs.EventByID(gw)
		snap := &Snapshot{
			Gameweek:  gw,
			Bootstrap: bs,
			Event:     ev,
			Index:     fpl.NewIndex(bs, season, live),
		}
		for _, f := range season {
			if f.Event == gw {
				snap.Fixtures = append(snap.Fixtures, f)
			}
		}
		return snap, nil
	})
}

// resolveGameweek maps 0 to the current gameweek, falling back to the next
// one before the season starts.
func resolveGameweek(bs *fpl.Bootstrap, gw int) (int, error) {
	if gw < 0 {
		return 0, fmt.Errorf("gw %d: %w", gw, ErrInvalidArgument)
	}
	if gw > 0 {
		return gw, nil
	}
	if ev, ok := bs.CurrentEvent(); ok {
		return ev.ID, nil
	}
	if ev, ok := bs.NextEvent(); ok {
		return ev.ID, nil
	}
	return 0, errors.New("no current or next gameweek in bootstrap")
}

func requireID(name string, id int) error {
	if id <= 0 {
		return fmt.Errorf("%s is required: %w", name, ErrInvalidArgument)
	}
	return nil
}

// forEach runs fn for every id with at most d.workers in flight and returns
// the results in input order.
func forEach[T any](ctx context.Context, d *Dashboard, ids []int, fn func(ctx context.Context, id int) (T, error)) ([]T, error) {
	out := make([]T, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for i, id := range ids {
		g.Go(func() error {
			v, err := fn(gctx, id)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
