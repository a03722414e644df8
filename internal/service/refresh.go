package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/quantti/tapas-fpl-app/internal/fixture"
)

// RefreshLive re-fetches the current gameweek's fixtures and, while any of
// them is live, its live stats and the season fixture list. The first poll
// that sees every fixture finished refreshes once more so confirmed bonus is
// picked up. Memoised results for the gameweek are dropped. It reports
// whether a refresh happened.
func (d *Dashboard) RefreshLive(ctx context.Context) (bool, error) {
	bs, err := d.api.Bootstrap(ctx, false)
	if err != nil {
		return false, fmt.Errorf("bootstrap: %w", err)
	}
	ev, ok := bs.CurrentEvent()
	if !ok {
		return false, nil
	}
	fixtures, err := d.api.Fixtures(ctx, ev.ID, true)
	if err != nil {
		return false, fmt.Errorf("fixtures gw %d: %w", ev.ID, err)
	}
	status := fixture.Summarize(fixtures).PointsStatus()
	switch status {
	case "live":
	case "final":
		if d.finalGW.Load() == int64(ev.ID) {
			return false, nil
		}
	default:
		return false, nil
	}
	if _, err := d.api.Live(ctx, ev.ID, true); err != nil {
		return false, fmt.Errorf("live gw %d: %w", ev.ID, err)
	}
	if _, err := d.api.Fixtures(ctx, 0, true); err != nil {
		return false, fmt.Errorf("fixtures: %w", err)
	}
	if status == "final" {
		d.finalGW.Store(int64(ev.ID))
	}
	n := 0
	if d.cache != nil {
		n = d.cache.PurgeGameweek(ev.ID)
	}
	d.log.WithFields(logrus.Fields{"gw": ev.ID, "status": status, "purged": n}).Debug("live gameweek refreshed")
	return true, nil
}
