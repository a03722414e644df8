package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/quantti/tapas-fpl-app/internal/cache"
	"github.com/quantti/tapas-fpl-app/internal/config"
	"github.com/quantti/tapas-fpl-app/internal/fetch"
	"github.com/quantti/tapas-fpl-app/internal/fpl"
	"github.com/quantti/tapas-fpl-app/internal/logger"
	"github.com/quantti/tapas-fpl-app/internal/reconcile"
	"github.com/quantti/tapas-fpl-app/internal/service"
	"github.com/quantti/tapas-fpl-app/internal/store"
)

func main() {
	var (
		envFile     = flag.String("env-file", ".env", "optional env file loaded before the environment")
		leagueID    = flag.Int("league", 0, "classic league id (required)")
		gwMin       = flag.Int("gw-min", 1, "minimum gameweek to fetch")
		gwMax       = flag.Int("gw-max", 0, "maximum gameweek to fetch (0 = current)")
		rawRoot     = flag.String("raw-root", "", "root directory for raw JSON (overrides TAPAS_RAW_ROOT)")
		derivedRoot = flag.String("derived-root", "data/derived", "root directory for derived JSON")
		pretty      = flag.Bool("pretty", true, "pretty-print JSON to disk")
		sleepMS     = flag.Int("sleep-ms", -1, "sleep between requests in ms (-1 = TAPAS_REQUEST_SLEEP)")
		force       = flag.Bool("force", false, "refetch even when the cached copy is fresh")
		live        = flag.Bool("live", false, "disable cache and disk writes")
		derive      = flag.Bool("derive", true, "write free transfer and chip summaries for the last gameweek")
	)
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	if *rawRoot != "" {
		cfg.Upstream.RawRoot = *rawRoot
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	if *leagueID <= 0 {
		log.Fatal("--league is required")
	}

	client := fetch.NewFromConfig(cfg.Upstream, log)
	client.PrettyWrite = *pretty && !*live
	client.UseCache = !*live
	client.DisableWrite = *live
	if *sleepMS >= 0 {
		client.Sleep = time.Duration(*sleepMS) * time.Millisecond
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	stats, err := warm(ctx, client, warmOptions{
		LeagueID: *leagueID,
		GWMin:    *gwMin,
		GWMax:    *gwMax,
		Force:    *force,
		Workers:  cfg.Cache.Workers,
	}, log)
	if err != nil {
		log.WithError(err).Fatal("warm cache")
	}
	log.WithFields(logrus.Fields{
		"documents": stats.Documents,
		"entries":   len(stats.Entries),
		"took":      time.Since(start).Round(time.Millisecond).String(),
	}).Info("cache warmed")

	if !*derive {
		return
	}
	if client.DisableWrite {
		log.Info("derive skipped in live mode")
		return
	}
	dash := service.NewDashboard(client, cache.New(cfg.Cache.Size, cfg.Cache.TTL), cfg.Rules, cfg.Cache.Workers, log)
	if err := writeDerived(ctx, dash, client, store.NewJSONStore(*derivedRoot), *leagueID, stats); err != nil {
		log.WithError(err).Fatal("derive summaries")
	}
	log.WithField("derived_root", *derivedRoot).Info("summaries written")
}

// writeDerived stores the league free transfer table and each manager's
// chip status for the last warmed gameweek, plus a reconcile report of
// squads against transfer logs over the warmed range.
func writeDerived(ctx context.Context, dash *service.Dashboard, c warmer, st *store.JSONStore, leagueID int, stats warmStats) error {
	gw := stats.GWMax
	ft, err := dash.LeagueFreeTransfers(ctx, leagueID, gw)
	if err != nil {
		return err
	}
	if err := writeJSON(st, fmt.Sprintf("league/%d/gw/%d/free_transfers.json", leagueID, gw), ft); err != nil {
		return err
	}
	for _, entryID := range stats.Entries {
		cs, err := dash.ChipStatus(ctx, entryID, gw)
		if err != nil {
			return err
		}
		if err := writeJSON(st, fmt.Sprintf("entry/%d/gw/%d/chips.json", entryID, gw), cs); err != nil {
			return err
		}
	}

	entries := make([]reconcile.EntryData, 0, len(stats.Entries))
	for _, entryID := range stats.Entries {
		d, err := loadEntryData(ctx, c, entryID, stats.GWMin, stats.GWMax)
		if err != nil {
			return err
		}
		entries = append(entries, d)
	}
	report := reconcile.BuildReport(leagueID, stats.GWMin, stats.GWMax, entries, time.Now())
	return writeJSON(st, fmt.Sprintf("league/%d/gw/%d/reconcile.json", leagueID, gw), report)
}

// loadEntryData reads from the warmed cache; nothing is refetched.
func loadEntryData(ctx context.Context, c warmer, entryID, from, to int) (reconcile.EntryData, error) {
	d := reconcile.EntryData{EntryID: entryID, Squads: make(map[int]*fpl.EntryPicks, to-from+1)}
	for gw := from; gw <= to; gw++ {
		p, err := c.EntryPicks(ctx, entryID, gw, false)
		if err != nil {
			return d, fmt.Errorf("entry %d picks gw %d: %w", entryID, gw, err)
		}
		d.Squads[gw] = p
	}
	ts, err := c.Transfers(ctx, entryID, false)
	if err != nil {
		return d, fmt.Errorf("entry %d transfers: %w", entryID, err)
	}
	d.Transfers = ts
	return d, nil
}

func writeJSON(st *store.JSONStore, rel string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", rel, err)
	}
	return st.WriteRaw(rel, b, true)
}
