package main

import (
	"encoding/json"
	"flag"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/quantti/tapas-fpl-app/internal/config"
	"github.com/quantti/tapas-fpl-app/internal/logger"
	"github.com/quantti/tapas-fpl-app/internal/store"
)

func main() {
	var (
		envFile     = flag.String("env-file", ".env", "optional env file loaded before the environment")
		rawRoot     = flag.String("raw-root", "", "root directory for raw JSON (overrides TAPAS_RAW_ROOT)")
		derivedRoot = flag.String("derived-root", "data/derived", "root directory for derived JSON")
		maxFiles    = flag.Int("max-files", 0, "max files per endpoint (0 = no limit)")
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

	inv := buildInventory(cfg.Upstream.RawRoot, *maxFiles, time.Now(), log)
	for _, ep := range inv.Endpoints {
		if len(ep.Mixed) > 0 {
			log.WithFields(logrus.Fields{"endpoint": ep.Name, "paths": ep.Mixed}).Warn("fields with mixed types")
		}
	}

	payload, err := json.Marshal(inv)
	if err != nil {
		log.WithError(err).Fatal("encode inventory")
	}
	const rel = "schema_inventory.json"
	st := store.NewJSONStore(*derivedRoot)
	if err := st.WriteRaw(rel, payload, true); err != nil {
		log.WithError(err).Fatal("write inventory")
	}
	log.WithField("path", st.Path(rel)).Info("inventory written")
}
