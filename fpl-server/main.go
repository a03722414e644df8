package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/quantti/tapas-fpl-app/internal/cache"
	"github.com/quantti/tapas-fpl-app/internal/config"
	"github.com/quantti/tapas-fpl-app/internal/fetch"
	"github.com/quantti/tapas-fpl-app/internal/logger"
	"github.com/quantti/tapas-fpl-app/internal/scheduler"
	"github.com/quantti/tapas-fpl-app/internal/service"
)

const (
	serverName    = "tapas-fpl-mcp"
	serverVersion = "0.3.0"
)

func main() {
	var (
		envFile     = flag.String("env-file", ".env", "optional env file loaded before the environment")
		addr        = flag.String("addr", ":8080", "HTTP listen address (overrides TAPAS_ADDR)")
		mcpPath     = flag.String("path", "/mcp", "HTTP path for MCP endpoint (overrides TAPAS_MCP_PATH)")
		requireAuth = flag.Bool("require-auth", true, "require API key auth via TAPAS_API_KEY")
		authHeader  = flag.String("auth-header", "X-API-Key", "HTTP header to read API key from")
	)
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	// Only flags given on the command line override the environment.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Server.Addr = *addr
		case "path":
			cfg.Server.Path = *mcpPath
		case "require-auth":
			cfg.Server.RequireAuth = *requireAuth
		case "auth-header":
			cfg.Server.AuthHeader = *authHeader
		}
	})
	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("invalid flags")
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	apiKey := strings.TrimSpace(cfg.Server.APIKey)
	if cfg.Server.RequireAuth && apiKey == "" {
		log.Fatal("TAPAS_API_KEY is required (set env var or run with --require-auth=false)")
	}

	client := fetch.NewFromConfig(cfg.Upstream, logger.Component(log, "fetch"))
	memo := cache.New(cfg.Cache.Size, cfg.Cache.TTL)
	dash := service.NewDashboard(client, memo, cfg.Rules, cfg.Cache.Workers, log)

	server, registry := newMCPServer(dash, logger.Component(log, "tools"))

	sched, err := scheduler.New(dash, cfg.Cache.RefreshInterval, log)
	if err != nil {
		log.WithError(err).Fatal("create scheduler")
	}
	if err := sched.Start(); err != nil {
		log.WithError(err).Fatal("start scheduler")
	}

	router := newRouter(routerConfig{
		MCPPath:    cfg.Server.Path,
		APIKey:     apiKey,
		AuthHeader: cfg.Server.AuthHeader,
	}, server, registry, client)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"addr": cfg.Server.Addr,
			"path": cfg.Server.Path,
			"auth": apiKey != "",
		}).Info("MCP HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	if err := sched.Stop(); err != nil {
		log.WithError(err).Warn("scheduler shutdown")
	}
}
