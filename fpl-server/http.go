package main

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker"

	"github.com/quantti/tapas-fpl-app/internal/metrics"
)

type routerConfig struct {
	MCPPath    string
	APIKey     string
	AuthHeader string
}

// breakerReporter is satisfied by fetch.Client.
type breakerReporter interface {
	BreakerState() gobreaker.State
}

func newRouter(cfg routerConfig, server *mcp.Server, registry []toolInfo, upstream breakerReporter) http.Handler {
	handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Group(func(r chi.Router) {
		r.Use(withAuth(cfg.APIKey, cfg.AuthHeader))

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{
				"status":   "ok",
				"upstream": upstream.BreakerState().String(),
			})
		})

		r.Get("/tools", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"tools": registry})
		})

		r.Handle(cfg.MCPPath, handler)
	})

	// Scrapers authenticate at the network layer, not with the API key.
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// withAuth accepts the key in the configured header or as a bearer token. An
// empty key disables the check.
func withAuth(apiKey, header string) func(http.Handler) http.Handler {
	if header == "" {
		header = "X-API-Key"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" {
				next.ServeHTTP(w, r)
				return
			}
			key := strings.TrimSpace(r.Header.Get(header))
			if key == "" {
				if authz := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(authz), "bearer ") {
					key = strings.TrimSpace(authz[7:])
				}
			}
			if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	b, _ := json.MarshalIndent(v, "", "  ")
	_, _ = w.Write(b)
}
