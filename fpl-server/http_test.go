package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantti/tapas-fpl-app/internal/logger"
)

type stubBreaker struct{ state gobreaker.State }

func (b stubBreaker) BreakerState() gobreaker.State { return b.state }

func newTestRouter(t *testing.T, apiKey string, breaker breakerReporter) http.Handler {
	t.Helper()
	dash, client := newTestDashboard(t)
	server, registry := newMCPServer(dash, logger.Discard())
	if breaker == nil {
		breaker = client
	}
	return newRouter(routerConfig{MCPPath: "/mcp", APIKey: apiKey, AuthHeader: "X-API-Key"}, server, registry, breaker)
}

func serve(h http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// ----- Auth -----

func TestWithAuth(t *testing.T) {
	h := newTestRouter(t, "s3cret", nil)

	cases := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{"missing key", nil, http.StatusUnauthorized},
		{"wrong key", map[string]string{"X-API-Key": "nope"}, http.StatusUnauthorized},
		{"header key", map[string]string{"X-API-Key": "s3cret"}, http.StatusOK},
		{"padded header key", map[string]string{"X-API-Key": "  s3cret "}, http.StatusOK},
		{"bearer token", map[string]string{"Authorization": "Bearer s3cret"}, http.StatusOK},
		{"lowercase bearer", map[string]string{"Authorization": "bearer s3cret"}, http.StatusOK},
		{"basic auth ignored", map[string]string{"Authorization": "Basic s3cret"}, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(h, http.MethodGet, "/health", tc.headers)
			assert.Equal(t, tc.want, rec.Code)
			if tc.want == http.StatusUnauthorized {
				assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
			}
		})
	}
}

func TestWithAuth_CustomHeader(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := withAuth("k", "X-Tapas-Key")(ok)

	assert.Equal(t, http.StatusNoContent, serve(h, http.MethodGet, "/", map[string]string{"X-Tapas-Key": "k"}).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(h, http.MethodGet, "/", map[string]string{"X-API-Key": "k"}).Code)
}

func TestWithAuth_DisabledWithoutKey(t *testing.T) {
	h := newTestRouter(t, "", nil)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/tools", nil).Code)
}

func TestMCPPath_RequiresAuth(t *testing.T) {
	h := newTestRouter(t, "s3cret", nil)
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ----- Routes -----

func TestHealth_ReportsBreakerState(t *testing.T) {
	t.Run("closed", func(t *testing.T) {
		rec := serve(newTestRouter(t, "", nil), http.MethodGet, "/health", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"status":"ok","upstream":"closed"}`, rec.Body.String())
	})

	t.Run("open", func(t *testing.T) {
		rec := serve(newTestRouter(t, "", stubBreaker{gobreaker.StateOpen}), http.MethodGet, "/health", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok","upstream":"open"}`, rec.Body.String())
	})
}

func TestTools_ListsRegistry(t *testing.T) {
	rec := serve(newTestRouter(t, "k", nil), http.MethodGet, "/tools", map[string]string{"X-API-Key": "k"})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Tools []toolInfo `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Tools, 11)
	assert.Equal(t, "game_status", body.Tools[0].Name)
}

func TestMetrics_NoAuth(t *testing.T) {
	h := newTestRouter(t, "s3cret", nil)
	serve(h, http.MethodGet, "/health", nil)

	rec := serve(h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tapas_http_requests_total")
}

func TestUnknownRoute(t *testing.T) {
	rec := serve(newTestRouter(t, "", nil), http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
