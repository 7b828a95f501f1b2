package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finpulse/internal/compare"
	"finpulse/internal/config"
	"finpulse/internal/exporter"
	"finpulse/internal/ingest"
	"finpulse/internal/services"
	ws "finpulse/internal/websocket"
)

type staticProvider struct{}

func (staticProvider) FetchEntity(ctx context.Context, kind compare.Kind, id string, filter compare.FilterState) (compare.EntityData, error) {
	return compare.EntityData{}, nil
}

func newTestApplication(t *testing.T) *Application {
	t.Helper()

	cfg := config.Default()
	cfg.Security.RateLimit.Enabled = false
	logger := slog.Default()

	store := ingest.NewStore()
	store.SetMetric("revenue", 2022, 100)
	store.SetMetric("revenue", 2023, 120)

	aggregator := compare.NewAggregator(staticProvider{}, compare.DefaultRetryPolicy(), nil, logger)
	csvExporter := exporter.NewCSVExporter(t.TempDir(), logger)
	hub := ws.NewHub(logger)

	a := &Application{
		Config:     &cfg,
		Logger:     logger,
		Store:      store,
		Hub:        hub,
		Comparison: services.NewComparisonService(aggregator, csvExporter, hub, logger),
		Data:       services.NewDataService(store, logger),
	}
	a.Router = a.buildRouter()
	return a
}

func TestRouterRoutes(t *testing.T) {
	a := newTestApplication(t)
	srv := httptest.NewServer(a.Router)
	defer srv.Close()

	t.Run("health", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/health")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("overview", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/overview")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("prometheus", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("unknown route", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/nope")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("request id echoed", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/api/health")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	})

	t.Run("websocket upgrade through middleware chain", func(t *testing.T) {
		a.Hub.Start()
		defer a.Hub.Stop()

		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
		conn, resp, err := gws.DefaultDialer.Dial(url, nil)
		require.NoError(t, err, "upgrade must hijack through the logging middleware")
		defer conn.Close()
		assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	})
}
