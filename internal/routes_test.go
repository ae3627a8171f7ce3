package internal

import (
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devicescan/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		AppName:           "devicescan",
		AppPort:           "0",
		Environment:       config.Test,
		LogLevel:          config.LogLevelDebug,
		ProviderTimeoutMs: 3000,
		UserAgent:         "devicescan/test",
	}
}

func newTestApplication(t *testing.T, cfg *config.Config) *Application {
	t.Helper()
	app, err := NewAppWithConfig(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Shutdown(t.Context()) })
	return app
}

func TestRoutesRegistered(t *testing.T) {
	app := newTestApplication(t, testConfig())

	want := map[string]string{
		"/api/v1/health":    fiber.MethodGet,
		"/api/v1/providers": fiber.MethodGet,
		"/api/v1/hash":      fiber.MethodPost,
		"/api/v1/scan":      fiber.MethodPost,
		"/api/v1/network":   fiber.MethodGet,
	}
	found := map[string]bool{}
	for _, route := range app.Server.GetRoutes(true) {
		if method, ok := want[route.Path]; ok && route.Method == method {
			found[route.Path] = true
		}
	}
	for path := range want {
		assert.Truef(t, found[path], "expected %s %s to be registered", want[path], path)
	}
}

func TestMountedRoutes(t *testing.T) {
	app := newTestApplication(t, testConfig())

	t.Run("health reports the default provider list", func(t *testing.T) {
		resp, err := app.Server.Test(httptest.NewRequest("GET", "/api/v1/health", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, float64(4), body["providers"])
	})

	t.Run("api routes allow cross origin requests", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/v1/hash", strings.NewReader(`{"sources":["C1","A1","G",8,16]}`))
		req.Header.Set("Origin", "https://shop.example")
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Server.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown routes return json errors", func(t *testing.T) {
		resp, err := app.Server.Test(httptest.NewRequest("GET", "/api/v1/missing", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, float64(fiber.StatusNotFound), body["code"])
	})
}

func TestLoadProviders(t *testing.T) {
	t.Run("defaults without a file", func(t *testing.T) {
		specs, err := LoadProviders(testConfig())
		require.NoError(t, err)
		assert.Len(t, specs, 4)
	})

	t.Run("reads the configured file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "providers.yaml")
		require.NoError(t, os.WriteFile(path, []byte("providers:\n  - name: trace\n    url: https://www.cloudflare.com/cdn-cgi/trace\n    type: text\n"), 0o600))

		cfg := testConfig()
		cfg.ProvidersFile = path
		app := newTestApplication(t, cfg)

		require.Len(t, app.Providers, 1)
		assert.Equal(t, "trace", app.Providers[0].Name)
	})

	t.Run("invalid file fails startup", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "providers.yaml")
		require.NoError(t, os.WriteFile(path, []byte("providers: []\n"), 0o600))

		cfg := testConfig()
		cfg.ProvidersFile = path
		_, err := NewAppWithConfig(cfg)
		assert.Error(t, err)
	})
}

func TestReloadGeoIP(t *testing.T) {
	t.Run("without a database reload is a no-op", func(t *testing.T) {
		app := newTestApplication(t, testConfig())
		assert.NoError(t, app.ReloadGeoIP())
	})

	t.Run("missing configured database keeps lookups disabled", func(t *testing.T) {
		cfg := testConfig()
		cfg.GeoDBPath = filepath.Join(t.TempDir(), "GeoLite2-City.mmdb")
		app := newTestApplication(t, cfg)

		assert.Nil(t, app.geoDB)
		assert.NoError(t, app.ReloadGeoIP())
	})
}
