package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/s1natex/task-manager-api/internal/config"
	"github.com/s1natex/task-manager-api/internal/tasks"
)

func testConfig() config.Config {
	return config.Config{
		LogLevel: "info",
		Server: config.ServerConfig{
			Addr:            ":0",
			RequestTimeout:  5 * time.Second,
			ShutdownTimeout: time.Second,
		},
		Store:     config.StoreConfig{Backend: "memory"},
		RateLimit: config.RateLimitConfig{Burst: 1},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"*"}},
		Tracing:   config.TracingConfig{Exporter: "none", ServiceName: serviceName},
	}
}

func newTestRouter(t *testing.T, cfg config.Config) http.Handler {
	t.Helper()
	st, closeStore, err := newStore(context.Background(), cfg.Store)
	require.NoError(t, err)
	t.Cleanup(closeStore)

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	uc := tasks.NewUseCases(tasks.NewRepository(st))
	return newRouter(cfg, uc, noop.NewTracerProvider(), logger)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeTask(t *testing.T, rec *httptest.ResponseRecorder) tasks.TaskDTO {
	t.Helper()
	var dto tasks.TaskDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto), "body=%s", rec.Body.String())
	return dto
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(t, testConfig())

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	expected := `{"status":"ok"}`
	if got := string(bytes.TrimSpace(w.Body.Bytes())); got != expected {
		t.Errorf("expected body %s, got %s", expected, got)
	}
}

func TestRootEndpoint(t *testing.T) {
	r := newTestRouter(t, testConfig())

	rec := doJSON(t, r, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var info map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "running", info["status"])
	assert.Equal(t, serviceName, info["service"])
	assert.Equal(t, serviceVersion, info["version"])
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(t, testConfig())

	_ = doJSON(t, r, http.MethodGet, "/api/tasks", nil)
	rec := doJSON(t, r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="/api/tasks",status="200"}`)
}

func TestUnroutedRequestsAnswerJSON(t *testing.T) {
	r := newTestRouter(t, testConfig())

	rec := doJSON(t, r, http.MethodGet, "/api/nope", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.JSONEq(t, `{"error":"not found"}`, rec.Body.String())

	rec = doJSON(t, r, http.MethodPatch, "/api/tasks", map[string]any{"title": "x"})
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.JSONEq(t, `{"error":"method not allowed"}`, rec.Body.String())
}

func TestTaskLifecycleScenario(t *testing.T) {
	memory := testConfig()

	sqlite := testConfig()
	sqlite.Store = config.StoreConfig{
		Backend:    "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "tasks.db"),
	}

	for name, cfg := range map[string]config.Config{"memory": memory, "sqlite": sqlite} {
		t.Run(name, func(t *testing.T) {
			r := newTestRouter(t, cfg)

			rec := doJSON(t, r, http.MethodPost, "/api/tasks", map[string]any{
				"title": "Buy milk", "description": "2%", "isCompleted": false,
			})
			require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
			created := decodeTask(t, rec)
			require.NotEmpty(t, created.ID)
			require.NotZero(t, created.CreatedAt)

			rec = doJSON(t, r, http.MethodGet, "/api/tasks/"+created.ID, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, created, decodeTask(t, rec))

			rec = doJSON(t, r, http.MethodPut, "/api/tasks/"+created.ID, map[string]any{
				"title": "Buy milk", "description": "whole", "isCompleted": true,
			})
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			updated := decodeTask(t, rec)
			assert.Equal(t, created.ID, updated.ID)
			assert.Equal(t, created.CreatedAt, updated.CreatedAt)
			assert.Equal(t, "whole", updated.Description)
			assert.True(t, updated.IsCompleted)

			rec = doJSON(t, r, http.MethodGet, "/api/tasks", nil)
			require.Equal(t, http.StatusOK, rec.Code)
			var list []tasks.TaskDTO
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
			assert.Equal(t, []tasks.TaskDTO{updated}, list)

			rec = doJSON(t, r, http.MethodDelete, "/api/tasks/"+created.ID, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"message":"task deleted"}`, rec.Body.String())

			rec = doJSON(t, r, http.MethodGet, "/api/tasks/"+created.ID, nil)
			require.Equal(t, http.StatusNotFound, rec.Code)
			assert.JSONEq(t, `{"error":"task not found"}`, rec.Body.String())

			rec = doJSON(t, r, http.MethodPut, "/api/tasks/"+created.ID, map[string]any{
				"title": "again", "description": "", "isCompleted": false,
			})
			require.Equal(t, http.StatusNotFound, rec.Code)

			rec = doJSON(t, r, http.MethodGet, "/api/tasks", nil)
			assert.JSONEq(t, `[]`, rec.Body.String())
		})
	}
}

func TestRateLimitedRouter(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{RPS: 0.001, Burst: 1}
	r := newTestRouter(t, cfg)

	require.Equal(t, http.StatusOK, doJSON(t, r, http.MethodGet, "/api/tasks", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, doJSON(t, r, http.MethodGet, "/api/tasks", nil).Code)
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("WARN", &buf)

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
