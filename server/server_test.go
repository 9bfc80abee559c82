package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/widgetkit/component"
	"github.com/kbukum/widgetkit/errors"
	"github.com/kbukum/widgetkit/logger"
)

func newTestServer(t *testing.T, checker func(context.Context) []component.Health) *Server {
	t.Helper()
	cfg := Config{Addr: "127.0.0.1:0"}
	cfg.ApplyDefaults()
	s := New(cfg, logger.Nop())
	s.ApplyDefaults("widgetd", checker)
	return s
}

func TestHealthAggregatesComponents(t *testing.T) {
	status := component.StatusHealthy
	s := newTestServer(t, func(context.Context) []component.Health {
		return []component.Health{{Name: "sse", Status: status}}
	})

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Fatalf("healthy: %d", rr.Code)
	}

	status = component.StatusUnhealthy
	rr = httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("unhealthy: %d", rr.Code)
	}
}

func TestVersionEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/version", http.NoBody))

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["version"] == "" || body["version"] == nil {
		t.Errorf("body = %v", body)
	}
}

func TestRespondWithError(t *testing.T) {
	s := newTestServer(t, nil)
	s.Engine().GET("/missing", func(c *gin.Context) { RespondWithError(c, errors.NotFound("widget", "lock9")) })
	s.Engine().GET("/plain", func(c *gin.Context) { RespondWithError(c, stderrors.New("boom")) })

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/missing", http.NoBody))
	if rr.Code != http.StatusNotFound {
		t.Errorf("app error status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/plain", http.NoBody))
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("plain error status = %d", rr.Code)
	}
}

func TestStartStop(t *testing.T) {
	s := newTestServer(t, nil)
	c := NewComponent(s)
	ctx := context.Background()

	if h := c.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("health before start = %s", h.Status)
	}
	if err := c.Start(ctx); err != nil {
		t.Fatal(err)
	}
	resp, err := http.Get("http://" + s.Addr() + "/version")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if h := c.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("health after start = %s", h.Status)
	}
	if err := c.Stop(ctx); err != nil {
		t.Fatal(err)
	}
}
