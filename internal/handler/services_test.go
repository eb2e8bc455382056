package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fullon/master-api/internal/model"
	"github.com/fullon/master-api/internal/service"
	"github.com/gin-gonic/gin"
)

func newServicesRouter(t *testing.T) (*gin.Engine, *testEnv, *service.ServiceManager) {
	t.Helper()
	env := newTestEnv(t)

	manager := service.NewServiceManager("ticker", "ohlcv")
	t.Cleanup(manager.StopAll)

	h := NewServicesHandler(manager)
	api := env.router.Group("/api/v1")
	api.GET("/services", h.List)
	api.GET("/services/:name/status", h.Status)
	api.POST("/services/:name/start", h.Start)
	api.POST("/services/:name/stop", h.Stop)
	api.POST("/services/:name/restart", h.Restart)

	return env.router, env, manager
}

func TestServicesRequireAdmin(t *testing.T) {
	router, env, _ := newServicesRouter(t)
	user := env.store.seedUser(t, "alice", "alice@example.com", "password123", false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/services", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/services", nil)
	req.Header.Set("Authorization", "Bearer "+env.token(t, user))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin status = %d, want 403", rec.Code)
	}
}

func TestServicesLifecycleEndpoints(t *testing.T) {
	router, env, _ := newServicesRouter(t)
	admin := env.store.seedUser(t, "admin", "admin@example.com", "password123", true)
	headers := map[string]string{"Authorization": "Bearer " + env.token(t, admin)}

	do := func(method, path string) *httptest.ResponseRecorder {
		t.Helper()
		req := httptest.NewRequest(method, path, nil)
		for name, value := range headers {
			req.Header.Set(name, value)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodPost, "/api/v1/services/ticker/start")
	if rec.Code != http.StatusOK {
		t.Fatalf("start status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var state model.ServiceState
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !state.Running || state.Name != "ticker" {
		t.Fatalf("unexpected state after start: %+v", state)
	}

	rec = do(http.MethodGet, "/api/v1/services")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var states map[string]model.ServiceState
	if err := json.Unmarshal(rec.Body.Bytes(), &states); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !states["ticker"].Running || states["ohlcv"].Running {
		t.Fatalf("unexpected states: %+v", states)
	}

	rec = do(http.MethodPost, "/api/v1/services/ticker/stop")
	if rec.Code != http.StatusOK {
		t.Fatalf("stop status = %d", rec.Code)
	}

	rec = do(http.MethodGet, "/api/v1/services/ticker/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status status = %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if state.Running {
		t.Fatalf("ticker should be stopped: %+v", state)
	}

	rec = do(http.MethodPost, "/api/v1/services/bogus/start")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown service status = %d, want 400", rec.Code)
	}
}
