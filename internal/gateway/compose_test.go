package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fullon/master-api/internal/model"
	"github.com/gin-gonic/gin"
)

type stubService struct {
	name        string
	prefix      string
	collections []Collection
}

func (s *stubService) Name() string              { return s.name }
func (s *stubService) Prefix() string            { return s.prefix }
func (s *stubService) Collections() []Collection { return s.collections }

func newStubCollection(name string, paths ...string) *BaseCollection {
	col := NewBaseCollection(name)
	routes := make([]Route, 0, len(paths))
	for _, path := range paths {
		routes = append(routes, Route{Method: http.MethodGet, Path: path, Handler: func(c *gin.Context) {
			user, ok := col.CurrentUser(c)
			if !ok {
				return
			}
			c.JSON(http.StatusOK, gin.H{"username": user.Username})
		}})
	}
	col.SetRoutes(routes)
	return col
}

func grantingResolver(username string) IdentityResolver {
	return func(*gin.Context) (*model.AuthUser, error) {
		return &model.AuthUser{ID: 1, Username: username}, nil
	}
}

func serve(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestMountRebindsAndServesAllRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	orders := &stubService{
		name:   "orders",
		prefix: "/api/v1/orders",
		collections: []Collection{
			newStubCollection("orders", "/open", "/closed", "/history"),
		},
	}
	market := &stubService{
		name:   "market",
		prefix: "/api/v1/market",
		collections: []Collection{
			newStubCollection("market", "/candles", "/candles/latest", "/symbols", "/trades", "/trades/recent"),
		},
	}

	composer := NewComposer(grantingResolver("alice"))
	composer.Mount(router, orders, market)

	paths := []string{
		"/api/v1/orders/open",
		"/api/v1/orders/closed",
		"/api/v1/orders/history",
		"/api/v1/market/candles",
		"/api/v1/market/candles/latest",
		"/api/v1/market/symbols",
		"/api/v1/market/trades",
		"/api/v1/market/trades/recent",
	}
	for _, path := range paths {
		rec := serve(router, http.MethodGet, path)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s = %d, want 200", path, rec.Code)
		}
		var body struct {
			Username string `json:"username"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("GET %s decode: %v", path, err)
		}
		if body.Username != "alice" {
			t.Fatalf("GET %s resolved %q, want alice", path, body.Username)
		}
	}

	// Collection routes exist only under their service prefix.
	for _, path := range []string{"/open", "/api/v1/orders/candles", "/api/v1/market/open"} {
		if rec := serve(router, http.MethodGet, path); rec.Code != http.StatusNotFound {
			t.Fatalf("GET %s = %d, want 404", path, rec.Code)
		}
	}
}

func TestUnboundCollectionRejectsEveryRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	col := newStubCollection("orders", "/open")
	for _, rt := range col.Routes() {
		router.Handle(rt.Method, "/api/v1/orders"+rt.Path, rt.Handler)
	}

	rec := serve(router, http.MethodGet, "/api/v1/orders/open")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	var body model.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Detail != "Not authenticated" {
		t.Fatalf("detail = %q, want %q", body.Detail, "Not authenticated")
	}
}

// rejectingCollection refuses the resolver override; the composer must
// still mount it on its original, rejecting resolver.
type rejectingCollection struct {
	*BaseCollection
}

func (c *rejectingCollection) SetIdentityResolver(IdentityResolver) error {
	return fmt.Errorf("override not supported")
}

func TestOverrideFailureFailsClosed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	col := &rejectingCollection{BaseCollection: newStubCollection("legacy", "/items")}
	svc := &stubService{name: "legacy", prefix: "/api/v1/legacy", collections: []Collection{col}}

	composer := NewComposer(grantingResolver("alice"))
	composer.Mount(router, svc)

	// The route is reachable but its identity dependency was never
	// rebound, so it rejects instead of granting.
	rec := serve(router, http.MethodGet, "/api/v1/legacy/items")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestMountEmptyService(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	composer := NewComposer(grantingResolver("alice"))
	composer.Mount(router, &stubService{name: "empty", prefix: "/api/v1/empty"})

	if rec := serve(router, http.MethodGet, "/api/v1/empty"); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestSetIdentityResolverRejectsNil(t *testing.T) {
	col := NewBaseCollection("orders")
	if err := col.SetIdentityResolver(nil); err == nil {
		t.Fatal("nil resolver should be rejected")
	}
	if err := col.SetIdentityResolver(grantingResolver("alice")); err != nil {
		t.Fatalf("SetIdentityResolver: %v", err)
	}
}

func TestRoutesAreStableAcrossDiscovery(t *testing.T) {
	col := newStubCollection("orders", "/open", "/closed")
	first := col.Routes()
	second := col.Routes()
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("route counts = %d/%d, want 2/2", len(first), len(second))
	}
	for i := range first {
		if first[i].Method != second[i].Method || first[i].Path != second[i].Path {
			t.Fatalf("discovery not stable at index %d", i)
		}
	}
}
