package ormapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fullon/master-api/internal/gateway"
	"github.com/fullon/master-api/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

type fakeStore struct {
	users     map[int64]*model.User
	exchanges map[string]*model.Exchange
}

func (f *fakeStore) ListUsers(context.Context) ([]model.UserSummary, error) {
	summaries := make([]model.UserSummary, 0, len(f.users))
	for _, user := range f.users {
		summaries = append(summaries, model.UserSummary{ID: user.ID, Username: user.Username, Email: user.Email, Active: user.Active})
	}
	return summaries, nil
}

func (f *fakeStore) GetUserByID(_ context.Context, userID int64) (*model.User, error) {
	if user, ok := f.users[userID]; ok {
		return user, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeStore) ListExchanges(context.Context) ([]model.Exchange, error) {
	exchanges := make([]model.Exchange, 0, len(f.exchanges))
	for _, ex := range f.exchanges {
		exchanges = append(exchanges, *ex)
	}
	return exchanges, nil
}

func (f *fakeStore) GetExchangeByName(_ context.Context, name string) (*model.Exchange, error) {
	if ex, ok := f.exchanges[name]; ok {
		return ex, nil
	}
	return nil, pgx.ErrNoRows
}

func newMountedRouter(t *testing.T, resolver gateway.IdentityResolver) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := &fakeStore{
		users: map[int64]*model.User{
			7: {ID: 7, Username: "alice", Email: "alice@example.com", Active: true},
		},
		exchanges: map[string]*model.Exchange{
			"kraken": {ID: 1, Name: "kraken", Active: true},
		},
	}

	router := gin.New()
	gateway.NewComposer(resolver).Mount(router, New(store))
	return router
}

func authResolver(*gin.Context) (*model.AuthUser, error) {
	return &model.AuthUser{ID: 7, Username: "alice", Email: "alice@example.com"}, nil
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRoutesServeUnderServicePrefix(t *testing.T) {
	router := newMountedRouter(t, authResolver)

	for _, path := range []string{
		"/api/v1/orm/users",
		"/api/v1/orm/users/me",
		"/api/v1/orm/users/7",
		"/api/v1/orm/exchanges",
		"/api/v1/orm/exchanges/kraken",
	} {
		if rec := get(router, path); rec.Code != http.StatusOK {
			t.Fatalf("GET %s = %d, body = %s", path, rec.Code, rec.Body.String())
		}
	}

	if rec := get(router, "/users"); rec.Code != http.StatusNotFound {
		t.Fatalf("unprefixed route should not exist, got %d", rec.Code)
	}
}

func TestMeReflectsResolvedIdentity(t *testing.T) {
	router := newMountedRouter(t, authResolver)

	rec := get(router, "/api/v1/orm/users/me")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body model.UserSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.ID != 7 || body.Username != "alice" {
		t.Fatalf("unexpected identity: %+v", body)
	}
}

func TestUnknownLookupsReturnNotFound(t *testing.T) {
	router := newMountedRouter(t, authResolver)

	if rec := get(router, "/api/v1/orm/users/999"); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown user = %d, want 404", rec.Code)
	}
	if rec := get(router, "/api/v1/orm/users/abc"); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad user id = %d, want 400", rec.Code)
	}
	if rec := get(router, "/api/v1/orm/exchanges/nowhere"); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown exchange = %d, want 404", rec.Code)
	}
}

func TestEveryRouteRequiresIdentity(t *testing.T) {
	deny := func(*gin.Context) (*model.AuthUser, error) {
		return nil, errors.New("no identity attached")
	}
	router := newMountedRouter(t, deny)

	for _, path := range []string{
		"/api/v1/orm/users",
		"/api/v1/orm/users/me",
		"/api/v1/orm/users/7",
		"/api/v1/orm/exchanges",
		"/api/v1/orm/exchanges/kraken",
	} {
		rec := get(router, path)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("GET %s = %d, want 401", path, rec.Code)
		}
		var body model.ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Detail != "Not authenticated" {
			t.Fatalf("GET %s detail = %q", path, body.Detail)
		}
	}
}
