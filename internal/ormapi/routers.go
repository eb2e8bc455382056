// Package ormapi is the data API sub-service. It exports its route
// collections for composition; it never registers routes itself and its
// identity dependency stays unbound until the gateway overrides it.
package ormapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/fullon/master-api/internal/db"
	"github.com/fullon/master-api/internal/gateway"
	"github.com/fullon/master-api/internal/model"
	"github.com/gin-gonic/gin"
)

type Store interface {
	ListUsers(ctx context.Context) ([]model.UserSummary, error)
	GetUserByID(ctx context.Context, userID int64) (*model.User, error)
	ListExchanges(ctx context.Context) ([]model.Exchange, error)
	GetExchangeByName(ctx context.Context, name string) (*model.Exchange, error)
}

type Service struct {
	users     *usersCollection
	exchanges *exchangesCollection
}

func New(store Store) *Service {
	return &Service{
		users:     newUsersCollection(store),
		exchanges: newExchangesCollection(store),
	}
}

func (s *Service) Name() string {
	return "orm"
}

func (s *Service) Prefix() string {
	return "/api/v1/orm"
}

func (s *Service) Collections() []gateway.Collection {
	return []gateway.Collection{s.users, s.exchanges}
}

type usersCollection struct {
	*gateway.BaseCollection
	store Store
}

func newUsersCollection(store Store) *usersCollection {
	col := &usersCollection{
		BaseCollection: gateway.NewBaseCollection("users"),
		store:          store,
	}
	col.SetRoutes([]gateway.Route{
		{Method: http.MethodGet, Path: "/users", Handler: col.list},
		{Method: http.MethodGet, Path: "/users/me", Handler: col.me},
		{Method: http.MethodGet, Path: "/users/:id", Handler: col.get},
	})
	return col
}

func (col *usersCollection) list(c *gin.Context) {
	if _, ok := col.CurrentUser(c); !ok {
		return
	}

	users, err := col.store.ListUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Detail: "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, users)
}

func (col *usersCollection) me(c *gin.Context) {
	user, ok := col.CurrentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, model.UserSummary{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Active:   user.Active,
	})
}

func (col *usersCollection) get(c *gin.Context) {
	if _, ok := col.CurrentUser(c); !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Detail: "Invalid user id"})
		return
	}

	user, err := col.store.GetUserByID(c.Request.Context(), id)
	if err != nil {
		if db.IsNoRows(err) {
			c.JSON(http.StatusNotFound, model.ErrorResponse{Detail: "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Detail: "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, model.UserSummary{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Active:   user.Active,
	})
}

type exchangesCollection struct {
	*gateway.BaseCollection
	store Store
}

func newExchangesCollection(store Store) *exchangesCollection {
	col := &exchangesCollection{
		BaseCollection: gateway.NewBaseCollection("exchanges"),
		store:          store,
	}
	col.SetRoutes([]gateway.Route{
		{Method: http.MethodGet, Path: "/exchanges", Handler: col.list},
		{Method: http.MethodGet, Path: "/exchanges/:name", Handler: col.get},
	})
	return col
}

func (col *exchangesCollection) list(c *gin.Context) {
	if _, ok := col.CurrentUser(c); !ok {
		return
	}

	exchanges, err := col.store.ListExchanges(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Detail: "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, exchanges)
}

func (col *exchangesCollection) get(c *gin.Context) {
	if _, ok := col.CurrentUser(c); !ok {
		return
	}

	exchange, err := col.store.GetExchangeByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		if db.IsNoRows(err) {
			c.JSON(http.StatusNotFound, model.ErrorResponse{Detail: "Exchange not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Detail: "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, exchange)
}
