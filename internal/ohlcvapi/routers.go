// Package ohlcvapi is the time-series API sub-service composed by the
// gateway. Same contract as ormapi: exported collections, identity
// dependency rebound at composition time.
package ohlcvapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/fullon/master-api/internal/db"
	"github.com/fullon/master-api/internal/gateway"
	"github.com/fullon/master-api/internal/model"
	"github.com/gin-gonic/gin"
)

const (
	defaultCandleLimit = 500
	maxCandleLimit     = 5000
	defaultTradeLimit  = 100
)

type Store interface {
	GetCandleRange(ctx context.Context, exchange, symbol string, from, to time.Time, limit int) ([]model.Candle, error)
	GetLatestCandle(ctx context.Context, exchange, symbol string) (*model.Candle, error)
	GetRecentTrades(ctx context.Context, exchange, symbol string, limit int) ([]model.Trade, error)
}

type Service struct {
	candles *candlesCollection
	trades  *tradesCollection
}

func New(store Store) *Service {
	return &Service{
		candles: newCandlesCollection(store),
		trades:  newTradesCollection(store),
	}
}

func (s *Service) Name() string {
	return "ohlcv"
}

func (s *Service) Prefix() string {
	return "/api/v1/ohlcv"
}

func (s *Service) Collections() []gateway.Collection {
	return []gateway.Collection{s.candles, s.trades}
}

type candlesCollection struct {
	*gateway.BaseCollection
	store Store
}

func newCandlesCollection(store Store) *candlesCollection {
	col := &candlesCollection{
		BaseCollection: gateway.NewBaseCollection("candles"),
		store:          store,
	}
	col.SetRoutes([]gateway.Route{
		{Method: http.MethodGet, Path: "/candles/:exchange/:symbol", Handler: col.rangeQuery},
		{Method: http.MethodGet, Path: "/candles/:exchange/:symbol/latest", Handler: col.latest},
	})
	return col
}

func (col *candlesCollection) rangeQuery(c *gin.Context) {
	if _, ok := col.CurrentUser(c); !ok {
		return
	}

	from, err := parseTimeParam(c.Query("from"), time.Time{})
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Detail: "Invalid 'from' timestamp"})
		return
	}
	to, err := parseTimeParam(c.Query("to"), time.Now().UTC())
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Detail: "Invalid 'to' timestamp"})
		return
	}
	limit := parseLimit(c.Query("limit"), defaultCandleLimit, maxCandleLimit)

	candles, err := col.store.GetCandleRange(c.Request.Context(), c.Param("exchange"), c.Param("symbol"), from, to, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Detail: "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, candles)
}

func (col *candlesCollection) latest(c *gin.Context) {
	if _, ok := col.CurrentUser(c); !ok {
		return
	}

	candle, err := col.store.GetLatestCandle(c.Request.Context(), c.Param("exchange"), c.Param("symbol"))
	if err != nil {
		if db.IsNoRows(err) {
			c.JSON(http.StatusNotFound, model.ErrorResponse{Detail: "No candles for symbol"})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Detail: "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, candle)
}

type tradesCollection struct {
	*gateway.BaseCollection
	store Store
}

func newTradesCollection(store Store) *tradesCollection {
	col := &tradesCollection{
		BaseCollection: gateway.NewBaseCollection("trades"),
		store:          store,
	}
	col.SetRoutes([]gateway.Route{
		{Method: http.MethodGet, Path: "/trades/:exchange/:symbol", Handler: col.recent},
	})
	return col
}

func (col *tradesCollection) recent(c *gin.Context) {
	if _, ok := col.CurrentUser(c); !ok {
		return
	}

	limit := parseLimit(c.Query("limit"), defaultTradeLimit, maxCandleLimit)
	trades, err := col.store.GetRecentTrades(c.Request.Context(), c.Param("exchange"), c.Param("symbol"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Detail: "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, trades)
}

func parseTimeParam(value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	return time.Parse(time.RFC3339, value)
}

func parseLimit(value string, fallback, max int) int {
	if value == "" {
		return fallback
	}
	limit, err := strconv.Atoi(value)
	if err != nil || limit <= 0 {
		return fallback
	}
	if limit > max {
		return max
	}
	return limit
}
