package handler

import (
	"context"
	"net/http"

	"github.com/fullon/master-api/internal/model"
	"github.com/fullon/master-api/internal/service"
	"github.com/gin-gonic/gin"
)

const (
	serviceName    = "fullon-master-api"
	serviceVersion = "1.0.0"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db      Pinger
	manager *service.ServiceManager
}

func NewHealthHandler(db Pinger, manager *service.ServiceManager) *HealthHandler {
	return &HealthHandler{db: db, manager: manager}
}

// Health godoc
// @Summary Gateway health check
// @Tags health
// @Produce json
// @Success 200 {object} model.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	res := model.HealthResponse{
		Status:   "healthy",
		Version:  serviceVersion,
		Service:  serviceName,
		Database: "ok",
	}

	if h.db == nil {
		res.Database = "not configured"
	} else if err := h.db.Ping(c.Request.Context()); err != nil {
		res.Status = "degraded"
		res.Database = "unreachable"
	}

	if h.manager != nil {
		res.Services = h.manager.StatusAll()
	}

	c.JSON(http.StatusOK, res)
}

// Root godoc
// @Summary Service descriptor
// @Tags health
// @Produce json
// @Success 200 {object} model.RootResponse
// @Router / [get]
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, model.RootResponse{
		Service: serviceName,
		Version: serviceVersion,
		Docs:    "/docs",
		Health:  "/health",
		API:     "/api/v1",
	})
}
