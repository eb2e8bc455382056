package handler

import (
	"log"
	"net/http"

	"github.com/fullon/master-api/internal/service"
	"github.com/gin-gonic/gin"
)

// ServicesHandler exposes admin-only control over the gateway's managed
// background services.
type ServicesHandler struct {
	manager *service.ServiceManager
}

func NewServicesHandler(manager *service.ServiceManager) *ServicesHandler {
	return &ServicesHandler{manager: manager}
}

// List godoc
// @Summary Status of all managed services
// @Tags services
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]model.ServiceState
// @Failure 401 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Router /api/v1/services [get]
func (h *ServicesHandler) List(c *gin.Context) {
	if RequireAdmin(c) == nil {
		return
	}
	c.JSON(http.StatusOK, h.manager.StatusAll())
}

// Status godoc
// @Summary Status of one managed service
// @Tags services
// @Produce json
// @Security BearerAuth
// @Param name path string true "Service name"
// @Success 200 {object} model.ServiceState
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Router /api/v1/services/{name}/status [get]
func (h *ServicesHandler) Status(c *gin.Context) {
	if RequireAdmin(c) == nil {
		return
	}
	state, err := h.manager.Status(c.Param("name"))
	if err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// Start godoc
// @Summary Start a managed service
// @Tags services
// @Produce json
// @Security BearerAuth
// @Param name path string true "Service name"
// @Success 200 {object} model.ServiceState
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Router /api/v1/services/{name}/start [post]
func (h *ServicesHandler) Start(c *gin.Context) {
	admin := RequireAdmin(c)
	if admin == nil {
		return
	}
	state, err := h.manager.Start(c.Param("name"))
	if err != nil {
		writeAuthError(c, err)
		return
	}
	log.Printf("Service started by admin: service=%s user_id=%d", c.Param("name"), admin.ID)
	c.JSON(http.StatusOK, state)
}

// Stop godoc
// @Summary Stop a managed service
// @Tags services
// @Produce json
// @Security BearerAuth
// @Param name path string true "Service name"
// @Success 200 {object} model.ServiceState
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Router /api/v1/services/{name}/stop [post]
func (h *ServicesHandler) Stop(c *gin.Context) {
	admin := RequireAdmin(c)
	if admin == nil {
		return
	}
	state, err := h.manager.Stop(c.Param("name"))
	if err != nil {
		writeAuthError(c, err)
		return
	}
	log.Printf("Service stopped by admin: service=%s user_id=%d", c.Param("name"), admin.ID)
	c.JSON(http.StatusOK, state)
}

// Restart godoc
// @Summary Restart a managed service
// @Tags services
// @Produce json
// @Security BearerAuth
// @Param name path string true "Service name"
// @Success 200 {object} model.ServiceState
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Router /api/v1/services/{name}/restart [post]
func (h *ServicesHandler) Restart(c *gin.Context) {
	admin := RequireAdmin(c)
	if admin == nil {
		return
	}
	state, err := h.manager.Restart(c.Param("name"))
	if err != nil {
		writeAuthError(c, err)
		return
	}
	log.Printf("Service restarted by admin: service=%s user_id=%d", c.Param("name"), admin.ID)
	c.JSON(http.StatusOK, state)
}
