package handler

import (
	"errors"
	"net/http"

	"github.com/fullon/master-api/internal/model"
	"github.com/fullon/master-api/internal/service"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc    *service.AuthService
	tokens *service.TokenService
}

func NewAuthHandler(svc *service.AuthService, tokens *service.TokenService) *AuthHandler {
	return &AuthHandler{svc: svc, tokens: tokens}
}

// Login godoc
// @Summary Authenticate and obtain an access token
// @Description Accepts JSON or form-encoded username/password.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "Username (or email) and password"
// @Success 200 {object} model.TokenResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Detail: "Invalid request"})
		return
	}

	token, expiresIn, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   expiresIn,
	})
}

// Verify godoc
// @Summary Verify a bearer token
// @Description Returns the identity claims for a valid token.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.VerifyResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /api/v1/auth/verify [get]
func (h *AuthHandler) Verify(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.Header("WWW-Authenticate", "Bearer")
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Detail: "Not authenticated"})
		return
	}

	user, err := h.tokens.Verify(token)
	if err != nil {
		c.Header("WWW-Authenticate", "Bearer")
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Detail: "Invalid or expired credential"})
		return
	}

	c.JSON(http.StatusOK, model.VerifyResponse{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		IsActive: user.Active,
	})
}

// Me godoc
// @Summary Get the current authenticated user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.MeResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user := RequireUser(c)
	if user == nil {
		return
	}
	c.JSON(http.StatusOK, model.MeResponse{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		IsAdmin:  user.Admin,
	})
}

func writeAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Detail: "Invalid request"})
	case errors.Is(err, service.ErrUnauthorized):
		c.Header("WWW-Authenticate", "Bearer")
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Detail: "Invalid credentials"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, model.ErrorResponse{Detail: "Admin privileges required"})
	default:
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Detail: "Internal server error"})
	}
}
