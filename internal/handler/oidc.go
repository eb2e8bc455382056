package handler

import (
	"net/http"

	"github.com/fullon/master-api/internal/model"
	"github.com/fullon/master-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const oidcStateCookie = "fullon_oidc_state"

type OIDCHandler struct {
	oidc *service.OIDCService
	auth *service.AuthService
}

func NewOIDCHandler(oidc *service.OIDCService, auth *service.AuthService) *OIDCHandler {
	return &OIDCHandler{oidc: oidc, auth: auth}
}

// Login godoc
// @Summary Start the OIDC login flow
// @Tags auth
// @Success 302
// @Router /api/v1/auth/oidc/login [get]
func (h *OIDCHandler) Login(c *gin.Context) {
	state := uuid.NewString()
	c.SetCookie(oidcStateCookie, state, 300, "/", "", false, true)
	c.Redirect(http.StatusFound, h.oidc.AuthCodeURL(state))
}

// Callback godoc
// @Summary Complete the OIDC login flow
// @Description Exchanges the authorization code and returns a gateway access token.
// @Tags auth
// @Produce json
// @Param code query string true "Authorization code"
// @Param state query string true "State nonce"
// @Success 200 {object} model.TokenResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /api/v1/auth/oidc/callback [get]
func (h *OIDCHandler) Callback(c *gin.Context) {
	state, err := c.Cookie(oidcStateCookie)
	if err != nil || state == "" || c.Query("state") != state {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Detail: "Invalid credentials"})
		return
	}
	c.SetCookie(oidcStateCookie, "", -1, "/", "", false, true)

	email, err := h.oidc.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		writeAuthError(c, err)
		return
	}

	token, expiresIn, err := h.auth.IssueForEmail(c.Request.Context(), email)
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
