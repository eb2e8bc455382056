package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/fullon/master-api/internal/model"
	"github.com/fullon/master-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	authUserKey  = "auth_user"
	requestIDKey = "request_id"

	apiKeyHeader    = "X-API-Key"
	requestIDHeader = "X-Request-ID"
)

// DefaultPublicPaths are skipped by the authentication middleware.
// Entries ending in "*" match by prefix.
func DefaultPublicPaths() []string {
	return []string{
		"/",
		"/health",
		"/openapi.json",
		"/docs",
		"/api/v1/auth/login",
		"/api/v1/auth/verify",
		"/api/v1/auth/oidc/*",
	}
}

// AuthMiddleware is the authentication stage: it resolves an identity
// from the bearer token (or the API key fallback) and attaches it to
// the request, or attaches nothing. It never rejects on its own, so
// optional-auth routes stay possible; requiring an identity is the
// resolver stage's job.
func AuthMiddleware(auth *service.AuthService, keys *service.APIKeyValidator, publicPaths []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		if isPublicPath(c.Request.URL.Path, publicPaths) {
			c.Next()
			return
		}

		if token := bearerToken(c); token != "" {
			user, err := auth.ResolveAccessToken(c.Request.Context(), token)
			if err == nil {
				c.Set(authUserKey, user)
				c.Next()
				return
			}
			if !errors.Is(err, service.ErrUnauthorized) {
				log.Printf("Token resolution failed: path=%s error=%v", c.Request.URL.Path, err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, model.ErrorResponse{Detail: "Internal server error"})
				return
			}
		}

		if key := c.GetHeader(apiKeyHeader); key != "" {
			user, err := keys.Validate(c.Request.Context(), key)
			if err != nil {
				// Integrity and storage failures are server-side
				// defects, never a client 401.
				log.Printf("API key validation error: path=%s error=%v", c.Request.URL.Path, err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, model.ErrorResponse{Detail: "Internal server error"})
				return
			}
			if user != nil {
				c.Set(authUserKey, user)
			}
		}

		c.Next()
	}
}

// GetAuthUser returns the identity attached by AuthMiddleware, or nil.
func GetAuthUser(c *gin.Context) *model.AuthUser {
	if value, ok := c.Get(authUserKey); ok {
		if user, ok := value.(*model.AuthUser); ok {
			return user
		}
	}
	return nil
}

// CurrentUser is the resolver stage and the gateway's identity
// dependency: the single point that turns an absent identity into an
// authentication failure. Sub-service collections are rebound to it at
// composition time.
func CurrentUser(c *gin.Context) (*model.AuthUser, error) {
	if user := GetAuthUser(c); user != nil {
		return user, nil
	}
	return nil, service.ErrUnauthorized
}

// RequireUser resolves the current user or writes the uniform 401.
func RequireUser(c *gin.Context) *model.AuthUser {
	user, err := CurrentUser(c)
	if err != nil {
		c.Header("WWW-Authenticate", "Bearer")
		c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{Detail: "Not authenticated"})
		return nil
	}
	return user
}

// RequireAdmin resolves the current user and enforces the admin flag.
func RequireAdmin(c *gin.Context) *model.AuthUser {
	user := RequireUser(c)
	if user == nil {
		return nil
	}
	if !user.Admin {
		c.AbortWithStatusJSON(http.StatusForbidden, model.ErrorResponse{Detail: "Admin privileges required"})
		return nil
	}
	return user
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func isPublicPath(path string, publicPaths []string) bool {
	for _, public := range publicPaths {
		if strings.HasSuffix(public, "*") {
			if strings.HasPrefix(path, strings.TrimSuffix(public, "*")) {
				return true
			}
			continue
		}
		if path == public {
			return true
		}
	}
	return false
}

// RequestIDMiddleware tags every request with an id for log correlation.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(requestIDHeader, requestID)
		c.Next()
	}
}

func CORSMiddleware(allowedOrigins []string, allowCredentials bool) gin.HandlerFunc {
	originMap := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		originMap[trimmed] = struct{}{}
	}
	_, allowAny := originMap["*"]

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			_, ok := originMap[origin]
			if ok || allowAny {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
				if allowCredentials {
					c.Header("Access-Control-Allow-Credentials", "true")
				}
				c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-API-Key, X-Request-ID")
				c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
