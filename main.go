package main

import (
	"context"
	"log"
	"net"
	"strings"

	"github.com/fullon/master-api/internal/config"
	"github.com/fullon/master-api/internal/db"
	"github.com/fullon/master-api/internal/gateway"
	"github.com/fullon/master-api/internal/handler"
	"github.com/fullon/master-api/internal/ohlcvapi"
	"github.com/fullon/master-api/internal/ormapi"
	"github.com/fullon/master-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}
	cfg := config.Load()
	ctx := context.Background()

	database, err := db.NewPostgres(ctx, cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer database.Close()

	if err := database.EnsureAuthSchema(ctx); err != nil {
		log.Fatalf("Failed to ensure auth schema: %v", err)
	}
	if err := database.EnsureCatalogSchema(ctx); err != nil {
		log.Fatalf("Failed to ensure catalog schema: %v", err)
	}
	if err := database.EnsureOHLCVSchema(ctx); err != nil {
		log.Fatalf("Failed to ensure ohlcv schema: %v", err)
	}

	tokens, err := service.NewTokenService(cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to configure token service: %v", err)
	}
	auth := service.NewAuthService(database, tokens)
	keys := service.NewAPIKeyValidator(database)

	if cfg.Auth.AdminEmail != "" && cfg.Auth.AdminPassword != "" {
		if err := auth.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
			log.Fatalf("Failed to ensure admin user: %v", err)
		}
	} else {
		log.Printf("ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin bootstrap")
	}

	var oidcSvc *service.OIDCService
	if cfg.OIDC.Issuer != "" {
		oidcSvc, err = service.NewOIDCService(ctx, cfg.OIDC)
		if err != nil {
			log.Fatalf("Failed to configure OIDC: %v", err)
		}
	}

	manager := service.NewServiceManager("ticker", "ohlcv", "account")
	defer manager.StopAll()

	router := gin.Default()
	router.Use(handler.RequestIDMiddleware())
	router.Use(handler.CORSMiddleware(
		strings.Split(cfg.CORS.AllowedOrigins, ","),
		cfg.CORS.AllowCredentials == "true",
	))

	publicPaths := handler.DefaultPublicPaths()
	if cfg.Auth.PublicPaths != "" {
		for _, p := range strings.Split(cfg.Auth.PublicPaths, ",") {
			if p = strings.TrimSpace(p); p != "" {
				publicPaths = append(publicPaths, p)
			}
		}
	}
	router.Use(handler.AuthMiddleware(auth, keys, publicPaths))

	healthHandler := handler.NewHealthHandler(database, manager)
	router.GET("/", healthHandler.Root)
	router.GET("/health", healthHandler.Health)
	router.GET("/openapi.json", handler.OpenAPIDoc)
	router.GET("/docs", handler.DocsPage)

	api := router.Group("/api/v1")

	authHandler := handler.NewAuthHandler(auth, tokens)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/auth/verify", authHandler.Verify)
	api.GET("/auth/me", authHandler.Me)

	if oidcSvc != nil {
		oidcHandler := handler.NewOIDCHandler(oidcSvc, auth)
		api.GET("/auth/oidc/login", oidcHandler.Login)
		api.GET("/auth/oidc/callback", oidcHandler.Callback)
	}

	servicesHandler := handler.NewServicesHandler(manager)
	api.GET("/services", servicesHandler.List)
	api.GET("/services/:name/status", servicesHandler.Status)
	api.POST("/services/:name/start", servicesHandler.Start)
	api.POST("/services/:name/stop", servicesHandler.Stop)
	api.POST("/services/:name/restart", servicesHandler.Restart)

	composer := gateway.NewComposer(handler.CurrentUser)
	composer.Mount(router, ormapi.New(database), ohlcvapi.New(database))

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	log.Printf("Gateway listening: addr=%s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Server exited: %v", err)
	}
}
