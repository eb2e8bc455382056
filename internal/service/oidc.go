package service

import (
	"context"
	"fmt"
	"log"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/fullon/master-api/internal/config"
	"golang.org/x/oauth2"
)

// OIDCService handles the optional federated login flow against an
// external identity provider. The provider only authenticates; the
// gateway still issues its own access tokens.
type OIDCService struct {
	verifier *oidc.IDTokenVerifier
	oauth    oauth2.Config
}

func NewOIDCService(ctx context.Context, cfg config.OIDCConfig) (*OIDCService, error) {
	if cfg.Issuer == "" {
		return nil, fmt.Errorf("%w: OIDC_ISSUER is required", ErrMisconfigured)
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RedirectURL == "" {
		return nil, fmt.Errorf("%w: OIDC_CLIENT_ID/OIDC_CLIENT_SECRET/OIDC_REDIRECT_URL are required", ErrMisconfigured)
	}

	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}

	log.Printf("OIDC provider configured: issuer=%s", cfg.Issuer)

	return &OIDCService{
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}

// AuthCodeURL builds the provider redirect for the given state nonce.
func (s *OIDCService) AuthCodeURL(state string) string {
	return s.oauth.AuthCodeURL(state)
}

// Exchange redeems an authorization code, verifies the ID token, and
// returns the asserted email address.
func (s *OIDCService) Exchange(ctx context.Context, code string) (string, error) {
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		log.Printf("OIDC code exchange failed: error=%v", err)
		return "", ErrUnauthorized
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		log.Printf("OIDC token response missing id_token")
		return "", ErrUnauthorized
	}

	idToken, err := s.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		log.Printf("OIDC id_token verification failed: error=%v", err)
		return "", ErrUnauthorized
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
	}
	if err := idToken.Claims(&claims); err != nil || claims.Email == "" {
		log.Printf("OIDC id_token missing email claim")
		return "", ErrUnauthorized
	}

	return claims.Email, nil
}
