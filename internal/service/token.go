package service

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/fullon/master-api/internal/config"
	"github.com/fullon/master-api/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

// TokenService issues and verifies the gateway's signed access tokens.
// It holds the process-wide signing key and is read-only after construction.
type TokenService struct {
	secret    []byte
	accessTTL time.Duration
	now       func() time.Time
}

type accessClaims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Admin    bool   `json:"admin"`
	Active   bool   `json:"active"`
	jwt.RegisteredClaims
}

func NewTokenService(cfg config.AuthConfig) (*TokenService, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("%w: JWT_SECRET_KEY is required", ErrMisconfigured)
	}

	accessTTL, err := time.ParseDuration(cfg.JWTAccessTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JWT_ACCESS_TTL", ErrMisconfigured)
	}

	return &TokenService{
		secret:    []byte(cfg.JWTSecret),
		accessTTL: accessTTL,
		now:       time.Now,
	}, nil
}

// Issue signs an access token for the user with the configured TTL.
// Returns the token and its lifetime in seconds.
func (s *TokenService) Issue(user *model.User) (string, int64, error) {
	now := s.now()
	claims := accessClaims{
		Username: user.Username,
		Email:    user.Email,
		Admin:    user.Admin,
		Active:   user.Active,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", 0, err
	}

	return signed, int64(s.accessTTL.Seconds()), nil
}

// AccessTTL reports the configured token lifetime.
func (s *TokenService) AccessTTL() time.Duration {
	return s.accessTTL
}

// Verify checks signature and expiry and returns the identity the token
// encodes. The failure mode (malformed, bad signature, expired, missing
// claim) is logged but never exposed: callers always get ErrUnauthorized
// so responses cannot be used as a verification oracle.
func (s *TokenService) Verify(tokenStr string) (*model.AuthUser, error) {
	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnauthorized
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		log.Printf("Token verification failed: reason=%s", verifyFailureReason(err))
		return nil, ErrUnauthorized
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || claims.Subject == "" {
		log.Printf("Token verification failed: reason=missing_claim")
		return nil, ErrUnauthorized
	}

	return &model.AuthUser{
		ID:       userID,
		Username: claims.Username,
		Email:    claims.Email,
		Admin:    claims.Admin,
		Active:   claims.Active,
	}, nil
}

func verifyFailureReason(err error) string {
	switch {
	case err == nil:
		return "invalid"
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "bad_signature"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	default:
		return "invalid"
	}
}
