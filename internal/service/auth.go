package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/fullon/master-api/internal/db"
	"github.com/fullon/master-api/internal/model"
	"golang.org/x/crypto/bcrypt"
)

const (
	minUsernameLength = 3
	minPasswordLength = 8
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrIntegrity     = errors.New("credential integrity error")
	ErrMisconfigured = errors.New("auth config invalid")
)

// UserStore is the persistence capability the auth service consumes.
type UserStore interface {
	CreateUser(ctx context.Context, username, email, passwordHash string, admin bool) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, userID int64) (*model.User, error)
}

type AuthService struct {
	store  UserStore
	tokens *TokenService
}

func NewAuthService(store UserStore, tokens *TokenService) *AuthService {
	return &AuthService{store: store, tokens: tokens}
}

// EnsureAdmin creates the bootstrap admin account when it does not exist.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return fmt.Errorf("%w: ADMIN_EMAIL/ADMIN_PASSWORD are required", ErrMisconfigured)
	}

	_, err := s.store.GetUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !db.IsNoRows(err) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user, err := s.store.CreateUser(ctx, "admin", email, string(hash), true)
	if err != nil {
		return err
	}
	log.Printf("Bootstrap admin created: user_id=%d email=%s", user.ID, email)
	return nil
}

// Login verifies a username (or email) and password and issues an access
// token. Every credential failure collapses to ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, int64, error) {
	if err := validateLoginInput(username, password); err != nil {
		return "", 0, err
	}

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil && db.IsNoRows(err) && strings.Contains(username, "@") {
		user, err = s.store.GetUserByEmail(ctx, username)
	}
	if err != nil {
		if db.IsNoRows(err) {
			log.Printf("Login failed: reason=unknown_user username=%s", username)
			return "", 0, ErrUnauthorized
		}
		return "", 0, err
	}

	if !user.Active {
		log.Printf("Login failed: reason=inactive_user user_id=%d", user.ID)
		return "", 0, ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Printf("Login failed: reason=bad_password user_id=%d", user.ID)
		return "", 0, ErrUnauthorized
	}

	token, expiresIn, err := s.tokens.Issue(user)
	if err != nil {
		return "", 0, err
	}
	log.Printf("Login successful: user_id=%d username=%s", user.ID, user.Username)
	return token, expiresIn, nil
}

// IssueForEmail issues an access token for an already-authenticated
// external identity (the OIDC callback) matched to a local user by email.
func (s *AuthService) IssueForEmail(ctx context.Context, email string) (string, int64, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if db.IsNoRows(err) {
			log.Printf("Federated login failed: reason=unknown_email email=%s", email)
			return "", 0, ErrUnauthorized
		}
		return "", 0, err
	}
	if !user.Active {
		return "", 0, ErrUnauthorized
	}
	return s.tokens.Issue(user)
}

// ResolveAccessToken verifies a bearer token and loads the current user
// record it refers to. The token claims alone are never trusted as the
// identity for protected routes.
func (s *AuthService) ResolveAccessToken(ctx context.Context, tokenStr string) (*model.AuthUser, error) {
	claims, err := s.tokens.Verify(tokenStr)
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByID(ctx, claims.ID)
	if err != nil {
		if db.IsNoRows(err) {
			log.Printf("Token subject not found: user_id=%d", claims.ID)
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	return &model.AuthUser{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Admin:    user.Admin,
		Active:   user.Active,
	}, nil
}

func validateLoginInput(username, password string) error {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)

	if len(username) < minUsernameLength || len(username) > 128 {
		return ErrInvalidInput
	}
	if len(password) < minPasswordLength || len(password) > 128 {
		return ErrInvalidInput
	}
	return nil
}
