package model

import "time"

type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type VerifyResponse struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

// AuthUser is the authenticated identity attached to a request.
// It carries only what route handlers need, never the password hash.
type AuthUser struct {
	ID       int64
	Username string
	Email    string
	Admin    bool
	Active   bool
}

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Admin        bool
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// APIKey is a long-lived opaque credential owned by a user. Created
// out-of-band; the gateway only reads it and advances LastUsedAt.
type APIKey struct {
	ID         int64
	UserID     int64
	Key        string
	Active     bool
	ExpiresAt  *time.Time
	LastUsedAt *time.Time
	CreatedAt  time.Time
}
