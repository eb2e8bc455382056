package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/fullon/master-api/internal/db"
	"github.com/fullon/master-api/internal/model"
)

const minAPIKeyLength = 10

// APIKeyStore is the persistence capability the validator consumes.
type APIKeyStore interface {
	GetAPIKeyByKey(ctx context.Context, key string) (*model.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, keyID int64, usedAt time.Time) error
	GetUserByID(ctx context.Context, userID int64) (*model.User, error)
}

// APIKeyValidator resolves long-lived API keys to their owning user.
type APIKeyValidator struct {
	store APIKeyStore
	now   func() time.Time
}

func NewAPIKeyValidator(store APIKeyStore) *APIKeyValidator {
	return &APIKeyValidator{store: store, now: time.Now}
}

// Validate checks an API key and returns its owning identity.
// Ordinary rejections (unknown, inactive, expired key) return (nil, nil);
// a key whose owner record is missing returns ErrIntegrity so it surfaces
// as a server-side failure rather than a 401. The last-used timestamp is
// advanced only after every check passes, and a failure to record it does
// not fail the validation.
func (v *APIKeyValidator) Validate(ctx context.Context, key string) (*model.AuthUser, error) {
	if len(key) < minAPIKeyLength {
		log.Printf("API key rejected: reason=too_short length=%d", len(key))
		return nil, nil
	}

	apiKey, err := v.store.GetAPIKeyByKey(ctx, key)
	if err != nil {
		if db.IsNoRows(err) {
			log.Printf("API key rejected: reason=not_found key=%s", maskKey(key))
			return nil, nil
		}
		return nil, err
	}

	if !apiKey.Active {
		log.Printf("API key rejected: reason=inactive key=%s key_id=%d", maskKey(key), apiKey.ID)
		return nil, nil
	}

	now := v.now()
	if apiKey.ExpiresAt != nil && !apiKey.ExpiresAt.After(now) {
		log.Printf("API key rejected: reason=expired key=%s key_id=%d expires_at=%s",
			maskKey(key), apiKey.ID, apiKey.ExpiresAt.UTC().Format(time.RFC3339))
		return nil, nil
	}

	user, err := v.store.GetUserByID(ctx, apiKey.UserID)
	if err != nil {
		if db.IsNoRows(err) {
			log.Printf("API key owner missing: key=%s key_id=%d user_id=%d", maskKey(key), apiKey.ID, apiKey.UserID)
			return nil, fmt.Errorf("%w: api key %d references missing user %d", ErrIntegrity, apiKey.ID, apiKey.UserID)
		}
		return nil, err
	}

	if err := v.store.UpdateAPIKeyLastUsed(ctx, apiKey.ID, now); err != nil {
		log.Printf("Failed to update API key last_used_at: key_id=%d error=%v", apiKey.ID, err)
	}

	log.Printf("API key validated: key=%s key_id=%d user_id=%d", maskKey(key), apiKey.ID, user.ID)

	return &model.AuthUser{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Admin:    user.Admin,
		Active:   user.Active,
	}, nil
}

// maskKey keeps a short prefix for log correlation, never the full secret.
func maskKey(key string) string {
	if len(key) > 13 {
		key = key[:13]
	}
	return key + "***"
}
