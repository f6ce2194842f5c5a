package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	"postnet-delivery/internal/core/cache"

	"github.com/google/uuid"
)

// ErrInvalidNonce is returned when a token is unknown, expired or issued for another action.
var ErrInvalidNonce = errors.New("invalid nonce")

// Well-known nonce actions.
const (
	ActionDelivery          = "wc_postnet_delivery_nonce"
	ActionCSV               = "postnet_delivery_action"
	ActionConfigureShipping = "configure_shipping_options_nonce"
	ActionGoogleKey         = "validate_google_api_key_nonce"
)

// Nonces issues and verifies action-scoped tokens stored in the cache.
// A token stays valid for the whole TTL and may be verified repeatedly.
type Nonces struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewNonces creates a nonce store.
func NewNonces(c cache.Cache, ttl time.Duration) *Nonces {
	return &Nonces{cache: c, ttl: ttl}
}

func nonceKey(action, token string) string {
	return fmt.Sprintf("nonce:%s:%s", action, token)
}

// Create issues a fresh token bound to action.
func (n *Nonces) Create(ctx context.Context, action string) (string, error) {
	token := uuid.NewString()
	if err := n.cache.Set(ctx, nonceKey(action, token), []byte(action), n.ttl); err != nil {
		return "", fmt.Errorf("failed to store nonce: %w", err)
	}
	return token, nil
}

// Verify checks that token was issued for action and has not expired.
func (n *Nonces) Verify(ctx context.Context, action, token string) error {
	if token == "" {
		return ErrInvalidNonce
	}
	if _, err := uuid.Parse(token); err != nil {
		return ErrInvalidNonce
	}

	val, err := n.cache.Get(ctx, nonceKey(action, token))
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return ErrInvalidNonce
		}
		return fmt.Errorf("failed to read nonce: %w", err)
	}
	if string(val) != action {
		return ErrInvalidNonce
	}
	return nil
}
