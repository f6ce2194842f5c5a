package ports

import (
	"context"

	"postnet-delivery/internal/features/maps/domain"
)

// KeyValidator checks a maps API key against the provider.
// This is a Secondary Port (Driven Port).
type KeyValidator interface {
	ValidateKey(ctx context.Context, apiKey string) (domain.KeyValidation, error)
}
