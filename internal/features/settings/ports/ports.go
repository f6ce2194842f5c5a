package ports

import (
	"context"

	"postnet-delivery/internal/features/settings/domain"
)

// SettingsService defines the primary port for the merchant configuration.
type SettingsService interface {
	Get(ctx context.Context) (domain.Settings, error)
	Save(ctx context.Context, in domain.Input) (domain.Settings, error)
}

// SettingsRepository defines the secondary port for settings storage.
type SettingsRepository interface {
	// Get returns the stored record, or domain.Default() when nothing was saved.
	Get(ctx context.Context) (domain.Settings, error)
	Save(ctx context.Context, s domain.Settings) error
}

// StoreEmailLookup resolves the contact email of a PostNet store.
type StoreEmailLookup interface {
	StoreEmail(ctx context.Context, code string) (string, error)
}
