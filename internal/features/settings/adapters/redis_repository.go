package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"postnet-delivery/internal/core/cache"
	"postnet-delivery/internal/features/settings/domain"
)

// OptionsKey is the key holding the settings record.
const OptionsKey = "wc_postnet_delivery_options"

// RedisSettingsRepository implements ports.SettingsRepository using the cache.
type RedisSettingsRepository struct {
	cache cache.Cache
}

// NewRedisSettingsRepository creates a new RedisSettingsRepository.
func NewRedisSettingsRepository(c cache.Cache) *RedisSettingsRepository {
	return &RedisSettingsRepository{
		cache: c,
	}
}

// Get retrieves the settings, falling back to the defaults when none are stored.
func (r *RedisSettingsRepository) Get(ctx context.Context) (domain.Settings, error) {
	data, err := r.cache.Get(ctx, OptionsKey)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return domain.Default(), nil
		}
		return domain.Settings{}, fmt.Errorf("failed to get settings from cache: %w", err)
	}

	s := domain.Default()
	if err := json.Unmarshal(data, &s); err != nil {
		return domain.Settings{}, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	if s.ServiceTypes == nil {
		s.ServiceTypes = []domain.ServiceType{}
	}

	return s, nil
}

// Save stores the settings without expiration.
func (r *RedisSettingsRepository) Save(ctx context.Context, s domain.Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := r.cache.Set(ctx, OptionsKey, data, 0); err != nil {
		return fmt.Errorf("failed to save settings to cache: %w", err)
	}

	return nil
}
