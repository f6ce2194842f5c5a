package service

import (
	"context"
	"fmt"

	"postnet-delivery/internal/core/logger"
	"postnet-delivery/internal/features/settings/domain"
	"postnet-delivery/internal/features/settings/ports"

	"go.uber.org/zap"
)

// SettingsServiceImpl implements ports.SettingsService.
type SettingsServiceImpl struct {
	repo   ports.SettingsRepository
	stores ports.StoreEmailLookup
}

// NewSettingsService creates a new SettingsServiceImpl.
// stores may be nil, in which case the origin store email is left empty.
func NewSettingsService(repo ports.SettingsRepository, stores ports.StoreEmailLookup) *SettingsServiceImpl {
	return &SettingsServiceImpl{
		repo:   repo,
		stores: stores,
	}
}

// Get returns the current settings.
func (s *SettingsServiceImpl) Get(ctx context.Context) (domain.Settings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("service: failed to get settings: %w", err)
	}
	return settings, nil
}

// Save sanitises, validates and persists the submitted settings.
func (s *SettingsServiceImpl) Save(ctx context.Context, in domain.Input) (domain.Settings, error) {
	settings := in.Sanitize()

	if settings.OriginStore != "" && s.stores != nil {
		email, err := s.stores.StoreEmail(ctx, settings.OriginStore)
		if err != nil {
			logger.Get().Warn("Failed to resolve origin store email",
				zap.String("store_code", settings.OriginStore),
				zap.Error(err),
			)
		}
		settings.OriginStoreEmail = email
	}

	if err := settings.Validate(); err != nil {
		return domain.Settings{}, err
	}

	if err := s.repo.Save(ctx, settings); err != nil {
		return domain.Settings{}, fmt.Errorf("service: failed to save settings: %w", err)
	}

	logger.Get().Info("Settings saved",
		zap.Any("service_types", settings.ServiceTypes),
		zap.String("collection_type", string(settings.CollectionType)),
	)
	return settings, nil
}
