package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"postnet-delivery/internal/core/cache"
	"postnet-delivery/internal/core/logger"
	"postnet-delivery/internal/features/orders/domain"
	"postnet-delivery/internal/features/orders/ports"

	"go.uber.org/zap"
)

const (
	zoneMethodsKey = "postnet:zone_methods"
	zoneMethodsTTL = 5 * time.Minute
)

// ShippingServiceImpl manages the delivery zone and resolves rate ids to titles.
type ShippingServiceImpl struct {
	zones ports.ZoneProvider
	cache cache.Cache
}

// NewShippingService creates a new ShippingServiceImpl.
func NewShippingService(zones ports.ZoneProvider, c cache.Cache) *ShippingServiceImpl {
	return &ShippingServiceImpl{
		zones: zones,
		cache: c,
	}
}

// ConfigureShipping makes sure the delivery zone exists, is limited to its
// country and carries one flat rate per title. Running it again changes nothing.
func (s *ShippingServiceImpl) ConfigureShipping(ctx context.Context, titles []string) (*domain.ConfigureResult, error) {
	zone, found, err := s.findZone(ctx)
	if err != nil {
		return nil, err
	}

	result := &domain.ConfigureResult{Added: []string{}}

	if !found {
		zone, err = s.zones.CreateZone(ctx, domain.ZoneName)
		if err != nil {
			return nil, fmt.Errorf("service: failed to create zone: %w", err)
		}
		if err := s.zones.SetZoneCountry(ctx, zone.ID, domain.ZoneCountry); err != nil {
			return nil, fmt.Errorf("service: failed to set zone location: %w", err)
		}
		result.ZoneCreated = true
		logger.Get().Info("Created shipping zone", zap.Int64("zone_id", zone.ID))
	}
	result.ZoneID = zone.ID

	methods, err := s.zones.ZoneMethods(ctx, zone.ID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list zone methods: %w", err)
	}

	existing := make(map[string]bool, len(methods))
	for _, m := range methods {
		existing[m.Title] = true
	}

	for _, title := range titles {
		if existing[title] {
			continue
		}
		if _, err := s.zones.AddFlatRate(ctx, zone.ID, title); err != nil {
			return nil, fmt.Errorf("service: failed to add %q: %w", title, err)
		}
		existing[title] = true
		result.Added = append(result.Added, title)
	}

	if err := s.cache.Delete(ctx, zoneMethodsKey); err != nil {
		logger.Get().Warn("Failed to invalidate zone methods cache", zap.Error(err))
	}

	logger.Get().Info("Shipping options configured",
		zap.Int64("zone_id", zone.ID),
		zap.Strings("added", result.Added),
	)
	return result, nil
}

// MethodTitle returns the title of the zone method whose rate id is methodKey.
func (s *ShippingServiceImpl) MethodTitle(ctx context.Context, methodKey string) (string, error) {
	methods, err := s.methods(ctx)
	if err != nil {
		return "", err
	}
	for _, m := range methods {
		if m.Key() == methodKey {
			return m.Title, nil
		}
	}
	return "", fmt.Errorf("%w: %s", domain.ErrMethodNotFound, methodKey)
}

// MethodKeyForTitle returns the rate id of the zone method titled title.
func (s *ShippingServiceImpl) MethodKeyForTitle(ctx context.Context, title string) (string, error) {
	methods, err := s.methods(ctx)
	if err != nil {
		return "", err
	}
	for _, m := range methods {
		if m.Title == title {
			return m.Key(), nil
		}
	}
	return "", fmt.Errorf("%w: %s", domain.ErrMethodNotFound, title)
}

func (s *ShippingServiceImpl) findZone(ctx context.Context) (domain.Zone, bool, error) {
	zones, err := s.zones.ListZones(ctx)
	if err != nil {
		return domain.Zone{}, false, fmt.Errorf("service: failed to list zones: %w", err)
	}
	for _, z := range zones {
		if z.Name == domain.ZoneName {
			return z, true, nil
		}
	}
	return domain.Zone{}, false, nil
}

// methods returns the delivery zone's methods, cached for a few minutes.
func (s *ShippingServiceImpl) methods(ctx context.Context) ([]domain.ShippingMethod, error) {
	data, err := s.cache.Get(ctx, zoneMethodsKey)
	if err == nil {
		var methods []domain.ShippingMethod
		if err := json.Unmarshal(data, &methods); err == nil {
			return methods, nil
		}
		logger.Get().Warn("Discarding undecodable zone methods cache entry")
	} else if !errors.Is(err, cache.ErrNotFound) {
		logger.Get().Warn("Zone methods cache read failed", zap.Error(err))
	}

	zone, found, err := s.findZone(ctx)
	if err != nil {
		return nil, err
	}

	methods := []domain.ShippingMethod{}
	if found {
		methods, err = s.zones.ZoneMethods(ctx, zone.ID)
		if err != nil {
			return nil, fmt.Errorf("service: failed to list zone methods: %w", err)
		}
	}

	if data, err := json.Marshal(methods); err == nil {
		if err := s.cache.Set(ctx, zoneMethodsKey, data, zoneMethodsTTL); err != nil {
			logger.Get().Warn("Zone methods cache write failed", zap.Error(err))
		}
	}
	return methods, nil
}
