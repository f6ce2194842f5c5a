package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"postnet-delivery/internal/core/cache"
	"postnet-delivery/internal/core/logger"
	"postnet-delivery/internal/core/metrics"
	"postnet-delivery/internal/features/stores/domain"
	"postnet-delivery/internal/features/stores/ports"

	"go.uber.org/zap"
)

// StoresCacheKey holds the cached full store list.
const StoresCacheKey = "woocommerce_postnet_delivery_stores"

// StoreServiceImpl implements ports.StoreService.
type StoreServiceImpl struct {
	directory ports.Directory
	cache     cache.Cache
	ttl       time.Duration
}

// NewStoreService creates a new StoreServiceImpl caching the full list for ttl.
func NewStoreService(directory ports.Directory, c cache.Cache, ttl time.Duration) *StoreServiceImpl {
	return &StoreServiceImpl{
		directory: directory,
		cache:     c,
		ttl:       ttl,
	}
}

// ListStores returns the stores near address when the address is complete and
// the locator answers, otherwise the full list.
func (s *StoreServiceImpl) ListStores(ctx context.Context, address domain.Address) ([]domain.Store, error) {
	if address.Complete() {
		stores, err := s.directory.Locate(ctx, address.String())
		switch {
		case err != nil:
			metrics.StoreDirectoryRequests.WithLabelValues("locate", "error").Inc()
			logger.Get().Warn("Store locator failed, falling back to full list", zap.Error(err))
		case len(stores) == 0:
			metrics.StoreDirectoryRequests.WithLabelValues("locate", "empty").Inc()
		default:
			metrics.StoreDirectoryRequests.WithLabelValues("locate", "ok").Inc()
			return stores, nil
		}
	}

	return s.allStores(ctx)
}

// StoreDetails returns one store, from the details endpoint when configured,
// otherwise from the full list.
func (s *StoreServiceImpl) StoreDetails(ctx context.Context, code string) (*domain.StoreDetail, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: empty code", domain.ErrStoreNotFound)
	}

	detail, err := s.directory.Details(ctx, code)
	if err == nil {
		metrics.StoreDirectoryRequests.WithLabelValues("details", "ok").Inc()
		return detail, nil
	}
	if !errors.Is(err, domain.ErrNoDetailsEndpoint) {
		metrics.StoreDirectoryRequests.WithLabelValues("details", "error").Inc()
		return nil, err
	}

	stores, err := s.allStores(ctx)
	if err != nil {
		return nil, err
	}
	store, ok := domain.FindByCode(stores, code)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrStoreNotFound, code)
	}
	return &domain.StoreDetail{Store: store}, nil
}

// StoreEmail returns the email of the store with code.
func (s *StoreServiceImpl) StoreEmail(ctx context.Context, code string) (string, error) {
	stores, err := s.allStores(ctx)
	if err != nil {
		return "", err
	}
	store, ok := domain.FindByCode(stores, code)
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrStoreNotFound, code)
	}
	return store.Email, nil
}

// allStores serves the full list from the cache, refreshing it on a miss.
func (s *StoreServiceImpl) allStores(ctx context.Context) ([]domain.Store, error) {
	data, err := s.cache.Get(ctx, StoresCacheKey)
	if err == nil {
		stores, derr := domain.DecodeList(data)
		if derr == nil && len(stores) > 0 {
			metrics.StoreDirectoryRequests.WithLabelValues("list", "cache_hit").Inc()
			return stores, nil
		}
		logger.Get().Warn("Discarding unusable store list cache entry", zap.Error(derr))
	} else if !errors.Is(err, cache.ErrNotFound) {
		logger.Get().Warn("Store list cache read failed", zap.Error(err))
	}

	stores, err := s.directory.FetchAll(ctx)
	if err != nil {
		metrics.StoreDirectoryRequests.WithLabelValues("list", "error").Inc()
		return nil, err
	}
	metrics.StoreDirectoryRequests.WithLabelValues("list", "ok").Inc()

	if len(stores) > 0 {
		if data, err := json.Marshal(stores); err == nil {
			if err := s.cache.Set(ctx, StoresCacheKey, data, s.ttl); err != nil {
				logger.Get().Warn("Store list cache write failed", zap.Error(err))
			}
		}
	}
	return stores, nil
}
