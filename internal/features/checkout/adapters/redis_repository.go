package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"postnet-delivery/internal/core/cache"
	"postnet-delivery/internal/features/checkout/domain"
)

// SessionTTL matches the selection cookie lifetime.
const SessionTTL = domain.CookieMaxAge * time.Second

// RedisSessionRepository implements ports.SessionRepository using the cache.
type RedisSessionRepository struct {
	cache cache.Cache
}

// NewRedisSessionRepository creates a new RedisSessionRepository.
func NewRedisSessionRepository(c cache.Cache) *RedisSessionRepository {
	return &RedisSessionRepository{cache: c}
}

func sessionKey(id string) string {
	return "postnet:checkout_session:" + id
}

// Get loads a session.
func (r *RedisSessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	data, err := r.cache.Get(ctx, sessionKey(id))
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("repository: failed to get session: %w", err)
	}

	var s domain.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("repository: failed to unmarshal session: %w", err)
	}
	return &s, nil
}

// Save stores the session, refreshing its TTL.
func (r *RedisSessionRepository) Save(ctx context.Context, s *domain.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("repository: failed to marshal session: %w", err)
	}
	if err := r.cache.Set(ctx, sessionKey(s.ID), data, SessionTTL); err != nil {
		return fmt.Errorf("repository: failed to save session: %w", err)
	}
	return nil
}
