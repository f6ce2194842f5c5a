package adapters

import (
	"context"
	"testing"
	"time"

	"postnet-delivery/internal/core/cache"
	"postnet-delivery/internal/features/checkout/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepository(t *testing.T) (*RedisSessionRepository, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	c, err := cache.NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return NewRedisSessionRepository(c), mr
}

func TestRedisSessionRepository_SaveGet(t *testing.T) {
	repo, mr := setupRepository(t)
	ctx := context.Background()

	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	s := domain.NewSession("sess-1", now)
	s.ChosenMethod = "flat_rate:3"
	s.State = domain.StateStoreChosen
	s.Selection = &domain.DestinationSelection{Code: "PN001", Name: "PostNet Sandton"}

	require.NoError(t, repo.Save(ctx, s))
	assert.Equal(t, SessionTTL, mr.TTL("postnet:checkout_session:sess-1"))

	got, err := repo.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestRedisSessionRepository_Expired(t *testing.T) {
	repo, mr := setupRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, domain.NewSession("sess-2", time.Now().UTC())))
	mr.FastForward(25 * time.Hour)

	_, err := repo.Get(ctx, "sess-2")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRedisSessionRepository_Corrupt(t *testing.T) {
	repo, mr := setupRepository(t)
	require.NoError(t, mr.Set("postnet:checkout_session:bad", "{"))

	_, err := repo.Get(context.Background(), "bad")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSessionNotFound)
}
