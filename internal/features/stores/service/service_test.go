package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"postnet-delivery/internal/core/cache"
	"postnet-delivery/internal/features/stores/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockDirectory is a mock implementation of ports.Directory
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) FetchAll(ctx context.Context) ([]domain.Store, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Store), args.Error(1)
}

func (m *MockDirectory) Locate(ctx context.Context, address string) ([]domain.Store, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Store), args.Error(1)
}

func (m *MockDirectory) Details(ctx context.Context, code string) (*domain.StoreDetail, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StoreDetail), args.Error(1)
}

var (
	fullList = []domain.Store{
		{Code: "PN001", Name: "PostNet Sandton", Email: "sandton@postnet.co.za"},
		{Code: "PN002", Name: "PostNet Rosebank"},
	}
	address = domain.Address{Street: "12 Rivonia Rd", City: "Sandton", Postcode: "2196"}
)

func setup(t *testing.T) (*miniredis.Miniredis, *MockDirectory, *StoreServiceImpl) {
	mr := miniredis.RunT(t)
	c, err := cache.NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	dir := new(MockDirectory)
	return mr, dir, NewStoreService(dir, c, 24*time.Hour)
}

func TestStoreService_ListStores_Locator(t *testing.T) {
	_, dir, svc := setup(t)
	ctx := context.Background()

	near := []domain.Store{{Code: "PN001", Name: "PostNet Sandton"}}
	dir.On("Locate", ctx, "12 Rivonia Rd, Sandton, 2196").Return(near, nil).Once()

	stores, err := svc.ListStores(ctx, address)
	require.NoError(t, err)
	assert.Equal(t, near, stores)
	dir.AssertNotCalled(t, "FetchAll", mock.Anything)
}

func TestStoreService_ListStores_FallbackAndCache(t *testing.T) {
	mr, dir, svc := setup(t)
	ctx := context.Background()

	dir.On("Locate", ctx, mock.Anything).Return(nil, domain.ErrDirectoryUnavailable).Once()
	dir.On("FetchAll", ctx).Return(fullList, nil).Once()

	stores, err := svc.ListStores(ctx, address)
	require.NoError(t, err)
	assert.Equal(t, fullList, stores)
	assert.True(t, mr.Exists(StoresCacheKey))
	assert.Equal(t, 24*time.Hour, mr.TTL(StoresCacheKey))

	// Incomplete address skips the locator; the list comes from the cache.
	stores, err = svc.ListStores(ctx, domain.Address{City: "Sandton"})
	require.NoError(t, err)
	assert.Equal(t, fullList, stores)
	dir.AssertExpectations(t)
}

func TestStoreService_ListStores_EmptyLocatorFallsBack(t *testing.T) {
	_, dir, svc := setup(t)
	ctx := context.Background()

	dir.On("Locate", ctx, mock.Anything).Return([]domain.Store{}, nil).Once()
	dir.On("FetchAll", ctx).Return(fullList, nil).Once()

	stores, err := svc.ListStores(ctx, address)
	require.NoError(t, err)
	assert.Len(t, stores, 2)
}

func TestStoreService_ListStores_Unavailable(t *testing.T) {
	mr, dir, svc := setup(t)
	ctx := context.Background()

	dir.On("FetchAll", ctx).Return(nil, errors.Join(domain.ErrDirectoryUnavailable, errors.New("timeout"))).Once()

	_, err := svc.ListStores(ctx, domain.Address{})
	assert.ErrorIs(t, err, domain.ErrDirectoryUnavailable)
	assert.False(t, mr.Exists(StoresCacheKey))
}

func TestStoreService_StoreDetails(t *testing.T) {
	ctx := context.Background()

	t.Run("FromEndpoint", func(t *testing.T) {
		_, dir, svc := setup(t)
		detail := &domain.StoreDetail{Store: domain.Store{Code: "PN001"}, TradingHours: "08:00-17:00"}
		dir.On("Details", ctx, "PN001").Return(detail, nil).Once()

		got, err := svc.StoreDetails(ctx, " PN001 ")
		require.NoError(t, err)
		assert.Equal(t, detail, got)
	})

	t.Run("FromList", func(t *testing.T) {
		_, dir, svc := setup(t)
		dir.On("Details", ctx, "PN002").Return(nil, domain.ErrNoDetailsEndpoint).Once()
		dir.On("FetchAll", ctx).Return(fullList, nil).Once()

		got, err := svc.StoreDetails(ctx, "PN002")
		require.NoError(t, err)
		assert.Equal(t, "PostNet Rosebank", got.Name)
	})

	t.Run("Unknown", func(t *testing.T) {
		_, dir, svc := setup(t)
		dir.On("Details", ctx, "PN404").Return(nil, domain.ErrNoDetailsEndpoint).Once()
		dir.On("FetchAll", ctx).Return(fullList, nil).Once()

		_, err := svc.StoreDetails(ctx, "PN404")
		assert.ErrorIs(t, err, domain.ErrStoreNotFound)
	})

	t.Run("Empty", func(t *testing.T) {
		_, _, svc := setup(t)
		_, err := svc.StoreDetails(ctx, "")
		assert.ErrorIs(t, err, domain.ErrStoreNotFound)
	})
}

func TestStoreService_StoreEmail(t *testing.T) {
	_, dir, svc := setup(t)
	ctx := context.Background()
	dir.On("FetchAll", ctx).Return(fullList, nil).Once()

	email, err := svc.StoreEmail(ctx, "PN001")
	require.NoError(t, err)
	assert.Equal(t, "sandton@postnet.co.za", email)

	_, err = svc.StoreEmail(ctx, "PN404")
	assert.ErrorIs(t, err, domain.ErrStoreNotFound)
}
