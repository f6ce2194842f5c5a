package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"postnet-delivery/internal/core/cache"
	"postnet-delivery/internal/features/checkout/adapters"
	"postnet-delivery/internal/features/checkout/domain"
	"postnet-delivery/internal/features/checkout/ports"
	orders "postnet-delivery/internal/features/orders/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockShippingService is a mock implementation of ports.ShippingService
type MockShippingService struct {
	mock.Mock
}

func (m *MockShippingService) ConfigureShipping(ctx context.Context, titles []string) (*orders.ConfigureResult, error) {
	args := m.Called(ctx, titles)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orders.ConfigureResult), args.Error(1)
}

func (m *MockShippingService) MethodTitle(ctx context.Context, methodKey string) (string, error) {
	args := m.Called(ctx, methodKey)
	return args.String(0), args.Error(1)
}

func (m *MockShippingService) MethodKeyForTitle(ctx context.Context, title string) (string, error) {
	args := m.Called(ctx, title)
	return args.String(0), args.Error(1)
}

// MockOrderProvider is a mock implementation of ports.OrderProvider
type MockOrderProvider struct {
	mock.Mock
}

func (m *MockOrderProvider) GetOrder(ctx context.Context, orderID int64) (*orders.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orders.Order), args.Error(1)
}

func (m *MockOrderProvider) UpdateOrderMeta(ctx context.Context, orderID int64, meta map[string]string) error {
	return m.Called(ctx, orderID, meta).Error(0)
}

func (m *MockOrderProvider) DeleteOrderMeta(ctx context.Context, orderID int64, key string) error {
	return m.Called(ctx, orderID, key).Error(0)
}

func setupService(t *testing.T) (*CheckoutServiceImpl, *MockShippingService, *MockOrderProvider) {
	mr := miniredis.RunT(t)
	c, err := cache.NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	shipping := new(MockShippingService)
	provider := new(MockOrderProvider)
	svc := NewCheckoutService(adapters.NewRedisSessionRepository(c), shipping, provider)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }
	return svc, shipping, provider
}

func TestCheckoutService_SelectionFlow(t *testing.T) {
	svc, shipping, _ := setupService(t)
	ctx := context.Background()

	shipping.On("MethodTitle", mock.Anything, "flat_rate:3").Return("PostNet to PostNet", nil)
	shipping.On("MethodTitle", mock.Anything, "flat_rate:4").Return("PostNet Express", nil)

	session, err := svc.CreateSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StateNoSelector, session.State)

	session, err = svc.SelectMethod(ctx, session.ID, "flat_rate:3", "")
	require.NoError(t, err)
	assert.Equal(t, domain.StateNoStoreChosen, session.State)

	session, err = svc.ChooseStore(ctx, session.ID, domain.DestinationSelection{Code: "PN001", Name: "PostNet Sandton"})
	require.NoError(t, err)
	assert.Equal(t, domain.StateStoreChosen, session.State)

	session, err = svc.SelectMethod(ctx, session.ID, "flat_rate:4", "")
	require.NoError(t, err)
	assert.Equal(t, domain.StateNoSelector, session.State)

	_, err = svc.ChooseStore(ctx, session.ID, domain.DestinationSelection{Code: "PN002"})
	assert.ErrorIs(t, err, domain.ErrSelectorHidden)

	stored, err := svc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "flat_rate:4", stored.ChosenMethod)
	assert.Equal(t, "PN001", stored.Selection.Code)
}

func TestCheckoutService_SelectMethod_LabelFallback(t *testing.T) {
	svc, shipping, _ := setupService(t)
	ctx := context.Background()

	shipping.On("MethodTitle", mock.Anything, "flat_rate:9").Return("", orders.ErrMethodNotFound)

	session, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	session, err = svc.SelectMethod(ctx, session.ID, "flat_rate:9", "PostNet to PostNet")
	require.NoError(t, err)
	assert.Equal(t, domain.StateNoStoreChosen, session.State)
}

func TestCheckoutService_UnknownSession(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.GetSession(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = svc.SelectMethod(ctx, "5f0c7f5e-8d7a-4a53-9d53-3c1c7f0f3a11", "flat_rate:3", "")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestCheckoutService_Validate(t *testing.T) {
	svc, shipping, _ := setupService(t)
	ctx := context.Background()
	shipping.On("MethodKeyForTitle", mock.Anything, "PostNet to PostNet").Return("flat_rate:3", nil)
	shipping.On("MethodTitle", mock.Anything, "flat_rate:3").Return("PostNet to PostNet", nil)

	held, err := svc.CreateSession(ctx)
	require.NoError(t, err)
	_, err = svc.SelectMethod(ctx, held.ID, "flat_rate:3", "")
	require.NoError(t, err)
	_, err = svc.ChooseStore(ctx, held.ID, domain.DestinationSelection{Code: "PN001", Name: "PostNet Sandton"})
	require.NoError(t, err)

	empty, err := svc.CreateSession(ctx)
	require.NoError(t, err)
	_, err = svc.SelectMethod(ctx, empty.ID, "flat_rate:3", "")
	require.NoError(t, err)

	tests := []struct {
		name    string
		req     ports.ValidateRequest
		wantErr error
	}{
		{"OtherMethod", ports.ValidateRequest{ChosenMethod: "flat_rate:4"}, nil},
		{"NoMethod", ports.ValidateRequest{}, nil},
		{"MissingDestination", ports.ValidateRequest{ChosenMethod: "flat_rate:3"}, domain.ErrDestinationRequired},
		{"Field", ports.ValidateRequest{ChosenMethod: "flat_rate:3", DestinationStore: `["PN001","PostNet Sandton"]`}, nil},
		{"Session", ports.ValidateRequest{SessionID: held.ID}, nil},
		{"SessionWithoutStore", ports.ValidateRequest{SessionID: empty.ID}, domain.ErrDestinationRequired},
		{"Cookie", ports.ValidateRequest{SessionID: empty.ID, Cookie: "%5B%22PN001%22%2C%22PostNet%22%5D"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Validate(ctx, tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckoutService_Validate_NoStoreMethodConfigured(t *testing.T) {
	svc, shipping, _ := setupService(t)
	shipping.On("MethodKeyForTitle", mock.Anything, "PostNet to PostNet").Return("", orders.ErrMethodNotFound)

	assert.NoError(t, svc.Validate(context.Background(), ports.ValidateRequest{ChosenMethod: "flat_rate:3"}))
}

func TestCheckoutService_Validate_LookupError(t *testing.T) {
	svc, shipping, _ := setupService(t)
	shipping.On("MethodKeyForTitle", mock.Anything, "PostNet to PostNet").Return("", errors.New("woocommerce down"))

	err := svc.Validate(context.Background(), ports.ValidateRequest{ChosenMethod: "flat_rate:3"})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrDestinationRequired)
}

func TestCheckoutService_CaptureDestination(t *testing.T) {
	ctx := context.Background()

	t.Run("Field", func(t *testing.T) {
		svc, _, provider := setupService(t)
		provider.On("UpdateOrderMeta", mock.Anything, int64(42), map[string]string{
			orders.MetaDestinationStore: `["PN001","PostNet Sandton"]`,
		}).Return(nil).Once()

		sel, ok, err := svc.CaptureDestination(ctx, 42, ports.CaptureRequest{
			DestinationStore: `["PN001","PostNet Sandton"]`,
			Cookie:           "PN999",
		})
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "PN001", sel.Code)
		provider.AssertExpectations(t)
	})

	t.Run("LegacyCookie", func(t *testing.T) {
		svc, _, provider := setupService(t)
		provider.On("UpdateOrderMeta", mock.Anything, int64(42), map[string]string{
			orders.MetaDestinationStore: `["PN999","PN999"]`,
		}).Return(nil).Once()

		_, ok, err := svc.CaptureDestination(ctx, 42, ports.CaptureRequest{Cookie: "PN999"})
		require.NoError(t, err)
		assert.True(t, ok)
		provider.AssertExpectations(t)
	})

	t.Run("Nothing", func(t *testing.T) {
		svc, _, provider := setupService(t)

		_, ok, err := svc.CaptureDestination(ctx, 42, ports.CaptureRequest{})
		require.NoError(t, err)
		assert.False(t, ok)
		provider.AssertNotCalled(t, "UpdateOrderMeta", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("WriteFails", func(t *testing.T) {
		svc, _, provider := setupService(t)
		provider.On("UpdateOrderMeta", mock.Anything, int64(42), mock.Anything).Return(errors.New("boom")).Once()

		_, ok, err := svc.CaptureDestination(ctx, 42, ports.CaptureRequest{Cookie: "PN999"})
		assert.Error(t, err)
		assert.False(t, ok)
	})
}
