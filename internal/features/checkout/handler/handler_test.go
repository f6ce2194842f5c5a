package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"postnet-delivery/internal/features/checkout/domain"
	"postnet-delivery/internal/features/checkout/ports"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCheckoutService is a mock implementation of ports.CheckoutService
type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) CreateSession(ctx context.Context) (*domain.Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockCheckoutService) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockCheckoutService) SelectMethod(ctx context.Context, id, methodKey, label string) (*domain.Session, error) {
	args := m.Called(ctx, id, methodKey, label)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockCheckoutService) ChooseStore(ctx context.Context, id string, sel domain.DestinationSelection) (*domain.Session, error) {
	args := m.Called(ctx, id, sel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockCheckoutService) Validate(ctx context.Context, req ports.ValidateRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockCheckoutService) CaptureDestination(ctx context.Context, orderID int64, req ports.CaptureRequest) (domain.DestinationSelection, bool, error) {
	args := m.Called(ctx, orderID, req)
	return args.Get(0).(domain.DestinationSelection), args.Bool(1), args.Error(2)
}

func setupApp(s *MockCheckoutService) *fiber.App {
	app := fiber.New()
	h := NewCheckoutHandler(s)
	app.Post("/checkout/sessions", h.CreateSession)
	app.Get("/checkout/sessions/:id", h.GetSession)
	app.Put("/checkout/sessions/:id/method", h.SelectMethod)
	app.Put("/checkout/sessions/:id/store", h.ChooseStore)
	app.Post("/checkout/validate", h.Validate)
	app.Post("/checkout/orders/:id/destination", h.CaptureDestination)
	return app
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestCheckoutHandler_CreateSession(t *testing.T) {
	s := new(MockCheckoutService)
	s.On("CreateSession", mock.Anything).Return(&domain.Session{ID: "sess-1", State: domain.StateNoSelector}, nil)

	resp, err := setupApp(s).Test(httptest.NewRequest("POST", "/checkout/sessions", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"id":"sess-1"`)
	assert.Contains(t, string(body), `"state":"no_selector"`)
}

func TestCheckoutHandler_SelectMethod(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		s := new(MockCheckoutService)
		s.On("SelectMethod", mock.Anything, "sess-1", "flat_rate:3", "PostNet to PostNet").
			Return(&domain.Session{ID: "sess-1", ChosenMethod: "flat_rate:3", State: domain.StateNoStoreChosen}, nil)

		resp, err := setupApp(s).Test(jsonRequest("PUT", "/checkout/sessions/sess-1/method",
			`{"chosen_method":"flat_rate:3","label":"PostNet to PostNet"}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		s.AssertExpectations(t)
	})

	t.Run("MissingMethod", func(t *testing.T) {
		resp, err := setupApp(new(MockCheckoutService)).Test(jsonRequest("PUT", "/checkout/sessions/sess-1/method", `{}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("UnknownSession", func(t *testing.T) {
		s := new(MockCheckoutService)
		s.On("SelectMethod", mock.Anything, "gone", "flat_rate:3", "").Return(nil, domain.ErrSessionNotFound)

		resp, err := setupApp(s).Test(jsonRequest("PUT", "/checkout/sessions/gone/method", `{"chosen_method":"flat_rate:3"}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestCheckoutHandler_ChooseStore(t *testing.T) {
	t.Run("SetsCookie", func(t *testing.T) {
		sel := domain.DestinationSelection{Code: "PN001", Name: "PostNet Sandton"}
		s := new(MockCheckoutService)
		s.On("ChooseStore", mock.Anything, "sess-1", sel).
			Return(&domain.Session{ID: "sess-1", State: domain.StateStoreChosen, Selection: &sel}, nil)

		resp, err := setupApp(s).Test(jsonRequest("PUT", "/checkout/sessions/sess-1/store", `{"code":"PN001","name":"PostNet Sandton"}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		cookie := resp.Header.Get("Set-Cookie")
		assert.Contains(t, cookie, "postnet_selected_store="+sel.CookieValue())
		assert.Contains(t, cookie, "max-age=86400")

		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), `"destination_store":"[\"PN001\",\"PostNet Sandton\"]"`)
	})

	t.Run("SelectorHidden", func(t *testing.T) {
		s := new(MockCheckoutService)
		s.On("ChooseStore", mock.Anything, "sess-1", mock.Anything).Return(nil, domain.ErrSelectorHidden)

		resp, err := setupApp(s).Test(jsonRequest("PUT", "/checkout/sessions/sess-1/store", `{"code":"PN001"}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Empty(t, resp.Header.Get("Set-Cookie"))
	})
}

func TestCheckoutHandler_Validate(t *testing.T) {
	t.Run("Required", func(t *testing.T) {
		s := new(MockCheckoutService)
		s.On("Validate", mock.Anything, ports.ValidateRequest{ChosenMethod: "flat_rate:3"}).Return(domain.ErrDestinationRequired)

		resp, err := setupApp(s).Test(jsonRequest("POST", "/checkout/validate", `{"chosen_method":"flat_rate:3"}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		body, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, `{"valid":false,"notices":["Destination Store is a required field."]}`, string(body))
	})

	t.Run("PassesCookie", func(t *testing.T) {
		s := new(MockCheckoutService)
		s.On("Validate", mock.Anything, ports.ValidateRequest{ChosenMethod: "flat_rate:3", Cookie: "PN001"}).Return(nil)

		req := jsonRequest("POST", "/checkout/validate", `{"chosen_method":"flat_rate:3"}`)
		req.AddCookie(&http.Cookie{Name: domain.CookieName, Value: "PN001"})
		resp, err := setupApp(s).Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, `{"valid":true,"notices":[]}`, string(body))
	})

	t.Run("LookupFailure", func(t *testing.T) {
		s := new(MockCheckoutService)
		s.On("Validate", mock.Anything, mock.Anything).Return(errors.New("woocommerce down"))

		resp, err := setupApp(s).Test(jsonRequest("POST", "/checkout/validate", `{"chosen_method":"flat_rate:3"}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestCheckoutHandler_CaptureDestination(t *testing.T) {
	t.Run("Captured", func(t *testing.T) {
		s := new(MockCheckoutService)
		s.On("CaptureDestination", mock.Anything, int64(42), ports.CaptureRequest{DestinationStore: `["PN001","PostNet Sandton"]`}).
			Return(domain.DestinationSelection{Code: "PN001", Name: "PostNet Sandton"}, true, nil)

		resp, err := setupApp(s).Test(jsonRequest("POST", "/checkout/orders/42/destination",
			`{"destination_store":"[\"PN001\",\"PostNet Sandton\"]"}`))
		require.NoError(t, err)

		body, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, `{"captured":true,"destination_store":"[\"PN001\",\"PostNet Sandton\"]"}`, string(body))
	})

	t.Run("NothingToCapture", func(t *testing.T) {
		s := new(MockCheckoutService)
		s.On("CaptureDestination", mock.Anything, int64(42), ports.CaptureRequest{}).
			Return(domain.DestinationSelection{}, false, nil)

		resp, err := setupApp(s).Test(httptest.NewRequest("POST", "/checkout/orders/42/destination", nil))
		require.NoError(t, err)

		body, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, `{"captured":false}`, string(body))
	})

	t.Run("BadOrderID", func(t *testing.T) {
		resp, err := setupApp(new(MockCheckoutService)).Test(httptest.NewRequest("POST", "/checkout/orders/abc/destination", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
