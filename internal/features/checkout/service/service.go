package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"postnet-delivery/internal/core/logger"
	"postnet-delivery/internal/features/checkout/domain"
	"postnet-delivery/internal/features/checkout/ports"
	orders "postnet-delivery/internal/features/orders/domain"
	orderports "postnet-delivery/internal/features/orders/ports"
	rates "postnet-delivery/internal/features/rates/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutServiceImpl runs the store selection flow and the checkout hooks.
type CheckoutServiceImpl struct {
	sessions ports.SessionRepository
	shipping orderports.ShippingService
	orders   orderports.OrderProvider
	now      func() time.Time
}

// NewCheckoutService creates a new CheckoutServiceImpl.
func NewCheckoutService(sessions ports.SessionRepository, shipping orderports.ShippingService, orders orderports.OrderProvider) *CheckoutServiceImpl {
	return &CheckoutServiceImpl{
		sessions: sessions,
		shipping: shipping,
		orders:   orders,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateSession starts a new checkout session.
func (s *CheckoutServiceImpl) CreateSession(ctx context.Context) (*domain.Session, error) {
	session := domain.NewSession(uuid.NewString(), s.now())
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("service: failed to create session: %w", err)
	}
	return session, nil
}

// GetSession loads a checkout session.
func (s *CheckoutServiceImpl) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrSessionNotFound
	}
	return s.sessions.Get(ctx, id)
}

// SelectMethod records the active rate id. The kind comes from the zone
// method title, falling back to the label reported by the checkout.
func (s *CheckoutServiceImpl) SelectMethod(ctx context.Context, id, methodKey, label string) (*domain.Session, error) {
	session, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	title, err := s.shipping.MethodTitle(ctx, methodKey)
	if err != nil {
		if !errors.Is(err, orders.ErrMethodNotFound) {
			logger.Get().Warn("Failed to resolve shipping method title", zap.String("method", methodKey), zap.Error(err))
		}
		title = label
	}

	session.SelectMethod(methodKey, rates.KindFromLabel(title), s.now())
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("service: failed to save session: %w", err)
	}
	return session, nil
}

// ChooseStore records the destination store picked in the widget.
func (s *CheckoutServiceImpl) ChooseStore(ctx context.Context, id string, sel domain.DestinationSelection) (*domain.Session, error) {
	session, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := session.ChooseStore(sel, s.now()); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("service: failed to save session: %w", err)
	}
	return session, nil
}

// Validate rejects a store-to-store checkout without a destination store.
// The destination is taken from the posted field, then the session, then the cookie.
func (s *CheckoutServiceImpl) Validate(ctx context.Context, req ports.ValidateRequest) error {
	session := s.optionalSession(ctx, req.SessionID)

	chosen := req.ChosenMethod
	if chosen == "" && session != nil {
		chosen = session.ChosenMethod
	}
	if chosen == "" {
		return nil
	}

	storeKey, err := s.shipping.MethodKeyForTitle(ctx, rates.TitleStoreToStore)
	if err != nil {
		if errors.Is(err, orders.ErrMethodNotFound) {
			return nil
		}
		return fmt.Errorf("service: failed to resolve store-to-store method: %w", err)
	}
	if chosen != storeKey {
		return nil
	}

	if _, ok := resolveDestination(req.DestinationStore, session, req.Cookie); !ok {
		return domain.ErrDestinationRequired
	}
	return nil
}

// CaptureDestination writes the Destination Store meta on a new order.
func (s *CheckoutServiceImpl) CaptureDestination(ctx context.Context, orderID int64, req ports.CaptureRequest) (domain.DestinationSelection, bool, error) {
	sel, ok := resolveDestination(req.DestinationStore, s.optionalSession(ctx, req.SessionID), req.Cookie)
	if !ok {
		return domain.DestinationSelection{}, false, nil
	}

	err := s.orders.UpdateOrderMeta(ctx, orderID, map[string]string{
		orders.MetaDestinationStore: sel.Encode(),
	})
	if err != nil {
		return domain.DestinationSelection{}, false, fmt.Errorf("service: failed to save destination store: %w", err)
	}

	logger.Get().Info("Captured destination store", zap.Int64("order_id", orderID), zap.String("store_code", sel.Code))
	return sel, true, nil
}

func (s *CheckoutServiceImpl) optionalSession(ctx context.Context, id string) *domain.Session {
	if id == "" {
		return nil
	}
	session, err := s.GetSession(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			logger.Get().Warn("Failed to load checkout session", zap.String("session_id", id), zap.Error(err))
		}
		return nil
	}
	return session
}

func resolveDestination(field string, session *domain.Session, cookie string) (domain.DestinationSelection, bool) {
	if sel, ok := domain.ParseSelection(field); ok {
		return sel, true
	}
	if session != nil {
		if sel, ok := session.Destination(); ok {
			return sel, true
		}
	}
	return domain.ParseSelection(cookie)
}
