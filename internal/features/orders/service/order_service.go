package service

import (
	"context"
	"fmt"
	"strings"

	checkout "postnet-delivery/internal/features/checkout/domain"
	"postnet-delivery/internal/features/orders/domain"
	"postnet-delivery/internal/features/orders/ports"
)

// OrderServiceImpl reads the courier details recorded on orders.
type OrderServiceImpl struct {
	// provider is the interface for fetching order data from external sources.
	provider ports.OrderProvider
}

// NewOrderService creates a new instance of OrderServiceImpl.
func NewOrderService(provider ports.OrderProvider) *OrderServiceImpl {
	return &OrderServiceImpl{
		provider: provider,
	}
}

// PostNetDetails returns the courier details of an order after checking that
// email matches the order's billing email.
func (s *OrderServiceImpl) PostNetDetails(ctx context.Context, orderID int64, email string) (*domain.PostNetDetails, error) {
	order, err := s.provider.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order == nil {
		return nil, fmt.Errorf("%w: %d", domain.ErrOrderNotFound, orderID)
	}

	if !strings.EqualFold(strings.TrimSpace(order.Billing.Email), strings.TrimSpace(email)) {
		return nil, domain.ErrEmailMismatch
	}

	return detailsFor(order), nil
}

// AdminPostNetDetails returns the courier details of an order without an ownership check.
func (s *OrderServiceImpl) AdminPostNetDetails(ctx context.Context, orderID int64) (*domain.PostNetDetails, error) {
	order, err := s.provider.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: %d", domain.ErrOrderNotFound, orderID)
	}
	return detailsFor(order), nil
}

func detailsFor(order *domain.Order) *domain.PostNetDetails {
	details := &domain.PostNetDetails{
		OrderID:       order.ID,
		WaybillNumber: order.MetaValue(domain.MetaWaybillNumber),
		TrackingURL:   order.MetaValue(domain.MetaTrackingURL),
		LabelPrint:    order.MetaValue(domain.MetaLabelPrint),
	}

	if sel, ok := checkout.ParseSelection(order.MetaValue(domain.MetaDestinationStore)); ok {
		details.DestinationStore = sel.Name
		if details.DestinationStore == "" {
			details.DestinationStore = sel.Code
		}
	}
	return details
}
