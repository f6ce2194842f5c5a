package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"postnet-delivery/internal/core/logger"
	"postnet-delivery/internal/core/metrics"
	checkout "postnet-delivery/internal/features/checkout/domain"
	"postnet-delivery/internal/features/dispatch/domain"
	"postnet-delivery/internal/features/dispatch/ports"
	orders "postnet-delivery/internal/features/orders/domain"
	orderports "postnet-delivery/internal/features/orders/ports"
	rates "postnet-delivery/internal/features/rates/domain"
	rateports "postnet-delivery/internal/features/rates/ports"

	"go.uber.org/zap"
)

// Reasons reported when an order is not dispatched.
const (
	ReasonNoMethod          = "no shipping method"
	ReasonNotStoreToStore   = "not store-to-store"
	ReasonAlreadyDispatched = "already dispatched"
	ReasonNoSettings        = "settings unavailable"
	ReasonRejected          = "courier rejected the order"
	ReasonUnavailable       = "courier unavailable"
)

// Dispatcher submits store-to-store orders to the courier once they are received.
type Dispatcher struct {
	orders     orderports.OrderProvider
	catalog    orderports.ProductCatalog
	shipping   orderports.ShippingService
	sessions   ports.SessionReader
	settings   ports.SettingsReader
	classifier rateports.RegionClassifier
	courier    ports.Courier
	siteName   string
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(
	orderProvider orderports.OrderProvider,
	catalog orderports.ProductCatalog,
	shipping orderports.ShippingService,
	sessions ports.SessionReader,
	settings ports.SettingsReader,
	classifier rateports.RegionClassifier,
	courier ports.Courier,
	siteName string,
) *Dispatcher {
	return &Dispatcher{
		orders:     orderProvider,
		catalog:    catalog,
		shipping:   shipping,
		sessions:   sessions,
		settings:   settings,
		classifier: classifier,
		courier:    courier,
		siteName:   siteName,
	}
}

// HandleOrderReceived runs the order-received hook for orderID. Courier
// failures are logged and reported in the outcome, not returned.
func (d *Dispatcher) HandleOrderReceived(ctx context.Context, orderID int64, sessionID string) (*domain.Outcome, error) {
	log := logger.Get().With(zap.Int64("order_id", orderID))
	outcome := &domain.Outcome{OrderID: orderID}

	order, err := d.orders.GetOrder(ctx, orderID)
	if err != nil {
		return outcome, fmt.Errorf("service: failed to get order: %w", err)
	}

	chosen := d.chosenMethod(ctx, order, sessionID)
	if chosen == "" {
		outcome.Reason = ReasonNoMethod
		metrics.Dispatches.WithLabelValues("skipped").Inc()
		return outcome, nil
	}
	outcome.ChosenMethod = chosen

	kind := rates.KindFromLabel(d.methodTitle(ctx, order, chosen))
	if kind != rates.RateKindStoreToStore {
		if err := d.orders.DeleteOrderMeta(ctx, orderID, orders.MetaDestinationStore); err != nil {
			log.Warn("Failed to clear destination store", zap.Error(err))
		}
		outcome.Reason = ReasonNotStoreToStore
		metrics.Dispatches.WithLabelValues("skipped").Inc()
		return outcome, nil
	}

	if order.MetaValue(orders.MetaWaybillNumber) != "" {
		outcome.Reason = ReasonAlreadyDispatched
		metrics.Dispatches.WithLabelValues("skipped").Inc()
		return outcome, nil
	}

	cfg, err := d.settings.Get(ctx)
	if err != nil {
		log.Error("Failed to read settings, order not dispatched", zap.Error(err))
		outcome.Reason = ReasonNoSettings
		metrics.Dispatches.WithLabelValues("error").Inc()
		return outcome, nil
	}

	isMain := d.classifier.IsMainMetro(ctx, order.Shipping.Postcode)
	serviceType, _ := domain.ServiceTypeFor(kind, isMain)
	outcome.ServiceType = serviceType

	payload := d.buildPayload(ctx, order, string(serviceType), string(cfg.CollectionType), cfg.OriginStore)
	creds := domain.Credentials{APIKey: cfg.APIKey, APIPasscode: cfg.APIPasscode}

	result, err := d.courier.Dispatch(ctx, creds, payload)
	if err != nil {
		if errors.Is(err, domain.ErrDispatchRejected) {
			outcome.Reason = ReasonRejected
			metrics.Dispatches.WithLabelValues("rejected").Inc()
		} else {
			outcome.Reason = ReasonUnavailable
			metrics.Dispatches.WithLabelValues("error").Inc()
		}
		log.Error("Order dispatch failed", zap.String("service_type", string(serviceType)), zap.Error(err))
		return outcome, nil
	}

	outcome.Dispatched = true
	outcome.Result = result
	metrics.Dispatches.WithLabelValues("success").Inc()
	log.Info("Order dispatched", zap.String("waybill_number", result.WaybillNumber))

	err = d.orders.UpdateOrderMeta(ctx, orderID, map[string]string{
		orders.MetaWaybillNumber: result.WaybillNumber,
		orders.MetaTrackingURL:   result.TrackingURL,
		orders.MetaLabelPrint:    result.LabelPrint,
	})
	if err != nil {
		return outcome, fmt.Errorf("service: failed to save dispatch result: %w", err)
	}

	return outcome, nil
}

// chosenMethod resolves the rate id from the checkout session, then the order.
func (d *Dispatcher) chosenMethod(ctx context.Context, order *orders.Order, sessionID string) string {
	if sessionID != "" {
		session, err := d.sessions.GetSession(ctx, sessionID)
		switch {
		case err == nil && session.ChosenMethod != "":
			return session.ChosenMethod
		case err != nil && !errors.Is(err, checkout.ErrSessionNotFound):
			logger.Get().Warn("Failed to load checkout session", zap.String("session_id", sessionID), zap.Error(err))
		}
	}
	return order.ChosenMethod()
}

func (d *Dispatcher) methodTitle(ctx context.Context, order *orders.Order, chosen string) string {
	title, err := d.shipping.MethodTitle(ctx, chosen)
	if err == nil {
		return title
	}
	if !errors.Is(err, orders.ErrMethodNotFound) {
		logger.Get().Warn("Failed to resolve shipping method title", zap.String("method", chosen), zap.Error(err))
	}
	return order.ShippingLineTitle(chosen)
}

func (d *Dispatcher) buildPayload(ctx context.Context, order *orders.Order, serviceType, collectionType, originStore string) domain.Payload {
	dest, _ := checkout.ParseSelection(order.MetaValue(orders.MetaDestinationStore))

	p := domain.Payload{
		OnlineStoreName:       d.siteName,
		CollectionType:        collectionType,
		ServiceType:           serviceType,
		OriginStore:           originStore,
		DestinationStore:      dest.Code,
		ReceiverStreetAddress: order.Shipping.Address1,
		ReceiverSuburb:        order.Shipping.City,
		ReceiverPostalCode:    order.Shipping.Postcode,
		ReceiverName:          order.Shipping.FullName(),
		ReceiverContactPerson: order.Billing.FirstName,
		ReceiverContactNumber: order.Billing.Phone,
		OrderNumber:           order.OrderNumber(),
		OrderTotal:            order.Total,
		OrderItems:            make([]domain.OrderItem, 0, len(order.Items)),
	}

	for _, it := range order.Items {
		item := domain.OrderItem{
			ProductID:   strconv.FormatInt(it.ProductID, 10),
			Description: it.Name,
			Qty:         it.Quantity,
			Price:       it.Total,
		}
		product, err := d.catalog.GetProduct(ctx, it.ProductID)
		if err != nil {
			logger.Get().Warn("Failed to load product dimensions", zap.Int64("product_id", it.ProductID), zap.Error(err))
		} else {
			item.Description = product.Name
			item.Weight = product.Weight
			item.Length = product.Length
			item.Width = product.Width
			item.Height = product.Height
		}
		p.OrderItems = append(p.OrderItems, item)
	}

	return p
}
