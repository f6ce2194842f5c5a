package ports

import (
	"context"

	"postnet-delivery/internal/features/orders/domain"
)

// OrderProvider defines the interface for reading and annotating shop orders.
// This is a Secondary Port (Driven Port).
type OrderProvider interface {
	// GetOrder retrieves an order by its WooCommerce id.
	GetOrder(ctx context.Context, orderID int64) (*domain.Order, error)
	// UpdateOrderMeta adds or replaces meta values on the order.
	UpdateOrderMeta(ctx context.Context, orderID int64, meta map[string]string) error
	// DeleteOrderMeta clears every meta row stored under key.
	DeleteOrderMeta(ctx context.Context, orderID int64, key string) error
}

// ProductCatalog defines the interface for reading shop products.
type ProductCatalog interface {
	GetProduct(ctx context.Context, productID int64) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// ZoneProvider defines the interface for managing shipping zones and their methods.
type ZoneProvider interface {
	ListZones(ctx context.Context) ([]domain.Zone, error)
	CreateZone(ctx context.Context, name string) (domain.Zone, error)
	SetZoneCountry(ctx context.Context, zoneID int64, country string) error
	ZoneMethods(ctx context.Context, zoneID int64) ([]domain.ShippingMethod, error)
	AddFlatRate(ctx context.Context, zoneID int64, title string) (domain.ShippingMethod, error)
}

// ShippingService is the primary port for zone configuration and method lookups.
type ShippingService interface {
	ConfigureShipping(ctx context.Context, titles []string) (*domain.ConfigureResult, error)
	MethodTitle(ctx context.Context, methodKey string) (string, error)
	MethodKeyForTitle(ctx context.Context, title string) (string, error)
}

// OrderService is the primary port for courier details on orders.
type OrderService interface {
	PostNetDetails(ctx context.Context, orderID int64, email string) (*domain.PostNetDetails, error)
	AdminPostNetDetails(ctx context.Context, orderID int64) (*domain.PostNetDetails, error)
}
