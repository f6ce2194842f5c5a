package ports

import (
	"context"
	"io"

	"postnet-delivery/internal/features/fees/domain"
	orders "postnet-delivery/internal/features/orders/domain"
	settings "postnet-delivery/internal/features/settings/domain"
)

// FeeRepository persists product fee records.
// This is a Secondary Port (Driven Port).
type FeeRepository interface {
	// GetMany returns the stored records for ids; products without a record are absent.
	GetMany(ctx context.Context, ids []int64) (map[int64]domain.ProductFees, error)
	// SaveMany replaces the records of the given products.
	SaveMany(ctx context.Context, records []domain.ProductFees) error
}

// ProductCatalog lists the shop's products.
type ProductCatalog interface {
	GetProduct(ctx context.Context, productID int64) (*orders.Product, error)
	ListProducts(ctx context.Context) ([]orders.Product, error)
}

// SettingsReader loads the merchant configuration.
type SettingsReader interface {
	Get(ctx context.Context) (settings.Settings, error)
}

// FeeUpdate is a partial update of a product's fees. A nil value removes the fee.
type FeeUpdate map[settings.ServiceType]*float64

// ImportResult reports a completed CSV import.
type ImportResult struct {
	Imported int `json:"imported"`
}

// FeeService is the primary port for product fee administration and lookups.
type FeeService interface {
	ProductFees(ctx context.Context, productID int64) (domain.ProductFees, error)
	UpdateProductFees(ctx context.Context, productID int64, update FeeUpdate) (domain.ProductFees, error)
	FeesFor(ctx context.Context, productIDs []int64, st settings.ServiceType) (map[int64]float64, error)
	Export(ctx context.Context, w io.Writer) error
	Import(ctx context.Context, r io.Reader) (ImportResult, error)
}
