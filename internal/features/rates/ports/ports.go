package ports

import (
	"context"

	"postnet-delivery/internal/features/rates/domain"
	settings "postnet-delivery/internal/features/settings/domain"
)

// RegionClassifier tells main-metro postcodes from regional ones.
type RegionClassifier interface {
	IsMainMetro(ctx context.Context, postalCode string) bool
}

// FeeLookup reads per-product unit fees for one service type.
// Products without a fee are absent from the result.
type FeeLookup interface {
	FeesFor(ctx context.Context, productIDs []int64, st settings.ServiceType) (map[int64]float64, error)
}

// SettingsReader loads the merchant configuration.
type SettingsReader interface {
	Get(ctx context.Context) (settings.Settings, error)
}

// RateRewriter filters and prices the delivery rates of a package.
type RateRewriter interface {
	Rewrite(ctx context.Context, cfg settings.Settings, rates []domain.ShippingOption, pkg domain.Package) []domain.ShippingOption
}
