package service

import (
	"context"

	"postnet-delivery/internal/core/logger"
	"postnet-delivery/internal/core/metrics"
	"postnet-delivery/internal/features/rates/domain"
	"postnet-delivery/internal/features/rates/ports"
	settings "postnet-delivery/internal/features/settings/domain"

	"go.uber.org/zap"
)

// Rewriter applies the delivery rules to the rates WooCommerce computed for a package.
type Rewriter struct {
	classifier ports.RegionClassifier
	fees       ports.FeeLookup
}

// NewRewriter creates a new Rewriter.
func NewRewriter(classifier ports.RegionClassifier, fees ports.FeeLookup) *Rewriter {
	return &Rewriter{
		classifier: classifier,
		fees:       fees,
	}
}

// Rewrite returns the rates that survive cfg, priced for pkg, in input order.
// When the free shipping threshold is met only the free rate survives among
// the delivery rates. Rates of other methods pass through untouched. The
// input slice is never modified.
func (r *Rewriter) Rewrite(ctx context.Context, cfg settings.Settings, rates []domain.ShippingOption, pkg domain.Package) []domain.ShippingOption {
	free := cfg.FreeShipping(pkg.Subtotal)

	var (
		classified bool
		isMain     bool
	)
	mainMetro := func() bool {
		if !classified {
			isMain = r.classifier.IsMainMetro(ctx, pkg.Postcode)
			classified = true
		}
		return isMain
	}

	out := make([]domain.ShippingOption, 0, len(rates))
	for _, rate := range rates {
		keep := true

		switch rate.Kind {
		case domain.RateKindFree:
			keep = free

		case domain.RateKindStoreToStore:
			keep = !free && cfg.Enabled(settings.PostnetToPostnet)
			if keep {
				rate.Cost = cfg.PostnetToPostnetFee
			}

		case domain.RateKindExpress, domain.RateKindEconomy:
			if free {
				keep = false
				break
			}
			st := serviceTypeFor(rate.Kind, mainMetro())
			keep = cfg.Enabled(st)
			if keep {
				rate.Cost = r.packageFee(ctx, pkg, st)
			}
		}

		outcome := "dropped"
		if keep {
			outcome = "kept"
			out = append(out, rate)
		}
		metrics.RateDecisions.WithLabelValues(rate.Kind.String(), outcome).Inc()
	}

	return out
}

func serviceTypeFor(kind domain.RateKind, isMain bool) settings.ServiceType {
	switch {
	case kind == domain.RateKindExpress && isMain:
		return settings.MainCentreExpress
	case kind == domain.RateKindExpress:
		return settings.RegionalCentreExpress
	case isMain:
		return settings.MainCentreEconomy
	default:
		return settings.RegionalCentreEconomy
	}
}

// packageFee sums unit fee times quantity over the package contents.
// Fees that cannot be read count as zero.
func (r *Rewriter) packageFee(ctx context.Context, pkg domain.Package, st settings.ServiceType) float64 {
	if len(pkg.Items) == 0 {
		return 0
	}

	fees, err := r.fees.FeesFor(ctx, pkg.ProductIDs(), st)
	if err != nil {
		logger.Get().Warn("Failed to read product fees, pricing missing fees as zero",
			zap.String("service_type", string(st)),
			zap.Error(err),
		)
	}

	total := 0.0
	for _, item := range pkg.Items {
		total += fees[item.ProductID] * float64(item.Quantity)
	}
	return total
}
