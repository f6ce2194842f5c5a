package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"postnet-delivery/internal/core/logger"
	"postnet-delivery/internal/core/metrics"
	"postnet-delivery/internal/features/fees/domain"
	"postnet-delivery/internal/features/fees/ports"
	orders "postnet-delivery/internal/features/orders/domain"
	settings "postnet-delivery/internal/features/settings/domain"

	"go.uber.org/zap"
)

// FeeServiceImpl implements ports.FeeService.
type FeeServiceImpl struct {
	repo     ports.FeeRepository
	catalog  ports.ProductCatalog
	settings ports.SettingsReader
}

// NewFeeService creates a new FeeServiceImpl.
func NewFeeService(repo ports.FeeRepository, catalog ports.ProductCatalog, settings ports.SettingsReader) *FeeServiceImpl {
	return &FeeServiceImpl{
		repo:     repo,
		catalog:  catalog,
		settings: settings,
	}
}

// ProductFees returns the fees of a catalog product. A product without a
// record has no fees.
func (s *FeeServiceImpl) ProductFees(ctx context.Context, productID int64) (domain.ProductFees, error) {
	product, err := s.product(ctx, productID)
	if err != nil {
		return domain.ProductFees{}, err
	}

	records, err := s.repo.GetMany(ctx, []int64{productID})
	if err != nil {
		return domain.ProductFees{}, fmt.Errorf("service: failed to get fees: %w", err)
	}

	rec, ok := records[productID]
	if !ok {
		rec = domain.NewProductFees(productID, product.Name)
	}
	rec.ProductName = product.Name
	return rec, nil
}

// UpdateProductFees applies update to a product's fees. Only enabled per-product
// service types are accepted; a nil value clears that fee.
func (s *FeeServiceImpl) UpdateProductFees(ctx context.Context, productID int64, update ports.FeeUpdate) (domain.ProductFees, error) {
	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return domain.ProductFees{}, fmt.Errorf("service: failed to load settings: %w", err)
	}

	for st, v := range update {
		if st == settings.PostnetToPostnet || !st.Valid() || !cfg.Enabled(st) {
			return domain.ProductFees{}, fmt.Errorf("%w: %s", domain.ErrServiceNotEnabled, st)
		}
		if v != nil && *v < 0 {
			return domain.ProductFees{}, fmt.Errorf("%w: %s", domain.ErrNegativeFee, st)
		}
	}

	rec, err := s.ProductFees(ctx, productID)
	if err != nil {
		return domain.ProductFees{}, err
	}

	for st, v := range update {
		if v == nil {
			delete(rec.Fees, st)
			continue
		}
		rec.Fees[st] = *v
	}

	if err := rec.Validate(); err != nil {
		return domain.ProductFees{}, err
	}

	if err := s.repo.SaveMany(ctx, []domain.ProductFees{rec}); err != nil {
		return domain.ProductFees{}, fmt.Errorf("service: failed to save fees: %w", err)
	}

	logger.Get().Info("Product fees updated", zap.Int64("product_id", productID), zap.Int("fees", len(rec.Fees)))
	return rec, nil
}

// FeesFor returns the unit fee of st for each product that has one.
func (s *FeeServiceImpl) FeesFor(ctx context.Context, productIDs []int64, st settings.ServiceType) (map[int64]float64, error) {
	records, err := s.repo.GetMany(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get fees: %w", err)
	}

	out := make(map[int64]float64, len(records))
	for id, rec := range records {
		if v, ok := rec.Fees[st]; ok {
			out[id] = v
		}
	}
	return out, nil
}

// Export writes one CSV row per catalog product.
func (s *FeeServiceImpl) Export(ctx context.Context, w io.Writer) error {
	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("service: failed to list products: %w", err)
	}

	ids := make([]int64, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}

	stored, err := s.repo.GetMany(ctx, ids)
	if err != nil {
		return fmt.Errorf("service: failed to get fees: %w", err)
	}

	records := make([]domain.ProductFees, 0, len(products))
	for _, p := range products {
		rec, ok := stored[p.ID]
		if !ok {
			rec = domain.NewProductFees(p.ID, p.Name)
		}
		rec.ProductName = p.Name
		records = append(records, rec)
	}

	return domain.WriteCSV(w, records)
}

// Import replaces the fees of every product listed in the CSV. The whole file
// is parsed and validated before anything is written.
func (s *FeeServiceImpl) Import(ctx context.Context, r io.Reader) (ports.ImportResult, error) {
	records, err := domain.ParseCSV(r)
	if err == nil {
		for _, rec := range records {
			if err = rec.Validate(); err != nil {
				break
			}
		}
	}
	if err != nil {
		metrics.FeeImports.WithLabelValues("rejected").Inc()
		logger.Get().Warn("Fee import rejected", zap.Error(err))
		return ports.ImportResult{}, err
	}

	if err := s.repo.SaveMany(ctx, records); err != nil {
		metrics.FeeImports.WithLabelValues("error").Inc()
		return ports.ImportResult{}, fmt.Errorf("service: failed to save imported fees: %w", err)
	}

	metrics.FeeImports.WithLabelValues("success").Inc()
	logger.Get().Info("Fee import completed", zap.Int("products", len(records)))
	return ports.ImportResult{Imported: len(records)}, nil
}

func (s *FeeServiceImpl) product(ctx context.Context, productID int64) (*orders.Product, error) {
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, orders.ErrProductNotFound) {
			return nil, fmt.Errorf("%w: %d", domain.ErrProductNotFound, productID)
		}
		return nil, fmt.Errorf("service: failed to get product: %w", err)
	}
	return product, nil
}
