package adapters

import (
	"context"
	"encoding/json"
	"fmt"

	"postnet-delivery/internal/core/cache"
	"postnet-delivery/internal/core/logger"
	"postnet-delivery/internal/features/fees/domain"

	"go.uber.org/zap"
)

const keyPrefix = "postnet:product_fees:"

// RedisFeeRepository stores one JSON record per product.
type RedisFeeRepository struct {
	cache cache.Cache
}

// NewRedisFeeRepository creates a new RedisFeeRepository.
func NewRedisFeeRepository(c cache.Cache) *RedisFeeRepository {
	return &RedisFeeRepository{
		cache: c,
	}
}

func feeKey(id int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, id)
}

// GetMany reads the records of ids in one round trip.
func (r *RedisFeeRepository) GetMany(ctx context.Context, ids []int64) (map[int64]domain.ProductFees, error) {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, feeKey(id))
	}

	values, err := r.cache.GetMany(ctx, keys...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to get product fees: %w", err)
	}

	out := make(map[int64]domain.ProductFees, len(values))
	for _, id := range ids {
		data, ok := values[feeKey(id)]
		if !ok {
			continue
		}
		var rec domain.ProductFees
		if err := json.Unmarshal(data, &rec); err != nil {
			logger.Get().Warn("Skipping undecodable product fee record", zap.Int64("product_id", id), zap.Error(err))
			continue
		}
		rec.ProductID = id
		out[id] = rec
	}
	return out, nil
}

// SaveMany writes all records in one transaction.
func (r *RedisFeeRepository) SaveMany(ctx context.Context, records []domain.ProductFees) error {
	values := make(map[string][]byte, len(records))
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("repository: failed to encode product %d: %w", rec.ProductID, err)
		}
		values[feeKey(rec.ProductID)] = data
	}

	if err := r.cache.SetMany(ctx, values, 0); err != nil {
		return fmt.Errorf("repository: failed to save product fees: %w", err)
	}
	return nil
}
