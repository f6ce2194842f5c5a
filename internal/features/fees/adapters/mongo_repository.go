package adapters

import (
	"context"
	"fmt"

	"postnet-delivery/internal/features/fees/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FeeCollection is the collection holding one document per product.
const FeeCollection = "product_fees"

// MongoFeeRepository stores product fees in MongoDB, keyed by product id.
type MongoFeeRepository struct {
	collection *mongo.Collection
}

// NewMongoFeeRepository creates a new MongoFeeRepository on db.
func NewMongoFeeRepository(db *mongo.Database) *MongoFeeRepository {
	return &MongoFeeRepository{
		collection: db.Collection(FeeCollection),
	}
}

// GetMany finds the documents whose _id is in ids.
func (r *MongoFeeRepository) GetMany(ctx context.Context, ids []int64) (map[int64]domain.ProductFees, error) {
	out := make(map[int64]domain.ProductFees, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("repository: failed to find product fees: %w", err)
	}
	defer cursor.Close(ctx)

	var records []domain.ProductFees
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("repository: failed to decode product fees: %w", err)
	}

	for _, rec := range records {
		if rec.Fees == nil {
			rec.Fees = domain.NewProductFees(rec.ProductID, rec.ProductName).Fees
		}
		out[rec.ProductID] = rec
	}
	return out, nil
}

// SaveMany upserts every record with one unordered bulk write.
func (r *MongoFeeRepository) SaveMany(ctx context.Context, records []domain.ProductFees) error {
	if len(records) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(records))
	for _, rec := range records {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": rec.ProductID}).
			SetReplacement(rec).
			SetUpsert(true))
	}

	if _, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("repository: failed to save product fees: %w", err)
	}
	return nil
}
