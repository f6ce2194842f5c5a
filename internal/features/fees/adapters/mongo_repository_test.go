package adapters

import (
	"context"
	"testing"

	"postnet-delivery/internal/features/fees/domain"
	settings "postnet-delivery/internal/features/settings/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoFeeRepository_MockOps(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("get many", func(mt *mtest.T) {
		repo := NewMongoFeeRepository(mt.DB)
		ctx := context.Background()
		ns := mt.DB.Name() + "." + FeeCollection

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: int64(1)},
				{Key: "product_name", Value: "Mug"},
				{Key: "fees", Value: bson.D{{Key: "main_centre_express", Value: 12.5}}},
			},
			bson.D{
				{Key: "_id", Value: int64(2)},
				{Key: "product_name", Value: "Poster"},
			},
		))

		got, err := repo.GetMany(ctx, []int64{1, 2, 3})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, 12.5, got[1].Fee(settings.MainCentreExpress))
		assert.NotNil(t, got[2].Fees)
		assert.Zero(t, got[2].Fee(settings.MainCentreExpress))
	})

	mt.Run("get many empty ids", func(mt *mtest.T) {
		repo := NewMongoFeeRepository(mt.DB)
		got, err := repo.GetMany(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	mt.Run("save many", func(mt *mtest.T) {
		repo := NewMongoFeeRepository(mt.DB)

		mug := domain.NewProductFees(1, "Mug")
		mug.Fees[settings.RegionalCentreEconomy] = 3

		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 2},
			bson.E{Key: "nModified", Value: 1},
			bson.E{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: 1}, {Key: "_id", Value: int64(2)}}}},
		))
		err := repo.SaveMany(context.Background(), []domain.ProductFees{mug, domain.NewProductFees(2, "Poster")})
		require.NoError(t, err)
	})

	mt.Run("find error", func(mt *mtest.T) {
		repo := NewMongoFeeRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Message: "bad query",
			Name:    "BadValue",
		}))

		_, err := repo.GetMany(context.Background(), []int64{1})
		assert.Error(t, err)
	})

	mt.Run("bulk write error", func(mt *mtest.T) {
		repo := NewMongoFeeRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		err := repo.SaveMany(context.Background(), []domain.ProductFees{domain.NewProductFees(1, "Mug")})
		assert.Error(t, err)
	})
}
