package service

import (
	"context"
	"errors"
	"testing"

	"postnet-delivery/internal/features/rates/domain"
	settings "postnet-delivery/internal/features/settings/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockClassifier is a mock implementation of ports.RegionClassifier
type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) IsMainMetro(ctx context.Context, postalCode string) bool {
	return m.Called(ctx, postalCode).Bool(0)
}

// MockFeeLookup is a mock implementation of ports.FeeLookup
type MockFeeLookup struct {
	mock.Mock
}

func (m *MockFeeLookup) FeesFor(ctx context.Context, ids []int64, st settings.ServiceType) (map[int64]float64, error) {
	args := m.Called(ctx, ids, st)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]float64), args.Error(1)
}

func rate(id, label string) domain.ShippingOption {
	return domain.ShippingOption{ID: id, MethodID: "flat_rate", Label: label, Kind: domain.KindFromLabel(label)}
}

func allRates() []domain.ShippingOption {
	return []domain.ShippingOption{
		rate("flat_rate:1", domain.TitleFree),
		rate("flat_rate:2", domain.TitleStoreToStore),
		rate("flat_rate:3", domain.TitleExpress),
		rate("flat_rate:4", domain.TitleEconomy),
		{ID: "local_pickup:9", MethodID: "local_pickup", Label: "Local pickup", Cost: 15},
	}
}

func ids(rates []domain.ShippingOption) []string {
	out := make([]string, 0, len(rates))
	for _, r := range rates {
		out = append(out, r.ID)
	}
	return out
}

var pkg = domain.Package{
	Subtotal: 500,
	Postcode: "2196",
	Items:    []domain.PackageItem{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}},
}

func allEnabled() settings.Settings {
	cfg := settings.Default()
	cfg.ServiceTypes = settings.ServiceTypes()
	cfg.PostnetToPostnetFee = 99.5
	return cfg
}

func TestRewriter_FreeShippingKeepsOnlyFree(t *testing.T) {
	classifier := new(MockClassifier)
	fees := new(MockFeeLookup)
	rw := NewRewriter(classifier, fees)

	cfg := allEnabled()
	cfg.OrderAmountThreshold = 500

	out := rw.Rewrite(context.Background(), cfg, allRates(), pkg)
	assert.Equal(t, []string{"flat_rate:1", "local_pickup:9"}, ids(out))

	classifier.AssertNotCalled(t, "IsMainMetro", mock.Anything, mock.Anything)
	fees.AssertNotCalled(t, "FeesFor", mock.Anything, mock.Anything, mock.Anything)
}

func TestRewriter_MainMetroPricing(t *testing.T) {
	ctx := context.Background()
	classifier := new(MockClassifier)
	fees := new(MockFeeLookup)
	rw := NewRewriter(classifier, fees)

	classifier.On("IsMainMetro", ctx, "2196").Return(true).Once()
	fees.On("FeesFor", ctx, []int64{1, 2}, settings.MainCentreExpress).Return(map[int64]float64{1: 10, 2: 5.5}, nil).Once()
	fees.On("FeesFor", ctx, []int64{1, 2}, settings.MainCentreEconomy).Return(map[int64]float64{1: 4}, nil).Once()

	out := rw.Rewrite(ctx, allEnabled(), allRates(), pkg)

	assert.Equal(t, []string{"flat_rate:2", "flat_rate:3", "flat_rate:4", "local_pickup:9"}, ids(out))
	assert.Equal(t, 99.5, out[0].Cost)
	assert.Equal(t, 25.5, out[1].Cost)
	assert.Equal(t, 8.0, out[2].Cost)
	assert.Equal(t, 15.0, out[3].Cost)

	classifier.AssertExpectations(t)
	fees.AssertExpectations(t)
}

func TestRewriter_RegionalEnablement(t *testing.T) {
	ctx := context.Background()
	classifier := new(MockClassifier)
	fees := new(MockFeeLookup)
	rw := NewRewriter(classifier, fees)

	cfg := settings.Default()
	cfg.ServiceTypes = []settings.ServiceType{settings.MainCentreExpress, settings.RegionalCentreEconomy}

	classifier.On("IsMainMetro", ctx, "2196").Return(false).Once()
	fees.On("FeesFor", ctx, []int64{1, 2}, settings.RegionalCentreEconomy).Return(map[int64]float64{}, nil).Once()

	out := rw.Rewrite(ctx, cfg, allRates(), pkg)

	// Express is only enabled for main centres, store-to-store is off.
	assert.Equal(t, []string{"flat_rate:4", "local_pickup:9"}, ids(out))
	assert.Equal(t, 0.0, out[0].Cost)
}

func TestRewriter_NoClassificationWithoutCourierRates(t *testing.T) {
	classifier := new(MockClassifier)
	rw := NewRewriter(classifier, new(MockFeeLookup))

	rates := []domain.ShippingOption{rate("flat_rate:2", domain.TitleStoreToStore)}
	out := rw.Rewrite(context.Background(), allEnabled(), rates, pkg)

	assert.Len(t, out, 1)
	classifier.AssertNotCalled(t, "IsMainMetro", mock.Anything, mock.Anything)
}

func TestRewriter_FeeLookupErrorPricesZero(t *testing.T) {
	ctx := context.Background()
	classifier := new(MockClassifier)
	fees := new(MockFeeLookup)
	rw := NewRewriter(classifier, fees)

	classifier.On("IsMainMetro", ctx, "2196").Return(true)
	fees.On("FeesFor", ctx, mock.Anything, mock.Anything).Return(nil, errors.New("redis down"))

	out := rw.Rewrite(ctx, allEnabled(), []domain.ShippingOption{rate("flat_rate:3", domain.TitleExpress)}, pkg)
	assert.Len(t, out, 1)
	assert.Equal(t, 0.0, out[0].Cost)
}

func TestRewriter_DoesNotMutateInputAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	classifier := new(MockClassifier)
	fees := new(MockFeeLookup)
	rw := NewRewriter(classifier, fees)

	classifier.On("IsMainMetro", ctx, "2196").Return(true)
	fees.On("FeesFor", ctx, mock.Anything, mock.Anything).Return(map[int64]float64{1: 3}, nil)

	in := allRates()
	snapshot := allRates()

	first := rw.Rewrite(ctx, allEnabled(), in, pkg)
	assert.Equal(t, snapshot, in)

	second := rw.Rewrite(ctx, allEnabled(), in, pkg)
	assert.Equal(t, first, second)

	first[0].Cost = 1234
	assert.Equal(t, snapshot, in)
}

func TestRewriter_DisabledEverythingKeepsOthers(t *testing.T) {
	ctx := context.Background()
	classifier := new(MockClassifier)
	classifier.On("IsMainMetro", ctx, "2196").Return(false)
	rw := NewRewriter(classifier, new(MockFeeLookup))

	out := rw.Rewrite(ctx, settings.Default(), allRates(), pkg)
	assert.Equal(t, []string{"local_pickup:9"}, ids(out))
}

func deliveryRates() []domain.ShippingOption {
	return []domain.ShippingOption{
		rate("flat_rate:1", domain.TitleFree),
		rate("flat_rate:2", domain.TitleStoreToStore),
		rate("flat_rate:3", domain.TitleExpress),
		rate("flat_rate:4", domain.TitleEconomy),
	}
}

func TestRewriter_Scenarios(t *testing.T) {
	merchant := settings.Default()
	merchant.OrderAmountThreshold = 1000
	merchant.PostnetToPostnetFee = 50
	merchant.ServiceTypes = []settings.ServiceType{settings.PostnetToPostnet, settings.MainCentreExpress}

	noThreshold := merchant
	noThreshold.OrderAmountThreshold = 0

	items := []domain.PackageItem{{ProductID: 7, Quantity: 3}, {ProductID: 8, Quantity: 1}}

	type priced struct {
		id   string
		cost float64
	}

	tests := []struct {
		name     string
		cfg      settings.Settings
		subtotal float64
		setup    func(*MockClassifier, *MockFeeLookup)
		want     []priced
	}{
		{
			name:     "OverThresholdOnlyFree",
			cfg:      merchant,
			subtotal: 1200,
			setup:    func(c *MockClassifier, f *MockFeeLookup) {},
			want:     []priced{{id: "flat_rate:1", cost: 0}},
		},
		{
			name:     "UnderThresholdMainCentre",
			cfg:      merchant,
			subtotal: 500,
			setup: func(c *MockClassifier, f *MockFeeLookup) {
				c.On("IsMainMetro", mock.Anything, "2196").Return(true).Once()
				f.On("FeesFor", mock.Anything, []int64{7, 8}, settings.MainCentreExpress).
					Return(map[int64]float64{7: 20, 8: 12.5}, nil).Once()
			},
			want: []priced{{id: "flat_rate:2", cost: 50}, {id: "flat_rate:3", cost: 72.5}},
		},
		{
			name:     "ZeroThresholdNeverFree",
			cfg:      noThreshold,
			subtotal: 1e12,
			setup: func(c *MockClassifier, f *MockFeeLookup) {
				c.On("IsMainMetro", mock.Anything, "2196").Return(true).Once()
				f.On("FeesFor", mock.Anything, []int64{7, 8}, settings.MainCentreExpress).
					Return(map[int64]float64{7: 20, 8: 12.5}, nil).Once()
			},
			want: []priced{{id: "flat_rate:2", cost: 50}, {id: "flat_rate:3", cost: 72.5}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classifier := new(MockClassifier)
			fees := new(MockFeeLookup)
			tt.setup(classifier, fees)

			p := domain.Package{Subtotal: tt.subtotal, Postcode: "2196", Items: items}
			out := NewRewriter(classifier, fees).Rewrite(context.Background(), tt.cfg, deliveryRates(), p)

			got := make([]priced, 0, len(out))
			for _, r := range out {
				got = append(got, priced{id: r.ID, cost: r.Cost})
			}
			assert.Equal(t, tt.want, got)

			classifier.AssertExpectations(t)
			fees.AssertExpectations(t)
		})
	}
}

func TestRewriter_FeeLinearInQuantity(t *testing.T) {
	price := func(quantity int) float64 {
		classifier := new(MockClassifier)
		fees := new(MockFeeLookup)
		classifier.On("IsMainMetro", mock.Anything, "2196").Return(false)
		fees.On("FeesFor", mock.Anything, []int64{1, 2}, settings.RegionalCentreExpress).
			Return(map[int64]float64{1: 12.25, 2: 3}, nil)

		cfg := settings.Default()
		cfg.ServiceTypes = []settings.ServiceType{settings.RegionalCentreExpress}

		p := domain.Package{
			Subtotal: 100,
			Postcode: "2196",
			Items:    []domain.PackageItem{{ProductID: 1, Quantity: quantity}, {ProductID: 2, Quantity: 1}},
		}
		out := NewRewriter(classifier, fees).Rewrite(context.Background(), cfg, []domain.ShippingOption{rate("flat_rate:3", domain.TitleExpress)}, p)
		if assert.Len(t, out, 1) {
			return out[0].Cost
		}
		return 0
	}

	base := price(0)
	single := price(2)
	double := price(4)

	assert.Equal(t, 3.0, base)
	assert.Equal(t, 24.5, single-base)
	assert.Equal(t, 2*(single-base), double-base)
}
