package domain

import (
	"errors"
	"fmt"

	settings "postnet-delivery/internal/features/settings/domain"
)

var (
	ErrNegativeFee       = errors.New("fee must not be negative")
	ErrServiceNotEnabled = errors.New("service type is not enabled for per-product fees")
	ErrHeaderMismatch    = errors.New("the uploaded file headers do not match the expected headers")
	ErrMalformedRow      = errors.New("malformed csv row")
	ErrProductNotFound   = errors.New("product not found")
)

// ProductFees holds the per-unit delivery fees of one product.
// A service type missing from Fees has no fee, which prices as zero.
type ProductFees struct {
	ProductID   int64                            `json:"product_id" bson:"_id"`
	ProductName string                           `json:"product_name" bson:"product_name"`
	Fees        map[settings.ServiceType]float64 `json:"fees" bson:"fees"`
}

// NewProductFees returns an empty fee record for a product.
func NewProductFees(id int64, name string) ProductFees {
	return ProductFees{
		ProductID:   id,
		ProductName: name,
		Fees:        map[settings.ServiceType]float64{},
	}
}

// Fee returns the unit fee for st, or zero when unset.
func (p ProductFees) Fee(st settings.ServiceType) float64 {
	return p.Fees[st]
}

// Validate rejects negative fees and service types without per-product pricing.
func (p ProductFees) Validate() error {
	for st, v := range p.Fees {
		if !st.Valid() || st == settings.PostnetToPostnet {
			return fmt.Errorf("%w: %s", ErrServiceNotEnabled, st)
		}
		if v < 0 {
			return fmt.Errorf("%w: %s", ErrNegativeFee, st)
		}
	}
	return nil
}
