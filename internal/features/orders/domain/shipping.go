package domain

import (
	"errors"
	"strconv"
)

// ZoneName and ZoneCountry identify the shipping zone the delivery methods live in.
const (
	ZoneName    = "South Africa"
	ZoneCountry = "ZA"

	// FlatRateMethod is the WooCommerce method type used for every delivery option.
	FlatRateMethod = "flat_rate"
)

// ErrMethodNotFound is returned when a rate id does not match any zone method.
var ErrMethodNotFound = errors.New("shipping method not found")

// Zone is a WooCommerce shipping zone.
type Zone struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ShippingMethod is a method instance configured on a zone.
type ShippingMethod struct {
	InstanceID int64  `json:"instance_id"`
	MethodID   string `json:"method_id"`
	Title      string `json:"title"`
	Enabled    bool   `json:"enabled"`
}

// Key returns the "method_id:instance_id" rate id used at checkout.
func (m ShippingMethod) Key() string {
	return m.MethodID + ":" + strconv.FormatInt(m.InstanceID, 10)
}

// ConfigureResult reports what ConfigureShipping changed.
type ConfigureResult struct {
	ZoneID      int64    `json:"zone_id"`
	ZoneCreated bool     `json:"zone_created"`
	Added       []string `json:"added"`
}

// PostNetDetails is the courier information shown on an order.
type PostNetDetails struct {
	OrderID          int64  `json:"order_id"`
	DestinationStore string `json:"destination_store,omitempty"`
	WaybillNumber    string `json:"waybill_number,omitempty"`
	TrackingURL      string `json:"tracking_url,omitempty"`
	LabelPrint       string `json:"label_print,omitempty"`
}
