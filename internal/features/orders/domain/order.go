package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Order meta keys written by the delivery integration.
const (
	MetaDestinationStore     = "Destination Store"
	MetaWaybillNumber        = "Waybill Number"
	MetaTrackingURL          = "Tracking URL"
	MetaLabelPrint           = "Label Print"
	MetaChosenShippingMethod = "_chosen_shipping_method"
)

var (
	// ErrOrderNotFound is returned when the order does not exist.
	ErrOrderNotFound = errors.New("order not found")
	// ErrEmailMismatch is returned when the provided email does not match the order's email.
	ErrEmailMismatch = errors.New("email does not match order record")
	// ErrProductNotFound is returned when the product does not exist.
	ErrProductNotFound = errors.New("product not found")
)

// Address is a billing or shipping address.
type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company,omitempty"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2,omitempty"`
	City      string `json:"city"`
	State     string `json:"state"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// FullName joins the first and last name.
func (a Address) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// LineItem is a product line of an order.
type LineItem struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Total     float64 `json:"total"`
}

// ShippingLine is the shipping method applied to an order.
type ShippingLine struct {
	ID          int64  `json:"id"`
	MethodID    string `json:"method_id"`
	InstanceID  string `json:"instance_id"`
	MethodTitle string `json:"method_title"`
}

// MethodKey returns the "method_id:instance_id" rate id.
func (s ShippingLine) MethodKey() string {
	if s.InstanceID == "" {
		return s.MethodID
	}
	return s.MethodID + ":" + s.InstanceID
}

// MetaEntry is a single order meta row.
type MetaEntry struct {
	ID    int64  `json:"id,omitempty"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Order is a WooCommerce order as seen by the delivery integration.
type Order struct {
	ID            int64          `json:"id"`
	Number        string         `json:"number"`
	Status        string         `json:"status"`
	Total         float64        `json:"total"`
	Billing       Address        `json:"billing"`
	Shipping      Address        `json:"shipping"`
	Items         []LineItem     `json:"line_items"`
	ShippingLines []ShippingLine `json:"shipping_lines"`
	Meta          []MetaEntry    `json:"meta_data"`
	CreatedAt     time.Time      `json:"date_created"`
}

// MetaValue returns the last value stored under key, or "".
func (o *Order) MetaValue(key string) string {
	val := ""
	for _, m := range o.Meta {
		if m.Key == key {
			val = m.Value
		}
	}
	return val
}

// MetaIDs returns the row ids stored under key.
func (o *Order) MetaIDs(key string) []int64 {
	var ids []int64
	for _, m := range o.Meta {
		if m.Key == key && m.ID != 0 {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// ChosenMethod returns the shipping rate id recorded on the order: the
// _chosen_shipping_method meta first, then the first shipping line.
func (o *Order) ChosenMethod() string {
	if v := o.MetaValue(MetaChosenShippingMethod); v != "" {
		return v
	}
	if len(o.ShippingLines) > 0 {
		return o.ShippingLines[0].MethodKey()
	}
	return ""
}

// ShippingLineTitle returns the title of the shipping line matching key, or "".
func (o *Order) ShippingLineTitle(key string) string {
	for _, l := range o.ShippingLines {
		if l.MethodKey() == key {
			return l.MethodTitle
		}
	}
	return ""
}

// OrderNumber returns the display number, falling back to the id.
func (o *Order) OrderNumber() string {
	if o.Number != "" {
		return o.Number
	}
	return fmt.Sprintf("%d", o.ID)
}

// Product is the catalog data needed for fees and dispatch.
type Product struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}
