package domain

import (
	"errors"

	rates "postnet-delivery/internal/features/rates/domain"
	settings "postnet-delivery/internal/features/settings/domain"
)

var (
	// ErrDispatchRejected is returned when the courier answers without success.
	ErrDispatchRejected = errors.New("courier rejected the order")
	// ErrCourierUnavailable is returned when the courier API cannot be reached or answers garbage.
	ErrCourierUnavailable = errors.New("courier API unavailable")
)

// Payload is the order submitted to the courier.
type Payload struct {
	OnlineStoreName       string      `json:"online_store_name"`
	CollectionType        string      `json:"collection_type"`
	ServiceType           string      `json:"service_type"`
	OriginStore           string      `json:"origin_store"`
	DestinationStore      string      `json:"destination_store"`
	ReceiverStreetAddress string      `json:"receiver_street_address"`
	ReceiverSuburb        string      `json:"receiver_suburb"`
	ReceiverPostalCode    string      `json:"receiver_postal_code"`
	ReceiverName          string      `json:"receiver_name"`
	ReceiverContactPerson string      `json:"receiver_contact_person"`
	ReceiverContactNumber string      `json:"receiver_contact_number"`
	OrderNumber           string      `json:"order_number"`
	OrderTotal            float64     `json:"order_total"`
	OrderItems            []OrderItem `json:"order_items"`
}

// OrderItem is one parcel line. ProductID is sent as a string.
type OrderItem struct {
	ProductID   string  `json:"product_id"`
	Description string  `json:"description"`
	Qty         int     `json:"qty"`
	Price       float64 `json:"price"`
	Weight      float64 `json:"weight"`
	Length      float64 `json:"length"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
}

// Result is the courier's answer to a dispatched order.
type Result struct {
	Success       bool   `json:"success"`
	WaybillNumber string `json:"waybill_number"`
	TrackingURL   string `json:"tracking_url"`
	LabelPrint    string `json:"label_print"`
}

// Credentials authenticate against the courier API.
type Credentials struct {
	APIKey      string
	APIPasscode string
}

// Outcome summarises what HandleOrderReceived did.
type Outcome struct {
	OrderID      int64                `json:"order_id"`
	Dispatched   bool                 `json:"dispatched"`
	ChosenMethod string               `json:"chosen_method,omitempty"`
	ServiceType  settings.ServiceType `json:"service_type,omitempty"`
	Result       *Result              `json:"result,omitempty"`
	Reason       string               `json:"reason,omitempty"`
}

// ServiceTypeFor maps a rate kind and destination classification to the
// courier service type. Free shipping is sent as express.
func ServiceTypeFor(kind rates.RateKind, isMain bool) (settings.ServiceType, bool) {
	switch kind {
	case rates.RateKindStoreToStore:
		return settings.PostnetToPostnet, true
	case rates.RateKindFree, rates.RateKindExpress:
		if isMain {
			return settings.MainCentreExpress, true
		}
		return settings.RegionalCentreExpress, true
	case rates.RateKindEconomy:
		if isMain {
			return settings.MainCentreEconomy, true
		}
		return settings.RegionalCentreEconomy, true
	}
	return "", false
}
