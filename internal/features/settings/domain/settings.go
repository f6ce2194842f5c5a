package domain

// ServiceType is a courier service level the store can offer.
type ServiceType string

const (
	PostnetToPostnet      ServiceType = "postnet_to_postnet"
	RegionalCentreExpress ServiceType = "regional_centre_express"
	RegionalCentreEconomy ServiceType = "regional_centre_economy"
	MainCentreExpress     ServiceType = "main_centre_express"
	MainCentreEconomy     ServiceType = "main_centre_economy"
)

var serviceTypeLabels = map[ServiceType]string{
	PostnetToPostnet:      "PostNet to PostNet",
	RegionalCentreExpress: "Regional Centre - Express",
	RegionalCentreEconomy: "Regional Centre - Economy",
	MainCentreExpress:     "Main Centre - Express",
	MainCentreEconomy:     "Main Centre - Economy",
}

// ServiceTypes returns every service type in display order.
func ServiceTypes() []ServiceType {
	return []ServiceType{
		PostnetToPostnet,
		RegionalCentreExpress,
		RegionalCentreEconomy,
		MainCentreExpress,
		MainCentreEconomy,
	}
}

// FeeServiceTypes returns the service types priced per product.
// Store-to-store uses the flat fee instead.
func FeeServiceTypes() []ServiceType {
	return ServiceTypes()[1:]
}

// Label returns the human readable name.
func (s ServiceType) Label() string {
	return serviceTypeLabels[s]
}

// Valid reports whether s is a known service type.
func (s ServiceType) Valid() bool {
	_, ok := serviceTypeLabels[s]
	return ok
}

// CollectionType tells the courier how parcels are handed over by the store.
type CollectionType string

const (
	AlwaysCollect CollectionType = "always_collect"
	AlwaysDeliver CollectionType = "always_deliver"
	ServiceBased  CollectionType = "service_based"
)

// Valid reports whether c is a known collection type.
func (c CollectionType) Valid() bool {
	switch c {
	case AlwaysCollect, AlwaysDeliver, ServiceBased:
		return true
	}
	return false
}

// Settings is the merchant configuration, stored as one record.
type Settings struct {
	ServiceTypes         []ServiceType  `json:"service_type" validate:"dive,service_type"`
	PostnetToPostnetFee  float64        `json:"postnet_to_postnet_fee" validate:"gte=0"`
	OrderAmountThreshold float64        `json:"order_amount_threshold" validate:"gte=0"`
	CollectionType       CollectionType `json:"collection_type" validate:"oneof=always_collect always_deliver service_based"`
	OriginStore          string         `json:"postnet_store" validate:"max=64"`
	OriginStoreEmail     string         `json:"postnet_store_email" validate:"max=254"`
	APIKey               string         `json:"postnet_api_key" validate:"max=256"`
	APIPasscode          string         `json:"postnet_api_passcode" validate:"max=256"`
	MapsAPIKey           string         `json:"google_maps_api_key" validate:"max=256"`
}

// Default returns the configuration used before the merchant saves anything.
func Default() Settings {
	return Settings{
		ServiceTypes:   []ServiceType{},
		CollectionType: AlwaysCollect,
	}
}

// Enabled reports whether the merchant offers st.
func (s Settings) Enabled(st ServiceType) bool {
	for _, t := range s.ServiceTypes {
		if t == st {
			return true
		}
	}
	return false
}

// FreeShipping reports whether subtotal qualifies for free shipping.
// A threshold of zero disables free shipping.
func (s Settings) FreeShipping(subtotal float64) bool {
	return s.OrderAmountThreshold > 0 && subtotal >= s.OrderAmountThreshold
}
