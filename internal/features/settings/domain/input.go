package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// LooseFloat decodes from a JSON number, a numeric string, or null.
// Anything unparsable decodes to zero.
type LooseFloat float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *LooseFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}

	raw := string(b)
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*f = 0
			return nil
		}
		raw = strings.TrimSpace(s)
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = LooseFloat(v)
	return nil
}

// Input is the settings form as submitted by the admin.
type Input struct {
	ServiceTypes         []string   `json:"service_type"`
	PostnetToPostnetFee  LooseFloat `json:"postnet_to_postnet_fee"`
	OrderAmountThreshold LooseFloat `json:"order_amount_threshold"`
	CollectionType       string     `json:"collection_type"`
	OriginStore          string     `json:"postnet_store"`
	APIKey               string     `json:"postnet_api_key"`
	APIPasscode          string     `json:"postnet_api_passcode"`
	MapsAPIKey           string     `json:"google_maps_api_key"`
}

// Sanitize coerces the input into a storable Settings record.
// Unknown service types are dropped and the rest are de-duplicated in display order.
// Negative amounts become zero. An unknown collection type falls back to always_collect.
func (in Input) Sanitize() Settings {
	requested := make(map[ServiceType]bool, len(in.ServiceTypes))
	for _, raw := range in.ServiceTypes {
		requested[ServiceType(strings.TrimSpace(raw))] = true
	}

	types := []ServiceType{}
	for _, st := range ServiceTypes() {
		if requested[st] {
			types = append(types, st)
		}
	}

	collection := CollectionType(strings.TrimSpace(in.CollectionType))
	if !collection.Valid() {
		collection = AlwaysCollect
	}

	return Settings{
		ServiceTypes:         types,
		PostnetToPostnetFee:  nonNegative(float64(in.PostnetToPostnetFee)),
		OrderAmountThreshold: nonNegative(float64(in.OrderAmountThreshold)),
		CollectionType:       collection,
		OriginStore:          strings.TrimSpace(in.OriginStore),
		APIKey:               strings.TrimSpace(in.APIKey),
		APIPasscode:          strings.TrimSpace(in.APIPasscode),
		MapsAPIKey:           strings.TrimSpace(in.MapsAPIKey),
	}
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
