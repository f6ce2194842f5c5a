package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrStoreNotFound is returned when a store code is unknown to the directory.
	ErrStoreNotFound = errors.New("store not found")
	// ErrDirectoryUnavailable wraps every failure to reach or decode the store directory.
	ErrDirectoryUnavailable = errors.New("store directory unavailable")
	// ErrNoDetailsEndpoint is returned by directories without a per-store details endpoint.
	ErrNoDetailsEndpoint = errors.New("store details endpoint not configured")
)

// Store is a PostNet branch that can receive parcels.
type Store struct {
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	Address    string  `json:"address,omitempty"`
	Suburb     string  `json:"suburb,omitempty"`
	City       string  `json:"city,omitempty"`
	Province   string  `json:"province,omitempty"`
	PostalCode string  `json:"postal_code,omitempty"`
	Latitude   float64 `json:"lat,omitempty"`
	Longitude  float64 `json:"lng,omitempty"`
	Email      string  `json:"email,omitempty"`
	Telephone  string  `json:"telephone,omitempty"`
}

// StoreDetail adds opening hours and services to a store.
type StoreDetail struct {
	Store
	TradingHours string   `json:"trading_hours,omitempty"`
	Services     []string `json:"services,omitempty"`
}

// UnmarshalJSON accepts the field spellings used by the different PostNet endpoints.
func (s *Store) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = storeFromMap(raw)
	return nil
}

// UnmarshalJSON decodes the store fields plus trading hours and services.
func (d *StoreDetail) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.Store = storeFromMap(raw)
	d.TradingHours = text(first(raw, "trading_hours", "tradingHours", "hours", "operating_hours"))
	d.Services = list(first(raw, "services", "store_services"))
	return nil
}

func storeFromMap(raw map[string]interface{}) Store {
	return Store{
		Code:       text(first(raw, "code", "store_code", "storeCode")),
		Name:       text(first(raw, "name", "store_name", "storeName")),
		Address:    text(first(raw, "address", "street_address", "physical_address")),
		Suburb:     text(first(raw, "suburb")),
		City:       text(first(raw, "city", "town")),
		Province:   text(first(raw, "province", "region")),
		PostalCode: text(first(raw, "postal_code", "postcode", "postalCode")),
		Latitude:   number(first(raw, "lat", "latitude")),
		Longitude:  number(first(raw, "lng", "longitude", "lon")),
		Email:      text(first(raw, "email", "store_email")),
		Telephone:  text(first(raw, "telephone", "phone", "tel")),
	}
}

func first(raw map[string]interface{}, keys ...string) interface{} {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func text(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

func number(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f
	}
	return 0
}

func list(v interface{}) []string {
	switch val := v.(type) {
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s := text(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		for _, part := range strings.Split(val, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// DecodeList decodes a store list that is either a bare array or wrapped in
// a "stores" or "data" member. Entries without a code are dropped.
func DecodeList(data []byte) ([]Store, error) {
	var stores []Store
	if err := json.Unmarshal(data, &stores); err != nil {
		var wrapped struct {
			Stores []Store `json:"stores"`
			Data   []Store `json:"data"`
		}
		if werr := json.Unmarshal(data, &wrapped); werr != nil {
			return nil, err
		}
		stores = wrapped.Stores
		if len(stores) == 0 {
			stores = wrapped.Data
		}
	}
	if stores == nil && strings.TrimSpace(string(data)) == "null" {
		return nil, errors.New("store list is null")
	}

	out := stores[:0]
	for _, s := range stores {
		if s.Code != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

// FindByCode returns the store with code, matching case-insensitively.
func FindByCode(stores []Store, code string) (Store, bool) {
	for _, s := range stores {
		if strings.EqualFold(s.Code, code) {
			return s, true
		}
	}
	return Store{}, false
}

// Address is the customer's shipping address used to locate nearby stores.
type Address struct {
	Street   string `json:"shipping_address_1" form:"shipping_address_1"`
	Street2  string `json:"shipping_address_2" form:"shipping_address_2"`
	City     string `json:"shipping_city" form:"shipping_city"`
	State    string `json:"shipping_state" form:"shipping_state"`
	Postcode string `json:"shipping_postcode" form:"shipping_postcode"`
}

// Complete reports whether the address has enough to locate stores.
func (a Address) Complete() bool {
	return strings.TrimSpace(a.Street) != "" &&
		strings.TrimSpace(a.City) != "" &&
		strings.TrimSpace(a.Postcode) != ""
}

// String joins the non-empty parts with ", ".
func (a Address) String() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{a.Street, a.Street2, a.City, a.State, a.Postcode} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
