package domain

import (
	"encoding/json"
	"net/url"
	"strings"
)

// CookieName is the browser cookie that remembers the chosen store.
const CookieName = "postnet_selected_store"

// CookieMaxAge is the cookie lifetime in seconds.
const CookieMaxAge = 86400

// DestinationSelection is the store a customer picked for collection.
type DestinationSelection struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Encode renders the selection as the JSON pair ["code","name"] stored on orders.
func (d DestinationSelection) Encode() string {
	b, _ := json.Marshal([2]string{d.Code, d.Name})
	return string(b)
}

// CookieValue returns the URL-encoded form written to the selection cookie.
func (d DestinationSelection) CookieValue() string {
	return url.QueryEscape(d.Encode())
}

// IsZero reports whether nothing was selected.
func (d DestinationSelection) IsZero() bool {
	return d.Code == ""
}

// ParseSelection decodes a stored selection. It accepts the JSON pair, its
// URL-encoded cookie form and legacy plain store codes, which are used as
// both code and name.
func ParseSelection(raw string) (DestinationSelection, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DestinationSelection{}, false
	}

	if strings.HasPrefix(raw, "%5B") || strings.HasPrefix(raw, "%5b") {
		if decoded, err := url.QueryUnescape(raw); err == nil {
			raw = decoded
		}
	}

	if strings.HasPrefix(raw, "[") {
		var pair []string
		if err := json.Unmarshal([]byte(raw), &pair); err != nil || len(pair) == 0 || strings.TrimSpace(pair[0]) == "" {
			return DestinationSelection{}, false
		}
		sel := DestinationSelection{Code: strings.TrimSpace(pair[0])}
		if len(pair) > 1 {
			sel.Name = strings.TrimSpace(pair[1])
		}
		return sel, true
	}

	return DestinationSelection{Code: raw, Name: raw}, true
}
