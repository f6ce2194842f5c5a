package domain

import "errors"

// ErrMapsUnavailable is returned when the maps API cannot be reached.
var ErrMapsUnavailable = errors.New("maps API unavailable")

// KeyValidation is the verdict on a maps API key.
type KeyValidation struct {
	Valid   bool   `json:"success"`
	Message string `json:"message"`
}
