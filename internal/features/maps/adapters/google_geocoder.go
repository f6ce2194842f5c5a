package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"postnet-delivery/internal/core/httpclient"
	"postnet-delivery/internal/features/maps/domain"
)

// probeAddress is geocoded to exercise the key.
const probeAddress = "Johannesburg, South Africa"

// GoogleGeocoder validates keys with a Geocoding API request.
type GoogleGeocoder struct {
	baseURL string
	client  *http.Client
}

// NewGoogleGeocoder creates a validator calling the geocode endpoint at baseURL.
func NewGoogleGeocoder(baseURL string, timeout time.Duration) *GoogleGeocoder {
	return &GoogleGeocoder{
		baseURL: baseURL,
		client:  httpclient.NewClient(timeout),
	}
}

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

// ValidateKey geocodes a fixed address with apiKey. REQUEST_DENIED and
// INVALID_REQUEST answers carrying an error message mean the key is invalid.
func (g *GoogleGeocoder) ValidateKey(ctx context.Context, apiKey string) (domain.KeyValidation, error) {
	u, err := url.Parse(g.baseURL)
	if err != nil {
		return domain.KeyValidation{}, fmt.Errorf("invalid geocode URL: %w", err)
	}
	q := u.Query()
	q.Set("address", probeAddress)
	q.Set("key", apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return domain.KeyValidation{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return domain.KeyValidation{}, fmt.Errorf("%w: %w", domain.ErrMapsUnavailable, httpclient.RedactError(err))
	}
	defer resp.Body.Close()

	var body geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.KeyValidation{}, fmt.Errorf("%w: failed to decode response (status %d): %w", domain.ErrMapsUnavailable, resp.StatusCode, err)
	}

	switch body.Status {
	case "REQUEST_DENIED", "INVALID_REQUEST":
		if body.ErrorMessage != "" {
			return domain.KeyValidation{Valid: false, Message: body.ErrorMessage}, nil
		}
	}

	return domain.KeyValidation{Valid: true, Message: "API key is valid."}, nil
}
