package adapters

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"postnet-delivery/internal/features/maps/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoogleGeocoder_ValidateKey(t *testing.T) {
	tests := []struct {
		name      string
		response  string
		wantValid bool
		wantMsg   string
	}{
		{"OK", `{"status":"OK","results":[{}]}`, true, "API key is valid."},
		{"ZeroResults", `{"status":"ZERO_RESULTS","results":[]}`, true, "API key is valid."},
		{"Denied", `{"status":"REQUEST_DENIED","error_message":"The provided API key is invalid."}`, false, "The provided API key is invalid."},
		{"InvalidRequest", `{"status":"INVALID_REQUEST","error_message":"Invalid request. Missing the 'address' parameter."}`, false, "Invalid request. Missing the 'address' parameter."},
		{"DeniedWithoutMessage", `{"status":"REQUEST_DENIED"}`, true, "API key is valid."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "k-123", r.URL.Query().Get("key"))
				assert.NotEmpty(t, r.URL.Query().Get("address"))
				w.Write([]byte(tt.response))
			}))
			defer server.Close()

			got, err := NewGoogleGeocoder(server.URL, time.Second).ValidateKey(context.Background(), "k-123")
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, got.Valid)
			assert.Equal(t, tt.wantMsg, got.Message)
		})
	}
}

func TestGoogleGeocoder_Unavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("down"))
	}))
	defer server.Close()

	_, err := NewGoogleGeocoder(server.URL, time.Second).ValidateKey(context.Background(), "k")
	assert.ErrorIs(t, err, domain.ErrMapsUnavailable)

	_, err = NewGoogleGeocoder("http://invalid-url.local", time.Second).ValidateKey(context.Background(), "k")
	assert.ErrorIs(t, err, domain.ErrMapsUnavailable)
}

func TestGoogleGeocoder_TransportErrorOmitsKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	_, err := NewGoogleGeocoder(addr, time.Second).ValidateKey(context.Background(), "AIza-secret-key")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMapsUnavailable)
	assert.NotContains(t, err.Error(), "AIza-secret-key")
	assert.Contains(t, err.Error(), "key=REDACTED")
}
