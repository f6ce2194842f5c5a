package adapters

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"postnet-delivery/internal/core/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPostNetClassifier_IsMainMetro(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   bool
	}{
		{"Main", http.StatusOK, `{"main": true}`, true},
		{"Regional", http.StatusOK, `{"main": false}`, false},
		{"ServerError", http.StatusInternalServerError, `{"main": true}`, false},
		{"Malformed", http.StatusOK, `<html>`, false},
		{"MissingField", http.StatusOK, `{}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "2196", r.URL.Query().Get("postcode"))
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := NewPostNetClassifier(server.URL, time.Second)
			assert.Equal(t, tt.want, c.IsMainMetro(context.Background(), "2196"))
		})
	}
}

func TestPostNetClassifier_EmptyPostcodeSkipsRequest(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	before := testutil.ToFloat64(metrics.ClassifierLookups.WithLabelValues("skipped"))

	c := NewPostNetClassifier(server.URL, time.Second)
	assert.False(t, c.IsMainMetro(context.Background(), "  "))
	assert.Zero(t, atomic.LoadInt32(&calls))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ClassifierLookups.WithLabelValues("skipped")))
}

func TestPostNetClassifier_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"main": true}`))
	}))
	defer server.Close()

	c := NewPostNetClassifier(server.URL, 50*time.Millisecond)
	assert.False(t, c.IsMainMetro(context.Background(), "8001"))
}

func TestPostNetClassifier_OpenCircuitShortCircuits(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewPostNetClassifier(server.URL, time.Second)
	for i := 0; i < 8; i++ {
		assert.False(t, c.IsMainMetro(context.Background(), "2196"))
	}

	// The breaker trips after five consecutive failures.
	assert.Equal(t, int32(5), atomic.LoadInt32(&calls))
}
