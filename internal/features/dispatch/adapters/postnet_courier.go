package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"postnet-delivery/internal/core/httpclient"
	"postnet-delivery/internal/core/logger"
	"postnet-delivery/internal/core/metrics"
	"postnet-delivery/internal/core/resilience"
	"postnet-delivery/internal/features/dispatch/domain"

	"go.uber.org/zap"
)

// PostNetCourier posts orders to the PostNet plugin order endpoint.
type PostNetCourier struct {
	url     string
	client  *http.Client
	breaker *resilience.CircuitBreaker
}

// NewPostNetCourier creates a courier client. Calls are never retried.
func NewPostNetCourier(url string, timeout time.Duration) *PostNetCourier {
	return &PostNetCourier{
		url:     url,
		client:  httpclient.NewClient(timeout),
		breaker: resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("postnet-dispatch")),
	}
}

// Dispatch sends the payload and returns the courier's answer.
// A response without success is returned together with ErrDispatchRejected.
func (c *PostNetCourier) Dispatch(ctx context.Context, creds domain.Credentials, payload domain.Payload) (*domain.Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	start := time.Now()
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.post(ctx, creds, body)
	})
	metrics.DispatchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCourierUnavailable, err)
	}

	result := out.(*domain.Result)
	if !result.Success {
		return result, domain.ErrDispatchRejected
	}
	return result, nil
}

func (c *PostNetCourier) post(ctx context.Context, creds domain.Credentials, body []byte) (*domain.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", httpclient.BasicAuth(creds.APIKey, creds.APIPasscode))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var result domain.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		logger.Get().Error("Courier returned an unreadable response",
			zap.Int("status_code", resp.StatusCode),
			zap.ByteString("body", raw),
		)
		return nil, fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}

	if !result.Success {
		logger.Get().Warn("Courier rejected order",
			zap.Int("status_code", resp.StatusCode),
			zap.ByteString("body", raw),
		)
	}
	return &result, nil
}
