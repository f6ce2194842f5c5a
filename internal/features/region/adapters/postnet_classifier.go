package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"postnet-delivery/internal/core/httpclient"
	"postnet-delivery/internal/core/logger"
	"postnet-delivery/internal/core/metrics"
	"postnet-delivery/internal/core/resilience"

	"go.uber.org/zap"
)

// PostNetClassifier asks the PostNet is-main endpoint whether a postcode is in a main centre.
type PostNetClassifier struct {
	baseURL string
	client  *http.Client
	breaker *resilience.CircuitBreaker
	logger  *zap.Logger
}

// NewPostNetClassifier creates a classifier calling baseURL?postcode=<pc>.
func NewPostNetClassifier(baseURL string, timeout time.Duration) *PostNetClassifier {
	return &PostNetClassifier{
		baseURL: baseURL,
		client:  httpclient.NewClient(timeout),
		breaker: resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("postnet-is-main")),
		logger:  logger.Get(),
	}
}

type isMainResponse struct {
	Main *bool `json:"main"`
}

// IsMainMetro reports whether postalCode is a main centre. Every failure,
// including an open circuit, is logged and reads as regional.
func (c *PostNetClassifier) IsMainMetro(ctx context.Context, postalCode string) bool {
	postalCode = strings.TrimSpace(postalCode)
	if postalCode == "" {
		metrics.ClassifierLookups.WithLabelValues("skipped").Inc()
		return false
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.lookup(ctx, postalCode)
	})
	if err != nil {
		c.logger.Warn("Postcode classification failed, assuming regional",
			zap.String("postcode", postalCode),
			zap.Error(err),
		)
		metrics.ClassifierLookups.WithLabelValues("error").Inc()
		return false
	}

	isMain := result.(bool)
	if isMain {
		metrics.ClassifierLookups.WithLabelValues("main").Inc()
	} else {
		metrics.ClassifierLookups.WithLabelValues("regional").Inc()
	}
	return isMain
}

func (c *PostNetClassifier) lookup(ctx context.Context, postalCode string) (bool, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return false, fmt.Errorf("invalid classifier URL: %w", err)
	}
	q := u.Query()
	q.Set("postcode", postalCode)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("is-main API returned status %d", resp.StatusCode)
	}

	var body isMainResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("failed to decode response: %w", err)
	}
	if body.Main == nil {
		return false, fmt.Errorf("is-main response has no main field")
	}
	return *body.Main, nil
}
