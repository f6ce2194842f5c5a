package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"postnet-delivery/internal/core/config"
	"postnet-delivery/internal/core/httpclient"
	"postnet-delivery/internal/core/logger"
	"postnet-delivery/internal/core/resilience"
	"postnet-delivery/internal/features/stores/domain"

	"go.uber.org/zap"
)

const maxBody = 8 << 20

type notFound struct{}

// errNotFound marks a 404. Only a details lookup reads it as a missing store.
var errNotFound = errors.New("store directory returned status 404")

// PostNetDirectory fetches stores from the PostNet website endpoints.
type PostNetDirectory struct {
	storesURL  string
	locatorURL string
	detailsURL string
	client     *http.Client
	breaker    *resilience.CircuitBreaker
	logger     *zap.Logger
}

// NewPostNetDirectory creates a directory client from the PostNet configuration.
func NewPostNetDirectory(cfg config.PostNetConfig, timeout time.Duration) *PostNetDirectory {
	return &PostNetDirectory{
		storesURL:  cfg.StoresURL,
		locatorURL: cfg.StoreLocatorURL,
		detailsURL: cfg.StoreDetailsURL,
		client:     httpclient.NewClient(timeout),
		breaker:    resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("postnet-store-directory")),
		logger:     logger.Get(),
	}
}

// FetchAll returns the full store list.
func (d *PostNetDirectory) FetchAll(ctx context.Context) ([]domain.Store, error) {
	body, err := d.get(ctx, d.storesURL, nil)
	if err != nil {
		return nil, err
	}

	stores, err := domain.DecodeList(body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode store list: %v", domain.ErrDirectoryUnavailable, err)
	}
	return stores, nil
}

// Locate returns the stores the locator suggests for address.
func (d *PostNetDirectory) Locate(ctx context.Context, address string) ([]domain.Store, error) {
	body, err := d.get(ctx, d.locatorURL, url.Values{"data[address]": {address}})
	if err != nil {
		return nil, err
	}

	stores, err := domain.DecodeList(body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode locator response: %v", domain.ErrDirectoryUnavailable, err)
	}
	return stores, nil
}

// Details fetches one store. Without a details URL it returns ErrNoDetailsEndpoint.
func (d *PostNetDirectory) Details(ctx context.Context, code string) (*domain.StoreDetail, error) {
	if d.detailsURL == "" {
		return nil, domain.ErrNoDetailsEndpoint
	}

	body, err := d.get(ctx, d.detailsURL, url.Values{"code": {code}})
	if errors.Is(err, errNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrStoreNotFound, code)
	}
	if err != nil {
		return nil, err
	}

	var detail domain.StoreDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, fmt.Errorf("%w: failed to decode store details: %v", domain.ErrDirectoryUnavailable, err)
	}
	if detail.Code == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrStoreNotFound, code)
	}
	return &detail, nil
}

// get performs a GET through the breaker and returns the body of a 2xx response.
func (d *PostNetDirectory) get(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid URL: %v", domain.ErrDirectoryUnavailable, err)
	}
	if len(params) > 0 {
		q := u.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	result, err := d.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := d.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to execute request: %w", err)
		}
		defer resp.Body.Close()

		// 404s do not count as breaker failures.
		if resp.StatusCode == http.StatusNotFound {
			return notFound{}, nil
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("store directory returned status %d", resp.StatusCode)
		}

		return io.ReadAll(io.LimitReader(resp.Body, maxBody))
	})
	if err != nil {
		d.logger.Warn("Store directory request failed", zap.String("url", u.Path), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrDirectoryUnavailable, err)
	}
	if _, ok := result.(notFound); ok {
		return nil, fmt.Errorf("%w: %w", domain.ErrDirectoryUnavailable, errNotFound)
	}
	return result.([]byte), nil
}
