package httpclient

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"postnet-delivery/internal/core/logger"

	"go.uber.org/zap"
)

// LoggingRoundTripper captures request details for debugging.
type LoggingRoundTripper struct {
	// Proxied is the underlying RoundTripper to execute the request.
	Proxied http.RoundTripper
}

// RoundTrip executes the request and logs details.
func (lrt *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	logger.Get().Debug("HTTP Request Started",
		zap.String("method", req.Method),
		zap.String("url", redact(req)),
	)

	resp, err := lrt.Proxied.RoundTrip(req)

	duration := time.Since(start)

	if err != nil {
		logger.Get().Error("HTTP Request Failed",
			zap.String("method", req.Method),
			zap.String("url", redact(req)),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Get().Debug("HTTP Request Completed",
		zap.String("method", req.Method),
		zap.String("url", redact(req)),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", duration),
	)

	return resp, nil
}

// redact drops API keys from the logged URL.
func redact(req *http.Request) string {
	return redactURL(req.URL)
}

func redactURL(u *url.URL) string {
	q := u.Query()
	if q.Get("key") == "" {
		return u.String()
	}
	clean := *u
	q.Set("key", "REDACTED")
	clean.RawQuery = q.Encode()
	return clean.String()
}

// RedactError returns err with API keys removed from the URL of a *url.Error,
// as returned by http.Client.Do. Other errors are returned unchanged.
func RedactError(err error) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	u, perr := url.Parse(urlErr.URL)
	if perr != nil {
		return urlErr.Err
	}
	return &url.Error{Op: urlErr.Op, URL: redactURL(u), Err: urlErr.Err}
}

// NewClient returns an http.Client with logging middleware.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &LoggingRoundTripper{
			Proxied: http.DefaultTransport,
		},
		Timeout: timeout,
	}
}

// BasicAuth builds the value of an HTTP Basic Authorization header.
func BasicAuth(username, password string) string {
	authVal := make([]byte, 0, len(username)+len(password)+1)
	authVal = fmt.Appendf(authVal, "%s:%s", username, password)
	return "Basic " + base64.StdEncoding.EncodeToString(authVal)
}
