// Package httpclient holds the shared outbound HTTP plumbing for connectors.
package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultUserAgent identifies georisk to third-party APIs.
const DefaultUserAgent = "georisk/1.0 (+https://github.com/abelbrown/georisk)"

// New returns an http.Client with conservative dial/TLS timeouts and the
// given overall request timeout.
func New(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: tr}
}

var defaultClient = New(30 * time.Second)

// Default returns the shared client.
func Default() *http.Client {
	return defaultClient
}

// StatusError represents a non-2xx HTTP response.
type StatusError struct {
	StatusCode int
	Body       string // first 512 bytes
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Get issues a GET with the context and user agent and returns the body.
// Non-2xx responses return *StatusError.
func Get(ctx context.Context, client *http.Client, rawURL string, query url.Values, userAgent string) ([]byte, error) {
	if len(query) > 0 {
		rawURL += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		redact(err)
		return nil, fmt.Errorf("create request: %w", err)
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		redact(err)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b := string(body)
		if len(b) > 512 {
			b = b[:512]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: b}
	}
	return body, nil
}

// redact scrubs the URL carried by a *url.Error in err's chain.
func redact(err error) {
	var ue *url.Error
	if errors.As(err, &ue) {
		ue.URL = redactQuery(ue.URL)
	}
}

// redactQuery drops the query string, which may carry API keys, from a URL
// destined for errors and logs.
func redactQuery(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		if i := strings.IndexByte(raw, '?'); i >= 0 {
			return raw[:i]
		}
		return raw
	}
	if u.RawQuery != "" {
		u.RawQuery = "redacted"
	}
	u.User = nil
	return u.String()
}

// GetJSON is Get followed by json.Unmarshal into dest.
func GetJSON(ctx context.Context, client *http.Client, rawURL string, query url.Values, userAgent string, dest any) error {
	body, err := Get(ctx, client, rawURL, query, userAgent)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
