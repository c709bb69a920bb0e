// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the shared HTTP fetch path for discovery
// backends: rate limiting, retry on transient failures, and response
// caching in one place.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/review-engine/internal/cache"
	"github.com/pdiddy/review-engine/internal/retry"
)

// maxResponseBytes caps a single API response body.
const maxResponseBytes = 10 << 20

// StatusError reports a non-2xx response from an upstream API.
type StatusError struct {
	Status int
	URL    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.Status, e.URL)
}

// Transient reports whether err is worth retrying: network-level
// failures, rate limiting, and server-side errors. Client errors (404,
// 400) are permanent.
func Transient(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status == http.StatusTooManyRequests || se.Status >= 500
	}
	var ne net.Error
	return errors.As(err, &ne)
}

// Fetcher is the shared GET path for API backends. Limiter and Cache
// are optional; a nil Limiter means unthrottled, a nil Cache means
// every call goes to the network.
type Fetcher struct {
	Client    *http.Client
	Limiter   *rate.Limiter
	Cache     *cache.Store
	Policy    retry.Policy
	UserAgent string
}

// GetJSON fetches url and decodes the response body into v. Responses
// are cached for ttl when a cache is configured, so repeated discovery
// runs replay from disk instead of hammering the API.
func (f *Fetcher) GetJSON(ctx context.Context, url string, header http.Header, ttl time.Duration, v any) error {
	body, err := f.get(ctx, url, header, ttl)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("parsing response from %s: %w", url, err)
	}
	return nil
}

// Get fetches url and returns the raw body, for non-JSON endpoints.
func (f *Fetcher) Get(ctx context.Context, url string, header http.Header, ttl time.Duration) ([]byte, error) {
	return f.get(ctx, url, header, ttl)
}

func (f *Fetcher) get(ctx context.Context, url string, header http.Header, ttl time.Duration) ([]byte, error) {
	fetch := func() ([]byte, error) {
		var body []byte
		err := retry.Do(ctx, f.Policy, Transient, func() error {
			var ferr error
			body, ferr = f.fetchOnce(ctx, url, header)
			return ferr
		})
		return body, err
	}

	if f.Cache != nil && ttl > 0 {
		return f.Cache.GetOrCompute(cache.Key("http", url), ttl, fetch)
	}
	return fetch()
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string, header http.Header) ([]byte, error) {
	if f.Limiter != nil {
		if err := f.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Status: resp.StatusCode, URL: url}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", url, err)
	}
	return body, nil
}
