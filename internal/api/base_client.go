package api

import (
	"context"
	"net/http"
)

const (
	// MaxConcurrentRequests limits concurrent API requests to avoid overwhelming the API
	MaxConcurrentRequests = 5
	// DefaultPageSize is the number of items requested per page
	DefaultPageSize = 100
)

// HTTPClient interface for HTTP operations (allows mocking in tests).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// BaseClient contains common fields and functionality for API clients.
type BaseClient struct {
	BaseURL    string
	Token      string
	HTTPClient HTTPClient
	Semaphore  chan struct{} // Limits concurrent requests
}

// NewBaseClient creates a new base client with rate limiting.
func NewBaseClient(baseURL, token string, httpClient HTTPClient) *BaseClient {
	return &BaseClient{
		BaseURL:    baseURL,
		Token:      token,
		HTTPClient: httpClient,
		Semaphore:  make(chan struct{}, MaxConcurrentRequests),
	}
}

// DoRateLimited runs fn once a request slot is free.
func (c *BaseClient) DoRateLimited(ctx context.Context, fn func() error) error {
	select {
	case c.Semaphore <- struct{}{}:
		defer func() { <-c.Semaphore }()
	case <-ctx.Done():
		return ctx.Err()
	}

	return fn()
}

// TokenOr returns apiKey, or the configured token when apiKey is empty.
func (c *BaseClient) TokenOr(apiKey string) string {
	if apiKey != "" {
		return apiKey
	}
	return c.Token
}
