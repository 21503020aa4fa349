package api

import (
	"context"
	"fmt"

	"github.com/vilaca/repo-issues/internal/domain"
)

// Client defines the interface for the issue-hosting platform client.
// Consumers depend on this interface, not the concrete GitHub client.
type Client interface {
	// ListRepositories returns the repositories accessible with apiKey.
	ListRepositories(ctx context.Context, apiKey string) ([]domain.Repository, error)

	// ListIssues returns the issues of owner/repo in the order the API
	// returned them.
	ListIssues(ctx context.Context, owner, repo, apiKey string) ([]domain.Issue, error)
}

// Logger interface for logging operations.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Invalidator is implemented by clients that cache issue listings.
type Invalidator interface {
	InvalidateIssues(owner, repo, apiKey string)
}

// ClientConfig holds common configuration for API clients.
type ClientConfig struct {
	BaseURL string
	// Token is used when a call passes an empty API key.
	Token string
}

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API returned status %d: %s", e.StatusCode, e.Body)
}
