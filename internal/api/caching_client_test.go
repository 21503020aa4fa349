package api

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/vilaca/repo-issues/internal/domain"
)

// mockClient is a minimal Client double counting calls.
type mockClient struct {
	issueCalls int
	repoCalls  int
	issuesErr  error
	issues     []domain.Issue
}

func (m *mockClient) ListRepositories(ctx context.Context, apiKey string) ([]domain.Repository, error) {
	m.repoCalls++
	return []domain.Repository{{Owner: "liz", Name: "example-repo"}}, nil
}

func (m *mockClient) ListIssues(ctx context.Context, owner, repo, apiKey string) ([]domain.Issue, error) {
	m.issueCalls++
	if m.issuesErr != nil {
		return nil, m.issuesErr
	}
	return m.issues, nil
}

// mockLogger is a test double for Logger.
type mockLogger struct {
	messages []string
}

func (m *mockLogger) Printf(format string, v ...interface{}) {
	m.messages = append(m.messages, fmt.Sprintf(format, v...))
}

// TestCachingClient_ListIssuesCachesResult tests that a second call is served from cache.
func TestCachingClient_ListIssuesCachesResult(t *testing.T) {
	// Arrange
	inner := &mockClient{issues: []domain.Issue{{Title: "first"}}}
	client := NewCachingClient(inner, 30*time.Minute, &mockLogger{})
	defer client.Close()

	// Act
	first, err1 := client.ListIssues(context.Background(), "liz", "example-repo", "key")
	second, err2 := client.ListIssues(context.Background(), "liz", "example-repo", "key")

	// Assert
	if err1 != nil || err2 != nil {
		t.Fatalf("expected no errors, got %v / %v", err1, err2)
	}
	if inner.issueCalls != 1 {
		t.Errorf("expected 1 upstream call, got %d", inner.issueCalls)
	}
	if len(first) != 1 || len(second) != 1 || second[0].Title != "first" {
		t.Errorf("unexpected results %v / %v", first, second)
	}
}

func TestCachingClient_KeysSeparateByAPIKey(t *testing.T) {
	inner := &mockClient{}
	client := NewCachingClient(inner, 30*time.Minute, &mockLogger{})
	defer client.Close()

	_, _ = client.ListIssues(context.Background(), "liz", "example-repo", "key-a")
	_, _ = client.ListIssues(context.Background(), "liz", "example-repo", "key-b")
	_, _ = client.ListRepositories(context.Background(), "key-a")
	_, _ = client.ListRepositories(context.Background(), "key-a")

	if inner.issueCalls != 2 {
		t.Errorf("expected 2 upstream issue calls, got %d", inner.issueCalls)
	}
	if inner.repoCalls != 1 {
		t.Errorf("expected 1 upstream repository call, got %d", inner.repoCalls)
	}
}

func TestCachingClient_ErrorsAreNotCached(t *testing.T) {
	inner := &mockClient{issuesErr: &StatusError{StatusCode: 404, Body: "Not Found"}}
	client := NewCachingClient(inner, 30*time.Minute, &mockLogger{})
	defer client.Close()

	_, err := client.ListIssues(context.Background(), "liz", "missing", "")
	inner.issuesErr = nil
	_, err2 := client.ListIssues(context.Background(), "liz", "missing", "")

	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != 404 {
		t.Errorf("expected StatusError 404, got %v", err)
	}
	if err2 != nil || inner.issueCalls != 2 {
		t.Errorf("expected a second upstream call, got err=%v calls=%d", err2, inner.issueCalls)
	}
}

func TestCachingClient_InvalidateIssues(t *testing.T) {
	inner := &mockClient{}
	client := NewCachingClient(inner, 30*time.Minute, &mockLogger{})
	defer client.Close()

	_, _ = client.ListIssues(context.Background(), "liz", "example-repo", "key")
	client.InvalidateIssues("liz", "example-repo", "key")
	_, _ = client.ListIssues(context.Background(), "liz", "example-repo", "key")

	if inner.issueCalls != 2 {
		t.Errorf("expected 2 upstream calls after invalidation, got %d", inner.issueCalls)
	}
}

// TestCachingClient_LogsToInjectedLogger tests that cache activity goes to
// the logger passed in rather than the process-wide log output.
func TestCachingClient_LogsToInjectedLogger(t *testing.T) {
	// Arrange
	logger := &mockLogger{}
	inner := &mockClient{issues: []domain.Issue{{Title: "first"}}}
	client := NewCachingClient(inner, 30*time.Minute, logger)
	defer client.Close()

	// Act
	_, _ = client.ListIssues(context.Background(), "liz", "example-repo", "key")
	_, _ = client.ListIssues(context.Background(), "liz", "example-repo", "key")

	// Assert
	want := []string{
		"Cache miss: ListIssues liz/example-repo - fetching from API",
		"Cache hit: ListIssues liz/example-repo (1 issues)",
	}
	if diff := cmp.Diff(want, logger.messages); diff != "" {
		t.Errorf("logged messages mismatch (-want +got):\n%s", diff)
	}
}

func TestCache_RemoveExpired(t *testing.T) {
	c := newCache(time.Minute)
	defer c.stop()

	c.set("a", 1)
	removed := c.removeExpired(time.Now().Add(2 * time.Minute))

	if removed != 1 {
		t.Errorf("expected 1 expired entry removed, got %d", removed)
	}
	if _, found := c.get("a"); found {
		t.Error("expected entry to be gone")
	}
}

func TestGenerateCacheKey_HidesAPIKey(t *testing.T) {
	key := generateCacheKey("ListIssues", "liz", "example-repo", "secret-token")

	if strings.Contains(key, "secret-token") {
		t.Errorf("cache key leaks the API key: %s", key)
	}
	if key != generateCacheKey("ListIssues", "liz", "example-repo", "secret-token") {
		t.Error("expected cache keys to be deterministic")
	}
}
