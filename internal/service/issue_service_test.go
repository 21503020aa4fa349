package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/vilaca/repo-issues/internal/api"
	"github.com/vilaca/repo-issues/internal/domain"
	"github.com/vilaca/repo-issues/internal/issues"
)

// mockClient is a test double for api.Client.
type mockClient struct {
	listIssuesFunc func(ctx context.Context, owner, repo, apiKey string) ([]domain.Issue, error)
	invalidated    []string
}

func (m *mockClient) ListRepositories(ctx context.Context, apiKey string) ([]domain.Repository, error) {
	return []domain.Repository{{Owner: "liz", Name: "example-repo"}}, nil
}

func (m *mockClient) ListIssues(ctx context.Context, owner, repo, apiKey string) ([]domain.Issue, error) {
	return m.listIssuesFunc(ctx, owner, repo, apiKey)
}

func (m *mockClient) InvalidateIssues(owner, repo, apiKey string) {
	m.invalidated = append(m.invalidated, owner+"/"+repo+"@"+apiKey)
}

// mockLogger is a test double for Logger.
type mockLogger struct {
	mu       sync.Mutex
	messages []string
}

func (m *mockLogger) Printf(format string, v ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, format)
}

func created(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

var exampleRepo = domain.Repository{Owner: "liz", Name: "example-repo"}

func createdYears(records []domain.Issue) []int {
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r.CreatedAt.Year()
	}
	return out
}

func TestEnsureSession(t *testing.T) {
	svc := NewIssueService(&mockClient{}, "", &mockLogger{})

	id := svc.EnsureSession("")
	same := svc.EnsureSession(id)
	other := svc.EnsureSession("not-a-session")

	if id == "" || same != id {
		t.Errorf("expected session %q to be kept, got %q", id, same)
	}
	if other == id || other == "not-a-session" {
		t.Errorf("expected a fresh session id, got %q", other)
	}
	snap, ok := svc.Snapshot(id)
	if !ok || snap.Collection.Phase != issues.PhaseNoRepoSelected {
		t.Errorf("expected a new session with no repo selected, got %+v", snap)
	}
}

// TestSelectRepository_ScenarioWithToggles tests fetch, default sort and two header clicks.
func TestSelectRepository_ScenarioWithToggles(t *testing.T) {
	// Arrange
	client := &mockClient{
		listIssuesFunc: func(ctx context.Context, owner, repo, apiKey string) ([]domain.Issue, error) {
			return []domain.Issue{
				{Title: "b", CreatedAt: created(2009)},
				{Title: "a", CreatedAt: created(2017)},
				{Title: "c", CreatedAt: created(2005)},
			}, nil
		},
	}
	svc := NewIssueService(client, "", &mockLogger{})
	id := svc.EnsureSession("")

	// Act
	loaded, err := svc.SelectRepository(context.Background(), id, exampleRepo)
	first, _ := svc.ToggleColumn(id, domain.ColumnCreatedAt)
	second, _ := svc.ToggleColumn(id, domain.ColumnCreatedAt)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if diff := cmp.Diff([]int{2017, 2009, 2005}, createdYears(loaded.Records)); diff != "" {
		t.Errorf("loaded order (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{2005, 2009, 2017}, createdYears(first.Records)); diff != "" {
		t.Errorf("first toggle (-want +got):\n%s", diff)
	}
	if first.Sort.Direction != domain.Ascending || second.Sort.Direction != domain.Descending {
		t.Errorf("unexpected directions %s, %s", first.Sort.Direction, second.Sort.Direction)
	}
	if diff := cmp.Diff([]int{2017, 2009, 2005}, createdYears(second.Records)); diff != "" {
		t.Errorf("second toggle (-want +got):\n%s", diff)
	}
}

// TestSelectRepository_NotFoundShowsNoIssues tests that a 404 collapses to an empty, loaded table.
func TestSelectRepository_NotFoundShowsNoIssues(t *testing.T) {
	logger := &mockLogger{}
	client := &mockClient{
		listIssuesFunc: func(ctx context.Context, owner, repo, apiKey string) ([]domain.Issue, error) {
			return nil, &api.StatusError{StatusCode: 404, Body: "Not Found"}
		},
	}
	svc := NewIssueService(client, "", logger)
	id := svc.EnsureSession("")

	coll, err := svc.SelectRepository(context.Background(), id, exampleRepo)

	if err != nil {
		t.Fatalf("fetch failures must not surface, got %v", err)
	}
	if coll.Phase != issues.PhaseLoaded || len(coll.Records) != 0 {
		t.Errorf("expected loaded and empty, got %s with %d records", coll.Phase, len(coll.Records))
	}
	var statusErr *api.StatusError
	if !errors.As(coll.FetchErr, &statusErr) || statusErr.StatusCode != 404 {
		t.Errorf("expected the 404 to be kept for logging, got %v", coll.FetchErr)
	}
	if len(logger.messages) == 0 {
		t.Error("expected the failure to be logged")
	}
}

func TestSelectRepository_UsesSessionKeyThenDefault(t *testing.T) {
	var keys []string
	client := &mockClient{
		listIssuesFunc: func(ctx context.Context, owner, repo, apiKey string) ([]domain.Issue, error) {
			keys = append(keys, apiKey)
			return nil, nil
		},
	}
	svc := NewIssueService(client, "default-key", &mockLogger{})
	id := svc.EnsureSession("")

	_, _ = svc.SelectRepository(context.Background(), id, exampleRepo)
	if err := svc.SetAPIKey(id, "session-key"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	_, _ = svc.SelectRepository(context.Background(), id, domain.Repository{Owner: "liz", Name: "other"})

	if diff := cmp.Diff([]string{"default-key", "session-key"}, keys); diff != "" {
		t.Errorf("keys used (-want +got):\n%s", diff)
	}
}

func TestSetAPIKey_Empty(t *testing.T) {
	svc := NewIssueService(&mockClient{}, "", &mockLogger{})
	id := svc.EnsureSession("")

	if err := svc.SetAPIKey(id, ""); !errors.Is(err, ErrEmptyKey) {
		t.Errorf("expected ErrEmptyKey, got %v", err)
	}
	if err := svc.SetAPIKey("missing", "key"); !errors.Is(err, ErrUnknownSession) {
		t.Errorf("expected ErrUnknownSession, got %v", err)
	}
	if svc.HasAPIKey(id) {
		t.Error("expected no key for the session")
	}
}

// TestSelectRepository_StaleResponseDropped tests that a slow response for a
// previously selected repository cannot overwrite a newer selection.
func TestSelectRepository_StaleResponseDropped(t *testing.T) {
	// Arrange
	started := make(chan struct{})
	release := make(chan struct{})
	client := &mockClient{
		listIssuesFunc: func(ctx context.Context, owner, repo, apiKey string) ([]domain.Issue, error) {
			if repo == "slow" {
				close(started)
				<-release
				return []domain.Issue{{Title: "stale"}}, nil
			}
			return []domain.Issue{{Title: "fresh"}}, nil
		},
	}
	svc := NewIssueService(client, "", &mockLogger{})
	id := svc.EnsureSession("")

	done := make(chan issues.Collection)
	go func() {
		coll, _ := svc.SelectRepository(context.Background(), id, domain.Repository{Owner: "liz", Name: "slow"})
		done <- coll
	}()
	<-started

	// Act
	fresh, _ := svc.SelectRepository(context.Background(), id, domain.Repository{Owner: "liz", Name: "fast"})
	close(release)
	staleResult := <-done

	// Assert
	if len(fresh.Records) != 1 || fresh.Records[0].Title != "fresh" {
		t.Fatalf("unexpected fresh records %+v", fresh.Records)
	}
	if staleResult.Repo.Name != "fast" {
		t.Errorf("stale completion should report the current selection, got %s", staleResult.Repo.Name)
	}
	snap, _ := svc.Snapshot(id)
	if snap.Collection.Repo.Name != "fast" || snap.Collection.Records[0].Title != "fresh" {
		t.Errorf("stale response overwrote state: %+v", snap.Collection)
	}
}

func TestReload_InvalidatesCache(t *testing.T) {
	calls := 0
	client := &mockClient{
		listIssuesFunc: func(ctx context.Context, owner, repo, apiKey string) ([]domain.Issue, error) {
			calls++
			return nil, nil
		},
	}
	svc := NewIssueService(client, "default-key", &mockLogger{})
	id := svc.EnsureSession("")

	_, _ = svc.SelectRepository(context.Background(), id, exampleRepo)
	_, _ = svc.SelectRepository(context.Background(), id, exampleRepo)
	coll, err := svc.Reload(context.Background(), id)

	if err != nil || coll.Phase != issues.PhaseLoaded {
		t.Fatalf("expected a loaded collection, got %v / %s", err, coll.Phase)
	}
	if calls != 2 {
		t.Errorf("expected reselect to be ignored and reload to fetch, got %d calls", calls)
	}
	if diff := cmp.Diff([]string{"liz/example-repo@default-key"}, client.invalidated); diff != "" {
		t.Errorf("invalidations (-want +got):\n%s", diff)
	}
}

func TestSortOperations_UnknownSession(t *testing.T) {
	svc := NewIssueService(&mockClient{}, "", &mockLogger{})

	if _, err := svc.ToggleColumn("missing", domain.ColumnTitle); !errors.Is(err, ErrUnknownSession) {
		t.Errorf("expected ErrUnknownSession, got %v", err)
	}
	if _, err := svc.SelectRepository(context.Background(), "missing", exampleRepo); !errors.Is(err, ErrUnknownSession) {
		t.Errorf("expected ErrUnknownSession, got %v", err)
	}
}

func TestExpireIdle(t *testing.T) {
	svc := NewIssueService(&mockClient{}, "", &mockLogger{})
	now := time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	old := svc.EnsureSession("")
	now = now.Add(2 * time.Hour)
	fresh := svc.EnsureSession("")

	removed := svc.ExpireIdle(time.Hour)

	if removed != 1 || svc.SessionCount() != 1 {
		t.Errorf("expected one expired session, removed %d, remaining %d", removed, svc.SessionCount())
	}
	if _, ok := svc.Snapshot(old); ok {
		t.Error("expected the idle session to be gone")
	}
	if _, ok := svc.Snapshot(fresh); !ok {
		t.Error("expected the fresh session to remain")
	}
}

func TestLoadIssues(t *testing.T) {
	client := &mockClient{
		listIssuesFunc: func(ctx context.Context, owner, repo, apiKey string) ([]domain.Issue, error) {
			return []domain.Issue{{CreatedAt: created(2005)}, {CreatedAt: created(2017)}}, nil
		},
	}

	coll := LoadIssues(context.Background(), client, exampleRepo, "")

	if coll.Status() != issues.StatusLoadedNonEmpty {
		t.Fatalf("expected loaded-nonempty, got %s", coll.Status())
	}
	if diff := cmp.Diff([]int{2017, 2005}, createdYears(coll.Records)); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
}
