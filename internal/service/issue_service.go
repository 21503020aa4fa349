package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vilaca/repo-issues/internal/api"
	"github.com/vilaca/repo-issues/internal/domain"
	"github.com/vilaca/repo-issues/internal/issues"
)

// Logger interface for logging operations.
type Logger interface {
	Printf(format string, v ...interface{})
}

var (
	// ErrEmptyKey is returned when an empty API key is submitted.
	ErrEmptyKey = errors.New(domain.MissingKeyMessage)
	// ErrUnknownSession is returned for operations on an expired or unknown session.
	ErrUnknownSession = errors.New("unknown session")
)

// Session is the state of one viewer: its API key and issue table.
type Session struct {
	ID         string
	APIKey     string
	Collection issues.Collection
	LastSeen   time.Time
}

type session struct {
	mu       sync.Mutex
	apiKey   string
	coll     issues.Collection
	lastSeen time.Time
}

// IssueService owns per-viewer issue tables and runs the
// select, fetch and sort cycle against the API client.
type IssueService struct {
	client     api.Client
	defaultKey string
	logger     Logger
	now        func() time.Time

	mu       sync.RWMutex
	sessions map[string]*session
}

// NewIssueService creates a new issue service. defaultKey is used for
// sessions that never submitted their own key.
func NewIssueService(client api.Client, defaultKey string, logger Logger) *IssueService {
	return &IssueService{
		client:     client,
		defaultKey: defaultKey,
		logger:     logger,
		now:        time.Now,
		sessions:   make(map[string]*session),
	}
}

// EnsureSession returns id when it names a live session, or the id of a
// newly created session otherwise.
func (s *IssueService) EnsureSession(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok && id != "" {
		sess.mu.Lock()
		sess.lastSeen = s.now()
		sess.mu.Unlock()
		return id
	}

	id = uuid.New().String()
	s.sessions[id] = &session{coll: issues.NewCollection(), lastSeen: s.now()}
	return id
}

// Snapshot returns a copy of the session state.
func (s *IssueService) Snapshot(id string) (Session, bool) {
	sess, ok := s.lookup(id)
	if !ok {
		return Session{}, false
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return Session{ID: id, APIKey: sess.apiKey, Collection: sess.coll, LastSeen: sess.lastSeen}, true
}

// HasAPIKey reports whether requests for the session carry a key.
func (s *IssueService) HasAPIKey(id string) bool {
	return s.apiKey(id) != ""
}

// SetAPIKey stores the key the session uses for API calls.
func (s *IssueService) SetAPIKey(id, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	sess, ok := s.lookup(id)
	if !ok {
		return errUnknownSession(id)
	}
	sess.mu.Lock()
	sess.apiKey = key
	sess.mu.Unlock()
	return nil
}

// Repositories lists the repositories the session can pick from.
func (s *IssueService) Repositories(ctx context.Context, id string) ([]domain.Repository, error) {
	return s.client.ListRepositories(ctx, s.apiKey(id))
}

// SelectRepository switches the session to repo and fetches its issues.
// Reselecting the current repository does nothing.
func (s *IssueService) SelectRepository(ctx context.Context, id string, repo domain.Repository) (issues.Collection, error) {
	return s.fetch(ctx, id, func(c issues.Collection, _ string) (issues.Collection, issues.Ticket, bool) {
		return c.SelectRepository(repo)
	})
}

// Reload refetches the issues of the selected repository, bypassing the cache.
func (s *IssueService) Reload(ctx context.Context, id string) (issues.Collection, error) {
	return s.fetch(ctx, id, func(c issues.Collection, apiKey string) (issues.Collection, issues.Ticket, bool) {
		next, ticket, ok := c.Reload()
		if ok {
			if inv, isInvalidator := s.client.(api.Invalidator); isInvalidator {
				inv.InvalidateIssues(ticket.Repo.Owner, ticket.Repo.Name, apiKey)
			}
		}
		return next, ticket, ok
	})
}

// fetch runs one loading cycle. The session lock is released while the
// request is in flight; a completion overtaken by a newer selection is
// dropped by the collection's generation check.
func (s *IssueService) fetch(ctx context.Context, id string, begin func(c issues.Collection, apiKey string) (issues.Collection, issues.Ticket, bool)) (issues.Collection, error) {
	sess, ok := s.lookup(id)
	if !ok {
		return issues.Collection{}, errUnknownSession(id)
	}

	sess.mu.Lock()
	apiKey := sess.apiKey
	if apiKey == "" {
		apiKey = s.defaultKey
	}
	next, ticket, started := begin(sess.coll, apiKey)
	sess.coll = next
	sess.mu.Unlock()

	if !started {
		return next, nil
	}

	records, err := s.client.ListIssues(ctx, ticket.Repo.Owner, ticket.Repo.Name, apiKey)
	if err != nil {
		s.logger.Printf("failed to fetch issues for %s: %v", ticket.Repo.Slug(), err)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	completed, applied := sess.coll.OnFetchComplete(ticket, records, err)
	if !applied {
		s.logger.Printf("dropped stale issues for %s (generation %d, current %d)",
			ticket.Repo.Slug(), ticket.Generation, sess.coll.Generation)
		return sess.coll, nil
	}
	sess.coll = completed
	return completed, nil
}

// ToggleColumn applies a header click to the session's table.
func (s *IssueService) ToggleColumn(id string, column domain.Column) (issues.Collection, error) {
	return s.update(id, func(c issues.Collection) issues.Collection { return c.ToggleColumn(column) })
}

// SelectColumn applies the sort-by selector to the session's table.
func (s *IssueService) SelectColumn(id string, column domain.Column) (issues.Collection, error) {
	return s.update(id, func(c issues.Collection) issues.Collection { return c.SelectColumn(column) })
}

// SelectDirection applies the direction selector to the session's table.
func (s *IssueService) SelectDirection(id string, direction domain.Direction) (issues.Collection, error) {
	return s.update(id, func(c issues.Collection) issues.Collection { return c.SelectDirection(direction) })
}

func (s *IssueService) update(id string, fn func(issues.Collection) issues.Collection) (issues.Collection, error) {
	sess, ok := s.lookup(id)
	if !ok {
		return issues.Collection{}, errUnknownSession(id)
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.coll = fn(sess.coll)
	return sess.coll, nil
}

// ExpireIdle removes sessions not seen for longer than maxIdle and
// returns how many were removed.
func (s *IssueService) ExpireIdle(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := sess.lastSeen.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// SessionCount returns the number of live sessions.
func (s *IssueService) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *IssueService) lookup(id string) (*session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *IssueService) apiKey(id string) string {
	sess, ok := s.lookup(id)
	if !ok {
		return s.defaultKey
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.apiKey != "" {
		return sess.apiKey
	}
	return s.defaultKey
}

func errUnknownSession(id string) error {
	return fmt.Errorf("%w %q", ErrUnknownSession, id)
}

// LoadIssues runs a single select and fetch cycle outside any session.
// A failed fetch yields a loaded, empty collection with FetchErr set.
func LoadIssues(ctx context.Context, client api.Client, repo domain.Repository, apiKey string) issues.Collection {
	coll, ticket, ok := issues.NewCollection().SelectRepository(repo)
	if !ok {
		return coll
	}
	records, err := client.ListIssues(ctx, repo.Owner, repo.Name, apiKey)
	coll, _ = coll.OnFetchComplete(ticket, records, err)
	return coll
}
