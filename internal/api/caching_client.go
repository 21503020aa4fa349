package api

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/vilaca/repo-issues/internal/domain"
)

// CachingClient wraps a Client with a TTL cache.
// Keys are hashed so API keys never appear in cache keys.
type CachingClient struct {
	client Client
	cache  *cache
	logger Logger
}

// NewCachingClient creates a new caching client wrapper.
func NewCachingClient(client Client, cacheDuration time.Duration, logger Logger) *CachingClient {
	return &CachingClient{
		client: client,
		cache:  newCache(cacheDuration),
		logger: logger,
	}
}

// ListRepositories retrieves repositories with caching.
func (c *CachingClient) ListRepositories(ctx context.Context, apiKey string) ([]domain.Repository, error) {
	key := generateCacheKey("ListRepositories", apiKey)

	if cached, found := c.cache.get(key); found {
		if repos, ok := cached.([]domain.Repository); ok {
			c.logger.Printf("Cache hit: ListRepositories (%d repositories)", len(repos))
			return repos, nil
		}
	}

	repos, err := c.client.ListRepositories(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	c.cache.set(key, repos)
	return repos, nil
}

// ListIssues retrieves issues with caching. Failures are not cached.
func (c *CachingClient) ListIssues(ctx context.Context, owner, repo, apiKey string) ([]domain.Issue, error) {
	key := generateCacheKey("ListIssues", owner, repo, apiKey)

	if cached, found := c.cache.get(key); found {
		if issues, ok := cached.([]domain.Issue); ok {
			c.logger.Printf("Cache hit: ListIssues %s/%s (%d issues)", owner, repo, len(issues))
			return issues, nil
		}
	}

	c.logger.Printf("Cache miss: ListIssues %s/%s - fetching from API", owner, repo)
	issues, err := c.client.ListIssues(ctx, owner, repo, apiKey)
	if err != nil {
		return nil, err
	}

	c.cache.set(key, issues)
	return issues, nil
}

// InvalidateIssues drops the cached issue listing for owner/repo.
func (c *CachingClient) InvalidateIssues(owner, repo, apiKey string) {
	c.cache.delete(generateCacheKey("ListIssues", owner, repo, apiKey))
}

// Close stops the background cleanup.
func (c *CachingClient) Close() {
	c.cache.stop()
}

// cache implements a thread-safe TTL cache.
type cache struct {
	mu       sync.RWMutex
	entries  map[string]*cacheEntry
	duration time.Duration
	done     chan struct{}
	stopOnce sync.Once
}

// cacheEntry holds a cached value with expiry time.
type cacheEntry struct {
	value     interface{}
	expiresAt time.Time
}

// newCache creates a new cache with the specified duration.
func newCache(duration time.Duration) *cache {
	c := &cache{
		entries:  make(map[string]*cacheEntry),
		duration: duration,
		done:     make(chan struct{}),
	}

	go c.cleanup(time.Minute)

	return c
}

// get retrieves a value from cache.
func (c *cache) get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists {
		return nil, false
	}

	if time.Now().After(entry.expiresAt) {
		return nil, false
	}

	return entry.value, true
}

// set stores a value in cache with TTL.
func (c *cache) set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &cacheEntry{
		value:     value,
		expiresAt: time.Now().Add(c.duration),
	}
}

func (c *cache) delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *cache) stop() {
	c.stopOnce.Do(func() { close(c.done) })
}

// cleanup periodically removes expired entries.
func (c *cache) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.removeExpired(time.Now())
		}
	}
}

func (c *cache) removeExpired(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// generateCacheKey generates a cache key from parameters.
func generateCacheKey(parts ...interface{}) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}
