// Package cache provides the short-lived search result cache that sits in
// front of the aggregation pipeline. Two backends implement the same
// interface: a Redis-backed cache for deployments and an in-process map
// for tests and single-node setups.
package cache

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"jobpulse-engine/pkg/models"
)

// ErrMiss is returned when no live entry exists for a key.
var ErrMiss = errors.New("cache: miss")

// ResultCache stores aggregated search results keyed by the full request
// shape. Implementations must treat expired entries as absent.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]models.CanonicalJob, error)
	Set(ctx context.Context, key string, jobs []models.CanonicalJob) error
	Invalidate(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// Key builds the canonical cache key for a search. The enabled provider
// set is sorted so the key is stable regardless of registration order.
func Key(req *models.SearchRequest, providers []string) string {
	sorted := make([]string, len(providers))
	copy(sorted, providers)
	sort.Strings(sorted)

	parts := []string{
		"search",
		strings.ToLower(strings.TrimSpace(req.Query)),
		strings.ToLower(strings.TrimSpace(req.Location)),
		strings.ToUpper(strings.TrimSpace(req.Country)),
		strconv.Itoa(req.Page),
		strings.Join(sorted, "+"),
	}
	return strings.Join(parts, ":")
}

type entry struct {
	jobs      []models.CanonicalJob
	expiresAt time.Time
}

// MemoryCache is a process-local ResultCache with lazy expiry. Entries are
// dropped on read once past their deadline; Set also sweeps when the map
// grows past sweepThreshold.
type MemoryCache struct {
	ttl     time.Duration
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

const sweepThreshold = 256

// NewMemoryCache creates an in-process cache with the given TTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]models.CanonicalJob, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, ErrMiss
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, ErrMiss
	}
	jobs := make([]models.CanonicalJob, len(e.jobs))
	copy(jobs, e.jobs)
	return jobs, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, jobs []models.CanonicalJob) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= sweepThreshold {
		now := c.now()
		for k, e := range c.entries {
			if now.After(e.expiresAt) {
				delete(c.entries, k)
			}
		}
	}

	stored := make([]models.CanonicalJob, len(jobs))
	copy(stored, jobs)
	c.entries[key] = entry{jobs: stored, expiresAt: c.now().Add(c.ttl)}
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *MemoryCache) Ping(_ context.Context) error { return nil }

func (c *MemoryCache) Close() error { return nil }
