// Package notes orchestrates search and retrieval against the provider,
// shaping results through the query grammar, the result cache, and the
// ENML converters
package notes

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"notegate/internal/adapters/evernote"
	"notegate/internal/platform/logger"
	"notegate/internal/platform/net/middleware"
)

// cache defaults preserved from the original deployment
const (
	DefaultTTL           = time.Hour
	DefaultSweepInterval = 30 * time.Minute
)

// cacheKey is the canonical, normalized identity of one search.
// Tags are sorted before hashing so semantically identical searches share
// an entry regardless of how the caller ordered them. Paging is part of
// the identity: a different offset is a materially different request
type cacheKey struct {
	Query        string   `json:"query"`
	NotebookName string   `json:"notebookName"`
	NotebookGUID string   `json:"notebookGuid"`
	Tags         []string `json:"tags"`
	CreatedAfter string   `json:"createdAfter"`
	UpdatedAfter string   `json:"updatedAfter"`
	PageSize     int      `json:"pageSize"`
	Offset       int      `json:"offset"`
}

// CacheID derives the deterministic identifier for a search input.
// SHA-256 over canonical JSON; the old rolling numeric hash had real
// collision risk and is gone
func CacheID(in SearchInput) string {
	tags := append([]string(nil), in.Tags...)
	sort.Strings(tags)
	key := cacheKey{
		Query:        in.Query,
		NotebookName: in.NotebookName,
		NotebookGUID: in.NotebookGUID,
		Tags:         tags,
		CreatedAfter: in.CreatedAfter,
		UpdatedAfter: in.UpdatedAfter,
		PageSize:     in.MaxResults,
		Offset:       in.Offset,
	}
	data, err := json.Marshal(key)
	if err != nil {
		// cacheKey is all plain strings and ints; Marshal cannot fail
		panic(err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Entry is one executed search held for replay
type Entry struct {
	ID        string                `json:"searchId"`
	Query     string                `json:"query"`
	Result    evernote.SearchResult `json:"result"`
	CreatedAt time.Time             `json:"createdAt"`
	ExpiresAt time.Time             `json:"expiresAt"`
}

// Cache memoizes search results under their deterministic identifier.
// Safe for concurrent use; expired entries are treated as absent on read
// and deleted lazily, with a periodic sweep as backstop
type Cache struct {
	mu      sync.Mutex
	entries map[string]Entry
	ttl     time.Duration
	log     logger.Logger
	now     func() time.Time
}

// NewCache creates a Cache with the given TTL (DefaultTTL when <= 0)
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		entries: make(map[string]Entry),
		ttl:     ttl,
		log:     *logger.Named("cache"),
		now:     time.Now,
	}
}

// Get returns the entry for id; expired entries are deleted and reported absent
func (c *Cache) Get(id string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok {
		middleware.ObserveCacheLookup("miss")
		return Entry{}, false
	}
	if c.now().After(e.ExpiresAt) {
		delete(c.entries, id)
		middleware.ObserveCacheLookup("expired")
		return Entry{}, false
	}
	middleware.ObserveCacheLookup("hit")
	return e, true
}

// Put stores the result under id, overwriting any existing entry
func (c *Cache) Put(id, query string, result evernote.SearchResult) Entry {
	now := c.now()
	e := Entry{
		ID:        id,
		Query:     query,
		Result:    result,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}
	c.mu.Lock()
	c.entries[id] = e
	c.mu.Unlock()
	return e
}

// Len reports the number of entries, expired included
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Sweep removes all expired entries and reports how many were dropped
func (c *Cache) Sweep() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	dropped := 0
	for id, e := range c.entries {
		if now.After(e.ExpiresAt) {
			delete(c.entries, id)
			dropped++
		}
	}
	return dropped
}

// StartSweeper runs Sweep on interval until ctx is done.
// DefaultSweepInterval when interval <= 0
func (c *Cache) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if n := c.Sweep(); n > 0 {
					c.log.Debug().Int("dropped", n).Msg("cache sweep")
				}
			}
		}
	}()
}
