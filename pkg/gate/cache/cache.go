package cache

import (
	"container/list"
	"sync"
	"time"

	"hearth-hq/beacon/pkg/assist"
)

// Cache is an in-memory, content-addressed response cache with LRU bounding
// and TTL expiry.
//
// The entry map and the access-order list are kept in lockstep: the list
// front is the most recently used entry, the back is the eviction victim.
type Cache struct {
	config Config

	// entries maps fingerprints to their position in the access list.
	entries map[assist.Fingerprint]*list.Element

	// access is the recency list; element values are *Entry.
	access *list.List

	evictions   int
	expirations int

	mu sync.Mutex

	// now is the clock, replaceable in tests.
	now func() time.Time
}

// New creates a cache with the given capacity and TTL.
func New(config Config) *Cache {
	return &Cache{
		config:  config,
		entries: make(map[assist.Fingerprint]*list.Element),
		access:  list.New(),
		now:     time.Now,
	}
}

// Lookup returns a copy of the entry for the request's fingerprint, or nil
// on a miss. A hit increments the hit count, stamps LastHit, and promotes
// the entry to most recently used. An entry past its TTL is evicted and
// reported as a miss.
func (c *Cache) Lookup(req *assist.Request) *Entry {
	fp := assist.FingerprintOf(req)

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[fp]
	if !ok {
		return nil
	}

	entry := elem.Value.(*Entry)
	now := c.now()

	if now.Sub(entry.CreatedAt) > c.config.TTL {
		c.removeLocked(fp, elem)
		c.expirations++
		return nil
	}

	entry.HitCount++
	entry.LastHit = now
	c.access.MoveToFront(elem)

	copied := *entry
	return &copied
}

// Store inserts a response for the request's fingerprint. If an entry with
// the same fingerprint already exists it is replaced in place (last write
// wins) and promoted; size does not change. Otherwise, when the cache is at
// capacity, the least recently used entry is evicted first.
func (c *Cache) Store(req *assist.Request, content string, tokenCount int) {
	fp := assist.FingerprintOf(req)

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()

	if elem, ok := c.entries[fp]; ok {
		entry := elem.Value.(*Entry)
		entry.Content = content
		entry.TokenCount = tokenCount
		entry.CreatedAt = now
		entry.HitCount = 0
		entry.LastHit = time.Time{}
		c.access.MoveToFront(elem)
		return
	}

	if c.config.Capacity > 0 && c.access.Len() >= c.config.Capacity {
		c.evictLRULocked()
	}

	entry := &Entry{
		Fingerprint: fp,
		Content:     content,
		TokenCount:  tokenCount,
		CreatedAt:   now,
	}
	c.entries[fp] = c.access.PushFront(entry)
}

// Clear removes all entries. Eviction and expiration counters are kept.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[assist.Fingerprint]*list.Element)
	c.access.Init()
}

// Sweep proactively removes TTL-expired entries and returns how many were
// removed. The pipeline schedules this on a fixed cadence so memory does
// not grow unbounded between lookups.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0

	var next *list.Element
	for elem := c.access.Front(); elem != nil; elem = next {
		next = elem.Next()
		entry := elem.Value.(*Entry)
		if now.Sub(entry.CreatedAt) > c.config.TTL {
			c.removeLocked(entry.Fingerprint, elem)
			c.expirations++
			removed++
		}
	}
	return removed
}

// Stats returns an aggregate snapshot for introspection.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{
		Size:        c.access.Len(),
		Capacity:    c.config.Capacity,
		Evictions:   c.evictions,
		Expirations: c.expirations,
	}

	for elem := c.access.Front(); elem != nil; elem = elem.Next() {
		entry := elem.Value.(*Entry)
		stats.TotalHits += entry.HitCount
		if stats.OldestEntry.IsZero() || entry.CreatedAt.Before(stats.OldestEntry) {
			stats.OldestEntry = entry.CreatedAt
		}
		if entry.CreatedAt.After(stats.NewestEntry) {
			stats.NewestEntry = entry.CreatedAt
		}
	}
	return stats
}

// Entries returns copies of up to limit entries in recency order, most
// recently used first. A non-positive limit returns all entries.
func (c *Cache) Entries(limit int) []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.access.Len()
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]Entry, 0, n)
	for elem := c.access.Front(); elem != nil && len(out) < n; elem = elem.Next() {
		out = append(out, *elem.Value.(*Entry))
	}
	return out
}

// Size returns the current number of entries.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.access.Len()
}

// evictLRULocked removes the single least recently used entry.
// Caller must hold c.mu.
func (c *Cache) evictLRULocked() {
	back := c.access.Back()
	if back == nil {
		return
	}
	entry := back.Value.(*Entry)
	c.removeLocked(entry.Fingerprint, back)
	c.evictions++
}

// removeLocked unlinks an entry from both structures. Caller must hold c.mu.
func (c *Cache) removeLocked(fp assist.Fingerprint, elem *list.Element) {
	c.access.Remove(elem)
	delete(c.entries, fp)
}
