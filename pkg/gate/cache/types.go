package cache

import (
	"time"

	"hearth-hq/beacon/pkg/assist"
)

// Config contains cache sizing and expiry settings.
type Config struct {
	// Capacity is the maximum number of entries. When full, the least
	// recently used entry is evicted before a new one is stored.
	Capacity int

	// TTL is how long an entry remains valid after creation. TTL expiry
	// is independent of recency: a frequently-hit entry still expires.
	TTL time.Duration
}

// Entry is a single cached response. Entries are owned by the Cache;
// callers receive copies.
type Entry struct {
	// Fingerprint identifies the policy-equivalent request family.
	Fingerprint assist.Fingerprint `json:"fingerprint"`

	// Content is the cached response text.
	Content string `json:"content"`

	// TokenCount is the token count of the original response.
	TokenCount int `json:"token_count"`

	// CreatedAt is when the entry was stored. TTL runs from here.
	CreatedAt time.Time `json:"created_at"`

	// HitCount is how many lookups have returned this entry.
	HitCount int `json:"hit_count"`

	// LastHit is when the entry last served a lookup; zero until first hit.
	LastHit time.Time `json:"last_hit,omitempty"`
}

// Stats is an aggregate snapshot of the cache for introspection.
type Stats struct {
	// Size is the current number of entries.
	Size int `json:"size"`

	// Capacity is the configured maximum.
	Capacity int `json:"capacity"`

	// TotalHits is the sum of hit counts across current entries.
	TotalHits int `json:"total_hits"`

	// Evictions counts LRU evictions since startup.
	Evictions int `json:"evictions"`

	// Expirations counts TTL expirations (lazy and swept) since startup.
	Expirations int `json:"expirations"`

	// OldestEntry and NewestEntry are creation timestamps of the current
	// extremes; zero when the cache is empty.
	OldestEntry time.Time `json:"oldest_entry,omitempty"`
	NewestEntry time.Time `json:"newest_entry,omitempty"`
}
