// Package cache provides a content-addressed cache of prior model responses.
//
// # Overview
//
// Responses are keyed by the request Fingerprint (see package assist), so
// policy-equivalent requests share one entry regardless of which family
// member asked. The cache is bounded two ways:
//
//   - LRU eviction when at capacity, based on last access (lookup or store)
//   - TTL expiry, discovered lazily on lookup and proactively by Sweep
//
// Recency is tracked in an access-order list separate from the entry map,
// so evicting the least-recently-used entry is cheap and independent of
// map iteration order.
//
// A cache hit never touches the budget: already-computed content has no
// marginal cost. The pipeline enforces that ordering; the cache itself just
// reports hits.
//
// # Thread Safety
//
// All operations are thread-safe using sync.Mutex. Lookup mutates hit
// bookkeeping and recency, so there is no read-only fast path.
package cache
