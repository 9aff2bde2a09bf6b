// Package store persists the immutable usage records appended by the
// budget tracker.
//
// Two backends implement the same interface:
//
//   - MemoryBackend: default, no persistence, suitable for tests and
//     deployments that only need the in-memory ledger.
//   - SQLiteBackend: append-only durable log, suitable for single-instance
//     deployments that want usage history across restarts.
//
// The store is an audit log, not the source of truth for admission: the
// tracker's in-memory ledger drives CanAfford. A distributed deployment
// would swap the backend for a shared external store behind this same
// interface.
package store
