// Package ratelimit provides per-caller request frequency limiting for the
// assist pipeline.
//
// # Overview
//
// The ratelimit package bounds request frequency per caller key
// ("tenantId:callerId") over three fixed windows: minute, hour, and day.
// Each window is a {count, resetAt} pair that is lazily reset on access
// when its deadline has passed; there is no per-tier background tick.
//
// # Check / Record Split
//
// Check and Record are deliberately separate operations. A cache hit must
// still consume rate quota, but only after the cache lookup succeeds, so
// the pipeline calls Check before the cache and Record after it. Record
// must be called exactly once per request that is actually processed and
// never for a request rejected by Check, by the budget, or by a downstream
// failure before any externally visible effect.
//
// # Cleanup
//
// A caller's windows are removed by Sweep once all three tiers are
// simultaneously at zero count with expired deadlines, bounding memory in
// long-lived processes. The pipeline schedules Sweep on a fixed cadence.
//
// # Thread Safety
//
// All operations are thread-safe using sync.Mutex for concurrent access.
package ratelimit
