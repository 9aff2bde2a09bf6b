// Package gate orchestrates admission of assistant requests.
//
// # Overview
//
// Every assistant request passes through a fixed sequence of checks before
// any money is spent upstream:
//
//  1. Rate limit check (advisory, nothing counted yet)
//  2. Cache lookup; a hit is counted against the rate limit and returned
//     without touching the budget or the provider
//  3. Budget check against the estimated token cost
//  4. Upstream completion call
//  5. Usage recorded against the budget with the actual token count
//  6. Response stored in the cache
//  7. Request counted against the rate limit
//
// The ordering is deliberate: cached answers cost nothing, so they bypass
// budget accounting entirely but still consume rate-limit quota. A failed
// upstream call consumes neither quota nor budget.
//
// Failures surface as *ServiceError values carrying a stable machine code,
// a failure kind, and a retryable flag; the HTTP layer maps these onto
// status codes without inspecting provider internals.
package gate
