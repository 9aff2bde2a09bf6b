// Package budget provides per-caller spend accounting for the assist
// pipeline.
//
// # Overview
//
// The tracker keeps one ledger per caller key with cumulative tokens and
// cost for the current calendar day and month, checked against configured
// ceilings. A tenant-wide daily ceiling can additionally cap a whole
// household across its members.
//
// # Advisory-Before, Corrected-After
//
// CanAfford runs before the external call using a token estimate;
// RecordUsage runs after a successful call with the provider's actual
// token count. The estimate may undershoot, so actual recorded cost can
// push a caller slightly over quota for that one call. This bounded
// overshoot is accepted by design rather than aborting a half-completed
// call; there is no reservation step.
//
// # Cache Asymmetry
//
// Cache hits bypass the budget entirely: CanAfford is never consulted and
// RecordUsage is never called for a hit. Already-computed content has no
// marginal cost.
//
// # Thread Safety
//
// All operations are thread-safe using sync.Mutex for concurrent access.
package budget
