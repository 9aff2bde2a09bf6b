package ratelimit

import "time"

// Config contains the per-tier request ceilings applied to every caller key.
// A zero ceiling means the tier is not enforced.
type Config struct {
	// RequestsPerMinute limits requests in the current minute window.
	RequestsPerMinute int

	// RequestsPerHour limits requests in the current hour window.
	RequestsPerHour int

	// RequestsPerDay limits requests in the current day window.
	RequestsPerDay int
}

// Tier identifies one of the three fixed counting windows.
type Tier string

const (
	TierMinute Tier = "minute"
	TierHour   Tier = "hour"
	TierDay    Tier = "day"
)

// Duration returns the window length for the tier.
func (t Tier) Duration() time.Duration {
	switch t {
	case TierMinute:
		return time.Minute
	case TierHour:
		return time.Hour
	default:
		return 24 * time.Hour
	}
}

// TierStatus describes one tier of a caller's rate window.
type TierStatus struct {
	// Ceiling is the configured maximum for the tier (0 = unlimited).
	Ceiling int `json:"ceiling"`

	// Used is the number of requests recorded in the current window.
	Used int `json:"used"`

	// Remaining is how many requests remain before the ceiling.
	Remaining int `json:"remaining"`

	// Reset is when the window rolls over.
	Reset time.Time `json:"reset"`
}

// Status is the full per-tier view of a caller's rate window, exposed
// through the introspection endpoints.
type Status struct {
	Minute TierStatus `json:"minute"`
	Hour   TierStatus `json:"hour"`
	Day    TierStatus `json:"day"`
}

// Decision is the outcome of a rate limit check.
type Decision struct {
	// Allowed indicates if the request is permitted.
	Allowed bool

	// Reason explains why the request was rejected (if Allowed=false),
	// naming the tier and its ceiling/used counts.
	Reason string

	// Tier is the first tier whose ceiling was reached (if Allowed=false).
	Tier Tier

	// RetryAfter suggests how long to wait before retrying.
	RetryAfter time.Duration

	// Status is the caller's window state at decision time.
	Status Status
}
