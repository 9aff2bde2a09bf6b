package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// window is a single {count, resetAt} pair for one tier.
type window struct {
	count   int
	resetAt time.Time
}

// expired reports whether the window deadline has passed.
func (w *window) expired(now time.Time) bool {
	return !now.Before(w.resetAt)
}

// callerWindows holds the three fixed windows for one caller key.
type callerWindows struct {
	minute window
	hour   window
	day    window
}

// Limiter bounds request frequency per caller key over three fixed windows.
//
// Windows are created on first access and lazily reset: whenever an
// operation observes "now >= resetAt" for a tier, that tier's count drops
// to zero and its deadline advances by the tier duration. Tiers are
// evaluated in fixed order minute, hour, day; the first tier at its
// ceiling decides the rejection.
type Limiter struct {
	config  Config
	callers map[string]*callerWindows
	mu      sync.Mutex

	// now is the clock, replaceable in tests.
	now func() time.Time
}

// NewLimiter creates a new rate limiter with the given per-tier ceilings.
//
// Example:
//
//	limiter := ratelimit.NewLimiter(ratelimit.Config{
//	    RequestsPerMinute: 10,
//	    RequestsPerHour:   100,
//	    RequestsPerDay:    500,
//	})
func NewLimiter(config Config) *Limiter {
	return &Limiter{
		config:  config,
		callers: make(map[string]*callerWindows),
		now:     time.Now,
	}
}

// SetConfig replaces the tier ceilings. Existing window counts are kept;
// the new ceilings apply from the next check.
func (l *Limiter) SetConfig(config Config) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.config = config
}

// Check evaluates whether a request from the caller is within all three
// ceilings. It does not consume quota; pair it with exactly one Record call
// once the request has been processed.
func (l *Limiter) Check(callerKey string) *Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cw := l.windowsLocked(callerKey, now)

	type tierCheck struct {
		tier    Tier
		win     *window
		ceiling int
	}
	checks := []tierCheck{
		{TierMinute, &cw.minute, l.config.RequestsPerMinute},
		{TierHour, &cw.hour, l.config.RequestsPerHour},
		{TierDay, &cw.day, l.config.RequestsPerDay},
	}

	for _, c := range checks {
		if c.ceiling > 0 && c.win.count >= c.ceiling {
			return &Decision{
				Allowed: false,
				Reason: fmt.Sprintf("%s rate limit exceeded: %d/%d requests used",
					c.tier, c.win.count, c.ceiling),
				Tier:       c.tier,
				RetryAfter: c.win.resetAt.Sub(now),
				Status:     l.statusLocked(cw),
			}
		}
	}

	return &Decision{
		Allowed: true,
		Status:  l.statusLocked(cw),
	}
}

// Record increments all three tier counters for the caller by one,
// unconditionally. Expired tiers are reset first, the same as in Check.
func (l *Limiter) Record(callerKey string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cw := l.windowsLocked(callerKey, l.now())
	cw.minute.count++
	cw.hour.count++
	cw.day.count++
}

// Status returns the caller's current per-tier window state.
func (l *Limiter) Status(callerKey string) Status {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.statusLocked(l.windowsLocked(callerKey, l.now()))
}

// Reset removes the caller's windows entirely, restoring full quota.
// This is the administrative reset operation.
func (l *Limiter) Reset(callerKey string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.callers, callerKey)
}

// Sweep removes every caller whose three tiers are simultaneously at zero
// count with expired deadlines. It returns the number of callers removed.
//
// The pipeline schedules Sweep periodically; a caller that is merely idle
// but still has counted requests in a live window is kept.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, cw := range l.callers {
		if idle(cw, now) {
			delete(l.callers, key)
			removed++
		}
	}
	return removed
}

// Size returns the number of tracked caller keys.
func (l *Limiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.callers)
}

// windowsLocked returns the caller's windows, creating them on first access
// and lazily resetting any expired tier. Caller must hold l.mu.
func (l *Limiter) windowsLocked(callerKey string, now time.Time) *callerWindows {
	cw, ok := l.callers[callerKey]
	if !ok {
		cw = &callerWindows{
			minute: window{resetAt: now.Add(time.Minute)},
			hour:   window{resetAt: now.Add(time.Hour)},
			day:    window{resetAt: now.Add(24 * time.Hour)},
		}
		l.callers[callerKey] = cw
		return cw
	}

	resetIfExpired(&cw.minute, TierMinute, now)
	resetIfExpired(&cw.hour, TierHour, now)
	resetIfExpired(&cw.day, TierDay, now)
	return cw
}

// resetIfExpired zeroes the window and advances its deadline past now.
// The deadline advances in whole tier durations so windows stay aligned
// to their original phase.
func resetIfExpired(w *window, tier Tier, now time.Time) {
	if !w.expired(now) {
		return
	}
	d := tier.Duration()
	for w.expired(now) {
		w.resetAt = w.resetAt.Add(d)
	}
	w.count = 0
}

// idle reports whether all three tiers are simultaneously expired.
// An expired window counts as reset-to-zero even before lazy reset has run,
// since the next access would zero it regardless; a live window, counted or
// not, keeps the caller.
func idle(cw *callerWindows, now time.Time) bool {
	for _, w := range []*window{&cw.minute, &cw.hour, &cw.day} {
		if !w.expired(now) {
			return false
		}
	}
	return true
}

// statusLocked builds the Status snapshot. Caller must hold l.mu and have
// already applied lazy resets via windowsLocked.
func (l *Limiter) statusLocked(cw *callerWindows) Status {
	return Status{
		Minute: tierStatus(&cw.minute, l.config.RequestsPerMinute),
		Hour:   tierStatus(&cw.hour, l.config.RequestsPerHour),
		Day:    tierStatus(&cw.day, l.config.RequestsPerDay),
	}
}

func tierStatus(w *window, ceiling int) TierStatus {
	remaining := 0
	if ceiling > 0 {
		remaining = ceiling - w.count
		if remaining < 0 {
			remaining = 0
		}
	}
	return TierStatus{
		Ceiling:   ceiling,
		Used:      w.count,
		Remaining: remaining,
		Reset:     w.resetAt,
	}
}
