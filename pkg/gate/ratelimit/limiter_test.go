package ratelimit

import (
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeClock is a settable clock for driving window expiry without sleeping.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestLimiter(cfg Config) (*Limiter, *fakeClock) {
	l := NewLimiter(cfg)
	clock := newFakeClock()
	l.now = clock.Now
	return l, clock
}

// ============================================================================
// Check / Record Tests
// ============================================================================

func TestLimiter_AllowsUnderCeiling(t *testing.T) {
	l, _ := newTestLimiter(Config{RequestsPerMinute: 5})

	for i := 0; i < 5; i++ {
		d := l.Check("fam1:u1")
		if !d.Allowed {
			t.Fatalf("Request %d should be allowed: %s", i+1, d.Reason)
		}
		l.Record("fam1:u1")
	}
}

func TestLimiter_RejectsAtMinuteCeiling(t *testing.T) {
	l, _ := newTestLimiter(Config{RequestsPerMinute: 5})

	for i := 0; i < 5; i++ {
		if d := l.Check("fam1:u1"); !d.Allowed {
			t.Fatalf("Request %d should be allowed", i+1)
		}
		l.Record("fam1:u1")
	}

	d := l.Check("fam1:u1")
	if d.Allowed {
		t.Fatal("Sixth request within the minute should be rejected")
	}
	if d.Tier != TierMinute {
		t.Errorf("Expected minute tier, got %s", d.Tier)
	}
	if !strings.Contains(d.Reason, "minute") || !strings.Contains(d.Reason, "5/5") {
		t.Errorf("Reason should name the tier and used/ceiling counts, got %q", d.Reason)
	}
	if d.RetryAfter <= 0 || d.RetryAfter > time.Minute {
		t.Errorf("RetryAfter should be within the minute window, got %v", d.RetryAfter)
	}
}

func TestLimiter_WindowResetsAfterBoundary(t *testing.T) {
	l, clock := newTestLimiter(Config{RequestsPerMinute: 5})

	for i := 0; i < 5; i++ {
		l.Check("fam1:u1")
		l.Record("fam1:u1")
	}
	if d := l.Check("fam1:u1"); d.Allowed {
		t.Fatal("Should be rejected at ceiling")
	}

	clock.Advance(61 * time.Second)

	d := l.Check("fam1:u1")
	if !d.Allowed {
		t.Fatalf("Should be allowed after minute boundary: %s", d.Reason)
	}
	if d.Status.Minute.Used != 0 {
		t.Errorf("Minute counter should reset to zero, got %d", d.Status.Minute.Used)
	}
}

func TestLimiter_TierOrderMinuteFirst(t *testing.T) {
	// Both minute and hour ceilings are exhausted; the minute tier must
	// decide the rejection because tiers are evaluated in fixed order.
	l, _ := newTestLimiter(Config{RequestsPerMinute: 2, RequestsPerHour: 2})

	l.Record("fam1:u1")
	l.Record("fam1:u1")

	d := l.Check("fam1:u1")
	if d.Allowed {
		t.Fatal("Should be rejected")
	}
	if d.Tier != TierMinute {
		t.Errorf("Expected minute tier to decide, got %s", d.Tier)
	}
}

func TestLimiter_HourCeilingOutlivesMinuteReset(t *testing.T) {
	l, clock := newTestLimiter(Config{RequestsPerMinute: 10, RequestsPerHour: 3})

	for i := 0; i < 3; i++ {
		l.Record("fam1:u1")
	}

	clock.Advance(2 * time.Minute)

	d := l.Check("fam1:u1")
	if d.Allowed {
		t.Fatal("Hour ceiling should still reject after minute reset")
	}
	if d.Tier != TierHour {
		t.Errorf("Expected hour tier, got %s", d.Tier)
	}
}

func TestLimiter_ZeroCeilingUnlimited(t *testing.T) {
	l, _ := newTestLimiter(Config{})

	for i := 0; i < 1000; i++ {
		if d := l.Check("fam1:u1"); !d.Allowed {
			t.Fatal("Unconfigured tiers must never reject")
		}
		l.Record("fam1:u1")
	}
}

func TestLimiter_CallersIndependent(t *testing.T) {
	l, _ := newTestLimiter(Config{RequestsPerMinute: 1})

	l.Record("fam1:u1")
	if d := l.Check("fam1:u1"); d.Allowed {
		t.Fatal("u1 should be at ceiling")
	}
	if d := l.Check("fam1:u2"); !d.Allowed {
		t.Fatal("u2 must not be affected by u1's usage")
	}
}

// ============================================================================
// Status / Reset Tests
// ============================================================================

func TestLimiter_Status(t *testing.T) {
	l, _ := newTestLimiter(Config{RequestsPerMinute: 10, RequestsPerHour: 100, RequestsPerDay: 500})

	l.Record("fam1:u1")
	l.Record("fam1:u1")

	s := l.Status("fam1:u1")
	if s.Minute.Used != 2 || s.Minute.Remaining != 8 {
		t.Errorf("Minute tier: used=%d remaining=%d, want 2/8", s.Minute.Used, s.Minute.Remaining)
	}
	if s.Hour.Used != 2 || s.Hour.Remaining != 98 {
		t.Errorf("Hour tier: used=%d remaining=%d, want 2/98", s.Hour.Used, s.Hour.Remaining)
	}
	if s.Day.Used != 2 || s.Day.Remaining != 498 {
		t.Errorf("Day tier: used=%d remaining=%d, want 2/498", s.Day.Used, s.Day.Remaining)
	}
	if !s.Minute.Reset.After(l.now()) {
		t.Error("Reset time for a touched tier must be in the future")
	}
}

func TestLimiter_AdminReset(t *testing.T) {
	l, _ := newTestLimiter(Config{RequestsPerMinute: 1})

	l.Record("fam1:u1")
	if d := l.Check("fam1:u1"); d.Allowed {
		t.Fatal("Should be at ceiling before reset")
	}

	l.Reset("fam1:u1")

	if d := l.Check("fam1:u1"); !d.Allowed {
		t.Fatal("Should be allowed after admin reset")
	}
}

// ============================================================================
// Sweep Tests
// ============================================================================

func TestLimiter_SetConfigAppliesNewCeilings(t *testing.T) {
	l, _ := newTestLimiter(Config{RequestsPerMinute: 1})

	l.Record("fam-1:alice")
	if d := l.Check("fam-1:alice"); d.Allowed {
		t.Fatal("expected rejection under the old ceiling")
	}

	l.SetConfig(Config{RequestsPerMinute: 5})
	if d := l.Check("fam-1:alice"); !d.Allowed {
		t.Errorf("expected the raised ceiling to apply, got %q", d.Reason)
	}
}

func TestLimiter_SweepRemovesExpiredCallers(t *testing.T) {
	l, clock := newTestLimiter(Config{RequestsPerMinute: 5})

	l.Record("fam1:u1")
	l.Record("fam1:u2")
	if l.Size() != 2 {
		t.Fatalf("Expected 2 tracked callers, got %d", l.Size())
	}

	// Day window is the longest tier; nothing may be swept before it expires.
	clock.Advance(23 * time.Hour)
	if removed := l.Sweep(); removed != 0 {
		t.Errorf("Nothing should be swept while the day window is live, removed %d", removed)
	}

	clock.Advance(2 * time.Hour)
	if removed := l.Sweep(); removed != 2 {
		t.Errorf("Expected 2 callers swept, got %d", removed)
	}
	if l.Size() != 0 {
		t.Errorf("Expected 0 tracked callers after sweep, got %d", l.Size())
	}
}

func TestLimiter_SweepKeepsActiveCallers(t *testing.T) {
	l, clock := newTestLimiter(Config{RequestsPerMinute: 5})

	l.Record("fam1:idle")
	clock.Advance(25 * time.Hour)
	l.Record("fam1:active") // fresh windows, all live

	if removed := l.Sweep(); removed != 1 {
		t.Errorf("Expected only the idle caller swept, got %d", removed)
	}
	if l.Size() != 1 {
		t.Errorf("Expected active caller kept, size=%d", l.Size())
	}
}

// ============================================================================
// Concurrency Tests
// ============================================================================

func TestLimiter_ConcurrentRecord(t *testing.T) {
	l, _ := newTestLimiter(Config{RequestsPerDay: 10000})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				l.Check("fam1:u1")
				l.Record("fam1:u1")
			}
		}()
	}
	wg.Wait()

	s := l.Status("fam1:u1")
	if s.Day.Used != 1000 {
		t.Errorf("Expected exactly 1000 recorded requests, got %d", s.Day.Used)
	}
}
