package budget

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"hearth-hq/beacon/pkg/assist"
	"hearth-hq/beacon/pkg/gate/budget/store"
)

// CostModel converts token counts into USD. Implemented by
// costs.Calculator.
type CostModel interface {
	Cost(tokens int) float64
}

// ledger holds the running totals for one caller (or one tenant) in the
// current day and month. Period keys are calendar strings ("2026-03-01",
// "2026-03"); when the clock crosses into a new period the stale side is
// zeroed on next access.
type ledger struct {
	day         string
	dayTokens   int
	dayCost     float64
	dayRequests int

	month         string
	monthTokens   int
	monthCost     float64
	monthRequests int
}

// rollover zeroes any period the clock has left behind.
func (l *ledger) rollover(now time.Time) {
	if d := dayKey(now); l.day != d {
		l.day = d
		l.dayTokens = 0
		l.dayCost = 0
		l.dayRequests = 0
	}
	if m := monthKey(now); l.month != m {
		l.month = m
		l.monthTokens = 0
		l.monthCost = 0
		l.monthRequests = 0
	}
}

// Tracker enforces per-caller and per-tenant spend ceilings.
//
// The in-memory ledgers are the source of truth for admission; the
// optional store backend is an append-only audit log of usage records.
type Tracker struct {
	config Config
	cost   CostModel

	callers map[string]*ledger
	tenants map[string]*ledger

	backend store.Backend

	mu sync.Mutex

	// now is the clock, replaceable in tests.
	now func() time.Time
}

// NewTracker creates a budget tracker.
//
// The cost model is required. The backend is optional; pass nil to skip
// usage-record persistence.
func NewTracker(config Config, cost CostModel, backend store.Backend) *Tracker {
	return &Tracker{
		config:  config,
		cost:    cost,
		callers: make(map[string]*ledger),
		tenants: make(map[string]*ledger),
		backend: backend,
		now:     time.Now,
	}
}

// SetConfig replaces the spend ceilings. Ledger balances are kept; the new
// ceilings apply from the next check.
func (t *Tracker) SetConfig(config Config) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.config = config
}

// CanAfford checks whether a request estimated at estimatedTokens fits the
// caller's daily and monthly ceilings and, where configured, the tenant's
// daily ceiling. Ceilings are checked in that fixed order; the first one
// breached determines the rejection reason.
//
// This is advisory: nothing is debited. Call RecordUsage with the actual
// token count once the external call succeeds.
func (t *Tracker) CanAfford(callerKey string, estimatedTokens int) *Decision {
	estCost := t.cost.Cost(estimatedTokens)

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	cl := t.ledgerLocked(t.callers, callerKey, now)

	if t.config.DailyLimit > 0 && cl.dayCost+estCost > t.config.DailyLimit {
		return &Decision{
			Allowed: false,
			Reason: fmt.Sprintf("daily budget exceeded: $%.4f used of $%.4f, estimated request cost $%.4f",
				cl.dayCost, t.config.DailyLimit, estCost),
			Period: PeriodDay,
		}
	}

	if t.config.MonthlyLimit > 0 && cl.monthCost+estCost > t.config.MonthlyLimit {
		return &Decision{
			Allowed: false,
			Reason: fmt.Sprintf("monthly budget exceeded: $%.4f used of $%.4f, estimated request cost $%.4f",
				cl.monthCost, t.config.MonthlyLimit, estCost),
			Period: PeriodMonth,
		}
	}

	if t.config.TenantDailyLimit > 0 {
		tl := t.ledgerLocked(t.tenants, tenantOf(callerKey), now)
		if tl.dayCost+estCost > t.config.TenantDailyLimit {
			return &Decision{
				Allowed: false,
				Reason: fmt.Sprintf("household daily budget exceeded: $%.4f used of $%.4f, estimated request cost $%.4f",
					tl.dayCost, t.config.TenantDailyLimit, estCost),
				Period: PeriodTenantDay,
			}
		}
	}

	return &Decision{Allowed: true}
}

// RecordUsage debits the caller's (and tenant's) ledgers with the actual
// token count of a successful external call and appends an immutable usage
// record to the backend, if one is configured.
//
// It must be called only after a real external call succeeds, never for a
// cache hit.
func (t *Tracker) RecordUsage(ctx context.Context, callerKey string, category assist.Category, tokens int, requestID string) error {
	actualCost := t.cost.Cost(tokens)

	t.mu.Lock()
	now := t.now()

	cl := t.ledgerLocked(t.callers, callerKey, now)
	cl.dayTokens += tokens
	cl.dayCost += actualCost
	cl.dayRequests++
	cl.monthTokens += tokens
	cl.monthCost += actualCost
	cl.monthRequests++

	tl := t.ledgerLocked(t.tenants, tenantOf(callerKey), now)
	tl.dayTokens += tokens
	tl.dayCost += actualCost
	tl.dayRequests++
	tl.monthTokens += tokens
	tl.monthCost += actualCost
	tl.monthRequests++
	t.mu.Unlock()

	if t.backend == nil {
		return nil
	}

	record := &store.UsageRecord{
		RequestID: requestID,
		CallerKey: callerKey,
		Category:  string(category),
		Tokens:    tokens,
		Cost:      actualCost,
		Timestamp: now,
	}
	if err := t.backend.Append(ctx, record); err != nil {
		return fmt.Errorf("failed to persist usage record: %w", err)
	}
	return nil
}

// Usage returns the caller's current ledger snapshot.
func (t *Tracker) Usage(callerKey string) Usage {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	cl := t.ledgerLocked(t.callers, callerKey, now)

	usage := Usage{
		Daily: PeriodUsage{
			Used:      cl.dayCost,
			Limit:     t.config.DailyLimit,
			Remaining: remaining(t.config.DailyLimit, cl.dayCost),
			Tokens:    cl.dayTokens,
			Requests:  cl.dayRequests,
		},
		Monthly: PeriodUsage{
			Used:      cl.monthCost,
			Limit:     t.config.MonthlyLimit,
			Remaining: remaining(t.config.MonthlyLimit, cl.monthCost),
			Tokens:    cl.monthTokens,
			Requests:  cl.monthRequests,
		},
		AsOf: now,
	}
	if cl.monthRequests > 0 {
		usage.AverageCost = cl.monthCost / float64(cl.monthRequests)
	}
	return usage
}

// History returns the caller's most recent usage records from the backend,
// newest first. Returns nil when no backend is configured.
func (t *Tracker) History(ctx context.Context, callerKey string, limit int) ([]*store.UsageRecord, error) {
	if t.backend == nil {
		return nil, nil
	}
	return t.backend.ListByCaller(ctx, callerKey, limit)
}

// Sweep removes ledgers whose day and month periods have both rolled over,
// bounding memory in long-lived processes. It returns the number of
// ledgers removed.
func (t *Tracker) Sweep() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	day, month := dayKey(now), monthKey(now)
	removed := 0
	for _, ledgers := range []map[string]*ledger{t.callers, t.tenants} {
		for key, l := range ledgers {
			if l.day != day && l.month != month {
				delete(ledgers, key)
				removed++
			}
		}
	}
	return removed
}

// ledgerLocked returns the ledger for key in the given map, creating it on
// first access and applying period rollover. Caller must hold t.mu.
func (t *Tracker) ledgerLocked(ledgers map[string]*ledger, key string, now time.Time) *ledger {
	l, ok := ledgers[key]
	if !ok {
		l = &ledger{day: dayKey(now), month: monthKey(now)}
		ledgers[key] = l
		return l
	}
	l.rollover(now)
	return l
}

// tenantOf extracts the tenant part of a "tenantId:callerId" key.
func tenantOf(callerKey string) string {
	if i := strings.IndexByte(callerKey, ':'); i >= 0 {
		return callerKey[:i]
	}
	return callerKey
}

func dayKey(t time.Time) string   { return t.UTC().Format("2006-01-02") }
func monthKey(t time.Time) string { return t.UTC().Format("2006-01") }

func remaining(limit, used float64) float64 {
	if limit <= 0 {
		return 0
	}
	if used >= limit {
		return 0
	}
	return limit - used
}
