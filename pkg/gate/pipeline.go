package gate

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"hearth-hq/beacon/pkg/assist"
	"hearth-hq/beacon/pkg/gate/budget"
	"hearth-hq/beacon/pkg/gate/budget/store"
	"hearth-hq/beacon/pkg/gate/cache"
	"hearth-hq/beacon/pkg/gate/ratelimit"
	"hearth-hq/beacon/pkg/processing/costs"
	"hearth-hq/beacon/pkg/processing/tokens"
	"hearth-hq/beacon/pkg/provider"
)

// Options wires the pipeline's collaborators. Limiter, Cache, Budget,
// Estimator, Costs, and Client are required; Metrics and Logger are
// optional.
type Options struct {
	Limiter   *ratelimit.Limiter
	Cache     *cache.Cache
	Budget    *budget.Tracker
	Estimator *tokens.Estimator
	Costs     *costs.Calculator
	Client    provider.Client
	Metrics   *Metrics
	Logger    *slog.Logger
}

// Pipeline runs assistant requests through rate limiting, caching, budget
// enforcement, and the upstream provider, in that order.
type Pipeline struct {
	limiter   *ratelimit.Limiter
	cache     *cache.Cache
	budget    *budget.Tracker
	estimator *tokens.Estimator
	costs     *costs.Calculator
	client    provider.Client
	metrics   *Metrics
	logger    *slog.Logger

	// enabled is the assistant feature flag, togglable at runtime.
	enabled atomic.Bool

	// now is the clock, replaceable in tests.
	now func() time.Time
}

// NewPipeline creates a pipeline from the given options. The assistant
// starts enabled.
func NewPipeline(opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	p := &Pipeline{
		limiter:   opts.Limiter,
		cache:     opts.Cache,
		budget:    opts.Budget,
		estimator: opts.Estimator,
		costs:     opts.Costs,
		client:    opts.Client,
		metrics:   opts.Metrics,
		logger:    logger,
		now:       time.Now,
	}
	p.enabled.Store(true)
	return p
}

// SetEnabled toggles the assistant feature flag. While disabled, Handle
// rejects every request before any check runs.
func (p *Pipeline) SetEnabled(enabled bool) {
	p.enabled.Store(enabled)
}

// Enabled reports the current feature flag state.
func (p *Pipeline) Enabled() bool {
	return p.enabled.Load()
}

// Handle runs one assistant request through the full admission sequence.
// On failure the returned error is always a *ServiceError.
//
// A cache hit is counted against the caller's rate limit but never against
// the budget. A failed upstream call is counted against neither.
func (p *Pipeline) Handle(ctx context.Context, req *assist.Request) (*assist.Result, error) {
	start := p.now()
	requestID := uuid.NewString()

	logger := p.logger.With(
		"request_id", requestID,
		"caller", req.CallerKey(),
		"category", req.Category,
	)

	if !p.enabled.Load() {
		return nil, p.fail(logger, start, req, validationError(CodeAssistDisabled,
			"assistant features are currently disabled"))
	}

	if err := req.Validate(); err != nil {
		return nil, p.fail(logger, start, req, validationError(CodeInvalidRequest, err.Error()))
	}

	callerKey := req.CallerKey()

	// 1. Rate limit check. Advisory: nothing is counted until the
	// request actually produces an answer.
	if decision := p.limiter.Check(callerKey); !decision.Allowed {
		p.metrics.RecordRateLimitHit(string(decision.Tier))
		logger.Info("request rate limited",
			"tier", decision.Tier,
			"retry_after", decision.RetryAfter,
		)
		return nil, p.fail(logger, start, req, rateLimitError(decision.Reason, decision.RetryAfter))
	}

	// 2. Cache lookup. A hit consumes rate-limit quota but no budget.
	if entry := p.cache.Lookup(req); entry != nil {
		p.metrics.RecordCacheLookup("hit")
		p.limiter.Record(callerKey)

		logger.Debug("request served from cache",
			"fingerprint", entry.Fingerprint,
			"hit_count", entry.HitCount,
		)
		p.metrics.RecordRequest(string(req.Category), "cache_hit", p.now().Sub(start).Seconds())

		return &assist.Result{
			Content:         entry.Content,
			TokenCount:      entry.TokenCount,
			Cost:            0,
			RequestID:       requestID,
			ServedFromCache: true,
			Timestamp:       p.now(),
		}, nil
	}
	p.metrics.RecordCacheLookup("miss")

	// 3. Budget check against the estimated cost of this request.
	estimatedTokens := p.estimator.EstimateRequest(req)
	if decision := p.budget.CanAfford(callerKey, estimatedTokens); !decision.Allowed {
		p.metrics.RecordBudgetHit(string(decision.Period))
		logger.Info("request over budget",
			"period", decision.Period,
			"estimated_tokens", estimatedTokens,
		)
		return nil, p.fail(logger, start, req, budgetError(decision.Reason))
	}

	// 4. Upstream call.
	resp, err := p.client.Complete(ctx, &provider.CompletionRequest{
		Messages:    buildMessages(req),
		MaxTokens:   req.EffectiveMaxTokens(),
		Temperature: req.EffectiveTemperature(),
		User:        callerKey,
	})
	if err != nil {
		svcErr := classifyProviderError(err)
		logger.Warn("upstream completion failed",
			"code", svcErr.Code,
			"kind", svcErr.Kind,
			"retryable", svcErr.Retryable,
			"error", err,
		)
		return nil, p.fail(logger, start, req, svcErr)
	}

	// 5. Record actual usage. The provider's own count is authoritative;
	// fall back to the estimate when it is missing.
	actualTokens := resp.Usage.TotalTokens
	if actualTokens <= 0 {
		actualTokens = estimatedTokens
	}
	actualCost := p.costs.Cost(actualTokens)
	p.metrics.RecordUsage(actualTokens, actualCost)

	if err := p.budget.RecordUsage(ctx, callerKey, req.Category, actualTokens, requestID); err != nil {
		// The answer is already paid for; losing the audit record must
		// not fail the request.
		logger.Error("failed to record usage", "error", err)
	}

	// 6. Cache the fresh answer, then 7. count the request.
	p.cache.Store(req, resp.Content, actualTokens)
	p.limiter.Record(callerKey)

	logger.Info("request completed",
		"tokens", actualTokens,
		"cost_usd", actualCost,
		"provider_latency", resp.Latency,
	)
	p.metrics.RecordRequest(string(req.Category), "completed", p.now().Sub(start).Seconds())

	return &assist.Result{
		Content:         resp.Content,
		TokenCount:      actualTokens,
		Cost:            actualCost,
		RequestID:       requestID,
		ServedFromCache: false,
		Timestamp:       p.now(),
	}, nil
}

// fail records failure metrics and returns err unchanged.
func (p *Pipeline) fail(logger *slog.Logger, start time.Time, req *assist.Request, err *ServiceError) *ServiceError {
	p.metrics.RecordFailure(err.Kind, err.Code)
	p.metrics.RecordRequest(string(req.Category), "failed", p.now().Sub(start).Seconds())
	return err
}

// ===== Introspection and administration =====
//
// Thin passthroughs so the HTTP layer depends on the pipeline alone.

// LimitStatus returns the caller's current rate-limit windows.
func (p *Pipeline) LimitStatus(callerKey string) ratelimit.Status {
	return p.limiter.Status(callerKey)
}

// ResetLimits clears the caller's rate-limit windows.
func (p *Pipeline) ResetLimits(callerKey string) {
	p.limiter.Reset(callerKey)
}

// CacheStats returns response cache counters.
func (p *Pipeline) CacheStats() cache.Stats {
	return p.cache.Stats()
}

// CacheEntries returns up to limit cached entries, most recently used
// first.
func (p *Pipeline) CacheEntries(limit int) []cache.Entry {
	return p.cache.Entries(limit)
}

// ClearCache drops every cached response.
func (p *Pipeline) ClearCache() {
	p.cache.Clear()
}

// BudgetUsage returns the caller's current spend ledger.
func (p *Pipeline) BudgetUsage(callerKey string) budget.Usage {
	return p.budget.Usage(callerKey)
}

// BudgetHistory returns the caller's most recent usage records.
func (p *Pipeline) BudgetHistory(ctx context.Context, callerKey string, limit int) ([]*store.UsageRecord, error) {
	return p.budget.History(ctx, callerKey, limit)
}

// Sweep runs one maintenance pass over the cache, the rate limiter, and
// the budget ledgers, returning the number of entries removed.
func (p *Pipeline) Sweep() int {
	return p.cache.Sweep() + p.limiter.Sweep() + p.budget.Sweep()
}
