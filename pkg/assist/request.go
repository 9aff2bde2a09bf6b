package assist

import (
	"fmt"
	"strings"
	"time"
)

// Category classifies an assist request. The category selects the system
// prompt used when the request reaches the model and participates in
// policy equivalence for caching.
type Category string

const (
	// CategoryRecipe requests recipe ideas from inventory or preferences.
	CategoryRecipe Category = "recipe"

	// CategoryMealPlan requests multi-day meal planning.
	CategoryMealPlan Category = "meal_plan"

	// CategoryTaskSuggestion requests chore and task suggestions.
	CategoryTaskSuggestion Category = "task_suggestion"

	// CategoryGeneral is the fallback for free-form household questions.
	CategoryGeneral Category = "general"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryRecipe, CategoryMealPlan, CategoryTaskSuggestion, CategoryGeneral:
		return true
	}
	return false
}

// Default generation parameters applied when a request carries no override.
const (
	DefaultMaxTokens   = 1024
	DefaultTemperature = 0.7
)

// Request is an immutable assist request as it arrives from the HTTP layer,
// already authenticated (CallerID and TenantID resolved from the session).
//
// MaxTokens and Temperature are optional overrides; zero values mean "use
// the defaults". Use EffectiveMaxTokens and EffectiveTemperature when the
// resolved values are needed.
type Request struct {
	// Prompt is the free-text user prompt. Required.
	Prompt string `json:"prompt"`

	// Context is optional additional context (e.g. current inventory,
	// upcoming calendar entries) folded into the conversation before the
	// user prompt.
	Context string `json:"context,omitempty"`

	// Category selects the system prompt. Required.
	Category Category `json:"category"`

	// MaxTokens optionally overrides the completion token limit.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature optionally overrides the sampling temperature.
	// Negative or zero means "use the default".
	Temperature float64 `json:"temperature,omitempty"`

	// CallerID identifies the family member issuing the request.
	CallerID string `json:"caller_id"`

	// TenantID identifies the household the caller belongs to.
	TenantID string `json:"tenant_id"`
}

// EffectiveMaxTokens returns the completion token limit for this request,
// falling back to DefaultMaxTokens when no override is set.
func (r *Request) EffectiveMaxTokens() int {
	if r.MaxTokens > 0 {
		return r.MaxTokens
	}
	return DefaultMaxTokens
}

// EffectiveTemperature returns the sampling temperature for this request,
// falling back to DefaultTemperature when no override is set.
func (r *Request) EffectiveTemperature() float64 {
	if r.Temperature > 0 {
		return r.Temperature
	}
	return DefaultTemperature
}

// CallerKey returns the identity pair used for all policy lookups,
// in the form "tenantId:callerId".
func (r *Request) CallerKey() string {
	return r.TenantID + ":" + r.CallerID
}

// Validate checks that the request is well-formed. It returns a descriptive
// error for the first problem found.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return fmt.Errorf("prompt cannot be empty")
	}
	if !r.Category.Valid() {
		return fmt.Errorf("unknown category %q", r.Category)
	}
	if r.CallerID == "" {
		return fmt.Errorf("caller id cannot be empty")
	}
	if r.TenantID == "" {
		return fmt.Errorf("tenant id cannot be empty")
	}
	if r.MaxTokens < 0 {
		return fmt.Errorf("max_tokens cannot be negative")
	}
	if r.Temperature < 0 || r.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	return nil
}

// Result is the successful outcome of a gated assist request.
type Result struct {
	// Content is the generated (or cached) response text.
	Content string `json:"content"`

	// TokenCount is the number of tokens the response accounts for.
	// Zero marginal tokens for cache hits would be misleading, so this
	// carries the stored token count either way; Cost is what reflects
	// the marginal spend.
	TokenCount int `json:"token_count"`

	// Cost is the marginal cost of this request in USD. Always zero for
	// cache hits.
	Cost float64 `json:"cost"`

	// RequestID uniquely identifies this request for correlation.
	RequestID string `json:"request_id"`

	// ServedFromCache indicates the response was returned without an
	// upstream model call.
	ServedFromCache bool `json:"served_from_cache"`

	// Timestamp is when the result was produced.
	Timestamp time.Time `json:"timestamp"`
}
