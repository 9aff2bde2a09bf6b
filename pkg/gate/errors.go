package gate

import (
	"fmt"
	"time"
)

// Kind categorizes a pipeline failure for callers that branch on failure
// class rather than message text.
type Kind string

const (
	// KindRateLimit means the caller exhausted a request-count window.
	KindRateLimit Kind = "rate_limit"

	// KindBudgetExceeded means the request would cross a spend ceiling.
	KindBudgetExceeded Kind = "budget_exceeded"

	// KindAPIError means the upstream provider rejected the request or
	// answered unusably.
	KindAPIError Kind = "api_error"

	// KindNetworkError means the provider could not be reached or did
	// not answer in time.
	KindNetworkError Kind = "network_error"

	// KindValidationError means the request failed local validation and
	// never left the service.
	KindValidationError Kind = "validation_error"
)

// ServiceError is the single failure type the pipeline returns. Code is a
// stable machine-readable identifier; Kind groups codes into the failure
// classes above; Retryable tells the caller whether retrying the identical
// request can possibly succeed.
type ServiceError struct {
	// Code is a stable machine-readable error identifier.
	Code string

	// Message is a human-readable description.
	Message string

	// Kind is the failure class.
	Kind Kind

	// Retryable indicates whether an identical retry can succeed.
	Retryable bool

	// RetryAfter is a hint for when to retry, when known (rate limits).
	RetryAfter time.Duration

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// Error codes returned by the pipeline.
const (
	CodeRateLimited      = "rate_limited"
	CodeBudgetExceeded   = "budget_exceeded"
	CodeInvalidRequest   = "invalid_request"
	CodeAssistDisabled   = "assist_disabled"
	CodeProviderAuth     = "provider_auth_failed"
	CodeProviderLimited  = "provider_rate_limited"
	CodeProviderError    = "provider_error"
	CodeProviderTimeout  = "provider_timeout"
	CodeProviderBadReply = "provider_bad_reply"
	CodeNetworkError     = "network_error"
)

func rateLimitError(reason string, retryAfter time.Duration) *ServiceError {
	return &ServiceError{
		Code:       CodeRateLimited,
		Message:    reason,
		Kind:       KindRateLimit,
		Retryable:  true,
		RetryAfter: retryAfter,
	}
}

func budgetError(reason string) *ServiceError {
	return &ServiceError{
		Code:      CodeBudgetExceeded,
		Message:   reason,
		Kind:      KindBudgetExceeded,
		Retryable: false,
	}
}

func validationError(code, reason string) *ServiceError {
	return &ServiceError{
		Code:      code,
		Message:   reason,
		Kind:      KindValidationError,
		Retryable: false,
	}
}
