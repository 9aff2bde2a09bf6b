package gate

import (
	"errors"
	"fmt"

	"hearth-hq/beacon/pkg/provider"
)

// classifyRule maps one provider error shape onto a ServiceError. Rules are
// evaluated in order; the first match wins.
type classifyRule struct {
	match func(err error) bool
	build func(err error) *ServiceError
}

// classifyRules is the ordered provider-error classification table. Order
// matters: authentication is checked before the general upstream case, and
// the final rule is a catch-all.
var classifyRules = []classifyRule{
	{
		match: func(err error) bool {
			var e *provider.AuthError
			return errors.As(err, &e)
		},
		build: func(err error) *ServiceError {
			return &ServiceError{
				Code:      CodeProviderAuth,
				Message:   "assistant provider rejected our credentials",
				Kind:      KindAPIError,
				Retryable: false,
				Cause:     err,
			}
		},
	},
	{
		match: func(err error) bool {
			var e *provider.RateLimitError
			return errors.As(err, &e)
		},
		build: func(err error) *ServiceError {
			var e *provider.RateLimitError
			errors.As(err, &e)
			return &ServiceError{
				Code:       CodeProviderLimited,
				Message:    "assistant provider is rate limiting us, try again shortly",
				Kind:       KindRateLimit,
				Retryable:  true,
				RetryAfter: e.RetryAfter,
				Cause:      err,
			}
		},
	},
	{
		match: func(err error) bool {
			var e *provider.TimeoutError
			return errors.As(err, &e)
		},
		build: func(err error) *ServiceError {
			return &ServiceError{
				Code:      CodeProviderTimeout,
				Message:   "assistant provider did not answer in time",
				Kind:      KindNetworkError,
				Retryable: true,
				Cause:     err,
			}
		},
	},
	{
		match: func(err error) bool {
			var e *provider.TransportError
			return errors.As(err, &e)
		},
		build: func(err error) *ServiceError {
			return &ServiceError{
				Code:      CodeNetworkError,
				Message:   "assistant provider is unreachable",
				Kind:      KindNetworkError,
				Retryable: true,
				Cause:     err,
			}
		},
	},
	{
		match: func(err error) bool {
			var e *provider.ParseError
			return errors.As(err, &e)
		},
		build: func(err error) *ServiceError {
			return &ServiceError{
				Code:      CodeProviderBadReply,
				Message:   "assistant provider returned an unusable response",
				Kind:      KindAPIError,
				Retryable: true,
				Cause:     err,
			}
		},
	},
	{
		match: func(err error) bool {
			var e *provider.UpstreamError
			return errors.As(err, &e)
		},
		build: func(err error) *ServiceError {
			var e *provider.UpstreamError
			errors.As(err, &e)
			// Server-side failures are worth retrying; a 4xx means the
			// request itself was rejected and will be rejected again.
			retryable := e.StatusCode >= 500 || e.StatusCode == 0
			return &ServiceError{
				Code:      CodeProviderError,
				Message:   fmt.Sprintf("assistant provider error (status %d)", e.StatusCode),
				Kind:      KindAPIError,
				Retryable: retryable,
				Cause:     err,
			}
		},
	},
}

// classifyProviderError converts a provider error into the pipeline's
// failure taxonomy. Unrecognized errors are treated as retryable upstream
// failures.
func classifyProviderError(err error) *ServiceError {
	for _, rule := range classifyRules {
		if rule.match(err) {
			return rule.build(err)
		}
	}
	return &ServiceError{
		Code:      CodeProviderError,
		Message:   "assistant provider call failed",
		Kind:      KindAPIError,
		Retryable: true,
		Cause:     err,
	}
}
