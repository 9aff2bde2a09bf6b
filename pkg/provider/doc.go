// Package provider contains the client for the external completion API.
//
// # Overview
//
// The gate pipeline talks to exactly one upstream model provider through the
// Client interface. The HTTP implementation handles connection pooling,
// timeouts, and retry with exponential backoff for transient failures, and
// maps provider responses onto a small set of typed errors (AuthError,
// RateLimitError, UpstreamError, TimeoutError, ParseError) that the pipeline
// classifies into its own failure taxonomy.
//
// Retryable conditions (5xx responses, transport errors) are retried inside
// the client; terminal conditions (401/403, 429, other 4xx) surface
// immediately so the caller decides how to react.
package provider
