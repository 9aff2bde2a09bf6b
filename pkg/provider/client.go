package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"
)

// Client is the interface the gate pipeline uses to reach the upstream
// completion API.
type Client interface {
	// Complete sends a completion request and returns the generated
	// content with the provider's token accounting.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider's configured name.
	Name() string

	// Close releases pooled connections.
	Close() error
}

// completionsPath is the chat completions endpoint, relative to BaseURL.
const completionsPath = "/v1/chat/completions"

// HTTPClient is the HTTP implementation of Client with connection pooling,
// per-attempt timeouts, and exponential-backoff retry of transient errors.
type HTTPClient struct {
	config Config
	client *http.Client
}

// NewHTTPClient creates an HTTP completion client.
func NewHTTPClient(config Config) *HTTPClient {
	config = config.withDefaults()

	transport := &http.Transport{
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConns,
		IdleConnTimeout:     config.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &HTTPClient{
		config: config,
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
	}
}

// Name returns the provider's configured name.
func (c *HTTPClient) Name() string {
	return c.config.Name
}

// wire types for the chat completions endpoint.
type completionWire struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Model string     `json:"model"`
	Usage TokenUsage `json:"usage"`
}

// Complete sends the request to the chat completions endpoint.
//
// 5xx responses and transport errors are retried up to MaxRetries times
// with exponential backoff. Authentication failures, rate limits, and other
// 4xx responses return immediately with a typed error.
func (c *HTTPClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	if req.Model == "" {
		req.Model = c.config.Model
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal completion request: %w", err)
	}

	start := time.Now()
	resp, err := c.doWithRetry(ctx, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ParseError{
			Provider: c.config.Name,
			Cause:    fmt.Errorf("failed to read response: %w", err),
		}
	}

	var wire completionWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, &ParseError{
			Provider:    c.config.Name,
			RawResponse: string(raw),
			Cause:       fmt.Errorf("failed to unmarshal response: %w", err),
		}
	}
	if len(wire.Choices) == 0 {
		return nil, &ParseError{
			Provider:    c.config.Name,
			RawResponse: string(raw),
			Cause:       fmt.Errorf("response contains no choices"),
		}
	}

	return &CompletionResponse{
		Content: wire.Choices[0].Message.Content,
		Model:   wire.Model,
		Usage:   wire.Usage,
		Latency: time.Since(start),
	}, nil
}

// doWithRetry performs the HTTP request, retrying transient failures.
// On success the response body is left open for the caller.
func (c *HTTPClient) doWithRetry(ctx context.Context, body []byte) (*http.Response, error) {
	url := c.config.BaseURL + completionsPath
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			slog.Debug("retrying provider request",
				"provider", c.config.Name,
				"attempt", attempt,
				"max_retries", c.config.MaxRetries,
				"backoff", backoff,
			)

			select {
			case <-ctx.Done():
				return nil, &TimeoutError{Provider: c.config.Name, Timeout: c.config.Timeout}
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.config.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, &TimeoutError{Provider: c.config.Name, Timeout: c.config.Timeout}
			}

			lastErr = &TransportError{Provider: c.config.Name, Cause: err}
			slog.Warn("provider request failed, will retry",
				"provider", c.config.Name,
				"attempt", attempt+1,
				"error", err,
			)
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}

		errorBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return nil, &AuthError{
				Provider: c.config.Name,
				Message:  string(errorBody),
			}

		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, &RateLimitError{
				Provider:   c.config.Name,
				RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
				Message:    string(errorBody),
			}

		case resp.StatusCode >= 500:
			// Transient server error, retry.
			lastErr = &UpstreamError{
				Provider:   c.config.Name,
				StatusCode: resp.StatusCode,
				Message:    string(errorBody),
			}
			slog.Warn("provider returned error status, will retry",
				"provider", c.config.Name,
				"status", resp.StatusCode,
				"attempt", attempt+1,
			)

		default:
			// Other 4xx means the request itself is bad, don't retry.
			return nil, &UpstreamError{
				Provider:   c.config.Name,
				StatusCode: resp.StatusCode,
				Message:    string(errorBody),
			}
		}
	}

	return nil, lastErr
}

// Close releases pooled connections.
func (c *HTTPClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// parseRetryAfter parses the Retry-After header value.
// It supports both delay-seconds and HTTP-date formats.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}

	var seconds int
	if _, err := fmt.Sscanf(header, "%d", &seconds); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}

	return 0
}
