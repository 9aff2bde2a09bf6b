package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// successBody is a minimal well-formed chat completions response.
const successBody = `{
	"model": "hearth-assist-1",
	"choices": [{"message": {"role": "assistant", "content": "Try a lentil soup."}, "finish_reason": "stop"}],
	"usage": {"prompt_tokens": 40, "completion_tokens": 12, "total_tokens": 52}
}`

func testClient(serverURL string, maxRetries int) *HTTPClient {
	return NewHTTPClient(Config{
		Name:       "test-provider",
		BaseURL:    serverURL,
		APIKey:     "test-key",
		Model:      "hearth-assist-1",
		Timeout:    5 * time.Second,
		MaxRetries: maxRetries,
	})
}

func testRequest() *CompletionRequest {
	return &CompletionRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: "You plan family dinners."},
			{Role: RoleUser, Content: "Suggest a weeknight dinner."},
		},
		MaxTokens:   256,
		Temperature: 0.7,
	}
}

func TestCompleteSuccess(t *testing.T) {
	var gotAuth string
	var gotWire CompletionRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotWire); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(successBody))
	}))
	defer server.Close()

	client := testClient(server.URL, 0)
	defer client.Close()

	resp, err := client.Complete(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if resp.Content != "Try a lentil soup." {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.Usage.TotalTokens != 52 {
		t.Errorf("total tokens = %d, want 52", resp.Usage.TotalTokens)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("authorization header = %q", gotAuth)
	}
	if gotWire.Model != "hearth-assist-1" {
		t.Errorf("expected default model filled in, got %q", gotWire.Model)
	}
	if len(gotWire.Messages) != 2 {
		t.Errorf("expected 2 messages on the wire, got %d", len(gotWire.Messages))
	}
}

func TestCompleteRetriesOn5xx(t *testing.T) {
	attempts := int32(0)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error": "internal server error"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(successBody))
	}))
	defer server.Close()

	client := testClient(server.URL, 3)
	defer client.Close()

	resp, err := client.Complete(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if resp.Content == "" {
		t.Error("expected content in retried response")
	}
	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Errorf("expected 3 attempts (2 failures + 1 success), got %d", got)
	}
}

func TestCompleteRetriesExhausted(t *testing.T) {
	attempts := int32(0)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := testClient(server.URL, 1)
	defer client.Close()

	_, err := client.Complete(context.Background(), testRequest())

	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("expected UpstreamError, got %T: %v", err, err)
	}
	if upstreamErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", upstreamErr.StatusCode)
	}
	if got := atomic.LoadInt32(&attempts); got != 2 {
		t.Errorf("expected 2 attempts (1 retry), got %d", got)
	}
}

func TestCompleteNoRetryOnTerminalStatus(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		check      func(t *testing.T, err error)
	}{
		{
			name:       "401 unauthorized",
			statusCode: http.StatusUnauthorized,
			check: func(t *testing.T, err error) {
				var authErr *AuthError
				if !errors.As(err, &authErr) {
					t.Fatalf("expected AuthError, got %T: %v", err, err)
				}
			},
		},
		{
			name:       "403 forbidden",
			statusCode: http.StatusForbidden,
			check: func(t *testing.T, err error) {
				var authErr *AuthError
				if !errors.As(err, &authErr) {
					t.Fatalf("expected AuthError, got %T: %v", err, err)
				}
			},
		},
		{
			name:       "429 rate limit",
			statusCode: http.StatusTooManyRequests,
			check: func(t *testing.T, err error) {
				var rlErr *RateLimitError
				if !errors.As(err, &rlErr) {
					t.Fatalf("expected RateLimitError, got %T: %v", err, err)
				}
			},
		},
		{
			name:       "400 bad request",
			statusCode: http.StatusBadRequest,
			check: func(t *testing.T, err error) {
				var upstreamErr *UpstreamError
				if !errors.As(err, &upstreamErr) {
					t.Fatalf("expected UpstreamError, got %T: %v", err, err)
				}
				if upstreamErr.StatusCode != http.StatusBadRequest {
					t.Errorf("status = %d, want 400", upstreamErr.StatusCode)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := int32(0)
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&attempts, 1)
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(`{"error": "nope"}`))
			}))
			defer server.Close()

			client := testClient(server.URL, 3)
			defer client.Close()

			_, err := client.Complete(context.Background(), testRequest())
			tt.check(t, err)

			if got := atomic.LoadInt32(&attempts); got != 1 {
				t.Errorf("expected exactly 1 attempt for terminal status, got %d", got)
			}
		})
	}
}

func TestCompleteRateLimitRetryAfter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := testClient(server.URL, 0)
	defer client.Close()

	_, err := client.Complete(context.Background(), testRequest())

	var rlErr *RateLimitError
	if !errors.As(err, &rlErr) {
		t.Fatalf("expected RateLimitError, got %T: %v", err, err)
	}
	if rlErr.RetryAfter != 30*time.Second {
		t.Errorf("retry after = %s, want 30s", rlErr.RetryAfter)
	}
}

func TestCompleteMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`not json at all`))
	}))
	defer server.Close()

	client := testClient(server.URL, 0)
	defer client.Close()

	_, err := client.Complete(context.Background(), testRequest())

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %T: %v", err, err)
	}
	if parseErr.RawResponse != "not json at all" {
		t.Errorf("raw response = %q", parseErr.RawResponse)
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"model": "hearth-assist-1", "choices": []}`))
	}))
	defer server.Close()

	client := testClient(server.URL, 0)
	defer client.Close()

	_, err := client.Complete(context.Background(), testRequest())

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError for empty choices, got %T: %v", err, err)
	}
}

func TestCompleteContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(successBody))
	}))
	defer server.Close()

	client := testClient(server.URL, 0)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Complete(ctx, testRequest())

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected TimeoutError, got %T: %v", err, err)
	}
}

func TestCompleteTransportError(t *testing.T) {
	// A server that is already closed yields a connection error.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := testClient(server.URL, 0)
	defer client.Close()

	_, err := client.Complete(context.Background(), testRequest())

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %T: %v", err, err)
	}
}

func TestParseRetryAfter(t *testing.T) {
	if got := parseRetryAfter(""); got != 0 {
		t.Errorf("empty header = %s, want 0", got)
	}
	if got := parseRetryAfter("15"); got != 15*time.Second {
		t.Errorf("seconds header = %s, want 15s", got)
	}
	future := time.Now().Add(time.Minute).UTC().Format(http.TimeFormat)
	if got := parseRetryAfter(future); got <= 0 || got > time.Minute {
		t.Errorf("http-date header = %s, want about 1m", got)
	}
	if got := parseRetryAfter("garbage"); got != 0 {
		t.Errorf("garbage header = %s, want 0", got)
	}
}
