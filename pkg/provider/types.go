package provider

import "time"

// Message roles understood by the completion API.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn in a conversation.
type Message struct {
	// Role identifies the message sender (system, user, assistant).
	Role string `json:"role"`

	// Content is the message text.
	Content string `json:"content"`
}

// TokenUsage reports token consumption for a completed request as counted
// by the upstream provider.
type TokenUsage struct {
	// PromptTokens is the number of tokens in the prompt.
	PromptTokens int `json:"prompt_tokens"`

	// CompletionTokens is the number of tokens generated.
	CompletionTokens int `json:"completion_tokens"`

	// TotalTokens is prompt plus completion.
	TotalTokens int `json:"total_tokens"`
}

// CompletionRequest is a request to the upstream completion API.
type CompletionRequest struct {
	// Model is the model identifier.
	Model string `json:"model"`

	// Messages is the conversation to complete.
	Messages []Message `json:"messages"`

	// MaxTokens caps the generated completion length.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature controls randomness (0.0 to 1.0).
	Temperature float64 `json:"temperature,omitempty"`

	// User is an optional end-user identifier for abuse monitoring.
	User string `json:"user,omitempty"`
}

// CompletionResponse is the upstream provider's answer.
type CompletionResponse struct {
	// Content is the generated completion text.
	Content string

	// Model is the model that produced the completion.
	Model string

	// Usage is the provider's token accounting for the request.
	Usage TokenUsage

	// Latency is the wall-clock duration of the upstream call, including
	// any internal retries.
	Latency time.Duration
}

// Config configures the HTTP completion client.
type Config struct {
	// Name identifies the provider in logs and errors.
	Name string `yaml:"name"`

	// BaseURL is the provider's API base URL (no trailing slash).
	BaseURL string `yaml:"base_url"`

	// APIKey authenticates requests, sent as a bearer token.
	APIKey string `yaml:"api_key"`

	// Model is the default model identifier for requests that do not
	// name one.
	Model string `yaml:"model"`

	// Timeout bounds each request attempt end to end.
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the number of additional attempts after a transient
	// failure. Zero means no retries.
	MaxRetries int `yaml:"max_retries"`

	// MaxIdleConns caps the connection pool size.
	MaxIdleConns int `yaml:"max_idle_conns"`

	// IdleConnTimeout is how long idle connections are kept.
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`
}

// withDefaults fills unset config fields.
func (c Config) withDefaults() Config {
	if c.Name == "" {
		c.Name = "upstream"
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 10
	}
	if c.IdleConnTimeout <= 0 {
		c.IdleConnTimeout = 90 * time.Second
	}
	return c
}
