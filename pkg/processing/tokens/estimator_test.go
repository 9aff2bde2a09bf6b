package tokens

import (
	"strings"
	"testing"

	"hearth-hq/beacon/pkg/assist"
)

func TestEstimator_EstimateText(t *testing.T) {
	e := NewEstimator(4.0)

	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"single char rounds up to one", "a", 1},
		{"eight chars", "12345678", 2},
		{"rounding", strings.Repeat("x", 10), 3}, // 10/4 = 2.5 rounds to 3
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.EstimateText(tt.text); got != tt.want {
				t.Errorf("EstimateText(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestEstimator_DefaultRatio(t *testing.T) {
	e := NewEstimator(0)
	if got := e.EstimateText(strings.Repeat("x", 40)); got != 10 {
		t.Errorf("Expected default 4 chars/token, got %d tokens for 40 chars", got)
	}
}

func TestEstimator_EstimateRequest(t *testing.T) {
	e := NewEstimator(4.0)

	req := &assist.Request{
		Prompt:    strings.Repeat("p", 400), // 100 tokens
		Category:  assist.CategoryGeneral,
		MaxTokens: 200,
		CallerID:  "u1",
		TenantID:  "fam1",
	}

	got := e.EstimateRequest(req)

	// Prompt (100) + completion cap (200) are the dominant terms; the
	// system prompt stand-in and overheads add a small constant.
	if got < 300 {
		t.Errorf("Estimate %d should cover prompt plus completion cap", got)
	}
	if got > 350 {
		t.Errorf("Estimate %d should not wildly exceed prompt plus completion cap", got)
	}
}

func TestEstimator_ContextIncreasesEstimate(t *testing.T) {
	e := NewEstimator(4.0)

	base := &assist.Request{Prompt: "dinner ideas", Category: assist.CategoryGeneral, CallerID: "u1", TenantID: "fam1"}
	withCtx := *base
	withCtx.Context = strings.Repeat("inventory ", 50)

	if e.EstimateRequest(&withCtx) <= e.EstimateRequest(base) {
		t.Error("Context must increase the estimate")
	}
}
