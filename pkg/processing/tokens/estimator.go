package tokens

import (
	"hearth-hq/beacon/pkg/assist"
)

// DefaultCharsPerToken is the character-to-token ratio used when none is
// configured. Four characters per token is a good approximation for
// English prose across current models.
const DefaultCharsPerToken = 4.0

// messageOverhead approximates the formatting tokens added per
// conversation turn (role markers, separators).
const messageOverhead = 4

// Estimator estimates token usage for assist requests using a
// characters-per-token ratio.
type Estimator struct {
	charsPerToken float64
}

// NewEstimator creates an estimator with the given ratio. A non-positive
// ratio falls back to DefaultCharsPerToken.
func NewEstimator(charsPerToken float64) *Estimator {
	if charsPerToken <= 0 {
		charsPerToken = DefaultCharsPerToken
	}
	return &Estimator{charsPerToken: charsPerToken}
}

// EstimateText estimates tokens for a single text string. Non-empty text
// estimates to at least one token.
func (e *Estimator) EstimateText(text string) int {
	if text == "" {
		return 0
	}
	tokens := float64(len(text)) / e.charsPerToken
	if tokens < 1 {
		return 1
	}
	return int(tokens + 0.5)
}

// EstimateRequest estimates the total tokens an assist request may consume:
// prompt and context (plus per-turn overhead) on the input side, and the
// request's effective max-tokens on the completion side.
//
// The completion side deliberately over-estimates; the budget check is
// advisory-before, corrected-after, so a conservative estimate errs toward
// blocking rather than overspending.
func (e *Estimator) EstimateRequest(req *assist.Request) int {
	total := e.EstimateText(req.Prompt) + messageOverhead
	if req.Context != "" {
		total += e.EstimateText(req.Context) + messageOverhead
	}
	total += e.EstimateText(systemPromptBudgetHint) + messageOverhead
	total += req.EffectiveMaxTokens()
	return total
}

// systemPromptBudgetHint stands in for the category system prompt when
// estimating. System prompts are short and similar in length across
// categories, so a fixed stand-in keeps the estimator independent of
// prompt selection.
const systemPromptBudgetHint = "You are a helpful household assistant for a busy family. Answer concisely."
