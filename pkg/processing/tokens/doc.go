// Package tokens provides token estimation for not-yet-executed assist
// requests.
//
// The estimator is a character-ratio heuristic (roughly 4 characters per
// token for English text), not an exact tokenizer. Exactness is not
// required: the estimate only feeds the advisory budget check before a
// model call, and the ledger is corrected with the provider's actual token
// count afterward. The completion side of the estimate uses the request's
// effective max-tokens, which makes the pre-call check conservative.
package tokens
