package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"hearth-hq/beacon/pkg/assist"
	"hearth-hq/beacon/pkg/gate/budget/store"
)

// assistRequestBody is the JSON shape of POST /v1/assist.
type assistRequestBody struct {
	Prompt      string  `json:"prompt"`
	Context     string  `json:"context,omitempty"`
	Category    string  `json:"category"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	CallerID    string  `json:"caller_id"`
	TenantID    string  `json:"tenant_id"`
}

// assistResponseBody is the JSON shape of a successful assist response.
type assistResponseBody struct {
	Content         string    `json:"content"`
	TokenCount      int       `json:"token_count"`
	Cost            float64   `json:"cost_usd"`
	RequestID       string    `json:"request_id"`
	ServedFromCache bool      `json:"served_from_cache"`
	Timestamp       time.Time `json:"timestamp"`
}

// handleAssist runs one assistant request through the gate pipeline.
func (s *Server) handleAssist(w http.ResponseWriter, r *http.Request) {
	var body assistRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{
			Code:    "invalid_request",
			Message: "request body is not valid JSON",
			Kind:    "validation_error",
		}})
		return
	}

	req := &assist.Request{
		Prompt:      body.Prompt,
		Context:     body.Context,
		Category:    assist.Category(body.Category),
		MaxTokens:   body.MaxTokens,
		Temperature: body.Temperature,
		CallerID:    body.CallerID,
		TenantID:    body.TenantID,
	}

	result, err := s.pipeline.Handle(r.Context(), req)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, assistResponseBody{
		Content:         result.Content,
		TokenCount:      result.TokenCount,
		Cost:            result.Cost,
		RequestID:       result.RequestID,
		ServedFromCache: result.ServedFromCache,
		Timestamp:       result.Timestamp,
	})
}

// handleCacheStats returns response cache counters.
func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.pipeline.CacheStats())
}

// handleLimitStatus returns a caller's current rate-limit windows.
func (s *Server) handleLimitStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.pipeline.LimitStatus(r.PathValue("caller")))
}

// handleBudgetUsage returns a caller's current spend ledger.
func (s *Server) handleBudgetUsage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.pipeline.BudgetUsage(r.PathValue("caller")))
}

// handleBudgetHistory returns a caller's most recent usage records.
func (s *Server) handleBudgetHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{
				Code:    "invalid_request",
				Message: "limit must be a non-negative integer",
				Kind:    "validation_error",
			}})
			return
		}
		limit = parsed
	}

	records, err := s.pipeline.BudgetHistory(r.Context(), r.PathValue("caller"), limit)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if records == nil {
		records = []*store.UsageRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

// handleCacheClear drops every cached response.
func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	s.pipeline.ClearCache()
	s.logger.Info("cache cleared by admin", "remote", r.RemoteAddr)
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// handleLimitsReset clears a caller's rate-limit windows.
func (s *Server) handleLimitsReset(w http.ResponseWriter, r *http.Request) {
	caller := r.PathValue("caller")
	s.pipeline.ResetLimits(caller)
	s.logger.Info("rate limits reset by admin", "caller", caller, "remote", r.RemoteAddr)
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset", "caller": caller})
}

// handleHealthz reports process liveness.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"assist_enabled": s.pipeline.Enabled(),
		"uptime_seconds": int(time.Since(s.started).Seconds()),
	})
}
