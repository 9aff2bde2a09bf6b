package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"hearth-hq/beacon/pkg/gate"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Kind      string `json:"kind"`
	Retryable bool   `json:"retryable"`
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a pipeline error onto an HTTP response. ServiceError
// kinds have fixed status codes; anything else is an internal error.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var svcErr *gate.ServiceError
	if !errors.As(err, &svcErr) {
		logger.Error("unclassified handler error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: errorDetail{
			Code:    "internal_error",
			Message: "an internal error occurred",
		}})
		return
	}

	status := statusForKind(svcErr.Kind)
	if svcErr.RetryAfter > 0 {
		seconds := int(svcErr.RetryAfter / time.Second)
		if seconds < 1 {
			seconds = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	writeJSON(w, status, errorBody{Error: errorDetail{
		Code:      svcErr.Code,
		Message:   svcErr.Message,
		Kind:      string(svcErr.Kind),
		Retryable: svcErr.Retryable,
	}})
}

// statusForKind maps failure kinds onto HTTP status codes.
func statusForKind(kind gate.Kind) int {
	switch kind {
	case gate.KindRateLimit:
		return http.StatusTooManyRequests
	case gate.KindBudgetExceeded:
		return http.StatusPaymentRequired
	case gate.KindValidationError:
		return http.StatusBadRequest
	case gate.KindAPIError:
		return http.StatusBadGateway
	case gate.KindNetworkError:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
