package httpapi

import (
	"encoding/json"
	"net/http"

	"schedulerd/internal/scheduler"
)

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": msg, "code": status})
}

// statusForSchedulerError maps scheduler error taxonomy to HTTP status
// codes (spec §6.2: producer-facing error surface).
func statusForSchedulerError(err error) int {
	switch {
	case scheduler.IsInvalidArgument(err):
		return http.StatusBadRequest
	case scheduler.IsNotFound(err):
		return http.StatusNotFound
	case scheduler.IsTooLate(err), scheduler.IsAlreadyFinished(err):
		return http.StatusConflict
	case scheduler.IsShutdownInProgress(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
