package api

import (
	"encoding/json"
	"net/http"
)

// Error is the wire form of a failed request, nested under an "error"
// key so clients can distinguish failures from payloads structurally.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorEnvelope wraps Error for serialisation.
type errorEnvelope struct {
	Error Error `json:"error"`
}

// Common error codes.
const (
	ErrCodeBadRequest = "bad_request"
	ErrCodeNotFound   = "not_found"
	ErrCodeInternal   = "internal_error"
	ErrCodeUpstream   = "upstream_error"
)

// writeJSON serialises v with the given status. A nil payload sends the
// status and headers only.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError responds with a coded error body.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{
		Error: Error{
			Code:    code,
			Message: message,
		},
	})
}

// writeBadRequest responds 400 for malformed or invalid input.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound responds 404 for missing resources.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeBadGateway responds 502 when a dependency upstream of the bridge
// fails.
func writeBadGateway(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadGateway, ErrCodeUpstream, message)
}

// writeInternalError responds 500 for unexpected failures.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}
