// Package httpserver provides the chi-based HTTP plumbing shared by every
// VPN Sentinel listener: request IDs, structured request logging, metrics,
// and JSON response helpers. Panic recovery comes from chi's
// middleware.Recoverer, not from this package.
package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Respond writes a JSON response with the given status code.
func Respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

// ErrorResponse is the standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RespondError writes a JSON error envelope.
func RespondError(w http.ResponseWriter, status int, msg string) {
	Respond(w, status, ErrorResponse{Error: msg})
}
