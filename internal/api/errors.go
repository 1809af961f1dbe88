package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/flockrhq/flockr/internal/apperr"
)

// maxBodySize is the maximum allowed request body size (1 MB).
const maxBodySize = 1 << 20

// errorEnvelope is the error response shape the frontend expects.
type errorEnvelope struct {
	Code    int    `json:"code"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// writeJSON writes a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response with the given status code.
func writeError(w http.ResponseWriter, statusCode int, name, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorEnvelope{
		Code:    statusCode,
		Name:    name,
		Message: message,
	})
}

// writeOpError maps a service error onto the wire. Both InputError and
// AccessError become 400s; the core has no notion of HTTP status codes and
// the frontend only distinguishes the name and message. Anything else is an
// internal error.
func writeOpError(w http.ResponseWriter, err error) {
	var opErr *apperr.Error
	if errors.As(err, &opErr) {
		writeError(w, http.StatusBadRequest, string(opErr.Kind), opErr.Message)
		return
	}
	slog.Error("internal error", "error", err)
	writeError(w, http.StatusInternalServerError, "SystemError", "internal error")
}

// readJSON decodes the request body into v, enforcing a size limit.
func readJSON(r *http.Request, v interface{}) error {
	lr := io.LimitReader(r.Body, maxBodySize)
	return json.NewDecoder(lr).Decode(v)
}
