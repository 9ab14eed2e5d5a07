// Package response writes the API's JSON bodies.
//
// Domain outcomes, good or bad, are HTTP 200: success bodies carry
// "success": true and failures carry a single "error" message. Real
// transport problems (panics, rate limiting, forbidden roles) use
// non-200 statuses through Error.
package response

import (
	"encoding/json"
	"net/http"
)

// Payload is a flat success body; OK adds "success": true.
type Payload map[string]any

type failure struct {
	Error string `json:"error"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// OK sends 200 {"success": true, ...payload}.
func OK(w http.ResponseWriter, payload Payload) {
	body := make(Payload, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["success"] = true
	JSON(w, http.StatusOK, body)
}

// Fail sends a domain failure: 200 {"error": message}.
func Fail(w http.ResponseWriter, message string) {
	JSON(w, http.StatusOK, failure{Error: message})
}

// Error sends {"error": message} with a transport-level status.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, failure{Error: message})
}

func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(w http.ResponseWriter) {
	Error(w, http.StatusForbidden, "Forbidden")
}

func TooManyRequests(w http.ResponseWriter) {
	Error(w, http.StatusTooManyRequests, "Too Many Requests")
}
