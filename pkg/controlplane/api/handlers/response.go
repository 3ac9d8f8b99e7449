// Package handlers provides HTTP handlers for the davmount API.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// Response is the standard API response wrapper.
//
// All API responses follow this structure for consistency:
//   - Status indicates the overall result ("ok" or "error")
//   - Timestamp provides response time for debugging and caching
//   - Data contains the response payload (optional)
//   - Error contains error details when Status indicates failure (optional)
type Response struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// OKResponse writes a 200 OK response wrapping data in the standard envelope.
func OKResponse(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Response{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
}

// CreatedResponse writes a 201 Created response wrapping data in the
// standard envelope.
func CreatedResponse(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, Response{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
}

// ErrorResponse writes an error response with the given status code.
func ErrorResponse(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Response{
		Status:    "error",
		Timestamp: time.Now().UTC(),
		Error:     message,
	})
}

// ErrorResponseWithData writes an error response carrying a payload.
func ErrorResponseWithData(w http.ResponseWriter, status int, message string, data any) {
	JSON(w, status, Response{
		Status:    "error",
		Timestamp: time.Now().UTC(),
		Data:      data,
		Error:     message,
	})
}

// NoContent writes a 204 No Content response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// decodeJSONBody decodes a JSON request body into the provided pointer.
// Returns true if successful, false if decoding fails (error response is
// written automatically).
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
