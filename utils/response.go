package utils

import (
	"encoding/json"
	"net/http"

	"github.com/andrewpaige1/learntree-api/apperrors"
)

// WriteJSON writes data as a JSON response.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// ErrorResponse writes {"error": message} with the given status.
func ErrorResponse(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{"error": message})
}

// WriteAppError writes e with the status of its code. Field details are
// included when present.
func WriteAppError(w http.ResponseWriter, e *apperrors.Error) error {
	body := map[string]any{"error": e.Message, "code": e.Code}
	if len(e.Details) > 0 {
		body["details"] = e.Details
	}
	return WriteJSON(w, e.Code.HTTPStatus(), body)
}
