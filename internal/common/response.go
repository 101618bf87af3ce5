package common

import (
	"encoding/json"
	"net/http"
)

type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"` // One entry per violated validation rule
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, ErrorResponse{Error: message})
}

// RespondWithValidationError reports every violated rule at once so the
// client can re-prompt for all of them in a single round trip.
func RespondWithValidationError(w http.ResponseWriter, message string, details []string) {
	RespondWithJSON(w, http.StatusBadRequest, ErrorResponse{Error: message, Details: details})
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
