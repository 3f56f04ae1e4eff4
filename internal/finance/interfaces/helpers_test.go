package interfaces

import (
	"encoding/json"
	"net/http"
)

// respondJSON and respondError mirror the envelope the server binary hands
// to the handlers.
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string, details ...[]string) {
	payload := map[string]interface{}{"status": "error", "message": message, "code": status}
	if len(details) > 0 && len(details[0]) > 0 {
		payload["errors"] = details[0]
	}
	respondJSON(w, status, payload)
}
