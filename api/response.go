package api

import (
	"encoding/json"
	"net/http"
)

// envelope matches the teacher pack's {success, data, error} response shape.
type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Reason  string   `json:"reason,omitempty"`
	Reasons []string `json:"reasons,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeOK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, reason string) {
	writeJSON(w, status, envelope{Success: false, Error: &errorBody{Reason: reason}})
}

func writeErrors(w http.ResponseWriter, status int, reasons []string) {
	writeJSON(w, status, envelope{Success: false, Error: &errorBody{Reasons: reasons}})
}
