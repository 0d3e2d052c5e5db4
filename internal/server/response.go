package server

import (
	"encoding/json"
	"net/http"
	"time"
)

type response struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// respondOK writes a success response with the standard envelope.
func respondOK(w http.ResponseWriter, data any) {
	respondJSON(w, http.StatusOK, response{Status: "ok", Data: data})
}

// respondError writes an error response with the standard envelope.
func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, response{Status: "error", Error: msg})
}

func respondJSON(w http.ResponseWriter, status int, resp response) {
	resp.Timestamp = time.Now().UTC()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
