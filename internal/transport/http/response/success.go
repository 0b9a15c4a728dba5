package response

import (
	"encoding/json"
	"net/http"
)

// Ack is the acknowledgement envelope for non-token endpoints.
type Ack struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// WriteJSON writes v as JSON with the given status code.
// It sets Content-Type to application/json; charset=utf-8 if not already set.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes a 200 acknowledgement.
func OK(w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusOK, Ack{Success: true, Message: message, Data: data})
}

// Created writes a 201 acknowledgement.
func Created(w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusCreated, Ack{Success: true, Message: message, Data: data})
}
