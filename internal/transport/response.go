// Package transport writes the uniform JSON envelope every endpoint returns.
package transport

import (
	"encoding/json"
	"net/http"
)

type Envelope struct {
	Success    bool              `json:"success"`
	Count      *int              `json:"count,omitempty"`
	Pagination interface{}       `json:"pagination,omitempty"`
	Data       interface{}       `json:"data,omitempty"`
	Token      string            `json:"token,omitempty"`
	Error      string            `json:"error,omitempty"`
	Details    map[string]string `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteData(w http.ResponseWriter, status int, data interface{}) {
	WriteJSON(w, status, Envelope{Success: true, Data: data})
}

func WriteList(w http.ResponseWriter, count int, pagination, data interface{}) {
	WriteJSON(w, http.StatusOK, Envelope{
		Success:    true,
		Count:      &count,
		Pagination: pagination,
		Data:       data,
	})
}

func WriteToken(w http.ResponseWriter, status int, token string) {
	WriteJSON(w, status, Envelope{Success: true, Token: token})
}

func WriteError(w http.ResponseWriter, status int, message string, details map[string]string) {
	WriteJSON(w, status, Envelope{Success: false, Error: message, Details: details})
}
