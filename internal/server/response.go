package server

import (
	"encoding/json"
	"net/http"
	"time"
)

type quoteResponse struct {
	Ticker     string    `json:"ticker"`
	Price      string    `json:"price"`
	ObservedAt time.Time `json:"observedAt"`
	Source     string    `json:"source"`
	Vendor     string    `json:"vendor,omitempty"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func writeJSON[T any](w http.ResponseWriter, status int, data T) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}
