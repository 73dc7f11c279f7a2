package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func okBody(msg string) statusResponse {
	return statusResponse{Status: "ok", Message: msg}
}

func errorBody(msg string) statusResponse {
	return statusResponse{Status: "error", Message: msg}
}
