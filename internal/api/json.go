package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/starford/raido/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
	Kind  string `json:"kind,omitempty"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// writeErr maps a classified error onto an HTTP status and JSON body.
func writeErr(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	status := http.StatusInternalServerError
	msg := "internal error"

	switch kind {
	case apperr.KindHeadlineNotFound, apperr.KindFileNotFound:
		status, msg = http.StatusNotFound, err.Error()
	case apperr.KindParse, apperr.KindInvalidArgs:
		status, msg = http.StatusBadRequest, err.Error()
	default:
		slog.Error("request failed", slog.String("error", err.Error()))
	}
	writeJSON(w, status, errResponse{Error: msg, Kind: kind.String()})
}
