package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/quickseq/internal/apperr"
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
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// writeError maps domain errors to HTTP statuses.
func writeError(w http.ResponseWriter, op string, err error) {
	var (
		te *apperr.TransportError
		re *apperr.RemoteMethodError
		fe *apperr.FileSystemError
	)
	switch {
	case errors.Is(err, apperr.ErrUnknownFeature), errors.Is(err, apperr.ErrUnknownSetting):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrInvalidArgument), errors.Is(err, apperr.ErrInvalidDataURL):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrNoGraph):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	case errors.As(err, &te), errors.As(err, &re):
		slog.Warn(op+" failed upstream", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody(err.Error()))
	case errors.As(err, &fe):
		slog.Error(op+" failed on disk", slog.String("path", fe.Path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("file system error"))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
