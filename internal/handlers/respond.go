package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pliu/chatty-social/internal/logger"
	"github.com/pliu/chatty-social/internal/store"
	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Debug("error encoding response", zap.Error(err))
	}
}

// writeStoreError maps store errors onto HTTP statuses. detail replaces the
// error text for the not-found case so callers control what is exposed.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error, detail string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		if detail == "" {
			detail = err.Error()
		}
		http.Error(w, detail, http.StatusNotFound)
	case errors.Is(err, store.ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, store.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, store.ErrNotParticipant):
		http.Error(w, "Sender not in conversation", http.StatusBadRequest)
	case errors.Is(err, store.ErrInvalid):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		logger.Log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}
