package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"qualiobra/internal/diagnostic"
	"qualiobra/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeServiceError maps service and domain errors to HTTP status codes
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *diagnostic.ValidationError
	var perr *diagnostic.PersistenceError

	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.As(err, &perr):
		writeError(w, http.StatusBadGateway, "answers could not be saved, the session is still open: "+perr.Error())
	case errors.Is(err, service.ErrInvalidLevel):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, diagnostic.ErrNoIdentity):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrItemNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, diagnostic.ErrSessionClosed):
		writeError(w, http.StatusConflict, err.Error())
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
