package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"mathclash/internal/problemgen"
	"mathclash/internal/service"
	"mathclash/internal/session"
)

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	http.Error(w, userMsg, status)
}

func respondWithJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// respondWithDomainError maps session and progress errors onto HTTP statuses
func respondWithDomainError(w http.ResponseWriter, logMsg string, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, session.ErrSessionClosed):
		respondWithError(w, http.StatusNotFound, ErrSessionNotFound, "", nil)
	case errors.Is(err, session.ErrGameNotFound):
		respondWithError(w, http.StatusNotFound, ErrGameNotFound, "", nil)
	case errors.Is(err, session.ErrChoiceUnavailable):
		respondWithError(w, http.StatusBadRequest, ErrChoiceUnavailable, "", nil)
	case errors.Is(err, problemgen.ErrGeneration):
		respondWithError(w, http.StatusInternalServerError, ErrProblemUnavailable, logMsg, err)
	case errors.Is(err, service.ErrPersistence):
		respondWithError(w, http.StatusServiceUnavailable, ErrProgressUnavailable, logMsg, err)
	default:
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, logMsg, err)
	}
}
