package handlers

import (
	"net/http"

	"mathclash/internal/models"
	"mathclash/internal/service"
)

// ProgressHandler serves a learner's stored progress
type ProgressHandler struct {
	progress *service.ProgressService
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(progress *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

// ListProgress returns every record of the learner
func (h *ProgressHandler) ListProgress(w http.ResponseWriter, r *http.Request) {
	learner, _ := GetLearnerFromContext(r.Context())
	records, err := h.progress.List(r.Context(), learner.StudentID)
	if err != nil {
		respondWithDomainError(w, "Failed to list progress", err)
		return
	}
	if records == nil {
		records = []models.ProgressRecord{}
	}
	respondWithJSON(w, http.StatusOK, records)
}

// GetProgress returns the learner's record for one game. A game never
// played reads as an empty record.
func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	learner, _ := GetLearnerFromContext(r.Context())
	gameID := r.PathValue("gameId")

	record, err := h.progress.Get(r.Context(), learner.StudentID, gameID)
	if err != nil {
		respondWithDomainError(w, "Failed to get progress", err)
		return
	}
	if record == nil {
		record = &models.ProgressRecord{StudentID: learner.StudentID, GameID: gameID}
	}
	respondWithJSON(w, http.StatusOK, record)
}

// RetryPending flushes the learner's results that could not be saved
// earlier. Other learners' results are left to the background retry.
func (h *ProgressHandler) RetryPending(w http.ResponseWriter, r *http.Request) {
	learner, _ := GetLearnerFromContext(r.Context())
	saved, err := h.progress.RetryPendingFor(r.Context(), learner.StudentID)
	if err != nil {
		respondWithDomainError(w, "Failed to retry pending progress", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]int{"saved": saved, "pending": h.progress.PendingFor(learner.StudentID)})
}
