package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"mathclash/internal/games"
	"mathclash/internal/models"
	"mathclash/internal/problemgen"
	"mathclash/internal/session"
)

// SessionHandler serves the game catalog and live sessions
type SessionHandler struct {
	catalog *games.Catalog
	manager *session.Manager
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(catalog *games.Catalog, manager *session.Manager) *SessionHandler {
	return &SessionHandler{catalog: catalog, manager: manager}
}

type levelRequest struct {
	Level int `json:"level"`
}

type sessionResponse struct {
	SessionID string              `json:"session_id"`
	GameID    string              `json:"game_id"`
	State     models.SessionState `json:"state"`
	Step      *session.Step       `json:"step,omitempty"`
	Ignored   bool                `json:"ignored,omitempty"`
}

// ListGames returns every playable game
func (h *SessionHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.catalog.All())
}

// StartSession opens a session for the learner, replacing any running one
// for the same game
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	learner, _ := GetLearnerFromContext(r.Context())

	var req levelRequest
	if err := decodeOptional(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	c, state, err := h.manager.Start(r.Context(), session.Learner{
		StudentID:     learner.StudentID,
		GuardianEmail: learner.GuardianEmail,
	}, r.PathValue("gameId"), req.Level)
	if err != nil {
		respondWithDomainError(w, "Failed to start session", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, sessionResponse{
		SessionID: c.ID(),
		GameID:    c.GameID(),
		State:     state,
	})
}

// GetSession returns the session's state
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	state, err := c.State(r.Context())
	if err != nil {
		respondWithDomainError(w, "Failed to read session", err)
		return
	}
	respondWithJSON(w, http.StatusOK, sessionResponse{SessionID: c.ID(), GameID: c.GameID(), State: state})
}

// DeleteSession tears the session down without saving it
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	learner, _ := GetLearnerFromContext(r.Context())
	if err := h.manager.Remove(learner.StudentID, r.PathValue("id")); err != nil {
		respondWithDomainError(w, "Failed to remove session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubmitAnswer judges an answer to the current problem
func (h *SessionHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}

	var ans problemgen.Answer
	if err := json.NewDecoder(r.Body).Decode(&ans); err != nil || (ans.Indices == nil && ans.Value == nil) {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	step, state, err := c.Submit(r.Context(), ans)
	h.respondStep(w, c, step, state, err)
}

// PauseSession freezes the clock
func (h *SessionHandler) PauseSession(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	step, state, err := c.Pause(r.Context())
	h.respondStep(w, c, step, state, err)
}

// ResumeSession restarts the clock
func (h *SessionHandler) ResumeSession(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	step, state, err := c.Resume(r.Context())
	h.respondStep(w, c, step, state, err)
}

// RestartSession plays an ended session again, at the requested level or
// the one it ended on
func (h *SessionHandler) RestartSession(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}

	var req levelRequest
	if err := decodeOptional(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}
	if req.Level < 1 {
		state, err := c.State(r.Context())
		if err != nil {
			respondWithDomainError(w, "Failed to read session", err)
			return
		}
		req.Level = state.Level
	}

	step, state, err := c.Start(r.Context(), req.Level)
	h.respondStep(w, c, step, state, err)
}

func (h *SessionHandler) controller(w http.ResponseWriter, r *http.Request) (*session.Controller, bool) {
	learner, _ := GetLearnerFromContext(r.Context())
	c, err := h.manager.Get(learner.StudentID, r.PathValue("id"))
	if err != nil {
		respondWithDomainError(w, "", err)
		return nil, false
	}
	return c, true
}

// respondStep reports a command result. Invalid transitions are not
// failures: the unchanged state is returned flagged as ignored.
func (h *SessionHandler) respondStep(w http.ResponseWriter, c *session.Controller, step session.Step, state models.SessionState, err error) {
	resp := sessionResponse{SessionID: c.ID(), GameID: c.GameID(), State: state}
	switch {
	case err == nil:
		resp.Step = &step
	case errors.Is(err, session.ErrInvalidTransition):
		resp.Ignored = true
	default:
		respondWithDomainError(w, "Session command failed", err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// decodeOptional decodes a JSON body, accepting an empty one
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
