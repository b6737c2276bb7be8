package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mathclash/internal/games"
	"mathclash/internal/problemgen"
	"mathclash/internal/service"
	"mathclash/internal/session"
)

func TestRespondWithErrorWritesStatusAndBody(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondWithError(recorder, http.StatusConflict, "Already playing", "", nil)

	if recorder.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", recorder.Code)
	}

	body := strings.TrimSpace(recorder.Body.String())
	if body != "Already playing" {
		t.Fatalf("expected body 'Already playing', got %q", body)
	}
}

func TestRespondWithErrorLogsMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := log.Default()
	originalOutput := logger.Writer()
	logger.SetOutput(&buf)
	defer logger.SetOutput(originalOutput)

	recorder := httptest.NewRecorder()

	respondWithError(recorder, http.StatusInternalServerError, ErrInternalServerError, "Failed to start session", errors.New("boom"))

	logOutput := buf.String()
	if !strings.Contains(logOutput, "Failed to start session") {
		t.Fatalf("expected log to include log message, got %q", logOutput)
	}
	if !strings.Contains(logOutput, "boom") {
		t.Fatalf("expected log to include error, got %q", logOutput)
	}
}

func TestRespondWithDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "session not found",
			err:        session.ErrSessionNotFound,
			wantStatus: http.StatusNotFound,
			wantBody:   ErrSessionNotFound,
		},
		{
			name:       "session closed",
			err:        fmt.Errorf("submit: %w", session.ErrSessionClosed),
			wantStatus: http.StatusNotFound,
			wantBody:   ErrSessionNotFound,
		},
		{
			name:       "game not found",
			err:        fmt.Errorf("%w: chess", session.ErrGameNotFound),
			wantStatus: http.StatusNotFound,
			wantBody:   ErrGameNotFound,
		},
		{
			name:       "choice unavailable",
			err:        fmt.Errorf("index 9: %w", session.ErrChoiceUnavailable),
			wantStatus: http.StatusBadRequest,
			wantBody:   ErrChoiceUnavailable,
		},
		{
			name:       "generation failed",
			err:        fmt.Errorf("game caza-numeros: %w", &problemgen.GenerationError{Rule: games.RuleSumTarget, Attempts: 100, Reason: "no group"}),
			wantStatus: http.StatusInternalServerError,
			wantBody:   ErrProblemUnavailable,
		},
		{
			name:       "persistence failed",
			err:        &service.PersistenceError{Op: "list", StudentID: "student-1", Err: errors.New("connection refused")},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   ErrProgressUnavailable,
		},
		{
			name:       "anything else",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   ErrInternalServerError,
		},
	}

	originalOutput := log.Default().Writer()
	log.SetOutput(&bytes.Buffer{})
	defer log.SetOutput(originalOutput)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()

			respondWithDomainError(recorder, "Request failed", tt.err)

			if recorder.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", recorder.Code, tt.wantStatus)
			}
			if body := strings.TrimSpace(recorder.Body.String()); body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}
