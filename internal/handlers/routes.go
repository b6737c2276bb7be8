package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter registers the API routes and wraps them with request id,
// recovery and logging middleware
func NewRouter(mw *Middleware, sessions *SessionHandler, progress *ProgressHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("GET /api/games", sessions.ListGames)
	mux.HandleFunc("POST /api/games/{gameId}/sessions", mw.RequireLearner(mw.RateLimit(sessions.StartSession)))

	mux.HandleFunc("GET /api/sessions/{id}", mw.RequireLearner(sessions.GetSession))
	mux.HandleFunc("DELETE /api/sessions/{id}", mw.RequireLearner(sessions.DeleteSession))
	mux.HandleFunc("POST /api/sessions/{id}/answers", mw.RequireLearner(mw.RateLimit(sessions.SubmitAnswer)))
	mux.HandleFunc("POST /api/sessions/{id}/pause", mw.RequireLearner(sessions.PauseSession))
	mux.HandleFunc("POST /api/sessions/{id}/resume", mw.RequireLearner(sessions.ResumeSession))
	mux.HandleFunc("POST /api/sessions/{id}/restart", mw.RequireLearner(mw.RateLimit(sessions.RestartSession)))

	mux.HandleFunc("GET /api/progress", mw.RequireLearner(progress.ListProgress))
	mux.HandleFunc("GET /api/progress/{gameId}", mw.RequireLearner(progress.GetProgress))
	mux.HandleFunc("POST /api/progress/retry", mw.RequireLearner(progress.RetryPending))

	var handler http.Handler = mux
	handler = Logging(handler)
	handler = middleware.Recoverer(handler)
	handler = middleware.RealIP(handler)
	handler = middleware.RequestID(handler)
	return handler
}
