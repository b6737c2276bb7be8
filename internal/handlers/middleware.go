package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"mathclash/internal/security"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const LearnerContextKey ContextKey = "learner"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	tokens  *security.LearnerTokens
	limiter *security.RateLimiter
}

// NewMiddleware creates a new middleware instance. limiter may be nil.
func NewMiddleware(tokens *security.LearnerTokens, limiter *security.RateLimiter) *Middleware {
	return &Middleware{
		tokens:  tokens,
		limiter: limiter,
	}
}

// RequireLearner is middleware that requires a valid learner bearer token
func (m *Middleware) RequireLearner(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		learner, err := m.tokens.Parse(security.BearerToken(r.Header.Get("Authorization")))
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="mathclash"`)
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "Rejected learner token", err)
			return
		}

		ctx := context.WithValue(r.Context(), LearnerContextKey, learner)
		next(w, r.WithContext(ctx))
	}
}

// RateLimit limits requests per learner, or per client address before
// authentication
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.limiter == nil {
			next(w, r)
			return
		}

		key := r.RemoteAddr
		if learner, ok := GetLearnerFromContext(r.Context()); ok {
			key = learner.StudentID
		}
		if !m.limiter.Allow(key) {
			respondWithError(w, http.StatusTooManyRequests, ErrTooManyRequests, "", nil)
			return
		}
		next(w, r)
	}
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			log.Printf("[%s] %s %s %s", reqID, r.Method, r.URL.Path, time.Since(start))
			return
		}
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// GetLearnerFromContext retrieves the learner from the request context
func GetLearnerFromContext(ctx context.Context) (security.Learner, bool) {
	learner, ok := ctx.Value(LearnerContextKey).(security.Learner)
	return learner, ok
}
