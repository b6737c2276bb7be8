package handlers

const (
	ErrInvalidRequestBody  = "Invalid request body"
	ErrUnauthorized        = "Unauthorized"
	ErrTooManyRequests     = "Too many requests"
	ErrSessionNotFound     = "Session not found"
	ErrGameNotFound        = "Game not found"
	ErrChoiceUnavailable   = "Choice is not available"
	ErrProblemUnavailable  = "Could not create a problem"
	ErrProgressUnavailable = "Progress is unavailable, try again later"
	ErrInternalServerError = "Internal server error"
)
