package models

import (
	"fmt"
	"time"
)

// SessionStatus is the lifecycle phase of a game session
type SessionStatus int

const (
	StatusIdle SessionStatus = iota
	StatusActive
	StatusPaused
	StatusEnded
)

var statusNames = map[SessionStatus]string{
	StatusIdle:   "idle",
	StatusActive: "active",
	StatusPaused: "paused",
	StatusEnded:  "ended",
}

func (s SessionStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// MarshalText encodes the status by name
func (s SessionStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// EndReason records why a session ended
type EndReason int

const (
	EndNone EndReason = iota
	EndTimeout
	EndLivesExhausted
	EndGoalReached
)

var endReasonNames = map[EndReason]string{
	EndNone:           "none",
	EndTimeout:        "timeout",
	EndLivesExhausted: "lives_exhausted",
	EndGoalReached:    "goal_reached",
}

func (r EndReason) String() string {
	if name, ok := endReasonNames[r]; ok {
		return name
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

// MarshalText encodes the reason by name
func (r EndReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a reason name
func (r *EndReason) UnmarshalText(text []byte) error {
	for reason, name := range endReasonNames {
		if name == string(text) {
			*r = reason
			return nil
		}
	}
	return fmt.Errorf("unknown end reason %q", string(text))
}

// SessionState represents the live state of one play-through
type SessionState struct {
	Status               SessionStatus `json:"status"`
	Level                int           `json:"level"`
	Score                int           `json:"score"`
	LivesRemaining       int           `json:"lives_remaining"`
	TimeRemainingSeconds int           `json:"time_remaining_seconds"`
	ProblemsCompleted    int           `json:"problems_completed"`
	CurrentProblem       *Problem      `json:"current_problem,omitempty"`
	EndReason            EndReason     `json:"end_reason"`

	// Selection holds choice indices picked toward the current attempt
	Selection []int `json:"selection"`

	// Collected holds choice indices consumed by earlier correct groups
	Collected []int `json:"collected"`
}

// Summary is handed to the UI layer when a session ends
type Summary struct {
	FinalScore        int       `json:"final_score"`
	StarsEarned       int       `json:"stars_earned"`
	ProblemsCompleted int       `json:"problems_completed"`
	EndReason         EndReason `json:"end_reason"`
}

// SessionResult is the reconciliation payload for one ended session
type SessionResult struct {
	SessionID     string
	StudentID     string
	GuardianEmail string
	GameID        string
	Summary       Summary
	EndedAt       time.Time
}
