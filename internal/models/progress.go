package models

import "time"

// ProgressRecord is a learner's best-of record for one game
type ProgressRecord struct {
	StudentID     string     `json:"student_id"`
	GameID        string     `json:"game_id"`
	BestScore     int        `json:"best_score"`
	StarsEarned   int        `json:"stars_earned"`
	TotalAttempts int        `json:"total_attempts"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// IsCompleted reports whether the learner has earned at least one star
func (p *ProgressRecord) IsCompleted() bool {
	return p.StarsEarned > 0
}
