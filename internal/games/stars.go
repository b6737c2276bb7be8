package games

import (
	"errors"

	"mathclash/internal/models"
)

// MaxStars is the top rating a session can earn
const MaxStars = 3

// Thresholds holds the minimum scores for one, two and three stars
type Thresholds [3]int

// Validate checks the thresholds are non-negative and ascending
func (t Thresholds) Validate() error {
	if t[0] < 0 {
		return errors.New("star thresholds must not be negative")
	}
	if t[0] > t[1] || t[1] > t[2] {
		return errors.New("star thresholds must be ascending")
	}
	return nil
}

// Stars maps a score onto 0..3 stars; thresholds are inclusive
func (t Thresholds) Stars(score int) int {
	for stars := MaxStars; stars > 0; stars-- {
		if score >= t[stars-1] {
			return stars
		}
	}
	return 0
}

// StarsFor rates a final score with the game's threshold table
func StarsFor(c Config, score int) int {
	return c.Thresholds.Stars(score)
}

// StarsForEnd rates a final score taking the end reason into account.
// Games that reward finishing differently from running out of time carry a
// separate table for goal_reached.
func StarsForEnd(c Config, reason models.EndReason, score int) int {
	if reason == models.EndGoalReached && c.GoalThresholds != nil {
		return c.GoalThresholds.Stars(score)
	}
	return StarsFor(c, score)
}
