package games

import (
	"fmt"

	"mathclash/internal/models"
	"mathclash/internal/validation"
)

// Rule names the problem family and answer rule a game plays with
type Rule string

const (
	RuleSumTarget   Rule = "sum_target"
	RuleSubtraction Rule = "subtraction"
	RuleAddition    Rule = "addition"
	RuleFraction    Rule = "fraction"
	RulePattern     Rule = "pattern"
	RuleClock       Rule = "clock"
	RuleShapes      Rule = "shapes"
)

// Config is the per-game configuration injected into a session
type Config struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Rule  Rule   `json:"rule"`
	Level int    `json:"level,omitempty"`

	// DurationSeconds of zero means the game is untimed
	DurationSeconds int `json:"duration_seconds"`

	// Lives of zero means the game has no lives model
	Lives int `json:"lives"`

	PointsPerCorrect   int `json:"points_per_correct"`
	PointsPerLevel     int `json:"points_per_level"`
	TimeBonusPerSecond int `json:"time_bonus_per_second"`

	Thresholds     Thresholds  `json:"star_thresholds"`
	GoalThresholds *Thresholds `json:"goal_star_thresholds,omitempty"`

	// ChoiceCount is the number of candidates per problem. Games whose
	// choice count grows with the level cap it at MaxChoiceCount.
	ChoiceCount    int `json:"choice_count"`
	MaxChoiceCount int `json:"max_choice_count,omitempty"`

	// GoalCount is the number of cleared rounds that ends the session with
	// goal_reached. Zero means the session only ends on time or lives.
	GoalCount int `json:"goal_count"`

	// NewProblemOnMiss replaces the problem after an incorrect answer
	// instead of letting the learner try the same one again
	NewProblemOnMiss bool `json:"new_problem_on_miss"`
}

// Validate checks the configuration is playable
func (c Config) Validate() error {
	if err := validation.ValidateID(c.ID); err != nil {
		return fmt.Errorf("game %q: %w", c.ID, err)
	}
	if err := validation.ValidateName(c.Name); err != nil {
		return fmt.Errorf("game %s: %w", c.ID, err)
	}
	switch c.Rule {
	case RuleSumTarget, RuleSubtraction, RuleAddition, RuleFraction, RulePattern, RuleClock, RuleShapes:
	default:
		return fmt.Errorf("game %s: unknown rule %q", c.ID, c.Rule)
	}
	if c.DurationSeconds < 0 {
		return fmt.Errorf("game %s: duration must not be negative", c.ID)
	}
	if c.Lives < 0 {
		return fmt.Errorf("game %s: lives must not be negative", c.ID)
	}
	if c.DurationSeconds == 0 && c.Lives == 0 && c.GoalCount == 0 {
		return fmt.Errorf("game %s: session can never end", c.ID)
	}
	if err := c.Thresholds.Validate(); err != nil {
		return fmt.Errorf("game %s: %w", c.ID, err)
	}
	if c.GoalThresholds != nil {
		if err := c.GoalThresholds.Validate(); err != nil {
			return fmt.Errorf("game %s goal thresholds: %w", c.ID, err)
		}
	}
	if c.ChoiceCount < 2 && c.Rule != RuleFraction {
		return fmt.Errorf("game %s: choice count must be at least 2", c.ID)
	}
	return nil
}

// StartLevel returns the level a new session begins at
func (c Config) StartLevel() int {
	if c.Level < 1 {
		return 1
	}
	return c.Level
}

// ChoicesFor returns the number of candidates for the given level
func (c Config) ChoicesFor(level int) int {
	if c.MaxChoiceCount == 0 {
		return c.ChoiceCount
	}
	n := c.ChoiceCount + level - 1
	if n > c.MaxChoiceCount {
		n = c.MaxChoiceCount
	}
	return n
}

// PointsFor calculates points for a correct answer
// Formula: PointsPerCorrect + PointsPerLevel*level + problem bonus
func PointsFor(c Config, level int, p *models.Problem) int {
	points := c.PointsPerCorrect + c.PointsPerLevel*level
	if p != nil {
		points += p.Bonus
	}
	return points
}
