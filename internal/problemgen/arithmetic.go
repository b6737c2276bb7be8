package problemgen

import (
	"fmt"
	"math/rand/v2"

	"mathclash/internal/games"
	"mathclash/internal/models"
)

// Subtraction asks for a - b with nearby non-negative distractors
type Subtraction struct{}

func (Subtraction) Generate(rng *rand.Rand, p Params) (*models.Problem, error) {
	spread := 5 + 5*p.Relax
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		a := between(rng, 5, 24)
		b := between(rng, 1, min(a, 15))
		answer := a - b

		distractors, ok := nearDistractors(rng, answer, spread, 0, p.ChoiceCount-1)
		if !ok {
			continue
		}
		return singleAnswer(rng, fmt.Sprintf("%d - %d", a, b), answer, distractors), nil
	}
	return nil, &GenerationError{
		Rule:     games.RuleSubtraction,
		Attempts: maxAttempts,
		Reason:   fmt.Sprintf("not enough distractors within %d for %d choices", spread, p.ChoiceCount),
	}
}

// Addition asks for a + b with nearby positive distractors
type Addition struct{}

func (Addition) Generate(rng *rand.Rand, p Params) (*models.Problem, error) {
	spread := 4 + 4*p.Relax
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		a := between(rng, 1, 15)
		b := between(rng, 1, 15)
		answer := a + b

		distractors, ok := nearDistractors(rng, answer, spread, 1, p.ChoiceCount-1)
		if !ok {
			continue
		}
		return singleAnswer(rng, fmt.Sprintf("%d + %d", a, b), answer, distractors), nil
	}
	return nil, &GenerationError{
		Rule:     games.RuleAddition,
		Attempts: maxAttempts,
		Reason:   fmt.Sprintf("not enough distractors within %d for %d choices", spread, p.ChoiceCount),
	}
}
