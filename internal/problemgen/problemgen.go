// Package problemgen builds problems for each game rule and judges answers
// against them.
package problemgen

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"mathclash/internal/games"
	"mathclash/internal/models"
)

// MaxRelax is the widest bound relaxation callers should try
const MaxRelax = 3

// maxAttempts bounds the internal retries of a single Generate call
const maxAttempts = 100

var (
	ErrGeneration        = errors.New("problem generation failed")
	ErrEmptyAnswer       = errors.New("answer is empty")
	ErrChoiceUnavailable = errors.New("choice unavailable")
)

// GenerationError reports a generator that could not satisfy its constraints
type GenerationError struct {
	Rule     games.Rule
	Attempts int
	Reason   string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate %s problem after %d attempts: %s", e.Rule, e.Attempts, e.Reason)
}

func (e *GenerationError) Is(target error) bool {
	return target == ErrGeneration
}

// Params drives a single generation
type Params struct {
	Level int
	// Relax widens numeric bounds; zero is the game's normal difficulty
	Relax int
	// Sequence is the number of rounds already cleared in the session
	Sequence    int
	ChoiceCount int
}

// Generator produces problems for one rule. Output depends only on rng and p.
type Generator interface {
	Generate(rng *rand.Rand, p Params) (*models.Problem, error)
}

// For returns the generator for a rule
func For(rule games.Rule) (Generator, error) {
	switch rule {
	case games.RuleSumTarget:
		return SumTarget{}, nil
	case games.RuleSubtraction:
		return Subtraction{}, nil
	case games.RuleAddition:
		return Addition{}, nil
	case games.RuleFraction:
		return Fraction{}, nil
	case games.RulePattern:
		return Pattern{}, nil
	case games.RuleClock:
		return Clock{}, nil
	case games.RuleShapes:
		return Shapes{}, nil
	}
	return nil, fmt.Errorf("no generator for rule %q", rule)
}

// between returns a uniform int in [lo, hi]
func between(rng *rand.Rand, lo, hi int) int {
	return lo + rng.IntN(hi-lo+1)
}

func shuffle(rng *rand.Rand, choices []models.Choice) {
	rng.Shuffle(len(choices), func(i, j int) {
		choices[i], choices[j] = choices[j], choices[i]
	})
}

func numberChoices(values []int) []models.Choice {
	choices := make([]models.Choice, len(values))
	for i, v := range values {
		choices[i] = models.Choice{Value: v, Label: fmt.Sprintf("%d", v)}
	}
	return choices
}

// nearDistractors picks count distinct values within spread of answer that
// are at least floor and differ from answer
func nearDistractors(rng *rand.Rand, answer, spread, floor, count int) ([]int, bool) {
	var pool []int
	for v := answer - spread; v <= answer+spread; v++ {
		if v >= floor && v != answer {
			pool = append(pool, v)
		}
	}
	if len(pool) < count {
		return nil, false
	}
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return pool[:count], true
}

// singleAnswer assembles an exact-match problem from the answer and its distractors
func singleAnswer(rng *rand.Rand, prompt string, answer int, distractors []int) *models.Problem {
	choices := numberChoices(append([]int{answer}, distractors...))
	shuffle(rng, choices)
	return &models.Problem{
		Prompt:  prompt,
		Choices: choices,
		Answers: []int{answer},
	}
}
