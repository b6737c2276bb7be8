package problemgen

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"mathclash/internal/games"
	"mathclash/internal/models"
)

// Pattern kinds and the bonus each adds to the base points
const (
	PatternAddition       = "addition"
	PatternMultiplication = "multiplication"
	PatternAlternating    = "alternating"
)

var patternBonus = map[string]int{
	PatternAddition:       0,
	PatternMultiplication: 10,
	PatternAlternating:    5,
}

// Pattern hides one term of a numeric sequence
type Pattern struct{}

func (Pattern) Generate(rng *rand.Rand, p Params) (*models.Problem, error) {
	spread := 6 + 4*p.Relax
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		kind, terms, missing := sequence(rng)
		answer := terms[missing]

		distractors, ok := nearDistractors(rng, answer, spread, 1, p.ChoiceCount-1)
		if !ok {
			continue
		}

		shown := make([]string, len(terms))
		for i, v := range terms {
			if i == missing {
				shown[i] = "?"
				continue
			}
			shown[i] = fmt.Sprintf("%d", v)
		}

		problem := singleAnswer(rng, strings.Join(shown, ", "), answer, distractors)
		problem.Bonus = patternBonus[kind]
		return problem, nil
	}
	return nil, &GenerationError{
		Rule:     games.RulePattern,
		Attempts: maxAttempts,
		Reason:   fmt.Sprintf("not enough distractors within %d for %d choices", spread, p.ChoiceCount),
	}
}

// sequence returns the kind, the terms and the index of the hidden term
func sequence(rng *rand.Rand) (string, []int, int) {
	switch rng.IntN(3) {
	case 0:
		start := between(rng, 1, 10)
		step := between(rng, 2, 6)
		terms := make([]int, 7)
		for i := range terms {
			terms[i] = start + i*step
		}
		return PatternAddition, terms, between(rng, 2, 6)
	case 1:
		term := between(rng, 2, 4)
		factor := between(rng, 2, 4)
		terms := make([]int, 5)
		for i := range terms {
			terms[i] = term
			term *= factor
		}
		return PatternMultiplication, terms, between(rng, 1, 3)
	default:
		first := between(rng, 1, 10)
		second := between(rng, 5, 14)
		firstStep := between(rng, 2, 4)
		secondStep := between(rng, 2, 4)
		terms := make([]int, 6)
		for i := range terms {
			if i%2 == 0 {
				terms[i] = first + (i/2)*firstStep
			} else {
				terms[i] = second + (i/2)*secondStep
			}
		}
		return PatternAlternating, terms, between(rng, 1, 4)
	}
}
