package problemgen

import (
	"fmt"
	"math/rand/v2"

	"mathclash/internal/models"
)

var fractionParts = []int{4, 6, 8}

// Fraction cuts a pizza into equal parts and asks for a number of them.
// Choices are the parts; the choice count follows the cut, not Params.
type Fraction struct{}

func (Fraction) Generate(rng *rand.Rand, p Params) (*models.Problem, error) {
	total := fractionParts[rng.IntN(len(fractionParts))]
	target := between(rng, 1, total-1)

	choices := make([]models.Choice, total)
	for i := range choices {
		choices[i] = models.Choice{Value: i, Label: fmt.Sprintf("part %d", i+1)}
	}
	answers := make([]int, target)
	for i := range answers {
		answers[i] = i
	}

	return &models.Problem{
		Prompt:  fmt.Sprintf("Select %d/%d of the pizza", target, total),
		Choices: choices,
		Answers: answers,
		Target:  target,
	}, nil
}
