package problemgen

import (
	"fmt"
	"math/rand/v2"

	"mathclash/internal/games"
	"mathclash/internal/models"
)

var quarterHours = []int{0, 15, 30, 45}

var hourNames = []string{
	"", "one", "two", "three", "four", "five", "six",
	"seven", "eight", "nine", "ten", "eleven", "twelve",
}

// ClockValue encodes a time of day as minutes past twelve o'clock
func ClockValue(hours, minutes int) int {
	return hours*60 + minutes
}

// ClockLabel formats an encoded time as h:mm
func ClockLabel(value int) string {
	return fmt.Sprintf("%d:%02d", value/60, value%60)
}

// Clock asks the learner to read a clock face or to set one. In read mode
// Target carries the time the face shows.
type Clock struct{}

func (Clock) Generate(rng *rand.Rand, p Params) (*models.Problem, error) {
	hours := between(rng, 1, 12)
	minutes := quarterHours[rng.IntN(len(quarterHours))]
	answer := ClockValue(hours, minutes)

	var pool []int
	for h := 1; h <= 12; h++ {
		for _, m := range quarterHours {
			if v := ClockValue(h, m); v != answer {
				pool = append(pool, v)
			}
		}
	}
	if p.ChoiceCount-1 > len(pool) {
		return nil, &GenerationError{
			Rule:     games.RuleClock,
			Attempts: 1,
			Reason:   fmt.Sprintf("only %d quarter hours for %d choices", len(pool)+1, p.ChoiceCount),
		}
	}
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	choices := make([]models.Choice, 0, p.ChoiceCount)
	for _, v := range append([]int{answer}, pool[:p.ChoiceCount-1]...) {
		choices = append(choices, models.Choice{Value: v, Label: ClockLabel(v)})
	}
	shuffle(rng, choices)

	problem := &models.Problem{
		Choices: choices,
		Answers: []int{answer},
	}
	if rng.IntN(2) == 0 {
		problem.Prompt = "What time does the clock show?"
		problem.Target = answer
	} else {
		problem.Prompt = "Set the clock to " + spokenTime(hours, minutes)
	}
	return problem, nil
}

func spokenTime(hours, minutes int) string {
	switch minutes {
	case 15:
		return "quarter past " + hourNames[hours]
	case 30:
		return "half past " + hourNames[hours]
	case 45:
		next := hours%12 + 1
		return "quarter to " + hourNames[next]
	}
	return hourNames[hours] + " o'clock"
}
