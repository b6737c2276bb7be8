package problemgen

import (
	"fmt"

	"mathclash/internal/games"
	"mathclash/internal/models"
)

// Validate checks the choice invariants of a generated problem: choice values
// are pairwise distinct, a single answer appears exactly once, and a
// multi-select answer can be built from the choices.
func Validate(rule games.Rule, p *models.Problem) error {
	if p == nil {
		return fmt.Errorf("%w: no problem", ErrGeneration)
	}
	if len(p.Answers) == 0 {
		return fmt.Errorf("%w: problem has no answer", ErrGeneration)
	}

	seen := make(map[int]bool, len(p.Choices))
	for _, c := range p.Choices {
		if seen[c.Value] {
			return fmt.Errorf("%w: duplicate choice %d", ErrGeneration, c.Value)
		}
		seen[c.Value] = true
	}

	switch rule {
	case games.RuleSumTarget:
		sum := 0
		used := make(map[int]bool, len(p.Answers))
		for _, v := range p.Answers {
			if !seen[v] || used[v] {
				return fmt.Errorf("%w: group value %d not available", ErrGeneration, v)
			}
			used[v] = true
			sum += v
		}
		if sum != p.Target {
			return fmt.Errorf("%w: group sums to %d, target is %d", ErrGeneration, sum, p.Target)
		}
	case games.RuleFraction:
		if p.Target < 1 || p.Target >= len(p.Choices) {
			return fmt.Errorf("%w: cannot select %d of %d parts", ErrGeneration, p.Target, len(p.Choices))
		}
	case games.RuleShapes:
		for _, v := range p.Answers {
			if !seen[v] {
				return fmt.Errorf("%w: shape %d not in palette", ErrGeneration, v)
			}
		}
	default:
		if len(p.Answers) != 1 {
			return fmt.Errorf("%w: expected one answer, got %d", ErrGeneration, len(p.Answers))
		}
		if !seen[p.Answers[0]] {
			return fmt.Errorf("%w: answer %d missing from choices", ErrGeneration, p.Answers[0])
		}
	}
	return nil
}
