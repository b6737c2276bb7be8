package problemgen

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"mathclash/internal/games"
	"mathclash/internal/models"
)

// SumTarget hides a group of distinct numbers adding up to a target among
// distractor balloons. The target grows by five per level and the balloon
// values grow with it, so three balloons can always reach the target.
type SumTarget struct{}

// TargetFor returns the sum to reach at a level
func TargetFor(level int) int {
	if level < 1 {
		level = 1
	}
	return 10 + (level-1)*5
}

// ValueCeiling returns the largest balloon value for a target at normal
// difficulty. Above the level-one range it leaves room for a group of three.
func ValueCeiling(target int) int {
	return max(9, (target+2)/3+2)
}

func (SumTarget) Generate(rng *rand.Rand, p Params) (*models.Problem, error) {
	target := TargetFor(p.Level)
	maxGroup := 3 + p.Relax
	maxValue := ValueCeiling(target) + p.Relax
	maxDistractor := max(10, maxValue) + p.Relax

	if p.ChoiceCount > maxDistractor {
		return nil, &GenerationError{
			Rule:     games.RuleSumTarget,
			Attempts: 0,
			Reason:   fmt.Sprintf("%d distinct balloons do not fit in 1..%d", p.ChoiceCount, maxDistractor),
		}
	}

	var sizes []int
	for k := 2; k <= maxGroup && k <= p.ChoiceCount; k++ {
		lowest := k * (k + 1) / 2
		highest := k*maxValue - k*(k-1)/2
		if target >= lowest && target <= highest {
			sizes = append(sizes, k)
		}
	}
	if len(sizes) == 0 {
		return nil, &GenerationError{
			Rule:     games.RuleSumTarget,
			Attempts: 0,
			Reason:   fmt.Sprintf("target %d unreachable with %d numbers up to %d", target, maxGroup, maxValue),
		}
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		group, ok := sumGroup(rng, target, sizes[rng.IntN(len(sizes))], maxValue)
		if !ok {
			continue
		}

		inGroup := make(map[int]bool, len(group))
		for _, v := range group {
			inGroup[v] = true
		}
		var pool []int
		for v := 1; v <= maxDistractor; v++ {
			if !inGroup[v] {
				pool = append(pool, v)
			}
		}
		rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

		values := append(slices.Clone(group), pool[:p.ChoiceCount-len(group)]...)
		choices := numberChoices(values)
		shuffle(rng, choices)
		return &models.Problem{
			Prompt:  fmt.Sprintf("Find numbers that add up to %d", target),
			Choices: choices,
			Answers: group,
			Target:  target,
		}, nil
	}
	return nil, &GenerationError{
		Rule:     games.RuleSumTarget,
		Attempts: maxAttempts,
		Reason:   fmt.Sprintf("no group found for target %d", target),
	}
}

// sumGroup draws the group value by value, keeping the remainder reachable
// by the slots still open, and rejects draws that repeat a value
func sumGroup(rng *rand.Rand, target, size, maxValue int) ([]int, bool) {
	group := make([]int, 0, size)
	seen := make(map[int]bool, size)
	rest := target
	for open := size - 1; open > 0; open-- {
		lo := max(1, rest-open*maxValue)
		hi := min(maxValue, rest-open)
		if lo > hi {
			return nil, false
		}
		v := between(rng, lo, hi)
		if seen[v] {
			return nil, false
		}
		seen[v] = true
		group = append(group, v)
		rest -= v
	}
	if rest < 1 || rest > maxValue || seen[rest] {
		return nil, false
	}
	return append(group, rest), true
}
