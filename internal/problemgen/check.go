package problemgen

import (
	"fmt"
	"slices"

	"mathclash/internal/games"
	"mathclash/internal/models"
)

// Answer is one submission: picked choice indices, a typed value, or both
type Answer struct {
	Indices []int `json:"indices,omitempty"`
	Value   *int  `json:"value,omitempty"`
}

// Verdict classifies an answer
type Verdict int

const (
	VerdictNone Verdict = iota
	VerdictCorrect
	VerdictPartial
	VerdictOvershoot
	VerdictIncorrect
)

var verdictNames = map[Verdict]string{
	VerdictNone:      "none",
	VerdictCorrect:   "correct",
	VerdictPartial:   "partial",
	VerdictOvershoot: "overshoot",
	VerdictIncorrect: "incorrect",
}

func (v Verdict) String() string {
	if name, ok := verdictNames[v]; ok {
		return name
	}
	return fmt.Sprintf("verdict(%d)", int(v))
}

func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// Outcome is the result of checking an answer
type Outcome struct {
	Verdict Verdict
	// Cleared is set when the problem needs nothing further
	Cleared bool
	// Selection is the pending selection after this answer
	Selection []int
	// Consumed lists choice indices used up by a correct group
	Consumed []int
	Detail   string
}

// Check judges ans against problem p. selection and collected are the
// pending and consumed choice indices of cumulative games.
func Check(rule games.Rule, p *models.Problem, ans Answer, selection, collected []int) (Outcome, error) {
	switch rule {
	case games.RuleSumTarget:
		return checkSum(p, ans, selection, collected)
	case games.RuleFraction:
		return checkCount(p, ans)
	case games.RuleShapes:
		return checkCover(p, ans)
	case games.RuleSubtraction, games.RuleAddition, games.RulePattern, games.RuleClock:
		return checkExact(p, ans)
	}
	return Outcome{}, fmt.Errorf("no answer rule for %q", rule)
}

func validIndex(p *models.Problem, i int) bool {
	return i >= 0 && i < len(p.Choices)
}

func checkExact(p *models.Problem, ans Answer) (Outcome, error) {
	var value int
	switch {
	case ans.Value != nil:
		value = *ans.Value
	case len(ans.Indices) == 1:
		if !validIndex(p, ans.Indices[0]) {
			return Outcome{}, fmt.Errorf("%w: index %d", ErrChoiceUnavailable, ans.Indices[0])
		}
		value = p.Choices[ans.Indices[0]].Value
	case len(ans.Indices) > 1:
		return Outcome{}, fmt.Errorf("%w: pick a single choice", ErrChoiceUnavailable)
	default:
		return Outcome{}, ErrEmptyAnswer
	}

	if value == p.Answers[0] {
		return Outcome{Verdict: VerdictCorrect, Cleared: true}, nil
	}
	return Outcome{Verdict: VerdictIncorrect, Detail: fmt.Sprintf("%s is not the answer", labelFor(p, value))}, nil
}

func labelFor(p *models.Problem, value int) string {
	if i := p.ChoiceIndex(value); i >= 0 {
		return p.Choices[i].Label
	}
	return fmt.Sprintf("%d", value)
}

// checkSum adds the picked balloons to the pending selection. Reaching the
// target consumes the selection; passing it resets the selection.
func checkSum(p *models.Problem, ans Answer, selection, collected []int) (Outcome, error) {
	if len(ans.Indices) == 0 {
		return Outcome{}, ErrEmptyAnswer
	}

	picked := slices.Clone(selection)
	for _, i := range ans.Indices {
		if !validIndex(p, i) || slices.Contains(collected, i) || slices.Contains(picked, i) {
			return Outcome{}, fmt.Errorf("%w: index %d", ErrChoiceUnavailable, i)
		}
		picked = append(picked, i)
	}

	sum := 0
	for _, i := range picked {
		sum += p.Choices[i].Value
	}

	switch {
	case sum > p.Target:
		return Outcome{
			Verdict: VerdictOvershoot,
			Detail:  fmt.Sprintf("%d is more than %d", sum, p.Target),
		}, nil
	case sum < p.Target:
		return Outcome{Verdict: VerdictPartial, Selection: picked}, nil
	}

	used := append(slices.Clone(collected), picked...)
	cleared := true
	for _, v := range p.Answers {
		if !slices.Contains(used, p.ChoiceIndex(v)) {
			cleared = false
			break
		}
	}
	return Outcome{Verdict: VerdictCorrect, Cleared: cleared, Consumed: picked}, nil
}

// checkCount accepts any selection of exactly Target distinct parts
func checkCount(p *models.Problem, ans Answer) (Outcome, error) {
	if len(ans.Indices) == 0 {
		return Outcome{}, ErrEmptyAnswer
	}
	seen := make(map[int]bool, len(ans.Indices))
	for _, i := range ans.Indices {
		if !validIndex(p, i) || seen[i] {
			return Outcome{}, fmt.Errorf("%w: index %d", ErrChoiceUnavailable, i)
		}
		seen[i] = true
	}

	if len(seen) == p.Target {
		return Outcome{Verdict: VerdictCorrect, Cleared: true}, nil
	}
	return Outcome{
		Verdict: VerdictIncorrect,
		Detail:  fmt.Sprintf("need %d parts but selected %d", p.Target, len(seen)),
	}, nil
}

// checkCover accepts any placement covering the required shapes; extra
// shapes are allowed
func checkCover(p *models.Problem, ans Answer) (Outcome, error) {
	if len(ans.Indices) == 0 {
		return Outcome{}, ErrEmptyAnswer
	}
	placed := make(map[int]int, len(ans.Indices))
	for _, i := range ans.Indices {
		if !validIndex(p, i) {
			return Outcome{}, fmt.Errorf("%w: index %d", ErrChoiceUnavailable, i)
		}
		placed[p.Choices[i].Value]++
	}

	required := make(map[int]int)
	for _, v := range p.Answers {
		required[v]++
	}
	for _, v := range uniqueSorted(p.Answers) {
		if have := placed[v]; have < required[v] {
			return Outcome{
				Verdict: VerdictIncorrect,
				Detail:  fmt.Sprintf("missing %d %s", required[v]-have, labelFor(p, v)),
			}, nil
		}
	}
	return Outcome{Verdict: VerdictCorrect, Cleared: true}, nil
}

func uniqueSorted(values []int) []int {
	out := slices.Clone(values)
	slices.Sort(out)
	return slices.Compact(out)
}
