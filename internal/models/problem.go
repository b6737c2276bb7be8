package models

// Choice is one candidate shown to the learner
type Choice struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// Problem represents a single generated question
type Problem struct {
	ID      string   `json:"id"`
	GameID  string   `json:"game_id"`
	Prompt  string   `json:"prompt"`
	Choices []Choice `json:"choices"`

	// Answers holds the correct value(s). Depending on the rule this is the
	// single expected value, the group that sums to Target, a canonical subset
	// of part indices, or the multiset of required palette values.
	Answers []int `json:"-"`

	// Target is the sum to reach or the number of parts to select
	Target int `json:"target,omitempty"`

	// Bonus is added to the game's per-correct points for this problem
	Bonus int `json:"bonus,omitempty"`
}

// ChoiceIndex returns the index of the choice holding value, or -1
func (p *Problem) ChoiceIndex(value int) int {
	for i, c := range p.Choices {
		if c.Value == value {
			return i
		}
	}
	return -1
}

// Values returns the choice values in display order
func (p *Problem) Values() []int {
	values := make([]int, len(p.Choices))
	for i, c := range p.Choices {
		values[i] = c.Value
	}
	return values
}
