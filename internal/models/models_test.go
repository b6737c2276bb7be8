package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestProblemChoiceIndex(t *testing.T) {
	p := &Problem{Choices: []Choice{{Value: 7, Label: "7"}, {Value: 3, Label: "3"}, {Value: 7, Label: "7"}}}

	tests := []struct {
		value int
		want  int
	}{
		{7, 0},
		{3, 1},
		{9, -1},
	}

	for _, tt := range tests {
		if got := p.ChoiceIndex(tt.value); got != tt.want {
			t.Errorf("ChoiceIndex(%d) = %d, want %d", tt.value, got, tt.want)
		}
	}

	values := p.Values()
	if len(values) != 3 || values[0] != 7 || values[1] != 3 || values[2] != 7 {
		t.Errorf("Values() = %v", values)
	}
}

func TestProblemJSONHidesAnswers(t *testing.T) {
	p := Problem{ID: "p-1", GameID: "caza-restas", Prompt: "9 - 4 = ?", Choices: []Choice{{Value: 5, Label: "5"}}, Answers: []int{5}}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if strings.Contains(string(data), "answers") {
		t.Errorf("answers leaked into JSON: %s", data)
	}
}

func TestStatusAndReasonNames(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"idle", StatusIdle.String(), "idle"},
		{"paused", StatusPaused.String(), "paused"},
		{"unknown status", SessionStatus(42).String(), "status(42)"},
		{"timeout", EndTimeout.String(), "timeout"},
		{"lives", EndLivesExhausted.String(), "lives_exhausted"},
		{"goal", EndGoalReached.String(), "goal_reached"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestEndReasonUnmarshalText(t *testing.T) {
	var r EndReason
	if err := r.UnmarshalText([]byte("goal_reached")); err != nil || r != EndGoalReached {
		t.Errorf("UnmarshalText(goal_reached) = %v, %v", r, err)
	}
	if err := r.UnmarshalText([]byte("bored")); err == nil {
		t.Error("expected an error for an unknown reason")
	}
}

func TestSummaryJSON(t *testing.T) {
	data, err := json.Marshal(Summary{FinalScore: 320, StarsEarned: 3, ProblemsCompleted: 5, EndReason: EndGoalReached})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"final_score":320,"stars_earned":3,"problems_completed":5,"end_reason":"goal_reached"}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

func TestProgressRecordIsCompleted(t *testing.T) {
	if (&ProgressRecord{}).IsCompleted() {
		t.Error("record without stars should not be completed")
	}
	if !(&ProgressRecord{StarsEarned: 1}).IsCompleted() {
		t.Error("record with a star should be completed")
	}
}
