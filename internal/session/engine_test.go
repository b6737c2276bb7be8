package session

import (
	"errors"
	"math/rand/v2"
	"reflect"
	"testing"

	"mathclash/internal/games"
	"mathclash/internal/models"
	"mathclash/internal/problemgen"
)

func gameConfig(t *testing.T, id string) games.Config {
	t.Helper()
	cfg, ok := games.DefaultCatalog().Get(id)
	if !ok {
		t.Fatalf("game %s missing from catalog", id)
	}
	return cfg
}

func newEngine(t *testing.T, cfg games.Config, seed uint64) *Engine {
	t.Helper()
	e, err := NewEngine(cfg, rand.New(rand.NewPCG(seed, seed+1)))
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

func startedEngine(t *testing.T, id string) *Engine {
	t.Helper()
	e := newEngine(t, gameConfig(t, id), 1)
	if err := e.Start(0); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return e
}

// correctAnswer builds a winning submission for the current problem
func correctAnswer(rule games.Rule, p *models.Problem) problemgen.Answer {
	switch rule {
	case games.RuleSumTarget:
		var indices []int
		for _, v := range p.Answers {
			indices = append(indices, p.ChoiceIndex(v))
		}
		return problemgen.Answer{Indices: indices}
	case games.RuleFraction:
		indices := make([]int, p.Target)
		for i := range indices {
			indices[i] = i
		}
		return problemgen.Answer{Indices: indices}
	case games.RuleShapes:
		return problemgen.Answer{Indices: append([]int(nil), p.Answers...)}
	}
	return problemgen.Answer{Indices: []int{p.ChoiceIndex(p.Answers[0])}}
}

func wrongAnswer(p *models.Problem) problemgen.Answer {
	for i, c := range p.Choices {
		if c.Value != p.Answers[0] {
			return problemgen.Answer{Indices: []int{i}}
		}
	}
	return problemgen.Answer{}
}

func TestSumTargetScenario(t *testing.T) {
	e := startedEngine(t, games.NumberHunt)
	e.state.CurrentProblem = &models.Problem{
		Choices: []models.Choice{{Value: 4}, {Value: 9}, {Value: 6}, {Value: 1}, {Value: 3}, {Value: 8}, {Value: 2}},
		Answers: []int{4, 6},
		Target:  10,
	}

	step, err := e.Submit(problemgen.Answer{Indices: []int{0}})
	if err != nil {
		t.Fatalf("Submit(4) error = %v", err)
	}
	if step.Verdict != problemgen.VerdictPartial {
		t.Fatalf("4 should be partial, got %s", step.Verdict)
	}

	step, err = e.Submit(problemgen.Answer{Indices: []int{2}})
	if err != nil {
		t.Fatalf("Submit(6) error = %v", err)
	}
	if step.Verdict != problemgen.VerdictCorrect || step.Points != 100 {
		t.Fatalf("4+6 should score 100, got %+v", step)
	}
	if step.Summary == nil || step.Summary.EndReason != models.EndGoalReached {
		t.Fatalf("expected goal_reached summary, got %+v", step.Summary)
	}

	state := e.State()
	if state.Score != 100 || state.Status != models.StatusEnded {
		t.Errorf("unexpected end state %+v", state)
	}
	if step.Summary.StarsEarned != 1 {
		t.Errorf("100 points should earn 1 star, got %d", step.Summary.StarsEarned)
	}
}

func TestSumTargetOvershootCostsLife(t *testing.T) {
	e := startedEngine(t, games.NumberHunt)
	e.state.CurrentProblem = &models.Problem{
		Choices: []models.Choice{{Value: 4}, {Value: 9}, {Value: 6}, {Value: 1}, {Value: 3}, {Value: 8}, {Value: 2}},
		Answers: []int{4, 6},
		Target:  10,
	}

	if _, err := e.Submit(problemgen.Answer{Indices: []int{0}}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	step, err := e.Submit(problemgen.Answer{Indices: []int{1}})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if step.Verdict != problemgen.VerdictOvershoot {
		t.Fatalf("expected overshoot, got %s", step.Verdict)
	}

	state := e.State()
	if state.LivesRemaining != 2 {
		t.Errorf("lives = %d, want 2", state.LivesRemaining)
	}
	if len(state.Selection) != 0 {
		t.Errorf("selection should be cleared, got %v", state.Selection)
	}
	if state.Status != models.StatusActive {
		t.Errorf("status = %s, want active", state.Status)
	}
}

func TestTimeoutScenario(t *testing.T) {
	e := startedEngine(t, games.SubtractionHunt)

	for i := 0; i < 59; i++ {
		step, err := e.Tick()
		if err != nil {
			t.Fatalf("tick %d error = %v", i, err)
		}
		if step.Summary != nil {
			t.Fatalf("session ended early at tick %d", i)
		}
	}

	step, err := e.Tick()
	if err != nil {
		t.Fatalf("final Tick() error = %v", err)
	}
	if step.Summary == nil || step.Summary.EndReason != models.EndTimeout {
		t.Fatalf("expected timeout summary, got %+v", step.Summary)
	}

	before := e.State()
	step, err = e.Tick()
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("tick after end should be invalid, got %v", err)
	}
	if step.Summary != nil {
		t.Error("tick after end produced a second summary")
	}
	if !reflect.DeepEqual(before, e.State()) {
		t.Error("invalid tick mutated state")
	}
}

func TestLivesExhausted(t *testing.T) {
	e := startedEngine(t, games.SubtractionHunt)

	for i := 0; i < 2; i++ {
		step, err := e.Submit(wrongAnswer(e.State().CurrentProblem))
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		if step.Verdict != problemgen.VerdictIncorrect || step.Summary != nil {
			t.Fatalf("miss %d: unexpected step %+v", i, step)
		}
	}

	step, err := e.Submit(wrongAnswer(e.State().CurrentProblem))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if step.Summary == nil || step.Summary.EndReason != models.EndLivesExhausted {
		t.Fatalf("expected lives_exhausted, got %+v", step.Summary)
	}
	if e.State().LivesRemaining != 0 {
		t.Errorf("lives = %d, want 0", e.State().LivesRemaining)
	}
}

func TestSubtractionCorrectScoresTen(t *testing.T) {
	e := startedEngine(t, games.SubtractionHunt)
	first := e.State().CurrentProblem

	step, err := e.Submit(correctAnswer(games.RuleSubtraction, first))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if step.Points != 10 {
		t.Errorf("points = %d, want 10", step.Points)
	}

	state := e.State()
	if state.Score != 10 || state.ProblemsCompleted != 1 {
		t.Errorf("unexpected state %+v", state)
	}
	if state.CurrentProblem.ID == first.ID {
		t.Error("expected a new problem after a correct answer")
	}
}

func TestFractionMissKeepsProblem(t *testing.T) {
	e := startedEngine(t, games.FractionAdventure)
	p := e.State().CurrentProblem

	indices := make([]int, p.Target+1)
	for i := range indices {
		indices[i] = i
	}
	step, err := e.Submit(problemgen.Answer{Indices: indices})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if step.Verdict != problemgen.VerdictIncorrect || step.Detail == "" {
		t.Fatalf("expected incorrect with detail, got %+v", step)
	}

	state := e.State()
	if state.CurrentProblem.ID != p.ID {
		t.Error("fraction miss should keep the problem")
	}
	if state.Status != models.StatusActive || state.LivesRemaining != 0 {
		t.Errorf("unexpected state %+v", state)
	}
}

func TestMazeGoalAddsTimeBonus(t *testing.T) {
	e := startedEngine(t, games.AdditionMaze)
	for i := 0; i < 10; i++ {
		if _, err := e.Tick(); err != nil {
			t.Fatalf("Tick() error = %v", err)
		}
	}

	var step Step
	for i := 0; i < 5; i++ {
		var err error
		step, err = e.Submit(correctAnswer(games.RuleAddition, e.State().CurrentProblem))
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}

	if step.Summary == nil || step.Summary.EndReason != models.EndGoalReached {
		t.Fatalf("expected goal_reached, got %+v", step.Summary)
	}
	want := 5*20 + 110*2
	if step.Summary.FinalScore != want {
		t.Errorf("final score = %d, want %d", step.Summary.FinalScore, want)
	}
	if step.Summary.StarsEarned != 3 {
		t.Errorf("stars = %d, want 3", step.Summary.StarsEarned)
	}
}

func TestShapeBuilderIsUntimed(t *testing.T) {
	e := startedEngine(t, games.ShapeBuilder)

	if _, err := e.Tick(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("untimed game should reject ticks, got %v", err)
	}

	var step Step
	for i := 0; i < 3; i++ {
		var err error
		step, err = e.Submit(correctAnswer(games.RuleShapes, e.State().CurrentProblem))
		if err != nil {
			t.Fatalf("challenge %d: Submit() error = %v", i, err)
		}
	}
	if step.Summary == nil || step.Summary.FinalScore != 300 || step.Summary.StarsEarned != 3 {
		t.Fatalf("unexpected summary %+v", step.Summary)
	}
}

func TestPauseFreezesClock(t *testing.T) {
	e := startedEngine(t, games.WhatTimeIsIt)
	if _, err := e.Tick(); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if err := e.Pause(); err != nil {
		t.Fatalf("Pause() error = %v", err)
	}

	before := e.State()
	if _, err := e.Tick(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("tick while paused should be invalid, got %v", err)
	}
	if _, err := e.Submit(correctAnswer(games.RuleClock, before.CurrentProblem)); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("submit while paused should be invalid, got %v", err)
	}
	if !reflect.DeepEqual(before, e.State()) {
		t.Error("paused session changed")
	}

	if err := e.Resume(); err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if e.State().TimeRemainingSeconds != 79 {
		t.Errorf("time = %d, want 79", e.State().TimeRemainingSeconds)
	}
}

func TestInvalidTransitions(t *testing.T) {
	e := newEngine(t, gameConfig(t, games.NumberPatterns), 3)

	tests := []struct {
		name string
		op   func() error
	}{
		{"pause idle", e.Pause},
		{"resume idle", e.Resume},
		{"tick idle", func() error { _, err := e.Tick(); return err }},
		{"submit idle", func() error { _, err := e.Submit(problemgen.Answer{Indices: []int{0}}); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := e.State()
			err := tt.op()
			var transErr *TransitionError
			if !errors.As(err, &transErr) {
				t.Fatalf("expected *TransitionError, got %v", err)
			}
			if transErr.Status != models.StatusIdle {
				t.Errorf("status = %s, want idle", transErr.Status)
			}
			if !reflect.DeepEqual(before, e.State()) {
				t.Error("invalid transition mutated state")
			}
		})
	}

	if err := e.Start(0); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := e.Start(0); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("start while active should be invalid, got %v", err)
	}
}

func TestRestartAfterEnd(t *testing.T) {
	e := startedEngine(t, games.SubtractionHunt)
	if _, err := e.Submit(correctAnswer(games.RuleSubtraction, e.State().CurrentProblem)); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	for e.State().Status == models.StatusActive {
		if _, err := e.Tick(); err != nil {
			t.Fatalf("Tick() error = %v", err)
		}
	}

	if err := e.Start(2); err != nil {
		t.Fatalf("restart error = %v", err)
	}
	state := e.State()
	if state.Score != 0 || state.LivesRemaining != 3 || state.TimeRemainingSeconds != 60 || state.Level != 2 {
		t.Errorf("restart did not reset state: %+v", state)
	}
	if state.EndReason != models.EndNone {
		t.Errorf("end reason = %s, want none", state.EndReason)
	}
}

func TestUnavailableChoiceLeavesStateUntouched(t *testing.T) {
	e := startedEngine(t, games.SubtractionHunt)
	before := e.State()

	if _, err := e.Submit(problemgen.Answer{Indices: []int{99}}); !errors.Is(err, ErrChoiceUnavailable) {
		t.Fatalf("expected ErrChoiceUnavailable, got %v", err)
	}
	if !reflect.DeepEqual(before, e.State()) {
		t.Error("rejected answer mutated state")
	}
}

func TestScoreNeverDecreases(t *testing.T) {
	for _, cfg := range games.DefaultCatalog().All() {
		t.Run(cfg.ID, func(t *testing.T) {
			e := newEngine(t, cfg, 11)
			if err := e.Start(0); err != nil {
				t.Fatalf("Start() error = %v", err)
			}
			rng := rand.New(rand.NewPCG(5, 6))

			prev := e.State()
			for i := 0; i < 500 && prev.Status != models.StatusEnded; i++ {
				switch rng.IntN(4) {
				case 0:
					if e.Timed() {
						_, _ = e.Tick()
					}
				case 1:
					_, _ = e.Submit(correctAnswer(cfg.Rule, prev.CurrentProblem))
				default:
					_, _ = e.Submit(problemgen.Answer{Indices: []int{rng.IntN(len(prev.CurrentProblem.Choices))}})
				}

				next := e.State()
				if next.Score < prev.Score {
					t.Fatalf("score dropped from %d to %d", prev.Score, next.Score)
				}
				if next.TimeRemainingSeconds > prev.TimeRemainingSeconds {
					t.Fatalf("time rose from %d to %d", prev.TimeRemainingSeconds, next.TimeRemainingSeconds)
				}
				prev = next
			}
		})
	}
}

func TestStartAtHighLevels(t *testing.T) {
	for _, cfg := range games.DefaultCatalog().All() {
		t.Run(cfg.ID, func(t *testing.T) {
			for level := 1; level <= 50; level++ {
				e := newEngine(t, cfg, uint64(level))
				if err := e.Start(level); err != nil {
					t.Fatalf("Start(%d) error = %v", level, err)
				}
				if state := e.State(); state.Level != level || state.CurrentProblem == nil {
					t.Fatalf("Start(%d) state = %+v", level, state)
				}
			}
		})
	}
}
