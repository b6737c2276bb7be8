// Package session runs game sessions: a synchronous state machine (Engine),
// the goroutine that owns one (Controller) and the registry of live sessions
// (Manager).
package session

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/google/uuid"

	"mathclash/internal/games"
	"mathclash/internal/models"
	"mathclash/internal/problemgen"
)

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrSessionNotFound   = errors.New("session not found")
	ErrChoiceUnavailable = problemgen.ErrChoiceUnavailable
)

// TransitionError reports an operation the current status does not accept
type TransitionError struct {
	Op     string
	Status models.SessionStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s not allowed while %s", e.Op, e.Status)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// Step describes what a transition did
type Step struct {
	Verdict problemgen.Verdict `json:"verdict,omitempty"`
	Detail  string             `json:"detail,omitempty"`
	Points  int                `json:"points,omitempty"`

	// Summary is set only on the transition into ended
	Summary *models.Summary `json:"summary,omitempty"`
}

// Engine owns the state of one session. It is not safe for concurrent use.
type Engine struct {
	cfg     games.Config
	gen     problemgen.Generator
	rng     *rand.Rand
	state   models.SessionState
	cleared int
}

// NewEngine creates an idle session for a game
func NewEngine(cfg games.Config, rng *rand.Rand) (*Engine, error) {
	gen, err := problemgen.For(cfg.Rule)
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:   cfg,
		gen:   gen,
		rng:   rng,
		state: models.SessionState{Status: models.StatusIdle, Level: cfg.StartLevel()},
	}, nil
}

// Config returns the game configuration
func (e *Engine) Config() games.Config {
	return e.cfg
}

// Timed reports whether the session runs on a clock
func (e *Engine) Timed() bool {
	return e.cfg.DurationSeconds > 0
}

func (e *Engine) Status() models.SessionStatus {
	return e.state.Status
}

// State returns a copy of the current state
func (e *Engine) State() models.SessionState {
	s := e.state
	s.Selection = slices.Clone(e.state.Selection)
	s.Collected = slices.Clone(e.state.Collected)
	if e.state.CurrentProblem != nil {
		p := *e.state.CurrentProblem
		p.Choices = slices.Clone(p.Choices)
		p.Answers = slices.Clone(p.Answers)
		s.CurrentProblem = &p
	}
	return s
}

// Start begins a session from idle or ended. A level below 1 keeps the
// game's starting level.
func (e *Engine) Start(level int) error {
	if e.state.Status != models.StatusIdle && e.state.Status != models.StatusEnded {
		return &TransitionError{Op: "start", Status: e.state.Status}
	}
	if level < 1 {
		level = e.cfg.StartLevel()
	}

	problem, err := e.nextProblem(level, 0)
	if err != nil {
		return err
	}

	e.cleared = 0
	e.state = models.SessionState{
		Status:               models.StatusActive,
		Level:                level,
		LivesRemaining:       e.cfg.Lives,
		TimeRemainingSeconds: e.cfg.DurationSeconds,
		CurrentProblem:       problem,
		EndReason:            models.EndNone,
	}
	return nil
}

// Tick advances the clock by one second
func (e *Engine) Tick() (Step, error) {
	if e.state.Status != models.StatusActive || !e.Timed() {
		return Step{}, &TransitionError{Op: "tick", Status: e.state.Status}
	}

	e.state.TimeRemainingSeconds--
	if e.state.TimeRemainingSeconds <= 0 {
		e.state.TimeRemainingSeconds = 0
		return e.end(models.EndTimeout, Step{}), nil
	}
	return Step{}, nil
}

// Pause suspends an active session
func (e *Engine) Pause() error {
	if e.state.Status != models.StatusActive {
		return &TransitionError{Op: "pause", Status: e.state.Status}
	}
	e.state.Status = models.StatusPaused
	return nil
}

// Resume continues a paused session
func (e *Engine) Resume() error {
	if e.state.Status != models.StatusPaused {
		return &TransitionError{Op: "resume", Status: e.state.Status}
	}
	e.state.Status = models.StatusActive
	return nil
}

// Submit judges an answer against the current problem. Any problem the
// transition needs is generated before state changes, so a failed
// submission leaves the session untouched.
func (e *Engine) Submit(ans problemgen.Answer) (Step, error) {
	if e.state.Status != models.StatusActive {
		return Step{}, &TransitionError{Op: "submit", Status: e.state.Status}
	}

	problem := e.state.CurrentProblem
	out, err := problemgen.Check(e.cfg.Rule, problem, ans, e.state.Selection, e.state.Collected)
	if err != nil {
		return Step{}, err
	}
	step := Step{Verdict: out.Verdict, Detail: out.Detail}

	switch out.Verdict {
	case problemgen.VerdictPartial:
		e.state.Selection = out.Selection
		return step, nil

	case problemgen.VerdictCorrect:
		goal := out.Cleared && e.cfg.GoalCount > 0 && e.cleared+1 >= e.cfg.GoalCount
		var next *models.Problem
		if out.Cleared && !goal {
			if next, err = e.nextProblem(e.state.Level, e.cleared+1); err != nil {
				return Step{}, err
			}
		}

		step.Points = games.PointsFor(e.cfg, e.state.Level, problem)
		e.state.Score += step.Points
		e.state.ProblemsCompleted++
		e.state.Selection = nil
		e.state.Collected = append(e.state.Collected, out.Consumed...)
		if !out.Cleared {
			return step, nil
		}

		e.cleared++
		if goal {
			bonus := e.cfg.TimeBonusPerSecond * e.state.TimeRemainingSeconds
			e.state.Score += bonus
			step.Points += bonus
			return e.end(models.EndGoalReached, step), nil
		}
		e.state.CurrentProblem = next
		e.state.Collected = nil
		return step, nil

	default:
		lastLife := e.cfg.Lives > 0 && e.state.LivesRemaining <= 1
		var next *models.Problem
		if e.cfg.NewProblemOnMiss && !lastLife {
			if next, err = e.nextProblem(e.state.Level, e.cleared); err != nil {
				return Step{}, err
			}
		}

		e.state.Selection = nil
		if e.cfg.Lives > 0 {
			e.state.LivesRemaining--
			if e.state.LivesRemaining == 0 {
				return e.end(models.EndLivesExhausted, step), nil
			}
		}
		if next != nil {
			e.state.CurrentProblem = next
			e.state.Collected = nil
		}
		return step, nil
	}
}

func (e *Engine) end(reason models.EndReason, step Step) Step {
	e.state.Status = models.StatusEnded
	e.state.EndReason = reason
	e.state.Selection = nil
	step.Summary = &models.Summary{
		FinalScore:        e.state.Score,
		StarsEarned:       games.StarsForEnd(e.cfg, reason, e.state.Score),
		ProblemsCompleted: e.state.ProblemsCompleted,
		EndReason:         reason,
	}
	return step
}

// nextProblem generates and validates a problem, relaxing bounds after each
// generation failure
func (e *Engine) nextProblem(level, sequence int) (*models.Problem, error) {
	var lastErr error
	for relax := 0; relax <= problemgen.MaxRelax; relax++ {
		p, err := e.gen.Generate(e.rng, problemgen.Params{
			Level:       level,
			Relax:       relax,
			Sequence:    sequence,
			ChoiceCount: e.cfg.ChoicesFor(level),
		})
		if err == nil {
			err = problemgen.Validate(e.cfg.Rule, p)
		}
		if err != nil {
			if !errors.Is(err, problemgen.ErrGeneration) {
				return nil, err
			}
			lastErr = err
			continue
		}
		p.ID = uuid.NewString()
		p.GameID = e.cfg.ID
		return p, nil
	}
	return nil, fmt.Errorf("game %s level %d: %w", e.cfg.ID, level, lastErr)
}
