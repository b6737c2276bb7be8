package session

import (
	"context"
	"errors"
	"log"
	"math/rand/v2"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"mathclash/internal/games"
	"mathclash/internal/models"
	"mathclash/internal/problemgen"
)

// ErrSessionClosed is returned by a controller after Close
var ErrSessionClosed = errors.New("session closed")

// Reconciler merges an ended session into persisted progress
type Reconciler interface {
	Reconcile(ctx context.Context, result models.SessionResult) error
}

// ControllerConfig wires a controller
type ControllerConfig struct {
	SessionID string
	StudentID string
	// GuardianEmail is carried into the session result for notifications
	GuardianEmail string
	Game          games.Config
	Rand          *rand.Rand
	Reconciler    Reconciler

	// NewTicker defaults to SecondTicker
	NewTicker func() Ticker

	// OnEnd runs on the controller goroutine and must not block
	OnEnd func(models.SessionResult)

	ReconcileTimeout time.Duration
	Logger           *log.Logger
}

type command struct {
	op    func(*Engine) (Step, error)
	reply chan reply
}

type reply struct {
	step  Step
	state models.SessionState
	err   error
}

// Controller serializes every command and clock tick for one session on a
// single goroutine. Only that goroutine touches the engine and the ticker.
type Controller struct {
	id        string
	studentID string
	guardian  string
	gameID    string

	engine    *Engine
	ticker    Ticker
	newTicker func() Ticker

	reconciler Reconciler
	onEnd      func(models.SessionResult)
	timeout    time.Duration
	logger     *log.Logger

	cmds      chan command
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	pending   sync.WaitGroup
	lastSeen  atomic.Int64
}

// NewController creates an idle session and starts its goroutine
func NewController(cfg ControllerConfig) (*Controller, error) {
	if cfg.Rand == nil {
		rng, err := NewRand()
		if err != nil {
			return nil, err
		}
		cfg.Rand = rng
	}
	engine, err := NewEngine(cfg.Game, cfg.Rand)
	if err != nil {
		return nil, err
	}
	if cfg.NewTicker == nil {
		cfg.NewTicker = SecondTicker
	}
	if cfg.ReconcileTimeout <= 0 {
		cfg.ReconcileTimeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stdout, "[session] ", log.LstdFlags)
	}

	c := &Controller{
		id:         cfg.SessionID,
		studentID:  cfg.StudentID,
		guardian:   cfg.GuardianEmail,
		gameID:     cfg.Game.ID,
		engine:     engine,
		newTicker:  cfg.NewTicker,
		reconciler: cfg.Reconciler,
		onEnd:      cfg.OnEnd,
		timeout:    cfg.ReconcileTimeout,
		logger:     cfg.Logger,
		cmds:       make(chan command),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	c.touch()
	go c.run()
	return c, nil
}

func (c *Controller) ID() string        { return c.id }
func (c *Controller) StudentID() string { return c.studentID }
func (c *Controller) GameID() string    { return c.gameID }

// LastActivity is the time of the most recent command
func (c *Controller) LastActivity() time.Time {
	return time.Unix(0, c.lastSeen.Load())
}

func (c *Controller) touch() {
	c.lastSeen.Store(time.Now().UnixNano())
}

// Start begins or restarts the session
func (c *Controller) Start(ctx context.Context, level int) (Step, models.SessionState, error) {
	return c.do(ctx, func(e *Engine) (Step, error) {
		return Step{}, e.Start(level)
	})
}

func (c *Controller) Pause(ctx context.Context) (Step, models.SessionState, error) {
	return c.do(ctx, func(e *Engine) (Step, error) {
		return Step{}, e.Pause()
	})
}

func (c *Controller) Resume(ctx context.Context) (Step, models.SessionState, error) {
	return c.do(ctx, func(e *Engine) (Step, error) {
		return Step{}, e.Resume()
	})
}

// Submit judges an answer to the current problem
func (c *Controller) Submit(ctx context.Context, ans problemgen.Answer) (Step, models.SessionState, error) {
	return c.do(ctx, func(e *Engine) (Step, error) {
		return e.Submit(ans)
	})
}

// State returns a snapshot of the session
func (c *Controller) State(ctx context.Context) (models.SessionState, error) {
	_, state, err := c.do(ctx, func(e *Engine) (Step, error) {
		return Step{}, nil
	})
	return state, err
}

// Close stops the session goroutine and its clock. A session torn down
// before it ends is not reconciled.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		close(c.quit)
	})
	<-c.done
}

// Wait blocks until every reconciliation issued by the controller returns
func (c *Controller) Wait(ctx context.Context) error {
	finished := make(chan struct{})
	go func() {
		c.pending.Wait()
		close(finished)
	}()
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) do(ctx context.Context, op func(*Engine) (Step, error)) (Step, models.SessionState, error) {
	c.touch()
	cmd := command{op: op, reply: make(chan reply, 1)}
	select {
	case c.cmds <- cmd:
	case <-c.done:
		return Step{}, models.SessionState{}, ErrSessionClosed
	case <-ctx.Done():
		return Step{}, models.SessionState{}, ctx.Err()
	}

	select {
	case r := <-cmd.reply:
		return r.step, r.state, r.err
	case <-ctx.Done():
		return Step{}, models.SessionState{}, ctx.Err()
	}
}

func (c *Controller) run() {
	defer close(c.done)
	defer c.stopTicker()

	for {
		// only the current ticker is ever read, so a stopped one cannot
		// deliver a late tick
		var tick <-chan time.Time
		if c.ticker != nil {
			tick = c.ticker.C()
		}

		select {
		case <-c.quit:
			return
		case cmd := <-c.cmds:
			step, err := cmd.op(c.engine)
			if errors.Is(err, ErrInvalidTransition) {
				c.logger.Printf("Session %s: ignored: %v", c.id, err)
			}
			c.settle(step)
			cmd.reply <- reply{step: step, state: c.engine.State(), err: err}
		case <-tick:
			step, err := c.engine.Tick()
			if err != nil {
				c.logger.Printf("Session %s: ignored tick: %v", c.id, err)
			}
			c.settle(step)
		}
	}
}

// settle keeps the clock running exactly while the session is active and
// hands off an ended session
func (c *Controller) settle(step Step) {
	if c.engine.Status() == models.StatusActive && c.engine.Timed() {
		if c.ticker == nil {
			c.ticker = c.newTicker()
		}
	} else {
		c.stopTicker()
	}

	if step.Summary != nil {
		c.finish(*step.Summary)
	}
}

func (c *Controller) stopTicker() {
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
}

func (c *Controller) finish(summary models.Summary) {
	result := models.SessionResult{
		SessionID:     c.id,
		StudentID:     c.studentID,
		GuardianEmail: c.guardian,
		GameID:        c.gameID,
		Summary:       summary,
		EndedAt:       time.Now().UTC(),
	}
	c.logger.Printf("Session %s ended: game=%s score=%d stars=%d reason=%s",
		c.id, c.gameID, summary.FinalScore, summary.StarsEarned, summary.EndReason)

	if c.onEnd != nil {
		c.onEnd(result)
	}
	if c.reconciler == nil {
		return
	}

	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()
		if err := c.reconciler.Reconcile(ctx, result); err != nil {
			c.logger.Printf("Session %s: failed to reconcile progress: %v", c.id, err)
		}
	}()
}
