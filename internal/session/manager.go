package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"mathclash/internal/games"
	"mathclash/internal/models"
)

var ErrGameNotFound = errors.New("game not found")

// ManagerConfig wires a Manager
type ManagerConfig struct {
	Catalog    *games.Catalog
	Reconciler Reconciler

	NewTicker func() Ticker
	NewRand   func() (*rand.Rand, error)
	OnEnd     func(models.SessionResult)

	// IdleTimeout is how long a session may go without commands before
	// ReapIdle removes it
	IdleTimeout      time.Duration
	ReconcileTimeout time.Duration
	Logger           *log.Logger
}

// Learner identifies who plays a session
type Learner struct {
	StudentID     string
	GuardianEmail string
}

type learnerKey struct {
	studentID string
	gameID    string
}

// Manager tracks live sessions, at most one per learner and game
type Manager struct {
	cfg ManagerConfig

	mu       sync.Mutex
	sessions map[string]*Controller
	learners map[learnerKey]string

	// draining counts torn-down controllers whose reconciliations may
	// still be running
	draining sync.WaitGroup
}

func NewManager(cfg ManagerConfig) *Manager {
	if cfg.NewRand == nil {
		cfg.NewRand = NewRand
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 30 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stdout, "[session] ", log.LstdFlags)
	}
	return &Manager{
		cfg:      cfg,
		sessions: make(map[string]*Controller),
		learners: make(map[learnerKey]string),
	}
}

// Start opens a new session for a learner and starts it. An existing session
// for the same learner and game is torn down.
func (m *Manager) Start(ctx context.Context, learner Learner, gameID string, level int) (*Controller, models.SessionState, error) {
	game, ok := m.cfg.Catalog.Get(gameID)
	if !ok {
		return nil, models.SessionState{}, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}

	rng, err := m.cfg.NewRand()
	if err != nil {
		return nil, models.SessionState{}, err
	}

	c, err := NewController(ControllerConfig{
		SessionID:        uuid.NewString(),
		StudentID:        learner.StudentID,
		GuardianEmail:    learner.GuardianEmail,
		Game:             game,
		Rand:             rng,
		Reconciler:       m.cfg.Reconciler,
		NewTicker:        m.cfg.NewTicker,
		OnEnd:            m.cfg.OnEnd,
		ReconcileTimeout: m.cfg.ReconcileTimeout,
		Logger:           m.cfg.Logger,
	})
	if err != nil {
		return nil, models.SessionState{}, err
	}

	_, state, err := c.Start(ctx, level)
	if err != nil {
		c.Close()
		return nil, models.SessionState{}, err
	}

	key := learnerKey{studentID: learner.StudentID, gameID: gameID}
	m.mu.Lock()
	old := m.sessions[m.learners[key]]
	delete(m.sessions, m.learners[key])
	m.sessions[c.ID()] = c
	m.learners[key] = c.ID()
	m.mu.Unlock()

	if old != nil {
		m.retire(old)
		m.cfg.Logger.Printf("Replaced session %s for student %s game %s", old.ID(), learner.StudentID, gameID)
	}
	return c, state, nil
}

// Get returns a learner's session. Sessions of other learners are reported
// as not found.
func (m *Manager) Get(studentID, sessionID string) (*Controller, error) {
	m.mu.Lock()
	c, ok := m.sessions[sessionID]
	m.mu.Unlock()

	if !ok || c.StudentID() != studentID {
		return nil, ErrSessionNotFound
	}
	return c, nil
}

// Remove tears a learner's session down
func (m *Manager) Remove(studentID, sessionID string) error {
	m.mu.Lock()
	c, ok := m.sessions[sessionID]
	if !ok || c.StudentID() != studentID {
		m.mu.Unlock()
		return ErrSessionNotFound
	}
	m.forget(c)
	m.mu.Unlock()

	m.retire(c)
	return nil
}

// retire closes a controller that left the registry and tracks its
// reconciliations until they return
func (m *Manager) retire(c *Controller) {
	c.Close()
	m.draining.Add(1)
	go func() {
		defer m.draining.Done()
		_ = c.Wait(context.Background())
	}()
}

// forget drops a controller from both indexes. Caller holds m.mu.
func (m *Manager) forget(c *Controller) {
	delete(m.sessions, c.ID())
	key := learnerKey{studentID: c.StudentID(), gameID: c.GameID()}
	if m.learners[key] == c.ID() {
		delete(m.learners, key)
	}
}

// Count returns the number of registered sessions
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// ReapIdle removes sessions without commands since now minus the idle timeout
func (m *Manager) ReapIdle(now time.Time) int {
	cutoff := now.Add(-m.cfg.IdleTimeout)

	var idle []*Controller
	m.mu.Lock()
	for _, c := range m.sessions {
		if c.LastActivity().Before(cutoff) {
			m.forget(c)
			idle = append(idle, c)
		}
	}
	m.mu.Unlock()

	for _, c := range idle {
		m.retire(c)
	}
	return len(idle)
}

// RunReaper calls ReapIdle on every interval until ctx is done
func (m *Manager) RunReaper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := m.ReapIdle(now); n > 0 {
				m.cfg.Logger.Printf("Reaped %d idle sessions", n)
			}
		}
	}
}

// Shutdown closes every session and waits for pending reconciliations,
// including those of sessions replaced, removed or reaped earlier
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	all := make([]*Controller, 0, len(m.sessions))
	for _, c := range m.sessions {
		all = append(all, c)
	}
	m.sessions = make(map[string]*Controller)
	m.learners = make(map[learnerKey]string)
	m.mu.Unlock()

	for _, c := range all {
		m.retire(c)
	}

	finished := make(chan struct{})
	go func() {
		m.draining.Wait()
		close(finished)
	}()
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
