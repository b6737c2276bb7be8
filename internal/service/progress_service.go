package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"mathclash/internal/models"
)

// ErrPersistence matches every *PersistenceError
var ErrPersistence = errors.New("progress persistence failed")

// PersistenceError reports a failed read or write of a progress record
type PersistenceError struct {
	Op        string
	StudentID string
	GameID    string
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s progress for student %s game %s: %v", e.Op, e.StudentID, e.GameID, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// ProgressStore persists best-of records keyed by (student, game)
type ProgressStore interface {
	// Fetch returns nil, nil when no record exists
	Fetch(ctx context.Context, studentID, gameID string) (*models.ProgressRecord, error)
	Upsert(ctx context.Context, record *models.ProgressRecord) error
	ListByStudent(ctx context.Context, studentID string) ([]models.ProgressRecord, error)
}

// AchievementNotifier is told when a session raises a learner's star record
type AchievementNotifier interface {
	NotifyAchievement(ctx context.Context, result models.SessionResult, record *models.ProgressRecord) error
}

// maxPending bounds the retained payloads; the oldest are dropped first
const maxPending = 1000

// Merge folds one session into the existing record. Best score and stars
// never decrease; attempts count every session.
func Merge(existing *models.ProgressRecord, result models.SessionResult, now time.Time) *models.ProgressRecord {
	merged := &models.ProgressRecord{
		StudentID: result.StudentID,
		GameID:    result.GameID,
		UpdatedAt: now,
	}
	if existing != nil {
		merged.BestScore = existing.BestScore
		merged.StarsEarned = existing.StarsEarned
		merged.TotalAttempts = existing.TotalAttempts
		merged.CompletedAt = existing.CompletedAt
	}

	merged.BestScore = max(merged.BestScore, result.Summary.FinalScore)
	merged.StarsEarned = max(merged.StarsEarned, result.Summary.StarsEarned)
	merged.TotalAttempts++
	if result.Summary.StarsEarned > 0 {
		completedAt := now
		merged.CompletedAt = &completedAt
	}
	return merged
}

// ProgressService reconciles ended sessions into the progress store
type ProgressService struct {
	store      ProgressStore
	notifier   AchievementNotifier
	retryDelay time.Duration
	now        func() time.Time

	mu      sync.Mutex
	pending []models.SessionResult
}

// NewProgressService creates a progress service. notifier may be nil.
func NewProgressService(store ProgressStore, notifier AchievementNotifier, retryDelay time.Duration) *ProgressService {
	if retryDelay <= 0 {
		retryDelay = 500 * time.Millisecond
	}
	return &ProgressService{
		store:      store,
		notifier:   notifier,
		retryDelay: retryDelay,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Reconcile merges a session result, retrying once. A result that still
// fails is kept for RetryPending.
func (s *ProgressService) Reconcile(ctx context.Context, result models.SessionResult) error {
	if err := s.reconcileWithRetry(ctx, result); err != nil {
		s.retain(result)
		return err
	}
	return nil
}

func (s *ProgressService) reconcileWithRetry(ctx context.Context, result models.SessionResult) error {
	backoff := retry.WithMaxRetries(1, retry.NewConstant(s.retryDelay))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := s.reconcileOnce(ctx, result); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

func (s *ProgressService) reconcileOnce(ctx context.Context, result models.SessionResult) error {
	existing, err := s.store.Fetch(ctx, result.StudentID, result.GameID)
	if err != nil {
		return &PersistenceError{Op: "fetch", StudentID: result.StudentID, GameID: result.GameID, Err: err}
	}

	merged := Merge(existing, result, s.now())
	if err := s.store.Upsert(ctx, merged); err != nil {
		return &PersistenceError{Op: "upsert", StudentID: result.StudentID, GameID: result.GameID, Err: err}
	}

	previousStars := 0
	if existing != nil {
		previousStars = existing.StarsEarned
	}
	if s.notifier != nil && merged.StarsEarned > previousStars {
		if err := s.notifier.NotifyAchievement(ctx, result, merged); err != nil {
			log.Printf("Warning: failed to send achievement notification for student %s: %v", result.StudentID, err)
		}
	}
	return nil
}

func (s *ProgressService) retain(result models.SessionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) >= maxPending {
		dropped := s.pending[0]
		s.pending = s.pending[1:]
		log.Printf("Warning: dropping unsaved session %s for student %s", dropped.SessionID, dropped.StudentID)
	}
	s.pending = append(s.pending, result)
}

// Pending returns the number of results waiting for a retry
func (s *ProgressService) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// PendingFor returns the number of a learner's results waiting for a retry
func (s *ProgressService) PendingFor(studentID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, result := range s.pending {
		if result.StudentID == studentID {
			n++
		}
	}
	return n
}

// RetryPending attempts every retained result once. Results that fail again
// stay queued. It returns how many were saved.
func (s *ProgressService) RetryPending(ctx context.Context) (int, error) {
	return s.retry(ctx, func(models.SessionResult) bool { return true })
}

// RetryPendingFor is RetryPending limited to one learner's results
func (s *ProgressService) RetryPendingFor(ctx context.Context, studentID string) (int, error) {
	return s.retry(ctx, func(result models.SessionResult) bool {
		return result.StudentID == studentID
	})
}

func (s *ProgressService) retry(ctx context.Context, match func(models.SessionResult) bool) (int, error) {
	var batch []models.SessionResult
	s.mu.Lock()
	kept := s.pending[:0:0]
	for _, result := range s.pending {
		if match(result) {
			batch = append(batch, result)
		} else {
			kept = append(kept, result)
		}
	}
	s.pending = kept
	s.mu.Unlock()

	saved := 0
	var errs []error
	for i, result := range batch {
		if ctx.Err() != nil {
			for _, left := range batch[i:] {
				s.retain(left)
			}
			errs = append(errs, ctx.Err())
			break
		}
		if err := s.reconcileOnce(ctx, result); err != nil {
			s.retain(result)
			errs = append(errs, err)
			continue
		}
		saved++
	}
	return saved, errors.Join(errs...)
}

// Get returns a learner's record for one game, or nil when never played
func (s *ProgressService) Get(ctx context.Context, studentID, gameID string) (*models.ProgressRecord, error) {
	record, err := s.store.Fetch(ctx, studentID, gameID)
	if err != nil {
		return nil, &PersistenceError{Op: "fetch", StudentID: studentID, GameID: gameID, Err: err}
	}
	return record, nil
}

// List returns every record of a learner
func (s *ProgressService) List(ctx context.Context, studentID string) ([]models.ProgressRecord, error) {
	records, err := s.store.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, &PersistenceError{Op: "list", StudentID: studentID, Err: err}
	}
	return records, nil
}
