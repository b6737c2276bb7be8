package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mathclash/internal/database"
	"mathclash/internal/models"
)

const progressColumns = "student_id, game_id, best_score, stars_earned, total_attempts, completed_at, updated_at"

// ProgressRepository handles database operations for learners' best-of records
type ProgressRepository struct {
	db database.DBTX
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db database.DBTX) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Fetch retrieves the record for a learner and game, or nil when absent
func (r *ProgressRepository) Fetch(ctx context.Context, studentID, gameID string) (*models.ProgressRecord, error) {
	query := "SELECT " + progressColumns + " FROM game_progress WHERE student_id = ? AND game_id = ?"
	record, err := scanProgress(r.db.QueryRowContext(ctx, query, studentID, gameID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	return record, nil
}

// Upsert inserts or replaces the record keyed by (student_id, game_id)
func (r *ProgressRepository) Upsert(ctx context.Context, record *models.ProgressRecord) error {
	var completedAt any
	if record.CompletedAt != nil {
		completedAt = record.CompletedAt.UTC()
	}
	updatedAt := record.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, r.db.GetDialect().UpsertProgressQuery(),
		record.StudentID,
		record.GameID,
		record.BestScore,
		record.StarsEarned,
		record.TotalAttempts,
		completedAt,
		updatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert progress: %w", err)
	}
	return nil
}

// ListByStudent retrieves every record of a learner ordered by game
func (r *ProgressRepository) ListByStudent(ctx context.Context, studentID string) ([]models.ProgressRecord, error) {
	query := "SELECT " + progressColumns + " FROM game_progress WHERE student_id = ? ORDER BY game_id"
	return r.list(ctx, query, studentID)
}

// All retrieves every record, used by backups
func (r *ProgressRepository) All(ctx context.Context) ([]models.ProgressRecord, error) {
	query := "SELECT " + progressColumns + " FROM game_progress ORDER BY student_id, game_id"
	return r.list(ctx, query)
}

func (r *ProgressRepository) list(ctx context.Context, query string, args ...any) ([]models.ProgressRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	defer rows.Close()

	var records []models.ProgressRecord
	for rows.Next() {
		record, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan progress: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProgress(row scanner) (*models.ProgressRecord, error) {
	record := &models.ProgressRecord{}
	var completedAt sql.NullTime
	err := row.Scan(
		&record.StudentID,
		&record.GameID,
		&record.BestScore,
		&record.StarsEarned,
		&record.TotalAttempts,
		&completedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		t := completedAt.Time
		record.CompletedAt = &t
	}
	return record, nil
}
