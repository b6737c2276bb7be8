package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"mathclash/internal/database"
	"mathclash/internal/models"
	"mathclash/internal/repository"
)

const backupVersion = "1.0"

// BackupData represents the complete database backup structure
type BackupData struct {
	Version      string                  `json:"version"`
	ExportedAt   time.Time               `json:"exported_at"`
	DatabaseType string                  `json:"database_type"`
	Progress     []models.ProgressRecord `json:"progress"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(ctx context.Context, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(ctx, file); err != nil {
		return err
	}
	log.Printf("Database exported successfully to %s", outputPath)
	return nil
}

// ExportToWriter writes the backup as indented JSON
func (s *BackupService) ExportToWriter(ctx context.Context, w io.Writer) error {
	log.Println("Starting database export...")

	records, err := repository.NewProgressRepository(s.db).All(ctx)
	if err != nil {
		return fmt.Errorf("failed to export progress: %w", err)
	}

	backup := &BackupData{
		Version:      backupVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: "universal",
		Progress:     records,
	}
	if backup.Progress == nil {
		backup.Progress = []models.ProgressRecord{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}

	log.Printf("Exported: %d progress records", len(backup.Progress))
	return nil
}

// Import restores a backup file into the database
func (s *BackupService) Import(ctx context.Context, inputPath string) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer file.Close()

	log.Printf("Starting database import from %s...", inputPath)
	return s.ImportFromReader(ctx, file)
}

// ImportFromReader restores a backup in a single transaction. Records are
// upserted on (student_id, game_id).
func (s *BackupService) ImportFromReader(ctx context.Context, reader io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return fmt.Errorf("failed to parse backup: %w", err)
	}
	if backup.Version != backupVersion {
		return fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)
	log.Printf("Importing %d progress records...", len(backup.Progress))

	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		repo := repository.NewProgressRepository(tx)
		for i := range backup.Progress {
			if err := repo.Upsert(ctx, &backup.Progress[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to import progress: %w", err)
	}

	log.Println("Database import completed successfully")
	return nil
}
