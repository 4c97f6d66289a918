// Package storage persists a record of every terminal download job so the
// bot can answer /history queries and operators can audit usage.
package storage

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Outcome labels the terminal state of a recorded download
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
)

// DownloadRecord is one terminal download job
type DownloadRecord struct {
	ID        uint   `gorm:"primaryKey"`
	JobID     string `gorm:"index"`
	UserID    int64  `gorm:"index"`
	ChatID    int64
	URL       string
	Filename  string
	SizeBytes int64
	Outcome   Outcome
	ErrorKind string
	CreatedAt time.Time
}

// HistoryStore persists download records in a sqlite database
type HistoryStore struct {
	db *gorm.DB
}

// OpenHistoryStore opens (and migrates) the history database at path.
// Use ":memory:" for an ephemeral store.
func OpenHistoryStore(path string) (*HistoryStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.AutoMigrate(&DownloadRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate history schema: %w", err)
	}

	return &HistoryStore{db: db}, nil
}

// Record inserts a terminal download record
func (s *HistoryStore) Record(record *DownloadRecord) error {
	if err := s.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to record download: %w", err)
	}
	return nil
}

// RecentForUser returns the user's most recent records, newest first
func (s *HistoryStore) RecentForUser(userID int64, limit int) ([]DownloadRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	var records []DownloadRecord
	err := s.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query download history: %w", err)
	}
	return records, nil
}

// CountByOutcome returns how many records a user has with the given outcome
func (s *HistoryStore) CountByOutcome(userID int64, outcome Outcome) (int64, error) {
	var count int64
	err := s.db.
		Model(&DownloadRecord{}).
		Where("user_id = ? AND outcome = ?", userID, outcome).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count download history: %w", err)
	}
	return count, nil
}
