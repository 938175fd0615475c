package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/zhouzirui/assistentes/backend/internal/model/chat"
)

// interactionRecord is the relational row for one interaction. The
// auto-increment ID carries insertion order; CreatedAt is the interaction
// timestamp and drives idle-session sweeping.
type interactionRecord struct {
	ID          uint      `gorm:"primaryKey"`
	SessionID   string    `gorm:"size:191;index:idx_interactions_session"`
	AssistantID string    `gorm:"size:64"`
	Question    string    `gorm:"type:text"`
	Answer      string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"index"`
}

// TableName overrides the table name.
func (interactionRecord) TableName() string {
	return "interactions"
}

// GormStore persists transcripts through GORM, so any dialect GORM supports
// (SQLite, Postgres, MySQL) can back the history.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore migrates the schema and returns the store.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&interactionRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Append implements Store. Insert and trim share one transaction.
func (s *GormStore) Append(ctx context.Context, sessionID string, item chat.Interaction) error {
	record := interactionRecord{
		SessionID:   sessionID,
		AssistantID: item.AssistantID,
		Question:    item.Question,
		Answer:      item.Answer,
		CreatedAt:   item.Timestamp.UTC(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&interactionRecord{}).Where("session_id = ?", sessionID).Count(&count).Error; err != nil {
			return err
		}
		if count <= MaxInteractions {
			return nil
		}

		var stale []uint
		if err := tx.Model(&interactionRecord{}).
			Where("session_id = ?", sessionID).
			Order("id asc").
			Limit(int(count-MaxInteractions)).
			Pluck("id", &stale).Error; err != nil {
			return err
		}
		return tx.Delete(&interactionRecord{}, stale).Error
	})
	if err != nil {
		return fmt.Errorf("failed to append interaction: %w", err)
	}
	return nil
}

// List implements Store.
func (s *GormStore) List(ctx context.Context, sessionID string) ([]chat.Interaction, error) {
	var records []interactionRecord
	if err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("id asc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	items := make([]chat.Interaction, len(records))
	for i, record := range records {
		items[i] = chat.Interaction{
			AssistantID: record.AssistantID,
			Question:    record.Question,
			Answer:      record.Answer,
			Timestamp:   record.CreatedAt.UTC(),
		}
	}
	return items, nil
}

// Clear implements Store.
func (s *GormStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&interactionRecord{}).Error; err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Sweep implements Sweeper. Rows hold UTC timestamps and SQLite compares
// them as text, so cutoff is normalized to UTC as well.
func (s *GormStore) Sweep(ctx context.Context, cutoff time.Time) (int, error) {
	cutoff = cutoff.UTC()

	var idle []string
	err := s.db.WithContext(ctx).Model(&interactionRecord{}).
		Select("session_id").
		Group("session_id").
		Having("MAX(created_at) < ?", cutoff).
		Pluck("session_id", &idle).Error
	if err != nil {
		return 0, fmt.Errorf("failed to find idle sessions: %w", err)
	}
	if len(idle) == 0 {
		return 0, nil
	}

	if err := s.db.WithContext(ctx).Where("session_id IN ?", idle).Delete(&interactionRecord{}).Error; err != nil {
		return 0, fmt.Errorf("failed to delete idle sessions: %w", err)
	}
	return len(idle), nil
}

// Close closes the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		if errors.Is(err, gorm.ErrInvalidDB) {
			return nil
		}
		return err
	}
	return sqlDB.Close()
}
