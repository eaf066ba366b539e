package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/conectahub/intranet-api/internal/adapter"
	"github.com/conectahub/intranet-api/internal/models"
)

// GormMessageRepository is a GORM implementation of MessageRepository
type GormMessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &GormMessageRepository{db: db}
}

// List returns every message oldest first
func (r *GormMessageRepository) List(ctx context.Context) ([]models.Message, error) {
	return r.find(r.db.WithContext(ctx))
}

// ListForUser returns the messages sent or received by the user
func (r *GormMessageRepository) ListForUser(ctx context.Context, userID string) ([]models.Message, error) {
	return r.find(r.db.WithContext(ctx).Where("from_user_id = ? OR to_user_id = ?", userID, userID))
}

// Create creates a new message
func (r *GormMessageRepository) Create(ctx context.Context, msg *models.Message) error {
	record := adapter.ToMessageRecord(*msg)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("creating message: %w", err)
	}
	return nil
}

// MarkRead flags a message as read
func (r *GormMessageRepository) MarkRead(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record adapter.MessageRecord
		if err := tx.Where("id = ?", id).Take(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("finding message %s: %w", id, err)
		}
		if err := tx.Model(&adapter.MessageRecord{}).Where("id = ?", id).Update("read", true).Error; err != nil {
			return fmt.Errorf("marking message %s: %w", id, err)
		}
		return nil
	})
}

// ReplaceAll overwrites the messages table
func (r *GormMessageRepository) ReplaceAll(ctx context.Context, messages []models.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&adapter.MessageRecord{}).Error; err != nil {
			return fmt.Errorf("clearing messages: %w", err)
		}
		if len(messages) == 0 {
			return nil
		}
		records := make([]adapter.MessageRecord, len(messages))
		for i, m := range messages {
			records[i] = adapter.ToMessageRecord(m)
		}
		if err := tx.CreateInBatches(&records, batchSize).Error; err != nil {
			return fmt.Errorf("inserting messages: %w", err)
		}
		return nil
	})
}

func (r *GormMessageRepository) find(query *gorm.DB) ([]models.Message, error) {
	var records []adapter.MessageRecord
	if err := query.Order("created_at ASC, id ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	messages := make([]models.Message, 0, len(records))
	for _, rec := range records {
		messages = append(messages, adapter.FromMessageRecord(rec))
	}
	return messages, nil
}
