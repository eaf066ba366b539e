package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/conectahub/intranet-api/internal/adapter"
	"github.com/conectahub/intranet-api/internal/constants"
)

const (
	batchSize   = 100
	newestFirst = "created_at DESC, id DESC"
)

// NewRemoteStorage returns repositories backed by a relational database.
func NewRemoteStorage(db *gorm.DB) *Storage {
	return &Storage{
		Mode:          constants.StorageModeRemote,
		Users:         NewUserRepository(db),
		Tasks:         NewTaskRepository(db),
		Messages:      NewMessageRepository(db),
		Notifications: NewNotificationRepository(db),
		clear: func(ctx context.Context) error {
			return clearTables(ctx, db)
		},
	}
}

func clearTables(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, record := range adapter.AllRecords() {
			if err := tx.Where("1 = 1").Delete(record).Error; err != nil {
				return fmt.Errorf("clearing %T: %w", record, err)
			}
		}
		return nil
	})
}
