package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/conectahub/intranet-api/internal/adapter"
	"github.com/conectahub/intranet-api/internal/constants"
	"github.com/conectahub/intranet-api/internal/models"
)

// GormNotificationRepository stores one row per recipient copy.
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Deliver inserts the copies of known users and trims each list to the cap
func (r *GormNotificationRepository) Deliver(ctx context.Context, deliveries []Delivery) (int, error) {
	if len(deliveries) == 0 {
		return 0, nil
	}
	delivered := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]string, 0, len(deliveries))
		for _, d := range deliveries {
			ids = append(ids, d.UserID)
		}
		var known []string
		if err := tx.Model(&adapter.UserRecord{}).Where("id IN ?", ids).Pluck("id", &known).Error; err != nil {
			return fmt.Errorf("resolving recipients: %w", err)
		}
		exists := make(map[string]bool, len(known))
		for _, id := range known {
			exists[id] = true
		}

		rows := make([]adapter.NotificationRecord, 0, len(deliveries))
		for _, d := range deliveries {
			if exists[d.UserID] {
				rows = append(rows, adapter.ToNotificationRecord(d.UserID, d.Notification))
			}
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(&rows, batchSize).Error; err != nil {
			return fmt.Errorf("inserting notifications: %w", err)
		}
		for _, id := range known {
			if err := trimNotifications(tx, id, constants.MaxNotifications); err != nil {
				return err
			}
		}
		delivered = len(rows)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return delivered, nil
}

// ListForUser returns a user's notifications, newest first
func (r *GormNotificationRepository) ListForUser(ctx context.Context, userID string) ([]models.Notification, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&adapter.UserRecord{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("finding user %s: %w", userID, err)
	}
	if count == 0 {
		return nil, ErrNotFound
	}

	var rows []adapter.NotificationRecord
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order(newestFirst).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	list := make([]models.Notification, 0, len(rows))
	for _, row := range rows {
		list = append(list, adapter.FromNotificationRecord(row))
	}
	return list, nil
}

// MarkRead flags one of the user's notifications as read
func (r *GormNotificationRepository) MarkRead(ctx context.Context, userID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row adapter.NotificationRecord
		if err := tx.Where("id = ? AND user_id = ?", id, userID).Take(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("finding notification %s: %w", id, err)
		}
		if err := tx.Model(&adapter.NotificationRecord{}).Where("id = ?", id).Update("read", true).Error; err != nil {
			return fmt.Errorf("marking notification %s: %w", id, err)
		}
		return nil
	})
}

// MarkAllRead flags every notification of the user as read
func (r *GormNotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&adapter.UserRecord{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return fmt.Errorf("finding user %s: %w", userID, err)
		}
		if count == 0 {
			return ErrNotFound
		}
		err := tx.Model(&adapter.NotificationRecord{}).
			Where("user_id = ?", userID).
			Update("read", true).Error
		if err != nil {
			return fmt.Errorf("marking notifications of %s: %w", userID, err)
		}
		return nil
	})
}

// trimNotifications keeps only the newest limit rows of a user.
func trimNotifications(tx *gorm.DB, userID string, limit int) error {
	var ids []string
	err := tx.Model(&adapter.NotificationRecord{}).
		Where("user_id = ?", userID).
		Order(newestFirst).
		Pluck("id", &ids).Error
	if err != nil {
		return fmt.Errorf("listing notifications of %s: %w", userID, err)
	}
	if len(ids) <= limit {
		return nil
	}
	if err := tx.Where("id IN ?", ids[limit:]).Delete(&adapter.NotificationRecord{}).Error; err != nil {
		return fmt.Errorf("trimming notifications of %s: %w", userID, err)
	}
	return nil
}
