package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/conectahub/intranet-api/internal/adapter"
	"github.com/conectahub/intranet-api/internal/models"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// List returns every user with their notifications
func (r *GormUserRepository) List(ctx context.Context) ([]models.User, error) {
	var records []adapter.UserRecord
	if err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return r.withNotifications(ctx, r.db, records)
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.first(ctx, r.db, "id = ?", id)
}

// FindByIdentifier finds a user by email, first name or full name
func (r *GormUserRepository) FindByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	search := strings.ToLower(strings.TrimSpace(identifier))
	if search == "" {
		return nil, ErrNotFound
	}
	return r.first(ctx, r.db, "LOWER(email) = ? OR LOWER(name) = ? OR LOWER(full_name) = ?", search, search, search)
}

// FindByField finds a user by a lookup field
func (r *GormUserRepository) FindByField(ctx context.Context, field, value string) (*models.User, error) {
	column, ok := adapter.UserColumn(field)
	if !ok {
		return nil, ErrNotFound
	}
	if column == "id" {
		return r.first(ctx, r.db, "id = ?", value)
	}
	return r.first(ctx, r.db, fmt.Sprintf("LOWER(%s) = ?", column), strings.ToLower(value))
}

// FindByDepartment lists the users of a department
func (r *GormUserRepository) FindByDepartment(ctx context.Context, departmentValue string) ([]models.User, error) {
	var records []adapter.UserRecord
	err := r.db.WithContext(ctx).
		Where("department_value = ?", departmentValue).
		Order("created_at ASC, id ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("listing department %s: %w", departmentValue, err)
	}
	return r.withNotifications(ctx, r.db, records)
}

// EmailExists reports whether another user already uses the email
func (r *GormUserRepository) EmailExists(ctx context.Context, email, excludeID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&adapter.UserRecord{}).
		Where("LOWER(email) = ? AND id <> ?", strings.ToLower(email), excludeID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking email: %w", err)
	}
	return count > 0, nil
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return insertUsers(tx, []models.User{*user})
	})
}

// Update applies a sparse patch inside a transaction
func (r *GormUserRepository) Update(ctx context.Context, id string, change UserChange) (*models.User, error) {
	var updated *models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := r.first(ctx, tx, "id = ?", id)
		if err != nil {
			return err
		}
		patch, err := change(*current)
		if err != nil {
			return err
		}
		if patch.Email != nil {
			var count int64
			if err := tx.Model(&adapter.UserRecord{}).
				Where("LOWER(email) = ? AND id <> ?", strings.ToLower(*patch.Email), id).
				Count(&count).Error; err != nil {
				return fmt.Errorf("checking email: %w", err)
			}
			if count > 0 {
				return ErrDuplicate
			}
		}
		cols, err := adapter.UserPatchColumns(patch)
		if err != nil {
			return err
		}
		if len(cols) > 0 {
			if err := tx.Model(&adapter.UserRecord{}).Where("id = ?", id).Updates(cols).Error; err != nil {
				return fmt.Errorf("updating user %s: %w", id, translate(err))
			}
		}
		updated, err = r.first(ctx, tx, "id = ?", id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a user and their notifications
func (r *GormUserRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&adapter.NotificationRecord{}).Error; err != nil {
			return fmt.Errorf("deleting notifications of %s: %w", id, err)
		}
		if err := tx.Where("id = ?", id).Delete(&adapter.UserRecord{}).Error; err != nil {
			return fmt.Errorf("deleting user %s: %w", id, err)
		}
		return nil
	})
}

// ReplaceAll overwrites the users table and the embedded notifications
func (r *GormUserRepository) ReplaceAll(ctx context.Context, users []models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&adapter.NotificationRecord{}).Error; err != nil {
			return fmt.Errorf("clearing notifications: %w", err)
		}
		if err := tx.Where("1 = 1").Delete(&adapter.UserRecord{}).Error; err != nil {
			return fmt.Errorf("clearing users: %w", err)
		}
		return insertUsers(tx, users)
	})
}

// first loads the oldest user matching the condition. db is the base handle
// (repository connection or open transaction) the lookups run on.
func (r *GormUserRepository) first(ctx context.Context, db *gorm.DB, query string, args ...any) (*models.User, error) {
	var record adapter.UserRecord
	err := db.WithContext(ctx).Model(&adapter.UserRecord{}).
		Where(query, args...).
		Order("created_at ASC, id ASC").
		Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("finding user: %w", err)
	}
	users, err := r.withNotifications(ctx, db, []adapter.UserRecord{record})
	if err != nil {
		return nil, err
	}
	return &users[0], nil
}

// withNotifications loads the notifications of every record in one query.
func (r *GormUserRepository) withNotifications(ctx context.Context, db *gorm.DB, records []adapter.UserRecord) ([]models.User, error) {
	users := make([]models.User, 0, len(records))
	if len(records) == 0 {
		return users, nil
	}
	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
	}
	var rows []adapter.NotificationRecord
	err := db.WithContext(ctx).Model(&adapter.NotificationRecord{}).
		Where("user_id IN ?", ids).
		Order(newestFirst).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("loading notifications: %w", err)
	}
	byUser := make(map[string][]adapter.NotificationRecord, len(records))
	for _, row := range rows {
		byUser[row.UserID] = append(byUser[row.UserID], row)
	}
	for _, rec := range records {
		users = append(users, adapter.FromUserRecord(rec, byUser[rec.ID]))
	}
	return users, nil
}

func insertUsers(tx *gorm.DB, users []models.User) error {
	if len(users) == 0 {
		return nil
	}
	records := make([]adapter.UserRecord, len(users))
	var notifications []adapter.NotificationRecord
	for i, u := range users {
		records[i] = adapter.ToUserRecord(u)
		for _, n := range u.Notifications {
			notifications = append(notifications, adapter.ToNotificationRecord(u.ID, n))
		}
	}
	if err := tx.CreateInBatches(&records, batchSize).Error; err != nil {
		return fmt.Errorf("inserting users: %w", translate(err))
	}
	if len(notifications) > 0 {
		if err := tx.CreateInBatches(&notifications, batchSize).Error; err != nil {
			return fmt.Errorf("inserting notifications: %w", err)
		}
	}
	return nil
}

// translate maps driver-level unique violations onto ErrDuplicate.
func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}
