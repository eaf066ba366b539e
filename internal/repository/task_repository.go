package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/conectahub/intranet-api/internal/adapter"
	"github.com/conectahub/intranet-api/internal/models"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// List retrieves tasks with filtering
func (r *GormTaskRepository) List(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	query := r.db.WithContext(ctx).Model(&adapter.TaskRecord{})

	if filter.DepartmentValue != "" {
		query = query.Where("department_value = ?", filter.DepartmentValue)
	}
	if filter.AssignedTo != "" {
		query = query.Where("assigned_to = ?", filter.AssignedTo)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}

	var records []adapter.TaskRecord
	if err := query.Order("created_at ASC, id ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}

	tasks := make([]models.Task, 0, len(records))
	for _, rec := range records {
		tasks = append(tasks, adapter.FromTaskRecord(rec))
	}
	return tasks, nil
}

// FindByID finds a task by ID
func (r *GormTaskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	return findTask(r.db.WithContext(ctx), id)
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	record := adapter.ToTaskRecord(*task)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("creating task: %w", err)
	}
	return nil
}

// Update applies a sparse patch inside a transaction
func (r *GormTaskRepository) Update(ctx context.Context, id string, change TaskChange) (*models.Task, error) {
	var updated *models.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := findTask(tx, id)
		if err != nil {
			return err
		}
		patch, err := change(*current)
		if err != nil {
			return err
		}
		if cols := adapter.TaskPatchColumns(patch); len(cols) > 0 {
			if err := tx.Model(&adapter.TaskRecord{}).Where("id = ?", id).Updates(cols).Error; err != nil {
				return fmt.Errorf("updating task %s: %w", id, err)
			}
		}
		updated, err = findTask(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ReplaceAll overwrites the tasks table
func (r *GormTaskRepository) ReplaceAll(ctx context.Context, tasks []models.Task) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&adapter.TaskRecord{}).Error; err != nil {
			return fmt.Errorf("clearing tasks: %w", err)
		}
		if len(tasks) == 0 {
			return nil
		}
		records := make([]adapter.TaskRecord, len(tasks))
		for i, t := range tasks {
			records[i] = adapter.ToTaskRecord(t)
		}
		if err := tx.CreateInBatches(&records, batchSize).Error; err != nil {
			return fmt.Errorf("inserting tasks: %w", err)
		}
		return nil
	})
}

func findTask(db *gorm.DB, id string) (*models.Task, error) {
	var record adapter.TaskRecord
	if err := db.Where("id = ?", id).Take(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("finding task %s: %w", id, err)
	}
	task := adapter.FromTaskRecord(record)
	return &task, nil
}
