package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/conectahub/intranet-api/internal/adapter"
)

type index struct {
	model   any
	table   string
	name    string
	columns []string
}

// Composite indexes that struct tags do not declare.
var indexes = []index{
	// Newest-first notification lists and trimming
	{&adapter.NotificationRecord{}, "notifications", "idx_notifications_user_created", []string{"user_id", "created_at"}},

	// Conversation reads
	{&adapter.MessageRecord{}, "messages", "idx_messages_created_at", []string{"created_at"}},

	// Department task listings in creation order
	{&adapter.TaskRecord{}, "tasks", "idx_tasks_department_created", []string{"department_value", "created_at"}},
}

// AddIndexes adds the composite indexes, skipping the ones already present.
func AddIndexes(db *gorm.DB) error {
	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.model, idx.name) {
			continue
		}
		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, strings.Join(idx.columns, ", "))
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}
	return nil
}
