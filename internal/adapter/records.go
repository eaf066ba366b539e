package adapter

import (
	"time"

	"github.com/conectahub/intranet-api/internal/models"
)

// UserRecord is the row shape of the users table.
type UserRecord struct {
	ID               string            `gorm:"column:id;primaryKey;type:varchar(64)" json:"id"`
	FullName         string            `gorm:"column:full_name;type:varchar(255)" json:"full_name"`
	Name             string            `gorm:"column:name;type:varchar(255)" json:"name"`
	Email            string            `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	EmailKey         string            `gorm:"column:email_key;type:varchar(255);uniqueIndex" json:"email_key"`
	Password         string            `gorm:"column:password;type:varchar(255);not null" json:"password"`
	Department       string            `gorm:"column:department;type:varchar(255)" json:"department"`
	DepartmentValue  string            `gorm:"column:department_value;type:varchar(100);index" json:"department_value"`
	Role             string            `gorm:"column:role;type:varchar(100)" json:"role"`
	Position         string            `gorm:"column:position;type:varchar(255)" json:"position"`
	Phone            string            `gorm:"column:phone;type:varchar(50)" json:"phone"`
	Location         string            `gorm:"column:location;type:varchar(255)" json:"location"`
	RegistrationDate time.Time         `gorm:"column:registration_date" json:"registration_date"`
	LastLogin        time.Time         `gorm:"column:last_login" json:"last_login"`
	Avatar           *string           `gorm:"column:avatar;type:text" json:"avatar"`
	IsAdmin          bool              `gorm:"column:is_admin;not null" json:"is_admin"`
	Stats            models.Stats      `gorm:"column:stats;serializer:json;type:text" json:"stats"`
	Skills           []models.Skill    `gorm:"column:skills;serializer:json;type:text" json:"skills"`
	RecentActivities []models.Activity `gorm:"column:recent_activities;serializer:json;type:text" json:"recent_activities"`
	CreatedAt        time.Time         `gorm:"column:created_at" json:"created_at"`
}

func (UserRecord) TableName() string { return "users" }

// TaskRecord is the row shape of the tasks table.
type TaskRecord struct {
	ID              string     `gorm:"column:id;primaryKey;type:varchar(64)" json:"id"`
	Title           string     `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Description     string     `gorm:"column:description;type:text" json:"description"`
	Department      string     `gorm:"column:department;type:varchar(255)" json:"department"`
	DepartmentValue string     `gorm:"column:department_value;type:varchar(100);index" json:"department_value"`
	CreatedBy       string     `gorm:"column:created_by;type:varchar(64)" json:"created_by"`
	CreatedByName   string     `gorm:"column:created_by_name;type:varchar(255)" json:"created_by_name"`
	Points          int        `gorm:"column:points;not null" json:"points"`
	Status          string     `gorm:"column:status;type:varchar(20);not null;index" json:"status"`
	AssignedTo      *string    `gorm:"column:assigned_to;type:varchar(64);index" json:"assigned_to"`
	AssignedAt      *time.Time `gorm:"column:assigned_at" json:"assigned_at"`
	CompletedAt     *time.Time `gorm:"column:completed_at" json:"completed_at"`
	CreatedAt       time.Time  `gorm:"column:created_at" json:"created_at"`
}

func (TaskRecord) TableName() string { return "tasks" }

// MessageRecord is the row shape of the messages table.
type MessageRecord struct {
	ID         string    `gorm:"column:id;primaryKey;type:varchar(64)" json:"id"`
	FromUserID string    `gorm:"column:from_user_id;type:varchar(64);index" json:"from_user_id"`
	ToUserID   string    `gorm:"column:to_user_id;type:varchar(64);index" json:"to_user_id"`
	Content    string    `gorm:"column:content;type:text" json:"content"`
	Read       bool      `gorm:"column:read;not null" json:"read"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
}

func (MessageRecord) TableName() string { return "messages" }

// NotificationRecord is the row shape of the notifications table. Each row
// is one recipient's copy.
type NotificationRecord struct {
	ID          string    `gorm:"column:id;primaryKey;type:varchar(64)" json:"id"`
	UserID      string    `gorm:"column:user_id;type:varchar(64);index;not null" json:"user_id"`
	Type        string    `gorm:"column:type;type:varchar(50)" json:"type"`
	TaskID      *string   `gorm:"column:task_id;type:varchar(64)" json:"task_id"`
	Title       string    `gorm:"column:title;type:varchar(255)" json:"title"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	Icon        string    `gorm:"column:icon;type:varchar(100)" json:"icon"`
	Read        bool      `gorm:"column:read;not null" json:"read"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (NotificationRecord) TableName() string { return "notifications" }

// AllRecords lists the row types the remote schema is migrated from.
func AllRecords() []any {
	return []any{
		&UserRecord{},
		&TaskRecord{},
		&MessageRecord{},
		&NotificationRecord{},
	}
}
