// Package adapter translates between the application models and the
// snake_case rows of the remote backend. It is the only place that knows
// the remote column names.
package adapter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/conectahub/intranet-api/internal/models"
)

// ToUserRecord converts a user into its row. Notifications are stored in
// their own table and are not part of the row.
func ToUserRecord(u models.User) UserRecord {
	return UserRecord{
		ID:               u.ID,
		FullName:         u.FullName,
		Name:             u.Name,
		Email:            u.Email,
		EmailKey:         EmailKey(u.Email),
		Password:         u.PasswordHash,
		Department:       u.Department,
		DepartmentValue:  u.DepartmentValue,
		Role:             u.Role,
		Position:         u.Position,
		Phone:            u.Phone,
		Location:         u.Location,
		RegistrationDate: u.RegistrationDate,
		LastLogin:        u.LastLogin,
		Avatar:           u.Avatar,
		IsAdmin:          u.IsAdmin,
		Stats:            u.Stats,
		Skills:           nonNil(u.Skills),
		RecentActivities: nonNil(u.RecentActivities),
		CreatedAt:        u.RegistrationDate,
	}
}

// EmailKey is the case-folded email the unique index is declared on, so
// addresses differing only in case collide in the database itself.
func EmailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FromUserRecord converts a row back into a user, attaching the given
// notification rows in their stored order.
func FromUserRecord(r UserRecord, notifications []NotificationRecord) models.User {
	user := models.User{
		ID:               r.ID,
		FullName:         r.FullName,
		Name:             r.Name,
		Email:            r.Email,
		PasswordHash:     r.Password,
		Department:       r.Department,
		DepartmentValue:  r.DepartmentValue,
		Role:             r.Role,
		Position:         r.Position,
		Phone:            r.Phone,
		Location:         r.Location,
		RegistrationDate: r.RegistrationDate,
		LastLogin:        r.LastLogin,
		Avatar:           r.Avatar,
		IsAdmin:          r.IsAdmin,
		Stats:            r.Stats,
		Skills:           nonNil(r.Skills),
		RecentActivities: nonNil(r.RecentActivities),
		Notifications:    make([]models.Notification, 0, len(notifications)),
	}
	for _, n := range notifications {
		user.Notifications = append(user.Notifications, FromNotificationRecord(n))
	}
	return user
}

// UserPatchColumns renders the present fields of a patch as a column map.
// JSON columns are pre-encoded because map updates bypass gorm serializers.
func UserPatchColumns(p models.UserPatch) (map[string]any, error) {
	cols := make(map[string]any)
	setString(cols, "full_name", p.FullName)
	setString(cols, "name", p.Name)
	setString(cols, "email", p.Email)
	if p.Email != nil {
		cols["email_key"] = EmailKey(*p.Email)
	}
	setString(cols, "password", p.PasswordHash)
	setString(cols, "department", p.Department)
	setString(cols, "department_value", p.DepartmentValue)
	setString(cols, "role", p.Role)
	setString(cols, "position", p.Position)
	setString(cols, "phone", p.Phone)
	setString(cols, "location", p.Location)
	setString(cols, "avatar", p.Avatar)
	if p.LastLogin != nil {
		cols["last_login"] = *p.LastLogin
	}
	if p.IsAdmin != nil {
		cols["is_admin"] = *p.IsAdmin
	}
	if p.Stats != nil {
		if err := setJSON(cols, "stats", *p.Stats); err != nil {
			return nil, err
		}
	}
	if p.Skills != nil {
		if err := setJSON(cols, "skills", nonNil(*p.Skills)); err != nil {
			return nil, err
		}
	}
	if p.RecentActivities != nil {
		if err := setJSON(cols, "recent_activities", nonNil(*p.RecentActivities)); err != nil {
			return nil, err
		}
	}
	return cols, nil
}

// TaskPatchColumns renders the present fields of a task patch as a column map.
func TaskPatchColumns(p models.TaskPatch) map[string]any {
	cols := make(map[string]any)
	setString(cols, "title", p.Title)
	setString(cols, "description", p.Description)
	setString(cols, "assigned_to", p.AssignedTo)
	if p.Points != nil {
		cols["points"] = *p.Points
	}
	if p.Status != nil {
		cols["status"] = string(*p.Status)
	}
	if p.AssignedAt != nil {
		cols["assigned_at"] = *p.AssignedAt
	}
	if p.CompletedAt != nil {
		cols["completed_at"] = *p.CompletedAt
	}
	return cols
}

var userColumns = map[string]string{
	"id":              "id",
	"email":           "email",
	"name":            "name",
	"fullName":        "full_name",
	"department":      "department",
	"departmentValue": "department_value",
	"role":            "role",
	"position":        "position",
	"phone":           "phone",
	"location":        "location",
}

// UserColumn maps a lookup field name to its column.
func UserColumn(field string) (string, bool) {
	col, ok := userColumns[field]
	return col, ok
}

func ToTaskRecord(t models.Task) TaskRecord {
	return TaskRecord{
		ID:              t.ID,
		Title:           t.Title,
		Description:     t.Description,
		Department:      t.Department,
		DepartmentValue: t.DepartmentValue,
		CreatedBy:       t.CreatedBy,
		CreatedByName:   t.CreatedByName,
		Points:          t.Points,
		Status:          string(t.Status),
		AssignedTo:      t.AssignedTo,
		AssignedAt:      t.AssignedAt,
		CompletedAt:     t.CompletedAt,
		CreatedAt:       t.CreatedAt,
	}
}

func FromTaskRecord(r TaskRecord) models.Task {
	return models.Task{
		ID:              r.ID,
		Title:           r.Title,
		Description:     r.Description,
		Department:      r.Department,
		DepartmentValue: r.DepartmentValue,
		CreatedBy:       r.CreatedBy,
		CreatedByName:   r.CreatedByName,
		CreatedAt:       r.CreatedAt,
		Points:          r.Points,
		Status:          models.TaskStatus(r.Status),
		AssignedTo:      r.AssignedTo,
		AssignedAt:      r.AssignedAt,
		CompletedAt:     r.CompletedAt,
	}
}

// ToMessageRecord maps the message timestamp onto created_at.
func ToMessageRecord(m models.Message) MessageRecord {
	return MessageRecord{
		ID:         m.ID,
		FromUserID: m.FromUserID,
		ToUserID:   m.ToUserID,
		Content:    m.Content,
		Read:       m.Read,
		CreatedAt:  m.Timestamp,
	}
}

func FromMessageRecord(r MessageRecord) models.Message {
	return models.Message{
		ID:         r.ID,
		FromUserID: r.FromUserID,
		ToUserID:   r.ToUserID,
		Content:    r.Content,
		Timestamp:  r.CreatedAt,
		Read:       r.Read,
	}
}

// ToNotificationRecord builds the row holding userID's copy of n.
func ToNotificationRecord(userID string, n models.Notification) NotificationRecord {
	return NotificationRecord{
		ID:          n.ID,
		UserID:      userID,
		Type:        n.Type,
		TaskID:      n.TaskID,
		Title:       n.Title,
		Description: n.Description,
		Icon:        n.Icon,
		Read:        n.Read,
		CreatedAt:   n.Timestamp,
	}
}

func FromNotificationRecord(r NotificationRecord) models.Notification {
	return models.Notification{
		ID:          r.ID,
		Type:        r.Type,
		TaskID:      r.TaskID,
		Title:       r.Title,
		Description: r.Description,
		Icon:        r.Icon,
		Timestamp:   r.CreatedAt,
		Read:        r.Read,
	}
}

func setString(cols map[string]any, column string, value *string) {
	if value != nil {
		cols[column] = *value
	}
}

func setJSON(cols map[string]any, column string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", column, err)
	}
	cols[column] = string(data)
	return nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
