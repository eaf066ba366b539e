package repository

import (
	"context"
	"errors"

	"github.com/conectahub/intranet-api/internal/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("repository: record not found")
	// ErrDuplicate is returned when a unique attribute is already taken.
	ErrDuplicate = errors.New("repository: duplicate record")
)

// UserChange derives a patch from the current state of a user. It runs
// atomically with the write, so the patch may depend on current values.
type UserChange func(current models.User) (models.UserPatch, error)

// TaskChange derives a patch from the current state of a task.
type TaskChange func(current models.Task) (models.TaskPatch, error)

// SetUser returns a UserChange applying a fixed patch.
func SetUser(patch models.UserPatch) UserChange {
	return func(models.User) (models.UserPatch, error) { return patch, nil }
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// List returns every user in storage order
	List(ctx context.Context) ([]models.User, error)

	// FindByID finds a user by exact ID
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByIdentifier finds the first user whose email, first name or full
	// name equals the identifier, ignoring case
	FindByIdentifier(ctx context.Context, identifier string) (*models.User, error)

	// FindByField finds the first user whose field equals value. The id
	// field matches exactly, every other field ignores case.
	FindByField(ctx context.Context, field, value string) (*models.User, error)

	// FindByDepartment lists the users of a department
	FindByDepartment(ctx context.Context, departmentValue string) ([]models.User, error)

	// EmailExists reports whether another user already uses the email
	EmailExists(ctx context.Context, email, excludeID string) (bool, error)

	// Create stores a new user
	Create(ctx context.Context, user *models.User) error

	// Update applies the patch produced by change and returns the result
	Update(ctx context.Context, id string, change UserChange) (*models.User, error)

	// Delete removes a user. Deleting a missing user is not an error.
	Delete(ctx context.Context, id string) error

	// ReplaceAll overwrites the whole collection
	ReplaceAll(ctx context.Context, users []models.User) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// List retrieves tasks matching the filter in creation order
	List(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)

	// FindByID finds a task by ID
	FindByID(ctx context.Context, id string) (*models.Task, error)

	// Create stores a new task
	Create(ctx context.Context, task *models.Task) error

	// Update applies the patch produced by change and returns the result
	Update(ctx context.Context, id string, change TaskChange) (*models.Task, error)

	// ReplaceAll overwrites the whole collection
	ReplaceAll(ctx context.Context, tasks []models.Task) error
}

// MessageRepository defines the interface for message data access
type MessageRepository interface {
	// List returns every message in storage order
	List(ctx context.Context) ([]models.Message, error)

	// ListForUser returns the messages sent or received by the user
	ListForUser(ctx context.Context, userID string) ([]models.Message, error)

	// Create stores a new message
	Create(ctx context.Context, msg *models.Message) error

	// MarkRead flags a message as read
	MarkRead(ctx context.Context, id string) error

	// ReplaceAll overwrites the whole collection
	ReplaceAll(ctx context.Context, messages []models.Message) error
}

// Delivery is one recipient's copy of a notification.
type Delivery struct {
	UserID       string
	Notification models.Notification
}

// NotificationRepository defines the interface for per-user notifications
type NotificationRepository interface {
	// Deliver prepends each copy to its recipient's list, keeping the newest
	// entries up to the cap. Copies for unknown users are dropped. It
	// returns the number of copies stored.
	Deliver(ctx context.Context, deliveries []Delivery) (int, error)

	// ListForUser returns a user's notifications, newest first
	ListForUser(ctx context.Context, userID string) ([]models.Notification, error)

	// MarkRead flags one of the user's notifications as read
	MarkRead(ctx context.Context, userID, id string) error

	// MarkAllRead flags every notification of the user as read
	MarkAllRead(ctx context.Context, userID string) error
}

// Storage bundles the repositories of one backend.
type Storage struct {
	Mode          string
	Users         UserRepository
	Tasks         TaskRepository
	Messages      MessageRepository
	Notifications NotificationRepository

	clear func(ctx context.Context) error
}

// Clear removes every persisted collection of the backend.
func (s *Storage) Clear(ctx context.Context) error {
	if s.clear == nil {
		return nil
	}
	return s.clear(ctx)
}
