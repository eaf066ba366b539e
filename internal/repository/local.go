package repository

import (
	"context"
	"strings"

	"github.com/conectahub/intranet-api/internal/constants"
	"github.com/conectahub/intranet-api/internal/models"
	"github.com/conectahub/intranet-api/internal/recordstore"
)

// NewLocalStorage returns repositories backed by the record store. Users
// carry their notifications inline.
func NewLocalStorage(store *recordstore.Store) *Storage {
	return &Storage{
		Mode:          constants.StorageModeLocal,
		Users:         &localUserRepository{store: store},
		Tasks:         &localTaskRepository{store: store},
		Messages:      &localMessageRepository{store: store},
		Notifications: &localNotificationRepository{store: store},
		clear:         store.Clear,
	}
}

type localUserRepository struct {
	store *recordstore.Store
}

func (r *localUserRepository) List(ctx context.Context) ([]models.User, error) {
	return recordstore.GetAll[models.User](ctx, r.store, recordstore.Users)
}

func (r *localUserRepository) find(ctx context.Context, match func(models.User) bool) (*models.User, error) {
	var found *models.User
	err := recordstore.Read(ctx, r.store, recordstore.Users, func(users []models.User) error {
		for i := range users {
			if match(users[i]) {
				found = &users[i]
				return nil
			}
		}
		return ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (r *localUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.find(ctx, func(u models.User) bool { return u.ID == id })
}

func (r *localUserRepository) FindByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	return r.find(ctx, func(u models.User) bool { return u.MatchesIdentifier(identifier) })
}

func (r *localUserRepository) FindByField(ctx context.Context, field, value string) (*models.User, error) {
	return r.find(ctx, func(u models.User) bool {
		current, ok := u.FieldValue(field)
		if !ok {
			return false
		}
		if field == "id" {
			return current == value
		}
		return strings.EqualFold(current, value)
	})
}

func (r *localUserRepository) FindByDepartment(ctx context.Context, departmentValue string) ([]models.User, error) {
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	members := make([]models.User, 0)
	for _, u := range users {
		if u.DepartmentValue == departmentValue {
			members = append(members, u)
		}
	}
	return members, nil
}

func (r *localUserRepository) EmailExists(ctx context.Context, email, excludeID string) (bool, error) {
	users, err := r.List(ctx)
	if err != nil {
		return false, err
	}
	return emailTaken(users, email, excludeID), nil
}

func (r *localUserRepository) Create(ctx context.Context, user *models.User) error {
	return recordstore.Mutate(ctx, r.store, recordstore.Users, func(users []models.User) ([]models.User, error) {
		if emailTaken(users, user.Email, "") {
			return nil, ErrDuplicate
		}
		return append(users, *user), nil
	})
}

func (r *localUserRepository) Update(ctx context.Context, id string, change UserChange) (*models.User, error) {
	var updated models.User
	err := recordstore.Mutate(ctx, r.store, recordstore.Users, func(users []models.User) ([]models.User, error) {
		for i := range users {
			if users[i].ID != id {
				continue
			}
			patch, err := change(users[i])
			if err != nil {
				return nil, err
			}
			if patch.Email != nil && emailTaken(users, *patch.Email, id) {
				return nil, ErrDuplicate
			}
			patch.Apply(&users[i])
			updated = users[i]
			return users, nil
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *localUserRepository) Delete(ctx context.Context, id string) error {
	return recordstore.Mutate(ctx, r.store, recordstore.Users, func(users []models.User) ([]models.User, error) {
		kept := users[:0]
		for _, u := range users {
			if u.ID != id {
				kept = append(kept, u)
			}
		}
		return kept, nil
	})
}

func (r *localUserRepository) ReplaceAll(ctx context.Context, users []models.User) error {
	return recordstore.Mutate(ctx, r.store, recordstore.Users, func([]models.User) ([]models.User, error) {
		return users, nil
	})
}

func emailTaken(users []models.User, email, excludeID string) bool {
	for _, u := range users {
		if u.ID != excludeID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

type localTaskRepository struct {
	store *recordstore.Store
}

func (r *localTaskRepository) List(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	tasks, err := recordstore.GetAll[models.Task](ctx, r.store, recordstore.Tasks)
	if err != nil {
		return nil, err
	}
	matched := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if filter.Matches(t) {
			matched = append(matched, t)
		}
	}
	return matched, nil
}

func (r *localTaskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	var found *models.Task
	err := recordstore.Read(ctx, r.store, recordstore.Tasks, func(tasks []models.Task) error {
		for i := range tasks {
			if tasks[i].ID == id {
				found = &tasks[i]
				return nil
			}
		}
		return ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (r *localTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return recordstore.Mutate(ctx, r.store, recordstore.Tasks, func(tasks []models.Task) ([]models.Task, error) {
		return append(tasks, *task), nil
	})
}

func (r *localTaskRepository) Update(ctx context.Context, id string, change TaskChange) (*models.Task, error) {
	var updated models.Task
	err := recordstore.Mutate(ctx, r.store, recordstore.Tasks, func(tasks []models.Task) ([]models.Task, error) {
		for i := range tasks {
			if tasks[i].ID != id {
				continue
			}
			patch, err := change(tasks[i])
			if err != nil {
				return nil, err
			}
			patch.Apply(&tasks[i])
			updated = tasks[i]
			return tasks, nil
		}
		return nil, ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *localTaskRepository) ReplaceAll(ctx context.Context, tasks []models.Task) error {
	return recordstore.Mutate(ctx, r.store, recordstore.Tasks, func([]models.Task) ([]models.Task, error) {
		return tasks, nil
	})
}

type localMessageRepository struct {
	store *recordstore.Store
}

func (r *localMessageRepository) List(ctx context.Context) ([]models.Message, error) {
	return recordstore.GetAll[models.Message](ctx, r.store, recordstore.Messages)
}

func (r *localMessageRepository) ListForUser(ctx context.Context, userID string) ([]models.Message, error) {
	messages, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	mine := make([]models.Message, 0)
	for _, m := range messages {
		if m.FromUserID == userID || m.ToUserID == userID {
			mine = append(mine, m)
		}
	}
	return mine, nil
}

func (r *localMessageRepository) Create(ctx context.Context, msg *models.Message) error {
	return recordstore.Mutate(ctx, r.store, recordstore.Messages, func(messages []models.Message) ([]models.Message, error) {
		return append(messages, *msg), nil
	})
}

func (r *localMessageRepository) MarkRead(ctx context.Context, id string) error {
	return recordstore.Mutate(ctx, r.store, recordstore.Messages, func(messages []models.Message) ([]models.Message, error) {
		for i := range messages {
			if messages[i].ID == id {
				messages[i].Read = true
				return messages, nil
			}
		}
		return nil, ErrNotFound
	})
}

func (r *localMessageRepository) ReplaceAll(ctx context.Context, messages []models.Message) error {
	return recordstore.Mutate(ctx, r.store, recordstore.Messages, func([]models.Message) ([]models.Message, error) {
		return messages, nil
	})
}

type localNotificationRepository struct {
	store *recordstore.Store
}

func (r *localNotificationRepository) Deliver(ctx context.Context, deliveries []Delivery) (int, error) {
	if len(deliveries) == 0 {
		return 0, nil
	}
	delivered := 0
	err := recordstore.Mutate(ctx, r.store, recordstore.Users, func(users []models.User) ([]models.User, error) {
		index := make(map[string]int, len(users))
		for i, u := range users {
			index[u.ID] = i
		}
		for _, d := range deliveries {
			i, ok := index[d.UserID]
			if !ok {
				continue
			}
			users[i].Notifications = models.PrependNotification(users[i].Notifications, d.Notification, constants.MaxNotifications)
			delivered++
		}
		return users, nil
	})
	if err != nil {
		return 0, err
	}
	return delivered, nil
}

func (r *localNotificationRepository) ListForUser(ctx context.Context, userID string) ([]models.Notification, error) {
	var list []models.Notification
	err := recordstore.Read(ctx, r.store, recordstore.Users, func(users []models.User) error {
		for _, u := range users {
			if u.ID == userID {
				list = append([]models.Notification{}, u.Notifications...)
				return nil
			}
		}
		return ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *localNotificationRepository) MarkRead(ctx context.Context, userID, id string) error {
	return r.updateUser(ctx, userID, func(u *models.User) error {
		for i := range u.Notifications {
			if u.Notifications[i].ID == id {
				u.Notifications[i].Read = true
				return nil
			}
		}
		return ErrNotFound
	})
}

func (r *localNotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	return r.updateUser(ctx, userID, func(u *models.User) error {
		for i := range u.Notifications {
			u.Notifications[i].Read = true
		}
		return nil
	})
}

func (r *localNotificationRepository) updateUser(ctx context.Context, userID string, fn func(*models.User) error) error {
	return recordstore.Mutate(ctx, r.store, recordstore.Users, func(users []models.User) ([]models.User, error) {
		for i := range users {
			if users[i].ID == userID {
				if err := fn(&users[i]); err != nil {
					return nil, err
				}
				return users, nil
			}
		}
		return nil, ErrNotFound
	})
}
