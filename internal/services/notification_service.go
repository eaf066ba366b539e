package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/conectahub/intranet-api/internal/constants"
	"github.com/conectahub/intranet-api/internal/logger"
	"github.com/conectahub/intranet-api/internal/metrics"
	"github.com/conectahub/intranet-api/internal/models"
	"github.com/conectahub/intranet-api/internal/repository"
	"github.com/conectahub/intranet-api/internal/session"
)

// NotificationService fans notifications out to departments and manages the
// read state of the logged-in user's list.
type NotificationService struct {
	users         repository.UserRepository
	notifications repository.NotificationRepository
	userService   *UserService
	log           *logger.Logger
	metrics       *metrics.ServiceMetrics
	now           func() time.Time
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(storage *repository.Storage, userService *UserService, log *logger.Logger, m *metrics.ServiceMetrics) *NotificationService {
	return &NotificationService{
		users:         storage.Users,
		notifications: storage.Notifications,
		userService:   userService,
		log:           log,
		metrics:       m,
		now:           time.Now,
	}
}

// NotificationInput is the payload copied to every recipient.
type NotificationInput struct {
	Type        string
	TaskID      *string
	Title       string
	Description string
	Icon        string
}

// NotifyDepartment delivers a fresh unread copy of the payload to every
// user of the department and returns the number of copies stored.
func (s *NotificationService) NotifyDepartment(ctx context.Context, departmentValue string, input NotificationInput) (delivered int, err error) {
	defer func() {
		s.metrics.Observe("notify_department", err)
		s.metrics.AddNotifications(delivered)
	}()

	recipients, err := s.users.FindByDepartment(ctx, departmentValue)
	if err != nil {
		return 0, fmt.Errorf("failed to find department users: %w", err)
	}
	if len(recipients) == 0 {
		return 0, nil
	}

	icon := withDefault(input.Icon, constants.DefaultNotifyIcon)
	now := s.now()
	deliveries := make([]repository.Delivery, 0, len(recipients))
	for _, user := range recipients {
		deliveries = append(deliveries, repository.Delivery{
			UserID: user.ID,
			Notification: models.Notification{
				ID:          newID(),
				Type:        input.Type,
				TaskID:      input.TaskID,
				Title:       input.Title,
				Description: input.Description,
				Icon:        icon,
				Timestamp:   now,
				Read:        false,
			},
		})
	}

	delivered, err = s.notifications.Deliver(ctx, deliveries)
	if err != nil {
		return 0, fmt.Errorf("failed to deliver notifications: %w", err)
	}

	ctx = s.log.WithFields(ctx, map[string]any{
		"department": departmentValue,
		"delivered":  delivered,
	})
	s.log.Debug(ctx, "department notified")
	return delivered, nil
}

// ListNotifications returns the stored list of the logged-in user.
func (s *NotificationService) ListNotifications(ctx context.Context, sess session.Store) ([]models.Notification, error) {
	current, err := s.userService.CurrentUser(sess)
	if err != nil {
		return nil, err
	}
	list, err := s.notifications.ListForUser(ctx, current.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return list, nil
}

// MarkNotificationAsRead flags one notification of the logged-in user and
// refreshes the session snapshot.
func (s *NotificationService) MarkNotificationAsRead(ctx context.Context, sess session.Store, id string) (err error) {
	defer func() { s.metrics.Observe("mark_notification_read", err) }()

	current, err := s.userService.CurrentUser(sess)
	if err != nil {
		return err
	}
	err = s.notifications.MarkRead(ctx, current.ID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotificationNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to mark notification: %w", err)
	}
	return s.userService.RefreshSession(ctx, sess, current.ID)
}

// MarkAllNotificationsAsRead flags the whole list of the logged-in user and
// refreshes the session snapshot.
func (s *NotificationService) MarkAllNotificationsAsRead(ctx context.Context, sess session.Store) (err error) {
	defer func() { s.metrics.Observe("mark_all_notifications_read", err) }()

	current, err := s.userService.CurrentUser(sess)
	if err != nil {
		return err
	}
	err = s.notifications.MarkAllRead(ctx, current.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to mark notifications: %w", err)
	}
	return s.userService.RefreshSession(ctx, sess, current.ID)
}

// GetUnreadCount counts unread entries of the session snapshot. It does not
// read storage, so it reflects the state at the last login or refresh.
func (s *NotificationService) GetUnreadCount(sess session.Store) (int, error) {
	current, err := sess.Current()
	if err != nil {
		return 0, err
	}
	if current == nil {
		return 0, nil
	}
	return current.UnreadNotifications(), nil
}
