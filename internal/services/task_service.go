package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/conectahub/intranet-api/internal/constants"
	"github.com/conectahub/intranet-api/internal/logger"
	"github.com/conectahub/intranet-api/internal/metrics"
	"github.com/conectahub/intranet-api/internal/models"
	"github.com/conectahub/intranet-api/internal/repository"
	"github.com/conectahub/intranet-api/internal/session"
)

// Completion policies
const (
	// CompleteByAnyone lets any logged-in user complete an assigned task.
	CompleteByAnyone = "any"
	// CompleteByAssignee restricts completion to the assignee.
	CompleteByAssignee = "assignee"
)

const (
	newTaskNotificationTitle = "Nova tarefa disponível"
	newTaskNotificationIcon  = "fa-clipboard-list"
	completedActivityIcon    = "fa-solid fa-clipboard-check"
)

// TaskService handles task business logic
type TaskService struct {
	tasks         repository.TaskRepository
	users         repository.UserRepository
	userService   *UserService
	notifications *NotificationService
	policy        string
	log           *logger.Logger
	metrics       *metrics.ServiceMetrics
	now           func() time.Time
}

// NewTaskService creates a new TaskService
func NewTaskService(storage *repository.Storage, userService *UserService, notifications *NotificationService, policy string, log *logger.Logger, m *metrics.ServiceMetrics) *TaskService {
	if policy == "" {
		policy = CompleteByAnyone
	}
	return &TaskService{
		tasks:         storage.Tasks,
		users:         storage.Users,
		userService:   userService,
		notifications: notifications,
		policy:        policy,
		log:           log,
		metrics:       m,
		now:           time.Now,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title           string
	Description     string
	Department      string
	DepartmentValue string
	Points          int
}

// CreateTask stores a pending task and notifies its department. Only
// administrators may create tasks.
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput, actor *models.User) (task *models.Task, err error) {
	defer func() { s.metrics.Observe("create_task", err) }()

	if actor == nil || !actor.IsAdmin {
		return nil, ErrPermissionDenied
	}

	title := strings.TrimSpace(input.Title)
	departmentValue := strings.TrimSpace(input.DepartmentValue)
	if title == "" || departmentValue == "" {
		return nil, ErrTaskValidation
	}

	points := input.Points
	if points <= 0 {
		points = constants.DefaultTaskPoints
	}

	created := &models.Task{
		ID:              newID(),
		Title:           title,
		Description:     input.Description,
		Department:      withDefault(input.Department, departmentValue),
		DepartmentValue: departmentValue,
		CreatedBy:       actor.ID,
		CreatedByName:   actor.FullName,
		CreatedAt:       s.now(),
		Points:          points,
		Status:          models.TaskStatusPending,
	}

	if err := s.tasks.Create(ctx, created); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	ctx = s.log.WithField(ctx, "task_id", created.ID)
	taskID := created.ID
	_, notifyErr := s.notifications.NotifyDepartment(ctx, departmentValue, NotificationInput{
		Type:        models.NotificationTypeNewTask,
		TaskID:      &taskID,
		Title:       newTaskNotificationTitle,
		Description: title,
		Icon:        newTaskNotificationIcon,
	})
	if notifyErr != nil {
		s.log.Warn(ctx, "task created but department notification failed", notifyErr)
	}

	return created, nil
}

// GetTask returns a task by id
func (s *TaskService) GetTask(ctx context.Context, id string) (*models.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// ListTasks returns the tasks matching the filter in creation order
func (s *TaskService) ListTasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	tasks, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// TasksByDepartment lists the tasks of a department
func (s *TaskService) TasksByDepartment(ctx context.Context, departmentValue string) ([]models.Task, error) {
	return s.ListTasks(ctx, models.TaskFilter{DepartmentValue: departmentValue})
}

// UserTasks lists the tasks assigned to a user
func (s *TaskService) UserTasks(ctx context.Context, userID string) ([]models.Task, error) {
	return s.ListTasks(ctx, models.TaskFilter{AssignedTo: userID})
}

// AssignTask sets the assignee of an unassigned task and moves it to
// in_progress. A task is assigned at most once.
func (s *TaskService) AssignTask(ctx context.Context, taskID, userID string) (task *models.Task, err error) {
	defer func() { s.metrics.Observe("assign_task", err) }()

	now := s.now()
	updated, err := s.tasks.Update(ctx, taskID, func(current models.Task) (models.TaskPatch, error) {
		if current.IsAssigned() {
			return models.TaskPatch{}, ErrTaskAlreadyAssigned
		}
		status := models.TaskStatusInProgress
		return models.TaskPatch{
			AssignedTo: &userID,
			Status:     &status,
			AssignedAt: &now,
		}, nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		if errors.Is(err, ErrTaskAlreadyAssigned) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to assign task: %w", err)
	}
	return updated, nil
}

// CompleteTask marks an assigned task as completed and credits the assignee
// with the task points and an activity entry. The session snapshot is
// refreshed when the assignee is the logged-in user.
func (s *TaskService) CompleteTask(ctx context.Context, sess session.Store, taskID, actorID string) (task *models.Task, err error) {
	defer func() { s.metrics.Observe("complete_task", err) }()

	now := s.now()
	completed, err := s.tasks.Update(ctx, taskID, func(current models.Task) (models.TaskPatch, error) {
		if current.Status == models.TaskStatusCompleted {
			return models.TaskPatch{}, ErrTaskAlreadyCompleted
		}
		if !current.IsAssigned() {
			return models.TaskPatch{}, ErrTaskNotAssigned
		}
		if s.policy == CompleteByAssignee && *current.AssignedTo != actorID {
			return models.TaskPatch{}, ErrPermissionDenied
		}
		status := models.TaskStatusCompleted
		return models.TaskPatch{Status: &status, CompletedAt: &now}, nil
	})
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, ErrTaskNotFound
	case errors.Is(err, ErrTaskAlreadyCompleted),
		errors.Is(err, ErrTaskNotAssigned),
		errors.Is(err, ErrPermissionDenied):
		return nil, err
	case err != nil:
		return nil, fmt.Errorf("failed to complete task: %w", err)
	}

	assignee := *completed.AssignedTo
	ctx = s.log.WithFields(ctx, map[string]any{"task_id": completed.ID, "user_id": assignee})

	activity := models.Activity{
		Icon:        completedActivityIcon,
		Description: fmt.Sprintf("Completou a tarefa \"%s\"", completed.Title),
		Date:        now.Format(constants.ActivityDateLayout),
	}
	_, err = s.users.Update(ctx, assignee, func(user models.User) (models.UserPatch, error) {
		stats := user.Stats
		stats.Tasks++
		stats.Productivity += completed.Points
		activities := models.PrependActivity(user.RecentActivities, activity, constants.MaxRecentActivities)
		return models.UserPatch{Stats: &stats, RecentActivities: &activities}, nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		s.log.Warn(ctx, "completed task has no matching assignee", err)
		return completed, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to credit assignee: %w", err)
	}

	if err := s.userService.RefreshSession(ctx, sess, assignee); err != nil {
		s.log.Warn(ctx, "failed to refresh session after completion", err)
	}

	s.log.Info(ctx, "task completed")
	return completed, nil
}
