package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/conectahub/intranet-api/internal/dto"
	apierrors "github.com/conectahub/intranet-api/internal/errors"
	"github.com/conectahub/intranet-api/internal/logger"
	"github.com/conectahub/intranet-api/internal/middleware"
	"github.com/conectahub/intranet-api/internal/services"
	"github.com/conectahub/intranet-api/internal/utils"
)

type TaskHandler struct {
	tasks *services.TaskService
	log   *logger.Logger
}

func NewTaskHandler(tasks *services.TaskService, log *logger.Logger) *TaskHandler {
	return &TaskHandler{
		tasks: tasks,
		log:   log,
	}
}

// ListTasks returns tasks in creation order
// Can filter by department, assigned_to and status
func (h *TaskHandler) ListTasks(c *gin.Context) {
	var query dto.TaskListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		apierrors.BadRequest(c, "Invalid query parameters")
		return
	}
	if query.Status != "" && !query.Status.Valid() {
		apierrors.BadRequest(c, "Invalid status")
		return
	}

	tasks, err := h.tasks.ListTasks(c.Request.Context(), query.Filter())
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	page, pagination := utils.Paginate(tasks, utils.GetPaginationParams(c))
	respond(c, http.StatusOK, gin.H{
		"tasks":      page,
		"pagination": pagination,
	})
}

// GetTask returns a specific task by ID
// Task is already loaded by the LoadTask middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	respond(c, http.StatusOK, gin.H{"task": task})
}

// CreateTask creates a new task; the service rejects non-administrators
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req dto.CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	actor, _ := middleware.CurrentUser(c)
	task, err := h.tasks.CreateTask(c.Request.Context(), services.CreateTaskInput{
		Title:           req.Title,
		Description:     req.Description,
		Department:      req.Department,
		DepartmentValue: req.DepartmentValue,
		Points:          req.Points,
	}, actor)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	respond(c, http.StatusCreated, gin.H{"task": task})
}

// AssignTask assigns the task to the caller
func (h *TaskHandler) AssignTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	task, err := h.tasks.AssignTask(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"task": task})
}

// CompleteTask completes the task and credits its assignee
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	task, err := h.tasks.CompleteTask(c.Request.Context(), middleware.Session(c), c.Param("id"), userID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"task": task})
}
