package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/conectahub/intranet-api/internal/constants"
	apierrors "github.com/conectahub/intranet-api/internal/errors"
	"github.com/conectahub/intranet-api/internal/models"
	"github.com/conectahub/intranet-api/internal/services"
)

// LoadTask resolves the :id parameter into a task and stores it in context.
func LoadTask(tasks *services.TaskService) gin.HandlerFunc {
	return func(c *gin.Context) {
		task, err := tasks.GetTask(c.Request.Context(), c.Param("id"))
		if errors.Is(err, services.ErrTaskNotFound) {
			apierrors.NotFound(c, "Task not found")
			c.Abort()
			return
		}
		if err != nil {
			apierrors.InternalError(c, "Failed to load task")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTask, task)
		c.Next()
	}
}

// GetTask retrieves the task loaded by LoadTask
func GetTask(c *gin.Context) (*models.Task, bool) {
	value, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return nil, false
	}
	task, ok := value.(*models.Task)
	return task, ok && task != nil
}
