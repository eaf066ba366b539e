package dto

import (
	"github.com/conectahub/intranet-api/internal/models"
)

// CreateTaskRequest is the payload of task creation. Points default to 10
// when omitted. Title and departmentValue are checked by the task service
// so that blank and absent values fail the same way.
type CreateTaskRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Department      string `json:"department"`
	DepartmentValue string `json:"departmentValue"`
	Points          int    `json:"points" binding:"omitempty,min=0"`
}

// TaskListQuery holds the optional list filters.
type TaskListQuery struct {
	Department string            `form:"department"`
	AssignedTo string            `form:"assigned_to"`
	Status     models.TaskStatus `form:"status"`
}

// Filter converts the query into a repository filter.
func (q TaskListQuery) Filter() models.TaskFilter {
	return models.TaskFilter{
		DepartmentValue: q.Department,
		AssignedTo:      q.AssignedTo,
		Status:          q.Status,
	}
}
