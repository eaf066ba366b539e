package models

import (
	"time"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// Valid reports whether the status is one of the known values.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

type Task struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Department      string     `json:"department"`
	DepartmentValue string     `json:"departmentValue"`
	CreatedBy       string     `json:"createdBy"`
	CreatedByName   string     `json:"createdByName"`
	CreatedAt       time.Time  `json:"createdAt"`
	Points          int        `json:"points"`
	Status          TaskStatus `json:"status"`
	AssignedTo      *string    `json:"assignedTo"`
	AssignedAt      *time.Time `json:"assignedAt,omitempty"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
}

// IsAssigned reports whether the task already has an assignee.
func (t Task) IsAssigned() bool {
	return t.AssignedTo != nil && *t.AssignedTo != ""
}

// TaskPatch is a sparse update of a task. Nil fields are left untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	Points      *int
	Status      *TaskStatus
	AssignedTo  *string
	AssignedAt  *time.Time
	CompletedAt *time.Time
}

// Apply merges the present fields of the patch over the task.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Points != nil {
		t.Points = *p.Points
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.AssignedTo != nil {
		assignee := *p.AssignedTo
		t.AssignedTo = &assignee
	}
	if p.AssignedAt != nil {
		at := *p.AssignedAt
		t.AssignedAt = &at
	}
	if p.CompletedAt != nil {
		at := *p.CompletedAt
		t.CompletedAt = &at
	}
}

// TaskFilter narrows task listings. Empty fields match everything.
type TaskFilter struct {
	DepartmentValue string
	AssignedTo      string
	Status          TaskStatus
}

// Matches reports whether the task satisfies every set criterion.
func (f TaskFilter) Matches(t Task) bool {
	if f.DepartmentValue != "" && t.DepartmentValue != f.DepartmentValue {
		return false
	}
	if f.AssignedTo != "" && (t.AssignedTo == nil || *t.AssignedTo != f.AssignedTo) {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	return true
}
