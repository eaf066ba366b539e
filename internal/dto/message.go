package dto

// CreateMessageRequest sends a message from the logged-in user.
type CreateMessageRequest struct {
	ToUserID string `json:"toUserId" binding:"required"`
	Content  string `json:"content" binding:"required"`
}

// NotifyDepartmentRequest is an administrator broadcast to a department.
type NotifyDepartmentRequest struct {
	DepartmentValue string  `json:"departmentValue" binding:"required"`
	Type            string  `json:"type"`
	TaskID          *string `json:"taskId"`
	Title           string  `json:"title" binding:"required"`
	Description     string  `json:"description"`
	Icon            string  `json:"icon"`
}
