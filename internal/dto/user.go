package dto

import (
	"time"

	"github.com/conectahub/intranet-api/internal/models"
)

// UserDTO represents a user in API responses. The password hash is never
// rendered.
type UserDTO struct {
	ID                  string                `json:"id"`
	FullName            string                `json:"fullName"`
	Name                string                `json:"name"`
	Email               string                `json:"email"`
	Department          string                `json:"department"`
	DepartmentValue     string                `json:"departmentValue"`
	Role                string                `json:"role"`
	Position            string                `json:"position"`
	Phone               string                `json:"phone"`
	Location            string                `json:"location"`
	RegistrationDate    time.Time             `json:"registrationDate"`
	LastLogin           time.Time             `json:"lastLogin"`
	Avatar              *string               `json:"avatar"`
	IsAdmin             bool                  `json:"isAdmin"`
	Stats               models.Stats          `json:"stats"`
	Skills              []models.Skill        `json:"skills"`
	RecentActivities    []models.Activity     `json:"recentActivities"`
	Notifications       []models.Notification `json:"notifications"`
	UnreadNotifications int                   `json:"unreadNotifications"`
}

// SignupRequest is the self-registration payload.
type SignupRequest struct {
	FullName        string `json:"fullName" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	Department      string `json:"department"`
	DepartmentValue string `json:"departmentValue" binding:"required"`
	Role            string `json:"role"`
	Position        string `json:"position"`
	Phone           string `json:"phone"`
	Location        string `json:"location"`
}

// CreateUserRequest is the administrator's account creation payload.
type CreateUserRequest struct {
	SignupRequest
	IsAdmin bool `json:"isAdmin"`
}

// LoginRequest accepts an email, first name or full name as identifier.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// UpdateUserRequest is a sparse update; absent fields are left untouched.
type UpdateUserRequest struct {
	models.UserPatch
	Password *string `json:"password,omitempty"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:                  user.ID,
		FullName:            user.FullName,
		Name:                user.Name,
		Email:               user.Email,
		Department:          user.Department,
		DepartmentValue:     user.DepartmentValue,
		Role:                user.Role,
		Position:            user.Position,
		Phone:               user.Phone,
		Location:            user.Location,
		RegistrationDate:    user.RegistrationDate,
		LastLogin:           user.LastLogin,
		Avatar:              user.Avatar,
		IsAdmin:             user.IsAdmin,
		Stats:               user.Stats,
		Skills:              nonNil(user.Skills),
		RecentActivities:    nonNil(user.RecentActivities),
		Notifications:       nonNil(user.Notifications),
		UnreadNotifications: user.UnreadNotifications(),
	}
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	out := make([]UserDTO, len(users))
	for i, u := range users {
		out[i] = ToUserDTO(u)
	}
	return out
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
