package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/conectahub/intranet-api/internal/constants"
	"github.com/conectahub/intranet-api/internal/dto"
	apierrors "github.com/conectahub/intranet-api/internal/errors"
	"github.com/conectahub/intranet-api/internal/logger"
	"github.com/conectahub/intranet-api/internal/models"
	"github.com/conectahub/intranet-api/internal/services"
	"github.com/conectahub/intranet-api/internal/utils"
)

// UserHandler exposes the user directory and account administration.
type UserHandler struct {
	users *services.UserService
	log   *logger.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *services.UserService, log *logger.Logger) *UserHandler {
	return &UserHandler{
		users: users,
		log:   log,
	}
}

// ListUsers returns one page of users in registration order.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	page, pagination := utils.Paginate(users, utils.GetPaginationParams(c))
	respond(c, http.StatusOK, gin.H{
		"users":      dto.ToUserDTOs(page),
		"pagination": pagination,
	})
}

// LookupUser finds a user by identifier, or by a single field when
// field is given. A miss is reported as 404.
func (h *UserHandler) LookupUser(c *gin.Context) {
	value := c.Query("value")
	if value == "" {
		apierrors.BadRequest(c, "value is required")
		return
	}

	var (
		user *models.User
		err  error
	)
	if field := c.Query("field"); field != "" {
		user, err = h.users.FindUserBy(c.Request.Context(), field, value)
	} else {
		user, err = h.users.FindUser(c.Request.Context(), value)
	}
	if err == nil && user == nil {
		err = services.ErrUserNotFound
	}
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"user": dto.ToUserDTO(*user)})
}

// GetUser returns a user by id.
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.users.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"user": dto.ToUserDTO(*user)})
}

// CreateUser creates an account without touching the caller's session.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	if len(req.Password) < constants.MinPasswordLength {
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
		return
	}

	input := signupInput(req.SignupRequest)
	input.IsAdmin = req.IsAdmin
	user, err := h.users.CreateUser(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	respond(c, http.StatusCreated, gin.H{"user": dto.ToUserDTO(*user)})
}

// UpdateUser applies a sparse update.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req dto.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Password != nil && len(*req.Password) < constants.MinPasswordLength {
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
		return
	}

	user, err := h.users.UpdateUser(c.Request.Context(), c.Param("id"), services.UpdateUserInput{
		UserPatch: req.UserPatch,
		Password:  req.Password,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"user": dto.ToUserDTO(*user)})
}

// DeleteUser removes an account. Deleting an unknown id succeeds.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.users.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"message": "User deleted successfully"})
}
