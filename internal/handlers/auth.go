package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/conectahub/intranet-api/internal/constants"
	"github.com/conectahub/intranet-api/internal/dto"
	apierrors "github.com/conectahub/intranet-api/internal/errors"
	"github.com/conectahub/intranet-api/internal/logger"
	"github.com/conectahub/intranet-api/internal/middleware"
	"github.com/conectahub/intranet-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	users *services.UserService
	log   *logger.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users *services.UserService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		users: users,
		log:   log,
	}
}

// Signup registers a new user and logs them in.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if !bindJSON(c, &req) {
		return
	}
	if len(req.Password) < constants.MinPasswordLength {
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), signupInput(req))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	if err := h.users.Login(middleware.Session(c), *user); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	respond(c, http.StatusCreated, gin.H{"user": dto.ToUserDTO(*user)})
}

// Login validates the credentials and stores the session snapshot.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.ValidateLogin(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	if err := h.users.Login(middleware.Session(c), *user); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	respond(c, http.StatusOK, gin.H{"user": dto.ToUserDTO(*user)})
}

// Logout removes the session snapshot.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.users.Logout(middleware.Session(c)); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	respond(c, http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// GetCurrentUser returns the session snapshot.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, err := h.users.CurrentUser(middleware.Session(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"user": dto.ToUserDTO(*user)})
}

func signupInput(req dto.SignupRequest) services.CreateUserInput {
	return services.CreateUserInput{
		FullName:        req.FullName,
		Email:           req.Email,
		Password:        req.Password,
		Department:      req.Department,
		DepartmentValue: req.DepartmentValue,
		Role:            req.Role,
		Position:        req.Position,
		Phone:           req.Phone,
		Location:        req.Location,
	}
}
